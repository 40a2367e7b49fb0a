package attendance_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ultigroup/attendbot/internal/attendance"
	"github.com/ultigroup/attendbot/internal/database"
	"github.com/ultigroup/attendbot/internal/events"
	"github.com/ultigroup/attendbot/internal/status"
)

// Two simultaneous submissions for the same (event, user) pair against a
// database opened the way the server opens it: both must commit, the ledger
// must hold exactly one row, and the trail exactly two entries.
func TestConcurrentUpsertsSerialize(t *testing.T) {
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "attendance.db"), nil)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	service, err := attendance.NewService(attendance.ServiceConfig{
		Database: db,
		Vocabulary: func() status.Vocabulary {
			return status.DefaultVocabulary()
		},
	})
	if err != nil {
		t.Fatalf("failed to construct attendance service: %v", err)
	}

	event := events.Event{
		Name:      "Tuesday practice",
		StartTime: time.Now().Add(48 * time.Hour),
		EndTime:   time.Now().Add(50 * time.Hour),
		LockTime:  time.Now().Add(24 * time.Hour),
		Category:  events.CategoryTraining,
	}
	if err := db.Create(&event).Error; err != nil {
		t.Fatalf("failed to seed event: %v", err)
	}

	answers := [2]status.Status{status.StatusComing, status.StatusNotComing}
	errs := make([]error, len(answers))
	var wg sync.WaitGroup
	for i, answer := range answers {
		wg.Add(1)
		go func(i int, answer status.Status) {
			defer wg.Done()
			_, errs[i] = service.Upsert(context.Background(), event.ID, "U1", answer, "")
		}(i, answer)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("upsert %d failed: %v", i, err)
		}
	}

	var ledgerCount, historyCount int64
	if err := db.Model(&attendance.Participation{}).Count(&ledgerCount).Error; err != nil {
		t.Fatalf("failed to count ledger rows: %v", err)
	}
	if err := db.Model(&attendance.HistoryEntry{}).Count(&historyCount).Error; err != nil {
		t.Fatalf("failed to count history rows: %v", err)
	}
	if ledgerCount != 1 {
		t.Fatalf("expected one ledger row, got %d", ledgerCount)
	}
	if historyCount != 2 {
		t.Fatalf("expected two history entries, got %d", historyCount)
	}

	stored, found, err := service.Get(context.Background(), event.ID, "U1")
	if err != nil || !found {
		t.Fatalf("expected a final row, found=%v err=%v", found, err)
	}
	if stored.Status != answers[0] && stored.Status != answers[1] {
		t.Fatalf("final status %q is neither submitted answer", stored.Status)
	}
}
