package attendance

import (
	"context"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/ultigroup/attendbot/internal/events"
	"github.com/ultigroup/attendbot/internal/roster"
	"github.com/ultigroup/attendbot/internal/status"
)

func testVocabulary() status.Vocabulary {
	return status.Vocabulary{
		Training: status.LabelSet{Coming: "Přijdu", Late: "Přijdu později", NotComing: "Nepřijdu"},
		Other:    status.LabelSet{Coming: "Coming", Late: "Late", NotComing: "Not Coming"},
		Unset:    "Nezadáno",
	}
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:attendance_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&events.Event{}, &roster.User{}, &Participation{}, &HistoryEntry{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)

	tick := int64(0)
	clock := func() time.Time {
		tick++
		return time.Unix(1700000000+tick, 0).UTC()
	}

	service, err := NewService(ServiceConfig{
		Database:   db,
		Clock:      clock,
		Vocabulary: testVocabulary,
	})
	if err != nil {
		t.Fatalf("failed to construct attendance service: %v", err)
	}
	return service, db
}

func seedEvent(t *testing.T, db *gorm.DB, category events.Category) events.Event {
	t.Helper()
	event := events.Event{
		Name:      "Tuesday practice",
		StartTime: time.Unix(1700100000, 0).UTC(),
		EndTime:   time.Unix(1700107200, 0).UTC(),
		LockTime:  time.Unix(1700096400, 0).UTC(),
		Category:  category,
		Address:   "Letná field",
	}
	if err := db.Create(&event).Error; err != nil {
		t.Fatalf("failed to seed event: %v", err)
	}
	return event
}

func seedUser(t *testing.T, db *gorm.DB, userID, name string, category roster.Category) roster.User {
	t.Helper()
	user := roster.User{UserID: userID, Name: name, Category: category}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user
}

func mustUpsert(t *testing.T, service *Service, eventID uint, userID string, answer status.Status, note string) UpsertResult {
	t.Helper()
	result, err := service.Upsert(context.Background(), eventID, userID, answer, note)
	if err != nil {
		t.Fatalf("unexpected upsert error: %v", err)
	}
	return result
}
