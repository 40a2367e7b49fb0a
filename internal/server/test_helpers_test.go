package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/ultigroup/attendbot/internal/attendance"
	"github.com/ultigroup/attendbot/internal/events"
	"github.com/ultigroup/attendbot/internal/export"
	"github.com/ultigroup/attendbot/internal/platform"
	"github.com/ultigroup/attendbot/internal/roster"
	"github.com/ultigroup/attendbot/internal/settings"
	"github.com/ultigroup/attendbot/internal/status"
)

const (
	testAdminID  = "UADMIN"
	testMemberID = "UMEMBER"
	adminGroupID = "SADMINS"
)

var testNow = time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC)

type allowAllVerifier struct{}

func (allowAllVerifier) VerifyRequest(*http.Request) error { return nil }

type rejectVerifier struct{ err error }

func (v rejectVerifier) VerifyRequest(*http.Request) error { return v.err }

// fakeClient records outbound platform calls.
type fakeClient struct {
	homes    []platform.HomeView
	homeUser []string
	modals   []platform.Modal
	updates  []platform.Modal
	messages []string
	uploads  []string
	members  map[string][]string
}

func (f *fakeClient) PublishHome(_ context.Context, userID string, view platform.HomeView) error {
	f.homeUser = append(f.homeUser, userID)
	f.homes = append(f.homes, view)
	return nil
}

func (f *fakeClient) OpenModal(_ context.Context, _ string, view platform.Modal) error {
	f.modals = append(f.modals, view)
	return nil
}

func (f *fakeClient) UpdateModal(_ context.Context, _ string, view platform.Modal) error {
	f.updates = append(f.updates, view)
	return nil
}

func (f *fakeClient) PostMessage(_ context.Context, _ string, text string) error {
	f.messages = append(f.messages, text)
	return nil
}

func (f *fakeClient) UploadFile(_ context.Context, channelID, filename string, _ []byte) error {
	f.uploads = append(f.uploads, channelID+"/"+filename)
	return nil
}

func (f *fakeClient) GroupMembers(_ context.Context, groupID string) ([]string, error) {
	return f.members[groupID], nil
}

type testHarness struct {
	handler    http.Handler
	client     *fakeClient
	db         *gorm.DB
	events     *events.Service
	roster     *roster.Service
	attendance *attendance.Service
	settings   *settings.Store
}

func newHarness(t *testing.T) *testHarness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:server_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&events.Event{}, &roster.User{}, &attendance.Participation{}, &attendance.HistoryEntry{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	clock := func() time.Time { return testNow }

	store, err := settings.NewStore(filepath.Join(t.TempDir(), "settings.yaml"), nil)
	if err != nil {
		t.Fatalf("failed to build settings store: %v", err)
	}
	current := store.Current()
	current.AdminGroup = adminGroupID
	current.ExportChannel = "CEXPORT"
	if err := store.Save(current); err != nil {
		t.Fatalf("failed to save settings: %v", err)
	}

	eventService, err := events.NewService(events.ServiceConfig{Database: db, Clock: clock})
	if err != nil {
		t.Fatalf("failed to build events service: %v", err)
	}
	rosterService, err := roster.NewService(roster.ServiceConfig{Database: db})
	if err != nil {
		t.Fatalf("failed to build roster service: %v", err)
	}
	attendanceService, err := attendance.NewService(attendance.ServiceConfig{
		Database:   db,
		Clock:      clock,
		Vocabulary: func() status.Vocabulary { return store.Current().Labels },
	})
	if err != nil {
		t.Fatalf("failed to build attendance service: %v", err)
	}

	client := &fakeClient{members: map[string][]string{adminGroupID: {testAdminID}}}
	exporter, err := export.NewService(export.ServiceConfig{Source: attendanceService, Uploader: client})
	if err != nil {
		t.Fatalf("failed to build exporter: %v", err)
	}

	handler, err := NewHTTPHandler(Dependencies{
		Verifier:   allowAllVerifier{},
		Events:     eventService,
		Roster:     rosterService,
		Attendance: attendanceService,
		Settings:   store,
		Exporter:   exporter,
		Client:     client,
		Clock:      clock,
	})
	if err != nil {
		t.Fatalf("failed to build handler: %v", err)
	}

	return &testHarness{
		handler:    handler,
		client:     client,
		db:         db,
		events:     eventService,
		roster:     rosterService,
		attendance: attendanceService,
		settings:   store,
	}
}

func (h *testHarness) post(t *testing.T, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	encoded, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}
	request := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(encoded))
	request.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	h.handler.ServeHTTP(recorder, request)
	return recorder
}

func (h *testHarness) interact(t *testing.T, interaction platform.Interaction) *httptest.ResponseRecorder {
	t.Helper()
	return h.post(t, "/callbacks/interactions", interaction)
}

func (h *testHarness) seedEvent(t *testing.T, category events.Category, lockTime time.Time) events.Event {
	t.Helper()
	event := events.Event{
		Name:      "Tuesday practice",
		StartTime: testNow.Add(48 * time.Hour),
		EndTime:   testNow.Add(50 * time.Hour),
		LockTime:  lockTime,
		Category:  category,
	}
	if err := h.db.Create(&event).Error; err != nil {
		t.Fatalf("failed to seed event: %v", err)
	}
	return event
}

func (h *testHarness) seedUser(t *testing.T, userID, name string) {
	t.Helper()
	if err := h.db.Create(&roster.User{UserID: userID, Name: name, Category: roster.CategoryOpen}).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
}
