package settings

import (
	"path/filepath"
	"testing"

	"github.com/ultigroup/attendbot/internal/status"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.yaml")
	store, err := NewStore(path, nil)
	if err != nil {
		t.Fatalf("failed to construct store: %v", err)
	}
	return store
}

func TestMissingFileYieldsDefaults(t *testing.T) {
	store := newTestStore(t)
	current := store.Current()
	if current.Labels != status.DefaultVocabulary() {
		t.Fatalf("expected default vocabulary, got %+v", current.Labels)
	}
	if current.AdminGroup != "" || current.ExportChannel != "" {
		t.Fatalf("expected empty group ids, got %+v", current)
	}
}

func TestSavePersistsAcrossReload(t *testing.T) {
	store := newTestStore(t)

	updated := store.Current()
	updated.AdminGroup = "G123"
	updated.ExportChannel = "C456"
	updated.Labels.Training.Coming = "Přijdu"
	if err := store.Save(updated); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	if err := store.Reload(); err != nil {
		t.Fatalf("failed to reload: %v", err)
	}
	current := store.Current()
	if current.AdminGroup != "G123" {
		t.Fatalf("unexpected admin group: %q", current.AdminGroup)
	}
	if current.ExportChannel != "C456" {
		t.Fatalf("unexpected export channel: %q", current.ExportChannel)
	}
	if current.Labels.Training.Coming != "Přijdu" {
		t.Fatalf("unexpected training label: %q", current.Labels.Training.Coming)
	}
	if current.Labels.Other.Coming != "Coming" {
		t.Fatalf("untouched label should keep its default, got %q", current.Labels.Other.Coming)
	}
}

func TestSaveSwapsWholeSnapshot(t *testing.T) {
	store := newTestStore(t)
	before := store.Current()

	updated := before
	updated.Labels.Other.Late = "Delayed"
	if err := store.Save(updated); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	if before.Labels.Other.Late != "Late" {
		t.Fatalf("prior snapshot mutated: %+v", before)
	}
	if store.Current().Labels.Other.Late != "Delayed" {
		t.Fatalf("new snapshot not visible")
	}
}

func TestNewStoreRequiresPath(t *testing.T) {
	if _, err := NewStore("  ", nil); err == nil {
		t.Fatalf("expected error for blank path")
	}
}
