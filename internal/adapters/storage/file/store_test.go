package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/evanschultz/dockyard/internal/app"
)

func TestStoreSaveLoadClear(t *testing.T) {
	ctx := context.Background()
	store, err := New(filepath.Join(t.TempDir(), "layouts"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := store.LoadLayout(ctx, "current"); !errors.Is(err, app.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	payload := []byte(`{"version":1,"columns":[{"panels":[]}]}`)
	if err := store.SaveLayout(ctx, "current", payload); err != nil {
		t.Fatalf("SaveLayout() error = %v", err)
	}
	got, err := store.LoadLayout(ctx, "")
	if err != nil || string(got) != string(payload) {
		t.Fatalf("LoadLayout() = %s, %v", got, err)
	}

	entries, err := os.ReadDir(store.Dir())
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "current.json" {
		t.Fatalf("expected only current.json, got %v", entries)
	}

	if err := store.ClearLayout(ctx, "current"); err != nil {
		t.Fatalf("ClearLayout() error = %v", err)
	}
	if err := store.ClearLayout(ctx, "current"); !errors.Is(err, app.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second clear, got %v", err)
	}
}

func TestStoreListLayouts(t *testing.T) {
	ctx := context.Background()
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := store.SaveLayout(ctx, "work", []byte(`{"version":1}`)); err != nil {
		t.Fatalf("SaveLayout(work) error = %v", err)
	}
	if err := store.SaveLayout(ctx, "art", []byte(`{"0":{"x":0}}`)); err != nil {
		t.Fatalf("SaveLayout(art) error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(store.Dir(), "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	slots, err := store.ListLayouts(ctx)
	if err != nil {
		t.Fatalf("ListLayouts() error = %v", err)
	}
	if len(slots) != 2 || slots[0].Name != "art" || slots[1].Name != "work" {
		t.Fatalf("unexpected slots %#v", slots)
	}
	if slots[0].Version != 0 || slots[1].Version != 1 {
		t.Fatalf("unexpected versions %#v", slots)
	}
}

func TestStoreRejectsBadSlots(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := store.SaveLayout(context.Background(), "../evil", []byte("{}")); !errors.Is(err, app.ErrInvalidSlot) {
		t.Fatalf("expected ErrInvalidSlot, got %v", err)
	}
	if _, err := New("  "); err == nil {
		t.Fatal("expected error for blank dir")
	}
}

func TestStoreLoadsLegacyGeometryFile(t *testing.T) {
	dir := t.TempDir()
	legacy := []byte(`{"0": {"x": 0, "y": 0, "width": 200, "height": 600, "visible": true}}`)
	if err := os.WriteFile(filepath.Join(dir, "panel_layout.json"), legacy, 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	store, err := New(dir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	cfg := app.DefaultManagerConfig()
	cfg.Slot = "panel_layout"
	m, err := app.NewManager(nil, store, cfg)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	m.RegisterPanel(app.PanelSpec{ID: "layers"})

	st := m.LoadLayout(context.Background())
	if st.Level != app.LevelWarning || len(st.Warnings) != 1 {
		t.Fatalf("expected warning for panel missing from the legacy file, got %#v", st)
	}
	if got := m.Layout(); len(got.Columns) != 1 || got.PanelCount() != 1 {
		t.Fatalf("unexpected layout %#v", got)
	}
}

func TestWatcherReportsExternalWrites(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	w, err := store.Watch(ctx)
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	t.Cleanup(func() {
		_ = w.Close()
	})

	if err := store.SaveLayout(ctx, "current", []byte(`{"version":1}`)); err != nil {
		t.Fatalf("SaveLayout() error = %v", err)
	}
	select {
	case change := <-w.Changes():
		t.Fatalf("self write should be suppressed, got %#v", change)
	case <-time.After(250 * time.Millisecond):
	}

	external := []byte(`{"version":1,"columns":[{"panels":[]}]}`)
	if err := os.WriteFile(filepath.Join(store.Dir(), "current.json"), external, 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	select {
	case change := <-w.Changes():
		if change.Slot != "current" || change.Removed {
			t.Fatalf("unexpected change %#v", change)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for external change")
	}
}

func TestWatcherStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	w, err := store.Watch(ctx)
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	cancel()
	select {
	case _, ok := <-w.Changes():
		if ok {
			// Drain a late event; the channel must still close.
			for range w.Changes() {
			}
		}
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not stop")
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
}
