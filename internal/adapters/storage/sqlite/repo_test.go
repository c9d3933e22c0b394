package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/evanschultz/dockyard/internal/app"
	_ "modernc.org/sqlite"
)

func TestRepository_SaveLoadClearLifecycle(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "nested", "dockyard.db")
	repo, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		_ = repo.Close()
	})
	now := time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }

	if _, err := repo.LoadLayout(ctx, "current"); !errors.Is(err, app.ErrNotFound) {
		t.Fatalf("expected ErrNotFound before save, got %v", err)
	}

	first := []byte(`{"version":1,"columns":[{"panels":[]}]}`)
	actorCtx := app.WithActor(ctx, app.Actor{Name: "ana", Surface: app.SurfaceTUI})
	if err := repo.SaveLayout(actorCtx, "current", first); err != nil {
		t.Fatalf("SaveLayout() error = %v", err)
	}
	second := []byte(`{"version":1,"columns":[{"panels":[]},{"panels":[]}]}`)
	if err := repo.SaveLayout(ctx, "current", second); err != nil {
		t.Fatalf("SaveLayout(overwrite) error = %v", err)
	}

	got, err := repo.LoadLayout(ctx, "current")
	if err != nil {
		t.Fatalf("LoadLayout() error = %v", err)
	}
	if string(got) != string(second) {
		t.Fatalf("expected overwritten payload, got %s", got)
	}

	slots, err := repo.ListLayouts(ctx)
	if err != nil {
		t.Fatalf("ListLayouts() error = %v", err)
	}
	if len(slots) != 1 || slots[0].Name != "current" || slots[0].Version != 1 || slots[0].Size != len(second) {
		t.Fatalf("unexpected slots %#v", slots)
	}
	if !slots[0].SavedAt.Equal(now) {
		t.Fatalf("unexpected saved_at %v", slots[0].SavedAt)
	}

	if err := repo.ClearLayout(ctx, "current"); err != nil {
		t.Fatalf("ClearLayout() error = %v", err)
	}
	if err := repo.ClearLayout(ctx, "current"); !errors.Is(err, app.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second clear, got %v", err)
	}

	events, err := repo.ListLayoutEvents(ctx, "current", 10)
	if err != nil {
		t.Fatalf("ListLayoutEvents() error = %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %#v", events)
	}
	if events[0].Operation != "clear" || events[2].Operation != "save" || events[2].Actor != "ana@tui" {
		t.Fatalf("unexpected event order %#v", events)
	}
}

func TestRepository_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "dockyard.db")
	repo, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := repo.SaveLayout(ctx, "work", []byte(`{"version":1}`)); err != nil {
		t.Fatalf("SaveLayout() error = %v", err)
	}
	if err := repo.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := Open(dbPath)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	t.Cleanup(func() {
		_ = reopened.Close()
	})
	got, err := reopened.LoadLayout(ctx, "work")
	if err != nil || string(got) != `{"version":1}` {
		t.Fatalf("LoadLayout() = %s, %v", got, err)
	}
}

func TestRepository_InMemoryAndSlotValidation(t *testing.T) {
	ctx := context.Background()
	repo, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() {
		_ = repo.Close()
	})

	if err := repo.SaveLayout(ctx, "../x", []byte(`{}`)); !errors.Is(err, app.ErrInvalidSlot) {
		t.Fatalf("expected ErrInvalidSlot, got %v", err)
	}
	if err := repo.SaveLayout(ctx, "", []byte(`not json`)); err != nil {
		t.Fatalf("SaveLayout(blank slot) error = %v", err)
	}
	slots, err := repo.ListLayouts(ctx)
	if err != nil {
		t.Fatalf("ListLayouts() error = %v", err)
	}
	if len(slots) != 1 || slots[0].Name != app.DefaultSlot || slots[0].Version != 0 {
		t.Fatalf("unexpected slots %#v", slots)
	}
}

func TestRepository_DrivesManager(t *testing.T) {
	ctx := context.Background()
	repo, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() {
		_ = repo.Close()
	})

	m, err := app.NewManager(nil, repo, app.DefaultManagerConfig())
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	m.RegisterPanel(app.PanelSpec{ID: "layers"})
	m.RegisterPanel(app.PanelSpec{ID: "brushes"})
	m.AddColumn()
	m.MovePanel("brushes", 1, 0)
	want := m.Layout()
	if st := m.SaveLayout(ctx); !st.OK() {
		t.Fatalf("SaveLayout() status = %#v", st)
	}

	m.ResetLayout()
	if st := m.LoadLayout(ctx); !st.OK() {
		t.Fatalf("LoadLayout() status = %#v", st)
	}
	if !want.Equal(m.Layout()) {
		t.Fatalf("unexpected layout after reload %#v", m.Layout())
	}
}

func TestIsDuplicateColumnErr(t *testing.T) {
	if isDuplicateColumnErr(nil) {
		t.Fatal("nil should not match")
	}
	if !isDuplicateColumnErr(errors.New("SQL logic error: duplicate column name: saved_by (1)")) {
		t.Fatal("expected duplicate column match")
	}
}
