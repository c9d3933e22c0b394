package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/evanschultz/dockyard/internal/app"
	_ "modernc.org/sqlite"
)

// driverName defines a package constant value.
const driverName = "sqlite"

// Repository stores layout documents in named slots.
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (and migrates) the database at path.
func Open(path string) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return newRepository(db)
}

// OpenInMemory opens a private in-memory database.
func OpenInMemory() (*Repository, error) {
	db, err := sql.Open(driverName, ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	// Every pooled connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)
	return newRepository(db)
}

func newRepository(db *sql.DB) (*Repository, error) {
	repo := &Repository{db: db, now: time.Now}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// Close closes the database.
func (r *Repository) Close() error {
	return r.db.Close()
}

// migrate creates the schema and backfills columns added after the first release.
func (r *Repository) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS layouts (
			name TEXT PRIMARY KEY,
			payload TEXT NOT NULL,
			version INTEGER NOT NULL DEFAULT 0,
			saved_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS layout_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			slot TEXT NOT NULL,
			operation TEXT NOT NULL,
			actor TEXT NOT NULL DEFAULT '',
			bytes INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_layout_events_slot_created_at ON layout_events(slot, created_at DESC, id DESC);`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
	}
	if _, err := r.db.ExecContext(ctx, `ALTER TABLE layouts ADD COLUMN saved_by TEXT NOT NULL DEFAULT ''`); err != nil && !isDuplicateColumnErr(err) {
		return fmt.Errorf("migrate sqlite add layouts.saved_by: %w", err)
	}
	return nil
}

// SaveLayout upserts the document stored in slot.
func (r *Repository) SaveLayout(ctx context.Context, slot string, data []byte) error {
	slot, err := app.NormalizeSlot(slot)
	if err != nil {
		return err
	}
	actor, _ := app.ActorFromContext(ctx)
	now := ts(r.now())

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO layouts(name, payload, version, saved_at, saved_by)
		VALUES(?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			payload = excluded.payload,
			version = excluded.version,
			saved_at = excluded.saved_at,
			saved_by = excluded.saved_by
	`, slot, string(data), documentVersion(data), now, actor.Label()); err != nil {
		return fmt.Errorf("save layout %q: %w", slot, err)
	}
	if err := insertLayoutEvent(ctx, tx, slot, "save", actor.Label(), len(data), now); err != nil {
		return err
	}
	return tx.Commit()
}

// LoadLayout returns the document stored in slot or app.ErrNotFound.
func (r *Repository) LoadLayout(ctx context.Context, slot string) ([]byte, error) {
	slot, err := app.NormalizeSlot(slot)
	if err != nil {
		return nil, err
	}
	var payload string
	err = r.db.QueryRowContext(ctx, `SELECT payload FROM layouts WHERE name = ?`, slot).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, app.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load layout %q: %w", slot, err)
	}
	return []byte(payload), nil
}

// ClearLayout deletes slot; a missing slot yields app.ErrNotFound.
func (r *Repository) ClearLayout(ctx context.Context, slot string) error {
	slot, err := app.NormalizeSlot(slot)
	if err != nil {
		return err
	}
	actor, _ := app.ActorFromContext(ctx)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin clear tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `DELETE FROM layouts WHERE name = ?`, slot)
	if err != nil {
		return fmt.Errorf("clear layout %q: %w", slot, err)
	}
	if err := translateNoRows(res); err != nil {
		return err
	}
	if err := insertLayoutEvent(ctx, tx, slot, "clear", actor.Label(), 0, ts(r.now())); err != nil {
		return err
	}
	return tx.Commit()
}

// ListLayouts returns every stored slot ordered by name.
func (r *Repository) ListLayouts(ctx context.Context) ([]app.SlotInfo, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT name, LENGTH(payload), version, saved_at, saved_by
		FROM layouts
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list layouts: %w", err)
	}
	defer rows.Close()

	out := make([]app.SlotInfo, 0)
	for rows.Next() {
		var (
			info     app.SlotInfo
			savedRaw string
		)
		if err := rows.Scan(&info.Name, &info.Size, &info.Version, &savedRaw, &info.SavedBy); err != nil {
			return nil, fmt.Errorf("scan layout row: %w", err)
		}
		info.SavedAt = parseTS(savedRaw)
		out = append(out, info)
	}
	return out, rows.Err()
}

// LayoutEvent is one recorded save or clear.
type LayoutEvent struct {
	ID        int64
	Slot      string
	Operation string
	Actor     string
	Bytes     int
	CreatedAt time.Time
}

// ListLayoutEvents returns the newest events for slot first.
func (r *Repository) ListLayoutEvents(ctx context.Context, slot string, limit int) ([]LayoutEvent, error) {
	slot, err := app.NormalizeSlot(slot)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, slot, operation, actor, bytes, created_at
		FROM layout_events
		WHERE slot = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, slot, limit)
	if err != nil {
		return nil, fmt.Errorf("list layout events: %w", err)
	}
	defer rows.Close()

	out := make([]LayoutEvent, 0)
	for rows.Next() {
		var (
			event      LayoutEvent
			createdRaw string
		)
		if err := rows.Scan(&event.ID, &event.Slot, &event.Operation, &event.Actor, &event.Bytes, &createdRaw); err != nil {
			return nil, fmt.Errorf("scan layout event: %w", err)
		}
		event.CreatedAt = parseTS(createdRaw)
		out = append(out, event)
	}
	return out, rows.Err()
}

// execerContext is the subset of *sql.Tx used by helpers.
type execerContext interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
}

func insertLayoutEvent(ctx context.Context, execer execerContext, slot, operation, actor string, bytes int, createdAt string) error {
	if _, err := execer.ExecContext(ctx, `
		INSERT INTO layout_events(slot, operation, actor, bytes, created_at)
		VALUES(?, ?, ?, ?, ?)
	`, slot, operation, actor, bytes, createdAt); err != nil {
		return fmt.Errorf("insert layout event: %w", err)
	}
	return nil
}

// documentVersion peeks at the version field without validating the document.
func documentVersion(data []byte) int {
	var head struct {
		Version int `json:"version"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return 0
	}
	return head.Version
}

// translateNoRows maps an empty delete to app.ErrNotFound.
func translateNoRows(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return app.ErrNotFound
	}
	return nil
}

func ts(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTS(v string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return ts.UTC()
}

// isDuplicateColumnErr reports whether an ALTER TABLE failed because the column exists.
func isDuplicateColumnErr(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "duplicate column name")
}
