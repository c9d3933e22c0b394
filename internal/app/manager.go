package app

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/evanschultz/dockyard/internal/domain"
	"github.com/evanschultz/dockyard/internal/layout"
)

// ManagerConfig holds configuration for the layout manager.
type ManagerConfig struct {
	Slot             string
	Capacity         float64
	DefaultPanelSize float64
	MinPanelSize     float64
	MigrationPolicy  layout.MigrationPolicy
	TieBreak         layout.TieBreak
	DragThreshold    float64
	Autosave         bool
	// CapacityFromViewport ties column capacity to the viewport height.
	CapacityFromViewport bool
}

// DefaultManagerConfig returns the defaults of a fresh install.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		Slot:             DefaultSlot,
		Capacity:         600,
		DefaultPanelSize: 200,
		MinPanelSize:     100,
		MigrationPolicy:  layout.MigrateLeft,
		TieBreak:         layout.TieLater,
		DragThreshold:    1,
	}
}

// PanelSpec describes one panel a host registers.
type PanelSpec struct {
	ID      domain.PanelID
	Title   string
	Size    float64
	MinSize float64
	Fixed   bool
	// Column is where a new panel is appended; out-of-range values fall back to column 0.
	Column int
}

// Option customizes a manager.
type Option func(*Manager)

// WithLogger routes manager logs to logger.
func WithLogger(logger Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.log = logger
		}
	}
}

// WithViewport sets the initial viewport.
func WithViewport(r domain.Rect) Option {
	return func(m *Manager) {
		m.viewport = r
	}
}

// Manager owns one layout and mediates every host interaction with it.
// It is not safe for concurrent use; adapters serialize calls.
type Manager struct {
	host       PanelHost
	store      LayoutStore
	cfg        ManagerConfig
	log        Logger
	columns    *layout.Store
	drag       *layout.DragController
	resize     *layout.ResizeController
	serializer *layout.Serializer
	queue      layout.EventQueue
	registry   map[domain.PanelID]domain.Panel
	nextSeq    int
	viewport   domain.Rect
	closed     bool
}

// NewManager constructs a manager holding the default single-column layout.
func NewManager(host PanelHost, store LayoutStore, cfg ManagerConfig, opts ...Option) (*Manager, error) {
	if host == nil {
		host = NopHost{}
	}
	slot, err := NormalizeSlot(cfg.Slot)
	if err != nil {
		return nil, fmt.Errorf("slot %q: %w", cfg.Slot, err)
	}
	cfg.Slot = slot
	policy, err := layout.ParseMigrationPolicy(string(cfg.MigrationPolicy))
	if err != nil {
		return nil, err
	}
	tie, err := layout.ParseTieBreak(string(cfg.TieBreak))
	if err != nil {
		return nil, err
	}
	cfg.MigrationPolicy, cfg.TieBreak = policy, tie
	if cfg.Capacity < 0 || cfg.DefaultPanelSize < 0 || cfg.MinPanelSize < 0 || cfg.DragThreshold < 0 {
		return nil, domain.ErrInvalidSize
	}

	m := &Manager{
		host:     host,
		store:    store,
		cfg:      cfg,
		log:      nopLogger{},
		registry: map[domain.PanelID]domain.Panel{},
	}
	for _, opt := range opts {
		opt(m)
	}
	m.columns = layout.NewStore(layout.StoreOptions{Capacity: cfg.Capacity, Policy: cfg.MigrationPolicy})
	if cfg.CapacityFromViewport && m.viewport.H > 0 {
		m.columns.SetCapacity(m.viewport.H)
	}
	m.drag = layout.NewDragController(m.columns, m.Frame, layout.DragOptions{
		TieBreak:  cfg.TieBreak,
		Threshold: cfg.DragThreshold,
		OnCandidate: func(s layout.DragSession) {
			m.log.Debug("drop candidate changed", "panel", s.PanelID, "column", s.Candidate.Column, "index", s.Candidate.Index)
		},
	})
	m.resize = layout.NewResizeController(m.columns)
	m.serializer = layout.NewSerializer(m.resolvePanel)
	return m, nil
}

// Config returns the effective configuration.
func (m *Manager) Config() ManagerConfig {
	return m.cfg
}

// Close finalizes the manager, saving first when autosave is enabled.
func (m *Manager) Close(ctx context.Context) Status {
	if m.closed {
		return Status{Op: "close", Level: LevelOK, Message: "already closed"}
	}
	m.cancelGestures()
	var st Status
	if m.cfg.Autosave && m.store != nil {
		st = m.SaveLayout(ctx)
		st.Op = "close"
	} else {
		st = Status{Op: "close", Level: LevelOK, Message: "closed"}
	}
	m.closed = true
	m.log.Info("layout manager closed", "autosave", m.cfg.Autosave, "level", st.Level)
	return st
}

// RegisterPanel places a new panel at the end of its requested column.
func (m *Manager) RegisterPanel(spec PanelSpec) Status {
	const op = "register_panel"
	if m.closed {
		return m.fail(op, ErrClosed)
	}
	if spec.Size == 0 {
		spec.Size = m.cfg.DefaultPanelSize
	}
	if spec.MinSize == 0 {
		spec.MinSize = m.cfg.MinPanelSize
	}
	panel, err := domain.NewPanel(domain.PanelInput{
		ID:      spec.ID,
		Title:   spec.Title,
		Size:    spec.Size,
		MinSize: spec.MinSize,
		Fixed:   spec.Fixed,
		Seq:     m.nextSeq,
	})
	if err != nil {
		return m.fail(op, err)
	}
	if _, exists := m.registry[panel.ID]; exists {
		return m.fail(op, fmt.Errorf("register %q: %w", panel.ID, domain.ErrDuplicatePanel))
	}
	column := spec.Column
	if column < 0 || column >= m.columns.ColumnCount() {
		column = 0
	}
	if err := m.columns.InsertPanel(panel, column); err != nil {
		return m.fail(op, err)
	}
	m.registry[panel.ID] = panel
	m.nextSeq++
	m.renderColumns(column)
	return m.ok(op, fmt.Sprintf("registered %s", panel.Title), "panel", panel.ID, "column", column)
}

// UnregisterPanel removes a panel; its column survives.
func (m *Manager) UnregisterPanel(id domain.PanelID) Status {
	const op = "unregister_panel"
	if s, ok := m.drag.Session(); ok && s.PanelID == id {
		m.drag.Cancel()
	}
	if active, ok := m.resize.Active(); ok && active == id {
		m.resize.CancelResize()
	}
	panel, err := m.columns.RemovePanel(id)
	if err != nil {
		return m.fail(op, err)
	}
	delete(m.registry, id)
	m.renderColumns(panel.Column)
	return m.ok(op, fmt.Sprintf("unregistered %s", panel.Title), "panel", id)
}

// Panels returns registered panels in registration order.
func (m *Manager) Panels() []domain.Panel {
	out := make([]domain.Panel, 0, len(m.registry))
	for _, p := range m.registry {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b domain.Panel) int {
		return cmp.Compare(a.Seq, b.Seq)
	})
	return out
}

// AddColumn appends an empty column.
func (m *Manager) AddColumn() Status {
	const op = "add_column"
	if err := m.columns.CheckAddColumn(); err != nil {
		return m.fail(op, err)
	}
	m.cancelGestures()
	idx, err := m.columns.AddColumn()
	if err != nil {
		return m.fail(op, err)
	}
	m.renderAll()
	return m.ok(op, fmt.Sprintf("added column %d of %d", idx+1, domain.MaxColumns), "columns", m.columns.ColumnCount())
}

// RemoveColumn removes the last column.
func (m *Manager) RemoveColumn() Status {
	return m.RemoveColumnAt(m.columns.ColumnCount() - 1)
}

// RemoveColumnAt removes one column and migrates its panels.
func (m *Manager) RemoveColumnAt(index int) Status {
	const op = "remove_column"
	if err := m.columns.CheckRemoveColumn(index); err != nil {
		return m.fail(op, err)
	}
	m.cancelGestures()
	if err := m.columns.RemoveColumn(index); err != nil {
		return m.fail(op, err)
	}
	m.renderAll()
	return m.ok(op, fmt.Sprintf("removed column %d", index+1), "columns", m.columns.ColumnCount(), "policy", m.cfg.MigrationPolicy)
}

// ResetLayout collapses every panel into a single column.
func (m *Manager) ResetLayout() Status {
	const op = "reset_layout"
	m.cancelGestures()
	m.columns.ResetToDefault()
	m.renderAll()
	return m.ok(op, "layout reset to default", "panels", len(m.registry))
}

// MovePanel relocates a panel without a pointer gesture.
func (m *Manager) MovePanel(id domain.PanelID, column, index int) Status {
	const op = "move_panel"
	if err := m.columns.CheckMovePanel(id, column, index); err != nil {
		return m.fail(op, err)
	}
	from, _, _ := m.columns.Locate(id)
	m.cancelGestures()
	if err := m.columns.MovePanel(id, column, index); err != nil {
		return m.fail(op, err)
	}
	m.renderColumns(from, column)
	return m.ok(op, fmt.Sprintf("moved %s to column %d", m.title(id), column+1), "panel", id, "column", column, "index", index)
}

// Layout returns a deep copy of the current layout.
func (m *Manager) Layout() domain.Layout {
	return m.columns.Snapshot()
}

// Frame returns the layout geometry inside the current viewport.
func (m *Manager) Frame() layout.Frame {
	return layout.ComputeFrame(m.columns.Snapshot(), m.viewport)
}

// Viewport returns the current viewport.
func (m *Manager) Viewport() domain.Rect {
	return m.viewport
}

// SetViewport updates the host geometry used for hit testing.
func (m *Manager) SetViewport(r domain.Rect) {
	if r == m.viewport {
		return
	}
	m.viewport = r
	if m.cfg.CapacityFromViewport && r.H > 0 {
		m.columns.SetCapacity(r.H)
		m.renderAll()
		return
	}
	m.host.RequestRedraw()
}

func (m *Manager) resolvePanel(id domain.PanelID) (domain.Panel, bool) {
	p, ok := m.registry[id]
	return p, ok
}

func (m *Manager) title(id domain.PanelID) string {
	if p, ok := m.registry[id]; ok {
		return p.Title
	}
	return string(id)
}

func (m *Manager) cancelGestures() {
	if m.drag.Cancel() {
		m.log.Debug("drag cancelled by structural change")
	}
	if m.resize.CancelResize() {
		m.log.Debug("resize cancelled by structural change")
	}
}

func (m *Manager) renderColumns(indices ...int) {
	seen := map[int]struct{}{}
	for _, idx := range indices {
		if _, dup := seen[idx]; dup {
			continue
		}
		seen[idx] = struct{}{}
		if col, ok := m.columns.Column(idx); ok {
			m.host.RenderColumn(idx, col)
		}
	}
	m.host.RequestRedraw()
}

func (m *Manager) renderAll() {
	for idx := 0; idx < m.columns.ColumnCount(); idx++ {
		col, _ := m.columns.Column(idx)
		m.host.RenderColumn(idx, col)
	}
	m.host.RequestRedraw()
}

func (m *Manager) ok(op, message string, keyvals ...any) Status {
	st := Status{Op: op, Level: LevelOK, Message: message}
	m.log.Info(message, append([]any{"op", op}, keyvals...)...)
	m.host.ShowStatus(st)
	return st
}

func (m *Manager) warn(op, message string, err error, warnings []string) Status {
	st := Status{Op: op, Level: LevelWarning, Message: message, Err: err, Warnings: warnings}
	keyvals := []any{"op", op, "warnings", len(warnings)}
	if err != nil {
		keyvals = append(keyvals, "err", err)
	}
	m.log.Warn(message, keyvals...)
	for _, w := range warnings {
		m.log.Debug("layout warning", "op", op, "detail", w)
	}
	m.host.ShowStatus(st)
	return st
}

func (m *Manager) fail(op string, err error) Status {
	st := Status{Op: op, Level: LevelError, Message: statusMessage(err), Err: err}
	switch ErrorCode(err) {
	case "internal", "closed":
		m.log.Error("operation failed", "op", op, "err", err)
	default:
		m.log.Warn("operation refused", "op", op, "code", ErrorCode(err), "err", err)
	}
	m.host.ShowStatus(st)
	return st
}

// describeWarnings renders load warnings as status lines.
func describeWarnings(in []layout.LoadWarning) []string {
	out := make([]string, 0, len(in))
	for _, w := range in {
		out = append(out, strings.TrimSpace(w.String()))
	}
	return out
}
