package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/evanschultz/dockyard/internal/domain"
)

// SaveLayout encodes the current layout into the configured slot.
func (m *Manager) SaveLayout(ctx context.Context) Status {
	const op = "save_layout"
	if m.store == nil {
		return m.fail(op, errors.New("no layout store configured"))
	}
	data, err := m.ExportLayout()
	if err != nil {
		return m.fail(op, err)
	}
	if err := m.store.SaveLayout(ctx, m.cfg.Slot, data); err != nil {
		return m.fail(op, fmt.Errorf("save slot %q: %w", m.cfg.Slot, err))
	}
	actor, _ := ActorFromContext(ctx)
	return m.ok(op, "layout saved", "slot", m.cfg.Slot, "bytes", len(data), "actor", actor.Label())
}

// LoadLayout restores the configured slot. A missing slot yields the default layout,
// and a corrupt document resets to the default layout with a warning.
func (m *Manager) LoadLayout(ctx context.Context) Status {
	const op = "load_layout"
	if m.store == nil {
		return m.fail(op, errors.New("no layout store configured"))
	}
	data, err := m.store.LoadLayout(ctx, m.cfg.Slot)
	switch {
	case errors.Is(err, ErrNotFound):
		m.cancelGestures()
		m.columns.ResetToDefault()
		m.renderAll()
		return m.ok(op, "no saved layout, using default", "slot", m.cfg.Slot)
	case err != nil:
		return m.fail(op, fmt.Errorf("load slot %q: %w", m.cfg.Slot, err))
	}
	return m.apply(op, data, true)
}

// ClearSavedLayout deletes the configured slot.
func (m *Manager) ClearSavedLayout(ctx context.Context) Status {
	const op = "clear_saved_layout"
	if m.store == nil {
		return m.fail(op, errors.New("no layout store configured"))
	}
	if err := m.store.ClearLayout(ctx, m.cfg.Slot); err != nil && !errors.Is(err, ErrNotFound) {
		return m.fail(op, fmt.Errorf("clear slot %q: %w", m.cfg.Slot, err))
	}
	return m.ok(op, "saved layout cleared", "slot", m.cfg.Slot)
}

// ExportLayout returns the encoded current layout.
func (m *Manager) ExportLayout() ([]byte, error) {
	return m.serializer.Encode(m.columns.Snapshot())
}

// ImportLayout applies an encoded layout. A corrupt document leaves the current layout untouched.
func (m *Manager) ImportLayout(data []byte) Status {
	return m.apply("import_layout", data, false)
}

// apply decodes data and replaces the arrangement. Registered panels absent from the
// document are appended to column 0.
func (m *Manager) apply(op string, data []byte, resetOnCorrupt bool) Status {
	l, loadWarnings, err := m.serializer.Decode(data)
	if err == nil {
		m.cancelGestures()
		err = m.columns.Restore(l)
	}
	if err != nil {
		if resetOnCorrupt && errors.Is(err, domain.ErrCorruptLayout) {
			m.cancelGestures()
			m.columns.ResetToDefault()
			m.renderAll()
			return m.warn(op, "saved layout is corrupt, reset to default", err, nil)
		}
		return m.fail(op, err)
	}

	warnings := describeWarnings(loadWarnings)
	for _, p := range m.Panels() {
		if _, _, placed := m.columns.Locate(p.ID); placed {
			continue
		}
		if err := m.columns.InsertPanel(p, 0); err != nil {
			return m.fail(op, err)
		}
		warnings = append(warnings, fmt.Sprintf("%s: missing from layout, added to column 1", p.ID))
	}
	m.columns.FitAll()
	m.renderAll()
	if len(warnings) > 0 {
		return m.warn(op, "layout restored with warnings", nil, warnings)
	}
	return m.ok(op, "layout restored", "columns", m.columns.ColumnCount())
}

// SavedLayouts lists every slot the store holds.
func (m *Manager) SavedLayouts(ctx context.Context) ([]SlotInfo, error) {
	if m.store == nil {
		return nil, errors.New("no layout store configured")
	}
	slots, err := m.store.ListLayouts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list layouts: %w", err)
	}
	return slots, nil
}
