package app

import (
	"fmt"

	"github.com/evanschultz/dockyard/internal/domain"
	"github.com/evanschultz/dockyard/internal/layout"
)

// BeginDrag starts dragging id from pos.
func (m *Manager) BeginDrag(id domain.PanelID, pos domain.Point) bool {
	if m.closed || !m.drag.BeginDrag(id, pos) {
		return false
	}
	m.log.Debug("drag started", "panel", id)
	m.host.RequestRedraw()
	return true
}

// PointerMoved feeds pointer motion into an active drag.
func (m *Manager) PointerMoved(pos domain.Point) bool {
	if !m.drag.PointerMoved(pos) {
		return false
	}
	m.host.RequestRedraw()
	return true
}

// EndDrag commits the drop candidate of the active drag.
func (m *Manager) EndDrag() Status {
	const op = "end_drag"
	res, err := m.drag.EndDrag()
	if err != nil {
		m.host.RequestRedraw()
		return m.fail(op, err)
	}
	if !res.Moved {
		m.host.RequestRedraw()
		return Status{Op: op, Level: LevelOK, Message: "panel not moved"}
	}
	m.renderColumns(res.From.Column, res.To.Column)
	return m.ok(op, fmt.Sprintf("moved %s to column %d", m.title(res.PanelID), res.To.Column+1),
		"panel", res.PanelID, "column", res.To.Column, "index", res.To.Index)
}

// CancelDrag abandons the active drag.
func (m *Manager) CancelDrag() bool {
	if !m.drag.Cancel() {
		return false
	}
	m.host.RequestRedraw()
	return true
}

// DragSession returns the active drag session.
func (m *Manager) DragSession() (layout.DragSession, bool) {
	return m.drag.Session()
}

// BeginResize starts a resize gesture on id.
func (m *Manager) BeginResize(id domain.PanelID) error {
	if err := m.resize.BeginResize(id); err != nil {
		m.fail("begin_resize", err)
		return err
	}
	return nil
}

// UpdateResize applies delta and returns the panel's resulting size.
func (m *Manager) UpdateResize(id domain.PanelID, delta float64) (float64, error) {
	size, err := m.resize.UpdateResize(id, delta)
	if err != nil {
		m.fail("update_resize", err)
		return 0, err
	}
	col, _, _ := m.columns.Locate(id)
	m.renderColumns(col)
	return size, nil
}

// EndResize finalizes the resize gesture on id; repeated calls are no-ops.
func (m *Manager) EndResize(id domain.PanelID) (bool, error) {
	ended, err := m.resize.EndResize(id)
	if err != nil {
		m.fail("end_resize", err)
		return ended, err
	}
	if ended {
		p, _ := m.columns.Panel(id)
		m.log.Info("panel resized", "panel", id, "size", p.Size)
	}
	return ended, nil
}

// CancelResize restores the column touched by the active resize.
func (m *Manager) CancelResize() bool {
	id, active := m.resize.Active()
	if !active {
		return false
	}
	col, _, _ := m.columns.Locate(id)
	restored := m.resize.CancelResize()
	m.renderColumns(col)
	return restored
}

// Enqueue buffers a gesture until the next Flush.
func (m *Manager) Enqueue(ev layout.GestureEvent) {
	m.queue.Push(ev)
}

// Pending returns the number of buffered gestures.
func (m *Manager) Pending() int {
	return m.queue.Len()
}

// Flush dispatches buffered gestures in arrival order and returns the final status of any
// committed drop.
func (m *Manager) Flush() (Status, bool) {
	var (
		last      Status
		committed bool
	)
	for _, ev := range m.queue.Drain() {
		switch ev.Kind {
		case layout.GestureBeginDrag:
			m.BeginDrag(ev.PanelID, ev.Pos)
		case layout.GesturePointerMoved:
			m.PointerMoved(ev.Pos)
		case layout.GestureEndDrag:
			last, committed = m.EndDrag(), true
		case layout.GestureCancelDrag:
			m.CancelDrag()
		case layout.GestureBeginResize:
			_ = m.BeginResize(ev.PanelID)
		case layout.GestureUpdateResize:
			_, _ = m.UpdateResize(ev.PanelID, ev.Delta)
		case layout.GestureEndResize:
			_, _ = m.EndResize(ev.PanelID)
		case layout.GestureCancelResize:
			m.CancelResize()
		default:
			m.log.Warn("unknown gesture dropped", "kind", ev.Kind.String())
		}
	}
	return last, committed
}
