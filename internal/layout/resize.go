package layout

import (
	"fmt"
	"math"

	"github.com/evanschultz/dockyard/internal/domain"
)

type resizeSession struct {
	panelID domain.PanelID
	column  int
	before  domain.Column
	// wasDefault is the layout's default flag when the gesture began.
	wasDefault bool
}

// ResizeController adjusts one panel's size and rebalances its flexible siblings.
type ResizeController struct {
	store   *Store
	session *resizeSession
}

// NewResizeController constructs a resize controller over store.
func NewResizeController(store *Store) *ResizeController {
	return &ResizeController{store: store}
}

// Active returns the panel being resized.
func (r *ResizeController) Active() (domain.PanelID, bool) {
	if r.session == nil {
		return "", false
	}
	return r.session.panelID, true
}

// BeginResize starts a gesture for id. A gesture on another panel is finalized first.
func (r *ResizeController) BeginResize(id domain.PanelID) error {
	col, _, ok := r.store.Locate(id)
	if !ok {
		return fmt.Errorf("begin resize %q: %w", id, domain.ErrUnknownPanel)
	}
	if r.session != nil && r.session.panelID == id && r.session.column == col {
		return nil
	}
	r.session = &resizeSession{
		panelID:    id,
		column:     col,
		before:     r.store.columns[col].Clone(),
		wasDefault: r.store.isDefault,
	}
	return nil
}

// UpdateResize applies delta to id's size and returns the clamped result.
// The upper bound is the current size plus unused capacity plus what flexible siblings can give above their minimums.
// Flexible siblings absorb the change proportionally to their sizes at gesture start, so the column
// keeps its pre-gesture total. Siblings only give up more once that total is clamped to capacity or
// they are pinned at their minimums.
func (r *ResizeController) UpdateResize(id domain.PanelID, delta float64) (float64, error) {
	if math.IsNaN(delta) || math.IsInf(delta, 0) {
		return 0, fmt.Errorf("resize %q by %v: %w", id, delta, domain.ErrInvalidSize)
	}
	if err := r.BeginResize(id); err != nil {
		r.session = nil
		return 0, err
	}
	ci, pos, _ := r.store.Locate(id)
	col := &r.store.columns[ci]
	panel := col.Panels[pos]
	capacity := r.store.capacity
	if capacity <= 0 {
		size := panel.ClampSize(panel.Size+delta, 0)
		col.Panels[pos].Size = size
		r.store.isDefault = false
		return size, nil
	}

	fixedOthers, flexTotal, flexFloor := 0.0, 0.0, 0.0
	flex := make([]int, 0, len(col.Panels))
	for idx, p := range col.Panels {
		if idx == pos {
			continue
		}
		if p.Fixed {
			fixedOthers += p.Size
			continue
		}
		flex = append(flex, idx)
		flexTotal += p.Size
		flexFloor += p.MinSize
	}
	unused := max(capacity-col.TotalSize(), 0)
	upper := panel.Size + unused + max(flexTotal-flexFloor, 0)
	size := min(panel.Size+delta, upper, capacity)
	size = max(size, panel.MinSize)
	col.Panels[pos].Size = size
	r.store.isDefault = false

	if len(flex) > 0 {
		weights := make([]float64, len(flex))
		mins := make([]float64, len(flex))
		for k, idx := range flex {
			p := col.Panels[idx]
			weights[k] = p.Size
			if at := r.session.before.IndexOf(p.ID); at >= 0 {
				weights[k] = r.session.before.Panels[at].Size
			}
			mins[k] = p.MinSize
		}
		total := min(r.session.before.TotalSize(), capacity)
		sizes := distribute(total-size-fixedOthers, weights, mins)
		for k, idx := range flex {
			col.Panels[idx].Size = sizes[k]
		}
	}
	return size, nil
}

// EndResize finalizes the gesture. Ending an inactive gesture reports false without error.
func (r *ResizeController) EndResize(id domain.PanelID) (bool, error) {
	if r.session == nil || r.session.panelID != id {
		return false, nil
	}
	r.session = nil
	if _, _, ok := r.store.Locate(id); !ok {
		return true, fmt.Errorf("end resize %q: %w", id, domain.ErrUnknownPanel)
	}
	return true, nil
}

// CancelResize restores the column to its state before the gesture.
func (r *ResizeController) CancelResize() bool {
	s := r.session
	if s == nil {
		return false
	}
	r.session = nil
	if s.column >= len(r.store.columns) {
		return false
	}
	current := r.store.columns[s.column]
	if len(current.Panels) != len(s.before.Panels) {
		return false
	}
	for idx, p := range current.Panels {
		if p.ID != s.before.Panels[idx].ID {
			return false
		}
	}
	restored := s.before.Clone()
	restored.Capacity = current.Capacity
	r.store.columns[s.column] = restored
	r.store.isDefault = s.wasDefault
	return true
}
