// Package layout implements the column store, gesture controllers, and layout serialization.
package layout

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/evanschultz/dockyard/internal/domain"
)

// StoreOptions configures a column store.
type StoreOptions struct {
	// Capacity is the size budget of every column; zero disables fitting.
	Capacity float64
	Policy   MigrationPolicy
}

// Store owns the ordered column list and every panel's column membership.
// It is not safe for concurrent use.
type Store struct {
	columns   []domain.Column
	capacity  float64
	policy    MigrationPolicy
	isDefault bool
}

// NewStore constructs a store holding the default single empty column.
func NewStore(opts StoreOptions) *Store {
	policy, err := ParseMigrationPolicy(string(opts.Policy))
	if err != nil {
		policy = MigrateLeft
	}
	s := &Store{
		capacity: max(opts.Capacity, 0),
		policy:   policy,
	}
	s.reset(nil)
	return s
}

// ColumnCount returns the number of columns.
func (s *Store) ColumnCount() int {
	return len(s.columns)
}

// Capacity returns the per-column size budget.
func (s *Store) Capacity() float64 {
	return s.capacity
}

// Policy returns the column removal migration policy.
func (s *Store) Policy() MigrationPolicy {
	return s.policy
}

// IsDefault reports whether the arrangement is the untouched default layout.
func (s *Store) IsDefault() bool {
	return s.isDefault
}

// Snapshot returns a deep copy of the current layout.
func (s *Store) Snapshot() domain.Layout {
	out := domain.Layout{Default: s.isDefault, Columns: make([]domain.Column, len(s.columns))}
	for idx, col := range s.columns {
		out.Columns[idx] = col.Clone()
	}
	return out
}

// Column returns a copy of one column.
func (s *Store) Column(index int) (domain.Column, bool) {
	if index < 0 || index >= len(s.columns) {
		return domain.Column{}, false
	}
	return s.columns[index].Clone(), true
}

// Locate returns the column and position holding id.
func (s *Store) Locate(id domain.PanelID) (int, int, bool) {
	for ci, col := range s.columns {
		if pos := col.IndexOf(id); pos >= 0 {
			return ci, pos, true
		}
	}
	return -1, -1, false
}

// Panel returns a copy of one placed panel.
func (s *Store) Panel(id domain.PanelID) (domain.Panel, bool) {
	ci, pos, ok := s.Locate(id)
	if !ok {
		return domain.Panel{}, false
	}
	return s.columns[ci].Panels[pos], true
}

// CheckAddColumn reports whether AddColumn would succeed without changing anything.
func (s *Store) CheckAddColumn() error {
	if len(s.columns) >= domain.MaxColumns {
		return domain.ErrMaxColumnsReached
	}
	return nil
}

// AddColumn appends an empty column and returns its index.
func (s *Store) AddColumn() (int, error) {
	if err := s.CheckAddColumn(); err != nil {
		return -1, err
	}
	idx := len(s.columns)
	s.columns = append(s.columns, domain.Column{Index: idx, Capacity: s.capacity})
	s.isDefault = false
	return idx, nil
}

// RemoveColumn deletes one column and migrates its panels according to the policy.
// Migrated panels are appended after the destination's existing panels in their original order.
func (s *Store) RemoveColumn(index int) error {
	if err := s.CheckRemoveColumn(index); err != nil {
		return err
	}
	orphans := s.columns[index].Panels
	s.columns = slices.Delete(s.columns, index, index+1)
	s.renumber()

	dest := 0
	if s.policy == MigrateLeft && index > 0 {
		dest = index - 1
	}
	col := &s.columns[dest]
	col.Panels = append(col.Panels, orphans...)
	col.Reindex()
	fitColumn(col, s.capacity)
	s.isDefault = false
	return nil
}

// CheckRemoveColumn reports whether RemoveColumn(index) would succeed without changing anything.
func (s *Store) CheckRemoveColumn(index int) error {
	if len(s.columns) <= domain.MinColumns {
		return domain.ErrMinColumnsReached
	}
	if index < 0 || index >= len(s.columns) {
		return fmt.Errorf("remove column %d: %w", index, domain.ErrInvalidTarget)
	}
	return nil
}

// RemoveLastColumn removes the rightmost column.
func (s *Store) RemoveLastColumn() error {
	return s.RemoveColumn(len(s.columns) - 1)
}

// MovePanel relocates a panel. targetIndex is interpreted after the panel leaves its source column,
// so the valid range is [0, len(target)] for another column and [0, len(target)-1] for the same column.
func (s *Store) MovePanel(id domain.PanelID, targetColumn, targetIndex int) error {
	if err := s.CheckMovePanel(id, targetColumn, targetIndex); err != nil {
		return err
	}
	srcCol, srcPos, _ := s.Locate(id)
	if targetColumn == srcCol && targetIndex == srcPos {
		return nil
	}

	panel := s.columns[srcCol].Panels[srcPos]
	src := &s.columns[srcCol]
	src.Panels = slices.Delete(src.Panels, srcPos, srcPos+1)
	dst := &s.columns[targetColumn]
	dst.Panels = slices.Insert(dst.Panels, targetIndex, panel)
	src.Reindex()
	dst.Reindex()
	if srcCol != targetColumn {
		fitColumn(src, s.capacity)
		fitColumn(dst, s.capacity)
	}
	s.isDefault = false
	return nil
}

// CheckMovePanel validates a MovePanel call without changing anything.
func (s *Store) CheckMovePanel(id domain.PanelID, targetColumn, targetIndex int) error {
	srcCol, _, ok := s.Locate(id)
	if !ok {
		return fmt.Errorf("move panel %q: %w", id, domain.ErrUnknownPanel)
	}
	if targetColumn < 0 || targetColumn >= len(s.columns) {
		return fmt.Errorf("move panel %q to column %d: %w", id, targetColumn, domain.ErrInvalidTarget)
	}
	limit := len(s.columns[targetColumn].Panels)
	if targetColumn == srcCol {
		limit--
	}
	if targetIndex < 0 || targetIndex > limit {
		return fmt.Errorf("move panel %q to index %d: %w", id, targetIndex, domain.ErrInvalidTarget)
	}
	return nil
}

// InsertPanel appends a new panel to the end of a column.
func (s *Store) InsertPanel(panel domain.Panel, column int) error {
	if _, _, ok := s.Locate(panel.ID); ok {
		return fmt.Errorf("insert panel %q: %w", panel.ID, domain.ErrDuplicatePanel)
	}
	if column < 0 || column >= len(s.columns) {
		return fmt.Errorf("insert panel %q into column %d: %w", panel.ID, column, domain.ErrInvalidTarget)
	}
	panel.Size = panel.ClampSize(panel.Size, s.capacity)
	col := &s.columns[column]
	col.Panels = append(col.Panels, panel)
	col.Reindex()
	fitColumn(col, s.capacity)
	return nil
}

// RemovePanel detaches one panel and returns it.
func (s *Store) RemovePanel(id domain.PanelID) (domain.Panel, error) {
	ci, pos, ok := s.Locate(id)
	if !ok {
		return domain.Panel{}, fmt.Errorf("remove panel %q: %w", id, domain.ErrUnknownPanel)
	}
	col := &s.columns[ci]
	panel := col.Panels[pos]
	col.Panels = slices.Delete(col.Panels, pos, pos+1)
	col.Reindex()
	fitColumn(col, s.capacity)
	return panel, nil
}

// ResetToDefault collapses every panel into a single column ordered by registration sequence.
func (s *Store) ResetToDefault() {
	var panels []domain.Panel
	for _, col := range s.columns {
		panels = append(panels, col.Panels...)
	}
	slices.SortStableFunc(panels, func(a, b domain.Panel) int {
		return cmp.Compare(a.Seq, b.Seq)
	})
	s.reset(panels)
}

// Restore replaces the arrangement with l after validating it.
// Panels keep their sizes; callers fit afterwards when needed.
func (s *Store) Restore(l domain.Layout) error {
	if len(l.Columns) < domain.MinColumns || len(l.Columns) > domain.MaxColumns {
		return fmt.Errorf("restore %d columns: %w", len(l.Columns), domain.ErrCorruptLayout)
	}
	seen := map[domain.PanelID]struct{}{}
	columns := make([]domain.Column, len(l.Columns))
	for ci, col := range l.Columns {
		if col.Index != ci {
			return fmt.Errorf("restore column %d has index %d: %w", ci, col.Index, domain.ErrCorruptLayout)
		}
		for pos, p := range col.Panels {
			if p.ID == "" {
				return fmt.Errorf("restore column %d: %w", ci, domain.ErrInvalidID)
			}
			if _, dup := seen[p.ID]; dup {
				return fmt.Errorf("restore panel %q: %w", p.ID, domain.ErrDuplicatePanel)
			}
			seen[p.ID] = struct{}{}
			if p.Column != ci || p.Position != pos {
				return fmt.Errorf("restore panel %q at %d/%d: %w", p.ID, ci, pos, domain.ErrCorruptLayout)
			}
		}
		columns[ci] = col.Clone()
		columns[ci].Capacity = s.capacity
	}
	s.columns = columns
	s.isDefault = l.Default
	return nil
}

// FitAll fits every column to capacity.
func (s *Store) FitAll() {
	for idx := range s.columns {
		fitColumn(&s.columns[idx], s.capacity)
	}
}

// SetCapacity rescales every column to a new budget, keeping relative sizes.
func (s *Store) SetCapacity(capacity float64) {
	capacity = max(capacity, 0)
	if capacity == s.capacity {
		return
	}
	ratio := 0.0
	if s.capacity > 0 && capacity > 0 {
		ratio = capacity / s.capacity
	}
	s.capacity = capacity
	for ci := range s.columns {
		col := &s.columns[ci]
		col.Capacity = capacity
		if ratio > 0 {
			for pos := range col.Panels {
				p := &col.Panels[pos]
				p.Size = p.ClampSize(p.Size*ratio, capacity)
			}
		}
		fitColumn(col, capacity)
	}
}

func (s *Store) reset(panels []domain.Panel) {
	col := domain.Column{Index: 0, Capacity: s.capacity, Panels: panels}
	col.Reindex()
	fitColumn(&col, s.capacity)
	s.columns = []domain.Column{col}
	s.isDefault = true
}

func (s *Store) renumber() {
	for idx := range s.columns {
		s.columns[idx].Index = idx
		s.columns[idx].Reindex()
	}
}
