package layout

import "github.com/evanschultz/dockyard/internal/domain"

// PanelFrame is the on-screen rectangle of one panel.
type PanelFrame struct {
	ID     domain.PanelID
	Bounds domain.Rect
}

// ColumnFrame is the on-screen rectangle of one column and its panels.
type ColumnFrame struct {
	Index  int
	Bounds domain.Rect
	Panels []PanelFrame
}

// Frame is the geometry of a layout inside a viewport.
type Frame struct {
	Viewport domain.Rect
	Columns  []ColumnFrame
}

// ComputeFrame lays columns out at equal widths and stacks panels top to bottom.
// Panel heights follow size in proportion to the larger of column capacity and total size.
func ComputeFrame(l domain.Layout, viewport domain.Rect) Frame {
	f := Frame{Viewport: viewport}
	if viewport.Empty() || len(l.Columns) == 0 {
		return f
	}
	width := viewport.W / float64(len(l.Columns))
	f.Columns = make([]ColumnFrame, 0, len(l.Columns))
	for ci, col := range l.Columns {
		cf := ColumnFrame{
			Index:  col.Index,
			Bounds: domain.Rect{X: viewport.X + width*float64(ci), Y: viewport.Y, W: width, H: viewport.H},
			Panels: make([]PanelFrame, 0, len(col.Panels)),
		}
		total := max(col.Capacity, col.TotalSize())
		y := viewport.Y
		for _, p := range col.Panels {
			h := viewport.H / float64(len(col.Panels))
			if total > 0 {
				h = p.Size * viewport.H / total
			}
			cf.Panels = append(cf.Panels, PanelFrame{
				ID:     p.ID,
				Bounds: domain.Rect{X: cf.Bounds.X, Y: y, W: width, H: h},
			})
			y += h
		}
		f.Columns = append(f.Columns, cf)
	}
	return f
}

// Empty reports whether the frame has no columns.
func (f Frame) Empty() bool {
	return len(f.Columns) == 0
}

// ColumnAt returns the column whose horizontal extent holds x.
func (f Frame) ColumnAt(x float64) (ColumnFrame, bool) {
	for _, c := range f.Columns {
		if c.Bounds.ContainsX(x) {
			return c, true
		}
	}
	return ColumnFrame{}, false
}

// PanelAt returns the panel under p.
func (f Frame) PanelAt(p domain.Point) (domain.PanelID, bool) {
	for _, c := range f.Columns {
		if !c.Bounds.ContainsX(p.X) {
			continue
		}
		for _, pf := range c.Panels {
			if pf.Bounds.Contains(p) {
				return pf.ID, true
			}
		}
	}
	return "", false
}

// PanelBounds returns the rectangle of one panel.
func (f Frame) PanelBounds(id domain.PanelID) (domain.Rect, bool) {
	for _, c := range f.Columns {
		for _, pf := range c.Panels {
			if pf.ID == id {
				return pf.Bounds, true
			}
		}
	}
	return domain.Rect{}, false
}
