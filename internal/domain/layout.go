package domain

// Layout is the complete, persistable arrangement of columns and panels.
type Layout struct {
	Columns []Column
	Default bool
}

// Clone deep-copies the layout.
func (l Layout) Clone() Layout {
	out := Layout{Default: l.Default, Columns: make([]Column, len(l.Columns))}
	for idx, c := range l.Columns {
		out.Columns[idx] = c.Clone()
	}
	return out
}

// PanelCount returns the number of panels across all columns.
func (l Layout) PanelCount() int {
	n := 0
	for _, c := range l.Columns {
		n += len(c.Panels)
	}
	return n
}

// PanelIDs returns panel ids in column-major display order.
func (l Layout) PanelIDs() []PanelID {
	out := make([]PanelID, 0, l.PanelCount())
	for _, c := range l.Columns {
		for _, p := range c.Panels {
			out = append(out, p.ID)
		}
	}
	return out
}

// Equal reports whether two layouts hold the same columns, panels, and sizes.
func (l Layout) Equal(other Layout) bool {
	if l.Default != other.Default || len(l.Columns) != len(other.Columns) {
		return false
	}
	for idx := range l.Columns {
		a, b := l.Columns[idx], other.Columns[idx]
		if a.Index != b.Index || len(a.Panels) != len(b.Panels) {
			return false
		}
		for pos := range a.Panels {
			if a.Panels[pos] != b.Panels[pos] {
				return false
			}
		}
	}
	return true
}
