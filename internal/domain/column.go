package domain

// MaxColumns and MinColumns bound the number of columns in a layout.
const (
	MaxColumns = 8
	MinColumns = 1
)

// Column represents one ordered container of panels.
type Column struct {
	Index    int
	Panels   []Panel
	Capacity float64
}

// Len returns the number of panels in the column.
func (c Column) Len() int {
	return len(c.Panels)
}

// TotalSize returns the summed size of all panels.
func (c Column) TotalSize() float64 {
	total := 0.0
	for _, p := range c.Panels {
		total += p.Size
	}
	return total
}

// IndexOf returns the position of id, or -1.
func (c Column) IndexOf(id PanelID) int {
	for idx, p := range c.Panels {
		if p.ID == id {
			return idx
		}
	}
	return -1
}

// Clone deep-copies the column.
func (c Column) Clone() Column {
	out := c
	out.Panels = append([]Panel(nil), c.Panels...)
	return out
}

// Reindex rewrites Column/Position fields so positions are dense.
func (c *Column) Reindex() {
	for idx := range c.Panels {
		c.Panels[idx].Column = c.Index
		c.Panels[idx].Position = idx
	}
}
