package domain

import (
	"math"
	"strings"
)

// PanelID identifies one dockable panel registered by the host.
type PanelID string

// Panel describes one placed panel. Column and Position are maintained by the column store.
type Panel struct {
	ID       PanelID
	Title    string
	Column   int
	Position int
	Size     float64
	MinSize  float64
	Fixed    bool
	Seq      int
}

// PanelInput holds input values for panel construction.
type PanelInput struct {
	ID      PanelID
	Title   string
	Size    float64
	MinSize float64
	Fixed   bool
	Seq     int
}

// NewPanel constructs a panel outside of any column.
func NewPanel(in PanelInput) (Panel, error) {
	in.ID = PanelID(strings.TrimSpace(string(in.ID)))
	in.Title = strings.TrimSpace(in.Title)
	if in.ID == "" {
		return Panel{}, ErrInvalidID
	}
	if !validSize(in.Size) || !validSize(in.MinSize) {
		return Panel{}, ErrInvalidSize
	}
	if in.Title == "" {
		in.Title = string(in.ID)
	}
	if in.Size < in.MinSize {
		in.Size = in.MinSize
	}
	return Panel{
		ID:      in.ID,
		Title:   in.Title,
		Size:    in.Size,
		MinSize: in.MinSize,
		Fixed:   in.Fixed,
		Seq:     in.Seq,
	}, nil
}

// ClampSize bounds size to [MinSize, limit]. A non-positive limit only enforces the minimum.
func (p Panel) ClampSize(size, limit float64) float64 {
	if limit > 0 && size > limit {
		size = limit
	}
	if size < p.MinSize {
		size = p.MinSize
	}
	return size
}

func validSize(v float64) bool {
	return v >= 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
