// Package common provides transport-agnostic server contracts used by HTTP and MCP adapters.
package common

import (
	"context"
	"errors"
	"time"

	"github.com/evanschultz/dockyard/internal/app"
	"github.com/evanschultz/dockyard/internal/domain"
)

// ErrInvalidRequest reports malformed transport input.
var ErrInvalidRequest = errors.New("invalid request")

// LayoutService is the operation set both transports expose.
type LayoutService interface {
	DescribeLayout(context.Context, DescribeLayoutRequest) (LayoutView, error)
	AddColumn(context.Context) (OperationResult, error)
	RemoveColumn(context.Context, RemoveColumnRequest) (OperationResult, error)
	ResetLayout(context.Context) (OperationResult, error)
	MovePanel(context.Context, MovePanelRequest) (OperationResult, error)
	SaveLayout(context.Context) (OperationResult, error)
	LoadLayout(context.Context) (OperationResult, error)
	ListSlots(context.Context) ([]SlotView, error)
}

// DescribeLayoutRequest selects the describe output.
type DescribeLayoutRequest struct {
	// Markdown adds the rendered markdown summary to the view.
	Markdown bool `json:"markdown,omitempty"`
}

// RemoveColumnRequest removes the column at Index, or the last column when Index is nil.
type RemoveColumnRequest struct {
	Index *int `json:"index,omitempty"`
}

// MovePanelRequest moves one panel. Index counts positions after the panel leaves its column.
type MovePanelRequest struct {
	PanelID string `json:"panel_id"`
	Column  int    `json:"column"`
	Index   int    `json:"index"`
}

// PanelView is the transport shape of one panel.
type PanelView struct {
	ID      string  `json:"id"`
	Title   string  `json:"title,omitempty"`
	Size    float64 `json:"size"`
	MinSize float64 `json:"min_size"`
	Fixed   bool    `json:"fixed,omitempty"`
}

// ColumnView is the transport shape of one column.
type ColumnView struct {
	Index  int         `json:"index"`
	Panels []PanelView `json:"panels"`
}

// LayoutView is the transport shape of the full arrangement.
type LayoutView struct {
	Slot       string       `json:"slot"`
	Default    bool         `json:"default"`
	MaxColumns int          `json:"max_columns"`
	Columns    []ColumnView `json:"columns"`
	Markdown   string       `json:"markdown,omitempty"`
}

// OperationResult reports one successful mutation and the resulting arrangement.
type OperationResult struct {
	Op       string     `json:"op"`
	Level    string     `json:"level"`
	Message  string     `json:"message"`
	Warnings []string   `json:"warnings,omitempty"`
	Layout   LayoutView `json:"layout"`
}

// SlotView is the transport shape of one saved slot.
type SlotView struct {
	Name    string    `json:"name"`
	Size    int       `json:"size"`
	Version int       `json:"version"`
	SavedAt time.Time `json:"saved_at"`
	SavedBy string    `json:"saved_by,omitempty"`
}

// OperationError carries a failed manager status. It unwraps to the status error
// so callers can map it with app.ErrorCode.
type OperationError struct {
	Status app.Status
}

// Error implements error.
func (e *OperationError) Error() string {
	if e.Status.Err != nil {
		return e.Status.Op + ": " + e.Status.Err.Error()
	}
	return e.Status.Op + ": " + e.Status.Message
}

// Unwrap returns the underlying status error.
func (e *OperationError) Unwrap() error {
	return e.Status.Err
}

// Code returns the stable machine-readable code for the failure.
func (e *OperationError) Code() string {
	return app.ErrorCode(e.Status.Err)
}

// newLayoutView converts a layout snapshot into its transport shape.
func newLayoutView(l domain.Layout, slot string, titles map[domain.PanelID]string) LayoutView {
	out := LayoutView{
		Slot:       slot,
		Default:    l.Default,
		MaxColumns: domain.MaxColumns,
		Columns:    make([]ColumnView, 0, len(l.Columns)),
	}
	for _, col := range l.Columns {
		cv := ColumnView{Index: col.Index, Panels: make([]PanelView, 0, len(col.Panels))}
		for _, p := range col.Panels {
			title := p.Title
			if title == "" {
				title = titles[p.ID]
			}
			cv.Panels = append(cv.Panels, PanelView{
				ID:      string(p.ID),
				Title:   title,
				Size:    p.Size,
				MinSize: p.MinSize,
				Fixed:   p.Fixed,
			})
		}
		out.Columns = append(out.Columns, cv)
	}
	return out
}
