package app

import (
	"context"

	"github.com/evanschultz/dockyard/internal/domain"
)

// PanelHost is the rendering surface that places panels on screen.
type PanelHost interface {
	RenderColumn(int, domain.Column)
	RequestRedraw()
	ShowStatus(Status)
}

// LayoutStore persists encoded layout documents by slot name.
type LayoutStore interface {
	SaveLayout(context.Context, string, []byte) error
	LoadLayout(context.Context, string) ([]byte, error)
	ClearLayout(context.Context, string) error
	ListLayouts(context.Context) ([]SlotInfo, error)
}

// Logger receives structured operation logs.
type Logger interface {
	Debug(msg string, keyvals ...any)
	Info(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)
}

// NopHost discards every host callback.
type NopHost struct{}

// RenderColumn implements PanelHost.
func (NopHost) RenderColumn(int, domain.Column) {}

// RequestRedraw implements PanelHost.
func (NopHost) RequestRedraw() {}

// ShowStatus implements PanelHost.
func (NopHost) ShowStatus(Status) {}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
