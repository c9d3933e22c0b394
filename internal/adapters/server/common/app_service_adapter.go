package common

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/evanschultz/dockyard/internal/app"
	"github.com/evanschultz/dockyard/internal/domain"
)

// AppServiceAdapter maps transport contracts onto one app.Manager.
// The manager is single-threaded, so every call holds mu.
type AppServiceAdapter struct {
	mu      sync.Mutex
	manager *app.Manager
}

// NewAppServiceAdapter builds one adapter over manager.
func NewAppServiceAdapter(manager *app.Manager) *AppServiceAdapter {
	return &AppServiceAdapter{manager: manager}
}

// Do runs fn with exclusive access to the manager. Hosts sharing the manager with
// the server (the TUI) route their own calls through it.
func (a *AppServiceAdapter) Do(fn func(*app.Manager)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fn(a.manager)
}

// DescribeLayout returns the current arrangement.
func (a *AppServiceAdapter) DescribeLayout(_ context.Context, req DescribeLayoutRequest) (LayoutView, error) {
	if a == nil || a.manager == nil {
		return LayoutView{}, fmt.Errorf("app service adapter is not configured: %w", ErrInvalidRequest)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	view := a.viewLocked()
	if req.Markdown {
		view.Markdown = a.manager.DescribeMarkdown()
	}
	return view, nil
}

// AddColumn appends one empty column.
func (a *AppServiceAdapter) AddColumn(_ context.Context) (OperationResult, error) {
	return a.mutate(func(m *app.Manager) app.Status {
		return m.AddColumn()
	})
}

// RemoveColumn removes one column and migrates its panels.
func (a *AppServiceAdapter) RemoveColumn(_ context.Context, req RemoveColumnRequest) (OperationResult, error) {
	return a.mutate(func(m *app.Manager) app.Status {
		if req.Index == nil {
			return m.RemoveColumn()
		}
		return m.RemoveColumnAt(*req.Index)
	})
}

// ResetLayout restores the single-column default arrangement.
func (a *AppServiceAdapter) ResetLayout(_ context.Context) (OperationResult, error) {
	return a.mutate(func(m *app.Manager) app.Status {
		return m.ResetLayout()
	})
}

// MovePanel relocates one panel.
func (a *AppServiceAdapter) MovePanel(_ context.Context, req MovePanelRequest) (OperationResult, error) {
	id := strings.TrimSpace(req.PanelID)
	if id == "" {
		return OperationResult{}, fmt.Errorf("panel_id is required: %w", ErrInvalidRequest)
	}
	return a.mutate(func(m *app.Manager) app.Status {
		return m.MovePanel(domain.PanelID(id), req.Column, req.Index)
	})
}

// SaveLayout persists the arrangement into the configured slot.
func (a *AppServiceAdapter) SaveLayout(ctx context.Context) (OperationResult, error) {
	return a.mutate(func(m *app.Manager) app.Status {
		return m.SaveLayout(ctx)
	})
}

// LoadLayout restores the configured slot.
func (a *AppServiceAdapter) LoadLayout(ctx context.Context) (OperationResult, error) {
	return a.mutate(func(m *app.Manager) app.Status {
		return m.LoadLayout(ctx)
	})
}

// ListSlots lists saved slots.
func (a *AppServiceAdapter) ListSlots(ctx context.Context) ([]SlotView, error) {
	if a == nil || a.manager == nil {
		return nil, fmt.Errorf("app service adapter is not configured: %w", ErrInvalidRequest)
	}
	a.mu.Lock()
	slots, err := a.manager.SavedLayouts(ctx)
	a.mu.Unlock()
	if err != nil {
		return nil, err
	}
	out := make([]SlotView, 0, len(slots))
	for _, s := range slots {
		out = append(out, SlotView{
			Name:    s.Name,
			Size:    s.Size,
			Version: s.Version,
			SavedAt: s.SavedAt,
			SavedBy: s.SavedBy,
		})
	}
	return out, nil
}

// mutate runs one manager operation and converts its status.
func (a *AppServiceAdapter) mutate(fn func(*app.Manager) app.Status) (OperationResult, error) {
	if a == nil || a.manager == nil {
		return OperationResult{}, fmt.Errorf("app service adapter is not configured: %w", ErrInvalidRequest)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	st := fn(a.manager)
	if !st.OK() {
		return OperationResult{}, &OperationError{Status: st}
	}
	return OperationResult{
		Op:       st.Op,
		Level:    string(st.Level),
		Message:  st.Message,
		Warnings: append([]string(nil), st.Warnings...),
		Layout:   a.viewLocked(),
	}, nil
}

func (a *AppServiceAdapter) viewLocked() LayoutView {
	titles := map[domain.PanelID]string{}
	for _, p := range a.manager.Panels() {
		titles[p.ID] = p.Title
	}
	return newLayoutView(a.manager.Layout(), a.manager.Config().Slot, titles)
}
