package tui

import (
	"sync"

	"github.com/evanschultz/dockyard/internal/app"
	"github.com/evanschultz/dockyard/internal/domain"
)

// host implements app.PanelHost for the terminal. The manager may call it from
// server goroutines when the TUI shares its manager, so state is guarded.
type host struct {
	mu       sync.Mutex
	statuses []app.Status
	rendered map[int]int
	redraw   chan struct{}
}

func newHost() *host {
	return &host{
		rendered: map[int]int{},
		redraw:   make(chan struct{}, 1),
	}
}

// RenderColumn records that column index changed. The view always draws from a fresh snapshot.
func (h *host) RenderColumn(index int, col domain.Column) {
	h.mu.Lock()
	h.rendered[index] = col.Len()
	h.mu.Unlock()
}

// RequestRedraw signals the model without blocking.
func (h *host) RequestRedraw() {
	select {
	case h.redraw <- struct{}{}:
	default:
	}
}

// ShowStatus queues st for the status line.
func (h *host) ShowStatus(st app.Status) {
	h.mu.Lock()
	h.statuses = append(h.statuses, st)
	h.mu.Unlock()
}

// drain returns and clears queued statuses.
func (h *host) drain() []app.Status {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := h.statuses
	h.statuses = nil
	return out
}

// renderedPanels returns the panel count last rendered for column index.
func (h *host) renderedPanels(index int) (int, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	n, ok := h.rendered[index]
	return n, ok
}
