package tui

import "github.com/evanschultz/dockyard/internal/app"

// Option customizes a Model.
type Option func(*Model)

// WithExternalChanges reloads the layout when a slot name arrives on changes
// and it matches the manager's slot.
func WithExternalChanges(changes <-chan string) Option {
	return func(m *Model) {
		m.changes = changes
	}
}

// WithSharedManager routes every manager call through run, for use when another
// surface (the HTTP server) drives the same manager.
func WithSharedManager(run func(func(*app.Manager))) Option {
	return func(m *Model) {
		if run != nil {
			m.run = run
			m.shared = true
		}
	}
}

// WithClipboard replaces the clipboard writer.
func WithClipboard(write func(string) error) Option {
	return func(m *Model) {
		if write != nil {
			m.copyText = write
		}
	}
}

// WithIDGenerator replaces the generator for panels created with the new-panel key.
func WithIDGenerator(next func() string) Option {
	return func(m *Model) {
		if next != nil {
			m.newID = next
		}
	}
}

// WithResizeStep sets the size change applied by the grow and shrink keys.
func WithResizeStep(step float64) Option {
	return func(m *Model) {
		if step > 0 {
			m.resizeStep = step
		}
	}
}
