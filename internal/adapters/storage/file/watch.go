package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Change reports that a slot file was written or removed by another process.
type Change struct {
	Slot    string
	Removed bool
}

// Watcher delivers external slot changes. Writes made through the owning Store are suppressed.
type Watcher struct {
	store   *Store
	fsw     *fsnotify.Watcher
	changes chan Change
	errs    chan error
	done    chan struct{}
}

// Watch starts watching the store directory until ctx ends or Close is called.
func (s *Store) Watch(ctx context.Context) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(s.dir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", s.dir, err)
	}
	w := &Watcher{
		store:   s,
		fsw:     fsw,
		changes: make(chan Change, 16),
		errs:    make(chan error, 4),
		done:    make(chan struct{}),
	}
	go w.loop(ctx)
	return w, nil
}

// Changes returns the change stream. It closes when the watcher stops.
func (w *Watcher) Changes() <-chan Change {
	return w.changes
}

// Errors returns watcher errors.
func (w *Watcher) Errors() <-chan error {
	return w.errs
}

// Close stops the watcher and waits for its goroutine.
func (w *Watcher) Close() error {
	err := w.fsw.Close()
	<-w.done
	return err
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)
	defer close(w.changes)
	for {
		select {
		case <-ctx.Done():
			_ = w.fsw.Close()
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			change, ok := w.classify(ev)
			if !ok {
				continue
			}
			select {
			case w.changes <- change:
			case <-ctx.Done():
				_ = w.fsw.Close()
				return
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			select {
			case w.errs <- err:
			default:
			}
		}
	}
}

func (w *Watcher) classify(ev fsnotify.Event) (Change, bool) {
	slot, ok := slotFromName(filepath.Base(ev.Name))
	if !ok {
		return Change{}, false
	}
	switch {
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		if _, err := os.Stat(ev.Name); errors.Is(err, fs.ErrNotExist) {
			return Change{Slot: slot, Removed: true}, true
		}
		return Change{}, false
	case ev.Has(fsnotify.Create), ev.Has(fsnotify.Write):
		data, err := os.ReadFile(ev.Name)
		if err != nil || len(data) == 0 {
			return Change{}, false
		}
		if w.store.selfWritten(slot, data) {
			return Change{}, false
		}
		return Change{Slot: slot}, true
	default:
		return Change{}, false
	}
}
