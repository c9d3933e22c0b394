// Package file stores layout documents as JSON files, one per slot.
package file

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/evanschultz/dockyard/internal/app"
)

// ext is the file extension of stored slots.
const ext = ".json"

// Store keeps each slot at <dir>/<slot>.json.
type Store struct {
	dir string

	mu      sync.Mutex
	written map[string][sha256.Size]byte
}

// New constructs a store rooted at dir, creating it when missing.
func New(dir string) (*Store, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("layout directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create layout dir: %w", err)
	}
	return &Store{dir: dir, written: map[string][sha256.Size]byte{}}, nil
}

// Dir returns the root directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the file path backing slot.
func (s *Store) Path(slot string) (string, error) {
	slot, err := app.NormalizeSlot(slot)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.dir, slot+ext), nil
}

// SaveLayout writes slot atomically through a temp file and rename.
func (s *Store) SaveLayout(_ context.Context, slot string, data []byte) error {
	path, err := s.Path(slot)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp layout: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp layout: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp layout: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp layout: %w", err)
	}

	s.mu.Lock()
	s.written[slotOf(path)] = sha256.Sum256(data)
	s.mu.Unlock()
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace layout %s: %w", path, err)
	}
	return nil
}

// LoadLayout reads slot or returns app.ErrNotFound.
func (s *Store) LoadLayout(_ context.Context, slot string) ([]byte, error) {
	path, err := s.Path(slot)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, app.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read layout %s: %w", path, err)
	}
	return data, nil
}

// ClearLayout removes slot or returns app.ErrNotFound.
func (s *Store) ClearLayout(_ context.Context, slot string) error {
	path, err := s.Path(slot)
	if err != nil {
		return err
	}
	err = os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return app.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("remove layout %s: %w", path, err)
	}
	s.mu.Lock()
	delete(s.written, slotOf(path))
	s.mu.Unlock()
	return nil
}

// ListLayouts returns every slot file ordered by name.
func (s *Store) ListLayouts(_ context.Context) ([]app.SlotInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read layout dir: %w", err)
	}
	out := make([]app.SlotInfo, 0, len(entries))
	for _, entry := range entries {
		slot, ok := slotFromName(entry.Name())
		if !ok || entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			continue
		}
		out = append(out, app.SlotInfo{
			Name:    slot,
			Size:    len(data),
			Version: documentVersion(data),
			SavedAt: info.ModTime().UTC(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// selfWritten reports whether data is what this store last wrote to slot.
func (s *Store) selfWritten(slot string, data []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum, ok := s.written[slot]
	return ok && sum == sha256.Sum256(data)
}

func slotOf(path string) string {
	return strings.TrimSuffix(filepath.Base(path), ext)
}

// slotFromName maps a directory entry to its slot, skipping temp and foreign files.
func slotFromName(name string) (string, bool) {
	if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ext) {
		return "", false
	}
	slot := strings.TrimSuffix(name, ext)
	if _, err := app.NormalizeSlot(slot); err != nil || slot == "" {
		return "", false
	}
	return slot, true
}

func documentVersion(data []byte) int {
	var head struct {
		Version int `json:"version"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return 0
	}
	return head.Version
}
