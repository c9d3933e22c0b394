package layout

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/evanschultz/dockyard/internal/domain"
)

// LayoutVersion is the current persisted document version.
const LayoutVersion = 1

// Document is the persisted form of a layout.
type Document struct {
	Version int              `json:"version"`
	Columns []DocumentColumn `json:"columns"`
	Default bool             `json:"default,omitempty"`
}

// DocumentColumn is one persisted column.
type DocumentColumn struct {
	Panels []DocumentPanel `json:"panels"`
}

// DocumentPanel is one persisted panel placement.
type DocumentPanel struct {
	ID   string  `json:"id"`
	Size float64 `json:"size"`
}

// LoadWarning reports a recoverable problem found while decoding.
type LoadWarning struct {
	PanelID domain.PanelID
	Reason  string
}

// String renders the warning for status lines.
func (w LoadWarning) String() string {
	if w.PanelID == "" {
		return w.Reason
	}
	return fmt.Sprintf("%s: %s", w.PanelID, w.Reason)
}

// PanelResolver looks up a registered panel by id.
type PanelResolver func(domain.PanelID) (domain.Panel, bool)

// Migration upgrades an older document, keyed by top-level field, to the current shape.
type Migration func(raw map[string]json.RawMessage) (Document, error)

// Serializer converts layouts to and from versioned JSON documents.
type Serializer struct {
	resolve    PanelResolver
	migrations map[int]Migration
}

// NewSerializer constructs a serializer. A nil resolver accepts every id with default attributes.
func NewSerializer(resolve PanelResolver) *Serializer {
	s := &Serializer{resolve: resolve, migrations: map[int]Migration{}}
	s.RegisterMigration(0, migrateGeometryDocument)
	return s
}

// RegisterMigration installs an upgrade path for one older version.
func (s *Serializer) RegisterMigration(version int, m Migration) {
	s.migrations[version] = m
}

// Encode renders l as a versioned document.
func (s *Serializer) Encode(l domain.Layout) ([]byte, error) {
	if len(l.Columns) < domain.MinColumns || len(l.Columns) > domain.MaxColumns {
		return nil, fmt.Errorf("encode %d columns: %w", len(l.Columns), domain.ErrCorruptLayout)
	}
	doc := Document{Version: LayoutVersion, Default: l.Default, Columns: make([]DocumentColumn, len(l.Columns))}
	for ci, col := range l.Columns {
		panels := make([]DocumentPanel, 0, len(col.Panels))
		for _, p := range col.Panels {
			panels = append(panels, DocumentPanel{ID: string(p.ID), Size: p.Size})
		}
		doc.Columns[ci] = DocumentColumn{Panels: panels}
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode layout: %w", err)
	}
	return out, nil
}

// Decode parses a document. Panels the resolver does not know are dropped with a warning.
// Structural problems yield ErrCorruptLayout.
func (s *Serializer) Decode(data []byte) (domain.Layout, []LoadWarning, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return domain.Layout{}, nil, fmt.Errorf("%w: %v", domain.ErrCorruptLayout, err)
	}
	version := 0
	if v, ok := raw["version"]; ok {
		if err := json.Unmarshal(v, &version); err != nil {
			return domain.Layout{}, nil, fmt.Errorf("%w: version: %v", domain.ErrCorruptLayout, err)
		}
	}

	var doc Document
	if version == LayoutVersion {
		if err := json.Unmarshal(data, &doc); err != nil {
			return domain.Layout{}, nil, fmt.Errorf("%w: %v", domain.ErrCorruptLayout, err)
		}
	} else {
		migrate, ok := s.migrations[version]
		if !ok {
			return domain.Layout{}, nil, fmt.Errorf("%w: unsupported version %d", domain.ErrCorruptLayout, version)
		}
		migrated, err := migrate(raw)
		if err != nil {
			return domain.Layout{}, nil, fmt.Errorf("%w: migrate version %d: %v", domain.ErrCorruptLayout, version, err)
		}
		doc = migrated
	}
	return s.build(doc)
}

func (s *Serializer) build(doc Document) (domain.Layout, []LoadWarning, error) {
	n := len(doc.Columns)
	if n < domain.MinColumns || n > domain.MaxColumns {
		return domain.Layout{}, nil, fmt.Errorf("%w: column count %d out of range", domain.ErrCorruptLayout, n)
	}
	var warnings []LoadWarning
	seen := map[domain.PanelID]struct{}{}
	out := domain.Layout{Default: doc.Default, Columns: make([]domain.Column, n)}
	for ci, dc := range doc.Columns {
		col := domain.Column{Index: ci}
		for _, dp := range dc.Panels {
			id := domain.PanelID(strings.TrimSpace(dp.ID))
			if id == "" {
				return domain.Layout{}, nil, fmt.Errorf("%w: column %d has a panel without id", domain.ErrCorruptLayout, ci)
			}
			if _, dup := seen[id]; dup {
				return domain.Layout{}, nil, fmt.Errorf("%w: duplicate panel %q", domain.ErrCorruptLayout, id)
			}
			seen[id] = struct{}{}
			if dp.Size < 0 || math.IsNaN(dp.Size) || math.IsInf(dp.Size, 0) {
				return domain.Layout{}, nil, fmt.Errorf("%w: panel %q has invalid size", domain.ErrCorruptLayout, id)
			}
			panel, ok := s.lookup(id)
			if !ok {
				warnings = append(warnings, LoadWarning{PanelID: id, Reason: "not registered, dropped"})
				continue
			}
			panel.Size = dp.Size
			if panel.Size < panel.MinSize {
				warnings = append(warnings, LoadWarning{PanelID: id, Reason: "size raised to minimum"})
				panel.Size = panel.MinSize
			}
			col.Panels = append(col.Panels, panel)
		}
		col.Reindex()
		out.Columns[ci] = col
	}
	return out, warnings, nil
}

func (s *Serializer) lookup(id domain.PanelID) (domain.Panel, bool) {
	if s.resolve == nil {
		return domain.Panel{ID: id, Title: string(id)}, true
	}
	return s.resolve(id)
}

// geometryColumn is one entry of the unversioned per-column geometry file.
type geometryColumn struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Visible *bool   `json:"visible"`
}

// migrateGeometryDocument reads the unversioned format keyed by numeric column id.
// It carried no panel membership, so only the column count survives.
func migrateGeometryDocument(raw map[string]json.RawMessage) (Document, error) {
	ids := make([]int, 0, len(raw))
	for key, value := range raw {
		id, err := strconv.Atoi(key)
		if err != nil {
			return Document{}, fmt.Errorf("unrecognized key %q", key)
		}
		var geom geometryColumn
		if err := json.Unmarshal(value, &geom); err != nil {
			return Document{}, fmt.Errorf("column %q: %v", key, err)
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return Document{}, fmt.Errorf("no columns")
	}
	slices.Sort(ids)
	doc := Document{Version: LayoutVersion, Columns: make([]DocumentColumn, len(ids))}
	for idx := range doc.Columns {
		doc.Columns[idx] = DocumentColumn{Panels: []DocumentPanel{}}
	}
	return doc, nil
}
