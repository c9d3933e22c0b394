// Package config loads the dockyard TOML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/evanschultz/dockyard/internal/app"
	"github.com/evanschultz/dockyard/internal/domain"
	"github.com/evanschultz/dockyard/internal/layout"
)

// Environment overrides read by the command entrypoint.
const (
	EnvConfigPath = "DOCKYARD_CONFIG"
	EnvDevMode    = "DOCKYARD_DEV_MODE"
	EnvAppName    = "DOCKYARD_APP_NAME"
)

// Backend selects where layouts are persisted.
type Backend string

const (
	BackendSQLite Backend = "sqlite"
	BackendFile   Backend = "file"
)

type Config struct {
	Storage StorageConfig `toml:"storage"`
	Layout  LayoutConfig  `toml:"layout"`
	Panels  []PanelConfig `toml:"panels"`
	Logging LoggingConfig `toml:"logging"`
	Server  ServerConfig  `toml:"server"`
}

type StorageConfig struct {
	Backend Backend `toml:"backend"`
	// DBPath is used by the sqlite backend, LayoutDir by the file backend.
	DBPath    string `toml:"db_path"`
	LayoutDir string `toml:"layout_dir"`
	Slot      string `toml:"slot"`
	Autosave  bool   `toml:"autosave"`
	Watch     bool   `toml:"watch"`
}

type LayoutConfig struct {
	ColumnCapacity   float64 `toml:"column_capacity"`
	DefaultPanelSize float64 `toml:"default_panel_size"`
	MinPanelSize     float64 `toml:"min_panel_size"`
	MigrationPolicy  string  `toml:"migration_policy"` // left | first
	DropTieBreak     string  `toml:"drop_tie_break"`   // later | earlier
	DragThreshold    float64 `toml:"drag_threshold"`
	FitToViewport    bool    `toml:"fit_to_viewport"`
}

type PanelConfig struct {
	ID      string  `toml:"id"`
	Title   string  `toml:"title"`
	Size    float64 `toml:"size"`
	MinSize float64 `toml:"min_size"`
	Fixed   bool    `toml:"fixed"`
	Column  int     `toml:"column"`
}

type LoggingConfig struct {
	Level   string        `toml:"level"`
	DevFile DevFileConfig `toml:"dev_file"`
}

type DevFileConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type ServerConfig struct {
	Addr        string `toml:"addr"`
	APIEndpoint string `toml:"api_endpoint"`
	MCPEndpoint string `toml:"mcp_endpoint"`
}

func defaultPanels() []PanelConfig {
	return []PanelConfig{
		{ID: "layers", Title: "Layers", Size: 200},
		{ID: "brush-presets", Title: "Brush Presets", Size: 200},
		{ID: "tool-options", Title: "Tool Options", Size: 150, MinSize: 120, Fixed: true},
		{ID: "color-selector", Title: "Advanced Color Selector", Size: 200},
		{ID: "undo-history", Title: "Undo History", Size: 150},
	}
}

func Default(dbPath, layoutDir string) Config {
	return Config{
		Storage: StorageConfig{
			Backend:   BackendSQLite,
			DBPath:    dbPath,
			LayoutDir: layoutDir,
			Slot:      app.DefaultSlot,
			Autosave:  true,
			Watch:     true,
		},
		Layout: LayoutConfig{
			ColumnCapacity:   600,
			DefaultPanelSize: 200,
			MinPanelSize:     100,
			MigrationPolicy:  string(layout.MigrateLeft),
			DropTieBreak:     string(layout.TieLater),
			DragThreshold:    1,
		},
		Panels: defaultPanels(),
		Logging: LoggingConfig{
			Level: "info",
			DevFile: DevFileConfig{
				Enabled: true,
				Dir:     ".dockyard/log",
			},
		},
		Server: ServerConfig{
			Addr:        "127.0.0.1:7420",
			APIEndpoint: "/api/v1",
			MCPEndpoint: "/mcp",
		},
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	// A file that lists panels replaces the default catalog rather than merging into it.
	cfg.Panels = nil
	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}
	if cfg.Panels == nil {
		cfg.Panels = defaults.Panels
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Storage.Backend {
	case BackendSQLite:
		if strings.TrimSpace(c.Storage.DBPath) == "" {
			return errors.New("storage.db_path is required for the sqlite backend")
		}
	case BackendFile:
		if strings.TrimSpace(c.Storage.LayoutDir) == "" {
			return errors.New("storage.layout_dir is required for the file backend")
		}
	default:
		return fmt.Errorf("invalid storage.backend: %q", c.Storage.Backend)
	}
	if _, err := app.NormalizeSlot(c.Storage.Slot); err != nil {
		return fmt.Errorf("invalid storage.slot %q: %w", c.Storage.Slot, err)
	}

	if c.Layout.ColumnCapacity <= 0 {
		return errors.New("layout.column_capacity must be > 0")
	}
	if c.Layout.DefaultPanelSize <= 0 {
		return errors.New("layout.default_panel_size must be > 0")
	}
	if c.Layout.MinPanelSize < 0 {
		return errors.New("layout.min_panel_size must be >= 0")
	}
	if c.Layout.DragThreshold < 0 {
		return errors.New("layout.drag_threshold must be >= 0")
	}
	if _, err := layout.ParseMigrationPolicy(c.Layout.MigrationPolicy); err != nil {
		return fmt.Errorf("invalid layout.migration_policy: %w", err)
	}
	if _, err := layout.ParseTieBreak(c.Layout.DropTieBreak); err != nil {
		return fmt.Errorf("invalid layout.drop_tie_break: %w", err)
	}

	seen := map[string]struct{}{}
	for idx, panel := range c.Panels {
		id := strings.TrimSpace(panel.ID)
		if id == "" {
			return fmt.Errorf("panels[%d].id is required", idx)
		}
		if _, ok := seen[id]; ok {
			return fmt.Errorf("panels[%d].id is duplicated: %s", idx, id)
		}
		seen[id] = struct{}{}
		if panel.Size < 0 || panel.MinSize < 0 {
			return fmt.Errorf("panels[%d] sizes must be >= 0", idx)
		}
		if panel.Column < 0 || panel.Column >= domain.MaxColumns {
			return fmt.Errorf("panels[%d].column must be in [0, %d)", idx, domain.MaxColumns)
		}
	}

	if _, err := log.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}

	if strings.TrimSpace(c.Server.Addr) == "" {
		return errors.New("server.addr is required")
	}
	for name, endpoint := range map[string]string{"api_endpoint": c.Server.APIEndpoint, "mcp_endpoint": c.Server.MCPEndpoint} {
		if !strings.HasPrefix(endpoint, "/") {
			return fmt.Errorf("server.%s must start with /: %q", name, endpoint)
		}
	}
	if c.Server.APIEndpoint == c.Server.MCPEndpoint {
		return errors.New("server.api_endpoint and server.mcp_endpoint must differ")
	}

	return nil
}

// ManagerConfig converts the layout and storage sections into manager settings.
func (c Config) ManagerConfig() app.ManagerConfig {
	return app.ManagerConfig{
		Slot:                 c.Storage.Slot,
		Capacity:             c.Layout.ColumnCapacity,
		DefaultPanelSize:     c.Layout.DefaultPanelSize,
		MinPanelSize:         c.Layout.MinPanelSize,
		MigrationPolicy:      layout.MigrationPolicy(c.Layout.MigrationPolicy),
		TieBreak:             layout.TieBreak(c.Layout.DropTieBreak),
		DragThreshold:        c.Layout.DragThreshold,
		Autosave:             c.Storage.Autosave,
		CapacityFromViewport: c.Layout.FitToViewport,
	}
}

// PanelSpecs returns the configured catalog in registration order.
func (c Config) PanelSpecs() []app.PanelSpec {
	out := make([]app.PanelSpec, 0, len(c.Panels))
	for _, panel := range c.Panels {
		out = append(out, app.PanelSpec{
			ID:      domain.PanelID(strings.TrimSpace(panel.ID)),
			Title:   panel.Title,
			Size:    panel.Size,
			MinSize: panel.MinSize,
			Fixed:   panel.Fixed,
			Column:  panel.Column,
		})
	}
	return out
}

// Save writes cfg to path, creating parent directories.
func Save(path string, cfg Config) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	content, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode toml: %w", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
