package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/evanschultz/dockyard/internal/adapters/server"
	"github.com/evanschultz/dockyard/internal/adapters/server/common"
	"github.com/evanschultz/dockyard/internal/adapters/storage/file"
	"github.com/evanschultz/dockyard/internal/adapters/storage/sqlite"
	"github.com/evanschultz/dockyard/internal/app"
	"github.com/evanschultz/dockyard/internal/config"
	"github.com/evanschultz/dockyard/internal/platform"
	"github.com/evanschultz/dockyard/internal/tui"
)

var version = "dev"

type program interface {
	Run() (tea.Model, error)
}

var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

// serveFunc runs the HTTP and MCP transports; tests replace it.
var serveFunc = server.Run

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCommand(os.Stdout, os.Stderr)
	if err := fang.Execute(ctx, root, fang.WithVersion(version)); err != nil {
		stop()
		os.Exit(1)
	}
}

// run executes one command line without fang styling.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	root := newRootCommand(stdout, stderr)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SilenceUsage = true
	root.SilenceErrors = true
	return root.ExecuteContext(ctx)
}

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	dbPath     string
	appName    string
	backend    string
	devMode    bool

	stdout io.Writer
	stderr io.Writer
}

// newRootCommand builds the command tree. The bare command launches the TUI.
func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{stdout: stdout, stderr: stderr}
	defaultDevMode := version == "dev"
	if envDev, ok := parseBoolEnv(config.EnvDevMode); ok {
		defaultDevMode = envDev
	}
	defaultApp := platform.DefaultAppName
	if envApp := strings.TrimSpace(os.Getenv(config.EnvAppName)); envApp != "" {
		defaultApp = envApp
	}

	var withServer bool
	root := &cobra.Command{
		Use:     "dockyard",
		Short:   "Arrange dockable panels in up to eight columns",
		Version: version,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), opts, withServer)
		},
	}
	root.SetVersionTemplate("dockyard {{.Version}}\n")
	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to config TOML")
	flags.StringVar(&opts.dbPath, "db", "", "path to sqlite database")
	flags.StringVar(&opts.appName, "app", defaultApp, "application name for config/data path resolution")
	flags.BoolVar(&opts.devMode, "dev", defaultDevMode, "use dev mode paths (<app>-dev)")
	flags.StringVar(&opts.backend, "backend", "", "layout storage backend (sqlite or file)")
	root.Flags().BoolVar(&withServer, "serve", false, "also serve the HTTP API and MCP tools while the TUI runs")

	root.AddCommand(
		newPathsCommand(opts),
		newExportCommand(opts),
		newImportCommand(opts),
		newDescribeCommand(opts),
		newResetCommand(opts),
		newServeCommand(opts),
		newVersionCommand(opts),
	)
	return root
}

func newPathsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print resolved config and data paths",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			paths, err := resolvePaths(opts)
			if err != nil {
				return err
			}
			out := opts.stdout
			_, _ = fmt.Fprintf(out, "app: %s\n", opts.appName)
			_, _ = fmt.Fprintf(out, "dev_mode: %t\n", opts.devMode)
			_, _ = fmt.Fprintf(out, "config: %s\n", configPathFor(opts, paths))
			_, _ = fmt.Fprintf(out, "data_dir: %s\n", paths.DataDir)
			_, _ = fmt.Fprintf(out, "db: %s\n", paths.DBPath)
			_, _ = fmt.Fprintf(out, "layout_dir: %s\n", paths.LayoutDir)
			_, _ = fmt.Fprintf(out, "legacy_layout: %s\n", paths.LegacyLayoutPath)
			return nil
		},
	}
}

func newExportCommand(opts *rootOptions) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the saved layout as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd.Context(), opts, "export", nil, func(s *session) error {
				encoded, err := s.manager.ExportLayout()
				if err != nil {
					return fmt.Errorf("encode layout: %w", err)
				}
				if len(encoded) == 0 || encoded[len(encoded)-1] != '\n' {
					encoded = append(encoded, '\n')
				}
				if outPath == "-" {
					if _, err := opts.stdout.Write(encoded); err != nil {
						return fmt.Errorf("write layout to stdout: %w", err)
					}
					return nil
				}
				if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
					return fmt.Errorf("create export output dir: %w", err)
				}
				if err := os.WriteFile(outPath, encoded, 0o644); err != nil {
					return fmt.Errorf("write export file: %w", err)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&outPath, "out", "-", "output file path ('-' for stdout)")
	return cmd
}

func newImportCommand(opts *rootOptions) *cobra.Command {
	var (
		inPath string
		legacy bool
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace the saved layout with a JSON document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if inPath == "" && !legacy {
				return errors.New("--in or --legacy is required")
			}
			return withSession(cmd.Context(), opts, "import", nil, func(s *session) error {
				path := inPath
				if path == "" {
					path = s.paths.LegacyLayoutPath
				}
				content, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read import file: %w", err)
				}
				st := s.manager.ImportLayout(content)
				if !st.OK() {
					return fmt.Errorf("import layout: %w", st.Err)
				}
				for _, w := range st.Warnings {
					_, _ = fmt.Fprintf(opts.stderr, "warning: %s\n", w)
				}
				if saved := s.manager.SaveLayout(cmd.Context()); !saved.OK() {
					return fmt.Errorf("save imported layout: %w", saved.Err)
				}
				_, _ = fmt.Fprintf(opts.stdout, "imported %s into slot %s\n", path, s.cfg.Storage.Slot)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&inPath, "in", "", "input layout JSON file")
	cmd.Flags().BoolVar(&legacy, "legacy", false, "import the panel manager plugin's legacy geometry file")
	return cmd
}

func newDescribeCommand(opts *rootOptions) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Print the saved layout as markdown",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd.Context(), opts, "describe", nil, func(s *session) error {
				md := s.manager.DescribeMarkdown()
				if !raw {
					renderer, err := glamour.NewTermRenderer(
						glamour.WithStandardStyle("dark"),
						glamour.WithWordWrap(100),
					)
					if err != nil {
						return fmt.Errorf("build markdown renderer: %w", err)
					}
					if md, err = renderer.Render(md); err != nil {
						return fmt.Errorf("render markdown: %w", err)
					}
				}
				_, err := io.WriteString(opts.stdout, md)
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print markdown without terminal styling")
	return cmd
}

func newResetCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Clear the saved layout so the next start uses the default",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd.Context(), opts, "reset", nil, func(s *session) error {
				s.manager.ResetLayout()
				if st := s.manager.ClearSavedLayout(cmd.Context()); !st.OK() {
					return fmt.Errorf("clear saved layout: %w", st.Err)
				}
				_, _ = fmt.Fprintf(opts.stdout, "layout reset for slot %s\n", s.cfg.Storage.Slot)
				return nil
			})
		},
	}
}

func newServeCommand(opts *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout over HTTP and MCP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd.Context(), opts, "serve", nil, func(s *session) error {
				adapter := common.NewAppServiceAdapter(s.manager)
				defer adapter.Do(func(m *app.Manager) {
					st := m.Close(context.Background())
					s.logger.Info("layout manager closed", "status", st.String())
				})
				if strings.TrimSpace(addr) == "" {
					addr = s.cfg.Server.Addr
				}
				return serve(cmd.Context(), s, adapter, addr)
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to server.addr from config)")
	return cmd
}

func newVersionCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(*cobra.Command, []string) {
			_, _ = fmt.Fprintf(opts.stdout, "dockyard %s\n", version)
		},
	}
}

// runTUI launches the board, optionally sharing its manager with the server transports.
func runTUI(ctx context.Context, opts *rootOptions, withServer bool) error {
	host := tui.NewHost()
	return withSession(ctx, opts, "tui", host, func(s *session) error {
		runCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		modelOpts := []tui.Option{}
		if s.fileStore != nil && s.cfg.Storage.Watch {
			watcher, err := s.fileStore.Watch(runCtx)
			if err != nil {
				s.logger.Warn("layout watcher unavailable", "dir", s.fileStore.Dir(), "err", err)
			} else {
				defer func() { _ = watcher.Close() }()
				modelOpts = append(modelOpts, tui.WithExternalChanges(forwardChanges(runCtx, watcher, s.logger)))
				s.logger.Info("watching layout dir", "dir", s.fileStore.Dir())
			}
		}

		var serveErr chan error
		if withServer {
			adapter := common.NewAppServiceAdapter(s.manager)
			modelOpts = append(modelOpts, tui.WithSharedManager(adapter.Do))
			serveErr = make(chan error, 1)
			go func() {
				serveErr <- serve(runCtx, s, adapter, s.cfg.Server.Addr)
			}()
		}

		m := tui.NewModel(runCtx, s.manager, host, modelOpts...)
		s.logger.Info("starting tui program loop")
		_, err := programFactory(m).Run()
		cancel()
		if err != nil {
			s.logger.Error("tui program terminated with error", "err", err)
			return fmt.Errorf("run tui program: %w", err)
		}
		if serveErr != nil {
			if err := <-serveErr; err != nil {
				s.logger.Warn("server stopped with error", "err", err)
			}
		}
		if st := s.manager.Close(context.Background()); st.Level == app.LevelError {
			s.logger.Warn("layout manager close failed", "status", st.String())
		}
		s.logger.Info("command flow complete", "command", "tui")
		return nil
	})
}

// serve runs the transports until ctx ends.
func serve(ctx context.Context, s *session, layouts common.LayoutService, addr string) error {
	s.logger.Info("starting server", "addr", addr, "api", s.cfg.Server.APIEndpoint, "mcp", s.cfg.Server.MCPEndpoint)
	err := serveFunc(ctx, server.Config{
		HTTPBind:      addr,
		APIEndpoint:   s.cfg.Server.APIEndpoint,
		MCPEndpoint:   s.cfg.Server.MCPEndpoint,
		ServerName:    "dockyard",
		ServerVersion: version,
	}, server.Dependencies{Layouts: layouts, Logger: s.logger})
	if err != nil {
		s.logger.Error("server failed", "addr", addr, "err", err)
		return fmt.Errorf("run server: %w", err)
	}
	s.logger.Info("server stopped", "addr", addr)
	return nil
}

// forwardChanges turns watcher events into slot names for the TUI.
func forwardChanges(ctx context.Context, w *file.Watcher, logger *runtimeLogger) <-chan string {
	out := make(chan string, 4)
	go func() {
		defer close(out)
		for change := range w.Changes() {
			if change.Removed {
				logger.Info("saved layout removed externally", "slot", change.Slot)
				continue
			}
			logger.Debug("external layout change", "slot", change.Slot)
			select {
			case out <- change.Slot:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// session is one command's resolved config, logger, store, and manager.
type session struct {
	paths      platform.Paths
	configPath string
	cfg        config.Config
	logger     *runtimeLogger
	manager    *app.Manager
	fileStore  *file.Store
	closeStore func() error
}

// withSession opens a session for command, runs fn, and releases the session.
func withSession(ctx context.Context, opts *rootOptions, command string, host app.PanelHost, fn func(*session) error) error {
	s, err := openSession(ctx, opts, command, host)
	if err != nil {
		return err
	}
	defer s.close()

	s.logger.Info("command flow start", "command", command)
	if err := fn(s); err != nil {
		s.logger.Error("command flow failed", "command", command, "err", err)
		return fmt.Errorf("run %s command: %w", command, err)
	}
	s.logger.Info("command flow complete", "command", command)
	return nil
}

func openSession(ctx context.Context, opts *rootOptions, command string, host app.PanelHost) (*session, error) {
	paths, err := resolvePaths(opts)
	if err != nil {
		return nil, err
	}
	configPath := configPathFor(opts, paths)

	defaults := config.Default(paths.DBPath, paths.LayoutDir)
	cfg, err := config.Load(configPath, defaults)
	if err != nil {
		return nil, fmt.Errorf("load config %q: %w", configPath, err)
	}
	if dbPath := strings.TrimSpace(opts.dbPath); dbPath != "" {
		cfg.Storage.DBPath = dbPath
	}
	if backend := strings.TrimSpace(opts.backend); backend != "" {
		cfg.Storage.Backend = config.Backend(strings.ToLower(backend))
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	logger, err := newRuntimeLogger(opts.stderr, opts.appName, opts.devMode, cfg.Logging, time.Now)
	if err != nil {
		return nil, fmt.Errorf("configure runtime logger: %w", err)
	}
	if command == "tui" {
		// Keep TUI rendering clean: runtime logs stay in the dev-file sink while the board is active.
		logger.SetConsoleEnabled(false)
	}
	s := &session{paths: paths, configPath: configPath, cfg: cfg, logger: logger}

	logger.Info("startup configuration resolved", "app", opts.appName, "dev_mode", opts.devMode, "command", command)
	logger.Debug("runtime paths resolved", "config_path", configPath, "data_dir", paths.DataDir)
	logger.Info("configuration loaded", "config_path", configPath, "backend", cfg.Storage.Backend, "slot", cfg.Storage.Slot, "log_level", cfg.Logging.Level)
	if devPath := logger.DevLogPath(); devPath != "" {
		logger.Info("dev file logging enabled", "path", devPath)
	}

	var store app.LayoutStore
	switch cfg.Storage.Backend {
	case config.BackendFile:
		fs, err := file.New(cfg.Storage.LayoutDir)
		if err != nil {
			s.close()
			return nil, fmt.Errorf("open layout dir: %w", err)
		}
		s.fileStore = fs
		store = fs
		logger.Info("file layout store ready", "dir", cfg.Storage.LayoutDir)
	default:
		logger.Info("opening sqlite repository", "db_path", cfg.Storage.DBPath)
		repo, err := sqlite.Open(cfg.Storage.DBPath)
		if err != nil {
			logger.Error("sqlite open failed", "db_path", cfg.Storage.DBPath, "err", err)
			s.close()
			return nil, fmt.Errorf("open sqlite repository: %w", err)
		}
		s.closeStore = repo.Close
		store = repo
		logger.Info("sqlite repository ready", "db_path", cfg.Storage.DBPath, "migrations", "ensured")
	}

	manager, err := app.NewManager(host, store, cfg.ManagerConfig(), app.WithLogger(logger))
	if err != nil {
		s.close()
		return nil, fmt.Errorf("build layout manager: %w", err)
	}
	s.manager = manager
	for _, spec := range cfg.PanelSpecs() {
		if st := manager.RegisterPanel(spec); !st.OK() {
			logger.Warn("panel registration skipped", "panel", spec.ID, "err", st.Err)
		}
	}
	if st := manager.LoadLayout(ctx); st.Level == app.LevelError && !errors.Is(st.Err, app.ErrNotFound) {
		logger.Warn("saved layout not restored", "slot", cfg.Storage.Slot, "status", st.String())
	}
	return s, nil
}

func (s *session) close() {
	if s.closeStore != nil {
		if err := s.closeStore(); err != nil {
			s.logger.Warn("layout store close failed", "err", err)
		}
	}
	if err := s.logger.Close(); err != nil && s.logger.shouldLogToSink(s.logger.consoleSink) {
		s.logger.Warn("close runtime log sink", "err", err)
	}
}

func resolvePaths(opts *rootOptions) (platform.Paths, error) {
	return platform.DefaultPathsWithOptions(platform.Options{
		AppName: opts.appName,
		DevMode: opts.devMode,
	})
}

// configPathFor applies --config, then DOCKYARD_CONFIG, then the platform default.
func configPathFor(opts *rootOptions, paths platform.Paths) string {
	if p := strings.TrimSpace(opts.configPath); p != "" {
		return p
	}
	if p := strings.TrimSpace(os.Getenv(config.EnvConfigPath)); p != "" {
		return p
	}
	return paths.ConfigPath
}

func parseBoolEnv(name string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
