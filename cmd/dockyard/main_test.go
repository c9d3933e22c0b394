package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/evanschultz/dockyard/internal/adapters/server"
	"github.com/evanschultz/dockyard/internal/config"
)

// TestMain pins dev mode off so tests resolve the release app name.
func TestMain(m *testing.M) {
	_ = os.Setenv(config.EnvDevMode, "false")
	_ = os.Unsetenv(config.EnvConfigPath)
	_ = os.Unsetenv(config.EnvAppName)
	os.Exit(m.Run())
}

type fakeProgram struct {
	runErr error
}

func (f fakeProgram) Run() (tea.Model, error) {
	return nil, f.runErr
}

// scriptedProgram drives a model through messages instead of a terminal.
type scriptedProgram struct {
	model tea.Model
	runFn func(tea.Model) (tea.Model, error)
}

func (p scriptedProgram) Run() (tea.Model, error) {
	if p.runFn == nil {
		return p.model, nil
	}
	return p.runFn(p.model)
}

func applyModelMsg(t *testing.T, model tea.Model, msg tea.Msg) tea.Model {
	t.Helper()
	updated, cmd := model.Update(msg)
	out := updated
	for i := 0; i < 8 && cmd != nil; i++ {
		next := cmd()
		out, cmd = out.Update(next)
	}
	return out
}

// isolateHome points config and data lookups at temp dirs and returns the data dir.
func isolateHome(t *testing.T) string {
	t.Helper()
	dataHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", dataHome)
	return dataHome
}

// fakePrograms swaps programFactory for the duration of the test.
func fakePrograms(t *testing.T, factory func(tea.Model) program) {
	t.Helper()
	orig := programFactory
	t.Cleanup(func() { programFactory = orig })
	programFactory = factory
}

type exportedLayout struct {
	Version int               `json:"version"`
	Columns []json.RawMessage `json:"columns"`
}

func exportLayout(t *testing.T, args ...string) exportedLayout {
	t.Helper()
	var out bytes.Buffer
	if err := run(context.Background(), append(args, "export"), &out, io.Discard); err != nil {
		t.Fatalf("run(export) error = %v", err)
	}
	var doc exportedLayout
	if err := json.Unmarshal(out.Bytes(), &doc); err != nil {
		t.Fatalf("decode export %q: %v", out.String(), err)
	}
	return doc
}

func TestRunVersion(t *testing.T) {
	var out strings.Builder
	if err := run(context.Background(), []string{"--version"}, &out, io.Discard); err != nil {
		t.Fatalf("run(--version) error = %v", err)
	}
	if !strings.Contains(out.String(), "dockyard") {
		t.Fatalf("expected version output, got %q", out.String())
	}

	out.Reset()
	if err := run(context.Background(), []string{"version"}, &out, io.Discard); err != nil {
		t.Fatalf("run(version) error = %v", err)
	}
	if strings.TrimSpace(out.String()) != "dockyard "+version {
		t.Fatalf("unexpected version output %q", out.String())
	}
}

func TestRunPathsCommand(t *testing.T) {
	dataHome := isolateHome(t)
	var out strings.Builder
	if err := run(context.Background(), []string{"--app", "dockyard-test", "paths"}, &out, io.Discard); err != nil {
		t.Fatalf("run(paths) error = %v", err)
	}
	text := out.String()
	for _, want := range []string{
		"app: dockyard-test",
		"dev_mode: false",
		"db: " + filepath.Join(dataHome, "dockyard-test", "dockyard-test.db"),
		"layout_dir: " + filepath.Join(dataHome, "dockyard-test", "layouts"),
		"legacy_layout: " + filepath.Join(dataHome, "krita", "panel_manager", "panel_layout.json"),
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in paths output, got %q", want, text)
		}
	}
}

func TestRunRejectsBadInput(t *testing.T) {
	isolateHome(t)
	if err := run(context.Background(), []string{"bogus"}, io.Discard, io.Discard); err == nil {
		t.Fatal("expected unknown command error")
	}
	if err := run(context.Background(), []string{"--nope"}, io.Discard, io.Discard); err == nil {
		t.Fatal("expected invalid flag error")
	}
	err := run(context.Background(), []string{"--backend", "redis", "export"}, io.Discard, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "backend") {
		t.Fatalf("expected backend validation error, got %v", err)
	}
	if err := run(context.Background(), []string{"import"}, io.Discard, io.Discard); err == nil {
		t.Fatal("expected import to require --in or --legacy")
	}
}

func TestRunRejectsInvalidLoggingLevelFromConfig(t *testing.T) {
	isolateHome(t)
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(cfgPath, []byte("[logging]\nlevel = \"loud\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	err := run(context.Background(), []string{"--config", cfgPath, "export"}, io.Discard, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "load config") {
		t.Fatalf("expected config error, got %v", err)
	}
}

func TestRunStartsProgram(t *testing.T) {
	isolateHome(t)
	fakePrograms(t, func(tea.Model) program { return fakeProgram{} })
	dbPath := filepath.Join(t.TempDir(), "dockyard.db")
	if err := run(context.Background(), []string{"--db", dbPath}, io.Discard, io.Discard); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("expected sqlite database at %s: %v", dbPath, err)
	}
}

func TestRunTUIAutosavesOnQuit(t *testing.T) {
	isolateHome(t)
	dbPath := filepath.Join(t.TempDir(), "dockyard.db")
	fakePrograms(t, func(m tea.Model) program {
		return scriptedProgram{model: m, runFn: func(model tea.Model) (tea.Model, error) {
			model = applyModelMsg(t, model, tea.WindowSizeMsg{Width: 100, Height: 30})
			model = applyModelMsg(t, model, tea.KeyPressMsg{Code: 'a', Text: "a"})
			model = applyModelMsg(t, model, tea.KeyPressMsg{Code: ']', Text: "]"})
			model = applyModelMsg(t, model, tea.KeyPressMsg{Code: 'q', Text: "q"})
			return model, nil
		}}
	})
	var stderr bytes.Buffer
	if err := run(context.Background(), []string{"--db", dbPath}, io.Discard, &stderr); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if got := strings.TrimSpace(stderr.String()); got != "" {
		t.Fatalf("expected no console logs while the TUI runs, got %q", got)
	}

	doc := exportLayout(t, "--db", dbPath)
	if doc.Version != 1 || len(doc.Columns) != 2 {
		t.Fatalf("expected autosaved two-column layout, got %#v", doc)
	}
}

func TestRunExportImportDescribeReset(t *testing.T) {
	isolateHome(t)
	dbPath := filepath.Join(t.TempDir(), "dockyard.db")
	doc := exportLayout(t, "--db", dbPath)
	if len(doc.Columns) != 1 {
		t.Fatalf("expected default single column, got %d", len(doc.Columns))
	}

	in := filepath.Join(t.TempDir(), "layout.json")
	content := `{"version":1,"columns":[{"panels":[{"id":"layers","size":200},{"id":"brush-presets","size":200}]},{"panels":[{"id":"color-selector","size":200}]}]}`
	if err := os.WriteFile(in, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	var out, stderr strings.Builder
	if err := run(context.Background(), []string{"--db", dbPath, "import", "--in", in}, &out, &stderr); err != nil {
		t.Fatalf("run(import) error = %v", err)
	}
	if !strings.Contains(out.String(), "imported") {
		t.Fatalf("unexpected import output %q", out.String())
	}
	if !strings.Contains(stderr.String(), "warning:") {
		t.Fatalf("expected warnings for catalog panels missing from the file, got %q", stderr.String())
	}

	outPath := filepath.Join(t.TempDir(), "nested", "out.json")
	if err := run(context.Background(), []string{"--db", dbPath, "export", "--out", outPath}, io.Discard, io.Discard); err != nil {
		t.Fatalf("run(export --out) error = %v", err)
	}
	written, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(written), "color-selector") {
		t.Fatalf("unexpected export file %s", written)
	}

	out.Reset()
	if err := run(context.Background(), []string{"--db", dbPath, "describe", "--raw"}, &out, io.Discard); err != nil {
		t.Fatalf("run(describe) error = %v", err)
	}
	if !strings.Contains(out.String(), "## Column 2") {
		t.Fatalf("expected two columns described, got %q", out.String())
	}

	out.Reset()
	if err := run(context.Background(), []string{"--db", dbPath, "reset"}, &out, io.Discard); err != nil {
		t.Fatalf("run(reset) error = %v", err)
	}
	if doc := exportLayout(t, "--db", dbPath); len(doc.Columns) != 1 {
		t.Fatalf("expected default layout after reset, got %d columns", len(doc.Columns))
	}
}

func TestRunImportLegacyGeometryWithFileBackend(t *testing.T) {
	dataHome := isolateHome(t)
	legacyPath := filepath.Join(dataHome, "krita", "panel_manager", "panel_layout.json")
	if err := os.MkdirAll(filepath.Dir(legacyPath), 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	legacy := `{"0": {"x": 0, "y": 0, "width": 200, "height": 600, "visible": true}, "1": {"x": 200, "y": 0, "width": 200, "height": 600, "visible": true}}`
	if err := os.WriteFile(legacyPath, []byte(legacy), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if err := run(context.Background(), []string{"--backend", "file", "import", "--legacy"}, io.Discard, io.Discard); err != nil {
		t.Fatalf("run(import --legacy) error = %v", err)
	}
	saved := filepath.Join(dataHome, "dockyard", "layouts", "current.json")
	if _, err := os.Stat(saved); err != nil {
		t.Fatalf("expected file backend slot at %s: %v", saved, err)
	}
	if doc := exportLayout(t, "--backend", "file"); len(doc.Columns) != 2 {
		t.Fatalf("expected two migrated columns, got %d", len(doc.Columns))
	}
}

func TestRunServeUsesConfiguredEndpoints(t *testing.T) {
	isolateHome(t)
	dbPath := filepath.Join(t.TempDir(), "dockyard.db")
	orig := serveFunc
	t.Cleanup(func() { serveFunc = orig })

	var got server.Config
	serveFunc = func(ctx context.Context, cfg server.Config, deps server.Dependencies) error {
		got = cfg
		if deps.Logger == nil {
			t.Error("expected request logger")
		}
		_, err := deps.Layouts.AddColumn(ctx)
		return err
	}
	if err := run(context.Background(), []string{"--db", dbPath, "serve", "--addr", "127.0.0.1:9999"}, io.Discard, io.Discard); err != nil {
		t.Fatalf("run(serve) error = %v", err)
	}
	if got.HTTPBind != "127.0.0.1:9999" || got.APIEndpoint != "/api/v1" || got.MCPEndpoint != "/mcp" || got.ServerName != "dockyard" {
		t.Fatalf("unexpected server config %#v", got)
	}
	if doc := exportLayout(t, "--db", dbPath); len(doc.Columns) != 2 {
		t.Fatalf("expected serve shutdown to autosave, got %d columns", len(doc.Columns))
	}
}

func TestRunTUIWithServeSharesManager(t *testing.T) {
	isolateHome(t)
	dbPath := filepath.Join(t.TempDir(), "dockyard.db")
	orig := serveFunc
	t.Cleanup(func() { serveFunc = orig })

	started := make(chan struct{})
	stopped := make(chan struct{})
	serveFunc = func(ctx context.Context, cfg server.Config, deps server.Dependencies) error {
		if cfg.HTTPBind != "127.0.0.1:7420" {
			t.Errorf("unexpected bind %q", cfg.HTTPBind)
		}
		close(started)
		<-ctx.Done()
		close(stopped)
		return nil
	}
	fakePrograms(t, func(m tea.Model) program {
		return scriptedProgram{model: m, runFn: func(model tea.Model) (tea.Model, error) {
			select {
			case <-started:
			case <-time.After(2 * time.Second):
				t.Error("server did not start")
			}
			return model, nil
		}}
	})
	if err := run(context.Background(), []string{"--db", dbPath, "--serve"}, io.Discard, io.Discard); err != nil {
		t.Fatalf("run(--serve) error = %v", err)
	}
	select {
	case <-stopped:
	default:
		t.Fatal("expected server stopped when the TUI exits")
	}
}

func TestRunDevModeCreatesWorkspaceLogFile(t *testing.T) {
	isolateHome(t)
	fakePrograms(t, func(tea.Model) program { return fakeProgram{} })
	workspace := t.TempDir()
	t.Chdir(workspace)

	if err := run(context.Background(), []string{"--dev", "--db", filepath.Join(workspace, "dockyard.db")}, io.Discard, io.Discard); err != nil {
		t.Fatalf("run(--dev) error = %v", err)
	}
	logDir := filepath.Join(workspace, ".dockyard", "log")
	entries, err := os.ReadDir(logDir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	var logPath string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasPrefix(entry.Name(), "dockyard-") && strings.HasSuffix(entry.Name(), ".log") {
			logPath = filepath.Join(logDir, entry.Name())
		}
	}
	if logPath == "" {
		t.Fatalf("expected a dev log file in %s, got %v", logDir, entries)
	}
	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(content), "starting tui program loop") {
		t.Fatalf("expected TUI lifecycle entries, got %q", content)
	}
}

func TestRuntimeLoggerCanMuteConsoleSink(t *testing.T) {
	var console bytes.Buffer
	cfg := config.Default("/tmp/dockyard.db", "/tmp/layouts").Logging
	logger, err := newRuntimeLogger(&console, "dockyard", false, cfg, func() time.Time {
		return time.Date(2026, 2, 23, 12, 0, 0, 0, time.UTC)
	})
	if err != nil {
		t.Fatalf("newRuntimeLogger() error = %v", err)
	}

	logger.Info("before")
	logger.SetConsoleEnabled(false)
	logger.Info("during")
	logger.SetConsoleEnabled(true)
	logger.Info("after")
	logger.Debug("hidden below info")

	out := console.String()
	if !strings.Contains(out, "before") || !strings.Contains(out, "after") {
		t.Fatalf("expected console entries, got %q", out)
	}
	if strings.Contains(out, "during") || strings.Contains(out, "hidden below info") {
		t.Fatalf("expected muted and filtered entries omitted, got %q", out)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
}

func TestDevLogFilePathResolvesAgainstWorkspaceRoot(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "go.mod"), []byte("module example.com/test\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if got := workspaceRootFrom(nested); got != root {
		t.Fatalf("workspaceRootFrom() = %q, want %q", got, root)
	}

	t.Chdir(nested)
	got, err := devLogFilePath("", "dock yard", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("devLogFilePath() error = %v", err)
	}
	want := filepath.Join(root, ".dockyard", "log", "dock-yard-20260301.log")
	if got != want {
		t.Fatalf("devLogFilePath() = %q, want %q", got, want)
	}
	if sanitizeLogFileStem(" / ") != "dockyard" {
		t.Fatal("expected fallback stem")
	}
}
