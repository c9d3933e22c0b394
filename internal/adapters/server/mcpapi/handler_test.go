package mcpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"github.com/evanschultz/dockyard/internal/adapters/server/common"
	"github.com/evanschultz/dockyard/internal/app"
	"github.com/mark3labs/mcp-go/mcp"
)

// memoryStore keeps one slot in memory and records the saving actor.
type memoryStore struct {
	data      []byte
	lastActor string
}

func (s *memoryStore) SaveLayout(ctx context.Context, _ string, data []byte) error {
	s.data = append([]byte(nil), data...)
	actor, _ := app.ActorFromContext(ctx)
	s.lastActor = actor.Label()
	return nil
}

func (s *memoryStore) LoadLayout(context.Context, string) ([]byte, error) {
	if s.data == nil {
		return nil, app.ErrNotFound
	}
	return s.data, nil
}

func (s *memoryStore) ClearLayout(context.Context, string) error {
	s.data = nil
	return nil
}

func (s *memoryStore) ListLayouts(context.Context) ([]app.SlotInfo, error) {
	return nil, nil
}

// jsonRPCResponse models minimal JSON-RPC response fields used in MCP adapter tests.
type jsonRPCResponse struct {
	ID     float64        `json:"id"`
	Result map[string]any `json:"result"`
}

// callToolRequest builds one tools/call JSON-RPC payload.
func callToolRequest(id int, toolName string, arguments map[string]any) map[string]any {
	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"method":  "tools/call",
		"params": map[string]any{
			"name":      toolName,
			"arguments": arguments,
		},
	}
}

// toolResultText decodes the first text entry from one tool-call result payload.
func toolResultText(t *testing.T, result map[string]any) string {
	t.Helper()

	contentRaw, ok := result["content"].([]any)
	if !ok || len(contentRaw) == 0 {
		t.Fatalf("content missing in tool result: %#v", result)
	}
	first, ok := contentRaw[0].(map[string]any)
	if !ok {
		t.Fatalf("first content entry has unexpected type: %#v", contentRaw[0])
	}
	text, ok := first["text"].(string)
	if !ok {
		t.Fatalf("content text missing in tool result: %#v", first)
	}
	return text
}

// postJSONRPC sends one JSON-RPC payload and decodes the response body.
func postJSONRPC(t *testing.T, client *http.Client, url string, payload any) (*http.Response, jsonRPCResponse) {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	var decoded jsonRPCResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if err := resp.Body.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	return resp, decoded
}

// initializeRequest builds a deterministic MCP initialize request payload.
func initializeRequest() map[string]any {
	return map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "initialize",
		"params": map[string]any{
			"protocolVersion": mcp.LATEST_PROTOCOL_VERSION,
			"clientInfo": map[string]any{
				"name":    "dockyard-test",
				"version": "1.0.0",
			},
		},
	}
}

// newTestServer starts one MCP server over a manager holding two panels.
func newTestServer(t *testing.T) (*httptest.Server, *memoryStore) {
	t.Helper()
	store := &memoryStore{}
	m, err := app.NewManager(nil, store, app.DefaultManagerConfig())
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	m.RegisterPanel(app.PanelSpec{ID: "layers", Title: "Layers"})
	m.RegisterPanel(app.PanelSpec{ID: "brushes", Title: "Brush Presets"})

	handler, err := NewHandler(Config{}, common.NewAppServiceAdapter(m))
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	_, _ = postJSONRPC(t, server.Client(), server.URL, initializeRequest())
	return server, store
}

// callTool invokes one tool and returns its result payload.
func callTool(t *testing.T, server *httptest.Server, id int, name string, args map[string]any) map[string]any {
	t.Helper()
	_, resp := postJSONRPC(t, server.Client(), server.URL, callToolRequest(id, name, args))
	if resp.Result == nil {
		t.Fatalf("%s returned no result", name)
	}
	return resp.Result
}

// TestNewHandlerRequiresService verifies fail-closed construction.
func TestNewHandlerRequiresService(t *testing.T) {
	if _, err := NewHandler(Config{}, nil); err == nil {
		t.Fatal("expected error without layout service")
	}
}

// TestHandlerUsesStatelessTransport verifies MCP transport does not issue session ids.
func TestHandlerUsesStatelessTransport(t *testing.T) {
	server, _ := newTestServer(t)
	resp, decoded := postJSONRPC(t, server.Client(), server.URL, initializeRequest())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if decoded.ID != 1 {
		t.Fatalf("id = %v, want 1", decoded.ID)
	}
	if got := resp.Header.Get("Mcp-Session-Id"); got != "" {
		t.Fatalf("Mcp-Session-Id header = %q, want empty (stateless transport)", got)
	}
}

// TestHandlerRegistersLayoutTools verifies tool discovery.
func TestHandlerRegistersLayoutTools(t *testing.T) {
	server, _ := newTestServer(t)
	_, toolsResp := postJSONRPC(t, server.Client(), server.URL, map[string]any{
		"jsonrpc": "2.0",
		"id":      2,
		"method":  "tools/list",
	})
	toolsRaw, ok := toolsResp.Result["tools"].([]any)
	if !ok {
		t.Fatalf("tools list payload missing tools: %#v", toolsResp.Result)
	}
	toolNames := make([]string, 0, len(toolsRaw))
	for _, toolRaw := range toolsRaw {
		toolMap, ok := toolRaw.(map[string]any)
		if !ok {
			continue
		}
		name, _ := toolMap["name"].(string)
		toolNames = append(toolNames, name)
	}
	for _, required := range []string{
		"dockyard.describe_layout",
		"dockyard.list_slots",
		"dockyard.add_column",
		"dockyard.remove_column",
		"dockyard.reset_layout",
		"dockyard.move_panel",
		"dockyard.save_layout",
		"dockyard.load_layout",
	} {
		if !slices.Contains(toolNames, required) {
			t.Fatalf("tool list missing %s: %#v", required, toolNames)
		}
	}
}

// TestLayoutToolsRoundTrip drives a column, move, save and load sequence.
func TestLayoutToolsRoundTrip(t *testing.T) {
	server, store := newTestServer(t)

	callTool(t, server, 3, "dockyard.add_column", map[string]any{})
	result := callTool(t, server, 4, "dockyard.move_panel", map[string]any{
		"panel_id": "brushes",
		"column":   1,
		"index":    0,
	})
	var moved common.OperationResult
	if err := json.Unmarshal([]byte(toolResultText(t, result)), &moved); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(moved.Layout.Columns) != 2 || moved.Layout.Columns[1].Panels[0].ID != "brushes" {
		t.Fatalf("unexpected layout %#v", moved.Layout)
	}

	callTool(t, server, 5, "dockyard.save_layout", map[string]any{"actor": "agent-7"})
	if store.lastActor != "agent-7@mcp" {
		t.Fatalf("actor = %q, want agent-7@mcp", store.lastActor)
	}
	callTool(t, server, 6, "dockyard.reset_layout", map[string]any{})
	result = callTool(t, server, 7, "dockyard.load_layout", map[string]any{})
	if !strings.Contains(toolResultText(t, result), `"brushes"`) {
		t.Fatalf("unexpected load result %s", toolResultText(t, result))
	}

	result = callTool(t, server, 8, "dockyard.describe_layout", map[string]any{"markdown": true})
	var view common.LayoutView
	if err := json.Unmarshal([]byte(toolResultText(t, result)), &view); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(view.Columns) != 2 || !strings.Contains(view.Markdown, "## Column 2") {
		t.Fatalf("unexpected describe view %#v", view)
	}
}

// TestLayoutToolErrors verifies error codes surface in tool results.
func TestLayoutToolErrors(t *testing.T) {
	server, _ := newTestServer(t)

	result := callTool(t, server, 3, "dockyard.remove_column", map[string]any{})
	if isErr, _ := result["isError"].(bool); !isErr {
		t.Fatalf("expected tool error, got %#v", result)
	}
	if text := toolResultText(t, result); !strings.HasPrefix(text, "min_columns_reached:") {
		t.Fatalf("unexpected error text %q", text)
	}

	result = callTool(t, server, 4, "dockyard.move_panel", map[string]any{"panel_id": "ghost", "column": 0, "index": 0})
	if text := toolResultText(t, result); !strings.HasPrefix(text, "unknown_panel:") {
		t.Fatalf("unexpected error text %q", text)
	}

	result = callTool(t, server, 5, "dockyard.move_panel", map[string]any{"column": 0, "index": 0})
	if isErr, _ := result["isError"].(bool); !isErr {
		t.Fatalf("expected missing panel_id error, got %#v", result)
	}
}
