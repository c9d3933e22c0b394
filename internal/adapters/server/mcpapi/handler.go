// Package mcpapi provides a stateless MCP streamable-HTTP adapter.
package mcpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/evanschultz/dockyard/internal/adapters/server/common"
	"github.com/evanschultz/dockyard/internal/app"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// toolPrefix namespaces every registered tool.
const toolPrefix = "dockyard."

// Config captures MCP transport configuration.
type Config struct {
	ServerName    string
	ServerVersion string
	EndpointPath  string
}

// Handler wraps one stateless MCP streamable HTTP handler.
type Handler struct {
	httpHandler http.Handler
}

// NewHandler builds one stateless MCP adapter exposing the layout tools.
func NewHandler(cfg Config, layouts common.LayoutService) (*Handler, error) {
	if layouts == nil {
		return nil, fmt.Errorf("layout service is required")
	}
	cfg = normalizeConfig(cfg)

	mcpSrv := mcpserver.NewMCPServer(
		cfg.ServerName,
		cfg.ServerVersion,
		mcpserver.WithToolCapabilities(false),
	)
	registerDescribeTools(mcpSrv, layouts)
	registerColumnTools(mcpSrv, layouts)
	registerPanelTools(mcpSrv, layouts)
	registerPersistenceTools(mcpSrv, layouts)

	streamable := mcpserver.NewStreamableHTTPServer(
		mcpSrv,
		mcpserver.WithEndpointPath(cfg.EndpointPath),
		mcpserver.WithStateLess(true),
	)
	return &Handler{httpHandler: streamable}, nil
}

// ServeHTTP handles one MCP streamable HTTP request.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.httpHandler == nil {
		http.Error(w, "mcp handler unavailable", http.StatusServiceUnavailable)
		return
	}
	h.httpHandler.ServeHTTP(w, r)
}

// normalizeConfig applies deterministic defaults to MCP adapter config.
func normalizeConfig(cfg Config) Config {
	cfg.ServerName = strings.TrimSpace(cfg.ServerName)
	if cfg.ServerName == "" {
		cfg.ServerName = "dockyard"
	}
	cfg.ServerVersion = strings.TrimSpace(cfg.ServerVersion)
	if cfg.ServerVersion == "" {
		cfg.ServerVersion = "dev"
	}
	cfg.EndpointPath = strings.TrimSpace(cfg.EndpointPath)
	if cfg.EndpointPath == "" {
		cfg.EndpointPath = "/mcp"
	}
	if !strings.HasPrefix(cfg.EndpointPath, "/") {
		cfg.EndpointPath = "/" + cfg.EndpointPath
	}
	cfg.EndpointPath = "/" + strings.Trim(cfg.EndpointPath, "/")
	return cfg
}

// registerDescribeTools registers the read-only `dockyard.describe_layout` and `dockyard.list_slots` tools.
func registerDescribeTools(srv *mcpserver.MCPServer, layouts common.LayoutService) {
	srv.AddTool(
		mcp.NewTool(
			toolPrefix+"describe_layout",
			mcp.WithDescription("Return the current column arrangement, optionally with a markdown summary."),
			mcp.WithBoolean("markdown", mcp.Description("Include a markdown rendering of the layout")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			view, err := layouts.DescribeLayout(ctx, common.DescribeLayoutRequest{
				Markdown: req.GetBool("markdown", false),
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(view)
			if err != nil {
				return nil, fmt.Errorf("encode describe_layout result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			toolPrefix+"list_slots",
			mcp.WithDescription("List saved layout slots."),
		),
		func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			slots, err := layouts.ListSlots(ctx)
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(map[string]any{"slots": slots})
			if err != nil {
				return nil, fmt.Errorf("encode list_slots result: %w", err)
			}
			return result, nil
		},
	)
}

// withToolActor attributes the call to the optional `actor` argument.
func withToolActor(ctx context.Context, req mcp.CallToolRequest) context.Context {
	return app.WithActor(ctx, app.Actor{
		Name:    req.GetString("actor", ""),
		Surface: app.SurfaceMCP,
	})
}

// operationResult encodes one mutation outcome.
func operationResult(name string, res common.OperationResult, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		return toolResultFromError(err), nil
	}
	result, err := mcp.NewToolResultJSON(res)
	if err != nil {
		return nil, fmt.Errorf("encode %s result: %w", name, err)
	}
	return result, nil
}

// toolResultFromError maps service errors into MCP-visible tool errors.
func toolResultFromError(err error) *mcp.CallToolResult {
	switch {
	case err == nil:
		return mcp.NewToolResultError("unknown error")
	case errors.Is(err, common.ErrInvalidRequest):
		return mcp.NewToolResultError("invalid_request: " + err.Error())
	}
	var opErr *common.OperationError
	if errors.As(err, &opErr) {
		return mcp.NewToolResultError(opErr.Code() + ": " + opErr.Status.Message)
	}
	if code := app.ErrorCode(err); code != "internal" {
		return mcp.NewToolResultError(code + ": " + err.Error())
	}
	return mcp.NewToolResultError("internal_error: " + err.Error())
}
