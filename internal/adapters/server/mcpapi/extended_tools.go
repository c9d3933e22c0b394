package mcpapi

import (
	"context"
	"fmt"

	"github.com/evanschultz/dockyard/internal/adapters/server/common"
	"github.com/evanschultz/dockyard/internal/domain"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// registerColumnTools registers add/remove/reset column tools.
func registerColumnTools(srv *mcpserver.MCPServer, layouts common.LayoutService) {
	srv.AddTool(
		mcp.NewTool(
			toolPrefix+"add_column",
			mcp.WithDescription(fmt.Sprintf("Append one empty column (at most %d).", domain.MaxColumns)),
		),
		func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			res, err := layouts.AddColumn(ctx)
			return operationResult("add_column", res, err)
		},
	)

	srv.AddTool(
		mcp.NewTool(
			toolPrefix+"remove_column",
			mcp.WithDescription("Remove one column; its panels migrate to the neighboring column."),
			mcp.WithNumber("index", mcp.Description("Zero-based column index (defaults to the last column)")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			var args struct {
				Index *int `json:"index"`
			}
			if err := req.BindArguments(&args); err != nil {
				return invalidRequestToolResult(err), nil
			}
			res, err := layouts.RemoveColumn(ctx, common.RemoveColumnRequest{Index: args.Index})
			return operationResult("remove_column", res, err)
		},
	)

	srv.AddTool(
		mcp.NewTool(
			toolPrefix+"reset_layout",
			mcp.WithDescription("Collapse every panel into one column in registration order."),
		),
		func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			res, err := layouts.ResetLayout(ctx)
			return operationResult("reset_layout", res, err)
		},
	)
}

// registerPanelTools registers the `dockyard.move_panel` tool.
func registerPanelTools(srv *mcpserver.MCPServer, layouts common.LayoutService) {
	srv.AddTool(
		mcp.NewTool(
			toolPrefix+"move_panel",
			mcp.WithDescription("Move one panel to a column and position."),
			mcp.WithString("panel_id", mcp.Required(), mcp.Description("Panel identifier")),
			mcp.WithNumber("column", mcp.Required(), mcp.Description("Zero-based destination column")),
			mcp.WithNumber("index", mcp.Required(), mcp.Description("Destination position, counted after the panel leaves its column")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			panelID, err := req.RequireString("panel_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			column, err := req.RequireInt("column")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			index, err := req.RequireInt("index")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			res, err := layouts.MovePanel(ctx, common.MovePanelRequest{
				PanelID: panelID,
				Column:  column,
				Index:   index,
			})
			return operationResult("move_panel", res, err)
		},
	)
}

// registerPersistenceTools registers save/load tools.
func registerPersistenceTools(srv *mcpserver.MCPServer, layouts common.LayoutService) {
	srv.AddTool(
		mcp.NewTool(
			toolPrefix+"save_layout",
			mcp.WithDescription("Persist the current layout into the configured slot."),
			mcp.WithString("actor", mcp.Description("Caller name recorded with the save")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			res, err := layouts.SaveLayout(withToolActor(ctx, req))
			return operationResult("save_layout", res, err)
		},
	)

	srv.AddTool(
		mcp.NewTool(
			toolPrefix+"load_layout",
			mcp.WithDescription("Restore the configured slot. A missing slot yields the default layout."),
			mcp.WithString("actor", mcp.Description("Caller name")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			res, err := layouts.LoadLayout(withToolActor(ctx, req))
			return operationResult("load_layout", res, err)
		},
	)
}

// invalidRequestToolResult wraps argument-binding failures as deterministic tool errors.
func invalidRequestToolResult(err error) *mcp.CallToolResult {
	if err == nil {
		return mcp.NewToolResultError("invalid_request: malformed arguments")
	}
	return mcp.NewToolResultError("invalid_request: " + err.Error())
}
