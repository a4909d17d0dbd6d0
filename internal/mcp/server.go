// Package mcp provides a Model Context Protocol server for quakeboard.
//
// It exposes the dashboard's aggregations (region counts, stacked timeline,
// category breakdown) and its filter mutations (vector search, subcategory
// toggling, reset) as MCP tools, so an agent can drive the same filter state
// the browser views share. Served over stdio transport.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sthimark/quakeboard/internal/dashboard"
)

// NewServer creates an MCP server wired to the dashboard engine.
func NewServer(engine *dashboard.Engine, version string) *server.MCPServer {
	if version == "" {
		version = "dev"
	}

	s := server.NewMCPServer(
		"quakeboard",
		version,
		server.WithToolCapabilities(false),
	)

	registerRegionCountsTool(s, engine)
	registerTimelineTool(s, engine)
	registerCategoriesTool(s, engine)
	registerSearchTool(s, engine)
	registerToggleTool(s, engine)
	registerResetTool(s, engine)

	return s
}

func toolJSON(v any) *mcp.CallToolResult {
	data, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(data))
}

func registerRegionCountsTool(s *server.MCPServer, engine *dashboard.Engine) {
	tool := mcp.NewTool("quakeboard_region_counts",
		mcp.WithDescription("Per-region message counts and distinct-actor counts for the current filter state (the choropleth map aggregation)."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		counts := engine.Map.Counts()
		return toolJSON(map[string]any{
			"messages":     counts.Messages,
			"actors":       counts.Actors,
			"max_messages": counts.MaxMessages(),
			"max_actors":   counts.MaxActors(),
		}), nil
	})
}

func registerTimelineTool(s *server.MCPServer, engine *dashboard.Engine) {
	tool := mcp.NewTool("quakeboard_timeline",
		mcp.WithDescription("The 5-minute bucketed per-category message series for the current filter state, optionally scoped to one region first."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("region",
			mcp.Description("Scope the series to one region name before reading. Empty clears the scope."),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if region, err := req.RequireString("region"); err == nil {
			if err := engine.ScopeRegion(ctx, region); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
		}
		return toolJSON(map[string]any{
			"series": engine.Stacked.Series(),
			"region": engine.Stacked.Region(),
		}), nil
	})
}

func registerCategoriesTool(s *server.MCPServer, engine *dashboard.Engine) {
	tool := mcp.NewTool("quakeboard_categories",
		mcp.WithDescription("The taxonomy plus the circle-packing breakdown (per main category and subcategory counts) for the current filter state."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return toolJSON(map[string]any{
			"taxonomy":  engine.Tax.Categories(),
			"breakdown": engine.Pack.Forest(),
		}), nil
	})
}

func registerSearchTool(s *server.MCPServer, engine *dashboard.Engine) {
	tool := mcp.NewTool("quakeboard_search",
		mcp.WithDescription("Run a vector similarity search across the message corpus. All views re-aggregate over the hits; read them with the other tools afterwards."),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("term",
			mcp.Required(),
			mcp.Description("Search term; must not be blank"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		term, err := req.RequireString("term")
		if err != nil {
			return mcp.NewToolResultError("term is required"), nil
		}
		if err := engine.VectorSearch(term); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		engine.Store.Wait()
		return mcp.NewToolResultText(fmt.Sprintf("search %q applied; views updated", strings.TrimSpace(term))), nil
	})
}

func registerToggleTool(s *server.MCPServer, engine *dashboard.Engine) {
	tool := mcp.NewTool("quakeboard_toggle",
		mcp.WithDescription("Toggle one subcategory label in the shared category selection. Selecting any label hides every unselected label, including whole categories with nothing selected."),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("category",
			mcp.Required(),
			mcp.Description("Main category name"),
		),
		mcp.WithString("label",
			mcp.Required(),
			mcp.Description("Subcategory label to toggle"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		category, err := req.RequireString("category")
		if err != nil {
			return mcp.NewToolResultError("category is required"), nil
		}
		label, err := req.RequireString("label")
		if err != nil {
			return mcp.NewToolResultError("label is required"), nil
		}
		if err := engine.Store.ToggleSubcategory(category, label); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		engine.Store.Wait()

		sel, window := engine.State()
		return toolJSON(map[string]any{"selection": sel, "window": window}), nil
	})
}

func registerResetTool(s *server.MCPServer, engine *dashboard.Engine) {
	tool := mcp.NewTool("quakeboard_reset",
		mcp.WithDescription("Clear every selection and both time bounds; views re-fetch the unfiltered corpus."),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		engine.Store.Reset()
		engine.Store.Wait()
		return mcp.NewToolResultText("filters reset; views show unfiltered data"), nil
	})
}
