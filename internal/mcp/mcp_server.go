// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/fortify-index/mfi/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the MFI MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager) *server.MCPServer {
	s := server.NewMCPServer(
		"MFI Scoring Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: rank_entities ---
	s.AddTool(mcp.NewTool("rank_entities",
		mcp.WithDescription("Rank the companies and brands of an assessment cycle by their MFI score."),
		mcp.WithString("cycle", mcp.Description("Assessment cycle to rank (defaults to the current cycle).")),
		mcp.WithString("sector", mcp.Description("Only include this sector (e.g. 'Edible Oil').")),
		mcp.WithString("tier", mcp.Description("Only include this tier."), mcp.Enum("TIER_1", "TIER_2", "TIER_3")),
		mcp.WithString("query", mcp.Description("Only include brands or companies whose name contains this text.")),
		mcp.WithBoolean("incomplete_only", mcp.Description("Only include records with missing sub-scores.")),
		mcp.WithString("strategy", mcp.Description("Band strategy. Defaults to 'any'."), mcp.Enum("any", "min")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of results returned.")),
	), h.handleRankEntities)

	// --- 2. Tool: classify_band ---
	s.AddTool(mcp.NewTool("classify_band",
		mcp.WithDescription("Classify product testing compliance percentages into a fortification band."),
		mcp.WithArray("compliance", mcp.Description("Compliance percentages, one per nutrient."), mcp.Required(), mcp.Items(map[string]any{"type": "number"})),
		mcp.WithString("strategy", mcp.Description("Band strategy. Defaults to 'any'."), mcp.Enum("any", "min")),
	), h.handleClassifyBand)

	// --- 3. Tool: compare_cycles ---
	s.AddTool(mcp.NewTool("compare_cycles",
		mcp.WithDescription("Compare MFI scores, ranks and bands between two assessment cycles."),
		mcp.WithString("base_cycle", mcp.Description("The earlier cycle."), mcp.Required()),
		mcp.WithString("target_cycle", mcp.Description("The later cycle."), mcp.Required()),
		mcp.WithString("sector", mcp.Description("Only compare this sector.")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of changes returned.")),
	), h.handleCompareCycles)

	return s
}

// StartMCPServer starts the MFI MCP server over stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
