package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fortify-index/mfi/core"
	"github.com/fortify-index/mfi/internal/contract"
	"github.com/fortify-index/mfi/internal/source"
	"github.com/fortify-index/mfi/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
}

// stores returns the response cache and history store, either of which may be nil.
func (h *toolHandler) stores() (contract.CacheStore, contract.HistoryStore) {
	if h.mgr == nil {
		return nil, nil
	}
	return h.mgr.GetResponseStore(), h.mgr.GetHistoryStore()
}

func (h *toolHandler) handleRankEntities(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	cfg.Cycle = request.GetString("cycle", cfg.Cycle)
	cfg.Sector = request.GetString("sector", "")
	cfg.Tier = schema.NormalizeTier(request.GetString("tier", ""))
	cfg.Query = request.GetString("query", "")
	cfg.IncompleteOnly = request.GetBool("incomplete_only", false)
	cfg.SortKey = schema.SortByScore
	cfg.SortDesc = true
	if l := request.GetInt("limit", 0); l > 0 {
		cfg.ResultLimit = l
	}
	strategy, err := parseStrategy(request.GetString("strategy", string(cfg.Strategy)))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	cfg.Strategy = strategy

	store, history := h.stores()
	result, err := core.RankCycle(ctx, source.New(cfg, store), cfg, history)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("ranking failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleClassifyBand(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	strategy, err := parseStrategy(request.GetString("strategy", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	values, err := complianceArgs(request.GetArguments()["compliance"])
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid compliance: %v", err)), nil
	}

	result, err := core.ClassifyValues(values, strategy)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid compliance: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleCompareCycles(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	cfg.BaseCycle = strings.TrimSpace(request.GetString("base_cycle", ""))
	cfg.TargetCycle = strings.TrimSpace(request.GetString("target_cycle", ""))
	cfg.Sector = request.GetString("sector", "")
	if l := request.GetInt("limit", 0); l > 0 {
		cfg.ResultLimit = l
	}

	if cfg.BaseCycle == "" || cfg.TargetCycle == "" {
		return mcp.NewToolResultError("base_cycle and target_cycle are required"), nil
	}
	if cfg.BaseCycle == cfg.TargetCycle {
		return mcp.NewToolResultError(fmt.Sprintf("base and target cycle must differ (both are %q)", cfg.BaseCycle)), nil
	}

	store, history := h.stores()
	result, err := core.CompareCycles(ctx, source.New(cfg, store), cfg, history)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("comparison failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

// parseStrategy validates a band strategy argument. Empty means schema.AnyStrategy.
func parseStrategy(s string) (schema.BandStrategy, error) {
	strategy := schema.BandStrategy(strings.ToLower(strings.TrimSpace(s)))
	if strategy == "" {
		return schema.AnyStrategy, nil
	}
	if _, ok := schema.ValidBandStrategies[strategy]; !ok {
		return "", fmt.Errorf("invalid strategy %q. must be any, min", s)
	}
	return strategy, nil
}

// complianceArgs turns the JSON array argument into strings for core.ClassifyValues.
// Numbers and numeric strings are accepted.
func complianceArgs(arg any) ([]string, error) {
	items, ok := arg.([]any)
	if !ok {
		return nil, fmt.Errorf("expected an array of numbers")
	}
	values := make([]string, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case float64:
			values = append(values, fmt.Sprint(v))
		case string:
			values = append(values, v)
		default:
			return nil, fmt.Errorf("unexpected value %v", item)
		}
	}
	return values, nil
}
