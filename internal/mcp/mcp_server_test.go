package mcp_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fortify-index/mfi/internal/contract"
	mcp_internal "github.com/fortify-index/mfi/internal/mcp"
	"github.com/fortify-index/mfi/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseConfig(t *testing.T) *contract.Config {
	t.Helper()
	dir := t.TempDir()
	cycles := map[string]string{
		"2023": `[{"id": 1, "name": "Golden Oil", "productType": "Edible Oil", "sat": 20, "pt": 10, "ieg": 10, "compliance": [60]}]`,
		"2024": `[{"id": 1, "name": "Golden Oil", "productType": "Edible Oil", "ivc": 30, "pt": 20, "ieg": 20, "compliance": [100]},
		          {"id": 2, "name": "Sea Salt", "productType": "Salt", "sat": 10}]`,
	}
	for cycle, body := range cycles {
		require.NoError(t, os.WriteFile(filepath.Join(dir, cycle+".json"), []byte(body), 0o644))
	}
	return &contract.Config{
		Cycle:     "2024",
		Source:    schema.FileSource,
		InputFile: filepath.Join(dir, "{cycle}.json"),
		Strategy:  schema.AnyStrategy,
		Precision: 1,
	}
}

func callTool(t *testing.T, cfg *contract.Config, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	s := mcp_internal.NewMCPServer(cfg, nil)
	tool := s.GetTool(name)
	require.NotNil(t, tool, "Tool %s should exist", name)

	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
	res, err := tool.Handler(context.Background(), req)
	require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
	return res
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	return res.Content[0].(mcp.TextContent).Text
}

func TestRankEntities(t *testing.T) {
	res := callTool(t, baseConfig(t), "rank_entities", map[string]any{"cycle": "2024"})
	require.False(t, res.IsError, resultText(t, res))

	var result schema.RankingResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &result))
	require.Len(t, result.Records, 2)
	assert.Equal(t, "Golden Oil", result.Records[0].EntityName)
	assert.Equal(t, 70.0, result.Records[0].FinalScore)
	assert.Equal(t, 1, result.IncompleteCount)
}

func TestRankEntities_Filters(t *testing.T) {
	res := callTool(t, baseConfig(t), "rank_entities", map[string]any{"sector": "salt", "limit": 5.0})
	require.False(t, res.IsError, resultText(t, res))

	var result schema.RankingResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &result))
	require.Len(t, result.Records, 1)
	assert.Equal(t, "Sea Salt", result.Records[0].EntityName)
	assert.Equal(t, 2, result.Records[0].Rank)
}

func TestRankEntities_Errors(t *testing.T) {
	t.Run("unknown cycle", func(t *testing.T) {
		res := callTool(t, baseConfig(t), "rank_entities", map[string]any{"cycle": "1999"})
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(t, res), "ranking failed")
	})

	t.Run("invalid strategy", func(t *testing.T) {
		res := callTool(t, baseConfig(t), "rank_entities", map[string]any{"strategy": "max"})
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(t, res), "invalid strategy")
	})
}

func TestClassifyBand(t *testing.T) {
	tests := []struct {
		name     string
		args     map[string]any
		expected schema.Band
	}{
		{"fully", map[string]any{"compliance": []any{100.0, 100.0}}, schema.FullyFortified},
		{"adequately", map[string]any{"compliance": []any{85.0, 70.0}}, schema.AdequatelyFortified},
		{"not", map[string]any{"compliance": []any{20.0, "25"}}, schema.NotFortified},
		{"min", map[string]any{"compliance": []any{85.0, 70.0}, "strategy": "min"}, schema.PartlyFortified},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := callTool(t, baseConfig(t), "classify_band", tt.args)
			require.False(t, res.IsError, resultText(t, res))

			var result schema.BandResult
			require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &result))
			assert.Equal(t, tt.expected, result.Band)
		})
	}
}

func TestClassifyBand_ValidationErrors(t *testing.T) {
	for name, args := range map[string]map[string]any{
		"missing":   {},
		"not array": {"compliance": "85"},
		"garbage":   {"compliance": []any{"high"}},
		"object":    {"compliance": []any{map[string]any{"x": 1}}},
		"negative":  {"compliance": []any{-1.0}},
	} {
		t.Run(name, func(t *testing.T) {
			res := callTool(t, baseConfig(t), "classify_band", args)
			assert.True(t, res.IsError, "The response should indicate an error state")
			assert.Contains(t, resultText(t, res), "invalid compliance")
		})
	}
}

func TestCompareCycles(t *testing.T) {
	res := callTool(t, baseConfig(t), "compare_cycles", map[string]any{"base_cycle": "2023", "target_cycle": "2024"})
	require.False(t, res.IsError, resultText(t, res))

	var result schema.ComparisonResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &result))
	assert.Equal(t, "2023", result.Summary.BaseCycle)
	assert.Equal(t, 1, result.Summary.TotalNewEntities)
	assert.Equal(t, 1, result.Summary.TotalActiveEntities)
	require.Len(t, result.Details, 2)
	assert.Equal(t, 30.0, result.Details[0].Delta)
}

func TestCompareCycles_ValidationErrors(t *testing.T) {
	t.Run("missing base_cycle", func(t *testing.T) {
		res := callTool(t, baseConfig(t), "compare_cycles", map[string]any{"base_cycle": "", "target_cycle": "2024"})
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(t, res), "base_cycle and target_cycle are required")
	})

	t.Run("same cycle", func(t *testing.T) {
		res := callTool(t, baseConfig(t), "compare_cycles", map[string]any{"base_cycle": "2024", "target_cycle": "2024"})
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(t, res), "must differ")
	})
}
