package core

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fortify-index/mfi/internal/contract"
	"github.com/fortify-index/mfi/internal/iocache"
	"github.com/fortify-index/mfi/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const cycle2023 = `[
  {"id": 1, "name": "Golden Oil", "company_name": "Acme", "productType": "Edible Oil", "tier": "TIER_1", "ivc": 30, "pt": 10, "ieg": 10, "compliance": [60]},
  {"id": 2, "name": "Sunny Flour", "company_name": "Mill", "productType": "Wheat Flour", "tier": "TIER_2", "sat": 20, "pt": 5, "ieg": 5, "compliance": [20, 25]}
]`

const cycle2024 = `{"data": [
  {"id": 1, "name": "Golden Oil", "company_name": "Acme", "productType": "Edible Oil", "tier": "TIER_1", "ivc": 30, "pt": 20, "ieg": 20, "compliance": [100, 99]},
  {"id": 3, "name": "Sea Salt", "company_name": "Brine", "productType": "Salt", "tier": "TIER_1", "sat": 10, "pt": null, "ieg": "n/a"}
]}`

// writeCycles writes one JSON file per cycle and returns the templated path.
func writeCycles(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2023.json"), []byte(cycle2023), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2024.json"), []byte(cycle2024), 0o644))
	return filepath.Join(dir, "{cycle}.json")
}

func fileConfig(t *testing.T, output schema.OutputMode) *contract.Config {
	t.Helper()
	return &contract.Config{
		Cycle:        "2024",
		Source:       schema.FileSource,
		InputFile:    writeCycles(t),
		Strategy:     schema.AnyStrategy,
		SortKey:      schema.SortByScore,
		SortDesc:     true,
		Precision:    1,
		Output:       output,
		OutputFile:   filepath.Join(t.TempDir(), "out"),
		Width:        120,
		CacheBackend: schema.NoneBackend,
	}
}

// historyManager returns a mock manager whose history store accepts any run.
func historyManager() (*iocache.MockCacheManager, *iocache.MockHistoryStore) {
	history := &iocache.MockHistoryStore{}
	history.On("BeginRun", mock.Anything, mock.Anything).Return(int64(7), nil)
	history.On("RecordInput", int64(7), mock.Anything).Return(nil)
	history.On("EndRun", int64(7), mock.Anything, mock.Anything).Return(nil)

	mgr := &iocache.MockCacheManager{}
	mgr.On("GetResponseStore").Return(nil)
	mgr.On("GetHistoryStore").Return(history)
	return mgr, history
}

func TestExecuteRank_JSON(t *testing.T) {
	cfg := fileConfig(t, schema.JSONOut)
	mgr, history := historyManager()

	require.NoError(t, ExecuteRank(context.Background(), cfg, mgr))

	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	var result schema.RankingResult
	require.NoError(t, json.Unmarshal(data, &result))

	assert.Equal(t, "2024", result.Cycle)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 1, result.IncompleteCount)
	assert.Equal(t, schema.FullyFortified, result.SummaryBand)
	require.Len(t, result.Records, 2)
	assert.Equal(t, "Golden Oil", result.Records[0].EntityName)
	assert.Equal(t, 70.0, result.Records[0].FinalScore)
	assert.Equal(t, schema.IVCType, result.Records[0].SATType)
	assert.Equal(t, "Sea Salt", result.Records[1].EntityName)
	assert.True(t, result.Records[1].Incomplete)
	assert.Equal(t, []string{schema.SubScorePT, schema.SubScoreIEG}, result.Records[1].Missing)

	history.AssertNumberOfCalls(t, "RecordInput", 2)
	history.AssertCalled(t, "EndRun", int64(7), mock.Anything, 2)
}

func TestExecuteRank_SourceError(t *testing.T) {
	cfg := fileConfig(t, schema.JSONOut)
	cfg.Cycle = "1999"
	mgr, history := historyManager()

	err := ExecuteRank(context.Background(), cfg, mgr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1999")
	history.AssertNotCalled(t, "BeginRun", mock.Anything, mock.Anything)
	_, statErr := os.Stat(cfg.OutputFile)
	assert.True(t, os.IsNotExist(statErr))
}

func TestExecuteRank_NilManager(t *testing.T) {
	cfg := fileConfig(t, schema.CSVOut)
	require.NoError(t, ExecuteRank(context.Background(), cfg, nil))

	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(schema.CSVHeader, ","), lines[0])
	assert.Equal(t, "Golden Oil,Acme,Edible Oil,IVC,30.0,20.0,20.0,70.0,1", lines[1])
}

func TestExecuteBands_Values(t *testing.T) {
	cfg := fileConfig(t, schema.CSVOut)
	require.NoError(t, ExecuteBands(context.Background(), cfg, nil, []string{"85", "70%"}))

	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	assert.Equal(t, "compliance,strategy,band\n85.0;70.0,any,Adequately Fortified\n", string(data))
}

func TestExecuteBands_InvalidValue(t *testing.T) {
	cfg := fileConfig(t, schema.CSVOut)
	err := ExecuteBands(context.Background(), cfg, nil, []string{"85", "lots"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lots")
}

func TestExecuteBands_Counts(t *testing.T) {
	cfg := fileConfig(t, schema.CSVOut)
	mgr, _ := historyManager()
	require.NoError(t, ExecuteBands(context.Background(), cfg, mgr, nil))

	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	assert.Equal(t, "band,count,share\nFully Fortified,1,50.0\nNo Data,1,50.0\n", string(data))
}

func TestClassifyValues(t *testing.T) {
	tests := []struct {
		name     string
		values   []string
		strategy schema.BandStrategy
		expected schema.Band
	}{
		{"all full", []string{"100", "100"}, schema.AnyStrategy, schema.FullyFortified},
		{"any adequate", []string{"85", "70"}, schema.AnyStrategy, schema.AdequatelyFortified},
		{"none", []string{"20", "25"}, schema.AnyStrategy, schema.NotFortified},
		{"min strategy", []string{"85", "70"}, schema.MinStrategy, schema.PartlyFortified},
		{"default strategy", []string{"85"}, "", schema.AdequatelyFortified},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ClassifyValues(tt.values, tt.strategy)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result.Band)
			assert.Len(t, result.Compliance, len(tt.values))
		})
	}

	_, err := ClassifyValues([]string{"-5"}, schema.AnyStrategy)
	assert.Error(t, err)
}

func TestExecuteCompare(t *testing.T) {
	cfg := fileConfig(t, schema.JSONOut)
	cfg.BaseCycle = "2023"
	cfg.TargetCycle = "2024"
	mgr, history := historyManager()

	require.NoError(t, ExecuteCompare(context.Background(), cfg, mgr))

	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	var result schema.ComparisonResult
	require.NoError(t, json.Unmarshal(data, &result))

	assert.Equal(t, "2023", result.Summary.BaseCycle)
	assert.Equal(t, 1, result.Summary.TotalNewEntities)
	assert.Equal(t, 1, result.Summary.TotalInactive)
	assert.Equal(t, 1, result.Summary.TotalActiveEntities)
	assert.Equal(t, 1, result.Summary.TotalBandChanges)
	require.Len(t, result.Details, 3)
	assert.Equal(t, "2", result.Details[0].EntityKey) // -30, dropped out
	assert.Equal(t, schema.InactiveStatus, result.Details[0].Status)
	assert.Equal(t, "1", result.Details[1].EntityKey) // +20
	assert.Equal(t, 20.0, result.Details[1].Delta)
	assert.Equal(t, schema.PartlyFortified, result.Details[1].BeforeBand)
	assert.Equal(t, schema.FullyFortified, result.Details[1].AfterBand)
	assert.Equal(t, "3", result.Details[2].EntityKey)

	history.AssertNumberOfCalls(t, "BeginRun", 2)
}

func TestExecuteCompare_MissingBase(t *testing.T) {
	cfg := fileConfig(t, schema.JSONOut)
	assert.Error(t, ExecuteCompare(context.Background(), cfg, nil))
}

func TestRecordRun(t *testing.T) {
	cfg := &contract.Config{Strategy: schema.MinStrategy, Output: schema.TextOut}
	metrics := sampleMetrics()

	t.Run("records every input", func(t *testing.T) {
		history := &iocache.MockHistoryStore{}
		history.On("BeginRun", mock.Anything, mock.MatchedBy(func(p schema.RunParams) bool {
			return p.Cycle == "2024" && p.Source == "api" && p.Extra["strategy"] == "min"
		})).Return(int64(1), nil)
		history.On("RecordInput", int64(1), mock.Anything).Return(nil)
		history.On("EndRun", int64(1), mock.Anything, 3).Return(nil)

		recordRun(history, "api", "2024", metrics, cfg)
		history.AssertExpectations(t)
	})

	t.Run("begin failure skips inputs", func(t *testing.T) {
		history := &iocache.MockHistoryStore{}
		history.On("BeginRun", mock.Anything, mock.Anything).Return(int64(0), errors.New("db down"))

		recordRun(history, "api", "2024", metrics, cfg)
		history.AssertNotCalled(t, "RecordInput", mock.Anything, mock.Anything)
	})

	t.Run("failed inputs are not counted", func(t *testing.T) {
		history := &iocache.MockHistoryStore{}
		history.On("BeginRun", mock.Anything, mock.Anything).Return(int64(2), nil)
		history.On("RecordInput", int64(2), metrics[0]).Return(errors.New("constraint"))
		history.On("RecordInput", int64(2), mock.Anything).Return(nil)
		history.On("EndRun", int64(2), mock.Anything, 2).Return(nil)

		recordRun(history, "api", "2024", metrics, cfg)
		history.AssertExpectations(t)
	})

	t.Run("nil store", func(t *testing.T) {
		assert.NotPanics(t, func() { recordRun(nil, "api", "2024", metrics, cfg) })
	})
}
