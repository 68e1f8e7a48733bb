package iocache

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fortify-index/mfi/internal/parquet"
	"github.com/fortify-index/mfi/schema"
	pq "github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportHistory(t *testing.T) {
	store, err := NewHistoryStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	runID, err := store.BeginRun(time.Now(), schema.RunParams{Cycle: "2024", Source: "file.json"})
	require.NoError(t, err)
	require.NoError(t, store.RecordInput(runID, rawMetric("1", "Low", 10, 5, 5)))
	require.NoError(t, store.RecordInput(runID, rawMetric("2", "High", 50, 15, 15)))
	require.NoError(t, store.EndRun(runID, time.Now(), 2))

	output := filepath.Join(t.TempDir(), "export")
	require.NoError(t, exportHistory(store, output, schema.AnyStrategy))

	runs, err := pq.ReadFile[parquet.RankingRun](output + ".runs.parquet")
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "2024", runs[0].Cycle)

	records, err := pq.ReadFile[parquet.RankedEntity](output + ".records.parquet")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "High", records[0].EntityName)
	assert.Equal(t, 80.0, records[0].FinalScore)
	assert.Equal(t, int32(1), records[0].Rank)
	assert.Equal(t, "Low", records[1].EntityName)
	assert.Equal(t, int32(2), records[1].Rank)
}

func TestExportHistory_Errors(t *testing.T) {
	t.Run("output file required", func(t *testing.T) {
		assert.Error(t, exportHistory(&MockHistoryStore{}, "", schema.AnyStrategy))
	})

	t.Run("nil store", func(t *testing.T) {
		assert.Error(t, exportHistory(nil, "out", schema.AnyStrategy))
	})

	t.Run("no runs", func(t *testing.T) {
		store := &MockHistoryStore{}
		store.On("GetStatus").Return(schema.HistoryStatus{Backend: "sqlite", Connected: true}, nil)
		err := exportHistory(store, filepath.Join(t.TempDir(), "out"), schema.AnyStrategy)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no run history")
		store.AssertExpectations(t)
	})

	t.Run("input lookup fails", func(t *testing.T) {
		store := &MockHistoryStore{}
		store.On("GetStatus").Return(schema.HistoryStatus{TotalRuns: 1, TableSizes: map[string]int64{}}, nil)
		store.On("GetAllRuns").Return([]schema.RunRecord{{RunID: 4}}, nil)
		store.On("GetRunInputs", int64(4)).Return(nil, errors.New("boom"))

		output := filepath.Join(t.TempDir(), "out")
		err := exportHistory(store, output, schema.AnyStrategy)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "run 4")
		_, statErr := os.Stat(output + ".runs.parquet")
		assert.True(t, os.IsNotExist(statErr))
	})
}
