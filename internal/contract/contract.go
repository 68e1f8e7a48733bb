// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/fortify-index/mfi/schema"
)

// Source fetches the raw metric records of one assessment cycle.
// This allows the ranking logic to be tested without a live MFI API.
type Source interface {
	// Fetch returns the raw records of cycle. An empty cycle means the current one.
	Fetch(ctx context.Context, cycle string) ([]schema.RawMetric, error)

	// Name describes the source for logs and run history (e.g. the API URL or file path).
	Name() string
}

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetResponseStore() CacheStore
	GetHistoryStore() HistoryStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// HistoryStore defines the interface for tracking ranking runs and their raw inputs.
type HistoryStore interface {
	// BeginRun creates a new ranking run and returns its unique ID
	BeginRun(startTime time.Time, params schema.RunParams) (int64, error)

	// RecordInput stores one raw input record of a run
	RecordInput(runID int64, metric schema.RawMetric) error

	// EndRun updates the run with completion data
	EndRun(runID int64, endTime time.Time, totalEntities int) error

	// GetStatus returns status information about the history store
	GetStatus() (schema.HistoryStatus, error)

	// GetAllRuns returns every recorded run, oldest first
	GetAllRuns() ([]schema.RunRecord, error)

	// GetRunInputs returns the raw inputs of a run in insertion order
	GetRunInputs(runID int64) ([]schema.RawMetric, error)

	// Close closes the underlying connection
	Close() error
}
