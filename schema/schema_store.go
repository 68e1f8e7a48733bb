package schema

import "time"

// RunParams describes where a ranking run got its raw metrics from.
type RunParams struct {
	Cycle  string         `json:"cycle"`
	Source string         `json:"source"`
	Extra  map[string]any `json:"extra,omitempty"`
}

// RunRecord represents a row from the mfi_runs table.
type RunRecord struct {
	RunID         int64
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int32
	TotalEntities int32
	Cycle         string
	Source        string
	ConfigParams  *string
}

// RunInputRecord represents a row from the mfi_run_inputs table.
// Only raw inputs are stored; scores and ranks are recomputed on read.
type RunInputRecord struct {
	RunID  int64
	Metric RawMetric
}
