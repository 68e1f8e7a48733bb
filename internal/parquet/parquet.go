// Package parquet provides data structures and functions for exporting MFI
// run history and ranked records to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fortify-index/mfi/schema"
	"github.com/parquet-go/parquet-go"
)

// RankingRun represents a single recorded ranking run.
// This struct maps to the mfi_runs database table.
type RankingRun struct {
	// RunID is the unique identifier for this run
	RunID int64 `parquet:"run_id,snappy"`

	// StartTime is when the run began
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	// TotalEntities is the number of raw records aggregated in this run
	TotalEntities int32 `parquet:"total_entities,snappy"`

	Cycle  string `parquet:"cycle,snappy,dict"`
	Source string `parquet:"source,snappy,dict"`

	// ConfigParams contains the JSON-encoded run parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// RankedEntity is one ranked record. It is either recomputed from the stored
// inputs of a run or taken directly from a live ranking.
type RankedEntity struct {
	// RunID references the parent run; zero for live rankings
	RunID int64  `parquet:"run_id,snappy"`
	Cycle string `parquet:"cycle,snappy,dict"`

	EntityID    string `parquet:"entity_id,snappy"`
	EntityName  string `parquet:"entity_name,snappy"`
	CompanyName string `parquet:"company_name,snappy"`
	Sector      string `parquet:"sector,snappy,dict"`
	Tier        string `parquet:"tier,snappy,dict"`
	SATType     string `parquet:"sat_type,snappy,dict"`

	SATWeighted float64 `parquet:"sat_weighted,snappy"`
	PTWeighted  float64 `parquet:"pt_weighted,snappy"`
	IEGWeighted float64 `parquet:"ieg_weighted,snappy"`
	FinalScore  float64 `parquet:"final_score,snappy"`
	Rank        int32   `parquet:"rank,snappy"`
	Band        string  `parquet:"band,snappy,dict"`

	// Incomplete is set when at least one sub-score was missing or invalid
	Incomplete bool `parquet:"incomplete,snappy"`
}

// WriteRankingRunsParquet writes a slice of RankingRun structs to a Parquet file.
func WriteRankingRunsParquet(data []RankingRun, outputPath string) error {
	return writeFile(data, outputPath)
}

// WriteRankedEntitiesParquet writes a slice of RankedEntity structs to a Parquet file.
func WriteRankedEntitiesParquet(data []RankedEntity, outputPath string) error {
	return writeFile(data, outputPath)
}

// WriteRankedEntities streams ranked records to w in Parquet format.
func WriteRankedEntities(w io.Writer, data []RankedEntity) error {
	// The schema is derived from the RankedEntity struct tags
	writer := parquet.NewGenericWriter[RankedEntity](w)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet: %w", err)
	}
	return nil
}

func writeFile[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return file.Close()
}

// ConvertRunRecords converts schema.RunRecord to RankingRun for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []RankingRun {
	result := make([]RankingRun, len(records))
	for i, record := range records {
		result[i] = RankingRun{
			RunID:         record.RunID,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			TotalEntities: record.TotalEntities,
			Cycle:         record.Cycle,
			Source:        record.Source,
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}

// ConvertScoreRecords converts ranked schema.ScoreRecord values for Parquet export.
func ConvertScoreRecords(runID int64, cycle string, records []schema.ScoreRecord) []RankedEntity {
	result := make([]RankedEntity, len(records))
	for i, record := range records {
		result[i] = RankedEntity{
			RunID:       runID,
			Cycle:       cycle,
			EntityID:    record.EntityID,
			EntityName:  record.EntityName,
			CompanyName: record.CompanyName,
			Sector:      record.SectorLabel,
			Tier:        string(record.Tier),
			SATType:     string(record.SATType),
			SATWeighted: record.SATWeighted,
			PTWeighted:  record.PTWeighted,
			IEGWeighted: record.IEGWeighted,
			FinalScore:  record.FinalScore,
			Rank:        int32(record.Rank),
			Band:        string(record.Band),
			Incomplete:  record.Incomplete,
		}
	}
	return result
}
