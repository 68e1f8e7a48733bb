package iocache

import (
	"errors"
	"fmt"

	"github.com/fortify-index/mfi/core/algo"
	"github.com/fortify-index/mfi/internal/contract"
	"github.com/fortify-index/mfi/internal/parquet"
	"github.com/fortify-index/mfi/schema"
)

// ExecuteHistoryExport exports recorded runs and their re-ranked records to Parquet files.
func ExecuteHistoryExport(outputFile string, strategy schema.BandStrategy) error {
	return exportHistory(Manager.GetHistoryStore(), outputFile, strategy)
}

func exportHistory(store contract.HistoryStore, outputFile string, strategy schema.BandStrategy) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("history store is not initialized")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no run history found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total runs: %d\n", status.TotalRuns)
	fmt.Printf("Total input records: %d\n", status.TableSizes[runInputsTable])

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}

	// Scores are never stored, so every run is aggregated again from its inputs
	var entities []parquet.RankedEntity
	for _, run := range runs {
		inputs, err := store.GetRunInputs(run.RunID)
		if err != nil {
			return fmt.Errorf("failed to retrieve inputs of run %d: %w", run.RunID, err)
		}
		ranked := algo.Rank(inputs, strategy)
		entities = append(entities, parquet.ConvertScoreRecords(run.RunID, run.Cycle, ranked)...)
	}

	runsFile := outputFile + ".runs.parquet"
	if err := parquet.WriteRankingRunsParquet(parquet.ConvertRunRecords(runs), runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	fmt.Printf("Exported %d runs to: %s\n", len(runs), runsFile)

	recordsFile := outputFile + ".records.parquet"
	if err := parquet.WriteRankedEntitiesParquet(entities, recordsFile); err != nil {
		return fmt.Errorf("failed to write ranked records: %w", err)
	}
	fmt.Printf("Exported %d ranked records to: %s\n", len(entities), recordsFile)

	return nil
}
