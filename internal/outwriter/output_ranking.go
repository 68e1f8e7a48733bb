package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/fortify-index/mfi/internal/contract"
	"github.com/fortify-index/mfi/internal/parquet"
	"github.com/fortify-index/mfi/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteRankingResults outputs a ranked cycle, dispatching based on the output format configured.
func WriteRankingResults(result schema.RankingResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return WriteRankingCSV(w, result.Records, fmtFloat)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return parquet.WriteRankedEntities(w, parquet.ConvertScoreRecords(0, result.Cycle, result.Records))
		}, "Wrote Parquet"); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	case schema.XLSXOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRankingXLSX(w, result.Records)
		}, "Wrote XLSX"); err != nil {
			return fmt.Errorf("error writing XLSX output: %w", err)
		}
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRankingTable(w, result, cfg, fmtFloat, duration)
		}, "Wrote table")
	}
	return nil
}

// writeRankingTable generates and writes the human-readable table.
func writeRankingTable(w io.Writer, result schema.RankingResult, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	table := tablewriter.NewWriter(w)

	table.Header([]string{"Rank", "Brand", "Company", "Sector", "SAT Type", "SAT", "PT", "IEG", "Score", "Band"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	nameWidth := GetMaxTableNameWidth(cfg)
	var data [][]string
	for _, r := range result.Records {
		score := fmtFloat(r.FinalScore)
		if r.Incomplete {
			score += "*"
		}
		band := contract.GetPlainLabel(r.Band)
		if cfg.UseColors {
			band = contract.GetColorLabel(r.Band)
		}
		data = append(data, []string{
			strconv.Itoa(r.Rank),
			contract.TruncateText(r.EntityName, nameWidth),
			contract.TruncateText(r.CompanyName, nameWidth),
			contract.TruncateText(r.SectorLabel, 18),
			string(r.SATType),
			fmtFloat(r.SATWeighted),
			fmtFloat(r.PTWeighted),
			fmtFloat(r.IEGWeighted),
			score,
			band,
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	cycle := result.Cycle
	if cycle == "" {
		cycle = "current"
	}
	if _, err := fmt.Fprintf(w, "Showing %d of %d entities in %s cycle. Summary band: %s\n",
		len(result.Records), result.Total, cycle, contract.GetPlainLabel(result.SummaryBand)); err != nil {
		return err
	}
	if result.IncompleteCount > 0 {
		if _, err := fmt.Fprintf(w, "Incomplete records (*): %d scored with missing sub-scores as 0\n", result.IncompleteCount); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "Ranking completed in %v. Source: %s. Cache backend: %s\n", duration, sourceLabel(cfg), cfg.CacheBackend); err != nil {
		return err
	}
	return nil
}

// WriteRankingCSV writes ranked records in the CSV export layout.
func WriteRankingCSV(w io.Writer, records []schema.ScoreRecord, fmtFloat func(float64) string) error {
	return writeCSVWithHeader(w, schema.CSVHeader, func(cw *csv.Writer) error {
		for _, r := range records {
			row := []string{
				r.EntityName,
				r.CompanyName,
				r.SectorLabel,
				string(r.SATType),
				fmtFloat(r.SATWeighted),
				fmtFloat(r.PTWeighted),
				fmtFloat(r.IEGWeighted),
				fmtFloat(r.FinalScore),
				strconv.Itoa(r.Rank),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeRankingXLSX writes ranked records as a workbook with the CSV export header.
func writeRankingXLSX(w io.Writer, records []schema.ScoreRecord) error {
	rows := make([][]any, 0, len(records))
	for _, r := range records {
		rows = append(rows, []any{
			r.EntityName,
			r.CompanyName,
			r.SectorLabel,
			string(r.SATType),
			r.SATWeighted,
			r.PTWeighted,
			r.IEGWeighted,
			r.FinalScore,
			r.Rank,
		})
	}
	return writeXLSX(w, "Ranking", schema.CSVHeader, rows)
}
