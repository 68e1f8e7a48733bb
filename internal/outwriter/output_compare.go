package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/fortify-index/mfi/internal/contract"
	"github.com/fortify-index/mfi/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// comparisonHeader is the CSV and XLSX header of a cycle comparison.
var comparisonHeader = []string{
	"rank",
	"entity_key",
	"brand",
	"company",
	"base_score",
	"target_score",
	"delta_score",
	"base_rank",
	"target_rank",
	"rank_delta",
	"base_band",
	"target_band",
	"status",
}

// WriteComparisonResults outputs the comparison, dispatching based on the output format configured.
func WriteComparisonResults(w io.Writer, result schema.ComparisonResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeJSON(w, result); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeCSVResultsForComparison(w, result, fmtFloat); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.XLSXOut:
		if err := writeXLSX(w, "Comparison", comparisonHeader, comparisonRows(result)); err != nil {
			return fmt.Errorf("error writing XLSX output: %w", err)
		}
	case schema.ParquetOut:
		return fmt.Errorf("parquet output is not available for comparisons")
	default:
		return writeComparisonTable(w, result, cfg, fmtFloat, duration)
	}
	return nil
}

// writeComparisonTable writes the comparison in a table with colored deltas.
func writeComparisonTable(w io.Writer, result schema.ComparisonResult, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	defer func() { _ = table.Close() }()

	table.Header([]string{"#", "Brand", "Company", "Before", "After", "Delta", "Rank Δ", "Band", "Status"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	red, green, yellow := colorFuncs(cfg.UseColors)
	nameWidth := GetMaxTableNameWidth(cfg)

	var data [][]string
	for i, r := range result.Details {
		var deltaStr string
		switch {
		case r.Delta > 0:
			// A higher MFI score is an improvement
			deltaStr = green(fmt.Sprintf("+%.*f ▲", cfg.Precision, r.Delta))
		case r.Delta < 0:
			deltaStr = red(fmt.Sprintf("%.*f ▼", cfg.Precision, r.Delta))
		default:
			deltaStr = yellow(fmt.Sprintf("%.*f", cfg.Precision, 0.0))
		}

		data = append(data, []string{
			strconv.Itoa(i + 1),
			contract.TruncateText(r.EntityName, nameWidth),
			contract.TruncateText(r.CompanyName, nameWidth),
			fmtFloat(r.BeforeScore),
			fmtFloat(r.AfterScore),
			deltaStr,
			formatRankDelta(r),
			formatBandChange(r),
			string(r.Status),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	summary := result.Summary
	if _, err := fmt.Fprintf(w, "Showing %d changes from %s to %s\n", len(result.Details), summary.BaseCycle, summary.TargetCycle); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Net score delta: %.*f, Band changes: %d\n", cfg.Precision, summary.NetScoreDelta, summary.TotalBandChanges); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "New entities: %d, Inactive entities: %d, Active entities: %d\n",
		summary.TotalNewEntities, summary.TotalInactive, summary.TotalActiveEntities); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Comparison completed in %v. Cache backend: %s\n", duration, cfg.CacheBackend); err != nil {
		return err
	}
	return nil
}

// formatRankDelta shows how many places an entity climbed or dropped.
func formatRankDelta(r schema.ComparisonDetail) string {
	switch {
	case r.Status == schema.NewStatus:
		return fmt.Sprintf("new #%d", r.AfterRank)
	case r.Status == schema.InactiveStatus:
		return fmt.Sprintf("was #%d", r.BeforeRank)
	case r.RankDelta > 0:
		return fmt.Sprintf("+%d", r.RankDelta)
	default:
		return strconv.Itoa(r.RankDelta)
	}
}

// formatBandChange shows the band transition, or the band when it did not change.
func formatBandChange(r schema.ComparisonDetail) string {
	before := contract.GetPlainLabel(r.BeforeBand)
	after := contract.GetPlainLabel(r.AfterBand)
	switch r.Status {
	case schema.NewStatus:
		return after
	case schema.InactiveStatus:
		return before
	}
	if before == after {
		return after
	}
	return before + " → " + after
}

// writeCSVResultsForComparison writes the comparison details as CSV.
func writeCSVResultsForComparison(w io.Writer, result schema.ComparisonResult, fmtFloat func(float64) string) error {
	return writeCSVWithHeader(w, comparisonHeader, func(cw *csv.Writer) error {
		for i, r := range result.Details {
			row := []string{
				strconv.Itoa(i + 1),
				r.EntityKey,
				r.EntityName,
				r.CompanyName,
				fmtFloat(r.BeforeScore),
				fmtFloat(r.AfterScore),
				fmtFloat(r.Delta),
				strconv.Itoa(r.BeforeRank),
				strconv.Itoa(r.AfterRank),
				strconv.Itoa(r.RankDelta),
				string(r.BeforeBand),
				string(r.AfterBand),
				string(r.Status),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// comparisonRows converts the comparison details into typed workbook rows.
func comparisonRows(result schema.ComparisonResult) [][]any {
	rows := make([][]any, 0, len(result.Details))
	for i, r := range result.Details {
		rows = append(rows, []any{
			i + 1,
			r.EntityKey,
			r.EntityName,
			r.CompanyName,
			r.BeforeScore,
			r.AfterScore,
			r.Delta,
			r.BeforeRank,
			r.AfterRank,
			r.RankDelta,
			string(r.BeforeBand),
			string(r.AfterBand),
			string(r.Status),
		})
	}
	return rows
}
