package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fortify-index/mfi/internal/contract"
	"github.com/fortify-index/mfi/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

var bandCountHeader = []string{"band", "count", "share"}

// WriteBandResult outputs a single band classification.
func WriteBandResult(w io.Writer, result schema.BandResult, cfg *contract.Config) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeJSON(w, result)
	case schema.CSVOut:
		return writeCSVWithHeader(w, []string{"compliance", "strategy", "band"}, func(cw *csv.Writer) error {
			return cw.Write([]string{joinValues(result.Compliance, fmtFloat), string(result.Strategy), string(result.Band)})
		})
	case schema.XLSXOut, schema.ParquetOut:
		return fmt.Errorf("%s output is not available for a single band", cfg.Output)
	default:
		label := contract.GetPlainLabel(result.Band)
		if cfg.UseColors {
			label = contract.GetColorLabel(result.Band)
		}
		_, err := fmt.Fprintf(w, "%s (compliance: %s, strategy: %s)\n", label, joinValues(result.Compliance, fmtFloat), result.Strategy)
		return err
	}
}

// WriteBandCountResults outputs the band distribution of a ranked cycle.
func WriteBandCountResults(w io.Writer, cycle string, counts []schema.BandCount, cfg *contract.Config) error {
	fmtFloat, _ := createFormatters(cfg.Precision)
	total := 0
	for _, c := range counts {
		total += c.Count
	}
	share := func(n int) float64 {
		if total == 0 {
			return 0
		}
		return 100 * float64(n) / float64(total)
	}

	switch cfg.Output {
	case schema.JSONOut:
		return writeJSON(w, struct {
			Cycle  string             `json:"cycle"`
			Total  int                `json:"total"`
			Counts []schema.BandCount `json:"counts"`
		}{cycle, total, counts})
	case schema.CSVOut:
		return writeCSVWithHeader(w, bandCountHeader, func(cw *csv.Writer) error {
			for _, c := range counts {
				if err := cw.Write([]string{string(c.Band), strconv.Itoa(c.Count), fmtFloat(share(c.Count))}); err != nil {
					return err
				}
			}
			return nil
		})
	case schema.XLSXOut:
		rows := make([][]any, 0, len(counts))
		for _, c := range counts {
			rows = append(rows, []any{string(c.Band), c.Count, share(c.Count)})
		}
		return writeXLSX(w, "Bands", bandCountHeader, rows)
	case schema.ParquetOut:
		return fmt.Errorf("parquet output is not available for band counts")
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Band", "Count", "Share %"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	var data [][]string
	for _, c := range counts {
		label := contract.GetPlainLabel(c.Band)
		if cfg.UseColors {
			label = contract.GetColorLabel(c.Band)
		}
		data = append(data, []string{label, strconv.Itoa(c.Count), fmtFloat(share(c.Count))})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	if cycle == "" {
		cycle = "current"
	}
	_, err := fmt.Fprintf(w, "%d entities in %s cycle\n", total, cycle)
	return err
}

// joinValues formats compliance values as a semicolon separated list.
func joinValues(values []float64, fmtFloat func(float64) string) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmtFloat(v)
	}
	return strings.Join(parts, ";")
}
