// Package outwriter has output and writer logic.
package outwriter

import (
	"io"
	"os"
	"time"

	"github.com/fortify-index/mfi/internal/contract"
	"github.com/fortify-index/mfi/schema"
	"golang.org/x/term"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteRanking prints a ranked cycle using the configured output format.
func (ow *OutWriter) WriteRanking(result schema.RankingResult, cfg *contract.Config, duration time.Duration) error {
	return WriteRankingResults(result, cfg, duration)
}

// WriteComparison prints a cycle comparison using the configured output format.
func (ow *OutWriter) WriteComparison(result schema.ComparisonResult, cfg *contract.Config, duration time.Duration) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteComparisonResults(w, result, cfg, duration)
	}, "Wrote comparison")
}

// WriteBand prints the classification of one compliance set.
func (ow *OutWriter) WriteBand(result schema.BandResult, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteBandResult(w, result, cfg)
	}, "Wrote band")
}

// WriteBandCounts prints the band distribution of a ranked cycle.
func (ow *OutWriter) WriteBandCounts(cycle string, counts []schema.BandCount, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteBandCountResults(w, cycle, counts, cfg)
	}, "Wrote band counts")
}

// terminalWidth returns the width override or the detected terminal width.
func terminalWidth(cfg *contract.Config) int {
	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		return cfg.Width
	}
	detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detectedWidth <= 0 {
		// Conservative default for narrow terminals and CI
		return 80
	}
	return detectedWidth
}

// GetMaxTableNameWidth calculates the maximum width of each name column
// (brand, company) in table output based on terminal width.
func GetMaxTableNameWidth(cfg *contract.Config) int {
	termWidth := terminalWidth(cfg)

	// Rank + Sector + SAT Type + four score columns + Band, with borders and padding
	baseWidth := 6 + 18 + 10 + 4*9 + 26
	baseWidth += 20

	// Brand and company share what is left
	available := (termWidth - baseWidth) / 2
	if available < 10 {
		return 10
	}
	if available > 40 {
		return 40
	}
	return available
}

// sourceLabel describes where the ranked data came from.
func sourceLabel(cfg *contract.Config) string {
	if cfg.Source == schema.FileSource {
		return cfg.InputFile
	}
	if cfg.APIURL == "" {
		return string(cfg.Source)
	}
	return cfg.APIURL + "/" + cfg.Endpoint
}
