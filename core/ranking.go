package core

import (
	"github.com/fortify-index/mfi/core/algo"
	"github.com/fortify-index/mfi/internal/contract"
	"github.com/fortify-index/mfi/schema"
)

// RankOptions controls what part of a ranked cycle is shown.
type RankOptions struct {
	Strategy schema.BandStrategy
	Filter   algo.FilterOptions
	SortKey  schema.SortKey
	SortDesc bool
	Limit    int
}

// OptionsFromConfig extracts the ranking options of a validated config.
func OptionsFromConfig(cfg *contract.Config) RankOptions {
	return RankOptions{
		Strategy: cfg.Strategy,
		Filter: algo.FilterOptions{
			Sector:         cfg.Sector,
			Tier:           cfg.Tier,
			Query:          cfg.Query,
			IncompleteOnly: cfg.IncompleteOnly,
		},
		SortKey:  cfg.SortKey,
		SortDesc: cfg.SortDesc,
		Limit:    cfg.ResultLimit,
	}
}

// BuildRanking ranks a cycle of raw metrics and applies the display options.
// Total, SummaryBand and IncompleteCount describe the whole cycle, not the filtered view.
func BuildRanking(cycle string, metrics []schema.RawMetric, opts RankOptions) schema.RankingResult {
	ranked := algo.Rank(metrics, opts.Strategy)

	view := algo.Filter(ranked, opts.Filter)
	if opts.SortKey != "" {
		view = algo.SortBy(view, opts.SortKey, opts.SortDesc)
	}
	view = algo.Limit(view, opts.Limit)

	return schema.RankingResult{
		Cycle:           cycle,
		Total:           len(ranked),
		SummaryBand:     algo.SummaryBand(ranked),
		IncompleteCount: algo.CountIncomplete(ranked),
		Records:         view,
	}
}

// BandCounts counts the records of each band in best to worst order.
// Bands with no records are omitted.
func BandCounts(records []schema.ScoreRecord) []schema.BandCount {
	byBand := algo.CountBands(records)
	counts := make([]schema.BandCount, 0, len(byBand))
	for _, band := range schema.AllBands {
		if n := byBand[band]; n > 0 {
			counts = append(counts, schema.BandCount{Band: band, Count: n})
		}
	}
	return counts
}
