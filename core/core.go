// Package core has orchestration for ranking, band classification and cycle comparison.
package core

import (
	"context"
	"time"

	"github.com/fortify-index/mfi/core/algo"
	"github.com/fortify-index/mfi/internal/contract"
	"github.com/fortify-index/mfi/internal/outwriter"
	"github.com/fortify-index/mfi/internal/source"
	"github.com/fortify-index/mfi/schema"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ExecutorFunc defines the function signature for executing different commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error

// ExecuteRank fetches one cycle, ranks it and prints the results.
// It serves as the main entry point for the 'rank' command.
func ExecuteRank(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	src := source.New(cfg, responseStore(mgr))

	result, err := RankCycle(ctx, src, cfg, historyStore(mgr))
	if err != nil {
		return err
	}
	duration := time.Since(start)
	return outwriter.NewOutWriter().WriteRanking(result, cfg, duration)
}

// RankCycle fetches cfg.Cycle from src, records the run and builds the ranking view.
func RankCycle(ctx context.Context, src contract.Source, cfg *contract.Config, history contract.HistoryStore) (schema.RankingResult, error) {
	zap.L().Info("fetching cycle", zap.String("source", src.Name()), zap.String("cycle", cfg.Cycle))
	metrics, err := src.Fetch(ctx, cfg.Cycle)
	if err != nil {
		return schema.RankingResult{}, eris.Wrapf(err, "fetch cycle %q", cfg.Cycle)
	}
	recordRun(history, src.Name(), cfg.Cycle, metrics, cfg)
	return BuildRanking(cfg.Cycle, metrics, OptionsFromConfig(cfg)), nil
}

// ExecuteBands classifies compliance values given as arguments. Without arguments
// it ranks cfg.Cycle and prints how many entities fall into each band.
func ExecuteBands(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, values []string) error {
	writer := outwriter.NewOutWriter()

	if len(values) > 0 {
		result, err := ClassifyValues(values, cfg.Strategy)
		if err != nil {
			return err
		}
		return writer.WriteBand(result, cfg)
	}

	src := source.New(cfg, responseStore(mgr))
	metrics, err := src.Fetch(ctx, cfg.Cycle)
	if err != nil {
		return eris.Wrapf(err, "fetch cycle %q", cfg.Cycle)
	}
	recordRun(historyStore(mgr), src.Name(), cfg.Cycle, metrics, cfg)

	ranked := algo.Filter(algo.Rank(metrics, cfg.Strategy), OptionsFromConfig(cfg).Filter)
	return writer.WriteBandCounts(cfg.Cycle, BandCounts(ranked), cfg)
}

// ClassifyValues parses compliance percentages and classifies them into a band.
// Every value must be numeric.
func ClassifyValues(values []string, strategy schema.BandStrategy) (schema.BandResult, error) {
	compliance := make([]float64, 0, len(values))
	for _, raw := range values {
		s := schema.ParseScore(raw)
		if !s.Valid {
			return schema.BandResult{}, eris.Errorf("invalid compliance value %q", raw)
		}
		if s.Value < 0 {
			return schema.BandResult{}, eris.Errorf("compliance value %q must not be negative", raw)
		}
		compliance = append(compliance, s.Value)
	}
	if strategy == "" {
		strategy = schema.AnyStrategy
	}
	return schema.BandResult{
		Compliance: compliance,
		Strategy:   strategy,
		Band:       algo.ClassifyBand(compliance, strategy),
	}, nil
}

// ExecuteCompare fetches the base and target cycles concurrently, ranks both
// and prints how every entity moved between them.
func ExecuteCompare(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	if cfg.BaseCycle == "" {
		return eris.New("base and target cycles must be provided")
	}
	src := source.New(cfg, responseStore(mgr))

	result, err := CompareCycles(ctx, src, cfg, historyStore(mgr))
	if err != nil {
		return err
	}
	duration := time.Since(start)
	return outwriter.NewOutWriter().WriteComparison(result, cfg, duration)
}

// CompareCycles fetches cfg.BaseCycle and cfg.TargetCycle from src and compares their rankings.
// Filters apply to both sides, so ranks stay global to each cycle.
func CompareCycles(ctx context.Context, src contract.Source, cfg *contract.Config, history contract.HistoryStore) (schema.ComparisonResult, error) {
	cycles := []string{cfg.BaseCycle, cfg.TargetCycle}
	zap.L().Info("comparing cycles",
		zap.String("source", src.Name()),
		zap.String("base", cfg.BaseCycle),
		zap.String("target", cfg.TargetCycle),
	)

	fetched, err := source.FetchCycles(ctx, src, cycles)
	if err != nil {
		return schema.ComparisonResult{}, err
	}

	filter := OptionsFromConfig(cfg).Filter
	ranked := make([][]schema.ScoreRecord, len(cycles))
	for i, cycle := range cycles {
		recordRun(history, src.Name(), cycle, fetched[i], cfg)
		ranked[i] = algo.Filter(algo.Rank(fetched[i], cfg.Strategy), filter)
	}

	return CompareRankings(ranked[0], ranked[1], cfg.ResultLimit, cfg.BaseCycle, cfg.TargetCycle), nil
}
