package core

import (
	"time"

	"github.com/fortify-index/mfi/internal/contract"
	"github.com/fortify-index/mfi/schema"
	"go.uber.org/zap"
)

// recordRun stores the raw inputs of one ranking run in the history store.
// History is best effort: failures are logged and never abort the ranking.
func recordRun(store contract.HistoryStore, sourceName, cycle string, metrics []schema.RawMetric, cfg *contract.Config) {
	if store == nil {
		return
	}

	params := schema.RunParams{
		Cycle:  cycle,
		Source: sourceName,
		Extra: map[string]any{
			"strategy": string(cfg.Strategy),
			"output":   string(cfg.Output),
		},
	}
	start := time.Now()
	runID, err := store.BeginRun(start, params)
	if err != nil {
		contract.LogWarn("Failed to begin history run", err)
		return
	}

	recorded := 0
	for _, m := range metrics {
		if err := store.RecordInput(runID, m); err != nil {
			contract.LogWarn("Failed to record history input", err)
			continue
		}
		recorded++
	}

	if err := store.EndRun(runID, time.Now(), recorded); err != nil {
		contract.LogWarn("Failed to end history run", err)
		return
	}
	zap.L().Debug("recorded ranking run",
		zap.Int64("run_id", runID),
		zap.String("cycle", cycle),
		zap.Int("inputs", recorded),
	)
}

// historyStore returns the history store of mgr, or nil when there is none.
func historyStore(mgr contract.CacheManager) contract.HistoryStore {
	if mgr == nil {
		return nil
	}
	return mgr.GetHistoryStore()
}

// responseStore returns the response cache of mgr, or nil when there is none.
func responseStore(mgr contract.CacheManager) contract.CacheStore {
	if mgr == nil {
		return nil
	}
	return mgr.GetResponseStore()
}
