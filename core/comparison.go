package core

import (
	"math"
	"sort"
	"strings"

	"github.com/fortify-index/mfi/schema"
	"go.uber.org/zap"
)

// ComparableResult represents a ranked result that can be matched across cycles.
type ComparableResult interface {
	GetKey() string
	GetScore() float64
	GetRank() int
}

// minSignificantDelta is the smallest score change reported in a comparison.
const minSignificantDelta = 0.01

// compareResults is a generic function that compares two sets of ranked results.
// describe supplies the display fields of a result.
func compareResults[T ComparableResult](baseResults, targetResults []T, limit int, describe func(T) (name, company string, band schema.Band)) schema.ComparisonResult {
	allKeys := make(map[string]struct{})

	// 1. Populate maps and collect all keys
	baseMap := indexResults(baseResults, "base", allKeys)
	targetMap := indexResults(targetResults, "target", allKeys)

	details := make([]schema.ComparisonDetail, 0, len(allKeys))

	var netScoreDelta float64
	var totalNew, totalInactive, totalActive, totalBandChanges int

	// 2. Compare all keys
	for key := range allKeys {
		baseR, baseExists := baseMap[key]
		targetR, targetExists := targetMap[key]

		detail := schema.ComparisonDetail{
			EntityKey: key,
			Status:    determineStatus(baseExists, targetExists),
		}
		if baseExists {
			detail.BeforeScore = baseR.GetScore()
			detail.BeforeRank = baseR.GetRank()
			detail.EntityName, detail.CompanyName, detail.BeforeBand = describe(baseR)
		}
		if targetExists {
			detail.AfterScore = targetR.GetScore()
			detail.AfterRank = targetR.GetRank()
			// Target names win when an entity was renamed
			detail.EntityName, detail.CompanyName, detail.AfterBand = describe(targetR)
		}
		detail.Delta = detail.AfterScore - detail.BeforeScore
		if baseExists && targetExists {
			detail.RankDelta = detail.BeforeRank - detail.AfterRank
		}

		netScoreDelta += detail.Delta

		switch detail.Status {
		case schema.NewStatus:
			totalNew++
		case schema.ActiveStatus:
			totalActive++
			if detail.BeforeBand != detail.AfterBand {
				totalBandChanges++
			}
		case schema.InactiveStatus:
			totalInactive++
		}

		// Only include results with significant score changes
		if math.Abs(detail.Delta) > minSignificantDelta {
			details = append(details, detail)
		}
	}

	summary := schema.ComparisonSummary{
		NetScoreDelta:       netScoreDelta,
		TotalNewEntities:    totalNew,
		TotalInactive:       totalInactive,
		TotalActiveEntities: totalActive,
		TotalBandChanges:    totalBandChanges,
	}

	sortComparisonResults(details)

	if limit > 0 && len(details) > limit {
		details = details[:limit]
	}

	return schema.ComparisonResult{Details: details, Summary: summary}
}

// indexResults maps results by key and adds every key to allKeys.
// Results are ranked, so on a duplicate key the better ranked result is kept
// and the other one is reported.
func indexResults[T ComparableResult](results []T, side string, allKeys map[string]struct{}) map[string]T {
	byKey := make(map[string]T, len(results))
	for _, r := range results {
		key := r.GetKey()
		if kept, dup := byKey[key]; dup {
			zap.L().Warn("duplicate entity key in cycle, ignoring record",
				zap.String("side", side),
				zap.String("key", key),
				zap.Int("kept_rank", kept.GetRank()),
				zap.Int("ignored_rank", r.GetRank()),
			)
			continue
		}
		byKey[key] = r
		allKeys[key] = struct{}{}
	}
	return byKey
}

// determineStatus returns the status based on existence in base and target.
func determineStatus(baseExists, targetExists bool) schema.Status {
	switch {
	case !baseExists && targetExists:
		return schema.NewStatus
	case baseExists && targetExists:
		return schema.ActiveStatus
	case baseExists: // Target does not exist in this case
		return schema.InactiveStatus
	default:
		return schema.UnknownStatus
	}
}

// sortComparisonResults sorts comparison results by absolute delta, then delta sign, then name.
func sortComparisonResults(results []schema.ComparisonDetail) {
	sort.Slice(results, func(i, j int) bool {
		a := results[i]
		b := results[j]

		// Primary: Absolute delta (descending)
		absA := math.Abs(a.Delta)
		absB := math.Abs(b.Delta)
		if absA != absB {
			return absA > absB
		}

		// Secondary: Delta sign (positive before negative)
		if a.Delta != b.Delta {
			return a.Delta > b.Delta
		}

		// Tertiary: Entity name, then key for full determinism
		if c := strings.Compare(a.EntityName, b.EntityName); c != 0 {
			return c < 0
		}
		return a.EntityKey < b.EntityKey
	})
}

// CompareRankings matches ranked records of a base cycle against a target cycle
// and computes score, rank and band changes.
func CompareRankings(base, target []schema.ScoreRecord, limit int, baseCycle, targetCycle string) schema.ComparisonResult {
	result := compareResults(base, target, limit, func(r schema.ScoreRecord) (string, string, schema.Band) {
		return r.EntityName, r.CompanyName, r.Band
	})
	result.Summary.BaseCycle = baseCycle
	result.Summary.TargetCycle = targetCycle
	return result
}
