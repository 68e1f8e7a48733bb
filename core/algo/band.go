package algo

import (
	"slices"

	"github.com/fortify-index/mfi/schema"
)

// Band thresholds on percentage_compliance.
const (
	FullyThreshold        = 99.0
	AdequatelyThreshold   = 80.0
	PartlyThreshold       = 51.0
	InadequatelyThreshold = 31.0
	NotFortifiedCeiling   = 30.0
)

// ClassifyBand maps compliance percentages to a fortification band.
//
// With schema.AnyStrategy the rules are evaluated top-down and the first match wins:
// all >= 99, any >= 80, any >= 51, any >= 31, all <= 30. Values strictly between
// 30 and 31 match none of the "any" rules and are reported as Not Fortified.
// With schema.MinStrategy the lowest value alone picks the band.
// An empty set is No Data under both strategies.
func ClassifyBand(values []float64, strategy schema.BandStrategy) schema.Band {
	if len(values) == 0 {
		return schema.NoDataBand
	}
	if strategy == schema.MinStrategy {
		return bandOf(slices.Min(values))
	}

	if allAtLeast(values, FullyThreshold) {
		return schema.FullyFortified
	}
	top := slices.Max(values)
	switch {
	case top >= AdequatelyThreshold:
		return schema.AdequatelyFortified
	case top >= PartlyThreshold:
		return schema.PartlyFortified
	case top >= InadequatelyThreshold:
		return schema.InadequatelyFortified
	default:
		return schema.NotFortified
	}
}

func bandOf(v float64) schema.Band {
	switch {
	case v >= FullyThreshold:
		return schema.FullyFortified
	case v >= AdequatelyThreshold:
		return schema.AdequatelyFortified
	case v >= PartlyThreshold:
		return schema.PartlyFortified
	case v >= InadequatelyThreshold:
		return schema.InadequatelyFortified
	default:
		return schema.NotFortified
	}
}

func allAtLeast(values []float64, threshold float64) bool {
	for _, v := range values {
		if v < threshold {
			return false
		}
	}
	return true
}

// CountBands tallies records per band, keyed in schema.AllBands order.
func CountBands(records []schema.ScoreRecord) map[schema.Band]int {
	counts := make(map[schema.Band]int, len(schema.AllBands))
	for _, b := range schema.AllBands {
		counts[b] = 0
	}
	for _, r := range records {
		counts[r.Band]++
	}
	return counts
}
