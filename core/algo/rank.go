package algo

import (
	"iter"
	"slices"
	"strings"

	"github.com/fortify-index/mfi/schema"
	"github.com/shopspring/decimal"
)

// Aggregator turns a cycle of raw metrics into ranked score records.
// The input is copied on construction, so callers may reuse their slice.
type Aggregator struct {
	metrics  []schema.RawMetric
	strategy schema.BandStrategy
}

// NewAggregator creates an aggregator over metrics. An empty strategy means schema.AnyStrategy.
func NewAggregator(metrics []schema.RawMetric, strategy schema.BandStrategy) *Aggregator {
	if strategy == "" {
		strategy = schema.AnyStrategy
	}
	return &Aggregator{metrics: slices.Clone(metrics), strategy: strategy}
}

// scored pairs a record with its exact final score for sorting and tie detection.
type scored struct {
	record schema.ScoreRecord
	total  decimal.Decimal
}

// All yields the ranked records in descending score order.
// The sequence is recomputed from the raw input on every iteration.
func (a *Aggregator) All() iter.Seq[schema.ScoreRecord] {
	return func(yield func(schema.ScoreRecord) bool) {
		items := make([]scored, 0, len(a.metrics))
		for _, m := range a.metrics {
			items = append(items, score(m, a.strategy))
		}

		// Stable so that ties keep input order
		slices.SortStableFunc(items, func(x, y scored) int {
			return y.total.Cmp(x.total)
		})

		for i := range items {
			if i > 0 && items[i].total.Equal(items[i-1].total) {
				items[i].record.Rank = items[i-1].record.Rank
			} else {
				items[i].record.Rank = i + 1
			}
			if !yield(items[i].record) {
				return
			}
		}
	}
}

// Rank aggregates metrics and collects the ranked records.
func Rank(metrics []schema.RawMetric, strategy schema.BandStrategy) []schema.ScoreRecord {
	records := slices.Collect(NewAggregator(metrics, strategy).All())
	if records == nil {
		return []schema.ScoreRecord{}
	}
	return records
}

func score(raw schema.RawMetric, strategy schema.BandStrategy) scored {
	m := raw.Validated()
	sat, satType := m.SATScore()

	var missing []string
	parts := []struct {
		name  string
		value schema.Score
	}{
		{schema.SubScoreSAT, sat},
		{schema.SubScorePT, m.PT},
		{schema.SubScoreIEG, m.IEG},
	}
	total := decimal.Zero
	for _, p := range parts {
		if !p.value.Valid {
			missing = append(missing, p.name)
			continue
		}
		total = total.Add(decimal.NewFromFloat(p.value.Value))
	}

	return scored{
		total: total,
		record: schema.ScoreRecord{
			EntityID:    strings.TrimSpace(string(m.ID)),
			EntityName:  strings.TrimSpace(m.Name),
			CompanyName: strings.TrimSpace(m.CompanyName),
			SectorLabel: strings.TrimSpace(m.ProductType),
			Tier:        m.Tier,
			SATType:     satType,
			SATWeighted: sat.Float(),
			PTWeighted:  m.PT.Float(),
			IEGWeighted: m.IEG.Float(),
			FinalScore:  total.InexactFloat64(),
			Band:        ClassifyBand(m.ComplianceValues(), strategy),
			Incomplete:  len(missing) > 0,
			Missing:     missing,
		},
	}
}

// SummaryBand returns the band shown for a whole result set: the band of the top ranked record.
func SummaryBand(records []schema.ScoreRecord) schema.Band {
	if len(records) == 0 {
		return schema.NoDataBand
	}
	return records[0].Band
}

// CountIncomplete returns how many records have at least one missing sub-score.
func CountIncomplete(records []schema.ScoreRecord) int {
	n := 0
	for _, r := range records {
		if r.Incomplete {
			n++
		}
	}
	return n
}
