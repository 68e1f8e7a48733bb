package algo

import (
	"testing"

	"github.com/fortify-index/mfi/schema"
	"github.com/stretchr/testify/assert"
)

// TestClassifyBand tests the default top-down rules.
func TestClassifyBand(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected schema.Band
	}{
		{"all full", []float64{100, 100}, schema.FullyFortified},
		{"all at 99", []float64{99, 99.5}, schema.FullyFortified},
		{"one high one mid", []float64{85, 70}, schema.AdequatelyFortified},
		{"any 80 beats low", []float64{100, 10}, schema.AdequatelyFortified},
		{"partly", []float64{51, 20}, schema.PartlyFortified},
		{"inadequately", []float64{31, 5}, schema.InadequatelyFortified},
		{"all low", []float64{20, 25}, schema.NotFortified},
		{"exactly 30", []float64{30}, schema.NotFortified},
		{"gap between 30 and 31", []float64{30.5}, schema.NotFortified},
		{"empty", nil, schema.NoDataBand},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyBand(tt.values, schema.AnyStrategy))
		})
	}
}

// TestClassifyBandMin tests classification by the worst value.
func TestClassifyBandMin(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected schema.Band
	}{
		{"all full", []float64{100, 100}, schema.FullyFortified},
		{"worst decides", []float64{100, 10}, schema.NotFortified},
		{"adequately", []float64{85, 99}, schema.AdequatelyFortified},
		{"partly", []float64{85, 70}, schema.PartlyFortified},
		{"inadequately", []float64{31, 90}, schema.InadequatelyFortified},
		{"empty", []float64{}, schema.NoDataBand},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyBand(tt.values, schema.MinStrategy))
		})
	}
}

// TestCountBands tests the per-band tally.
func TestCountBands(t *testing.T) {
	counts := CountBands([]schema.ScoreRecord{
		{Band: schema.FullyFortified},
		{Band: schema.FullyFortified},
		{Band: schema.NoDataBand},
	})
	assert.Len(t, counts, len(schema.AllBands))
	assert.Equal(t, 2, counts[schema.FullyFortified])
	assert.Equal(t, 1, counts[schema.NoDataBand])
	assert.Equal(t, 0, counts[schema.PartlyFortified])
}
