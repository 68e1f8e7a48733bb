package schema

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// FuzzScoreDecode checks that decoding a sub-score never fails on valid JSON and
// that validation always leaves finite, in-range values.
func FuzzScoreDecode(f *testing.F) {
	f.Add(`30`, `"20"`, `null`)
	f.Add(`-5`, `1e400`, `"NaN"`)
	f.Add(`{}`, `[]`, `true`)
	f.Add(`"61"`, `20.0001`, `"  7 "`)

	f.Fuzz(func(t *testing.T, sat, pt, ieg string) {
		var m RawMetric
		for _, field := range []struct {
			raw string
			dst *Score
		}{{sat, &m.SAT}, {pt, &m.PT}, {ieg, &m.IEG}} {
			if !json.Valid([]byte(field.raw)) {
				return
			}
			assert.NoError(t, json.Unmarshal([]byte(field.raw), field.dst))
		}

		v := m.Validated()
		for _, s := range []struct {
			score   Score
			ceiling float64
		}{{v.SAT, MaxSATWeighted}, {v.PT, MaxPTWeighted}, {v.IEG, MaxIEGWeighted}} {
			if !s.score.Valid {
				continue
			}
			assert.False(t, math.IsNaN(s.score.Value) || math.IsInf(s.score.Value, 0))
			assert.GreaterOrEqual(t, s.score.Value, 0.0)
			assert.LessOrEqual(t, s.score.Value, s.ceiling)
		}
		assert.Equal(t, v, v.Validated())
	})
}
