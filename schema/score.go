package schema

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Score is a numeric-or-missing sub-score.
// The zero value is missing.
type Score struct {
	Value float64
	Valid bool
}

// NewScore returns a present score.
func NewScore(v float64) Score {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Score{}
	}
	return Score{Value: v, Valid: true}
}

// ParseScore parses a cell or query value. Empty, non-numeric and non-finite
// input yields a missing score. A trailing percent sign is ignored.
func ParseScore(raw string) Score {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimSuffix(raw, "%")
	if raw == "" {
		return Score{}
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return Score{}
	}
	return NewScore(v)
}

// Float returns the value, or 0 when missing.
func (s Score) Float() float64 {
	if !s.Valid {
		return 0
	}
	return s.Value
}

// Within returns the score unchanged if it lies in [0, ceiling], otherwise missing.
func (s Score) Within(ceiling float64) Score {
	if !s.Valid || s.Value < 0 || s.Value > ceiling {
		return Score{}
	}
	return s
}

// Ptr returns a pointer to the value, or nil when missing. Used for nullable columns.
func (s Score) Ptr() *float64 {
	if !s.Valid {
		return nil
	}
	v := s.Value
	return &v
}

// ScoreFromPtr is the inverse of Ptr.
func ScoreFromPtr(p *float64) Score {
	if p == nil {
		return Score{}
	}
	return NewScore(*p)
}

// UnmarshalJSON never fails: numbers and numeric strings are kept,
// anything else (null, booleans, objects, garbage strings) becomes missing.
func (s *Score) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*s = Score{}
	if len(b) == 0 {
		return nil
	}
	switch b[0] {
	case '"':
		var str string
		if err := json.Unmarshal(b, &str); err == nil {
			*s = ParseScore(str)
		}
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var v float64
		if err := json.Unmarshal(b, &v); err == nil {
			*s = NewScore(v)
		}
	}
	return nil
}

// MarshalJSON writes null for a missing score.
func (s Score) MarshalJSON() ([]byte, error) {
	if !s.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(s.Value)
}

// UnmarshalYAML keeps numeric scalars and turns everything else into missing.
func (s *Score) UnmarshalYAML(node *yaml.Node) error {
	*s = Score{}
	if node.Kind == yaml.ScalarNode && node.Tag != "!!null" {
		*s = ParseScore(node.Value)
	}
	return nil
}

// ComplianceList holds the product-testing percentage_compliance values of an entity.
// The API sends either bare numbers or objects carrying a percentage_compliance field.
type ComplianceList []Score

// UnmarshalJSON accepts an array of numbers, numeric strings or
// {"percentage_compliance": n} objects, a single number, or null.
func (c *ComplianceList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*c = nil
	if len(b) == 0 || b[0] != '[' {
		var single Score
		_ = single.UnmarshalJSON(b)
		if single.Valid {
			*c = ComplianceList{single}
		}
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(b, &items); err != nil {
		return nil
	}
	out := make(ComplianceList, 0, len(items))
	for _, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) > 0 && item[0] == '{' {
			var obj struct {
				PercentageCompliance Score `json:"percentage_compliance"`
			}
			if err := json.Unmarshal(item, &obj); err == nil {
				out = append(out, obj.PercentageCompliance)
			}
			continue
		}
		var s Score
		_ = s.UnmarshalJSON(item)
		out = append(out, s)
	}
	*c = out
	return nil
}
