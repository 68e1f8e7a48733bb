package schema

import (
	"encoding/json"
	"strings"

	"gopkg.in/yaml.v3"
)

// Tier is the company size/scope classification that decides which SAT questions apply.
type Tier string

// Known tiers. Unknown values are kept verbatim after normalization.
const (
	Tier1       Tier = "TIER_1"
	Tier2       Tier = "TIER_2"
	Tier3       Tier = "TIER_3"
	UnknownTier Tier = ""
)

// NormalizeTier upper-cases a tier label and joins its words with underscores,
// so "tier 1", "Tier-1" and "TIER_1" all become TIER_1.
func NormalizeTier(s string) Tier {
	s = strings.TrimSpace(s)
	if s == "" {
		return UnknownTier
	}
	s = strings.ToUpper(s)
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	if len(s) > 4 && strings.HasPrefix(s, "TIER") && s[4] != '_' {
		s = "TIER_" + s[4:]
	}
	return Tier(s)
}

// SATType tells whether the SAT sub-score was independently validated.
type SATType string

// All SAT types.
const (
	IVCType          SATType = "IVC"
	SelfReportedType SATType = "SAT"
)

// EntityID is an entity identifier the API may send as a JSON number or string.
type EntityID string

// UnmarshalJSON accepts numbers and strings. Null, booleans, objects and
// arrays leave the id empty.
func (id *EntityID) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*id = EntityID(strings.TrimSpace(str))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		*id = ""
		return nil
	}
	*id = EntityID(n.String())
	return nil
}

// UnmarshalYAML accepts any scalar.
func (id *EntityID) UnmarshalYAML(node *yaml.Node) error {
	*id = EntityID(strings.TrimSpace(node.Value))
	return nil
}
