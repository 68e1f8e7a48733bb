// Package schema has configs, models and global variables for all parts of mfi.
package schema

import (
	"strings"
)

// Sub-score ceilings. Weighted SAT carries 60% of the index, PT and IEG 20% each.
const (
	MaxSATWeighted = 60.0
	MaxPTWeighted  = 20.0
	MaxIEGWeighted = 20.0
)

// Sub-score names used in the missing list of a ScoreRecord.
const (
	SubScoreSAT = "sat"
	SubScorePT  = "pt"
	SubScoreIEG = "ieg"
)

// RawMetric is one raw metric record for an entity (company or brand) in a cycle,
// as returned by the MFI REST API or loaded from a file.
type RawMetric struct {
	ID          EntityID       `json:"id" yaml:"id"`
	Name        string         `json:"name" yaml:"name"`                 // Brand name
	CompanyName string         `json:"company_name" yaml:"company_name"` // Owning company
	ProductType string         `json:"productType" yaml:"productType"`   // Sector label
	Tier        Tier           `json:"tier" yaml:"tier"`
	IVC         Score          `json:"ivc" yaml:"ivc"` // Independently validated SAT, weighted
	SAT         Score          `json:"sat" yaml:"sat"` // Self-reported SAT, weighted
	PT          Score          `json:"pt" yaml:"pt"`
	IEG         Score          `json:"ieg" yaml:"ieg"`
	Compliance  ComplianceList `json:"compliance,omitempty" yaml:"compliance,omitempty"`
}

// Validated returns a copy of the record with every sub-score checked against its range.
// Values outside the range become missing. The call is idempotent.
func (m RawMetric) Validated() RawMetric {
	out := m
	out.Tier = NormalizeTier(string(m.Tier))
	out.IVC = m.IVC.Within(MaxSATWeighted)
	out.SAT = m.SAT.Within(MaxSATWeighted)
	out.PT = m.PT.Within(MaxPTWeighted)
	out.IEG = m.IEG.Within(MaxIEGWeighted)
	if m.Compliance != nil {
		out.Compliance = make(ComplianceList, 0, len(m.Compliance))
		for _, c := range m.Compliance {
			// Compliance can exceed 100 but never go negative
			if c.Valid && c.Value >= 0 {
				out.Compliance = append(out.Compliance, c)
			}
		}
	}
	return out
}

// SATScore returns the SAT sub-score that counts towards the index and its type.
// A validated IVC value wins over a self-reported SAT value.
func (m RawMetric) SATScore() (Score, SATType) {
	if m.IVC.Valid {
		return m.IVC, IVCType
	}
	return m.SAT, SelfReportedType
}

// ComplianceValues returns the valid compliance percentages.
func (m RawMetric) ComplianceValues() []float64 {
	values := make([]float64, 0, len(m.Compliance))
	for _, c := range m.Compliance {
		if c.Valid {
			values = append(values, c.Value)
		}
	}
	return values
}

// ScoreRecord is the derived, ranked view of one RawMetric.
// FinalScore, Rank, Band, Incomplete and Missing are recomputed on every aggregation.
type ScoreRecord struct {
	EntityID    string   `json:"entity_id"`
	EntityName  string   `json:"entity_name"`
	CompanyName string   `json:"company_name"`
	SectorLabel string   `json:"sector"`
	Tier        Tier     `json:"tier"`
	SATType     SATType  `json:"sat_type"`
	SATWeighted float64  `json:"sat_weighted"`
	PTWeighted  float64  `json:"pt_weighted"`
	IEGWeighted float64  `json:"ieg_weighted"`
	FinalScore  float64  `json:"final_score"`
	Rank        int      `json:"rank"`
	Band        Band     `json:"band"`
	Incomplete  bool     `json:"incomplete"`
	Missing     []string `json:"missing,omitempty"`
}

// GetKey returns the identity used to match a record across cycles.
// Without an id, a brand is identified by its name, company and sector.
func (r ScoreRecord) GetKey() string {
	if r.EntityID != "" {
		return r.EntityID
	}
	return strings.ToLower(strings.TrimSpace(r.EntityName) + "|" + strings.TrimSpace(r.CompanyName) + "|" + strings.TrimSpace(r.SectorLabel))
}

// GetScore returns the final MFI score.
func (r ScoreRecord) GetScore() float64 { return r.FinalScore }

// GetRank returns the rank.
func (r ScoreRecord) GetRank() int { return r.Rank }
