package source

import (
	"strings"

	"github.com/fortify-index/mfi/schema"
	"github.com/rotisserie/eris"
)

// columnAliases maps normalized header names to record fields. Both the API field
// names and the ranking export headers are accepted.
var columnAliases = map[string]string{
	"id":                 "id",
	"entity_id":          "id",
	"name":               "name",
	"brand":              "name",
	"entity_name":        "name",
	"company_name":       "company",
	"company":            "company",
	"producttype":        "sector",
	"product_type":       "sector",
	"sector":             "sector",
	"tier":               "tier",
	"ivc":                "ivc",
	"sat":                "sat",
	"weighted_sat_score": "sat",
	"pt":                 "pt",
	"weighted_pt_score":  "pt",
	"ieg":                "ieg",
	"weighted_ieg_score": "ieg",
	"compliance":         "compliance",
}

// complianceSeparator splits several compliance values in one cell.
const complianceSeparator = ";"

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(h)
}

// recordsFromRows turns a header row plus data rows into raw metrics.
// Unknown columns are ignored and blank rows are skipped.
func recordsFromRows(rows [][]string) ([]schema.RawMetric, error) {
	records := []schema.RawMetric{}
	if len(rows) == 0 {
		return records, nil
	}

	columns := make(map[string]int)
	for i, h := range rows[0] {
		if field, ok := columnAliases[normalizeHeader(h)]; ok {
			if _, seen := columns[field]; !seen {
				columns[field] = i
			}
		}
	}
	if _, ok := columns["name"]; !ok {
		if _, ok := columns["id"]; !ok {
			return nil, eris.Errorf("header has neither a name nor an id column: %v", rows[0])
		}
	}

	cell := func(row []string, field string) string {
		i, ok := columns[field]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		m := schema.RawMetric{
			ID:          schema.EntityID(cell(row, "id")),
			Name:        cell(row, "name"),
			CompanyName: cell(row, "company"),
			ProductType: cell(row, "sector"),
			Tier:        schema.Tier(cell(row, "tier")),
			IVC:         schema.ParseScore(cell(row, "ivc")),
			SAT:         schema.ParseScore(cell(row, "sat")),
			PT:          schema.ParseScore(cell(row, "pt")),
			IEG:         schema.ParseScore(cell(row, "ieg")),
		}
		if raw := cell(row, "compliance"); raw != "" {
			for part := range strings.SplitSeq(raw, complianceSeparator) {
				if s := schema.ParseScore(part); s.Valid {
					m.Compliance = append(m.Compliance, s)
				}
			}
		}
		records = append(records, m)
	}
	return records, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
