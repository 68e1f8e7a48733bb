package algo

import (
	"cmp"
	"slices"
	"strings"

	"github.com/fortify-index/mfi/schema"
)

// FilterOptions narrows a ranked result set. Zero values match everything.
type FilterOptions struct {
	Sector         string      // case-insensitive exact match on the sector label
	Tier           schema.Tier // exact match after normalization
	Query          string      // case-insensitive substring of brand or company name
	IncompleteOnly bool
}

// Filter returns the records matching opts. Ranks are left untouched,
// so filtering after ranking keeps cycle-wide ranks.
func Filter(records []schema.ScoreRecord, opts FilterOptions) []schema.ScoreRecord {
	sector := strings.TrimSpace(opts.Sector)
	tier := schema.NormalizeTier(string(opts.Tier))
	query := strings.ToLower(strings.TrimSpace(opts.Query))

	out := make([]schema.ScoreRecord, 0, len(records))
	for _, r := range records {
		if sector != "" && !strings.EqualFold(r.SectorLabel, sector) {
			continue
		}
		if tier != schema.UnknownTier && r.Tier != tier {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(r.EntityName), query) &&
			!strings.Contains(strings.ToLower(r.CompanyName), query) {
			continue
		}
		if opts.IncompleteOnly && !r.Incomplete {
			continue
		}
		out = append(out, r)
	}
	return out
}

// SortBy returns a copy of records sorted by key. The sort is stable and
// never reassigns ranks. Unknown keys fall back to schema.SortByScore.
func SortBy(records []schema.ScoreRecord, key schema.SortKey, desc bool) []schema.ScoreRecord {
	out := slices.Clone(records)
	compare := comparator(key)
	slices.SortStableFunc(out, func(a, b schema.ScoreRecord) int {
		if desc {
			return compare(b, a)
		}
		return compare(a, b)
	})
	return out
}

func comparator(key schema.SortKey) func(a, b schema.ScoreRecord) int {
	switch key {
	case schema.SortByRank:
		return func(a, b schema.ScoreRecord) int { return cmp.Compare(a.Rank, b.Rank) }
	case schema.SortByName:
		return func(a, b schema.ScoreRecord) int { return foldCompare(a.EntityName, b.EntityName) }
	case schema.SortByCompany:
		return func(a, b schema.ScoreRecord) int { return foldCompare(a.CompanyName, b.CompanyName) }
	case schema.SortBySector:
		return func(a, b schema.ScoreRecord) int { return foldCompare(a.SectorLabel, b.SectorLabel) }
	case schema.SortBySAT:
		return func(a, b schema.ScoreRecord) int { return cmp.Compare(a.SATWeighted, b.SATWeighted) }
	case schema.SortByPT:
		return func(a, b schema.ScoreRecord) int { return cmp.Compare(a.PTWeighted, b.PTWeighted) }
	case schema.SortByIEG:
		return func(a, b schema.ScoreRecord) int { return cmp.Compare(a.IEGWeighted, b.IEGWeighted) }
	default:
		return func(a, b schema.ScoreRecord) int { return cmp.Compare(a.FinalScore, b.FinalScore) }
	}
}

func foldCompare(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

// Limit returns at most n records. A non-positive n returns all of them.
func Limit(records []schema.ScoreRecord, n int) []schema.ScoreRecord {
	if n <= 0 || len(records) <= n {
		return records
	}
	return records[:n]
}
