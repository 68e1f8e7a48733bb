package schema

// RankingResult is one ranked cycle, possibly filtered and limited for display.
// Total, SummaryBand and IncompleteCount always describe the full cycle.
type RankingResult struct {
	Cycle           string        `json:"cycle"`
	Total           int           `json:"total"`
	SummaryBand     Band          `json:"summary_band"`
	IncompleteCount int           `json:"incomplete_count"`
	Records         []ScoreRecord `json:"records"`
}

// BandResult is the classification of one compliance set.
type BandResult struct {
	Compliance []float64    `json:"compliance"`
	Strategy   BandStrategy `json:"strategy"`
	Band       Band         `json:"band"`
}

// BandCount is the number of ranked records in one band.
type BandCount struct {
	Band  Band `json:"band"`
	Count int  `json:"count"`
}
