package schema

// ComparisonDetail holds the base info, target info, and their associated deltas for one entity.
type ComparisonDetail struct {
	EntityKey   string  `json:"entity_key"`
	EntityName  string  `json:"entity_name"`
	CompanyName string  `json:"company_name"`
	BeforeScore float64 `json:"before_score"` // Final score in the base cycle
	AfterScore  float64 `json:"after_score"`  // Final score in the target cycle
	Delta       float64 `json:"delta"`        // AfterScore - BeforeScore (positive means improvement)
	BeforeRank  int     `json:"before_rank"`  // 0 when absent from the base cycle
	AfterRank   int     `json:"after_rank"`   // 0 when absent from the target cycle
	RankDelta   int     `json:"rank_delta"`   // BeforeRank - AfterRank (positive means climbed)
	BeforeBand  Band    `json:"before_band"`
	AfterBand   Band    `json:"after_band"`
	Status      Status  `json:"status"`
}

// ComparisonSummary has high-level deltas and counts.
type ComparisonSummary struct {
	BaseCycle           string  `json:"base_cycle"`
	TargetCycle         string  `json:"target_cycle"`
	NetScoreDelta       float64 `json:"net_score_delta"`
	TotalNewEntities    int     `json:"total_new_entities"`
	TotalInactive       int     `json:"total_inactive_entities"`
	TotalActiveEntities int     `json:"total_active_entities"`
	TotalBandChanges    int     `json:"total_band_changes"`
}

// ComparisonResult holds the comparison details and summary.
type ComparisonResult struct {
	Details []ComparisonDetail `json:"details"`
	Summary ComparisonSummary  `json:"summary"`
}
