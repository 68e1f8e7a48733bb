package cmd

import (
	"github.com/fortify-index/mfi/core"
	"github.com/fortify-index/mfi/internal/contract"
	"github.com/spf13/cobra"
)

// rankCmd ranks one assessment cycle.
var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank companies and brands by their MFI score.",
	Long: `Fetch the raw metric records of a cycle and rank them by MFI score.

The MFI score is the sum of the weighted SAT (0-60), PT (0-20) and IEG (0-20)
sub-scores. Missing or invalid sub-scores count as zero and the record is
flagged as incomplete. Equal scores share a rank.

Filters (--sector, --tier, --query, --incomplete-only) are applied after
ranking, so ranks always reflect the whole cycle.

Examples:
  # Rank the current cycle from the API
  mfi rank

  # Top 10 edible oil brands of 2024
  mfi rank --cycle 2024 --sector "Edible Oil" --limit 10

  # Rank a local export and write the CSV report
  mfi rank --input data/{cycle}.xlsx --cycle 2024 --output csv --output-file ranking.csv

  # Records with missing sub-scores, sorted by name
  mfi rank --incomplete-only --sort name --asc`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteRank(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot rank cycle", err)
		}
	},
}
