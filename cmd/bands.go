package cmd

import (
	"github.com/fortify-index/mfi/core"
	"github.com/fortify-index/mfi/internal/contract"
	"github.com/spf13/cobra"
)

// bandsCmd classifies compliance values, or counts the bands of a cycle.
var bandsCmd = &cobra.Command{
	Use:   "bands [compliance...]",
	Short: "Classify product testing compliance into fortification bands.",
	Long: `Classify percentage compliance values into a fortification band.

With arguments, the values are classified as one compliance set:
  all >= 99  Fully Fortified
  any >= 80  Adequately Fortified
  any >= 51  Partly Fortified
  any >= 31  Inadequately Fortified
  all <= 30  Not Fortified

The 'min' strategy classifies by the lowest value instead.

Without arguments, the cycle is ranked and the number of entities in each
band is shown.

Examples:
  # Classify one compliance set
  mfi bands 85 70

  # Classify by the worst nutrient
  mfi bands 85 70 --strategy min

  # Band distribution of the 2024 salt sector
  mfi bands --cycle 2024 --sector Salt`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if err := core.ExecuteBands(rootCtx, cfg, cacheManager, args); err != nil {
			contract.LogFatal("Cannot classify bands", err)
		}
	},
}
