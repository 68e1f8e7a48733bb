package cmd

import (
	"errors"

	"github.com/fortify-index/mfi/core"
	"github.com/fortify-index/mfi/internal/contract"
	"github.com/spf13/cobra"
)

// compareCmd compares two cycles.
var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare MFI scores between two assessment cycles.",
	Long: `Compare the ranked results of two cycles to track how entities evolved.

For every entity the comparison shows the before/after score, the score delta,
the rank change and the band change. Entities only present in the target cycle
are 'new', entities only present in the base cycle are 'inactive'.
Score changes of 0.01 or less are not listed.

Examples:
  # Compare 2023 with 2024
  mfi compare --base-cycle 2023 --target-cycle 2024

  # Compare the wheat flour sector and export to CSV
  mfi compare --base-cycle 2023 --target-cycle 2024 --sector "Wheat Flour" --output csv --output-file delta.csv`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		checkCompareAndExecute(core.ExecuteCompare)
	},
}

// checkCompareAndExecute validates compare mode and executes the given function.
func checkCompareAndExecute(executeFunc core.ExecutorFunc) {
	if cfg.BaseCycle == "" {
		contract.LogFatal("Cannot run comparison", errors.New("a base cycle must be provided"))
	}
	if err := executeFunc(rootCtx, cfg, cacheManager); err != nil {
		contract.LogFatal("Cannot run comparison", err)
	}
}
