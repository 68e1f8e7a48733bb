// Package cmd defines the command-line interface for mfi.
package cmd

import (
	"github.com/fortify-index/mfi/internal/contract"
	"github.com/fortify-index/mfi/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(rankCmd)
	rootCmd.AddCommand(bandsCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(historyCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the history subcommands to the parent history command
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("api-url", contract.DefaultAPIURL, "Base URL of the MFI REST API")
	rootCmd.PersistentFlags().String("endpoint", contract.DefaultEndpoint, "API endpoint serving raw metric records")
	rootCmd.PersistentFlags().String("api-token", "", "Bearer token for the API (prefer MFI_API_TOKEN)")
	rootCmd.PersistentFlags().String("timeout", contract.DefaultTimeout.String(), "Timeout of one API request")
	rootCmd.PersistentFlags().Float64("rate-limit", contract.DefaultRateLimit, "Maximum API requests per second")
	rootCmd.PersistentFlags().StringP("input", "i", "", "Read raw records from a .json, .yaml, .csv or .xlsx file instead of the API ({cycle} is replaced by the cycle)")
	rootCmd.PersistentFlags().String("strategy", string(schema.AnyStrategy), "Band strategy: any or min")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet or xlsx")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("cache-ttl", contract.DefaultCacheTTL.String(), "How long cached API responses stay fresh")
	rootCmd.PersistentFlags().String("history-backend", "", "Run history backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("history-db-connect", "", "Database connection string for run history (a sqlite file must differ from the cache file)")
	rootCmd.PersistentFlags().String("cycle", "", "Assessment cycle (defaults to the current cycle)")
	rootCmd.PersistentFlags().String("sector", "", "Only include this sector")
	rootCmd.PersistentFlags().String("tier", "", "Only include this tier (TIER_1, TIER_2, TIER_3)")
	rootCmd.PersistentFlags().StringP("query", "q", "", "Only include brands or companies whose name contains this text")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of results to display (0 = all)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("log-format", contract.ConsoleLogFormat, "Log format: console or json")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of rankCmd to Viper
	rankCmd.Flags().Bool("incomplete-only", false, "Only show records with missing sub-scores")
	rankCmd.Flags().String("sort", string(schema.SortByScore), "Sort by: score, rank, name, company, sector, sat, pt, ieg")
	rankCmd.Flags().Bool("asc", false, "Sort ascending")
	if err := viper.BindPFlags(rankCmd.Flags()); err != nil {
		contract.LogFatal("Error binding rank flags", err)
	}

	// Bind all flags of compareCmd to Viper
	compareCmd.Flags().String("base-cycle", "", "Cycle for the BEFORE state")
	compareCmd.Flags().String("target-cycle", "", "Cycle for the AFTER state (defaults to --cycle)")
	if err := viper.BindPFlags(compareCmd.Flags()); err != nil {
		contract.LogFatal("Error binding compare flags", err)
	}

	// Bind all flags of serveCmd to Viper
	serveCmd.Flags().String("listen", contract.DefaultListenAddr, "Address to listen on")
	serveCmd.Flags().String("cors-origins", "", "Comma-separated list of allowed CORS origins (default: any)")
	if err := viper.BindPFlags(serveCmd.Flags()); err != nil {
		contract.LogFatal("Error binding serve flags", err)
	}

	// Bind all flags of historyMigrateCmd to Viper
	historyMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(historyMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history migrate flags", err)
	}
}
