package cmd

import (
	"errors"
	"fmt"

	"github.com/fortify-index/mfi/internal/contract"
	"github.com/fortify-index/mfi/internal/iocache"
	"github.com/fortify-index/mfi/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// historyBackendConfig reads the run history backend and connection string.
// An empty backend defaults to none.
func historyBackendConfig() (schema.DatabaseBackend, string, error) {
	if err := loadConfigFile(); err != nil {
		return "", "", err
	}
	if err := initLogging(); err != nil {
		return "", "", err
	}

	backend := schema.DatabaseBackend(viper.GetString("history-backend"))
	if backend == "" {
		backend = schema.NoneBackend
	}
	connStr := viper.GetString("history-db-connect")
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// historySetup loads minimal configuration needed for run history operations.
func historySetup() error {
	backend, connStr, err := historyBackendConfig()
	if err != nil {
		return err
	}

	// Initialize only the history store (no response cache for history commands)
	if err := iocache.InitCaching("", "", backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize run history: %w", err)
	}

	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr

	strategy := schema.BandStrategy(viper.GetString("strategy"))
	if strategy == "" {
		strategy = schema.AnyStrategy
	}
	if _, ok := schema.ValidBandStrategies[strategy]; !ok {
		return fmt.Errorf("invalid strategy %q", strategy)
	}
	cfg.Strategy = strategy

	return nil
}

// historySetupWrapper wraps historySetup to provide PreRunE for history commands.
func historySetupWrapper(_ *cobra.Command, _ []string) error {
	return historySetup()
}

// historyMigrateSetup resolves the backend without opening the store,
// since the store would create the schema migrations are about to manage.
func historyMigrateSetup(_ *cobra.Command, _ []string) error {
	backend, connStr, err := historyBackendConfig()
	if err != nil {
		return err
	}
	if backend == schema.NoneBackend {
		return errors.New("history migrate requires --history-backend sqlite, mysql or postgresql")
	}
	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	return nil
}

// historyCmd focused on run history management.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage recorded ranking runs",
	Long: `Manage the history of ranking runs.

When --history-backend is set, every rank, bands and compare run records its
parameters and the raw records it ranked. The history can be exported for
auditing how a published ranking was produced.

Supported backends: SQLite, MySQL, PostgreSQL, or None (default)

Subcommands:
  status  - Show history statistics and connection info
  clear   - Remove all recorded runs
  export  - Export recorded runs with their re-computed rankings
  migrate - Apply or roll back history schema migrations

Examples:
  # Check history status
  mfi history status --history-backend sqlite

  # Export every recorded run to Parquet
  mfi history export --history-backend sqlite --output-file audit`,
}

// historyClearCmd clears the run history.
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded runs",
	Long: `Delete all recorded runs and their inputs from the configured backend.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the history tables

Examples:
  mfi history clear --history-backend sqlite`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearHistory(cfg.HistoryBackend, contract.GetHistoryDBFilePath(), cfg.HistoryDBConnect); err != nil {
			contract.LogFatal("Failed to clear history", err)
		}
		fmt.Println("History cleared successfully.")
	},
}

// historyStatusCmd shows run history status.
var historyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display history statistics and connection details",
	Long: `Show detailed information about the run history.

Displays:
- Backend type and connection status
- Total number of runs and recorded inputs
- Last and oldest run timestamps

Examples:
  mfi history status --history-backend postgresql --history-db-connect "postgres://..."`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := iocache.Manager.GetHistoryStore()
		if store == nil {
			contract.LogFatal("Failed to get history status", errors.New("history backend is not configured"))
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get history status", err)
		}
		iocache.PrintHistoryStatus(status)
	},
}

// historyExportCmd exports recorded runs.
var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export recorded runs to Parquet files",
	Long: `Export every recorded run and the ranking re-computed from its raw inputs.
The --strategy flag selects how bands are classified.

Two files are written next to --output-file:
  <output-file>.runs.parquet     one row per run
  <output-file>.records.parquet  one row per ranked record of every run

Examples:
  mfi history export --history-backend sqlite --output-file audit`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteHistoryExport(viper.GetString("output-file"), cfg.Strategy); err != nil {
			contract.LogFatal("Failed to export history", err)
		}
	},
}

// historyMigrateCmd manages history schema migrations.
var historyMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or roll back history schema migrations",
	Long: `Run the versioned schema migrations of the run history database.

Examples:
  # Migrate to the latest version
  mfi history migrate --history-backend mysql --history-db-connect "user:pass@tcp(localhost:3306)/mfi"

  # Roll back to the initial state
  mfi history migrate --history-backend sqlite --target-version 0`,
	PreRunE: historyMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateHistory(cfg.HistoryBackend, cfg.HistoryDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to migrate history", err)
		}
		fmt.Println("History migration completed successfully.")
	},
}
