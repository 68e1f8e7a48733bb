package contract

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/fortify-index/mfi/schema"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
)

// Default values for configuration.
const (
	DefaultAPIURL       = "http://localhost:8080/api"
	DefaultEndpoint     = "ranking"
	DefaultTimeout      = 30 * time.Second
	DefaultRateLimit    = 5.0 // requests per second per host
	DefaultCacheTTL     = time.Hour
	DefaultResultLimit  = 0 // all records
	MaxResultLimit      = 100000
	DefaultPrecision    = 1
	DefaultListenAddr   = ":8090"
	DefaultRequestLimit = 10 << 20 // max request body size in bytes
)

// Config holds the runtime configuration for ranking.
// This struct remains the "final, validated" config.
type Config struct {
	Cycle       string
	BaseCycle   string
	TargetCycle string

	Source    schema.SourceKind
	APIURL    string
	Endpoint  string
	APIToken  string // Please use env var as this is plaintext
	Timeout   time.Duration
	RateLimit float64
	InputFile string

	Strategy       schema.BandStrategy
	Sector         string
	Tier           schema.Tier
	Query          string
	IncompleteOnly bool
	SortKey        schema.SortKey
	SortDesc       bool
	ResultLimit    int

	Precision  int
	Output     schema.OutputMode
	OutputFile string
	Width      int  // Terminal width override (0 = auto-detect)
	UseColors  bool // Enable colored band labels in table output

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext
	CacheTTL       time.Duration

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext

	ListenAddr  string
	CORSOrigins []string
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	APIURL           string  `mapstructure:"api-url"`
	Endpoint         string  `mapstructure:"endpoint"`
	APIToken         string  `mapstructure:"api-token"`
	Timeout          string  `mapstructure:"timeout"`
	RateLimit        float64 `mapstructure:"rate-limit"`
	Input            string  `mapstructure:"input"`
	Strategy         string  `mapstructure:"strategy"`
	Output           string  `mapstructure:"output"`
	OutputFile       string  `mapstructure:"output-file"`
	Precision        int     `mapstructure:"precision"`
	Width            int     `mapstructure:"width"`
	Color            string  `mapstructure:"color"`
	CacheBackend     string  `mapstructure:"cache-backend"`
	CacheDBConnect   string  `mapstructure:"cache-db-connect"`
	CacheTTL         string  `mapstructure:"cache-ttl"`
	HistoryBackend   string  `mapstructure:"history-backend"`
	HistoryDBConnect string  `mapstructure:"history-db-connect"`

	// --- Fields from rankCmd.Flags() ---
	Cycle          string `mapstructure:"cycle"`
	Sector         string `mapstructure:"sector"`
	Tier           string `mapstructure:"tier"`
	Query          string `mapstructure:"query"`
	IncompleteOnly bool   `mapstructure:"incomplete-only"`
	Sort           string `mapstructure:"sort"`
	Asc            bool   `mapstructure:"asc"`
	Limit          int    `mapstructure:"limit"`

	// --- Fields from compareCmd.Flags() ---
	BaseCycle   string `mapstructure:"base-cycle"`
	TargetCycle string `mapstructure:"target-cycle"`

	// --- Fields from serveCmd.Flags() ---
	Listen      string `mapstructure:"listen"`
	CORSOrigins string `mapstructure:"cors-origins"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.CORSOrigins != nil {
		clone.CORSOrigins = make([]string, len(c.CORSOrigins))
		copy(clone.CORSOrigins, c.CORSOrigins)
	}
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processSource(cfg, input); err != nil {
		return err
	}
	if err := processDisplay(cfg, input); err != nil {
		return err
	}
	if err := processCompareMode(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		cfg, err := mysql.ParseDSN(connStr)
		if err != nil {
			return fmt.Errorf("invalid MySQL connection string: %w", err)
		}
		if cfg.DBName == "" {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		cfg, err := pgx.ParseConfig(connStr)
		if err != nil {
			return fmt.Errorf("invalid PostgreSQL connection string: %w", err)
		}
		if cfg.Database == "" {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates cache and history backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = schema.SQLiteBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return fmt.Errorf("cache-db-connect: %w", err)
	}

	cfg.CacheTTL = DefaultCacheTTL
	if input.CacheTTL != "" {
		ttl, err := time.ParseDuration(input.CacheTTL)
		if err != nil || ttl < 0 {
			return fmt.Errorf("invalid cache-ttl '%s'. expected a non-negative duration like 30m", input.CacheTTL)
		}
		cfg.CacheTTL = ttl
	}

	// --- History Backend Validation ---
	cfg.HistoryBackend = schema.DatabaseBackend(strings.ToLower(input.HistoryBackend))
	if cfg.HistoryBackend == "" {
		cfg.HistoryBackend = schema.NoneBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.HistoryBackend]; !ok {
		return fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", input.HistoryBackend)
	}
	cfg.HistoryDBConnect = input.HistoryDBConnect
	if err := ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return fmt.Errorf("history-db-connect: %w", err)
	}

	// Validate that cache and history use different SQLite files
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.HistoryBackend == schema.SQLiteBackend {
		cachePath := cfg.CacheDBConnect
		if cachePath == "" {
			cachePath = GetCacheDBFilePath()
		}
		historyPath := cfg.HistoryDBConnect
		if historyPath == "" {
			historyPath = GetHistoryDBFilePath()
		}
		if cachePath == historyPath {
			return fmt.Errorf("cache and history storage must use different SQLite database files. Both resolve to %q", cachePath)
		}
	}

	return nil
}

// validateSimpleInputs processes and validates output related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width

	colors := true
	if input.Color != "" {
		parsed, err := ParseBoolString(input.Color)
		if err != nil {
			return fmt.Errorf("invalid --color value: %w", err)
		}
		colors = parsed
	}
	cfg.UseColors = colors

	if input.Precision < 1 || input.Precision > 2 {
		return fmt.Errorf("precision must be 1 or 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if cfg.Output == "" {
		cfg.Output = schema.TextOut
	}
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet, xlsx", input.Output)
	}
	if (cfg.Output == schema.ParquetOut || cfg.Output == schema.XLSXOut) && cfg.OutputFile == "" {
		return fmt.Errorf("--output-file is required for %s output", cfg.Output)
	}

	cfg.Strategy = schema.BandStrategy(strings.ToLower(input.Strategy))
	if cfg.Strategy == "" {
		cfg.Strategy = schema.AnyStrategy
	}
	if _, ok := schema.ValidBandStrategies[cfg.Strategy]; !ok {
		return fmt.Errorf("invalid band strategy '%s'. must be any, min", input.Strategy)
	}

	return nil
}

// processSource decides between the REST API and a local file.
func processSource(cfg *Config, input *ConfigRawInput) error {
	cfg.Cycle = strings.TrimSpace(input.Cycle)
	cfg.InputFile = strings.TrimSpace(input.Input)
	cfg.APIToken = input.APIToken

	if cfg.InputFile != "" {
		cfg.Source = schema.FileSource
		return nil
	}
	cfg.Source = schema.APISource

	cfg.APIURL = strings.TrimRight(strings.TrimSpace(input.APIURL), "/")
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	u, err := url.Parse(cfg.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid api-url '%s'. must be an absolute http(s) URL", input.APIURL)
	}

	cfg.Endpoint = strings.Trim(strings.TrimSpace(input.Endpoint), "/")
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}

	cfg.Timeout = DefaultTimeout
	if input.Timeout != "" {
		timeout, err := time.ParseDuration(input.Timeout)
		if err != nil || timeout <= 0 {
			return fmt.Errorf("invalid timeout '%s'. expected a positive duration like 30s", input.Timeout)
		}
		cfg.Timeout = timeout
	}

	cfg.RateLimit = input.RateLimit
	if cfg.RateLimit == 0 {
		cfg.RateLimit = DefaultRateLimit
	}
	if cfg.RateLimit < 0 {
		return fmt.Errorf("rate-limit must be positive (received %.2f)", input.RateLimit)
	}

	return nil
}

// processDisplay handles filters, sorting and the result limit.
func processDisplay(cfg *Config, input *ConfigRawInput) error {
	cfg.Sector = strings.TrimSpace(input.Sector)
	cfg.Tier = schema.NormalizeTier(input.Tier)
	cfg.Query = strings.TrimSpace(input.Query)
	cfg.IncompleteOnly = input.IncompleteOnly

	cfg.SortKey = schema.SortKey(strings.ToLower(input.Sort))
	if cfg.SortKey == "" {
		cfg.SortKey = schema.SortByScore
	}
	if _, ok := schema.ValidSortKeys[cfg.SortKey]; !ok {
		return fmt.Errorf("invalid sort key '%s'. must be score, rank, name, company, sector, sat, pt, ieg", input.Sort)
	}
	// Ranks read naturally ascending, everything else descending
	cfg.SortDesc = !input.Asc
	if cfg.SortKey == schema.SortByRank {
		cfg.SortDesc = input.Asc
	}

	if input.Limit < 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be between 0 and %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	cfg.ListenAddr = strings.TrimSpace(input.Listen)
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = DefaultListenAddr
	}
	cfg.CORSOrigins = nil
	for origin := range strings.SplitSeq(input.CORSOrigins, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, trimmed)
		}
	}

	return nil
}

// processCompareMode handles the base and target cycles.
func processCompareMode(cfg *Config, input *ConfigRawInput) error {
	cfg.BaseCycle = strings.TrimSpace(input.BaseCycle)
	cfg.TargetCycle = strings.TrimSpace(input.TargetCycle)

	if cfg.BaseCycle == "" && cfg.TargetCycle == "" {
		return nil
	}
	if cfg.BaseCycle == "" {
		return fmt.Errorf("must specify --base-cycle when running the compare command")
	}
	if cfg.TargetCycle == "" {
		cfg.TargetCycle = cfg.Cycle
	}
	if cfg.BaseCycle == cfg.TargetCycle {
		return fmt.Errorf("base and target cycle must differ (both are %q)", cfg.BaseCycle)
	}
	return nil
}
