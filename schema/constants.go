package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// Status represents the status of an entity across two cycles.
	Status string

	// DatabaseBackend represents the database backend for caching and history.
	DatabaseBackend string

	// Band is the qualitative fortification descriptor of a compliance set.
	Band string

	// BandStrategy selects how a compliance set is reduced to a Band.
	BandStrategy string

	// SortKey is a display sort column.
	SortKey string

	// SourceKind selects where raw metrics come from.
	SourceKind string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
	XLSXOut    OutputMode = "xlsx"
)

// All status supported.
const (
	NewStatus      Status = "new"
	ActiveStatus   Status = "active"
	InactiveStatus Status = "inactive"
	UnknownStatus  Status = "unknown"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// Fortification bands, ordered from best to worst.
const (
	FullyFortified        Band = "Fully Fortified"
	AdequatelyFortified   Band = "Adequately Fortified"
	PartlyFortified       Band = "Partly Fortified"
	InadequatelyFortified Band = "Inadequately Fortified"
	NotFortified          Band = "Not Fortified"
	NoDataBand            Band = "No Data"
)

// Band strategies.
const (
	AnyStrategy BandStrategy = "any" // default, first matching any/all rule wins
	MinStrategy BandStrategy = "min" // classify the worst nutrient
)

// Display sort keys.
const (
	SortByScore   SortKey = "score" // default
	SortByRank    SortKey = "rank"
	SortByName    SortKey = "name"
	SortByCompany SortKey = "company"
	SortBySector  SortKey = "sector"
	SortBySAT     SortKey = "sat"
	SortByPT      SortKey = "pt"
	SortByIEG     SortKey = "ieg"
)

// Raw metric sources.
const (
	APISource  SourceKind = "api" // default
	FileSource SourceKind = "file"
)

// AllBands lists every band from best to worst.
var AllBands = []Band{FullyFortified, AdequatelyFortified, PartlyFortified, InadequatelyFortified, NotFortified, NoDataBand}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
	XLSXOut:    {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidBandStrategies lists all valid band strategies.
var ValidBandStrategies = map[BandStrategy]struct{}{
	AnyStrategy: {},
	MinStrategy: {},
}

// ValidSortKeys lists all valid display sort keys.
var ValidSortKeys = map[SortKey]struct{}{
	SortByScore:   {},
	SortByRank:    {},
	SortByName:    {},
	SortByCompany: {},
	SortBySector:  {},
	SortBySAT:     {},
	SortByPT:      {},
	SortByIEG:     {},
}

// CSVHeader is the header row of the ranking export.
var CSVHeader = []string{
	"Brand",
	"Company Name",
	"Sector",
	"SAT Type",
	"Weighted SAT Score",
	"Weighted PT Score",
	"Weighted IEG Score",
	"Final MFI Score",
	"Ranking",
}
