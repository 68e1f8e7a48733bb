package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fortify-index/mfi/internal/contract"
	"github.com/fortify-index/mfi/schema"
)

// Table names for run history.
const (
	runsTable      = "mfi_runs"
	runInputsTable = "mfi_run_inputs"
)

// HistoryStoreImpl implements the HistoryStore interface.
// Only raw inputs are stored; scores, ranks and bands are recomputed on read.
type HistoryStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.HistoryStore = &HistoryStoreImpl{} // Compile-time check

// NewHistoryStore creates a new HistoryStore with the specified backend.
func NewHistoryStore(backend schema.DatabaseBackend, connStr string) (contract.HistoryStore, error) {
	if backend == schema.NoneBackend {
		// Return a no-op store for disabled tracking
		return &HistoryStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr, GetHistoryDBFilePath())
	if err != nil {
		return nil, err
	}

	if err := createHistoryTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history tables: %w", err)
	}

	return &HistoryStoreImpl{db: db, backend: backend}, nil
}

// createHistoryTables creates the run history tables.
func createHistoryTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{runsTable, getCreateRunsQuery(backend)},
		{runInputsTable, getCreateRunInputsQuery(backend)},
	}

	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}

	return nil
}

// getCreateRunsQuery returns the CREATE TABLE query for mfi_runs.
func getCreateRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(runsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				total_entities INT NOT NULL DEFAULT 0,
				cycle VARCHAR(64) NOT NULL,
				source VARCHAR(512) NOT NULL,
				config_params TEXT
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGSERIAL PRIMARY KEY,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INT,
				total_entities INT NOT NULL DEFAULT 0,
				cycle TEXT NOT NULL,
				source TEXT NOT NULL,
				config_params TEXT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER PRIMARY KEY AUTOINCREMENT,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				total_entities INTEGER NOT NULL DEFAULT 0,
				cycle TEXT NOT NULL,
				source TEXT NOT NULL,
				config_params TEXT
			);
		`, quotedTableName)
	}
}

// getCreateRunInputsQuery returns the CREATE TABLE query for mfi_run_inputs.
func getCreateRunInputsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(runInputsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				input_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				run_id BIGINT NOT NULL,
				entity_id VARCHAR(128) NOT NULL,
				entity_name VARCHAR(512) NOT NULL,
				company_name VARCHAR(512) NOT NULL,
				sector VARCHAR(255) NOT NULL,
				tier VARCHAR(64) NOT NULL,
				ivc DOUBLE,
				sat DOUBLE,
				pt DOUBLE,
				ieg DOUBLE,
				compliance TEXT
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				input_id BIGSERIAL PRIMARY KEY,
				run_id BIGINT NOT NULL,
				entity_id TEXT NOT NULL,
				entity_name TEXT NOT NULL,
				company_name TEXT NOT NULL,
				sector TEXT NOT NULL,
				tier TEXT NOT NULL,
				ivc DOUBLE PRECISION,
				sat DOUBLE PRECISION,
				pt DOUBLE PRECISION,
				ieg DOUBLE PRECISION,
				compliance TEXT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				input_id INTEGER PRIMARY KEY AUTOINCREMENT,
				run_id INTEGER NOT NULL,
				entity_id TEXT NOT NULL,
				entity_name TEXT NOT NULL,
				company_name TEXT NOT NULL,
				sector TEXT NOT NULL,
				tier TEXT NOT NULL,
				ivc REAL,
				sat REAL,
				pt REAL,
				ieg REAL,
				compliance TEXT
			);
		`, quotedTableName)
	}
}

// BeginRun creates a new ranking run and returns its unique ID.
func (hs *HistoryStoreImpl) BeginRun(startTime time.Time, params schema.RunParams) (int64, error) {
	// Skip for NoneBackend
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return 0, nil
	}

	var configParams *string
	if params.Extra != nil {
		data, err := json.Marshal(params.Extra)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal config params: %w", err)
		}
		s := string(data)
		configParams = &s
	}

	quotedTableName := quoteTableName(runsTable, hs.backend)

	var runID int64
	var err error
	switch hs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (start_time, cycle, source, config_params) VALUES ($1, $2, $3, $4) RETURNING run_id`, quotedTableName)
		err = hs.db.QueryRow(query, startTime, params.Cycle, params.Source, configParams).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (start_time, cycle, source, config_params) VALUES (?, ?, ?, ?)`, quotedTableName)
		var result sql.Result
		result, err = hs.db.Exec(query, formatTime(startTime, hs.backend), params.Cycle, params.Source, configParams)
		if err == nil {
			runID, err = result.LastInsertId()
		}
	}

	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	return runID, nil
}

// RecordInput stores one raw input record of a run.
func (hs *HistoryStoreImpl) RecordInput(runID int64, metric schema.RawMetric) error {
	// Skip for NoneBackend
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil
	}

	var compliance *string
	if metric.Compliance != nil {
		data, err := json.Marshal(metric.Compliance)
		if err != nil {
			return fmt.Errorf("failed to marshal compliance: %w", err)
		}
		s := string(data)
		compliance = &s
	}

	quotedTableName := quoteTableName(runInputsTable, hs.backend)
	placeholders := ""
	for i := 1; i <= 11; i++ {
		if i > 1 {
			placeholders += ", "
		}
		placeholders += placeholder(hs.backend, i)
	}
	query := fmt.Sprintf(`INSERT INTO %s (run_id, entity_id, entity_name, company_name, sector, tier, ivc, sat, pt, ieg, compliance)
		VALUES (%s)`, quotedTableName, placeholders)

	_, err := hs.db.Exec(query,
		runID,
		string(metric.ID),
		metric.Name,
		metric.CompanyName,
		metric.ProductType,
		string(metric.Tier),
		metric.IVC.Ptr(),
		metric.SAT.Ptr(),
		metric.PT.Ptr(),
		metric.IEG.Ptr(),
		compliance,
	)
	if err != nil {
		return fmt.Errorf("failed to record input %q of run %d: %w", metric.Name, runID, err)
	}
	return nil
}

// EndRun updates the run with completion data.
func (hs *HistoryStoreImpl) EndRun(runID int64, endTime time.Time, totalEntities int) error {
	// Skip for NoneBackend
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(runsTable, hs.backend)
	query := fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = %s`, quotedTableName, placeholder(hs.backend, 1))
	startTime, err := hs.scanTime(hs.db.QueryRow(query, runID))
	if err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}

	// Calculate duration in milliseconds
	durationMs := endTime.Sub(startTime).Milliseconds()

	var updateQuery string
	switch hs.backend {
	case schema.PostgreSQLBackend:
		updateQuery = fmt.Sprintf(`UPDATE %s SET end_time = $1, run_duration_ms = $2, total_entities = $3 WHERE run_id = $4`, quotedTableName)
	default: // SQLite and MySQL
		updateQuery = fmt.Sprintf(`UPDATE %s SET end_time = ?, run_duration_ms = ?, total_entities = ? WHERE run_id = ?`, quotedTableName)
	}

	if _, err := hs.db.Exec(updateQuery, formatTime(endTime, hs.backend), durationMs, totalEntities, runID); err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	return nil
}

// Close closes the underlying DB connection.
func (hs *HistoryStoreImpl) Close() error {
	if hs.db != nil {
		return hs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the history store.
func (hs *HistoryStoreImpl) GetStatus() (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:    string(hs.backend),
		Connected:  hs.db != nil,
		TableSizes: make(map[string]int64),
	}

	if hs.backend == schema.NoneBackend || hs.db == nil {
		return status, nil
	}

	quotedRuns := quoteTableName(runsTable, hs.backend)
	if err := hs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedRuns)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		row := hs.db.QueryRow(fmt.Sprintf("SELECT run_id FROM %s ORDER BY run_id DESC LIMIT 1", quotedRuns))
		if err := row.Scan(&status.LastRunID); err != nil {
			return status, fmt.Errorf("failed to get last run id: %w", err)
		}

		lastRunTime, err := hs.scanTime(hs.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id DESC LIMIT 1", quotedRuns)))
		if err != nil {
			return status, fmt.Errorf("failed to get last run time: %w", err)
		}
		status.LastRunTime = lastRunTime

		oldestRunTime, err := hs.scanTime(hs.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", quotedRuns)))
		if err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		status.OldestRunTime = oldestRunTime

		entitiesQuery := fmt.Sprintf("SELECT COALESCE(SUM(total_entities), 0) FROM %s", quotedRuns)
		if err := hs.db.QueryRow(entitiesQuery).Scan(&status.TotalEntities); err != nil {
			return status, fmt.Errorf("failed to get total entities: %w", err)
		}
	}

	for _, table := range []string{runsTable, runInputsTable} {
		var count int64
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, hs.backend))
		if err := hs.db.QueryRow(countQuery).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}

// GetAllRuns retrieves all runs from the store, oldest first.
func (hs *HistoryStoreImpl) GetAllRuns() ([]schema.RunRecord, error) {
	// Skip for NoneBackend
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, start_time, end_time, run_duration_ms, total_entities, cycle, source, config_params
		FROM %s ORDER BY run_id`, quoteTableName(runsTable, hs.backend))
	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord
	for rows.Next() {
		var record schema.RunRecord

		switch hs.backend {
		case schema.SQLiteBackend:
			var startTimeStr string
			var endTimeStr *string
			if err := rows.Scan(&record.RunID, &startTimeStr, &endTimeStr, &record.RunDurationMs,
				&record.TotalEntities, &record.Cycle, &record.Source, &record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan run: %w", err)
			}
			startTime, err := time.Parse(time.RFC3339Nano, startTimeStr)
			if err != nil {
				return nil, fmt.Errorf("failed to parse start_time: %w", err)
			}
			record.StartTime = startTime
			if endTimeStr != nil {
				endTime, err := time.Parse(time.RFC3339Nano, *endTimeStr)
				if err != nil {
					return nil, fmt.Errorf("failed to parse end_time: %w", err)
				}
				record.EndTime = &endTime
			}
		default: // MySQL and PostgreSQL
			if err := rows.Scan(&record.RunID, &record.StartTime, &record.EndTime, &record.RunDurationMs,
				&record.TotalEntities, &record.Cycle, &record.Source, &record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan run: %w", err)
			}
		}

		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return results, nil
}

// GetRunInputs retrieves the raw inputs of a run in insertion order.
func (hs *HistoryStoreImpl) GetRunInputs(runID int64) ([]schema.RawMetric, error) {
	// Skip for NoneBackend
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT entity_id, entity_name, company_name, sector, tier, ivc, sat, pt, ieg, compliance
		FROM %s WHERE run_id = %s ORDER BY input_id`, quoteTableName(runInputsTable, hs.backend), placeholder(hs.backend, 1))
	rows, err := hs.db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query inputs of run %d: %w", runID, err)
	}
	defer func() { _ = rows.Close() }()

	results := []schema.RawMetric{}
	for rows.Next() {
		var (
			m                 schema.RawMetric
			id, tier          string
			ivc, sat, pt, ieg *float64
			compliance        *string
		)
		if err := rows.Scan(&id, &m.Name, &m.CompanyName, &m.ProductType, &tier, &ivc, &sat, &pt, &ieg, &compliance); err != nil {
			return nil, fmt.Errorf("failed to scan input: %w", err)
		}
		m.ID = schema.EntityID(id)
		m.Tier = schema.Tier(tier)
		m.IVC = schema.ScoreFromPtr(ivc)
		m.SAT = schema.ScoreFromPtr(sat)
		m.PT = schema.ScoreFromPtr(pt)
		m.IEG = schema.ScoreFromPtr(ieg)
		if compliance != nil {
			if err := json.Unmarshal([]byte(*compliance), &m.Compliance); err != nil {
				return nil, fmt.Errorf("failed to decode compliance of %q: %w", m.Name, err)
			}
		}
		results = append(results, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating inputs: %w", err)
	}
	return results, nil
}

// scanTime reads a single timestamp column in the backend's storage format.
func (hs *HistoryStoreImpl) scanTime(row *sql.Row) (time.Time, error) {
	if hs.backend == schema.SQLiteBackend {
		var s string
		if err := row.Scan(&s); err != nil {
			return time.Time{}, err
		}
		return time.Parse(time.RFC3339Nano, s)
	}
	var t time.Time
	err := row.Scan(&t)
	return t, err
}

// formatTime converts a time.Time to the appropriate format for the backend.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	switch backend {
	case schema.SQLiteBackend:
		return t.UTC().Format(time.RFC3339Nano)
	default:
		return t
	}
}
