package iocache

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/fortify-index/mfi/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheStore_NoneBackend(t *testing.T) {
	store, err := NewCacheStore("test_cache", schema.NoneBackend, "")
	require.NoError(t, err)

	_, _, _, err = store.Get("missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, store.Set("key", []byte("value"), 1, time.Now().Unix()))

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "none", status.Backend)
	assert.False(t, status.Connected)
	assert.NoError(t, store.Close())
}

func TestCacheStore_InvalidTableName(t *testing.T) {
	for _, name := range []string{"", "1abc", "drop table;", "a-b"} {
		_, err := NewCacheStore(name, schema.SQLiteBackend, ":memory:")
		assert.Error(t, err, name)
	}
}

func TestCacheStore_UnsupportedBackend(t *testing.T) {
	_, err := NewCacheStore("test_cache", schema.DatabaseBackend("oracle"), "")
	assert.Error(t, err)
}

func TestCacheStore_SQLite(t *testing.T) {
	store, err := NewCacheStore("test_cache", schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	_, _, _, err = store.Get("missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	ts := time.Now().Unix()
	require.NoError(t, store.Set("key", []byte(`[{"id":1}]`), 1, ts))

	value, version, gotTs, err := store.Get("key")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[{"id":1}]`), value)
	assert.Equal(t, 1, version)
	assert.Equal(t, ts, gotTs)

	// Upsert replaces the previous entry
	require.NoError(t, store.Set("key", []byte(`[]`), 2, ts+10))
	value, version, gotTs, err = store.Get("key")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), value)
	assert.Equal(t, 2, version)
	assert.Equal(t, ts+10, gotTs)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", status.Backend)
	assert.True(t, status.Connected)
	assert.Equal(t, 1, status.TotalEntries)
	assert.Equal(t, ts+10, status.LastEntryTime.Unix())
	assert.Greater(t, status.TableSizeBytes, int64(0))
}

func TestCacheStore_SQLiteFile(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cache.db")

	store, err := NewCacheStore("test_cache", schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Set("persisted", []byte("data"), 1, 100))
	require.NoError(t, store.Close())

	reopened, err := NewCacheStore("test_cache", schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	value, _, ts, err := reopened.Get("persisted")
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), value)
	assert.Equal(t, int64(100), ts)
}

func TestCacheStore_EmptyStatus(t *testing.T) {
	store, err := NewCacheStore("test_cache", schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 0, status.TotalEntries)
	assert.True(t, status.LastEntryTime.IsZero())
}

func TestPlaceholder(t *testing.T) {
	assert.Equal(t, "?", placeholder(schema.SQLiteBackend, 1))
	assert.Equal(t, "?", placeholder(schema.MySQLBackend, 3))
	assert.Equal(t, "$3", placeholder(schema.PostgreSQLBackend, 3))
}

func TestQuoteTableName(t *testing.T) {
	assert.Equal(t, "`mfi_runs`", quoteTableName("mfi_runs", schema.MySQLBackend))
	assert.Equal(t, `"mfi_runs"`, quoteTableName("mfi_runs", schema.PostgreSQLBackend))
	assert.Equal(t, `"mfi_runs"`, quoteTableName("mfi_runs", schema.SQLiteBackend))
}

func TestGetCreateTableQuery(t *testing.T) {
	assert.Contains(t, getCreateTableQuery("c", schema.MySQLBackend), "LONGBLOB")
	assert.Contains(t, getCreateTableQuery("c", schema.PostgreSQLBackend), "BYTEA")
	assert.Contains(t, getCreateTableQuery("c", schema.SQLiteBackend), "BLOB")
}

func TestOpenDB_InvalidMySQLDSN(t *testing.T) {
	_, err := openDB(schema.MySQLBackend, "not a dsn", "")
	assert.Error(t, err)
}
