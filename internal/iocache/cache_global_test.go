package iocache

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fortify-index/mfi/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetManager restores the global manager between tests.
func resetManager(t *testing.T) {
	t.Helper()
	initOnce = sync.Once{}
	closeOnce = sync.Once{}
	Manager = &CacheStoreManager{}
}

func TestCaching(t *testing.T) {
	t.Run("sqlite setup", func(t *testing.T) {
		resetManager(t)
		dir := t.TempDir()
		cachePath := filepath.Join(dir, "cache.db")
		historyPath := filepath.Join(dir, "history.db")

		err := InitCaching(schema.SQLiteBackend, cachePath, schema.SQLiteBackend, historyPath)
		require.NoError(t, err)
		assert.NotNil(t, Manager.GetResponseStore())
		assert.NotNil(t, Manager.GetHistoryStore())

		require.NoError(t, Manager.GetResponseStore().Set("k", []byte("v"), 1, time.Now().Unix()))
		CloseCaching()

		_, err = os.Stat(cachePath)
		assert.NoError(t, err, "cache database file should be created")
		_, err = os.Stat(historyPath)
		assert.NoError(t, err, "history database file should be created")
	})

	t.Run("idempotent setup", func(t *testing.T) {
		resetManager(t)
		dir := t.TempDir()
		cachePath := filepath.Join(dir, "cache.db")

		err1 := InitCaching(schema.SQLiteBackend, cachePath, schema.NoneBackend, "")
		err2 := InitCaching(schema.SQLiteBackend, cachePath, schema.NoneBackend, "")
		assert.NoError(t, err1)
		assert.NoError(t, err2)

		CloseCaching()
		CloseCaching()
	})

	t.Run("none backend", func(t *testing.T) {
		resetManager(t)

		require.NoError(t, InitCaching(schema.NoneBackend, "", schema.NoneBackend, ""))
		store := Manager.GetResponseStore()
		require.NotNil(t, store)
		status, err := store.GetStatus()
		require.NoError(t, err)
		assert.False(t, status.Connected)

		CloseCaching()
	})

	t.Run("empty backend leaves store nil", func(t *testing.T) {
		resetManager(t)

		require.NoError(t, InitCaching("", "", "", ""))
		assert.Nil(t, Manager.GetResponseStore())
		assert.Nil(t, Manager.GetHistoryStore())

		CloseCaching()
	})

	t.Run("bad backend", func(t *testing.T) {
		resetManager(t)

		err := InitCaching(schema.DatabaseBackend("oracle"), "", schema.NoneBackend, "")
		assert.Error(t, err)
		assert.Nil(t, Manager.GetResponseStore())
	})
}

func TestClearCache(t *testing.T) {
	t.Run("sqlite removes the file", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "cache.db")
		store, err := NewCacheStore(responseTable, schema.SQLiteBackend, dbPath)
		require.NoError(t, err)
		require.NoError(t, store.Close())

		require.NoError(t, ClearCache(schema.SQLiteBackend, dbPath, ""))
		_, err = os.Stat(dbPath)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("sqlite missing file is fine", func(t *testing.T) {
		assert.NoError(t, ClearCache(schema.SQLiteBackend, filepath.Join(t.TempDir(), "nope.db"), ""))
	})

	t.Run("sqlite needs a path", func(t *testing.T) {
		assert.Error(t, ClearCache(schema.SQLiteBackend, "", ""))
	})

	t.Run("none backend", func(t *testing.T) {
		assert.NoError(t, ClearCache(schema.NoneBackend, "", ""))
	})

	t.Run("unsupported backend", func(t *testing.T) {
		assert.Error(t, ClearCache(schema.DatabaseBackend("oracle"), "", ""))
	})
}

func TestClearHistory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	store, err := NewHistoryStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	_, err = store.BeginRun(time.Now(), schema.RunParams{Cycle: "2024"})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	require.NoError(t, ClearHistory(schema.SQLiteBackend, dbPath, ""))

	reopened, err := NewHistoryStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()
	runs, err := reopened.GetAllRuns()
	require.NoError(t, err)
	assert.Empty(t, runs)
}
