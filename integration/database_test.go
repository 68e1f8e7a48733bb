//go:build database

package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setBackendEnv points both stores at connStr for the duration of the test.
func setBackendEnv(t *testing.T, backend, connStr string) {
	t.Helper()
	t.Setenv("MFI_CACHE_BACKEND", backend)
	t.Setenv("MFI_CACHE_DB_CONNECT", connStr)
	t.Setenv("MFI_HISTORY_BACKEND", backend)
	t.Setenv("MFI_HISTORY_DB_CONNECT", connStr)
}

// exerciseStores runs the cache and history commands against the configured backend.
func exerciseStores(t *testing.T) {
	t.Helper()

	_, err := runCommand(t, "cache", "clear")
	require.NoError(t, err)

	_, err = runCommand(t, "history", "clear")
	require.NoError(t, err)

	_, err = runCommand(t, "rank", "--input", testInput, "--cycle", "2024", "--limit", "5")
	require.NoError(t, err)

	_, err = runCommand(t, "compare", "--input", testInput, "--base-cycle", "2023", "--target-cycle", "2024")
	require.NoError(t, err)

	_, err = runCommand(t, "cache", "status")
	require.NoError(t, err)

	out, err := runCommand(t, "history", "status")
	require.NoError(t, err)
	assert.Contains(t, string(out), "Total Runs: 3")
}

// TestMFIWithMySQL tests the mfi CLI with a MySQL backend.
func TestMFIWithMySQL(t *testing.T) {
	ctx := context.Background()

	// Start MySQL container
	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "mfi",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	// Get connection details
	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/mfi?parseTime=true", host, port.Port())
	setBackendEnv(t, "mysql", connStr)

	exerciseStores(t)
}

// TestMFIWithPostgres tests the mfi CLI with a PostgreSQL backend.
func TestMFIWithPostgres(t *testing.T) {
	ctx := context.Background()

	// Start Postgres container
	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()

	// Get connection details
	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres", host, port.Port())
	setBackendEnv(t, "postgresql", connStr)

	exerciseStores(t)
}
