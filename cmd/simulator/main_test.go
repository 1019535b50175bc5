package main

import (
	"bytes"
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func noEnv(string) (string, bool) { return "", false }

func runWith(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	t.Chdir(t.TempDir())
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, noEnv, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunWithoutArguments(t *testing.T) {
	code, _, stderr := runWith(t)
	assert.Equal(t, exitSetup, code)
	assert.Contains(t, stderr, "No arguments provided")
}

func TestRunWithoutRunFlag(t *testing.T) {
	code, stdout, _ := runWith(t, "--count", "3")
	assert.Equal(t, exitSetup, code)
	assert.NotContains(t, stdout, "Done")
}

func TestRunHelp(t *testing.T) {
	code, _, stderr := runWith(t, "-h")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stderr, "-count")
}

func TestRunInvalidConfig(t *testing.T) {
	code, _, stderr := runWith(t, "--run", "--count", "-4")
	assert.Equal(t, exitSetup, code)
	assert.Contains(t, stderr, "count")
}

func TestRunDryRun(t *testing.T) {
	code, stdout, _ := runWith(t, "--dry-run", "--count", "25", "--seed", "8")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "Generated 25 transactions")
	assert.Contains(t, stdout, "DIMENSION")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(stdout), "Done"))
}

func TestRunUnreachableDatabase(t *testing.T) {
	code, stdout, stderr := runWith(t, "--run", "--host", "127.0.0.1", "--port", "1", "--connect-timeout", "2s")
	assert.Equal(t, exitSetup, code)
	assert.Contains(t, stderr, "Error connecting to the database")
	assert.NotContains(t, stdout, "Generated")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(stdout), "Failed"))
}

func TestRunAgainstPostgres(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test requiring Docker")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("seed"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	defer pgContainer.Terminate(ctx)

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	port, err := pgContainer.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	args := []string{
		"--run",
		"--count", "12",
		"--batch-size", "5",
		"--db", "seed",
		"--table-name", "payments",
		"--user", "test",
		"--password", "test",
		"--host", host,
		"--port", strconv.Itoa(port.Int()),
	}
	code, stdout, _ := runWith(t, args...)
	require.Equal(t, exitOK, code, stdout)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(stdout), "Done"))
	assert.Contains(t, stdout, `"replicaIdentity"`)
	assert.Contains(t, stdout, `"payments"`)

	code, _, _ = runWith(t, args...)
	require.Equal(t, exitOK, code)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	conn, err := pgx.Connect(ctx, connStr)
	require.NoError(t, err)
	defer conn.Close(ctx)

	var n int
	require.NoError(t, conn.QueryRow(ctx, `SELECT count(*) FROM payments`).Scan(&n))
	assert.Equal(t, 24, n)

	code, stdout, _ = runWith(t, append(args, "--table-name", "nosuchschema.payments")...)
	assert.Equal(t, exitFailed, code)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(stdout), "Failed"))
}
