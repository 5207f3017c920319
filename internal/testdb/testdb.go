// Package testdb wires integration tests to a real PostgreSQL instance.
// Tests opt in through the DATABASE_URL (or DOCKET_TEST_DB_URL) environment
// variable and are skipped when neither is set, so a plain `go test` run
// stays self-contained.
package testdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"
)

// connectTimeout bounds the initial ping when opening a test database.
const connectTimeout = 5 * time.Second

// URL returns the database URL for integration tests. DATABASE_URL wins;
// DOCKET_TEST_DB_URL is the fallback. Empty means no database is available.
func URL() string {
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		return dbURL
	}
	return os.Getenv("DOCKET_TEST_DB_URL")
}

// Open returns a migrated database connection for integration tests,
// skipping the test when no database URL is configured. The connection is
// closed automatically when the test finishes.
func Open(t *testing.T) *sql.DB {
	t.Helper()

	dbURL := URL()
	if dbURL == "" {
		t.Skip("DATABASE_URL or DOCKET_TEST_DB_URL not set, skipping integration test")
	}

	db, err := sql.Open("pgx", dbURL)
	require.NoError(t, err, "failed to open database connection")

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	require.NoError(t, db.PingContext(ctx), "database ping failed")

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("failed to close database connection: %v", err)
		}
	})

	migrate(t, db)
	return db
}

// migrate applies the goose migrations from the repository's migrations
// directory.
func migrate(t *testing.T, db *sql.DB) {
	t.Helper()

	root, err := projectRoot()
	require.NoError(t, err, "failed to locate project root")

	dir := filepath.Join(root, "migrations")
	require.DirExists(t, dir, "migrations directory does not exist: %s", dir)

	goose.SetLogger(&gooseLogger{t: t})
	require.NoError(t, goose.SetDialect("postgres"))
	require.NoError(t, goose.Up(db, dir), "failed to run migrations")
}

// WithTx runs fn inside a transaction that is always rolled back, keeping
// tests isolated from one another regardless of what they write.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err, "failed to begin transaction")

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Logf("failed to roll back transaction: %v", err)
		}
	}()

	fn(t, tx)
}

// projectRoot walks upward from the working directory until it finds go.mod.
func projectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("could not find go.mod in any parent directory")
		}
		dir = parent
	}
}

// gooseLogger routes goose output through the test log.
type gooseLogger struct {
	t *testing.T
}

func (l *gooseLogger) Printf(format string, v ...interface{}) {
	l.t.Log("goose: " + strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l *gooseLogger) Fatalf(format string, v ...interface{}) {
	l.t.Fatal("goose: " + strings.TrimSpace(fmt.Sprintf(format, v...)))
}
