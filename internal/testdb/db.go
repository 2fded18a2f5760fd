package testdb

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/phrazzld/launchpad/internal/platform/postgres"
	"github.com/stretchr/testify/require"
)

// TestTimeout bounds connecting and migrating.
const TestTimeout = 30 * time.Second

// IsIntegrationTestEnvironment reports whether a test database is configured.
func IsIntegrationTestEnvironment() bool {
	return GetTestDatabaseURL() != ""
}

// GetTestDatabaseURL returns DATABASE_URL, falling back to
// LAUNCHPAD_TEST_DB_URL.
func GetTestDatabaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	return os.Getenv("LAUNCHPAD_TEST_DB_URL")
}

// Open returns a migrated connection to the test database, closed when the
// test ends. It skips the test when no database is configured.
func Open(t *testing.T) *sql.DB {
	t.Helper()

	url := GetTestDatabaseURL()
	if url == "" {
		t.Skip("DATABASE_URL not set; skipping Postgres integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	db, err := postgres.Open(ctx, url)
	require.NoError(t, err, "Failed to open test database")
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("Warning: failed to close test database: %v", err)
		}
	})

	err = postgres.Migrate(ctx, db, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err, "Failed to run migrations")
	return db
}

// DeleteGameConfig removes gameID when the test ends, so tests sharing a
// database do not see each other's rows.
func DeleteGameConfig(t *testing.T, db *sql.DB, gameID string) {
	t.Helper()
	t.Cleanup(func() {
		if _, err := db.Exec(`DELETE FROM game_configs WHERE game_id = $1`, gameID); err != nil {
			t.Logf("Warning: failed to delete game config %q: %v", gameID, err)
		}
	})
}
