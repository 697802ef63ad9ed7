package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TestDatabaseURLEnv names the variable that enables Postgres-backed tests
const TestDatabaseURLEnv = "ARENA_BETS_TEST_DATABASE_URL"

// SetupTestDB connects to the database named by ARENA_BETS_TEST_DATABASE_URL,
// applies the schema, and skips the test when the variable is unset.
func SetupTestDB(t *testing.T) *DB {
	t.Helper()
	url := os.Getenv(TestDatabaseURLEnv)
	if url == "" {
		t.Skipf("%s not set", TestDatabaseURLEnv)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		t.Fatalf("failed to create test database connection: %v", err)
	}
	db := &DB{pool: pool}
	if err := db.Ping(ctx); err != nil {
		pool.Close()
		t.Fatalf("failed to ping test database: %v", err)
	}
	if err := EnsureSchema(ctx, db); err != nil {
		pool.Close()
		t.Fatalf("failed to apply schema: %v", err)
	}

	t.Cleanup(db.Close)
	return db
}
