package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/xxxsen/ghostkube/internal/config"
	"github.com/xxxsen/ghostkube/internal/db"
	"github.com/xxxsen/ghostkube/internal/repo"
)

// OpenTestDB connects to the postgres named by TEST_DB_HOST, skipping the test when unset.
func OpenTestDB(t *testing.T) (*sqlx.DB, func()) {
	t.Helper()
	host := os.Getenv("TEST_DB_HOST")
	if host == "" {
		t.Skip("TEST_DB_HOST not set, skipping postgres test")
	}
	conn, err := db.Open(context.Background(), config.DatabaseConfig{
		Host:     host,
		Port:     5432,
		User:     "ghostkube",
		Password: "ghostkube_pass",
		DBName:   "ghostkube_test",
		SSLMode:  "disable",
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	return conn, func() {
		_, _ = conn.Exec("TRUNCATE chunks, embedding_cache")
		_ = conn.Close()
	}
}

// OpenSQLite returns a fresh in-memory sqlite index.
func OpenSQLite(t *testing.T) *sqlx.DB {
	t.Helper()
	conn, err := repo.OpenSQLite(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}
