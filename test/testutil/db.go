package testutil

import (
	"database/sql"
	"os"
	"testing"

	"studyrag/internal/config"
	"studyrag/internal/repo"
)

func OpenTestDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()
	host := os.Getenv("TEST_DB_HOST")
	if host == "" {
		t.Skip("TEST_DB_HOST not set, skipping postgres test")
	}
	conn, err := repo.Open(config.DatabaseConfig{
		Host:     host,
		Port:     5432,
		User:     "studyrag",
		Password: "studyrag_pass",
		DBName:   "studyrag_test",
		SSLMode:  "disable",
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := repo.ApplyMigrations(conn); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	return conn, func() {
		_ = conn.Close()
	}
}

func ResetTables(t *testing.T, db *sql.DB) {
	t.Helper()
	for _, table := range []string{"document_chunks", "documents", "embedding_cache"} {
		if _, err := db.Exec("DELETE FROM " + table); err != nil {
			t.Fatalf("reset %s: %v", table, err)
		}
	}
}
