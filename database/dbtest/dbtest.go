// Package dbtest provides a migrated SQLite database for package tests.
package dbtest

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/billbatista/expensebook/database"
)

func New(t testing.TB) *sql.DB {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "expenses.db")
	db, err := database.Open(t.Context(), database.SQLite, dsn)
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}
