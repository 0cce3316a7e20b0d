// Package storagetest opens migrated in-memory databases for tests.
package storagetest

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"

	"gymbios/internal/adapters/storage"
)

// Open returns a migrated in-memory database closed at test cleanup.
// A single connection keeps every query on the same :memory: database.
func Open(t testing.TB) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	if err := storage.InitDB(db); err != nil {
		t.Fatalf("init test db: %v", err)
	}
	return db
}
