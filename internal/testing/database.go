// Package testing holds shared test helpers.
package testing

import (
	"database/sql"
	"testing"

	"github.com/teranos/crdb/db"
)

// CreateTestDB creates an in-memory SQLite database with the cache schema
// applied. Automatically registers cleanup via t.Cleanup().
func CreateTestDB(t *testing.T) *sql.DB {
	t.Helper()

	database, err := db.OpenWithMigrations(":memory:", nil)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		database.Close()
	})
	return database
}
