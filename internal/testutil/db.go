// Package testutil holds fixtures and helpers shared by the package tests.
package testutil

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/localnerve/brokerdb/internal/database"
	"gorm.io/gorm"
)

// OpenDB returns a migrated in-memory SQLite database with foreign keys on.
// All work runs on one connection so the memory database is shared.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:?_pragma=foreign_keys(1)"), database.GormConfig("silent"))
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get test database: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.Migrate(db, "sqlite"); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}
