package testutil

import (
	"testing"

	"github.com/jeffanddom/organizex/internal/database"
	"github.com/jeffanddom/organizex/internal/logging"
	"github.com/jeffanddom/organizex/internal/migrate"
)

// NewTestDB creates an in-memory SQLite database with all migrations applied.
// The database is closed when the test finishes.
func NewTestDB(t *testing.T) *database.Database {
	t.Helper()

	db, err := database.FromURL(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close test database: %v", err)
		}
	})

	if err := migrate.AutoMigrate(db.DB(), db.Dialect(), logging.Nop()); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}
