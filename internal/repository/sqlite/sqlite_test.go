package sqlite

import (
	"testing"
)

// newTestDB returns a DB backed by an isolated in-memory database,
// schema migrated, closed automatically when the test ends.
func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("opening in-memory database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

func TestNew_MigratesSchema(t *testing.T) {
	db := newTestDB(t)

	for _, table := range []string{"users", "categories", "tags", "post_tags", "settings"} {
		var n int
		err := db.conn.QueryRow(
			`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table,
		).Scan(&n)
		if err != nil {
			t.Fatalf("checking table %s: %v", table, err)
		}
		if n != 1 {
			t.Errorf("table %s missing after migration", table)
		}
	}
}

func TestNew_IsIdempotent(t *testing.T) {
	db := newTestDB(t)

	// Running the migrations again must not error.
	if err := db.migrate(); err != nil {
		t.Fatalf("second migrate() error = %v", err)
	}
}
