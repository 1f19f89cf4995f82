// Package sqlite implements the repository interfaces on SQLite via the
// pure-Go modernc.org/sqlite driver (no CGo, cross-compiles anywhere Go
// does). Use a file path for persistence or ":memory:" in tests.
//
// The schema's UNIQUE indexes are the real uniqueness guarantee for
// emails and slugs. Application-level pre-checks give friendly errors,
// but under concurrent writes it is these indexes that arbitrate — a
// violation is translated to apperror.Conflict by isUniqueViolation.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	// Blank import registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and hands out the per-entity stores.
type DB struct {
	conn *sql.DB
}

// New opens the database, applies pragmas, and runs migrations.
//
// sql.Open only creates the pool manager; Ping forces a real connection
// so a bad path or permission problem surfaces here rather than on the
// first query.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL allows concurrent reads during a write — important for a web
	// server sharing one database file across requests.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are off by default in SQLite; the category forest
	// and the post_tags join rely on them.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool. Defer it wherever New succeeds.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping reports whether the store is reachable. The health endpoint maps
// a failure here to 503.
func (db *DB) Ping() error {
	return db.conn.Ping()
}

// Users returns the user store backed by this connection.
func (db *DB) Users() *UserStore { return &UserStore{db: db} }

// Categories returns the category store backed by this connection.
func (db *DB) Categories() *CategoryStore { return &CategoryStore{db: db} }

// Tags returns the tag store backed by this connection.
func (db *DB) Tags() *TagStore { return &TagStore{db: db} }

// Settings returns the settings store backed by this connection.
func (db *DB) Settings() *SettingStore { return &SettingStore{db: db} }

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps it
// idempotent, so it is safe on every startup.
func (db *DB) migrate() error {
	// email is unique across active AND inactive accounts, compared
	// case-insensitively. Role is constrained at the store level too —
	// the service validates first, the CHECK is the backstop.
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			email         TEXT NOT NULL COLLATE NOCASE UNIQUE,
			name          TEXT NOT NULL DEFAULT '',
			password_hash TEXT NOT NULL,
			role          TEXT NOT NULL CHECK (role IN ('admin','editor','author')),
			is_active     INTEGER NOT NULL DEFAULT 1,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			last_login_at DATETIME
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	// parent_id is self-referential; ON DELETE behavior is handled in
	// application code (children are re-parented before the delete).
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS categories (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			slug        TEXT NOT NULL UNIQUE,
			description TEXT NOT NULL DEFAULT '',
			color       TEXT NOT NULL DEFAULT '',
			parent_id   TEXT REFERENCES categories(id),
			sort_order  INTEGER NOT NULL DEFAULT 0,
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_categories_parent_id ON categories(parent_id);
	`)
	if err != nil {
		return fmt.Errorf("creating categories table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS tags (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			slug       TEXT NOT NULL UNIQUE,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS post_tags (
			post_id TEXT NOT NULL,
			tag_id  TEXT NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
			PRIMARY KEY (post_id, tag_id)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating tags tables: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS settings (
			key         TEXT PRIMARY KEY,
			value       TEXT NOT NULL DEFAULT '',
			type        TEXT NOT NULL CHECK (type IN ('string','number','boolean','json')),
			description TEXT NOT NULL DEFAULT '',
			updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating settings table: %w", err)
	}

	return nil
}

// isUniqueViolation reports whether err is the driver's rejection of a
// duplicate value on a UNIQUE column. The driver exposes no typed error
// for this, so the message is matched — the constant substring is part
// of SQLite's documented error text.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
