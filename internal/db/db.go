// Package db provides the daycanvas record store: named key-value collections
// persisted in SQLite, with an in-memory fallback.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// FileName is the database file created inside the data directory.
const FileName = "daycanvas.db"

// DB wraps the sql.DB with daycanvas-specific configuration.
type DB struct {
	*sql.DB
}

// Open opens the SQLite database inside dataDir, creating the directory if needed.
// The database is opened with:
// - WAL mode so readers never block the single writer
// - a busy timeout so a concurrent writer waits instead of failing
func Open(dataDir string) (*DB, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return OpenPath(filepath.Join(dataDir, FileName))
}

// OpenPath opens the SQLite database at path. ":memory:" is accepted.
func OpenPath(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't support multiple writers, and ":memory:" databases are per connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if path != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	// Expression indexes rely on the JSON1 functions.
	var probe string
	if err := db.QueryRow(`SELECT json_extract('{"a":"ok"}', '$.a')`).Scan(&probe); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to verify JSON support: %w", err)
	}

	return &DB{db}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.DB.Close()
}
