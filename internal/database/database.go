// Package database opens the SQLite file shared by localstacker's local
// stores.
package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DefaultFile is the database location when neither SetPath nor the config
// file supply one.
const DefaultFile = "/var/lib/localstacker/localstacker.db"

var pathOverride string

// SetPath overrides the default database path. Intended for testing.
func SetPath(p string) { pathOverride = p }

// ResetPath clears the path override. Intended for testing.
func ResetPath() { pathOverride = "" }

// ResolvePath returns the override when set, otherwise configured, otherwise
// DefaultFile.
func ResolvePath(configured string) string {
	if pathOverride != "" {
		return pathOverride
	}
	if configured != "" {
		return configured
	}
	return DefaultFile
}

// Open opens a SQLite database at the provided path, creating its
// directory. Writers wait up to five seconds for a competing lock.
func Open(path string) (*sql.DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("database: failed to create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("database: failed to open database: %w", err)
	}
	return db, nil
}
