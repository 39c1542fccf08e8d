package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// OpenDB opens the waypoint store at path, creating its directory, and
// brings the schema up to date. ":memory:" gives a throwaway database.
func OpenDB(path string) (*sql.DB, error) {
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// One connection: every in-memory connection would otherwise get its own
	// empty database, and SQLite serialises writers anyway.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	for _, p := range pragmas(path) {
		if _, err := db.Exec("PRAGMA " + p); err != nil {
			db.Close()
			return nil, fmt.Errorf("pragma %s: %w", p, err)
		}
	}

	if err := Migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return db, nil
}

// pragmas returns the connection settings for path. WAL needs a file.
func pragmas(path string) []string {
	ps := []string{"foreign_keys = ON", "busy_timeout = 5000"}
	if path != ":memory:" {
		ps = append(ps, "journal_mode = WAL", "synchronous = NORMAL")
	}
	return ps
}
