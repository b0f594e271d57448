// Package store persists finished simulation runs to SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// Store wraps a SQLite database holding runs and their Key-Dates.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and runs migrations.
// If path is ":memory:", uses an in-memory database.
func Open(ctx context.Context, path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One connection keeps ":memory:" databases alive and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	logrus.Debugf("store opened at %s", path)
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id         TEXT PRIMARY KEY,
		plan       TEXT NOT NULL,
		feasible   INTEGER NOT NULL,
		verbose    INTEGER NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS key_dates (
		run_id    TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		seq       INTEGER NOT NULL,
		date      TEXT NOT NULL,
		date_type TEXT NOT NULL CHECK(date_type IN ('MILESTONE','SUBJECT','ED_SOURCE')),
		boundary  TEXT NOT NULL DEFAULT '',
		subject   TEXT NOT NULL DEFAULT '',
		source    TEXT NOT NULL DEFAULT '',
		milestone TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (run_id, seq)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_key_dates_subject ON key_dates(run_id, subject)`,
}

func migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
