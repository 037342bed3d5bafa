package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Register driver
)

// DB wraps the sql.DB connection.
type DB struct {
	*sql.DB
}

// Init opens the database and runs migrations.
func Init(path string) (*DB, error) {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=30000;"); err != nil {
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	d := &DB{db}
	// Single connection: sqlite serializes writers anyway
	db.SetMaxOpenConns(1)

	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return d, nil
}

// PruneJournal removes geofence events and route reports older than the given age.
// It returns the number of rows deleted from each table.
func (d *DB) PruneJournal(olderThan time.Duration) (events, reports int64, err error) {
	deadline := time.Now().Add(-olderThan).UTC()

	res, err := d.Exec("DELETE FROM geofence_events WHERE occurred_at < ?", deadline)
	if err != nil {
		return 0, 0, fmt.Errorf("prune geofence_events: %w", err)
	}
	events, _ = res.RowsAffected()

	res, err = d.Exec("DELETE FROM route_reports WHERE created_at < ?", deadline)
	if err != nil {
		return events, 0, fmt.Errorf("prune route_reports: %w", err)
	}
	reports, _ = res.RowsAffected()

	return events, reports, nil
}

func (d *DB) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS persistent_state (
			key TEXT PRIMARY KEY,
			value TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS geofence_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			entity_id TEXT NOT NULL,
			fence_id TEXT NOT NULL,
			fence_name TEXT,
			transition TEXT NOT NULL,
			lat REAL,
			lon REAL,
			occurred_at DATETIME NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_geofence_events_entity ON geofence_events(entity_id, occurred_at);`,
		`CREATE TABLE IF NOT EXISTS route_reports (
			id TEXT PRIMARY KEY,
			label TEXT,
			compliance REAL,
			result TEXT NOT NULL,
			created_at DATETIME NOT NULL
		);`,
	}

	for _, q := range queries {
		if _, err := d.Exec(q); err != nil {
			return fmt.Errorf("exec error: %w query: %s", err, q)
		}
	}

	// Migration: add label to reports created before it existed
	var colCount int
	err := d.QueryRow("SELECT count(*) FROM pragma_table_info('route_reports') WHERE name='label'").Scan(&colCount)
	if err == nil && colCount == 0 {
		if _, err := d.Exec("ALTER TABLE route_reports ADD COLUMN label TEXT"); err != nil {
			return fmt.Errorf("failed to add label column: %w", err)
		}
	}

	return nil
}
