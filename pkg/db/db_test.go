package db_test

import (
	"path/filepath"
	"testing"
	"time"

	"geotrail/pkg/db"
)

func TestDB(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "nested", "db_test.db")

	d, err := db.Init(path)
	if err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	if d == nil {
		t.Fatal("Init() returned nil DB")
	}
	defer d.Close()

	for _, table := range []string{"persistent_state", "geofence_events", "route_reports"} {
		var name string
		err := d.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}
}

func TestDB_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")

	for i := 0; i < 2; i++ {
		d, err := db.Init(path)
		if err != nil {
			t.Fatalf("Init() #%d failed: %v", i, err)
		}
		d.Close()
	}
}

func TestDB_PruneJournal(t *testing.T) {
	d, err := db.Init(filepath.Join(t.TempDir(), "prune.db"))
	if err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	defer d.Close()

	old := time.Now().Add(-48 * time.Hour).UTC()
	fresh := time.Now().UTC()

	for _, ts := range []time.Time{old, fresh} {
		if _, err := d.Exec(`INSERT INTO geofence_events (entity_id, fence_id, transition, occurred_at) VALUES ('v', 'f', 'entered', ?)`, ts); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := d.Exec(`INSERT INTO route_reports (id, result, created_at) VALUES ('r1', '{}', ?)`, old); err != nil {
		t.Fatal(err)
	}

	events, reports, err := d.PruneJournal(24 * time.Hour)
	if err != nil {
		t.Fatalf("PruneJournal() failed: %v", err)
	}
	if events != 1 || reports != 1 {
		t.Errorf("pruned events=%d reports=%d, want 1 and 1", events, reports)
	}

	var left int
	if err := d.QueryRow("SELECT count(*) FROM geofence_events").Scan(&left); err != nil {
		t.Fatal(err)
	}
	if left != 1 {
		t.Errorf("expected 1 event left, got %d", left)
	}
}
