package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"geotrail/pkg/config"
	"geotrail/pkg/geo"
	"geotrail/pkg/geofence"
)

func TestRun(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	tempConfig := `
server:
    address: localhost:0  # 0 lets OS choose free port
    max_connections: 8
log:
    server:
        path: "logs/test_server.log"
        level: "debug"
    requests:
        path: "logs/test_requests.log"
        level: "info"
    events:
        path: "logs/test_events.log"
        level: "info"
db:
    path: "data/test.db"
geofence:
    fences:
        - name: depot
          lat: 24.7136
          lon: 46.6753
          radius: 2km
`
	configPath := filepath.Join(dir, "geotrail.yaml")
	if err := os.WriteFile(configPath, []byte(tempConfig), 0o644); err != nil {
		t.Fatalf("Failed to write temp config: %v", err)
	}

	// Cancel quickly to verify the startup sequence
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	if err := run(ctx, configPath); err != nil {
		t.Fatalf("run() failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "data", "test.db")); err != nil {
		t.Errorf("database not created: %v", err)
	}
}

func TestRun_BadConfig(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	configPath := filepath.Join(dir, "geotrail.yaml")
	if err := os.WriteFile(configPath, []byte("playback:\n  mode: sideways\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := run(context.Background(), configPath); err == nil {
		t.Fatal("expected run() to reject an invalid config")
	}
}

func TestNewMonitor_JournalsTransitions(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DB.Path = filepath.Join(t.TempDir(), "journal.db")

	_, st, err := initDB(cfg)
	if err != nil {
		t.Fatalf("initDB: %v", err)
	}
	defer st.Close()

	mon := newMonitor(st)
	if err := loadFences(mon, []config.FenceConfig{
		{ID: "depot", Name: "depot", Lat: 24.7136, Lon: 46.6753, Radius: config.Distance(2000)},
	}); err != nil {
		t.Fatalf("loadFences: %v", err)
	}

	if _, err := mon.Evaluate("truck-7", geo.Point{Lat: 25.5, Lon: 46.6753}); err != nil {
		t.Fatal(err)
	}
	if _, err := mon.Evaluate("truck-7", geo.Point{Lat: 24.7136, Lon: 46.6753}); err != nil {
		t.Fatal(err)
	}

	events, err := st.ListGeofenceEvents(context.Background(), "truck-7", 10)
	if err != nil {
		t.Fatalf("ListGeofenceEvents: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 journaled event, got %d: %+v", len(events), events)
	}
	if events[0].FenceID != "depot" || events[0].Transition != geofence.Entered {
		t.Errorf("unexpected event %+v", events[0])
	}
}

func TestGeofenceLogEvent(t *testing.T) {
	ts := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	ev := geofenceLogEvent(geofence.Event{
		EntityID:   "truck-7",
		FenceID:    "f1",
		FenceName:  "depot",
		Transition: geofence.Entered,
		Point:      geo.Point{Lat: 24.7, Lon: 46.6},
		Timestamp:  ts,
	})

	if ev.Type != "geofence" || !ev.Timestamp.Equal(ts) {
		t.Errorf("unexpected event %+v", ev)
	}
	if !strings.Contains(ev.Title, "truck-7 entered depot") {
		t.Errorf("unexpected title %q", ev.Title)
	}
	if ev.Fields["fence_id"] != "f1" {
		t.Errorf("unexpected fields %v", ev.Fields)
	}
}
