package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"geotrail/pkg/db"
	"geotrail/pkg/geofence"
)

// Store defines the repository interface.
// It composes all sub-interfaces for full store access.
// Consumers should depend on specific sub-interfaces when possible.
type Store interface {
	StateStore
	GeofenceEventStore
	ReportStore
	geofence.EventSink

	// Close closes the store connection.
	Close() error
}

var _ Store = (*SQLiteStore)(nil)

// DefaultListLimit caps list queries when the caller passes a non-positive limit.
const DefaultListLimit = 100

// SQLiteStore implements Store.
type SQLiteStore struct {
	db *db.DB
}

// NewSQLiteStore creates a new store.
func NewSQLiteStore(db *db.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- State ---

func (s *SQLiteStore) GetState(ctx context.Context, key string) (string, bool) {
	var val string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM persistent_state WHERE key = ?", key).Scan(&val)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Warn("Store: failed to read state", "key", key, "error", err)
		}
		return "", false
	}
	return val, true
}

func (s *SQLiteStore) SetState(ctx context.Context, key, val string) error {
	query := `INSERT OR REPLACE INTO persistent_state (key, value, created_at) VALUES (?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query, key, val, time.Now())
	return err
}

func (s *SQLiteStore) DeleteState(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM persistent_state WHERE key = ?", key)
	return err
}

func (s *SQLiteStore) ListState(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM persistent_state")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k string
		var v sql.NullString
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v.String
	}
	return out, rows.Err()
}

// --- Geofence journal ---

func (s *SQLiteStore) SaveGeofenceEvent(ctx context.Context, ev *geofence.Event) error {
	ts := ev.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	query := `INSERT INTO geofence_events (entity_id, fence_id, fence_name, transition, lat, lon, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		ev.EntityID, ev.FenceID, ev.FenceName, string(ev.Transition),
		ev.Point.Lat, ev.Point.Lon, ts.UTC())
	return err
}

func (s *SQLiteStore) ListGeofenceEvents(ctx context.Context, entityID string, limit int) ([]geofence.Event, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	query := `SELECT entity_id, fence_id, fence_name, transition, lat, lon, occurred_at
		FROM geofence_events`
	args := []any{}
	if entityID != "" {
		query += ` WHERE entity_id = ?`
		args = append(args, entityID)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []geofence.Event{}
	for rows.Next() {
		var ev geofence.Event
		var name sql.NullString
		var transition string
		if err := rows.Scan(&ev.EntityID, &ev.FenceID, &name, &transition, &ev.Point.Lat, &ev.Point.Lon, &ev.Timestamp); err != nil {
			return nil, err
		}
		ev.FenceName = name.String
		ev.Transition = geofence.Transition(transition)
		events = append(events, ev)
	}
	return events, rows.Err()
}

// OnGeofenceTransition journals ev, making the store usable as a geofence.EventSink.
// Write failures are logged; transitions are never blocked on storage.
func (s *SQLiteStore) OnGeofenceTransition(ev geofence.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.SaveGeofenceEvent(ctx, &ev); err != nil {
		slog.Error("Store: failed to journal geofence event", "entity", ev.EntityID, "fence", ev.FenceID, "error", err)
	}
}

// --- Reports ---

func (s *SQLiteStore) SaveReport(ctx context.Context, r *Report) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(r.Result)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	query := `INSERT OR REPLACE INTO route_reports (id, label, compliance, result, created_at) VALUES (?, ?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, query, r.ID, r.Label, r.Result.CompliancePercentage, string(data), r.CreatedAt.UTC())
	return err
}

func (s *SQLiteStore) GetReport(ctx context.Context, id string) (*Report, error) {
	row := s.db.QueryRowContext(ctx, "SELECT id, label, result, created_at FROM route_reports WHERE id = ?", id)
	r, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("report %s: %w", id, ErrNotFound)
	}
	return r, err
}

func (s *SQLiteStore) ListReports(ctx context.Context, limit int) ([]*Report, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := s.db.QueryContext(ctx, "SELECT id, label, result, created_at FROM route_reports ORDER BY created_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reports := []*Report{}
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReport(sc scanner) (*Report, error) {
	var r Report
	var label sql.NullString
	var data string
	if err := sc.Scan(&r.ID, &label, &data, &r.CreatedAt); err != nil {
		return nil, err
	}
	r.Label = label.String
	if err := json.Unmarshal([]byte(data), &r.Result); err != nil {
		return nil, fmt.Errorf("failed to decode report %s: %w", r.ID, err)
	}
	return &r, nil
}
