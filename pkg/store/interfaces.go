package store

import (
	"context"
	"errors"
	"time"

	"geotrail/pkg/geofence"
	"geotrail/pkg/route"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// StateStore handles persistent application state.
type StateStore interface {
	GetState(ctx context.Context, key string) (string, bool)
	SetState(ctx context.Context, key, val string) error
	DeleteState(ctx context.Context, key string) error
	ListState(ctx context.Context) (map[string]string, error)
}

// GeofenceEventStore journals geofence transitions.
type GeofenceEventStore interface {
	SaveGeofenceEvent(ctx context.Context, ev *geofence.Event) error
	// ListGeofenceEvents returns the newest events first. An empty entityID lists all entities.
	ListGeofenceEvents(ctx context.Context, entityID string, limit int) ([]geofence.Event, error)
}

// Report is a stored route comparison.
type Report struct {
	ID        string                 `json:"id"`
	Label     string                 `json:"label,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
	Result    route.ComplianceResult `json:"result"`
}

// ReportStore persists route comparison results.
type ReportStore interface {
	SaveReport(ctx context.Context, r *Report) error
	GetReport(ctx context.Context, id string) (*Report, error)
	ListReports(ctx context.Context, limit int) ([]*Report, error)
}
