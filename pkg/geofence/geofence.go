// Package geofence detects when a moving point enters or leaves a zone.
//
// Transitions are edge-triggered: a point that stays inside (or outside)
// produces no events, however often it is sampled.
package geofence

import (
	"fmt"

	"geotrail/pkg/geo"
)

// Transition is the result of re-evaluating a fence against a new point.
type Transition string

const (
	None    Transition = "none"
	Entered Transition = "entered"
	Exited  Transition = "exited"
)

// Geofence is a circular zone around Center, or a polygon when Boundary has
// three or more vertices. Inside is the last known containment flag.
type Geofence struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Center       geo.Point   `json:"center"`
	RadiusMeters float64     `json:"radius_meters"`
	Boundary     []geo.Point `json:"boundary,omitempty"`
	Inside       bool        `json:"inside"`
}

// IsPolygon reports whether containment uses Boundary instead of the radius.
func (g Geofence) IsPolygon() bool {
	return len(g.Boundary) >= 3
}

// Validate checks that the fence has a usable shape and valid coordinates.
func (g Geofence) Validate() error {
	if g.IsPolygon() {
		if err := geo.ValidateAll(g.Boundary); err != nil {
			return fmt.Errorf("%w: boundary: %w", ErrInvalidGeofence, err)
		}
		return nil
	}
	if len(g.Boundary) > 0 {
		return fmt.Errorf("%w: boundary needs at least 3 vertices, got %d", ErrInvalidGeofence, len(g.Boundary))
	}
	if err := g.Center.Validate(); err != nil {
		return fmt.Errorf("%w: center: %w", ErrInvalidGeofence, err)
	}
	if g.RadiusMeters <= 0 {
		return fmt.Errorf("%w: radius must be positive, got %v", ErrInvalidGeofence, g.RadiusMeters)
	}
	return nil
}

// Contains reports whether p lies in the zone. The circle boundary counts as inside.
func (g Geofence) Contains(p geo.Point) bool {
	if g.IsPolygon() {
		return geo.RingContains(g.Boundary, p)
	}
	return geo.Distance(g.Center, p) <= g.RadiusMeters
}

// Update evaluates p against the fence and returns the fence with its Inside
// flag refreshed, plus the transition relative to the previous flag.
func Update(g Geofence, p geo.Point) (Geofence, Transition) {
	inside := g.Contains(p)

	t := None
	switch {
	case inside && !g.Inside:
		t = Entered
	case !inside && g.Inside:
		t = Exited
	}

	g.Inside = inside
	return g, t
}
