// Package tracker keeps live per-entity state for pushed position samples:
// a rolling ground-track window, a stabilized heading and geofence membership.
package tracker

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"geotrail/pkg/bearing"
	"geotrail/pkg/geo"
	"geotrail/pkg/geofence"
)

// DefaultWindow is the number of samples used to derive the ground track.
const DefaultWindow = 3

// Tracker is an arena of live entities keyed by id.
type Tracker struct {
	mu       sync.RWMutex
	entities map[string]*entity

	window   int
	headings *bearing.Registry
	fences   *geofence.Monitor
	now      func() time.Time
}

// entity holds one vehicle's live state. Counters are accessed atomically.
type entity struct {
	mu        sync.Mutex
	track     *geo.TrackBuffer
	last      geo.Point
	heading   float64
	hasFix    bool
	updatedAt time.Time

	Samples int64
	Errors  int64
}

// Update is the outcome of one pushed sample.
type Update struct {
	EntityID     string           `json:"entity_id"`
	Position     geo.Point        `json:"position"`
	Heading      float64          `json:"heading"`
	HeadingValid bool             `json:"heading_valid"`
	Events       []geofence.Event `json:"events"`
}

// Stats is a snapshot of one entity.
type Stats struct {
	EntityID     string    `json:"entity_id"`
	Position     geo.Point `json:"position"`
	Heading      float64   `json:"heading"`
	HasFix       bool      `json:"has_fix"`
	UpdatedAt    time.Time `json:"updated_at"`
	Samples      int64     `json:"samples"`
	Errors       int64     `json:"errors"`
	InsideFences []string  `json:"inside_fences,omitempty"`
}

// New creates a Tracker. fences may be nil to skip geofence evaluation.
func New(headings *bearing.Registry, fences *geofence.Monitor, window int) *Tracker {
	if headings == nil {
		headings = bearing.NewRegistry(bearing.Default())
	}
	if window < 2 {
		window = DefaultWindow
	}
	return &Tracker{
		entities: make(map[string]*entity),
		window:   window,
		headings: headings,
		fences:   fences,
		now:      time.Now,
	}
}

// getEntity returns the state for id, creating it if needed.
func (t *Tracker) getEntity(id string) *entity {
	t.mu.RLock()
	e, ok := t.entities[id]
	t.mu.RUnlock()
	if ok {
		return e
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	// Double check
	if e, ok = t.entities[id]; ok {
		return e
	}
	e = &entity{track: geo.NewTrackBuffer(t.window)}
	t.entities[id] = e
	return e
}

// Push records a live sample for id and returns the stabilized heading and
// any geofence transitions it caused.
func (t *Tracker) Push(id string, p geo.Point) (Update, error) {
	if err := p.Validate(); err != nil {
		return Update{}, err
	}

	e := t.getEntity(id)
	atomic.AddInt64(&e.Samples, 1)

	e.mu.Lock()
	u := Update{EntityID: id, Position: p}
	if raw, ok := e.track.Push(p); ok {
		u.Heading = t.headings.Step(id, raw)
		u.HeadingValid = true
	} else {
		u.Heading, u.HeadingValid = t.headings.Hold(id)
	}
	e.last = p
	e.hasFix = true
	e.heading = u.Heading
	e.updatedAt = t.now()
	e.mu.Unlock()

	if t.fences != nil {
		events, err := t.fences.Evaluate(id, p)
		if err != nil {
			return u, err
		}
		u.Events = events
	}
	if u.Events == nil {
		u.Events = []geofence.Event{}
	}
	return u, nil
}

// ReportError counts a failure from the position source. The entity keeps its last fix.
func (t *Tracker) ReportError(id string, perr *geofence.PositionError) {
	e := t.getEntity(id)
	atomic.AddInt64(&e.Errors, 1)
	slog.Warn("Tracker: position source error", "entity", id, "code", perr.Code, "message", perr.Message)
}

// Get returns a snapshot of one entity.
func (t *Tracker) Get(id string) (Stats, bool) {
	t.mu.RLock()
	e, ok := t.entities[id]
	t.mu.RUnlock()
	if !ok {
		return Stats{}, false
	}
	return t.stats(id, e), true
}

// Snapshot returns a copy of every entity's state.
func (t *Tracker) Snapshot() map[string]Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	result := make(map[string]Stats, len(t.entities))
	for id, e := range t.entities {
		result[id] = t.stats(id, e)
	}
	return result
}

func (t *Tracker) stats(id string, e *entity) Stats {
	e.mu.Lock()
	s := Stats{
		EntityID:  id,
		Position:  e.last,
		Heading:   e.heading,
		HasFix:    e.hasFix,
		UpdatedAt: e.updatedAt,
		Samples:   atomic.LoadInt64(&e.Samples),
		Errors:    atomic.LoadInt64(&e.Errors),
	}
	e.mu.Unlock()

	if t.fences != nil {
		s.InsideFences = t.fences.Inside(id)
	}
	return s
}

// Remove forgets id along with its heading and geofence history.
func (t *Tracker) Remove(id string) bool {
	t.mu.Lock()
	_, ok := t.entities[id]
	delete(t.entities, id)
	t.mu.Unlock()

	t.headings.Remove(id)
	if t.fences != nil {
		t.fences.Forget(id)
	}
	return ok
}

// Len returns the number of tracked entities.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entities)
}
