package geofence

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"geotrail/pkg/geo"
)

// Event is an enter or exit of one entity against one fence.
type Event struct {
	EntityID   string     `json:"entity_id"`
	FenceID    string     `json:"fence_id"`
	FenceName  string     `json:"fence_name"`
	Transition Transition `json:"transition"`
	Point      geo.Point  `json:"point"`
	Timestamp  time.Time  `json:"timestamp"`
}

// EventSink receives transitions as they happen.
type EventSink interface {
	OnGeofenceTransition(ev Event)
}

// EventSinkFunc adapts a function to EventSink.
type EventSinkFunc func(ev Event)

func (f EventSinkFunc) OnGeofenceTransition(ev Event) { f(ev) }

// Monitor evaluates live samples of many entities against a shared set of
// fences. Each entity keeps its own Inside flag per fence.
type Monitor struct {
	mu     sync.RWMutex
	fences []Geofence
	states map[string]map[string]bool // entity id -> fence id -> inside
	sink   EventSink
	now    func() time.Time
}

// NewMonitor creates a monitor. sink may be nil.
func NewMonitor(sink EventSink) *Monitor {
	return &Monitor{
		states: make(map[string]map[string]bool),
		sink:   sink,
		now:    time.Now,
	}
}

// Add registers a fence, assigning an id when empty. A fence with an existing
// id replaces it and resets every entity's flag for it.
func (m *Monitor) Add(g Geofence) (Geofence, error) {
	if err := g.Validate(); err != nil {
		return Geofence{}, err
	}
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	g.Inside = false
	if g.Boundary != nil {
		g.Boundary = append([]geo.Point(nil), g.Boundary...)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.fences {
		if m.fences[i].ID == g.ID {
			m.fences[i] = g
			for _, fs := range m.states {
				delete(fs, g.ID)
			}
			return g, nil
		}
	}
	m.fences = append(m.fences, g)
	slog.Debug("Geofence: fence added", "id", g.ID, "name", g.Name, "polygon", g.IsPolygon())
	return g, nil
}

// Remove deletes a fence by id.
func (m *Monitor) Remove(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.fences {
		if m.fences[i].ID == id {
			m.fences = append(m.fences[:i], m.fences[i+1:]...)
			for _, fs := range m.states {
				delete(fs, id)
			}
			return true
		}
	}
	return false
}

// Fences returns a copy of the registered fences. Inside is always false
// because containment is tracked per entity.
func (m *Monitor) Fences() []Geofence {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Geofence, len(m.fences))
	copy(out, m.fences)
	return out
}

// Evaluate feeds a sample for entityID and returns the resulting transitions,
// also forwarding them to the sink.
func (m *Monitor) Evaluate(entityID string, p geo.Point) ([]Event, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	fs := m.states[entityID]
	if fs == nil {
		fs = make(map[string]bool)
		m.states[entityID] = fs
	}

	var events []Event
	now := m.now()
	for _, f := range m.fences {
		f.Inside = fs[f.ID]
		next, t := Update(f, p)
		fs[f.ID] = next.Inside
		if t == None {
			continue
		}
		events = append(events, Event{
			EntityID:   entityID,
			FenceID:    f.ID,
			FenceName:  f.Name,
			Transition: t,
			Point:      p,
			Timestamp:  now,
		})
	}
	sink := m.sink
	m.mu.Unlock()

	for _, ev := range events {
		slog.Info("Geofence: transition", "entity", ev.EntityID, "fence", ev.FenceName, "transition", ev.Transition)
		if sink != nil {
			sink.OnGeofenceTransition(ev)
		}
	}
	return events, nil
}

// Inside returns the ids of the fences entityID is currently inside.
func (m *Monitor) Inside(entityID string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var ids []string
	for _, f := range m.fences {
		if m.states[entityID][f.ID] {
			ids = append(ids, f.ID)
		}
	}
	return ids
}

// Forget drops all state for entityID.
func (m *Monitor) Forget(entityID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, entityID)
}
