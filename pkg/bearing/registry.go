package bearing

import (
	"sync"
)

// Registry is an arena of filter states indexed by entity id.
// Each id owns an independent State; ids are never pooled or shared.
type Registry struct {
	mu     sync.RWMutex
	filter Stabilizer
	states map[string]State
}

// NewRegistry creates a registry that smooths every entity with the given filter.
func NewRegistry(filter Stabilizer) *Registry {
	return &Registry{
		filter: filter,
		states: make(map[string]State),
	}
}

// Step advances the filter for id and returns the bearing to display.
func (r *Registry) Step(id string, raw float64) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	next, out := r.filter.Step(r.states[id], raw)
	r.states[id] = next
	return out
}

// Hold returns the last emitted bearing for id without changing it.
func (r *Registry) Hold(id string) (float64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.states[id].Heading()
}

// Get returns a copy of the state for id.
func (r *Registry) Get(id string) (State, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.states[id]
	return s, ok
}

// Reset clears the heading history for id.
func (r *Registry) Reset(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states[id] = Reset()
}

// Remove forgets id entirely.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.states, id)
}

// SetFilter swaps the tuning used for subsequent steps. Existing states are kept.
func (r *Registry) SetFilter(f Stabilizer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.filter = f
}

// Len returns the number of tracked entities.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.states)
}
