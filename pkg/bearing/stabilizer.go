// Package bearing smooths raw headings into a jitter-free display bearing.
//
// A Stabilizer holds only tuning; the evolving State is owned by the caller
// and threaded through Step, so two vehicles never share heading history.
package bearing

import (
	"math"

	"geotrail/pkg/geo"
)

const (
	// DefaultDeadband is the minimum heading change, in degrees, that the filter reacts to.
	DefaultDeadband = 5.0
	// DefaultMaxStep is the largest rotation, in degrees, applied per tick.
	DefaultMaxStep = 2.0
)

// State is the per-entity heading filter state. The zero value is the reset state.
type State struct {
	Current       *float64 `json:"current"`
	Target        *float64 `json:"target"`
	Transitioning bool     `json:"transitioning"`
}

// Initialized reports whether the state has seen its first bearing.
func (s State) Initialized() bool {
	return s.Current != nil
}

// Heading returns the current bearing, or 0 and false before initialization.
func (s State) Heading() (float64, bool) {
	if s.Current == nil {
		return 0, false
	}
	return *s.Current, true
}

// Stabilizer applies a deadband followed by a rate limit.
type Stabilizer struct {
	DeadbandDegrees       float64
	MaxStepDegreesPerTick float64
}

// Option customizes a Stabilizer.
type Option func(*Stabilizer)

// WithDeadband sets the deadband in degrees. Negative values are treated as 0.
func WithDeadband(deg float64) Option {
	return func(s *Stabilizer) { s.DeadbandDegrees = math.Max(deg, 0) }
}

// WithMaxStep sets the per-tick rotation limit in degrees. Non-positive values keep the default.
func WithMaxStep(deg float64) Option {
	return func(s *Stabilizer) {
		if deg > 0 {
			s.MaxStepDegreesPerTick = deg
		}
	}
}

// New returns a Stabilizer with defaults overridden by opts.
func New(opts ...Option) Stabilizer {
	s := Stabilizer{
		DeadbandDegrees:       DefaultDeadband,
		MaxStepDegreesPerTick: DefaultMaxStep,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Default returns a Stabilizer with a 5° deadband and a 2° per-tick step.
func Default() Stabilizer {
	return New()
}

// Step feeds one raw bearing through the filter and returns the new state and the bearing to display.
func (f Stabilizer) Step(state State, raw float64) (State, float64) {
	raw = geo.NormalizeBearing(raw)

	if state.Current == nil {
		return State{Current: ptr(raw), Target: ptr(raw)}, raw
	}

	current := *state.Current

	// Mid-turn, a raw bearing inside the deadband of the pending target keeps
	// the turn going toward that target.
	if state.Transitioning && state.Target != nil &&
		math.Abs(shortestDiff(*state.Target, raw)) < f.DeadbandDegrees {
		raw = *state.Target
	} else if math.Abs(shortestDiff(current, raw)) < f.DeadbandDegrees {
		return state, current
	}
	diff := shortestDiff(current, raw)

	maxStep := f.MaxStepDegreesPerTick
	if maxStep <= 0 {
		maxStep = DefaultMaxStep
	}

	next := State{Target: ptr(raw), Transitioning: true}
	if math.Abs(diff) <= maxStep {
		next.Current = ptr(raw)
		next.Transitioning = false
		return next, raw
	}

	moved := geo.NormalizeBearing(current + math.Copysign(maxStep, diff))
	next.Current = ptr(moved)
	return next, moved
}

// Hold re-emits the current bearing for a tick whose raw bearing is undefined
// (zero-length segment). The state is returned unchanged.
func (f Stabilizer) Hold(state State) (State, float64, bool) {
	h, ok := state.Heading()
	return state, h, ok
}

// Reset returns the initial state. Call it whenever playback restarts or switches path.
func Reset() State {
	return State{}
}

// shortestDiff returns the signed shortest rotation from current to target in (-180, 180].
func shortestDiff(current, target float64) float64 {
	d := math.Mod(target-current+540, 360)
	if d < 0 {
		d += 360
	}
	d -= 180
	if d == -180 {
		d = 180
	}
	return d
}

func ptr(v float64) *float64 {
	return &v
}
