package bearing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStep_FirstBearingInitializes(t *testing.T) {
	f := Default()
	s, out := f.Step(Reset(), 370)

	require.True(t, s.Initialized())
	assert.Equal(t, 10.0, out)
	assert.Equal(t, 10.0, *s.Current)
	assert.Equal(t, 10.0, *s.Target)
	assert.False(t, s.Transitioning)
}

func TestStep_Convergence(t *testing.T) {
	tests := []struct {
		name    string
		start   float64
		target  float64
		maxStep float64
	}{
		{"Quarter Turn", 0, 90, 2},
		{"Wrap Clockwise", 350, 20, 2},
		{"Wrap Counter Clockwise", 10, 300, 2},
		{"Reversal", 0, 180, 2},
		{"Coarse Step", 45, 225, 7},
		{"Fractional Step", 0, 179, 0.75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New(WithMaxStep(tt.maxStep))
			s, _ := f.Step(Reset(), tt.start)

			limit := int(math.Ceil(180 / tt.maxStep))
			var out float64
			converged := -1
			for i := 1; i <= limit+20; i++ {
				s, out = f.Step(s, tt.target)
				if converged < 0 && out == tt.target {
					converged = i
				}
				if converged > 0 {
					// Stays fixed once reached.
					assert.Equal(t, tt.target, out, "tick %d drifted", i)
					assert.False(t, s.Transitioning)
				}
			}
			require.Positive(t, converged, "never converged")
			assert.LessOrEqual(t, converged, limit)
		})
	}
}

func TestStep_MonotonicShortestWay(t *testing.T) {
	f := Default()
	s, _ := f.Step(Reset(), 350)

	prev := 350.0
	for i := 0; i < 20; i++ {
		var out float64
		s, out = f.Step(s, 20)
		delta := math.Mod(out-prev+540, 360) - 180
		assert.GreaterOrEqual(t, delta, 0.0, "rotated the long way at tick %d", i)
		assert.LessOrEqual(t, delta, f.MaxStepDegreesPerTick+1e-9)
		assert.True(t, out >= 0 && out < 360)
		prev = out
	}
	assert.Equal(t, 20.0, prev)
}

func TestStep_DeadbandNoJitter(t *testing.T) {
	f := Default()
	s, first := f.Step(Reset(), 90)

	noisy := []float64{91, 89.5, 94.9, 85.1, 90, 92.3, 87.7, 93}
	for _, raw := range noisy {
		var out float64
		s, out = f.Step(s, raw)
		if out != first {
			t.Fatalf("emitted %v for raw %v, want unchanged %v", out, raw, first)
		}
	}
	assert.False(t, s.Transitioning)
}

func TestStep_DeadbandAcrossNorth(t *testing.T) {
	f := Default()
	s, _ := f.Step(Reset(), 358)
	_, out := f.Step(s, 2)
	assert.Equal(t, 358.0, out)
}

func TestStep_NoiseDuringTurnKeepsTurning(t *testing.T) {
	f := Default()
	s, _ := f.Step(Reset(), 0)

	// Noisy samples around 90 while the turn is underway.
	for i := 0; i < 60; i++ {
		raw := 90.0
		if i%2 == 0 {
			raw = 88
		}
		s, _ = f.Step(s, raw)
	}
	h, ok := s.Heading()
	require.True(t, ok)
	assert.InDelta(t, 89, h, 1.01)
}

func TestHold(t *testing.T) {
	f := Default()
	_, _, ok := f.Hold(Reset())
	assert.False(t, ok)

	s, _ := f.Step(Reset(), 42)
	held, out, ok := f.Hold(s)
	assert.True(t, ok)
	assert.Equal(t, 42.0, out)
	assert.Equal(t, s, held)
}

func TestOptions(t *testing.T) {
	f := New(WithDeadband(-1), WithMaxStep(0))
	assert.Equal(t, 0.0, f.DeadbandDegrees)
	assert.Equal(t, DefaultMaxStep, f.MaxStepDegreesPerTick)

	f = New(WithDeadband(10), WithMaxStep(3))
	assert.Equal(t, 10.0, f.DeadbandDegrees)
	assert.Equal(t, 3.0, f.MaxStepDegreesPerTick)
}

func TestShortestDiff(t *testing.T) {
	tests := []struct{ a, b, want float64 }{
		{0, 90, 90},
		{90, 0, -90},
		{350, 10, 20},
		{10, 350, -20},
		{0, 180, 180},
		{180, 0, 180},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, shortestDiff(tt.a, tt.b), 1e-9, "shortestDiff(%v, %v)", tt.a, tt.b)
	}
}
