package config

import (
	"context"
	"errors"
	"testing"
	"time"
)

// MockStateStore implements store.StateStore for testing.
type MockStateStore struct {
	data map[string]string
}

func NewMockStateStore() *MockStateStore {
	return &MockStateStore{data: make(map[string]string)}
}

func (m *MockStateStore) GetState(ctx context.Context, key string) (string, bool) {
	val, ok := m.data[key]
	return val, ok
}

func (m *MockStateStore) SetState(ctx context.Context, key, val string) error {
	m.data[key] = val
	return nil
}

func (m *MockStateStore) DeleteState(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *MockStateStore) ListState(ctx context.Context) (map[string]string, error) {
	out := make(map[string]string, len(m.data))
	for k, v := range m.data {
		out[k] = v
	}
	return out, nil
}

func TestUnifiedProvider(t *testing.T) {
	ctx := context.Background()
	baseCfg := DefaultConfig()
	baseCfg.Playback.TickInterval = Duration(100 * time.Millisecond)
	baseCfg.Playback.PointsPerSegment = 10
	baseCfg.Bearing.DeadbandDegrees = 4

	store := NewMockStateStore()
	p := NewProvider(baseCfg, store)

	t.Run("Defaults_And_Fallbacks", func(t *testing.T) {
		if p.TickInterval(ctx) != 100*time.Millisecond {
			t.Errorf("expected 100ms, got %v", p.TickInterval(ctx))
		}
		if p.PointsPerSegment(ctx) != 10 {
			t.Errorf("expected 10, got %d", p.PointsPerSegment(ctx))
		}
		if p.PlaybackMode(ctx) != "oneShot" {
			t.Errorf("expected oneShot, got %s", p.PlaybackMode(ctx))
		}
		if p.DeadbandDegrees(ctx) != 4 {
			t.Errorf("expected 4, got %v", p.DeadbandDegrees(ctx))
		}
		if p.MaxStepDegrees(ctx) != 2 {
			t.Errorf("expected 2, got %v", p.MaxStepDegrees(ctx))
		}
		if p.FuelRatePerKm(ctx) != 0.25 {
			t.Errorf("expected 0.25, got %v", p.FuelRatePerKm(ctx))
		}
		if p.AppConfig() != baseCfg {
			t.Error("AppConfig should return the base config")
		}
	})

	t.Run("Overrides", func(t *testing.T) {
		overrides := map[string]string{
			KeyTickInterval:     "250ms",
			KeyPointsPerSegment: "40",
			KeyPlaybackMode:     "pingPong",
			KeyLookAheadSteps:   "5",
			KeyDeadband:         "2.5",
			KeyMaxStep:          "6",
			KeyFuelRate:         "0.3",
		}
		for k, v := range overrides {
			if err := p.SetTuning(ctx, k, v); err != nil {
				t.Fatalf("SetTuning(%s) failed: %v", k, err)
			}
		}

		if p.TickInterval(ctx) != 250*time.Millisecond {
			t.Errorf("expected 250ms, got %v", p.TickInterval(ctx))
		}
		if p.LookAheadSteps(ctx) != 5 {
			t.Errorf("expected 5, got %d", p.LookAheadSteps(ctx))
		}
		if p.MaxStepDegrees(ctx) != 6 {
			t.Errorf("expected 6, got %v", p.MaxStepDegrees(ctx))
		}

		tuning := p.Tuning(ctx)
		for k, v := range overrides {
			if tuning[k] != v {
				t.Errorf("Tuning()[%s] = %q, want %q", k, tuning[k], v)
			}
		}

		if err := p.ResetTuning(ctx, KeyMaxStep); err != nil {
			t.Fatalf("ResetTuning failed: %v", err)
		}
		if p.MaxStepDegrees(ctx) != 2 {
			t.Errorf("expected fallback 2 after reset, got %v", p.MaxStepDegrees(ctx))
		}
	})

	t.Run("Corrupt_Store_Value_Falls_Back", func(t *testing.T) {
		store.data[KeyPointsPerSegment] = "lots"
		if p.PointsPerSegment(ctx) != 10 {
			t.Errorf("expected fallback 10, got %d", p.PointsPerSegment(ctx))
		}
	})
}

func TestSetTuning_Validation(t *testing.T) {
	ctx := context.Background()
	p := NewProvider(DefaultConfig(), NewMockStateStore())

	tests := []struct {
		key, val string
		want     error
	}{
		{KeyTickInterval, "0s", ErrInvalidValue},
		{KeyTickInterval, "fast", ErrInvalidValue},
		{KeyPointsPerSegment, "0", ErrInvalidValue},
		{KeyPlaybackMode, "loop", ErrInvalidValue},
		{KeyDeadband, "-1", ErrInvalidValue},
		{KeyMaxStep, "0", ErrInvalidValue},
		{KeyFuelRate, "-0.1", ErrInvalidValue},
		{"colour", "red", ErrUnknownKey},
		{KeyDeadband, "0", nil},
	}
	for _, tt := range tests {
		err := p.SetTuning(ctx, tt.key, tt.val)
		if tt.want == nil {
			if err != nil {
				t.Errorf("SetTuning(%s=%s) unexpected error %v", tt.key, tt.val, err)
			}
			continue
		}
		if !errors.Is(err, tt.want) {
			t.Errorf("SetTuning(%s=%s) = %v, want %v", tt.key, tt.val, err, tt.want)
		}
	}

	if err := p.ResetTuning(ctx, "colour"); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("ResetTuning unknown key = %v", err)
	}
}

func TestProvider_NoStore(t *testing.T) {
	p := NewProvider(DefaultConfig(), nil)
	ctx := context.Background()

	if p.TickInterval(ctx) != 150*time.Millisecond {
		t.Errorf("expected default tick 150ms, got %v", p.TickInterval(ctx))
	}
	if err := p.SetTuning(ctx, KeyDeadband, "3"); err == nil {
		t.Error("expected SetTuning without a store to fail")
	}
}

func TestCheckTuning_DoesNotStore(t *testing.T) {
	ctx := context.Background()
	st := NewMockStateStore()
	p := NewProvider(DefaultConfig(), st)

	if err := CheckTuning(KeyPointsPerSegment, "5"); err != nil {
		t.Fatalf("CheckTuning: %v", err)
	}
	if err := CheckTuning(KeyDeadband, "999"); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("CheckTuning(deadband=999) = %v, want ErrInvalidValue", err)
	}
	if _, ok := st.GetState(ctx, KeyPointsPerSegment); ok {
		t.Error("CheckTuning must not write to the store")
	}
	if got := p.PointsPerSegment(ctx); got != DefaultConfig().Playback.PointsPerSegment {
		t.Errorf("PointsPerSegment = %d, want the static default", got)
	}
}
