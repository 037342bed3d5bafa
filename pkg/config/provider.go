package config

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"geotrail/pkg/store"
)

// Provider defines the interface for accessing unified configuration.
type Provider interface {
	// Playback
	TickInterval(ctx context.Context) time.Duration
	PointsPerSegment(ctx context.Context) int
	PlaybackMode(ctx context.Context) string
	LookAheadSteps(ctx context.Context) int

	// Bearing
	DeadbandDegrees(ctx context.Context) float64
	MaxStepDegrees(ctx context.Context) float64

	// Route
	FuelRatePerKm(ctx context.Context) float64

	// Tuning returns the effective value of every tuning key.
	Tuning(ctx context.Context) map[string]string
	// SetTuning validates and persists an override.
	SetTuning(ctx context.Context, key, val string) error
	// ResetTuning removes an override so the static config applies again.
	ResetTuning(ctx context.Context, key string) error

	// Raw access (for components that need deep access)
	AppConfig() *Config
}

// UnifiedProvider implements Provider by bridging static Config and persistent Store.
type UnifiedProvider struct {
	base  *Config
	store store.StateStore
}

// NewProvider creates a new UnifiedProvider. st may be nil, in which case only
// the static config is served and overrides cannot be set.
func NewProvider(base *Config, st store.StateStore) *UnifiedProvider {
	return &UnifiedProvider{
		base:  base,
		store: st,
	}
}

func (p *UnifiedProvider) AppConfig() *Config { return p.base }

// --- Implementations ---

func (p *UnifiedProvider) TickInterval(ctx context.Context) time.Duration {
	return p.getDuration(ctx, KeyTickInterval, p.base.Playback.TickInterval.Std())
}

func (p *UnifiedProvider) PointsPerSegment(ctx context.Context) int {
	return p.getInt(ctx, KeyPointsPerSegment, p.base.Playback.PointsPerSegment)
}

func (p *UnifiedProvider) PlaybackMode(ctx context.Context) string {
	return p.getString(ctx, KeyPlaybackMode, p.base.Playback.Mode)
}

func (p *UnifiedProvider) LookAheadSteps(ctx context.Context) int {
	return p.getInt(ctx, KeyLookAheadSteps, p.base.Playback.LookAheadSteps)
}

func (p *UnifiedProvider) DeadbandDegrees(ctx context.Context) float64 {
	return p.getFloat64(ctx, KeyDeadband, p.base.Bearing.DeadbandDegrees)
}

func (p *UnifiedProvider) MaxStepDegrees(ctx context.Context) float64 {
	return p.getFloat64(ctx, KeyMaxStep, p.base.Bearing.MaxStepDegrees)
}

func (p *UnifiedProvider) FuelRatePerKm(ctx context.Context) float64 {
	return p.getFloat64(ctx, KeyFuelRate, p.base.Route.FuelRatePerKm)
}

func (p *UnifiedProvider) Tuning(ctx context.Context) map[string]string {
	return map[string]string{
		KeyTickInterval:     p.TickInterval(ctx).String(),
		KeyPointsPerSegment: strconv.Itoa(p.PointsPerSegment(ctx)),
		KeyPlaybackMode:     p.PlaybackMode(ctx),
		KeyLookAheadSteps:   strconv.Itoa(p.LookAheadSteps(ctx)),
		KeyDeadband:         strconv.FormatFloat(p.DeadbandDegrees(ctx), 'f', -1, 64),
		KeyMaxStep:          strconv.FormatFloat(p.MaxStepDegrees(ctx), 'f', -1, 64),
		KeyFuelRate:         strconv.FormatFloat(p.FuelRatePerKm(ctx), 'f', -1, 64),
	}
}

func (p *UnifiedProvider) SetTuning(ctx context.Context, key, val string) error {
	if p.store == nil {
		return fmt.Errorf("tuning overrides need a state store")
	}
	if err := CheckTuning(key, val); err != nil {
		return err
	}
	return p.store.SetState(ctx, key, val)
}

func (p *UnifiedProvider) ResetTuning(ctx context.Context, key string) error {
	if !IsTuningKey(key) {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if p.store == nil {
		return nil
	}
	return p.store.DeleteState(ctx, key)
}

// CheckTuning validates an override without storing it. It applies the same
// bounds as the config struct tags and rejects unknown keys.
func CheckTuning(key, val string) error {
	bad := func(reason string) error {
		return fmt.Errorf("%w: %s=%q: %s", ErrInvalidValue, key, val, reason)
	}

	switch key {
	case KeyTickInterval:
		d, err := ParseDuration(val)
		if err != nil || d <= 0 {
			return bad("must be a positive duration")
		}
	case KeyPointsPerSegment, KeyLookAheadSteps:
		i, err := strconv.Atoi(val)
		if err != nil || i < 1 {
			return bad("must be an integer >= 1")
		}
	case KeyPlaybackMode:
		if val != "oneShot" && val != "pingPong" {
			return bad("must be oneShot or pingPong")
		}
	case KeyDeadband:
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || f < 0 || f >= 180 {
			return bad("must be in [0,180)")
		}
	case KeyMaxStep:
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || f <= 0 || f > 180 {
			return bad("must be in (0,180]")
		}
	case KeyFuelRate:
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || f < 0 {
			return bad("must be >= 0")
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return nil
}

// --- Helpers ---

func (p *UnifiedProvider) getString(ctx context.Context, key, fallback string) string {
	if p.store != nil {
		if val, ok := p.store.GetState(ctx, key); ok && val != "" {
			return val
		}
	}
	return fallback
}

func (p *UnifiedProvider) getInt(ctx context.Context, key string, fallback int) int {
	if p.store != nil {
		if val, ok := p.store.GetState(ctx, key); ok && val != "" {
			if i, err := strconv.Atoi(val); err == nil {
				return i
			}
		}
	}
	return fallback
}

func (p *UnifiedProvider) getFloat64(ctx context.Context, key string, fallback float64) float64 {
	if p.store != nil {
		if val, ok := p.store.GetState(ctx, key); ok && val != "" {
			if f, err := strconv.ParseFloat(val, 64); err == nil {
				return f
			}
		}
	}
	return fallback
}

func (p *UnifiedProvider) getDuration(ctx context.Context, key string, fallback time.Duration) time.Duration {
	if p.store != nil {
		if val, ok := p.store.GetState(ctx, key); ok && val != "" {
			if dur, err := ParseDuration(val); err == nil && dur > 0 {
				return dur
			}
		}
	}
	return fallback
}
