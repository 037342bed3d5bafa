package config

// Persistent state keys (Registry) for runtime tuning overrides.
const (
	KeyTickInterval     = "playback_tick_interval"
	KeyPointsPerSegment = "playback_points_per_segment"
	KeyPlaybackMode     = "playback_mode"
	KeyLookAheadSteps   = "playback_look_ahead_steps"
	KeyDeadband         = "bearing_deadband_degrees"
	KeyMaxStep          = "bearing_max_step_degrees"
	KeyFuelRate         = "route_fuel_rate_per_km"
)

// TuningKeys lists every key accepted by the tuning API.
var TuningKeys = []string{
	KeyTickInterval,
	KeyPointsPerSegment,
	KeyPlaybackMode,
	KeyLookAheadSteps,
	KeyDeadband,
	KeyMaxStep,
	KeyFuelRate,
}

// IsTuningKey reports whether key is a known tuning override.
func IsTuningKey(key string) bool {
	for _, k := range TuningKeys {
		if k == key {
			return true
		}
	}
	return false
}
