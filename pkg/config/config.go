package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment overrides, applied after the file is read.
const (
	EnvAddr     = "GEOTRAIL_ADDR"
	EnvDBPath   = "GEOTRAIL_DB_PATH"
	EnvLogLevel = "GEOTRAIL_LOG_LEVEL"
)

// Config holds the application configuration.
type Config struct {
	Log      LogConfig      `yaml:"log"`
	DB       DBConfig       `yaml:"db"`
	Server   ServerConfig   `yaml:"server"`
	Playback PlaybackConfig `yaml:"playback"`
	Bearing  BearingConfig  `yaml:"bearing"`
	Geofence GeofenceConfig `yaml:"geofence"`
	Route    RouteConfig    `yaml:"route"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Server   LogSettings `yaml:"server"`
	Requests LogSettings `yaml:"requests"`
	Events   LogSettings `yaml:"events"`
	// Trace enables per-tick debug records.
	Trace bool `yaml:"trace"`
}

// LogSettings holds settings for a specific log file.
type LogSettings struct {
	Path  string `yaml:"path" validate:"required"`
	Level string `yaml:"level" validate:"omitempty,oneof=DEBUG INFO WARN ERROR debug info warn error"`
}

// DBConfig holds database settings.
type DBConfig struct {
	Path string `yaml:"path" validate:"required"`
	// Retention prunes journal rows older than this at startup. Zero keeps everything.
	Retention Duration `yaml:"retention" validate:"gte=0"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address         string   `yaml:"address" validate:"required"`
	MaxConnections  int      `yaml:"max_connections" validate:"gte=0"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout" validate:"gte=0"`
	StreamBuffer    int      `yaml:"stream_buffer" validate:"gte=1"`
}

// PlaybackConfig holds the default playback tuning.
type PlaybackConfig struct {
	TickInterval     Duration `yaml:"tick_interval" validate:"gt=0"`
	PointsPerSegment int      `yaml:"points_per_segment" validate:"gte=1"`
	Mode             string   `yaml:"mode" validate:"oneof=oneShot pingPong"`
	LookAheadSteps   int      `yaml:"look_ahead_steps" validate:"gte=1"`
}

// BearingConfig holds the heading filter tuning.
type BearingConfig struct {
	DeadbandDegrees float64 `yaml:"deadband_degrees" validate:"gte=0,lt=180"`
	MaxStepDegrees  float64 `yaml:"max_step_degrees" validate:"gt=0,lte=180"`
	// TrackWindow is the number of live samples used to derive a heading.
	TrackWindow int `yaml:"track_window" validate:"gte=2"`
}

// GeofenceConfig holds the fences loaded at startup.
type GeofenceConfig struct {
	// ImportPath is an optional CSV of fences (ID,Name,Latitude,Longitude,Radius).
	ImportPath string        `yaml:"import_path"`
	Fences     []FenceConfig `yaml:"fences" validate:"dive"`
}

// FenceConfig describes one circular fence.
type FenceConfig struct {
	ID     string   `yaml:"id"`
	Name   string   `yaml:"name" validate:"required"`
	Lat    float64  `yaml:"lat" validate:"gte=-90,lte=90"`
	Lon    float64  `yaml:"lon" validate:"gte=-180,lte=180"`
	Radius Distance `yaml:"radius" validate:"gt=0"`
}

// RouteConfig holds route comparison tuning.
type RouteConfig struct {
	FuelRatePerKm   float64  `yaml:"fuel_rate_per_km" validate:"gte=0"`
	DeviationRecord Distance `yaml:"deviation_record" validate:"gte=0"`
	DeviationMedium Distance `yaml:"deviation_medium" validate:"gtfield=DeviationRecord"`
	DeviationHigh   Distance `yaml:"deviation_high" validate:"gtfield=DeviationMedium"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Server: LogSettings{
				Path:  "logs/server.log",
				Level: "INFO",
			},
			Requests: LogSettings{
				Path:  "logs/requests.log",
				Level: "INFO",
			},
			Events: LogSettings{
				Path:  "logs/events.log",
				Level: "INFO",
			},
		},
		DB: DBConfig{
			Path:      "data/geotrail.db",
			Retention: Duration(30 * Day),
		},
		Server: ServerConfig{
			Address:         "localhost:1940",
			MaxConnections:  256,
			ShutdownTimeout: Duration(5 * time.Second),
			StreamBuffer:    64,
		},
		Playback: PlaybackConfig{
			TickInterval:     Duration(150 * time.Millisecond),
			PointsPerSegment: 20,
			Mode:             "oneShot",
			LookAheadSteps:   12,
		},
		Bearing: BearingConfig{
			DeadbandDegrees: 5,
			MaxStepDegrees:  2,
			TrackWindow:     3,
		},
		Geofence: GeofenceConfig{
			Fences: []FenceConfig{},
		},
		Route: RouteConfig{
			FuelRatePerKm:   0.25,
			DeviationRecord: 50,
			DeviationMedium: 150,
			DeviationHigh:   300,
		},
	}
}

// Load loads the configuration from the given path.
// If the file does not exist, it creates it with default values.
// If the file exists, it merges defaults with existing values but does NOT save back to disk.
// A .env file next to the working directory is loaded first; GEOTRAIL_* variables
// then override the file without being written back.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := DefaultConfig()

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if err := Save(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to save config file: %w", err)
	}

	applyEnv(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvAddr); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv(EnvDBPath); v != "" {
		cfg.DB.Path = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Server.Level = strings.ToUpper(v)
	}
}

var validate = validator.New()

// Validate checks the configuration against its struct tags.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config: %s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Save writes the configuration to the path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# geotrail Configuration
# ---------------------
# Supported Units:
#   Duration: ns, us (or µs), ms, s, m, h, d (day), w (week)
#   Distance: m (meters), km (kilometers), nm (nautical miles), ft (feet)

`)
	data = append(header, data...)

	// Inject comments for enum fields
	reMode := regexp.MustCompile(`(?m)^(\s+)mode:`)
	data = reMode.ReplaceAll(data, []byte("${1}# Options: oneShot, pingPong\n${1}mode:"))

	reLevel := regexp.MustCompile(`(?m)^(\s+)level:`)
	data = reLevel.ReplaceAll(data, []byte("${1}# Options: DEBUG, INFO, WARN, ERROR\n${1}level:"))

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateDefault creates a default config file at the given path.
// Returns nil if the file already exists.
func GenerateDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return Save(path, DefaultConfig())
}
