package config

import (
	"encoding/json"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{"150ms", 150 * time.Millisecond, false},
		{"10s", 10 * time.Second, false},
		{"1.5h", 90 * time.Minute, false},
		{"1d", 24 * time.Hour, false},
		{"1w", 168 * time.Hour, false},
		{"2d2h", 50 * time.Hour, false},
		{"1.5d", 36 * time.Hour, false},
		{"-1d", -24 * time.Hour, false},
		{"1d30m", 24*time.Hour + 30*time.Minute, false},
		{"", 0, false},
		{"invalid", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseDuration(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDuration(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.expected {
			t.Errorf("ParseDuration(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestParseDistance(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
		wantErr  bool
	}{
		{"100m", 100, false},
		{"50km", 50000, false},
		{"1nm", 1852, false},
		{"10ft", 3.048, false},
		{"2mi", 3218.688, false},
		{"500", 500, false},
		{"10x", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseDistance(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDistance(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.expected {
			t.Errorf("ParseDistance(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	type TestConfig struct {
		Tick   Duration `yaml:"tick"`
		Radius Distance `yaml:"radius"`
		Small  Distance `yaml:"small"`
		Bare   Distance `yaml:"bare"`
	}

	yamlData := `
tick: 150ms
radius: 50km
small: 75.5m
bare: 300
`
	var cfg TestConfig
	if err := yaml.Unmarshal([]byte(yamlData), &cfg); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if cfg.Tick.Std() != 150*time.Millisecond {
		t.Errorf("Expected 150ms, got %v", cfg.Tick.Std())
	}
	if cfg.Radius.Meters() != 50000 || cfg.Small != 75.5 || cfg.Bare != 300 {
		t.Errorf("Unexpected distances %+v", cfg)
	}

	out, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var again TestConfig
	if err := yaml.Unmarshal(out, &again); err != nil {
		t.Fatalf("Unmarshal of marshaled output failed: %v\n%s", err, out)
	}
	if again != cfg {
		t.Errorf("Round trip changed values: %+v -> %+v", cfg, again)
	}
}

func TestDurationJSON(t *testing.T) {
	var d Duration
	if err := json.Unmarshal([]byte(`"2s"`), &d); err != nil || d.Std() != 2*time.Second {
		t.Errorf("string form: %v %v", d.Std(), err)
	}
	if err := json.Unmarshal([]byte(`250`), &d); err != nil || d.Std() != 250*time.Millisecond {
		t.Errorf("millisecond form: %v %v", d.Std(), err)
	}
	b, _ := json.Marshal(Duration(time.Second))
	if string(b) != `"1s"` {
		t.Errorf("MarshalJSON = %s", b)
	}
}
