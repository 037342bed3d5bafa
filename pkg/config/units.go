package config

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Calendar spans accepted by ParseDuration on top of the time package units.
const (
	Day  = 24 * time.Hour
	Week = 7 * Day
)

// Duration is a time.Duration that reads and writes as text ("150ms", "30d").
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d *Duration) set(s string) error {
	v, err := ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	return d.set(s)
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Std().String(), nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Std().String())
}

// UnmarshalJSON accepts a duration string or a bare number of milliseconds.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var ms float64
	if json.Unmarshal(b, &ms) == nil {
		*d = Duration(ms * float64(time.Millisecond))
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string or milliseconds: %w", err)
	}
	return d.set(s)
}

// ParseDuration is time.ParseDuration plus d (day) and w (week) components,
// which may be mixed with the standard ones ("2d2h"). Empty input is zero.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(expandCalendarUnits(s))
}

var calendarHours = map[string]float64{"d": 24, "w": 24 * 7}

// expandCalendarUnits rewrites every "<n>d" and "<n>w" component as hours.
// Everything else is copied so time.ParseDuration reports its own errors.
func expandCalendarUnits(s string) string {
	if !strings.ContainsAny(s, "dw") {
		return s
	}

	var out strings.Builder
	for len(s) > 0 {
		num := strings.IndexFunc(s, func(r rune) bool { return (r < '0' || r > '9') && r != '.' })
		if num < 0 {
			out.WriteString(s)
			break
		}
		unitEnd := strings.IndexFunc(s[num:], func(r rune) bool { return (r >= '0' && r <= '9') || r == '.' })
		if unitEnd < 0 {
			unitEnd = len(s) - num
		}
		number, unit := s[:num], s[num:num+unitEnd]
		s = s[num+unitEnd:]

		hours := calendarHours[unit]
		v, err := strconv.ParseFloat(number, 64)
		if hours == 0 || err != nil {
			out.WriteString(number + unit)
			continue
		}
		out.WriteString(strconv.FormatFloat(v*hours, 'f', -1, 64) + "h")
	}
	return out.String()
}

// Distance is a length in meters that reads as text ("2km", "500m") or a bare number.
type Distance float64

// Meters returns the value in meters.
func (d Distance) Meters() float64 { return float64(d) }

func (d *Distance) UnmarshalYAML(value *yaml.Node) error {
	var meters float64
	if value.Decode(&meters) == nil {
		*d = Distance(meters)
		return nil
	}
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	meters, err := ParseDistance(s)
	if err != nil {
		return err
	}
	*d = Distance(meters)
	return nil
}

// MarshalYAML writes whole kilometers as "Nkm" and anything else in meters.
func (d Distance) MarshalYAML() (interface{}, error) {
	m := float64(d)
	if km := m / 1000; km >= 1 && km == float64(int64(km)) {
		return fmt.Sprintf("%dkm", int64(km)), nil
	}
	return strconv.FormatFloat(m, 'f', -1, 64) + "m", nil
}

// distanceUnits is checked in order, so "m" must come after the two-letter suffixes.
var distanceUnits = []struct {
	suffix string
	meters float64
}{
	{"km", 1000},
	{"nm", 1852},
	{"mi", 1609.344},
	{"ft", 0.3048},
	{"m", 1},
}

// ParseDistance converts "50km", "300m", "1nm", "2mi" or "100ft" to meters.
// A bare number is meters and empty input is zero.
func ParseDistance(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	scale := 1.0
	for _, u := range distanceUnits {
		if n, ok := strings.CutSuffix(s, u.suffix); ok {
			s, scale = n, u.meters
			break
		}
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid distance number: %w", err)
	}
	return v * scale, nil
}
