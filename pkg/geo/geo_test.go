package geo

import (
	"errors"
	"math"
	"testing"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		p1   Point
		p2   Point
		want float64
	}{
		{
			name: "Same Point",
			p1:   Point{Lat: 0, Lon: 0},
			p2:   Point{Lat: 0, Lon: 0},
			want: 0,
		},
		{
			name: "London to Paris",
			p1:   Point{Lat: 51.5074, Lon: -0.1278},
			p2:   Point{Lat: 48.8566, Lon: 2.3522},
			want: 344000, // Approx 344km
		},
		{
			name: "Equator 1 degree",
			p1:   Point{Lat: 0, Lon: 0},
			p2:   Point{Lat: 0, Lon: 1},
			want: 111195, // Approx 111km
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distance(tt.p1, tt.p2)
			// Allow 1% margin of error due to float precision/earth radius var
			margin := tt.want * 0.01
			if tt.want == 0 && got != 0 {
				t.Errorf("Distance() = %v, want exactly 0", got)
			}
			if math.Abs(got-tt.want) > margin && tt.want != 0 {
				t.Errorf("Distance() = %v, want %v (+/- %v)", got, tt.want, margin)
			}
		})
	}
}

func TestDistance_RiyadhJeddah(t *testing.T) {
	riyadh := Point{Lat: 24.7136, Lon: 46.6753}
	jeddah := Point{Lat: 21.4858, Lon: 39.1925}

	got := Distance(riyadh, jeddah)
	if got < 840000 || got > 870000 {
		t.Errorf("Distance(Riyadh, Jeddah) = %.0f, want within [840000, 870000]", got)
	}
}

func TestDistance_Symmetric(t *testing.T) {
	points := []Point{
		{Lat: 24.7136, Lon: 46.6753},
		{Lat: -33.8688, Lon: 151.2093},
		{Lat: 89.9, Lon: -179.9},
		{Lat: 0, Lon: 0},
		{Lat: 40.7128, Lon: -74.0060},
	}
	for _, a := range points {
		if d := Distance(a, a); d != 0 {
			t.Errorf("Distance(%v, %v) = %v, want 0", a, a, d)
		}
		for _, b := range points {
			if Distance(a, b) != Distance(b, a) {
				t.Errorf("Distance not symmetric for %v, %v", a, b)
			}
		}
	}
}

func TestBearing(t *testing.T) {
	origin := Point{Lat: 10, Lon: 20}
	tests := []struct {
		name string
		to   Point
		want float64
	}{
		{"North", Point{Lat: 11, Lon: 20}, 0},
		{"East", Point{Lat: 10, Lon: 21}, 90},
		{"South", Point{Lat: 9, Lon: 20}, 180},
		{"West", Point{Lat: 10, Lon: 19}, 270},
		{"Same", origin, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Bearing(origin, tt.to)
			if got < 0 || got >= 360 {
				t.Fatalf("Bearing() = %v, outside [0,360)", got)
			}
			diff := math.Abs(NormalizeAngle(got - tt.want))
			if diff > 0.5 {
				t.Errorf("Bearing() = %v, want approx %v", got, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	angles := []struct {
		in, bearing, angle float64
	}{
		{0, 0, 0},
		{360, 0, 0},
		{-90, 270, -90},
		{540, 180, 180},
		{-180, 180, 180},
		{725, 5, 5},
	}
	for _, a := range angles {
		if got := NormalizeBearing(a.in); math.Abs(got-a.bearing) > 1e-9 {
			t.Errorf("NormalizeBearing(%v) = %v, want %v", a.in, got, a.bearing)
		}
		if got := NormalizeAngle(a.in); math.Abs(got-a.angle) > 1e-9 {
			t.Errorf("NormalizeAngle(%v) = %v, want %v", a.in, got, a.angle)
		}
	}
}

func TestDestinationPoint_RoundTrip(t *testing.T) {
	start := Point{Lat: 24.7136, Lon: 46.6753}
	dest := DestinationPoint(start, 60000, 45)

	if d := Distance(start, dest); math.Abs(d-60000) > 1 {
		t.Errorf("Distance to destination = %v, want 60000", d)
	}
	if b := Bearing(start, dest); math.Abs(b-45) > 0.5 {
		t.Errorf("Bearing to destination = %v, want 45", b)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		p       Point
		wantErr bool
		field   string
	}{
		{"Valid", Point{Lat: 24.7, Lon: 46.6}, false, ""},
		{"Bounds", Point{Lat: -90, Lon: 180}, false, ""},
		{"LatTooHigh", Point{Lat: 90.1, Lon: 0}, true, "lat"},
		{"LonTooLow", Point{Lat: 0, Lon: -180.5}, true, "lng"},
		{"NaN", Point{Lat: math.NaN(), Lon: 0}, true, "lat"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				return
			}
			if !errors.Is(err, ErrInvalidCoordinate) {
				t.Errorf("expected ErrInvalidCoordinate, got %v", err)
			}
			var ce *InvalidCoordinateError
			if !errors.As(err, &ce) || ce.Field != tt.field {
				t.Errorf("expected field %q, got %+v", tt.field, ce)
			}
		})
	}
}

func TestValidateAll_WrapsIndex(t *testing.T) {
	err := ValidateAll([]Point{{Lat: 1, Lon: 1}, {Lat: 100, Lon: 1}})
	if !errors.Is(err, ErrInvalidCoordinate) {
		t.Fatalf("expected ErrInvalidCoordinate, got %v", err)
	}
	if got := err.Error(); got != "point 1: invalid coordinate: lat=100 out of range" {
		t.Errorf("unexpected message %q", got)
	}
}

func TestFormat(t *testing.T) {
	if got := FormatPoint(Point{Lat: 24.7136, Lon: 46.6753}); got != "24.713600, 46.675300" {
		t.Errorf("FormatPoint() = %q", got)
	}
	if got := FormatDistance(850); got != "850 m" {
		t.Errorf("FormatDistance(850) = %q", got)
	}
	if got := FormatDistance(12345); got != "12.3 km" {
		t.Errorf("FormatDistance(12345) = %q", got)
	}
}
