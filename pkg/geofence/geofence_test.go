package geofence

import (
	"errors"
	"testing"

	"geotrail/pkg/geo"
)

var riyadh = geo.Point{Lat: 24.7136, Lon: 46.6753}

func TestUpdate_ConcreteScenario(t *testing.T) {
	fence := Geofence{Center: riyadh, RadiusMeters: 50000}

	fence, tr := Update(fence, riyadh)
	if !fence.Inside || tr != Entered {
		t.Errorf("at center: inside=%v transition=%v, want true/entered", fence.Inside, tr)
	}

	far := geo.DestinationPoint(riyadh, 60000, 45)
	fence, tr = Update(fence, far)
	if fence.Inside || tr != Exited {
		t.Errorf("60 km away: inside=%v transition=%v, want false/exited", fence.Inside, tr)
	}
}

func TestUpdate_EdgeTriggered(t *testing.T) {
	fence := Geofence{Center: riyadh, RadiusMeters: 1000}

	// Walk from 5 km west straight through the center and out 5 km east.
	counts := map[Transition]int{}
	for d := -5000.0; d <= 5000; d += 37 {
		brg := 90.0
		if d < 0 {
			brg = 270
		}
		p := geo.DestinationPoint(riyadh, abs(d), brg)
		var tr Transition
		fence, tr = Update(fence, p)
		counts[tr]++
	}

	if counts[Entered] != 1 {
		t.Errorf("entered %d times, want 1", counts[Entered])
	}
	if counts[Exited] != 1 {
		t.Errorf("exited %d times, want 1", counts[Exited])
	}
}

func TestUpdate_NoEventsWhileStationary(t *testing.T) {
	tests := []struct {
		name  string
		point geo.Point
	}{
		{"inside", riyadh},
		{"outside", geo.DestinationPoint(riyadh, 2000, 180)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fence := Geofence{Center: riyadh, RadiusMeters: 1000}
			fence, _ = Update(fence, tt.point)
			for i := 0; i < 10; i++ {
				var tr Transition
				fence, tr = Update(fence, tt.point)
				if tr != None {
					t.Fatalf("sample %d: transition %v", i, tr)
				}
			}
		})
	}
}

func TestContains_BoundaryIsInside(t *testing.T) {
	fence := Geofence{Center: riyadh, RadiusMeters: 1000}
	edge := geo.DestinationPoint(riyadh, 999.999, 0)
	if !fence.Contains(edge) {
		t.Error("point on the radius should be inside")
	}
}

func TestContains_Polygon(t *testing.T) {
	fence := Geofence{
		Boundary: []geo.Point{
			{Lat: 0, Lon: 0}, {Lat: 0, Lon: 1}, {Lat: 1, Lon: 1}, {Lat: 1, Lon: 0},
		},
	}
	if !fence.IsPolygon() {
		t.Fatal("expected polygon fence")
	}
	if !fence.Contains(geo.Point{Lat: 0.5, Lon: 0.5}) {
		t.Error("center should be inside")
	}
	if fence.Contains(geo.Point{Lat: 1.5, Lon: 0.5}) {
		t.Error("point north of square should be outside")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		fence   Geofence
		wantErr bool
	}{
		{"circle", Geofence{Center: riyadh, RadiusMeters: 10}, false},
		{"zero radius", Geofence{Center: riyadh}, true},
		{"bad center", Geofence{Center: geo.Point{Lat: 91}, RadiusMeters: 10}, true},
		{"two vertex boundary", Geofence{Boundary: []geo.Point{{}, {Lat: 1}}}, true},
		{"polygon", Geofence{Boundary: []geo.Point{{}, {Lat: 1}, {Lon: 1}}}, false},
		{"polygon bad vertex", Geofence{Boundary: []geo.Point{{}, {Lat: 1}, {Lon: 200}}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fence.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidGeofence) {
				t.Errorf("expected ErrInvalidGeofence, got %v", err)
			}
		})
	}
}

func TestPositionError(t *testing.T) {
	tests := []struct {
		code string
		want error
	}{
		{CodePermissionDenied, ErrPermissionDenied},
		{CodePositionUnavailable, ErrPositionUnavailable},
		{CodeTimeout, ErrTimeout},
		{"GARBAGE", ErrPositionUnavailable},
	}
	for _, tt := range tests {
		err := error(NewPositionError(tt.code, "gps lost"))
		if !errors.Is(err, tt.want) {
			t.Errorf("code %s: errors.Is(%v) = false", tt.code, tt.want)
		}
	}

	err := NewPositionError(CodeTimeout, "")
	if err.Error() != "position error: TIMEOUT" {
		t.Errorf("Error() = %q", err.Error())
	}
	if errors.Is(err, ErrPermissionDenied) {
		t.Error("timeout should not match permission denied")
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
