package geo

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// square of 0.1 degree at the equator, ~11.1 km per side
var equatorSquare = []Point{
	{Lat: 0, Lon: 0},
	{Lat: 0, Lon: 0.1},
	{Lat: 0.1, Lon: 0.1},
	{Lat: 0.1, Lon: 0},
}

func TestPolygonArea(t *testing.T) {
	area, err := PolygonArea(equatorSquare)
	require.NoError(t, err)
	assert.InEpsilon(t, 123.9e6, area, 0.01)

	// Orientation and explicit closure do not change the magnitude.
	reversed := []Point{equatorSquare[3], equatorSquare[2], equatorSquare[1], equatorSquare[0], equatorSquare[3]}
	areaRev, err := PolygonArea(reversed)
	require.NoError(t, err)
	assert.InDelta(t, area, areaRev, 1)
}

func TestPolygonPerimeter(t *testing.T) {
	perim, err := PolygonPerimeter(equatorSquare)
	require.NoError(t, err)
	side := Distance(Point{Lat: 0, Lon: 0}, Point{Lat: 0, Lon: 0.1})
	assert.InEpsilon(t, 4*side, perim, 0.001)
}

func TestPolygon_Errors(t *testing.T) {
	_, err := PolygonArea(equatorSquare[:2])
	assert.True(t, errors.Is(err, ErrInvalidPolygon))

	_, err = PolygonPerimeter([]Point{{0, 0}, {0, 1}, {95, 1}})
	assert.True(t, errors.Is(err, ErrInvalidCoordinate))
}

func TestRingContains(t *testing.T) {
	assert.True(t, RingContains(equatorSquare, Point{Lat: 0.05, Lon: 0.05}))
	assert.False(t, RingContains(equatorSquare, Point{Lat: 0.2, Lon: 0.05}))
	assert.False(t, RingContains(equatorSquare[:2], Point{Lat: 0.05, Lon: 0.05}))
}

func TestLineStringFeature(t *testing.T) {
	f := LineStringFeature(equatorSquare, map[string]interface{}{"session": "abc"})
	assert.Equal(t, "LineString", f.Geometry.GeoJSONType())
	assert.Equal(t, "abc", f.Properties["session"])

	data, err := f.MarshalJSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"coordinates":[[0,0],[0.1,0]`)
	assert.False(t, math.IsNaN(PolygonFeature(equatorSquare, nil).Geometry.Bound().Center()[0]))
}

func TestDistanceToSegment(t *testing.T) {
	a := Point{Lat: 0, Lon: 0}
	b := Point{Lat: 0, Lon: 0.1}

	tests := []struct {
		name string
		p    Point
		want float64
	}{
		{"on segment", Point{Lat: 0, Lon: 0.05}, 0},
		{"beside interior", DestinationPoint(Point{Lat: 0, Lon: 0.05}, 300, 0), 300},
		{"past the end", DestinationPoint(b, 500, 90), 500},
		{"before the start", DestinationPoint(a, 250, 270), 250},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, DistanceToSegment(tt.p, a, b), 0.5)
		})
	}

	assert.InDelta(t, Distance(Point{Lat: 1}, a), DistanceToSegment(Point{Lat: 1}, a, a), 1e-9)
}

func TestDistanceToPolyline(t *testing.T) {
	p := DestinationPoint(Point{Lat: 0.05, Lon: 0.1}, 120, 90)
	assert.InDelta(t, 120, DistanceToPolyline(p, equatorSquare), 0.5)
	assert.True(t, math.IsInf(DistanceToPolyline(p, nil), 1))
}
