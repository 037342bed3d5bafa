package geo

import (
	"fmt"

	orbgeo "github.com/paulmach/orb/geo"
)

// PolygonArea returns the approximate area of the polygon in square meters.
// The ring is closed implicitly. The summation is the spherical shoelace
// approximation, good for polygons tens of kilometers across; it is not the
// exact spherical excess for continental-scale shapes.
func PolygonArea(points []Point) (float64, error) {
	if err := checkPolygon(points); err != nil {
		return 0, err
	}
	return orbgeo.Area(toRing(points)), nil
}

// PolygonPerimeter returns the length of the polygon boundary in meters,
// including the closing edge back to the first vertex.
func PolygonPerimeter(points []Point) (float64, error) {
	if err := checkPolygon(points); err != nil {
		return 0, err
	}

	total := 0.0
	for i := range points {
		next := points[(i+1)%len(points)]
		total += Distance(points[i], next)
	}
	return total, nil
}

func checkPolygon(points []Point) error {
	if len(points) < 3 {
		return fmt.Errorf("%w: need at least 3 vertices, got %d", ErrInvalidPolygon, len(points))
	}
	return ValidateAll(points)
}
