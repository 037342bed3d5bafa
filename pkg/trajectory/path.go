// Package trajectory turns sparse waypoint lists into dense, immutable paths for playback.
package trajectory

import (
	"geotrail/pkg/geo"
)

// Direction is the traversal direction along a path.
type Direction int

const (
	Forward  Direction = 1
	Backward Direction = -1
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// Path is an ordered, immutable sequence of at least two points.
// The zero value is an empty path and is not valid for playback.
type Path struct {
	points []geo.Point
}

// NewPath validates and copies points into a Path without densifying.
func NewPath(points []geo.Point) (Path, error) {
	if len(points) < 2 {
		return Path{}, &InvalidPathError{Count: len(points)}
	}
	if err := geo.ValidateAll(points); err != nil {
		return Path{}, err
	}
	cp := make([]geo.Point, len(points))
	copy(cp, points)
	return Path{points: cp}, nil
}

// Len returns the number of points.
func (p Path) Len() int { return len(p.points) }

// At returns the i-th point. It panics if i is out of range.
func (p Path) At(i int) geo.Point { return p.points[i] }

// First returns the first point.
func (p Path) First() geo.Point { return p.points[0] }

// Last returns the last point.
func (p Path) Last() geo.Point { return p.points[len(p.points)-1] }

// Points returns a copy of the underlying points.
func (p Path) Points() []geo.Point {
	cp := make([]geo.Point, len(p.points))
	copy(cp, p.points)
	return cp
}

// Valid reports whether the path can be played back.
func (p Path) Valid() bool { return len(p.points) >= 2 }

// Length returns the total haversine length in meters.
func (p Path) Length() float64 {
	total := 0.0
	for i := 1; i < len(p.points); i++ {
		total += geo.Distance(p.points[i-1], p.points[i])
	}
	return total
}

// Progress returns index/(len-1), the fraction of the path covered by sample count.
func (p Path) Progress(index int) float64 {
	if len(p.points) < 2 {
		return 0
	}
	if index <= 0 {
		return 0
	}
	last := len(p.points) - 1
	if index >= last {
		return 1
	}
	return float64(index) / float64(last)
}
