package geo

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCoordinate indicates a latitude or longitude outside its valid range.
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	// ErrInvalidPolygon indicates a polygon with fewer than three vertices.
	ErrInvalidPolygon = errors.New("invalid polygon")
)

// InvalidCoordinateError describes which component of a point was out of range.
type InvalidCoordinateError struct {
	Field string
	Value float64
}

func (e *InvalidCoordinateError) Error() string {
	return fmt.Sprintf("invalid coordinate: %s=%v out of range", e.Field, e.Value)
}

// Is lets errors.Is match ErrInvalidCoordinate.
func (e *InvalidCoordinateError) Is(target error) bool {
	return target == ErrInvalidCoordinate
}
