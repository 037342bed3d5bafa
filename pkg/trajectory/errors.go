package trajectory

import (
	"errors"
	"fmt"
)

// ErrInvalidPath indicates a path or waypoint list with fewer than two points.
var ErrInvalidPath = errors.New("invalid path")

// InvalidPathError records how many points were supplied.
type InvalidPathError struct {
	Count int
}

func (e *InvalidPathError) Error() string {
	return fmt.Sprintf("invalid path: need at least 2 points, got %d", e.Count)
}

// Is lets errors.Is match ErrInvalidPath.
func (e *InvalidPathError) Is(target error) bool {
	return target == ErrInvalidPath
}
