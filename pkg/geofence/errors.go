package geofence

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidGeofence indicates a fence without a usable shape.
	ErrInvalidGeofence = errors.New("invalid geofence")
	// ErrPermissionDenied is matched by a PositionError with CodePermissionDenied.
	ErrPermissionDenied = errors.New("position permission denied")
	// ErrPositionUnavailable is matched by a PositionError with CodePositionUnavailable.
	ErrPositionUnavailable = errors.New("position unavailable")
	// ErrTimeout is matched by a PositionError with CodeTimeout.
	ErrTimeout = errors.New("position timeout")
)

// Position source failure codes.
const (
	CodePermissionDenied    = "PERMISSION_DENIED"
	CodePositionUnavailable = "POSITION_UNAVAILABLE"
	CodeTimeout             = "TIMEOUT"
)

// PositionError is reported by an external position source instead of a sample.
// It is surfaced to the caller as-is; nothing retries.
type PositionError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *PositionError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("position error: %s", e.Code)
	}
	return fmt.Sprintf("position error: %s: %s", e.Code, e.Message)
}

// Is maps the code onto the matching sentinel.
func (e *PositionError) Is(target error) bool {
	switch e.Code {
	case CodePermissionDenied:
		return target == ErrPermissionDenied
	case CodePositionUnavailable:
		return target == ErrPositionUnavailable
	case CodeTimeout:
		return target == ErrTimeout
	}
	return false
}

// NewPositionError builds a PositionError, normalising unknown codes to POSITION_UNAVAILABLE.
func NewPositionError(code, message string) *PositionError {
	switch code {
	case CodePermissionDenied, CodePositionUnavailable, CodeTimeout:
	default:
		code = CodePositionUnavailable
	}
	return &PositionError{Code: code, Message: message}
}
