package config

import "errors"

var (
	// ErrUnknownKey indicates a tuning key that is not in the registry.
	ErrUnknownKey = errors.New("unknown tuning key")
	// ErrInvalidValue indicates a tuning value outside its allowed range.
	ErrInvalidValue = errors.New("invalid tuning value")
)
