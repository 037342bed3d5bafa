package playback

import "errors"

var (
	// ErrSessionNotFound indicates no session exists for the requested id.
	ErrSessionNotFound = errors.New("playback session not found")
	// ErrSessionStopped indicates the session was stopped and can no longer be restarted.
	ErrSessionStopped = errors.New("playback session stopped")
)
