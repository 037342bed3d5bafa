// Package playback advances an index through a dense path on a fixed tick and
// emits position and stabilized bearing for a renderer.
package playback

import (
	"fmt"
	"time"

	"geotrail/pkg/geo"
	"geotrail/pkg/trajectory"
)

// Mode selects what happens at the end of the path.
type Mode string

const (
	// ModeOneShot stops at the last sample.
	ModeOneShot Mode = "oneShot"
	// ModePingPong reverses at either end and runs until stopped.
	ModePingPong Mode = "pingPong"
)

// ParseMode accepts the canonical names plus a few aliases used by config files.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "oneShot", "oneshot", "one_shot", "forward":
		return ModeOneShot, nil
	case "pingPong", "pingpong", "ping_pong", "bidirectional":
		return ModePingPong, nil
	}
	return "", fmt.Errorf("unknown playback mode %q", s)
}

// State is the pure playback state threaded through Tick.
type State struct {
	Path         trajectory.Path
	Index        int
	Direction    trajectory.Direction
	Mode         Mode
	Running      bool
	TickInterval time.Duration
}

// Start creates a running state at the first sample, heading forward.
func Start(path trajectory.Path, tickInterval time.Duration, mode Mode) State {
	if mode == "" {
		mode = ModeOneShot
	}
	return State{
		Path:         path,
		Index:        0,
		Direction:    trajectory.Forward,
		Mode:         mode,
		Running:      path.Valid(),
		TickInterval: tickInterval,
	}
}

// Current returns the sample at the current index.
func (s State) Current() geo.Point {
	if !s.Path.Valid() {
		return geo.Point{}
	}
	return s.Path.At(s.Index)
}

// Tick advances the index by one in the current direction and returns the new
// sample. terminal is true only on the tick that reaches the end of a one-shot
// run. Ticking a stopped or finished state is a no-op.
func Tick(s State) (next State, pos geo.Point, terminal bool) {
	if !s.Running || !s.Path.Valid() {
		s.Running = false
		return s, s.Current(), false
	}

	last := s.Path.Len() - 1

	switch s.Mode {
	case ModePingPong:
		s.Index += int(s.Direction)
		if s.Index >= last {
			s.Index = last
			s.Direction = trajectory.Backward
		} else if s.Index <= 0 {
			s.Index = 0
			s.Direction = trajectory.Forward
		}
	default:
		if s.Index < last {
			s.Index++
		}
		if s.Index >= last {
			s.Running = false
			terminal = true
		}
	}

	return s, s.Path.At(s.Index), terminal
}

// Stop halts the state. Further ticks are no-ops.
func Stop(s State) State {
	s.Running = false
	return s
}
