package playback

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"geotrail/pkg/bearing"
	"geotrail/pkg/logging"
	"geotrail/pkg/trajectory"
)

const (
	// DefaultTickInterval is used when Options.TickInterval is not positive.
	DefaultTickInterval = 150 * time.Millisecond
	// DefaultLookAheadSteps is how many samples ahead the raw bearing aims.
	DefaultLookAheadSteps = 12
)

// Frame is one rendered playback step.
type Frame struct {
	SessionID        string  `json:"session_id"`
	Lat              float64 `json:"lat"`
	Lon              float64 `json:"lng"`
	BearingDegrees   float64 `json:"bearing"`
	ProgressFraction float64 `json:"progress"`
	Index            int     `json:"index"`
	Direction        string  `json:"direction"`
	Complete         bool    `json:"complete,omitempty"`
}

// Sink receives playback output. Implementations must not block for long;
// they are called from the session goroutine.
type Sink interface {
	OnPositionUpdate(f Frame)
	OnPlaybackComplete(sessionID string)
}

// Sinks fans out to several sinks in order.
type Sinks []Sink

func (s Sinks) OnPositionUpdate(f Frame) {
	for _, sink := range s {
		sink.OnPositionUpdate(f)
	}
}

func (s Sinks) OnPlaybackComplete(sessionID string) {
	for _, sink := range s {
		sink.OnPlaybackComplete(sessionID)
	}
}

type noopSink struct{}

func (noopSink) OnPositionUpdate(Frame)    {}
func (noopSink) OnPlaybackComplete(string) {}

// Options tunes a session. A zero Filter means bearing.Default(); a Filter
// without a max step keeps its deadband and gets bearing.DefaultMaxStep.
type Options struct {
	TickInterval   time.Duration
	Mode           Mode
	LookAheadSteps int
	Filter         bearing.Stabilizer
}

func (o Options) withDefaults() Options {
	if o.TickInterval <= 0 {
		o.TickInterval = DefaultTickInterval
	}
	if o.Mode == "" {
		o.Mode = ModeOneShot
	}
	if o.LookAheadSteps < 1 {
		o.LookAheadSteps = DefaultLookAheadSteps
	}
	switch {
	case o.Filter == (bearing.Stabilizer{}):
		o.Filter = bearing.Default()
	case o.Filter.MaxStepDegreesPerTick <= 0:
		o.Filter.MaxStepDegreesPerTick = bearing.DefaultMaxStep
	}
	return o
}

// Info is a point-in-time summary of a session.
type Info struct {
	ID        string    `json:"id"`
	Mode      Mode      `json:"mode"`
	Points    int       `json:"points"`
	Index     int       `json:"index"`
	Direction string    `json:"direction"`
	Running   bool      `json:"running"`
	Progress  float64   `json:"progress"`
	CreatedAt time.Time `json:"created_at"`
}

// Session drives one path through the tick state machine and the bearing filter.
// It owns its State and bearing.State exclusively.
type Session struct {
	id        string
	opts      Options
	sink      Sink
	createdAt time.Time

	mu      sync.Mutex
	state   State
	heading bearing.State
	last    Frame
	stopped bool
	looping bool // a Run loop owns the ticker
	loopGen uint64

	stop     chan struct{}
	stopOnce sync.Once
}

// NewSession prepares a session positioned at the first sample. Call Run to start ticking.
func NewSession(id string, path trajectory.Path, opts Options, sink Sink) *Session {
	opts = opts.withDefaults()
	if sink == nil {
		sink = noopSink{}
	}
	s := &Session{
		id:        id,
		opts:      opts,
		sink:      sink,
		createdAt: time.Now(),
		stop:      make(chan struct{}),
	}
	s.state = Start(path, opts.TickInterval, opts.Mode)
	s.last = s.frameLocked()
	return s
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Path returns the path being played.
func (s *Session) Path() trajectory.Path {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Path
}

// State returns a copy of the playback state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Last returns the most recently computed frame.
func (s *Session) Last() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Info summarizes the session.
func (s *Session) Info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Info{
		ID:        s.id,
		Mode:      s.state.Mode,
		Points:    s.state.Path.Len(),
		Index:     s.state.Index,
		Direction: s.state.Direction.String(),
		Running:   s.state.Running,
		Progress:  s.state.Path.Progress(s.state.Index),
		CreatedAt: s.createdAt,
	}
}

// Active reports whether a Run loop is currently executing.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.looping
}

// Advance performs one tick and returns the resulting frame. ok is false when
// the session was not running, in which case nothing changed.
func (s *Session) Advance() (Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.advanceLocked()
}

func (s *Session) advanceLocked() (Frame, bool) {
	if !s.state.Running {
		return s.last, false
	}

	next, _, terminal := Tick(s.state)
	s.state = next
	f := s.frameLocked()
	f.Complete = terminal
	s.last = f
	return f, true
}

// claimLoop marks a loop as running and returns its generation. ok is false
// when another loop already owns the session.
func (s *Session) claimLoop() (gen uint64, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.looping {
		return 0, false
	}
	s.looping = true
	s.loopGen++
	return s.loopGen, true
}

// releaseLoop clears the loop flag if gen still owns it.
func (s *Session) releaseLoop(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releaseLoopLocked(gen)
}

func (s *Session) releaseLoopLocked(gen uint64) {
	if s.loopGen == gen {
		s.looping = false
	}
}

// tick advances one step for loop gen. A step that ends the loop releases it
// under the same lock, before any sink runs.
func (s *Session) tick(gen uint64) (Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.advanceLocked()
	if !ok || f.Complete {
		s.releaseLoopLocked(gen)
	}
	return f, ok
}

// frameLocked computes the frame for the current index and advances the
// bearing filter. Callers must hold s.mu.
func (s *Session) frameLocked() Frame {
	pos := s.state.Current()

	var heading float64
	raw, ok := trajectory.LookAheadBearing(s.state.Path, s.state.Index, s.opts.LookAheadSteps, s.state.Direction)
	if ok {
		s.heading, heading = s.opts.Filter.Step(s.heading, raw)
	} else {
		s.heading, heading, _ = s.opts.Filter.Hold(s.heading)
	}

	return Frame{
		SessionID:        s.id,
		Lat:              pos.Lat,
		Lon:              pos.Lon,
		BearingDegrees:   heading,
		ProgressFraction: s.state.Path.Progress(s.state.Index),
		Index:            s.state.Index,
		Direction:        s.state.Direction.String(),
	}
}

// Run emits the current frame and then ticks until the path completes
// (one-shot), Stop is called, or ctx is cancelled. Cancellation is immediate;
// no pending frames are flushed. Concurrent calls return immediately.
func (s *Session) Run(ctx context.Context) {
	gen, ok := s.claimLoop()
	if !ok {
		return
	}
	defer s.releaseLoop(gen)

	select {
	case <-s.stop:
		return
	default:
	}

	ticker := time.NewTicker(s.opts.TickInterval)
	defer ticker.Stop()

	info := s.Info()
	slog.Info("Playback: session started", "id", s.id, "points", info.Points, "mode", info.Mode, "interval", s.opts.TickInterval)

	s.sink.OnPositionUpdate(s.Last())

	for {
		select {
		case <-ctx.Done():
			slog.Debug("Playback: session cancelled", "id", s.id)
			return
		case <-s.stop:
			slog.Debug("Playback: session stopped", "id", s.id)
			return
		case <-ticker.C:
			f, ok := s.tick(gen)
			if !ok {
				return
			}
			logging.TraceDefault("Playback: tick", "id", s.id, "index", f.Index, "bearing", f.BearingDegrees)
			s.sink.OnPositionUpdate(f)
			if f.Complete {
				slog.Info("Playback: session completed", "id", s.id, "points", info.Points)
				s.sink.OnPlaybackComplete(s.id)
				return
			}
		}
	}
}

// Stop halts playback. It is idempotent and the session cannot be restarted afterwards.
func (s *Session) Stop() {
	s.mu.Lock()
	s.state = Stop(s.state)
	s.stopped = true
	s.mu.Unlock()

	s.stopOnce.Do(func() { close(s.stop) })
}

// Restart swaps in a new path, rewinds to its first sample and clears the
// heading history. A running loop continues on the new path; a finished one
// must be started again with Run.
func (s *Session) Restart(path trajectory.Path) error {
	_, err := s.restart(path)
	return err
}

// restart is Restart that also reports whether no loop owns the session any
// more, decided under the same lock as the rewind.
func (s *Session) restart(path trajectory.Path) (relaunch bool, err error) {
	if !path.Valid() {
		return false, &trajectory.InvalidPathError{Count: path.Len()}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return false, ErrSessionStopped
	}
	s.state = Start(path, s.opts.TickInterval, s.opts.Mode)
	s.heading = bearing.Reset()
	s.last = s.frameLocked()

	slog.Debug("Playback: session restarted", "id", s.id, "points", path.Len())
	return !s.looping, nil
}
