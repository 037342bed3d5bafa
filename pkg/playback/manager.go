package playback

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"

	"geotrail/pkg/trajectory"
)

// Manager owns every live session, keyed by a random id.
type Manager struct {
	ctx  context.Context
	sink Sink

	mu       sync.RWMutex
	sessions map[string]*Session
	wg       sync.WaitGroup
}

// NewManager creates a manager whose sessions run until ctx is cancelled.
// sink receives the output of every session and may be nil.
func NewManager(ctx context.Context, sink Sink) *Manager {
	if sink == nil {
		sink = noopSink{}
	}
	return &Manager{
		ctx:      ctx,
		sink:     sink,
		sessions: make(map[string]*Session),
	}
}

// Create registers a new session for path and starts its loop.
func (m *Manager) Create(path trajectory.Path, opts Options) *Session {
	s := NewSession(uuid.NewString(), path, opts, m.sink)

	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()

	m.spawn(s)
	return s
}

func (m *Manager) spawn(s *Session) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		s.Run(m.ctx)
	}()
}

// Get returns the session for id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Restart rewinds the session onto path, relaunching its loop if it had finished.
func (m *Manager) Restart(id string, path trajectory.Path) (*Session, error) {
	s, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	relaunch, err := s.restart(path)
	if err != nil {
		return nil, err
	}
	if relaunch {
		m.spawn(s)
	}
	return s, nil
}

// Stop halts and forgets the session.
func (m *Manager) Stop(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	s.Stop()
	slog.Info("Playback: session removed", "id", id)
	return nil
}

// List returns summaries of all sessions, oldest first.
func (m *Manager) List() []Info {
	m.mu.RLock()
	out := make([]Info, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s.Info())
	}
	m.mu.RUnlock()

	slices.SortFunc(out, func(a, b Info) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
	return out
}

// Count returns the number of registered sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// StopAll stops every session and waits for their loops to exit.
func (m *Manager) StopAll() {
	m.mu.Lock()
	all := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range all {
		s.Stop()
	}
	m.wg.Wait()

	if len(all) > 0 {
		slog.Info("Playback: all sessions stopped", "count", len(all))
	}
}
