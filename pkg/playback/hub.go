package playback

import (
	"log/slog"
	"sync"
)

// Event types delivered to hub subscribers.
const (
	EventPosition = "position"
	EventComplete = "complete"
)

// Event is what a Hub subscriber receives.
type Event struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
	Frame     *Frame `json:"frame,omitempty"`
}

type subscriber struct {
	ch chan Event
}

// Hub is a Sink that fans frames out to per-session subscribers, such as
// WebSocket connections. Slow subscribers lose frames rather than stall
// playback, but always receive the completion event.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[*subscriber]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*subscriber]struct{})}
}

// Subscribe registers interest in sessionID. The returned cancel func
// unregisters and closes the channel; it is safe to call more than once.
func (h *Hub) Subscribe(sessionID string, buffer int) (<-chan Event, func()) {
	if buffer < 1 {
		buffer = 1
	}
	sub := &subscriber{ch: make(chan Event, buffer)}

	h.mu.Lock()
	if h.subs[sessionID] == nil {
		h.subs[sessionID] = make(map[*subscriber]struct{})
	}
	h.subs[sessionID][sub] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[sessionID], sub)
			if len(h.subs[sessionID]) == 0 {
				delete(h.subs, sessionID)
			}
			h.mu.Unlock()
			close(sub.ch)
		})
	}
	return sub.ch, cancel
}

// Subscribers returns the number of subscribers for sessionID.
func (h *Hub) Subscribers(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[sessionID])
}

func (h *Hub) OnPositionUpdate(f Frame) {
	h.publish(Event{Type: EventPosition, SessionID: f.SessionID, Frame: &f})
}

func (h *Hub) OnPlaybackComplete(sessionID string) {
	h.publish(Event{Type: EventComplete, SessionID: sessionID})
}

func (h *Hub) publish(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subs[ev.SessionID] {
		sub.deliver(ev)
	}
}

// deliver never blocks. A full buffer drops a position event; a completion
// evicts the oldest queued event to make room for itself.
func (sub *subscriber) deliver(ev Event) {
	for {
		select {
		case sub.ch <- ev:
			return
		default:
		}
		if ev.Type != EventComplete {
			slog.Debug("Playback: subscriber lagging, frame dropped", "id", ev.SessionID, "type", ev.Type)
			return
		}
		select {
		case <-sub.ch:
		default:
		}
	}
}
