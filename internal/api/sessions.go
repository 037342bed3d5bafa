package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"geotrail/pkg/bearing"
	"geotrail/pkg/config"
	"geotrail/pkg/geo"
	"geotrail/pkg/playback"
	"geotrail/pkg/trajectory"
)

const (
	streamWriteWait = 5 * time.Second
	streamPingEvery = 30 * time.Second
)

// SessionHandler serves playback sessions and their frame streams.
type SessionHandler struct {
	mgr      *playback.Manager
	hub      *playback.Hub
	cfgProv  config.Provider
	buffer   int
	upgrader websocket.Upgrader
}

// NewSessionHandler creates a SessionHandler. buffer sizes each stream subscriber.
func NewSessionHandler(mgr *playback.Manager, hub *playback.Hub, cfgProv config.Provider, buffer int) *SessionHandler {
	return &SessionHandler{
		mgr:     mgr,
		hub:     hub,
		cfgProv: cfgProv,
		buffer:  buffer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// Local renderer pages are served from other ports.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// CreateSessionRequest starts playback along densified waypoints.
// Omitted tuning fields fall back to the runtime tuning.
type CreateSessionRequest struct {
	Waypoints        []geo.Point `json:"waypoints" validate:"required"`
	PointsPerSegment *int        `json:"points_per_segment,omitempty"`
	TickInterval     string      `json:"tick_interval,omitempty"`
	Mode             string      `json:"mode,omitempty"`
	LookAhead        *int        `json:"look_ahead,omitempty" validate:"omitempty,gte=1"`
}

// CreateSessionResponse identifies the new session.
type CreateSessionResponse struct {
	ID           string        `json:"id"`
	Points       int           `json:"points"`
	Mode         playback.Mode `json:"mode"`
	TickInterval string        `json:"tick_interval"`
}

// RestartRequest optionally replaces the waypoints of a session.
type RestartRequest struct {
	Waypoints        []geo.Point `json:"waypoints,omitempty"`
	PointsPerSegment *int        `json:"points_per_segment,omitempty"`
}

func (h *SessionHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateSessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	opts := playback.Options{
		TickInterval:   h.cfgProv.TickInterval(ctx),
		LookAheadSteps: h.cfgProv.LookAheadSteps(ctx),
		Filter: bearing.New(
			bearing.WithDeadband(h.cfgProv.DeadbandDegrees(ctx)),
			bearing.WithMaxStep(h.cfgProv.MaxStepDegrees(ctx)),
		),
	}

	modeName := req.Mode
	if modeName == "" {
		modeName = h.cfgProv.PlaybackMode(ctx)
	}
	mode, err := playback.ParseMode(modeName)
	if err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	opts.Mode = mode

	if req.TickInterval != "" {
		d, err := config.ParseDuration(req.TickInterval)
		if err != nil || d <= 0 {
			writeError(w, r, fmt.Errorf("%w: tick_interval %q", errBadRequest, req.TickInterval))
			return
		}
		opts.TickInterval = d
	}
	if req.LookAhead != nil {
		opts.LookAheadSteps = *req.LookAhead
	}

	pps := h.cfgProv.PointsPerSegment(ctx)
	if req.PointsPerSegment != nil {
		pps = *req.PointsPerSegment
	}
	path, err := trajectory.Densify(req.Waypoints, pps)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s := h.mgr.Create(path, opts)
	writeJSON(w, http.StatusCreated, CreateSessionResponse{
		ID:           s.ID(),
		Points:       path.Len(),
		Mode:         opts.Mode,
		TickInterval: opts.TickInterval.String(),
	})
}

func (h *SessionHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.mgr.List())
}

// HandleGet returns the most recent frame of a session.
func (h *SessionHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	s, err := h.mgr.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.Last())
}

func (h *SessionHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.mgr.Stop(r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRestart rewinds a session, optionally onto new waypoints.
func (h *SessionHandler) HandleRestart(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s, err := h.mgr.Get(id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req RestartRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}
	}

	path := s.Path()
	if len(req.Waypoints) > 0 {
		pps := h.cfgProv.PointsPerSegment(r.Context())
		if req.PointsPerSegment != nil {
			pps = *req.PointsPerSegment
		}
		if path, err = trajectory.Densify(req.Waypoints, pps); err != nil {
			writeError(w, r, err)
			return
		}
	}

	s, err = h.mgr.Restart(id, path)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.Info())
}

// HandlePath returns the densified path as a GeoJSON LineString feature.
func (h *SessionHandler) HandlePath(w http.ResponseWriter, r *http.Request) {
	s, err := h.mgr.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	path := s.Path()
	feature := geo.LineStringFeature(path.Points(), map[string]interface{}{
		"session_id":     s.ID(),
		"points":         path.Len(),
		"length_meters":  path.Length(),
		"length_display": geo.FormatDistance(path.Length()),
	})
	writeJSON(w, http.StatusOK, feature)
}

// HandleStream upgrades to a WebSocket and pushes playback events until the
// session completes or the client goes away.
func (h *SessionHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	s, err := h.mgr.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("API: websocket upgrade failed", "session", s.ID(), "error", err)
		return
	}
	defer conn.Close()

	events, cancel := h.hub.Subscribe(s.ID(), h.buffer)
	defer cancel()

	// The read side only exists to notice the client closing.
	go func() {
		for {
			if _, _, err := conn.NextReader(); err != nil {
				cancel()
				return
			}
		}
	}()

	last := s.Last()
	if err := writeEvent(conn, playback.Event{Type: playback.EventPosition, SessionID: s.ID(), Frame: &last}); err != nil {
		return
	}
	if last.Complete {
		_ = writeEvent(conn, playback.Event{Type: playback.EventComplete, SessionID: s.ID()})
		return
	}

	ping := time.NewTicker(streamPingEvery)
	defer ping.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(streamWriteWait)); err != nil {
				return
			}
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := writeEvent(conn, ev); err != nil {
				slog.Debug("API: stream write failed", "session", s.ID(), "error", err)
				return
			}
			if ev.Type == playback.EventComplete {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "complete"),
					time.Now().Add(streamWriteWait))
				return
			}
		}
	}
}

func writeEvent(conn *websocket.Conn, ev playback.Event) error {
	if err := conn.SetWriteDeadline(time.Now().Add(streamWriteWait)); err != nil {
		return err
	}
	return conn.WriteJSON(ev)
}
