package api

import (
	"fmt"
	"net/http"
	"strconv"

	"geotrail/pkg/config"
	"geotrail/pkg/geo"
	"geotrail/pkg/geofence"
	"geotrail/pkg/store"
)

// GeofenceHandler manages fences and serves the transition journal.
type GeofenceHandler struct {
	mon    *geofence.Monitor
	events store.GeofenceEventStore
}

// NewGeofenceHandler creates a GeofenceHandler.
func NewGeofenceHandler(mon *geofence.Monitor, events store.GeofenceEventStore) *GeofenceHandler {
	return &GeofenceHandler{mon: mon, events: events}
}

// GeofenceRequest defines a circular or polygon fence. Radius accepts unit
// strings such as "50km" and wins over RadiusMeters when both are set.
type GeofenceRequest struct {
	ID           string      `json:"id,omitempty"`
	Name         string      `json:"name" validate:"required"`
	Center       geo.Point   `json:"center"`
	RadiusMeters float64     `json:"radius_meters" validate:"gte=0"`
	Radius       string      `json:"radius,omitempty"`
	Boundary     []geo.Point `json:"boundary,omitempty"`
}

func (h *GeofenceHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.mon.Fences())
}

func (h *GeofenceHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	var req GeofenceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	radius := req.RadiusMeters
	if req.Radius != "" {
		m, err := config.ParseDistance(req.Radius)
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: radius %q", errBadRequest, req.Radius))
			return
		}
		radius = m
	}

	g, err := h.mon.Add(geofence.Geofence{
		ID:           req.ID,
		Name:         req.Name,
		Center:       req.Center,
		RadiusMeters: radius,
		Boundary:     req.Boundary,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

func (h *GeofenceHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !h.mon.Remove(id) {
		writeError(w, r, fmt.Errorf("geofence %s: %w", id, store.ErrNotFound))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleEvents returns journaled transitions, newest first.
// Query: entity (optional), limit (optional).
func (h *GeofenceHandler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	events, err := h.events.ListGeofenceEvents(r.Context(), r.URL.Query().Get("entity"), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if events == nil {
		events = []geofence.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

func queryLimit(r *http.Request) (int, error) {
	s := r.URL.Query().Get("limit")
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: limit %q", errBadRequest, s)
	}
	return n, nil
}
