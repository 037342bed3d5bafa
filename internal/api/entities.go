package api

import (
	"fmt"
	"net/http"

	"geotrail/pkg/geo"
	"geotrail/pkg/geofence"
	"geotrail/pkg/store"
	"geotrail/pkg/tracker"
)

// EntityHandler feeds live samples into the tracker.
type EntityHandler struct {
	tr *tracker.Tracker
}

// NewEntityHandler creates an EntityHandler.
func NewEntityHandler(tr *tracker.Tracker) *EntityHandler {
	return &EntityHandler{tr: tr}
}

// PositionRequest is one live sample.
type PositionRequest struct {
	Lat *float64 `json:"lat" validate:"required"`
	Lon *float64 `json:"lng" validate:"required"`
}

// PositionErrorRequest reports a failure of the position source.
type PositionErrorRequest struct {
	Code    string `json:"code" validate:"required"`
	Message string `json:"message"`
}

// HandlePosition updates one entity and returns its stabilized heading and
// any geofence transitions the sample caused.
func (h *EntityHandler) HandlePosition(w http.ResponseWriter, r *http.Request) {
	var req PositionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	u, err := h.tr.Push(r.PathValue("id"), geo.Point{Lat: *req.Lat, Lon: *req.Lon})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// HandleError records a position source failure for an entity.
func (h *EntityHandler) HandleError(w http.ResponseWriter, r *http.Request) {
	var req PositionErrorRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	perr := geofence.NewPositionError(req.Code, req.Message)
	h.tr.ReportError(r.PathValue("id"), perr)
	writeJSON(w, http.StatusAccepted, perr)
}

func (h *EntityHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.tr.Snapshot())
}

func (h *EntityHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	st, ok := h.tr.Get(id)
	if !ok {
		writeError(w, r, fmt.Errorf("entity %s: %w", id, store.ErrNotFound))
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *EntityHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !h.tr.Remove(id) {
		writeError(w, r, fmt.Errorf("entity %s: %w", id, store.ErrNotFound))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
