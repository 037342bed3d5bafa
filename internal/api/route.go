package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"geotrail/pkg/config"
	"geotrail/pkg/geo"
	"geotrail/pkg/route"
	"geotrail/pkg/store"
	"geotrail/pkg/trajectory"
)

// RouteHandler compares planned and actual routes and keeps the reports.
type RouteHandler struct {
	cfgProv config.Provider
	reports store.ReportStore
}

// NewRouteHandler creates a RouteHandler.
func NewRouteHandler(cfgProv config.Provider, reports store.ReportStore) *RouteHandler {
	return &RouteHandler{cfgProv: cfgProv, reports: reports}
}

// AnalyzeRequest carries both paths and the trip context.
type AnalyzeRequest struct {
	Label       string             `json:"label,omitempty"`
	Planned     []geo.Point        `json:"planned" validate:"required"`
	Actual      []geo.Point        `json:"actual" validate:"required"`
	Checkpoints []route.Checkpoint `json:"checkpoints,omitempty" validate:"dive"`
	Trip        TripRequest        `json:"trip"`
}

// TripRequest is route.Trip with a human duration ("2h30m").
type TripRequest struct {
	CompliancePercentage float64   `json:"compliance_percentage" validate:"gte=0,lte=100"`
	StartedAt            time.Time `json:"started_at"`
	Duration             string    `json:"duration,omitempty"`
}

// analyzer builds the comparator from the live tuning and static thresholds.
func (h *RouteHandler) analyzer(r *http.Request) route.Analyzer {
	rc := h.cfgProv.AppConfig().Route
	return route.Analyzer{
		FuelRatePerKm: h.cfgProv.FuelRatePerKm(r.Context()),
		Thresholds: route.Thresholds{
			Record: rc.DeviationRecord.Meters(),
			Medium: rc.DeviationMedium.Meters(),
			High:   rc.DeviationHigh.Meters(),
		},
	}
}

// HandleAnalyze computes a ComplianceResult and stores it as a report whose
// id is returned in the X-Report-ID header.
func (h *RouteHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	planned, err := trajectory.NewPath(req.Planned)
	if err != nil {
		writeError(w, r, fmt.Errorf("planned: %w", err))
		return
	}
	actual, err := trajectory.NewPath(req.Actual)
	if err != nil {
		writeError(w, r, fmt.Errorf("actual: %w", err))
		return
	}
	for i, cp := range req.Checkpoints {
		if cp.Status == "" {
			req.Checkpoints[i].Status = route.StatusPending
		} else if !cp.Status.Valid() {
			writeError(w, r, fmt.Errorf("%w: checkpoint %d status %q", errBadRequest, i, cp.Status))
			return
		}
	}

	trip := route.Trip{
		CompliancePercentage: req.Trip.CompliancePercentage,
		StartedAt:            req.Trip.StartedAt,
	}
	if req.Trip.Duration != "" {
		d, err := config.ParseDuration(req.Trip.Duration)
		if err != nil || d < 0 {
			writeError(w, r, fmt.Errorf("%w: trip duration %q", errBadRequest, req.Trip.Duration))
			return
		}
		trip.Duration = d
	}

	res := h.analyzer(r).Analyze(planned, actual, req.Checkpoints, trip)

	rep := &store.Report{Label: req.Label, Result: res}
	if err := h.reports.SaveReport(r.Context(), rep); err != nil {
		slog.Warn("Route: failed to save report", "error", err)
	} else {
		w.Header().Set("X-Report-ID", rep.ID)
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *RouteHandler) HandleReports(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	reports, err := h.reports.ListReports(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reports)
}

func (h *RouteHandler) HandleReport(w http.ResponseWriter, r *http.Request) {
	rep, err := h.reports.GetReport(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}
