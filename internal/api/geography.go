package api

import (
	"net/http"

	"geotrail/pkg/geo"
)

// GeographyHandler exposes the geodesy helpers.
type GeographyHandler struct{}

// NewGeographyHandler creates a GeographyHandler.
func NewGeographyHandler() *GeographyHandler {
	return &GeographyHandler{}
}

// DistanceRequest asks for the great-circle distance and initial bearing between two points.
type DistanceRequest struct {
	From *geo.Point `json:"from" validate:"required"`
	To   *geo.Point `json:"to" validate:"required"`
}

// DistanceResponse reports the haversine distance and forward azimuth.
type DistanceResponse struct {
	DistanceMeters float64 `json:"distance_meters"`
	BearingDegrees float64 `json:"bearing"`
	Display        string  `json:"display"`
}

// PolygonRequest carries the vertices of a polygon. The ring is closed implicitly.
type PolygonRequest struct {
	Vertices []geo.Point `json:"vertices" validate:"required"`
}

// PolygonResponse reports the approximate area and the perimeter of a polygon.
type PolygonResponse struct {
	AreaSquareMeters float64 `json:"area_square_meters"`
	PerimeterMeters  float64 `json:"perimeter_meters"`
	Vertices         int     `json:"vertices"`
}

func (h *GeographyHandler) HandleDistance(w http.ResponseWriter, r *http.Request) {
	var req DistanceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := geo.ValidateAll([]geo.Point{*req.From, *req.To}); err != nil {
		writeError(w, r, err)
		return
	}

	d := geo.Distance(*req.From, *req.To)
	resp := DistanceResponse{
		DistanceMeters: d,
		Display:        geo.FormatDistance(d),
	}
	if !geo.SameLocation(*req.From, *req.To) {
		resp.BearingDegrees = geo.Bearing(*req.From, *req.To)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *GeographyHandler) HandlePolygon(w http.ResponseWriter, r *http.Request) {
	var req PolygonRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	area, err := geo.PolygonArea(req.Vertices)
	if err != nil {
		writeError(w, r, err)
		return
	}
	perimeter, err := geo.PolygonPerimeter(req.Vertices)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, PolygonResponse{
		AreaSquareMeters: area,
		PerimeterMeters:  perimeter,
		Vertices:         len(req.Vertices),
	})
}
