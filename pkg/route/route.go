// Package route compares a planned path with the path actually driven.
//
// The headline deviation figure is the absolute difference in total length,
// a coarse proxy for divergence. A point-wise offset report is produced
// alongside it for display.
package route

import (
	"time"

	"geotrail/pkg/geo"
)

// DefaultFuelRatePerKm is the fixed consumption rate in liters per kilometer.
const DefaultFuelRatePerKm = 0.25

// Status is the externally maintained state of a checkpoint.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusOverdue   Status = "overdue"
	StatusSkipped   Status = "skipped"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusOverdue, StatusSkipped:
		return true
	}
	return false
}

// Severity grades a point-wise deviation.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Checkpoint is a waypoint with an arrival status. Analyze passes it through untouched.
type Checkpoint struct {
	Name                  string     `json:"name"`
	Location              geo.Point  `json:"location"`
	DetectionRadiusMeters float64    `json:"detection_radius_meters"`
	Required              bool       `json:"required"`
	Status                Status     `json:"status"`
	ExpectedArrival       *time.Time `json:"expected_arrival,omitempty"`
	ActualArrival         *time.Time `json:"actual_arrival,omitempty"`
}

// Deviation is one actual sample that strayed from the planned path.
type Deviation struct {
	Location       geo.Point `json:"location"`
	DistanceMeters float64   `json:"distance_meters"`
	Severity       Severity  `json:"severity"`
	Timestamp      time.Time `json:"timestamp"`
}

// Trip carries the inputs that come from outside the geometry.
type Trip struct {
	// CompliancePercentage is supplied upstream and echoed into the result.
	CompliancePercentage float64       `json:"compliance_percentage"`
	StartedAt            time.Time     `json:"started_at"`
	Duration             time.Duration `json:"duration"`
}

// Summary counts checkpoints per status.
type Summary struct {
	Total               int `json:"total"`
	Pending             int `json:"pending"`
	Completed           int `json:"completed"`
	Overdue             int `json:"overdue"`
	Skipped             int `json:"skipped"`
	RequiredOutstanding int `json:"required_outstanding"`
}

// ComplianceResult aggregates the comparison for display.
type ComplianceResult struct {
	CompliancePercentage    float64      `json:"compliance_percentage"`
	TotalDistanceMeters     float64      `json:"total_distance_meters"`
	PlannedDistanceMeters   float64      `json:"planned_distance_meters"`
	DeviationDistanceMeters float64      `json:"deviation_distance_meters"`
	AverageSpeedKmh         float64      `json:"average_speed_kmh"`
	FuelLiters              float64      `json:"fuel_liters"`
	EstimatedArrival        time.Time    `json:"estimated_arrival,omitzero"`
	MeanOffsetMeters        float64      `json:"mean_offset_meters"`
	MaxOffsetMeters         float64      `json:"max_offset_meters"`
	Deviations              []Deviation  `json:"deviations"`
	Checkpoints             []Checkpoint `json:"checkpoints"`
	Summary                 Summary      `json:"summary"`
}

// Summarize counts checkpoints by status. Unknown statuses count as pending.
func Summarize(checkpoints []Checkpoint) Summary {
	s := Summary{Total: len(checkpoints)}
	for _, cp := range checkpoints {
		switch cp.Status {
		case StatusCompleted:
			s.Completed++
		case StatusOverdue:
			s.Overdue++
		case StatusSkipped:
			s.Skipped++
		default:
			s.Pending++
		}
		if cp.Required && cp.Status != StatusCompleted {
			s.RequiredOutstanding++
		}
	}
	return s
}
