package route

import (
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"geotrail/pkg/geo"
	"geotrail/pkg/trajectory"
)

// Thresholds grade point-wise offsets in meters. Offsets at or below Record
// are not reported; below Medium is low, below High is medium, otherwise high.
type Thresholds struct {
	Record float64 `json:"record" yaml:"record"`
	Medium float64 `json:"medium" yaml:"medium"`
	High   float64 `json:"high" yaml:"high"`
}

// DefaultThresholds returns 50 m / 150 m / 300 m.
func DefaultThresholds() Thresholds {
	return Thresholds{Record: 50, Medium: 150, High: 300}
}

// Grade returns the severity for an offset and whether it is reported at all.
func (t Thresholds) Grade(meters float64) (Severity, bool) {
	switch {
	case meters <= t.Record:
		return "", false
	case meters < t.Medium:
		return SeverityLow, true
	case meters < t.High:
		return SeverityMedium, true
	default:
		return SeverityHigh, true
	}
}

// Analyzer holds the comparison tuning.
type Analyzer struct {
	FuelRatePerKm float64
	Thresholds    Thresholds
}

// NewAnalyzer returns an Analyzer with the default fuel rate and thresholds.
func NewAnalyzer() Analyzer {
	return Analyzer{
		FuelRatePerKm: DefaultFuelRatePerKm,
		Thresholds:    DefaultThresholds(),
	}
}

// Analyze compares planned and actual using the default Analyzer.
func Analyze(planned, actual trajectory.Path, checkpoints []Checkpoint, trip Trip) ComplianceResult {
	return NewAnalyzer().Analyze(planned, actual, checkpoints, trip)
}

// Analyze computes distances, fuel, speed and deviations for a trip.
func (a Analyzer) Analyze(planned, actual trajectory.Path, checkpoints []Checkpoint, trip Trip) ComplianceResult {
	total := pathLength(actual)
	plannedLen := pathLength(planned)
	totalKm := total / 1000

	res := ComplianceResult{
		CompliancePercentage:    trip.CompliancePercentage,
		TotalDistanceMeters:     total,
		PlannedDistanceMeters:   plannedLen,
		DeviationDistanceMeters: math.Abs(total - plannedLen),
		FuelLiters:              totalKm * a.FuelRatePerKm,
		Deviations:              []Deviation{},
		Checkpoints:             append([]Checkpoint{}, checkpoints...),
		Summary:                 Summarize(checkpoints),
	}

	if hours := trip.Duration.Hours(); hours > 0 {
		res.AverageSpeedKmh = totalKm / hours
	}

	if res.AverageSpeedKmh > 0 && !trip.StartedAt.IsZero() {
		remainingKm := math.Max(plannedLen-total, 0) / 1000
		eta := trip.StartedAt.Add(trip.Duration)
		eta = eta.Add(time.Duration(remainingKm / res.AverageSpeedKmh * float64(time.Hour)))
		res.EstimatedArrival = eta
	}

	offsets := a.offsets(planned, actual)
	if len(offsets) > 0 {
		res.MeanOffsetMeters = stat.Mean(offsets, nil)
		res.MaxOffsetMeters = floats.Max(offsets)
	}

	n := actual.Len()
	for i, off := range offsets {
		sev, ok := a.Thresholds.Grade(off)
		if !ok {
			continue
		}
		res.Deviations = append(res.Deviations, Deviation{
			Location:       actual.At(i),
			DistanceMeters: off,
			Severity:       sev,
			Timestamp:      sampleTime(trip, i, n),
		})
	}

	return res
}

// pathLength sums consecutive haversine hops.
func pathLength(p trajectory.Path) float64 {
	if p.Len() < 2 {
		return 0
	}
	hops := make([]float64, p.Len()-1)
	for i := 1; i < p.Len(); i++ {
		hops[i-1] = geo.Distance(p.At(i-1), p.At(i))
	}
	return floats.Sum(hops)
}

// offsets returns, for each actual sample, the distance to the planned polyline.
func (a Analyzer) offsets(planned, actual trajectory.Path) []float64 {
	if planned.Len() == 0 || actual.Len() == 0 {
		return nil
	}
	line := planned.Points()
	out := make([]float64, actual.Len())
	for i := 0; i < actual.Len(); i++ {
		out[i] = geo.DistanceToPolyline(actual.At(i), line)
	}
	return out
}

// sampleTime spreads samples linearly over the trip.
func sampleTime(trip Trip, i, n int) time.Time {
	if trip.StartedAt.IsZero() {
		return time.Time{}
	}
	if n < 2 || trip.Duration <= 0 {
		return trip.StartedAt
	}
	frac := float64(i) / float64(n-1)
	return trip.StartedAt.Add(time.Duration(frac * float64(trip.Duration)))
}
