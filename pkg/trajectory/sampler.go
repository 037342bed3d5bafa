package trajectory

import (
	"geotrail/pkg/geo"
)

// Densify interpolates pointsPerSegment equal steps between each pair of
// consecutive waypoints. Latitude and longitude are interpolated independently
// (planar), which is adequate for city-scale hops but not a great-circle path.
//
// The result holds exactly (len(waypoints)-1)*pointsPerSegment + 1 points and
// its endpoints are the original waypoints, bit for bit. pointsPerSegment < 1
// is clamped to 1, which returns the waypoints unchanged.
func Densify(waypoints []geo.Point, pointsPerSegment int) (Path, error) {
	if len(waypoints) < 2 {
		return Path{}, &InvalidPathError{Count: len(waypoints)}
	}
	if err := geo.ValidateAll(waypoints); err != nil {
		return Path{}, err
	}
	if pointsPerSegment < 1 {
		pointsPerSegment = 1
	}

	out := make([]geo.Point, 0, (len(waypoints)-1)*pointsPerSegment+1)
	for i := 0; i < len(waypoints)-1; i++ {
		a, b := waypoints[i], waypoints[i+1]
		// Waypoints are copied verbatim; only interior samples are computed.
		out = append(out, a)
		for s := 1; s < pointsPerSegment; s++ {
			t := float64(s) / float64(pointsPerSegment)
			out = append(out, geo.Point{
				Lat: a.Lat + (b.Lat-a.Lat)*t,
				Lon: a.Lon + (b.Lon-a.Lon)*t,
			})
		}
	}
	out = append(out, waypoints[len(waypoints)-1])

	return Path{points: out}, nil
}

// LookAheadBearing returns the bearing from the sample at index to the sample
// steps further along in direction dir, clamped to the path ends. At the far
// end, where no sample lies ahead, the bearing is taken from the sample behind
// so the heading does not collapse on the final tick. ok is false when the
// span has zero length and the bearing is undefined.
func LookAheadBearing(p Path, index, steps int, dir Direction) (float64, bool) {
	n := p.Len()
	if n < 2 || index < 0 || index >= n {
		return 0, false
	}
	if steps < 1 {
		steps = 1
	}

	from := index
	to := clamp(index+int(dir)*steps, 0, n-1)
	if to == from {
		// At the boundary in the travel direction: look back instead.
		from = clamp(index-int(dir)*steps, 0, n-1)
		to = index
	}

	a, b := p.points[from], p.points[to]
	if geo.SameLocation(a, b) {
		return 0, false
	}
	return geo.Bearing(a, b), true
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
