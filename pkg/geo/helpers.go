package geo

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// toOrb converts a Point to orb's [lon, lat] order.
func toOrb(p Point) orb.Point {
	return orb.Point{p.Lon, p.Lat}
}

// toRing builds a closed orb ring from the vertices.
func toRing(points []Point) orb.Ring {
	ring := make(orb.Ring, 0, len(points)+1)
	for _, p := range points {
		ring = append(ring, toOrb(p))
	}
	if len(ring) > 0 && !ring[0].Equal(ring[len(ring)-1]) {
		ring = append(ring, ring[0])
	}
	return ring
}

// toLineString builds an orb line string from the points.
func toLineString(points []Point) orb.LineString {
	ls := make(orb.LineString, 0, len(points))
	for _, p := range points {
		ls = append(ls, toOrb(p))
	}
	return ls
}

// localXY projects q into an equirectangular frame in meters centred on origin.
func localXY(origin, q Point) orb.Point {
	k := EarthRadius * math.Pi / 180
	dLon := NormalizeAngle(q.Lon - origin.Lon)
	return orb.Point{dLon * k * math.Cos(origin.Lat*math.Pi/180), (q.Lat - origin.Lat) * k}
}

// DistanceToSegment returns the distance in meters from p to the segment a-b.
// The segment is measured in a local equirectangular frame centred on p, which
// holds for segments up to a few hundred kilometers away from the poles.
func DistanceToSegment(p, a, b Point) float64 {
	if SameLocation(a, b) {
		return Distance(p, a)
	}
	return planar.DistanceFromSegment(localXY(p, a), localXY(p, b), orb.Point{})
}

// DistanceToPolyline returns the shortest distance in meters from p to any
// segment of line. A single-point line degrades to Distance.
func DistanceToPolyline(p Point, line []Point) float64 {
	switch len(line) {
	case 0:
		return math.Inf(1)
	case 1:
		return Distance(p, line[0])
	}
	best := math.Inf(1)
	for i := 1; i < len(line); i++ {
		if d := DistanceToSegment(p, line[i-1], line[i]); d < best {
			best = d
		}
	}
	return best
}

// RingContains reports whether p falls inside the polygon described by boundary.
// Containment is planar in lat/lng space, which is adequate for city-scale zones.
func RingContains(boundary []Point, p Point) bool {
	if len(boundary) < 3 {
		return false
	}
	ring := toRing(boundary)
	pt := toOrb(p)
	if !ring.Bound().Contains(pt) {
		return false
	}
	return planar.RingContains(ring, pt)
}

// LineStringFeature wraps a sequence of points as a GeoJSON LineString feature.
func LineStringFeature(points []Point, props map[string]interface{}) *geojson.Feature {
	f := geojson.NewFeature(toLineString(points))
	for k, v := range props {
		f.Properties[k] = v
	}
	return f
}

// PolygonFeature wraps a ring of vertices as a GeoJSON Polygon feature.
func PolygonFeature(points []Point, props map[string]interface{}) *geojson.Feature {
	f := geojson.NewFeature(orb.Polygon{toRing(points)})
	for k, v := range props {
		f.Properties[k] = v
	}
	return f
}
