package geo

import "fmt"

// FormatPoint renders a point as "lat, lng" with six decimals (~0.1 m).
func FormatPoint(p Point) string {
	return fmt.Sprintf("%.6f, %.6f", p.Lat, p.Lon)
}

// FormatDistance renders meters for display: whole meters below 1 km, otherwise km with one decimal.
func FormatDistance(meters float64) string {
	if meters < 1000 {
		return fmt.Sprintf("%.0f m", meters)
	}
	return fmt.Sprintf("%.1f km", meters/1000)
}
