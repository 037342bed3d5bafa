package maintenance

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"geotrail/pkg/config"
	"geotrail/pkg/db"
	"geotrail/pkg/geo"
	"geotrail/pkg/geofence"
	"geotrail/pkg/store"
)

// fencesMTimeKey records the modification time of the last imported fence CSV.
const fencesMTimeKey = "fences_csv_mtime"

// Run executes startup maintenance: fence import and journal pruning.
// Failures are logged and do not block startup.
func Run(ctx context.Context, s store.StateStore, d *db.DB, mon *geofence.Monitor, csvPath string, retention time.Duration) error {
	slog.Info("Starting database maintenance...")

	if csvPath != "" && mon != nil {
		if n, err := ImportFences(ctx, s, mon, csvPath); err != nil {
			slog.Error("Fence import failed", "error", err)
		} else if n > 0 {
			slog.Info("Fence import completed", "count", n)
		}
	}

	if retention > 0 {
		events, reports, err := d.PruneJournal(retention)
		if err != nil {
			slog.Error("Journal pruning failed", "error", err)
		} else {
			slog.Info("Journal pruning completed", "events", events, "reports", reports)
		}
	}

	return nil
}

// ImportFences loads circular fences from a CSV file with the columns
// ID (optional), Name, Latitude, Longitude, Radius. Radius accepts units
// such as "500m" or "2km". A missing file is not an error.
func ImportFences(ctx context.Context, s store.StateStore, mon *geofence.Monitor, csvPath string) (int, error) {
	info, err := os.Stat(csvPath)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to stat csv: %w", err)
	}

	f, err := os.Open(csvPath)
	if err != nil {
		return 0, fmt.Errorf("failed to open csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)

	headers, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("failed to read header: %w", err)
	}

	// Handle potential BOM (Byte Order Mark) at start of file
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], "\ufeff")
	}

	idxMap := make(map[string]int)
	for i, h := range headers {
		idxMap[strings.ToLower(strings.TrimSpace(h))] = i
	}
	slog.Debug("Fence CSV header map", "idxMap", idxMap)

	count, err := processFenceRows(reader, idxMap, mon)
	if err != nil {
		return count, err
	}

	// The monitor is in-memory, so the import runs on every start; the mtime
	// is kept so operators can see which file version was loaded.
	fileMTime := info.ModTime().UTC().Format(time.RFC3339)
	if err := s.SetState(ctx, fencesMTimeKey, fileMTime); err != nil {
		return count, fmt.Errorf("failed to update state: %w", err)
	}

	return count, nil
}

func processFenceRows(reader *csv.Reader, idxMap map[string]int, mon *geofence.Monitor) (int, error) {
	get := func(row []string, col string) string {
		if i, ok := idxMap[col]; ok && i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	count := 0
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return count, fmt.Errorf("csv read error: %w", err)
		}

		lat, errLat := strconv.ParseFloat(get(record, "latitude"), 64)
		lon, errLon := strconv.ParseFloat(get(record, "longitude"), 64)
		radius, errRad := parseRadius(get(record, "radius"))
		if errLat != nil || errLon != nil || errRad != nil {
			slog.Warn("Skipping malformed fence row", "line", line)
			continue
		}

		fence := geofence.Geofence{
			ID:           get(record, "id"),
			Name:         get(record, "name"),
			Center:       geo.Point{Lat: lat, Lon: lon},
			RadiusMeters: radius,
		}
		if _, err := mon.Add(fence); err != nil {
			slog.Warn("Skipping invalid fence row", "line", line, "error", err)
			continue
		}
		count++
	}
	return count, nil
}

func parseRadius(s string) (float64, error) {
	if strings.TrimSpace(s) == "" {
		return 0, fmt.Errorf("missing radius")
	}
	return config.ParseDistance(s)
}
