// Package probe runs the startup checks that decide whether the service may
// begin accepting traffic.
package probe

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"
)

// DefaultTimeout bounds a single check when the probe sets none.
const DefaultTimeout = 5 * time.Second

// CheckFunc performs one check and returns nil when it passes.
type CheckFunc func(ctx context.Context) error

// Probe is a single startup check.
type Probe struct {
	Name     string
	Check    CheckFunc
	Critical bool // failure prevents startup
	Timeout  time.Duration
}

// Result holds the outcome of a single probe.
type Result struct {
	Probe    Probe
	Error    error
	Duration time.Duration
}

// Run executes the probes in order, each under its own timeout.
func Run(ctx context.Context, probes []Probe) []Result {
	results := make([]Result, len(probes))

	for i, p := range probes {
		timeout := p.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		checkCtx, cancel := context.WithTimeout(ctx, timeout)

		start := time.Now()
		err := p.Check(checkCtx)
		cancel()

		results[i] = Result{Probe: p, Error: err, Duration: time.Since(start)}
	}
	return results
}

// AnalyzeResults logs a PASS/FAIL line per probe and joins the errors of failed critical probes.
func AnalyzeResults(results []Result) error {
	var criticalErrors []error

	slog.Info("Startup Checks Summary")
	for _, r := range results {
		status := "PASS"
		if r.Error != nil {
			status = "FAIL"
		}
		msg := fmt.Sprintf("[%s] %-20s (%v)", status, r.Probe.Name, r.Duration.Round(time.Millisecond))

		if r.Error == nil {
			slog.Info(msg)
			continue
		}
		if !r.Probe.Critical {
			slog.Warn(msg, "error", r.Error)
			continue
		}
		slog.Error(msg, "error", r.Error)
		criticalErrors = append(criticalErrors, fmt.Errorf("%s: %w", r.Probe.Name, r.Error))
	}
	return errors.Join(criticalErrors...)
}

// Database checks that the connection answers and the journal tables exist.
func Database(conn *sql.DB) CheckFunc {
	return func(ctx context.Context) error {
		if err := conn.PingContext(ctx); err != nil {
			return err
		}
		for _, table := range []string{"persistent_state", "geofence_events", "route_reports"} {
			var n int
			err := conn.QueryRowContext(ctx, "SELECT count(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&n)
			if err != nil {
				return err
			}
			if n == 0 {
				return fmt.Errorf("table %s missing", table)
			}
		}
		return nil
	}
}

// FileReadable checks that path exists and can be opened. An empty path passes.
func FileReadable(path string) CheckFunc {
	return func(ctx context.Context) error {
		if path == "" {
			return nil
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		return f.Close()
	}
}
