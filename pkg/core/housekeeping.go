package core

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"geotrail/pkg/db"
	"geotrail/pkg/db/maintenance"
	"geotrail/pkg/geofence"
	"geotrail/pkg/store"
	"geotrail/pkg/watcher"
)

// FenceReloadJob re-imports the fence CSV whenever the file changes on disk.
type FenceReloadJob struct {
	BaseJob
	path     string
	watch    *watcher.Service
	st       store.StateStore
	mon      *geofence.Monitor
	every    time.Duration
	lastPoll atomic.Int64
}

// NewFenceReloadJob polls path every interval. The file's state at creation is
// the baseline, so the startup import is not repeated.
func NewFenceReloadJob(path string, every time.Duration, st store.StateStore, mon *geofence.Monitor) *FenceReloadJob {
	return &FenceReloadJob{
		BaseJob: NewBaseJob("FenceReload"),
		path:    path,
		watch:   watcher.NewService([]string{path}),
		st:      st,
		mon:     mon,
		every:   every,
	}
}

func (j *FenceReloadJob) ShouldFire(now time.Time) bool {
	if j.Running() || j.path == "" {
		return false
	}
	return now.UnixNano()-j.lastPoll.Load() >= int64(j.every)
}

func (j *FenceReloadJob) Run(ctx context.Context, now time.Time) {
	if !j.TryLock() {
		return
	}
	defer j.Unlock()

	j.lastPoll.Store(now.UnixNano())
	if len(j.watch.CheckChanged()) == 0 {
		return
	}

	n, err := maintenance.ImportFences(ctx, j.st, j.mon, j.path)
	if err != nil {
		slog.Error("FenceReloadJob: import failed", "path", j.path, "error", err)
		return
	}
	slog.Info("FenceReloadJob: fences reloaded", "path", j.path, "count", n)
}

// NewJournalPruneJob drops journal rows older than retention once per every.
func NewJournalPruneJob(d *db.DB, retention, every time.Duration) *TimeJob {
	return NewTimeJob("JournalPrune", every, func(ctx context.Context) {
		if retention <= 0 {
			return
		}
		events, reports, err := d.PruneJournal(retention)
		if err != nil {
			slog.Error("JournalPruneJob: prune failed", "error", err)
			return
		}
		if events > 0 || reports > 0 {
			slog.Info("JournalPruneJob: pruned", "events", events, "reports", reports)
		}
	})
}
