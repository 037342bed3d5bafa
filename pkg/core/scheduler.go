// Package core runs the background heartbeat: a ticker that evaluates
// housekeeping jobs such as fence reloads and journal pruning.
package core

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultInterval is the heartbeat used when none is configured.
const DefaultInterval = time.Second

// Scheduler manages the central heartbeat and scheduled jobs.
type Scheduler struct {
	interval time.Duration
	now      func() time.Time

	mu   sync.Mutex
	jobs []Job
	wg   sync.WaitGroup
}

// NewScheduler creates a new Scheduler.
func NewScheduler(interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{interval: interval, now: time.Now}
}

// AddJob registers a job.
func (s *Scheduler) AddJob(j Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, j)
}

// Start runs the main loop. It blocks until ctx is cancelled and then waits
// for running jobs to return.
func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	slog.Info("Scheduler started", "interval", s.interval)

	s.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			slog.Info("Scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	now := s.now()

	s.mu.Lock()
	jobs := append([]Job(nil), s.jobs...)
	s.mu.Unlock()

	for _, job := range jobs {
		if !job.ShouldFire(now) {
			continue
		}
		s.wg.Add(1)
		go func(j Job) {
			defer s.wg.Done()
			j.Run(ctx, now)
		}(job)
	}
}
