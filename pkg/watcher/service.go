// Package watcher polls files for modification so config-adjacent data, such
// as the fence import CSV, can be reloaded without a restart.
package watcher

import (
	"log/slog"
	"os"
	"sync"
	"time"
)

// Service tracks the modification time of a set of files.
type Service struct {
	mu     sync.Mutex
	paths  []string
	mtimes map[string]time.Time
}

// NewService creates a watcher for paths. Empty entries are ignored. The
// current state of each file is the baseline, so nothing is reported until a
// file changes, appears, or disappears.
func NewService(paths []string) *Service {
	s := &Service{mtimes: make(map[string]time.Time)}
	for _, p := range paths {
		if p == "" {
			continue
		}
		s.paths = append(s.paths, p)
		s.mtimes[p] = modTime(p)
	}
	return s
}

// Paths returns the watched files.
func (s *Service) Paths() []string {
	return append([]string(nil), s.paths...)
}

// CheckChanged returns the files whose modification time differs from the
// previous check. A removed file reports once as changed.
func (s *Service) CheckChanged() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var changed []string
	for _, p := range s.paths {
		mt := modTime(p)
		if mt.Equal(s.mtimes[p]) {
			continue
		}
		s.mtimes[p] = mt
		changed = append(changed, p)
		if mt.IsZero() {
			slog.Warn("Watcher: file removed", "path", p)
		} else {
			slog.Info("Watcher: file changed", "path", p, "mtime", mt.Format(time.RFC3339))
		}
	}
	return changed
}

// modTime returns the zero time for missing or unreadable files.
func modTime(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return time.Time{}
	}
	return info.ModTime()
}
