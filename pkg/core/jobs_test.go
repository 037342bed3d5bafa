package core

import (
	"context"
	"testing"
	"time"
)

// TestBaseJob_LockUnlock tests the atomic lock behavior.
func TestBaseJob_LockUnlock(t *testing.T) {
	b := NewBaseJob("test")

	if !b.TryLock() {
		t.Fatal("First TryLock should succeed")
	}
	if !b.Running() {
		t.Error("Running should be true while locked")
	}
	if b.TryLock() {
		t.Error("Second TryLock should fail when already locked")
	}
	b.Unlock()
	if b.Running() {
		t.Error("Running should be false after Unlock")
	}
	if !b.TryLock() {
		t.Error("TryLock should succeed after Unlock")
	}
}

func TestBaseJob_Name(t *testing.T) {
	tests := []struct {
		name     string
		jobName  string
		wantName string
	}{
		{"Simple name", "TestJob", "TestJob"},
		{"Empty name", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBaseJob(tt.jobName)
			if got := b.Name(); got != tt.wantName {
				t.Errorf("Name() = %v, want %v", got, tt.wantName)
			}
		})
	}
}

// TestTimeJob_ShouldFire tests the time-based trigger logic.
func TestTimeJob_ShouldFire(t *testing.T) {
	runs := 0
	j := NewTimeJob("tick", time.Minute, func(context.Context) { runs++ })
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		now  time.Time
		run  bool
		want bool
	}{
		{"first check fires", t0, true, true},
		{"too soon", t0.Add(30 * time.Second), false, false},
		{"threshold reached", t0.Add(time.Minute), true, true},
		{"again too soon", t0.Add(90 * time.Second), false, false},
	}

	for _, tt := range tests {
		if got := j.ShouldFire(tt.now); got != tt.want {
			t.Errorf("%s: ShouldFire() = %v, want %v", tt.name, got, tt.want)
		}
		if tt.run {
			j.Run(context.Background(), tt.now)
		}
	}
	if runs != 2 {
		t.Errorf("expected 2 runs, got %d", runs)
	}
}

func TestTimeJob_NoReentry(t *testing.T) {
	j := NewTimeJob("busy", 0, func(context.Context) {})
	if !j.TryLock() {
		t.Fatal("TryLock failed")
	}
	if j.ShouldFire(time.Now()) {
		t.Error("a running job should not fire")
	}
	j.Unlock()
	if !j.ShouldFire(time.Now()) {
		t.Error("an idle job should fire")
	}
}
