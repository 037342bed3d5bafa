package geo

import "sync"

// TrackBuffer maintains a rolling window of live position samples and derives the ground track.
type TrackBuffer struct {
	mu         sync.RWMutex
	samples    []Point
	windowSize int
}

// NewTrackBuffer creates a new buffer with the specified sample window size.
func NewTrackBuffer(windowSize int) *TrackBuffer {
	if windowSize < 2 {
		windowSize = 2
	}
	return &TrackBuffer{
		windowSize: windowSize,
	}
}

// Push adds a new sample and returns the bearing from the oldest to the newest sample in the window.
// ok is false while the window holds fewer than 2 samples or spans zero distance.
func (b *TrackBuffer) Push(p Point) (bearing float64, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Repeated fixes carry no heading information.
	if n := len(b.samples); n > 0 && SameLocation(b.samples[n-1], p) {
		return b.trackLocked()
	}

	b.samples = append(b.samples, p)
	if len(b.samples) > b.windowSize {
		b.samples = b.samples[1:]
	}
	return b.trackLocked()
}

// Track returns the current ground track without adding a sample.
func (b *TrackBuffer) Track() (float64, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.trackLocked()
}

// Last returns the newest sample.
func (b *TrackBuffer) Last() (Point, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if len(b.samples) == 0 {
		return Point{}, false
	}
	return b.samples[len(b.samples)-1], true
}

func (b *TrackBuffer) trackLocked() (float64, bool) {
	if len(b.samples) < 2 {
		return 0, false
	}
	first, last := b.samples[0], b.samples[len(b.samples)-1]
	if SameLocation(first, last) {
		return 0, false
	}
	return Bearing(first, last), true
}

// Reset clears the buffer history.
func (b *TrackBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.samples = nil
}
