package playback

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_Lifecycle(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := NewManager(ctx, nil)
	a := m.Create(eastbound(t), Options{TickInterval: time.Hour})
	b := m.Create(eastbound(t), Options{TickInterval: time.Hour, Mode: ModePingPong})

	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, 2, m.Count())

	got, err := m.Get(a.ID())
	require.NoError(t, err)
	assert.Same(t, a, got)

	list := m.List()
	require.Len(t, list, 2)
	ids := []string{list[0].ID, list[1].ID}
	assert.ElementsMatch(t, []string{a.ID(), b.ID()}, ids)

	require.NoError(t, m.Stop(a.ID()))
	assert.False(t, a.State().Running)
	_, err = m.Get(a.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, m.Stop(a.ID()), ErrSessionNotFound)

	m.StopAll()
	assert.Zero(t, m.Count())
	assert.False(t, b.State().Running)
}

func TestManager_RestartRelaunchesFinishedSession(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub()
	m := NewManager(ctx, hub)
	s := m.Create(eastbound(t), Options{TickInterval: time.Millisecond})

	require.Eventually(t, func() bool { return !s.State().Running && !s.Active() }, 5*time.Second, time.Millisecond)

	events, unsubscribe := hub.Subscribe(s.ID(), 64)
	defer unsubscribe()

	_, err := m.Restart(s.ID(), eastbound(t))
	require.NoError(t, err)

	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev := <-events:
			if ev.Type == EventComplete {
				m.StopAll()
				return
			}
		case <-deadline:
			t.Fatal("restarted session never completed")
		}
	}
}

// blockingSink parks the first completion until release is closed.
type blockingSink struct {
	entered   chan struct{}
	release   chan struct{}
	completes atomic.Int32
}

func (b *blockingSink) OnPositionUpdate(Frame) {}

func (b *blockingSink) OnPlaybackComplete(string) {
	if b.completes.Add(1) == 1 {
		close(b.entered)
		<-b.release
	}
}

func TestManager_RestartDuringCompletion(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sink := &blockingSink{entered: make(chan struct{}), release: make(chan struct{})}
	m := NewManager(ctx, sink)
	defer m.StopAll()
	release := sync.OnceFunc(func() { close(sink.release) })
	defer release()

	s := m.Create(eastbound(t), Options{TickInterval: time.Millisecond})

	select {
	case <-sink.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("session never completed")
	}

	// The finished loop is still inside the sink while the restart lands.
	_, err := m.Restart(s.ID(), eastbound(t))
	require.NoError(t, err)
	release()

	require.Eventually(t, func() bool { return sink.completes.Load() >= 2 }, 5*time.Second, time.Millisecond,
		"restarted session must play through again")
	assert.False(t, s.State().Running)
}

func TestManager_RestartUnknown(t *testing.T) {
	m := NewManager(context.Background(), nil)
	_, err := m.Restart("missing", eastbound(t))
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
