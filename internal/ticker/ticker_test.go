package ticker

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManualOnlyFiresWhileRunning(t *testing.T) {
	m := NewManual()
	var ticks int
	assert.False(t, m.Fire())

	require.NoError(t, m.Start(func() { ticks++ }))
	require.NoError(t, m.Start(func() { ticks += 100 }))
	assert.True(t, m.Fire())
	assert.True(t, m.Fire())

	m.Stop()
	m.Stop()
	assert.False(t, m.Fire())
	assert.Equal(t, 2, ticks)

	starts, stops := m.Counts()
	assert.Equal(t, 1, starts)
	assert.Equal(t, 1, stops)
}

func TestCronSourceTicksAndStops(t *testing.T) {
	if testing.Short() {
		t.Skip("waits on the wall clock")
	}
	s := NewCronSource(time.Second, zerolog.Nop())
	var ticks atomic.Int32

	require.NoError(t, s.Start(func() { ticks.Add(1) }))
	assert.True(t, s.Running())
	require.Eventually(t, func() bool { return ticks.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)

	s.Stop()
	assert.False(t, s.Running())
	stopped := ticks.Load()
	time.Sleep(1200 * time.Millisecond)
	assert.Equal(t, stopped, ticks.Load())
}

func TestFixedDelayDoesNotRound(t *testing.T) {
	at := time.Date(2026, 6, 2, 9, 0, 0, 900*int(time.Millisecond), time.UTC)
	assert.Equal(t, at.Add(time.Second), fixedDelay(time.Second).Next(at))
}

func TestCronSourceFirstTickWaitsFullInterval(t *testing.T) {
	if testing.Short() {
		t.Skip("waits on the wall clock")
	}
	s := NewCronSource(time.Second, zerolog.Nop())
	defer s.Stop()

	first := make(chan time.Time, 1)
	started := time.Now()
	require.NoError(t, s.Start(func() {
		select {
		case first <- time.Now():
		default:
		}
	}))

	select {
	case at := <-first:
		assert.GreaterOrEqual(t, at.Sub(started), time.Second)
	case <-time.After(3 * time.Second):
		t.Fatal("no tick within 3s")
	}
}

func TestCronSourceClampsInterval(t *testing.T) {
	s := NewCronSource(10*time.Millisecond, zerolog.Nop())
	assert.Equal(t, time.Second, s.interval)
	s.Stop()
}
