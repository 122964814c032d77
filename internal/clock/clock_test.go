package clock

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "pomodoro/zenpomo/internal/errors"
	"pomodoro/zenpomo/internal/model"
)

func TestNewIsIdleWithFullDuration(t *testing.T) {
	c := New(90)
	assert.Equal(t, model.StatusIdle, c.Status())
	assert.Equal(t, 90, c.Remaining())
	assert.Equal(t, 90, c.Duration())
}

func TestStartPauseResume(t *testing.T) {
	c := New(5)
	require.NoError(t, c.Start())
	assert.Equal(t, model.StatusRunning, c.Status())

	_, err := c.Tick()
	require.NoError(t, err)
	require.NoError(t, c.Pause())
	assert.Equal(t, model.StatusPaused, c.Status())
	assert.Equal(t, 4, c.Remaining())

	require.NoError(t, c.Start())
	assert.Equal(t, model.StatusRunning, c.Status())
	assert.Equal(t, 4, c.Remaining())
}

func TestInvalidTransitions(t *testing.T) {
	c := New(5)
	assert.True(t, errors.Is(c.Pause(), apperrors.ErrInvalidTransition))

	_, err := c.Tick()
	assert.True(t, errors.Is(err, apperrors.ErrInvalidTransition))

	require.NoError(t, c.Start())
	assert.True(t, errors.Is(c.Start(), apperrors.ErrInvalidTransition))

	c.Finish()
	assert.True(t, errors.Is(c.Start(), apperrors.ErrInvalidTransition))
	assert.True(t, errors.Is(c.Reset(5), apperrors.ErrInvalidTransition))
}

func TestTickPausedDoesNotDecrement(t *testing.T) {
	c := New(3)
	require.NoError(t, c.Start())
	require.NoError(t, c.Pause())

	_, err := c.Tick()
	require.Error(t, err)
	assert.Equal(t, 3, c.Remaining())
}

func TestCountdownMonotonic(t *testing.T) {
	c := New(4)
	require.NoError(t, c.Start())

	previous := c.Remaining()
	for i := 0; i < 10; i++ {
		_, err := c.Tick()
		require.NoError(t, err)
		assert.LessOrEqual(t, c.Remaining(), previous)
		assert.GreaterOrEqual(t, c.Remaining(), 0)
		previous = c.Remaining()
	}
	assert.Equal(t, 0, c.Remaining())
}

func TestExpiryFiresExactlyOnce(t *testing.T) {
	c := New(2)
	require.NoError(t, c.Start())

	fired := 0
	for i := 0; i < 6; i++ {
		expired, err := c.Tick()
		require.NoError(t, err)
		if expired {
			fired++
		}
	}
	assert.Equal(t, 1, fired)
	assert.True(t, c.Expired())
}

func TestBeginClearsExpiry(t *testing.T) {
	c := New(1)
	require.NoError(t, c.Start())
	expired, err := c.Tick()
	require.NoError(t, err)
	require.True(t, expired)

	c.Begin(1)
	assert.Equal(t, model.StatusRunning, c.Status())
	assert.False(t, c.Expired())
	expired, err = c.Tick()
	require.NoError(t, err)
	assert.True(t, expired)
}

func TestResetReloadsDuration(t *testing.T) {
	c := New(10)
	require.NoError(t, c.Start())
	_, _ = c.Tick()
	_, _ = c.Tick()

	require.NoError(t, c.Reset(10))
	assert.Equal(t, model.StatusIdle, c.Status())
	assert.Equal(t, 10, c.Remaining())

	require.NoError(t, c.Reset(10))
	assert.Equal(t, model.StatusIdle, c.Status())
	assert.Equal(t, 10, c.Remaining())
}
