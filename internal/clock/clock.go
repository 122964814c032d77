// Package clock implements the per-session countdown.
package clock

import (
	apperrors "pomodoro/zenpomo/internal/errors"
	"pomodoro/zenpomo/internal/model"
)

// Clock counts one session down in whole seconds. It is not safe for
// concurrent use; the owning sequencer serialises access.
type Clock struct {
	status    model.ClockStatus
	duration  int
	remaining int
	expired   bool
}

func New(durationSeconds int) *Clock {
	return &Clock{
		status:    model.StatusIdle,
		duration:  durationSeconds,
		remaining: durationSeconds,
	}
}

func (c *Clock) Status() model.ClockStatus {
	return c.status
}

func (c *Clock) Remaining() int {
	return c.remaining
}

func (c *Clock) Duration() int {
	return c.duration
}

// Expired reports whether expiry has already been signalled for this
// session instance.
func (c *Clock) Expired() bool {
	return c.expired
}

func (c *Clock) Start() error {
	if c.status != model.StatusIdle && c.status != model.StatusPaused {
		return apperrors.InvalidTransition("start", string(c.status))
	}
	c.status = model.StatusRunning
	return nil
}

func (c *Clock) Pause() error {
	if c.status != model.StatusRunning {
		return apperrors.InvalidTransition("pause", string(c.status))
	}
	c.status = model.StatusPaused
	return nil
}

// Reset reloads the full duration and returns to idle. Resetting an idle
// clock only reloads the duration.
func (c *Clock) Reset(durationSeconds int) error {
	if c.status == model.StatusFinished {
		return apperrors.InvalidTransition("reset", string(c.status))
	}
	c.load(durationSeconds)
	c.status = model.StatusIdle
	return nil
}

// Begin loads a new session and runs it immediately.
func (c *Clock) Begin(durationSeconds int) {
	c.load(durationSeconds)
	c.status = model.StatusRunning
}

// Finish stops the clock for good. Only a new Begin or Reload leaves it.
func (c *Clock) Finish() {
	c.status = model.StatusFinished
	c.remaining = 0
	c.expired = true
}

// Reload puts the clock back to idle with a new duration from any state.
func (c *Clock) Reload(durationSeconds int) {
	c.load(durationSeconds)
	c.status = model.StatusIdle
}

// Tick removes one second. It returns true exactly once, on the tick that
// reaches zero. Ticks at zero are no-ops.
func (c *Clock) Tick() (bool, error) {
	if c.status != model.StatusRunning {
		return false, apperrors.InvalidTransition("tick", string(c.status))
	}
	if c.remaining <= 0 {
		return false, nil
	}
	c.remaining--
	if c.remaining > 0 || c.expired {
		return false, nil
	}
	c.expired = true
	return true, nil
}

func (c *Clock) load(durationSeconds int) {
	c.duration = durationSeconds
	c.remaining = durationSeconds
	c.expired = false
}
