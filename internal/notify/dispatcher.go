// Package notify delivers audio and text cues without blocking the caller.
package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"pomodoro/zenpomo/internal/model"
)

const DefaultTimeout = 30 * time.Second

// Sink plays one cue. Sinks may block; the dispatcher runs them off the
// caller's goroutine.
type Sink interface {
	Play(ctx context.Context, cue model.Cue, message string) error
}

type Dispatcher struct {
	sinks   []Sink
	timeout time.Duration
	logger  zerolog.Logger
	wg      sync.WaitGroup
}

func NewDispatcher(logger zerolog.Logger, timeout time.Duration, sinks ...Sink) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Dispatcher{
		sinks:   sinks,
		timeout: timeout,
		logger:  logger,
	}
}

// Notify returns immediately. Sink errors and panics are logged and dropped.
func (d *Dispatcher) Notify(cue model.Cue, message string) {
	for _, sink := range d.sinks {
		d.wg.Add(1)
		go d.play(sink, cue, message)
	}
}

// Wait blocks until every dispatched cue has finished playing.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) play(sink Sink, cue model.Cue, message string) {
	defer d.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error().Str("cue", string(cue)).Str("panic", fmt.Sprint(r)).Msg("notification sink panicked")
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if err := sink.Play(ctx, cue, message); err != nil {
		d.logger.Warn().Err(err).Str("cue", string(cue)).Msg("notification failed")
	}
}
