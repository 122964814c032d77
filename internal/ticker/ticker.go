// Package ticker provides the periodic tick sources that drive the session
// countdown.
package ticker

import (
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Source calls tick on a fixed cadence between Start and Stop. Start on a
// running source and Stop on a stopped one are no-ops.
type Source interface {
	Start(tick func()) error
	Stop()
}

// CronSource schedules ticks on a cron runner. Overlapping runs are skipped
// so at most one tick callback is in flight.
type CronSource struct {
	mu       sync.Mutex
	interval time.Duration
	logger   zerolog.Logger
	runner   *cron.Cron
}

func NewCronSource(interval time.Duration, logger zerolog.Logger) *CronSource {
	if interval < time.Second {
		interval = time.Second
	}
	return &CronSource{interval: interval, logger: logger}
}

func (s *CronSource) Start(tick func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.runner != nil {
		return nil
	}

	cl := cronLogger{logger: s.logger}
	runner := cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	runner.Schedule(fixedDelay(s.interval), cron.FuncJob(tick))
	runner.Start()
	s.runner = runner
	s.logger.Debug().Dur("interval", s.interval).Msg("tick source started")
	return nil
}

// Stop waits for an in-flight tick to return.
func (s *CronSource) Stop() {
	s.mu.Lock()
	runner := s.runner
	s.runner = nil
	s.mu.Unlock()
	if runner == nil {
		return
	}
	<-runner.Stop().Done()
	s.logger.Debug().Msg("tick source stopped")
}

func (s *CronSource) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runner != nil
}

// fixedDelay fires a full interval after the previous activation, including
// the first one after Start. cron.Every rounds down to the whole second.
type fixedDelay time.Duration

func (d fixedDelay) Next(t time.Time) time.Time {
	return t.Add(time.Duration(d))
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Trace().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}

// Manual delivers ticks only when Fire is called. Tests use it to drive the
// countdown without waiting on the wall clock.
type Manual struct {
	mu     sync.Mutex
	tick   func()
	starts int
	stops  int
}

func NewManual() *Manual {
	return &Manual{}
}

func (m *Manual) Start(tick func()) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tick != nil {
		return nil
	}
	m.tick = tick
	m.starts++
	return nil
}

func (m *Manual) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tick == nil {
		return
	}
	m.tick = nil
	m.stops++
}

// Fire delivers one tick and reports whether the source was running.
func (m *Manual) Fire() bool {
	m.mu.Lock()
	tick := m.tick
	m.mu.Unlock()
	if tick == nil {
		return false
	}
	tick()
	return true
}

func (m *Manual) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tick != nil
}

// Counts returns how many times the source was started and stopped.
func (m *Manual) Counts() (starts, stops int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.starts, m.stops
}
