package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"pomodoro/zenpomo/internal/completion"
	"pomodoro/zenpomo/internal/engine"
	apperrors "pomodoro/zenpomo/internal/errors"
	"pomodoro/zenpomo/internal/model"
	"pomodoro/zenpomo/internal/repository"
	"pomodoro/zenpomo/internal/ticker"
)

const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 200
)

var ErrNotRunning = errors.New("pomodoro service is not running")

// PomodoroService owns a Sequencer and serialises every command and tick
// through the goroutine started by Run.
type PomodoroService struct {
	seq          *engine.Sequencer
	source       ticker.Source
	history      *repository.HistoryRepository
	historyLimit int
	logger       zerolog.Logger
	now          func() time.Time

	commands chan command
	ticks    chan struct{}
	updates  chan StateView
	done     chan struct{}

	runOnce    sync.Once
	sourceLive bool
}

type StateView struct {
	engine.State
	Label      string    `json:"label"`
	Countdown  string    `json:"countdown"`
	ServerTime time.Time `json:"serverTime"`
}

// StatusLine renders the view as one terminal line.
func (v StateView) StatusLine() string {
	if v.Status == model.StatusFinished {
		name := v.GoalName
		if v.LastRecord != nil {
			name = v.LastRecord.Name
		}
		return fmt.Sprintf("Done: %s, %d focus sessions", name, v.CompletedFocusCount)
	}

	line := fmt.Sprintf("%s  %s  %d/%d", v.Countdown, v.Label, v.Position+1, len(v.Roadmap))
	if v.GoalName != "" {
		line += "  " + v.GoalName
	}
	if v.Status == model.StatusPaused {
		line += "  (paused)"
	}
	return line
}

// FormatCountdown renders seconds as mm:ss. Hours roll into the minutes.
func FormatCountdown(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

type command struct {
	restartSource bool
	fn            func(ctx context.Context) error
	result        chan reply
}

type reply struct {
	view StateView
	err  error
}

type Option func(*PomodoroService)

func WithHistoryLimit(limit int) Option {
	return func(s *PomodoroService) {
		if limit > 0 && limit <= MaxHistoryLimit {
			s.historyLimit = limit
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *PomodoroService) {
		s.logger = logger
	}
}

func NewPomodoroService(
	seq *engine.Sequencer,
	source ticker.Source,
	history *repository.HistoryRepository,
	opts ...Option,
) *PomodoroService {
	s := &PomodoroService{
		seq:          seq,
		source:       source,
		history:      history,
		historyLimit: DefaultHistoryLimit,
		logger:       zerolog.Nop(),
		now:          time.Now,
		commands:     make(chan command),
		ticks:        make(chan struct{}, 1),
		updates:      make(chan StateView, 1),
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run processes commands and ticks until ctx is cancelled. It may only be
// called once.
func (s *PomodoroService) Run(ctx context.Context) error {
	started := false
	s.runOnce.Do(func() { started = true })
	if !started {
		return errors.New("pomodoro service already ran")
	}
	defer close(s.done)
	defer s.stopSource()

	s.logger.Debug().Int("roadmap_len", s.seq.Roadmap().Len()).Msg("pomodoro loop started")
	s.publish()

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug().Msg("pomodoro loop stopped")
			return nil
		case cmd := <-s.commands:
			err := cmd.fn(ctx)
			s.syncSource(cmd.restartSource)
			cmd.result <- reply{view: s.publish(), err: err}
		case <-s.ticks:
			s.handleTick(ctx)
		}
	}
}

// Updates delivers the latest state after every change. Slow readers only
// see the most recent view.
func (s *PomodoroService) Updates() <-chan StateView {
	return s.updates
}

func (s *PomodoroService) SetGoal(ctx context.Context, name string) (*StateView, error) {
	return s.exec(ctx, false, func(context.Context) error {
		return s.seq.SetGoal(name)
	})
}

func (s *PomodoroService) Start(ctx context.Context) (*StateView, error) {
	return s.exec(ctx, false, func(context.Context) error {
		return s.seq.Start()
	})
}

func (s *PomodoroService) Pause(ctx context.Context) (*StateView, error) {
	return s.exec(ctx, false, func(context.Context) error {
		return s.seq.Pause()
	})
}

// Toggle starts an idle or paused session and pauses a running one.
func (s *PomodoroService) Toggle(ctx context.Context) (*StateView, error) {
	return s.exec(ctx, false, func(context.Context) error {
		if s.seq.Status() == model.StatusRunning {
			return s.seq.Pause()
		}
		return s.seq.Start()
	})
}

func (s *PomodoroService) Reset(ctx context.Context) (*StateView, error) {
	return s.exec(ctx, false, func(context.Context) error {
		return s.seq.ResetCurrentSession()
	})
}

// Skip leaves the current session immediately.
func (s *PomodoroService) Skip(ctx context.Context) (*StateView, error) {
	return s.exec(ctx, true, func(ctx context.Context) error {
		_, err := s.seq.Advance(ctx)
		return err
	})
}

func (s *PomodoroService) CompleteEarly(ctx context.Context) (*StateView, error) {
	return s.exec(ctx, false, func(ctx context.Context) error {
		_, err := s.seq.CompleteEarly(ctx)
		return err
	})
}

// Restart abandons the plan. A nil cfg keeps the current configuration.
func (s *PomodoroService) Restart(ctx context.Context, cfg *model.Configuration) (*StateView, error) {
	return s.exec(ctx, true, func(context.Context) error {
		return s.seq.Restart(cfg)
	})
}

// UpdateSettings applies a new configuration. The running plan is abandoned
// and rebuilt; the goal name survives.
func (s *PomodoroService) UpdateSettings(ctx context.Context, cfg model.Configuration) (*StateView, error) {
	return s.exec(ctx, true, func(context.Context) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		goal := s.seq.GoalName()
		if err := s.seq.Restart(&cfg); err != nil {
			return err
		}
		if goal != "" {
			if err := s.seq.SetGoal(goal); err != nil {
				return err
			}
		}
		s.logger.Info().Interface("configuration", cfg).Msg("settings applied")
		return nil
	})
}

// StartPlan replaces the plan with cfg, names it and starts the first
// session in one step.
func (s *PomodoroService) StartPlan(ctx context.Context, cfg model.Configuration, goal string) (*StateView, error) {
	return s.exec(ctx, true, func(context.Context) error {
		if err := s.seq.Restart(&cfg); err != nil {
			return err
		}
		if err := s.seq.SetGoal(goal); err != nil {
			return err
		}
		return s.seq.Start()
	})
}

func (s *PomodoroService) State(ctx context.Context) (*StateView, error) {
	return s.exec(ctx, false, func(context.Context) error { return nil })
}

func (s *PomodoroService) GetHistory(ctx context.Context, limit int) ([]model.CompletionRecord, error) {
	if limit <= 0 || limit > MaxHistoryLimit {
		limit = s.historyLimit
	}
	records, err := s.history.List(ctx, limit)
	if err != nil {
		return nil, apperrors.Internal("failed to get history")
	}
	return records, nil
}

func (s *PomodoroService) AllHistory(ctx context.Context) ([]model.CompletionRecord, error) {
	records, err := s.history.GetAll(ctx)
	if err != nil {
		return nil, apperrors.Internal("failed to get history")
	}
	return records, nil
}

func (s *PomodoroService) ClearHistory(ctx context.Context) error {
	if err := s.history.Clear(ctx); err != nil {
		return apperrors.Internal("failed to clear history")
	}
	s.logger.Info().Msg("history cleared")
	return nil
}

func (s *PomodoroService) DeleteHistory(ctx context.Context, id string) error {
	err := s.history.Delete(ctx, id)
	if err == repository.ErrNotFound {
		return apperrors.NotFound("record_not_found", "completion record not found")
	}
	if err != nil {
		return apperrors.Internal("failed to delete record")
	}
	return nil
}

// ImportHistory validates every record before writing any of them. Records
// with an existing id are replaced.
func (s *PomodoroService) ImportHistory(ctx context.Context, records []model.CompletionRecord) (int, error) {
	for i := range records {
		if err := validateRecord(&records[i]); err != nil {
			return 0, err
		}
	}
	if err := s.history.Import(ctx, records); err != nil {
		return 0, apperrors.Internal("failed to import history")
	}
	s.logger.Info().Int("records", len(records)).Msg("history imported")
	return len(records), nil
}

func validateRecord(record *model.CompletionRecord) error {
	if record.ID == "" {
		return apperrors.InvalidInput("invalid_record", "record id must not be empty")
	}
	if record.Name == "" {
		record.Name = completion.FallbackName
	}
	if _, err := time.Parse(completion.DateLayout, record.Date); err != nil {
		return apperrors.InvalidInput("invalid_record", fmt.Sprintf("record %s has invalid date %q", record.ID, record.Date))
	}
	if record.TotalFocusSessionsCompleted < 0 {
		return apperrors.InvalidInput("invalid_record", fmt.Sprintf("record %s has negative focus count", record.ID))
	}
	if err := record.Configuration.Validate(); err != nil {
		return err
	}
	if record.CreatedAt.IsZero() {
		parsed, _ := time.Parse(completion.DateLayout, record.Date)
		record.CreatedAt = parsed.UTC()
	}
	return nil
}

func (s *PomodoroService) exec(ctx context.Context, restartSource bool, fn func(ctx context.Context) error) (*StateView, error) {
	cmd := command{
		restartSource: restartSource,
		fn:            fn,
		result:        make(chan reply, 1),
	}

	select {
	case s.commands <- cmd:
	case <-s.done:
		return nil, ErrNotRunning
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	// The loop always answers an accepted command.
	r := <-cmd.result
	if r.err != nil {
		return nil, r.err
	}
	return &r.view, nil
}

func (s *PomodoroService) handleTick(ctx context.Context) {
	// Ticks queued before a pause or reset are stale.
	if s.seq.Status() != model.StatusRunning {
		return
	}
	record, err := s.seq.Tick(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("tick failed")
	}
	if record != nil {
		s.logger.Debug().Str("record_id", record.ID).Msg("plan completed by timer")
	}
	s.syncSource(false)
	s.publish()
}

func (s *PomodoroService) onTick() {
	select {
	case s.ticks <- struct{}{}:
	default:
	}
}

// syncSource keeps the tick source running exactly while the clock runs.
func (s *PomodoroService) syncSource(restart bool) {
	running := s.seq.Status() == model.StatusRunning
	if s.sourceLive && (!running || restart) {
		s.stopSource()
	}
	if running && !s.sourceLive {
		if err := s.source.Start(s.onTick); err != nil {
			s.logger.Error().Err(err).Msg("failed to start tick source")
			return
		}
		s.sourceLive = true
	}
}

func (s *PomodoroService) stopSource() {
	if !s.sourceLive {
		return
	}
	s.source.Stop()
	s.sourceLive = false
	select {
	case <-s.ticks:
	default:
	}
}

// publish must only be called from the loop goroutine.
func (s *PomodoroService) publish() StateView {
	view := s.toStateView(s.seq.State())
	select {
	case <-s.updates:
	default:
	}
	s.updates <- view
	return view
}

func (s *PomodoroService) toStateView(state engine.State) StateView {
	return StateView{
		State:      state,
		Label:      state.Kind.Label(),
		Countdown:  FormatCountdown(state.SecondsRemaining),
		ServerTime: s.now().UTC(),
	}
}
