// Package engine owns the plan state machine: it walks a roadmap session by
// session, counts completed focus sessions and emits one completion record
// per plan.
package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/unicode/norm"

	"pomodoro/zenpomo/internal/clock"
	"pomodoro/zenpomo/internal/completion"
	apperrors "pomodoro/zenpomo/internal/errors"
	"pomodoro/zenpomo/internal/model"
	"pomodoro/zenpomo/internal/roadmap"
)

// HistoryStore receives each completion record exactly once.
type HistoryStore interface {
	Save(ctx context.Context, record model.CompletionRecord) error
}

// Notifier plays cues. Implementations must return immediately.
type Notifier interface {
	Notify(cue model.Cue, message string)
}

// State is a copy of the sequencer state; mutating it has no effect.
type State struct {
	Configuration       model.Configuration     `json:"configuration"`
	Roadmap             []model.SessionKind     `json:"roadmap"`
	Position            int                     `json:"position"`
	Kind                model.SessionKind       `json:"kind"`
	CompletedFocusCount int                     `json:"completedFocusCount"`
	Status              model.ClockStatus       `json:"status"`
	SecondsRemaining    int                     `json:"secondsRemaining"`
	DurationSeconds     int                     `json:"durationSeconds"`
	GoalName            string                  `json:"goalName"`
	LastRecord          *model.CompletionRecord `json:"lastRecord,omitempty"`
}

// Sequencer is not safe for concurrent use. A single control flow must own
// it; see service.PomodoroService.
type Sequencer struct {
	cfg          model.Configuration
	roadmap      roadmap.Roadmap
	position     int
	completed    int
	focusCounted bool
	goal         string
	clock        *clock.Clock
	announced    bool
	lastRecord   *model.CompletionRecord

	store    HistoryStore
	notifier Notifier
	recorder *completion.Recorder
	logger   zerolog.Logger
}

type Option func(*Sequencer)

func WithHistoryStore(store HistoryStore) Option {
	return func(s *Sequencer) {
		s.store = store
	}
}

func WithNotifier(notifier Notifier) Option {
	return func(s *Sequencer) {
		s.notifier = notifier
	}
}

func WithRecorder(recorder *completion.Recorder) Option {
	return func(s *Sequencer) {
		s.recorder = recorder
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Sequencer) {
		s.logger = logger
	}
}

func New(cfg model.Configuration, opts ...Option) (*Sequencer, error) {
	s := &Sequencer{
		recorder: completion.NewRecorder(),
		logger:   log.Logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.load(cfg); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Sequencer) Status() model.ClockStatus {
	return s.clock.Status()
}

func (s *Sequencer) Configuration() model.Configuration {
	return s.cfg
}

func (s *Sequencer) Roadmap() roadmap.Roadmap {
	return s.roadmap
}

func (s *Sequencer) Position() int {
	return s.position
}

func (s *Sequencer) CompletedFocusCount() int {
	return s.completed
}

func (s *Sequencer) GoalName() string {
	return s.goal
}

func (s *Sequencer) State() State {
	state := State{
		Configuration:       s.cfg,
		Roadmap:             s.roadmap.Kinds(),
		Position:            s.position,
		Kind:                s.currentKind(),
		CompletedFocusCount: s.completed,
		Status:              s.clock.Status(),
		SecondsRemaining:    s.clock.Remaining(),
		DurationSeconds:     s.clock.Duration(),
		GoalName:            s.goal,
	}
	if s.lastRecord != nil {
		record := *s.lastRecord
		state.LastRecord = &record
	}
	return state
}

// SetGoal names the plan objective. On a finished plan it also starts a
// fresh plan from the current configuration.
func (s *Sequencer) SetGoal(name string) error {
	name = norm.NFC.String(strings.TrimSpace(name))
	if name == "" {
		return apperrors.InvalidInput("invalid_goal", "goal name must not be empty")
	}
	if s.clock.Status() == model.StatusFinished {
		if err := s.load(s.cfg); err != nil {
			return err
		}
	}
	s.goal = name
	return nil
}

// Start runs the current session. A fresh session needs a goal first.
func (s *Sequencer) Start() error {
	status := s.clock.Status()
	if status == model.StatusIdle && s.goal == "" {
		return apperrors.GoalRequired()
	}
	if err := s.clock.Start(); err != nil {
		return err
	}
	s.logger.Debug().Int("position", s.position).Str("kind", string(s.currentKind())).Msg("session started")
	return nil
}

func (s *Sequencer) Pause() error {
	if err := s.clock.Pause(); err != nil {
		return err
	}
	s.logger.Debug().Int("position", s.position).Int("remaining", s.clock.Remaining()).Msg("session paused")
	return nil
}

// Tick advances the countdown by one second and moves to the next session
// when the current one expires. The record is non-nil when the tick ended
// the plan.
func (s *Sequencer) Tick(ctx context.Context) (*model.CompletionRecord, error) {
	expired, err := s.clock.Tick()
	if err != nil {
		return nil, err
	}
	if !expired {
		return nil, nil
	}
	return s.Advance(ctx)
}

// Advance leaves the current session. Focus sessions are credited on the
// way out. Past the last entry the plan finishes and the record is returned.
// Like Start, leaving an idle session needs a goal.
func (s *Sequencer) Advance(ctx context.Context) (*model.CompletionRecord, error) {
	switch s.clock.Status() {
	case model.StatusFinished:
		return nil, apperrors.InvalidTransition("advance", string(model.StatusFinished))
	case model.StatusIdle:
		if s.goal == "" {
			return nil, apperrors.GoalRequired()
		}
	}

	s.creditFocus()
	next := s.position + 1
	if next >= s.roadmap.Len() {
		return s.finish(ctx)
	}

	s.position = next
	s.focusCounted = false
	kind := s.roadmap.At(next)
	s.clock.Begin(s.cfg.DurationFor(kind))
	s.logger.Info().
		Int("position", next).
		Str("kind", string(kind)).
		Int("completed_focus", s.completed).
		Msg("advanced to next session")
	s.notify(model.CueSessionAdvance, fmt.Sprintf("%s (%d/%d)", kind.Label(), next+1, s.roadmap.Len()))
	return nil, nil
}

// CompleteEarly ends the whole plan now. An in-progress focus session counts
// as completed.
func (s *Sequencer) CompleteEarly(ctx context.Context) (*model.CompletionRecord, error) {
	status := s.clock.Status()
	if status == model.StatusFinished || status == model.StatusIdle {
		return nil, apperrors.InvalidTransition("complete", string(status))
	}
	s.creditFocus()
	return s.finish(ctx)
}

// ResetCurrentSession reloads the current session without moving.
func (s *Sequencer) ResetCurrentSession() error {
	return s.clock.Reset(s.cfg.DurationFor(s.currentKind()))
}

// Restart abandons the plan. A nil cfg keeps the current configuration.
func (s *Sequencer) Restart(cfg *model.Configuration) error {
	next := s.cfg
	if cfg != nil {
		next = *cfg
	}
	if err := s.load(next); err != nil {
		return err
	}
	s.goal = ""
	s.logger.Debug().Int("roadmap_len", s.roadmap.Len()).Msg("plan restarted")
	return nil
}

func (s *Sequencer) load(cfg model.Configuration) error {
	r, err := roadmap.Generate(cfg)
	if err != nil {
		return err
	}
	s.cfg = cfg
	s.roadmap = r
	s.position = 0
	s.completed = 0
	s.focusCounted = false
	s.announced = false
	s.lastRecord = nil
	duration := cfg.DurationFor(r.At(0))
	if s.clock == nil {
		s.clock = clock.New(duration)
	} else {
		s.clock.Reload(duration)
	}
	return nil
}

func (s *Sequencer) currentKind() model.SessionKind {
	return s.roadmap.At(s.position)
}

func (s *Sequencer) creditFocus() {
	if s.currentKind() == model.KindFocus && !s.focusCounted {
		s.completed++
		s.focusCounted = true
	}
}

func (s *Sequencer) finish(ctx context.Context) (*model.CompletionRecord, error) {
	record := s.recorder.Record(s.goal, s.completed, s.cfg)
	s.clock.Finish()
	s.lastRecord = &record

	s.logger.Info().
		Str("record_id", record.ID).
		Str("goal", record.Name).
		Int("completed_focus", record.TotalFocusSessionsCompleted).
		Msg("plan finished")

	if !s.announced {
		s.announced = true
		s.notify(model.CuePlanComplete, "Goal complete: "+record.Name)
	}

	if s.store == nil {
		return &record, nil
	}
	if err := s.store.Save(ctx, record); err != nil {
		s.logger.Error().Err(err).Str("record_id", record.ID).Msg("failed to save completion record")
		return &record, apperrors.CollaboratorFailure("history_store", err)
	}
	return &record, nil
}

func (s *Sequencer) notify(cue model.Cue, message string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(cue, message)
}
