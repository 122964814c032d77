package model

import (
	"fmt"
	"time"

	apperrors "pomodoro/zenpomo/internal/errors"
)

type SessionKind string

const (
	KindFocus      SessionKind = "focus"
	KindShortBreak SessionKind = "short_break"
	KindLongBreak  SessionKind = "long_break"
)

// Label is the human readable name of a session kind.
func (k SessionKind) Label() string {
	switch k {
	case KindFocus:
		return "Focus"
	case KindShortBreak:
		return "Short break"
	case KindLongBreak:
		return "Long break"
	default:
		return string(k)
	}
}

type ClockStatus string

const (
	StatusIdle     ClockStatus = "idle"
	StatusRunning  ClockStatus = "running"
	StatusPaused   ClockStatus = "paused"
	StatusFinished ClockStatus = "finished"
)

type Cue string

const (
	CueSessionAdvance Cue = "session_advance"
	CuePlanComplete   Cue = "plan_complete"
)

const (
	DefaultFocusDurationSeconds      = 25 * 60
	DefaultShortBreakDurationSeconds = 5 * 60
	DefaultLongBreakDurationSeconds  = 15 * 60
	DefaultFocusRepsPerBlock         = 4
	DefaultLongBreakCount            = 0

	// MaxRoadmapLength bounds the sessions a single plan may hold.
	MaxRoadmapLength = 10000
)

// Configuration drives roadmap generation. Build it with NewConfiguration or
// call Validate on values decoded from storage.
type Configuration struct {
	FocusDurationSeconds      int `json:"focusDurationSeconds" yaml:"focus_duration_seconds"`
	ShortBreakDurationSeconds int `json:"shortBreakDurationSeconds" yaml:"short_break_duration_seconds"`
	LongBreakDurationSeconds  int `json:"longBreakDurationSeconds" yaml:"long_break_duration_seconds"`
	FocusRepsPerBlock         int `json:"focusRepsPerBlock" yaml:"focus_reps_per_block"`
	LongBreakCount            int `json:"longBreakCount" yaml:"long_break_count"`
}

func DefaultConfiguration() Configuration {
	return Configuration{
		FocusDurationSeconds:      DefaultFocusDurationSeconds,
		ShortBreakDurationSeconds: DefaultShortBreakDurationSeconds,
		LongBreakDurationSeconds:  DefaultLongBreakDurationSeconds,
		FocusRepsPerBlock:         DefaultFocusRepsPerBlock,
		LongBreakCount:            DefaultLongBreakCount,
	}
}

func NewConfiguration(focus, shortBreak, longBreak, repsPerBlock, longBreakCount int) (Configuration, error) {
	cfg := Configuration{
		FocusDurationSeconds:      focus,
		ShortBreakDurationSeconds: shortBreak,
		LongBreakDurationSeconds:  longBreak,
		FocusRepsPerBlock:         repsPerBlock,
		LongBreakCount:            longBreakCount,
	}
	if err := cfg.Validate(); err != nil {
		return Configuration{}, err
	}
	return cfg, nil
}

func (c Configuration) Validate() error {
	if c.FocusDurationSeconds <= 0 || c.ShortBreakDurationSeconds <= 0 || c.LongBreakDurationSeconds <= 0 {
		return apperrors.InvalidConfiguration("invalid_duration", "all durations must be positive seconds")
	}
	if c.FocusRepsPerBlock < 1 {
		return apperrors.InvalidConfiguration("invalid_reps_per_block", "focus reps per block must be at least 1")
	}
	if c.LongBreakCount < 0 {
		return apperrors.InvalidConfiguration("invalid_long_break_count", "long break count must not be negative")
	}
	if c.FocusRepsPerBlock > MaxRoadmapLength || c.LongBreakCount >= MaxRoadmapLength || c.RoadmapLength() > MaxRoadmapLength {
		return apperrors.InvalidConfiguration("invalid_roadmap_size", fmt.Sprintf("a plan may hold at most %d sessions", MaxRoadmapLength))
	}
	return nil
}

// RoadmapLength is the number of sessions the configuration expands to. Only
// meaningful for configurations within the Validate bounds.
func (c Configuration) RoadmapLength() int {
	blocks := c.LongBreakCount + 1
	return (2*c.FocusRepsPerBlock-1)*blocks + c.LongBreakCount
}

// DurationFor returns the countdown length in seconds for a session kind.
func (c Configuration) DurationFor(kind SessionKind) int {
	switch kind {
	case KindShortBreak:
		return c.ShortBreakDurationSeconds
	case KindLongBreak:
		return c.LongBreakDurationSeconds
	default:
		return c.FocusDurationSeconds
	}
}

type CompletionRecord struct {
	ID                          string        `json:"id" yaml:"id"`
	Name                        string        `json:"name" yaml:"name"`
	Date                        string        `json:"date" yaml:"date"`
	TotalFocusSessionsCompleted int           `json:"totalFocusSessionsCompleted" yaml:"total_focus_sessions_completed"`
	Configuration               Configuration `json:"configuration" yaml:"configuration"`
	CreatedAt                   time.Time     `json:"createdAt" yaml:"created_at"`
}

type PlannedTask struct {
	ID            string        `json:"id" yaml:"id"`
	Name          string        `json:"name" yaml:"name"`
	Configuration Configuration `json:"configuration" yaml:"configuration"`
	CreatedAt     time.Time     `json:"createdAt" yaml:"created_at"`
	UpdatedAt     time.Time     `json:"updatedAt" yaml:"updated_at"`
}
