// Package completion builds the immutable record handed to the history
// store when a plan ends.
package completion

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"pomodoro/zenpomo/internal/model"
)

const (
	FallbackName = "Unnamed task"
	DateLayout   = "2006-01-02"
)

// Build is pure: the same inputs always produce the same record.
func Build(id, goalName string, completedFocus int, cfg model.Configuration, at time.Time) model.CompletionRecord {
	name := strings.TrimSpace(goalName)
	if name == "" {
		name = FallbackName
	}
	return model.CompletionRecord{
		ID:                          id,
		Name:                        name,
		Date:                        at.Format(DateLayout),
		TotalFocusSessionsCompleted: completedFocus,
		Configuration:               cfg,
		CreatedAt:                   at.UTC(),
	}
}

type Recorder struct {
	newID func() string
	now   func() time.Time
}

type Option func(*Recorder)

func WithIDFunc(fn func() string) Option {
	return func(r *Recorder) {
		r.newID = fn
	}
}

func WithClock(fn func() time.Time) Option {
	return func(r *Recorder) {
		r.now = fn
	}
}

func NewRecorder(opts ...Option) *Recorder {
	r := &Recorder{
		newID: newTimeOrderedID,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Recorder) Record(goalName string, completedFocus int, cfg model.Configuration) model.CompletionRecord {
	return Build(r.newID(), goalName, completedFocus, cfg, r.now())
}

// newTimeOrderedID returns a UUIDv7 so ids sort by creation time.
func newTimeOrderedID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
