// Package roadmap expands a Configuration into the ordered list of sessions
// that make up one plan.
package roadmap

import (
	apperrors "pomodoro/zenpomo/internal/errors"
	"pomodoro/zenpomo/internal/model"
)

// Roadmap is immutable once generated.
type Roadmap struct {
	kinds []model.SessionKind
}

// Generate builds LongBreakCount+1 blocks of FocusRepsPerBlock focus
// sessions. Focus sessions inside a block are separated by short breaks and
// blocks are separated by long breaks. The last block ends on focus.
func Generate(cfg model.Configuration) (Roadmap, error) {
	if err := cfg.Validate(); err != nil {
		return Roadmap{}, err
	}

	blocks := cfg.LongBreakCount + 1
	kinds := make([]model.SessionKind, 0, cfg.RoadmapLength())
	for block := 0; block < blocks; block++ {
		for rep := 1; rep <= cfg.FocusRepsPerBlock; rep++ {
			kinds = append(kinds, model.KindFocus)
			if rep < cfg.FocusRepsPerBlock {
				kinds = append(kinds, model.KindShortBreak)
			} else if block < cfg.LongBreakCount {
				kinds = append(kinds, model.KindLongBreak)
			}
		}
	}
	if len(kinds) == 0 {
		return Roadmap{}, apperrors.InvalidConfiguration("invalid_roadmap_size", "configuration produced an empty roadmap")
	}
	return Roadmap{kinds: kinds}, nil
}

func (r Roadmap) Len() int {
	return len(r.kinds)
}

// At panics on an out of range index, like a slice.
func (r Roadmap) At(i int) model.SessionKind {
	return r.kinds[i]
}

// Kinds returns a copy of the sequence.
func (r Roadmap) Kinds() []model.SessionKind {
	out := make([]model.SessionKind, len(r.kinds))
	copy(out, r.kinds)
	return out
}

func (r Roadmap) Count(kind model.SessionKind) int {
	n := 0
	for _, k := range r.kinds {
		if k == kind {
			n++
		}
	}
	return n
}

func (r Roadmap) Equal(other Roadmap) bool {
	if len(r.kinds) != len(other.kinds) {
		return false
	}
	for i := range r.kinds {
		if r.kinds[i] != other.kinds[i] {
			return false
		}
	}
	return true
}

// TotalSeconds is the planned length of the whole roadmap.
func (r Roadmap) TotalSeconds(cfg model.Configuration) int {
	total := 0
	for _, k := range r.kinds {
		total += cfg.DurationFor(k)
	}
	return total
}
