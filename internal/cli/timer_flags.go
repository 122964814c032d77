package cli

import (
	"time"

	"github.com/spf13/cobra"

	"pomodoro/zenpomo/internal/model"
)

type timerFlags struct {
	focus      time.Duration
	shortBreak time.Duration
	longBreak  time.Duration
	reps       int
	longBreaks int
}

func addTimerFlags(cmd *cobra.Command, t *timerFlags) {
	defaults := model.DefaultConfiguration()
	flags := cmd.Flags()
	flags.DurationVar(&t.focus, "focus", seconds(defaults.FocusDurationSeconds), "focus session length")
	flags.DurationVar(&t.shortBreak, "short-break", seconds(defaults.ShortBreakDurationSeconds), "short break length")
	flags.DurationVar(&t.longBreak, "long-break", seconds(defaults.LongBreakDurationSeconds), "long break length")
	flags.IntVar(&t.reps, "reps", defaults.FocusRepsPerBlock, "focus sessions per block")
	flags.IntVar(&t.longBreaks, "long-breaks", defaults.LongBreakCount, "long breaks in the plan")
}

// apply overrides base with the flags the user set and validates the result.
func (t *timerFlags) apply(cmd *cobra.Command, base model.Configuration) (model.Configuration, error) {
	flags := cmd.Flags()
	cfg := base
	if flags.Changed("focus") {
		cfg.FocusDurationSeconds = int(t.focus / time.Second)
	}
	if flags.Changed("short-break") {
		cfg.ShortBreakDurationSeconds = int(t.shortBreak / time.Second)
	}
	if flags.Changed("long-break") {
		cfg.LongBreakDurationSeconds = int(t.longBreak / time.Second)
	}
	if flags.Changed("reps") {
		cfg.FocusRepsPerBlock = t.reps
	}
	if flags.Changed("long-breaks") {
		cfg.LongBreakCount = t.longBreaks
	}
	if err := cfg.Validate(); err != nil {
		return model.Configuration{}, err
	}
	return cfg, nil
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
