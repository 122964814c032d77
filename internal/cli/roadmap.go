package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"pomodoro/zenpomo/internal/model"
	"pomodoro/zenpomo/internal/roadmap"
	"pomodoro/zenpomo/internal/service"
)

type roadmapOutput struct {
	Configuration model.Configuration `json:"configuration"`
	Roadmap       []model.SessionKind `json:"roadmap"`
	FocusCount    int                 `json:"focusCount"`
	ShortBreaks   int                 `json:"shortBreaks"`
	LongBreaks    int                 `json:"longBreaks"`
	TotalSeconds  int                 `json:"totalSeconds"`
}

func newRoadmapCmd(a *app) *cobra.Command {
	var timer timerFlags

	cmd := &cobra.Command{
		Use:   "roadmap",
		Short: "Print the session plan for the current settings",
		Long:  "Prints every focus session and break of the plan. Timer flags override the settings file for this call only.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := a.loadSettings()
			if err != nil {
				return err
			}
			cfg, err := timer.apply(cmd, settings.Timer)
			if err != nil {
				return err
			}
			r, err := roadmap.Generate(cfg)
			if err != nil {
				return err
			}
			out := roadmapOutput{
				Configuration: cfg,
				Roadmap:       r.Kinds(),
				FocusCount:    r.Count(model.KindFocus),
				ShortBreaks:   r.Count(model.KindShortBreak),
				LongBreaks:    r.Count(model.KindLongBreak),
				TotalSeconds:  r.TotalSeconds(cfg),
			}
			if a.opts.jsonOutput {
				return printJSON(cmd.OutOrStdout(), out)
			}
			return printRoadmap(cmd.OutOrStdout(), out)
		},
	}

	addTimerFlags(cmd, &timer)
	return cmd
}

func printRoadmap(w io.Writer, out roadmapOutput) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, kind := range out.Roadmap {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", i+1, kind.Label(), service.FormatCountdown(out.Configuration.DurationFor(kind)))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d focus, %d short breaks, %d long breaks, %s total\n",
		out.FocusCount, out.ShortBreaks, out.LongBreaks, formatTotal(out.TotalSeconds))
	return err
}

func formatTotal(seconds int) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh%02dm", h, m)
}
