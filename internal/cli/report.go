package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	apperrors "pomodoro/zenpomo/internal/errors"
	"pomodoro/zenpomo/internal/report"
	"pomodoro/zenpomo/internal/service"
)

func newReportCmd(a *app) *cobra.Command {
	var (
		month string
		task  string
		names bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show a monthly calendar of active days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			day := time.Now()
			if month != "" {
				parsed, err := time.Parse("2006-01", month)
				if err != nil {
					return apperrors.InvalidInput("invalid_month", fmt.Sprintf("month %q must look like 2026-10", month))
				}
				day = parsed
			}

			return a.withPomodoro(func(svc *service.PomodoroService, tasks *service.TaskService) error {
				records, err := svc.AllHistory(cmd.Context())
				if err != nil {
					return err
				}

				if names {
					planned, err := tasks.List(cmd.Context())
					if err != nil {
						return err
					}
					list := report.TaskNames(records, planned)
					if a.opts.jsonOutput {
						return printJSON(cmd.OutOrStdout(), map[string]interface{}{"tasks": list})
					}
					for _, name := range list {
						fmt.Fprintln(cmd.OutOrStdout(), name)
					}
					return nil
				}

				m := report.BuildMonth(day.Year(), day.Month(), records, task)
				if a.opts.jsonOutput {
					return printJSON(cmd.OutOrStdout(), m)
				}
				return m.Render(cmd.OutOrStdout())
			})
		},
	}

	cmd.Flags().StringVarP(&month, "month", "m", "", "month to show as YYYY-MM (default current month)")
	cmd.Flags().StringVarP(&task, "task", "t", "", "only count days with this task")
	cmd.Flags().BoolVar(&names, "names", false, "list the task names available as --task filters")
	return cmd
}
