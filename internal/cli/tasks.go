package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"pomodoro/zenpomo/internal/model"
	"pomodoro/zenpomo/internal/roadmap"
	"pomodoro/zenpomo/internal/service"
)

func newTasksCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"task"},
		Short:   "Manage planned tasks with their own timer settings",
	}
	cmd.AddCommand(newTasksListCmd(a))
	cmd.AddCommand(newTasksAddCmd(a))
	cmd.AddCommand(newTasksDeleteCmd(a))
	return cmd
}

func newTasksListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List planned tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withPomodoro(func(_ *service.PomodoroService, tasks *service.TaskService) error {
				list, err := tasks.List(cmd.Context())
				if err != nil {
					return err
				}
				if a.opts.jsonOutput {
					return printJSON(cmd.OutOrStdout(), map[string]interface{}{"tasks": list})
				}
				return printTasks(cmd.OutOrStdout(), list)
			})
		},
	}
}

func printTasks(w io.Writer, tasks []model.PlannedTask) error {
	if len(tasks) == 0 {
		_, err := fmt.Fprintln(w, "no planned tasks")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TASK\tPLAN\tTOTAL\tID")
	for _, task := range tasks {
		plan, total := "-", "-"
		if r, err := roadmap.Generate(task.Configuration); err == nil {
			plan = fmt.Sprintf("%dx%s", r.Count(model.KindFocus), service.FormatCountdown(task.Configuration.FocusDurationSeconds))
			total = formatTotal(r.TotalSeconds(task.Configuration))
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", task.Name, plan, total, task.ID)
	}
	return tw.Flush()
}

func newTasksAddCmd(a *app) *cobra.Command {
	var (
		timer timerFlags
		id    string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Plan a task, or update one with --id",
		Long:  "Saves a task with its own timer settings. Unset timer flags fall back to the settings file.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := a.loadSettings()
			if err != nil {
				return err
			}
			cfg, err := timer.apply(cmd, settings.Timer)
			if err != nil {
				return err
			}
			return a.withPomodoro(func(_ *service.PomodoroService, tasks *service.TaskService) error {
				task, err := tasks.Save(cmd.Context(), service.SaveTaskInput{
					ID:            id,
					Name:          strings.Join(args, " "),
					Configuration: cfg,
				})
				if err != nil {
					return err
				}
				if a.opts.jsonOutput {
					return printJSON(cmd.OutOrStdout(), map[string]interface{}{"task": task})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "saved %q as %s\n", task.Name, task.ID)
				return nil
			})
		},
	}

	addTimerFlags(cmd, &timer)
	cmd.Flags().StringVar(&id, "id", "", "update the task with this id")
	return cmd
}

func newTasksDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a planned task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withPomodoro(func(_ *service.PomodoroService, tasks *service.TaskService) error {
				if err := tasks.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
				return nil
			})
		},
	}
}
