package cli

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	apperrors "pomodoro/zenpomo/internal/errors"
	"pomodoro/zenpomo/internal/export"
	"pomodoro/zenpomo/internal/model"
	"pomodoro/zenpomo/internal/service"
)

func newHistoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List, export and manage completed goals",
	}
	cmd.AddCommand(newHistoryListCmd(a))
	cmd.AddCommand(newHistoryDeleteCmd(a))
	cmd.AddCommand(newHistoryClearCmd(a))
	cmd.AddCommand(newHistoryExportCmd(a))
	cmd.AddCommand(newHistoryImportCmd(a))
	return cmd
}

// withPomodoro opens the store and hands fn a service that is not looping.
func (a *app) withPomodoro(fn func(svc *service.PomodoroService, tasks *service.TaskService) error) error {
	st, err := a.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	settings, err := a.loadSettings()
	if err != nil {
		return err
	}
	svc, tasks, err := a.services(st, settings.Timer, nil, nil)
	if err != nil {
		return err
	}
	return fn(svc, tasks)
}

func newHistoryListCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the most recent completed goals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withPomodoro(func(svc *service.PomodoroService, _ *service.TaskService) error {
				records, err := svc.GetHistory(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if a.opts.jsonOutput {
					return printJSON(cmd.OutOrStdout(), map[string]interface{}{"records": records})
				}
				return printRecords(cmd.OutOrStdout(), records)
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of records (defaults to ZENPOMO_HISTORY_LIMIT)")
	return cmd
}

func printRecords(w io.Writer, records []model.CompletionRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "no completed goals yet")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tTASK\tFOCUS\tID")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", r.Date, r.Name, r.TotalFocusSessionsCompleted, r.ID)
	}
	return tw.Flush()
}

func newHistoryDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one completed goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withPomodoro(func(svc *service.PomodoroService, _ *service.TaskService) error {
				if err := svc.DeleteHistory(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
				return nil
			})
		},
	}
}

func newHistoryClearCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every completed goal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return apperrors.InvalidInput("confirmation_required", "history clear deletes every record; pass --yes to confirm")
			}
			return a.withPomodoro(func(svc *service.PomodoroService, _ *service.TaskService) error {
				if err := svc.ClearHistory(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "history cleared")
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm deletion")
	return cmd
}

func newHistoryExportCmd(a *app) *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export history as json, yaml, csv or xlsx",
		Long: `Exports every completed goal with the timer settings it ran with.

Without --output the file is written to zenpomo-report-YYYY-MM-DD.<format>
in the current directory. Use --output - to write to stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" && output != "" && output != "-" {
				format = output
			}
			if format == "" {
				format = string(export.FormatXLSX)
			}
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			if output == "" {
				output = export.FileName(f, time.Now())
			}

			return a.withPomodoro(func(svc *service.PomodoroService, _ *service.TaskService) error {
				records, err := svc.AllHistory(cmd.Context())
				if err != nil {
					return err
				}
				if output == "-" {
					return export.Write(cmd.OutOrStdout(), f, records)
				}
				if err := writeExportFile(output, f, records); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "exported %d records to %s\n", len(records), output)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "json, yaml, csv or xlsx (default from --output, else xlsx)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, - for stdout")
	return cmd
}

func writeExportFile(path string, format export.Format, records []model.CompletionRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := export.Write(file, format, records); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

func newHistoryImportCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import history from a json or yaml export",
		Long:  "Imports records written by history export. Records whose id already exists are replaced.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" {
				format = args[0]
			}
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			records, err := readImportFile(args[0], f)
			if err != nil {
				return err
			}
			return a.withPomodoro(func(svc *service.PomodoroService, _ *service.TaskService) error {
				n, err := svc.ImportHistory(cmd.Context(), records)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d records\n", n)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "json or yaml (default from the file extension)")
	return cmd
}

func readImportFile(path string, format export.Format) ([]model.CompletionRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()
	return export.Read(file, format)
}
