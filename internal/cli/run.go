package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"pomodoro/zenpomo/internal/config"
	"pomodoro/zenpomo/internal/model"
	"pomodoro/zenpomo/internal/notify"
	"pomodoro/zenpomo/internal/service"
	"pomodoro/zenpomo/internal/watch"
)

type runOptions struct {
	goal         string
	taskID       string
	exitOnFinish bool
	watch        bool
}

func newRunCmd(a *app) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the pomodoro plan interactively",
		Long: `Runs the plan from the settings file. Commands are read from stdin one
per line; type help for the list. Editing the settings file while running
restarts the plan with the new settings.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.runSession(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.goal, "goal", "g", "", "name the goal and start right away")
	cmd.Flags().StringVarP(&opts.taskID, "task", "t", "", "start the planned task with this id")
	cmd.Flags().BoolVar(&opts.exitOnFinish, "exit-on-finish", false, "exit when the plan completes")
	cmd.Flags().BoolVar(&opts.watch, "watch", true, "restart the plan when the settings file changes")
	return cmd
}

func (a *app) runSession(ctx context.Context, in io.Reader, out, errOut io.Writer, opts runOptions) error {
	tty := isTerminal(out)
	out, errOut = syncWriters(out, errOut)

	st, err := a.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	settings, err := a.loadSettings()
	if err != nil {
		return err
	}

	dispatcher := notify.NewDispatcher(log.Logger, a.cfg.CueTimeout, a.sinks(errOut)...)
	defer dispatcher.Wait()

	svc, tasks, err := a.services(st, settings.Timer, dispatcher, nil)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return svc.Run(gctx)
	})

	r := &renderer{out: out, tty: tty, json: a.opts.jsonOutput}
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case view := <-svc.Updates():
				r.draw(view)
				if opts.exitOnFinish && view.Status == model.StatusFinished {
					cancel()
				}
			}
		}
	})

	if opts.watch {
		w := watch.New(a.opts.settingsPath, func() { a.reloadSettings(gctx, svc) }, log.Logger)
		g.Go(func() error {
			return w.Run(gctx)
		})
	}

	s := &session{svc: svc, tasks: tasks, out: out, json: a.opts.jsonOutput}
	g.Go(func() error {
		if err := a.startInitial(gctx, s, opts); err != nil {
			cancel()
			return err
		}
		lines := readLines(gctx, in)
		for {
			select {
			case <-gctx.Done():
				return nil
			case line, ok := <-lines:
				if !ok {
					// Without more input only a finishing plan can end the run.
					if !opts.exitOnFinish {
						cancel()
					}
					return nil
				}
				quit, err := s.handle(gctx, line)
				if err != nil {
					writeError(errOut, err, a.opts.jsonOutput)
				}
				if quit {
					cancel()
					return nil
				}
			}
		}
	})

	return g.Wait()
}

func (a *app) startInitial(ctx context.Context, s *session, opts runOptions) error {
	if opts.taskID != "" {
		_, err := s.tasks.StartTask(ctx, opts.taskID)
		return err
	}
	if opts.goal == "" {
		return nil
	}
	if _, err := s.svc.SetGoal(ctx, opts.goal); err != nil {
		return err
	}
	_, err := s.svc.Start(ctx)
	return err
}

// reloadSettings applies an edited settings file. Unchanged or invalid files
// leave the plan alone.
func (a *app) reloadSettings(ctx context.Context, svc *service.PomodoroService) {
	settings, err := config.LoadSettings(a.opts.settingsPath)
	if err != nil {
		log.Warn().Err(err).Msg("ignoring settings change")
		return
	}
	current, err := svc.State(ctx)
	if err != nil {
		return
	}
	if current.Configuration == settings.Timer {
		return
	}
	if _, err := svc.UpdateSettings(ctx, settings.Timer); err != nil {
		log.Warn().Err(err).Msg("failed to apply settings")
	}
}

func (a *app) sinks(errOut io.Writer) []notify.Sink {
	sinks := make([]notify.Sink, 0, 2)
	if a.cfg.Bell {
		sinks = append(sinks, notify.NewBell(errOut))
	}
	commands := notify.NewCommand(map[model.Cue]string{
		model.CueSessionAdvance: a.cfg.AlertCommand,
		model.CuePlanComplete:   a.cfg.CompleteCommand,
	})
	if !commands.Empty() {
		sinks = append(sinks, commands)
	}
	return sinks
}
