// Package cli wires the zenpomo commands.
package cli

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"pomodoro/zenpomo/internal/config"
	"pomodoro/zenpomo/internal/db"
	"pomodoro/zenpomo/internal/engine"
	"pomodoro/zenpomo/internal/model"
	"pomodoro/zenpomo/internal/repository"
	"pomodoro/zenpomo/internal/service"
	"pomodoro/zenpomo/internal/ticker"
)

// Version info set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

type options struct {
	dbPath        string
	settingsPath  string
	migrationsDir string
	debug         bool
	jsonOutput    bool
}

type app struct {
	cfg  config.Config
	opts options
}

func newApp() *app {
	return &app{cfg: config.Load()}
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "zenpomo",
		Short:         "Pomodoro roadmaps in the terminal",
		Long:          "zenpomo plans a day of focus sessions and breaks, runs the countdown and keeps a history of completed goals.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(cmd.ErrOrStderr(), a.opts.debug)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.opts.dbPath, "db", a.cfg.DBPath, "path to the SQLite database (ZENPOMO_DB_PATH)")
	flags.StringVar(&a.opts.settingsPath, "settings", a.cfg.SettingsPath, "path to the settings file (ZENPOMO_SETTINGS)")
	flags.StringVar(&a.opts.migrationsDir, "migrations", a.cfg.MigrationsDir, "read migrations from this directory instead of the built-in set")
	flags.BoolVar(&a.opts.debug, "debug", false, "enable debug logging")
	flags.BoolVar(&a.opts.jsonOutput, "json", false, "print machine readable JSON")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newRunCmd(a))
	cmd.AddCommand(newRoadmapCmd(a))
	cmd.AddCommand(newHistoryCmd(a))
	cmd.AddCommand(newTasksCmd(a))
	cmd.AddCommand(newReportCmd(a))
	cmd.AddCommand(newSettingsCmd(a))
	cmd.AddCommand(newMigrateCmd(a))
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "zenpomo %s (commit: %s, built: %s)\n", Version, Commit, Date)
		},
	}
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	a := newApp()
	cmd := newRootCmd(a)
	if err := cmd.Execute(); err != nil {
		writeError(cmd.ErrOrStderr(), err, a.opts.jsonOutput)
		return 1
	}
	return 0
}

func setupLogging(w io.Writer, debug bool) {
	level := zerolog.WarnLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    !isTerminal(w),
		TimeFormat: time.TimeOnly,
	})
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

type store struct {
	db      *sql.DB
	history *repository.HistoryRepository
	tasks   *repository.TaskRepository
}

func (a *app) openStore() (*store, error) {
	database, err := db.OpenSQLite(a.opts.dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.RunMigrations(database, db.MigrationsFS(a.opts.migrationsDir)); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &store{
		db:      database,
		history: repository.NewHistoryRepository(database),
		tasks:   repository.NewTaskRepository(database),
	}, nil
}

func (s *store) Close() error {
	return s.db.Close()
}

func (a *app) loadSettings() (*config.Settings, error) {
	return config.LoadSettings(a.opts.settingsPath)
}

// services builds the service layer on top of st. The pomodoro loop is not
// started; only run needs it.
func (a *app) services(st *store, cfg model.Configuration, notifier engine.Notifier, source ticker.Source) (*service.PomodoroService, *service.TaskService, error) {
	opts := []engine.Option{
		engine.WithHistoryStore(st.history),
		engine.WithLogger(log.Logger),
	}
	if notifier != nil {
		opts = append(opts, engine.WithNotifier(notifier))
	}
	seq, err := engine.New(cfg, opts...)
	if err != nil {
		return nil, nil, err
	}
	if source == nil {
		source = ticker.NewCronSource(a.cfg.TickInterval, log.Logger)
	}
	pomodoro := service.NewPomodoroService(seq, source, st.history,
		service.WithHistoryLimit(a.cfg.HistoryLimit),
		service.WithLogger(log.Logger),
	)
	return pomodoro, service.NewTaskService(st.tasks, pomodoro), nil
}
