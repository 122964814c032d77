package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pomodoro/zenpomo/internal/config"
	"pomodoro/zenpomo/internal/engine"
	apperrors "pomodoro/zenpomo/internal/errors"
	"pomodoro/zenpomo/internal/export"
	"pomodoro/zenpomo/internal/model"
	"pomodoro/zenpomo/internal/service"
	"pomodoro/zenpomo/internal/ticker"
)

func newTestApp(t *testing.T) *app {
	t.Helper()
	dir := t.TempDir()
	return &app{cfg: config.Config{
		DBPath:       filepath.Join(dir, "zenpomo.db"),
		SettingsPath: filepath.Join(dir, "settings.yaml"),
		TickInterval: time.Second,
		HistoryLimit: 50,
		CueTimeout:   time.Second,
	}}
}

func execute(t *testing.T, a *app, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(a)
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, newTestApp(t), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "zenpomo dev")
}

func TestRootCmdListsSubcommands(t *testing.T) {
	out, err := execute(t, newTestApp(t), "--help")
	require.NoError(t, err)
	for _, name := range []string{"run", "roadmap", "history", "tasks", "report", "settings", "migrate"} {
		assert.Contains(t, out, name)
	}
}

func TestRoadmapCmdDefaults(t *testing.T) {
	out, err := execute(t, newTestApp(t), "roadmap")
	require.NoError(t, err)
	assert.Contains(t, out, "Short break")
	assert.Contains(t, out, "4 focus, 3 short breaks, 0 long breaks, 1h55m total")
}

func TestRoadmapCmdJSONWithFlags(t *testing.T) {
	out, err := execute(t, newTestApp(t), "roadmap", "--json", "--reps", "2", "--long-breaks", "1", "--focus", "50m")
	require.NoError(t, err)

	var got roadmapOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, []model.SessionKind{
		model.KindFocus, model.KindShortBreak, model.KindFocus, model.KindLongBreak,
		model.KindFocus, model.KindShortBreak, model.KindFocus,
	}, got.Roadmap)
	assert.Equal(t, 4, got.FocusCount)
	assert.Equal(t, 13500, got.TotalSeconds)
}

func TestRoadmapCmdRejectsInvalidConfiguration(t *testing.T) {
	_, err := execute(t, newTestApp(t), "roadmap", "--reps", "0")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidConfiguration))
}

func TestSettingsSetAndShow(t *testing.T) {
	a := newTestApp(t)

	_, err := execute(t, a, "settings", "set", "--focus", "30m", "--long-breaks", "2")
	require.NoError(t, err)

	out, err := execute(t, a, "settings", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "focus_duration_seconds: 1800")
	assert.Contains(t, out, "long_break_count: 2")
	assert.Contains(t, out, "short_break_duration_seconds: 300")

	out, err = execute(t, a, "roadmap")
	require.NoError(t, err)
	assert.Contains(t, out, "12 focus")
}

func TestTasksCmds(t *testing.T) {
	a := newTestApp(t)

	out, err := execute(t, a, "tasks", "add", "Deep", "work", "--reps", "2")
	require.NoError(t, err)
	assert.Contains(t, out, `saved "Deep work"`)

	out, err = execute(t, a, "--json", "tasks", "list")
	require.NoError(t, err)
	var listed struct {
		Tasks []model.PlannedTask `json:"tasks"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	require.Len(t, listed.Tasks, 1)
	assert.Equal(t, 2, listed.Tasks[0].Configuration.FocusRepsPerBlock)

	out, err = execute(t, a, "tasks", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Deep work")
	assert.Contains(t, out, "2x25:00")

	_, err = execute(t, a, "tasks", "delete", listed.Tasks[0].ID)
	require.NoError(t, err)

	_, err = execute(t, a, "tasks", "delete", listed.Tasks[0].ID)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func writeImportFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "backup.json")
	file, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, export.WriteJSON(file, []model.CompletionRecord{
		{ID: "r1", Name: "Write", Date: "2026-10-01", TotalFocusSessionsCompleted: 4, Configuration: model.DefaultConfiguration(), CreatedAt: time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)},
		{ID: "r2", Name: "Read", Date: "2026-10-02", TotalFocusSessionsCompleted: 2, Configuration: model.DefaultConfiguration(), CreatedAt: time.Date(2026, 10, 2, 12, 0, 0, 0, time.UTC)},
	}))
	require.NoError(t, file.Close())
	return path
}

func TestHistoryCmds(t *testing.T) {
	a := newTestApp(t)

	out, err := execute(t, a, "history", "import", writeImportFile(t))
	require.NoError(t, err)
	assert.Contains(t, out, "imported 2 records")

	out, err = execute(t, a, "history", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Write")
	assert.Less(t, strings.Index(out, "Read"), strings.Index(out, "Write"))

	csvPath := filepath.Join(t.TempDir(), "out.csv")
	_, err = execute(t, a, "history", "export", "--output", csvPath)
	require.NoError(t, err)
	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), strings.Join(export.Columns, ",")))

	out, err = execute(t, a, "history", "export", "-o", "-", "-f", "json")
	require.NoError(t, err)
	var exported []model.CompletionRecord
	require.NoError(t, json.Unmarshal([]byte(out), &exported))
	assert.Len(t, exported, 2)

	_, err = execute(t, a, "history", "delete", "r1")
	require.NoError(t, err)
	_, err = execute(t, a, "history", "delete", "r1")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	_, err = execute(t, a, "history", "clear")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))

	_, err = execute(t, a, "history", "clear", "--yes")
	require.NoError(t, err)
	out, err = execute(t, a, "history", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "no completed goals yet")
}

func TestReportCmd(t *testing.T) {
	a := newTestApp(t)
	_, err := execute(t, a, "history", "import", writeImportFile(t))
	require.NoError(t, err)

	out, err := execute(t, a, "report", "--month", "2026-10")
	require.NoError(t, err)
	assert.Contains(t, out, "October 2026")
	assert.Contains(t, out, "Active days: 2  Building up")

	out, err = execute(t, a, "report", "--month", "2026-10", "--task", "Read")
	require.NoError(t, err)
	assert.Contains(t, out, "Active days: 1")

	out, err = execute(t, a, "report", "--names")
	require.NoError(t, err)
	assert.Equal(t, "Read\nWrite\n", out)

	_, err = execute(t, a, "report", "--month", "October")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestMigrateCmd(t *testing.T) {
	a := newTestApp(t)
	out, err := execute(t, a, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "migrations applied")

	_, err = os.Stat(a.cfg.DBPath)
	require.NoError(t, err)
}

func startTestSession(t *testing.T) (*session, *bytes.Buffer) {
	t.Helper()
	a := newTestApp(t)
	a.opts.dbPath = a.cfg.DBPath

	st, err := a.openStore()
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	svc, tasks, err := a.services(st, model.DefaultConfiguration(), nil, ticker.NewManual())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	out := new(bytes.Buffer)
	return &session{svc: svc, tasks: tasks, out: out}, out
}

func TestSessionHandle(t *testing.T) {
	ctx := context.Background()
	s, out := startTestSession(t)

	for _, line := range []string{"goal  Write the intro ", "start", "p"} {
		quit, err := s.handle(ctx, line)
		require.NoError(t, err, line)
		assert.False(t, quit)
	}

	_, err := s.handle(ctx, "status")
	require.NoError(t, err)
	assert.Equal(t, "25:00  Focus  1/7  Write the intro  (paused)\n", out.String())

	_, err = s.handle(ctx, "skip")
	require.NoError(t, err)
	view, err := s.svc.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.KindShortBreak, view.Kind)

	_, err = s.handle(ctx, "done")
	require.NoError(t, err)
	view, err = s.svc.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.StatusFinished, view.Status)
	assert.Equal(t, 1, view.CompletedFocusCount)

	_, err = s.handle(ctx, "task")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
	_, err = s.handle(ctx, "dance")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))

	quit, err := s.handle(ctx, "quit")
	require.NoError(t, err)
	assert.True(t, quit)
}

func TestSessionPromptsForGoal(t *testing.T) {
	ctx := context.Background()
	s, out := startTestSession(t)

	_, err := s.handle(ctx, "start")
	require.NoError(t, err)
	assert.Equal(t, goalPrompt, out.String())

	_, err = s.handle(ctx, "Plan the week")
	require.NoError(t, err)

	view, err := s.svc.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Plan the week", view.GoalName)
	assert.Equal(t, model.StatusRunning, view.Status)
}

func TestRendererPrintsOnlyChanges(t *testing.T) {
	buf := new(bytes.Buffer)
	r := &renderer{out: buf}

	view := service.StateView{
		State: engine.State{
			Roadmap:          []model.SessionKind{model.KindFocus},
			Status:           model.StatusRunning,
			SecondsRemaining: 60,
			GoalName:         "Write",
		},
		Label:     "Focus",
		Countdown: "01:00",
	}
	r.draw(view)
	view.SecondsRemaining = 59
	view.Countdown = "00:59"
	r.draw(view)
	view.Status = model.StatusPaused
	r.draw(view)

	assert.Equal(t, "01:00  Focus  1/1  Write\n00:59  Focus  1/1  Write  (paused)\n", buf.String())
}

func TestWriteErrorJSON(t *testing.T) {
	buf := new(bytes.Buffer)
	writeError(buf, apperrors.InvalidTransition("pause", "idle"), true)

	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
			Details struct {
				Operation string `json:"operation"`
			} `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &envelope))
	assert.Equal(t, "invalid_transition", envelope.Error.Code)
	assert.Equal(t, "cannot pause while idle", envelope.Error.Message)
	assert.Equal(t, "pause", envelope.Error.Details.Operation)

	buf.Reset()
	writeError(buf, errors.New("boom"), false)
	assert.Equal(t, "error: boom\n", buf.String())
}

func TestRunSessionFinishesPlan(t *testing.T) {
	if testing.Short() {
		t.Skip("waits on the wall clock")
	}

	tests := []struct {
		name  string
		input string
		opts  runOptions
	}{
		{
			name:  "goal flag with concurrent status requests",
			input: strings.Repeat("status\n", 200),
			opts:  runOptions{goal: "Write tests", exitOnFinish: true},
		},
		{
			name:  "goal prompt",
			input: "start\nWrite tests\nstatus\n",
			opts:  runOptions{exitOnFinish: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestApp(t)
			a.cfg.Bell = true
			a.opts = options{dbPath: a.cfg.DBPath, settingsPath: a.cfg.SettingsPath}
			require.NoError(t, config.SaveSettings(a.opts.settingsPath, config.Settings{Timer: model.Configuration{
				FocusDurationSeconds:      1,
				ShortBreakDurationSeconds: 1,
				LongBreakDurationSeconds:  1,
				FocusRepsPerBlock:         1,
			}}))

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			buf := new(bytes.Buffer)
			require.NoError(t, a.runSession(ctx, strings.NewReader(tt.input), buf, buf, tt.opts))
			require.NoError(t, ctx.Err(), "plan did not finish")

			out := buf.String()
			assert.Contains(t, out, "Done: Write tests, 1 focus sessions")
			assert.Contains(t, out, "** Goal complete: Write tests")

			st, err := a.openStore()
			require.NoError(t, err)
			defer st.Close()
			records, err := st.history.GetAll(context.Background())
			require.NoError(t, err)
			require.Len(t, records, 1)
			assert.Equal(t, "Write tests", records[0].Name)
			assert.Equal(t, 1, records[0].TotalFocusSessionsCompleted)
		})
	}
}

func TestSyncWritersKeepLinesWhole(t *testing.T) {
	buf := new(bytes.Buffer)
	out, errOut := syncWriters(buf, buf)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		w := out
		if i%2 == 1 {
			w = errOut
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, _ = w.Write([]byte("line\n"))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, strings.Repeat("line\n", 800), buf.String())
}
