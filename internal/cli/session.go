package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"

	apperrors "pomodoro/zenpomo/internal/errors"
	"pomodoro/zenpomo/internal/model"
	"pomodoro/zenpomo/internal/service"
)

const sessionHelp = `commands:
  goal <name>   name the plan objective
  start, s      start or resume the session
  pause, p      pause the session
  t             toggle start and pause
  reset, r      restart the current session
  skip, n       move to the next session
  done, c       finish the plan now
  restart       abandon the plan
  task <id>     start a planned task
  status        print the current state
  quit, q       leave
`

// session turns input lines into service commands.
type session struct {
	svc   *service.PomodoroService
	tasks *service.TaskService
	out   io.Writer
	json  bool

	// awaitingGoal is set after start was refused for lack of a goal; the
	// next line names the goal and starts.
	awaitingGoal bool
}

const goalPrompt = "goal name: "

// handle runs one input line. quit reports that the user asked to leave.
func (s *session) handle(ctx context.Context, line string) (quit bool, err error) {
	line = strings.TrimSpace(line)
	if s.awaitingGoal {
		s.awaitingGoal = false
		if line == "" {
			return false, nil
		}
		if _, err := s.svc.SetGoal(ctx, line); err != nil {
			return false, err
		}
		_, err := s.svc.Start(ctx)
		return false, err
	}
	if line == "" {
		return false, nil
	}
	verb, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(verb) {
	case "goal", "g":
		_, err = s.svc.SetGoal(ctx, arg)
	case "start", "s", "resume":
		_, err = s.svc.Start(ctx)
		if errors.Is(err, apperrors.ErrGoalRequired) {
			s.awaitingGoal = true
			_, err = io.WriteString(s.out, goalPrompt)
		}
	case "pause", "p":
		_, err = s.svc.Pause(ctx)
	case "toggle", "t":
		_, err = s.svc.Toggle(ctx)
	case "reset", "r":
		_, err = s.svc.Reset(ctx)
	case "skip", "n", "next":
		_, err = s.svc.Skip(ctx)
	case "done", "complete", "c":
		_, err = s.svc.CompleteEarly(ctx)
	case "restart":
		_, err = s.svc.Restart(ctx, nil)
	case "task":
		if arg == "" {
			return false, apperrors.InvalidInput("invalid_task", "task needs a task id")
		}
		_, err = s.tasks.StartTask(ctx, arg)
	case "status":
		var view *service.StateView
		view, err = s.svc.State(ctx)
		if err == nil {
			s.print(*view)
		}
	case "help", "?":
		_, err = io.WriteString(s.out, sessionHelp)
	case "quit", "q", "exit":
		return true, nil
	default:
		return false, apperrors.InvalidInput("unknown_command", fmt.Sprintf("unknown command %q, type help", verb))
	}
	return false, err
}

func (s *session) print(view service.StateView) {
	if line, ok := viewLine(view, s.json); ok {
		_, _ = io.WriteString(s.out, line+"\n")
	}
}

// viewLine renders one view as JSON or as the status line.
func viewLine(view service.StateView, asJSON bool) (string, bool) {
	if !asJSON {
		return view.StatusLine(), true
	}
	data, err := json.Marshal(view)
	if err != nil {
		return "", false
	}
	return string(data), true
}

// renderer draws state updates. On a terminal the status line is redrawn in
// place; otherwise a line is printed only when the session changes.
type renderer struct {
	out     io.Writer
	tty     bool
	json    bool
	last    service.StateView
	hasLast bool
}

// draw issues at most one Write per view.
func (r *renderer) draw(view service.StateView) {
	defer func() {
		r.last = view
		r.hasLast = true
	}()

	if r.json {
		if line, ok := viewLine(view, true); ok {
			_, _ = io.WriteString(r.out, line+"\n")
		}
		return
	}

	if r.tty {
		line := "\r\033[K" + view.StatusLine()
		if view.Status == model.StatusFinished {
			line += "\n"
		}
		_, _ = io.WriteString(r.out, line)
		return
	}

	if r.hasLast &&
		view.Status == r.last.Status &&
		view.Position == r.last.Position &&
		view.GoalName == r.last.GoalName &&
		len(view.Roadmap) == len(r.last.Roadmap) {
		return
	}
	_, _ = io.WriteString(r.out, view.StatusLine()+"\n")
}

// readLines feeds input lines until EOF or ctx is done.
func readLines(ctx context.Context, in io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}
