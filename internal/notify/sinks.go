package notify

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"

	"pomodoro/zenpomo/internal/model"
)

// Bell rings the terminal bell and prints the cue message.
type Bell struct {
	mu sync.Mutex
	w  io.Writer
}

func NewBell(w io.Writer) *Bell {
	return &Bell{w: w}
}

func (b *Bell) Play(_ context.Context, cue model.Cue, message string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	prefix := "->"
	if cue == model.CuePlanComplete {
		prefix = "**"
	}
	_, err := fmt.Fprintf(b.w, "\a\n%s %s\n", prefix, message)
	return err
}

const MessagePlaceholder = "{message}"

// Command runs an external program per cue, e.g. a sound player or a speech
// synthesiser. The {message} placeholder in any argument is replaced with
// the cue message.
type Command struct {
	commands map[model.Cue][]string
}

func NewCommand(commands map[model.Cue]string) *Command {
	parsed := make(map[model.Cue][]string, len(commands))
	for cue, line := range commands {
		argv := strings.Fields(line)
		if len(argv) > 0 {
			parsed[cue] = argv
		}
	}
	return &Command{commands: parsed}
}

// Empty reports whether no cue has a command configured.
func (c *Command) Empty() bool {
	return len(c.commands) == 0
}

func (c *Command) Play(ctx context.Context, cue model.Cue, message string) error {
	argv, ok := c.commands[cue]
	if !ok {
		return nil
	}
	args := make([]string, 0, len(argv)-1)
	for _, arg := range argv[1:] {
		args = append(args, strings.ReplaceAll(arg, MessagePlaceholder, message))
	}
	out, err := exec.CommandContext(ctx, argv[0], args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("run %s: %w: %s", argv[0], err, strings.TrimSpace(string(out)))
	}
	return nil
}
