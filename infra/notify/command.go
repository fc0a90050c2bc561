package notify

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// DefaultCommand shows a desktop notification on most Linux desktops.
const DefaultCommand = "notify-send"

// CommandNotifier runs an external program with the title and message as
// its last two arguments, e.g. notify-send -t 10000 <title> <message>.
type CommandNotifier struct {
	command string
	args    []string
	run     func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// NewCommandNotifier creates a notifier for command. Empty command selects
// DefaultCommand.
func NewCommandNotifier(command string, args ...string) *CommandNotifier {
	if command == "" {
		command = DefaultCommand
	}
	return &CommandNotifier{command: command, args: args, run: runCommand}
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Notify runs the command and waits for it to exit.
func (n *CommandNotifier) Notify(ctx context.Context, title, message string) error {
	args := append(append([]string(nil), n.args...), title, message)
	out, err := n.run(ctx, n.command, args...)
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return fmt.Errorf("%s: %w: %s", n.command, err, msg)
		}
		return fmt.Errorf("%s: %w", n.command, err)
	}
	return nil
}
