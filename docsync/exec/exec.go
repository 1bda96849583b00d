// Package exec runs external commands, mostly git, and
// reports their output with the failure.
package exec

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// Error is returned when a command exits with an
// error. Output holds its combined stdout and stderr.
type Error struct {
	Cmd    string
	Output string
	Err    error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("executing command: %s: %v", e.Cmd, e.Err)

	if out := strings.TrimSpace(e.Output); out != "" {
		msg += ": " + lastLine(out)
	}

	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Ex runs name with args in dir, or in the current
// directory when dir is empty, and returns the
// combined output. The process is killed when ctx is
// done.
func Ex(
	ctx context.Context,
	dir string,
	name string,
	arg ...string,
) (string, error) {
	line := strings.TrimSpace(name + " " + strings.Join(arg, " "))

	slog.Debug("executing", "cmd", line, "dir", dir)

	cmd := exec.CommandContext(ctx, name, arg...)
	cmd.Dir = dir

	by, err := cmd.CombinedOutput()
	out := string(by)

	if err != nil {
		return out, &Error{Cmd: line, Output: out, Err: err}
	}

	slog.Debug("command output", "cmd", name, "output", out)

	return out, nil
}

// Run executes each command in order in dir and stops
// at the first failure. Empty commands are skipped.
func Run(
	ctx context.Context,
	dir string,
	cmds ...[]string,
) error {
	for _, c := range cmds {
		if len(c) == 0 {
			continue
		}

		if _, err := Ex(ctx, dir, c[0], c[1:]...); err != nil {
			return err
		}
	}

	return nil
}

func lastLine(s string) string {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}

	return s
}
