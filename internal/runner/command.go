// Package runner executes dashboard tasks on their periods and streams
// their output to the screen.
package runner

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"
)

// Result is the outcome of one task run.
type Result struct {
	TaskID    string
	Output    string
	ExitCode  int
	StartedAt time.Time
	Duration  time.Duration
}

// Command is a task's command line. The first word is resolved against
// Path, which is also the working directory.
type Command struct {
	ID   string
	Path string
	Line string
}

var errEmptyCommand = errors.New("empty command")

func (c Command) argv(extra []string) (string, []string, error) {
	fields := strings.Fields(c.Line)
	if len(fields) == 0 {
		return "", nil, errEmptyCommand
	}
	name := fields[0]
	if c.Path != "" && !filepath.IsAbs(name) {
		name = filepath.Join(c.Path, name)
	}
	return name, append(fields[1:], extra...), nil
}

// Run executes the command once with extra appended to its arguments. A
// non-zero exit is not an error; err is set only when the process could
// not be run, and the result's output then carries the reason.
func (c Command) Run(ctx context.Context, extra ...string) (Result, error) {
	res := Result{TaskID: c.ID, StartedAt: time.Now()}

	name, args, err := c.argv(extra)
	if err != nil {
		res.ExitCode = -1
		res.Output = err.Error()
		return res, err
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = c.Path
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	res.Duration = time.Since(res.StartedAt)
	res.Output = convertOutput(stdout.Bytes(), stderr.Bytes())

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return res, nil
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	default:
		res.ExitCode = -1
		if res.Output == "" {
			res.Output = err.Error()
		}
		return res, err
	}
}

// convertOutput picks what a panel shows: stderr when there is any,
// otherwise stdout. A stream that is not valid UTF-8 counts as empty.
func convertOutput(stdout, stderr []byte) string {
	text := func(b []byte) string {
		if !utf8.Valid(b) {
			return ""
		}
		return string(b)
	}
	if errText := text(stderr); errText != "" {
		return errText
	}
	return text(stdout)
}
