package system

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
)

// RunResult is the raw outcome of a finished process.
type RunResult struct {
	Stdout    []byte
	Stderr    []byte
	ExitCode  int
	Truncated bool
}

// Runner spawns a process and waits for it. A non-zero exit is reported in
// RunResult, not as an error; an error means the process could not be created
// or was stopped by ctx.
type Runner interface {
	Run(ctx context.Context, name string, args []string) (*RunResult, error)
}

// ExecRunner runs processes on the local host with os/exec.
type ExecRunner struct {
	// MaxOutput caps each of stdout and stderr in bytes. Zero means no cap.
	MaxOutput int
}

// Run implements Runner.
func (r ExecRunner) Run(ctx context.Context, name string, args []string) (*RunResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	stdout := &limitedBuffer{limit: r.MaxOutput}
	stderr := &limitedBuffer{limit: r.MaxOutput}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	err := cmd.Run()
	res := &RunResult{
		Stdout:    stdout.Bytes(),
		Stderr:    stderr.Bytes(),
		Truncated: stdout.truncated || stderr.truncated,
	}
	if err == nil {
		return res, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, ctxErr
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	return nil, err
}

type limitedBuffer struct {
	buf       bytes.Buffer
	limit     int
	truncated bool
}

func (l *limitedBuffer) Write(p []byte) (int, error) {
	if l.limit <= 0 {
		return l.buf.Write(p)
	}
	remaining := l.limit - l.buf.Len()
	if remaining <= 0 {
		l.truncated = true
		return len(p), nil
	}
	if len(p) > remaining {
		l.truncated = true
		_, _ = l.buf.Write(p[:remaining])
		return len(p), nil
	}
	return l.buf.Write(p)
}

func (l *limitedBuffer) Bytes() []byte {
	return l.buf.Bytes()
}

var _ io.Writer = (*limitedBuffer)(nil)
