package system

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// CommandResult is the outcome of an allow-listed command.
type CommandResult struct {
	Stdout    string `json:"stdout"`
	Stderr    string `json:"stderr"`
	Success   bool   `json:"success"`
	ExitCode  int    `json:"exit_code"`
	Truncated bool   `json:"truncated,omitempty"`
}

// ExecuteCommand runs name with args if name is on the allow-list. The check
// happens before anything is spawned. Arguments are passed through verbatim.
// A non-zero exit is returned as a result with Success false.
func (s *Service) ExecuteCommand(ctx context.Context, name string, args []string) (*CommandResult, error) {
	const op = "execute_command"

	if !IsAllowed(name) {
		return nil, newError(KindPolicyViolation, op, fmt.Sprintf("Command '%s' is not allowed", name), nil)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	res, err := s.runner.Run(ctx, name, args)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, newError(KindTimeout, op, fmt.Sprintf("Command '%s' timed out after %s", name, s.timeout), err)
		}
		if errors.Is(err, context.Canceled) {
			return nil, newError(KindCanceled, op, fmt.Sprintf("Command '%s' was cancelled", name), err)
		}
		return nil, newError(KindSpawn, op, "Failed to execute command", err)
	}

	return &CommandResult{
		Stdout:    decodeLossy(res.Stdout),
		Stderr:    decodeLossy(res.Stderr),
		Success:   res.ExitCode == 0,
		ExitCode:  res.ExitCode,
		Truncated: res.Truncated,
	}, nil
}

// decodeLossy converts process output to text, replacing invalid UTF-8.
func decodeLossy(b []byte) string {
	return strings.ToValidUTF8(string(b), "\uFFFD")
}
