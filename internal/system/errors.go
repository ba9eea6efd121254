package system

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers across the RPC boundary can branch on
// something sturdier than the message text.
type Kind string

const (
	// KindPolicyViolation marks an allow-list rejection.
	KindPolicyViolation Kind = "policy_violation"
	// KindIO marks any filesystem failure.
	KindIO Kind = "io_error"
	// KindNotFound marks a missing backup source.
	KindNotFound Kind = "not_found"
	// KindSpawn marks a process that could not be created.
	KindSpawn Kind = "spawn_error"
	// KindEnvironment marks a required environment value that is absent.
	KindEnvironment Kind = "environment_error"
	// KindTimeout marks a command killed after the configured timeout.
	KindTimeout Kind = "timeout"
	// KindCanceled marks a command stopped because its caller went away.
	KindCanceled Kind = "canceled"
	// KindInternal is used for errors that carry no kind.
	KindInternal Kind = "internal"
)

var (
	// ErrHomeNotSet is returned when the home directory variable is unset.
	ErrHomeNotSet = errors.New("home directory variable is not set")
	// ErrInvalidUTF8 is returned when a file read as text is not UTF-8.
	ErrInvalidUTF8 = errors.New("file content is not valid UTF-8")
	// ErrUnsupportedPlatform is returned by probes with nothing to probe.
	ErrUnsupportedPlatform = errors.New("no version probe for this platform")
)

// Error is the single error type the access layer returns.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return fmt.Sprintf("%s: %v", e.Msg, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, op, msg string, err error) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg, Err: err}
}

// KindOf returns the Kind carried by err, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
