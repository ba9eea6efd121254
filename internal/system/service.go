// Package system is the guarded access layer between the UI bridge and the
// host: file I/O, backup and restore, allow-listed process execution and
// platform metadata. It holds no state between calls, so a single Service is
// safe for concurrent use.
package system

import (
	"fmt"
	"os"
	"runtime"
	"time"
)

// Service performs host operations on behalf of the UI.
type Service struct {
	runner    Runner
	prober    VersionProber
	lookupEnv func(string) (string, bool)
	timeout   time.Duration
	maxOutput int
}

// Option configures a Service.
type Option func(*Service)

// WithRunner replaces the process runner used by ExecuteCommand.
func WithRunner(r Runner) Option {
	return func(s *Service) {
		s.runner = r
	}
}

// WithProber replaces the OS version probe used by GetSystemInfo.
func WithProber(p VersionProber) Option {
	return func(s *Service) {
		s.prober = p
	}
}

// WithTimeout bounds ExecuteCommand. Zero leaves commands unbounded.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.timeout = d
	}
}

// WithMaxOutput caps captured stdout and stderr for the default runner.
func WithMaxOutput(n int) Option {
	return func(s *Service) {
		s.maxOutput = n
	}
}

// WithLookupEnv replaces os.LookupEnv.
func WithLookupEnv(fn func(string) (string, bool)) Option {
	return func(s *Service) {
		s.lookupEnv = fn
	}
}

// New creates a Service.
func New(opts ...Option) *Service {
	s := &Service{lookupEnv: os.LookupEnv}
	for _, opt := range opts {
		opt(s)
	}
	if s.runner == nil {
		s.runner = ExecRunner{MaxOutput: s.maxOutput}
	}
	if s.prober == nil {
		s.prober = defaultProber(ExecRunner{})
	}
	return s
}

func homeEnvVar() string {
	if runtime.GOOS == "windows" {
		return "USERPROFILE"
	}
	return "HOME"
}

// GetHomeDirectory returns the user's home directory from the environment.
func (s *Service) GetHomeDirectory() (string, error) {
	name := homeEnvVar()
	home, ok := s.lookupEnv(name)
	if !ok || home == "" {
		return "", newError(KindEnvironment, "get_home_dir", "Failed to get home directory",
			fmt.Errorf("%s: %w", name, ErrHomeNotSet))
	}
	return home, nil
}
