// Package logging configures the process-wide zerolog logger.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	EnvLogLevel  = "HOSTBRIDGE_LOG_LEVEL"
	EnvLogFormat = "HOSTBRIDGE_LOG_FORMAT"
)

type Profile int

const (
	ProfileRuntime Profile = iota
	ProfileTest
)

// Options selects level and output format. Empty fields keep the profile
// default.
type Options struct {
	Level  string
	Format string
	Output io.Writer
}

func ConfigureRuntime(opts Options) {
	Configure(ProfileRuntime, opts)
}

func ConfigureTests() {
	Configure(ProfileTest, Options{})
}

// Configure installs the global logger. Environment variables win over opts.
func Configure(profile Profile, opts Options) {
	level := zerolog.InfoLevel
	if profile == ProfileTest {
		level = zerolog.Disabled
	}
	if lvl, ok := ParseLevel(opts.Level); ok {
		level = lvl
	}
	if lvl, ok := ParseLevel(os.Getenv(EnvLogLevel)); ok {
		level = lvl
	}

	format := opts.Format
	if env := strings.TrimSpace(os.Getenv(EnvLogFormat)); env != "" {
		format = env
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	if !strings.EqualFold(format, "json") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339, NoColor: profile == ProfileTest}
	}

	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
}

// ParseLevel maps a level name to a zerolog level.
func ParseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return zerolog.InfoLevel, false
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "off", "none":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}
