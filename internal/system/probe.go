package system

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// VersionProber reports the host OS version.
type VersionProber interface {
	ProbeOSVersion(ctx context.Context) (string, error)
}

// ProberFunc adapts a function to VersionProber.
type ProberFunc func(ctx context.Context) (string, error)

// ProbeOSVersion implements VersionProber.
func (f ProberFunc) ProbeOSVersion(ctx context.Context) (string, error) {
	return f(ctx)
}

// commandProber asks a fixed system utility for the version. These probes
// are internal and bypass the UI allow-list.
type commandProber struct {
	runner Runner
	name   string
	args   []string
}

func (p commandProber) ProbeOSVersion(ctx context.Context) (string, error) {
	res, err := p.runner.Run(ctx, p.name, p.args)
	if err != nil {
		return "", err
	}
	if res.ExitCode != 0 {
		return "", fmt.Errorf("%s exited with code %d", p.name, res.ExitCode)
	}
	return strings.TrimSpace(decodeLossy(res.Stdout)), nil
}

const osReleasePath = "/etc/os-release"

var errNoPrettyName = errors.New("PRETTY_NAME not found")

// osReleaseProber reads PRETTY_NAME from an os-release file.
type osReleaseProber struct {
	path string
}

func (p osReleaseProber) ProbeOSVersion(context.Context) (string, error) {
	f, err := os.Open(p.path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()
	return parseOSRelease(f)
}

func parseOSRelease(r io.Reader) (string, error) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if value, ok := strings.CutPrefix(line, "PRETTY_NAME="); ok {
			return strings.Trim(value, `"`), nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", errNoPrettyName
}

type unsupportedProber struct{}

func (unsupportedProber) ProbeOSVersion(context.Context) (string, error) {
	return "", ErrUnsupportedPlatform
}
