package system

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSystemInfo_ProbeFailureFallsBack(t *testing.T) {
	failing := ProberFunc(func(context.Context) (string, error) {
		return "", errors.New("probe exploded")
	})
	svc := New(WithProber(failing))

	info := svc.GetSystemInfo(context.Background())
	assert.NotEmpty(t, info.OS)
	assert.NotEmpty(t, info.Arch)
	assert.Equal(t, UnknownVersion, info.OSVersion)
}

func TestGetSystemInfo_BlankProbeFallsBack(t *testing.T) {
	svc := New(WithProber(ProberFunc(func(context.Context) (string, error) {
		return "   \n", nil
	})))
	assert.Equal(t, UnknownVersion, svc.GetSystemInfo(context.Background()).OSVersion)
}

func TestGetSystemInfo_ProbeValue(t *testing.T) {
	svc := New(WithProber(ProberFunc(func(context.Context) (string, error) {
		return "14.4.1\n", nil
	})))
	assert.Equal(t, "14.4.1", svc.GetSystemInfo(context.Background()).OSVersion)
}

func TestGetSystemInfo_DefaultProberNeverEmpty(t *testing.T) {
	info := New().GetSystemInfo(context.Background())
	assert.NotEmpty(t, info.OS)
	assert.NotEmpty(t, info.Arch)
	assert.NotEmpty(t, info.OSVersion)
}

func TestParseOSRelease(t *testing.T) {
	content := `NAME="Ubuntu"
VERSION_ID="24.04"
PRETTY_NAME="Ubuntu 24.04.1 LTS"
ID=ubuntu
`
	v, err := parseOSRelease(strings.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, "Ubuntu 24.04.1 LTS", v)

	v, err = parseOSRelease(strings.NewReader("PRETTY_NAME=Alpine\n"))
	require.NoError(t, err)
	assert.Equal(t, "Alpine", v)

	_, err = parseOSRelease(strings.NewReader("NAME=nothing\n"))
	assert.ErrorIs(t, err, errNoPrettyName)
}

func TestOSReleaseProber(t *testing.T) {
	path := filepath.Join(t.TempDir(), "os-release")
	require.NoError(t, os.WriteFile(path, []byte(`PRETTY_NAME="Debian GNU/Linux 12 (bookworm)"`+"\n"), 0o644))

	v, err := osReleaseProber{path: path}.ProbeOSVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Debian GNU/Linux 12 (bookworm)", v)

	svc := New(WithProber(osReleaseProber{path: path + ".missing"}))
	assert.Equal(t, UnknownVersion, svc.GetSystemInfo(context.Background()).OSVersion)
}

type fixedRunner struct {
	res *RunResult
	err error
}

func (r fixedRunner) Run(context.Context, string, []string) (*RunResult, error) {
	return r.res, r.err
}

func TestCommandProber(t *testing.T) {
	p := commandProber{runner: fixedRunner{res: &RunResult{Stdout: []byte("14.4.1\n")}}, name: "sw_vers"}
	v, err := p.ProbeOSVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "14.4.1", v)

	p = commandProber{runner: fixedRunner{res: &RunResult{ExitCode: 1}}, name: "sw_vers"}
	_, err = p.ProbeOSVersion(context.Background())
	assert.Error(t, err)

	p = commandProber{runner: fixedRunner{err: errors.New("not found")}, name: "sw_vers"}
	svc := New(WithProber(p))
	assert.Equal(t, UnknownVersion, svc.GetSystemInfo(context.Background()).OSVersion)
}

func TestUnsupportedProber(t *testing.T) {
	_, err := unsupportedProber{}.ProbeOSVersion(context.Background())
	assert.ErrorIs(t, err, ErrUnsupportedPlatform)
}

func TestGetHomeDirectory(t *testing.T) {
	env := map[string]string{homeEnvVar(): "/home/tester"}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
	svc := New(WithLookupEnv(lookup))

	home, err := svc.GetHomeDirectory()
	require.NoError(t, err)
	assert.Equal(t, "/home/tester", home)

	delete(env, homeEnvVar())
	_, err = svc.GetHomeDirectory()
	require.Error(t, err)
	assert.Equal(t, KindEnvironment, KindOf(err))
	assert.ErrorIs(t, err, ErrHomeNotSet)

	env[homeEnvVar()] = ""
	_, err = svc.GetHomeDirectory()
	assert.True(t, IsKind(err, KindEnvironment))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
	assert.Equal(t, KindInternal, KindOf(nil))
	wrapped := errors.Join(errors.New("ctx"), newError(KindNotFound, "op", "gone", nil))
	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.False(t, IsKind(nil, KindInternal))
}
