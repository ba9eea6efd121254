package services

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"

	"github.com/pandeptwidyaop/hostbridge/internal/config"
	"github.com/pandeptwidyaop/hostbridge/internal/system"
	"github.com/pandeptwidyaop/hostbridge/internal/version"
)

// AppInfo answers questions about the application itself rather than the host.
type AppInfo struct {
	cfg       config.AppConfig
	goos      string
	lookupEnv func(string) (string, bool)
}

// NewAppInfo creates an AppInfo for the given application settings.
func NewAppInfo(cfg config.AppConfig) *AppInfo {
	return &AppInfo{cfg: cfg, goos: runtime.GOOS, lookupEnv: os.LookupEnv}
}

// Version returns the build version.
func (a *AppInfo) Version() string {
	return version.Version
}

// DataDir returns the per-application data directory. It is not created.
func (a *AppInfo) DataDir() (string, error) {
	if a.cfg.DataDir != "" {
		return a.cfg.DataDir, nil
	}

	base, err := a.platformDataDir()
	if err != nil {
		return "", &system.Error{
			Kind: system.KindEnvironment,
			Op:   "get_app_data_dir",
			Msg:  "Failed to get app data dir",
			Err:  err,
		}
	}
	return filepath.Join(base, a.cfg.Identifier), nil
}

func (a *AppInfo) platformDataDir() (string, error) {
	if a.goos != "linux" {
		return os.UserConfigDir()
	}
	if dir, ok := a.lookupEnv("XDG_DATA_HOME"); ok && filepath.IsAbs(dir) {
		return dir, nil
	}
	home, ok := a.lookupEnv("HOME")
	if !ok || home == "" {
		return "", errors.New("neither $XDG_DATA_HOME nor $HOME is defined")
	}
	return filepath.Join(home, ".local", "share"), nil
}
