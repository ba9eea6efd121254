// Package dialog opens the host's native save-file dialog. The dialog itself
// is an external tool; this package only knows how to launch it and read
// back the chosen path.
package dialog

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pandeptwidyaop/hostbridge/internal/system"
)

// ErrUnsupported is returned on platforms without a known dialog tool.
var ErrUnsupported = errors.New("save dialog is not supported on this platform")

// Filter is a named file-type filter offered by the dialog.
type Filter struct {
	Name       string
	Extensions []string
}

// DefaultFilters are offered by every native dialog.
var DefaultFilters = []Filter{
	{Name: "JSON Files", Extensions: []string{"json"}},
	{Name: "All Files", Extensions: []string{"*"}},
}

// Saver asks the user where to save a file. ok is false when the user
// cancelled.
type Saver interface {
	SaveFile(ctx context.Context, defaultPath string) (path string, ok bool, err error)
}

// Headless never shows anything and always reports cancellation.
type Headless struct{}

// SaveFile implements Saver.
func (Headless) SaveFile(context.Context, string) (string, bool, error) {
	return "", false, nil
}

// Native launches the platform dialog tool (osascript, zenity or
// PowerShell) and reads the chosen path from its stdout.
type Native struct {
	Runner  system.Runner
	Title   string
	Filters []Filter
	GOOS    string
}

// NewNative returns a Native dialog for the running platform.
func NewNative(title string) *Native {
	return &Native{
		Runner:  system.ExecRunner{},
		Title:   title,
		Filters: DefaultFilters,
		GOOS:    runtime.GOOS,
	}
}

// SaveFile implements Saver. Exit status 1 from the tool is a cancellation.
func (n *Native) SaveFile(ctx context.Context, defaultPath string) (string, bool, error) {
	name, args, err := command(n.GOOS, n.Title, defaultPath, n.Filters)
	if err != nil {
		return "", false, err
	}

	res, err := n.Runner.Run(ctx, name, args)
	if err != nil {
		return "", false, fmt.Errorf("failed to open save dialog: %w", err)
	}

	switch res.ExitCode {
	case 0:
	case 1:
		return "", false, nil
	default:
		return "", false, fmt.Errorf("save dialog exited with code %d: %s",
			res.ExitCode, strings.TrimSpace(string(res.Stderr)))
	}

	path := strings.TrimSpace(string(res.Stdout))
	if path == "" {
		return "", false, nil
	}
	return path, true, nil
}

func command(goos, title, defaultPath string, filters []Filter) (string, []string, error) {
	switch goos {
	case "darwin":
		script := fmt.Sprintf(`POSIX path of (choose file name with prompt %s default name %s`,
			appleScriptString(title), appleScriptString(filepath.Base(defaultPath)))
		if dir := filepath.Dir(defaultPath); dir != "." && filepath.IsAbs(defaultPath) {
			script += " default location POSIX file " + appleScriptString(dir)
		}
		script += ")"
		return "osascript", []string{"-e", script}, nil

	case "linux", "freebsd", "openbsd", "netbsd":
		args := []string{"--file-selection", "--save", "--confirm-overwrite", "--title=" + title}
		if defaultPath != "" {
			args = append(args, "--filename="+defaultPath)
		}
		for _, f := range filters {
			patterns := make([]string, 0, len(f.Extensions))
			for _, ext := range f.Extensions {
				patterns = append(patterns, "*."+ext)
				if ext == "*" {
					patterns[len(patterns)-1] = "*"
				}
			}
			args = append(args, "--file-filter="+f.Name+" | "+strings.Join(patterns, " "))
		}
		return "zenity", args, nil

	case "windows":
		parts := make([]string, 0, len(filters))
		for _, f := range filters {
			patterns := make([]string, 0, len(f.Extensions))
			for _, ext := range f.Extensions {
				patterns = append(patterns, "*."+ext)
			}
			joined := strings.Join(patterns, ";")
			parts = append(parts, fmt.Sprintf("%s (%s)|%s", f.Name, joined, joined))
		}
		script := strings.Join([]string{
			"Add-Type -AssemblyName System.Windows.Forms",
			"$d = New-Object System.Windows.Forms.SaveFileDialog",
			"$d.Title = " + powerShellString(title),
			"$d.FileName = " + powerShellString(defaultPath),
			"$d.Filter = " + powerShellString(strings.Join(parts, "|")),
			"if ($d.ShowDialog() -eq 'OK') { Write-Output $d.FileName } else { exit 1 }",
		}, "; ")
		return "powershell", []string{"-NoProfile", "-NonInteractive", "-Command", script}, nil
	}

	return "", nil, ErrUnsupported
}

func appleScriptString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

func powerShellString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
