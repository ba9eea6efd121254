// Package version carries build metadata injected with -ldflags.
package version

import "fmt"

// Name is the product name reported by the CLI.
const Name = "hostbridge"

// These variables are set at build time using -ldflags
var (
	// Version is the semantic version reported to the UI by get_app_version.
	Version = "dev"

	// BuildTime is the time the binary was built
	BuildTime = "unknown"

	// GitCommit is the git commit hash
	GitCommit = "unknown"
)

// Info returns version information as a map
func Info() map[string]string {
	return map[string]string{
		"name":       Name,
		"version":    Version,
		"build_time": BuildTime,
		"git_commit": GitCommit,
	}
}

// String formats the banner printed by `hostbridge version`.
func String() string {
	return fmt.Sprintf("%s %s\nBuild Time: %s\nGit Commit: %s", Name, Version, BuildTime, GitCommit)
}
