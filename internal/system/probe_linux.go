//go:build linux

package system

func defaultProber(Runner) VersionProber {
	return osReleaseProber{path: osReleasePath}
}
