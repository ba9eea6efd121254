//go:build !linux && !darwin && !windows

package system

func defaultProber(Runner) VersionProber {
	return unsupportedProber{}
}
