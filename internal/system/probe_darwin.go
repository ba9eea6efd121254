//go:build darwin

package system

func defaultProber(r Runner) VersionProber {
	return commandProber{runner: r, name: "sw_vers", args: []string{"-productVersion"}}
}
