//go:build windows

package system

func defaultProber(r Runner) VersionProber {
	return commandProber{runner: r, name: "cmd", args: []string{"/C", "ver"}}
}
