package system

import "sort"

// allowedCommands is the fixed set of executables the UI may spawn. It is a
// security control and has no configuration surface.
var allowedCommands = map[string]struct{}{
	"killall": {},
	"ps":      {},
	"ls":      {},
	"cat":     {},
	"mkdir":   {},
	"rm":      {},
	"pgrep":   {},
	"open":    {},
}

// IsAllowed reports whether name is on the allow-list. The match is exact and
// case-sensitive; paths are not normalised.
func IsAllowed(name string) bool {
	_, ok := allowedCommands[name]
	return ok
}

// AllowedCommands returns the allow-list in sorted order.
func AllowedCommands() []string {
	names := make([]string, 0, len(allowedCommands))
	for name := range allowedCommands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
