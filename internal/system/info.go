package system

import (
	"context"
	"runtime"
	"strings"
)

// UnknownVersion is reported when the OS version cannot be determined.
const UnknownVersion = "Unknown"

// SystemInfo describes the host platform.
type SystemInfo struct {
	OS        string `json:"os"`
	Arch      string `json:"arch"`
	OSVersion string `json:"os_version"`
}

// GetSystemInfo never fails; an unavailable version becomes UnknownVersion.
func (s *Service) GetSystemInfo(ctx context.Context) SystemInfo {
	return SystemInfo{
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		OSVersion: s.osVersion(ctx),
	}
}

func (s *Service) osVersion(ctx context.Context) string {
	v, err := s.prober.ProbeOSVersion(ctx)
	if err != nil {
		return UnknownVersion
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return UnknownVersion
	}
	return v
}
