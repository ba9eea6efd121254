package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSystemMetrics(t *testing.T) {
	m, err := GetSystemMetrics()
	require.NoError(t, err)
	require.NotNil(t, m)

	assert.GreaterOrEqual(t, m.CPU.UsagePercent, 0.0)
	assert.LessOrEqual(t, m.CPU.UsagePercent, 100.0)
	assert.Positive(t, m.CPU.Cores)

	assert.NotZero(t, m.Memory.Total)
	assert.LessOrEqual(t, m.Memory.Used, m.Memory.Total)

	// Load average is not available everywhere.
	if len(m.LoadAvg) > 0 {
		assert.Len(t, m.LoadAvg, 3)
	}

	for _, d := range m.Disks {
		assert.NotEmpty(t, d.MountPoint)
		assert.False(t, virtualFilesystems[d.Filesystem], d.Filesystem)
	}
	for _, n := range m.Network {
		assert.False(t, isVirtualInterface(n.Interface), n.Interface)
	}
}

func TestGetSystemMetrics_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m, err := GetSystemMetricsWithContext(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, m)
}

func TestVirtualFilesystems(t *testing.T) {
	for fstype, want := range map[string]bool{
		"ext4": false, "xfs": false, "apfs": false, "ntfs": false,
		"tmpfs": true, "proc": true, "overlay": true, "cgroup2": true,
	} {
		assert.Equal(t, want, virtualFilesystems[fstype], fstype)
	}
}

func TestIsVirtualInterface(t *testing.T) {
	tests := []struct {
		name     string
		expected bool
	}{
		{"lo", true},
		{"lo0", true},
		{"eth0", false},
		{"en0", false},
		{"wlan0", false},
		{"docker0", true},
		{"br-abc123", true},
		{"veth123abc", true},
		{"flannel.1", true},
		{"calico123", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, isVirtualInterface(tc.name))
		})
	}
}
