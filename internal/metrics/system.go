// Package metrics takes point-in-time snapshots of host resource usage.
package metrics

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"
)

// SystemMetrics represents current system resource usage.
type SystemMetrics struct {
	CPU     CPUMetrics       `json:"cpu"`
	Memory  MemoryMetrics    `json:"memory"`
	Disks   []DiskMetrics    `json:"disks"`
	Network []NetworkMetrics `json:"network"`
	Uptime  int64            `json:"uptime"`   // seconds
	LoadAvg []float64        `json:"load_avg"` // 1, 5, 15 min
}

// CPUMetrics represents CPU usage information.
type CPUMetrics struct {
	UsagePercent float64   `json:"usage_percent"`
	Cores        int       `json:"cores"`
	PerCore      []float64 `json:"per_core"`
}

// MemoryMetrics represents memory usage information.
type MemoryMetrics struct {
	Total       uint64  `json:"total"`
	Used        uint64  `json:"used"`
	Available   uint64  `json:"available"`
	UsedPercent float64 `json:"used_percent"`
	SwapTotal   uint64  `json:"swap_total"`
	SwapUsed    uint64  `json:"swap_used"`
}

// DiskMetrics represents disk usage information.
type DiskMetrics struct {
	Device      string  `json:"device"`
	MountPoint  string  `json:"mount_point"`
	Filesystem  string  `json:"filesystem"`
	Total       uint64  `json:"total"`
	Used        uint64  `json:"used"`
	Available   uint64  `json:"available"`
	UsedPercent float64 `json:"used_percent"`
}

// NetworkMetrics represents network interface statistics.
type NetworkMetrics struct {
	Interface   string `json:"interface"`
	BytesSent   uint64 `json:"bytes_sent"`
	BytesRecv   uint64 `json:"bytes_recv"`
	PacketsSent uint64 `json:"packets_sent"`
	PacketsRecv uint64 `json:"packets_recv"`
	ErrIn       uint64 `json:"err_in"`
	ErrOut      uint64 `json:"err_out"`
	DropIn      uint64 `json:"drop_in"`
	DropOut     uint64 `json:"drop_out"`
	IsUp        bool   `json:"is_up"`
}

// cpuSampleInterval is how long CPU usage is sampled for.
const cpuSampleInterval = 200 * time.Millisecond

type collector func(ctx context.Context, m *SystemMetrics, mu *sync.Mutex) error

var collectors = []collector{
	collectCPU,
	collectMemory,
	collectDisks,
	collectNetwork,
	collectHost,
}

// GetSystemMetrics collects a snapshot with a background context.
func GetSystemMetrics() (*SystemMetrics, error) {
	return GetSystemMetricsWithContext(context.Background())
}

// GetSystemMetricsWithContext runs every collector concurrently. A collector
// whose source is unavailable on this host leaves its fields zero; only
// cancellation of ctx fails the snapshot.
func GetSystemMetricsWithContext(ctx context.Context) (*SystemMetrics, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m := &SystemMetrics{}
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, c := range collectors {
		c := c
		g.Go(func() error { return c(gctx, m, &mu) })
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return m, nil
}

func collectCPU(ctx context.Context, m *SystemMetrics, mu *sync.Mutex) error {
	perCore, err := cpu.PercentWithContext(ctx, cpuSampleInterval, true)
	if err := ctx.Err(); err != nil {
		return err
	}
	cores, countErr := cpu.CountsWithContext(ctx, true)

	mu.Lock()
	defer mu.Unlock()
	if err == nil && len(perCore) > 0 {
		m.CPU.PerCore = perCore
		var total float64
		for _, p := range perCore {
			total += p
		}
		m.CPU.UsagePercent = total / float64(len(perCore))
	}
	if countErr == nil {
		m.CPU.Cores = cores
	}
	return nil
}

func collectMemory(ctx context.Context, m *SystemMetrics, mu *sync.Mutex) error {
	vmem, err := mem.VirtualMemoryWithContext(ctx)
	swap, swapErr := mem.SwapMemoryWithContext(ctx)
	if err := ctx.Err(); err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()
	if err == nil {
		m.Memory.Total = vmem.Total
		m.Memory.Used = vmem.Used
		m.Memory.Available = vmem.Available
		m.Memory.UsedPercent = vmem.UsedPercent
	}
	if swapErr == nil {
		m.Memory.SwapTotal = swap.Total
		m.Memory.SwapUsed = swap.Used
	}
	return nil
}

func collectDisks(ctx context.Context, m *SystemMetrics, mu *sync.Mutex) error {
	partitions, err := disk.PartitionsWithContext(ctx, false)
	if err != nil {
		return ctx.Err()
	}

	disks := make([]DiskMetrics, 0, len(partitions))
	for _, p := range partitions {
		if err := ctx.Err(); err != nil {
			return err
		}
		if virtualFilesystems[p.Fstype] {
			continue
		}
		usage, err := disk.UsageWithContext(ctx, p.Mountpoint)
		if err != nil {
			continue
		}
		disks = append(disks, DiskMetrics{
			Device:      p.Device,
			MountPoint:  p.Mountpoint,
			Filesystem:  p.Fstype,
			Total:       usage.Total,
			Used:        usage.Used,
			Available:   usage.Free,
			UsedPercent: usage.UsedPercent,
		})
	}

	mu.Lock()
	m.Disks = disks
	mu.Unlock()
	return nil
}

func collectNetwork(ctx context.Context, m *SystemMetrics, mu *sync.Mutex) error {
	counters, err := net.IOCountersWithContext(ctx, true)
	if err != nil {
		return ctx.Err()
	}

	up := make(map[string]bool)
	if ifaces, err := net.InterfacesWithContext(ctx); err == nil {
		for _, iface := range ifaces {
			for _, flag := range iface.Flags {
				if flag == "up" {
					up[iface.Name] = true
					break
				}
			}
		}
	}

	networks := make([]NetworkMetrics, 0, len(counters))
	for _, c := range counters {
		if isVirtualInterface(c.Name) {
			continue
		}
		networks = append(networks, NetworkMetrics{
			Interface:   c.Name,
			BytesSent:   c.BytesSent,
			BytesRecv:   c.BytesRecv,
			PacketsSent: c.PacketsSent,
			PacketsRecv: c.PacketsRecv,
			ErrIn:       c.Errin,
			ErrOut:      c.Errout,
			DropIn:      c.Dropin,
			DropOut:     c.Dropout,
			IsUp:        up[c.Name],
		})
	}

	mu.Lock()
	m.Network = networks
	mu.Unlock()
	return nil
}

func collectHost(ctx context.Context, m *SystemMetrics, mu *sync.Mutex) error {
	uptime, uptimeErr := host.UptimeWithContext(ctx)
	avg, loadErr := load.AvgWithContext(ctx)
	if err := ctx.Err(); err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()
	if uptimeErr == nil {
		m.Uptime = int64(uptime) // #nosec G115
	}
	if loadErr == nil {
		m.LoadAvg = []float64{avg.Load1, avg.Load5, avg.Load15}
	}
	return nil
}

var virtualFilesystems = map[string]bool{
	"sysfs": true, "proc": true, "devfs": true, "devpts": true, "tmpfs": true,
	"debugfs": true, "securityfs": true, "cgroup": true, "cgroup2": true,
	"pstore": true, "bpf": true, "autofs": true, "mqueue": true, "hugetlbfs": true,
	"fusectl": true, "configfs": true, "devtmpfs": true, "overlay": true,
	"squashfs": true, "nsfs": true, "ramfs": true,
}

var virtualInterfacePrefixes = []string{
	"veth", "docker", "br-", "virbr", "vnet", "flannel", "cni", "calico", "weave",
}

func isVirtualInterface(name string) bool {
	if name == "lo" || name == "lo0" {
		return true
	}
	for _, prefix := range virtualInterfacePrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}
