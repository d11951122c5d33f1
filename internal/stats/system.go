package stats

import (
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"
	"github.com/shirou/gopsutil/v3/process"
)

type SystemInfo struct {
	OS           string
	Hostname     string
	SystemUptime time.Duration

	CPUCores int
	CPUUsage float64
	Load1    float64
	Load5    float64
	Load15   float64

	MemUsed      uint64
	MemTotal     uint64
	MemPercent   float64
	MemAvailable uint64

	DiskUsed    uint64
	DiskTotal   uint64
	DiskPercent float64
	DiskFree    uint64

	NetSent uint64
	NetRecv uint64

	ProcessPID int
	ProcessCPU float64
	ProcessMem uint64

	GoVersion  string
	Goroutines int
	HeapAlloc  uint64
	StackInUse uint64
	NextGC     uint64
	PauseTotal time.Duration
	GCRuns     uint32
}

// GetSystemInfo samples host, process and runtime figures. Probes that fail
// leave their fields zero; diskPath selects the volume to report.
func GetSystemInfo(diskPath string) *SystemInfo {
	info := &SystemInfo{CPUCores: runtime.NumCPU()}

	if h, err := host.Info(); err == nil {
		info.OS = h.OS
		info.Hostname = h.Hostname
		info.SystemUptime = time.Duration(h.Uptime) * time.Second
	}
	if p, err := cpu.Percent(200*time.Millisecond, false); err == nil && len(p) > 0 {
		info.CPUUsage = p[0]
	}
	if l, err := load.Avg(); err == nil {
		info.Load1, info.Load5, info.Load15 = l.Load1, l.Load5, l.Load15
	}
	if m, err := mem.VirtualMemory(); err == nil {
		info.MemUsed = m.Used
		info.MemTotal = m.Total
		info.MemPercent = m.UsedPercent
		info.MemAvailable = m.Available
	}
	if diskPath == "" {
		diskPath = "/"
	}
	if d, err := disk.Usage(diskPath); err == nil {
		info.DiskUsed = d.Used
		info.DiskTotal = d.Total
		info.DiskPercent = d.UsedPercent
		info.DiskFree = d.Free
	}
	if n, err := net.IOCounters(false); err == nil && len(n) > 0 {
		info.NetSent = n[0].BytesSent
		info.NetRecv = n[0].BytesRecv
	}

	info.ProcessPID = os.Getpid()
	if proc, err := process.NewProcess(int32(info.ProcessPID)); err == nil {
		if p, err := proc.CPUPercent(); err == nil {
			info.ProcessCPU = p
		}
		if m, err := proc.MemoryInfo(); err == nil {
			info.ProcessMem = m.RSS
		}
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	info.GoVersion = runtime.Version()
	info.Goroutines = runtime.NumGoroutine()
	info.HeapAlloc = m.HeapAlloc
	info.StackInUse = m.StackInuse
	info.NextGC = m.NextGC
	info.PauseTotal = time.Duration(m.PauseTotalNs)
	info.GCRuns = m.NumGC
	return info
}
