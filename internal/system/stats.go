package system

import (
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// Stats is a snapshot of the host used for worker sizing and the
// performance report.
type Stats struct {
	LogicalCPUs  int
	PhysicalCPUs int
	TotalMemory  uint64
	FreeMemory   uint64
}

// HostStats collects Stats. Fields gopsutil cannot read fall back to the Go
// runtime view or stay zero.
func HostStats() Stats {
	s := Stats{LogicalCPUs: runtime.NumCPU()}
	if n, err := cpu.Counts(true); err == nil && n > 0 {
		s.LogicalCPUs = n
	}
	if n, err := cpu.Counts(false); err == nil {
		s.PhysicalCPUs = n
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		s.TotalMemory = vm.Total
		s.FreeMemory = vm.Available
	}
	return s
}

// Workers returns the default number of render workers: one per logical
// CPU, reduced so that every worker's frames fit in half the available
// memory.
func (s Stats) Workers(frameBytes int) int {
	n := max(s.LogicalCPUs, 1)
	if s.FreeMemory > 0 && frameBytes > 0 {
		// каждый воркер держит кадр рендера и кадр в очереди на кодирование
		perWorker := uint64(frameBytes) * 2
		if limit := int(s.FreeMemory / 2 / perWorker); limit < n {
			n = max(limit, 1)
		}
	}
	return n
}

func (s Stats) String() string {
	return fmt.Sprintf("CPU: %d логических / %d физических | RAM: %s свободно из %s",
		s.LogicalCPUs, s.PhysicalCPUs, FormatBytes(s.FreeMemory), FormatBytes(s.TotalMemory))
}

// FormatBytes renders n in binary units.
func FormatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
