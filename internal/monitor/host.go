package monitor

import (
	"fmt"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
)

// HostState groups the machine-wide figures sampled in one pass.
type HostState struct {
	CPU    CPUState
	Memory MemoryState
	Load   LoadState
}

// HostMonitor samples host CPU, memory and load average. CPU usage is
// measured since the previous call.
type HostMonitor struct{}

func NewHostMonitor() *HostMonitor {
	return &HostMonitor{}
}

func (m *HostMonitor) Name() string {
	return "host"
}

func (m *HostMonitor) Collect() (any, error) {
	cores, err := cpu.Percent(0, true)
	if err != nil {
		return nil, fmt.Errorf("cpu: %w", err)
	}

	vm, err := mem.VirtualMemory()
	if err != nil {
		return nil, fmt.Errorf("memory: %w", err)
	}

	state := &HostState{
		CPU: CPUState{
			UsagePercent: mean(cores),
			Cores:        cores,
		},
		Memory: MemoryState{
			UsedBytes:      vm.Used,
			AvailableBytes: vm.Available,
			TotalBytes:     vm.Total,
			UsagePercent:   vm.UsedPercent,
		},
	}

	// Load average is not reported on every platform.
	if avg, err := load.Avg(); err == nil {
		state.Load = LoadState{One: avg.Load1, Five: avg.Load5, Fifteen: avg.Load15}
	}

	return state, nil
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
