package monitor

import (
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/process"
)

// ProcessMonitor reports resource usage of the aguacate process itself.
// Training uses every core, so CPU percent can exceed 100.
type ProcessMonitor struct {
	mu      sync.Mutex
	proc    *process.Process
	created time.Time
}

func NewProcessMonitor() (*ProcessMonitor, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, fmt.Errorf("open process: %w", err)
	}

	created := time.Now()
	if ms, err := p.CreateTime(); err == nil {
		created = time.UnixMilli(ms)
	}
	return &ProcessMonitor{proc: p, created: created}, nil
}

func (m *ProcessMonitor) Name() string {
	return "process"
}

func (m *ProcessMonitor) Collect() (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	mem, err := m.proc.MemoryInfo()
	if err != nil {
		return nil, fmt.Errorf("memory info: %w", err)
	}

	// Percent since the previous call; the first call measures from start.
	cpuPercent, err := m.proc.Percent(0)
	if err != nil {
		return nil, fmt.Errorf("cpu percent: %w", err)
	}

	threads, err := m.proc.NumThreads()
	if err != nil {
		return nil, fmt.Errorf("threads: %w", err)
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	return &ProcessState{
		PID:        m.proc.Pid,
		RSSBytes:   mem.RSS,
		HeapBytes:  ms.HeapAlloc,
		CPUPercent: cpuPercent,
		Threads:    threads,
		Goroutines: runtime.NumGoroutine(),
		UptimeSec:  int64(time.Since(m.created).Seconds()),
	}, nil
}
