// Package monitor samples host and process resource usage for the status
// endpoint and the dashboard.
package monitor

import "time"

// Monitor collects one kind of runtime state.
type Monitor interface {
	Name() string
	Collect() (any, error)
}

// CPUState is host CPU usage in percent, overall and per core.
type CPUState struct {
	UsagePercent float64   `json:"usage_percent"`
	Cores        []float64 `json:"cores"`
}

// MemoryState is host memory usage.
type MemoryState struct {
	UsedBytes      uint64  `json:"used_bytes"`
	AvailableBytes uint64  `json:"available_bytes"`
	TotalBytes     uint64  `json:"total_bytes"`
	UsagePercent   float64 `json:"usage_percent"`
}

// LoadState is the host load average.
type LoadState struct {
	One     float64 `json:"one"`
	Five    float64 `json:"five"`
	Fifteen float64 `json:"fifteen"`
}

// DiskState is filesystem usage for one watched directory. DataBytes is
// what aguacate itself keeps there.
type DiskState struct {
	FreeBytes    uint64  `json:"free_bytes"`
	TotalBytes   uint64  `json:"total_bytes"`
	UsagePercent float64 `json:"usage_percent"`
	DataBytes    uint64  `json:"data_bytes"`
}

// StorageState maps a watched path to its filesystem usage.
type StorageState map[string]DiskState

// ProcessState describes the aguacate process itself.
type ProcessState struct {
	PID        int32   `json:"pid"`
	RSSBytes   uint64  `json:"rss_bytes"`
	HeapBytes  uint64  `json:"heap_bytes"`
	CPUPercent float64 `json:"cpu_percent"`
	Threads    int32   `json:"threads"`
	Goroutines int     `json:"goroutines"`
	UptimeSec  int64   `json:"uptime_sec"`
}

// Snapshot is the aggregated runtime state.
type Snapshot struct {
	CPU       CPUState     `json:"cpu"`
	Memory    MemoryState  `json:"memory"`
	Load      LoadState    `json:"load"`
	Process   ProcessState `json:"process"`
	Storage   StorageState `json:"storage"`
	Timestamp time.Time    `json:"timestamp"`
}

func (s *Snapshot) Clone() *Snapshot {
	clone := *s
	clone.CPU.Cores = make([]float64, len(s.CPU.Cores))
	copy(clone.CPU.Cores, s.CPU.Cores)
	clone.Storage = make(StorageState, len(s.Storage))
	for k, v := range s.Storage {
		clone.Storage[k] = v
	}
	return &clone
}
