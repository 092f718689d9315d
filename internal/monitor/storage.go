package monitor

import (
	"os"

	"github.com/shirou/gopsutil/v4/disk"
)

// StorageMonitor reports filesystem usage for watched directories, and how
// much of it the files directly inside them take.
type StorageMonitor struct {
	dirs []string
}

// NewStorageMonitor watches dirs, or "/" when none are given.
func NewStorageMonitor(dirs []string) *StorageMonitor {
	if len(dirs) == 0 {
		dirs = []string{"/"}
	}
	return &StorageMonitor{dirs: dirs}
}

func (m *StorageMonitor) Name() string {
	return "storage"
}

func (m *StorageMonitor) Collect() (any, error) {
	state := make(StorageState, len(m.dirs))

	for _, dir := range m.dirs {
		usage, err := disk.Usage(dir)
		if err != nil {
			// The history directory may not exist before the first flush.
			continue
		}

		state[dir] = DiskState{
			FreeBytes:    usage.Free,
			TotalBytes:   usage.Total,
			UsagePercent: usage.UsedPercent,
			DataBytes:    dirBytes(dir),
		}
	}

	return state, nil
}

// dirBytes sums the sizes of the regular files directly inside dir.
func dirBytes(dir string) uint64 {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}

	var total uint64
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if info, err := e.Info(); err == nil {
			total += uint64(info.Size())
		}
	}
	return total
}
