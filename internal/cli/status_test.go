package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/haskel/aguacate/internal/engine"
	"github.com/haskel/aguacate/internal/monitor"
	"github.com/haskel/aguacate/internal/server"
)

func TestPrintStatus(t *testing.T) {
	st := &server.StatusResponse{
		Version: "1.0.0",
		Ready:   false,
		Models: []engine.TaskStatus{
			{Task: "leaf", State: engine.StateReady, Hidden: 12, Epochs: 2000, Samples: 180, Error: 12.5, Duration: 3 * time.Second},
			{Task: "pest", State: engine.StateFailed, Hidden: 14, Failure: "boom"},
		},
		Runtime: &monitor.Snapshot{
			CPU:     monitor.CPUState{UsagePercent: 12.5},
			Load:    monitor.LoadState{One: 0.5, Five: 0.25, Fifteen: 0.1},
			Storage: monitor.StorageState{"/data": {FreeBytes: 1 << 30, TotalBytes: 4 << 30}},
		},
		History: &server.HistorySummary{Records: 7},
	}

	var buf bytes.Buffer
	printStatus(&buf, st)
	out := buf.String()

	for _, want := range []string{
		"aguacate 1.0.0",
		"ready: no",
		"epochs=2000",
		`failure="boom"`,
		"CPU: 12.5%  load 0.50 0.25 0.10",
		"/data: 1.0 GB free / 4.0 GB total, 0.0 KB data",
		"History: 7 records",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}
