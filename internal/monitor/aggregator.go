package monitor

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultInterval is the sampling period used when none is configured.
const DefaultInterval = 2 * time.Second

// Aggregator samples its monitors periodically and keeps the latest
// snapshot.
type Aggregator struct {
	monitors []Monitor
	interval time.Duration
	logger   *slog.Logger

	mu       sync.RWMutex
	state    *Snapshot
	done     chan struct{}
	stopOnce sync.Once
}

func NewAggregator(monitors []Monitor, interval time.Duration, logger *slog.Logger) *Aggregator {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Aggregator{
		monitors: monitors,
		state:    &Snapshot{Storage: make(StorageState)},
		interval: interval,
		done:     make(chan struct{}),
		logger:   logger,
	}
}

// Default builds an aggregator over the host, the current process and the
// given storage paths.
func Default(storagePaths []string, interval time.Duration, logger *slog.Logger) *Aggregator {
	monitors := []Monitor{
		NewHostMonitor(),
		NewStorageMonitor(storagePaths),
	}

	if pm, err := NewProcessMonitor(); err == nil {
		monitors = append(monitors, pm)
	} else {
		logger.Warn("process monitor unavailable", "error", err)
	}

	return NewAggregator(monitors, interval, logger)
}

func (a *Aggregator) Start(ctx context.Context) error {
	a.collect()

	go a.runLoop(ctx)

	a.logger.Info("runtime monitor started", "interval", a.interval, "monitors", len(a.monitors))
	return nil
}

func (a *Aggregator) Stop() error {
	a.stopOnce.Do(func() {
		close(a.done)
		a.logger.Info("runtime monitor stopped")
	})
	return nil
}

// Snapshot returns a copy of the latest state.
func (a *Aggregator) Snapshot() *Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state.Clone()
}

func (a *Aggregator) runLoop(ctx context.Context) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.collect()
		case <-ctx.Done():
			return
		case <-a.done:
			return
		}
	}
}

func (a *Aggregator) collect() {
	next := &Snapshot{
		Timestamp: time.Now(),
		Storage:   make(StorageState),
	}

	for _, m := range a.monitors {
		data, err := m.Collect()
		if err != nil {
			a.logger.Warn("monitor collection failed",
				"monitor", m.Name(),
				"error", err,
			)
			continue
		}

		switch v := data.(type) {
		case *HostState:
			next.CPU = v.CPU
			next.Memory = v.Memory
			next.Load = v.Load
		case *ProcessState:
			next.Process = *v
		case StorageState:
			for path, usage := range v {
				next.Storage[path] = usage
			}
		default:
			a.logger.Warn("unknown monitor data", "monitor", m.Name())
		}
	}

	a.mu.Lock()
	a.state = next
	a.mu.Unlock()
}
