package tui

import (
	"time"

	"github.com/haskel/aguacate/internal/classify"
	"github.com/haskel/aguacate/internal/server"
)

// Config holds dashboard settings.
type Config struct {
	ServerURL       string
	RefreshInterval time.Duration
	HistoryLimit    int
	// Task limits the history table to one task; empty shows all.
	Task     classify.Task
	User     string
	Password string
}

// Model is the dashboard state.
type Model struct {
	config Config
	api    *apiClient

	// history stays nil when the server keeps no history.
	status  *server.StatusResponse
	history *server.HistoryResponse

	filter classify.Task
	paused bool

	width       int
	height      int
	loading     bool
	err         error
	lastUpdated time.Time

	tableOffset int
}

// NewModel applies defaults to cfg and returns the initial state.
func NewModel(cfg Config) Model {
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = time.Second
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 20
	}
	return Model{
		config:  cfg,
		api:     newAPIClient(cfg),
		filter:  cfg.Task,
		loading: true,
	}
}

// nextFilter cycles all → leaf → fruit → pest → all.
func nextFilter(t classify.Task) classify.Task {
	tasks := classify.Tasks()
	if t == "" {
		return tasks[0]
	}
	for i, task := range tasks {
		if task == t && i+1 < len(tasks) {
			return tasks[i+1]
		}
	}
	return ""
}
