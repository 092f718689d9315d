// Package storage keeps the prediction history in a JSON file that is
// flushed periodically while the service runs.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/haskel/aguacate/internal/classify"
	"github.com/haskel/aguacate/internal/features"
)

// ErrNotFound is returned when a record id is unknown.
var ErrNotFound = errors.New("record not found")

// Record is one stored prediction.
type Record struct {
	ID         string          `json:"id"`
	Task       classify.Task   `json:"task"`
	Class      string          `json:"class"`
	Label      string          `json:"label"`
	Confidence float64         `json:"confidence"`
	Source     classify.Source `json:"source"`
	Features   features.Vector `json:"features"`
	Image      string          `json:"image,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Data represents the persisted data structure.
type Data struct {
	Version   int       `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
	// Records are ordered newest first.
	Records []Record `json:"records"`
}

const (
	currentVersion = 1
	dataFileName   = "aguacate_history.json"

	// DefaultMaxRecords bounds the history when no limit is configured.
	DefaultMaxRecords = 500
)

// Storage handles the prediction history.
type Storage struct {
	dataDir       string
	flushInterval time.Duration
	maxRecords    int
	logger        *slog.Logger

	mu     sync.RWMutex
	data   *Data
	dirty  bool
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a new Storage instance.
func New(dataDir string, flushInterval time.Duration, maxRecords int, logger *slog.Logger) *Storage {
	if maxRecords <= 0 {
		maxRecords = DefaultMaxRecords
	}
	return &Storage{
		dataDir:       dataDir,
		flushInterval: flushInterval,
		maxRecords:    maxRecords,
		logger:        logger,
		data:          newEmptyData(),
		done:          make(chan struct{}),
	}
}

func newEmptyData() *Data {
	return &Data{
		Version:   currentVersion,
		UpdatedAt: time.Now(),
		Records:   make([]Record, 0),
	}
}

// Path returns the history file location.
func (s *Storage) Path() string {
	return filepath.Join(s.dataDir, dataFileName)
}

// Load loads the history from disk. A missing or unreadable file starts
// an empty history.
func (s *Storage) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	filePath := s.Path()

	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Info("no existing history file, starting fresh", "path", filePath)
			s.data = newEmptyData()
			return nil
		}
		return err
	}
	defer file.Close()

	var data Data
	if err := json.NewDecoder(file).Decode(&data); err != nil {
		s.logger.Warn("failed to decode history file, starting fresh", "error", err)
		s.data = newEmptyData()
		return nil
	}

	if data.Version > currentVersion {
		s.logger.Warn("history file version is newer than supported, starting fresh",
			"file_version", data.Version,
			"supported_version", currentVersion,
		)
		s.data = newEmptyData()
		return nil
	}

	if data.Records == nil {
		data.Records = make([]Record, 0)
	}
	if len(data.Records) > s.maxRecords {
		data.Records = data.Records[:s.maxRecords]
	}

	s.data = &data
	s.logger.Info("loaded history from disk",
		"path", filePath,
		"records", len(data.Records),
	)

	return nil
}

// Save writes the history to disk atomically.
func (s *Storage) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.saveLocked()
}

func (s *Storage) saveLocked() error {
	if err := os.MkdirAll(s.dataDir, 0755); err != nil {
		return err
	}

	filePath := s.Path()
	tempPath := filePath + ".tmp"

	s.data.UpdatedAt = time.Now()

	file, err := os.Create(tempPath)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(s.data); err != nil {
		file.Close()
		os.Remove(tempPath)
		return err
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return err
	}

	if err := os.Rename(tempPath, filePath); err != nil {
		os.Remove(tempPath)
		return err
	}

	s.dirty = false
	s.logger.Debug("saved history to disk", "path", filePath, "records", len(s.data.Records))

	return nil
}

// Start starts the periodic flush goroutine.
func (s *Storage) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	go s.flushLoop(ctx)
}

// Stop stops the periodic flush and saves final state.
func (s *Storage) Stop() error {
	if s.cancel != nil {
		s.cancel()
		<-s.done
	}

	return s.Save()
}

func (s *Storage) flushLoop(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.IsDirty() {
				if err := s.Save(); err != nil {
					s.logger.Error("failed to save history", "error", err)
				}
			}
		}
	}
}

// Add stores a prediction and returns the new record.
func (s *Storage) Add(result classify.Result, v features.Vector, image string) Record {
	rec := Record{
		ID:         uuid.NewString(),
		Task:       result.Task,
		Class:      result.Class,
		Label:      result.Label,
		Confidence: result.Confidence,
		Source:     result.Source,
		Features:   v,
		Image:      image,
		CreatedAt:  time.Now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records := append([]Record{rec}, s.data.Records...)
	if len(records) > s.maxRecords {
		records = records[:s.maxRecords]
	}
	s.data.Records = records
	s.dirty = true

	return rec
}

// Recent returns up to limit records, newest first. A non-positive limit
// returns all records.
func (s *Storage) Recent(limit int) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.data.Records)
	if limit > 0 && limit < n {
		n = limit
	}

	out := make([]Record, n)
	copy(out, s.data.Records[:n])
	return out
}

// RecentByTask returns up to limit records of one task, newest first.
func (s *Storage) RecentByTask(task classify.Task, limit int) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Record, 0)
	for _, r := range s.data.Records {
		if r.Task != task {
			continue
		}
		out = append(out, r)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// Get returns a record by id.
func (s *Storage) Get(id string) (Record, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Record{}, ErrNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.data.Records {
		if r.ID == id {
			return r, nil
		}
	}
	return Record{}, ErrNotFound
}

// Clear removes every record.
func (s *Storage) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.Records = make([]Record, 0)
	s.dirty = true
}

// Counts returns the number of records per task and class.
func (s *Storage) Counts() map[classify.Task]map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[classify.Task]map[string]int)
	for _, r := range s.data.Records {
		if counts[r.Task] == nil {
			counts[r.Task] = make(map[string]int)
		}
		counts[r.Task][r.Class]++
	}
	return counts
}

// IsDirty returns whether data has unsaved changes.
func (s *Storage) IsDirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// Len returns the number of stored records.
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data.Records)
}
