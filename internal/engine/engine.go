// Package engine owns the per-task networks, trains them in the background
// and routes classification requests to the network or the heuristic scorer.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/haskel/aguacate/internal/classify"
	"github.com/haskel/aguacate/internal/classify/corpus"
	"github.com/haskel/aguacate/internal/classify/heuristic"
	"github.com/haskel/aguacate/internal/classify/network"
	"github.com/haskel/aguacate/internal/features"
)

// ErrTrainingFailed wraps any error or panic raised by a training job.
var ErrTrainingFailed = errors.New("training failed")

// State is the lifecycle state of a task's network.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateTraining      State = "training"
	StateReady         State = "ready"
	StateFailed        State = "failed"
)

// Config holds training parameters shared by all tasks.
type Config struct {
	Epochs        int
	LearningRate  float64
	Copies        int
	Jitter        float64
	ProgressEvery int
	// Seed of 0 seeds each job from the clock.
	Seed   uint64
	Hidden map[classify.Task]int
}

// DefaultConfig returns the shipped training parameters.
func DefaultConfig() Config {
	return Config{
		Epochs:        2000,
		LearningRate:  0.5,
		Copies:        corpus.DefaultCopies,
		Jitter:        corpus.DefaultJitter,
		ProgressEvery: 100,
		Hidden: map[classify.Task]int{
			classify.TaskLeaf:  classify.TaskLeaf.HiddenSize(),
			classify.TaskFruit: classify.TaskFruit.HiddenSize(),
			classify.TaskPest:  classify.TaskPest.HiddenSize(),
		},
	}
}

// TrainResult is what a training job hands back to the engine.
type TrainResult struct {
	Network *network.Network
	Stats   network.TrainStats
}

// TrainFunc builds and trains the network of one task.
type TrainFunc func(ctx context.Context, task classify.Task) (*TrainResult, error)

// TaskStatus describes the network of one task.
type TaskStatus struct {
	Task     classify.Task `json:"task"`
	State    State         `json:"state"`
	Classes  []string      `json:"classes"`
	Hidden   int           `json:"hidden"`
	Samples  int           `json:"samples,omitempty"`
	Epochs   int           `json:"epochs,omitempty"`
	Error    float64       `json:"error,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
	Failure  string        `json:"failure,omitempty"`
}

// Engine is the model orchestrator. Networks are published once training
// succeeds and are read-only afterwards.
type Engine struct {
	cfg    Config
	scorer *heuristic.Scorer
	logger *slog.Logger
	train  TrainFunc

	mu     sync.RWMutex
	models map[classify.Task]*network.Network
	status map[classify.Task]*TaskStatus

	once   sync.Once
	wg     sync.WaitGroup
	done   chan struct{}
	cancel context.CancelFunc
}

// New creates an engine. Networks are not trained until Initialize.
func New(cfg Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	e := &Engine{
		cfg:    cfg,
		scorer: heuristic.New(),
		logger: logger,
		models: make(map[classify.Task]*network.Network),
		status: make(map[classify.Task]*TaskStatus),
		done:   make(chan struct{}),
	}
	e.train = e.defaultTrain

	for _, task := range classify.Tasks() {
		ids, _ := task.ClassIDs()
		e.status[task] = &TaskStatus{
			Task:    task,
			State:   StateUninitialized,
			Classes: ids,
			Hidden:  e.hidden(task),
		}
	}

	return e
}

// SetTrainFunc replaces the training job. Must be called before Initialize.
func (e *Engine) SetTrainFunc(fn TrainFunc) {
	e.train = fn
}

// SetScorer replaces the heuristic fallback. nil restores the built-in
// weights. It is not synchronized with Classify; call it before serving.
func (e *Engine) SetScorer(s *heuristic.Scorer) {
	if s == nil {
		s = heuristic.New()
	}
	e.scorer = s
}

func (e *Engine) hidden(task classify.Task) int {
	if h, ok := e.cfg.Hidden[task]; ok && h > 0 {
		return h
	}
	return task.HiddenSize()
}

func (e *Engine) rng(task classify.Task) *rand.Rand {
	seed := e.cfg.Seed
	if seed == 0 {
		return rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64()))
	}
	// One PCG stream per task.
	var stream uint64
	for _, c := range task {
		stream = stream*31 + uint64(c)
	}
	return rand.New(rand.NewPCG(seed, stream))
}

// defaultTrain builds the augmented corpus and trains a fresh network.
func (e *Engine) defaultTrain(ctx context.Context, task classify.Task) (*TrainResult, error) {
	rng := e.rng(task)

	set, err := corpus.Build(task, e.cfg.Copies, e.cfg.Jitter, rng)
	if err != nil {
		return nil, err
	}

	net, err := network.NewForTask(task, e.hidden(task), rng)
	if err != nil {
		return nil, err
	}

	stats, err := net.Train(ctx, set, network.Options{
		Epochs:        e.cfg.Epochs,
		LearningRate:  e.cfg.LearningRate,
		ProgressEvery: e.cfg.ProgressEvery,
		Logger:        e.logger,
	})
	if err != nil {
		return nil, err
	}

	return &TrainResult{Network: net, Stats: stats}, nil
}

// Initialize starts one training job per task and returns immediately.
// Subsequent calls do nothing.
func (e *Engine) Initialize(ctx context.Context) {
	e.once.Do(func() {
		ctx, e.cancel = context.WithCancel(ctx)

		tasks := classify.Tasks()
		e.mu.Lock()
		for _, task := range tasks {
			e.status[task].State = StateTraining
		}
		e.mu.Unlock()

		e.logger.Info("model initialization started", "tasks", len(tasks))

		for _, task := range tasks {
			e.wg.Add(1)
			go e.run(ctx, task)
		}

		go func() {
			e.wg.Wait()
			close(e.done)
			e.logger.Info("model initialization finished", "ready", e.Ready())
		}()
	})
}

// run executes one training job and records its outcome.
func (e *Engine) run(ctx context.Context, task classify.Task) {
	defer e.wg.Done()

	start := time.Now()
	result, err := e.safeTrain(ctx, task)
	elapsed := time.Since(start)

	e.mu.Lock()
	defer e.mu.Unlock()

	st := e.status[task]
	st.Duration = elapsed

	if err == nil && (result == nil || result.Network == nil) {
		err = fmt.Errorf("%w: task %s: no network produced", ErrTrainingFailed, task)
	}
	if err != nil {
		st.State = StateFailed
		st.Failure = err.Error()
		e.logger.Error("model training failed", "task", task, "error", err)
		return
	}

	e.models[task] = result.Network
	st.State = StateReady
	st.Hidden = result.Network.Hidden()
	st.Samples = result.Stats.Samples
	st.Epochs = result.Stats.Epochs
	st.Error = result.Stats.Error

	e.logger.Info("model ready",
		"task", task,
		"samples", st.Samples,
		"error", st.Error,
		"duration", elapsed,
	)
}

// safeTrain runs the training job, converting panics into errors.
func (e *Engine) safeTrain(ctx context.Context, task classify.Task) (result *TrainResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: task %s: panic: %v", ErrTrainingFailed, task, r)
		}
	}()

	result, err = e.train(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("%w: task %s: %w", ErrTrainingFailed, task, err)
	}
	return result, nil
}

// Done is closed once every training job has finished.
func (e *Engine) Done() <-chan struct{} {
	return e.done
}

// Wait blocks until every training job has finished or ctx ends.
func (e *Engine) Wait(ctx context.Context) error {
	select {
	case <-e.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Ready reports whether every task has a trained network.
func (e *Engine) Ready() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, st := range e.status {
		if st.State != StateReady {
			return false
		}
	}
	return true
}

// Stop cancels running training jobs and waits for them to exit.
func (e *Engine) Stop() {
	if e.cancel == nil {
		return
	}
	e.cancel()
	e.wg.Wait()
}

// PredictByTask returns the network prediction for a task. A nil result
// with a nil error means the network is not available and the caller
// should fall back to the heuristic.
func (e *Engine) PredictByTask(task classify.Task, v features.Vector) (*classify.Result, error) {
	if !task.IsValid() {
		return nil, fmt.Errorf("%w: %q", classify.ErrUnknownTask, string(task))
	}

	e.mu.RLock()
	net := e.models[task]
	e.mu.RUnlock()

	if net == nil {
		return nil, nil
	}

	result := net.Predict(v)
	return &result, nil
}

// Classify returns the network prediction when available, otherwise the
// heuristic score.
func (e *Engine) Classify(task classify.Task, v features.Vector) (classify.Result, error) {
	prediction, err := e.PredictByTask(task, v)
	if err != nil {
		return classify.Result{}, err
	}
	if prediction != nil {
		return *prediction, nil
	}
	return e.scorer.Score(task, v)
}

// Status returns the state of every task in catalog order.
func (e *Engine) Status() []TaskStatus {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]TaskStatus, 0, len(e.status))
	for _, task := range classify.Tasks() {
		st := *e.status[task]
		st.Classes = append([]string(nil), st.Classes...)
		out = append(out, st)
	}
	return out
}

// TaskState returns the state of one task.
func (e *Engine) TaskState(task classify.Task) State {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if st, ok := e.status[task]; ok {
		return st.State
	}
	return StateUninitialized
}
