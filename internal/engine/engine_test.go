package engine

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/haskel/aguacate/internal/classify"
	"github.com/haskel/aguacate/internal/classify/heuristic"
	"github.com/haskel/aguacate/internal/features"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func fastConfig() Config {
	cfg := DefaultConfig()
	cfg.Epochs = 20
	cfg.Seed = 7
	return cfg
}

func waitReady(t *testing.T, e *Engine) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := e.Wait(ctx); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
}

var healthyLeaf = features.Vector{0.35, 0.40, 0.15, 0.02, 0.02, 0.01, 0.05}

func TestEngine_FallbackBeforeInitialize(t *testing.T) {
	e := New(fastConfig(), testLogger())

	pred, err := e.PredictByTask(classify.TaskLeaf, healthyLeaf)
	if err != nil {
		t.Fatalf("PredictByTask failed: %v", err)
	}
	if pred != nil {
		t.Error("expected nil prediction before training")
	}

	r, err := e.Classify(classify.TaskLeaf, healthyLeaf)
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if r.Source != classify.SourceHeuristic {
		t.Errorf("expected heuristic source, got %s", r.Source)
	}
	if r.Class != "healthy" {
		t.Errorf("expected healthy, got %s", r.Class)
	}

	if e.Ready() {
		t.Error("expected engine not ready")
	}
	for _, st := range e.Status() {
		if st.State != StateUninitialized {
			t.Errorf("task %s: expected uninitialized, got %s", st.Task, st.State)
		}
	}
}

func TestEngine_SetScorer(t *testing.T) {
	e := New(fastConfig(), testLogger())

	// Fruit weights that send pure gray to overripe.
	custom, err := heuristic.NewWithWeights(map[classify.Task][]heuristic.Weights{
		classify.TaskFruit: {
			{features.DarkGreen: 1},
			{features.MediumGreen: 1},
			{features.LightGreen: 1},
			{features.Gray: 1},
		},
	})
	if err != nil {
		t.Fatalf("NewWithWeights failed: %v", err)
	}
	e.SetScorer(custom)

	gray := features.Vector{features.Gray: 1}
	r, err := e.Classify(classify.TaskFruit, gray)
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if r.Class != "overripe" || r.Source != classify.SourceHeuristic {
		t.Errorf("expected heuristic overripe from custom weights, got %s from %s", r.Class, r.Source)
	}

	// Tasks without overrides still score with the built-in weights.
	leaf, err := e.Classify(classify.TaskLeaf, healthyLeaf)
	if err != nil {
		t.Fatalf("Classify leaf failed: %v", err)
	}
	if leaf.Class != "healthy" {
		t.Errorf("expected healthy, got %s", leaf.Class)
	}

	e.SetScorer(nil)
	r, err = e.Classify(classify.TaskFruit, gray)
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if r.Class == "overripe" {
		t.Error("expected built-in weights restored after SetScorer(nil)")
	}
}

func TestEngine_UnknownTask(t *testing.T) {
	e := New(fastConfig(), testLogger())

	if _, err := e.PredictByTask("bark", healthyLeaf); !errors.Is(err, classify.ErrUnknownTask) {
		t.Errorf("expected ErrUnknownTask, got %v", err)
	}
	if _, err := e.Classify("bark", healthyLeaf); !errors.Is(err, classify.ErrUnknownTask) {
		t.Errorf("expected ErrUnknownTask, got %v", err)
	}
}

func TestEngine_TrainsAllTasks(t *testing.T) {
	e := New(fastConfig(), testLogger())
	e.Initialize(context.Background())
	waitReady(t, e)

	if !e.Ready() {
		t.Fatalf("expected ready, status: %+v", e.Status())
	}

	for _, task := range classify.Tasks() {
		pred, err := e.PredictByTask(task, healthyLeaf)
		if err != nil {
			t.Fatalf("PredictByTask(%s) failed: %v", task, err)
		}
		if pred == nil {
			t.Fatalf("expected network prediction for %s", task)
		}
		if pred.Source != classify.SourceNetwork {
			t.Errorf("expected network source, got %s", pred.Source)
		}
		if !task.HasClass(pred.Class) {
			t.Errorf("class %s not in %s enumeration", pred.Class, task)
		}
		if pred.Confidence < 0 || pred.Confidence > 1 {
			t.Errorf("confidence %f out of range", pred.Confidence)
		}
	}

	for _, st := range e.Status() {
		if st.State != StateReady {
			t.Errorf("task %s: expected ready, got %s", st.Task, st.State)
		}
		if st.Epochs != 20 {
			t.Errorf("task %s: expected 20 epochs, got %d", st.Task, st.Epochs)
		}
		if st.Samples != len(st.Classes)*30 {
			t.Errorf("task %s: expected %d samples, got %d", st.Task, len(st.Classes)*30, st.Samples)
		}
	}
}

func TestEngine_InitializeTwice(t *testing.T) {
	e := New(fastConfig(), testLogger())

	var mu sync.Mutex
	calls := 0
	train := e.train
	e.SetTrainFunc(func(ctx context.Context, task classify.Task) (*TrainResult, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		return train(ctx, task)
	})

	e.Initialize(context.Background())
	e.Initialize(context.Background())
	waitReady(t, e)

	if calls != 3 {
		t.Errorf("expected 3 training jobs, got %d", calls)
	}
}

func TestEngine_FailedTaskFallsBack(t *testing.T) {
	e := New(fastConfig(), testLogger())
	train := e.train
	e.SetTrainFunc(func(ctx context.Context, task classify.Task) (*TrainResult, error) {
		switch task {
		case classify.TaskPest:
			return nil, errors.New("corpus unavailable")
		case classify.TaskFruit:
			panic("boom")
		}
		return train(ctx, task)
	})

	e.Initialize(context.Background())
	waitReady(t, e)

	if e.Ready() {
		t.Error("expected engine not ready with failed tasks")
	}
	if e.TaskState(classify.TaskLeaf) != StateReady {
		t.Errorf("expected leaf ready, got %s", e.TaskState(classify.TaskLeaf))
	}

	for _, task := range []classify.Task{classify.TaskPest, classify.TaskFruit} {
		if e.TaskState(task) != StateFailed {
			t.Errorf("expected %s failed, got %s", task, e.TaskState(task))
		}

		pred, err := e.PredictByTask(task, healthyLeaf)
		if err != nil || pred != nil {
			t.Errorf("expected nil, nil for failed task %s, got %v, %v", task, pred, err)
		}

		r, err := e.Classify(task, healthyLeaf)
		if err != nil {
			t.Fatalf("Classify failed: %v", err)
		}
		if r.Source != classify.SourceHeuristic {
			t.Errorf("expected heuristic fallback for %s, got %s", task, r.Source)
		}
	}

	for _, st := range e.Status() {
		if st.State == StateFailed && st.Failure == "" {
			t.Errorf("task %s: expected failure message", st.Task)
		}
	}
}

func TestEngine_SafeTrainWrapsErrors(t *testing.T) {
	e := New(fastConfig(), testLogger())
	e.SetTrainFunc(func(ctx context.Context, task classify.Task) (*TrainResult, error) {
		panic("bad weights")
	})

	_, err := e.safeTrain(context.Background(), classify.TaskLeaf)
	if !errors.Is(err, ErrTrainingFailed) {
		t.Errorf("expected ErrTrainingFailed, got %v", err)
	}
}

func TestEngine_WaitTimeout(t *testing.T) {
	e := New(fastConfig(), testLogger())
	release := make(chan struct{})
	e.SetTrainFunc(func(ctx context.Context, task classify.Task) (*TrainResult, error) {
		<-release
		return nil, errors.New("released")
	})

	e.Initialize(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := e.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}

	for _, st := range e.Status() {
		if st.State != StateTraining {
			t.Errorf("task %s: expected training, got %s", st.Task, st.State)
		}
	}

	close(release)
	waitReady(t, e)
}

func TestEngine_Stop(t *testing.T) {
	cfg := fastConfig()
	cfg.Epochs = 1_000_000
	e := New(cfg, testLogger())

	e.Initialize(context.Background())
	e.Stop()

	select {
	case <-e.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("expected jobs to finish after Stop")
	}

	for _, st := range e.Status() {
		if st.State != StateFailed {
			t.Errorf("task %s: expected failed after cancel, got %s", st.Task, st.State)
		}
	}
}

func TestEngine_ConcurrentClassify(t *testing.T) {
	e := New(fastConfig(), testLogger())
	e.Initialize(context.Background())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if _, err := e.Classify(classify.TaskFruit, healthyLeaf); err != nil {
					t.Errorf("Classify failed: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()
	waitReady(t, e)
}
