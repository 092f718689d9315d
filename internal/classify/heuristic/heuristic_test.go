package heuristic

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/haskel/aguacate/internal/classify"
	"github.com/haskel/aguacate/internal/features"
)

func TestScore_HealthyLeaf(t *testing.T) {
	s := New()
	v := features.Vector{0.40, 0.35, 0.18, 0.01, 0.02, 0.00, 0.04}

	r, err := s.Score(classify.TaskLeaf, v)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}

	if r.Class != "healthy" {
		t.Errorf("expected healthy, got %s", r.Class)
	}
	if r.Source != classify.SourceHeuristic {
		t.Errorf("expected heuristic source, got %s", r.Source)
	}
}

func TestScore_Anthracnose(t *testing.T) {
	s := New()
	v := features.Vector{0.10, 0.15, 0.12, 0.45, 0.08, 0.05, 0.05}

	r, err := s.Score(classify.TaskLeaf, v)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}

	if r.Class != "anthracnose" {
		t.Fatalf("expected anthracnose, got %s", r.Class)
	}
	if r.Confidence <= r.Probability("healthy") {
		t.Errorf("expected confidence %f to exceed healthy score %f", r.Confidence, r.Probability("healthy"))
	}
}

func TestScore_FruitAndPest(t *testing.T) {
	s := New()

	tests := []struct {
		task classify.Task
		v    features.Vector
		want string
	}{
		{classify.TaskFruit, features.Vector{0.55, 0.30, 0.08, 0.02, 0.02, 0.01, 0.02}, "unripe"},
		{classify.TaskFruit, features.Vector{0.25, 0.45, 0.20, 0.03, 0.04, 0.01, 0.02}, "almost_ripe"},
		{classify.TaskFruit, features.Vector{0.08, 0.25, 0.40, 0.10, 0.14, 0.01, 0.02}, "ripe"},
		{classify.TaskFruit, features.Vector{0.02, 0.08, 0.15, 0.55, 0.12, 0.05, 0.03}, "overripe"},
		{classify.TaskPest, features.Vector{0.02, 0.05, 0.08, 0.25, 0.15, 0.05, 0.40}, "scale"},
		{classify.TaskPest, features.Vector{0.25, 0.25, 0.18, 0.22, 0.04, 0.03, 0.03}, "worms"},
	}

	for _, tt := range tests {
		r, err := s.Score(tt.task, tt.v)
		if err != nil {
			t.Fatalf("Score(%s) failed: %v", tt.task, err)
		}
		if r.Class != tt.want {
			t.Errorf("Score(%s, %v): expected %s, got %s", tt.task, tt.v, tt.want, r.Class)
		}
	}
}

func TestScore_DistributionProperties(t *testing.T) {
	s := New()
	rng := rand.New(rand.NewPCG(1, 2))

	for i := 0; i < 500; i++ {
		var v features.Vector
		for j := range v {
			v[j] = rng.Float64()
		}
		if i%50 == 0 {
			v = features.Vector{}
		}

		for _, task := range classify.Tasks() {
			r, err := s.Score(task, v)
			if err != nil {
				t.Fatalf("Score failed: %v", err)
			}

			var sum float64
			for _, cs := range r.Distribution {
				if cs.Probability < 0 {
					t.Fatalf("negative probability %f for %s", cs.Probability, cs.Class)
				}
				sum += cs.Probability
			}
			if math.Abs(sum-1) > 1e-6 {
				t.Fatalf("expected distribution to sum to 1, got %f", sum)
			}
			if r.Confidence < 0 || r.Confidence > MaxConfidence {
				t.Fatalf("confidence %f out of range", r.Confidence)
			}
			if !task.HasClass(r.Class) {
				t.Fatalf("class %s not in task %s", r.Class, task)
			}
		}
	}
}

func TestScore_ZeroVectorIsUniform(t *testing.T) {
	s := New()

	r, err := s.Score(classify.TaskPest, features.Vector{})
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}

	for _, cs := range r.Distribution {
		if math.Abs(cs.Probability-1.0/7) > 1e-12 {
			t.Errorf("expected uniform probability, got %f for %s", cs.Probability, cs.Class)
		}
	}
	if r.Class != "thrips" {
		t.Errorf("expected tie to resolve to first class thrips, got %s", r.Class)
	}
}

func TestScore_OverflowingTotalIsUniform(t *testing.T) {
	s := New()
	v := features.Vector{1e308, 1e308, 1e308, 0, 0, 0, 0}

	r, err := s.Score(classify.TaskLeaf, v)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}

	var sum float64
	for _, cs := range r.Distribution {
		if math.IsNaN(cs.Probability) || cs.Probability < 0 {
			t.Errorf("invalid probability %f for %s", cs.Probability, cs.Class)
		}
		sum += cs.Probability
	}
	if math.Abs(sum-1) > 1e-6 {
		t.Errorf("expected distribution to sum to 1, got %f", sum)
	}
	if math.IsNaN(r.Confidence) || r.Confidence <= 0 || r.Confidence > 0.99 {
		t.Errorf("expected finite confidence in (0, 0.99], got %f", r.Confidence)
	}
}

func TestScore_ConfidenceCapped(t *testing.T) {
	s := New()

	// Only brown: anthracnose takes 2.0/(2.0+1.2+0.8) = 0.5 of the mass.
	r, err := s.Score(classify.TaskLeaf, features.Vector{features.BrownBlack: 1})
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if math.Abs(r.Confidence-0.75) > 1e-9 {
		t.Errorf("expected confidence 0.75, got %f", r.Confidence)
	}

	// Only yellow on fruit: ripe is the only non-zero score.
	r, err = s.Score(classify.TaskFruit, features.Vector{features.Yellow: 1})
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if r.Class != "ripe" || r.Confidence != MaxConfidence {
		t.Errorf("expected ripe with capped confidence, got %s %f", r.Class, r.Confidence)
	}
}

func TestScore_NegativeEntriesIgnored(t *testing.T) {
	s := New()

	r, err := s.Score(classify.TaskLeaf, features.Vector{-0.02, 0.3, 0.3, -0.01, 0.1, 0, 0})
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	for _, cs := range r.Distribution {
		if cs.Probability < 0 {
			t.Errorf("negative probability for %s", cs.Class)
		}
	}
}

func TestScore_UnknownTask(t *testing.T) {
	s := New()
	if _, err := s.Score("bark", features.Vector{}); !errors.Is(err, classify.ErrUnknownTask) {
		t.Errorf("expected ErrUnknownTask, got %v", err)
	}
}

func TestNewWithWeights(t *testing.T) {
	if _, err := NewWithWeights(map[classify.Task][]Weights{
		classify.TaskFruit: {{1}, {1}},
	}); err == nil {
		t.Error("expected error for missing weight rows")
	}

	if _, err := NewWithWeights(map[classify.Task][]Weights{
		classify.TaskFruit: {{-1}, {1}, {1}, {1}},
	}); err == nil {
		t.Error("expected error for negative weight")
	}

	s, err := NewWithWeights(map[classify.Task][]Weights{
		classify.TaskFruit: {{0, 0, 0, 0, 0, 0, 1}, {1}, {1}, {1}},
	})
	if err != nil {
		t.Fatalf("NewWithWeights failed: %v", err)
	}

	r, err := s.Score(classify.TaskFruit, features.Vector{features.Gray: 1})
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if r.Class != "unripe" {
		t.Errorf("expected unripe, got %s", r.Class)
	}

	// Tasks left out keep the built-in weights.
	leaf, err := s.Score(classify.TaskLeaf, features.Vector{0.40, 0.35, 0.18, 0.01, 0.02, 0.00, 0.04})
	if err != nil {
		t.Fatalf("Score for a task without overrides failed: %v", err)
	}
	if leaf.Class != "healthy" {
		t.Errorf("expected default leaf weights, got %s", leaf.Class)
	}

	if _, err := NewWithWeights(map[classify.Task][]Weights{"banana": {{1}, {1}}}); !errors.Is(err, classify.ErrUnknownTask) {
		t.Errorf("expected ErrUnknownTask for an unknown task, got %v", err)
	}
}
