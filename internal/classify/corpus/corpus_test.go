package corpus

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/haskel/aguacate/internal/classify"
)

func TestSeeds(t *testing.T) {
	for _, task := range classify.Tasks() {
		set, err := Seeds(task)
		if err != nil {
			t.Fatalf("Seeds(%s) failed: %v", task, err)
		}

		ids, _ := task.ClassIDs()
		if set.Len() != len(ids)*5 {
			t.Errorf("task %s: expected %d seeds, got %d", task, len(ids)*5, set.Len())
		}

		groups := set.ByClass()
		for _, id := range ids {
			if len(groups[id]) != 5 {
				t.Errorf("task %s class %s: expected 5 seeds, got %d", task, id, len(groups[id]))
			}
		}

		for _, s := range set.Samples {
			for _, x := range s.Vector {
				if x < 0 || x > 1 {
					t.Errorf("seed value %f out of [0,1] for %s", x, s.Class)
				}
			}
		}
	}
}

func TestSeeds_UnknownTask(t *testing.T) {
	if _, err := Seeds("bark"); !errors.Is(err, classify.ErrUnknownTask) {
		t.Errorf("expected ErrUnknownTask, got %v", err)
	}
}

func TestAugment_FruitSize(t *testing.T) {
	set, err := Build(classify.TaskFruit, DefaultCopies, DefaultJitter, rand.New(rand.NewPCG(7, 7)))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if set.Len() != 120 {
		t.Errorf("expected 120 samples, got %d", set.Len())
	}

	for class, samples := range set.ByClass() {
		if len(samples) != 30 {
			t.Errorf("class %s: expected 30 samples, got %d", class, len(samples))
		}
	}
}

func TestAugment_OrderAndJitter(t *testing.T) {
	seedSet, _ := Seeds(classify.TaskLeaf)
	aug := Augment(seedSet, 3, 0.025, rand.New(rand.NewPCG(1, 1)))

	n := seedSet.Len()
	if aug.Len() != n*4 {
		t.Fatalf("expected %d samples, got %d", n*4, aug.Len())
	}

	// Originals come first, unchanged.
	for i := 0; i < n; i++ {
		if aug.Samples[i] != seedSet.Samples[i] {
			t.Fatalf("sample %d: expected original to be preserved", i)
		}
	}

	// Then 3 copies per original, in order, within the jitter range.
	for i, orig := range seedSet.Samples {
		for j := 0; j < 3; j++ {
			s := aug.Samples[n+i*3+j]
			if s.Class != orig.Class {
				t.Fatalf("copy of %s labeled %s", orig.Class, s.Class)
			}
			for d := range s.Vector {
				if math.Abs(s.Vector[d]-orig.Vector[d]) > 0.025 {
					t.Fatalf("offset %f exceeds jitter", s.Vector[d]-orig.Vector[d])
				}
			}
		}
	}
}

func TestAugment_NoClipping(t *testing.T) {
	seedSet, _ := Seeds(classify.TaskPest)
	aug := Augment(seedSet, 5, 0.025, rand.New(rand.NewPCG(3, 4)))

	// rootborer has a 0.00 gray seed; jitter must be allowed to go negative.
	var negative bool
	for _, s := range aug.Samples {
		for _, x := range s.Vector {
			if x < 0 {
				negative = true
			}
		}
	}
	if !negative {
		t.Error("expected some augmented values below zero")
	}
}

func TestAugment_DoesNotMutateInput(t *testing.T) {
	seedSet, _ := Seeds(classify.TaskFruit)
	before := seedSet.Samples[0]

	Augment(seedSet, 5, 0.5, rand.New(rand.NewPCG(9, 9)))

	if seedSet.Samples[0] != before {
		t.Error("expected input set to be unchanged")
	}
}

func TestAugment_ZeroCopies(t *testing.T) {
	seedSet, _ := Seeds(classify.TaskFruit)
	aug := Augment(seedSet, -1, 0.025, rand.New(rand.NewPCG(1, 2)))
	if aug.Len() != seedSet.Len() {
		t.Errorf("expected %d samples, got %d", seedSet.Len(), aug.Len())
	}
}

func TestClassIndex(t *testing.T) {
	set, _ := Seeds(classify.TaskFruit)
	if set.ClassIndex("ripe") != 2 {
		t.Errorf("expected ripe at 2, got %d", set.ClassIndex("ripe"))
	}
	if set.ClassIndex("healthy") != -1 {
		t.Error("expected -1 for foreign class")
	}
}
