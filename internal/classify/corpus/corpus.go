// Package corpus builds labeled training sets from the built-in seed
// profiles and expands them with jittered copies.
package corpus

import (
	"fmt"
	"math/rand/v2"

	"github.com/haskel/aguacate/internal/classify"
	"github.com/haskel/aguacate/internal/features"
)

const (
	// DefaultCopies is the number of jittered samples emitted per seed.
	DefaultCopies = 5
	// DefaultJitter bounds the uniform per-dimension offset.
	DefaultJitter = 0.025
)

// Sample is a labeled feature vector.
type Sample struct {
	Vector features.Vector `json:"vector"`
	Class  string          `json:"class"`
}

// TrainingSet holds the samples of one task in a fixed order.
type TrainingSet struct {
	Task    classify.Task `json:"task"`
	Classes []string      `json:"classes"`
	Samples []Sample      `json:"samples"`
}

// Seeds returns the hand-authored samples of a task, grouped by class in
// catalog order.
func Seeds(task classify.Task) (TrainingSet, error) {
	ids, err := task.ClassIDs()
	if err != nil {
		return TrainingSet{}, err
	}

	set := TrainingSet{Task: task, Classes: ids}
	for _, id := range ids {
		vectors, ok := seeds[id]
		if !ok {
			return TrainingSet{}, fmt.Errorf("no seed samples for class %s of task %s", id, task)
		}
		for _, v := range vectors {
			set.Samples = append(set.Samples, Sample{Vector: v, Class: id})
		}
	}
	return set, nil
}

// Augment returns the original samples followed, for each original in
// order, by copies jittered versions. Each dimension is offset by an
// independent uniform value in [-jitter, +jitter). Values are not clipped.
func Augment(set TrainingSet, copies int, jitter float64, rng *rand.Rand) TrainingSet {
	if copies < 0 {
		copies = 0
	}

	out := TrainingSet{
		Task:    set.Task,
		Classes: append([]string(nil), set.Classes...),
		Samples: make([]Sample, 0, len(set.Samples)*(1+copies)),
	}
	out.Samples = append(out.Samples, set.Samples...)

	for _, s := range set.Samples {
		for j := 0; j < copies; j++ {
			noisy := s.Vector
			for i := range noisy {
				noisy[i] += (rng.Float64() - 0.5) * 2 * jitter
			}
			out.Samples = append(out.Samples, Sample{Vector: noisy, Class: s.Class})
		}
	}

	return out
}

// Build returns the augmented training set of a task.
func Build(task classify.Task, copies int, jitter float64, rng *rand.Rand) (TrainingSet, error) {
	set, err := Seeds(task)
	if err != nil {
		return TrainingSet{}, err
	}
	return Augment(set, copies, jitter, rng), nil
}

// ByClass groups the samples by class identifier.
func (ts TrainingSet) ByClass() map[string][]Sample {
	groups := make(map[string][]Sample, len(ts.Classes))
	for _, s := range ts.Samples {
		groups[s.Class] = append(groups[s.Class], s)
	}
	return groups
}

// Len returns the number of samples.
func (ts TrainingSet) Len() int {
	return len(ts.Samples)
}

// ClassIndex returns the output position of a class, or -1.
func (ts TrainingSet) ClassIndex(class string) int {
	for i, c := range ts.Classes {
		if c == class {
			return i
		}
	}
	return -1
}
