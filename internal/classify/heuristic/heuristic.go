// Package heuristic scores feature vectors with fixed per-class linear
// weights. It needs no training and is the fallback whenever a trained
// network is unavailable.
package heuristic

import (
	"fmt"
	"math"

	"github.com/haskel/aguacate/internal/classify"
	"github.com/haskel/aguacate/internal/features"
)

const (
	// confidenceScale stretches the winning normalized score.
	confidenceScale = 1.5
	// MaxConfidence caps heuristic confidence below certainty.
	MaxConfidence = 0.99
)

// Weights are bucket coefficients for one class, in features bucket order.
type Weights [features.Size]float64

func greens(w float64) Weights {
	return Weights{features.DarkGreen: w, features.MediumGreen: w, features.LightGreen: w}
}

func (w Weights) plus(other Weights) Weights {
	for i := range w {
		w[i] += other[i]
	}
	return w
}

// DefaultWeights returns the built-in coefficients, one entry per class in
// catalog order.
func DefaultWeights() map[classify.Task][]Weights {
	return map[classify.Task][]Weights{
		classify.TaskLeaf: {
			greens(1.5), // healthy
			{features.BrownBlack: 2.0},
			{features.Yellow: 1.5},
			{features.BrownBlack: 1.2},
			{features.BrownBlack: 0.8, features.Yellow: 0.4},
			{features.Yellow: 0.8},
		},
		classify.TaskFruit: {
			{features.DarkGreen: 1.5, features.MediumGreen: 0.3},
			{features.MediumGreen: 1.5, features.DarkGreen: 0.3, features.LightGreen: 0.3},
			{features.LightGreen: 1.5, features.Yellow: 0.8, features.MediumGreen: 0.2},
			{features.BrownBlack: 1.8, features.Red: 0.5},
		},
		classify.TaskPest: {
			{features.Gray: 1.5, features.BrownBlack: 0.8},
			{features.Gray: 2.0, features.Yellow: 0.5},
			{features.BrownBlack: 1.2, features.Red: 0.8},
			greens(0.8).plus(Weights{features.BrownBlack: 1.5}), // worms
			{features.BrownBlack: 2.0, features.Red: 0.5},
			{features.Gray: 1.2, features.BrownBlack: 0.8},
			{features.BrownBlack: 1.8, features.Gray: 0.5},
		},
	}
}

// Scorer maps feature vectors to class distributions.
type Scorer struct {
	weights map[classify.Task][]Weights
}

// New creates a scorer with the built-in weights.
func New() *Scorer {
	return &Scorer{weights: DefaultWeights()}
}

// NewWithWeights creates a scorer with custom weights for some tasks. Each
// given task must provide one non-negative weight row per class; tasks left
// out keep the built-in weights.
func NewWithWeights(overrides map[classify.Task][]Weights) (*Scorer, error) {
	weights := DefaultWeights()
	for task, rows := range overrides {
		ids, err := task.ClassIDs()
		if err != nil {
			return nil, err
		}
		if len(rows) != len(ids) {
			return nil, fmt.Errorf("task %s: %d weight rows for %d classes", task, len(rows), len(ids))
		}
		for i, row := range rows {
			for _, w := range row {
				if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
					return nil, fmt.Errorf("task %s: class %s has invalid weight %v", task, ids[i], w)
				}
			}
		}
		weights[task] = rows
	}
	return &Scorer{weights: weights}, nil
}

// Scores returns the raw, unnormalized class scores.
func (s *Scorer) Scores(task classify.Task, v features.Vector) ([]float64, error) {
	rows, ok := s.weights[task]
	if !ok {
		return nil, fmt.Errorf("%w: %q", classify.ErrUnknownTask, string(task))
	}

	scores := make([]float64, len(rows))
	for c, row := range rows {
		var sum float64
		for i, w := range row {
			// Synthetic vectors may carry negative entries; they never
			// reduce a score below zero.
			sum += w * math.Max(v[i], 0)
		}
		scores[c] = sum
	}
	return scores, nil
}

// Score classifies a feature vector. Only an unknown task fails.
func (s *Scorer) Score(task classify.Task, v features.Vector) (classify.Result, error) {
	scores, err := s.Scores(task, v)
	if err != nil {
		return classify.Result{}, err
	}

	var total float64
	for _, sc := range scores {
		total += sc
	}

	// A total that overflowed cannot normalize; treat it like an empty one.
	usable := total > 0 && !math.IsInf(total, 0) && !math.IsNaN(total)

	probs := make([]float64, len(scores))
	for i, sc := range scores {
		if usable {
			probs[i] = sc / total
		} else {
			probs[i] = 1 / float64(len(scores))
		}
	}

	result, err := classify.NewResult(task, probs, classify.SourceHeuristic)
	if err != nil {
		return classify.Result{}, err
	}
	result.Confidence = math.Min(confidenceScale*result.Confidence, MaxConfidence)

	return result, nil
}
