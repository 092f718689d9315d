package classify

import "fmt"

// Source names the classifier that produced a result.
type Source string

const (
	SourceHeuristic Source = "heuristic"
	SourceNetwork   Source = "network"
)

// ClassScore is one entry of a probability distribution.
type ClassScore struct {
	Class       string  `json:"class"`
	Probability float64 `json:"probability"`
}

// Result is the outcome of one classification.
type Result struct {
	Task         Task         `json:"task"`
	Class        string       `json:"class"`
	Label        string       `json:"label"`
	Confidence   float64      `json:"confidence"`
	Distribution []ClassScore `json:"distribution"`
	Source       Source       `json:"source"`
}

// Probability returns the probability assigned to a class, or 0.
func (r *Result) Probability(classID string) float64 {
	for _, cs := range r.Distribution {
		if cs.Class == classID {
			return cs.Probability
		}
	}
	return 0
}

// Argmax returns the index of the largest value. Ties resolve to the
// earliest index. It returns -1 for an empty slice.
func Argmax(values []float64) int {
	best := -1
	for i, v := range values {
		if best < 0 || v > values[best] {
			best = i
		}
	}
	return best
}

// NewResult builds a result from a distribution aligned with the task's
// class enumeration. The winning class is the argmax.
func NewResult(task Task, probs []float64, source Source) (Result, error) {
	ids, err := task.ClassIDs()
	if err != nil {
		return Result{}, err
	}
	if len(probs) != len(ids) {
		return Result{}, fmt.Errorf("%w: %d probabilities for %d classes of task %s",
			ErrInvalidInput, len(probs), len(ids), task)
	}

	dist := make([]ClassScore, len(ids))
	for i, id := range ids {
		dist[i] = ClassScore{Class: id, Probability: probs[i]}
	}

	best := Argmax(probs)
	return Result{
		Task:         task,
		Class:        ids[best],
		Label:        task.Label(ids[best]),
		Confidence:   probs[best],
		Distribution: dist,
		Source:       source,
	}, nil
}
