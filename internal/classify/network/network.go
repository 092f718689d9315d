// Package network implements a single-hidden-layer feed-forward classifier
// trained from scratch with online gradient descent.
package network

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/haskel/aguacate/internal/classify"
	"github.com/haskel/aguacate/internal/classify/corpus"
	"github.com/haskel/aguacate/internal/features"
)

// ErrInvalidInput is returned for a training set that does not fit the network.
var ErrInvalidInput = classify.ErrInvalidInput

// Options controls a training run.
type Options struct {
	Epochs        int
	LearningRate  float64
	ProgressEvery int
	Logger        *slog.Logger
}

// DefaultOptions returns the shipped training parameters.
func DefaultOptions() Options {
	return Options{
		Epochs:        2000,
		LearningRate:  0.5,
		ProgressEvery: 100,
	}
}

// TrainStats summarizes a finished training run.
type TrainStats struct {
	Epochs   int           `json:"epochs"`
	Samples  int           `json:"samples"`
	Error    float64       `json:"error"`
	Duration time.Duration `json:"duration"`
}

// Network is a 7 → hidden (ReLU) → classes (softmax) classifier.
// W1 is inputs×hidden, W2 is hidden×classes.
type Network struct {
	task    classify.Task
	classes []string
	hidden  int

	w1 *mat.Dense
	b1 *mat.VecDense
	w2 *mat.Dense
	b2 *mat.VecDense
}

// New creates a network with Xavier-scaled uniform weights and zero biases.
func New(hidden int, classes []string, rng *rand.Rand) (*Network, error) {
	if hidden <= 0 {
		return nil, fmt.Errorf("hidden size must be positive, got %d", hidden)
	}
	if len(classes) < 2 {
		return nil, fmt.Errorf("at least 2 classes required, got %d", len(classes))
	}

	n := &Network{
		classes: append([]string(nil), classes...),
		hidden:  hidden,
		w1:      xavier(features.Size, hidden, rng),
		b1:      mat.NewVecDense(hidden, nil),
		w2:      xavier(hidden, len(classes), rng),
		b2:      mat.NewVecDense(len(classes), nil),
	}
	return n, nil
}

// NewForTask creates a network sized for a task of the catalog.
func NewForTask(task classify.Task, hidden int, rng *rand.Rand) (*Network, error) {
	ids, err := task.ClassIDs()
	if err != nil {
		return nil, err
	}
	if hidden <= 0 {
		hidden = task.HiddenSize()
	}

	n, err := New(hidden, ids, rng)
	if err != nil {
		return nil, err
	}
	n.task = task
	return n, nil
}

func xavier(rows, cols int, rng *rand.Rand) *mat.Dense {
	scale := math.Sqrt(2 / float64(rows+cols))
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = (rng.Float64()*2 - 1) * scale
	}
	return mat.NewDense(rows, cols, data)
}

// Task returns the task the network was trained for, if known.
func (n *Network) Task() classify.Task {
	return n.task
}

// Classes returns the ordered class identifiers of the output layer.
func (n *Network) Classes() []string {
	return append([]string(nil), n.classes...)
}

// Hidden returns the hidden layer width.
func (n *Network) Hidden() int {
	return n.hidden
}

// forward computes the post-ReLU hidden activations and the softmax output.
// It reads the weights only.
func (n *Network) forward(x *mat.VecDense) (hidden, probs *mat.VecDense) {
	hidden = mat.NewVecDense(n.hidden, nil)
	hidden.MulVec(n.w1.T(), x)
	hidden.AddVec(hidden, n.b1)
	for i := 0; i < n.hidden; i++ {
		if hidden.AtVec(i) < 0 {
			hidden.SetVec(i, 0)
		}
	}

	probs = mat.NewVecDense(len(n.classes), nil)
	probs.MulVec(n.w2.T(), hidden)
	probs.AddVec(probs, n.b2)
	softmax(probs.RawVector().Data)

	return hidden, probs
}

// softmax normalizes logits in place, subtracting the max for stability.
func softmax(z []float64) {
	hi := math.Inf(-1)
	for _, v := range z {
		if v > hi {
			hi = v
		}
	}

	var sum float64
	for i, v := range z {
		z[i] = math.Exp(v - hi)
		sum += z[i]
	}
	for i := range z {
		z[i] /= sum
	}
}

// Probabilities returns the class distribution for a vector, aligned with
// Classes().
func (n *Network) Probabilities(v features.Vector) []float64 {
	_, probs := n.forward(mat.NewVecDense(features.Size, v.Slice()))
	out := make([]float64, probs.Len())
	copy(out, probs.RawVector().Data)
	return out
}

// Predict returns the argmax class with its probability as confidence.
func (n *Network) Predict(v features.Vector) classify.Result {
	probs := n.Probabilities(v)

	dist := make([]classify.ClassScore, len(n.classes))
	for i, id := range n.classes {
		dist[i] = classify.ClassScore{Class: id, Probability: probs[i]}
	}

	best := classify.Argmax(probs)
	return classify.Result{
		Task:         n.task,
		Class:        n.classes[best],
		Label:        n.task.Label(n.classes[best]),
		Confidence:   probs[best],
		Distribution: dist,
		Source:       classify.SourceNetwork,
	}
}

// Train runs online gradient descent over the samples in their given order
// for opts.Epochs epochs. The output error is target minus probability,
// which skips the softmax Jacobian. The hidden gradient is computed from W2
// before it is updated.
func (n *Network) Train(ctx context.Context, set corpus.TrainingSet, opts Options) (TrainStats, error) {
	if err := n.checkSet(set); err != nil {
		return TrainStats{}, err
	}
	if opts.Epochs <= 0 {
		return TrainStats{}, fmt.Errorf("%w: epochs must be positive, got %d", ErrInvalidInput, opts.Epochs)
	}
	if opts.LearningRate <= 0 || math.IsNaN(opts.LearningRate) {
		return TrainStats{}, fmt.Errorf("%w: learning rate must be positive", ErrInvalidInput)
	}

	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if set.Task != "" {
		n.task = set.Task
	}

	inputs := make([]*mat.VecDense, len(set.Samples))
	targets := make([]*mat.VecDense, len(set.Samples))
	for i, s := range set.Samples {
		inputs[i] = mat.NewVecDense(features.Size, s.Vector.Slice())
		target := mat.NewVecDense(len(n.classes), nil)
		target.SetVec(set.ClassIndex(s.Class), 1)
		targets[i] = target
	}

	outGrad := mat.NewVecDense(len(n.classes), nil)
	hiddenGrad := mat.NewVecDense(n.hidden, nil)
	lr := opts.LearningRate

	start := time.Now()
	stats := TrainStats{Samples: len(set.Samples)}

	log.Info("training started",
		"task", n.task,
		"samples", len(set.Samples),
		"hidden", n.hidden,
		"classes", len(n.classes),
		"epochs", opts.Epochs,
	)

	for epoch := 0; epoch < opts.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			stats.Duration = time.Since(start)
			return stats, err
		}

		var total float64
		for i, x := range inputs {
			hidden, probs := n.forward(x)

			outGrad.SubVec(targets[i], probs)

			hiddenGrad.MulVec(n.w2, outGrad)
			for j := 0; j < n.hidden; j++ {
				if hidden.AtVec(j) <= 0 {
					hiddenGrad.SetVec(j, 0)
				}
			}

			n.w2.RankOne(n.w2, lr, hidden, outGrad)
			n.b2.AddScaledVec(n.b2, lr, outGrad)
			n.w1.RankOne(n.w1, lr, x, hiddenGrad)
			n.b1.AddScaledVec(n.b1, lr, hiddenGrad)

			for _, e := range outGrad.RawVector().Data {
				total += math.Abs(e)
			}
		}

		stats.Epochs = epoch + 1
		stats.Error = total

		if opts.ProgressEvery > 0 && epoch%opts.ProgressEvery == 0 {
			log.Debug("training progress",
				"task", n.task,
				"epoch", epoch,
				"epochs", opts.Epochs,
				"error", total,
			)
		}
	}

	stats.Duration = time.Since(start)
	log.Info("training complete",
		"task", n.task,
		"error", stats.Error,
		"duration", stats.Duration,
	)

	return stats, nil
}

func (n *Network) checkSet(set corpus.TrainingSet) error {
	if len(set.Samples) == 0 {
		return fmt.Errorf("%w: empty training set", ErrInvalidInput)
	}
	if len(set.Classes) != len(n.classes) {
		return fmt.Errorf("%w: training set has %d classes, network has %d",
			ErrInvalidInput, len(set.Classes), len(n.classes))
	}
	for i, c := range set.Classes {
		if c != n.classes[i] {
			return fmt.Errorf("%w: class %d is %q, network expects %q",
				ErrInvalidInput, i, c, n.classes[i])
		}
	}
	for i, s := range set.Samples {
		if set.ClassIndex(s.Class) < 0 {
			return fmt.Errorf("%w: sample %d has unknown class %q", ErrInvalidInput, i, s.Class)
		}
	}
	return nil
}
