// Package features turns pixel buffers into the 7-bucket color histogram
// consumed by every classifier in aguacate.
package features

import (
	"errors"
	"fmt"
	"math"
)

// Size is the dimensionality of a feature vector.
const Size = 7

// ErrInvalidInput reports a malformed pixel buffer or feature vector.
var ErrInvalidInput = errors.New("invalid input")

// Bucket identifies one color category of the histogram.
type Bucket int

// Bucket order is shared by the extractor, the heuristic scorer and the
// network input layer. Do not reorder.
const (
	DarkGreen Bucket = iota
	MediumGreen
	LightGreen
	BrownBlack
	Yellow
	Red
	Gray
)

var bucketNames = [Size]string{
	"dark_green",
	"medium_green",
	"light_green",
	"brown_black",
	"yellow",
	"red",
	"gray",
}

// String returns the bucket name.
func (b Bucket) String() string {
	if b < 0 || int(b) >= Size {
		return "unknown"
	}
	return bucketNames[b]
}

// Buckets returns all buckets in vector order.
func Buckets() []Bucket {
	return []Bucket{DarkGreen, MediumGreen, LightGreen, BrownBlack, Yellow, Red, Gray}
}

// Vector holds the fraction of sampled pixels per bucket.
type Vector [Size]float64

// Entries of a caller-supplied vector must lie in [MinEntry, MaxEntry].
// Extracted vectors hold fractions in [0,1]; augmented ones stray by the
// jitter at most.
const (
	MinEntry = -1.0
	MaxEntry = 2.0
)

// FromSlice converts an untrusted slice into a Vector.
func FromSlice(values []float64) (Vector, error) {
	var v Vector
	if len(values) != Size {
		return v, fmt.Errorf("%w: expected %d features, got %d", ErrInvalidInput, Size, len(values))
	}
	for i, x := range values {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return v, fmt.Errorf("%w: feature %s is not a finite number", ErrInvalidInput, Bucket(i))
		}
		if x < MinEntry || x > MaxEntry {
			return v, fmt.Errorf("%w: feature %s = %g outside [%g, %g]", ErrInvalidInput, Bucket(i), x, MinEntry, MaxEntry)
		}
		v[i] = x
	}
	return v, nil
}

// At returns the value of a bucket.
func (v Vector) At(b Bucket) float64 {
	return v[b]
}

// Greenness is the combined share of the three green buckets.
func (v Vector) Greenness() float64 {
	return v[DarkGreen] + v[MediumGreen] + v[LightGreen]
}

// Slice returns a copy of the vector as a slice.
func (v Vector) Slice() []float64 {
	out := make([]float64, Size)
	copy(out, v[:])
	return out
}

// Map returns the vector keyed by bucket name.
func (v Vector) Map() map[string]float64 {
	out := make(map[string]float64, Size)
	for i, name := range bucketNames {
		out[name] = v[i]
	}
	return out
}
