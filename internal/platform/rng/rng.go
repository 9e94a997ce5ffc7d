package rng

import (
	"errors"
	"math/rand/v2"
)

var ErrNoCandidates = errors.New("no candidates to pick from")

// Source is the randomness contract for simulation code. Implementations must
// be deterministic for a fixed seed so trials are reproducible.
type Source interface {
	Float64() float64
	IntN(n int) int
}

// New returns a deterministic PCG-backed source. The same seed always yields
// the same draw sequence.
func New(seed int64) Source {
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))
}

// Bernoulli reports a single success draw with probability p. Values outside
// [0,1] are clamped; callers that need to treat out-of-range probabilities as
// errors must validate before drawing.
func Bernoulli(src Source, p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return src.Float64() < p
}

// PickWeighted samples an index in proportion to weights[i]+floor. Negative
// weights count as zero. With a positive floor, an all-zero weight slice
// degrades to a uniform pick, which is the fallback every selection site in
// the simulator relies on.
func PickWeighted(src Source, weights []float64, floor float64) (int, error) {
	if len(weights) == 0 {
		return 0, ErrNoCandidates
	}

	total := 0.0
	adjusted := make([]float64, len(weights))
	for i, w := range weights {
		if w < 0 {
			w = 0
		}
		adjusted[i] = w + floor
		total += adjusted[i]
	}

	if total <= 0 {
		return src.IntN(len(weights)), nil
	}

	target := src.Float64() * total
	acc := 0.0
	for i, w := range adjusted {
		acc += w
		if target < acc {
			return i, nil
		}
	}

	return len(weights) - 1, nil
}
