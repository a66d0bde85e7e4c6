package domain

import (
	"math"
	"math/rand"
)

// Tolerance is the allowed drift of a distribution's total mass from 1.
const Tolerance = 1e-9

// Distribution assigns a weight to every move. After Normalize or Smooth the
// weights sum to 1 and none of them is zero.
type Distribution [K]float64

// Uniform returns the distribution giving every move the same mass.
func Uniform() Distribution {
	var d Distribution
	for i := range d {
		d[i] = 1.0 / K
	}
	return d
}

// FromCounts builds an additively smoothed distribution from raw counts.
func FromCounts(counts [K]float64, smoothing float64) Distribution {
	var d Distribution
	for i, c := range counts {
		if c < 0 {
			c = 0
		}
		d[i] = c + smoothing
	}
	return d.Normalize()
}

// Prob returns the mass assigned to m, or 0 for an invalid move.
func (d Distribution) Prob(m Move) float64 {
	if !m.Valid() {
		return 0
	}
	return d[m.Index()]
}

// Sum returns the total mass.
func (d Distribution) Sum() float64 {
	total := 0.0
	for _, p := range d {
		total += p
	}
	return total
}

// Normalize rescales the weights to sum to 1. Negative entries are clamped to
// zero; a distribution without positive finite mass becomes uniform.
func (d Distribution) Normalize() Distribution {
	total := 0.0
	for i, p := range d {
		if p < 0 || math.IsNaN(p) {
			d[i] = 0
			continue
		}
		total += p
	}
	if total <= 0 || math.IsInf(total, 0) || math.IsNaN(total) {
		return Uniform()
	}
	for i := range d {
		d[i] /= total
	}
	return d
}

// Smooth adds eps to every weight and renormalizes, guaranteeing strictly
// positive mass for every move.
func (d Distribution) Smooth(eps float64) Distribution {
	d = d.Normalize()
	for i := range d {
		d[i] += eps
	}
	return d.Normalize()
}

// ArgMax returns the most likely move; ties resolve to the lowest move.
func (d Distribution) ArgMax() Move {
	best := 0
	for i := 1; i < K; i++ {
		if d[i] > d[best] {
			best = i
		}
	}
	return MoveAt(best)
}

// Max returns the largest weight.
func (d Distribution) Max() float64 {
	return d[d.ArgMax().Index()]
}

// Valid reports whether d is a proper distribution: finite, strictly
// positive entries summing to 1 within Tolerance.
func (d Distribution) Valid() bool {
	for _, p := range d {
		if p <= 0 || math.IsNaN(p) || math.IsInf(p, 0) {
			return false
		}
	}
	return math.Abs(d.Sum()-1) <= Tolerance
}

// Sample draws a move according to the weights.
func (d Distribution) Sample(rng *rand.Rand) Move {
	total := d.Sum()
	if total <= 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		return MoveAt(rng.Intn(K))
	}
	target := rng.Float64() * total
	acc := 0.0
	last := 0
	for i, p := range d {
		if p <= 0 {
			continue
		}
		acc += p
		last = i
		if target < acc {
			return MoveAt(i)
		}
	}
	return MoveAt(last)
}

// Softmax turns arbitrary logits into a distribution. The maximum logit is
// subtracted first so large weights cannot overflow.
func Softmax(logits [K]float64) Distribution {
	peak := math.Inf(-1)
	for _, v := range logits {
		if !math.IsNaN(v) && v > peak {
			peak = v
		}
	}
	if math.IsInf(peak, 0) {
		return Uniform()
	}
	var d Distribution
	for i, v := range logits {
		if math.IsNaN(v) {
			continue
		}
		d[i] = math.Exp(v - peak)
	}
	return d.Normalize()
}
