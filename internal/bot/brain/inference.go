package brain

import (
	"math"

	"handcricket/internal/domain"
)

// Source identifies one estimator feeding the aggregate.
type Source int

const (
	SourceNGram Source = iota
	SourceWindow
	SourceEMA
	SourceSequences
	SourceFTRL
	SourceUCB1
	SourceLogistic

	// NumSources is the number of estimators the aggregate expects.
	NumSources
)

var sourceNames = [NumSources]string{
	"ngram", "window", "ema", "sequences", "ftrl", "ucb1", "logistic",
}

func (s Source) String() string {
	if s < 0 || s >= NumSources {
		return "unknown"
	}
	return sourceNames[s]
}

// Sources lists every source in aggregation order.
func Sources() [NumSources]Source {
	var out [NumSources]Source
	for i := range out {
		out[i] = Source(i)
	}
	return out
}

// Weights holds one non-negative weight per Source.
type Weights [NumSources]float64

// DefaultWeights favours the n-gram and EMA signals.
func DefaultWeights() Weights {
	return Weights{0.20, 0.15, 0.20, 0.15, 0.15, 0.10, 0.05}
}

// Sum returns the total of the effective (non-negative, finite) weights.
func (w Weights) Sum() float64 {
	total := 0.0
	for _, v := range w {
		total += effective(v)
	}
	return total
}

func effective(v float64) float64 {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Combine merges per-source distributions into a single consensus. dists is
// indexed by Source; missing trailing entries contribute nothing. When no
// source carries weight the result is uniform.
func Combine(w Weights, dists []domain.Distribution) domain.Distribution {
	var out domain.Distribution
	total := 0.0
	for i, d := range dists {
		if i >= int(NumSources) {
			break
		}
		weight := effective(w[i])
		if weight == 0 {
			continue
		}
		d = d.Normalize()
		for k := range out {
			out[k] += weight * d[k]
		}
		total += weight
	}
	if total == 0 {
		return domain.Uniform()
	}
	return out.Normalize()
}
