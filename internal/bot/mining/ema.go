package mining

import "handcricket/internal/domain"

const (
	DefaultEMAAlpha = 0.3

	// emaFloor keeps long-unseen moves above zero once decay underflows.
	emaFloor = 1e-6
)

// EMA tracks an exponentially decayed frequency of each move.
type EMA struct {
	alpha    float64
	weights  domain.Distribution
	observed int
}

// NewEMA creates an EMA with smoothing factor alpha in (0, 1).
func NewEMA(alpha float64) *EMA {
	if alpha <= 0 || alpha >= 1 {
		alpha = DefaultEMAAlpha
	}
	return &EMA{alpha: alpha, weights: domain.Uniform()}
}

func (e *EMA) Name() string { return "ema" }

// Observe reinforces the actual move and decays the rest.
func (e *EMA) Observe(fb domain.Feedback) {
	hit := fb.Actual.Index()
	for i := range e.weights {
		e.weights[i] *= 1 - e.alpha
		if i == hit {
			e.weights[i] += e.alpha
		}
	}
	e.weights = e.weights.Normalize()
	e.observed++
}

// Predict returns the current vector with a small floor.
func (e *EMA) Predict(domain.History) domain.Distribution {
	if e.observed == 0 {
		return domain.Uniform()
	}
	return e.weights.Smooth(emaFloor)
}

// Weights returns the raw running vector.
func (e *EMA) Weights() domain.Distribution {
	return e.weights
}
