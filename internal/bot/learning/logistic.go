package learning

import (
	"handcricket/internal/domain"
)

const (
	DefaultFeatures     = 10
	DefaultLearningRate = 0.01
)

// Logistic is a multinomial logistic regression over the most recent moves.
type Logistic struct {
	features int
	rate     float64
	weights  [domain.K][]float64
	bias     [domain.K]float64
}

// NewLogistic creates a model reading the last features moves. Weights start
// at zero so the first prediction is uniform.
func NewLogistic(features int, rate float64) *Logistic {
	if features < 1 {
		features = DefaultFeatures
	}
	if rate <= 0 {
		rate = DefaultLearningRate
	}
	l := &Logistic{features: features, rate: rate}
	for k := range l.weights {
		l.weights[k] = make([]float64, features)
	}
	return l
}

func (l *Logistic) Name() string { return "logistic" }

// Features encodes the newest moves first, each scaled into (0, 1], and pads
// the remainder with zeros.
func (l *Logistic) Features(h domain.History) []float64 {
	x := make([]float64, l.features)
	recent := h.Tail(l.features)
	for i := range recent {
		x[i] = float64(recent[len(recent)-1-i]) / domain.K
	}
	return x
}

func (l *Logistic) Predict(h domain.History) domain.Distribution {
	return l.predict(l.Features(h))
}

func (l *Logistic) predict(x []float64) domain.Distribution {
	var logits [domain.K]float64
	for k := range logits {
		z := l.bias[k]
		for j, v := range x {
			z += l.weights[k][j] * v
		}
		logits[k] = z
	}
	return domain.Softmax(logits)
}

// Observe takes one gradient step on the cross-entropy loss for the
// features of the prior history.
func (l *Logistic) Observe(fb domain.Feedback) {
	if !fb.Actual.Valid() {
		return
	}
	x := l.Features(fb.Prior)
	p := l.predict(x)
	actual := fb.Actual.Index()
	for k := range p {
		err := p[k]
		if k == actual {
			err -= 1
		}
		for j, v := range x {
			l.weights[k][j] -= l.rate * err * v
		}
		l.bias[k] -= l.rate * err
	}
}
