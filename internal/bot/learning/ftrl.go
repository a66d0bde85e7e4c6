// Package learning holds the online learners that score the opponent's next
// move from feedback: FTRL-Proximal, a UCB1 bandit and a logistic model.
package learning

import (
	"math"

	"handcricket/internal/domain"
)

// FTRLConfig holds the FTRL-Proximal hyperparameters.
type FTRLConfig struct {
	Alpha float64 `json:"alpha" yaml:"alpha"`
	Beta  float64 `json:"beta" yaml:"beta"`
	L1    float64 `json:"l1" yaml:"l1"`
	L2    float64 `json:"l2" yaml:"l2"`
}

// DefaultFTRLConfig returns alpha 0.1, beta 1, L1 0.1 and L2 1.
func DefaultFTRLConfig() FTRLConfig {
	return FTRLConfig{Alpha: 0.1, Beta: 1.0, L1: 0.1, L2: 1.0}
}

// FTRL keeps per-move z and n accumulators and exposes the resulting weights
// through a softmax.
type FTRL struct {
	cfg FTRLConfig
	z   [domain.K]float64
	n   [domain.K]float64
}

// NewFTRL creates a learner. Non-positive Alpha or Beta fall back to defaults;
// negative regularisers are treated as zero.
func NewFTRL(cfg FTRLConfig) *FTRL {
	def := DefaultFTRLConfig()
	if cfg.Alpha <= 0 {
		cfg.Alpha = def.Alpha
	}
	if cfg.Beta <= 0 {
		cfg.Beta = def.Beta
	}
	cfg.L1 = math.Max(cfg.L1, 0)
	cfg.L2 = math.Max(cfg.L2, 0)
	return &FTRL{cfg: cfg}
}

func (f *FTRL) Name() string { return "ftrl" }

// Weights returns the lazily computed proximal weights.
func (f *FTRL) Weights() [domain.K]float64 {
	var w [domain.K]float64
	for i := range w {
		z := f.z[i]
		if math.Abs(z) <= f.cfg.L1 {
			continue
		}
		sign := 1.0
		if z < 0 {
			sign = -1.0
		}
		w[i] = -(z - sign*f.cfg.L1) / ((f.cfg.Beta+math.Sqrt(f.n[i]))/f.cfg.Alpha + f.cfg.L2)
	}
	return w
}

func (f *FTRL) Predict(domain.History) domain.Distribution {
	return domain.Softmax(f.Weights())
}

// Observe applies one log-loss gradient step towards the actual move.
func (f *FTRL) Observe(fb domain.Feedback) {
	if !fb.Actual.Valid() {
		return
	}
	w := f.Weights()
	p := domain.Softmax(w)
	actual := fb.Actual.Index()
	for i := range f.z {
		g := p[i]
		if i == actual {
			g -= 1
		}
		sigma := (math.Sqrt(f.n[i]+g*g) - math.Sqrt(f.n[i])) / f.cfg.Alpha
		z := f.z[i] + g - sigma*w[i]
		n := f.n[i] + g*g
		if !finite(z) || !finite(n) {
			continue
		}
		f.z[i], f.n[i] = z, n
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
