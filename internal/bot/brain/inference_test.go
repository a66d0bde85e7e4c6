package brain

import (
	"math"
	"testing"

	"handcricket/internal/domain"
)

func point(m domain.Move, mass float64) domain.Distribution {
	var d domain.Distribution
	rest := (1 - mass) / (domain.K - 1)
	for i := range d {
		d[i] = rest
	}
	d[m.Index()] = mass
	return d
}

func TestCombine_WeightedConsensus(t *testing.T) {
	dists := make([]domain.Distribution, NumSources)
	for i := range dists {
		dists[i] = domain.Uniform()
	}
	dists[SourceNGram] = point(4, 0.95)
	dists[SourceEMA] = point(4, 0.9)
	dists[SourceUCB1] = point(1, 0.99)

	got := Combine(DefaultWeights(), dists)
	if !got.Valid() {
		t.Fatalf("combined distribution invalid: %v", got)
	}
	if got.ArgMax() != 4 {
		t.Errorf("expected consensus on 4, got %d (%v)", got.ArgMax(), got)
	}
}

func TestCombine_NegativeWeightsIgnored(t *testing.T) {
	dists := []domain.Distribution{point(2, 0.9), point(5, 0.9)}
	w := Weights{1, -3}

	got := Combine(w, dists)
	want := point(2, 0.9)
	for i := range got {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Fatalf("move %d: got %v want %v", i+1, got[i], want[i])
		}
	}
}

func TestCombine_DegenerateFallsBackToUniform(t *testing.T) {
	tests := []struct {
		name  string
		w     Weights
		dists []domain.Distribution
	}{
		{"no inputs", DefaultWeights(), nil},
		{"zero weights", Weights{}, []domain.Distribution{point(3, 0.9)}},
		{"nan weight", Weights{math.NaN()}, []domain.Distribution{point(3, 0.9)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Combine(tt.w, tt.dists); got != domain.Uniform() {
				t.Errorf("expected uniform, got %v", got)
			}
		})
	}
}

func TestDefaultWeights_SumToOne(t *testing.T) {
	if s := DefaultWeights().Sum(); math.Abs(s-1) > 1e-9 {
		t.Errorf("default weights sum to %v", s)
	}
	if SourceLogistic.String() != "logistic" || Source(42).String() != "unknown" {
		t.Errorf("unexpected source names")
	}
}
