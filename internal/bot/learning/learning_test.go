package learning

import (
	"math"
	"math/rand"
	"testing"

	"handcricket/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type estimator interface {
	Name() string
	Predict(domain.History) domain.Distribution
	Observe(domain.Feedback)
}

func learners() []estimator {
	return []estimator{
		NewFTRL(DefaultFTRLConfig()),
		NewUCB1(0),
		NewLogistic(0, 0),
	}
}

// play feeds moves while predicting each turn, the way the agent does.
func play(t *testing.T, e estimator, moves ...domain.Move) domain.History {
	t.Helper()
	h, err := domain.NewHistory()
	require.NoError(t, err)
	for _, m := range moves {
		predicted := e.Predict(h).ArgMax()
		e.Observe(domain.Feedback{Prior: h.View(), Actual: m, Predicted: predicted})
		h = h.Append(m)
	}
	return h
}

func repeat(m domain.Move, n int) []domain.Move {
	out := make([]domain.Move, n)
	for i := range out {
		out[i] = m
	}
	return out
}

func TestLearners_ColdStartIsUniform(t *testing.T) {
	empty, _ := domain.NewHistory()
	for _, e := range learners() {
		d := e.Predict(empty)
		for i := range d {
			assert.InDelta(t, 1.0/domain.K, d[i], 1e-12, e.Name())
		}
	}
}

func TestLearners_SmoothingInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, e := range learners() {
		h, _ := domain.NewHistory()
		for i := 0; i < 300; i++ {
			d := e.Predict(h)
			require.Truef(t, d.Valid(), "%s turn %d: %v", e.Name(), i, d)

			m := domain.MoveAt(rng.Intn(domain.K))
			if i%2 == 0 {
				m = 2
			}
			e.Observe(domain.Feedback{Prior: h.View(), Actual: m, Predicted: d.ArgMax()})
			h = h.Append(m)
		}
	}
}

func TestLearners_PredictIsIdempotent(t *testing.T) {
	for _, e := range learners() {
		h := play(t, e, 1, 4, 4, 2, 6, 4)
		assert.Equal(t, e.Predict(h), e.Predict(h), e.Name())
	}
}

func TestFTRL_LearnsDominantMove(t *testing.T) {
	f := NewFTRL(DefaultFTRLConfig())
	h := play(t, f, repeat(3, 60)...)

	d := f.Predict(h)
	assert.Equal(t, domain.Move(3), d.ArgMax())
	w := f.Weights()
	assert.Greater(t, w[2], 0.0)
}

func TestFTRL_StrongL1KeepsWeightsAtZero(t *testing.T) {
	f := NewFTRL(FTRLConfig{Alpha: 0.1, Beta: 1, L1: 1e6, L2: 1})
	h := play(t, f, repeat(5, 30)...)

	assert.Equal(t, [domain.K]float64{}, f.Weights())
	assert.Equal(t, domain.Uniform(), f.Predict(h))
}

func TestUCB1_UnpulledArmsDominate(t *testing.T) {
	u := NewUCB1(0)
	u.Observe(domain.Feedback{Actual: 1, Predicted: 1})
	u.Observe(domain.Feedback{Actual: 5, Predicted: 2})

	d := u.Predict(domain.History{})
	require.True(t, d.Valid())
	for _, pulled := range []domain.Move{1, 2} {
		for _, unpulled := range []domain.Move{3, 4, 5, 6} {
			assert.Greater(t, d.Prob(unpulled), d.Prob(pulled))
		}
	}
	assert.InDelta(t, unpulledMass, d.Prob(3)+d.Prob(4)+d.Prob(5)+d.Prob(6), 1e-12)
	assert.Equal(t, domain.Move(3), u.Select())

	scores := u.Scores()
	assert.True(t, math.IsInf(scores[3], 1))
	assert.False(t, math.IsInf(scores[0], 0))
}

func TestUCB1_IgnoresTurnsWithoutPrediction(t *testing.T) {
	u := NewUCB1(0)
	u.Observe(domain.Feedback{Actual: 4})
	assert.Equal(t, [domain.K]int{}, u.Pulls())
	assert.Equal(t, domain.Uniform(), u.Predict(domain.History{}))
}

func TestUCB1_PrefersRewardedArm(t *testing.T) {
	u := NewUCB1(0)
	for round := 0; round < 2; round++ {
		for _, m := range domain.AllMoves() {
			actual := domain.Move(1)
			if m == 1 || m == 4 {
				actual = 4
			}
			u.Observe(domain.Feedback{Actual: actual, Predicted: m})
		}
	}

	assert.Equal(t, domain.Move(4), u.Select())
	assert.Equal(t, domain.Move(4), u.Predict(domain.History{}).ArgMax())
}

func TestLogistic_Features(t *testing.T) {
	l := NewLogistic(5, 0)
	h, err := domain.NewHistory(1, 2, 3)
	require.NoError(t, err)

	assert.Equal(t, []float64{3.0 / 6, 2.0 / 6, 1.0 / 6, 0, 0}, l.Features(h))

	long, _ := domain.NewHistory(6, 6, 1, 2, 3, 4, 5)
	assert.Equal(t, []float64{5.0 / 6, 4.0 / 6, 3.0 / 6, 2.0 / 6, 1.0 / 6}, l.Features(long))
}

func TestLogistic_LearnsConstantOpponent(t *testing.T) {
	l := NewLogistic(0, 0)
	h := play(t, l, repeat(5, 100)...)
	assert.Equal(t, domain.Move(5), l.Predict(h).ArgMax())
}
