package mining

import (
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

// fold feeds moves one by one, the way the agent does after each turn.
func fold(t *testing.T, e estimator, moves ...domain.Move) domain.History {
	t.Helper()
	h, err := domain.NewHistory()
	require.NoError(t, err)
	for _, m := range moves {
		e.Observe(domain.Feedback{Prior: h.View(), Actual: m})
		h = h.Append(m)
	}
	return h
}

func allEstimators() []estimator {
	return []estimator{
		NewNGram(0, 0),
		NewWindow(0, 0),
		NewEMA(0),
		NewSequences(0, 0, 0),
	}
}

func TestEstimators_ColdStartIsUniform(t *testing.T) {
	empty, _ := domain.NewHistory()
	for _, e := range allEstimators() {
		assert.Equal(t, domain.Uniform(), e.Predict(empty), e.Name())
	}
}

func TestEstimators_SmoothingInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for _, e := range allEstimators() {
		h, _ := domain.NewHistory()
		for i := 0; i < 300; i++ {
			d := e.Predict(h)
			require.Truef(t, d.Valid(), "%s turn %d: %v", e.Name(), i, d)

			m := domain.MoveAt(rng.Intn(domain.K))
			if i%3 == 0 {
				m = 4
			}
			e.Observe(domain.Feedback{Prior: h.View(), Actual: m})
			h = h.Append(m)
		}
	}
}

func TestEstimators_PredictIsIdempotent(t *testing.T) {
	for _, e := range allEstimators() {
		h := fold(t, e, 1, 2, 3, 1, 2, 3, 1, 2)
		first := e.Predict(h)
		second := e.Predict(h)
		assert.Equal(t, first, second, e.Name())
	}
}

func TestNGram_PrefersMostSpecificContext(t *testing.T) {
	g := NewNGram(3, 0.1)
	h := fold(t, g, 2, 3, 3, 2, 3, 3, 2, 3)

	require.Equal(t, 3, g.BackoffOrder(h))
	d := g.Predict(h)
	assert.Equal(t, domain.Move(3), d.ArgMax(), "context (2,3) was followed by 3 twice: %v", d)

	counts, ok := g.Counts([]domain.Move{2, 3})
	require.True(t, ok)
	assert.Equal(t, 2.0, counts[domain.Move(3).Index()])
}

func TestNGram_WorkedExample(t *testing.T) {
	g := NewNGram(3, 0.1)
	h := fold(t, g, 1, 2, 3, 2, 3)

	// (2,3) has been followed only by 2 so far.
	assert.Equal(t, 3, g.BackoffOrder(h))
	assert.Equal(t, domain.Move(2), g.Predict(h).ArgMax())

	// An unseen trigram context backs off to the bigram (1)->2.
	probe, _ := domain.NewHistory(3, 1)
	assert.Equal(t, 2, g.BackoffOrder(probe))
	assert.Equal(t, domain.Move(2), g.Predict(probe).ArgMax())
}

func TestNGram_UnseenContextsFallBackToUnigram(t *testing.T) {
	g := NewNGram(3, 0.1)
	fold(t, g, 5, 5, 5)

	probe, _ := domain.NewHistory(6, 6)
	assert.Equal(t, 1, g.BackoffOrder(probe))
	assert.Equal(t, domain.Move(5), g.Predict(probe).ArgMax())
}

func TestWindow_KeepsLastMoves(t *testing.T) {
	w := NewWindow(4, 0.01)
	fold(t, w, 1, 2, 3, 4, 5, 6, 1, 2, 3)

	assert.Equal(t, []domain.Move{6, 1, 2, 3}, w.Contents())
	freq := w.Frequencies()
	for _, m := range []domain.Move{6, 1, 2, 3} {
		assert.InDelta(t, 0.25, freq[m.Index()], 1e-12)
	}
	assert.Zero(t, freq[domain.Move(4).Index()])
	assert.Zero(t, freq[domain.Move(5).Index()])

	d := w.Predict(domain.History{})
	assert.True(t, d.Valid())
	assert.Greater(t, d.Prob(6), d.Prob(4))
}

func TestWindow_DetectCycle(t *testing.T) {
	w := NewWindow(8, 0.01)
	fold(t, w, 1, 2, 3, 1, 2, 3)

	block, ok := w.DetectCycle()
	require.True(t, ok)
	assert.Equal(t, []domain.Move{1, 2, 3}, block)

	next, ok := w.CycleNext()
	require.True(t, ok)
	assert.Equal(t, domain.Move(1), next)

	noise := NewWindow(8, 0.01)
	fold(t, noise, 1, 2, 3, 4, 5, 6)
	_, ok = noise.DetectCycle()
	assert.False(t, ok)
}

func TestWindow_RepeatedBlocks(t *testing.T) {
	w := NewWindow(10, 0.01)
	fold(t, w, 4, 5, 4, 5, 4, 5, 1)

	blocks := w.RepeatedBlocks(2)
	require.NotEmpty(t, blocks)
	assert.Equal(t, []domain.Move{4, 5}, blocks[0].Moves)
	assert.Equal(t, 3, blocks[0].Count)
}

func TestEMA_RepeatedMoveIsReinforced(t *testing.T) {
	e := NewEMA(0.3)
	e.Observe(domain.Feedback{Actual: 2})
	once := e.Weights().Prob(2)
	e.Observe(domain.Feedback{Actual: 2})
	twice := e.Weights().Prob(2)

	assert.Greater(t, twice, once)
	assert.InDelta(t, 1.0, e.Weights().Sum(), 1e-12)
	assert.Equal(t, domain.Move(2), e.Predict(domain.History{}).ArgMax())
}

func TestEMA_LongDecayStaysPositive(t *testing.T) {
	e := NewEMA(0.9)
	for i := 0; i < 5000; i++ {
		e.Observe(domain.Feedback{Actual: 1})
	}
	assert.True(t, e.Predict(domain.History{}).Valid())
}

func TestSequences_PredictsFromFrequentPattern(t *testing.T) {
	s := NewSequences(2, 4, 0.1)
	h := fold(t, s, 1, 2, 1, 2, 1, 2)

	assert.Equal(t, 3, s.Support([]domain.Move{1, 2}))
	assert.Equal(t, 2, s.Support([]domain.Move{2, 1}))
	assert.Equal(t, domain.Move(1), s.Predict(h).ArgMax())

	top := s.Frequent(1)
	require.Len(t, top, 1)
	assert.Equal(t, []domain.Move{1, 2}, top[0].Moves)
}

func TestSequences_BelowSupportIsUniform(t *testing.T) {
	s := NewSequences(2, 4, 0.1)
	h := fold(t, s, 1, 2, 3, 4)
	assert.Equal(t, domain.Uniform(), s.Predict(h))
	assert.Empty(t, s.Frequent(0))
}
