package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"handcricket/internal/domain"
)

var firstInningsBatting = domain.DecisionContext{Innings: 1, Role: domain.RoleScoring}

func newTestAgent(t *testing.T, d Difficulty, mutate func(*Config)) *Agent {
	t.Helper()
	cfg := Preset(d)
	cfg.Simulations = 400
	if mutate != nil {
		mutate(&cfg)
	}
	a, err := NewAgent(cfg, WithSeed(11))
	require.NoError(t, err)
	return a
}

func TestAgent_ExploitsRepeatedMove(t *testing.T) {
	a := newTestAgent(t, DifficultyHard, func(c *Config) { c.Randomness = 0 })
	for i := 0; i < 5; i++ {
		require.NoError(t, a.Update(1, false))
	}

	d, err := a.Decide(firstInningsBatting)
	require.NoError(t, err)

	assert.Equal(t, domain.Move(1), d.Predicted)
	assert.Equal(t, domain.Move(1), d.Consensus.ArgMax())
	assert.True(t, d.Consensus.Valid())
	assert.NotEqual(t, domain.Move(1), d.Move)
	assert.False(t, d.Choice.Randomized)

	for name, p := range a.Predictions() {
		assert.Truef(t, p.Valid(), "%s: %v", name, p)
	}
	assert.Len(t, a.Predictions(), 7)
}

func TestAgent_BalancedExploitsRepeatedMove(t *testing.T) {
	cfg := Preset(DifficultyBalanced)
	cfg.Simulations = 400
	for seed := int64(1); seed <= 10; seed++ {
		a, err := NewAgent(cfg, WithSeed(seed))
		require.NoError(t, err)
		for i := 0; i < 5; i++ {
			require.NoError(t, a.Update(1, false))
		}

		d, err := a.Decide(firstInningsBatting)
		require.NoError(t, err)
		require.Equalf(t, domain.Move(1), d.Consensus.ArgMax(), "seed %d", seed)

		best := d.Choice.Evaluations[0]
		for _, ev := range d.Choice.Evaluations[1:] {
			if ev.Utility > best.Utility {
				best = ev
			}
		}
		assert.NotEqualf(t, domain.Move(1), best.Move, "seed %d", seed)
		if !d.Choice.Randomized {
			assert.NotEqualf(t, domain.Move(1), d.Move, "seed %d", seed)
		}
	}
}

func TestAgent_WarmupPlaysRandomly(t *testing.T) {
	a := newTestAgent(t, DifficultyBalanced, nil)
	for i := 0; i < 3; i++ {
		d, err := a.Decide(firstInningsBatting)
		require.NoError(t, err)
		assert.True(t, d.Choice.Randomized)
		assert.True(t, d.Move.Valid())
		assert.Equal(t, [domain.K]Evaluation{}, d.Choice.Evaluations)
		require.NoError(t, a.Update(domain.MoveAt(i), false))
	}

	d, err := a.Decide(firstInningsBatting)
	require.NoError(t, err)
	assert.Equal(t, domain.Move(6), d.Choice.Evaluations[5].Move)
}

func TestAgent_DecideIsRepeatable(t *testing.T) {
	a := newTestAgent(t, DifficultyBalanced, nil)
	for _, m := range []domain.Move{2, 4, 2, 4, 2} {
		require.NoError(t, a.Update(m, false))
	}
	first, err := a.Decide(firstInningsBatting)
	require.NoError(t, err)
	second, err := a.Decide(firstInningsBatting)
	require.NoError(t, err)

	assert.Equal(t, first.Consensus, second.Consensus)
	assert.Equal(t, first.Predicted, second.Predicted)
	assert.Equal(t, 5, a.History().Len())
}

func TestAgent_RejectsInvalidInput(t *testing.T) {
	a := newTestAgent(t, DifficultyBalanced, nil)

	err := a.Update(7, false)
	assert.ErrorIs(t, err, domain.ErrInvalidMove)
	err = a.Update(0, true)
	assert.ErrorIs(t, err, domain.ErrInvalidMove)
	assert.Equal(t, 0, a.History().Len())

	_, err = a.Decide(domain.DecisionContext{Innings: 3})
	assert.ErrorIs(t, err, domain.ErrInvalidContext)
}

func TestAgent_LearnsCycle(t *testing.T) {
	a := newTestAgent(t, DifficultyHard, nil)
	cycle := []domain.Move{1, 2, 3}
	for i := 0; i < 30; i++ {
		_, err := a.Decide(firstInningsBatting)
		require.NoError(t, err)
		require.NoError(t, a.Update(cycle[i%3], false))
	}

	s := a.Stats()
	assert.Equal(t, 30, s.Turns)
	assert.Equal(t, 30, s.Predictions)
	assert.ElementsMatch(t, []domain.Move{1, 2, 3}, s.Cycle)
	require.NotEmpty(t, s.LearningCurve)
	assert.GreaterOrEqual(t, s.LearningCurve[len(s.LearningCurve)-1], 0.8)
	assert.Greater(t, s.Accuracy, 0.5)
	require.NotEmpty(t, s.TopPatterns)
	assert.Equal(t, domain.Move(1), s.Favourite[domain.RoleScoring])
	assert.Equal(t, domain.NoMove, s.Favourite[domain.RoleDefending])
}

func TestAgent_ResetStartsFreshMatch(t *testing.T) {
	a := newTestAgent(t, DifficultyEasy, nil)
	first, err := a.Decide(firstInningsBatting)
	require.NoError(t, err)
	for _, m := range []domain.Move{3, 3, 5} {
		require.NoError(t, a.Update(m, false))
	}

	a.Reset()
	assert.Equal(t, 0, a.History().Len())
	assert.Equal(t, 0, a.Stats().Turns)

	again, err := a.Decide(firstInningsBatting)
	require.NoError(t, err)
	assert.Equal(t, first.Move, again.Move)
}

func TestAgent_DecideFor(t *testing.T) {
	a := newTestAgent(t, DifficultyBalanced, nil)
	require.NoError(t, a.Update(2, false))

	h, err := domain.NewHistory(2, 5, 5)
	require.NoError(t, err)
	_, err = a.DecideFor(h, firstInningsBatting)
	require.NoError(t, err)
	assert.Equal(t, []domain.Move{2, 5, 5}, a.History().Moves())

	other, _ := domain.NewHistory(6)
	_, err = a.DecideFor(other, firstInningsBatting)
	assert.ErrorIs(t, err, ErrHistoryMismatch)
}

func TestNewAgent_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Weights[0] = 0.9
	_, err := NewAgent(cfg)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	cfg = DefaultConfig()
	cfg.Randomness = 1.5
	_, err = NewAgent(cfg)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
