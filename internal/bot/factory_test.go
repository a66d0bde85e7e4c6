package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"handcricket/internal/domain"
)

func TestPresets(t *testing.T) {
	tests := []struct {
		d             Difficulty
		randomness    float64
		learningSpeed int
		patternWeight float64
		simulations   int
	}{
		{DifficultyEasy, 0.25, 40, 0.60, 500},
		{DifficultyBalanced, 0.10, 30, 0.82, 1000},
		{DifficultyHard, 0.03, 20, 0.92, 2000},
	}
	for _, tt := range tests {
		t.Run(string(tt.d), func(t *testing.T) {
			c := Preset(tt.d)
			require.NoError(t, c.Validate())
			assert.Equal(t, tt.randomness, c.Randomness)
			assert.Equal(t, tt.learningSpeed, c.LearningSpeed)
			assert.Equal(t, tt.patternWeight, c.PatternWeight)
			assert.Equal(t, tt.simulations, c.Simulations)
			assert.Equal(t, 3, c.WarmupTurns)
		})
	}
}

func TestParseDifficulty(t *testing.T) {
	for in, want := range map[string]Difficulty{
		"easy": DifficultyEasy, " Hard ": DifficultyHard, "medium": DifficultyBalanced,
		"": DifficultyBalanced, "RANDOM": DifficultyRandom,
	} {
		got, err := ParseDifficulty(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseDifficulty("godlike")
	assert.ErrorIs(t, err, ErrUnknownDifficulty)
}

func TestNewBrain(t *testing.T) {
	b, err := NewBrain(DifficultyHard, WithSeed(3))
	require.NoError(t, err)
	assert.IsType(t, &Agent{}, b)

	b, err = NewBrain(DifficultyRandom, WithSeed(3))
	require.NoError(t, err)
	assert.IsType(t, &RandomBrain{}, b)

	_, err = NewBrain("legendary")
	assert.ErrorIs(t, err, ErrUnknownDifficulty)
}

func TestRandomBrain_SeededAndNonLearning(t *testing.T) {
	a := NewRandomBrain(WithSeed(21))
	b := NewRandomBrain(WithSeed(21))
	for i := 0; i < 20; i++ {
		da, err := a.Decide(firstInningsBatting)
		require.NoError(t, err)
		db, _ := b.Decide(firstInningsBatting)
		assert.Equal(t, da.Move, db.Move)
		assert.Equal(t, domain.NoMove, da.Predicted)
		require.NoError(t, a.Update(4, false))
	}
	assert.Equal(t, 20, a.Stats().Turns)
	assert.Equal(t, domain.Move(4), a.Stats().Favourite[domain.RoleScoring])
	assert.ErrorIs(t, a.Update(9, false), domain.ErrInvalidMove)
}

func TestOverrides_Apply(t *testing.T) {
	sims, randomness, seed := 200, 0.5, int64(99)
	base := Preset(DifficultyHard)

	c := Overrides{Simulations: &sims, Randomness: &randomness, Seed: &seed}.Apply(base)
	assert.Equal(t, 200, c.Simulations)
	assert.Equal(t, 0.5, c.Randomness)
	assert.Equal(t, int64(99), c.Seed)
	assert.Equal(t, base.PatternWeight, c.PatternWeight)
	assert.Equal(t, base.Weights, c.Weights)
	require.NoError(t, c.Validate())

	assert.Equal(t, base, Overrides{}.Apply(base))
}
