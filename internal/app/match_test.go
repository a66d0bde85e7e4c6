package app

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"handcricket/internal/bot"
	"handcricket/internal/domain"
)

// scriptedBrain plays a fixed sequence and records what it was told.
type scriptedBrain struct {
	moves    []domain.Move
	contexts []domain.DecisionContext
	seen     []domain.Move
}

func (b *scriptedBrain) Decide(ctx domain.DecisionContext) (bot.Decision, error) {
	m := b.moves[len(b.contexts)%len(b.moves)]
	b.contexts = append(b.contexts, ctx)
	return bot.Decision{Move: m, Predicted: 6, Consensus: domain.Uniform()}, nil
}

func (b *scriptedBrain) Update(actual domain.Move, out bool) error {
	b.seen = append(b.seen, actual)
	return nil
}

func (b *scriptedBrain) Stats() bot.Stats { return bot.Stats{Turns: len(b.seen)} }
func (b *scriptedBrain) Reset()           {}

func TestPlayTurnFullMatch(t *testing.T) {
	svc, _ := newTestService(Options{MetricsEnabled: true})
	brain := &scriptedBrain{moves: []domain.Move{4, 5, 1}}
	before := testutil.ToFloat64(matchesTotal.WithLabelValues(string(domain.ResultOpponent)))

	ms, evs, err := svc.startMatch("u1", brain, bot.DifficultyBalanced, domain.SideAgent)
	require.NoError(t, err)
	require.Len(t, evs, 1)
	assert.Equal(t, EventMatchStarted, evs[0].Kind)

	// Agent bats 4 against 2.
	evs, err = svc.PlayTurn(ms, 2)
	require.NoError(t, err)
	require.Len(t, evs, 1)
	turn := evs[0].Payload.(TurnResolvedPayload)
	assert.Equal(t, 1, turn.Innings)
	assert.Equal(t, domain.SideAgent, turn.Batting)
	assert.Equal(t, 4, turn.Runs)
	assert.Equal(t, [2]int{4, 0}, turn.Scores)

	// Matching fives dismiss the agent and hand over the bat.
	evs, err = svc.PlayTurn(ms, 5)
	require.NoError(t, err)
	require.Len(t, evs, 2)
	turn = evs[0].Payload.(TurnResolvedPayload)
	assert.True(t, turn.Out)
	assert.Equal(t, 1, turn.Innings)
	assert.Equal(t, domain.SideAgent, turn.Batting)
	assert.Equal(t, EventInningsChanged, evs[1].Kind)
	assert.Equal(t, InningsChangedPayload{Batting: domain.SideOpponent, Target: 5}, evs[1].Payload)

	// Opponent hits 6 off the agent's 1 and passes the target.
	evs, err = svc.PlayTurn(ms, 6)
	require.NoError(t, err)
	require.Len(t, evs, 2)
	assert.Equal(t, EventMatchEnded, evs[1].Kind)
	assert.Equal(t, MatchEndedPayload{Result: domain.ResultOpponent, Scores: [2]int{4, 6}, Turns: 3}, evs[1].Payload)

	_, err = svc.PlayTurn(ms, 1)
	assert.True(t, errors.Is(err, domain.ErrMatchOver))

	assert.Equal(t, []domain.Move{2, 5, 6}, brain.seen)
	require.Len(t, brain.contexts, 3)
	assert.Equal(t, domain.RoleScoring, brain.contexts[0].Role)
	assert.Equal(t, domain.DecisionContext{Innings: 2, Role: domain.RoleDefending, AgentScore: 4}, brain.contexts[2])

	after := testutil.ToFloat64(matchesTotal.WithLabelValues(string(domain.ResultOpponent)))
	assert.Equal(t, 1.0, after-before)
}

func TestPlayTurnRejectsInvalidMove(t *testing.T) {
	svc, _ := newTestService(Options{})
	brain := &scriptedBrain{moves: []domain.Move{1}}
	ms, _, err := svc.startMatch("u1", brain, bot.DifficultyBalanced, domain.SideOpponent)
	require.NoError(t, err)

	_, err = svc.PlayTurn(ms, 7)
	assert.True(t, errors.Is(err, domain.ErrInvalidMove))
	assert.Zero(t, ms.Match.Turns)
	assert.Empty(t, brain.contexts)
}

func TestStartMatchBuildsAgent(t *testing.T) {
	svc, _ := newTestService(Options{})
	ms, _, err := svc.StartMatch("u1", bot.DifficultyHard, 9, domain.SideOpponent)
	require.NoError(t, err)
	assert.Equal(t, bot.DifficultyHard, ms.Difficulty)
	assert.Equal(t, "u1", ms.OpponentID)

	for !ms.Match.Over() && ms.Match.Turns < 50 {
		_, err := svc.PlayTurn(ms, 3)
		require.NoError(t, err)
	}
	assert.Equal(t, ms.Match.Turns, ms.Brain.Stats().Turns)
}

func TestRematchKeepsAgent(t *testing.T) {
	svc, _ := newTestService(Options{})
	brain := &scriptedBrain{moves: []domain.Move{2}}
	ms, _, err := svc.startMatch("u1", brain, bot.DifficultyEasy, domain.SideAgent)
	require.NoError(t, err)

	_, err = svc.PlayTurn(ms, 2)
	require.NoError(t, err)
	_, err = svc.PlayTurn(ms, 2)
	require.NoError(t, err)
	require.True(t, ms.Match.Over())

	evs := svc.Rematch(ms, domain.SideOpponent)
	require.Len(t, evs, 1)
	assert.Equal(t, MatchStartedPayload{Difficulty: bot.DifficultyEasy, FirstBatter: domain.SideOpponent}, evs[0].Payload)
	assert.False(t, ms.Match.Over())
	assert.Equal(t, domain.SideOpponent, ms.Match.Batting)
	assert.Same(t, brain, ms.Brain.(*scriptedBrain))
	assert.Len(t, brain.seen, 2)
}
