package domain

import (
	"errors"
	"testing"
)

func TestMatch_FirstInningsOutSwitchesBatting(t *testing.T) {
	m := NewMatch(SideAgent)

	if _, err := m.Play(4, 2); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if m.Score(SideAgent) != 4 {
		t.Fatalf("agent should have 4 runs, got %d", m.Score(SideAgent))
	}

	res, err := m.Play(5, 5)
	if err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if !res.Out {
		t.Fatal("matching moves should be out")
	}
	if m.Phase != PhaseSecondInnings || m.Batting != SideOpponent {
		t.Fatalf("expected second innings with opponent batting, got %s/%s", m.Phase, m.Batting)
	}

	ctx := m.Context(SideAgent)
	if ctx.Role != RoleDefending || ctx.Innings != 2 || ctx.Lead() != 4 {
		t.Errorf("unexpected agent context %+v", ctx)
	}
}

func TestMatch_ChaseEndsWhenTargetPassed(t *testing.T) {
	m := NewMatch(SideOpponent)
	m.Play(1, 6) // opponent bats 6
	m.Play(2, 2) // out

	ctx := m.Context(SideAgent)
	if !ctx.Chasing() || ctx.Target() != 7 || ctx.RunsNeeded() != 7 {
		t.Fatalf("unexpected chase context %+v", ctx)
	}

	m.Play(6, 1)
	if m.Over() {
		t.Fatal("6 runs should not pass a target of 7")
	}
	m.Play(1, 3)
	if !m.Over() || m.Result != ResultAgent {
		t.Fatalf("agent should have won, phase=%s result=%s", m.Phase, m.Result)
	}

	if _, err := m.Play(1, 2); !errors.Is(err, ErrMatchOver) {
		t.Errorf("expected ErrMatchOver, got %v", err)
	}
}

func TestMatch_SecondInningsResults(t *testing.T) {
	tests := []struct {
		name     string
		moves    [][2]Move // agent, opponent
		expected Result
	}{
		{
			name:     "Defended total",
			moves:    [][2]Move{{5, 1}, {3, 3}, {2, 4}, {6, 6}},
			expected: ResultAgent,
		},
		{
			name:     "Tie when scores level",
			moves:    [][2]Move{{3, 1}, {2, 2}, {1, 3}, {4, 4}},
			expected: ResultTie,
		},
		{
			name:     "Opponent chases down the target",
			moves:    [][2]Move{{1, 2}, {1, 1}, {2, 6}},
			expected: ResultOpponent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMatch(SideAgent)
			for _, turn := range tt.moves {
				if _, err := m.Play(turn[0], turn[1]); err != nil {
					t.Fatalf("Play failed: %v", err)
				}
			}
			if !m.Over() {
				t.Fatal("match should be over")
			}
			if m.Result != tt.expected {
				t.Errorf("got %s, want %s", m.Result, tt.expected)
			}
		})
	}
}

func TestDecisionContext_Validate(t *testing.T) {
	valid := DecisionContext{Innings: 1, Role: RoleScoring}
	if err := valid.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	for _, c := range []DecisionContext{
		{Innings: 0},
		{Innings: 3},
		{Innings: 1, Role: Role(9)},
		{Innings: 2, AgentScore: -1},
	} {
		if err := c.Validate(); !errors.Is(err, ErrInvalidContext) {
			t.Errorf("context %+v should be invalid, got %v", c, err)
		}
	}
}
