package domain

// Result names the winner of a finished match.
type Result string

const (
	ResultPending  Result = ""
	ResultAgent    Result = "agent"
	ResultOpponent Result = "opponent"
	ResultTie      Result = "tie"
)

// Match is a two-innings hand-cricket referee. It is the bookkeeping
// collaborator that feeds the agent its decision context.
type Match struct {
	Phase   Phase
	Batting Side
	Scores  [2]int
	Turns   int
	Result  Result
}

// NewMatch starts the first innings with the given side batting.
func NewMatch(firstBatter Side) *Match {
	return &Match{
		Phase:   PhaseFirstInnings,
		Batting: firstBatter,
	}
}

// Innings returns 1 or 2; an ended match reports 2.
func (m *Match) Innings() int {
	if m.Phase == PhaseFirstInnings {
		return 1
	}
	return 2
}

// Over reports whether the match has finished.
func (m *Match) Over() bool {
	return m.Phase == PhaseEnded
}

// Score returns the runs accumulated by side.
func (m *Match) Score(side Side) int {
	return m.Scores[side]
}

// Context builds the decision context for the given side.
func (m *Match) Context(side Side) DecisionContext {
	role := RoleDefending
	if m.Batting == side {
		role = RoleScoring
	}
	return DecisionContext{
		Innings:       m.Innings(),
		Role:          role,
		AgentScore:    m.Scores[side],
		OpponentScore: m.Scores[side.Other()],
	}
}

// Play resolves one turn and advances innings and result.
func (m *Match) Play(agentMove, opponentMove Move) (TurnResult, error) {
	if m.Over() {
		return TurnResult{}, ErrMatchOver
	}

	batterMove, bowlerMove := agentMove, opponentMove
	if m.Batting == SideOpponent {
		batterMove, bowlerMove = opponentMove, agentMove
	}

	res, err := ResolveTurn(batterMove, bowlerMove)
	if err != nil {
		return TurnResult{}, err
	}
	m.Turns++

	if res.Out {
		if m.Phase == PhaseFirstInnings {
			m.Phase = PhaseSecondInnings
			m.Batting = m.Batting.Other()
		} else {
			m.finish()
		}
		return res, nil
	}

	m.Scores[m.Batting] += res.Runs
	if m.Phase == PhaseSecondInnings && m.Scores[m.Batting] > m.Scores[m.Batting.Other()] {
		m.finish()
	}
	return res, nil
}

func (m *Match) finish() {
	m.Phase = PhaseEnded
	switch {
	case m.Scores[SideAgent] > m.Scores[SideOpponent]:
		m.Result = ResultAgent
	case m.Scores[SideOpponent] > m.Scores[SideAgent]:
		m.Result = ResultOpponent
	default:
		m.Result = ResultTie
	}
}
