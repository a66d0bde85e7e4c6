package internal

import "handcricket/internal/domain"

// Evaluation is the simulated outlook of playing one move.
type Evaluation struct {
	Move domain.Move
	// Risk is the fraction of trials in which the opponent matched the move.
	Risk float64
	// ExpectedRuns is runs per trial for the batter: the agent's own runs
	// when scoring, the opponent's when defending.
	ExpectedRuns float64
	Utility      float64
}

// UtilityWeights are the penalty and reward applied to risk.
type UtilityWeights struct {
	BattingPenalty  float64
	DefendingReward float64
}

// Scaled applies the tolerance to the weights.
func (w UtilityWeights) Scaled(t Tolerance) UtilityWeights {
	aggression := t.Aggression
	if aggression <= 0 {
		aggression = 1
	}
	return UtilityWeights{
		BattingPenalty:  w.BattingPenalty / aggression,
		DefendingReward: w.DefendingReward * aggression,
	}
}

// Utility scores a move for the role the agent plays this turn.
func Utility(role domain.Role, risk, expectedRuns float64, w UtilityWeights) float64 {
	if role == domain.RoleDefending {
		return w.DefendingReward*risk - expectedRuns
	}
	return expectedRuns - w.BattingPenalty*risk
}

// BestMove returns the evaluation with the highest utility; ties go to the
// lowest move.
func BestMove(evals [domain.K]Evaluation) Evaluation {
	best := evals[0]
	for _, e := range evals[1:] {
		if e.Utility > best.Utility {
			best = e
		}
	}
	return best
}

// SafetyWeights favours moves the opponent is unlikely to match. A move that
// was matched in every trial gets no weight; the others keep a small floor so
// they can still be drawn. If every move is certain to be matched the result
// is uniform.
func SafetyWeights(evals [domain.K]Evaluation) domain.Distribution {
	var d domain.Distribution
	for i, e := range evals {
		if e.Risk >= 1 {
			continue
		}
		d[i] = (1 - e.Risk) + 1e-3
	}
	return d.Normalize()
}
