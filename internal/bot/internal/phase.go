package internal

import "handcricket/internal/domain"

// GamePhase describes the strategic stage of a match from the agent's side.
type GamePhase int

const (
	// PhaseOpening is the first innings; there is no target yet.
	PhaseOpening GamePhase = iota
	// PhaseChase is the second innings with the agent batting.
	PhaseChase
	// PhaseDefence is the second innings with the agent bowling.
	PhaseDefence
)

func (p GamePhase) String() string {
	switch p {
	case PhaseChase:
		return "chase"
	case PhaseDefence:
		return "defence"
	default:
		return "opening"
	}
}

// DetectPhase infers the phase from the decision context.
func DetectPhase(ctx domain.DecisionContext) GamePhase {
	if ctx.Innings != 2 {
		return PhaseOpening
	}
	if ctx.Role == domain.RoleScoring {
		return PhaseChase
	}
	return PhaseDefence
}

const (
	maxAggression = 2.0

	// closeMargin and wideMargin bound the runs-needed and lead bands.
	closeMargin = 3
	wideMargin  = 10
)

// Tolerance scales how much risk the engine accepts for a turn.
type Tolerance struct {
	Phase      GamePhase
	Aggression float64
}

// NeutralTolerance leaves the utility terms untouched.
func NeutralTolerance() Tolerance {
	return Tolerance{Phase: PhaseOpening, Aggression: 1.0}
}

// RiskTolerance derives the aggression for a turn. Chasing a large target
// raises it so riskier high-value moves are preferred; a comfortable lead
// while bowling lowers the value of forcing an out.
func RiskTolerance(ctx domain.DecisionContext) Tolerance {
	phase := DetectPhase(ctx)
	t := Tolerance{Phase: phase, Aggression: 1.0}

	switch phase {
	case PhaseChase:
		need := ctx.RunsNeeded()
		switch {
		case need <= 0:
			t.Aggression = 0.5
		case need <= closeMargin:
			t.Aggression = 1.0
		case need <= wideMargin:
			t.Aggression = 1.25
		default:
			t.Aggression = 1.25 + 0.05*float64(need-wideMargin)
			if t.Aggression > maxAggression {
				t.Aggression = maxAggression
			}
		}
	case PhaseDefence:
		lead := ctx.Lead()
		switch {
		case lead <= closeMargin:
			t.Aggression = 1.75
		case lead <= wideMargin:
			t.Aggression = 1.25
		}
	}
	return t
}
