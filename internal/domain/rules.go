package domain

import "errors"

// Side identifies a participant from the agent's point of view.
type Side int

const (
	SideAgent Side = iota
	SideOpponent
)

// Other returns the opposing side.
func (s Side) Other() Side {
	if s == SideAgent {
		return SideOpponent
	}
	return SideAgent
}

func (s Side) String() string {
	if s == SideAgent {
		return "agent"
	}
	return "opponent"
}

// TurnResult is the outcome of one simultaneous reveal.
type TurnResult struct {
	Out  bool
	Runs int
}

// ErrMatchOver is returned when a turn is played after the match has ended.
var ErrMatchOver = errors.New("match already ended")

// ResolveTurn applies the scoring rule: equal moves dismiss the batter,
// otherwise the batter scores the face value of their own move.
func ResolveTurn(batterMove, bowlerMove Move) (TurnResult, error) {
	if !batterMove.Valid() {
		return TurnResult{}, invalidMove(batterMove)
	}
	if !bowlerMove.Valid() {
		return TurnResult{}, invalidMove(bowlerMove)
	}
	if batterMove == bowlerMove {
		return TurnResult{Out: true}, nil
	}
	return TurnResult{Runs: int(batterMove)}, nil
}
