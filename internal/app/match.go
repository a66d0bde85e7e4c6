package app

import (
	"handcricket/internal/bot"
	"handcricket/internal/domain"
)

// MatchSession is a refereed match between an agent and one opponent.
type MatchSession struct {
	Match      *domain.Match
	Brain      bot.Brain
	Difficulty bot.Difficulty
	// OpponentID is the user the agent plays against, empty in simulations.
	OpponentID string
}

// TurnReport is the outcome of one played turn.
type TurnReport struct {
	Decision     bot.Decision
	OpponentMove domain.Move
	Result       domain.TurnResult
}

// StartMatch creates a match and the agent that plays it.
func (s *Service) StartMatch(opponentID string, d bot.Difficulty, seed int64, firstBatter domain.Side) (*MatchSession, []Event, error) {
	brain, d, _, err := s.newBrain(d, seed, s.logger.With("opponent", opponentID))
	if err != nil {
		return nil, nil, err
	}
	return s.startMatch(opponentID, brain, d, firstBatter)
}

func (s *Service) startMatch(opponentID string, brain bot.Brain, d bot.Difficulty, firstBatter domain.Side) (*MatchSession, []Event, error) {
	ms := &MatchSession{
		Match:      domain.NewMatch(firstBatter),
		Brain:      brain,
		Difficulty: d,
		OpponentID: opponentID,
	}
	return ms, []Event{{
		Kind:    EventMatchStarted,
		Payload: MatchStartedPayload{Difficulty: d, FirstBatter: firstBatter},
	}}, nil
}

// PlayTurn lets the agent decide, reveals both moves and feeds the opponent's
// move back to the agent.
func (s *Service) PlayTurn(ms *MatchSession, opponentMove domain.Move) ([]Event, error) {
	report, err := s.playTurn(ms, opponentMove)
	if err != nil {
		return nil, err
	}
	return s.turnEvents(ms, report), nil
}

func (s *Service) playTurn(ms *MatchSession, opponentMove domain.Move) (TurnReport, error) {
	if _, err := domain.ParseMove(int(opponentMove)); err != nil {
		return TurnReport{}, err
	}
	if ms.Match.Over() {
		return TurnReport{}, domain.ErrMatchOver
	}

	ctx := ms.Match.Context(domain.SideAgent)
	start := s.opts.Clock()
	d, err := ms.Brain.Decide(ctx)
	if err != nil {
		return TurnReport{}, err
	}
	s.metrics.decision(ctx.Role, string(ms.Difficulty), d.Choice.Randomized, s.opts.Clock().Sub(start))

	res, err := ms.Match.Play(d.Move, opponentMove)
	if err != nil {
		return TurnReport{}, err
	}
	if err := ms.Brain.Update(opponentMove, res.Out); err != nil {
		return TurnReport{}, err
	}
	s.metrics.prediction(d.Predicted, opponentMove)
	if ms.Match.Over() {
		s.metrics.matchEnded(ms.Match.Result)
	}

	s.logger.Debug("turn played",
		"turn", ms.Match.Turns,
		"agent", d.Move,
		"opponent", opponentMove,
		"out", res.Out,
		"runs", res.Runs,
	)
	return TurnReport{Decision: d, OpponentMove: opponentMove, Result: res}, nil
}

func (s *Service) turnEvents(ms *MatchSession, r TurnReport) []Event {
	m := ms.Match
	// A first-innings dismissal has already handed the bat over.
	switched := r.Result.Out && m.Phase == domain.PhaseSecondInnings
	batting, innings := m.Batting, m.Innings()
	if switched {
		batting, innings = batting.Other(), 1
	}

	events := []Event{{
		Kind: EventTurnResolved,
		Payload: TurnResolvedPayload{
			Turn:         m.Turns,
			Innings:      innings,
			Batting:      batting,
			AgentMove:    r.Decision.Move,
			OpponentMove: r.OpponentMove,
			Predicted:    r.Decision.Predicted,
			Out:          r.Result.Out,
			Runs:         r.Result.Runs,
			Scores:       m.Scores,
		},
	}}

	if switched {
		events = append(events, Event{
			Kind: EventInningsChanged,
			Payload: InningsChangedPayload{
				Batting: m.Batting,
				Target:  m.Scores[m.Batting.Other()] + 1,
			},
		})
	}
	if m.Over() {
		events = append(events, Event{
			Kind:    EventMatchEnded,
			Payload: MatchEndedPayload{Result: m.Result, Scores: m.Scores, Turns: m.Turns},
		})
	}
	return events
}

// Rematch starts a new match against the same agent, which keeps what it
// has learned about the opponent.
func (s *Service) Rematch(ms *MatchSession, firstBatter domain.Side) []Event {
	ms.Match = domain.NewMatch(firstBatter)
	return []Event{{
		Kind:    EventMatchStarted,
		Payload: MatchStartedPayload{Difficulty: ms.Difficulty, FirstBatter: firstBatter},
	}}
}
