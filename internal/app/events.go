package app

import (
	"handcricket/internal/bot"
	"handcricket/internal/domain"
)

// EventKind identifies emitted events for logging and Nakama dispatch.
type EventKind string

const (
	EventSessionStarted  EventKind = "session_started"
	EventMoveChosen      EventKind = "move_chosen"
	EventOutcomeRecorded EventKind = "outcome_recorded"
	EventSessionEnded    EventKind = "session_ended"

	EventMatchStarted   EventKind = "match_started"
	EventTurnResolved   EventKind = "turn_resolved"
	EventInningsChanged EventKind = "innings_changed"
	EventMatchEnded     EventKind = "match_ended"
)

// Event is an app event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	SessionID  string
	Payload    any
	Recipients []string // user IDs; empty means broadcast
}

type SessionStartedPayload struct {
	Owner      string
	Difficulty bot.Difficulty
	Seed       int64
}

type MoveChosenPayload struct {
	Turn       int
	Role       domain.Role
	Move       domain.Move
	Predicted  domain.Move
	Confidence float64
	Randomized bool
}

type OutcomeRecordedPayload struct {
	Turn      int
	Actual    domain.Move
	Predicted domain.Move
	Hit       bool
	Out       bool
}

type SessionEndedPayload struct {
	Reason string
	Stats  bot.Stats
}

type MatchStartedPayload struct {
	Difficulty  bot.Difficulty
	FirstBatter domain.Side
}

type TurnResolvedPayload struct {
	Turn         int
	Innings      int
	Batting      domain.Side
	AgentMove    domain.Move
	OpponentMove domain.Move
	Predicted    domain.Move
	Out          bool
	Runs         int
	Scores       [2]int
}

type InningsChangedPayload struct {
	Batting domain.Side
	Target  int
}

type MatchEndedPayload struct {
	Result domain.Result
	Scores [2]int
	Turns  int
}
