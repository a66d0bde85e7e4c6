package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Phase represents the lifecycle stage of a hand-cricket match.
type Phase string

const (
	// PhaseFirstInnings is the opening innings; the batter sets a target.
	PhaseFirstInnings Phase = "first_innings"
	// PhaseSecondInnings is the chase.
	PhaseSecondInnings Phase = "second_innings"
	// PhaseEnded indicates the match has finished.
	PhaseEnded Phase = "ended"
)

// Role is which side of a turn the agent is optimizing for.
type Role int

const (
	// RoleScoring means the agent is batting: matching the opponent is an out.
	RoleScoring Role = iota
	// RoleDefending means the agent is bowling: matching the opponent is the goal.
	RoleDefending
)

func (r Role) String() string {
	switch r {
	case RoleScoring:
		return "scoring"
	case RoleDefending:
		return "defending"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// ParseRole accepts "scoring"/"batting" and "defending"/"bowling".
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "scoring", "batting":
		return RoleScoring, nil
	case "defending", "bowling":
		return RoleDefending, nil
	}
	return RoleScoring, fmt.Errorf("%w: unknown role %q", ErrInvalidContext, s)
}

// ErrInvalidContext is returned for decision contexts that cannot occur in a match.
var ErrInvalidContext = errors.New("invalid decision context")

// DecisionContext is the externally supplied match state for one turn.
type DecisionContext struct {
	Innings       int
	Role          Role
	AgentScore    int
	OpponentScore int
}

// Validate rejects contexts with an unknown innings, role or negative score.
func (c DecisionContext) Validate() error {
	if c.Innings != 1 && c.Innings != 2 {
		return fmt.Errorf("%w: innings %d", ErrInvalidContext, c.Innings)
	}
	if c.Role != RoleScoring && c.Role != RoleDefending {
		return fmt.Errorf("%w: %s", ErrInvalidContext, c.Role)
	}
	if c.AgentScore < 0 || c.OpponentScore < 0 {
		return fmt.Errorf("%w: negative score", ErrInvalidContext)
	}
	return nil
}

// Chasing reports whether the agent is batting second.
func (c DecisionContext) Chasing() bool {
	return c.Innings == 2 && c.Role == RoleScoring
}

// Target returns the score the chasing side must reach, or 0 in the first innings.
func (c DecisionContext) Target() int {
	if c.Innings != 2 {
		return 0
	}
	if c.Role == RoleScoring {
		return c.OpponentScore + 1
	}
	return c.AgentScore + 1
}

// RunsNeeded is the agent's remaining requirement while chasing.
func (c DecisionContext) RunsNeeded() int {
	return c.OpponentScore + 1 - c.AgentScore
}

// Lead is the agent's margin over the opponent.
func (c DecisionContext) Lead() int {
	return c.AgentScore - c.OpponentScore
}
