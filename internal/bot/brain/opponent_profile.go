package brain

import (
	"handcricket/internal/domain"
)

// OpponentProfile tracks which moves the opponent plays in each role of the
// agent and where dismissals happened.
type OpponentProfile struct {
	// Played counts opponent moves, indexed by the agent's role then move.
	Played [2][domain.K]int
	// Dismissals counts outs by the move that was matched.
	Dismissals [domain.K]int
}

// NewOpponentProfile initializes an empty profile.
func NewOpponentProfile() *OpponentProfile {
	return &OpponentProfile{}
}

// Reset clears the profile for a new match.
func (p *OpponentProfile) Reset() {
	*p = OpponentProfile{}
}

// RecordMove logs an opponent move made while the agent held role.
func (p *OpponentProfile) RecordMove(role domain.Role, m domain.Move, out bool) {
	if !m.Valid() || (role != domain.RoleScoring && role != domain.RoleDefending) {
		return
	}
	p.Played[role][m.Index()]++
	if out {
		p.Dismissals[m.Index()]++
	}
}

// Total returns the number of moves seen in role.
func (p *OpponentProfile) Total(role domain.Role) int {
	if role != domain.RoleScoring && role != domain.RoleDefending {
		return 0
	}
	n := 0
	for _, c := range p.Played[role] {
		n += c
	}
	return n
}

// Favourite returns the opponent's most played move in role, NoMove when
// nothing has been seen.
func (p *OpponentProfile) Favourite(role domain.Role) domain.Move {
	if p.Total(role) == 0 {
		return domain.NoMove
	}
	var counts [domain.K]float64
	for i, c := range p.Played[role] {
		counts[i] = float64(c)
	}
	return domain.Distribution(counts).ArgMax()
}
