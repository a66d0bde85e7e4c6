package domain

// History is an ordered, append-only sequence of one participant's moves.
// Copies handed out by View share storage but are capped, so appending to a
// view never writes into the owner's backing array.
type History struct {
	moves []Move
}

// NewHistory validates and copies the given moves.
func NewHistory(moves ...Move) (History, error) {
	for _, m := range moves {
		if !m.Valid() {
			return History{}, invalidMove(m)
		}
	}
	return History{moves: append([]Move(nil), moves...)}, nil
}

// Append returns the history extended by m. Callers validate m beforehand.
func (h History) Append(m Move) History {
	return History{moves: append(h.moves, m)}
}

// View returns a read-only snapshot of h.
func (h History) View() History {
	n := len(h.moves)
	return History{moves: h.moves[:n:n]}
}

// Prefix returns the snapshot holding the first n moves.
func (h History) Prefix(n int) History {
	if n < 0 {
		n = 0
	}
	if n > len(h.moves) {
		n = len(h.moves)
	}
	return History{moves: h.moves[:n:n]}
}

// Len returns the number of moves.
func (h History) Len() int {
	return len(h.moves)
}

// At returns the i-th move (zero-based).
func (h History) At(i int) Move {
	return h.moves[i]
}

// Last returns the most recent move, or NoMove when empty.
func (h History) Last() Move {
	if len(h.moves) == 0 {
		return NoMove
	}
	return h.moves[len(h.moves)-1]
}

// Tail returns a copy of the last n moves (fewer if the history is shorter).
func (h History) Tail(n int) []Move {
	if n <= 0 {
		return nil
	}
	if n > len(h.moves) {
		n = len(h.moves)
	}
	return append([]Move(nil), h.moves[len(h.moves)-n:]...)
}

// Moves returns a copy of every move.
func (h History) Moves() []Move {
	return append([]Move(nil), h.moves...)
}

// HasPrefix reports whether other is a prefix of h.
func (h History) HasPrefix(other History) bool {
	if other.Len() > h.Len() {
		return false
	}
	for i, m := range other.moves {
		if h.moves[i] != m {
			return false
		}
	}
	return true
}
