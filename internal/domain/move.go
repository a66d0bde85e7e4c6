package domain

import (
	"errors"
	"fmt"
)

// K is the number of symbols a player can show in a turn.
const K = 6

// Move is a single choice from the alphabet [1, K].
type Move int

// NoMove marks the absence of a move, e.g. a turn where no prediction was made.
const NoMove Move = 0

// ErrInvalidMove is returned when a move value falls outside [1, K].
var ErrInvalidMove = errors.New("invalid move")

// Valid reports whether m is inside the alphabet.
func (m Move) Valid() bool {
	return m >= 1 && m <= K
}

// Index returns the zero-based slot of m in a length-K vector.
func (m Move) Index() int {
	return int(m) - 1
}

// MoveAt converts a zero-based slot back to a move.
func MoveAt(index int) Move {
	return Move(index + 1)
}

// ParseMove converts a raw integer into a Move, rejecting out-of-range values.
func ParseMove(v int) (Move, error) {
	m := Move(v)
	if !m.Valid() {
		return NoMove, fmt.Errorf("%w: %d", ErrInvalidMove, v)
	}
	return m, nil
}

// ParseMoves converts a slice of raw integers, failing on the first invalid value.
func ParseMoves(values []int) ([]Move, error) {
	out := make([]Move, 0, len(values))
	for _, v := range values {
		m, err := ParseMove(v)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// AllMoves returns every move in ascending order.
func AllMoves() [K]Move {
	var out [K]Move
	for i := range out {
		out[i] = MoveAt(i)
	}
	return out
}
