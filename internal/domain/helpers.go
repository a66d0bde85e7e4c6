package domain

import "fmt"

func invalidMove(m Move) error {
	return fmt.Errorf("%w: %d", ErrInvalidMove, int(m))
}

// ValidateMoves returns an error for the first move outside [1, K].
func ValidateMoves(moves []Move) error {
	for _, m := range moves {
		if !m.Valid() {
			return invalidMove(m)
		}
	}
	return nil
}

// Frequencies returns the relative frequency of each move in moves (unsmoothed).
// An empty slice yields all zeros.
func Frequencies(moves []Move) [K]float64 {
	var out [K]float64
	if len(moves) == 0 {
		return out
	}
	for _, m := range moves {
		if m.Valid() {
			out[m.Index()]++
		}
	}
	for i := range out {
		out[i] /= float64(len(moves))
	}
	return out
}

// EncodeMoves packs a move sequence into a compact map key.
func EncodeMoves(moves []Move) string {
	if len(moves) == 0 {
		return ""
	}
	buf := make([]byte, len(moves))
	for i, m := range moves {
		buf[i] = byte(m) + '0'
	}
	return string(buf)
}

// DecodeMoves reverses EncodeMoves.
func DecodeMoves(key string) []Move {
	out := make([]Move, len(key))
	for i := 0; i < len(key); i++ {
		out[i] = Move(key[i] - '0')
	}
	return out
}
