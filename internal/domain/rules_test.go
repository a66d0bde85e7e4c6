package domain

import (
	"errors"
	"testing"
)

func TestResolveTurn(t *testing.T) {
	tests := []struct {
		name     string
		batter   Move
		bowler   Move
		expected TurnResult
	}{
		{name: "Matching moves are out", batter: 3, bowler: 3, expected: TurnResult{Out: true}},
		{name: "Batter scores own face value", batter: 6, bowler: 2, expected: TurnResult{Runs: 6}},
		{name: "Low score", batter: 1, bowler: 5, expected: TurnResult{Runs: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveTurn(tt.batter, tt.bowler)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("got %+v, want %+v", got, tt.expected)
			}
		})
	}
}

func TestResolveTurn_RejectsInvalidMoves(t *testing.T) {
	if _, err := ResolveTurn(0, 3); !errors.Is(err, ErrInvalidMove) {
		t.Errorf("expected ErrInvalidMove for batter 0, got %v", err)
	}
	if _, err := ResolveTurn(3, 7); !errors.Is(err, ErrInvalidMove) {
		t.Errorf("expected ErrInvalidMove for bowler 7, got %v", err)
	}
}

func TestParseMove(t *testing.T) {
	for v := 1; v <= K; v++ {
		m, err := ParseMove(v)
		if err != nil || int(m) != v {
			t.Errorf("ParseMove(%d) = %v, %v", v, m, err)
		}
	}
	for _, v := range []int{-1, 0, 7, 100} {
		if _, err := ParseMove(v); !errors.Is(err, ErrInvalidMove) {
			t.Errorf("ParseMove(%d) should fail, got %v", v, err)
		}
	}
}

func TestEncodeDecodeMoves(t *testing.T) {
	moves := []Move{1, 6, 3, 3}
	key := EncodeMoves(moves)
	if key != "1633" {
		t.Fatalf("unexpected key %q", key)
	}
	back := DecodeMoves(key)
	for i := range moves {
		if back[i] != moves[i] {
			t.Fatalf("decode mismatch at %d: %v", i, back)
		}
	}
}
