package brain

import (
	"handcricket/internal/domain"
)

// Turn is one resolved turn as seen by the prediction memory.
type Turn struct {
	Predicted  domain.Move
	Confidence float64
	Actual     domain.Move
}

// Hit reports whether the turn carried a prediction that came true.
func (t Turn) Hit() bool {
	return t.Predicted != domain.NoMove && t.Predicted == t.Actual
}

// Memory stores the agent's predictions and how they turned out.
type Memory struct {
	turns   []Turn
	pending *Turn
}

// NewMemory initializes an empty memory.
func NewMemory() *Memory {
	return &Memory{}
}

// Reset clears the memory for a new match.
func (m *Memory) Reset() {
	m.turns = nil
	m.pending = nil
}

// RecordPrediction stores the forecast for the upcoming turn, replacing any
// unresolved one.
func (m *Memory) RecordPrediction(predicted domain.Move, confidence float64) {
	m.pending = &Turn{Predicted: predicted, Confidence: confidence}
}

// Pending returns the unresolved prediction, if any.
func (m *Memory) Pending() (Turn, bool) {
	if m.pending == nil {
		return Turn{}, false
	}
	return *m.pending, true
}

// RecordOutcome resolves the pending prediction against the actual move. A
// turn without a prediction is stored with NoMove.
func (m *Memory) RecordOutcome(actual domain.Move) Turn {
	t := Turn{Predicted: domain.NoMove, Actual: actual}
	if m.pending != nil {
		t = *m.pending
		t.Actual = actual
		m.pending = nil
	}
	m.turns = append(m.turns, t)
	return t
}

// Turns returns the number of resolved turns.
func (m *Memory) Turns() int {
	return len(m.turns)
}

// Predictions returns the number of resolved turns that carried a prediction.
func (m *Memory) Predictions() int {
	n := 0
	for _, t := range m.turns {
		if t.Predicted != domain.NoMove {
			n++
		}
	}
	return n
}

// Hits returns the number of correct predictions.
func (m *Memory) Hits() int {
	n := 0
	for _, t := range m.turns {
		if t.Hit() {
			n++
		}
	}
	return n
}

// Accuracy is hits over predictions, 0 before the first prediction resolves.
func (m *Memory) Accuracy() float64 {
	p := m.Predictions()
	if p == 0 {
		return 0
	}
	return float64(m.Hits()) / float64(p)
}

// AverageConfidence is the mean confidence of resolved predictions.
func (m *Memory) AverageConfidence() float64 {
	sum, n := 0.0, 0
	for _, t := range m.turns {
		if t.Predicted == domain.NoMove {
			continue
		}
		sum += t.Confidence
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// LearningCurve returns, for every resolved prediction, the accuracy over
// the last window predictions ending there.
func (m *Memory) LearningCurve(window int) []float64 {
	if window < 1 {
		window = 1
	}
	var hits []bool
	for _, t := range m.turns {
		if t.Predicted != domain.NoMove {
			hits = append(hits, t.Hit())
		}
	}
	curve := make([]float64, 0, len(hits))
	inWindow := 0
	for i, h := range hits {
		if h {
			inWindow++
		}
		if i >= window && hits[i-window] {
			inWindow--
		}
		size := window
		if i+1 < window {
			size = i + 1
		}
		curve = append(curve, float64(inWindow)/float64(size))
	}
	return curve
}

// Recent returns up to n of the latest resolved turns, oldest first.
func (m *Memory) Recent(n int) []Turn {
	if n <= 0 {
		return nil
	}
	if n > len(m.turns) {
		n = len(m.turns)
	}
	return append([]Turn(nil), m.turns[len(m.turns)-n:]...)
}
