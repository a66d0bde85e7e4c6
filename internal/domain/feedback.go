package domain

// Feedback is the ground truth handed to every estimator after a turn.
type Feedback struct {
	// Prior is the opponent history before Actual was played.
	Prior History
	// Actual is the move the opponent really made.
	Actual Move
	// Predicted is the agent's most likely move for this turn, NoMove if none was made.
	Predicted Move
	// Out reports whether the turn ended in a dismissal.
	Out bool
}

// Hit reports whether a prediction was made and matched the actual move.
func (f Feedback) Hit() bool {
	return f.Predicted != NoMove && f.Predicted == f.Actual
}
