package bot

import (
	botinternal "handcricket/internal/bot/internal"
	"handcricket/internal/bot/mining"
	"handcricket/internal/domain"
)

// Estimator is implemented by every component that forecasts the opponent's
// next move. Predict must not change the estimator's state.
type Estimator interface {
	Name() string
	Predict(h domain.History) domain.Distribution
	Observe(fb domain.Feedback)
}

type (
	Choice     = botinternal.Choice
	Evaluation = botinternal.Evaluation
)

// Decision is the agent's move for a turn together with what it expected
// the opponent to play.
type Decision struct {
	Move       domain.Move
	Predicted  domain.Move
	Confidence float64
	Consensus  domain.Distribution
	Choice     Choice
}

// Stats summarises how well the agent has read its opponent.
type Stats struct {
	Turns             int
	Predictions       int
	Hits              int
	Accuracy          float64
	AverageConfidence float64
	LearningCurve     []float64
	TopPatterns       []mining.Pattern
	Cycle             []domain.Move
	// Favourite holds the opponent's most played move per agent role.
	Favourite map[domain.Role]domain.Move
}

// Brain is the interface that all opponents implement.
type Brain interface {
	Decide(ctx domain.DecisionContext) (Decision, error)
	Update(actual domain.Move, out bool) error
	Stats() Stats
	Reset()
}
