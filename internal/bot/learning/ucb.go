package learning

import (
	"math"

	"handcricket/internal/domain"
)

const (
	// DefaultExploration is the standard UCB1 constant sqrt(2).
	DefaultExploration = math.Sqrt2

	// unpulledMass is the share of probability reserved for arms never tried.
	unpulledMass = 1 - 1e-3
)

// UCB1 treats each move as a bandit arm. An arm is pulled when the agent
// predicts that move and rewarded when the prediction comes true.
type UCB1 struct {
	exploration float64
	pulls       [domain.K]int
	rewards     [domain.K]float64
	total       int
}

// NewUCB1 creates a bandit with exploration constant c; c <= 0 uses sqrt(2).
func NewUCB1(c float64) *UCB1 {
	if c <= 0 || math.IsNaN(c) || math.IsInf(c, 0) {
		c = DefaultExploration
	}
	return &UCB1{exploration: c}
}

func (u *UCB1) Name() string { return "ucb1" }

// Scores returns mean reward plus exploration bonus per arm; never-pulled
// arms score +Inf.
func (u *UCB1) Scores() [domain.K]float64 {
	var scores [domain.K]float64
	for i := range scores {
		if u.pulls[i] == 0 {
			scores[i] = math.Inf(1)
			continue
		}
		n := float64(u.pulls[i])
		mean := u.rewards[i] / n
		scores[i] = mean + u.exploration*math.Sqrt(math.Log(float64(u.total))/n)
	}
	return scores
}

// Select returns the arm with the highest score, lowest move on ties.
func (u *UCB1) Select() domain.Move {
	scores := u.Scores()
	best := 0
	for i := 1; i < domain.K; i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}
	return domain.MoveAt(best)
}

// Pulls returns how often each arm was pulled.
func (u *UCB1) Pulls() [domain.K]int {
	return u.pulls
}

func (u *UCB1) Predict(domain.History) domain.Distribution {
	unpulled := 0
	for _, n := range u.pulls {
		if n == 0 {
			unpulled++
		}
	}
	switch unpulled {
	case 0:
		return domain.Softmax(u.Scores())
	case domain.K:
		return domain.Uniform()
	}

	var d domain.Distribution
	rest := (1 - unpulledMass) / float64(domain.K-unpulled)
	for i, n := range u.pulls {
		if n == 0 {
			d[i] = unpulledMass / float64(unpulled)
		} else {
			d[i] = rest
		}
	}
	return d.Normalize()
}

// Observe records a pull of the predicted arm. Turns without a prediction
// are ignored.
func (u *UCB1) Observe(fb domain.Feedback) {
	if !fb.Predicted.Valid() {
		return
	}
	arm := fb.Predicted.Index()
	u.pulls[arm]++
	u.total++
	if fb.Hit() {
		u.rewards[arm]++
	}
}
