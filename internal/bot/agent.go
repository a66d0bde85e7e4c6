package bot

import (
	"errors"
	"fmt"
	"io"
	"math/rand"

	"github.com/charmbracelet/log"

	"handcricket/internal/bot/brain"
	botinternal "handcricket/internal/bot/internal"
	"handcricket/internal/bot/learning"
	"handcricket/internal/bot/mining"
	"handcricket/internal/domain"
)

const (
	learningCurveWindow = 10
	topPatterns         = 5
)

// ErrHistoryMismatch is returned when a supplied history does not extend the
// one the agent has observed.
var ErrHistoryMismatch = errors.New("history does not extend the agent's history")

type options struct {
	logger *log.Logger
	seed   *int64
}

// Option customises an Agent or RandomBrain.
type Option func(*options)

// WithLogger sets the logger; the default discards output.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithSeed overrides Config.Seed.
func WithSeed(seed int64) Option {
	return func(o *options) { o.seed = &seed }
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.New(io.Discard)
	}
	return o
}

// Agent is the adaptive opponent. It owns the opponent's move history, feeds
// it to every estimator and lets the Monte Carlo engine pick the reply.
// An Agent must be driven from one goroutine.
type Agent struct {
	cfg    Config
	logger *log.Logger
	rng    *rand.Rand
	engine *botinternal.Engine

	ngram      *mining.NGram
	window     *mining.Window
	sequences  *mining.Sequences
	estimators [brain.NumSources]Estimator

	history domain.History
	memory  *brain.Memory
	profile *brain.OpponentProfile

	lastRole        domain.Role
	lastPredictions []domain.Distribution
}

// NewAgent validates cfg and builds an agent for a fresh match.
func NewAgent(cfg Config, opts ...Option) (*Agent, error) {
	o := buildOptions(opts)
	if o.seed != nil {
		cfg.Seed = *o.seed
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &Agent{
		cfg:     cfg,
		logger:  o.logger.WithPrefix("agent"),
		engine:  botinternal.NewEngine(cfg.engineConfig()),
		memory:  brain.NewMemory(),
		profile: brain.NewOpponentProfile(),
	}
	a.Reset()
	return a, nil
}

// Config returns the agent's configuration.
func (a *Agent) Config() Config {
	return a.cfg
}

// Reset starts a new match with the same configuration and seed.
func (a *Agent) Reset() {
	c := a.cfg
	a.ngram = mining.NewNGram(c.NGramOrders, c.NGramSmoothing)
	a.window = mining.NewWindow(c.WindowSize, c.WindowSmoothing)
	a.sequences = mining.NewSequences(c.SequenceMinSupport, c.SequenceMaxLength, c.SequenceSmoothing)
	a.estimators = [brain.NumSources]Estimator{
		brain.SourceNGram:     a.ngram,
		brain.SourceWindow:    a.window,
		brain.SourceEMA:       mining.NewEMA(c.EMAAlpha),
		brain.SourceSequences: a.sequences,
		brain.SourceFTRL: learning.NewFTRL(learning.FTRLConfig{
			Alpha: c.FTRLAlpha, Beta: c.FTRLBeta, L1: c.FTRLL1, L2: c.FTRLL2,
		}),
		brain.SourceUCB1:     learning.NewUCB1(c.UCBExploration),
		brain.SourceLogistic: learning.NewLogistic(c.LogisticFeatures, c.LogisticLearningRate),
	}

	a.rng = rand.New(rand.NewSource(c.Seed))
	a.engine.Reseed(c.Seed)
	a.history = domain.History{}
	a.memory.Reset()
	a.profile.Reset()
	a.lastRole = domain.RoleScoring
	a.lastPredictions = nil
}

// History returns a snapshot of the opponent moves observed so far.
func (a *Agent) History() domain.History {
	return a.history.View()
}

// Decide forecasts the opponent's next move and picks the agent's reply.
func (a *Agent) Decide(ctx domain.DecisionContext) (Decision, error) {
	if err := ctx.Validate(); err != nil {
		return Decision{}, err
	}

	h := a.history.View()
	preds := make([]domain.Distribution, len(a.estimators))
	for i, e := range a.estimators {
		preds[i] = e.Predict(h)
	}
	consensus := a.ramp(brain.Combine(a.cfg.Weights, preds), h.Len())

	d := Decision{
		Predicted:  consensus.ArgMax(),
		Confidence: consensus.Max(),
		Consensus:  consensus,
	}
	a.memory.RecordPrediction(d.Predicted, d.Confidence)
	a.lastPredictions = preds
	a.lastRole = ctx.Role

	if h.Len() < a.cfg.WarmupTurns {
		d.Choice = Choice{
			Move:       domain.MoveAt(a.rng.Intn(domain.K)),
			Role:       ctx.Role,
			Randomized: true,
			Aggression: 1,
		}
	} else {
		d.Choice = a.engine.Choose(consensus, ctx.Role, botinternal.RiskTolerance(ctx), a.cfg.Randomness)
	}
	d.Move = d.Choice.Move

	a.logger.Debug("decided",
		"turn", h.Len()+1,
		"role", ctx.Role,
		"predicted", d.Predicted,
		"confidence", fmt.Sprintf("%.3f", d.Confidence),
		"move", d.Move,
		"randomized", d.Choice.Randomized,
	)
	return d, nil
}

// DecideFor decides against a caller-held history. The history must extend
// the agent's own; moves the agent has not seen yet are folded in first as
// turns without a dismissal.
func (a *Agent) DecideFor(h domain.History, ctx domain.DecisionContext) (Decision, error) {
	if !h.HasPrefix(a.history) {
		return Decision{}, ErrHistoryMismatch
	}
	for i := a.history.Len(); i < h.Len(); i++ {
		if err := a.Update(h.At(i), false); err != nil {
			return Decision{}, err
		}
	}
	return a.Decide(ctx)
}

// Update feeds the opponent's actual move to every estimator. Calling it
// twice for the same turn counts the move twice.
func (a *Agent) Update(actual domain.Move, out bool) error {
	if _, err := domain.ParseMove(int(actual)); err != nil {
		return err
	}

	predicted := domain.NoMove
	if p, ok := a.memory.Pending(); ok {
		predicted = p.Predicted
	}
	fb := domain.Feedback{
		Prior:     a.history.View(),
		Actual:    actual,
		Predicted: predicted,
		Out:       out,
	}
	for _, e := range a.estimators {
		e.Observe(fb)
	}

	a.history = a.history.Append(actual)
	turn := a.memory.RecordOutcome(actual)
	a.profile.RecordMove(a.lastRole, actual, out)

	a.logger.Debug("observed",
		"turn", a.history.Len(),
		"actual", actual,
		"predicted", predicted,
		"hit", turn.Hit(),
		"out", out,
	)
	return nil
}

// Predictions returns each estimator's distribution from the last decision,
// keyed by estimator name.
func (a *Agent) Predictions() map[string]domain.Distribution {
	out := make(map[string]domain.Distribution, len(a.lastPredictions))
	for i, d := range a.lastPredictions {
		out[a.estimators[i].Name()] = d
	}
	return out
}

// Stats reports prediction quality and what has been learned so far.
func (a *Agent) Stats() Stats {
	s := Stats{
		Turns:             a.memory.Turns(),
		Predictions:       a.memory.Predictions(),
		Hits:              a.memory.Hits(),
		Accuracy:          a.memory.Accuracy(),
		AverageConfidence: a.memory.AverageConfidence(),
		LearningCurve:     a.memory.LearningCurve(learningCurveWindow),
		TopPatterns:       a.sequences.Frequent(topPatterns),
		Favourite: map[domain.Role]domain.Move{
			domain.RoleScoring:   a.profile.Favourite(domain.RoleScoring),
			domain.RoleDefending: a.profile.Favourite(domain.RoleDefending),
		},
	}
	if cycle, ok := a.window.DetectCycle(); ok {
		s.Cycle = cycle
	}
	return s
}

// ramp blends the consensus with uniform while the history is still short.
func (a *Agent) ramp(combined domain.Distribution, turns int) domain.Distribution {
	factor := float64(turns) / float64(a.cfg.LearningSpeed)
	if factor > 1 {
		factor = 1
	}
	trust := factor * a.cfg.PatternWeight
	uniform := domain.Uniform()
	var out domain.Distribution
	for i := range out {
		out[i] = trust*combined[i] + (1-trust)*uniform[i]
	}
	return out.Normalize()
}
