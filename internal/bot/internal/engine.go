package internal

import (
	"context"
	"math/rand"

	"golang.org/x/sync/errgroup"

	"handcricket/internal/domain"
)

const (
	DefaultSimulations     = 1000
	DefaultWorkers         = 4
	DefaultBattingPenalty  = 6.0
	DefaultDefendingReward = 3.0
)

// EngineConfig configures the Monte Carlo decision engine.
type EngineConfig struct {
	Simulations     int
	Workers         int
	BattingPenalty  float64
	DefendingReward float64
	Seed            int64
}

// DefaultEngineConfig returns 1000 trials per move over four workers.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Simulations:     DefaultSimulations,
		Workers:         DefaultWorkers,
		BattingPenalty:  DefaultBattingPenalty,
		DefendingReward: DefaultDefendingReward,
	}
}

// Choice is the outcome of one decision.
type Choice struct {
	Move        domain.Move
	Role        domain.Role
	Evaluations [domain.K]Evaluation
	// Randomized is set when the move was drawn instead of maximised.
	Randomized bool
	Aggression float64
}

// Engine turns a predicted opponent distribution into a move by simulating
// every candidate against it. An Engine is not safe for concurrent use.
type Engine struct {
	cfg   EngineConfig
	rng   *rand.Rand
	calls uint64
}

// NewEngine creates an engine. Zero fields take their defaults.
func NewEngine(cfg EngineConfig) *Engine {
	def := DefaultEngineConfig()
	if cfg.Simulations <= 0 {
		cfg.Simulations = def.Simulations
	}
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.Workers > cfg.Simulations {
		cfg.Workers = cfg.Simulations
	}
	if cfg.BattingPenalty <= 0 {
		cfg.BattingPenalty = def.BattingPenalty
	}
	if cfg.DefendingReward <= 0 {
		cfg.DefendingReward = def.DefendingReward
	}
	return &Engine{cfg: cfg, rng: rand.New(rand.NewSource(cfg.Seed))}
}

// Config returns the resolved configuration.
func (e *Engine) Config() EngineConfig {
	return e.cfg
}

// Reseed restarts the engine's random streams.
func (e *Engine) Reseed(seed int64) {
	e.cfg.Seed = seed
	e.rng = rand.New(rand.NewSource(seed))
	e.calls = 0
}

// Choose picks a move for role against the consensus prediction.
func (e *Engine) Choose(consensus domain.Distribution, role domain.Role, tol Tolerance, randomness float64) Choice {
	c, _ := e.ChooseContext(context.Background(), consensus, role, tol, randomness)
	return c
}

// ChooseContext is Choose with cancellation of the simulation.
func (e *Engine) ChooseContext(ctx context.Context, consensus domain.Distribution, role domain.Role, tol Tolerance, randomness float64) (Choice, error) {
	tally, err := e.simulate(ctx, consensus)
	if err != nil {
		return Choice{}, err
	}

	weights := UtilityWeights{
		BattingPenalty:  e.cfg.BattingPenalty,
		DefendingReward: e.cfg.DefendingReward,
	}.Scaled(tol)

	choice := Choice{Role: role, Aggression: tol.Aggression}
	trials := float64(e.cfg.Simulations)
	for i := range choice.Evaluations {
		eval := Evaluation{
			Move: domain.MoveAt(i),
			Risk: float64(tally.outs[i]) / trials,
		}
		if role == domain.RoleDefending {
			eval.ExpectedRuns = float64(tally.opponentRuns[i]) / trials
		} else {
			eval.ExpectedRuns = float64(tally.runs[i]) / trials
		}
		eval.Utility = Utility(role, eval.Risk, eval.ExpectedRuns, weights)
		choice.Evaluations[i] = eval
	}

	choice.Move = BestMove(choice.Evaluations).Move
	if randomness > 0 && e.rng.Float64() < randomness {
		choice.Move = SafetyWeights(choice.Evaluations).Sample(e.rng)
		choice.Randomized = true
	}
	return choice, nil
}

type tally struct {
	outs         [domain.K]int
	runs         [domain.K]int
	opponentRuns [domain.K]int
}

// simulate plays Simulations trials per move, sharded across workers. Each
// shard owns a generator seeded from the engine seed, the call number and the
// shard index, so results depend only on those.
func (e *Engine) simulate(ctx context.Context, consensus domain.Distribution) (tally, error) {
	consensus = consensus.Normalize()
	call := e.calls
	e.calls++

	workers := e.cfg.Workers
	shards := make([]tally, workers)
	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		from := w * e.cfg.Simulations / workers
		to := (w + 1) * e.cfg.Simulations / workers
		shard := &shards[w]
		rng := rand.New(rand.NewSource(shardSeed(e.cfg.Seed, call, w)))
		g.Go(func() error {
			for i := 0; i < domain.K; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				move := domain.MoveAt(i)
				for n := from; n < to; n++ {
					opp := consensus.Sample(rng)
					if opp == move {
						shard.outs[i]++
						continue
					}
					shard.runs[i] += int(move)
					shard.opponentRuns[i] += int(opp)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return tally{}, err
	}

	var total tally
	for _, s := range shards {
		for i := 0; i < domain.K; i++ {
			total.outs[i] += s.outs[i]
			total.runs[i] += s.runs[i]
			total.opponentRuns[i] += s.opponentRuns[i]
		}
	}
	return total, nil
}

// shardSeed mixes the inputs with splitmix64.
func shardSeed(seed int64, call uint64, shard int) int64 {
	x := uint64(seed) ^ (call * 0x9E3779B97F4A7C15) ^ (uint64(shard+1) * 0xBF58476D1CE4E5B9)
	x += 0x9E3779B97F4A7C15
	x = (x ^ (x >> 30)) * 0xBF58476D1CE4E5B9
	x = (x ^ (x >> 27)) * 0x94D049BB133111EB
	x ^= x >> 31
	return int64(x)
}
