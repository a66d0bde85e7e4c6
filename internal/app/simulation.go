package app

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"

	"handcricket/internal/bot"
	"handcricket/internal/domain"
)

// Opponent is a scripted player used to exercise an agent.
type Opponent interface {
	Name() string
	Next() domain.Move
}

// ConstantOpponent always plays the same move.
type ConstantOpponent struct{ Move domain.Move }

func (o *ConstantOpponent) Name() string      { return fmt.Sprintf("constant(%d)", o.Move) }
func (o *ConstantOpponent) Next() domain.Move { return o.Move }

// CycleOpponent repeats a fixed block of moves.
type CycleOpponent struct {
	Pattern []domain.Move
	pos     int
}

func (o *CycleOpponent) Name() string { return fmt.Sprintf("cycle(%s)", domain.EncodeMoves(o.Pattern)) }

func (o *CycleOpponent) Next() domain.Move {
	m := o.Pattern[o.pos%len(o.Pattern)]
	o.pos++
	return m
}

// RandomOpponent plays uniformly at random.
type RandomOpponent struct{ rng *rand.Rand }

func (o *RandomOpponent) Name() string      { return "random" }
func (o *RandomOpponent) Next() domain.Move { return domain.MoveAt(o.rng.Intn(domain.K)) }

// BiasedOpponent plays Favourite with probability Bias, otherwise at random.
type BiasedOpponent struct {
	Favourite domain.Move
	Bias      float64
	rng       *rand.Rand
}

func (o *BiasedOpponent) Name() string { return fmt.Sprintf("biased(%d)", o.Favourite) }

func (o *BiasedOpponent) Next() domain.Move {
	if o.rng.Float64() < o.Bias {
		return o.Favourite
	}
	return domain.MoveAt(o.rng.Intn(domain.K))
}

// OpponentKinds lists the names accepted by NewOpponent.
var OpponentKinds = []string{"constant", "cycle", "random", "biased"}

// NewOpponent builds a scripted opponent by kind.
func NewOpponent(kind string, seed int64) (Opponent, error) {
	rng := rand.New(rand.NewSource(seed))
	switch kind {
	case "constant":
		return &ConstantOpponent{Move: 3}, nil
	case "cycle":
		return &CycleOpponent{Pattern: []domain.Move{1, 2, 3}}, nil
	case "random":
		return &RandomOpponent{rng: rng}, nil
	case "biased":
		return &BiasedOpponent{Favourite: 6, Bias: 0.6, rng: rng}, nil
	}
	return nil, fmt.Errorf("unknown opponent %q", kind)
}

// SimulationConfig describes a batch of matches.
type SimulationConfig struct {
	Difficulty bot.Difficulty
	Opponent   string
	Matches    int
	MaxTurns   int
	Seed       int64
	Workers    int
}

// SimulationReport aggregates a batch of simulated matches.
type SimulationReport struct {
	Difficulty       bot.Difficulty
	Opponent         string
	Matches          int
	Wins             int
	Losses           int
	Ties             int
	NoResults        int
	WinRate          float64
	AvgAgentScore    float64
	AvgOpponentScore float64
	Accuracy         float64
}

type matchOutcome struct {
	result   domain.Result
	finished bool
	scores   [2]int
	accuracy float64
}

// Simulate plays cfg.Matches matches between a fresh agent and a scripted
// opponent each, alternating who bats first. Matches run concurrently; the
// report only depends on the configuration.
func (s *Service) Simulate(ctx context.Context, cfg SimulationConfig) (SimulationReport, error) {
	if cfg.Matches <= 0 {
		cfg.Matches = 1
	}
	if cfg.MaxTurns <= 0 {
		cfg.MaxTurns = DefaultMaxTurns
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	if cfg.Seed == 0 {
		cfg.Seed = 1
	}
	d, err := bot.ParseDifficulty(string(cfg.Difficulty))
	if err != nil {
		return SimulationReport{}, err
	}
	if _, err := NewOpponent(cfg.Opponent, 0); err != nil {
		return SimulationReport{}, err
	}

	outcomes := make([]matchOutcome, cfg.Matches)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for i := 0; i < cfg.Matches; i++ {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			o, err := s.simulateMatch(d, cfg, i)
			if err != nil {
				return fmt.Errorf("match %d: %w", i, err)
			}
			outcomes[i] = o
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return SimulationReport{}, err
	}

	report := SimulationReport{Difficulty: d, Opponent: cfg.Opponent, Matches: cfg.Matches}
	var agentRuns, opponentRuns int
	accuracy := 0.0
	for _, o := range outcomes {
		agentRuns += o.scores[domain.SideAgent]
		opponentRuns += o.scores[domain.SideOpponent]
		accuracy += o.accuracy
		switch {
		case !o.finished:
			report.NoResults++
		case o.result == domain.ResultAgent:
			report.Wins++
		case o.result == domain.ResultOpponent:
			report.Losses++
		default:
			report.Ties++
		}
	}
	n := float64(cfg.Matches)
	report.WinRate = float64(report.Wins) / n
	report.AvgAgentScore = float64(agentRuns) / n
	report.AvgOpponentScore = float64(opponentRuns) / n
	report.Accuracy = accuracy / n

	s.logger.Info("simulation finished",
		"difficulty", d,
		"opponent", cfg.Opponent,
		"matches", cfg.Matches,
		"win_rate", report.WinRate,
	)
	return report, nil
}

func (s *Service) simulateMatch(d bot.Difficulty, cfg SimulationConfig, i int) (matchOutcome, error) {
	seed := cfg.Seed + int64(i)*7919
	opp, err := NewOpponent(cfg.Opponent, seed+1)
	if err != nil {
		return matchOutcome{}, err
	}
	brain, err := bot.NewBrainWithConfig(d, s.opts.Configure(d), bot.WithSeed(seed))
	if err != nil {
		return matchOutcome{}, err
	}

	first := domain.SideAgent
	if i%2 == 1 {
		first = domain.SideOpponent
	}
	ms, _, err := s.startMatch("", brain, d, first)
	if err != nil {
		return matchOutcome{}, err
	}

	for !ms.Match.Over() && ms.Match.Turns < cfg.MaxTurns {
		if _, err := s.playTurn(ms, opp.Next()); err != nil {
			return matchOutcome{}, err
		}
	}
	return matchOutcome{
		result:   ms.Match.Result,
		finished: ms.Match.Over(),
		scores:   ms.Match.Scores,
		accuracy: brain.Stats().Accuracy,
	}, nil
}
