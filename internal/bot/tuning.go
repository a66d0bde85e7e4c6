package bot

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"

	"handcricket/internal/bot/brain"
	botinternal "handcricket/internal/bot/internal"
	"handcricket/internal/bot/learning"
	"handcricket/internal/bot/mining"
)

// Difficulty names a tuning preset.
type Difficulty string

const (
	DifficultyEasy     Difficulty = "easy"
	DifficultyBalanced Difficulty = "balanced"
	DifficultyHard     Difficulty = "hard"
	// DifficultyRandom plays uniformly random moves without learning.
	DifficultyRandom Difficulty = "random"
)

var (
	ErrUnknownDifficulty = errors.New("unknown difficulty")
	ErrInvalidConfig     = errors.New("invalid agent config")
)

// ParseDifficulty accepts the preset names case-insensitively; "medium" is an
// alias for balanced.
func ParseDifficulty(s string) (Difficulty, error) {
	switch d := Difficulty(strings.ToLower(strings.TrimSpace(s))); d {
	case DifficultyEasy, DifficultyBalanced, DifficultyHard, DifficultyRandom:
		return d, nil
	case "medium", "":
		return DifficultyBalanced, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDifficulty, s)
}

// weightSumTolerance bounds how far the aggregate weights may drift from 1.
const weightSumTolerance = 1e-6

// Config is the full set of agent parameters. Presets fill every field;
// configuration files overlay individual values.
type Config struct {
	NGramOrders    int     `json:"ngram_orders" yaml:"ngram_orders" validate:"min=1,max=8"`
	NGramSmoothing float64 `json:"ngram_smoothing" yaml:"ngram_smoothing" validate:"gt=0"`

	WindowSize      int     `json:"window_size" yaml:"window_size" validate:"min=4,max=1000"`
	WindowSmoothing float64 `json:"window_smoothing" yaml:"window_smoothing" validate:"gt=0"`

	EMAAlpha float64 `json:"ema_alpha" yaml:"ema_alpha" validate:"gt=0,lt=1"`

	SequenceMinSupport int     `json:"sequence_min_support" yaml:"sequence_min_support" validate:"min=1"`
	SequenceMaxLength  int     `json:"sequence_max_length" yaml:"sequence_max_length" validate:"min=2,max=8"`
	SequenceSmoothing  float64 `json:"sequence_smoothing" yaml:"sequence_smoothing" validate:"gt=0"`

	FTRLAlpha float64 `json:"ftrl_alpha" yaml:"ftrl_alpha" validate:"gt=0"`
	FTRLBeta  float64 `json:"ftrl_beta" yaml:"ftrl_beta" validate:"gt=0"`
	FTRLL1    float64 `json:"ftrl_l1" yaml:"ftrl_l1" validate:"gte=0"`
	FTRLL2    float64 `json:"ftrl_l2" yaml:"ftrl_l2" validate:"gte=0"`

	UCBExploration float64 `json:"ucb_exploration" yaml:"ucb_exploration" validate:"gt=0"`

	LogisticFeatures     int     `json:"logistic_features" yaml:"logistic_features" validate:"min=1,max=64"`
	LogisticLearningRate float64 `json:"logistic_learning_rate" yaml:"logistic_learning_rate" validate:"gt=0,lte=1"`

	Weights brain.Weights `json:"weights" yaml:"weights" validate:"dive,gte=0"`

	Simulations     int     `json:"simulations" yaml:"simulations" validate:"min=10,max=100000"`
	Workers         int     `json:"workers" yaml:"workers" validate:"min=1,max=64"`
	BattingPenalty  float64 `json:"batting_penalty" yaml:"batting_penalty" validate:"gt=0"`
	DefendingReward float64 `json:"defending_reward" yaml:"defending_reward" validate:"gt=0"`

	Randomness    float64 `json:"randomness" yaml:"randomness" validate:"gte=0,lte=1"`
	LearningSpeed int     `json:"learning_speed" yaml:"learning_speed" validate:"min=1"`
	PatternWeight float64 `json:"pattern_weight" yaml:"pattern_weight" validate:"gte=0,lte=1"`
	WarmupTurns   int     `json:"warmup_turns" yaml:"warmup_turns" validate:"gte=0,lte=100"`

	Seed int64 `json:"seed" yaml:"seed"`
}

var configValidate = validator.New()

// Validate checks field ranges and that the aggregate weights sum to 1.
func (c Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if sum := c.Weights.Sum(); math.Abs(sum-1) > weightSumTolerance {
		return fmt.Errorf("%w: aggregate weights sum to %.6f", ErrInvalidConfig, sum)
	}
	return nil
}

// DefaultConfig is the balanced preset.
func DefaultConfig() Config {
	ftrl := learning.DefaultFTRLConfig()
	return Config{
		NGramOrders:          mining.DefaultNGramOrders,
		NGramSmoothing:       mining.DefaultNGramSmoothing,
		WindowSize:           mining.DefaultWindowSize,
		WindowSmoothing:      mining.DefaultWindowSmoothing,
		EMAAlpha:             mining.DefaultEMAAlpha,
		SequenceMinSupport:   mining.DefaultMinSupport,
		SequenceMaxLength:    mining.DefaultMaxPatternLen,
		SequenceSmoothing:    mining.DefaultSeqSmoothing,
		FTRLAlpha:            ftrl.Alpha,
		FTRLBeta:             ftrl.Beta,
		FTRLL1:               ftrl.L1,
		FTRLL2:               ftrl.L2,
		UCBExploration:       learning.DefaultExploration,
		LogisticFeatures:     learning.DefaultFeatures,
		LogisticLearningRate: learning.DefaultLearningRate,
		Weights:              brain.DefaultWeights(),
		Simulations:          botinternal.DefaultSimulations,
		Workers:              botinternal.DefaultWorkers,
		BattingPenalty:       botinternal.DefaultBattingPenalty,
		DefendingReward:      botinternal.DefaultDefendingReward,
		Randomness:           0.10,
		LearningSpeed:        30,
		PatternWeight:        0.82,
		WarmupTurns:          3,
	}
}

// Preset returns the configuration for a difficulty. Unknown names and
// DifficultyRandom resolve to the balanced parameters.
func Preset(d Difficulty) Config {
	c := DefaultConfig()
	switch d {
	case DifficultyEasy:
		c.Randomness = 0.25
		c.LearningSpeed = 40
		c.PatternWeight = 0.60
		c.Simulations = 500
	case DifficultyHard:
		c.Randomness = 0.03
		c.LearningSpeed = 20
		c.PatternWeight = 0.92
		c.Simulations = 2000
	}
	return c
}

func (c Config) engineConfig() botinternal.EngineConfig {
	return botinternal.EngineConfig{
		Simulations:     c.Simulations,
		Workers:         c.Workers,
		BattingPenalty:  c.BattingPenalty,
		DefendingReward: c.DefendingReward,
		Seed:            c.Seed,
	}
}

// Overrides replaces selected preset values. Nil fields keep the preset.
type Overrides struct {
	Simulations     *int           `json:"simulations,omitempty" yaml:"simulations,omitempty"`
	Workers         *int           `json:"workers,omitempty" yaml:"workers,omitempty"`
	Randomness      *float64       `json:"randomness,omitempty" yaml:"randomness,omitempty"`
	LearningSpeed   *int           `json:"learning_speed,omitempty" yaml:"learning_speed,omitempty"`
	PatternWeight   *float64       `json:"pattern_weight,omitempty" yaml:"pattern_weight,omitempty"`
	WarmupTurns     *int           `json:"warmup_turns,omitempty" yaml:"warmup_turns,omitempty"`
	BattingPenalty  *float64       `json:"batting_penalty,omitempty" yaml:"batting_penalty,omitempty"`
	DefendingReward *float64       `json:"defending_reward,omitempty" yaml:"defending_reward,omitempty"`
	UCBExploration  *float64       `json:"ucb_exploration,omitempty" yaml:"ucb_exploration,omitempty"`
	WindowSize      *int           `json:"window_size,omitempty" yaml:"window_size,omitempty"`
	NGramOrders     *int           `json:"ngram_orders,omitempty" yaml:"ngram_orders,omitempty"`
	Weights         *brain.Weights `json:"weights,omitempty" yaml:"weights,omitempty"`
	Seed            *int64         `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// Apply returns c with every set override copied in.
func (o Overrides) Apply(c Config) Config {
	setInt(&c.Simulations, o.Simulations)
	setInt(&c.Workers, o.Workers)
	setInt(&c.LearningSpeed, o.LearningSpeed)
	setInt(&c.WarmupTurns, o.WarmupTurns)
	setInt(&c.WindowSize, o.WindowSize)
	setInt(&c.NGramOrders, o.NGramOrders)
	setFloat(&c.Randomness, o.Randomness)
	setFloat(&c.PatternWeight, o.PatternWeight)
	setFloat(&c.BattingPenalty, o.BattingPenalty)
	setFloat(&c.DefendingReward, o.DefendingReward)
	setFloat(&c.UCBExploration, o.UCBExploration)
	if o.Weights != nil {
		c.Weights = *o.Weights
	}
	if o.Seed != nil {
		c.Seed = *o.Seed
	}
	return c
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}
