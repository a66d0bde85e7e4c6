package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"handcricket/internal/app"
	"handcricket/internal/bot"
)

const (
	DefaultMaxSessions = 1000
	DefaultSessionTTL  = 30 * time.Minute

	envPrefix = "HANDCRICKET_"
)

var ErrInvalidConfig = errors.New("invalid game config")

// GameConfig is the deployment configuration of the hand-cricket module.
type GameConfig struct {
	Difficulty     string        `json:"difficulty" yaml:"difficulty" validate:"omitempty,oneof=easy balanced medium hard random"`
	LogLevel       string        `json:"log_level" yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	MaxSessions    int           `json:"max_sessions" yaml:"max_sessions" validate:"gte=1,lte=1000000"`
	SessionTTL     time.Duration `json:"session_ttl" yaml:"session_ttl" validate:"gte=0"`
	MetricsEnabled bool          `json:"metrics_enabled" yaml:"metrics_enabled"`
	// DecisionRate caps decisions per second per session, 0 means unlimited.
	DecisionRate  float64 `json:"decision_rate" yaml:"decision_rate" validate:"gte=0"`
	DecisionBurst int     `json:"decision_burst" yaml:"decision_burst" validate:"gte=0"`
	// Agent overlays the difficulty preset.
	Agent bot.Overrides `json:"agent" yaml:"agent"`
}

// Default returns the configuration used when no file is present.
func Default() GameConfig {
	return GameConfig{
		Difficulty:     string(bot.DifficultyBalanced),
		LogLevel:       "info",
		MaxSessions:    DefaultMaxSessions,
		SessionTTL:     DefaultSessionTTL,
		MetricsEnabled: true,
	}
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error

	configValidate = validator.New()
)

// LoadGameConfig loads the global configuration from path once.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		c, err := Load(path)
		if err != nil {
			loadErr = err
			return
		}
		cfg = c
	})
	return loadErr
}

// GetGameConfig returns the global configuration, or the defaults when
// LoadGameConfig has not succeeded.
func GetGameConfig() *GameConfig {
	if cfg == nil {
		c := Default()
		return &c
	}
	return cfg
}

// Load reads path (YAML, falling back to JSON), applies HANDCRICKET_*
// environment overrides and validates the result. A missing file yields the
// defaults; an empty path skips the file.
func Load(path string) (*GameConfig, error) {
	c := Default()
	if path != "" {
		if err := loadFile(path, &c); err != nil {
			return nil, fmt.Errorf("failed to read game config: %w", err)
		}
	}
	if err := applyEnv(&c, os.LookupEnv); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func loadFile(path string, c *GameConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		if jsonErr := json.Unmarshal(data, c); jsonErr != nil {
			return fmt.Errorf("parse config (tried YAML and JSON): YAML error: %v, JSON error: %w", err, jsonErr)
		}
	}
	return nil
}

func applyEnv(c *GameConfig, lookup func(string) (string, bool)) error {
	var errs []error
	get := func(key string) (string, bool) {
		v, ok := lookup(envPrefix + key)
		return v, ok && v != ""
	}
	bad := func(key, v string, err error) {
		errs = append(errs, fmt.Errorf("%s%s=%q: %w", envPrefix, key, v, err))
	}

	if v, ok := get("DIFFICULTY"); ok {
		c.Difficulty = v
	}
	if v, ok := get("LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	if v, ok := get("MAX_SESSIONS"); ok {
		if i, err := strconv.Atoi(v); err != nil {
			bad("MAX_SESSIONS", v, err)
		} else {
			c.MaxSessions = i
		}
	}
	if v, ok := get("SESSION_TTL"); ok {
		if d, err := time.ParseDuration(v); err != nil {
			bad("SESSION_TTL", v, err)
		} else {
			c.SessionTTL = d
		}
	}
	if v, ok := get("METRICS_ENABLED"); ok {
		if b, err := strconv.ParseBool(v); err != nil {
			bad("METRICS_ENABLED", v, err)
		} else {
			c.MetricsEnabled = b
		}
	}
	if v, ok := get("SIMULATIONS"); ok {
		if i, err := strconv.Atoi(v); err != nil {
			bad("SIMULATIONS", v, err)
		} else {
			c.Agent.Simulations = &i
		}
	}
	if v, ok := get("RANDOMNESS"); ok {
		if f, err := strconv.ParseFloat(v, 64); err != nil {
			bad("RANDOMNESS", v, err)
		} else {
			c.Agent.Randomness = &f
		}
	}
	if v, ok := get("SEED"); ok {
		if i, err := strconv.ParseInt(v, 10, 64); err != nil {
			bad("SEED", v, err)
		} else {
			c.Agent.Seed = &i
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// Validate checks the deployment fields and that the agent configuration
// resolved for every difficulty is valid.
func (c *GameConfig) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	for _, d := range []bot.Difficulty{bot.DifficultyEasy, bot.DifficultyBalanced, bot.DifficultyHard} {
		if err := c.AgentConfig(d).Validate(); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, d, err)
		}
	}
	return nil
}

// DefaultDifficulty returns the configured difficulty, balanced if unset.
func (c *GameConfig) DefaultDifficulty() bot.Difficulty {
	d, err := bot.ParseDifficulty(c.Difficulty)
	if err != nil {
		return bot.DifficultyBalanced
	}
	return d
}

// AgentConfig resolves the agent parameters for d.
func (c *GameConfig) AgentConfig(d bot.Difficulty) bot.Config {
	return c.Agent.Apply(bot.Preset(d))
}

// Level returns the configured log level, info if unset or unknown.
func (c *GameConfig) Level() log.Level {
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// NewLogger builds the module logger at the configured level.
func (c *GameConfig) NewLogger(w io.Writer) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           c.Level(),
		Prefix:          "handcricket",
		ReportTimestamp: true,
	})
}

// ServiceOptions maps the configuration onto the session service.
func (c *GameConfig) ServiceOptions(logger *log.Logger) app.Options {
	return app.Options{
		MaxSessions:    c.MaxSessions,
		SessionTTL:     c.SessionTTL,
		Difficulty:     c.DefaultDifficulty(),
		Configure:      c.AgentConfig,
		Logger:         logger,
		MetricsEnabled: c.MetricsEnabled,
		DecisionRate:   c.DecisionRate,
		DecisionBurst:  c.DecisionBurst,
	}
}
