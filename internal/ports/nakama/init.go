package nakama

import (
	"context"
	"database/sql"
	"os"

	"github.com/heroiclabs/nakama-common/runtime"

	"handcricket/internal/app"
	"handcricket/internal/config"
)

var _ app.MetricsSink = (runtime.NakamaModule)(nil)

// InitModule wires RPCs and match handlers for Nakama runtime.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	path := defaultConfigPath
	if env, ok := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string); ok && env[EnvConfigPath] != "" {
		path = env[EnvConfigPath]
	}
	if err := config.LoadGameConfig(path); err != nil {
		logger.Error("InitModule: Failed to load config %s: %v", path, err)
		return err
	}
	cfg := config.GetGameConfig()

	opts := cfg.ServiceOptions(cfg.NewLogger(os.Stderr))
	opts.MetricsSink = nk
	svc := app.NewService(opts)
	sessionService = svc

	if err := RegisterRPCs(initializer); err != nil {
		return err
	}

	if err := initializer.RegisterMatch(MatchNameHandCricket, func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
		return newMatchHandler(svc), nil
	}); err != nil {
		return err
	}

	logger.Info("HandCricket Go module loaded (difficulty %s, max sessions %d).", cfg.DefaultDifficulty(), cfg.MaxSessions)
	return nil
}
