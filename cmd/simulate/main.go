// Command simulate plays batches of matches between the adaptive agent and
// scripted opponents and reports how each difficulty fares.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"handcricket/internal/app"
	"handcricket/internal/bot"
	"handcricket/internal/config"
)

type simulateFlags struct {
	configPath   string
	difficulties []string
	opponents    []string
	matches      int
	maxTurns     int
	seed         int64
	workers      int
	logLevel     string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var f simulateFlags
	cmd := &cobra.Command{
		Use:          "simulate",
		Short:        "Run hand-cricket matches between the agent and scripted opponents",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulation(cmd, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.configPath, "config", "", "path to a YAML or JSON game config")
	flags.StringSliceVar(&f.difficulties, "difficulty", []string{"easy", "balanced", "hard"}, "agent difficulties to run")
	flags.StringSliceVar(&f.opponents, "opponent", app.OpponentKinds, "scripted opponents to play against")
	flags.IntVar(&f.matches, "matches", 20, "matches per difficulty and opponent")
	flags.IntVar(&f.maxTurns, "max-turns", app.DefaultMaxTurns, "turns after which a match counts as no result")
	flags.Int64Var(&f.seed, "seed", 1, "base seed")
	flags.IntVar(&f.workers, "workers", 0, "matches played concurrently, 0 uses GOMAXPROCS")
	flags.StringVar(&f.logLevel, "log-level", "", "override the configured log level")
	return cmd
}

func runSimulation(cmd *cobra.Command, f simulateFlags) error {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return err
	}
	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}
	cfg.MetricsEnabled = false
	logger := cfg.NewLogger(cmd.ErrOrStderr())
	svc := app.NewService(cfg.ServiceOptions(logger))

	var reports []app.SimulationReport
	for _, d := range f.difficulties {
		for _, opp := range f.opponents {
			r, err := svc.Simulate(cmd.Context(), app.SimulationConfig{
				Difficulty: bot.Difficulty(d),
				Opponent:   opp,
				Matches:    f.matches,
				MaxTurns:   f.maxTurns,
				Seed:       f.seed,
				Workers:    f.workers,
			})
			if err != nil {
				return fmt.Errorf("%s vs %s: %w", d, opp, err)
			}
			reports = append(reports, r)
		}
	}
	return printReports(cmd.OutOrStdout(), reports)
}

func printReports(w io.Writer, reports []app.SimulationReport) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join([]string{
		"DIFFICULTY", "OPPONENT", "MATCHES", "W", "L", "T", "NR", "WIN%", "AGENT AVG", "OPP AVG", "ACCURACY",
	}, "\t"))
	for _, r := range reports {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%d\t%.1f\t%.1f\t%.1f\t%.3f\n",
			r.Difficulty, r.Opponent, r.Matches, r.Wins, r.Losses, r.Ties, r.NoResults,
			100*r.WinRate, r.AvgAgentScore, r.AvgOpponentScore, r.Accuracy)
	}
	return tw.Flush()
}
