package app

import "time"

const (
	// DefaultMaxSessions bounds concurrently hosted agents.
	DefaultMaxSessions = 1000
	// DefaultSessionTTL is how long an idle session survives a Sweep.
	DefaultSessionTTL = 30 * time.Minute
	// DefaultMaxTurns caps a simulated match so scripted opponents that
	// never get dismissed cannot loop forever.
	DefaultMaxTurns = 500
	// DefaultDecisionBurst is the limiter burst when only a rate is configured.
	DefaultDecisionBurst = 5

	reasonEnded   = "ended"
	reasonExpired = "expired"
)
