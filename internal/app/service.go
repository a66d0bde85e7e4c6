package app

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"handcricket/internal/bot"
	"handcricket/internal/domain"
)

var (
	ErrUnknownSession  = errors.New("session not found")
	ErrSessionClosed   = errors.New("session closed")
	ErrTooManySessions = errors.New("too many active sessions")
	ErrNotOwner        = errors.New("actor is not session owner")
	ErrRateLimited     = errors.New("decision rate exceeded")
)

// Options configures a Service. Zero values take defaults.
type Options struct {
	MaxSessions int
	SessionTTL  time.Duration
	// Difficulty is used when a caller does not ask for one.
	Difficulty bot.Difficulty
	// Configure resolves the agent parameters for a difficulty.
	Configure      func(bot.Difficulty) bot.Config
	Logger         *log.Logger
	MetricsEnabled bool
	// MetricsSink mirrors the collectors, e.g. into the Nakama server metrics.
	MetricsSink MetricsSink
	Clock       func() time.Time
	// DecisionRate caps decisions per second per session; 0 disables the cap.
	DecisionRate  float64
	DecisionBurst int
}

// SessionInfo describes a hosted agent.
type SessionInfo struct {
	ID         string
	Owner      string
	Difficulty bot.Difficulty
	Seed       int64
	CreatedAt  time.Time
}

type session struct {
	mu       sync.Mutex
	info     SessionInfo
	brain    bot.Brain
	lastSeen time.Time
	closed   bool
	turns    int
	// predicted is the forecast of the last decision, NoMove if none is pending.
	predicted domain.Move
	limiter   *rate.Limiter
}

// Service hosts one agent per match for external orchestrators and runs
// authoritative matches between a human and an agent.
type Service struct {
	mu       sync.Mutex
	sessions map[string]*session
	active   int

	opts    Options
	logger  *log.Logger
	metrics metrics
}

// NewService constructs a Service.
func NewService(opts Options) *Service {
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = DefaultMaxSessions
	}
	if opts.Difficulty == "" {
		opts.Difficulty = bot.DifficultyBalanced
	}
	if opts.Configure == nil {
		opts.Configure = bot.Preset
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.DecisionRate > 0 && opts.DecisionBurst <= 0 {
		opts.DecisionBurst = DefaultDecisionBurst
	}
	return &Service{
		sessions: make(map[string]*session),
		opts:     opts,
		logger:   opts.Logger.WithPrefix("app"),
		metrics:  metrics{enabled: opts.MetricsEnabled, sink: opts.MetricsSink},
	}
}

// newBrain builds the opponent for d. A zero seed is replaced by one derived
// from the clock so separate sessions differ.
func (s *Service) newBrain(d bot.Difficulty, seed int64, logger *log.Logger) (bot.Brain, bot.Difficulty, int64, error) {
	if d == "" {
		d = s.opts.Difficulty
	}
	d, err := bot.ParseDifficulty(string(d))
	if err != nil {
		return nil, "", 0, err
	}
	if seed == 0 {
		seed = s.opts.Clock().UnixNano()
	}
	b, err := bot.NewBrainWithConfig(d, s.opts.Configure(d), bot.WithSeed(seed), bot.WithLogger(logger))
	if err != nil {
		return nil, "", 0, err
	}
	return b, d, seed, nil
}

// StartSession creates an agent owned by owner.
func (s *Service) StartSession(owner string, d bot.Difficulty, seed int64) (SessionInfo, []Event, error) {
	id := uuid.NewString()
	brain, d, seed, err := s.newBrain(d, seed, s.logger.With("session", id))
	if err != nil {
		return SessionInfo{}, nil, err
	}

	now := s.opts.Clock()
	sess := &session{
		info: SessionInfo{
			ID:         id,
			Owner:      owner,
			Difficulty: d,
			Seed:       seed,
			CreatedAt:  now,
		},
		brain:     brain,
		lastSeen:  now,
		predicted: domain.NoMove,
	}
	if s.opts.DecisionRate > 0 {
		sess.limiter = rate.NewLimiter(rate.Limit(s.opts.DecisionRate), s.opts.DecisionBurst)
	}

	s.mu.Lock()
	if s.active >= s.opts.MaxSessions {
		s.mu.Unlock()
		return SessionInfo{}, nil, ErrTooManySessions
	}
	s.sessions[id] = sess
	s.active++
	active := s.active
	s.mu.Unlock()

	s.metrics.sessionsChanged(active)
	s.logger.Info("session started", "session", id, "owner", owner, "difficulty", d)

	return sess.info, []Event{{
		Kind:       EventSessionStarted,
		SessionID:  id,
		Payload:    SessionStartedPayload{Owner: owner, Difficulty: d, Seed: seed},
		Recipients: []string{owner},
	}}, nil
}

// lookup returns the session locked; callers must unlock it.
func (s *Service) lookup(id string) (*session, error) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSession, id)
	}
	sess.mu.Lock()
	if sess.closed {
		sess.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrSessionClosed, id)
	}
	return sess, nil
}

// Info returns the session description.
func (s *Service) Info(id string) (SessionInfo, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return SessionInfo{}, err
	}
	defer sess.mu.Unlock()
	return sess.info, nil
}

// Authorize checks that actor owns the session.
func (s *Service) Authorize(id, actor string) error {
	info, err := s.Info(id)
	if err != nil {
		return err
	}
	if info.Owner != actor {
		return ErrNotOwner
	}
	return nil
}

// Decide asks the session's agent for its move this turn.
func (s *Service) Decide(id string, ctx domain.DecisionContext) (bot.Decision, []Event, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return bot.Decision{}, nil, err
	}
	defer sess.mu.Unlock()

	start := s.opts.Clock()
	if sess.limiter != nil && !sess.limiter.AllowN(start, 1) {
		return bot.Decision{}, nil, fmt.Errorf("%w: %s", ErrRateLimited, id)
	}
	d, err := sess.brain.Decide(ctx)
	if err != nil {
		return bot.Decision{}, nil, err
	}
	sess.lastSeen = s.opts.Clock()
	sess.predicted = d.Predicted
	s.metrics.decision(ctx.Role, string(sess.info.Difficulty), d.Choice.Randomized, sess.lastSeen.Sub(start))

	return d, []Event{{
		Kind:      EventMoveChosen,
		SessionID: id,
		Payload: MoveChosenPayload{
			Turn:       sess.turns + 1,
			Role:       ctx.Role,
			Move:       d.Move,
			Predicted:  d.Predicted,
			Confidence: d.Confidence,
			Randomized: d.Choice.Randomized,
		},
		Recipients: []string{sess.info.Owner},
	}}, nil
}

// Observe reports the opponent's actual move for the turn.
func (s *Service) Observe(id string, actual domain.Move, out bool) ([]Event, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	if err := sess.brain.Update(actual, out); err != nil {
		return nil, err
	}
	predicted := sess.predicted
	sess.predicted = domain.NoMove
	sess.turns++
	sess.lastSeen = s.opts.Clock()
	s.metrics.prediction(predicted, actual)

	return []Event{{
		Kind:      EventOutcomeRecorded,
		SessionID: id,
		Payload: OutcomeRecordedPayload{
			Turn:      sess.turns,
			Actual:    actual,
			Predicted: predicted,
			Hit:       predicted != domain.NoMove && predicted == actual,
			Out:       out,
		},
		Recipients: []string{sess.info.Owner},
	}}, nil
}

// Stats returns the agent's statistics.
func (s *Service) Stats(id string) (bot.Stats, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return bot.Stats{}, err
	}
	defer sess.mu.Unlock()
	return sess.brain.Stats(), nil
}

// EndSession closes the session and returns its final statistics. The
// closed session stays visible as closed until the next Sweep.
func (s *Service) EndSession(id string) (bot.Stats, []Event, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return bot.Stats{}, nil, err
	}
	defer sess.mu.Unlock()

	stats := sess.brain.Stats()
	s.close(sess)
	s.logger.Info("session ended", "session", id, "turns", stats.Turns, "accuracy", stats.Accuracy)

	return stats, []Event{{
		Kind:       EventSessionEnded,
		SessionID:  id,
		Payload:    SessionEndedPayload{Reason: reasonEnded, Stats: stats},
		Recipients: []string{sess.info.Owner},
	}}, nil
}

// close marks a locked session closed.
func (s *Service) close(sess *session) {
	sess.closed = true
	s.mu.Lock()
	s.active--
	active := s.active
	s.mu.Unlock()
	s.metrics.sessionsChanged(active)
}

// Sweep drops closed sessions and closes those idle for longer than the
// session TTL. A zero TTL disables expiry.
func (s *Service) Sweep(now time.Time) []Event {
	s.mu.Lock()
	candidates := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		candidates = append(candidates, sess)
	}
	s.mu.Unlock()

	var events []Event
	var drop []string
	for _, sess := range candidates {
		sess.mu.Lock()
		switch {
		case sess.closed:
			drop = append(drop, sess.info.ID)
		case s.opts.SessionTTL > 0 && now.Sub(sess.lastSeen) > s.opts.SessionTTL:
			stats := sess.brain.Stats()
			s.close(sess)
			drop = append(drop, sess.info.ID)
			events = append(events, Event{
				Kind:       EventSessionEnded,
				SessionID:  sess.info.ID,
				Payload:    SessionEndedPayload{Reason: reasonExpired, Stats: stats},
				Recipients: []string{sess.info.Owner},
			})
			s.logger.Info("session expired", "session", sess.info.ID, "idle", now.Sub(sess.lastSeen))
		}
		sess.mu.Unlock()
	}

	s.mu.Lock()
	for _, id := range drop {
		delete(s.sessions, id)
	}
	s.mu.Unlock()
	return events
}

// Count returns the number of open sessions.
func (s *Service) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}
