package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/heroiclabs/nakama-common/runtime"

	"handcricket/internal/app"
	"handcricket/internal/bot"
	"handcricket/internal/domain"
)

// sessionService hosts the agents driven through RPCs. InitModule sets it.
var sessionService *app.Service

var requestValidate = validator.New()

type sessionStartRequest struct {
	Difficulty string `json:"difficulty" validate:"omitempty,oneof=easy balanced medium hard random"`
	Seed       int64  `json:"seed"`
}

type sessionRequest struct {
	SessionID string `json:"session_id" validate:"required,uuid"`
}

type decideRequest struct {
	SessionID     string `json:"session_id" validate:"required,uuid"`
	Innings       int    `json:"innings" validate:"oneof=1 2"`
	Role          string `json:"role" validate:"oneof=scoring defending batting bowling"`
	AgentScore    int    `json:"agent_score" validate:"gte=0"`
	OpponentScore int    `json:"opponent_score" validate:"gte=0"`
}

type observeRequest struct {
	SessionID string `json:"session_id" validate:"required,uuid"`
	Move      int    `json:"move" validate:"min=1,max=6"`
	Out       bool   `json:"out"`
}

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer) error {
	rpcs := map[string]func(context.Context, runtime.Logger, *sql.DB, runtime.NakamaModule, string) (string, error){
		RpcSessionStart: RpcSessionStartHandler,
		RpcDecide:       RpcDecideHandler,
		RpcObserve:      RpcObserveHandler,
		RpcStats:        RpcStatsHandler,
		RpcSessionEnd:   RpcSessionEndHandler,
		RpcFindMatch:    RpcFindMatchHandler,
	}
	for id, fn := range rpcs {
		if err := initializer.RegisterRpc(id, fn); err != nil {
			return fmt.Errorf("register rpc %s: %w", id, err)
		}
	}
	return nil
}

// decodeRequest parses and validates an RPC payload.
func decodeRequest(payload string, req interface{}) error {
	if err := json.Unmarshal([]byte(payload), req); err != nil {
		return runtime.NewError("Invalid payload", codeInvalidArgument)
	}
	if err := requestValidate.Struct(req); err != nil {
		return runtime.NewError(err.Error(), codeInvalidArgument)
	}
	return nil
}

// toRuntimeError maps service errors onto Nakama error codes.
func toRuntimeError(err error) error {
	switch {
	case errors.Is(err, app.ErrUnknownSession):
		return runtime.NewError("Session not found", codeNotFound)
	case errors.Is(err, app.ErrNotOwner):
		return runtime.NewError("Session belongs to another user", codePermissionDenied)
	case errors.Is(err, app.ErrTooManySessions):
		return runtime.NewError("Too many active sessions", codeResourceExhausted)
	case errors.Is(err, app.ErrRateLimited):
		return runtime.NewError("Too many decisions, slow down", codeResourceExhausted)
	case errors.Is(err, app.ErrSessionClosed):
		return runtime.NewError("Session closed", codeFailedPrecondition)
	case errors.Is(err, domain.ErrInvalidMove),
		errors.Is(err, domain.ErrInvalidContext),
		errors.Is(err, bot.ErrUnknownDifficulty):
		return runtime.NewError(err.Error(), codeInvalidArgument)
	}
	return runtime.NewError("Internal error", codeInternal)
}

func respond(fields map[string]interface{}) (string, error) {
	b, err := marshalFields(fields)
	if err != nil {
		return "", runtime.NewError("Internal error", codeInternal)
	}
	return string(b), nil
}

// ownedSession checks the service is running and the caller owns the session.
func ownedSession(ctx context.Context, id string) error {
	if sessionService == nil {
		return runtime.NewError("Service unavailable", codeInternal)
	}
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if err := sessionService.Authorize(id, userID); err != nil {
		return toRuntimeError(err)
	}
	return nil
}

// RpcSessionStartHandler creates an agent for the calling user.
// Payload: {"difficulty": "easy|balanced|hard|random", "seed": 0}
func RpcSessionStartHandler(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if sessionService == nil {
		return "", runtime.NewError("Service unavailable", codeInternal)
	}

	var req sessionStartRequest
	if payload != "" {
		if err := decodeRequest(payload, &req); err != nil {
			return "", err
		}
	}

	for _, ev := range sessionService.Sweep(time.Now()) {
		logger.Info("RpcSessionStart: Session %s expired", ev.SessionID)
	}

	info, _, err := sessionService.StartSession(userID, bot.Difficulty(req.Difficulty), req.Seed)
	if err != nil {
		logger.Warn("RpcSessionStart [User:%s]: Failed to start session: %v", userID, err)
		return "", toRuntimeError(err)
	}
	logger.Info("RpcSessionStart [User:%s]: Started session %s (%s)", userID, info.ID, info.Difficulty)

	return respond(map[string]interface{}{
		"session_id": info.ID,
		"difficulty": string(info.Difficulty),
		"seed":       info.Seed,
	})
}

// RpcDecideHandler asks the session's agent for its move.
// Payload: {"session_id": "...", "innings": 1, "role": "scoring", "agent_score": 0, "opponent_score": 0}
func RpcDecideHandler(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	var req decideRequest
	if err := decodeRequest(payload, &req); err != nil {
		return "", err
	}
	if err := ownedSession(ctx, req.SessionID); err != nil {
		return "", err
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		return "", toRuntimeError(err)
	}

	d, _, err := sessionService.Decide(req.SessionID, domain.DecisionContext{
		Innings:       req.Innings,
		Role:          role,
		AgentScore:    req.AgentScore,
		OpponentScore: req.OpponentScore,
	})
	if err != nil {
		logger.Warn("RpcDecide [Session:%s]: %v", req.SessionID, err)
		return "", toRuntimeError(err)
	}
	logger.Debug("RpcDecide [Session:%s]: move %d, predicted %d", req.SessionID, d.Move, d.Predicted)
	return respond(decisionToFields(d))
}

// RpcObserveHandler feeds the opponent's actual move to the agent.
// Payload: {"session_id": "...", "move": 4, "out": false}
func RpcObserveHandler(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	var req observeRequest
	if err := decodeRequest(payload, &req); err != nil {
		return "", err
	}
	if err := ownedSession(ctx, req.SessionID); err != nil {
		return "", err
	}

	evs, err := sessionService.Observe(req.SessionID, domain.Move(req.Move), req.Out)
	if err != nil {
		logger.Warn("RpcObserve [Session:%s]: %v", req.SessionID, err)
		return "", toRuntimeError(err)
	}
	fields, err := eventToFields(evs[0])
	if err != nil {
		logger.Error("RpcObserve [Session:%s]: Failed to encode event: %v", req.SessionID, err)
		return "", runtime.NewError("Internal error", codeInternal)
	}
	return respond(fields)
}

// RpcStatsHandler returns the agent's statistics.
// Payload: {"session_id": "..."}
func RpcStatsHandler(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	var req sessionRequest
	if err := decodeRequest(payload, &req); err != nil {
		return "", err
	}
	if err := ownedSession(ctx, req.SessionID); err != nil {
		return "", err
	}

	stats, err := sessionService.Stats(req.SessionID)
	if err != nil {
		return "", toRuntimeError(err)
	}
	return respond(statsToFields(stats))
}

// RpcSessionEndHandler closes the session and returns its final statistics.
// Payload: {"session_id": "..."}
func RpcSessionEndHandler(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	var req sessionRequest
	if err := decodeRequest(payload, &req); err != nil {
		return "", err
	}
	if err := ownedSession(ctx, req.SessionID); err != nil {
		return "", err
	}

	stats, _, err := sessionService.EndSession(req.SessionID)
	if err != nil {
		return "", toRuntimeError(err)
	}
	logger.Info("RpcSessionEnd [Session:%s]: Ended after %d turns", req.SessionID, stats.Turns)
	return respond(statsToFields(stats))
}

// RpcFindMatchHandler searches for an open match at the requested difficulty.
// If none is found, it creates a new one.
//
// Payload: (Optional) {"difficulty": "hard"}
// Returns: {"match_id": "...", "is_new": true}
func RpcFindMatchHandler(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)

	var req sessionStartRequest
	if payload != "" {
		if err := decodeRequest(payload, &req); err != nil {
			return "", err
		}
	}
	d, err := bot.ParseDifficulty(req.Difficulty)
	if err != nil {
		return "", toRuntimeError(err)
	}

	// +label.open:>=1 filters on the "open" key in the JSON label.
	labelQuery := fmt.Sprintf("+label.%s:>=1 +label.difficulty:%s", MatchLabelKey_OpenSeats, d)
	minSize, maxSize := 0, 1
	matches, err := nk.MatchList(ctx, 1, true, "", &minSize, &maxSize, labelQuery)
	if err != nil {
		logger.Error("RpcFindMatch [User:%s]: Failed to list matches: %v", userID, err)
		return "", err
	}
	if len(matches) > 0 {
		logger.Info("RpcFindMatch [User:%s]: Found existing match %s", userID, matches[0].MatchId)
		return respond(map[string]interface{}{"match_id": matches[0].MatchId, "is_new": false})
	}

	matchID, err := nk.MatchCreate(ctx, MatchNameHandCricket, map[string]interface{}{
		"difficulty": string(d),
		"seed":       req.Seed,
	})
	if err != nil {
		logger.Error("RpcFindMatch [User:%s]: Failed to create match: %v", userID, err)
		return "", err
	}
	logger.Info("RpcFindMatch [User:%s]: Created new match %s", userID, matchID)
	return respond(map[string]interface{}{"match_id": matchID, "is_new": true})
}
