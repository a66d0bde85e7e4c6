package nakama

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/heroiclabs/nakama-common/runtime"

	"handcricket/internal/app"
	"handcricket/internal/bot"
	"handcricket/internal/domain"
)

const (
	MatchLabelKey_OpenSeats = "open" // Key for the open seats in the match label

	labelLobby   = "lobby"
	labelPlaying = "playing"
	labelEnded   = "ended"
)

// MatchState holds the authoritative runtime state for the Nakama match handler.
type MatchState struct {
	HumanID    string                      `json:"human_id"`   // User playing against the agent, empty until someone joins
	Difficulty bot.Difficulty              `json:"difficulty"` // Agent tier for this match
	Seed       int64                       `json:"seed"`       // Agent seed, 0 derives one from the clock
	Tick       int64                       `json:"tick"`       // Current tick of the match
	Presences  map[string]runtime.Presence `json:"-"`          // Map UserId -> Presence for targeted messaging
	App        *app.Service                `json:"-"`          // Service that referees turns
	Session    *app.MatchSession           `json:"-"`          // Current match, nil while in lobby
}

// GetOpenSeatsCount returns 1 while the human seat is free.
func (ms *MatchState) GetOpenSeatsCount() int {
	if ms.HumanID == "" {
		return 1
	}
	return 0
}

func (ms *MatchState) labelState() string {
	switch {
	case ms.Session == nil:
		return labelLobby
	case ms.Session.Match.Over():
		return labelEnded
	}
	return labelPlaying
}

type matchHandler struct {
	svc *app.Service
}

func newMatchHandler(svc *app.Service) *matchHandler {
	return &matchHandler{svc: svc}
}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing match handler.")

	state := &MatchState{
		Tick:      time.Now().Unix(),
		Presences: make(map[string]runtime.Presence),
		App:       mh.svc,
	}

	if env, ok := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string); ok {
		state.Difficulty = bot.Difficulty(env[EnvDifficulty])
	}
	if v, ok := params["difficulty"].(string); ok && v != "" {
		state.Difficulty = bot.Difficulty(v)
	}
	d, err := bot.ParseDifficulty(string(state.Difficulty))
	if err != nil {
		logger.Warn("MatchInit: %v, using balanced", err)
		d = bot.DifficultyBalanced
	}
	state.Difficulty = d

	switch v := params["seed"].(type) {
	case int64:
		state.Seed = v
	case float64:
		state.Seed = int64(v)
	}

	label, err := matchLabel(state)
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	tickRate := 1
	return state, tickRate, label
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	// The seat belongs to the first human; they may reconnect.
	if matchState.HumanID != "" && matchState.HumanID != presence.GetUserId() {
		return state, false, "Match full"
	}
	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		matchState.Presences[p.GetUserId()] = p
		if matchState.HumanID == "" {
			matchState.HumanID = p.GetUserId()
			logger.Debug("MatchJoin: User %s took the seat against the agent.", p.GetUserId())
		}
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastMatchState(matchState, dispatcher, logger)

	return matchState
}

// MatchLeave is called when one or more players leave the match.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		delete(matchState.Presences, p.GetUserId())
		logger.Debug("MatchLeave: User %s left.", p.GetUserId())
	}

	if len(matchState.Presences) == 0 {
		logger.Info("MatchLeave: Terminating match with no humans.")
		return nil
	}
	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpStartMatch:
			mh.handleStartMatch(matchState, dispatcher, logger, msg)
		case OpPlayMove:
			mh.handlePlayMove(matchState, dispatcher, logger, msg)
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	return matchState
}

// handleStartMatch starts a match, or a rematch against the same agent once
// the previous one has ended. Payload: {"bat_first": true}
func (mh *matchHandler) handleStartMatch(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	if senderID != state.HumanID {
		mh.sendError(state, dispatcher, logger, senderID, 403, "only the seated player can start")
		return
	}
	if state.Session != nil && !state.Session.Match.Over() {
		mh.sendError(state, dispatcher, logger, senderID, 409, "match already in progress")
		return
	}

	req, err := unmarshalFields(msg.GetData())
	if err != nil {
		mh.sendError(state, dispatcher, logger, senderID, 400, "invalid payload")
		return
	}
	firstBatter := domain.SideOpponent
	if v, ok := req.GetFields()["bat_first"]; ok && !v.GetBoolValue() {
		firstBatter = domain.SideAgent
	}

	var events []app.Event
	if state.Session == nil {
		state.Session, events, err = state.App.StartMatch(state.HumanID, state.Difficulty, state.Seed, firstBatter)
		if err != nil {
			logger.Error("StartMatch failed: %v", err)
			mh.sendError(state, dispatcher, logger, senderID, 500, "could not start match")
			return
		}
	} else {
		events = state.App.Rematch(state.Session, firstBatter)
	}
	logger.Info("StartMatch: User %s vs %s agent, %s bats first.", senderID, state.Difficulty, firstBatter)

	for _, ev := range events {
		mh.broadcastEvent(state, dispatcher, logger, ev)
	}
	mh.updateLabel(state, dispatcher, logger)
}

// handlePlayMove resolves one turn. Payload: {"move": 4}
func (mh *matchHandler) handlePlayMove(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	if senderID != state.HumanID {
		mh.sendError(state, dispatcher, logger, senderID, 403, "not a player in this match")
		return
	}
	if state.Session == nil {
		mh.sendError(state, dispatcher, logger, senderID, 409, "match not started")
		return
	}

	req, err := unmarshalFields(msg.GetData())
	if err != nil {
		mh.sendError(state, dispatcher, logger, senderID, 400, "invalid payload")
		return
	}
	move := domain.Move(int(req.GetFields()["move"].GetNumberValue()))

	events, err := state.App.PlayTurn(state.Session, move)
	if err != nil {
		code := 500
		if errors.Is(err, domain.ErrInvalidMove) || errors.Is(err, domain.ErrMatchOver) {
			code = 400
		}
		logger.Warn("PlayMove failed for %s: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, code, err.Error())
		return
	}

	for _, ev := range events {
		mh.broadcastEvent(state, dispatcher, logger, ev)
	}
	if state.Session.Match.Over() {
		logger.Info("PlayMove: Match ended, result %s.", state.Session.Match.Result)
		mh.updateLabel(state, dispatcher, logger)
	}
}

// broadcastMatchState sends the current snapshot to everyone in the match.
func (mh *matchHandler) broadcastMatchState(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	fields := map[string]interface{}{
		"human_id":   state.HumanID,
		"difficulty": string(state.Difficulty),
		"state":      state.labelState(),
	}
	if state.Session != nil {
		fields["match"] = matchToFields(state.Session.Match)
	}
	bytes, err := marshalFields(fields)
	if err != nil {
		logger.Error("Failed to marshal match state: %v", err)
		return
	}
	dispatcher.BroadcastMessage(OpMatchState, bytes, nil, nil, true)
}

// broadcastEvent handles the conversion and dispatching of app events to Nakama.
func (mh *matchHandler) broadcastEvent(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev app.Event) {
	opCode, ok := opCodeForEvent(ev.Kind)
	if !ok {
		logger.Warn("No op code for event %v", ev.Kind)
		return
	}
	fields, err := eventToFields(ev)
	if err != nil {
		logger.Error("Failed to convert event %v: %v", ev.Kind, err)
		return
	}
	bytes, err := marshalFields(fields)
	if err != nil {
		logger.Error("Failed to marshal event %v: %v", ev.Kind, err)
		return
	}

	// Determine recipients (default to broadcast)
	var recipients []runtime.Presence
	if len(ev.Recipients) > 0 {
		for _, uid := range ev.Recipients {
			if p, ok := state.Presences[uid]; ok {
				recipients = append(recipients, p)
			}
		}
		if len(recipients) == 0 {
			return
		}
	}

	dispatcher.BroadcastMessage(opCode, bytes, recipients, nil, true)
}

// sendError sends an error event to a specific user.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, code int, message string) {
	bytes, err := marshalFields(map[string]interface{}{
		"code":    code,
		"message": message,
	})
	if err != nil {
		logger.Error("Failed to marshal error event: %v", err)
		return
	}

	presence, ok := state.Presences[userID]
	if !ok {
		logger.Warn("Cannot send error to %s: Presence not found", userID)
		return
	}

	dispatcher.BroadcastMessage(OpError, bytes, []runtime.Presence{presence}, nil, true)
}

func matchLabel(state *MatchState) (string, error) {
	bytes, err := marshalFields(map[string]interface{}{
		MatchLabelKey_OpenSeats: state.GetOpenSeatsCount(),
		"state":                 state.labelState(),
		"difficulty":            string(state.Difficulty),
	})
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	label, err := matchLabel(state)
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(label); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, graceSeconds int) interface{} {
	logger.Debug("MatchTerminate: Match terminated with %d grace seconds", graceSeconds)
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
