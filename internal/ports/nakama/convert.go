package nakama

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"handcricket/internal/app"
	"handcricket/internal/bot"
	"handcricket/internal/domain"
)

var marshalOptions = protojson.MarshalOptions{EmitUnpopulated: true}

// marshalFields encodes a payload as protojson of a structpb.Struct. Values
// must already be plain Go types accepted by structpb.
func marshalFields(fields map[string]interface{}) ([]byte, error) {
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}
	return marshalOptions.Marshal(s)
}

// unmarshalFields decodes a JSON object sent by a client.
func unmarshalFields(data []byte) (*structpb.Struct, error) {
	s := &structpb.Struct{}
	if len(data) == 0 {
		return s, nil
	}
	if err := protojson.Unmarshal(data, s); err != nil {
		return nil, err
	}
	return s, nil
}

func movesToList(moves []domain.Move) []interface{} {
	out := make([]interface{}, len(moves))
	for i, m := range moves {
		out[i] = int(m)
	}
	return out
}

func distributionToList(d domain.Distribution) []interface{} {
	out := make([]interface{}, domain.K)
	for i, p := range d {
		out[i] = p
	}
	return out
}

func floatsToList(values []float64) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func scoresToMap(scores [2]int) map[string]interface{} {
	return map[string]interface{}{
		domain.SideAgent.String():    scores[domain.SideAgent],
		domain.SideOpponent.String(): scores[domain.SideOpponent],
	}
}

func decisionToFields(d bot.Decision) map[string]interface{} {
	evaluations := make([]interface{}, 0, domain.K)
	if !d.Choice.Randomized {
		for _, e := range d.Choice.Evaluations {
			evaluations = append(evaluations, map[string]interface{}{
				"move":          int(e.Move),
				"risk":          e.Risk,
				"expected_runs": e.ExpectedRuns,
				"utility":       e.Utility,
			})
		}
	}
	return map[string]interface{}{
		"move":        int(d.Move),
		"predicted":   int(d.Predicted),
		"confidence":  d.Confidence,
		"consensus":   distributionToList(d.Consensus),
		"randomized":  d.Choice.Randomized,
		"aggression":  d.Choice.Aggression,
		"evaluations": evaluations,
	}
}

func statsToFields(s bot.Stats) map[string]interface{} {
	patterns := make([]interface{}, len(s.TopPatterns))
	for i, p := range s.TopPatterns {
		patterns[i] = map[string]interface{}{
			"moves": movesToList(p.Moves),
			"count": p.Count,
		}
	}
	favourite := make(map[string]interface{}, len(s.Favourite))
	for role, m := range s.Favourite {
		favourite[role.String()] = int(m)
	}
	return map[string]interface{}{
		"turns":              s.Turns,
		"predictions":        s.Predictions,
		"hits":               s.Hits,
		"accuracy":           s.Accuracy,
		"average_confidence": s.AverageConfidence,
		"learning_curve":     floatsToList(s.LearningCurve),
		"top_patterns":       patterns,
		"cycle":              movesToList(s.Cycle),
		"favourite":          favourite,
	}
}

func matchToFields(m *domain.Match) map[string]interface{} {
	return map[string]interface{}{
		"phase":   string(m.Phase),
		"innings": m.Innings(),
		"batting": m.Batting.String(),
		"scores":  scoresToMap(m.Scores),
		"turns":   m.Turns,
		"result":  string(m.Result),
	}
}

// eventToFields maps an app event payload to wire fields.
func eventToFields(ev app.Event) (map[string]interface{}, error) {
	fields := map[string]interface{}{"kind": string(ev.Kind)}
	if ev.SessionID != "" {
		fields["session_id"] = ev.SessionID
	}

	switch p := ev.Payload.(type) {
	case app.SessionStartedPayload:
		fields["difficulty"] = string(p.Difficulty)
		fields["seed"] = p.Seed
	case app.MoveChosenPayload:
		fields["turn"] = p.Turn
		fields["role"] = p.Role.String()
		fields["move"] = int(p.Move)
		fields["predicted"] = int(p.Predicted)
		fields["confidence"] = p.Confidence
		fields["randomized"] = p.Randomized
	case app.OutcomeRecordedPayload:
		fields["turn"] = p.Turn
		fields["actual"] = int(p.Actual)
		fields["predicted"] = int(p.Predicted)
		fields["hit"] = p.Hit
		fields["out"] = p.Out
	case app.SessionEndedPayload:
		fields["reason"] = p.Reason
		fields["stats"] = statsToFields(p.Stats)
	case app.MatchStartedPayload:
		fields["difficulty"] = string(p.Difficulty)
		fields["first_batter"] = p.FirstBatter.String()
	case app.TurnResolvedPayload:
		fields["turn"] = p.Turn
		fields["innings"] = p.Innings
		fields["batting"] = p.Batting.String()
		fields["agent_move"] = int(p.AgentMove)
		fields["opponent_move"] = int(p.OpponentMove)
		fields["predicted"] = int(p.Predicted)
		fields["out"] = p.Out
		fields["runs"] = p.Runs
		fields["scores"] = scoresToMap(p.Scores)
	case app.InningsChangedPayload:
		fields["batting"] = p.Batting.String()
		fields["target"] = p.Target
	case app.MatchEndedPayload:
		fields["result"] = string(p.Result)
		fields["scores"] = scoresToMap(p.Scores)
		fields["turns"] = p.Turns
	default:
		return nil, fmt.Errorf("unsupported event payload %T", ev.Payload)
	}
	return fields, nil
}

// opCodeForEvent maps match events to their server op code.
func opCodeForEvent(kind app.EventKind) (int64, bool) {
	switch kind {
	case app.EventMatchStarted:
		return OpMatchStarted, true
	case app.EventTurnResolved:
		return OpTurnResolved, true
	case app.EventInningsChanged:
		return OpInningsChanged, true
	case app.EventMatchEnded:
		return OpMatchEnded, true
	}
	return 0, false
}
