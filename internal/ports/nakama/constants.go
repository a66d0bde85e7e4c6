package nakama

const (
	// RpcSessionStart creates an agent session owned by the caller.
	RpcSessionStart = "handcricket_session_start"
	RpcDecide       = "handcricket_decide"
	RpcObserve      = "handcricket_observe"
	RpcStats        = "handcricket_stats"
	RpcSessionEnd   = "handcricket_session_end"

	// RpcFindMatch is the Nakama RPC id clients call to find or create a match against the agent.
	RpcFindMatch = "handcricket_find_match"

	// MatchNameHandCricket is the authoritative match handler name registered with Nakama.
	MatchNameHandCricket = "handcricket_match"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpStartMatch int64 = 1
	OpPlayMove   int64 = 2

	// Server -> Client events
	OpMatchState     int64 = 101
	OpMatchStarted   int64 = 103
	OpTurnResolved   int64 = 105
	OpInningsChanged int64 = 106
	OpMatchEnded     int64 = 107
	OpError          int64 = 110
)

// Runtime environment keys read from the Nakama config.
const (
	EnvConfigPath = "handcricket_config_path"
	EnvDifficulty = "handcricket_difficulty"
)

const defaultConfigPath = "data/handcricket.yaml"

// Nakama RPC error codes (gRPC status codes).
const (
	codeInvalidArgument    = 3
	codeNotFound           = 5
	codePermissionDenied   = 7
	codeResourceExhausted  = 8
	codeFailedPrecondition = 9
	codeInternal           = 13
)
