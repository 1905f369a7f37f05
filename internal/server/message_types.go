package server

// MessageType represents a WebSocket message type with type safety
type MessageType string

// WebSocket message type constants
const (
	// Client to server messages
	MessageTypeJoin   MessageType = "join"
	MessageTypeStart  MessageType = "start"
	MessageTypeHit    MessageType = "hit"
	MessageTypeStand  MessageType = "stand"
	MessageTypeCancel MessageType = "cancel"
	MessageTypeState  MessageType = "state"

	// MessageTypeLang sets the table language before the round starts.
	MessageTypeLang MessageType = "lang"

	// MessageTypeStats is sent by clients to ask for a player's totals and
	// returned by the server with the answer.
	MessageTypeStats MessageType = "stats"

	// Server to client messages
	MessageTypeResult MessageType = "result"
	MessageTypeError  MessageType = "error"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}

// Error codes sent in ErrorData
const (
	CodeInvalidState       = "invalid_state"
	CodeNotYourTurn        = "not_your_turn"
	CodeAlreadyJoined      = "already_joined"
	CodeTableFull          = "table_full"
	CodeNoActiveGame       = "no_active_game"
	CodeShoeEmpty          = "shoe_empty"
	CodeInvalidMessage     = "invalid_message"
	CodeUnknownMessageType = "unknown_message_type"
	CodeStatsUnavailable   = "stats_unavailable"
	CodeInternal           = "internal"
)
