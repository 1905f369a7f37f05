package server

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/lox/blackjackbot/internal/game"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data any) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server Messages

// StatsRequestData optionally names whose totals to fetch; the sender's by
// default.
type StatsRequestData struct {
	Player string `json:"player,omitempty"`
}

// LangData carries a BCP 47 tag such as "de" or "pt-BR".
type LangData struct {
	Lang string `json:"lang"`
}

// Server → Client Messages

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var commandKinds = map[MessageType]game.Action{
	MessageTypeJoin:   game.ActionJoin,
	MessageTypeStart:  game.ActionStart,
	MessageTypeHit:    game.ActionHit,
	MessageTypeStand:  game.ActionStand,
	MessageTypeCancel: game.ActionCancel,
	MessageTypeState:  game.ActionState,
}

// errorCode maps a session error to the code sent to clients.
func errorCode(err error) string {
	switch {
	case errors.Is(err, game.ErrTableFull):
		return CodeTableFull
	case errors.Is(err, game.ErrInvalidState):
		return CodeInvalidState
	case errors.Is(err, game.ErrNotYourTurn):
		return CodeNotYourTurn
	case errors.Is(err, game.ErrAlreadyJoined):
		return CodeAlreadyJoined
	case errors.Is(err, game.ErrNoActiveGame):
		return CodeNoActiveGame
	case errors.Is(err, game.ErrShoeEmpty):
		return CodeShoeEmpty
	case errors.Is(err, game.ErrUnknownLanguage):
		return CodeInvalidMessage
	case errors.Is(err, game.ErrUnknownCommand):
		return CodeUnknownMessageType
	default:
		return CodeInternal
	}
}
