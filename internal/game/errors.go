package game

import (
	"errors"
	"fmt"

	"github.com/lox/blackjackbot/internal/deck"
)

var (
	// ErrInvalidState is returned when an operation is not legal in the
	// session's current state.
	ErrInvalidState = errors.New("invalid state")

	// ErrNotYourTurn is returned when a participant acts out of turn or is
	// not seated at the table.
	ErrNotYourTurn = errors.New("not your turn")

	// ErrAlreadyJoined is returned for a duplicate join.
	ErrAlreadyJoined = errors.New("already joined")

	// ErrNoActiveGame is returned by lookups for a key with no live session
	// and by operations on a session that has been removed or reaped.
	ErrNoActiveGame = errors.New("no active game")

	// ErrTableFull is an ErrInvalidState raised when the roster is at capacity.
	ErrTableFull = fmt.Errorf("%w: table is full", ErrInvalidState)

	// ErrShoeEmpty is returned when the shoe cannot cover a deal.
	ErrShoeEmpty = deck.ErrShoeEmpty

	// ErrUnknownLanguage is returned when a language tag cannot be parsed.
	ErrUnknownLanguage = errors.New("unknown language")

	// ErrUnknownCommand is returned by the dispatcher for an unmapped action.
	ErrUnknownCommand = errors.New("unknown command")
)

func invalidState(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidState, fmt.Sprintf(format, args...))
}
