package game

import (
	"fmt"

	"github.com/lox/blackjackbot/internal/deck"
)

const (
	// DefaultMaxPlayers is the number of seats at a table.
	DefaultMaxPlayers = 7

	// dealerStandScore is the total the dealer stands on.
	dealerStandScore = 17
)

// Rules are the table rules a session is played under.
type Rules struct {
	// DeckCount is the number of decks loaded into each shoe.
	DeckCount int
	// MaxPlayers caps the roster.
	MaxPlayers int
	// DealerHitsSoft17 makes the dealer draw on a soft 17 instead of standing.
	DealerHitsSoft17 bool
}

// DefaultRules returns four decks, seven seats and a dealer that hits soft 17.
func DefaultRules() Rules {
	return Rules{
		DeckCount:        deck.DefaultDeckCount,
		MaxPlayers:       DefaultMaxPlayers,
		DealerHitsSoft17: true,
	}
}

// Validate checks that a full table can always be dealt from a fresh shoe.
func (r Rules) Validate() error {
	if r.DeckCount < 1 {
		return fmt.Errorf("deck count must be positive, got %d", r.DeckCount)
	}
	if r.MaxPlayers < 1 {
		return fmt.Errorf("max players must be positive, got %d", r.MaxPlayers)
	}
	size := r.DeckCount * deck.DeckSize
	playable := size - size/10
	if need := 2 * (r.MaxPlayers + 1); need > playable {
		return fmt.Errorf("%d decks cannot deal %d players", r.DeckCount, r.MaxPlayers)
	}
	return nil
}

// withDefaults turns zero Rules into DefaultRules. Otherwise only zero
// counts are filled and DealerHitsSoft17 is taken as given.
func (r Rules) withDefaults() Rules {
	def := DefaultRules()
	if r == (Rules{}) {
		return def
	}
	if r.DeckCount == 0 {
		r.DeckCount = def.DeckCount
	}
	if r.MaxPlayers == 0 {
		r.MaxPlayers = def.MaxPlayers
	}
	return r
}
