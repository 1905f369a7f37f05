package game

import (
	"fmt"

	"github.com/lox/blackjackbot/internal/deck"
)

const blackjackScore = 21

// HandStatus is the derived status of a hand.
type HandStatus int

const (
	StatusActive HandStatus = iota
	StatusStood
	StatusBust
	StatusBlackjack
)

// String returns the string representation of a hand status
func (s HandStatus) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusStood:
		return "stood"
	case StatusBust:
		return "bust"
	case StatusBlackjack:
		return "blackjack"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler
func (s HandStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *HandStatus) UnmarshalText(text []byte) error {
	for _, st := range []HandStatus{StatusActive, StatusStood, StatusBust, StatusBlackjack} {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown hand status %q", text)
}

// Hand is the cards held by one participant or the dealer. The score is
// derived from the cards on every call.
type Hand struct {
	cards []deck.Card
	stood bool
}

// NewHand creates a hand holding the given cards
func NewHand(cards ...deck.Card) *Hand {
	h := &Hand{cards: make([]deck.Card, 0, 4)}
	h.cards = append(h.cards, cards...)
	return h
}

// Add appends a card to the hand
func (h *Hand) Add(c deck.Card) {
	h.cards = append(h.cards, c)
}

// Cards returns a copy of the cards in the hand
func (h *Hand) Cards() []deck.Card {
	out := make([]deck.Card, len(h.cards))
	copy(out, h.cards)
	return out
}

// Len returns the number of cards in the hand
func (h *Hand) Len() int {
	return len(h.cards)
}

// score returns the best total and how many Aces are still counted as 11.
func (h *Hand) score() (total, softAces int) {
	for _, c := range h.cards {
		total += c.Rank.Points()
		if c.IsAce() {
			softAces++
		}
	}
	for total > blackjackScore && softAces > 0 {
		total -= 10
		softAces--
	}
	return total, softAces
}

// Score returns the best blackjack total: Aces count 11 and drop to 1 one at
// a time while the hand would otherwise bust.
func (h *Hand) Score() int {
	total, _ := h.score()
	return total
}

// IsSoft reports whether an Ace is still being counted as 11.
func (h *Hand) IsSoft() bool {
	_, soft := h.score()
	return soft > 0
}

// IsBust reports whether the score is over 21
func (h *Hand) IsBust() bool {
	return h.Score() > blackjackScore
}

// IsBlackjack reports a natural: exactly two cards totalling 21.
func (h *Hand) IsBlackjack() bool {
	return len(h.cards) == 2 && h.Score() == blackjackScore
}

// Stand marks the hand as finished without further draws
func (h *Hand) Stand() {
	h.stood = true
}

// Status derives the hand status. Bust and blackjack take precedence over an
// explicit stand.
func (h *Hand) Status() HandStatus {
	switch {
	case h.IsBust():
		return StatusBust
	case h.IsBlackjack():
		return StatusBlackjack
	case h.stood:
		return StatusStood
	default:
		return StatusActive
	}
}

// Done reports whether the hand can no longer draw
func (h *Hand) Done() bool {
	return h.Status() != StatusActive
}
