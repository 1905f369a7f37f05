package game

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lox/blackjackbot/internal/deck"
)

func hand(cards string) *Hand {
	return NewHand(deck.MustParseCards(cards)...)
}

func TestHandScore(t *testing.T) {
	tests := []struct {
		name      string
		cards     string
		score     int
		soft      bool
		blackjack bool
		bust      bool
	}{
		{name: "natural", cards: "AsKd", score: 21, soft: true, blackjack: true},
		{name: "three card 21 is not a natural", cards: "AsAh9c", score: 21, soft: true},
		{name: "pair of aces", cards: "AsAh", score: 12, soft: true},
		{name: "soft 17", cards: "Ac6d", score: 17, soft: true},
		{name: "ace drops to one", cards: "Ac6d9h", score: 16},
		{name: "faces count ten", cards: "JsQh", score: 20},
		{name: "hard bust", cards: "Ts9h5c", score: 24, bust: true},
		{name: "four aces", cards: "AsAhAdAc", score: 14, soft: true},
		{name: "empty", cards: "", score: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := hand(tt.cards)
			assert.Equal(t, tt.score, h.Score())
			assert.Equal(t, tt.soft, h.IsSoft())
			assert.Equal(t, tt.blackjack, h.IsBlackjack())
			assert.Equal(t, tt.bust, h.IsBust())
		})
	}
}

func TestHandStatus(t *testing.T) {
	h := hand("Ts7h")
	assert.Equal(t, StatusActive, h.Status())
	assert.False(t, h.Done())

	h.Stand()
	assert.Equal(t, StatusStood, h.Status())
	assert.True(t, h.Done())

	assert.Equal(t, StatusBlackjack, hand("AhQs").Status())

	bust := hand("Ts7h")
	bust.Stand()
	bust.Add(deck.MustParseCards("9c")[0])
	assert.Equal(t, StatusBust, bust.Status(), "bust outranks stood")
}

func TestHandCardsIsCopy(t *testing.T) {
	h := hand("Ts7h")
	cards := h.Cards()
	cards[0] = deck.MustParseCards("2c")[0]
	assert.Equal(t, 17, h.Score())
	assert.Equal(t, 2, h.Len())
}

func TestSettleHand(t *testing.T) {
	tests := []struct {
		name   string
		player string
		dealer string
		want   OutcomeKind
	}{
		{name: "player bust loses even if dealer busts", player: "TsQh5c", dealer: "Td6h8c", want: Lose},
		{name: "natural beats dealer 21", player: "AsKd", dealer: "7d7h7c", want: Win},
		{name: "two naturals push", player: "AsKd", dealer: "AhJc", want: Push},
		{name: "dealer natural beats 21", player: "7s7h7d", dealer: "AhJc", want: Lose},
		{name: "dealer bust", player: "Ts2h", dealer: "Td6h8c", want: Win},
		{name: "higher score wins", player: "Ts9h", dealer: "Td8h", want: Win},
		{name: "equal scores push", player: "Ts8h", dealer: "9d9h", want: Push},
		{name: "lower score loses", player: "Ts7h", dealer: "Td8h", want: Lose},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := settleHand("alice", hand(tt.player), hand(tt.dealer))
			assert.Equal(t, tt.want, out.Result, "%s vs %s", tt.player, tt.dealer)
			assert.Equal(t, "alice", out.Participant)
		})
	}
}
