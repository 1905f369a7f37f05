package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCards(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Card
		wantErr  bool
	}{
		{
			name:  "blackjack",
			input: "AsKh",
			expected: []Card{
				{Suit: Spades, Rank: Ace},
				{Suit: Hearts, Rank: King},
			},
		},
		{
			name:  "tens and pips",
			input: "Td9c2d",
			expected: []Card{
				{Suit: Diamonds, Rank: Ten},
				{Suit: Clubs, Rank: Nine},
				{Suit: Diamonds, Rank: Two},
			},
		},
		{
			name:  "case insensitive",
			input: "asKHqDjc",
			expected: []Card{
				{Suit: Spades, Rank: Ace},
				{Suit: Hearts, Rank: King},
				{Suit: Diamonds, Rank: Queen},
				{Suit: Clubs, Rank: Jack},
			},
		},
		{name: "invalid rank", input: "XsKs", wantErr: true},
		{name: "invalid suit", input: "AsKx", wantErr: true},
		{name: "odd length", input: "AsK", wantErr: true},
		{name: "empty string", input: "", expected: []Card{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCards(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseCard(t *testing.T) {
	c, err := ParseCard("10h")
	require.NoError(t, err)
	assert.Equal(t, NewCard(Hearts, Ten), c)

	c, err = ParseCard("Qd")
	require.NoError(t, err)
	assert.Equal(t, NewCard(Diamonds, Queen), c)

	_, err = ParseCard("11h")
	assert.Error(t, err)
	_, err = ParseCard("A")
	assert.Error(t, err)
}

func TestMustParseCardsPanics(t *testing.T) {
	assert.Equal(t, []Card{NewCard(Spades, Ace), NewCard(Spades, King)}, MustParseCards("AsKs"))
	assert.Panics(t, func() { MustParseCards("invalid") })
}

func TestCardString(t *testing.T) {
	assert.Equal(t, "A♠", NewCard(Spades, Ace).String())
	assert.Equal(t, "10♥", NewCard(Hearts, Ten).String())
	assert.Equal(t, "K♣", NewCard(Clubs, King).String())
	assert.Equal(t, "7♦", NewCard(Diamonds, Seven).String())
}

func TestRankPoints(t *testing.T) {
	assert.Equal(t, 11, Ace.Points())
	assert.Equal(t, 2, Two.Points())
	assert.Equal(t, 9, Nine.Points())
	for _, r := range []Rank{Ten, Jack, Queen, King} {
		assert.Equal(t, 10, r.Points(), r.String())
	}
}

func TestCardEquality(t *testing.T) {
	a := MustParseCards("Ah")[0]
	b := NewCard(Hearts, Ace)
	assert.True(t, a == b)
	assert.False(t, a == NewCard(Spades, Ace))
}

func TestCardTextRoundTrip(t *testing.T) {
	for _, c := range NewDeck() {
		text, err := c.MarshalText()
		require.NoError(t, err)

		var back Card
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, c, back)
	}

	_, err := Card{}.MarshalText()
	assert.Error(t, err)
}
