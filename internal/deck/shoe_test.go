package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/lox/blackjackbot/internal/randutil"
)

func drawAll(t *testing.T, shoe *Shoe) []Card {
	t.Helper()
	cards := make([]Card, 0, shoe.Remaining())
	for shoe.Remaining() > 0 {
		c, err := shoe.Draw()
		require.NoError(t, err)
		cards = append(cards, c)
	}
	return cards
}

func TestNewDeckCanonicalOrder(t *testing.T) {
	cards := NewDeck()
	require.Len(t, cards, 52)

	seen := make(map[Card]bool, len(cards))
	for i, c := range cards {
		assert.Equal(t, i, c.ID(), "card %s out of order", c)
		assert.False(t, seen[c], "duplicate card %s", c)
		seen[c] = true
	}

	assert.Equal(t, cards, NewDeck(), "deck construction must be deterministic")
}

func TestNewShoeCut(t *testing.T) {
	tests := []struct {
		decks    int
		wantSize int
		wantCut  int
	}{
		{decks: 1, wantSize: 47, wantCut: 5},
		{decks: 4, wantSize: 188, wantCut: 20},
		{decks: 6, wantSize: 281, wantCut: 31},
	}

	for _, tt := range tests {
		shoe, err := NewShoe(randutil.New(1), language.English, tt.decks)
		require.NoError(t, err)
		assert.Equal(t, tt.wantSize, shoe.Size(), "decks=%d", tt.decks)
		assert.Equal(t, tt.wantCut, shoe.CutCount(), "decks=%d", tt.decks)
		assert.Equal(t, tt.wantSize, shoe.Remaining())
		assert.Equal(t, 0, shoe.Dealt())
		assert.Equal(t, tt.decks, shoe.Decks())
	}
}

func TestNewShoeRejectsBadInput(t *testing.T) {
	_, err := NewShoe(randutil.New(1), language.English, 0)
	assert.Error(t, err)

	_, err = NewShoe(nil, language.English, 1)
	assert.Error(t, err)
}

func TestShoeCardCounts(t *testing.T) {
	shoe, err := NewShoe(randutil.New(7), language.German, 2)
	require.NoError(t, err)
	assert.Equal(t, language.German, shoe.Lang())

	counts := make(map[Card]int)
	for _, c := range drawAll(t, shoe) {
		counts[c]++
	}
	assert.Equal(t, shoe.Size(), shoe.Dealt())
	for c, n := range counts {
		assert.LessOrEqual(t, n, 2, "card %s appears more often than decks allow", c)
	}
}

func TestShoeDeterministicShuffle(t *testing.T) {
	a, err := NewShoe(randutil.New(42), language.English, 4)
	require.NoError(t, err)
	b, err := NewShoe(randutil.New(42), language.English, 4)
	require.NoError(t, err)
	c, err := NewShoe(randutil.New(43), language.English, 4)
	require.NoError(t, err)

	first := drawAll(t, a)
	assert.Equal(t, first, drawAll(t, b))
	assert.NotEqual(t, first, drawAll(t, c))
}

func TestShoeDrawUntilEmpty(t *testing.T) {
	shoe, err := NewShoe(randutil.New(3), language.English, 1)
	require.NoError(t, err)

	for i := 0; i < shoe.Size(); i++ {
		card, err := shoe.Draw()
		require.NoError(t, err)
		assert.True(t, card.Valid())
		assert.Equal(t, i+1, shoe.Dealt())
		assert.Equal(t, shoe.Size(), shoe.Dealt()+shoe.Remaining())
	}

	_, err = shoe.Draw()
	assert.ErrorIs(t, err, ErrShoeEmpty)
	assert.Equal(t, 0, shoe.Remaining())
	assert.Equal(t, shoe.Size(), shoe.Dealt())
}

func TestStackedShoeDealsInOrder(t *testing.T) {
	cards := MustParseCards("As Kh 9d 2c")
	shoe := NewStackedShoe(language.French, cards...)

	assert.Equal(t, 4, shoe.Size())
	assert.Equal(t, 0, shoe.CutCount())
	assert.Equal(t, 1, shoe.Decks())
	assert.Equal(t, language.French, shoe.Lang())

	for _, want := range cards {
		got, err := shoe.Draw()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := shoe.Draw()
	assert.ErrorIs(t, err, ErrShoeEmpty)
}
