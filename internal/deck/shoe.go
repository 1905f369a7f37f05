package deck

import (
	"errors"
	"fmt"
	rand "math/rand/v2"

	"golang.org/x/text/language"
)

const (
	// DefaultDeckCount is the number of decks loaded into a shoe when the
	// table does not say otherwise.
	DefaultDeckCount = 4

	// cutPercent of the shuffled pool sits behind the cut card and is never dealt.
	cutPercent = 10
)

// ErrShoeEmpty is returned when a draw is attempted on an exhausted shoe.
var ErrShoeEmpty = errors.New("shoe is empty")

// Shoe is a dealing shoe holding several shuffled decks. Cards behind the
// cut card are discarded at construction time and the shoe is never
// reshuffled; a new round needs a new shoe.
type Shoe struct {
	cards []Card
	size  int
	cut   int
	decks int
	lang  language.Tag
}

// NewShoe loads deckCount decks, shuffles them as one pool using rng and
// discards the trailing cut segment.
func NewShoe(rng *rand.Rand, lang language.Tag, deckCount int) (*Shoe, error) {
	if deckCount < 1 {
		return nil, fmt.Errorf("deck count must be positive, got %d", deckCount)
	}
	if rng == nil {
		return nil, fmt.Errorf("shoe requires a random source")
	}

	cards := make([]Card, 0, deckCount*DeckSize)
	for i := 0; i < deckCount; i++ {
		cards = append(cards, NewDeck()...)
	}

	rng.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})

	cut := len(cards) * cutPercent / 100
	cards = cards[:len(cards)-cut]

	return &Shoe{
		cards: cards,
		size:  len(cards),
		cut:   cut,
		decks: deckCount,
		lang:  lang,
	}, nil
}

// NewStackedShoe builds a shoe that deals cards in the order given, with no
// shuffle and no cut. It is used to replay or script a round.
func NewStackedShoe(lang language.Tag, cards ...Card) *Shoe {
	stacked := make([]Card, len(cards))
	for i, c := range cards {
		stacked[len(cards)-1-i] = c
	}
	return &Shoe{
		cards: stacked,
		size:  len(stacked),
		decks: (len(stacked) + DeckSize - 1) / DeckSize,
		lang:  lang,
	}
}

// Draw removes and returns the top card of the shoe.
func (s *Shoe) Draw() (Card, error) {
	if len(s.cards) == 0 {
		return Card{}, ErrShoeEmpty
	}
	last := len(s.cards) - 1
	card := s.cards[last]
	s.cards = s.cards[:last]
	return card, nil
}

// Remaining returns the number of cards left to deal
func (s *Shoe) Remaining() int {
	return len(s.cards)
}

// Dealt returns the number of cards drawn so far
func (s *Shoe) Dealt() int {
	return s.size - len(s.cards)
}

// Size returns the playable size of the shoe after the cut
func (s *Shoe) Size() int {
	return s.size
}

// CutCount returns how many cards were discarded behind the cut card
func (s *Shoe) CutCount() int {
	return s.cut
}

// Decks returns the number of decks the shoe was built from
func (s *Shoe) Decks() int {
	return s.decks
}

// Lang returns the language tag of the table the shoe was built for
func (s *Shoe) Lang() language.Tag {
	return s.lang
}

