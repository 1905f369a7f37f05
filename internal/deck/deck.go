package deck

// DeckSize is the number of cards in a single deck
const DeckSize = NumSuits * NumRanks

// NewDeck returns the 52 cards of a standard deck in canonical order, so
// that NewDeck()[i].ID() == i.
func NewDeck() []Card {
	cards := make([]Card, 0, DeckSize)
	for suit := Spades; suit <= Clubs; suit++ {
		for rank := Ace; rank <= King; rank++ {
			cards = append(cards, NewCard(suit, rank))
		}
	}
	return cards
}
