package game

import (
	"testing"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/lox/blackjackbot/internal/deck"
	"github.com/lox/blackjackbot/internal/randutil"
)

// stacked returns a ShoeFunc that deals cards in the order written.
func stacked(cards string) ShoeFunc {
	return func(_ int64, lang language.Tag, _ int) (*deck.Shoe, error) {
		return deck.NewStackedShoe(lang, deck.MustParseCards(cards)...), nil
	}
}

func testConfig(t *testing.T, shoe ShoeFunc) (SessionConfig, *quartz.Mock) {
	t.Helper()
	clock := quartz.NewMock(t)
	return SessionConfig{
		Rules: DefaultRules(),
		Clock: clock,
		Seeds: randutil.FixedSeeds(42),
		Shoe:  shoe,
	}, clock
}

// newStackedSession seats players in order on a session whose shoe deals
// cards as written. Deal order is each player then the dealer, twice.
func newStackedSession(t *testing.T, cards string, players ...string) *Session {
	t.Helper()
	cfg, _ := testConfig(t, stacked(cards))
	s := NewSession("chat-1", cfg)
	for _, p := range players {
		_, err := s.Join(p)
		require.NoError(t, err)
	}
	return s
}

// assertCardsConserved checks that every card drawn from the shoe is in a
// hand on the table.
func assertCardsConserved(t *testing.T, s *Session) {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()

	onTable := s.dealer.Len()
	for _, p := range s.players {
		onTable += p.hand.Len()
	}
	assert.Equal(t, s.shoe.Size(), onTable+s.shoe.Remaining(), "cards on table plus shoe")
}

func outcomeFor(t *testing.T, outcomes []Outcome, id string) Outcome {
	t.Helper()
	for _, o := range outcomes {
		if o.Participant == id {
			return o
		}
	}
	t.Fatalf("no outcome for %s", id)
	return Outcome{}
}
