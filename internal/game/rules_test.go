package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRulesValidate(t *testing.T) {
	assert.NoError(t, DefaultRules().Validate())
	assert.NoError(t, Rules{DeckCount: 1, MaxPlayers: 7}.Validate())

	assert.Error(t, Rules{DeckCount: 0, MaxPlayers: 7}.Validate())
	assert.Error(t, Rules{DeckCount: 1, MaxPlayers: 0}.Validate())
	assert.Error(t, Rules{DeckCount: 1, MaxPlayers: 23}.Validate(), "one deck cannot deal 24 hands")
}

func TestRulesWithDefaults(t *testing.T) {
	assert.Equal(t, DefaultRules(), Rules{}.withDefaults(), "zero rules hit soft 17")

	r := Rules{DeckCount: 2}.withDefaults()
	assert.Equal(t, 2, r.DeckCount)
	assert.Equal(t, DefaultMaxPlayers, r.MaxPlayers)
	assert.False(t, r.DealerHitsSoft17, "explicit rules keep their soft 17 policy")
}

func TestRegistryWithoutRulesHitsSoft17(t *testing.T) {
	// alice 10+7 stands, dealer A+6 is soft 17 and draws the four.
	reg := NewRegistry(WithShoe(stacked("TsAh7c6d4s")))
	s := reg.GetOrCreate("chat")
	_, err := s.Join("alice")
	require.NoError(t, err)
	_, err = s.Start()
	require.NoError(t, err)

	res, err := s.Stand("alice")
	require.NoError(t, err)
	assert.Len(t, res.Dealer.Cards, 3)
	assert.Equal(t, 21, res.Dealer.Score)
	assert.Equal(t, Lose, outcomeFor(t, res.Outcomes, "alice").Result)
}
