// Package game implements the blackjack session engine.
//
// A Session is one round of blackjack for one chat key. It moves through
// WaitingForPlayers, InProgress and finally Settled (or Cancelled), drawing
// from a Shoe it owns exclusively. Every operation returns a Result that the
// transport renders for players; nothing in this package formats text.
//
// # Basic Usage
//
//	reg := game.NewRegistry(game.WithRules(game.DefaultRules()))
//	s := reg.GetOrCreate("chat-42")
//	_, _ = s.Join("alice")
//	res, err := s.Start()
//	if err == nil && res.Next == "alice" {
//	    res, err = s.Stand("alice")
//	}
//	// res.Outcomes holds the settlement once res.State == game.Settled
//
// # Deterministic Testing
//
// Shuffles come from randutil seeds and timestamps from a quartz.Clock, so
// tests pin both:
//
//	reg := game.NewRegistry(
//	    game.WithSeeds(randutil.FixedSeeds(42)),
//	    game.WithClock(quartz.NewMock(t)),
//	)
//
// WithShoe replaces the shuffle entirely, e.g. with deck.NewStackedShoe to
// script a deal card by card.
//
// # Concurrency
//
// The Registry guards its key map with one mutex and every Session guards
// its own state with another. Locks are always taken registry first, then
// session; session operations never touch the registry lock, so play in one
// chat never waits on another chat.
package game
