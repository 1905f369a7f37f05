package game

// finishLocked closes the round: remaining participants stand, the dealer
// plays unless the shoe already ran dry, and outcomes are computed. It runs
// at most once because every caller requires InProgress and it leaves the
// session Settled.
func (s *Session) finishLocked(exhausted bool) {
	for _, p := range s.players {
		if !p.hand.Done() {
			p.hand.Stand()
		}
	}

	if exhausted {
		s.exhausted = true
	} else {
		s.playDealer()
	}
	s.dealer.Stand()

	s.outcomes = make([]Outcome, len(s.players))
	for i, p := range s.players {
		s.outcomes[i] = settleHand(p.id, p.hand, s.dealer)
	}

	s.setState(Settled)
	s.turn = -1
	s.logger.Info("Round settled",
		"dealer", s.dealer.Score(),
		"players", len(s.players),
		"exhausted", s.exhausted)
}

// playDealer draws while the dealer is under 17, and on a soft 17 when the
// table rules say so. Running out of cards leaves the dealer standing.
func (s *Session) playDealer() {
	for s.dealerMustDraw() {
		card, err := s.shoe.Draw()
		if err != nil {
			s.logger.Warn("Shoe exhausted during dealer play", "dealer", s.dealer.Score())
			s.exhausted = true
			return
		}
		s.dealer.Add(card)
	}
}

func (s *Session) dealerMustDraw() bool {
	score := s.dealer.Score()
	if score < dealerStandScore {
		return true
	}
	return score == dealerStandScore && s.rules.DealerHitsSoft17 && s.dealer.IsSoft()
}

// settleHand compares one participant hand with the dealer's. A natural
// beats any other 21.
func settleHand(id string, hand, dealer *Hand) Outcome {
	out := Outcome{
		Participant: id,
		Score:       hand.Score(),
		DealerScore: dealer.Score(),
		Blackjack:   hand.IsBlackjack(),
		Bust:        hand.IsBust(),
	}

	switch {
	case out.Bust:
		out.Result = Lose
	case out.Blackjack && !dealer.IsBlackjack():
		out.Result = Win
	case dealer.IsBlackjack() && !out.Blackjack:
		out.Result = Lose
	case dealer.IsBust():
		out.Result = Win
	case out.Score > out.DealerScore:
		out.Result = Win
	case out.Score == out.DealerScore:
		out.Result = Push
	default:
		out.Result = Lose
	}
	return out
}
