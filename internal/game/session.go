package game

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/lox/blackjackbot/internal/deck"
	"github.com/lox/blackjackbot/internal/randutil"
)

// ShoeFunc builds the shoe for a round.
type ShoeFunc func(seed int64, lang language.Tag, deckCount int) (*deck.Shoe, error)

// ShuffledShoe is the default ShoeFunc.
func ShuffledShoe(seed int64, lang language.Tag, deckCount int) (*deck.Shoe, error) {
	return deck.NewShoe(randutil.New(seed), lang, deckCount)
}

// SessionConfig carries the collaborators a session needs. Zero fields get
// defaults: DefaultRules, English, a real clock, crypto seeds, shuffled
// shoes and a discarding logger.
type SessionConfig struct {
	Rules  Rules
	Lang   language.Tag
	Clock  quartz.Clock
	Seeds  randutil.SeedFunc
	Shoe   ShoeFunc
	Logger *log.Logger
}

func (c SessionConfig) withDefaults() SessionConfig {
	c.Rules = c.Rules.withDefaults()
	if c.Lang == language.Und {
		c.Lang = language.English
	}
	if c.Clock == nil {
		c.Clock = quartz.NewReal()
	}
	if c.Seeds == nil {
		c.Seeds = randutil.CryptoSeed
	}
	if c.Shoe == nil {
		c.Shoe = ShuffledShoe
	}
	if c.Logger == nil {
		c.Logger = log.New(io.Discard)
	}
	return c
}

type seat struct {
	id   string
	hand *Hand
}

// Session is one blackjack round for one chat key. All methods are safe for
// concurrent use; operations on the same session are serialized.
type Session struct {
	mu sync.Mutex

	key     string
	roundID string
	rules   Rules
	lang    language.Tag
	clock   quartz.Clock
	seeds   randutil.SeedFunc
	newShoe ShoeFunc
	logger  *log.Logger

	state State
	shoe  *deck.Shoe

	// phase mirrors state for readers that do not hold mu.
	phase atomic.Int32

	dealer  *Hand
	players []*seat
	seats   map[string]int

	// turn indexes players while in progress; -1 otherwise.
	turn int

	outcomes  []Outcome
	exhausted bool

	lastActivity time.Time

	// detached is set once the registry has dropped the session.
	detached bool
}

// NewSession creates a session in WaitingForPlayers.
func NewSession(key string, cfg SessionConfig) *Session {
	cfg = cfg.withDefaults()
	s := &Session{
		key:     key,
		roundID: newRoundID(),
		rules:   cfg.Rules,
		lang:    cfg.Lang,
		clock:   cfg.Clock,
		seeds:   cfg.Seeds,
		newShoe: cfg.Shoe,
		state:   WaitingForPlayers,
		dealer:  NewHand(),
		seats:   make(map[string]int),
		turn:    -1,
	}
	s.phase.Store(int32(WaitingForPlayers))
	s.logger = cfg.Logger.With("key", key, "round", s.roundID)
	s.lastActivity = s.clock.Now()
	return s
}

func newRoundID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Key returns the chat key of the session
func (s *Session) Key() string {
	return s.key
}

// RoundID returns the unique id of this round
func (s *Session) RoundID() string {
	return s.roundID
}

// State returns the current state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastActivity returns the time of the last successful mutation
func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// Lang returns the language tag of the table
func (s *Session) Lang() language.Tag {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lang
}

// Participants returns participant ids in turn order
func (s *Session) Participants() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, len(s.players))
	for i, p := range s.players {
		ids[i] = p.id
	}
	return ids
}

// Outcomes returns the stored settlement, nil before settlement.
func (s *Session) Outcomes() []Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneOutcomes(s.outcomes)
}

// SetLang changes the table language before the round starts.
func (s *Session) SetLang(tag language.Tag) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkAttached(); err != nil {
		return Result{}, err
	}
	if s.state != WaitingForPlayers {
		return Result{}, invalidState("cannot change language in state %s", s.state)
	}
	s.lang = tag
	s.touch()
	s.logger.Debug("Language changed", "lang", tag)
	return s.resultLocked(ActionLang, "", nil), nil
}

// Join seats a participant at the end of the turn order.
func (s *Session) Join(participantID string) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkAttached(); err != nil {
		return Result{}, err
	}
	if participantID == "" {
		return Result{}, invalidState("participant id is required")
	}
	if s.state != WaitingForPlayers {
		return Result{}, invalidState("cannot join in state %s", s.state)
	}
	if _, ok := s.seats[participantID]; ok {
		return Result{}, fmt.Errorf("%w: %s", ErrAlreadyJoined, participantID)
	}
	if len(s.players) >= s.rules.MaxPlayers {
		return Result{}, ErrTableFull
	}

	s.seats[participantID] = len(s.players)
	s.players = append(s.players, &seat{id: participantID, hand: NewHand()})
	s.touch()

	s.logger.Debug("Participant joined", "player", participantID, "players", len(s.players))
	return s.resultLocked(ActionJoin, participantID, nil), nil
}

// Start builds a fresh shoe and deals two cards to every participant and the
// dealer, one at a time in seat order with the dealer last.
func (s *Session) Start() (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkAttached(); err != nil {
		return Result{}, err
	}
	if s.state != WaitingForPlayers {
		return Result{}, invalidState("cannot start in state %s", s.state)
	}
	if len(s.players) == 0 {
		return Result{}, invalidState("cannot start without participants")
	}

	shoe, err := s.newShoe(s.seeds(), s.lang, s.rules.DeckCount)
	if err != nil {
		return Result{}, fmt.Errorf("building shoe: %w", err)
	}
	need := 2 * (len(s.players) + 1)
	if shoe.Remaining() < need {
		return Result{}, fmt.Errorf("initial deal needs %d cards, shoe holds %d: %w", need, shoe.Remaining(), ErrShoeEmpty)
	}

	s.shoe = shoe
	s.dealer = NewHand()
	for _, p := range s.players {
		p.hand = NewHand()
	}
	for round := 0; round < 2; round++ {
		for _, p := range s.players {
			s.dealTo(p.hand)
		}
		s.dealTo(s.dealer)
	}

	s.setState(InProgress)
	s.touch()
	s.logger.Info("Round started", "players", len(s.players), "decks", s.shoe.Decks(), "shoe", s.shoe.Remaining())

	s.advanceLocked(0)
	return s.resultLocked(ActionStart, "", nil), nil
}

// dealTo draws into h; only called once the shoe is known to cover the deal.
func (s *Session) dealTo(h *Hand) {
	card, err := s.shoe.Draw()
	if err != nil {
		panic(fmt.Sprintf("initial deal ran out of cards: %v", err))
	}
	h.Add(card)
}

// Hit draws one card for the participant whose turn it is. A bust or a
// total of 21 ends the turn. An exhausted shoe ends the round early and is
// reported on the result rather than as an error.
func (s *Session) Hit(participantID string) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.checkTurn(participantID)
	if err != nil {
		return Result{}, err
	}

	card, err := s.shoe.Draw()
	if errors.Is(err, deck.ErrShoeEmpty) {
		s.logger.Warn("Shoe exhausted mid-round, settling early", "player", participantID)
		s.finishLocked(true)
		s.touch()
		return s.resultLocked(ActionHit, participantID, nil), nil
	}
	if err != nil {
		return Result{}, err
	}

	p.hand.Add(card)
	s.touch()
	s.logger.Debug("Hit", "player", participantID, "card", card, "score", p.hand.Score())

	if p.hand.Score() >= blackjackScore {
		if !p.hand.IsBust() {
			p.hand.Stand()
		}
		s.advanceLocked(s.turn + 1)
	}
	return s.resultLocked(ActionHit, participantID, []deck.Card{card}), nil
}

// Stand ends the participant's turn without drawing.
func (s *Session) Stand(participantID string) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.checkTurn(participantID)
	if err != nil {
		return Result{}, err
	}

	p.hand.Stand()
	s.touch()
	s.logger.Debug("Stand", "player", participantID, "score", p.hand.Score())

	s.advanceLocked(s.turn + 1)
	return s.resultLocked(ActionStand, participantID, nil), nil
}

// Settle ends the round now: every participant still to act stands, the
// dealer plays out and the outcomes are computed. It is the same transition
// the last stand triggers, so it succeeds at most once per session.
func (s *Session) Settle() ([]Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkAttached(); err != nil {
		return nil, err
	}
	if s.state != InProgress {
		return nil, invalidState("cannot settle in state %s", s.state)
	}

	s.finishLocked(false)
	s.touch()
	return cloneOutcomes(s.outcomes), nil
}

// Cancel abandons the round without settlement.
func (s *Session) Cancel() (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkAttached(); err != nil {
		return Result{}, err
	}
	if s.state.Terminal() {
		return Result{}, invalidState("cannot cancel in state %s", s.state)
	}

	s.setState(Cancelled)
	s.turn = -1
	s.touch()
	s.logger.Info("Round cancelled")
	return s.resultLocked(ActionCancel, "", nil), nil
}

// Snapshot returns the current state without changing it.
func (s *Session) Snapshot() (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkAttached(); err != nil {
		return Result{}, err
	}
	return s.resultLocked(ActionState, "", nil), nil
}

func (s *Session) checkAttached() error {
	if s.detached {
		return fmt.Errorf("%w: session %s was closed", ErrNoActiveGame, s.key)
	}
	return nil
}

func (s *Session) checkTurn(participantID string) (*seat, error) {
	if err := s.checkAttached(); err != nil {
		return nil, err
	}
	if s.state != InProgress {
		return nil, invalidState("cannot act in state %s", s.state)
	}
	idx, ok := s.seats[participantID]
	if !ok {
		return nil, fmt.Errorf("%w: %s is not at the table", ErrNotYourTurn, participantID)
	}
	if idx != s.turn {
		return nil, fmt.Errorf("%w: waiting for %s", ErrNotYourTurn, s.players[s.turn].id)
	}
	return s.players[idx], nil
}

// advanceLocked hands the turn to the first participant at or after from
// who can still draw; when nobody is left the dealer plays and the round
// settles.
func (s *Session) advanceLocked(from int) {
	for i := from; i < len(s.players); i++ {
		if !s.players[i].hand.Done() {
			s.turn = i
			return
		}
	}
	s.finishLocked(false)
}

// detach marks the session as dropped by the registry. Callers hold s.mu.
func (s *Session) detach() {
	s.detached = true
	if !s.state.Terminal() {
		s.setState(Cancelled)
		s.turn = -1
	}
}

// setState changes state; callers hold s.mu.
func (s *Session) setState(st State) {
	s.state = st
	s.phase.Store(int32(st))
}

// terminal reports whether the session has finished, without taking s.mu.
func (s *Session) terminal() bool {
	return State(s.phase.Load()).Terminal()
}

func (s *Session) touch() {
	s.lastActivity = s.clock.Now()
}

func (s *Session) resultLocked(action Action, participantID string, drawn []deck.Card) Result {
	res := Result{
		Key:           s.key,
		RoundID:       s.roundID,
		Action:        action,
		State:         s.state,
		Lang:          s.lang.String(),
		Participant:   participantID,
		Drawn:         drawn,
		Players:       make([]HandView, len(s.players)),
		Outcomes:      cloneOutcomes(s.outcomes),
		ShoeExhausted: s.exhausted,
		Timestamp:     s.lastActivity,
	}
	for i, p := range s.players {
		res.Players[i] = viewOf(p.id, p.hand)
	}
	if s.shoe != nil {
		res.Remaining = s.shoe.Remaining()
	}

	switch s.state {
	case InProgress:
		// Only the up card is shown until the dealer plays.
		res.Dealer = viewOf(DealerID, NewHand(s.dealer.cards[0]))
		res.Dealer.Hidden = true
		res.Next = s.players[s.turn].id
	default:
		res.Dealer = viewOf(DealerID, s.dealer)
	}
	return res
}

func cloneOutcomes(in []Outcome) []Outcome {
	if in == nil {
		return nil
	}
	out := make([]Outcome, len(in))
	copy(out, in)
	return out
}
