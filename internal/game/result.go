package game

import (
	"fmt"
	"time"

	"github.com/lox/blackjackbot/internal/deck"
)

// DealerID identifies the dealer's hand in results.
const DealerID = "dealer"

// State is the lifecycle state of a session
type State int

const (
	WaitingForPlayers State = iota
	InProgress
	Settled
	Cancelled
)

// String returns the string representation of a state
func (s State) String() string {
	switch s {
	case WaitingForPlayers:
		return "waiting_for_players"
	case InProgress:
		return "in_progress"
	case Settled:
		return "settled"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *State) UnmarshalText(text []byte) error {
	for _, st := range []State{WaitingForPlayers, InProgress, Settled, Cancelled} {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown state %q", text)
}

// Terminal reports whether no further operations are possible
func (s State) Terminal() bool {
	return s == Settled || s == Cancelled
}

// Action names an operation on a session. The dispatcher uses the same
// values as its command kinds.
type Action string

const (
	ActionJoin   Action = "join"
	ActionStart  Action = "start"
	ActionHit    Action = "hit"
	ActionStand  Action = "stand"
	ActionCancel Action = "cancel"
	ActionState  Action = "state"
	ActionLang   Action = "lang"
)

// OutcomeKind is a participant's settlement result
type OutcomeKind int

const (
	Lose OutcomeKind = iota
	Push
	Win
)

// String returns the string representation of an outcome
func (o OutcomeKind) String() string {
	switch o {
	case Win:
		return "win"
	case Push:
		return "push"
	default:
		return "lose"
	}
}

// MarshalText implements encoding.TextMarshaler
func (o OutcomeKind) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (o *OutcomeKind) UnmarshalText(text []byte) error {
	for _, k := range []OutcomeKind{Lose, Push, Win} {
		if k.String() == string(text) {
			*o = k
			return nil
		}
	}
	return fmt.Errorf("unknown outcome %q", text)
}

// Outcome is the settlement of one participant against the dealer.
type Outcome struct {
	Participant string      `json:"participant"`
	Result      OutcomeKind `json:"result"`
	Score       int         `json:"score"`
	DealerScore int         `json:"dealerScore"`
	Blackjack   bool        `json:"blackjack"`
	Bust        bool        `json:"bust"`
}

// HandView is a read-only copy of a hand.
type HandView struct {
	ID     string      `json:"id"`
	Cards  []deck.Card `json:"cards"`
	Score  int         `json:"score"`
	Soft   bool        `json:"soft"`
	Status HandStatus  `json:"status"`
	// Hidden is set on the dealer's view while the hole card is face down.
	Hidden bool `json:"hidden,omitempty"`
}

func viewOf(id string, h *Hand) HandView {
	if h == nil {
		return HandView{ID: id, Cards: []deck.Card{}}
	}
	return HandView{
		ID:     id,
		Cards:  h.Cards(),
		Score:  h.Score(),
		Soft:   h.IsSoft(),
		Status: h.Status(),
	}
}

// Result describes what an operation did and where the session stands.
type Result struct {
	Key           string      `json:"key"`
	RoundID       string      `json:"roundId"`
	Action        Action      `json:"action"`
	State         State       `json:"state"`
	Lang          string      `json:"lang"`
	Participant   string      `json:"participant,omitempty"`
	Drawn         []deck.Card `json:"drawn,omitempty"`
	Players       []HandView  `json:"players"`
	Dealer        HandView    `json:"dealer"`
	Next          string      `json:"next,omitempty"`
	Outcomes      []Outcome   `json:"outcomes,omitempty"`
	ShoeExhausted bool        `json:"shoeExhausted,omitempty"`
	Remaining     int         `json:"remaining"`
	Timestamp     time.Time   `json:"timestamp"`
}

// Player returns the view of a participant's hand
func (r Result) Player(id string) (HandView, bool) {
	for _, p := range r.Players {
		if p.ID == id {
			return p, true
		}
	}
	return HandView{}, false
}
