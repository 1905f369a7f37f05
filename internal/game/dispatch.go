package game

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"golang.org/x/text/language"
)

// Command is a trigger from the outside world: an action by a participant
// in the chat identified by Key.
type Command struct {
	Kind        Action `json:"kind"`
	Key         string `json:"key"`
	Participant string `json:"participant,omitempty"`
	// Lang is the BCP 47 tag for ActionLang.
	Lang string `json:"lang,omitempty"`
}

// OutcomeRecorder receives every settled round, e.g. a statistics store.
type OutcomeRecorder interface {
	RecordOutcomes(ctx context.Context, res Result) error
}

type handlerFunc func(ctx context.Context, cmd Command) (Result, error)

// Dispatcher routes commands to session operations through a lookup table.
type Dispatcher struct {
	registry *Registry
	recorder OutcomeRecorder
	logger   *log.Logger
	handlers map[Action]handlerFunc
}

// NewDispatcher creates a dispatcher over registry. recorder may be nil.
func NewDispatcher(registry *Registry, recorder OutcomeRecorder, logger *log.Logger) *Dispatcher {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	d := &Dispatcher{
		registry: registry,
		recorder: recorder,
		logger:   logger.WithPrefix("dispatch"),
	}
	d.handlers = map[Action]handlerFunc{
		ActionJoin:   d.create(func(s *Session, c Command) (Result, error) { return s.Join(c.Participant) }),
		ActionLang:   d.setLang,
		ActionStart:  d.lookup(func(s *Session, _ Command) (Result, error) { return s.Start() }),
		ActionHit:    d.lookup(func(s *Session, c Command) (Result, error) { return s.Hit(c.Participant) }),
		ActionStand:  d.lookup(func(s *Session, c Command) (Result, error) { return s.Stand(c.Participant) }),
		ActionCancel: d.lookup(func(s *Session, _ Command) (Result, error) { return s.Cancel() }),
		ActionState:  d.lookup(func(s *Session, _ Command) (Result, error) { return s.Snapshot() }),
	}
	return d
}

// Dispatch runs cmd and returns the session's result.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd Command) (Result, error) {
	handler, ok := d.handlers[cmd.Kind]
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Kind)
	}
	if cmd.Key == "" {
		return Result{}, fmt.Errorf("%w: command has no key", ErrNoActiveGame)
	}

	res, err := handler(ctx, cmd)
	if err != nil {
		d.logger.Debug("Command rejected", "kind", cmd.Kind, "key", cmd.Key, "player", cmd.Participant, "error", err)
		return Result{}, err
	}

	if res.State == Settled && cmd.Kind != ActionState && d.recorder != nil {
		if err := d.recorder.RecordOutcomes(ctx, res); err != nil {
			d.logger.Warn("Failed to record outcomes", "key", cmd.Key, "round", res.RoundID, "error", err)
		}
	}
	return res, nil
}

// create wraps an operation that creates the session on demand. A session
// reaped between lookup and the operation is replaced once.
func (d *Dispatcher) create(op func(*Session, Command) (Result, error)) handlerFunc {
	return func(_ context.Context, cmd Command) (Result, error) {
		res, err := op(d.registry.GetOrCreate(cmd.Key), cmd)
		if errors.Is(err, ErrNoActiveGame) {
			res, err = op(d.registry.GetOrCreate(cmd.Key), cmd)
		}
		return res, err
	}
}

func (d *Dispatcher) setLang(ctx context.Context, cmd Command) (Result, error) {
	tag, err := language.Parse(cmd.Lang)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownLanguage, cmd.Lang)
	}
	return d.create(func(s *Session, _ Command) (Result, error) { return s.SetLang(tag) })(ctx, cmd)
}

// lookup wraps an operation that must not create a session.
func (d *Dispatcher) lookup(op func(*Session, Command) (Result, error)) handlerFunc {
	return func(_ context.Context, cmd Command) (Result, error) {
		s, err := d.registry.Get(cmd.Key)
		if err != nil {
			return Result{}, err
		}
		return op(s, cmd)
	}
}
