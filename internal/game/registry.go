package game

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/text/language"

	"github.com/lox/blackjackbot/internal/randutil"
)

// RegistryOption configures a Registry during creation.
type RegistryOption func(*Registry)

// WithClock sets the clock used for activity timestamps
func WithClock(clock quartz.Clock) RegistryOption {
	return func(r *Registry) { r.cfg.Clock = clock }
}

// WithRules sets the table rules for new sessions
func WithRules(rules Rules) RegistryOption {
	return func(r *Registry) { r.cfg.Rules = rules }
}

// WithSeeds sets the seed source for shoe shuffles
func WithSeeds(seeds randutil.SeedFunc) RegistryOption {
	return func(r *Registry) { r.cfg.Seeds = seeds }
}

// WithShoe sets how shoes are built for new rounds
func WithShoe(fn ShoeFunc) RegistryOption {
	return func(r *Registry) { r.cfg.Shoe = fn }
}

// WithLanguage sets the default table language for new sessions
func WithLanguage(tag language.Tag) RegistryOption {
	return func(r *Registry) { r.cfg.Lang = tag }
}

// WithLogger sets the logger
func WithLogger(logger *log.Logger) RegistryOption {
	return func(r *Registry) { r.cfg.Logger = logger }
}

// Summary holds lightweight metadata about a registered session.
type Summary struct {
	Key          string    `json:"key"`
	RoundID      string    `json:"roundId"`
	State        State     `json:"state"`
	Players      int       `json:"players"`
	LastActivity time.Time `json:"lastActivity"`
}

// Registry maps chat keys to their live session. It starts empty and needs
// no teardown.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	cfg      SessionConfig
	logger   *log.Logger
}

// NewRegistry constructs an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.cfg.Logger == nil {
		r.cfg.Logger = log.New(io.Discard)
	}
	r.logger = r.cfg.Logger.WithPrefix("registry")
	r.cfg = r.cfg.withDefaults()
	return r
}

// GetOrCreate returns the live session for key, creating one in
// WaitingForPlayers when there is none. A settled or cancelled session left
// under the key is replaced. Only the registry lock is held while the map is
// read, so a busy session never stalls lookups for other keys.
func (r *Registry) GetOrCreate(key string) *Session {
	r.mu.Lock()
	old, ok := r.sessions[key]
	if ok && !old.terminal() {
		r.mu.Unlock()
		return old
	}
	s := NewSession(key, r.cfg)
	r.sessions[key] = s
	total := len(r.sessions)
	r.mu.Unlock()

	r.logger.Debug("Created session", "key", key, "round", s.roundID, "sessions", total)
	if ok {
		// Terminal states are final, so only the detached flag changes.
		old.mu.Lock()
		old.detach()
		old.mu.Unlock()
	}
	return s
}

// Get returns the live session for key. It never creates one.
func (r *Registry) Get(key string) (*Session, error) {
	r.mu.Lock()
	s, ok := r.sessions[key]
	r.mu.Unlock()

	if !ok || s.terminal() {
		return nil, fmt.Errorf("%w: %s", ErrNoActiveGame, key)
	}
	return s, nil
}

// Remove drops the session for key, cancelling it if it was still running.
// It reports whether anything was removed.
func (r *Registry) Remove(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[key]
	if !ok {
		return false
	}
	s.mu.Lock()
	s.detach()
	s.mu.Unlock()
	delete(r.sessions, key)

	r.logger.Info("Removed session", "key", key)
	return true
}

// CleanupStale removes every session idle for longer than maxIdle, whatever
// its state, and returns how many were removed. Each session's lock is held
// while it is checked, so an operation already in flight finishes first and
// counts as activity.
func (r *Registry) CleanupStale(maxIdle time.Duration) int {
	now := r.cfg.Clock.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for key, s := range r.sessions {
		s.mu.Lock()
		idle := now.Sub(s.lastActivity)
		if idle > maxIdle {
			s.logger.Info("Reaping stale session", "idle", idle, "state", s.state)
			s.detach()
			delete(r.sessions, key)
			removed++
		}
		s.mu.Unlock()
	}
	return removed
}

// Len returns the number of registered sessions
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// List returns a snapshot of registered sessions ordered by key. Sessions
// are read after the registry lock is released.
func (r *Registry) List() []Summary {
	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.Unlock()

	summaries := make([]Summary, 0, len(sessions))
	for _, s := range sessions {
		s.mu.Lock()
		summaries = append(summaries, Summary{
			Key:          s.key,
			RoundID:      s.roundID,
			State:        s.state,
			Players:      len(s.players),
			LastActivity: s.lastActivity,
		})
		s.mu.Unlock()
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Key < summaries[j].Key })
	return summaries
}
