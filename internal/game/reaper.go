package game

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
)

const (
	// DefaultSweepInterval is how often the reaper sweeps the registry.
	DefaultSweepInterval = 5 * time.Minute
	// DefaultMaxIdle is how long a session may sit untouched.
	DefaultMaxIdle = 5 * time.Minute
)

// Reaper periodically drops sessions that have been idle for too long.
type Reaper struct {
	registry *Registry
	clock    quartz.Clock
	interval time.Duration
	maxIdle  time.Duration
	logger   *log.Logger
}

// NewReaper creates a reaper for registry. Non-positive durations fall back
// to the defaults.
func NewReaper(registry *Registry, clock quartz.Clock, interval, maxIdle time.Duration, logger *log.Logger) *Reaper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if maxIdle <= 0 {
		maxIdle = DefaultMaxIdle
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Reaper{
		registry: registry,
		clock:    clock,
		interval: interval,
		maxIdle:  maxIdle,
		logger:   logger.WithPrefix("reaper"),
	}
}

// Sweep runs one cleanup pass and returns how many sessions were removed.
func (r *Reaper) Sweep() int {
	removed := r.registry.CleanupStale(r.maxIdle)
	if removed > 0 {
		r.logger.Info("Removed stale sessions", "removed", removed, "remaining", r.registry.Len())
	} else {
		r.logger.Debug("Sweep found nothing to remove", "sessions", r.registry.Len())
	}
	return removed
}

// Start schedules sweeps every interval until ctx is done. The ticker is
// registered before Start returns.
func (r *Reaper) Start(ctx context.Context) quartz.Waiter {
	r.logger.Info("Starting reaper", "interval", r.interval, "maxIdle", r.maxIdle)
	return r.clock.TickerFunc(ctx, r.interval, func() error {
		r.Sweep()
		return nil
	}, "reaper")
}

// Run sweeps until ctx is cancelled.
func (r *Reaper) Run(ctx context.Context) error {
	err := r.Start(ctx).Wait()
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}
