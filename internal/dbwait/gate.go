// Package dbwait blocks process startup until the database accepts connections.
package dbwait

import (
	"log/slog"
	"time"
)

// DefaultInterval is the pause between connection attempts.
const DefaultInterval = time.Second

// ConnectFunc attempts to obtain a live connection. A nil error means available.
type ConnectFunc func() error

// Gate polls a ConnectFunc until it succeeds. There is no retry limit and no
// cancellation; the process is expected to be killed externally if the
// database never comes up.
type Gate struct {
	interval time.Duration
	logger   *slog.Logger
	sleep    func(time.Duration)
}

// Option customizes a Gate.
type Option func(*Gate)

// WithSleep replaces time.Sleep, mostly for tests.
func WithSleep(sleep func(time.Duration)) Option {
	return func(g *Gate) {
		g.sleep = sleep
	}
}

// New creates a Gate. A non-positive interval falls back to DefaultInterval.
func New(interval time.Duration, logger *slog.Logger, opts ...Option) *Gate {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	g := &Gate{
		interval: interval,
		logger:   logger,
		sleep:    time.Sleep,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Wait blocks until connect succeeds and returns the number of attempts made.
func (g *Gate) Wait(connect ConnectFunc) int {
	g.logger.Info("waiting for database")

	attempts := 0
	for {
		attempts++
		err := connect()
		if err == nil {
			g.logger.Info("database available", "attempts", attempts)
			return attempts
		}

		g.logger.Warn("database unavailable, waiting",
			"attempt", attempts,
			"retry_in", g.interval,
			"error", err,
		)
		g.sleep(g.interval)
	}
}
