package progresso

import (
	"context"
	"log/slog"
	"time"

	"github.com/juju/clock"
	"vawter.tech/stopper"
)

// options holds the collaborators shared by Waiter, Pacer and Orchestrator
type options struct {
	clock   clock.Clock
	logger  *slog.Logger
	metrics *Metrics
}

// Option configures a Waiter, Pacer or Orchestrator
type Option func(*options)

// WithClock sets the clock used for timestamps, deadlines and sleeps
func WithClock(c clock.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// WithLogger sets the structured logger
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMetrics sets the metrics collectors
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

func newOptions(opts []Option) options {
	o := options{
		clock:  clock.WallClock,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// stopRequested reports whether the run should stop at this tick. A stopper
// soft stop is observed here; a cancelled context also counts.
func stopRequested(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}
	if sctx, ok := ctx.(*stopper.Context); ok {
		return sctx.IsStopping()
	}
	return false
}

// sleep waits for d on the clock. Only hard cancellation cuts it short.
func sleep(ctx context.Context, clk clock.Clock, d time.Duration) {
	select {
	case <-clk.After(d):
	case <-ctx.Done():
	}
}
