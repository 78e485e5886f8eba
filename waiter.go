package progresso

import (
	"context"
	"time"
)

// Waiter polls a Backend until a service's raw state report mentions a token
type Waiter struct {
	backend Backend
	options
}

// NewWaiter creates a Waiter polling backend once per PollInterval
func NewWaiter(backend Backend, opts ...Option) *Waiter {
	return &Waiter{
		backend: backend,
		options: newOptions(opts),
	}
}

// Wait polls Query(name) until the output contains token (case-insensitive
// substring), the deadline passes, or a stop is requested. Cancellation is
// checked before every poll, including the first. Query errors count as a
// non-matching poll.
func (w *Waiter) Wait(ctx context.Context, name, token string, deadline time.Duration) bool {
	start := w.clock.Now()
	logger := w.logger.With("service", name, "token", token)

	for polls := 1; ; polls++ {
		if stopRequested(ctx) {
			logger.Info("state wait interrupted by stop request", "polls", polls-1)
			w.metrics.observeStateWait(token, waitCancelled)
			return false
		}
		if elapsed := w.clock.Now().Sub(start); elapsed >= deadline {
			logger.Warn("state wait timed out", "elapsed", elapsed, "deadline", deadline)
			w.metrics.observeStateWait(token, waitTimeout)
			return false
		}

		raw, err := w.backend.Query(ctx, name)
		switch {
		case err != nil:
			logger.Debug("state query failed", "poll", polls, "error", err)
			w.metrics.backendError(OpQuery)
		case containsFold(raw, token):
			logger.Debug("state reached", "poll", polls, "elapsed", w.clock.Now().Sub(start))
			w.metrics.observeStateWait(token, waitReached)
			return true
		}

		sleep(ctx, w.clock, PollInterval)
	}
}
