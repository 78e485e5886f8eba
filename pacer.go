package progresso

import (
	"context"
	"math"
)

// PaceResult describes how the pacing gate released
type PaceResult int

const (
	// PaceQuiet means a sample came in under LoadThreshold
	PaceQuiet PaceResult = iota
	// PaceTimeout means LoadWaitTimeout elapsed first
	PaceTimeout
	// PaceCancelled means a stop was requested
	PaceCancelled
)

// String returns the string representation of the result
func (r PaceResult) String() string {
	switch r {
	case PaceQuiet:
		return "quiet"
	case PaceTimeout:
		return "timeout"
	case PaceCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Pacer holds the orchestrator between transitions until the host is quiet
type Pacer struct {
	sampler LoadSampler
	options
}

// NewPacer creates a Pacer reading load from sampler
func NewPacer(sampler LoadSampler, opts ...Option) *Pacer {
	return &Pacer{
		sampler: sampler,
		options: newOptions(opts),
	}
}

// WaitUntilQuiet samples once per PollInterval and returns on the first sample
// below LoadThreshold, once LoadWaitTimeout has elapsed, or when a stop is
// requested. Nothing sleeps when the first tick already decides.
// A sample is logged only when it moved at least LoadReportDelta points from
// the last logged one.
func (p *Pacer) WaitUntilQuiet(ctx context.Context) PaceResult {
	start := p.clock.Now()
	lastLogged := math.NaN()

	for {
		if stopRequested(ctx) {
			p.logger.Info("load wait interrupted by stop request")
			p.metrics.observePace(PaceCancelled)
			return PaceCancelled
		}

		usage, err := p.sampler.Sample(ctx)
		if err != nil {
			p.logger.Warn("cpu sample failed", "error", err)
		} else {
			p.metrics.setCPU(usage)
			if math.IsNaN(lastLogged) || math.Abs(usage-lastLogged) >= LoadReportDelta {
				p.logger.Info("cpu utilization", "percent", math.Round(usage*10)/10)
				lastLogged = usage
			}
			if usage < LoadThreshold {
				p.logger.Debug("cpu below threshold", "percent", usage, "threshold", LoadThreshold)
				p.metrics.observePace(PaceQuiet)
				return PaceQuiet
			}
		}

		if elapsed := p.clock.Now().Sub(start); elapsed > LoadWaitTimeout {
			p.logger.Warn("cpu wait timed out", "elapsed", elapsed, "percent", usage)
			p.metrics.observePace(PaceTimeout)
			return PaceTimeout
		}

		sleep(ctx, p.clock, PollInterval)
	}
}
