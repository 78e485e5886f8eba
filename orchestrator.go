package progresso

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

// Orchestrator drives the services of a target document to their desired end
// state, one at a time. Each transition is issued, then verified by polling;
// the next entry waits for the host to go quiet. Progress is flushed after
// every entry.
type Orchestrator struct {
	backend  Backend
	waiter   *Waiter
	pacer    *Pacer
	recorder *Recorder
	runID    string
	options
}

// NewOrchestrator creates an Orchestrator. A nil recorder keeps progress in
// memory only.
func NewOrchestrator(backend Backend, sampler LoadSampler, recorder *Recorder, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		backend:  backend,
		recorder: recorder,
		runID:    uuid.NewString(),
		options:  newOptions(opts),
	}
	o.logger = o.logger.With("run_id", o.runID)

	shared := []Option{WithClock(o.clock), WithLogger(o.logger), WithMetrics(o.metrics)}
	o.waiter = NewWaiter(backend, shared...)
	o.pacer = NewPacer(sampler, shared...)
	return o
}

// RunID identifies this orchestrator's run in logs
func (o *Orchestrator) RunID() string {
	return o.runID
}

// Run processes doc in order and returns what was done. When a stop is
// requested the loop ends before the next entry; entries not started are not
// recorded. Backend failures and timeouts are logged, never returned. The
// only error is a failure to write the progress artifact.
//
// ctx should be the *stopper.Context that carries the run's stop signal.
func (o *Orchestrator) Run(ctx context.Context, doc *TargetDocument) (*ProgressDocument, error) {
	progress := NewProgressDocument(doc.Len())
	o.logger.Info("processing services", "count", doc.Len(), "output", o.outputPath())

	for i := range doc.Services {
		if stopRequested(ctx) {
			o.logger.Info("stop requested before processing next service", "remaining", doc.Len()-i)
			break
		}

		svc := &doc.Services[i]
		if !svc.HasName() {
			o.logger.Warn("skipping service with empty or missing name", "index", i)
			o.metrics.skipped()
			continue
		}

		o.process(ctx, svc)

		progress.Append(*svc)
		if o.recorder != nil {
			if err := o.recorder.Flush(progress); err != nil {
				o.logger.Error("writing progress failed", "error", err)
				return progress, err
			}
		}
	}

	o.logger.Info("processing complete", "processed", progress.Len(), "output", o.outputPath())
	return progress, nil
}

// process runs the phases of a single entry
func (o *Orchestrator) process(ctx context.Context, svc *ServiceTarget) {
	name := strings.TrimSpace(svc.Name)
	logger := o.logger.With("service", name)

	svc.StartProcessingAt.Settle(o.clock.Now())
	logger.Info("processing service", "end_mode", svc.EndMode)

	wasRunning := o.running(ctx, name, logger)

	now := o.clock.Now()
	svc.StopIssuedAt.Mark(now)
	svc.CompletedAt.Mark(now)

	intent := svc.Intent()
	switch intent {
	case IntentStart:
		o.ensureRunning(ctx, svc, name, wasRunning, logger)
	case IntentStop:
		o.ensureStopped(ctx, svc, name, wasRunning, logger)
	default:
		logger.Info("no end state declared; leaving service as is")
	}

	result := o.pacer.WaitUntilQuiet(ctx)
	svc.LoadStableAt.Settle(o.clock.Now())
	logger.Debug("pacing gate released", "result", result)

	o.metrics.processed(intent)
}

// running takes the baseline state. A failed query counts as not running.
func (o *Orchestrator) running(ctx context.Context, name string, logger *slog.Logger) bool {
	raw, err := o.backend.Query(ctx, name)
	if err != nil {
		logger.Warn("baseline state query failed", "error", err)
		o.metrics.backendError(OpQuery)
		return false
	}
	return isRunningReport(raw)
}

// ensureRunning issues a start unless the service already runs, then waits for
// RUNNING. CompletedAt is settled whatever the outcome.
func (o *Orchestrator) ensureRunning(ctx context.Context, svc *ServiceTarget, name string, wasRunning bool, logger *slog.Logger) {
	if wasRunning {
		logger.Info("service already running", "target", svc.EndMode)
		return
	}

	logger.Info("starting service", "target", svc.EndMode)
	if err := o.backend.Start(ctx, name); err != nil {
		logger.Warn("start request failed; verifying state anyway", "error", err)
		o.metrics.backendError(OpStart)
	}

	if o.waiter.Wait(ctx, name, TokenRunning, StateWaitTimeout) {
		logger.Info("service started")
	} else {
		logger.Warn("service did not reach running state")
	}
	svc.CompletedAt.Settle(o.clock.Now())
}

// ensureStopped issues a stop unless the service is already stopped, then
// waits for STOPPED. StopIssuedAt is settled whatever the outcome.
func (o *Orchestrator) ensureStopped(ctx context.Context, svc *ServiceTarget, name string, wasRunning bool, logger *slog.Logger) {
	if !wasRunning {
		logger.Info("service already stopped", "target", svc.EndMode)
		return
	}

	logger.Info("stopping service", "target", svc.EndMode)
	if err := o.backend.Stop(ctx, name); err != nil {
		logger.Warn("stop request failed; verifying state anyway", "error", err)
		o.metrics.backendError(OpStop)
	}

	if o.waiter.Wait(ctx, name, TokenStopped, StateWaitTimeout) {
		logger.Info("service stopped")
	} else {
		logger.Warn("service did not reach stopped state")
	}
	svc.StopIssuedAt.Settle(o.clock.Now())
}

func (o *Orchestrator) outputPath() string {
	if o.recorder == nil {
		return ""
	}
	return o.recorder.Path()
}
