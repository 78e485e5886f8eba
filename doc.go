// Package progresso drives host services to a declared end state, one at a
// time, and records how each transition went.
//
// A run reads a TargetDocument, an ordered list of services with their
// desired end mode, and hands it to an Orchestrator:
//
//	doc, err := progresso.LoadTargets("ordem.target.xml", progresso.LoadOptions{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	backend, _ := progresso.NewBackend(progresso.BackendSystemd, progresso.BackendConfig{})
//	recorder := progresso.NewRecorder(".", "", progresso.FormatXML, time.Now())
//	if err := recorder.Create(); err != nil {
//	    log.Fatal(err)
//	}
//
//	orch := progresso.NewOrchestrator(backend, progresso.NewCPUSampler(), recorder)
//	progress, err := orch.Run(ctx, doc)
//
// For every entry the orchestrator takes a baseline state, issues a start or
// stop when the service is not already where it should be, verifies the
// transition with a Waiter, and then holds on a Pacer until global CPU
// utilization drops below LoadThreshold. The progress artifact is rewritten
// after each entry, so a crash loses at most the entry in flight.
//
// # Backends
//
// A Backend issues start and stop requests and returns a free-text state
// report. Verification is a case-insensitive substring search for
// TokenRunning or TokenStopped in that report. The sc backend returns sc's own
// output; the systemd, runit, daemontools and memory backends render an
// sc-style report so the same tokens apply.
//
// # Stopping
//
// Run observes a stop request at every poll tick. Pass the *stopper.Context
// that owns the run: a soft stop (Stop with a grace period) lets the current
// poll finish, while cancellation of the underlying context also cuts sleeps
// short. Entries not yet started are left out of the progress document.
//
// # Checkpoints
//
// Each entry carries four Checkpoint timestamps. A checkpoint is marked
// provisionally when its phase is entered and settled when the phase exits;
// Final reports which of the two a value is.
package progresso
