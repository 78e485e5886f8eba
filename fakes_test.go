package progresso

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
)

// reply is one scripted Query answer
type reply struct {
	out string
	err error
}

func runningReply(name string) reply { return reply{out: stateReport(name, TokenRunning)} }
func stoppedReply(name string) reply { return reply{out: stateReport(name, TokenStopped)} }

// scriptedBackend answers Query from a per-service script. The last reply of
// a script repeats. onQuery, when set, runs after every query with the
// 1-based query count of that service.
type scriptedBackend struct {
	mu       sync.Mutex
	scripts  map[string][]reply
	queries  map[string]int
	calls    []string
	startErr error
	stopErr  error
	onQuery  func(name string, n int)
}

func newScriptedBackend() *scriptedBackend {
	return &scriptedBackend{
		scripts: make(map[string][]reply),
		queries: make(map[string]int),
	}
}

func (b *scriptedBackend) script(name string, replies ...reply) *scriptedBackend {
	b.scripts[name] = replies
	return b
}

func (b *scriptedBackend) Start(_ context.Context, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, "start "+name)
	return b.startErr
}

func (b *scriptedBackend) Stop(_ context.Context, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, "stop "+name)
	return b.stopErr
}

func (b *scriptedBackend) Query(_ context.Context, name string) (string, error) {
	b.mu.Lock()
	b.queries[name]++
	n := b.queries[name]
	script := b.scripts[name]
	hook := b.onQuery
	b.mu.Unlock()

	r := stoppedReply(name)
	if len(script) > 0 {
		idx := n - 1
		if idx >= len(script) {
			idx = len(script) - 1
		}
		r = script[idx]
	}
	if hook != nil {
		hook(name, n)
	}
	return r.out, r.err
}

func (b *scriptedBackend) queryCount(name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.queries[name]
}

func (b *scriptedBackend) issued() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

// sampleSeq returns scripted CPU samples; the last one repeats
type sampleSeq struct {
	mu      sync.Mutex
	values  []float64
	errs    []error
	samples int
}

func samples(values ...float64) *sampleSeq {
	return &sampleSeq{values: values}
}

func (s *sampleSeq) Sample(context.Context) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.samples
	s.samples++
	if i < len(s.errs) && s.errs[i] != nil {
		return 0, s.errs[i]
	}
	if i >= len(s.values) {
		i = len(s.values) - 1
	}
	return s.values[i], nil
}

func (s *sampleSeq) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.samples
}

var testEpoch = time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// drive advances clk one poll interval at a time until done delivers
func drive[T any](t *testing.T, clk *testclock.Clock, done <-chan T) T {
	t.Helper()
	deadline := time.After(30 * time.Second)
	for {
		select {
		case v := <-done:
			return v
		case <-deadline:
			t.Fatal("timed out driving the test clock")
		default:
		}
		// An error only means nobody is sleeping yet (or anymore).
		_ = clk.WaitAdvance(PollInterval, 10*time.Millisecond, 1)
	}
}
