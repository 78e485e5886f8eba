package progresso

import (
	"context"
	"sync"
)

// MemoryBackend simulates services in process. Start and Stop take effect
// immediately. It backs dry runs and the example harness.
type MemoryBackend struct {
	mu      sync.Mutex
	running map[string]bool
	calls   []string
}

// NewMemoryBackend creates a MemoryBackend with every service stopped
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{running: make(map[string]bool)}
}

// Set forces the simulated state of a service
func (b *MemoryBackend) Set(name string, running bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.running[name] = running
}

// Calls returns the issued operations as "op name" strings, in order
func (b *MemoryBackend) Calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.calls))
	copy(out, b.calls)
	return out
}

// Start marks the service running
func (b *MemoryBackend) Start(_ context.Context, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, OpStart.String()+" "+name)
	b.running[name] = true
	return nil
}

// Stop marks the service stopped
func (b *MemoryBackend) Stop(_ context.Context, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, OpStop.String()+" "+name)
	b.running[name] = false
	return nil
}

// Query reports the simulated state
func (b *MemoryBackend) Query(_ context.Context, name string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	state := TokenStopped
	if b.running[name] {
		state = TokenRunning
	}
	return stateReport(name, state), nil
}
