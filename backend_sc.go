package progresso

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// ScBackend controls Windows services through the sc command.
// Query returns sc's own output, which carries "STATE : 4 RUNNING" style lines.
type ScBackend struct {
	// ScPath is the path to the sc binary
	ScPath string
}

// NewScBackend creates an ScBackend using sc from PATH
func NewScBackend() *ScBackend {
	return &ScBackend{ScPath: "sc"}
}

// execSc runs sc with the given verb against the named service
func (b *ScBackend) execSc(ctx context.Context, op Operation, verb, name string) (string, error) {
	cmd := exec.CommandContext(ctx, b.ScPath, verb, name)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return stdout.String(), &OpError{
			Op:     op,
			Target: name,
			Err:    fmt.Errorf("%w (stdout: %s, stderr: %s)", err, bytes.TrimSpace(stdout.Bytes()), bytes.TrimSpace(stderr.Bytes())),
		}
	}
	return stdout.String(), nil
}

// Start issues "sc start"
func (b *ScBackend) Start(ctx context.Context, name string) error {
	_, err := b.execSc(ctx, OpStart, "start", name)
	return err
}

// Stop issues "sc stop"
func (b *ScBackend) Stop(ctx context.Context, name string) error {
	_, err := b.execSc(ctx, OpStop, "stop", name)
	return err
}

// Query returns the output of "sc query"
func (b *ScBackend) Query(ctx context.Context, name string) (string, error) {
	return b.execSc(ctx, OpQuery, "query", name)
}
