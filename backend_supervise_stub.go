//go:build !linux && !darwin

package progresso

import (
	"context"
	"fmt"
)

// SuperviseBackend is not available on this platform
type SuperviseBackend struct{}

// NewSuperviseBackend returns ErrUnsupported on this platform
func NewSuperviseBackend(_ string, bt BackendType) (*SuperviseBackend, error) {
	return nil, fmt.Errorf("%w: %v backend on this platform", ErrUnsupported, bt)
}

// Start is not supported on this platform
func (b *SuperviseBackend) Start(_ context.Context, name string) error {
	return &OpError{Op: OpStart, Target: name, Err: ErrUnsupported}
}

// Stop is not supported on this platform
func (b *SuperviseBackend) Stop(_ context.Context, name string) error {
	return &OpError{Op: OpStop, Target: name, Err: ErrUnsupported}
}

// Query is not supported on this platform
func (b *SuperviseBackend) Query(_ context.Context, name string) (string, error) {
	return "", &OpError{Op: OpQuery, Target: name, Err: ErrUnsupported}
}
