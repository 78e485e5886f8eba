package progresso

import (
	"context"
	"fmt"
	"runtime"
	"strings"
)

// Backend is the control capability every service adapter implements.
// Start and Stop are fire-and-forget: their error is informational only and
// the outcome is judged by polling Query.
type Backend interface {
	// Start issues a start request for the named service
	Start(ctx context.Context, name string) error
	// Stop issues a stop request for the named service
	Stop(ctx context.Context, name string) error
	// Query returns the backend's raw, free-text state report for the service
	Query(ctx context.Context, name string) (string, error)
}

// BackendType represents the kind of control backend
type BackendType int

const (
	// BackendUnknown represents an unknown backend
	BackendUnknown BackendType = iota
	// BackendSc drives the Windows service control manager through sc
	BackendSc
	// BackendSystemd drives systemd units through systemctl
	BackendSystemd
	// BackendRunit drives runit supervise directories
	BackendRunit
	// BackendDaemontools drives daemontools supervise directories
	BackendDaemontools
	// BackendMemory simulates services in process
	BackendMemory
)

// BackendType string constants
const (
	backendUnknownStr     = "unknown"
	backendScStr          = "sc"
	backendSystemdStr     = "systemd"
	backendRunitStr       = "runit"
	backendDaemontoolsStr = "daemontools"
	backendMemoryStr      = "memory"
)

// String returns the string representation of BackendType
func (bt BackendType) String() string {
	switch bt {
	case BackendSc:
		return backendScStr
	case BackendSystemd:
		return backendSystemdStr
	case BackendRunit:
		return backendRunitStr
	case BackendDaemontools:
		return backendDaemontoolsStr
	case BackendMemory:
		return backendMemoryStr
	case BackendUnknown:
		fallthrough
	default:
		return backendUnknownStr
	}
}

// ParseBackendType maps a configuration string to a BackendType
func ParseBackendType(s string) (BackendType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case backendScStr:
		return BackendSc, nil
	case backendSystemdStr:
		return BackendSystemd, nil
	case backendRunitStr:
		return BackendRunit, nil
	case backendDaemontoolsStr:
		return BackendDaemontools, nil
	case backendMemoryStr:
		return BackendMemory, nil
	default:
		return BackendUnknown, fmt.Errorf("%w: backend %q", ErrUnsupported, s)
	}
}

// DefaultBackendType returns the native backend for the running platform
func DefaultBackendType() BackendType {
	if runtime.GOOS == "windows" {
		return BackendSc
	}
	return BackendSystemd
}

// BackendConfig carries the adapter-specific settings used by NewBackend
type BackendConfig struct {
	// ServiceDir is the base directory holding supervise service directories
	ServiceDir string
	// UseSudo runs systemctl through sudo
	UseSudo bool
	// SudoCommand is the sudo binary
	SudoCommand string
	// SystemctlPath is the systemctl binary
	SystemctlPath string
	// ScPath is the sc binary
	ScPath string
}

// NewBackend creates a Backend of the requested type
func NewBackend(bt BackendType, cfg BackendConfig) (Backend, error) {
	switch bt {
	case BackendSc:
		b := NewScBackend()
		if cfg.ScPath != "" {
			b.ScPath = cfg.ScPath
		}
		return b, nil
	case BackendSystemd:
		b := NewSystemdBackend()
		b.UseSudo = cfg.UseSudo
		if cfg.SudoCommand != "" {
			b.SudoCommand = cfg.SudoCommand
		}
		if cfg.SystemctlPath != "" {
			b.SystemctlPath = cfg.SystemctlPath
		}
		return b, nil
	case BackendRunit, BackendDaemontools:
		b, err := NewSuperviseBackend(cfg.ServiceDir, bt)
		if err != nil {
			return nil, err
		}
		return b, nil
	case BackendMemory:
		return NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("%w: backend type %v", ErrUnsupported, bt)
	}
}

// stateReport renders an sc-style report so that state tokens can be found
// by substring search regardless of the backend.
func stateReport(name, state string, details ...string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "SERVICE_NAME: %s\n", name)
	fmt.Fprintf(&b, "        STATE              : %s\n", strings.ToUpper(state))
	for _, d := range details {
		fmt.Fprintf(&b, "        %s\n", d)
	}
	return b.String()
}

// isRunningReport reports whether raw backend output describes a running service
func isRunningReport(raw string) bool {
	return containsFold(raw, TokenRunning)
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
