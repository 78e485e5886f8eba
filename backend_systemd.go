package progresso

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// SystemdBackend controls systemd units through systemctl
type SystemdBackend struct {
	// UseSudo indicates whether to use sudo for systemctl commands
	UseSudo bool

	// SudoCommand is the sudo command to use (default: "sudo")
	SudoCommand string

	// SystemctlPath is the path to systemctl binary
	SystemctlPath string
}

// NewSystemdBackend creates a SystemdBackend; sudo is used when not running as root
func NewSystemdBackend() *SystemdBackend {
	return &SystemdBackend{
		UseSudo:       os.Geteuid() > 0,
		SudoCommand:   "sudo",
		SystemctlPath: "systemctl",
	}
}

// unitName appends the .service suffix when no unit type is given
func unitName(name string) string {
	if strings.Contains(name, ".") {
		return name
	}
	return name + ".service"
}

// execSystemctl executes a systemctl command with optional sudo
func (b *SystemdBackend) execSystemctl(ctx context.Context, name string, args ...string) (string, error) {
	var cmd *exec.Cmd

	fullArgs := append(args, unitName(name))

	if b.UseSudo {
		sudoArgs := append([]string{b.SystemctlPath}, fullArgs...)
		cmd = exec.CommandContext(ctx, b.SudoCommand, sudoArgs...)
	} else {
		cmd = exec.CommandContext(ctx, b.SystemctlPath, fullArgs...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%w (stderr: %s)", err, strings.TrimSpace(stderr.String()))
	}

	return stdout.String(), nil
}

// Start issues "systemctl start --no-block" so the call returns once queued
func (b *SystemdBackend) Start(ctx context.Context, name string) error {
	if _, err := b.execSystemctl(ctx, name, "start", "--no-block"); err != nil {
		return &OpError{Op: OpStart, Target: name, Err: err}
	}
	return nil
}

// Stop issues "systemctl stop --no-block"
func (b *SystemdBackend) Stop(ctx context.Context, name string) error {
	if _, err := b.execSystemctl(ctx, name, "stop", "--no-block"); err != nil {
		return &OpError{Op: OpStop, Target: name, Err: err}
	}
	return nil
}

// Query reads the unit properties and renders them as an sc-style report
func (b *SystemdBackend) Query(ctx context.Context, name string) (string, error) {
	output, err := b.execSystemctl(ctx, name, "show", "--no-pager",
		"-p", "LoadState", "-p", "ActiveState", "-p", "SubState", "-p", "MainPID")
	if err != nil {
		return "", &OpError{Op: OpQuery, Target: name, Err: err}
	}
	return renderSystemdShow(name, output), nil
}

// renderSystemdShow maps systemctl show key=value output onto a state report.
// The raw properties follow the state line.
func renderSystemdShow(name, output string) string {
	props := make(map[string]string)
	var details []string

	for _, line := range strings.Split(output, "\n") {
		key, value, ok := strings.Cut(strings.TrimSpace(line), "=")
		if !ok {
			continue
		}
		props[key] = value
		details = append(details, key+"="+value)
	}

	return stateReport(name, systemdState(props["ActiveState"], props["SubState"]), details...)
}

// systemdState maps ActiveState/SubState onto sc state names
func systemdState(active, sub string) string {
	switch active {
	case "active":
		if sub == "running" || sub == "exited" {
			return TokenRunning
		}
		return "START_PENDING"
	case "activating", "reloading":
		return "START_PENDING"
	case "deactivating":
		return "STOP_PENDING"
	case "inactive", "failed":
		return TokenStopped
	default:
		return "UNKNOWN"
	}
}
