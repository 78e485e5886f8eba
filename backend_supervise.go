//go:build linux || darwin

package progresso

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/axondata/go-progresso/internal/unix"
)

// Supervise directory layout
const (
	// SuperviseDir is the subdirectory containing supervise control files
	SuperviseDir = "supervise"

	// ControlFile is the control socket/FIFO file name
	ControlFile = "control"

	// StatusFile is the binary status file name
	StatusFile = "status"

	// DefaultServiceDir is the default base directory of supervised services
	DefaultServiceDir = "/etc/service"
)

// Control write tuning
const (
	// DefaultDialTimeout is the default timeout for control socket connections
	DefaultDialTimeout = 2 * time.Second

	// DefaultWriteTimeout is the default timeout for control write operations
	DefaultWriteTimeout = 1 * time.Second

	// DefaultBackoffMin is the minimum backoff between control write attempts
	DefaultBackoffMin = 10 * time.Millisecond

	// DefaultBackoffMax is the maximum backoff between control write attempts
	DefaultBackoffMax = 1 * time.Second

	// DefaultMaxAttempts is the number of control write attempts
	DefaultMaxAttempts = 10
)

// SuperviseBackend controls runit or daemontools services by talking to each
// service's supervise process directly: a control byte is written to
// supervise/control and the binary supervise/status record is decoded.
// A service name is resolved to ServiceDir/<name>.
type SuperviseBackend struct {
	// ServiceDir is the base directory holding the service directories
	ServiceDir string

	// Type selects the status record layout (runit or daemontools)
	Type BackendType

	// DialTimeout is the timeout for establishing control socket connections
	DialTimeout time.Duration

	// WriteTimeout is the timeout for writing control commands
	WriteTimeout time.Duration

	// BackoffMin is the minimum duration between control write attempts
	BackoffMin time.Duration

	// BackoffMax is the maximum duration between control write attempts
	BackoffMax time.Duration

	// MaxAttempts is the number of control write attempts
	MaxAttempts int

	// mu serializes control writes
	mu sync.Mutex
}

// NewSuperviseBackend creates a SuperviseBackend rooted at serviceDir
func NewSuperviseBackend(serviceDir string, bt BackendType) (*SuperviseBackend, error) {
	if bt != BackendRunit && bt != BackendDaemontools {
		return nil, fmt.Errorf("%w: supervise backend type %v", ErrUnsupported, bt)
	}
	if serviceDir == "" {
		serviceDir = DefaultServiceDir
	}

	absPath, err := filepath.Abs(serviceDir)
	if err != nil {
		return nil, fmt.Errorf("resolving service dir: %w", err)
	}

	return &SuperviseBackend{
		ServiceDir:   absPath,
		Type:         bt,
		DialTimeout:  DefaultDialTimeout,
		WriteTimeout: DefaultWriteTimeout,
		BackoffMin:   DefaultBackoffMin,
		BackoffMax:   DefaultBackoffMax,
		MaxAttempts:  DefaultMaxAttempts,
	}, nil
}

func (b *SuperviseBackend) statusSize() int {
	if b.Type == BackendDaemontools {
		return DaemontoolsStatusSize
	}
	return RunitStatusSize
}

func (b *SuperviseBackend) superviseDir(name string) string {
	return filepath.Join(b.ServiceDir, name, SuperviseDir)
}

// send writes a single control byte to the service's control socket/FIFO,
// retrying with exponential backoff for transient failures.
func (b *SuperviseBackend) send(ctx context.Context, name string, op Operation) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	controlPath := filepath.Join(b.superviseDir(name), ControlFile)
	cmd := []byte{op.Byte()}

	var lastErr error
	backoff := b.BackoffMin

	for attempt := 0; attempt < b.MaxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return &OpError{Op: op, Target: name, Err: ctx.Err()}
			case <-time.After(backoff):
			}

			backoff *= 2
			if backoff > b.BackoffMax {
				backoff = b.BackoffMax
			}
		}

		if lastErr = b.write(controlPath, cmd); lastErr == nil {
			return nil
		}
	}

	return &OpError{Op: op, Target: name, Err: fmt.Errorf("%s: %w", controlPath, lastErr)}
}

// write tries the control socket first and falls back to the FIFO
func (b *SuperviseBackend) write(controlPath string, cmd []byte) error {
	conn, err := net.DialTimeout("unix", controlPath, b.DialTimeout)
	if err == nil {
		defer func() { _ = conn.Close() }()

		if b.WriteTimeout > 0 {
			_ = conn.SetWriteDeadline(time.Now().Add(b.WriteTimeout))
		}
		_, err = conn.Write(cmd)
		return err
	}

	file, err := unix.OpenWriteNonblock(controlPath)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	_, err = file.Write(cmd)
	return err
}

// Start sets the service to want up
func (b *SuperviseBackend) Start(ctx context.Context, name string) error {
	return b.send(ctx, name, OpStart)
}

// Stop sets the service to want down
func (b *SuperviseBackend) Stop(ctx context.Context, name string) error {
	return b.send(ctx, name, OpStop)
}

// Status reads and decodes the service's binary status record
func (b *SuperviseBackend) Status(_ context.Context, name string) (SuperviseStatus, error) {
	statusPath := filepath.Join(b.superviseDir(name), StatusFile)

	file, err := os.Open(statusPath)
	if err != nil {
		return SuperviseStatus{}, &OpError{Op: OpQuery, Target: name, Err: err}
	}
	defer func() { _ = file.Close() }()

	buf := make([]byte, b.statusSize())
	n, err := io.ReadFull(file, buf)
	if err != nil && err != io.ErrUnexpectedEOF {
		return SuperviseStatus{}, &OpError{Op: OpQuery, Target: name, Err: err}
	}

	st, err := decodeSuperviseStatus(buf[:n], b.statusSize())
	if err != nil {
		return SuperviseStatus{}, &OpError{Op: OpQuery, Target: name, Err: err}
	}
	return st, nil
}

// Query returns the decoded status as an sc-style report
func (b *SuperviseBackend) Query(ctx context.Context, name string) (string, error) {
	st, err := b.Status(ctx, name)
	if err != nil {
		return "", err
	}
	return st.Report(name), nil
}
