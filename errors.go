package progresso

import (
	"errors"
	"fmt"
)

// Common errors returned by progresso operations
var (
	// ErrInputRead indicates the target document could not be read
	ErrInputRead = errors.New("progresso: cannot read target document")

	// ErrOutputCreate indicates the progress artifact could not be created
	ErrOutputCreate = errors.New("progresso: cannot create progress artifact")

	// ErrOutputWrite indicates the progress artifact could not be rewritten
	ErrOutputWrite = errors.New("progresso: cannot write progress artifact")

	// ErrDecode indicates a document or status record could not be decoded
	ErrDecode = errors.New("progresso: decode")

	// ErrUnsupported indicates a backend or format is not supported
	ErrUnsupported = errors.New("progresso: unsupported")
)

// OpError represents an error from a progresso operation
type OpError struct {
	// Op is the operation that failed
	Op Operation
	// Target is the service name or file path involved in the operation
	Target string
	// Err is the underlying error
	Err error
}

// Error returns a formatted error message
func (e *OpError) Error() string {
	return fmt.Sprintf("progresso %s %q: %v", e.Op.String(), e.Target, e.Err)
}

// Unwrap returns the underlying error for error chain inspection
func (e *OpError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether err aborts a run
func IsFatal(err error) bool {
	return errors.Is(err, ErrInputRead) ||
		errors.Is(err, ErrOutputCreate) ||
		errors.Is(err, ErrOutputWrite)
}
