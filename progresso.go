package progresso

import (
	"io/fs"
	"time"
)

// Fixed pacing and verification constants. These are not configurable.
const (
	// PollInterval is the cadence of state and load polling
	PollInterval = 1 * time.Second

	// StateWaitTimeout bounds how long a start or stop is verified
	StateWaitTimeout = 60 * time.Second

	// LoadWaitTimeout bounds how long the pacing gate waits for a quiet host
	LoadWaitTimeout = 300 * time.Second

	// LoadThreshold is the CPU utilization (percent) below which the host is quiet
	LoadThreshold = 60.0

	// LoadReportDelta is the minimum change (percentage points) that gets logged
	LoadReportDelta = 5.0
)

// State tokens searched for in raw backend query output
const (
	// TokenRunning is the token that marks a running service
	TokenRunning = "RUNNING"

	// TokenStopped is the token that marks a stopped service
	TokenStopped = "STOPPED"
)

// Artifact naming defaults
const (
	// DefaultInputFile is the target document read at run start
	DefaultInputFile = "ordem.target.xml"

	// DefaultOutputPrefix prefixes the progress artifact name
	DefaultOutputPrefix = "progresso"

	// DefaultStopFile is the file whose creation requests a stop
	DefaultStopFile = "progresso.stop"

	// OutputTimeLayout formats the run start time into the artifact name
	OutputTimeLayout = "20060102.150405"
)

// File modes
const (
	// FileMode is the mode for written artifacts
	FileMode fs.FileMode = 0o644
)

// Operation represents a control backend operation
type Operation int

const (
	// OpUnknown represents an unknown operation
	OpUnknown Operation = iota
	// OpStart issues a start request
	OpStart
	// OpStop issues a stop request
	OpStop
	// OpQuery reads the raw service state
	OpQuery
	// OpRead reads the target document
	OpRead
	// OpWrite writes the progress artifact
	OpWrite
)

// Operation string constants
const (
	opUnknownStr = "unknown"
	opStartStr   = "start"
	opStopStr    = "stop"
	opQueryStr   = "query"
	opReadStr    = "read"
	opWriteStr   = "write"
)

// String returns the string representation of an Operation
func (op Operation) String() string {
	switch op {
	case OpStart:
		return opStartStr
	case OpStop:
		return opStopStr
	case OpQuery:
		return opQueryStr
	case OpRead:
		return opReadStr
	case OpWrite:
		return opWriteStr
	default:
		return opUnknownStr
	}
}

// Byte returns the supervise control byte for this operation
func (op Operation) Byte() byte {
	switch op {
	case OpStart:
		return 'u'
	case OpStop:
		return 'd'
	default:
		return 0
	}
}
