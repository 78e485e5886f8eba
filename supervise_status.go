package progresso

import (
	"encoding/binary"
	"fmt"
	"time"
)

// SuperviseState represents the state of a runit or daemontools service
type SuperviseState int

const (
	// SuperviseUnknown indicates the state could not be determined
	SuperviseUnknown SuperviseState = iota
	// SuperviseDown indicates the service is down and wants to be down
	SuperviseDown
	// SuperviseStarting indicates the service wants to be up but has no process yet
	SuperviseStarting
	// SuperviseRunning indicates the service is running and wants to be up
	SuperviseRunning
	// SupervisePaused indicates the service is paused (SIGSTOP)
	SupervisePaused
	// SuperviseStopping indicates the service is running but wants to be down
	SuperviseStopping
	// SuperviseFinishing indicates the finish script is executing
	SuperviseFinishing
)

// String returns the sc-style state name, so reports can be matched by token
func (s SuperviseState) String() string {
	switch s {
	case SuperviseDown:
		return TokenStopped
	case SuperviseStarting:
		return "START_PENDING"
	case SuperviseRunning:
		return TokenRunning
	case SupervisePaused:
		return "PAUSED"
	case SuperviseStopping, SuperviseFinishing:
		return "STOP_PENDING"
	default:
		return "UNKNOWN"
	}
}

// Supervise status record layout. Both formats share the first 18 bytes.
//
//	bytes 0-7:   TAI64 seconds (big-endian)
//	bytes 8-11:  nanoseconds (big-endian)
//	bytes 12-15: PID (little-endian)
//	byte 16:     paused flag
//	byte 17:     want flag ('u' or 'd')
//	byte 18:     term flag (runit only)
//	byte 19:     run flag (runit only)
const (
	// RunitStatusSize is the size of a runit supervise/status record
	RunitStatusSize = 20
	// DaemontoolsStatusSize is the size of a daemontools supervise/status record
	DaemontoolsStatusSize = 18

	offsetTAI64Sec  = 0
	offsetTAI64Nano = 8
	offsetPID       = 12
	offsetPaused    = 16
	offsetWant      = 17
	offsetTerm      = 18

	// tai64Base is 2^62 + 10: the TAI64 label of the Unix epoch
	tai64Base = uint64(1<<62) + 10
)

// SuperviseStatus is a decoded supervise/status record
type SuperviseStatus struct {
	// State is the inferred service state
	State SuperviseState
	// PID is the process ID (0 if not running)
	PID int
	// Since is when the service entered its current state
	Since time.Time
	// WantUp indicates the service is configured to be up
	WantUp bool
	// WantDown indicates the service is configured to be down
	WantDown bool
}

// Report renders the status as an sc-style state report
func (st SuperviseStatus) Report(name string) string {
	details := []string{fmt.Sprintf("PID                : %d", st.PID)}
	if !st.Since.IsZero() {
		details = append(details, "SINCE              : "+st.Since.UTC().Format(time.RFC3339))
	}
	return stateReport(name, st.State.String(), details...)
}

// decodeSuperviseStatus decodes a runit (20 byte) or daemontools (18 byte) record
func decodeSuperviseStatus(data []byte, size int) (SuperviseStatus, error) {
	if len(data) != size {
		return SuperviseStatus{}, fmt.Errorf("%w: expected %d status bytes, got %d", ErrDecode, size, len(data))
	}

	var st SuperviseStatus

	if sec := binary.BigEndian.Uint64(data[offsetTAI64Sec:offsetTAI64Nano]); sec > tai64Base {
		unixSec := int64(sec - tai64Base)
		if unixSec < 253402300800 { // year 10000
			nano := binary.BigEndian.Uint32(data[offsetTAI64Nano:offsetPID])
			st.Since = time.Unix(unixSec, int64(nano))
		}
	}

	st.PID = int(binary.LittleEndian.Uint32(data[offsetPID:offsetPaused]))
	st.WantUp = data[offsetWant] == 'u'
	st.WantDown = data[offsetWant] == 'd'

	finishing := size == RunitStatusSize && data[offsetTerm] != 0
	paused := data[offsetPaused] != 0
	running := st.PID > 0

	switch {
	case !running && finishing:
		st.State = SuperviseFinishing
	case !running && st.WantUp:
		st.State = SuperviseStarting
	case !running:
		st.State = SuperviseDown
	case paused:
		st.State = SupervisePaused
	case st.WantDown:
		st.State = SuperviseStopping
	default:
		st.State = SuperviseRunning
	}

	return st, nil
}
