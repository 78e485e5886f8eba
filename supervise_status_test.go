package progresso

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// statusRecord builds a supervise/status record of the given size
func statusRecord(size int, since time.Time, pid uint32, paused bool, want, term byte) []byte {
	buf := make([]byte, size)
	if !since.IsZero() {
		binary.BigEndian.PutUint64(buf[offsetTAI64Sec:], tai64Base+uint64(since.Unix()))
		binary.BigEndian.PutUint32(buf[offsetTAI64Nano:], uint32(since.Nanosecond()))
	}
	binary.LittleEndian.PutUint32(buf[offsetPID:], pid)
	if paused {
		buf[offsetPaused] = 1
	}
	buf[offsetWant] = want
	if size == RunitStatusSize {
		buf[offsetTerm] = term
		if pid > 0 {
			buf[offsetTerm+1] = 1
		}
	}
	return buf
}

func TestDecodeSuperviseStatus(t *testing.T) {
	since := time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)

	tests := []struct {
		name  string
		data  []byte
		size  int
		state SuperviseState
		pid   int
		token string
	}{
		{
			name:  "runit running",
			data:  statusRecord(RunitStatusSize, since, 1234, false, 'u', 0),
			size:  RunitStatusSize,
			state: SuperviseRunning,
			pid:   1234,
			token: TokenRunning,
		},
		{
			name:  "runit down",
			data:  statusRecord(RunitStatusSize, since, 0, false, 'd', 0),
			size:  RunitStatusSize,
			state: SuperviseDown,
			token: TokenStopped,
		},
		{
			name:  "runit wants up without process",
			data:  statusRecord(RunitStatusSize, since, 0, false, 'u', 0),
			size:  RunitStatusSize,
			state: SuperviseStarting,
			token: "START_PENDING",
		},
		{
			name:  "runit finishing",
			data:  statusRecord(RunitStatusSize, since, 0, false, 'd', 1),
			size:  RunitStatusSize,
			state: SuperviseFinishing,
			token: "STOP_PENDING",
		},
		{
			name:  "runit paused",
			data:  statusRecord(RunitStatusSize, since, 5678, true, 'u', 0),
			size:  RunitStatusSize,
			state: SupervisePaused,
			pid:   5678,
			token: "PAUSED",
		},
		{
			name:  "runit stopping",
			data:  statusRecord(RunitStatusSize, since, 99, false, 'd', 0),
			size:  RunitStatusSize,
			state: SuperviseStopping,
			pid:   99,
			token: "STOP_PENDING",
		},
		{
			name:  "daemontools running",
			data:  statusRecord(DaemontoolsStatusSize, since, 4321, false, 'u', 0),
			size:  DaemontoolsStatusSize,
			state: SuperviseRunning,
			pid:   4321,
			token: TokenRunning,
		},
		{
			name:  "daemontools down",
			data:  statusRecord(DaemontoolsStatusSize, since, 0, false, 'd', 0),
			size:  DaemontoolsStatusSize,
			state: SuperviseDown,
			token: TokenStopped,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, err := decodeSuperviseStatus(tt.data, tt.size)
			require.NoError(t, err)
			assert.Equal(t, tt.state, st.State)
			assert.Equal(t, tt.pid, st.PID)
			assert.True(t, st.Since.Equal(since), "since = %v", st.Since)
			assert.Contains(t, st.Report("svc"), "STATE              : "+tt.token)
		})
	}
}

func TestDecodeSuperviseStatusWrongSize(t *testing.T) {
	_, err := decodeSuperviseStatus(make([]byte, DaemontoolsStatusSize), RunitStatusSize)
	assert.ErrorIs(t, err, ErrDecode)
}

func TestDecodeSuperviseStatusWithoutTimestamp(t *testing.T) {
	st, err := decodeSuperviseStatus(statusRecord(RunitStatusSize, time.Time{}, 0, false, 'd', 0), RunitStatusSize)
	require.NoError(t, err)
	assert.True(t, st.Since.IsZero())
	assert.NotContains(t, st.Report("svc"), "SINCE")
}

func TestSuperviseReportsNeverConfuseTokens(t *testing.T) {
	for _, s := range []SuperviseState{SuperviseStarting, SupervisePaused, SuperviseStopping, SuperviseFinishing, SuperviseUnknown} {
		report := SuperviseStatus{State: s}.Report("svc")
		assert.NotContains(t, report, TokenRunning, s.String())
		assert.NotContains(t, report, TokenStopped, s.String())
	}
}
