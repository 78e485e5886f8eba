package progresso

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/juju/clock/testclock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPacer(s LoadSampler, clk *testclock.Clock, opts ...Option) *Pacer {
	return NewPacer(s, append([]Option{WithClock(clk), WithLogger(discardLogger())}, opts...)...)
}

func TestPacerReturnsImmediatelyWhenQuiet(t *testing.T) {
	clk := testclock.NewClock(testEpoch)
	s := samples(10)

	assert.Equal(t, PaceQuiet, newTestPacer(s, clk).WaitUntilQuiet(context.Background()))
	assert.Equal(t, 1, s.count())
	assert.Equal(t, testEpoch, clk.Now(), "no sleep when the first sample is quiet")
}

func TestPacerWaitsForQuietSample(t *testing.T) {
	clk := testclock.NewClock(testEpoch)
	s := samples(90, 75, 30)
	p := newTestPacer(s, clk)

	done := make(chan PaceResult, 1)
	go func() { done <- p.WaitUntilQuiet(context.Background()) }()

	assert.Equal(t, PaceQuiet, drive(t, clk, done))
	assert.Equal(t, 3, s.count())
	assert.Equal(t, 2*PollInterval, clk.Now().Sub(testEpoch))
}

func TestPacerThresholdIsExclusive(t *testing.T) {
	clk := testclock.NewClock(testEpoch)
	s := samples(LoadThreshold, 59.9)
	p := newTestPacer(s, clk)

	done := make(chan PaceResult, 1)
	go func() { done <- p.WaitUntilQuiet(context.Background()) }()

	assert.Equal(t, PaceQuiet, drive(t, clk, done))
	assert.Equal(t, 2, s.count(), "a sample equal to the threshold is not quiet")
}

func TestPacerTimesOut(t *testing.T) {
	clk := testclock.NewClock(testEpoch)
	s := samples(95)
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)
	p := newTestPacer(s, clk, WithMetrics(m))

	done := make(chan PaceResult, 1)
	go func() { done <- p.WaitUntilQuiet(context.Background()) }()

	assert.Equal(t, PaceTimeout, drive(t, clk, done))
	elapsed := clk.Now().Sub(testEpoch)
	assert.Greater(t, elapsed, LoadWaitTimeout)
	assert.LessOrEqual(t, elapsed, LoadWaitTimeout+PollInterval)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.paceWaits.WithLabelValues(PaceTimeout.String())))
	assert.Equal(t, 95.0, testutil.ToFloat64(m.cpuUtilization))
}

func TestPacerCancelledBeforeFirstSample(t *testing.T) {
	clk := testclock.NewClock(testEpoch)
	s := samples(10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Equal(t, PaceCancelled, newTestPacer(s, clk).WaitUntilQuiet(ctx))
	assert.Zero(t, s.count())
}

func TestPacerSurvivesSamplerErrors(t *testing.T) {
	clk := testclock.NewClock(testEpoch)
	s := samples(0, 20)
	s.errs = []error{errors.New("proc stat unavailable")}
	p := newTestPacer(s, clk)

	done := make(chan PaceResult, 1)
	go func() { done <- p.WaitUntilQuiet(context.Background()) }()

	assert.Equal(t, PaceQuiet, drive(t, clk, done))
	assert.Equal(t, 2, s.count())
}

func TestPacerLogsOnlySignificantChanges(t *testing.T) {
	clk := testclock.NewClock(testEpoch)
	s := samples(90, 92, 97, 94, 50)

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	p := NewPacer(s, WithClock(clk), WithLogger(logger))

	done := make(chan PaceResult, 1)
	go func() { done <- p.WaitUntilQuiet(context.Background()) }()

	assert.Equal(t, PaceQuiet, drive(t, clk, done))
	// 90 logs first, 97 moved 7 points, 50 moved 47; 92 and 94 stay quiet.
	assert.Equal(t, 3, strings.Count(buf.String(), `"msg":"cpu utilization"`))
}
