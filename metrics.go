package progresso

import (
	"github.com/prometheus/client_golang/prometheus"
)

// State wait outcomes used as metric labels
const (
	waitReached   = "reached"
	waitTimeout   = "timeout"
	waitCancelled = "cancelled"
)

// Metrics holds the Prometheus collectors of a run. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	entriesProcessed *prometheus.CounterVec
	entriesSkipped   prometheus.Counter
	stateWaits       *prometheus.CounterVec
	paceWaits        *prometheus.CounterVec
	backendErrors    *prometheus.CounterVec
	cpuUtilization   prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		entriesProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "progresso_entries_processed_total",
			Help: "Target entries processed, by derived action.",
		}, []string{"action"}),
		entriesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "progresso_entries_skipped_total",
			Help: "Target entries dropped for lacking a service name.",
		}),
		stateWaits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "progresso_state_waits_total",
			Help: "State transition waits, by awaited token and result.",
		}, []string{"token", "result"}),
		paceWaits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "progresso_pace_waits_total",
			Help: "Pacing gate releases, by result.",
		}, []string{"result"}),
		backendErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "progresso_backend_errors_total",
			Help: "Control backend invocation failures, by operation.",
		}, []string{"op"}),
		cpuUtilization: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "progresso_cpu_utilization_percent",
			Help: "Last sampled global CPU utilization.",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.entriesProcessed, m.entriesSkipped, m.stateWaits,
		m.paceWaits, m.backendErrors, m.cpuUtilization,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) processed(i Intent) {
	if m != nil {
		m.entriesProcessed.WithLabelValues(i.String()).Inc()
	}
}

func (m *Metrics) skipped() {
	if m != nil {
		m.entriesSkipped.Inc()
	}
}

func (m *Metrics) observeStateWait(token, result string) {
	if m != nil {
		m.stateWaits.WithLabelValues(token, result).Inc()
	}
}

func (m *Metrics) observePace(r PaceResult) {
	if m != nil {
		m.paceWaits.WithLabelValues(r.String()).Inc()
	}
}

func (m *Metrics) backendError(op Operation) {
	if m != nil {
		m.backendErrors.WithLabelValues(op.String()).Inc()
	}
}

func (m *Metrics) setCPU(v float64) {
	if m != nil {
		m.cpuUtilization.Set(v)
	}
}
