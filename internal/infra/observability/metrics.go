package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Outcome labels recorded for every backend call.
const (
	OutcomeSuccess   = "success"
	OutcomeRejected  = "rejected"
	OutcomeDenied    = "denied"
	OutcomeTooLarge  = "too_large"
	OutcomeTransport = "transport"
	OutcomeNoSession = "no_session"
)

// Metrics holds all Prometheus metrics for the console.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	backendDuration *prometheus.HistogramVec
	backendCalls    *prometheus.CounterVec
	forcedLogouts   prometheus.Counter
	pollerTicks     *prometheus.CounterVec
	unread          prometheus.Gauge
	validationFails *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// console metrics in it. A private registry lets tests call NewMetrics
// repeatedly without "duplicate collector" panics.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		backendDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "console_backend_request_duration_seconds",
				Help:    "Duration of backend calls by resource.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"resource"},
		),
		backendCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "console_backend_requests_total",
				Help: "Backend calls by outcome.",
			},
			[]string{"outcome"},
		),
		forcedLogouts: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "console_forced_logouts_total",
				Help: "Sessions cleared after a 401/403 answer.",
			},
		),
		pollerTicks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "console_notification_polls_total",
				Help: "Notification poller ticks by result.",
			},
			[]string{"result"},
		),
		unread: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "console_notifications_unread",
				Help: "Unread notifications at the last successful poll.",
			},
		),
		validationFails: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "console_validation_failures_total",
				Help: "Writes rejected locally before reaching the backend.",
			},
			[]string{"resource"},
		),
	}
}

// ObserveBackendCall records one gateway call.
func (m *Metrics) ObserveBackendCall(resource, outcome string, d time.Duration) {
	m.backendDuration.WithLabelValues(resource).Observe(d.Seconds())
	m.backendCalls.WithLabelValues(outcome).Inc()
}

// IncrForcedLogout counts a session dropped by the gateway.
func (m *Metrics) IncrForcedLogout() {
	m.forcedLogouts.Inc()
}

// RecordPoll records a poller tick ("ok", "error" or "skipped") and, on
// success, the unread count.
func (m *Metrics) RecordPoll(result string, unread int) {
	m.pollerTicks.WithLabelValues(result).Inc()
	if result == "ok" {
		m.unread.Set(float64(unread))
	}
}

// IncrValidationFailure counts a draft rejected by local validation.
func (m *Metrics) IncrValidationFailure(resource string) {
	m.validationFails.WithLabelValues(resource).Inc()
}

// Snapshot is a point-in-time read of the main counters, served by the
// view API next to the Prometheus exposition.
type Snapshot struct {
	BackendCalls  map[string]float64 `json:"backendCalls"`
	ForcedLogouts float64            `json:"forcedLogouts"`
	Polls         map[string]float64 `json:"polls"`
	Unread        float64            `json:"unread"`
}

// Snapshot gathers current counter values.
func (m *Metrics) Snapshot() Snapshot {
	s := Snapshot{
		BackendCalls: make(map[string]float64),
		Polls:        make(map[string]float64),
	}
	for _, o := range []string{OutcomeSuccess, OutcomeRejected, OutcomeDenied, OutcomeTooLarge, OutcomeTransport, OutcomeNoSession} {
		s.BackendCalls[o] = getCounterValue(m.backendCalls, o)
	}
	for _, r := range []string{"ok", "error", "skipped"} {
		s.Polls[r] = getCounterValue(m.pollerTicks, r)
	}
	s.ForcedLogouts = metricValue(m.forcedLogouts)
	s.Unread = metricValue(m.unread)
	return s
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	return metricValue(cv.WithLabelValues(label))
}

func metricValue(c prometheus.Metric) float64 {
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		return 0
	}
	switch {
	case m.Counter != nil && m.Counter.Value != nil:
		return *m.Counter.Value
	case m.Gauge != nil && m.Gauge.Value != nil:
		return *m.Gauge.Value
	}
	return 0
}
