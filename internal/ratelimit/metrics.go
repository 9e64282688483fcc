package ratelimit

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects orchestrator counters. A nil *Metrics disables
// collection; every method is safe to call on a nil receiver.
type Metrics struct {
	// Attempts counts request attempts handed to the transport.
	Attempts *prometheus.CounterVec
	// Throttled counts 429 responses observed.
	Throttled *prometheus.CounterVec
	// TransientFailures counts attempts that failed transiently:
	// connection-level errors and 5xx responses.
	TransientFailures *prometheus.CounterVec
	// QuotaWait observes time spent waiting for a quota window to reset.
	QuotaWait *prometheus.HistogramVec
}

// NewMetrics creates unregistered collectors labeled by endpoint key.
func NewMetrics() *Metrics {
	return &Metrics{
		Attempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mimecast_request_attempts_total",
				Help: "Total request attempts sent to the API",
			},
			[]string{"endpoint"},
		),
		Throttled: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mimecast_throttled_total",
				Help: "Total 429 responses received from the API",
			},
			[]string{"endpoint"},
		),
		TransientFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mimecast_transient_failures_total",
				Help: "Total transient request failures (connection errors and 5xx responses)",
			},
			[]string{"endpoint"},
		),
		QuotaWait: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mimecast_quota_wait_seconds",
				Help:    "Time spent waiting for a quota window to reset",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
	}
}

// Register registers all collectors with r.
func (m *Metrics) Register(r prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		m.Attempts, m.Throttled, m.TransientFailures, m.QuotaWait,
	} {
		if err := r.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) attempt(endpoint string) {
	if m == nil {
		return
	}
	m.Attempts.WithLabelValues(endpoint).Inc()
}

func (m *Metrics) throttled(endpoint string) {
	if m == nil {
		return
	}
	m.Throttled.WithLabelValues(endpoint).Inc()
}

func (m *Metrics) transientFailure(endpoint string) {
	if m == nil {
		return
	}
	m.TransientFailures.WithLabelValues(endpoint).Inc()
}

func (m *Metrics) quotaWait(endpoint string, d time.Duration) {
	if m == nil {
		return
	}
	m.QuotaWait.WithLabelValues(endpoint).Observe(d.Seconds())
}
