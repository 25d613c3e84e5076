package wxwork

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics receives adapter events. A nil Metrics disables collection.
type Metrics interface {
	// CacheLookup counts a metadata lookup; result is "hit", "miss" or "error".
	CacheLookup(result string)
	// RemoteRequest observes one media API call; op is "upload" or "fetch".
	RemoteRequest(op, status string, d time.Duration)
	// SkippedEntry counts a corrupt cache entry ignored during listing.
	SkippedEntry()
}

type promMetrics struct {
	lookups        *prometheus.CounterVec
	remoteRequests *prometheus.CounterVec
	remoteDuration *prometheus.HistogramVec
	skipped        prometheus.Counter
}

// NewPrometheusMetrics registers the adapter collectors with reg.
// It returns nil when reg is nil.
func NewPrometheusMetrics(reg prometheus.Registerer) Metrics {
	if reg == nil {
		return nil
	}

	return &promMetrics{
		lookups: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "wxwork_cache_lookups_total",
				Help: "Metadata cache lookups by result",
			},
			[]string{"result"},
		),
		remoteRequests: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "wxwork_remote_requests_total",
				Help: "Media API requests by operation and status",
			},
			[]string{"op", "status"},
		),
		remoteDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wxwork_remote_request_duration_seconds",
				Help:    "Duration of media API requests in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"op"},
		),
		skipped: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "wxwork_cache_skipped_entries_total",
				Help: "Corrupt metadata entries skipped while listing",
			},
		),
	}
}

func (m *promMetrics) CacheLookup(result string) {
	m.lookups.WithLabelValues(result).Inc()
}

func (m *promMetrics) RemoteRequest(op, status string, d time.Duration) {
	m.remoteRequests.WithLabelValues(op, status).Inc()
	m.remoteDuration.WithLabelValues(op).Observe(d.Seconds())
}

func (m *promMetrics) SkippedEntry() {
	m.skipped.Inc()
}

type noopMetrics struct{}

func (noopMetrics) CacheLookup(string)                          {}
func (noopMetrics) RemoteRequest(string, string, time.Duration) {}
func (noopMetrics) SkippedEntry()                               {}

func orNoop(m Metrics) Metrics {
	if m == nil {
		return noopMetrics{}
	}
	return m
}
