package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "route_risk"

// Metrics holds the Prometheus counters, histograms, and gauges for the service.
type Metrics struct {
	// Remote service metrics.
	RemoteRequests *prometheus.CounterVec   // labels: op, outcome={success,transport_error,server_error,decode_error}
	RemoteDuration *prometheus.HistogramVec // labels: op
	PolicyApplied  *prometheus.CounterVec   // labels: op, policy={fallback,propagate,default}
	FallbackOnly   prometheus.Gauge

	// Assessment publishing metrics.
	AssessmentsPublished prometheus.Counter
	PublishErrors        prometheus.Counter
	PublishDuration      prometheus.Histogram
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics(true)
	prometheus.MustRegister(
		m.RemoteRequests,
		m.RemoteDuration,
		m.PolicyApplied,
		m.FallbackOnly,
		m.AssessmentsPublished,
		m.PublishErrors,
		m.PublishDuration,
	)
	return m
}

// NewUnregisteredMetrics creates Metrics that no registry exposes, for one-shot
// commands that serve no /metrics endpoint.
func NewUnregisteredMetrics() *Metrics {
	return newMetrics(true)
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics(false)
}

func newMetrics(withHelp bool) *Metrics {
	help := func(s string) string {
		if withHelp {
			return s
		}
		return ""
	}
	return &Metrics{
		RemoteRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_requests_total",
			Help:      help("Remote route service requests by operation and outcome."),
		}, []string{"op", "outcome"}),
		RemoteDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "remote_request_duration_seconds",
			Help:      help("Remote route service request duration in seconds."),
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"op"}),
		PolicyApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failure_policy_applied_total",
			Help:      help("Failed remote reads by operation and the failure policy that handled them."),
		}, []string{"op", "policy"}),
		FallbackOnly: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "fallback_only",
			Help:      help("1 when remote calls are disabled and the fallback catalog serves all reads."),
		}),
		AssessmentsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assessments_published_total",
			Help:      help("Route assessments written to the sink topic."),
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      help("Failed assessment publish runs."),
		}),
		PublishDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "publish_duration_seconds",
			Help:      help("Duration of a complete assess-and-publish run."),
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}
}
