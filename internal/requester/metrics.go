package requester

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records Graph request counts and latencies. A nil *Metrics is a no-op.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewRegistry returns the registry graph metrics are registered on. The
// process-wide default registry is never touched.
func NewRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

// NewMetrics creates the graph request collectors and registers them on reg.
func NewMetrics(reg *prometheus.Registry) (*Metrics, error) {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "graph",
			Name:      "requests_total",
			Help:      "Graph API requests by method and outcome (HTTP status or transport_error).",
		}, []string{"method", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "graph",
			Name:      "request_duration_seconds",
			Help:      "Graph API request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}

	for _, c := range []prometheus.Collector{m.requests, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observe(method string, status int, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := "transport_error"
	if err == nil {
		outcome = strconv.Itoa(status)
	}
	m.requests.WithLabelValues(method, outcome).Inc()
	m.duration.WithLabelValues(method).Observe(elapsed.Seconds())
}
