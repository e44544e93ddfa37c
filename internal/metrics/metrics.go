package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Peer call outcomes, used as the outcome label.
const (
	OutcomeSuccess     = "success"
	OutcomeUnreachable = "unreachable"
	OutcomeHTTPError   = "http_error"
	OutcomeMalformed   = "malformed"
	OutcomeUnexpected  = "unexpected"
	OutcomeRejected    = "circuit_open"
)

type Metrics struct {
	registry *prometheus.Registry

	requests     *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	inFlight     prometheus.Gauge
	peerRequests *prometheus.CounterVec
	peerDuration prometheus.Histogram
	peerCircuit  prometheus.Gauge
}

// New builds a registry holding the HTTP, peer and runtime collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of requests by handler, method and status.",
		}, []string{"handler", "method", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latency of HTTP requests by handler and method.",
			Buckets: prometheus.DefBuckets,
		}, []string{"handler", "method"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_requests_in_progress",
			Help: "Number of HTTP requests being served.",
		}),
		peerRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "peer_requests_total",
			Help: "Calls to the peer service by outcome.",
		}, []string{"outcome"}),
		peerDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "peer_request_duration_seconds",
			Help:    "Latency of calls to the peer service.",
			Buckets: prometheus.DefBuckets,
		}),
		peerCircuit: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "peer_circuit_state",
			Help: "Circuit breaker state for the peer service (0 closed, 1 open, 2 half-open).",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.duration,
		m.inFlight,
		m.peerRequests,
		m.peerDuration,
		m.peerCircuit,
	)

	return m
}

// Instrument wraps next so every request it serves is counted and timed
// under the given handler label.
func (m *Metrics) Instrument(handler string, next http.Handler) http.Handler {
	labels := prometheus.Labels{"handler": handler}

	return promhttp.InstrumentHandlerInFlight(m.inFlight,
		promhttp.InstrumentHandlerDuration(m.duration.MustCurryWith(labels),
			promhttp.InstrumentHandlerCounter(m.requests.MustCurryWith(labels), next),
		),
	)
}

// ObservePeerCall records one outbound call.
func (m *Metrics) ObservePeerCall(outcome string, duration time.Duration) {
	m.peerRequests.WithLabelValues(outcome).Inc()
	if outcome != OutcomeRejected {
		m.peerDuration.Observe(duration.Seconds())
	}
}

// SetCircuitState exports the breaker state as a number.
func (m *Metrics) SetCircuitState(state int) {
	m.peerCircuit.Set(float64(state))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
