// Package metrics instruments the service with Prometheus collectors.
//
// Every route is wrapped transparently with a request counter, a latency
// histogram and an in-flight gauge, all labelled by handler. Calls to the
// peer service are counted by outcome and timed separately, and the state
// of the peer circuit breaker is exported as a gauge.
//
// Example usage:
//
//	m := metrics.New()
//	mux.Handle("GET /health", m.Instrument("/health", healthHandler))
//	mux.Handle("GET /metrics", m.Handler())
//
// The registry is private to the Metrics value, so tests can build as many
// independent instances as they need.
package metrics
