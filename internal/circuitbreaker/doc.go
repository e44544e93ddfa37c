// Package circuitbreaker implements the circuit breaker pattern for the
// outbound call to the peer service.
//
// A circuit breaker stops hammering a peer that keeps failing. It has three
// states:
//
//   - CLOSED: Normal operation, calls pass through
//   - OPEN: Peer failing, calls fail fast
//   - HALF-OPEN: One probe call decides whether to close again
//
// Usage:
//
//	cb := circuitbreaker.NewCircuitBreaker(5, 30*time.Second)
//	if cb.Allow() {
//	    // Make request...
//	    if err != nil {
//	        cb.RecordFailure()
//	    } else {
//	        cb.RecordSuccess()
//	    }
//	}
//
// A threshold of zero disables the breaker entirely.
package circuitbreaker
