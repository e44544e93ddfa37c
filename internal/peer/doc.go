// Package peer calls the downstream service and classifies the outcome.
//
// A call either yields a Response whose body is valid JSON, or a *Error
// whose Kind tells the caller which status policy applies:
//
//   - KindUnreachable: no response at all (connection refused, DNS, timeout,
//     open circuit)
//   - KindHTTPStatus: the peer answered 4xx or 5xx; StatusCode carries it
//   - KindMalformed: the peer answered successfully but the body is not JSON
//   - KindUnexpected: everything else
//
// Calls are never retried.
package peer
