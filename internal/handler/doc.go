// Package handler implements the HTTP endpoints of the service: the
// greeting, the health check and the call to the peer service.
//
// Peer failures are classified by the peer package and mapped here to a
// status and a JSON {"detail": ...} body. Only HTTP errors from the peer
// keep their status; everything else becomes 503 or 500.
package handler
