package peer

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies why a call to the peer failed.
type Kind int

const (
	// KindUnexpected covers anything not classified below.
	KindUnexpected Kind = iota
	// KindUnreachable means no HTTP response was received.
	KindUnreachable
	// KindHTTPStatus means the peer answered with a 4xx or 5xx status.
	KindHTTPStatus
	// KindMalformed means the peer answered successfully with a body that is not JSON.
	KindMalformed
)

func (k Kind) String() string {
	switch k {
	case KindUnreachable:
		return "unreachable"
	case KindHTTPStatus:
		return "http_error"
	case KindMalformed:
		return "malformed"
	default:
		return "unexpected"
	}
}

// ErrCircuitOpen is wrapped in a KindUnreachable error when the breaker
// rejects a call without contacting the peer.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// Error is the single error type returned by Client.Get.
type Error struct {
	Kind       Kind
	StatusCode int
	URL        string
	Err        error
}

func (e *Error) Error() string {
	if e.Kind == KindHTTPStatus {
		return statusError(e.StatusCode, e.URL)
	}
	if e.Err == nil {
		return e.Kind.String()
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of err, or KindUnexpected when err is not a *Error.
func KindOf(err error) Kind {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Kind
	}
	return KindUnexpected
}

// statusError renders a failed status the way operators are used to reading
// it in detail messages: "404 Client Error: Not Found for url: http://b/".
func statusError(code int, url string) string {
	class := "Server"
	if code < 500 {
		class = "Client"
	}
	return fmt.Sprintf("%d %s Error: %s for url: %s", code, class, http.StatusText(code), url)
}
