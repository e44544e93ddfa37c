package peer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/angeloszaimis/service-a/internal/circuitbreaker"
	"github.com/angeloszaimis/service-a/internal/metrics"
	"github.com/angeloszaimis/service-a/internal/requestid"
)

// Recorder receives one observation per call.
type Recorder interface {
	ObservePeerCall(outcome string, duration time.Duration)
}

// Response is a successful peer answer. Body is guaranteed to be valid JSON.
type Response struct {
	StatusCode int
	Body       json.RawMessage
}

// Client performs the single GET against the peer. It never retries.
type Client struct {
	url        string
	httpClient *http.Client
	timeout    *time.Duration
	breaker    *circuitbreaker.CircuitBreaker
	recorder   Recorder
}

// Option configures Client behavior.
type Option func(*Client)

// WithTimeout bounds each call. Zero leaves it unbounded. It wins over the
// Timeout of a client passed with WithHTTPClient, whatever the option order.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = &d
	}
}

// WithHTTPClient sends calls through a copy of hc, typically to supply a
// tuned Transport. hc itself is never modified.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithBreaker guards calls with cb.
func WithBreaker(cb *circuitbreaker.CircuitBreaker) Option {
	return func(c *Client) {
		c.breaker = cb
	}
}

// WithRecorder reports every call outcome to r.
func WithRecorder(r Recorder) Option {
	return func(c *Client) {
		c.recorder = r
	}
}

// New creates a Client for the given peer URL.
func New(url string, opts ...Option) *Client {
	c := &Client{
		url:        url,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}

	hc := *c.httpClient
	if c.timeout != nil {
		hc.Timeout = *c.timeout
	}
	c.httpClient = &hc

	return c
}

// URL returns the peer URL.
func (c *Client) URL() string {
	return c.url
}

// Get calls the peer once. Every failure is a *Error whose Kind decides how
// the caller should answer.
func (c *Client) Get(ctx context.Context) (*Response, error) {
	if c.breaker != nil && !c.breaker.Allow() {
		c.observe(metrics.OutcomeRejected, 0)
		return nil, &Error{Kind: KindUnreachable, URL: c.url, Err: ErrCircuitOpen}
	}

	start := time.Now()
	resp, err := c.do(ctx)
	duration := time.Since(start)

	if err != nil {
		c.observe(KindOf(err).String(), duration)
		c.record(err)
		return nil, err
	}

	c.observe(metrics.OutcomeSuccess, duration)
	c.record(nil)
	return resp, nil
}

func (c *Client) do(ctx context.Context) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, &Error{Kind: KindUnexpected, URL: c.url, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if id, ok := requestid.FromContext(ctx); ok {
		req.Header.Set(requestid.Header, id)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Kind: transportKind(err), URL: c.url, Err: err}
	}
	defer res.Body.Close()

	// The peer can still stall or drop the connection after the headers.
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &Error{Kind: transportKind(err), StatusCode: res.StatusCode, URL: c.url, Err: err}
	}

	if res.StatusCode >= http.StatusBadRequest {
		return nil, &Error{Kind: KindHTTPStatus, StatusCode: res.StatusCode, URL: c.url}
	}

	if !json.Valid(body) {
		return nil, &Error{
			Kind:       KindMalformed,
			StatusCode: res.StatusCode,
			URL:        c.url,
			Err:        malformedError(body),
		}
	}

	return &Response{StatusCode: res.StatusCode, Body: body}, nil
}

// record feeds the breaker. Only failures that say the peer is unhealthy
// count: transport errors and 5xx.
func (c *Client) record(err error) {
	if c.breaker == nil {
		return
	}

	var perr *Error
	if errors.As(err, &perr) {
		switch {
		case perr.Kind == KindUnreachable:
			c.breaker.RecordFailure()
			return
		case perr.Kind == KindHTTPStatus && perr.StatusCode >= http.StatusInternalServerError:
			c.breaker.RecordFailure()
			return
		case errors.Is(perr, context.Canceled):
			// The caller went away; the peer's health is unknown.
			c.breaker.Release()
			return
		}
	}

	c.breaker.RecordSuccess()
}

// transportKind classifies a failure to exchange bytes with the peer. Only
// a caller that went away is not the peer's fault.
func transportKind(err error) Kind {
	if errors.Is(err, context.Canceled) {
		return KindUnexpected
	}
	return KindUnreachable
}

func (c *Client) observe(outcome string, duration time.Duration) {
	if c.recorder != nil {
		c.recorder.ObservePeerCall(outcome, duration)
	}
}

func malformedError(body []byte) error {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return err
	}
	return errors.New("invalid JSON body")
}
