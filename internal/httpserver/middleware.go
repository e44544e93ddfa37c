package httpserver

import (
	"fmt"
	"log/slog"
	"net/http"
)

// Middleware decorates an http.Handler.
type Middleware func(http.Handler) http.Handler

// Chain applies middlewares so the first one listed is the outermost.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// Recover turns a panicking handler into a 500 with a JSON detail body and
// an error log line. If the handler had already started the response, the
// status can no longer change, so the connection is aborted instead.
// http.ErrAbortHandler is re-raised untouched.
func Recover(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tw := &trackingWriter{ResponseWriter: w}

			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				if tw.status != 0 {
					logger.Error(fmt.Sprintf("Unhandled error serving %s %s after the response started: %v", r.Method, r.URL.Path, rec),
						slog.Int("status_code", tw.status))
					panic(http.ErrAbortHandler)
				}

				logger.Error(fmt.Sprintf("Unhandled error serving %s %s: %v", r.Method, r.URL.Path, rec),
					slog.Int("status_code", http.StatusInternalServerError))

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"detail":"Internal Server Error"}` + "\n"))
			}()

			next.ServeHTTP(tw, r)
		})
	}
}

// trackingWriter remembers the status once the response has started.
type trackingWriter struct {
	http.ResponseWriter
	status int
}

func (t *trackingWriter) WriteHeader(code int) {
	if t.status == 0 && code >= http.StatusOK {
		t.status = code
	}
	t.ResponseWriter.WriteHeader(code)
}

func (t *trackingWriter) Write(b []byte) (int, error) {
	if t.status == 0 {
		t.status = http.StatusOK
	}
	return t.ResponseWriter.Write(b)
}

func (t *trackingWriter) Flush() {
	if f, ok := t.ResponseWriter.(http.Flusher); ok {
		if t.status == 0 {
			t.status = http.StatusOK
		}
		f.Flush()
	}
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (t *trackingWriter) Unwrap() http.ResponseWriter {
	return t.ResponseWriter
}
