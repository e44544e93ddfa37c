package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Attribute keys of the log line contract consumed by the log collectors.
const (
	KeyTime       = "time"
	KeyLevel      = "level"
	KeyMessage    = "message"
	KeyComponent  = "component"
	KeyCluster    = "cluster"
	KeyPod        = "pod"
	KeyStatusCode = "status_code"
)

// Identity is bound to every line a logger emits.
type Identity struct {
	Component string
	Cluster   string
	Pod       string
}

// New returns a JSON logger writing one object per line to stdout.
func New(lvl string, identity Identity) *slog.Logger {
	return NewWithWriter(os.Stdout, lvl, identity)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, lvl string, identity Identity) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:       parseLevel(lvl),
		ReplaceAttr: replaceAttr,
	}

	return slog.New(slog.NewJSONHandler(w, opts)).With(
		slog.String(KeyComponent, identity.Component),
		slog.String(KeyCluster, identity.Cluster),
		slog.String(KeyPod, identity.Pod),
	)
}

// StatusCode is the optional status_code attribute.
func StatusCode(code int) slog.Attr {
	return slog.Int(KeyStatusCode, code)
}

func replaceAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return a
	}

	switch a.Key {
	case slog.TimeKey:
		return slog.String(KeyTime, a.Value.Time().UTC().Format(time.RFC3339Nano))
	case slog.LevelKey:
		return slog.String(KeyLevel, levelName(a.Value.Any()))
	case slog.MessageKey:
		return slog.String(KeyMessage, a.Value.String())
	}

	return a
}

func levelName(v any) string {
	level, ok := v.(slog.Level)
	if !ok {
		return "info"
	}

	switch {
	case level >= slog.LevelError:
		return "error"
	case level >= slog.LevelWarn:
		return "warning"
	case level >= slog.LevelInfo:
		return "info"
	default:
		return "debug"
	}
}

func parseLevel(level string) slog.Level {

	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
