// Package logger provides structured JSON logging on top of log/slog.
//
// Every line is a single JSON object with the keys level, time, component,
// cluster, pod and message, plus an optional status_code. Log collectors
// parse these lines, so the key names and level spellings are fixed.
package logger
