package main

import (
	"log/slog"
	"net/http"

	"github.com/angeloszaimis/service-a/internal/handler"
	"github.com/angeloszaimis/service-a/internal/httpserver"
	"github.com/angeloszaimis/service-a/internal/metrics"
	"github.com/angeloszaimis/service-a/internal/requestid"
)

func setupRouter(serviceHandler *handler.ServiceHandler, m *metrics.Metrics, log *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /{$}", m.Instrument("/", http.HandlerFunc(serviceHandler.Hello)))
	mux.Handle("GET /health", m.Instrument("/health", http.HandlerFunc(serviceHandler.Health)))
	mux.Handle("GET /call-service-b", m.Instrument("/call-service-b", http.HandlerFunc(serviceHandler.CallServiceB)))
	mux.Handle("GET /metrics", m.Handler())

	for _, path := range []string{"/{$}", "/health", "/call-service-b", "/metrics"} {
		mux.HandleFunc(path, handler.MethodNotAllowed)
	}
	mux.HandleFunc("/", handler.NotFound)

	return httpserver.Chain(mux,
		requestid.Middleware,
		httpserver.Recover(log),
	)
}
