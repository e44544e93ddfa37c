package handler

import (
	"encoding/json"
	"net/http"
)

type GreetingResponse struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Cluster string `json:"cluster"`
	Pod     string `json:"pod"`
}

// ProxyEnvelope wraps a successful peer answer. Data is the peer body as
// received.
type ProxyEnvelope struct {
	Status   string          `json:"status"`
	Code     int             `json:"code"`
	Data     json.RawMessage `json:"data"`
	Metadata ProxyMetadata   `json:"metadata"`
}

type ProxyMetadata struct {
	CalledService string `json:"called_service"`
	CallerCluster string `json:"caller_cluster"`
	CallerPod     string `json:"caller_pod"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, ErrorResponse{Detail: detail})
}
