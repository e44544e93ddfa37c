package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/angeloszaimis/service-a/internal/peer"
	"github.com/angeloszaimis/service-a/pkg/logger"
)

const (
	ServiceName       = "A"
	CalledServiceName = "B"
)

// PeerCaller is the outbound side of /call-service-b.
type PeerCaller interface {
	Get(ctx context.Context) (*peer.Response, error)
	URL() string
}

type ServiceHandler struct {
	logger  *slog.Logger
	peer    PeerCaller
	cluster string
	pod     string
}

func NewServiceHandler(logger *slog.Logger, caller PeerCaller, cluster, pod string) *ServiceHandler {
	return &ServiceHandler{
		logger:  logger,
		peer:    caller,
		cluster: cluster,
		pod:     pod,
	}
}

// Hello serves GET /.
func (h *ServiceHandler) Hello(w http.ResponseWriter, r *http.Request) {
	h.logger.Info(
		fmt.Sprintf("Responding from Service A in cluster '%s' (pod: %s).", h.cluster, h.pod),
		logger.StatusCode(http.StatusOK))

	writeJSON(w, http.StatusOK, GreetingResponse{
		Message: fmt.Sprintf("Hello from Service A in %s!", h.cluster),
	})
}

// Health serves GET /health. It must not touch the peer.
func (h *ServiceHandler) Health(w http.ResponseWriter, r *http.Request) {
	// The placeholders are emitted literally; collectors match on this text.
	h.logger.Info("Health check called from cluster '{CLUSTER_NAME}' (pod: {POD_NAME}).",
		logger.StatusCode(http.StatusOK))

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Service: ServiceName,
		Cluster: h.cluster,
		Pod:     h.pod,
	})
}

// CallServiceB serves GET /call-service-b.
func (h *ServiceHandler) CallServiceB(w http.ResponseWriter, r *http.Request) {
	h.logger.Info(fmt.Sprintf("Attempting to call Service B from cluster '%s' (pod: %s) at URL: %s",
		h.cluster, h.pod, h.peer.URL()))

	resp, err := h.peer.Get(r.Context())
	if err != nil {
		h.failPeerCall(w, err)
		return
	}

	h.logger.Info("Successful response from Service B.", logger.StatusCode(resp.StatusCode))

	writeJSON(w, http.StatusOK, ProxyEnvelope{
		Status: "success",
		Code:   resp.StatusCode,
		Data:   resp.Body,
		Metadata: ProxyMetadata{
			CalledService: CalledServiceName,
			CallerCluster: h.cluster,
			CallerPod:     h.pod,
		},
	})
}

func (h *ServiceHandler) failPeerCall(w http.ResponseWriter, err error) {
	var perr *peer.Error
	if !errors.As(err, &perr) {
		perr = &peer.Error{Kind: peer.KindUnexpected, Err: err}
	}

	switch perr.Kind {
	case peer.KindUnreachable:
		h.logger.Error(fmt.Sprintf("Error connecting to Service B at %s from cluster '%s' (pod: %s): %v",
			h.peer.URL(), h.cluster, h.pod, perr))
		writeError(w, http.StatusServiceUnavailable,
			fmt.Sprintf("Could not connect to Service B: %v", perr))

	case peer.KindHTTPStatus:
		h.logger.Error(fmt.Sprintf("HTTP error calling Service B (status code: %d) from cluster '%s' (pod: %s): %v",
			perr.StatusCode, h.cluster, h.pod, perr),
			logger.StatusCode(perr.StatusCode))
		writeError(w, perr.StatusCode,
			fmt.Sprintf("Error calling Service B: %v", perr))

	case peer.KindMalformed:
		h.logger.Error(fmt.Sprintf("Error decoding the JSON response from Service B from cluster '%s' (pod: %s): %v",
			h.cluster, h.pod, perr))
		writeError(w, http.StatusInternalServerError, "Error processing the response from Service B")

	default:
		h.logger.Error(fmt.Sprintf("Unexpected error calling Service B from cluster '%s' (pod: %s): %v",
			h.cluster, h.pod, perr))
		writeError(w, http.StatusInternalServerError, "Unexpected error calling Service B")
	}
}

// NotFound answers paths no route claims.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "Not Found")
}

// MethodNotAllowed answers known paths requested with a method other than GET.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Allow", http.MethodGet)
	writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
}
