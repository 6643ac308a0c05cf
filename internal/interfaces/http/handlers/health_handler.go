package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/turtacn/VisionGate/internal/inference"
)

// BackendProber reports the liveness of the inference backend.
type BackendProber interface {
	BackendStatus(ctx context.Context) inference.ProbeStatus
}

// StatusObserver is told the result of every probe made by the handler.
type StatusObserver interface {
	SetBackendStatus(status inference.ProbeStatus)
}

// HealthHandler serves /health-status and the liveness/readiness probes.
type HealthHandler struct {
	prober     BackendProber
	uptime     func() time.Duration
	serverName string
	version    string
	observer   StatusObserver
}

// NewHealthHandler creates a HealthHandler. observer may be nil.
func NewHealthHandler(prober BackendProber, uptime func() time.Duration, serverName, version string, observer StatusObserver) *HealthHandler {
	return &HealthHandler{
		prober:     prober,
		uptime:     uptime,
		serverName: serverName,
		version:    version,
		observer:   observer,
	}
}

// HealthStatusResponse is the body of GET /health-status.
type HealthStatusResponse struct {
	Status string `json:"status"`
	Server string `json:"server"`
	Uptime string `json:"uptime"`
}

// LivenessResponse is the body of GET /healthz.
type LivenessResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

// ReadinessResponse is the body of GET /readyz.
type ReadinessResponse struct {
	Status  string `json:"status"`
	Backend string `json:"backend"`
}

// HealthStatus handles GET /health-status. It always answers 200; the
// backend state is carried in the status field.
func (h *HealthHandler) HealthStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthStatusResponse{
		Status: string(h.probe(r.Context())),
		Server: h.serverName,
		Uptime: inference.FormatUptime(h.uptime()),
	})
}

// Liveness handles GET /healthz. It never touches the backend.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, LivenessResponse{
		Status:  "alive",
		Version: h.version,
		Uptime:  h.uptime().Truncate(time.Second).String(),
	})
}

// Readiness handles GET /readyz: 200 when the backend answers its ping,
// 503 otherwise.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	status := h.probe(r.Context())
	if status == inference.StatusHealthy {
		writeJSON(w, http.StatusOK, ReadinessResponse{Status: "ready", Backend: string(status)})
		return
	}
	writeJSON(w, http.StatusServiceUnavailable, ReadinessResponse{Status: "not_ready", Backend: string(status)})
}

func (h *HealthHandler) probe(ctx context.Context) inference.ProbeStatus {
	status := h.prober.BackendStatus(ctx)
	if h.observer != nil {
		h.observer.SetBackendStatus(status)
	}
	return status
}

//Personal.AI order the ending
