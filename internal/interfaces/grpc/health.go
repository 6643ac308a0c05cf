package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/turtacn/VisionGate/internal/inference"
	"github.com/turtacn/VisionGate/internal/infrastructure/monitoring/logging"
)

// BackendServiceName is the health service name reporting the inference
// backend. The overall ("") status carries the same value.
const BackendServiceName = "visiongate.backend"

// BackendProber reports the liveness of the inference backend.
type BackendProber interface {
	BackendStatus(ctx context.Context) inference.ProbeStatus
}

// StatusObserver is told the result of every probe.
type StatusObserver interface {
	SetBackendStatus(status inference.ProbeStatus)
}

// HealthMonitor periodically probes the backend and mirrors the result into
// a gRPC health server.
type HealthMonitor struct {
	health   *health.Server
	prober   BackendProber
	interval time.Duration
	observer StatusObserver
	logger   logging.Logger
	last     inference.ProbeStatus
}

// NewHealthMonitor creates a monitor. observer and logger may be nil.
func NewHealthMonitor(hs *health.Server, prober BackendProber, interval time.Duration, observer StatusObserver, logger logging.Logger) *HealthMonitor {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &HealthMonitor{
		health:   hs,
		prober:   prober,
		interval: interval,
		observer: observer,
		logger:   logger,
	}
}

// Run probes immediately and then every interval until ctx is done.
func (m *HealthMonitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}

// Check runs one probe and publishes its result.
func (m *HealthMonitor) Check(ctx context.Context) inference.ProbeStatus {
	st := m.prober.BackendStatus(ctx)
	if ctx.Err() != nil {
		return st
	}

	serving := healthpb.HealthCheckResponse_NOT_SERVING
	if st == inference.StatusHealthy {
		serving = healthpb.HealthCheckResponse_SERVING
	}
	m.health.SetServingStatus("", serving)
	m.health.SetServingStatus(BackendServiceName, serving)

	if m.observer != nil {
		m.observer.SetBackendStatus(st)
	}
	if st != m.last {
		m.logger.Info("backend health changed",
			logging.String("previous", string(m.last)),
			logging.String("current", string(st)))
		m.last = st
	}
	return st
}

//Personal.AI order the ending
