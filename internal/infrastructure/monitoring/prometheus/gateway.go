package prometheus

import (
	"strconv"
	"time"

	"github.com/turtacn/VisionGate/internal/inference"
)

// Bucket layouts.
var (
	DefaultHTTPDurationBuckets   = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30}
	DefaultPredictLatencyBuckets = []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000}
)

// Outcome label values.
const (
	OutcomeSuccess  = "success"
	OutcomeCacheHit = "cache_hit"
	OutcomeFailure  = "failure"
)

// GatewayMetrics holds the Prometheus series exported by the gateway.
type GatewayMetrics struct {
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	PredictTotal        CounterVec
	PredictLatency      HistogramVec
	BackendUp           GaugeVec
	DefaultModel        GaugeVec
	CacheRequests       CounterVec
	RegistryEvents      CounterVec
}

var _ inference.OutcomeRecorder = (*GatewayMetrics)(nil)

// NewGatewayMetrics registers every gateway series in c.
func NewGatewayMetrics(c MetricsCollector) *GatewayMetrics {
	return &GatewayMetrics{
		HTTPRequestsTotal: c.RegisterCounter("http_requests_total",
			"Total HTTP requests served, by method, route and status.", "method", "route", "status"),
		HTTPRequestDuration: c.RegisterHistogram("http_request_duration_seconds",
			"HTTP request latency in seconds.", DefaultHTTPDurationBuckets, "method", "route"),
		PredictTotal: c.RegisterCounter("predict_requests_total",
			"Prediction requests by resolved model and outcome.", "model", "outcome", "code"),
		PredictLatency: c.RegisterHistogram("predict_latency_milliseconds",
			"Latency of successful predictions in milliseconds.", DefaultPredictLatencyBuckets, "model"),
		BackendUp: c.RegisterGauge("backend_up",
			"1 when the last backend probe succeeded, 0 otherwise."),
		DefaultModel: c.RegisterGauge("default_model",
			"1 for the model currently used as default, 0 for the others.", "model"),
		CacheRequests: c.RegisterCounter("cache_requests_total",
			"Prediction cache lookups by model and result.", "model", "result"),
		RegistryEvents: c.RegisterCounter("registry_events_total",
			"Registry events handed to the event publisher, by status.", "status"),
	}
}

// RecordOutcome implements inference.OutcomeRecorder.
func (m *GatewayMetrics) RecordOutcome(o inference.RequestOutcome) {
	switch {
	case o.Success && o.CacheHit:
		m.PredictTotal.WithLabelValues(o.Model, OutcomeCacheHit, "").Inc()
		m.PredictLatency.WithLabelValues(o.Model).Observe(o.LatencyMs)
	case o.Success:
		m.PredictTotal.WithLabelValues(o.Model, OutcomeSuccess, "").Inc()
		m.PredictLatency.WithLabelValues(o.Model).Observe(o.LatencyMs)
	default:
		m.PredictTotal.WithLabelValues(o.Model, OutcomeFailure, o.ErrorCode).Inc()
	}
}

// ObserveHTTP records one served HTTP request.
func (m *GatewayMetrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// SetBackendStatus exports the result of a backend probe.
func (m *GatewayMetrics) SetBackendStatus(s inference.ProbeStatus) {
	if s == inference.StatusHealthy {
		m.BackendUp.WithLabelValues().Set(1)
		return
	}
	m.BackendUp.WithLabelValues().Set(0)
}

// InitDefaultModel exports the default model among models.
func (m *GatewayMetrics) InitDefaultModel(models []string, current string) {
	for _, id := range models {
		v := 0.0
		if id == current {
			v = 1
		}
		m.DefaultModel.WithLabelValues(id).Set(v)
	}
}

// DefaultModelChanged matches inference.DefaultChangeHook.
func (m *GatewayMetrics) DefaultModelChanged(previous, current string) {
	m.DefaultModel.WithLabelValues(previous).Set(0)
	m.DefaultModel.WithLabelValues(current).Set(1)
}

// CacheAccess records a cache lookup result ("hit", "miss" or "error").
func (m *GatewayMetrics) CacheAccess(model, result string) {
	m.CacheRequests.WithLabelValues(model, result).Inc()
}

// RegistryEvent records an event publish attempt ("published" or "failed").
func (m *GatewayMetrics) RegistryEvent(status string) {
	m.RegistryEvents.WithLabelValues(status).Inc()
}

//Personal.AI order the ending
