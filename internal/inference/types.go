// Package inference holds the request-routing core of the gateway: the model
// registry, the latency aggregator, the client for the inference backend and
// the router that ties them together for a single prediction request.
package inference

import (
	"context"
	"time"
)

// ModelEntry is the static configuration of one served model.
type ModelEntry struct {
	ID                  string
	ConfidenceThreshold float64
	InputSize           [2]int
	BatchSize           int
	RegisteredAt        time.Time
}

// ImagePayload is the uploaded image forwarded verbatim to the backend.
type ImagePayload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Empty reports whether the payload carries no image bytes.
func (p *ImagePayload) Empty() bool {
	return p == nil || len(p.Data) == 0
}

// Prediction is one normalised detection. Field order is part of the wire
// contract: label, confidence, bbox.
type Prediction struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	BBox       [4]int  `json:"bbox"`
}

// RawPrediction is a detection exactly as decoded from the backend body.
type RawPrediction map[string]interface{}

// PredictResponse is the result of a successful prediction request.
type PredictResponse struct {
	Predictions []Prediction `json:"predictions"`
	ModelUsed   string       `json:"model_used"`
}

// RequestOutcome describes one completed prediction request.
type RequestOutcome struct {
	Model     string
	LatencyMs float64
	Success   bool
	CacheHit  bool
	ErrorCode string
}

// ProbeStatus is the result of a backend liveness probe.
type ProbeStatus string

const (
	StatusHealthy   ProbeStatus = "Healthy"
	StatusUnhealthy ProbeStatus = "Unhealthy"
)

// MetricsSnapshot is a consistent point-in-time view of the aggregator.
type MetricsSnapshot struct {
	RequestRatePerMinute float64 `json:"request_rate_per_minute"`
	AvgLatencyMs         float64 `json:"avg_latency_ms"`
	MaxLatencyMs         float64 `json:"max_latency_ms"`
	TotalRequests        int64   `json:"total_requests"`
}

// Backend forwards images to the inference cluster and reports its liveness.
type Backend interface {
	Forward(ctx context.Context, modelID string, image *ImagePayload) ([]RawPrediction, error)
	Probe(ctx context.Context) ProbeStatus
}

// OutcomeRecorder receives every prediction outcome, success or failure.
type OutcomeRecorder interface {
	RecordOutcome(outcome RequestOutcome)
}

// PredictionCache stores normalised predictions keyed by model and image.
// Implementations must treat every internal failure as a miss.
type PredictionCache interface {
	Lookup(ctx context.Context, modelID string, image []byte) ([]Prediction, bool)
	Store(ctx context.Context, modelID string, image []byte, preds []Prediction)
}

// Clock abstracts time for the aggregator and the router.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

//Personal.AI order the ending
