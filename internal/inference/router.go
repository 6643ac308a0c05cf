package inference

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/turtacn/VisionGate/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/VisionGate/pkg/errors"
)

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithOutcomeRecorder receives every outcome, including failures.
func WithOutcomeRecorder(rec OutcomeRecorder) RouterOption {
	return func(r *Router) {
		if rec != nil {
			r.recorders = append(r.recorders, rec)
		}
	}
}

// WithPredictionCache enables the prediction cache.
func WithPredictionCache(c PredictionCache) RouterOption {
	return func(r *Router) { r.cache = c }
}

// WithRouterLogger sets the logger.
func WithRouterLogger(l logging.Logger) RouterOption {
	return func(r *Router) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithRouterClock replaces the clock used for latency measurement.
func WithRouterClock(c Clock) RouterOption {
	return func(r *Router) {
		if c != nil {
			r.clock = c
		}
	}
}

// Router handles a single prediction request end to end: validate the image,
// resolve the model, forward to the backend, record the outcome and reshape
// the detections.
type Router struct {
	registry  *Registry
	backend   Backend
	metrics   *Aggregator
	recorders []OutcomeRecorder
	cache     PredictionCache
	logger    logging.Logger
	clock     Clock
}

// NewRouter wires a router over its collaborators.
func NewRouter(registry *Registry, backend Backend, metrics *Aggregator, opts ...RouterOption) *Router {
	r := &Router{
		registry: registry,
		backend:  backend,
		metrics:  metrics,
		logger:   logging.NewNopLogger(),
		clock:    systemClock{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Registry returns the model registry the router resolves against.
func (r *Router) Registry() *Registry { return r.registry }

// Metrics returns the aggregator the router records into.
func (r *Router) Metrics() *Aggregator { return r.metrics }

// Predict runs one prediction. An unknown or empty requestedModel falls back
// to the current default model. The aggregator is updated exactly once on
// success and never on failure.
func (r *Router) Predict(ctx context.Context, requestedModel string, image *ImagePayload) (*PredictResponse, error) {
	if image.Empty() {
		return nil, errors.MissingImage()
	}

	model := r.registry.Resolve(requestedModel)
	log := r.logger.With(logging.String("model", model))
	if requestedModel != "" && requestedModel != model {
		log.Debug("requested model unavailable, using default", logging.String("requested", requestedModel))
	}

	if r.cache != nil {
		start := r.clock.Now()
		if preds, ok := r.cache.Lookup(ctx, model, image.Data); ok {
			latency := elapsedMs(start, r.clock.Now())
			r.metrics.RecordSuccess(latency)
			r.record(RequestOutcome{Model: model, LatencyMs: latency, Success: true, CacheHit: true})
			log.Debug("prediction served from cache", logging.Float64("latency_ms", latency))
			return &PredictResponse{Predictions: preds, ModelUsed: model}, nil
		}
	}

	start := r.clock.Now()
	raw, err := r.backend.Forward(ctx, model, image)
	latency := elapsedMs(start, r.clock.Now())
	if err != nil {
		r.fail(model, latency, err)
		return nil, err
	}

	preds, err := normalize(raw)
	if err != nil {
		err = errors.BackendUnavailable(DetailMalformed, err)
		r.fail(model, latency, err)
		return nil, err
	}

	r.metrics.RecordSuccess(latency)
	r.record(RequestOutcome{Model: model, LatencyMs: latency, Success: true})
	log.Info("prediction served",
		logging.Float64("latency_ms", latency),
		logging.Int("predictions", len(preds)))

	if r.cache != nil {
		r.cache.Store(ctx, model, image.Data, preds)
	}
	return &PredictResponse{Predictions: preds, ModelUsed: model}, nil
}

// BackendStatus probes the backend.
func (r *Router) BackendStatus(ctx context.Context) ProbeStatus {
	return r.backend.Probe(ctx)
}

func (r *Router) fail(model string, latency float64, err error) {
	code := errors.GetCode(err)
	r.record(RequestOutcome{Model: model, LatencyMs: latency, Success: false, ErrorCode: code.String()})
	r.logger.Warn("prediction failed",
		logging.String("model", model),
		logging.String("code", code.String()),
		logging.Err(err))
}

func (r *Router) record(o RequestOutcome) {
	for _, rec := range r.recorders {
		rec.RecordOutcome(o)
	}
}

func elapsedMs(start, end time.Time) float64 {
	ms := float64(end.Sub(start)) / float64(time.Millisecond)
	return round2(ms)
}

// normalize reshapes raw detections into the canonical label/confidence/bbox
// form. A detection without a string label, with a non-numeric confidence
// outside [0, 1] or with a bbox other than four numbers is rejected.
func normalize(raw []RawPrediction) ([]Prediction, error) {
	out := make([]Prediction, 0, len(raw))
	for i, p := range raw {
		label, ok := p["label"].(string)
		if !ok {
			return nil, fmt.Errorf("prediction %d: label missing or not a string", i)
		}

		conf, ok := p["confidence"].(float64)
		if !ok || math.IsNaN(conf) || conf < 0 || conf > 1 {
			return nil, fmt.Errorf("prediction %d: confidence missing or outside [0, 1]", i)
		}

		coords, ok := p["bbox"].([]interface{})
		if !ok || len(coords) != 4 {
			return nil, fmt.Errorf("prediction %d: bbox must hold four numbers", i)
		}
		var box [4]int
		for j, c := range coords {
			f, ok := c.(float64)
			if !ok {
				return nil, fmt.Errorf("prediction %d: bbox[%d] is not a number", i, j)
			}
			box[j] = int(f)
		}

		out = append(out, Prediction{Label: label, Confidence: conf, BBox: box})
	}
	return out, nil
}

//Personal.AI order the ending
