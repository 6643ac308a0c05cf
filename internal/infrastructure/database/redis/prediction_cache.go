package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	stderrors "errors"
	"time"

	"github.com/turtacn/VisionGate/internal/inference"
	"github.com/turtacn/VisionGate/internal/infrastructure/monitoring/logging"
)

// Cache lookup results reported to the observer.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// CacheObserver is notified of every lookup result.
type CacheObserver interface {
	CacheAccess(model, result string)
}

// PredictionCache stores normalised predictions keyed by model and the
// SHA-256 of the image bytes. Redis failures are logged and reported as
// misses so that a cache outage never fails a prediction.
type PredictionCache struct {
	cache    Cache
	ttl      time.Duration
	timeout  time.Duration
	observer CacheObserver
	logger   logging.Logger
}

var _ inference.PredictionCache = (*PredictionCache)(nil)

// NewPredictionCache wraps cache. timeout bounds each Redis round trip.
func NewPredictionCache(cache Cache, ttl, timeout time.Duration, observer CacheObserver, log logging.Logger) *PredictionCache {
	if log == nil {
		log = logging.NewNopLogger()
	}
	if timeout <= 0 {
		timeout = 250 * time.Millisecond
	}
	return &PredictionCache{cache: cache, ttl: ttl, timeout: timeout, observer: observer, logger: log}
}

// PredictionKey returns the cache key of (model, image).
func PredictionKey(model string, image []byte) string {
	sum := sha256.Sum256(image)
	return "predict:" + model + ":" + hex.EncodeToString(sum[:])
}

func (p *PredictionCache) Lookup(ctx context.Context, model string, image []byte) ([]inference.Prediction, bool) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var preds []inference.Prediction
	err := p.cache.Get(ctx, PredictionKey(model, image), &preds)
	switch {
	case err == nil:
		p.observe(model, CacheHit)
		if preds == nil {
			preds = []inference.Prediction{}
		}
		return preds, true
	case stderrors.Is(err, ErrCacheMiss):
		p.observe(model, CacheMiss)
	default:
		p.observe(model, CacheError)
		p.logger.Warn("prediction cache lookup failed", logging.String("model", model), logging.Err(err))
	}
	return nil, false
}

func (p *PredictionCache) Store(ctx context.Context, model string, image []byte, preds []inference.Prediction) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.cache.Set(ctx, PredictionKey(model, image), preds, p.ttl); err != nil {
		p.logger.Warn("prediction cache store failed", logging.String("model", model), logging.Err(err))
	}
}

func (p *PredictionCache) observe(model, result string) {
	if p.observer != nil {
		p.observer.CacheAccess(model, result)
	}
}

//Personal.AI order the ending
