package inference

import (
	"fmt"
	"math"
	"sync"
	"time"
)

// AggregatorOption configures an Aggregator.
type AggregatorOption func(*Aggregator)

// WithClock replaces the wall clock, for tests.
func WithClock(c Clock) AggregatorOption {
	return func(a *Aggregator) {
		if c != nil {
			a.clock = c
		}
	}
}

// Aggregator accumulates latency samples of successful prediction requests.
// One RWMutex guards all fields so that a Snapshot never mixes the state of
// two different updates.
type Aggregator struct {
	mu      sync.RWMutex
	total   int64
	samples []float64
	sum     float64
	max     float64

	started time.Time
	clock   Clock
}

// NewAggregator returns an empty aggregator whose start time is now.
func NewAggregator(opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{clock: systemClock{}}
	for _, opt := range opts {
		opt(a)
	}
	a.started = a.clock.Now()
	return a
}

// RecordSuccess records one successful request. Negative latencies are
// clamped to zero.
func (a *Aggregator) RecordSuccess(latencyMs float64) {
	if latencyMs < 0 || math.IsNaN(latencyMs) {
		latencyMs = 0
	}

	a.mu.Lock()
	a.total++
	a.samples = append(a.samples, latencyMs)
	a.sum += latencyMs
	if latencyMs > a.max {
		a.max = latencyMs
	}
	a.mu.Unlock()
}

// Snapshot returns the derived statistics.
//
// While less than one whole minute has elapsed since start, the request rate
// is the raw request count rather than a per-minute rate.
func (a *Aggregator) Snapshot() MetricsSnapshot {
	now := a.clock.Now()

	a.mu.RLock()
	total := a.total
	n := len(a.samples)
	sum := a.sum
	maxLatency := a.max
	a.mu.RUnlock()

	snap := MetricsSnapshot{
		TotalRequests: total,
		MaxLatencyMs:  round2(maxLatency),
	}
	if n > 0 {
		snap.AvgLatencyMs = round2(sum / float64(n))
	}

	elapsed := now.Sub(a.started)
	if elapsed < time.Minute {
		snap.RequestRatePerMinute = float64(total)
	} else {
		snap.RequestRatePerMinute = round2(float64(total) / elapsed.Minutes())
	}
	return snap
}

// Samples returns a copy of the recorded latency samples, oldest first.
func (a *Aggregator) Samples() []float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]float64, len(a.samples))
	copy(out, a.samples)
	return out
}

// StartedAt returns the aggregator's start time.
func (a *Aggregator) StartedAt() time.Time {
	return a.started
}

// Uptime returns the time elapsed since start.
func (a *Aggregator) Uptime() time.Duration {
	return a.clock.Now().Sub(a.started)
}

// FormatUptime renders d as "<d> days, <h> hours, <m> minutes".
func FormatUptime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	days := int64(d / (24 * time.Hour))
	hours := int64((d % (24 * time.Hour)) / time.Hour)
	minutes := int64((d % time.Hour) / time.Minute)
	return fmt.Sprintf("%d days, %d hours, %d minutes", days, hours, minutes)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

//Personal.AI order the ending
