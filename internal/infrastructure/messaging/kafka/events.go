package kafka

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/VisionGate/internal/infrastructure/monitoring/logging"
)

// EventDefaultModelChanged is the type of the event emitted when the default
// model is switched.
const EventDefaultModelChanged = "default_model_changed"

// RegistryEvent is the JSON payload published for registry changes.
type RegistryEvent struct {
	EventID    string    `json:"event_id"`
	Type       string    `json:"type"`
	Previous   string    `json:"previous"`
	Current    string    `json:"current"`
	OccurredAt time.Time `json:"occurred_at"`
}

// PublishObserver is told whether each event was published.
type PublishObserver interface {
	RegistryEvent(status string)
}

// Publisher is the subset of Producer the event publisher needs.
type Publisher interface {
	Publish(ctx context.Context, msg *Message) error
	Close() error
}

// RegistryEventPublisher publishes registry events from a background
// goroutine so that the admin request that triggered them never waits on
// Kafka. Events are published in the order they were enqueued; when the
// queue is full new events are dropped and logged.
type RegistryEventPublisher struct {
	producer Publisher
	topic    string
	timeout  time.Duration
	observer PublishObserver
	logger   logging.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan RegistryEvent
	done   chan struct{}
	now    func() time.Time
}

// NewRegistryEventPublisher starts the publishing goroutine.
func NewRegistryEventPublisher(p Publisher, topic string, timeout time.Duration, observer PublishObserver, logger logging.Logger) *RegistryEventPublisher {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	e := &RegistryEventPublisher{
		producer: p,
		topic:    topic,
		timeout:  timeout,
		observer: observer,
		logger:   logger,
		queue:    make(chan RegistryEvent, 64),
		done:     make(chan struct{}),
		now:      time.Now,
	}
	go e.run()
	return e
}

// DefaultModelChanged matches inference.DefaultChangeHook.
func (e *RegistryEventPublisher) DefaultModelChanged(previous, current string) {
	ev := RegistryEvent{
		EventID:    uuid.NewString(),
		Type:       EventDefaultModelChanged,
		Previous:   previous,
		Current:    current,
		OccurredAt: e.now().UTC(),
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		e.logger.Warn("registry event publisher closed, dropping event", logging.String("event_id", ev.EventID))
		e.observe("dropped")
		return
	}
	select {
	case e.queue <- ev:
	default:
		e.logger.Warn("registry event queue full, dropping event", logging.String("event_id", ev.EventID))
		e.observe("dropped")
	}
}

func (e *RegistryEventPublisher) run() {
	defer close(e.done)
	for ev := range e.queue {
		e.publish(ev)
	}
}

func (e *RegistryEventPublisher) publish(ev RegistryEvent) {
	body, err := json.Marshal(ev)
	if err != nil {
		e.logger.Error("failed to encode registry event", logging.Err(err))
		e.observe("failed")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()

	err = e.producer.Publish(ctx, &Message{
		Topic:   e.topic,
		Key:     []byte(ev.Current),
		Value:   body,
		Headers: map[string]string{"event_type": ev.Type},
	})
	if err != nil {
		e.logger.Warn("failed to publish registry event",
			logging.String("event_id", ev.EventID),
			logging.String("topic", e.topic),
			logging.Err(err))
		e.observe("failed")
		return
	}
	e.logger.Debug("registry event published", logging.String("event_id", ev.EventID))
	e.observe("published")
}

func (e *RegistryEventPublisher) observe(status string) {
	if e.observer != nil {
		e.observer.RegistryEvent(status)
	}
}

// Close stops accepting events, publishes what is queued and closes the
// producer. It waits at most until ctx is done for the queue to drain.
func (e *RegistryEventPublisher) Close(ctx context.Context) error {
	e.mu.Lock()
	if !e.closed {
		e.closed = true
		close(e.queue)
	}
	e.mu.Unlock()
	select {
	case <-e.done:
	case <-ctx.Done():
		e.logger.Warn("registry event queue not drained before shutdown")
	}
	return e.producer.Close()
}

//Personal.AI order the ending
