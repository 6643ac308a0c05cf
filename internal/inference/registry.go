package inference

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/turtacn/VisionGate/internal/config"
	"github.com/turtacn/VisionGate/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/VisionGate/pkg/errors"
)

// DefaultChangeHook is invoked after the default model has been switched.
type DefaultChangeHook func(previous, current string)

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithDefaultChangeHook registers a hook fired after every effective default
// switch. Hooks run synchronously on the caller's goroutine, after the swap.
func WithDefaultChangeHook(h DefaultChangeHook) RegistryOption {
	return func(r *Registry) {
		if h != nil {
			r.hooks = append(r.hooks, h)
		}
	}
}

// WithRegistryLogger sets the logger used by the registry.
func WithRegistryLogger(l logging.Logger) RegistryOption {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// Registry is the set of models the gateway can route to plus the current
// default. The model set is fixed at construction; only the default moves.
type Registry struct {
	order   []string
	entries map[string]ModelEntry
	current atomic.Pointer[string]
	hooks   []DefaultChangeHook
	logger  logging.Logger
}

// NewRegistry builds a registry over entries, in the given order.
func NewRegistry(entries []ModelEntry, defaultID string, opts ...RegistryOption) (*Registry, error) {
	if len(entries) == 0 {
		return nil, errors.New(errors.ErrCodeRegistryInvalid, "at least one model is required")
	}

	r := &Registry{
		order:   make([]string, 0, len(entries)),
		entries: make(map[string]ModelEntry, len(entries)),
		logger:  logging.NewNopLogger(),
	}
	for _, e := range entries {
		if e.ID == "" {
			return nil, errors.New(errors.ErrCodeRegistryInvalid, "model id must not be empty")
		}
		if _, dup := r.entries[e.ID]; dup {
			return nil, errors.New(errors.ErrCodeRegistryInvalid, "duplicate model id").WithDetail(e.ID)
		}
		if e.ConfidenceThreshold < 0 || e.ConfidenceThreshold > 1 {
			return nil, errors.New(errors.ErrCodeRegistryInvalid, "confidence threshold out of range").
				WithDetail(fmt.Sprintf("%s: %.2f", e.ID, e.ConfidenceThreshold))
		}
		r.order = append(r.order, e.ID)
		r.entries[e.ID] = e
	}
	if _, ok := r.entries[defaultID]; !ok {
		return nil, errors.New(errors.ErrCodeRegistryInvalid, "default model is not registered").WithDetail(defaultID)
	}
	id := defaultID
	r.current.Store(&id)

	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// NewRegistryFromConfig builds a registry from the models section of cfg.
func NewRegistryFromConfig(cfg *config.Config, opts ...RegistryOption) (*Registry, error) {
	entries := make([]ModelEntry, 0, len(cfg.Models))
	for _, m := range cfg.Models {
		registered, err := time.Parse(config.DateLayout, m.DateRegistered)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeRegistryInvalid, "invalid registration date").WithDetail(m.ID)
		}
		var size [2]int
		copy(size[:], m.InputSize)
		entries = append(entries, ModelEntry{
			ID:                  m.ID,
			ConfidenceThreshold: m.ConfidenceThreshold,
			InputSize:           size,
			BatchSize:           m.BatchSize,
			RegisteredAt:        registered,
		})
	}
	return NewRegistry(entries, cfg.DefaultModel, opts...)
}

// List returns the model ids in configured order. The slice is a copy.
func (r *Registry) List() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// IsAvailable reports whether id names a registered model.
func (r *Registry) IsAvailable(id string) bool {
	_, ok := r.entries[id]
	return ok
}

// Describe returns the configuration of id.
func (r *Registry) Describe(id string) (ModelEntry, error) {
	e, ok := r.entries[id]
	if !ok {
		return ModelEntry{}, errors.ModelNotFound(id)
	}
	return e, nil
}

// Default returns the current default model id.
func (r *Registry) Default() string {
	return *r.current.Load()
}

// SetDefault makes id the default model. Unknown ids leave the default unchanged.
func (r *Registry) SetDefault(id string) error {
	if !r.IsAvailable(id) {
		return errors.ModelNotFound(id)
	}
	next := id
	prev := *r.current.Swap(&next)
	if prev == id {
		return nil
	}

	r.logger.Info("default model changed",
		logging.String("previous", prev),
		logging.String("current", id))
	for _, h := range r.hooks {
		h(prev, id)
	}
	return nil
}

// Resolve returns requested when it is registered and the current default
// otherwise, including for the empty string.
func (r *Registry) Resolve(requested string) string {
	if requested != "" && r.IsAvailable(requested) {
		return requested
	}
	return r.Default()
}

//Personal.AI order the ending
