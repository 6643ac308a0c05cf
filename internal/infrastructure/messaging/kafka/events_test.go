package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statusLog struct {
	mu       sync.Mutex
	statuses []string
}

func (s *statusLog) RegistryEvent(status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses = append(s.statuses, status)
}

func (s *statusLog) all() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.statuses...)
}

func TestRegistryEventPublisher_DefaultModelChanged(t *testing.T) {
	w := &fakeWriter{}
	obs := &statusLog{}
	pub := NewRegistryEventPublisher(NewProducerWithWriter(w, ProducerConfig{}, nil), "visiongate.registry.events", time.Second, obs, nil)
	fixed := time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)
	pub.now = func() time.Time { return fixed }

	pub.DefaultModelChanged("model_0", "model_2")
	require.NoError(t, pub.Close(context.Background()))

	msgs := w.written()
	require.Len(t, msgs, 1)
	assert.Equal(t, "visiongate.registry.events", msgs[0].Topic)
	assert.Equal(t, []byte("model_2"), msgs[0].Key)

	var ev RegistryEvent
	require.NoError(t, json.Unmarshal(msgs[0].Value, &ev))
	assert.NotEmpty(t, ev.EventID)
	assert.Equal(t, EventDefaultModelChanged, ev.Type)
	assert.Equal(t, "model_0", ev.Previous)
	assert.Equal(t, "model_2", ev.Current)
	assert.True(t, fixed.Equal(ev.OccurredAt))

	assert.Equal(t, []string{"published"}, obs.all())
	assert.True(t, w.closed)
}

func TestRegistryEventPublisher_PreservesOrder(t *testing.T) {
	w := &fakeWriter{}
	pub := NewRegistryEventPublisher(NewProducerWithWriter(w, ProducerConfig{}, nil), "t", time.Second, nil, nil)

	pub.DefaultModelChanged("model_0", "model_1")
	pub.DefaultModelChanged("model_1", "model_2")
	require.NoError(t, pub.Close(context.Background()))

	msgs := w.written()
	require.Len(t, msgs, 2)
	assert.Equal(t, []byte("model_1"), msgs[0].Key)
	assert.Equal(t, []byte("model_2"), msgs[1].Key)
}

func TestRegistryEventPublisher_FailureIsObserved(t *testing.T) {
	w := &fakeWriter{err: errors.New("no leader")}
	obs := &statusLog{}
	pub := NewRegistryEventPublisher(NewProducerWithWriter(w, ProducerConfig{}, nil), "t", time.Second, obs, nil)

	pub.DefaultModelChanged("model_0", "model_1")
	require.NoError(t, pub.Close(context.Background()))

	assert.Equal(t, []string{"failed"}, obs.all())
	assert.Empty(t, w.written())
}

func TestRegistryEventPublisher_DropsAfterClose(t *testing.T) {
	w := &fakeWriter{}
	obs := &statusLog{}
	pub := NewRegistryEventPublisher(NewProducerWithWriter(w, ProducerConfig{}, nil), "t", time.Second, obs, nil)
	require.NoError(t, pub.Close(context.Background()))

	assert.NotPanics(t, func() { pub.DefaultModelChanged("model_0", "model_1") })
	assert.Equal(t, []string{"dropped"}, obs.all())
}

//Personal.AI order the ending
