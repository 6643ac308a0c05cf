package inference

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/VisionGate/internal/config"
	"github.com/turtacn/VisionGate/internal/testutil"
	"github.com/turtacn/VisionGate/pkg/errors"
)

func testEntries() []ModelEntry {
	reg := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	return []ModelEntry{
		{ID: "model_0", ConfidenceThreshold: 0.60, InputSize: [2]int{640, 640}, BatchSize: 16, RegisteredAt: reg},
		{ID: "model_1", ConfidenceThreshold: 0.40, InputSize: [2]int{640, 640}, BatchSize: 16, RegisteredAt: reg},
		{ID: "model_2", ConfidenceThreshold: 0.50, InputSize: [2]int{640, 640}, BatchSize: 16, RegisteredAt: reg},
	}
}

func newTestRegistry(t *testing.T, opts ...RegistryOption) *Registry {
	t.Helper()
	r, err := NewRegistry(testEntries(), "model_0", opts...)
	require.NoError(t, err)
	return r
}

func TestNewRegistry_Validation(t *testing.T) {
	_, err := NewRegistry(nil, "model_0")
	assert.True(t, errors.IsCode(err, errors.ErrCodeRegistryInvalid))

	dup := append(testEntries(), ModelEntry{ID: "model_0"})
	_, err = NewRegistry(dup, "model_0")
	assert.True(t, errors.IsCode(err, errors.ErrCodeRegistryInvalid))

	bad := testEntries()
	bad[1].ConfidenceThreshold = 1.2
	_, err = NewRegistry(bad, "model_0")
	assert.True(t, errors.IsCode(err, errors.ErrCodeRegistryInvalid))

	_, err = NewRegistry(testEntries(), "model_9")
	assert.True(t, errors.IsCode(err, errors.ErrCodeRegistryInvalid))
}

func TestNewRegistryFromConfig(t *testing.T) {
	r, err := NewRegistryFromConfig(config.Default())
	require.NoError(t, err)

	assert.Equal(t, []string{"model_0", "model_1", "model_2"}, r.List())
	assert.Equal(t, "model_0", r.Default())

	e, err := r.Describe("model_2")
	require.NoError(t, err)
	assert.Equal(t, 0.50, e.ConfidenceThreshold)
	assert.Equal(t, [2]int{640, 640}, e.InputSize)
	assert.Equal(t, 16, e.BatchSize)
	assert.Equal(t, "2025-03-15", e.RegisteredAt.Format(config.DateLayout))
}

func TestRegistry_ListIsStableCopy(t *testing.T) {
	r := newTestRegistry(t)
	first := r.List()
	first[0] = "mutated"
	assert.Equal(t, []string{"model_0", "model_1", "model_2"}, r.List())
}

func TestRegistry_Describe(t *testing.T) {
	r := newTestRegistry(t)

	e, err := r.Describe("model_1")
	require.NoError(t, err)
	assert.Equal(t, 0.40, e.ConfidenceThreshold)

	_, err = r.Describe("model_x")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeModelNotFound))
}

func TestRegistry_Resolve(t *testing.T) {
	r := newTestRegistry(t)

	assert.Equal(t, "model_1", r.Resolve("model_1"))
	assert.Equal(t, "model_0", r.Resolve("model_9"))
	assert.Equal(t, "model_0", r.Resolve(""))

	require.NoError(t, r.SetDefault("model_2"))
	assert.Equal(t, "model_2", r.Resolve("nope"))
}

func TestRegistry_SetDefault(t *testing.T) {
	var calls [][2]string
	r := newTestRegistry(t, WithDefaultChangeHook(func(prev, cur string) {
		calls = append(calls, [2]string{prev, cur})
	}))

	require.NoError(t, r.SetDefault("model_1"))
	assert.Equal(t, "model_1", r.Default())

	err := r.SetDefault("model_9")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
	assert.Equal(t, "model_1", r.Default(), "unknown id must leave the default unchanged")

	require.NoError(t, r.SetDefault("model_1"))

	assert.Equal(t, [][2]string{{"model_0", "model_1"}}, calls)
}

func TestRegistry_ConcurrentSetDefaultAndResolve(t *testing.T) {
	r := newTestRegistry(t)
	ids := r.List()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = r.SetDefault(ids[i%len(ids)])
		}(i)
		go func() {
			defer wg.Done()
			assert.True(t, r.IsAvailable(r.Resolve("unknown")))
		}()
	}
	wg.Wait()
	assert.True(t, r.IsAvailable(r.Default()))
}

func TestSetDefault_LogsOnlyEffectiveChanges(t *testing.T) {
	logger := testutil.NewMockLogger()
	r := newTestRegistry(t, WithRegistryLogger(logger))

	require.NoError(t, r.SetDefault("model_0"))
	assert.Zero(t, logger.Count("info"))

	require.NoError(t, r.SetDefault("model_2"))
	entry, ok := logger.Find("info", "default model changed")
	require.True(t, ok)
	prev, _ := entry.Field("previous")
	cur, _ := entry.Field("current")
	assert.Equal(t, "model_0", prev)
	assert.Equal(t, "model_2", cur)

	require.Error(t, r.SetDefault("nope"))
	assert.Equal(t, 1, logger.Count("info"))
}

//Personal.AI order the ending
