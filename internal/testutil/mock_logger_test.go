package testutil_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/VisionGate/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/VisionGate/internal/testutil"
)

func TestMockLogger(t *testing.T) {
	logger := testutil.NewMockLogger()

	logger.Info("test info", logging.String("key", "value"))

	messages := logger.GetMessages()
	require.Len(t, messages, 1)
	assert.Equal(t, "info", messages[0].Level)
	assert.Equal(t, "test info", messages[0].Message)

	logger.Clear()
	assert.Empty(t, logger.GetMessages())

	logger.Error("test error")
	assert.True(t, logger.HasMessage("error", "test error"))
	assert.False(t, logger.HasMessage("info", "test info"))
	assert.Equal(t, 1, logger.Count("error"))
}

func TestMockLogger_DerivedLoggersShareBuffer(t *testing.T) {
	root := testutil.NewMockLogger()
	child := root.Named("gateway").With(logging.String("model", "model_0")).Named("router")

	child.Warn("slow", logging.Int("ms", 900), logging.String("model", "model_1"))

	entry, ok := root.Find("warn", "slow")
	require.True(t, ok)
	assert.Equal(t, "gateway.router", entry.Logger)

	model, ok := entry.Field("model")
	require.True(t, ok)
	assert.Equal(t, "model_1", model)

	ms, ok := entry.Field("ms")
	require.True(t, ok)
	assert.Equal(t, 900, ms)

	_, ok = entry.Field("absent")
	assert.False(t, ok)
}

//Personal.AI order the ending
