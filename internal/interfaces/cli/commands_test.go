package cli

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/VisionGate/pkg/client"
)

func writeImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "frame.jpg")
	require.NoError(t, os.WriteFile(path, []byte("\xff\xd8\xff\xe0fake-jpeg"), 0o600))
	return path
}

func TestModelsListCmd(t *testing.T) {
	url, _, _ := startGateway(t, nil)

	out, err := runCLI(t, "--server", url, "models", "list")
	require.NoError(t, err)
	assert.Equal(t, []string{"model_0", "model_1", "model_2"}, strings.Fields(out))

	out, err = runCLI(t, "--server", url, "-o", "table", "models", "list")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "MODEL"))
}

func TestModelsDescribeCmd(t *testing.T) {
	url, _, _ := startGateway(t, nil)

	out, err := runCLI(t, "--server", url, "-o", "json", "models", "describe", "model_1")
	require.NoError(t, err)

	var desc client.ModelDescription
	require.NoError(t, json.Unmarshal([]byte(out), &desc))
	assert.Equal(t, "model_1", desc.Model)
	assert.InDelta(t, 0.40, desc.Config.ConfidenceThreshold, 1e-9)
	assert.Equal(t, [2]int{640, 640}, desc.Config.InputSize)
	assert.Equal(t, "2025-03-15", desc.DateRegistered)
}

func TestModelsDescribeCmd_UnknownModel(t *testing.T) {
	url, _, _ := startGateway(t, nil)

	_, err := runCLI(t, "--server", url, "models", "describe", "nope")
	require.Error(t, err)

	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.IsNotFound())
}

func TestModelsSetDefaultCmd(t *testing.T) {
	url, _, gw := startGateway(t, nil)

	out, err := runCLI(t, "--server", url, "models", "set-default", "model_2")
	require.NoError(t, err)
	assert.Equal(t, "OK: default model is now model_2\n", out)
	assert.Equal(t, "model_2", gw.registry.Default())

	_, err = runCLI(t, "--server", url, "models", "set-default", "nope")
	require.Error(t, err)
	assert.Equal(t, "model_2", gw.registry.Default())
}

func TestModelsCmd_RequiresArgument(t *testing.T) {
	_, err := runCLI(t, "--server", "http://127.0.0.1:1", "models", "describe")
	require.Error(t, err)
}

func TestPredictCmd(t *testing.T) {
	url, backend, _ := startGateway(t, nil)
	img := writeImage(t)

	out, err := runCLI(t, "--server", url, "predict", "-m", "model_1", img)
	require.NoError(t, err)
	assert.Contains(t, out, "model: model_1")
	assert.Contains(t, out, "model_1-car")
	assert.Contains(t, out, "1,2,3,4")
	assert.EqualValues(t, 1, backend.predicts.Load())
}

func TestPredictCmd_UnknownModelFallsBack(t *testing.T) {
	url, _, _ := startGateway(t, nil)
	img := writeImage(t)

	out, err := runCLI(t, "--server", url, "-o", "json", "predict", "-m", "missing", img)
	require.NoError(t, err)

	var res client.PredictResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "model_0", res.ModelUsed)
	require.Len(t, res.Predictions, 1)
	assert.Equal(t, [4]int{1, 2, 3, 4}, res.Predictions[0].BBox)
}

func TestPredictCmd_MissingFile(t *testing.T) {
	_, err := runCLI(t, "--server", "http://127.0.0.1:1", "predict", filepath.Join(t.TempDir(), "absent.jpg"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open image")
}

func TestMetricsCmd(t *testing.T) {
	url, _, _ := startGateway(t, nil)
	img := writeImage(t)

	out, err := runCLI(t, "--server", url, "-o", "json", "metrics")
	require.NoError(t, err)
	var m client.Metrics
	require.NoError(t, json.Unmarshal([]byte(out), &m))
	assert.Zero(t, m.TotalRequests)
	assert.Zero(t, m.AvgLatencyMs)

	_, err = runCLI(t, "--server", url, "predict", img)
	require.NoError(t, err)

	out, err = runCLI(t, "--server", url, "-o", "json", "metrics")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &m))
	assert.EqualValues(t, 1, m.TotalRequests)
	assert.EqualValues(t, 1, m.RequestRatePerMinute)

	out, err = runCLI(t, "--server", url, "metrics")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "RATE/MIN"))
}

func TestProbeCmd(t *testing.T) {
	backend := newFakeBackend(t)

	out, err := runCLI(t, "probe", "--backend", backend.srv.URL)
	require.NoError(t, err)
	assert.Equal(t, backend.srv.URL+": Healthy\n", out)

	backend.healthy.Store(false)
	out, err = runCLI(t, "-o", "json", "probe", "--backend", backend.srv.URL)
	require.Error(t, err)

	var res ProbeResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "Unhealthy", res.Status)
}

func TestProbeCmd_ConnectionRefused(t *testing.T) {
	out, err := runCLI(t, "probe", "--backend", "http://127.0.0.1:1", "--timeout", "2s")
	require.Error(t, err)
	assert.Contains(t, out, "Unhealthy")
}

//Personal.AI order the ending
