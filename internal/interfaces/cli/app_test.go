package cli

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/turtacn/VisionGate/internal/config"
	"github.com/turtacn/VisionGate/internal/infrastructure/monitoring/logging"
	grpcserver "github.com/turtacn/VisionGate/internal/interfaces/grpc"
	"github.com/turtacn/VisionGate/pkg/client"
)

func newSDK(t *testing.T, url string) *client.Client {
	t.Helper()
	c, err := client.NewClient(url, client.WithRetryMax(0))
	require.NoError(t, err)
	return c
}

func scrape(t *testing.T, url string) string {
	t.Helper()
	resp, err := http.Get(url + "/metrics/prometheus")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestGateway_HealthStatus(t *testing.T) {
	url, backend, _ := startGateway(t, func(cfg *config.Config) { cfg.Server.Name = "edge-1" })
	sdk := newSDK(t, url)

	h, err := sdk.Health(context.Background())
	require.NoError(t, err)
	assert.True(t, h.Healthy())
	assert.Equal(t, "edge-1", h.Server)

	backend.healthy.Store(false)
	h, err = sdk.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Unhealthy", h.Status)
}

func TestGateway_GroupInfo(t *testing.T) {
	url, _, _ := startGateway(t, func(cfg *config.Config) {
		cfg.Group = config.GroupConfig{Name: "vision", Members: []string{"ana", "bo"}}
	})

	info, err := newSDK(t, url).GroupInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "vision", info.Group)
	assert.Equal(t, []string{"ana", "bo"}, info.Members)
}

func TestGateway_PrometheusExposition(t *testing.T) {
	url, _, _ := startGateway(t, nil)
	sdk := newSDK(t, url)

	_, err := sdk.Predict(context.Background(), "model_1", "a.jpg", bytes.NewReader([]byte("img")))
	require.NoError(t, err)
	_, err = sdk.SetDefaultModel(context.Background(), "model_2")
	require.NoError(t, err)

	body := scrape(t, url)
	assert.Contains(t, body, `visiongate_predict_requests_total{code="",model="model_1",outcome="success"} 1`)
	assert.Contains(t, body, `visiongate_default_model{model="model_2"} 1`)
	assert.Contains(t, body, `visiongate_default_model{model="model_0"} 0`)
	assert.Contains(t, body, `route="/predict"`)
	assert.Contains(t, body, "process_")
}

func TestGateway_PrometheusDisabled(t *testing.T) {
	url, _, _ := startGateway(t, func(cfg *config.Config) { cfg.Metrics.PrometheusEnabled = false })

	resp, err := http.Get(url + "/metrics/prometheus")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGateway_PredictionCache(t *testing.T) {
	mr := miniredis.RunT(t)
	url, backend, _ := startGateway(t, func(cfg *config.Config) {
		cfg.Cache.Enabled = true
		cfg.Cache.Addr = mr.Addr()
	})
	sdk := newSDK(t, url)

	for i := 0; i < 3; i++ {
		res, err := sdk.Predict(context.Background(), "model_0", "a.jpg", bytes.NewReader([]byte("same image")))
		require.NoError(t, err)
		assert.Equal(t, "model_0", res.ModelUsed)
		require.Len(t, res.Predictions, 1)
		assert.Equal(t, "model_0-car", res.Predictions[0].Label)
	}
	assert.EqualValues(t, 1, backend.predicts.Load())

	m, err := sdk.Metrics(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 3, m.TotalRequests)

	body := scrape(t, url)
	assert.Contains(t, body, `visiongate_cache_requests_total{model="model_0",result="hit"} 2`)
	assert.Contains(t, body, `visiongate_cache_requests_total{model="model_0",result="miss"} 1`)
}

func TestGateway_CacheUnreachableIsDisabled(t *testing.T) {
	url, backend, gw := startGateway(t, func(cfg *config.Config) {
		cfg.Cache.Enabled = true
		cfg.Cache.Addr = "127.0.0.1:1"
		cfg.Cache.DialTimeout = 200 * time.Millisecond
	})
	assert.Nil(t, gw.redis)

	_, err := newSDK(t, url).Predict(context.Background(), "", "a.jpg", bytes.NewReader([]byte("img")))
	require.NoError(t, err)
	assert.EqualValues(t, 1, backend.predicts.Load())
}

func TestGateway_EventsRequireBrokers(t *testing.T) {
	cfg := config.Default()
	cfg.Events.Enabled = true
	cfg.Events.Brokers = nil

	_, err := buildGateway(context.Background(), cfg, logging.NewNopLogger())
	require.Error(t, err)
}

func TestGateway_InvalidRegistry(t *testing.T) {
	cfg := config.Default()
	cfg.DefaultModel = "missing"

	_, err := buildGateway(context.Background(), cfg, logging.NewNopLogger())
	require.Error(t, err)
}

func TestGateway_GRPCHealthMirrorsBackend(t *testing.T) {
	_, backend, gw := startGateway(t, func(cfg *config.Config) {
		cfg.GRPC.Enabled = true
		cfg.GRPC.Port = 0
		cfg.GRPC.HealthInterval = 50 * time.Millisecond
	})
	require.NotNil(t, gw.grpcServer)

	conn, err := grpc.Dial(gw.grpcServer.Addr(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()
	hc := healthpb.NewHealthClient(conn)

	status := func() healthpb.HealthCheckResponse_ServingStatus {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		resp, err := hc.Check(ctx, &healthpb.HealthCheckRequest{Service: grpcserver.BackendServiceName})
		if err != nil {
			return healthpb.HealthCheckResponse_UNKNOWN
		}
		return resp.Status
	}

	assert.Eventually(t, func() bool { return status() == healthpb.HealthCheckResponse_SERVING }, 5*time.Second, 20*time.Millisecond)

	backend.healthy.Store(false)
	assert.Eventually(t, func() bool { return status() == healthpb.HealthCheckResponse_NOT_SERVING }, 5*time.Second, 20*time.Millisecond)
}

func TestApplyLogLevel(t *testing.T) {
	logger, err := logging.NewLogger(logging.LogConfig{Level: "info", OutputPaths: []string{"stderr"}})
	require.NoError(t, err)
	setter, ok := logger.(logging.LevelSetter)
	require.True(t, ok)

	applyLogLevel(setter, "debug", logger)
	assert.Equal(t, "debug", setter.Level())

	applyLogLevel(setter, "verbose", logger)
	assert.Equal(t, "debug", setter.Level())

	applyLogLevel(setter, "", logger)
	assert.Equal(t, "debug", setter.Level())
}

//Personal.AI order the ending
