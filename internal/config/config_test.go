package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 6001, cfg.Server.Port)
	assert.Equal(t, "VisionGate", cfg.Server.Name)
	assert.Equal(t, "http://127.0.0.1:8080", cfg.Backend.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Backend.PredictTimeout)
	assert.Equal(t, 3*time.Second, cfg.Backend.ProbeTimeout)
	assert.Equal(t, "model_0", cfg.DefaultModel)
	assert.True(t, cfg.Metrics.PrometheusEnabled)
	assert.False(t, cfg.Cache.Enabled)
	assert.False(t, cfg.Events.Enabled)

	require.Len(t, cfg.Models, 3)
	assert.Equal(t, "model_1", cfg.Models[1].ID)
	assert.Equal(t, 0.40, cfg.Models[1].ConfidenceThreshold)
	assert.Equal(t, []int{640, 640}, cfg.Models[2].InputSize)
	assert.Equal(t, "group1", cfg.Group.Name)
	assert.Len(t, cfg.Group.Members, 4)
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := &Config{
		Server:  ServerConfig{Port: 7000, Mode: "debug"},
		Backend: BackendConfig{BaseURL: "http://torchserve:8080"},
		Models:  []ModelConfig{{ID: "yolo", ConfidenceThreshold: 0.3}},
	}
	ApplyDefaults(cfg)

	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.Equal(t, "http://torchserve:8080", cfg.Backend.BaseURL)
	require.Len(t, cfg.Models, 1)
	assert.Equal(t, "yolo", cfg.DefaultModel)
	assert.Equal(t, 16, cfg.Models[0].BatchSize)
	assert.Equal(t, "2025-03-15", cfg.Models[0].DateRegistered)
}

func TestApplyDefaults_NilIsNoop(t *testing.T) {
	assert.NotPanics(t, func() { ApplyDefaults(nil) })
}

func TestValidate_Failures(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"port", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"mode", func(c *Config) { c.Server.Mode = "prod" }, "server.mode"},
		{"base url scheme", func(c *Config) { c.Backend.BaseURL = "ftp://x" }, "scheme"},
		{"base url host", func(c *Config) { c.Backend.BaseURL = "http://" }, "no host"},
		{"predict timeout", func(c *Config) { c.Backend.PredictTimeout = -1 }, "predict_timeout"},
		{"no models", func(c *Config) { c.Models = nil }, "at least one model"},
		{"duplicate", func(c *Config) { c.Models[1].ID = "model_0" }, "duplicated"},
		{"threshold", func(c *Config) { c.Models[0].ConfidenceThreshold = 1.5 }, "confidence_threshold"},
		{"input size", func(c *Config) { c.Models[0].InputSize = []int{640} }, "input_size"},
		{"date", func(c *Config) { c.Models[0].DateRegistered = "15/03/2025" }, "date_registered"},
		{"default", func(c *Config) { c.DefaultModel = "model_9" }, "default_model"},
		{"grpc port clash", func(c *Config) { c.GRPC.Enabled = true; c.GRPC.Port = c.Server.Port }, "grpc.port"},
		{"cache addr", func(c *Config) { c.Cache.Enabled = true; c.Cache.Addr = "" }, "cache.addr"},
		{"events topic", func(c *Config) { c.Events.Enabled = true; c.Events.Topic = "" }, "events.topic"},
		{"log level", func(c *Config) { c.Log.Level = "trace" }, "log.level"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestServerConfig_Addr(t *testing.T) {
	assert.Equal(t, ":6001", ServerConfig{Port: 6001}.Addr())
	assert.Equal(t, "0.0.0.0:8000", ServerConfig{Host: "0.0.0.0", Port: 8000}.Addr())
}

//Personal.AI order the ending
