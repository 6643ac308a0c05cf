package config

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

// DateLayout is the layout of models[].date_registered.
const DateLayout = "2006-01-02"

const (
	DefaultServerName     = "VisionGate"
	DefaultServerPort     = 6001
	DefaultServerMode     = "release"
	DefaultServerTimeout  = 60 * time.Second
	DefaultMaxBodySize    = 32 << 20
	DefaultShutdownPeriod = 15 * time.Second

	DefaultBackendURL     = "http://127.0.0.1:8080"
	DefaultPredictTimeout = 30 * time.Second
	DefaultProbeTimeout   = 3 * time.Second
	DefaultMaxIdleConns   = 64

	DefaultModelID        = "model_0"
	DefaultInputSide      = 640
	DefaultBatchSize      = 16
	DefaultDateRegistered = "2025-03-15"

	DefaultGroupName = "group1"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultGRPCPort       = 9090
	DefaultHealthInterval = 10 * time.Second

	DefaultMetricsPath      = "/metrics/prometheus"
	DefaultMetricsNamespace = "visiongate"

	DefaultCacheAddr   = "localhost:6379"
	DefaultCacheTTL    = 10 * time.Minute
	DefaultCachePrefix = "visiongate:"
	DefaultCachePool   = 10
	DefaultDialTimeout = 5 * time.Second

	DefaultKafkaBroker  = "localhost:9092"
	DefaultEventsTopic  = "visiongate.registry.events"
	DefaultWriteTimeout = 5 * time.Second
)

// DefaultGroupMembers is the member list reported by /group-info when the
// group section is left empty.
var DefaultGroupMembers = []string{"Anna Kudiakova", "Salar Jalali", "Victor Sung", "Jieming Yu"}

// DefaultModels returns the model set served when no models are configured.
func DefaultModels() []ModelConfig {
	thresholds := []struct {
		id string
		t  float64
	}{
		{"model_0", 0.60},
		{"model_1", 0.40},
		{"model_2", 0.50},
	}
	out := make([]ModelConfig, 0, len(thresholds))
	for _, th := range thresholds {
		out = append(out, ModelConfig{
			ID:                  th.id,
			ConfidenceThreshold: th.t,
			InputSize:           []int{DefaultInputSide, DefaultInputSide},
			BatchSize:           DefaultBatchSize,
			DateRegistered:      DefaultDateRegistered,
		})
	}
	return out
}

// Default returns a fully-populated Config equivalent to loading an empty file.
func Default() *Config {
	cfg := &Config{}
	cfg.Metrics.PrometheusEnabled = true
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills every zero-value field in cfg with the gateway default.
// Explicitly configured values are left unchanged. Boolean switches cannot be
// told apart from "unset" here; the loader registers their defaults with viper.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Name == "" {
		cfg.Server.Name = DefaultServerName
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultServerTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultServerTimeout
	}
	if cfg.Server.MaxBodySize == 0 {
		cfg.Server.MaxBodySize = DefaultMaxBodySize
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownPeriod
	}

	// ── Backend ───────────────────────────────────────────────────────────────
	if cfg.Backend.BaseURL == "" {
		cfg.Backend.BaseURL = DefaultBackendURL
	}
	if cfg.Backend.PredictTimeout == 0 {
		cfg.Backend.PredictTimeout = DefaultPredictTimeout
	}
	if cfg.Backend.ProbeTimeout == 0 {
		cfg.Backend.ProbeTimeout = DefaultProbeTimeout
	}
	if cfg.Backend.MaxIdleConns == 0 {
		cfg.Backend.MaxIdleConns = DefaultMaxIdleConns
	}

	// ── Models ────────────────────────────────────────────────────────────────
	if len(cfg.Models) == 0 {
		cfg.Models = DefaultModels()
	}
	for i := range cfg.Models {
		m := &cfg.Models[i]
		if len(m.InputSize) == 0 {
			m.InputSize = []int{DefaultInputSide, DefaultInputSide}
		}
		if m.BatchSize == 0 {
			m.BatchSize = DefaultBatchSize
		}
		if m.DateRegistered == "" {
			m.DateRegistered = DefaultDateRegistered
		}
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = cfg.Models[0].ID
	}

	// ── Group ─────────────────────────────────────────────────────────────────
	if cfg.Group.Name == "" {
		cfg.Group.Name = DefaultGroupName
	}
	if cfg.Group.Members == nil {
		cfg.Group.Members = append([]string(nil), DefaultGroupMembers...)
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	// ── gRPC ──────────────────────────────────────────────────────────────────
	if cfg.GRPC.Port == 0 {
		cfg.GRPC.Port = DefaultGRPCPort
	}
	if cfg.GRPC.HealthInterval == 0 {
		cfg.GRPC.HealthInterval = DefaultHealthInterval
	}

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}

	// ── Cache ─────────────────────────────────────────────────────────────────
	if cfg.Cache.Addr == "" {
		cfg.Cache.Addr = DefaultCacheAddr
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = DefaultCacheTTL
	}
	if cfg.Cache.KeyPrefix == "" {
		cfg.Cache.KeyPrefix = DefaultCachePrefix
	}
	if cfg.Cache.PoolSize == 0 {
		cfg.Cache.PoolSize = DefaultCachePool
	}
	if cfg.Cache.DialTimeout == 0 {
		cfg.Cache.DialTimeout = DefaultDialTimeout
	}

	// ── Events ────────────────────────────────────────────────────────────────
	if len(cfg.Events.Brokers) == 0 {
		cfg.Events.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Events.Topic == "" {
		cfg.Events.Topic = DefaultEventsTopic
	}
	if cfg.Events.WriteTimeout == 0 {
		cfg.Events.WriteTimeout = DefaultWriteTimeout
	}
}

//Personal.AI order the ending
