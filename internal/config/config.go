// Package config defines the configuration structures of the VisionGate
// gateway. No I/O lives in this file, only plain data types and validation.
package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/turtacn/VisionGate/internal/infrastructure/monitoring/logging"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Name            string        `mapstructure:"name"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns the listen address of the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// BackendConfig describes the inference backend cluster.
type BackendConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	PredictTimeout time.Duration `mapstructure:"predict_timeout"`
	ProbeTimeout   time.Duration `mapstructure:"probe_timeout"`
	MaxIdleConns   int           `mapstructure:"max_idle_conns"`
}

// ModelConfig is the static description of one served model.
type ModelConfig struct {
	ID                  string  `mapstructure:"id"`
	ConfidenceThreshold float64 `mapstructure:"confidence_threshold"`
	InputSize           []int   `mapstructure:"input_size"`
	BatchSize           int     `mapstructure:"batch_size"`
	DateRegistered      string  `mapstructure:"date_registered"` // YYYY-MM-DD
}

// GroupConfig is the static team information reported by /group-info.
type GroupConfig struct {
	Name    string   `mapstructure:"name"`
	Members []string `mapstructure:"members"`
}

// GRPCConfig controls the gRPC health endpoint.
type GRPCConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	Port           int           `mapstructure:"port"`
	HealthInterval time.Duration `mapstructure:"health_interval"`
	Reflection     bool          `mapstructure:"reflection"`
}

// MetricsConfig controls the Prometheus exposition endpoint.
type MetricsConfig struct {
	PrometheusEnabled bool   `mapstructure:"prometheus_enabled"`
	Path              string `mapstructure:"path"`
	Namespace         string `mapstructure:"namespace"`
}

// CacheConfig controls the optional Redis-backed prediction cache.
type CacheConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Addr        string        `mapstructure:"addr"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	PoolSize    int           `mapstructure:"pool_size"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
	TTL         time.Duration `mapstructure:"ttl"`
	KeyPrefix   string        `mapstructure:"key_prefix"`
}

// EventsConfig controls the optional Kafka publisher for registry events.
type EventsConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Brokers      []string      `mapstructure:"brokers"`
	Topic        string        `mapstructure:"topic"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// CORSConfig controls the CORS middleware. Empty AllowedOrigins disables it.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	MaxAge         int      `mapstructure:"max_age"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure of the gateway.
type Config struct {
	Server       ServerConfig      `mapstructure:"server"`
	Backend      BackendConfig     `mapstructure:"backend"`
	Models       []ModelConfig     `mapstructure:"models"`
	DefaultModel string            `mapstructure:"default_model"`
	Group        GroupConfig       `mapstructure:"group"`
	Log          logging.LogConfig `mapstructure:"log"`
	GRPC         GRPCConfig        `mapstructure:"grpc"`
	Metrics      MetricsConfig     `mapstructure:"metrics"`
	Cache        CacheConfig       `mapstructure:"cache"`
	Events       EventsConfig      `mapstructure:"events"`
	CORS         CORSConfig        `mapstructure:"cors"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config and
// returns the first error encountered.
func (c *Config) Validate() error {
	// Server
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}
	if c.Server.MaxBodySize <= 0 {
		return fmt.Errorf("config: server.max_body_size must be > 0, got %d", c.Server.MaxBodySize)
	}

	// Backend
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || c.Backend.BaseURL == "" {
		return fmt.Errorf("config: backend.base_url %q is not a valid URL", c.Backend.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("config: backend.base_url scheme %q is invalid; expected http|https", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("config: backend.base_url %q has no host", c.Backend.BaseURL)
	}
	if c.Backend.PredictTimeout <= 0 {
		return fmt.Errorf("config: backend.predict_timeout must be > 0")
	}
	if c.Backend.ProbeTimeout <= 0 {
		return fmt.Errorf("config: backend.probe_timeout must be > 0")
	}

	// Models
	if len(c.Models) == 0 {
		return fmt.Errorf("config: models must contain at least one model")
	}
	seen := make(map[string]struct{}, len(c.Models))
	for i, m := range c.Models {
		if m.ID == "" {
			return fmt.Errorf("config: models[%d].id is required", i)
		}
		if _, dup := seen[m.ID]; dup {
			return fmt.Errorf("config: models[%d].id %q is duplicated", i, m.ID)
		}
		seen[m.ID] = struct{}{}
		if m.ConfidenceThreshold < 0 || m.ConfidenceThreshold > 1 {
			return fmt.Errorf("config: models[%d].confidence_threshold %.2f is out of range [0, 1]", i, m.ConfidenceThreshold)
		}
		if len(m.InputSize) != 2 || m.InputSize[0] <= 0 || m.InputSize[1] <= 0 {
			return fmt.Errorf("config: models[%d].input_size must be two positive integers", i)
		}
		if m.BatchSize < 1 {
			return fmt.Errorf("config: models[%d].batch_size must be ≥ 1, got %d", i, m.BatchSize)
		}
		if _, err := time.Parse(DateLayout, m.DateRegistered); err != nil {
			return fmt.Errorf("config: models[%d].date_registered %q must be %s", i, m.DateRegistered, DateLayout)
		}
	}
	if _, ok := seen[c.DefaultModel]; !ok {
		return fmt.Errorf("config: default_model %q is not among the configured models", c.DefaultModel)
	}

	// gRPC
	if c.GRPC.Enabled {
		if c.GRPC.Port < 1 || c.GRPC.Port > 65535 {
			return fmt.Errorf("config: grpc.port %d is out of range [1, 65535]", c.GRPC.Port)
		}
		if c.GRPC.Port == c.Server.Port {
			return fmt.Errorf("config: grpc.port must differ from server.port")
		}
	}

	// Cache
	if c.Cache.Enabled {
		if c.Cache.Addr == "" {
			return fmt.Errorf("config: cache.addr is required when the cache is enabled")
		}
		if c.Cache.DB < 0 {
			return fmt.Errorf("config: cache.db must be ≥ 0, got %d", c.Cache.DB)
		}
		if c.Cache.TTL <= 0 {
			return fmt.Errorf("config: cache.ttl must be > 0")
		}
	}

	// Events
	if c.Events.Enabled {
		if len(c.Events.Brokers) == 0 {
			return fmt.Errorf("config: events.brokers must contain at least one broker address")
		}
		if c.Events.Topic == "" {
			return fmt.Errorf("config: events.topic is required when events are enabled")
		}
	}

	// Log
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	return nil
}

//Personal.AI order the ending
