// Package config defines the configuration structures for the DocSight
// engine.  No I/O or parsing logic lives here, only plain data types,
// defaults, and validation.
package config

import (
	"fmt"
	"time"

	"github.com/docsight/docsight/internal/application/panel"
	"github.com/docsight/docsight/internal/application/scroll"
	"github.com/docsight/docsight/internal/infrastructure/database/postgres"
	"github.com/docsight/docsight/internal/infrastructure/database/redis"
	"github.com/docsight/docsight/internal/infrastructure/messaging/kafka"
	"github.com/docsight/docsight/internal/infrastructure/monitoring/logging"
)

// Store backends.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// StoreConfig selects and tunes the view state persistence backend.
type StoreConfig struct {
	Backend   string        `mapstructure:"backend"` // memory | redis | postgres
	TTL       time.Duration `mapstructure:"ttl"`     // redis record expiry, 0 = none
	Staleness time.Duration `mapstructure:"staleness"`
}

// EngineConfig tunes the interaction engine itself.
type EngineConfig struct {
	Scroll   scroll.Config       `mapstructure:"scroll"`
	Gestures panel.GestureConfig `mapstructure:"gestures"`
}

// MetricsConfig tunes the Prometheus exposition.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
}

// FeedbackConfig tunes feedback emission.  With no brokers configured,
// feedback is recorded locally and never emitted.
type FeedbackConfig struct {
	Enabled bool         `mapstructure:"enabled"`
	Kafka   kafka.Config `mapstructure:"kafka"`
}

// Config is the root configuration of the engine.
type Config struct {
	Server   ServerConfig      `mapstructure:"server"`
	Log      logging.LogConfig `mapstructure:"log"`
	Store    StoreConfig       `mapstructure:"store"`
	Redis    redis.Config      `mapstructure:"redis"`
	Postgres postgres.Config   `mapstructure:"postgres"`
	Feedback FeedbackConfig    `mapstructure:"feedback"`
	Engine   EngineConfig      `mapstructure:"engine"`
	Metrics  MetricsConfig     `mapstructure:"metrics"`
}

// Validate checks invariants that defaults cannot repair.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [1, 65535], got %d", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("server.mode must be debug, release or test, got %q", c.Server.Mode)
	}
	switch c.Store.Backend {
	case BackendMemory, BackendRedis, BackendPostgres:
	default:
		return fmt.Errorf("store.backend must be memory, redis or postgres, got %q", c.Store.Backend)
	}
	if c.Store.Backend == BackendPostgres {
		if c.Postgres.Host == "" || c.Postgres.Database == "" {
			return fmt.Errorf("store.backend=postgres requires postgres.host and postgres.database")
		}
	}
	if c.Feedback.Enabled && len(c.Feedback.Kafka.Brokers) == 0 {
		return fmt.Errorf("feedback.enabled requires feedback.kafka.brokers")
	}
	if c.Engine.Scroll.Debounce < 0 || c.Engine.Scroll.Freshness < 0 {
		return fmt.Errorf("engine.scroll durations must not be negative")
	}
	return nil
}
