package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix for all engine settings.
const envPrefix = "DOCSIGHT"

// newViper builds a pre-configured Viper instance: YAML file type,
// DOCSIGHT_ env prefix, automatic env binding, and a key replacer mapping
// "." to "_" so that nested keys like "store.backend" resolve to
// DOCSIGHT_STORE_BACKEND.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	bindKeys(v)
	return v
}

// bindKeys registers every configurable key with viper so that environment
// variables resolve during Unmarshal even when the key never appears in a
// config file.
func bindKeys(v *viper.Viper) {
	for _, key := range []string{
		"server.port", "server.mode", "server.read_timeout",
		"server.write_timeout", "server.shutdown_timeout",
		"log.level", "log.format",
		"store.backend", "store.ttl", "store.staleness",
		"redis.mode", "redis.addr", "redis.username", "redis.password", "redis.db",
		"postgres.host", "postgres.port", "postgres.database",
		"postgres.username", "postgres.password", "postgres.ssl_mode",
		"feedback.enabled", "feedback.kafka.brokers", "feedback.kafka.acks",
		"engine.scroll.debounce", "engine.scroll.freshness", "engine.scroll.pixel_epsilon",
		"engine.scroll.restore_delays",
		"engine.gestures.swipe_distance", "engine.gestures.swipe_window",
		"metrics.enabled", "metrics.namespace",
	} {
		v.SetDefault(key, nil)
	}
}

// Load reads the YAML file at configPath, merges DOCSIGHT_* environment
// overrides, applies defaults for unset fields, and validates the result.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}
	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config entirely from DOCSIGHT_* environment
// variables and defaults, with no config file required.
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return cfg, nil
}

// Watch monitors configPath and invokes onChange with each re-parsed Config.
// A change that fails to parse or validate is dropped so the application
// never observes a broken configuration.  Watch is non-blocking.
func Watch(configPath string, onChange func(*Config)) {
	v := newViper()
	v.SetConfigFile(configPath)
	_ = v.ReadInConfig()

	v.WatchConfig()
	v.OnConfigChange(func(_ fsnotify.Event) {
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			return
		}
		onChange(cfg)
	})
}
