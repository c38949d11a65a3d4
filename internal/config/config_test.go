package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, BackendMemory, cfg.Store.Backend)
	assert.Equal(t, 24*time.Hour, cfg.Store.Staleness)
	assert.Equal(t, "docsight", cfg.Metrics.Namespace)
	require.NoError(t, cfg.Validate())
}

func TestApplyDefaults_DoesNotOverrideExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Server.Port = 9000
	cfg.Store.Backend = BackendRedis
	ApplyDefaults(cfg)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, BackendRedis, cfg.Store.Backend)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := &Config{}
		ApplyDefaults(c)
		return c
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(*Config) {}, false},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, true},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }, true},
		{"bad mode", func(c *Config) { c.Server.Mode = "prod" }, true},
		{"bad backend", func(c *Config) { c.Store.Backend = "etcd" }, true},
		{"postgres without host", func(c *Config) { c.Store.Backend = BackendPostgres }, true},
		{"postgres complete", func(c *Config) {
			c.Store.Backend = BackendPostgres
			c.Postgres.Host = "localhost"
			c.Postgres.Database = "docsight"
		}, false},
		{"feedback without brokers", func(c *Config) { c.Feedback.Enabled = true }, true},
		{"feedback with brokers", func(c *Config) {
			c.Feedback.Enabled = true
			c.Feedback.Kafka.Brokers = []string{"localhost:9092"}
		}, false},
		{"negative debounce", func(c *Config) { c.Engine.Scroll.Debounce = -time.Second }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoad_FileWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
store:
  backend: memory
engine:
  scroll:
    debounce: 250ms
    freshness: 2h
`), 0o600))

	t.Setenv("DOCSIGHT_SERVER_MODE", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.Equal(t, 250*time.Millisecond, cfg.Engine.Scroll.Debounce)
	assert.Equal(t, 2*time.Hour, cfg.Engine.Scroll.Freshness)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DOCSIGHT_STORE_BACKEND", "redis")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, BackendRedis, cfg.Store.Backend)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadFromEnv_RestoreDelays(t *testing.T) {
	t.Setenv("DOCSIGHT_ENGINE_SCROLL_RESTORE_DELAYS", "25ms,75ms,200ms")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t,
		[]time.Duration{25 * time.Millisecond, 75 * time.Millisecond, 200 * time.Millisecond},
		cfg.Engine.Scroll.RestoreDelays)
}
