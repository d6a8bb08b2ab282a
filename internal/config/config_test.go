// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kindred Contributors

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kindred-dev/kindred/internal/config"
	"github.com/kindred-dev/kindred/internal/interest"
	kerr "github.com/kindred-dev/kindred/pkg/errors"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultValues(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8080", cfg.Networking.Listen)
	assert.Equal(t, 0, cfg.Networking.RateLimit.Requests)
	assert.Equal(t, time.Minute, cfg.Networking.RateLimit.Window)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, "kindred.db", cfg.Storage.Path)
	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, 86400*time.Second, cfg.Cache.TTL)
	assert.Equal(t, "localhost:6379", cfg.Cache.Redis.Addr)
	assert.Equal(t, uint32(5), cfg.Cache.Breaker.FailureThreshold)
	assert.Equal(t, 10*time.Second, cfg.Cache.Breaker.Timeout)
	assert.Equal(t, 10, cfg.Matching.DefaultLimit)
	assert.Equal(t, 100, cfg.Matching.MaxLimit)
	assert.Equal(t, interest.DefaultNames, cfg.Interests.Catalog)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "kindred.yaml")

	content := `
networking:
  listen: "0.0.0.0:9999"
storage:
  backend: memory
cache:
  backend: memory
  ttl: 1h
interests:
  catalog: ["Chess", "Go", "Poker"]
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o600))

	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9999", cfg.Networking.Listen)
	assert.Equal(t, "memory", cfg.Storage.Backend)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)

	catalog, err := cfg.Catalog()
	require.NoError(t, err)
	assert.Equal(t, 3, catalog.Len())
	assert.Equal(t, interest.Vector(0b010), catalog.Encode([]string{"Go"}))
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("KINDRED_NETWORKING_LISTEN", "10.0.0.1:8080")
	t.Setenv("KINDRED_CACHE_BACKEND", "none")
	t.Setenv("KINDRED_CACHE_TTL", "30m")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1:8080", cfg.Networking.Listen)
	assert.Equal(t, "none", cfg.Cache.Backend)
	assert.Equal(t, 30*time.Minute, cfg.Cache.TTL)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, kerr.HasCode(err, kerr.CodeConfigLoadReadFailure))
}

func TestLoad_ValidationCalledAtLoadTime(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "kindred.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("cache:\n  backend: memcached\n"), 0o600))

	_, err := config.Load(cfgPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cache.backend")
	assert.True(t, kerr.IsInvalidInput(err))
}

func TestFromViper_UsesDefaults(t *testing.T) {
	v := viper.New()
	config.SetDefaults(v)
	v.Set("matching.max_limit", 25)

	cfg, err := config.FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.Matching.MaxLimit)
}

// validConfig returns a minimal config that passes all validation.
func validConfig() *config.Config {
	return &config.Config{
		Networking: config.NetworkingConfig{Listen: "127.0.0.1:8080"},
		Storage:    config.StorageConfig{Backend: "sqlite", Path: "kindred.db"},
		Cache: config.CacheConfig{
			Backend: "redis",
			TTL:     24 * time.Hour,
			Redis:   config.RedisConfig{Addr: "localhost:6379"},
			Breaker: config.BreakerConfig{FailureThreshold: 5, Timeout: 10 * time.Second},
		},
		Matching:  config.MatchingConfig{DefaultLimit: 10, MaxLimit: 100},
		Interests: config.InterestsConfig{Catalog: interest.DefaultNames},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.Empty(t, validConfig().Validate(), "valid config should produce no validation errors")
}

func TestValidate_Fields(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantKey string
	}{
		{"empty listen", func(c *config.Config) { c.Networking.Listen = "" }, "networking.listen"},
		{"missing port", func(c *config.Config) { c.Networking.Listen = "127.0.0.1" }, "networking.listen"},
		{"port zero", func(c *config.Config) { c.Networking.Listen = "127.0.0.1:0" }, "networking.listen"},
		{"port too high", func(c *config.Config) { c.Networking.Listen = "127.0.0.1:70000" }, "networking.listen"},
		{"port not a number", func(c *config.Config) { c.Networking.Listen = "127.0.0.1:abc" }, "networking.listen"},
		{"negative rate limit", func(c *config.Config) { c.Networking.RateLimit.Requests = -1 }, "networking.rate_limit.requests"},
		{"rate limit without window", func(c *config.Config) {
			c.Networking.RateLimit = config.RateLimitConfig{Requests: 10}
		}, "networking.rate_limit.window"},
		{"blank cors origin", func(c *config.Config) { c.Networking.CORSOrigins = []string{""} }, "networking.cors_origins"},
		{"unknown storage", func(c *config.Config) { c.Storage.Backend = "postgres" }, "storage.backend"},
		{"sqlite without path", func(c *config.Config) { c.Storage.Path = "" }, "storage.path"},
		{"unknown cache", func(c *config.Config) { c.Cache.Backend = "memcached" }, "cache.backend"},
		{"zero ttl", func(c *config.Config) { c.Cache.TTL = 0 }, "cache.ttl"},
		{"redis without addr", func(c *config.Config) { c.Cache.Redis.Addr = "" }, "cache.redis.addr"},
		{"negative redis db", func(c *config.Config) { c.Cache.Redis.DB = -1 }, "cache.redis.db"},
		{"zero breaker threshold", func(c *config.Config) { c.Cache.Breaker.FailureThreshold = 0 }, "cache.breaker.failure_threshold"},
		{"zero breaker timeout", func(c *config.Config) { c.Cache.Breaker.Timeout = 0 }, "cache.breaker.timeout"},
		{"zero max limit", func(c *config.Config) { c.Matching.MaxLimit = 0 }, "matching.max_limit"},
		{"zero default limit", func(c *config.Config) { c.Matching.DefaultLimit = 0 }, "matching.default_limit"},
		{"default above max", func(c *config.Config) { c.Matching.DefaultLimit = 500 }, "matching.default_limit"},
		{"empty catalog", func(c *config.Config) { c.Interests.Catalog = nil }, "interests.catalog"},
		{"duplicate interest", func(c *config.Config) { c.Interests.Catalog = []string{"Yoga", "Yoga"} }, "interests.catalog"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			errs := cfg.Validate()
			require.Len(t, errs, 1)
			assert.Contains(t, errs[0].Error(), tt.wantKey)
			assert.True(t, kerr.HasCode(errs[0], kerr.CodeConfigValidateInvalidValue))
		})
	}
}

func TestValidate_RedisSettingsIgnoredForOtherBackends(t *testing.T) {
	cfg := validConfig()
	cfg.Cache.Backend = "memory"
	cfg.Cache.Redis = config.RedisConfig{}
	assert.Empty(t, cfg.Validate())
}

func TestValidate_MultipleErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Networking.Listen = ""
	cfg.Storage.Backend = "postgres"
	cfg.Cache.TTL = -time.Second
	cfg.Matching.MaxLimit = 0

	errs := cfg.Validate()
	assert.Len(t, errs, 4)
}

func TestBootstrapConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "kindred.yaml")

	assert.Equal(t, path, config.BootstrapConfig(path))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	// The written default must itself be loadable.
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)

	assert.Empty(t, config.BootstrapConfig(path), "existing file is left alone")
}
