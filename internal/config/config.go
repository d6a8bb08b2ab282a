// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kindred Contributors

package config

import (
	"errors"
	"net"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/kindred-dev/kindred/internal/interest"
	kerr "github.com/kindred-dev/kindred/pkg/errors"
)

// Config is the top-level kindred configuration.
type Config struct {
	Networking NetworkingConfig `mapstructure:"networking"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Matching   MatchingConfig   `mapstructure:"matching"`
	Interests  InterestsConfig  `mapstructure:"interests"`
}

// NetworkingConfig controls how kindred listens for connections.
type NetworkingConfig struct {
	Listen      string          `mapstructure:"listen"`
	CORSOrigins []string        `mapstructure:"cors_origins"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
}

// RateLimitConfig limits requests per client IP. Zero Requests disables it.
type RateLimitConfig struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// StorageConfig selects the profile store.
type StorageConfig struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
}

// CacheConfig selects and tunes the profile cache.
type CacheConfig struct {
	Backend string        `mapstructure:"backend"`
	TTL     time.Duration `mapstructure:"ttl"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Breaker BreakerConfig `mapstructure:"breaker"`
}

// RedisConfig holds the connection settings for the redis cache backend.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// BreakerConfig tunes the circuit breaker in front of the cache backend.
type BreakerConfig struct {
	FailureThreshold uint32        `mapstructure:"failure_threshold"`
	Timeout          time.Duration `mapstructure:"timeout"`
}

// MatchingConfig bounds match and list page sizes.
type MatchingConfig struct {
	DefaultLimit int `mapstructure:"default_limit"`
	MaxLimit     int `mapstructure:"max_limit"`
}

// InterestsConfig holds the ordered interest catalog. Bit i of every stored
// vector refers to Catalog[i], so reordering invalidates existing data.
type InterestsConfig struct {
	Catalog []string `mapstructure:"catalog"`
}

var (
	storageBackends = []string{"sqlite", "memory"}
	cacheBackends   = []string{"redis", "memory", "none"}
)

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("networking.listen", "127.0.0.1:8080")
	v.SetDefault("networking.cors_origins", []string{})
	v.SetDefault("networking.rate_limit.requests", 0)
	v.SetDefault("networking.rate_limit.window", "1m")
	v.SetDefault("storage.backend", "sqlite")
	v.SetDefault("storage.path", "kindred.db")
	v.SetDefault("cache.backend", "redis")
	v.SetDefault("cache.ttl", "86400s")
	v.SetDefault("cache.redis.addr", "localhost:6379")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.breaker.failure_threshold", 5)
	v.SetDefault("cache.breaker.timeout", "10s")
	v.SetDefault("matching.default_limit", 10)
	v.SetDefault("matching.max_limit", 100)
	v.SetDefault("interests.catalog", interest.DefaultNames)
}

// SetupEnv binds KINDRED_* environment variables on v.
func SetupEnv(v *viper.Viper) {
	v.SetEnvPrefix("KINDRED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load reads configuration from the given path (or defaults) with
// environment variable overrides (prefix KINDRED_).
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	SetupEnv(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, kerr.Errorf(kerr.CodeConfigLoadReadFailure, "reading config %s: %w", path, err)
		}
	}

	return FromViper(v)
}

// FromViper decodes and validates the configuration held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, kerr.Errorf(kerr.CodeConfigValidateInvalidValue, "unmarshalling config: %w", err)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, kerr.Errorf(kerr.CodeConfigValidateInvalidValue, "validating config: %w", errors.Join(errs...))
	}

	return &cfg, nil
}

// Catalog builds the interest catalog described by the configuration.
func (c *Config) Catalog() (*interest.Catalog, error) {
	return interest.NewCatalog(c.Interests.Catalog)
}

// Validate checks the configuration for logical errors.
// It returns a slice of all validation errors found, collecting all issues
// rather than stopping at the first one.
func (c *Config) Validate() []error {
	var errs []error

	errs = append(errs, c.validateNetworking()...)
	errs = append(errs, c.validateStorage()...)
	errs = append(errs, c.validateCache()...)
	errs = append(errs, c.validateMatching()...)
	errs = append(errs, c.validateInterests()...)

	return errs
}

func invalid(format string, args ...any) error {
	return kerr.Errorf(kerr.CodeConfigValidateInvalidValue, "config: "+format, args...)
}

func (c *Config) validateNetworking() []error {
	var errs []error

	if c.Networking.Listen == "" {
		return append(errs, invalid("networking.listen must not be empty"))
	}

	_, portStr, err := net.SplitHostPort(c.Networking.Listen)
	if err != nil {
		return append(errs, invalid("networking.listen must be a valid host:port address, got %q: %w",
			c.Networking.Listen, err))
	}
	port, err := strconv.Atoi(portStr)
	switch {
	case err != nil:
		errs = append(errs, invalid("networking.listen port must be a number, got %q", portStr))
	case port < 1 || port > 65535:
		errs = append(errs, invalid("networking.listen port must be between 1 and 65535, got %d", port))
	}

	if c.Networking.RateLimit.Requests < 0 {
		errs = append(errs, invalid("networking.rate_limit.requests must not be negative, got %d",
			c.Networking.RateLimit.Requests))
	} else if c.Networking.RateLimit.Requests > 0 && c.Networking.RateLimit.Window <= 0 {
		errs = append(errs, invalid("networking.rate_limit.window must be greater than 0 when requests is set, got %s",
			c.Networking.RateLimit.Window))
	}

	for i, origin := range c.Networking.CORSOrigins {
		if origin == "" {
			errs = append(errs, invalid("networking.cors_origins[%d] must not be empty", i))
		}
	}

	return errs
}

func (c *Config) validateStorage() []error {
	var errs []error

	if !slices.Contains(storageBackends, c.Storage.Backend) {
		errs = append(errs, invalid("storage.backend must be one of [%s], got %q",
			strings.Join(storageBackends, ", "), c.Storage.Backend))
	}
	if c.Storage.Backend == "sqlite" && c.Storage.Path == "" {
		errs = append(errs, invalid("storage.path must not be empty for the sqlite backend"))
	}

	return errs
}

func (c *Config) validateCache() []error {
	var errs []error

	if !slices.Contains(cacheBackends, c.Cache.Backend) {
		errs = append(errs, invalid("cache.backend must be one of [%s], got %q",
			strings.Join(cacheBackends, ", "), c.Cache.Backend))
	}
	if c.Cache.TTL <= 0 {
		errs = append(errs, invalid("cache.ttl must be greater than 0, got %s", c.Cache.TTL))
	}
	if c.Cache.Backend == "redis" {
		if c.Cache.Redis.Addr == "" {
			errs = append(errs, invalid("cache.redis.addr must not be empty for the redis backend"))
		}
		if c.Cache.Redis.DB < 0 {
			errs = append(errs, invalid("cache.redis.db must not be negative, got %d", c.Cache.Redis.DB))
		}
	}
	if c.Cache.Breaker.FailureThreshold == 0 {
		errs = append(errs, invalid("cache.breaker.failure_threshold must be greater than 0"))
	}
	if c.Cache.Breaker.Timeout <= 0 {
		errs = append(errs, invalid("cache.breaker.timeout must be greater than 0, got %s", c.Cache.Breaker.Timeout))
	}

	return errs
}

func (c *Config) validateMatching() []error {
	var errs []error

	if c.Matching.MaxLimit <= 0 {
		errs = append(errs, invalid("matching.max_limit must be greater than 0, got %d", c.Matching.MaxLimit))
	}
	if c.Matching.DefaultLimit <= 0 {
		errs = append(errs, invalid("matching.default_limit must be greater than 0, got %d", c.Matching.DefaultLimit))
	} else if c.Matching.MaxLimit > 0 && c.Matching.DefaultLimit > c.Matching.MaxLimit {
		errs = append(errs, invalid("matching.default_limit %d exceeds matching.max_limit %d",
			c.Matching.DefaultLimit, c.Matching.MaxLimit))
	}

	return errs
}

func (c *Config) validateInterests() []error {
	if _, err := c.Catalog(); err != nil {
		return []error{invalid("interests.catalog: %w", err)}
	}
	return nil
}
