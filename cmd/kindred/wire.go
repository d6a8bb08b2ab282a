// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kindred Contributors

package main

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kindred-dev/kindred/internal/cache"
	"github.com/kindred-dev/kindred/internal/config"
	"github.com/kindred-dev/kindred/internal/matching"
	"github.com/kindred-dev/kindred/internal/server"
	"github.com/kindred-dev/kindred/internal/store"
	_ "github.com/kindred-dev/kindred/internal/store/sqlite" // register sqlite backend
	kerr "github.com/kindred-dev/kindred/pkg/errors"
)

const (
	redisDialTimeout = 2 * time.Second
	janitorInterval  = time.Minute
)

// App holds all wired subsystems and manages their lifecycle.
type App struct {
	Server  *server.Server
	Service *matching.Service
	Store   store.ProfileStore
	Cache   cache.Backend
	Tasks   *matching.Dispatcher

	// memory is set when the in-process cache needs its janitor.
	memory *cache.MemoryBackend
}

// WireApp creates all subsystems and wires them together.
func WireApp(ctx context.Context, cfg *config.Config) (*App, error) {
	catalog, err := cfg.Catalog()
	if err != nil {
		return nil, kerr.Errorf(kerr.CodeCLISetupFailure, "building interest catalog: %w", err)
	}

	// 1. System of record.
	ps, err := store.NewProfileStore(&store.StorageConfig{
		Backend: cfg.Storage.Backend,
		Path:    cfg.Storage.Path,
	})
	if err != nil {
		return nil, kerr.Errorf(kerr.CodeCLISetupFailure, "opening profile store: %w", err)
	}

	// 2. Profile cache.
	backend, memory, err := newCacheBackend(ctx, cfg.Cache)
	if err != nil {
		_ = ps.Close()
		return nil, err
	}

	// 3. Matching service and its post-commit task worker.
	tasks := matching.NewDispatcher(0, 0)
	svc, err := matching.NewService(matching.Options{
		Store:        ps,
		Cache:        cache.NewProfileCache[matching.ProfileView](backend, cfg.Cache.TTL),
		Catalog:      catalog,
		Tasks:        tasks,
		DefaultLimit: cfg.Matching.DefaultLimit,
		MaxLimit:     cfg.Matching.MaxLimit,
	})
	if err != nil {
		_ = backend.Close()
		_ = ps.Close()
		return nil, kerr.Errorf(kerr.CodeCLISetupFailure, "creating matching service: %w", err)
	}

	// 4. HTTP server.
	srv, err := server.New(server.Config{
		ListenAddr:  cfg.Networking.Listen,
		CORSOrigins: cfg.Networking.CORSOrigins,
		RateLimit: server.RateLimitConfig{
			Requests: cfg.Networking.RateLimit.Requests,
			Window:   cfg.Networking.RateLimit.Window,
		},
		Version: version,
	})
	if err == nil {
		err = srv.RegisterServices(svc)
	}
	if err != nil {
		_ = backend.Close()
		_ = ps.Close()
		return nil, kerr.Errorf(kerr.CodeCLISetupFailure, "creating server: %w", err)
	}

	slog.Info("kindred wired",
		"storage", cfg.Storage.Backend,
		"cache", cfg.Cache.Backend,
		"interests", catalog.Len(),
	)

	return &App{
		Server:  srv,
		Service: svc,
		Store:   ps,
		Cache:   backend,
		Tasks:   tasks,
		memory:  memory,
	}, nil
}

// newCacheBackend builds the configured cache backend. An unreachable Redis
// does not prevent startup: requests are served from the store while the
// breaker keeps probing.
func newCacheBackend(ctx context.Context, cfg config.CacheConfig) (cache.Backend, *cache.MemoryBackend, error) {
	switch cfg.Backend {
	case "none":
		return cache.NopBackend{}, nil, nil
	case "memory":
		m := cache.NewMemoryBackend()
		return m, m, nil
	case "redis":
		opts := cache.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}
		dialCtx, cancel := context.WithTimeout(ctx, redisDialTimeout)
		defer cancel()

		rb, err := cache.NewRedisBackend(dialCtx, opts)
		if err != nil {
			slog.Warn("redis unreachable at startup, serving from the store until it recovers",
				"addr", cfg.Redis.Addr, "error", err)
			rb = cache.OpenRedisBackend(opts)
		}
		return cache.NewBreakerBackend(rb, cache.BreakerOptions{
			FailureThreshold: cfg.Breaker.FailureThreshold,
			Timeout:          cfg.Breaker.Timeout,
		}), nil, nil
	default:
		return nil, nil, kerr.New(kerr.CodeCacheBackendUnsupported,
			"unsupported cache backend: "+cfg.Backend, kerr.FieldBackend(cfg.Backend))
	}
}

// Run serves HTTP and runs background workers until ctx is cancelled or one
// of them fails.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return a.Tasks.Run(gctx) })
	if a.memory != nil {
		g.Go(func() error { return a.memory.RunJanitor(gctx, janitorInterval) })
	}
	g.Go(func() error { return a.Server.Start(gctx) })

	return g.Wait()
}

// Close releases all resources held by the app.
func (a *App) Close() error {
	type closer interface{ Close() error }
	closers := []closer{a.Cache, a.Store}

	var errs []error
	for _, c := range closers {
		if c != nil {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
