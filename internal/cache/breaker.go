// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kindred Contributors

package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/kindred-dev/kindred/internal/metrics"
	kerr "github.com/kindred-dev/kindred/pkg/errors"
)

// Compile-time interface check.
var _ Backend = (*BreakerBackend)(nil)

// BreakerOptions configures the circuit breaker around a cache backend.
type BreakerOptions struct {
	// Name identifies the breaker in logs.
	Name string

	// FailureThreshold is the number of consecutive failures before opening.
	FailureThreshold uint32

	// Timeout is how long the breaker stays open before probing again.
	Timeout time.Duration

	// MaxRequests is the number of probes allowed while half-open.
	MaxRequests uint32
}

// DefaultBreakerOptions returns production defaults.
func DefaultBreakerOptions() BreakerOptions {
	return BreakerOptions{
		Name:             "profile-cache",
		FailureThreshold: 5,
		Timeout:          10 * time.Second,
		MaxRequests:      1,
	}
}

// BreakerBackend short-circuits calls to a failing backend so that requests
// fall through to the system of record without waiting on cache timeouts.
// Misses and caller cancellations do not count as failures.
type BreakerBackend struct {
	next Backend
	cb   *gobreaker.CircuitBreaker[[]byte]
}

// NewBreakerBackend wraps next in a circuit breaker.
func NewBreakerBackend(next Backend, opts BreakerOptions) *BreakerBackend {
	def := DefaultBreakerOptions()
	if opts.Name == "" {
		opts.Name = def.Name
	}
	if opts.FailureThreshold == 0 {
		opts.FailureThreshold = def.FailureThreshold
	}
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}
	if opts.MaxRequests == 0 {
		opts.MaxRequests = def.MaxRequests
	}

	settings := gobreaker.Settings{
		Name:        opts.Name,
		MaxRequests: opts.MaxRequests,
		Timeout:     opts.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrMiss) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.CacheBreakerState.Set(float64(to))
			slog.Warn("cache circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	}

	return &BreakerBackend{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[[]byte](settings),
	}
}

// State returns the current breaker state.
func (b *BreakerBackend) State() gobreaker.State {
	return b.cb.State()
}

func (b *BreakerBackend) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := b.cb.Execute(func() ([]byte, error) {
		return b.next.Get(ctx, key)
	})
	return val, b.translate(err)
}

func (b *BreakerBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := b.cb.Execute(func() ([]byte, error) {
		return nil, b.next.Set(ctx, key, value, ttl)
	})
	return b.translate(err)
}

func (b *BreakerBackend) Delete(ctx context.Context, key string) error {
	_, err := b.cb.Execute(func() ([]byte, error) {
		return nil, b.next.Delete(ctx, key)
	})
	return b.translate(err)
}

func (b *BreakerBackend) Close() error {
	return b.next.Close()
}

func (b *BreakerBackend) translate(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return kerr.Wrap(err, kerr.CodeCacheBackendUnavailable, "cache circuit open")
	}
	return err
}
