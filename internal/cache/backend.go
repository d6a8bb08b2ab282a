// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kindred Contributors

// Package cache implements the cache-aside layer that sits in front of the
// profile store. The cache is an optimization: callers treat every error it
// returns as a miss.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss reports that a key is not cached.
var ErrMiss = errors.New("cache miss")

// Backend is a string-keyed byte store with per-entry expiry.
type Backend interface {
	// Get returns ErrMiss when the key is absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key, replacing any previous value and expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}

// Compile-time interface check.
var _ Backend = NopBackend{}

// NopBackend caches nothing.
type NopBackend struct{}

func (NopBackend) Get(context.Context, string) ([]byte, error)               { return nil, ErrMiss }
func (NopBackend) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NopBackend) Delete(context.Context, string) error                     { return nil }
func (NopBackend) Close() error                                             { return nil }
