// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kindred Contributors

package cache

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/kindred-dev/kindred/internal/metrics"
	kerr "github.com/kindred-dev/kindred/pkg/errors"
)

// DefaultTTL is how long a cached profile stays valid after its last Put.
const DefaultTTL = 86400 * time.Second

// KeyPrefix namespaces profile entries in the backend.
const KeyPrefix = "user:"

// Key returns the backend key for a profile id.
func Key(id int64) string {
	return KeyPrefix + strconv.FormatInt(id, 10)
}

// ProfileCache stores JSON snapshots of V keyed by profile id. It never
// reads the system of record; a miss is reported to the caller.
type ProfileCache[V any] struct {
	backend Backend
	ttl     time.Duration
}

// NewProfileCache returns a cache over backend. A non-positive ttl selects
// DefaultTTL.
func NewProfileCache[V any](backend Backend, ttl time.Duration) *ProfileCache[V] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ProfileCache[V]{backend: backend, ttl: ttl}
}

// TTL returns the expiry applied by Put.
func (c *ProfileCache[V]) TTL() time.Duration { return c.ttl }

// Get returns the cached snapshot for id. ok is false on a miss. A non-nil
// error means the backend failed and the caller should fall back.
func (c *ProfileCache[V]) Get(ctx context.Context, id int64) (v V, ok bool, err error) {
	raw, err := c.backend.Get(ctx, Key(id))
	if errors.Is(err, ErrMiss) {
		metrics.CacheRequests.WithLabelValues("get", metrics.ResultMiss).Inc()
		return v, false, nil
	}
	if err != nil {
		metrics.CacheRequests.WithLabelValues("get", metrics.ResultError).Inc()
		return v, false, unavailableOr(err, "cache get")
	}

	if err := json.Unmarshal(raw, &v); err != nil {
		// A corrupt entry must not shadow the store; drop it.
		slog.Warn("dropping undecodable cache entry", "key", Key(id), "error", err)
		metrics.CacheRequests.WithLabelValues("get", metrics.ResultMiss).Inc()
		if delErr := c.backend.Delete(ctx, Key(id)); delErr != nil {
			slog.Warn("deleting undecodable cache entry", "key", Key(id), "error", delErr)
		}
		var zero V
		return zero, false, nil
	}

	metrics.CacheRequests.WithLabelValues("get", metrics.ResultHit).Inc()
	return v, true, nil
}

// Put overwrites the snapshot for id and resets its expiry.
func (c *ProfileCache[V]) Put(ctx context.Context, id int64, v V) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return kerr.Wrap(err, kerr.CodeCacheCodecInvalid, "encoding cache entry", kerr.FieldUserID(id))
	}
	if err := c.backend.Set(ctx, Key(id), raw, c.ttl); err != nil {
		metrics.CacheRequests.WithLabelValues("put", metrics.ResultError).Inc()
		return unavailableOr(err, "cache put")
	}
	metrics.CacheRequests.WithLabelValues("put", metrics.ResultOK).Inc()
	return nil
}

// Invalidate removes the snapshot for id. Absent entries are not an error.
func (c *ProfileCache[V]) Invalidate(ctx context.Context, id int64) error {
	if err := c.backend.Delete(ctx, Key(id)); err != nil {
		metrics.CacheRequests.WithLabelValues("invalidate", metrics.ResultError).Inc()
		return unavailableOr(err, "cache invalidate")
	}
	metrics.CacheRequests.WithLabelValues("invalidate", metrics.ResultOK).Inc()
	return nil
}

// unavailableOr tags uncoded backend errors as cache unavailability.
func unavailableOr(err error, msg string) error {
	if kerr.CodeOf(err) != "" {
		return err
	}
	return kerr.Wrap(err, kerr.CodeCacheBackendUnavailable, msg)
}
