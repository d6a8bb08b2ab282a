// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kindred Contributors

package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kindred-dev/kindred/internal/cache"
	kerr "github.com/kindred-dev/kindred/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type snapshot struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Interests []string `json:"interests"`
}

// brokenBackend fails every call.
type brokenBackend struct{}

func (brokenBackend) Get(context.Context, string) ([]byte, error) { return nil, errors.New("down") }
func (brokenBackend) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("down")
}
func (brokenBackend) Delete(context.Context, string) error { return errors.New("down") }
func (brokenBackend) Close() error                         { return nil }

func TestKey(t *testing.T) {
	assert.Equal(t, "user:42", cache.Key(42))
}

func TestProfileCache_PutGetInvalidate(t *testing.T) {
	ctx := context.Background()
	pc := cache.NewProfileCache[snapshot](cache.NewMemoryBackend(), 0)
	assert.Equal(t, cache.DefaultTTL, pc.TTL())

	_, ok, err := pc.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	want := snapshot{ID: 1, Name: "Asha", Interests: []string{"Yoga"}}
	require.NoError(t, pc.Put(ctx, 1, want))

	got, ok, err := pc.Get(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)

	require.NoError(t, pc.Invalidate(ctx, 1))
	_, ok, err = pc.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, pc.Invalidate(ctx, 1), "invalidating an absent entry is a no-op")
}

func TestProfileCache_PutOverwrites(t *testing.T) {
	ctx := context.Background()
	pc := cache.NewProfileCache[snapshot](cache.NewMemoryBackend(), time.Hour)

	require.NoError(t, pc.Put(ctx, 1, snapshot{ID: 1, Interests: []string{"Yoga"}}))
	require.NoError(t, pc.Put(ctx, 1, snapshot{ID: 1, Interests: []string{"Pets"}}))

	got, ok, err := pc.Get(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"Pets"}, got.Interests)
}

func TestProfileCache_ExpiresAfterTTL(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	pc := cache.NewProfileCache[snapshot](cache.NewMemoryBackend(cache.WithClock(clock.Now)), cache.DefaultTTL)

	require.NoError(t, pc.Put(ctx, 1, snapshot{ID: 1}))

	clock.Advance(cache.DefaultTTL - time.Second)
	_, ok, err := pc.Get(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	clock.Advance(time.Second)
	_, ok, err = pc.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProfileCache_CorruptEntryIsDropped(t *testing.T) {
	ctx := context.Background()
	backend := cache.NewMemoryBackend()
	pc := cache.NewProfileCache[snapshot](backend, time.Hour)

	require.NoError(t, backend.Set(ctx, cache.Key(5), []byte("{not json"), time.Hour))

	_, ok, err := pc.Get(ctx, 5)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, backend.Len())
}

func TestProfileCache_BackendFailuresAreUnavailable(t *testing.T) {
	ctx := context.Background()
	pc := cache.NewProfileCache[snapshot](brokenBackend{}, time.Hour)

	_, ok, err := pc.Get(ctx, 1)
	assert.False(t, ok)
	assert.True(t, kerr.IsUnavailable(err))

	assert.True(t, kerr.IsUnavailable(pc.Put(ctx, 1, snapshot{})))
	assert.True(t, kerr.IsUnavailable(pc.Invalidate(ctx, 1)))
}
