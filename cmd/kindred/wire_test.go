// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kindred Contributors

package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kindred-dev/kindred/internal/cache"
	"github.com/kindred-dev/kindred/internal/config"
	"github.com/kindred-dev/kindred/internal/matching"
	kerr "github.com/kindred-dev/kindred/pkg/errors"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Networking.Listen = freeAddr(t)
	cfg.Storage.Path = filepath.Join(t.TempDir(), "kindred.db")
	cfg.Cache.Backend = "memory"
	return cfg
}

func freeAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return addr
}

func TestWireApp_SQLiteAndMemoryCache(t *testing.T) {
	ctx := context.Background()
	app, err := WireApp(ctx, testConfig(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	a, err := app.Service.CreateProfile(ctx, matching.CreateProfileInput{
		Name: "A", Email: "a@example.com", Category: "M", Interests: []string{"Running", "Yoga"},
	})
	require.NoError(t, err)
	b, err := app.Service.CreateProfile(ctx, matching.CreateProfileInput{
		Name: "B", Email: "b@example.com", Category: "F", Interests: []string{"Running", "Cycling"},
	})
	require.NoError(t, err)

	matches, err := app.Service.Matches(ctx, a, 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, b, matches[0].Candidate.ID)
	assert.Equal(t, 1, matches[0].Score)
}

func TestWireApp_UnsupportedCache(t *testing.T) {
	cfg := testConfig(t)
	cfg.Cache.Backend = "memcached"

	_, err := WireApp(context.Background(), cfg)
	require.Error(t, err)
	assert.True(t, kerr.HasCode(err, kerr.CodeCacheBackendUnsupported))
}

func TestWireApp_UnreachableRedisStillStarts(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.Backend = "memory"
	cfg.Cache.Backend = "redis"
	cfg.Cache.Redis.Addr = "127.0.0.1:1"

	app, err := WireApp(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	assert.IsType(t, &cache.BreakerBackend{}, app.Cache)

	ctx := context.Background()
	id, err := app.Service.CreateProfile(ctx, matching.CreateProfileInput{
		Name: "C", Email: "c@example.com", Category: "F",
	})
	require.NoError(t, err)
	view, err := app.Service.GetProfile(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "C", view.Name)
}

func TestApp_RunServesUntilCancelled(t *testing.T) {
	cfg := testConfig(t)
	app, err := WireApp(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	url := fmt.Sprintf("http://%s/health", cfg.Networking.Listen)
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 3*time.Second, 25*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
}
