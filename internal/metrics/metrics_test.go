// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kindred Contributors

package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kindred-dev/kindred/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheRequestsCounter(t *testing.T) {
	c := metrics.CacheRequests.WithLabelValues("get", metrics.ResultHit)
	before := testutil.ToFloat64(c)
	c.Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(c))
}

func TestHandlerExposesKindredMetrics(t *testing.T) {
	metrics.MatchCandidates.Observe(3)

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "kindred_match_candidates")
	assert.Contains(t, string(body), "go_goroutines")
}
