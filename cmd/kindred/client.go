// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kindred Contributors

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	kerr "github.com/kindred-dev/kindred/pkg/errors"
)

const defaultAddress = "127.0.0.1:8080"

// defaultHTTPClient is the package-level HTTP client used by client commands.
// Overridden in tests via httptest.
var defaultHTTPClient = &http.Client{
	Timeout: 5 * time.Second,
}

// apiClient provides HTTP access to a running kindred server.
type apiClient struct {
	baseURL string
	http    *http.Client
}

// newAPIClient creates a client targeting the given host:port address.
func newAPIClient(addr string) *apiClient {
	return &apiClient{
		baseURL: "http://" + addr,
		http:    defaultHTTPClient,
	}
}

func (c *apiClient) getJSON(ctx context.Context, path string, dest any) error {
	return c.do(ctx, http.MethodGet, path, dest)
}

func (c *apiClient) deleteJSON(ctx context.Context, path string, dest any) error {
	return c.do(ctx, http.MethodDelete, path, dest)
}

// do performs a request and decodes the JSON response into dest.
// Returns a cli.server.not_running error on connection refused.
func (c *apiClient) do(ctx context.Context, method, path string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return kerr.Errorf(kerr.CodeCLIRequestFailure, "building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if isDialError(err) {
			return kerr.Errorf(kerr.CodeCLIServerNotRunning, "kindred is not running at %s: %w",
				req.URL.Host, err)
		}
		return kerr.Errorf(kerr.CodeCLIRequestFailure, "request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return kerr.Errorf(kerr.CodeCLIRequestFailure, "server returned status %d: %s",
			resp.StatusCode, problemDetail(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return kerr.Errorf(kerr.CodeCLIRequestFailure, "invalid response: %w", err)
	}
	return nil
}

// problemDetail extracts the detail of an RFC 9457 problem body, falling
// back to the raw body.
func problemDetail(body []byte) string {
	var problem struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &problem); err == nil && problem.Detail != "" {
		return problem.Detail
	}
	return string(body)
}

// isDialError returns true if err is a net dial error (connection refused, etc.).
func isDialError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return opErr.Op == "dial"
	}
	return false
}

// notRunning prints a friendly message for an unreachable server and
// reports whether err was that case.
func notRunning(w io.Writer, addr string, err error) bool {
	if !kerr.HasCode(err, kerr.CodeCLIServerNotRunning) {
		return false
	}
	_, _ = fmt.Fprintf(w, "kindred at %s is not running (connection refused)\n", addr)
	return true
}
