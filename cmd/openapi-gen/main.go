// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kindred Contributors

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/kindred-dev/kindred/internal/interest"
	"github.com/kindred-dev/kindred/internal/matching"
	"github.com/kindred-dev/kindred/internal/server"
	kerr "github.com/kindred-dev/kindred/pkg/errors"
)

func main() {
	spec, err := generateSpec()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	outPath := "api/openapi/spec.json"
	if len(os.Args) > 1 {
		outPath = os.Args[1]
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "error creating output dir: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile(outPath, spec, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "error writing spec: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("OpenAPI spec written to %s\n", outPath)
}

// generateSpec creates a server with all routes registered and extracts the
// OpenAPI spec that huma generates from the Go type annotations.
func generateSpec() ([]byte, error) {
	srv, err := server.New(server.Config{ListenAddr: "127.0.0.1:0"})
	if err != nil {
		return nil, kerr.Errorf(kerr.CodeCLISetupFailure, "creating server: %w", err)
	}
	if err := srv.RegisterServices(stubProfiles{}); err != nil {
		return nil, kerr.Errorf(kerr.CodeCLISetupFailure, "registering routes: %w", err)
	}

	return json.MarshalIndent(srv.API().OpenAPI(), "", "  ")
}

// stubProfiles registers every route for schema discovery. Handlers are
// never invoked during spec generation.
type stubProfiles struct{}

func (stubProfiles) CreateProfile(context.Context, matching.CreateProfileInput) (int64, error) {
	return 0, nil
}
func (stubProfiles) UpdateInterests(context.Context, int64, []string) error { return nil }
func (stubProfiles) GetProfile(context.Context, int64) (*matching.ProfileView, error) {
	return nil, nil
}
func (stubProfiles) ListProfiles(context.Context, int, int) ([]matching.ProfileView, error) {
	return nil, nil
}
func (stubProfiles) DeleteProfile(context.Context, int64) error { return nil }
func (stubProfiles) Matches(context.Context, int64, int) ([]matching.Match, error) {
	return nil, nil
}
func (stubProfiles) Catalog() *interest.Catalog { return interest.Default() }
func (stubProfiles) DefaultLimit() int          { return matching.DefaultLimit }
