// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kindred Contributors

package server

import (
	"context"

	"github.com/kindred-dev/kindred/internal/interest"
	"github.com/kindred-dev/kindred/internal/matching"
	kerr "github.com/kindred-dev/kindred/pkg/errors"
)

// ProfileService provides profile and match operations for REST handlers.
type ProfileService interface {
	CreateProfile(ctx context.Context, in matching.CreateProfileInput) (int64, error)
	UpdateInterests(ctx context.Context, id int64, names []string) error
	GetProfile(ctx context.Context, id int64) (*matching.ProfileView, error)
	ListProfiles(ctx context.Context, offset, limit int) ([]matching.ProfileView, error)
	DeleteProfile(ctx context.Context, id int64) error
	Matches(ctx context.Context, id int64, limit int) ([]matching.Match, error)
	Catalog() *interest.Catalog
	DefaultLimit() int
}

var _ ProfileService = (*matching.Service)(nil)

// RegisterServices sets the service dependencies and registers REST routes.
func (s *Server) RegisterServices(profiles ProfileService) error {
	if profiles == nil {
		return kerr.New(kerr.CodeServerConfigInvalid, "profile service is required")
	}
	if s.profiles != nil {
		return kerr.New(kerr.CodeServerConfigInvalid, "services already registered")
	}
	s.profiles = profiles
	s.registerRoutes()
	return nil
}
