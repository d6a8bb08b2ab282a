// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kindred Contributors

package server

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	"github.com/kindred-dev/kindred/internal/matching"
	kerr "github.com/kindred-dev/kindred/pkg/errors"
)

func (s *Server) registerRoutes() {
	// Profile endpoints
	huma.Register(s.api, huma.Operation{
		OperationID:   "create-user",
		Method:        http.MethodPost,
		Path:          "/api/v1/users",
		Summary:       "Create a profile",
		Tags:          []string{"users"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "list-users",
		Method:      http.MethodGet,
		Path:        "/api/v1/users",
		Summary:     "List profiles",
		Tags:        []string{"users"},
	}, s.handleListUsers)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-user",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{id}",
		Summary:     "Get a profile",
		Tags:        []string{"users"},
	}, s.handleGetUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "update-user-interests",
		Method:      http.MethodPut,
		Path:        "/api/v1/users/{id}/interests",
		Summary:     "Replace a profile's interests",
		Tags:        []string{"users"},
	}, s.handleUpdateInterests)

	huma.Register(s.api, huma.Operation{
		OperationID: "delete-user",
		Method:      http.MethodDelete,
		Path:        "/api/v1/users/{id}",
		Summary:     "Delete a profile",
		Tags:        []string{"users"},
	}, s.handleDeleteUser)

	// Match endpoint
	huma.Register(s.api, huma.Operation{
		OperationID: "get-user-matches",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{id}/matches",
		Summary:     "Rank opposite-category profiles by shared interests",
		Tags:        []string{"matches"},
	}, s.handleMatches)

	huma.Register(s.api, huma.Operation{
		OperationID: "list-interests",
		Method:      http.MethodGet,
		Path:        "/api/v1/interests",
		Summary:     "List the interest catalog",
		Tags:        []string{"system"},
	}, s.handleListInterests)
}

// --- Request/Response types for huma ---

type userIDInput struct {
	ID int64 `path:"id" doc:"Profile identifier"`
}

type createUserInput struct {
	Body struct {
		Name      string   `json:"name" doc:"Display name"`
		Email     string   `json:"email" doc:"Contact address, unique per profile"`
		Category  string   `json:"category" example:"M" doc:"M or F; matches are drawn from the other category"`
		City      string   `json:"city,omitempty" doc:"Location"`
		Interests []string `json:"interests,omitempty" doc:"Interest names; names outside the catalog are ignored"`
	}
}

type userMessageOutput struct {
	Body struct {
		UserID  int64  `json:"user_id"`
		Message string `json:"message"`
	}
}

type updateInterestsInput struct {
	ID   int64 `path:"id" doc:"Profile identifier"`
	Body struct {
		Interests []string `json:"interests" doc:"Replacement interest set"`
	}
}

type listUsersInput struct {
	Skip  string `query:"skip" doc:"Number of profiles to skip (default 0)"`
	Limit string `query:"limit" doc:"Page size (default 10)"`
}

type listUsersOutput struct {
	Body struct {
		Users []matching.ProfileView `json:"users"`
	}
}

type getUserOutput struct {
	Body matching.ProfileView
}

type deleteUserOutput struct {
	Body struct {
		Message string `json:"message"`
	}
}

type matchesInput struct {
	ID    int64  `path:"id" doc:"Profile identifier"`
	Limit string `query:"limit" doc:"Maximum number of matches (default 10)"`
}

type matchesOutput struct {
	Body struct {
		Matches []matching.Match `json:"matches"`
	}
}

// InterestEntry is one catalog name and the bit it occupies.
type InterestEntry struct {
	Bit  int    `json:"bit"`
	Name string `json:"name"`
}

type listInterestsOutput struct {
	Body struct {
		Interests []InterestEntry `json:"interests"`
	}
}

// --- Handlers ---

func (s *Server) handleCreateUser(ctx context.Context, input *createUserInput) (*userMessageOutput, error) {
	id, err := s.profiles.CreateProfile(ctx, matching.CreateProfileInput{
		Name:      input.Body.Name,
		Email:     input.Body.Email,
		Category:  input.Body.Category,
		City:      input.Body.City,
		Interests: input.Body.Interests,
	})
	if err != nil {
		return nil, apiError("create-user", err)
	}
	out := &userMessageOutput{}
	out.Body.UserID = id
	out.Body.Message = "User created successfully."
	return out, nil
}

func (s *Server) handleListUsers(ctx context.Context, input *listUsersInput) (*listUsersOutput, error) {
	skip, err := intParam("skip", input.Skip, 0)
	if err != nil {
		return nil, apiError("list-users", err)
	}
	limit, err := intParam("limit", input.Limit, s.profiles.DefaultLimit())
	if err != nil {
		return nil, apiError("list-users", err)
	}

	users, err := s.profiles.ListProfiles(ctx, skip, limit)
	if err != nil {
		return nil, apiError("list-users", err)
	}
	out := &listUsersOutput{}
	out.Body.Users = users
	return out, nil
}

func (s *Server) handleGetUser(ctx context.Context, input *userIDInput) (*getUserOutput, error) {
	view, err := s.profiles.GetProfile(ctx, input.ID)
	if err != nil {
		return nil, apiError("get-user", err)
	}
	return &getUserOutput{Body: *view}, nil
}

func (s *Server) handleUpdateInterests(ctx context.Context, input *updateInterestsInput) (*userMessageOutput, error) {
	if err := s.profiles.UpdateInterests(ctx, input.ID, input.Body.Interests); err != nil {
		return nil, apiError("update-user-interests", err)
	}
	out := &userMessageOutput{}
	out.Body.UserID = input.ID
	out.Body.Message = "User interests updated successfully."
	return out, nil
}

func (s *Server) handleDeleteUser(ctx context.Context, input *userIDInput) (*deleteUserOutput, error) {
	if err := s.profiles.DeleteProfile(ctx, input.ID); err != nil {
		return nil, apiError("delete-user", err)
	}
	out := &deleteUserOutput{}
	out.Body.Message = "User deleted successfully."
	return out, nil
}

func (s *Server) handleMatches(ctx context.Context, input *matchesInput) (*matchesOutput, error) {
	limit, err := intParam("limit", input.Limit, s.profiles.DefaultLimit())
	if err != nil {
		return nil, apiError("get-user-matches", err)
	}

	matches, err := s.profiles.Matches(ctx, input.ID, limit)
	if err != nil {
		return nil, apiError("get-user-matches", err)
	}
	out := &matchesOutput{}
	out.Body.Matches = matches
	return out, nil
}

func (s *Server) handleListInterests(_ context.Context, _ *struct{}) (*listInterestsOutput, error) {
	names := s.profiles.Catalog().Names()
	out := &listInterestsOutput{}
	out.Body.Interests = make([]InterestEntry, len(names))
	for i, name := range names {
		out.Body.Interests[i] = InterestEntry{Bit: i, Name: name}
	}
	return out, nil
}

// intParam parses an optional integer query parameter. An absent value
// yields fallback; explicit values, including zero, are passed through.
func intParam(name, raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, kerr.Errorf(kerr.CodeServerRequestInvalid, "%s must be an integer, got %q", name, raw)
	}
	return n, nil
}

// apiError maps a coded error to an HTTP problem response. Server-side
// failures are logged and their detail withheld from the client.
func apiError(op string, err error) error {
	status := kerr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "op", op, "code", kerr.CodeOf(err), "error", err)
		return huma.NewError(status, http.StatusText(status))
	}
	return huma.NewError(status, err.Error())
}
