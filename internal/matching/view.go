// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kindred Contributors

package matching

import (
	"github.com/kindred-dev/kindred/internal/interest"
	"github.com/kindred-dev/kindred/internal/store"
)

// ProfileView is the public projection of a profile. It is what the cache
// stores and what callers receive; interests are decoded names, never the
// raw vector.
type ProfileView struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Category  string   `json:"category"`
	City      string   `json:"city"`
	Interests []string `json:"interests"`
}

// Match is one ranked candidate.
type Match struct {
	Candidate ProfileView `json:"candidate"`
	Score     int         `json:"similarity"`
}

// CreateProfileInput carries the fields of a new profile.
type CreateProfileInput struct {
	Name      string
	Email     string
	Category  string
	City      string
	Interests []string
}

func newView(c *interest.Catalog, p *store.Profile) ProfileView {
	return ProfileView{
		ID:        p.ID,
		Name:      p.Name,
		Email:     p.Email,
		Category:  string(p.Category),
		City:      p.City,
		Interests: c.Decode(p.Interests),
	}
}
