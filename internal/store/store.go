// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kindred Contributors

package store

import (
	"context"
	"iter"

	"github.com/kindred-dev/kindred/internal/interest"
)

// ProfileStore is the system of record for profiles. Every mutating method
// commits atomically: it either fully applies or leaves no trace.
type ProfileStore interface {
	// CreateProfile inserts p and sets p.ID to the assigned identifier.
	CreateProfile(ctx context.Context, p *Profile) error
	GetProfile(ctx context.Context, id int64) (*Profile, error)
	// UpdateInterests replaces the interest vector and returns the committed row.
	UpdateInterests(ctx context.Context, id int64, interests interest.Vector) (*Profile, error)
	DeleteProfile(ctx context.Context, id int64) error
	ListProfiles(ctx context.Context, opts ListOpts) ([]*Profile, error)

	// Candidates yields every profile whose ID differs from excludeID and
	// whose category differs from excludeCategory, in ascending ID order.
	// Iteration stops after the first non-nil error.
	Candidates(ctx context.Context, excludeID int64, excludeCategory Category) iter.Seq2[*Profile, error]

	Close() error
}
