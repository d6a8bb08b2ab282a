// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kindred Contributors

package store

import (
	"time"

	"github.com/kindred-dev/kindred/internal/interest"
)

// Category partitions profiles into two mutually exclusive matching pools.
type Category string

const (
	CategoryMale   Category = "M"
	CategoryFemale Category = "F"
)

// Profile is a persisted matchmaking profile.
type Profile struct {
	ID        int64
	Name      string
	Email     string
	Category  Category
	City      string
	Interests interest.Vector
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ListOpts provides pagination parameters for list operations.
type ListOpts struct {
	Limit  int
	Offset int
}
