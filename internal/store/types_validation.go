// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kindred Contributors

package store

import (
	kerr "github.com/kindred-dev/kindred/pkg/errors"
)

// Valid reports whether c is one of the two known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryMale, CategoryFemale:
		return true
	default:
		return false
	}
}

// Opposite returns the category profiles in c are matched against.
func (c Category) Opposite() Category {
	if c == CategoryMale {
		return CategoryFemale
	}
	return CategoryMale
}

// Validate checks that the Profile has all required fields set correctly.
func (p Profile) Validate() error {
	if p.Name == "" {
		return kerr.New(kerr.CodeStoreInvalidInput, "profile: Name is required")
	}
	if p.Email == "" {
		return kerr.New(kerr.CodeStoreInvalidInput, "profile: Email is required")
	}
	if !p.Category.Valid() {
		return kerr.Errorf(kerr.CodeStoreInvalidInput, "profile: invalid category %q", p.Category)
	}
	return nil
}

// Validate checks pagination bounds.
func (o ListOpts) Validate() error {
	if o.Offset < 0 {
		return kerr.Errorf(kerr.CodeStoreInvalidInput, "list: offset must not be negative, got %d", o.Offset)
	}
	if o.Limit <= 0 {
		return kerr.Errorf(kerr.CodeStoreInvalidInput, "list: limit must be positive, got %d", o.Limit)
	}
	return nil
}
