// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kindred Contributors

package store

import "errors"

// Sentinel errors for store operations. Backends wrap them in coded errors
// so callers can use either errors.Is or the pkg/errors classifiers.
var (
	// ErrNotFound indicates the requested profile does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a unique constraint violation (duplicate email).
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indicates the input parameters are invalid or malformed.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDatabase indicates a general database error occurred.
	ErrDatabase = errors.New("database error")
)
