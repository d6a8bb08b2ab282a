// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kindred Contributors

package sqlite

import (
	"github.com/kindred-dev/kindred/internal/store"
)

// defaultDBPath is used when the storage config leaves the path empty.
const defaultDBPath = "kindred.db"

func init() {
	store.RegisterBackend("sqlite", newProfileStore)
}

func newProfileStore(cfg *store.StorageConfig) (store.ProfileStore, error) {
	path := cfg.Path
	if path == "" {
		path = defaultDBPath
	}
	return NewProfileStore(path)
}
