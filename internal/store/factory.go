// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kindred Contributors

package store

import (
	"sort"
	"sync"

	kerr "github.com/kindred-dev/kindred/pkg/errors"
)

// ProfileStoreFactory opens a profile store for the given configuration.
type ProfileStoreFactory func(cfg *StorageConfig) (ProfileStore, error)

var (
	factories   = map[string]ProfileStoreFactory{}
	factoriesMu sync.RWMutex
)

// RegisterBackend registers a factory for a named storage backend.
// Backend packages call this from init(). This function is goroutine-safe.
func RegisterBackend(name string, f ProfileStoreFactory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[name] = f
}

// Backends returns the registered backend names, sorted.
func Backends() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// resolveBackend returns the effective backend name, defaulting to "sqlite".
func resolveBackend(cfg *StorageConfig) string {
	if cfg.Backend == "" {
		return "sqlite"
	}
	return cfg.Backend
}

// NewProfileStore opens the profile store selected by cfg.
func NewProfileStore(cfg *StorageConfig) (ProfileStore, error) {
	backend := resolveBackend(cfg)

	factoriesMu.RLock()
	factory, ok := factories[backend]
	factoriesMu.RUnlock()
	if !ok {
		return nil, kerr.New(kerr.CodeStoreBackendUnsupported, "unsupported storage backend: "+backend,
			kerr.FieldBackend(backend))
	}

	return factory(cfg)
}
