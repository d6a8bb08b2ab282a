// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kindred Contributors

package sqlite_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kindred-dev/kindred/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProfileStore_ViaFactory(t *testing.T) {
	path := filepath.Join(testDir(t), "factory.db")

	ps, err := store.NewProfileStore(&store.StorageConfig{Backend: "sqlite", Path: path})
	require.NoError(t, err)
	t.Cleanup(func() { _ = ps.Close() })

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestNewProfileStore_DefaultsToSQLite(t *testing.T) {
	path := filepath.Join(testDir(t), "default.db")

	ps, err := store.NewProfileStore(&store.StorageConfig{Path: path})
	require.NoError(t, err)
	t.Cleanup(func() { _ = ps.Close() })
	assert.Contains(t, store.Backends(), "sqlite")
}

func TestNewProfileStore_PathIsDirectory(t *testing.T) {
	dir := testDir(t)
	dbPath := filepath.Join(dir, "profiles.db")
	require.NoError(t, os.Mkdir(dbPath, 0o755))

	_, err := store.NewProfileStore(&store.StorageConfig{Backend: "sqlite", Path: dbPath})
	assert.Error(t, err)
}
