// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kindred Contributors

//go:build !windows

package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestWarnInsecurePermissions(t *testing.T) {
	for perm, warn := range map[os.FileMode]bool{
		0o600: false,
		0o400: false,
		0o640: true,
		0o604: true,
		0o644: true,
		0o620: true,
		0o601: true,
	} {
		t.Run(perm.String(), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "kindred.yaml")
			require.NoError(t, os.WriteFile(path, []byte("cache:\n  redis:\n    password: s3cret\n"), perm))
			require.NoError(t, os.Chmod(path, perm))

			logs := captureLogs(t)
			WarnInsecurePermissions(path)

			if !warn {
				assert.NotContains(t, logs.String(), "insecure permissions")
				return
			}
			assert.Contains(t, logs.String(), "level=WARN")
			assert.Contains(t, logs.String(), path)
			assert.Contains(t, logs.String(), "recommended=0600")
		})
	}
}

func TestWarnInsecurePermissions_NoFile(t *testing.T) {
	logs := captureLogs(t)
	WarnInsecurePermissions("")
	assert.Empty(t, logs.String())

	WarnInsecurePermissions(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Contains(t, logs.String(), "level=DEBUG")
	assert.NotContains(t, logs.String(), "level=WARN")
}
