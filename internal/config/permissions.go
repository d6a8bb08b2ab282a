// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kindred Contributors

//go:build !windows

package config

import (
	"io/fs"
	"log/slog"
	"os"
)

// exposedBits are the group and other permission bits. Any of them set on
// a file holding cache.redis.password leaks access to it.
const exposedBits fs.FileMode = 0o077

// WarnInsecurePermissions logs a warning when the config file at path is
// accessible to anyone but its owner. It never fails startup.
func WarnInsecurePermissions(path string) {
	if path == "" {
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		slog.Debug("skipping config permission check", "path", path, "error", err)
		return
	}

	if perm := info.Mode().Perm(); perm&exposedBits != 0 {
		slog.Warn("config file has insecure permissions, redis password may be exposed to other users",
			"path", path,
			"mode", perm,
			"recommended", "0600",
		)
	}
}
