// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kindred Contributors

package config

import (
	_ "embed"
	"log/slog"
	"os"
	"path/filepath"

	kerr "github.com/kindred-dev/kindred/pkg/errors"
)

//go:embed kindred.yaml.default
var DefaultConfigYAML []byte

// DefaultConfigPath returns ~/.config/kindred/kindred.yaml.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", kerr.Errorf(kerr.CodeConfigLoadReadFailure, "resolving home directory: %w", err)
	}
	return filepath.Join(home, ".config", "kindred", "kindred.yaml"), nil
}

// BootstrapConfig writes the default commented config to path if it does not
// already exist. Returns the path written, or empty string if the file
// already existed or could not be written. Failures are logged and skipped.
func BootstrapConfig(path string) string {
	if _, err := os.Stat(path); err == nil {
		return ""
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		slog.Debug("skipping config bootstrap: cannot create directory", "path", dir, "error", err)
		return ""
	}

	if err := os.WriteFile(path, DefaultConfigYAML, 0o600); err != nil {
		slog.Debug("skipping config bootstrap: cannot write config", "path", path, "error", err)
		return ""
	}

	slog.Info("created default config", "path", path)
	return path
}
