// Copyright 2025 Saisongs Contributors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
[server]
url = "https://api.example.org"
jwt_secret = "s3cret"
user_id = "user-1"
device_id = "laptop"

[database]
path = "/tmp/saisongs/queue.db"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "https://api.example.org", cfg.Server.URL)
	require.Equal(t, "s3cret", cfg.Server.JWTSecret)
	require.Equal(t, "laptop", cfg.Server.DeviceID)
	require.Equal(t, "/tmp/saisongs/queue.db", cfg.Database.Path)
}

func TestLoadConfigDefaultsDatabasePath(t *testing.T) {
	path := writeConfig(t, `
[server]
url = "https://api.example.org"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(filepath.Dir(path), "queue.db"), cfg.Database.Path)
}

func TestLoadConfigRequiresServerURL(t *testing.T) {
	path := writeConfig(t, `
[database]
path = "/tmp/q.db"
`)

	_, err := LoadConfig(path)
	require.Error(t, err)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}
