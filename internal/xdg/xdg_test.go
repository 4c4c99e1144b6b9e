// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhraseHub Contributors

package xdg

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	if got, want := ConfigDir(), "/custom/config/phrasehub"; got != want {
		t.Errorf("ConfigDir() = %q, want %q", got, want)
	}

	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", "/home/testuser")
	if got, want := ConfigDir(), "/home/testuser/.config/phrasehub"; got != want {
		t.Errorf("ConfigDir() = %q, want %q", got, want)
	}
}

func TestDataDir(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/custom/data")
	if got, want := DataDir(), "/custom/data/phrasehub"; got != want {
		t.Errorf("DataDir() = %q, want %q", got, want)
	}

	t.Setenv("XDG_DATA_HOME", "")
	t.Setenv("HOME", "/home/testuser")
	if got, want := DataDir(), "/home/testuser/.local/share/phrasehub"; got != want {
		t.Errorf("DataDir() = %q, want %q", got, want)
	}
}

func TestStateDir(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/custom/state")
	if got, want := StateDir(), "/custom/state/phrasehub"; got != want {
		t.Errorf("StateDir() = %q, want %q", got, want)
	}
}

func TestEnsureDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a", "b", "c")
	if err := EnsureDir(path); err != nil {
		t.Fatalf("EnsureDir() error = %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if !info.IsDir() {
		t.Errorf("expected directory at %s", path)
	}
	if got := info.Mode().Perm(); got != 0o700 {
		t.Errorf("permissions = %o, want 0700", got)
	}
}
