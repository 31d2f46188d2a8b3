// Copyright © 2026 Plato contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/config_test.go
// Summary: Exercises settings loading, defaults and round-tripping.

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromMissingFileWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "settings.json")
	s := LoadFrom(path)
	if s != Defaults() {
		t.Fatalf("expected defaults, got %+v", s)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("defaults were not persisted: %v", err)
	}
}

func TestLoadFromRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	want := Settings{
		Shell:         "/bin/bash",
		FontSize:      18,
		PollTimeoutMs: 50,
		HistoryPath:   "/tmp/hist.db",
		HistoryLimit:  200,
	}
	if err := Save(path, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	if got := LoadFrom(path); got != want {
		t.Fatalf("round trip: got %+v, want %+v", got, want)
	}
}

func TestLoadFromSanitizesPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte(`{"shell":"","font_size":-1}`), 0o644); err != nil {
		t.Fatal(err)
	}
	s := LoadFrom(path)
	if s.Shell != "/bin/sh" || s.FontSize != 13.0 || s.PollTimeoutMs != 100 {
		t.Fatalf("sanitize failed: %+v", s)
	}
}

func TestLoadFromMalformedFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte("{nope"), 0o644); err != nil {
		t.Fatal(err)
	}
	if s := LoadFrom(path); s != Defaults() {
		t.Fatalf("expected defaults for malformed file, got %+v", s)
	}
}
