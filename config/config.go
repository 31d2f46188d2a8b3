// Copyright © 2026 Plato contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/config.go
// Summary: JSON settings store for the terminal subsystem.
// Usage: Load once at session construction; missing files yield defaults
// and are written back so users have something to edit.

package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

const settingsName = "plato-terminal.json"

// Settings holds the user-tunable knobs of the terminal subsystem.
type Settings struct {
	// Shell is the program spawned behind the pty.
	Shell string `json:"shell"`
	// FontSize is the terminal font size in points.
	FontSize float64 `json:"font_size"`
	// PollTimeoutMs bounds the reader loop's readiness wait.
	PollTimeoutMs int `json:"poll_timeout_ms"`
	// HistoryPath is the scrollback database location; empty disables it.
	HistoryPath string `json:"history_path"`
	// HistoryLimit caps stored scrollback lines.
	HistoryLimit int `json:"history_limit"`
}

// Defaults returns the settings used when no file exists.
func Defaults() Settings {
	return Settings{
		Shell:         "/bin/sh",
		FontSize:      13.0,
		PollTimeoutMs: 100,
		HistoryPath:   "",
		HistoryLimit:  1000,
	}
}

func settingsPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "plato", settingsName), nil
}

// Load reads settings from the default location, falling back to and
// persisting defaults when the file is absent.
func Load() Settings {
	path, err := settingsPath()
	if err != nil {
		log.Printf("Config: Failed to resolve settings path: %v", err)
		return Defaults()
	}
	return LoadFrom(path)
}

// LoadFrom reads settings from an explicit path.
func LoadFrom(path string) Settings {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Config: Failed to read %s: %v", path, err)
		}
		s := Defaults()
		if writeErr := Save(path, s); writeErr != nil {
			log.Printf("Config: Failed to write default settings: %v", writeErr)
		}
		return s
	}

	s := Defaults()
	if err := json.Unmarshal(data, &s); err != nil {
		log.Printf("Config: Malformed settings in %s: %v", path, err)
		return Defaults()
	}
	s.sanitize()
	return s
}

// Save writes settings as indented JSON, creating parent directories.
func Save(path string, s Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *Settings) sanitize() {
	def := Defaults()
	if s.Shell == "" {
		s.Shell = def.Shell
	}
	if s.FontSize <= 0 {
		s.FontSize = def.FontSize
	}
	if s.PollTimeoutMs <= 0 {
		s.PollTimeoutMs = def.PollTimeoutMs
	}
	if s.HistoryLimit <= 0 {
		s.HistoryLimit = def.HistoryLimit
	}
}
