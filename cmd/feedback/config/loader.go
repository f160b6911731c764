// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/caarlos0/env/v10"
	"gopkg.in/yaml.v3"
)

var (
	// Global is a singleton instance
	Global FeedbackConfig
	once   sync.Once
)

// Notices receives the first-run message. Tests silence it.
var Notices io.Writer = os.Stderr

// DefaultPath returns ~/.aleutian/feedback.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not find the user's home directory: %w", err)
	}
	return filepath.Join(home, ".aleutian", "feedback.yaml"), nil
}

// Load reads path (or DefaultPath when empty) into Global, once.
func Load(path string) error {
	var err error
	once.Do(func() {
		if path == "" {
			path, err = DefaultPath()
			if err != nil {
				return
			}
		}
		Global, err = LoadFrom(path)
	})
	return err
}

// LoadFrom reads a config file, applies environment overrides and
// validates the result.
//
// # Description
//
// A missing file is created with DefaultConfig. Keys absent from the file
// keep their defaults. Environment variables (see the env tags on the
// config types) override file values.
//
// # Outputs
//
//   - FeedbackConfig: The merged configuration.
//   - error: Read, parse or validation failure.
func LoadFrom(path string) (FeedbackConfig, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(Notices, " First run detected, creating the config at %s\n", path)
		if err := createDefault(path); err != nil {
			return FeedbackConfig{}, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return FeedbackConfig{}, fmt.Errorf("failed to read the config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return FeedbackConfig{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := env.Parse(&cfg); err != nil {
		return FeedbackConfig{}, fmt.Errorf("failed to apply environment overrides: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return FeedbackConfig{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func createDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create the config directory: %w", err)
	}
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
