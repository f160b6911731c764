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
	"net/url"
	"time"

	"github.com/AleutianAI/AleutianFeedback/pkg/feedback"
	"github.com/AleutianAI/AleutianFeedback/pkg/logging"
)

// CurrentConfigVersion is written to new config files.
const CurrentConfigVersion = "1"

// FeedbackConfig is the on-disk configuration of the feedback CLI.
//
// Every field can be overridden by the environment variable named in its
// env tag, and again by command-line flags.
type FeedbackConfig struct {
	Meta      MetaConfig      `yaml:"meta"`
	Backend   BackendConfig   `yaml:"backend"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// MetaConfig records the file format version.
type MetaConfig struct {
	Version string `yaml:"version"`
}

// BackendConfig locates the feedback service.
type BackendConfig struct {
	BaseURL        string        `yaml:"base_url" env:"FEEDBACK_BACKEND_URL"`
	Timeout        time.Duration `yaml:"timeout" env:"FEEDBACK_TIMEOUT"`
	InsightTimeout time.Duration `yaml:"insight_timeout" env:"FEEDBACK_INSIGHT_TIMEOUT"`
}

// DashboardConfig tunes the dashboard.
type DashboardConfig struct {
	DefaultScope   string        `yaml:"default_scope" env:"FEEDBACK_SCOPE"`
	ListLimit      int           `yaml:"list_limit" env:"FEEDBACK_LIST_LIMIT"`
	RevealInterval time.Duration `yaml:"reveal_interval" env:"FEEDBACK_REVEAL_INTERVAL"`
}

// LoggingConfig controls log output. Dir is where the dashboard writes its
// log file, since it cannot log to the terminal.
type LoggingConfig struct {
	Level string `yaml:"level" env:"FEEDBACK_LOG_LEVEL"`
	Dir   string `yaml:"dir" env:"FEEDBACK_LOG_DIR"`
	JSON  bool   `yaml:"json" env:"FEEDBACK_LOG_JSON"`
}

// DefaultConfig returns the configuration written on first run.
func DefaultConfig() FeedbackConfig {
	return FeedbackConfig{
		Meta: MetaConfig{Version: CurrentConfigVersion},
		Backend: BackendConfig{
			BaseURL:        "http://localhost:8000",
			Timeout:        30 * time.Second,
			InsightTimeout: 90 * time.Second,
		},
		Dashboard: DashboardConfig{
			DefaultScope:   string(feedback.ScopeAll),
			ListLimit:      feedback.DefaultListLimit,
			RevealInterval: 15 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level: "info",
			Dir:   "~/.aleutian/logs",
		},
	}
}

// Scope returns the parsed default scope. Call Validate first.
func (c FeedbackConfig) Scope() feedback.Scope {
	return feedback.Scope(c.Dashboard.DefaultScope)
}

// Validate reports every invalid setting.
func (c FeedbackConfig) Validate() error {
	var errs []error

	u, err := url.Parse(c.Backend.BaseURL)
	switch {
	case err != nil:
		errs = append(errs, fmt.Errorf("backend.base_url: %w", err))
	case u.Scheme != "http" && u.Scheme != "https":
		errs = append(errs, fmt.Errorf("backend.base_url %q: scheme must be http or https", c.Backend.BaseURL))
	case u.Host == "":
		errs = append(errs, fmt.Errorf("backend.base_url %q: missing host", c.Backend.BaseURL))
	}
	if c.Backend.Timeout <= 0 {
		errs = append(errs, errors.New("backend.timeout must be positive"))
	}
	if c.Backend.InsightTimeout <= 0 {
		errs = append(errs, errors.New("backend.insight_timeout must be positive"))
	}
	if _, err := feedback.ParseScope(c.Dashboard.DefaultScope); err != nil {
		errs = append(errs, fmt.Errorf("dashboard.default_scope: %w", err))
	}
	if c.Dashboard.ListLimit <= 0 || c.Dashboard.ListLimit > 1000 {
		errs = append(errs, fmt.Errorf("dashboard.list_limit %d: must be between 1 and 1000", c.Dashboard.ListLimit))
	}
	if c.Dashboard.RevealInterval <= 0 {
		errs = append(errs, errors.New("dashboard.reveal_interval must be positive"))
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}
	return errors.Join(errs...)
}
