// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/AleutianAI/AleutianFeedback/cmd/feedback/config"
	"github.com/AleutianAI/AleutianFeedback/pkg/client"
	"github.com/AleutianAI/AleutianFeedback/pkg/feedback"
	"github.com/AleutianAI/AleutianFeedback/pkg/logging"
	"github.com/spf13/cobra"
)

var (
	cfg    config.FeedbackConfig
	logger = logging.Discard()
)

// setup loads the config file, applies flag overrides and creates the
// logger. It runs before every subcommand.
func setup(cmd *cobra.Command, args []string) error {
	if err := config.Load(configPath); err != nil {
		return err
	}
	loaded := config.Global
	applyFlagOverrides(cmd, &loaded)
	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	cfg = loaded

	logger = logging.New(loggingConfig(cmd.Name(), cfg))
	slog.SetDefault(logger.Slog())
	logger.Debug("configuration loaded", "backend", cfg.Backend.BaseURL, "command", cmd.Name())
	return nil
}

func teardown(cmd *cobra.Command, args []string) {
	_ = logger.Close()
}

// applyFlagOverrides copies explicitly set global flags over the loaded
// configuration. Flags win over both the file and the environment.
func applyFlagOverrides(cmd *cobra.Command, c *config.FeedbackConfig) {
	flags := cmd.Flags()
	if flags.Changed("backend-url") {
		c.Backend.BaseURL = backendURL
	}
	if flags.Changed("timeout") {
		c.Backend.Timeout = timeout
	}
	if flags.Changed("log-level") {
		c.Logging.Level = logLevel
	}
	if flags.Changed("log-dir") {
		c.Logging.Dir = logDir
	}
}

// loggingConfig maps the config to a logger. The dashboard owns the
// terminal, so it logs to a file only; other commands log warnings and
// errors to stderr.
func loggingConfig(command string, c config.FeedbackConfig) logging.Config {
	level, err := logging.ParseLevel(c.Logging.Level)
	if err != nil {
		level = logging.LevelInfo
	}
	lc := logging.Config{
		Level:   level,
		Service: "feedback",
		JSON:    c.Logging.JSON,
	}
	if command == "dashboard" {
		lc.Quiet = true
		lc.LogDir = c.Logging.Dir
	}
	return lc
}

// newClient builds the service clients from the active configuration.
func newClient() (*client.Client, error) {
	cc := client.DefaultConfig()
	cc.BaseURL = cfg.Backend.BaseURL
	cc.Timeout = cfg.Backend.Timeout
	cc.InsightTimeout = cfg.Backend.InsightTimeout
	cc.Logger = logger.Slog()
	return client.New(cc)
}

// resolveScope returns the --scope flag, or the configured default.
func resolveScope() (feedback.Scope, error) {
	if scopeFlag == "" {
		return cfg.Scope(), nil
	}
	return feedback.ParseScope(scopeFlag)
}

// writeJSON writes data as indented JSON.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
