// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package feedback_api

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds the server settings, read from the environment.
type Config struct {
	Port int `env:"FEEDBACK_API_PORT" envDefault:"8000"`

	// OpenAIKey and OpenAIBaseURL select the OpenAI generator. With both
	// empty the deterministic digest generator is used.
	OpenAIKey     string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL"`
	InsightModel  string `env:"INSIGHT_MODEL" envDefault:"gpt-4o-mini"`

	// InsightRatePerMin bounds insight requests. Zero disables the limit.
	InsightRatePerMin int           `env:"INSIGHT_RATE_PER_MIN" envDefault:"30"`
	InsightTimeout    time.Duration `env:"INSIGHT_TIMEOUT" envDefault:"60s"`

	// MaxListLimit caps the limit query parameter.
	MaxListLimit int `env:"FEEDBACK_MAX_LIST_LIMIT" envDefault:"1000"`

	// Redact masks credentials and personal data in submissions before
	// they are stored.
	Redact bool `env:"FEEDBACK_API_REDACT" envDefault:"true"`
}

// LoadConfig parses the environment into a Config.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("FEEDBACK_API_PORT %d out of range", cfg.Port)
	}
	if cfg.MaxListLimit <= 0 {
		cfg.MaxListLimit = 1000
	}
	return cfg, nil
}

// NewGenerator picks the generator the config asks for.
func NewGenerator(cfg Config) Generator {
	if cfg.OpenAIKey == "" && cfg.OpenAIBaseURL == "" {
		slog.Info("no OpenAI endpoint configured, using digest insights")
		return NewDigestGenerator()
	}
	key := cfg.OpenAIKey
	if key == "" {
		// Ollama and other local endpoints ignore the key but the
		// client requires one.
		key = "local"
	}
	slog.Info("using OpenAI-compatible insights", "model", cfg.InsightModel, "base_url", cfg.OpenAIBaseURL)
	return NewOpenAIGenerator(key, cfg.OpenAIBaseURL, cfg.InsightModel)
}
