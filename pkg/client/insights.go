// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/AleutianAI/AleutianFeedback/pkg/feedback"
	"github.com/sony/gobreaker/v2"
)

// Insights requests narrative summaries from the insight service.
type Insights struct {
	t       *transport
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker[feedback.InsightResult]
	now     func() time.Time
}

func newInsights(t *transport, cfg Config) *Insights {
	timeout := cfg.InsightTimeout
	if timeout <= 0 {
		timeout = DefaultConfig().InsightTimeout
	}
	in := &Insights{t: t, timeout: timeout, now: time.Now}
	if !cfg.Breaker.Disabled {
		in.breaker = newBreaker(cfg.Breaker, t.logger)
	}
	return in
}

type insightRequest struct {
	Items []feedback.Record `json:"items"`
	Scope feedback.Scope    `json:"scope"`
}

type insightResponse struct {
	Summary *string         `json:"summary"`
	Error   string          `json:"error"`
	Detail  json.RawMessage `json:"detail"`
}

// Generate sends records and scope to the insight service.
//
// # Description
//
// The call is bounded by the insight timeout; expiry is a
// *feedback.TransportError with Timeout set. While the circuit breaker is
// open the call fails fast with a *feedback.TransportError wrapping
// gobreaker.ErrOpenState. Nothing is retried.
//
// # Inputs
//
//   - ctx: Cancellation for the call.
//   - scope: The scope the narrative describes.
//   - records: The full record set; nil is sent as an empty list.
//
// # Outputs
//
//   - feedback.InsightResult: The narrative.
//   - error: *feedback.TransportError or *feedback.GenerationError.
func (in *Insights) Generate(ctx context.Context, scope feedback.Scope, records []feedback.Record) (feedback.InsightResult, error) {
	if in.breaker == nil {
		return in.generate(ctx, scope, records)
	}

	result, err := in.breaker.Execute(func() (feedback.InsightResult, error) {
		return in.generate(ctx, scope, records)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		observeRequest("insights", outcomeTransport, 0)
		return feedback.InsightResult{}, &feedback.TransportError{
			Op:     "insights",
			Method: http.MethodPost,
			URL:    in.t.base.JoinPath("api", "analytics", "insights").String(),
			Err:    err,
		}
	}
	return result, err
}

func (in *Insights) generate(ctx context.Context, scope feedback.Scope, records []feedback.Record) (feedback.InsightResult, error) {
	if records == nil {
		records = []feedback.Record{}
	}

	var resp insightResponse
	err := in.t.do(ctx, call{
		op:      "insights",
		method:  http.MethodPost,
		path:    []string{"api", "analytics", "insights"},
		body:    insightRequest{Items: records, Scope: scope},
		timeout: in.timeout,
	}, &resp)
	if err != nil {
		return feedback.InsightResult{}, err
	}

	if msg := resp.failure(); msg != "" || resp.Summary == nil {
		if msg == "" {
			msg = "response carried no summary"
		}
		observeRequest("insights", outcomeGeneration, 0)
		in.t.logger.Warn("insight generation failed", "scope", scope, "reason", msg)
		return feedback.InsightResult{}, &feedback.GenerationError{Scope: scope, Message: msg}
	}

	return feedback.InsightResult{
		Scope:       scope,
		Summary:     *resp.Summary,
		GeneratedAt: in.now(),
	}, nil
}

// failure extracts a service-reported error message, if any.
func (r insightResponse) failure() string {
	if r.Error != "" {
		return r.Error
	}
	detail := strings.TrimSpace(string(r.Detail))
	if detail == "" || detail == "null" {
		return ""
	}
	var s string
	if json.Unmarshal(r.Detail, &s) == nil {
		return s
	}
	return detail
}
