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
	"github.com/AleutianAI/AleutianFeedback/pkg/feedback"
)

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	// Error is the error message.
	Error string `json:"error"`

	// Code is the machine-readable error code.
	Code string `json:"code,omitempty"`

	// Fields lists invalid submission fields (422 only).
	Fields []feedback.FieldError `json:"fields,omitempty"`
}

// SummaryResponse is the body of GET /api/analytics/summary.
type SummaryResponse struct {
	// Scope echoes the requested scope.
	Scope feedback.Scope `json:"scope"`

	// Breakdown maps category labels to counts. Absent categories are
	// omitted.
	Breakdown map[string]int `json:"breakdown"`

	// Total is the number of records in scope.
	Total int `json:"total"`
}

// InsightRequest is the body of POST /api/analytics/insights.
type InsightRequest struct {
	Items []feedback.Record `json:"items"`
	Scope feedback.Scope    `json:"scope"`
}

// InsightResponse is the body of a 200 from the insights endpoint.
//
// A generator failure is still a 200: Summary is omitted and Error carries
// the reason. Transport-level problems (bad request, rate limit) use
// non-2xx statuses with ErrorResponse instead.
type InsightResponse struct {
	Summary *string `json:"summary,omitempty"`
	Error   string  `json:"error,omitempty"`
	Source  string  `json:"source,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string `json:"status"`
	Records   int    `json:"records"`
	Generator string `json:"generator"`
}
