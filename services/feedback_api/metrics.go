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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// submissionsTotal counts accepted submissions.
	// Labels: category
	submissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aleutian",
			Subsystem: "feedback_api",
			Name:      "submissions_total",
			Help:      "Accepted feedback submissions by category.",
		},
		[]string{"category"},
	)

	// rejectionsTotal counts submissions failing validation.
	// Labels: field
	rejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aleutian",
			Subsystem: "feedback_api",
			Name:      "rejections_total",
			Help:      "Invalid feedback fields by name.",
		},
		[]string{"field"},
	)

	// redactionsTotal counts masked matches in stored submissions.
	// Labels: classification
	redactionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aleutian",
			Subsystem: "feedback_api",
			Name:      "redactions_total",
			Help:      "Sensitive matches masked before storage.",
		},
		[]string{"classification"},
	)

	// insightsTotal counts insight requests.
	// Labels: outcome (success, generation_error, rate_limited, invalid)
	insightsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aleutian",
			Subsystem: "feedback_api",
			Name:      "insights_total",
			Help:      "Insight requests by outcome.",
		},
		[]string{"outcome"},
	)

	insightDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "aleutian",
			Subsystem: "feedback_api",
			Name:      "insight_duration_seconds",
			Help:      "Time spent generating a narrative.",
			Buckets:   []float64{0.01, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"generator"},
	)
)
