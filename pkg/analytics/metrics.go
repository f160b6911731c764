// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package analytics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// cyclesTotal counts fetch cycles by how they ended.
	// Labels: outcome (ready, failed, superseded)
	cyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aleutian",
			Subsystem: "feedback_analytics",
			Name:      "cycles_total",
			Help:      "Fetch cycles by final outcome.",
		},
		[]string{"outcome"},
	)

	// staleResults counts results discarded because a newer cycle started.
	// Labels: stage (records, breakdown, insight)
	staleResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aleutian",
			Subsystem: "feedback_analytics",
			Name:      "stale_results_total",
			Help:      "Results from superseded cycles that were discarded.",
		},
		[]string{"stage"},
	)

	cycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "aleutian",
			Subsystem: "feedback_analytics",
			Name:      "cycle_duration_seconds",
			Help:      "Time from scope selection to the last result of the cycle.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)
)
