// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package client

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker/v2"
)

const (
	outcomeSuccess    = "success"
	outcomeTransport  = "transport_error"
	outcomeTimeout    = "timeout"
	outcomeGeneration = "generation_error"
)

var (
	// requestDuration measures service calls.
	// Labels: op (list, create, summary, insights), outcome
	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "aleutian",
			Subsystem: "feedback_client",
			Name:      "request_duration_seconds",
			Help:      "Duration of feedback service calls.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"op", "outcome"},
	)

	// breakerState is 0=closed, 1=half-open, 2=open.
	breakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "aleutian",
			Subsystem: "feedback_client",
			Name:      "circuit_breaker_state",
			Help:      "Current state of the insight circuit breaker (0=closed, 1=half-open, 2=open).",
		},
		[]string{"name"},
	)
)

func observeRequest(op, outcome string, d time.Duration) {
	requestDuration.WithLabelValues(op, outcome).Observe(d.Seconds())
}

// stateToFloat maps gobreaker states to gauge values.
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
