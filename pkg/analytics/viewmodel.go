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
	"github.com/AleutianAI/AleutianFeedback/pkg/feedback"
)

// State is the phase of the current fetch cycle.
type State int

const (
	// StateIdle means no scope has been selected yet.
	StateIdle State = iota

	// StateFetching means a cycle for the current scope is in flight.
	StateFetching

	// StateReady means records, breakdown and insight have all resolved.
	StateReady

	// StateFailed means the record list could not be fetched.
	StateFailed
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetching:
		return "fetching"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ViewModel is everything the presentation layer shows.
//
// Every data field belongs to the cycle identified by Generation. Values
// handed out by the Orchestrator are copies; mutating them has no effect.
type ViewModel struct {
	// Scope is the active scope.
	Scope feedback.Scope

	// State is the phase of the current cycle.
	State State

	// Generation identifies the cycle the data belongs to.
	Generation uint64

	// Version increases on every change, across cycles.
	Version uint64

	// Records is the fetched record list, newest first.
	Records []feedback.Record

	// Breakdown holds category counts for Scope. Empty while fetching or
	// after an aggregation failure.
	Breakdown feedback.Breakdown

	// InsightText is the narrative, or "" while generating or after failure.
	InsightText string

	// InsightFailed marks a failed generation for the current cycle.
	InsightFailed bool

	// IsGeneratingInsight is true from the moment records are available
	// until the insight result for this cycle is applied.
	IsGeneratingInsight bool

	// Err is the record list failure that put the cycle in StateFailed.
	Err error

	// BreakdownErr is the suppressed aggregation failure, if any.
	BreakdownErr error

	// InsightErr is the insight failure, if any.
	InsightErr error

	breakdownDone bool
	insightDone   bool
}

// Loading reports whether any part of the cycle is still outstanding.
func (v ViewModel) Loading() bool {
	return v.State == StateFetching
}

// clone returns a deep copy of v.
func (v ViewModel) clone() ViewModel {
	out := v
	out.Records = feedback.CloneRecords(v.Records)
	out.Breakdown = v.Breakdown.Clone()
	return out
}
