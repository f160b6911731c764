// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package feedback provides the data types shared by the feedback clients,
// the analytics orchestrator and the development backend.
//
// # Description
//
// A Record is one piece of user feedback about an assistant answer: the
// question that was asked, the response that was given, a suggested
// improvement and an issue category. Records are created by the store
// service and never mutated afterwards; clients hold read-only copies.
//
// Derived data (a Breakdown of category counts and an InsightResult
// narrative) is always computed for a Scope and discarded when the scope
// changes.
//
// # Wire Format
//
// JSON field names match the HTTP API exactly:
//
//	{"id": "...", "question": "...", "response": "...",
//	 "improvement": "...", "category": "Tone", "created_at": "..."}
package feedback

import (
	"fmt"
	"sort"
	"time"

	"github.com/AleutianAI/AleutianFeedback/pkg/taxonomy"
	"github.com/go-openapi/strfmt"
)

// =============================================================================
// Field Limits
// =============================================================================

const (
	// MaxQuestionChars bounds the question field, counted in characters.
	MaxQuestionChars = 2000

	// MaxResponseChars bounds the response field, counted in characters.
	MaxResponseChars = 20000

	// MaxImprovementChars bounds the improvement field, counted in characters.
	MaxImprovementChars = 20000

	// DefaultListLimit is the number of records fetched per dashboard cycle.
	DefaultListLimit = 200
)

// =============================================================================
// Record
// =============================================================================

// Record is a stored feedback submission.
//
// CreatedAt uses strfmt.DateTime so that both RFC 3339 timestamps and the
// zone-less ISO 8601 form emitted by some backends decode without a custom
// unmarshaler.
type Record struct {
	ID          string            `json:"id"`
	Question    string            `json:"question"`
	Response    string            `json:"response"`
	Improvement string            `json:"improvement"`
	Category    taxonomy.Category `json:"category"`
	CreatedAt   strfmt.DateTime   `json:"created_at"`
}

// Created returns the creation time as a time.Time.
func (r Record) Created() time.Time {
	return time.Time(r.CreatedAt)
}

// SearchText is the text the search engine matches against.
func (r Record) SearchText() string {
	return r.Question + r.Response + r.Improvement
}

// Submission returns the user-supplied fields of r.
func (r Record) Submission() Submission {
	return Submission{
		Question:    r.Question,
		Response:    r.Response,
		Improvement: r.Improvement,
		Category:    r.Category,
	}
}

// CloneRecords returns a copy of records. Record holds only value fields, so
// a shallow copy of the slice is a full copy.
func CloneRecords(records []Record) []Record {
	if records == nil {
		return nil
	}
	out := make([]Record, len(records))
	copy(out, records)
	return out
}

// =============================================================================
// Submission
// =============================================================================

// Submission is the body of a create request.
//
// Limits are enforced by Validate; see validate.go.
type Submission struct {
	Question    string            `json:"question" validate:"nonblank,maxrunes=2000"`
	Response    string            `json:"response" validate:"nonblank,maxrunes=20000"`
	Improvement string            `json:"improvement" validate:"nonblank,maxrunes=20000"`
	Category    taxonomy.Category `json:"category" validate:"category"`
}

// =============================================================================
// Scope
// =============================================================================

// Scope selects the time window for aggregation and insight generation.
type Scope string

const (
	// ScopeWeek covers the last seven days.
	ScopeWeek Scope = "week"

	// ScopeAll covers every stored record.
	ScopeAll Scope = "all"
)

// ParseScope converts s to a Scope.
func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case ScopeWeek, ScopeAll:
		return Scope(s), nil
	default:
		return "", fmt.Errorf("unknown scope %q (want %q or %q)", s, ScopeWeek, ScopeAll)
	}
}

// Valid reports whether s is one of the two scopes.
func (s Scope) Valid() bool {
	return s == ScopeWeek || s == ScopeAll
}

// Label is the human-readable name shown on the scope toggle.
func (s Scope) Label() string {
	switch s {
	case ScopeWeek:
		return "This Week"
	case ScopeAll:
		return "All Time"
	default:
		return string(s)
	}
}

// Since returns the lower time bound of the scope relative to now. The zero
// time means unbounded.
func (s Scope) Since(now time.Time) time.Time {
	if s == ScopeWeek {
		return now.Add(-7 * 24 * time.Hour)
	}
	return time.Time{}
}

// =============================================================================
// Breakdown
// =============================================================================

// Breakdown maps category labels to record counts within a scope.
//
// Only categories present in the scope appear. Counts are non-negative and
// sum to the number of in-scope records.
type Breakdown map[taxonomy.Category]int

// BreakdownEntry is one row of a sorted Breakdown.
type BreakdownEntry struct {
	Category taxonomy.Category
	Count    int
}

// Total returns the sum of all counts.
func (b Breakdown) Total() int {
	total := 0
	for _, n := range b {
		total += n
	}
	return total
}

// Share returns the fraction of the total held by c, or 0 when empty.
func (b Breakdown) Share(c taxonomy.Category) float64 {
	total := b.Total()
	if total == 0 {
		return 0
	}
	return float64(b[c]) / float64(total)
}

// Sorted returns the entries in taxonomy order. Labels outside the taxonomy
// follow, alphabetically.
func (b Breakdown) Sorted() []BreakdownEntry {
	out := make([]BreakdownEntry, 0, len(b))
	for c, n := range b {
		out = append(out, BreakdownEntry{Category: c, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		ii, ij := taxonomy.Index(out[i].Category), taxonomy.Index(out[j].Category)
		switch {
		case ii >= 0 && ij >= 0:
			return ii < ij
		case ii >= 0:
			return true
		case ij >= 0:
			return false
		default:
			return out[i].Category < out[j].Category
		}
	})
	return out
}

// Clone returns an independent copy of b.
func (b Breakdown) Clone() Breakdown {
	out := make(Breakdown, len(b))
	for c, n := range b {
		out[c] = n
	}
	return out
}

// CountRecords builds the Breakdown of records whose creation time falls
// inside scope.
func CountRecords(records []Record, scope Scope, now time.Time) Breakdown {
	since := scope.Since(now)
	b := make(Breakdown)
	for _, r := range records {
		if !since.IsZero() && r.Created().Before(since) {
			continue
		}
		b[r.Category]++
	}
	return b
}

// =============================================================================
// Insight
// =============================================================================

// InsightResult is a narrative generated for a scope and record set.
//
// It is never persisted and is superseded by any later request.
type InsightResult struct {
	Scope       Scope
	Summary     string
	GeneratedAt time.Time
}
