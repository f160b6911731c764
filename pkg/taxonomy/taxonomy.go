// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package taxonomy defines the closed set of feedback issue categories.
//
// # Description
//
// Every feedback record is classified with exactly one Category. The set is
// fixed at compile time and ordered; display metadata (colours and badge
// styles) is a lookup table keyed by Category with an explicit fallback to
// the "Other" style, so labels that arrive from stale or external data still
// render.
//
// # Thread Safety
//
// The package holds no mutable state. All functions are safe for concurrent
// use.
package taxonomy

// Category is an issue label classifying a feedback record.
type Category string

const (
	Misunderstanding Category = "Misunderstanding"
	TooVerbose       Category = "Too Verbose"
	Inaccurate       Category = "Inaccurate"
	MissingContext   Category = "Missing Context"
	Hallucination    Category = "Hallucination"
	Tone             Category = "Tone"
	Other            Category = "Other"
)

// ordered is the canonical display order. Labels returns a copy.
var ordered = []Category{
	Misunderstanding,
	TooVerbose,
	Inaccurate,
	MissingContext,
	Hallucination,
	Tone,
	Other,
}

// String returns the label text.
func (c Category) String() string {
	return string(c)
}

// Valid reports whether c is a member of the taxonomy.
func (c Category) Valid() bool {
	_, ok := styles[c]
	return ok
}

// Labels returns the fixed, ordered set of categories.
//
// The returned slice is a fresh copy; callers may modify it.
func Labels() []Category {
	out := make([]Category, len(ordered))
	copy(out, ordered)
	return out
}

// Strings returns the category labels as plain strings, in display order.
func Strings() []string {
	out := make([]string, len(ordered))
	for i, c := range ordered {
		out[i] = string(c)
	}
	return out
}

// IsValid reports whether label exactly matches a taxonomy member.
func IsValid(label string) bool {
	return Category(label).Valid()
}

// Parse converts label to a Category.
//
// Matching is exact (case-sensitive) because labels travel verbatim over the
// wire. The second result is false for unknown labels.
func Parse(label string) (Category, bool) {
	c := Category(label)
	if !c.Valid() {
		return "", false
	}
	return c, true
}

// Index returns the display position of c, or -1 if c is not a member.
func Index(c Category) int {
	for i, o := range ordered {
		if o == c {
			return i
		}
	}
	return -1
}

// Default is the category pre-selected in submission forms.
func Default() Category {
	return Misunderstanding
}
