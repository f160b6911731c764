// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package search filters feedback records by free-text query.
package search

import (
	"strings"

	"github.com/AleutianAI/AleutianFeedback/pkg/feedback"
)

// Filter returns the records whose question, response and improvement,
// concatenated, contain query case-insensitively.
//
// An empty query returns records unchanged (the same slice). Otherwise a new
// slice is returned in input order; the input is never modified. The cost is
// linear in the total text length, cheap enough to run on every keystroke
// for a page of DefaultListLimit records.
func Filter(records []feedback.Record, query string) []feedback.Record {
	if query == "" {
		return records
	}
	needle := strings.ToLower(query)
	out := make([]feedback.Record, 0, len(records))
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.SearchText()), needle) {
			out = append(out, r)
		}
	}
	return out
}

// Matches reports whether a single record satisfies query.
func Matches(r feedback.Record, query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(r.SearchText()), strings.ToLower(query))
}
