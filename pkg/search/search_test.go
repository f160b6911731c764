// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package search

import (
	"strings"
	"testing"

	"github.com/AleutianAI/AleutianFeedback/pkg/feedback"
	"github.com/AleutianAI/AleutianFeedback/pkg/taxonomy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords() []feedback.Record {
	return []feedback.Record{
		{ID: "1", Question: "Why is the sky blue?", Response: "Because.", Improvement: "Explain Rayleigh scattering.", Category: taxonomy.MissingContext},
		{ID: "2", Question: "Summarise this PDF", Response: "It is about cats.", Improvement: "Read the PDF first.", Category: taxonomy.Hallucination},
		{ID: "3", Question: "Translate 'hello'", Response: "Bonjour, mon ami, comment allez-vous...", Improvement: "Just say bonjour.", Category: taxonomy.TooVerbose},
		{ID: "4", Question: "Capital of Australia?", Response: "Sydney", Improvement: "Canberra.", Category: taxonomy.Inaccurate},
	}
}

func ids(records []feedback.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

// =============================================================================
// Filter Tests
// =============================================================================

func TestFilter_EmptyQueryReturnsInputUnchanged(t *testing.T) {
	records := sampleRecords()
	got := Filter(records, "")

	require.Len(t, got, len(records))
	assert.Same(t, &records[0], &got[0], "empty query should return the same slice")
}

func TestFilter_NilInput(t *testing.T) {
	assert.Empty(t, Filter(nil, "x"))
	assert.Nil(t, Filter(nil, ""))
}

func TestFilter_CaseInsensitive(t *testing.T) {
	assert.Equal(t, []string{"1"}, ids(Filter(sampleRecords(), "RAYLEIGH")))
	assert.Equal(t, []string{"2"}, ids(Filter(sampleRecords(), "pdf")))
}

func TestFilter_MatchesAcrossFieldBoundary(t *testing.T) {
	// "Because." + "Explain" concatenate to "Because.Explain".
	assert.Equal(t, []string{"1"}, ids(Filter(sampleRecords(), "because.explain")))
}

func TestFilter_PreservesOrder(t *testing.T) {
	// "a" appears in every record; order must be the input order.
	assert.Equal(t, []string{"1", "2", "3", "4"}, ids(Filter(sampleRecords(), "a")))
}

func TestFilter_DoesNotMutateInput(t *testing.T) {
	records := sampleRecords()
	before := ids(records)

	_ = Filter(records, "bonjour")

	assert.Equal(t, before, ids(records))
}

func TestFilter_NoMatch(t *testing.T) {
	got := Filter(sampleRecords(), "zebra")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFilter_SubsetProperty(t *testing.T) {
	records := sampleRecords()
	for _, q := range []string{"a", "BON", "?", "sydney", "read the", "xyz", "."} {
		got := Filter(records, q)
		kept := make(map[string]bool, len(got))
		for _, r := range got {
			kept[r.ID] = true
			assert.True(t, strings.Contains(strings.ToLower(r.SearchText()), strings.ToLower(q)),
				"kept record %s must contain %q", r.ID, q)
		}
		for _, r := range records {
			if !kept[r.ID] {
				assert.False(t, strings.Contains(strings.ToLower(r.SearchText()), strings.ToLower(q)),
					"excluded record %s must not contain %q", r.ID, q)
			}
		}
	}
}

func TestMatches(t *testing.T) {
	r := sampleRecords()[3]
	assert.True(t, Matches(r, ""))
	assert.True(t, Matches(r, "canberra"))
	assert.False(t, Matches(r, "melbourne"))
}
