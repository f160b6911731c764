// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package feedback

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/AleutianAI/AleutianFeedback/pkg/taxonomy"
	"github.com/go-openapi/strfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSubmission() Submission {
	return Submission{
		Question:    "Why is sky blue?",
		Response:    "Because.",
		Improvement: "Explain Rayleigh scattering.",
		Category:    taxonomy.MissingContext,
	}
}

func dt(t time.Time) strfmt.DateTime {
	return strfmt.DateTime(t)
}

// =============================================================================
// Submission.Validate Tests
// =============================================================================

func TestValidate_AcceptsValidSubmission(t *testing.T) {
	assert.NoError(t, validSubmission().Validate())
}

func TestValidate_AcceptsExactLimits(t *testing.T) {
	s := validSubmission()
	s.Question = strings.Repeat("q", MaxQuestionChars)
	s.Response = strings.Repeat("r", MaxResponseChars)
	s.Improvement = strings.Repeat("i", MaxImprovementChars)

	assert.NoError(t, s.Validate())
}

func TestValidate_CountsRunesNotBytes(t *testing.T) {
	s := validSubmission()
	// 2000 three-byte characters: 6000 bytes, still within the limit.
	s.Question = strings.Repeat("空", MaxQuestionChars)

	assert.NoError(t, s.Validate())
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Submission)
		field  string
		rule   string
	}{
		{"question too long", func(s *Submission) { s.Question = strings.Repeat("q", MaxQuestionChars+1) }, "question", "maxrunes"},
		{"response too long", func(s *Submission) { s.Response = strings.Repeat("r", MaxResponseChars+1) }, "response", "maxrunes"},
		{"improvement too long", func(s *Submission) { s.Improvement = strings.Repeat("i", MaxImprovementChars+1) }, "improvement", "maxrunes"},
		{"empty question", func(s *Submission) { s.Question = "" }, "question", "required"},
		{"blank response", func(s *Submission) { s.Response = "   \n" }, "response", "required"},
		{"free text category", func(s *Submission) { s.Category = "Rude" }, "category", "category"},
		{"empty category", func(s *Submission) { s.Category = "" }, "category", "category"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSubmission()
			tt.mutate(&s)

			err := s.Validate()
			require.Error(t, err)
			assert.True(t, IsValidation(err))

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			require.Len(t, verr.Fields, 1)
			assert.Equal(t, tt.field, verr.Fields[0].Field)
			assert.Equal(t, tt.rule, verr.Fields[0].Rule)
		})
	}
}

func TestValidate_CollectsAllFields(t *testing.T) {
	s := Submission{Category: "Nope"}

	err := s.Validate()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.True(t, verr.Has("question"))
	assert.True(t, verr.Has("response"))
	assert.True(t, verr.Has("improvement"))
	assert.True(t, verr.Has("category"))
	assert.Contains(t, err.Error(), "question is required")
}

// =============================================================================
// Error Taxonomy Tests
// =============================================================================

func TestErrors_SentinelMatching(t *testing.T) {
	cause := errors.New("connection refused")
	terr := &TransportError{Op: "list", Method: "GET", URL: "http://x/api/feedback", Err: cause}
	gerr := &GenerationError{Scope: ScopeAll, Message: "model overloaded"}

	wrapped := fmt.Errorf("dashboard: %w", terr)
	assert.True(t, IsTransport(wrapped))
	assert.False(t, IsGeneration(wrapped))
	assert.ErrorIs(t, wrapped, cause)

	assert.True(t, IsGeneration(gerr))
	assert.False(t, IsTransport(gerr))
	assert.False(t, IsValidation(gerr))
}

func TestTransportError_Message(t *testing.T) {
	assert.Equal(t,
		"summary: GET http://x/api/analytics/summary: status 503",
		(&TransportError{Op: "summary", Method: "GET", URL: "http://x/api/analytics/summary", StatusCode: 503}).Error())
	assert.Contains(t,
		(&TransportError{Op: "insights", Method: "POST", URL: "u", Timeout: true}).Error(),
		"timed out")
}

// =============================================================================
// Scope Tests
// =============================================================================

func TestParseScope(t *testing.T) {
	s, err := ParseScope("week")
	require.NoError(t, err)
	assert.Equal(t, ScopeWeek, s)
	assert.Equal(t, "This Week", s.Label())

	s, err = ParseScope("all")
	require.NoError(t, err)
	assert.Equal(t, "All Time", s.Label())

	_, err = ParseScope("month")
	assert.Error(t, err)
}

func TestScope_Since(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	assert.True(t, ScopeAll.Since(now).IsZero())
	assert.Equal(t, now.Add(-7*24*time.Hour), ScopeWeek.Since(now))
}

// =============================================================================
// Breakdown Tests
// =============================================================================

func TestBreakdown_TotalAndShare(t *testing.T) {
	b := Breakdown{taxonomy.Tone: 1, taxonomy.Hallucination: 3}
	assert.Equal(t, 4, b.Total())
	assert.InDelta(t, 0.75, b.Share(taxonomy.Hallucination), 1e-9)
	assert.Zero(t, b.Share(taxonomy.Other))
	assert.Zero(t, Breakdown{}.Share(taxonomy.Tone))
}

func TestBreakdown_SortedTaxonomyOrderThenUnknown(t *testing.T) {
	b := Breakdown{
		taxonomy.Other:            2,
		"Zeta":                    1,
		taxonomy.Misunderstanding: 5,
		"Alpha":                   1,
		taxonomy.Tone:             3,
	}

	var got []taxonomy.Category
	for _, e := range b.Sorted() {
		got = append(got, e.Category)
	}
	assert.Equal(t, []taxonomy.Category{taxonomy.Misunderstanding, taxonomy.Tone, taxonomy.Other, "Alpha", "Zeta"}, got)
}

func TestCountRecords_SumsToInScopeCount(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	recent := now.Add(-24 * time.Hour)
	old := now.Add(-30 * 24 * time.Hour)

	records := []Record{
		{ID: "1", Category: taxonomy.Tone, CreatedAt: dt(recent)},
		{ID: "2", Category: taxonomy.Tone, CreatedAt: dt(old)},
		{ID: "3", Category: taxonomy.Inaccurate, CreatedAt: dt(recent)},
	}

	all := CountRecords(records, ScopeAll, now)
	assert.Equal(t, 3, all.Total())
	assert.Equal(t, 2, all[taxonomy.Tone])

	week := CountRecords(records, ScopeWeek, now)
	assert.Equal(t, 2, week.Total())
	assert.Equal(t, 1, week[taxonomy.Tone])
	_, hasOther := week[taxonomy.Other]
	assert.False(t, hasOther, "absent categories must not appear")
}

// =============================================================================
// Record Wire Format Tests
// =============================================================================

func TestRecord_DecodesZonelessTimestamp(t *testing.T) {
	raw := `{"id":"abc","question":"q","response":"r","improvement":"i",
		"category":"Tone","created_at":"2025-06-01T10:20:30.123456"}`

	var r Record
	require.NoError(t, json.Unmarshal([]byte(raw), &r))
	assert.Equal(t, "abc", r.ID)
	assert.Equal(t, taxonomy.Tone, r.Category)
	assert.Equal(t, 2025, r.Created().Year())
	assert.Equal(t, 20, r.Created().Minute())
}

func TestRecord_DecodesRFC3339Timestamp(t *testing.T) {
	raw := `{"id":"abc","category":"Other","created_at":"2025-06-01T10:20:30Z"}`

	var r Record
	require.NoError(t, json.Unmarshal([]byte(raw), &r))
	assert.Equal(t, time.Date(2025, 6, 1, 10, 20, 30, 0, time.UTC), r.Created().UTC())
}

func TestRecord_SearchTextConcatenatesFields(t *testing.T) {
	r := Record{Question: "ab", Response: "cd", Improvement: "ef"}
	assert.Equal(t, "abcdef", r.SearchText())
	assert.Equal(t, Submission{Question: "ab", Response: "cd", Improvement: "ef"}, r.Submission())
}

func TestCloneRecords_Independent(t *testing.T) {
	assert.Nil(t, CloneRecords(nil))

	in := []Record{{ID: "1"}}
	out := CloneRecords(in)
	out[0].ID = "2"
	assert.Equal(t, "1", in[0].ID)
}
