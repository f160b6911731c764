// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/AleutianAI/AleutianFeedback/cmd/feedback/config"
	"github.com/AleutianAI/AleutianFeedback/pkg/feedback"
	"github.com/AleutianAI/AleutianFeedback/pkg/logging"
	"github.com/AleutianAI/AleutianFeedback/pkg/taxonomy"
	"github.com/AleutianAI/AleutianFeedback/pkg/ux"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withBackend points the CLI at handler for the duration of the test.
func withBackend(t *testing.T, handler http.HandlerFunc) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := config.DefaultConfig()
	c.Backend.BaseURL = srv.URL
	c.Dashboard.RevealInterval = time.Millisecond
	cfg = c
	logger = logging.Discard()

	t.Cleanup(func() {
		cfg = config.FeedbackConfig{}
		scopeFlag, searchQuery, jsonOutput, listLimit = "", "", false, 0
	})
}

// testCommand returns a command writing to a buffer.
func testCommand() (*cobra.Command, *bytes.Buffer) {
	var out bytes.Buffer
	cmd := &cobra.Command{Use: "test"}
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetContext(context.Background())
	return cmd, &out
}

func sampleRecordsJSON() string {
	return `[
		{"id":"r2","question":"Why is sky blue?","response":"Because.","improvement":"Explain Rayleigh scattering.",
		 "category":"Missing Context","created_at":"2025-06-02T10:00:00Z"},
		{"id":"r1","question":"Capital of France?","response":"Paris, which...","improvement":"Be brief.",
		 "category":"Too Verbose","created_at":"2025-06-01T10:00:00Z"}
	]`
}

// =============================================================================
// Setup Tests
// =============================================================================

func TestApplyFlagOverrides_OnlyChangedFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "x"}
	cmd.Flags().StringVar(&backendURL, "backend-url", "", "")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "")
	cmd.Flags().StringVar(&logDir, "log-dir", "", "")
	require.NoError(t, cmd.Flags().Parse([]string{"--backend-url", "http://feedback:9000", "--log-level", "debug"}))

	c := config.DefaultConfig()
	applyFlagOverrides(cmd, &c)

	assert.Equal(t, "http://feedback:9000", c.Backend.BaseURL)
	assert.Equal(t, "debug", c.Logging.Level)
	assert.Equal(t, 30*time.Second, c.Backend.Timeout, "unset flags keep config values")
	assert.Equal(t, "~/.aleutian/logs", c.Logging.Dir)
}

func TestLoggingConfig_DashboardLogsToFileOnly(t *testing.T) {
	c := config.DefaultConfig()
	c.Logging.Level = "warn"

	dash := loggingConfig("dashboard", c)
	assert.True(t, dash.Quiet)
	assert.Equal(t, "~/.aleutian/logs", dash.LogDir)
	assert.Equal(t, logging.LevelWarn, dash.Level)

	list := loggingConfig("list", c)
	assert.False(t, list.Quiet)
	assert.Empty(t, list.LogDir)
	assert.Equal(t, "feedback", list.Service)
}

func TestResolveScope(t *testing.T) {
	cfg = config.DefaultConfig()
	t.Cleanup(func() { scopeFlag = "" })

	s, err := resolveScope()
	require.NoError(t, err)
	assert.Equal(t, feedback.ScopeAll, s)

	scopeFlag = "week"
	s, err = resolveScope()
	require.NoError(t, err)
	assert.Equal(t, feedback.ScopeWeek, s)

	scopeFlag = "month"
	_, err = resolveScope()
	assert.Error(t, err)
}

// =============================================================================
// Command Tests
// =============================================================================

func TestRunList_FiltersAndRendersPlain(t *testing.T) {
	var gotLimit string
	withBackend(t, func(w http.ResponseWriter, r *http.Request) {
		gotLimit = r.URL.Query().Get("limit")
		_, _ = w.Write([]byte(sampleRecordsJSON()))
	})
	searchQuery = "RAYLEIGH"

	cmd, out := testCommand()
	require.NoError(t, runList(cmd, nil))

	assert.Equal(t, "200", gotLimit)
	assert.Contains(t, out.String(), "[Missing Context] Why is sky blue?")
	assert.Contains(t, out.String(), "→ Explain Rayleigh scattering.")
	assert.NotContains(t, out.String(), "Capital of France?")
}

func TestRunList_JSONEmptyIsArray(t *testing.T) {
	withBackend(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleRecordsJSON()))
	})
	searchQuery = "no such text"
	jsonOutput = true
	listLimit = 5

	cmd, out := testCommand()
	require.NoError(t, runList(cmd, nil))
	assert.JSONEq(t, "[]", out.String())
}

func TestRunList_TransportErrorReturned(t *testing.T) {
	withBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	cmd, _ := testCommand()
	err := runList(cmd, nil)
	assert.True(t, feedback.IsTransport(err))
}

func TestRunSummary_FetchesListAndBreakdown(t *testing.T) {
	var scope string
	withBackend(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/feedback":
			_, _ = w.Write([]byte(sampleRecordsJSON()))
		case "/api/analytics/summary":
			scope = r.URL.Query().Get("scope")
			_, _ = w.Write([]byte(`{"breakdown":{"Missing Context":3,"Too Verbose":1}}`))
		default:
			http.NotFound(w, r)
		}
	})
	scopeFlag = "week"
	jsonOutput = true

	cmd, out := testCommand()
	require.NoError(t, runSummary(cmd, nil))
	assert.Equal(t, "week", scope)

	var report summaryReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.Equal(t, feedback.ScopeWeek, report.Scope)
	assert.Equal(t, 4, report.Total)
	assert.Equal(t, 2, report.RecentFetched)
	require.Len(t, report.Categories, 2)
	assert.Equal(t, taxonomy.TooVerbose, report.Categories[0].Category)
	assert.InDelta(t, 0.75, report.Categories[1].Share, 1e-9)
}

func TestRunSummary_FailsWhenEitherCallFails(t *testing.T) {
	withBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/analytics/summary" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(sampleRecordsJSON()))
	})

	cmd, _ := testCommand()
	assert.Error(t, runSummary(cmd, nil))
}

func TestRunInsights_PrintsSummaryPlain(t *testing.T) {
	var items int
	withBackend(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/feedback":
			_, _ = w.Write([]byte(sampleRecordsJSON()))
		case "/api/analytics/insights":
			var body struct {
				Items []feedback.Record `json:"items"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			items = len(body.Items)
			_, _ = w.Write([]byte(`{"summary":"Users want more context."}`))
		}
	})

	cmd, out := testCommand()
	require.NoError(t, runInsights(cmd, nil))

	assert.Equal(t, 2, items)
	assert.Contains(t, out.String(), "Insight, All Time\nUsers want more context.\n")
}

func TestRunInsights_GenerationFailure(t *testing.T) {
	withBackend(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/feedback":
			_, _ = w.Write([]byte(`[]`))
		case "/api/analytics/insights":
			_, _ = w.Write([]byte(`{"error":"model unavailable"}`))
		}
	})

	cmd, out := testCommand()
	err := runInsights(cmd, nil)
	assert.True(t, feedback.IsGeneration(err))
	assert.Contains(t, out.String(), "could not produce a summary")
}

func TestRunCategories_PlainListsTaxonomyInOrder(t *testing.T) {
	cmd, out := testCommand()
	require.NoError(t, runCategories(cmd, nil))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, len(taxonomy.Labels()))
	assert.Equal(t, "Misunderstanding\t#ef4444", lines[0])
	assert.True(t, strings.HasPrefix(lines[len(lines)-1], "Other\t"))
}

func TestRunDashboard_RequiresTerminal(t *testing.T) {
	cmd, _ := testCommand()
	err := runDashboard(cmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "interactive terminal")
}

// =============================================================================
// Rendering Tests
// =============================================================================

func TestRenderSummary_Plain(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	records := []feedback.Record{{ID: "x"}}
	b := feedback.Breakdown{taxonomy.Tone: 1, taxonomy.Inaccurate: 3}

	var buf bytes.Buffer
	renderSummary(ux.NewPrinter(&buf), buildSummaryReport(feedback.ScopeAll, records, b, now))

	out := buf.String()
	assert.Contains(t, out, "Issue breakdown, All Time\n")
	assert.Contains(t, out, "Total submissions: 4\n")
	assert.Contains(t, out, "Inaccurate "+strings.Repeat("#", 23)+" 3 (75%)\n")
	assert.Contains(t, out, "Tone       "+strings.Repeat("#", 8)+" 1 (25%)\n")
	assert.Contains(t, out, "Latest submission unknown time")
}

func TestRenderSummary_EmptyScope(t *testing.T) {
	var buf bytes.Buffer
	renderSummary(ux.NewPrinter(&buf), buildSummaryReport(feedback.ScopeWeek, nil, feedback.Breakdown{}, time.Now()))
	assert.Contains(t, buf.String(), "No data for this scope.")
	assert.NotContains(t, buf.String(), "Latest submission")
}

func TestRenderRecords_UnknownCategoryKeepsLabel(t *testing.T) {
	var buf bytes.Buffer
	renderRecords(ux.NewPrinter(&buf), []feedback.Record{{ID: "a", Category: "Rude", Question: "q"}}, time.Now())
	assert.Contains(t, buf.String(), "[Rude] q")
}

func TestAge(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "just now", age(now.Add(-10*time.Second), now))
	assert.Equal(t, "5m ago", age(now.Add(-5*time.Minute), now))
	assert.Equal(t, "3h ago", age(now.Add(-3*time.Hour), now))
	assert.Equal(t, "2d ago", age(now.Add(-50*time.Hour), now))
	assert.Equal(t, "unknown time", age(time.Time{}, now))
}

func TestIncomplete(t *testing.T) {
	full := feedback.Submission{Question: "q", Response: "r", Improvement: "i", Category: taxonomy.Tone}
	assert.False(t, incomplete(full))

	missing := full
	missing.Category = ""
	assert.True(t, incomplete(missing))

	blank := full
	blank.Response = "  "
	assert.True(t, incomplete(blank))
}

func TestTypewrite_WritesFullText(t *testing.T) {
	cfg = config.DefaultConfig()
	cfg.Dashboard.RevealInterval = time.Millisecond

	var buf bytes.Buffer
	typewrite(context.Background(), &buf, "héllo")
	assert.Equal(t, "héllo\n", buf.String())
}

func TestTypewrite_CancelledStillWritesFullText(t *testing.T) {
	cfg = config.DefaultConfig()
	cfg.Dashboard.RevealInterval = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	typewrite(ctx, &buf, "complete text")
	assert.Equal(t, "complete text\n", buf.String())
}

// =============================================================================
// submit Tests
// =============================================================================

func setSubmitFlags(t *testing.T, q, r, i, c string) {
	t.Helper()
	submitQuestion, submitResponse, submitImprovement, submitCategory = q, r, i, c
	t.Cleanup(func() {
		submitQuestion, submitResponse, submitImprovement, submitCategory = "", "", "", ""
	})
}

func TestRunSubmit_FlagsPrintBareID(t *testing.T) {
	var got feedback.Submission
	withBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"fb-42","question":"Why is sky blue?","response":"Because.",
			"improvement":"Explain Rayleigh scattering.","category":"Missing Context",
			"created_at":"2025-06-02T10:00:00Z"}`))
	})
	setSubmitFlags(t, "Why is sky blue?", "Because.", "Explain Rayleigh scattering.", "Missing Context")

	cmd, out := testCommand()
	require.NoError(t, runSubmit(cmd, nil))

	assert.Equal(t, taxonomy.MissingContext, got.Category)
	assert.Contains(t, out.String(), "fb-42\n")
}

func TestRunSubmit_InvalidCategoryNeverReachesBackend(t *testing.T) {
	called := false
	withBackend(t, func(w http.ResponseWriter, r *http.Request) { called = true })
	setSubmitFlags(t, "Why is sky blue?", "Because.", "Explain it.", "Rude")

	cmd, out := testCommand()
	err := runSubmit(cmd, nil)

	require.Error(t, err)
	assert.True(t, feedback.IsValidation(err))
	assert.False(t, called)
	assert.Contains(t, out.String(), "Feedback was not submitted:")
	assert.Contains(t, out.String(), "•")
}
