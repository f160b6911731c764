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
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/AleutianAI/AleutianFeedback/pkg/feedback"
	"github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("aleutian.feedback.api")

// Generator turns in-scope records into a narrative.
type Generator interface {
	// Summarize writes the narrative for records within scope. Records
	// outside the scope window are ignored.
	Summarize(ctx context.Context, scope feedback.Scope, records []feedback.Record) (string, error)

	// Name identifies the generator in responses and metrics.
	Name() string
}

// inScope keeps the records whose timestamp falls within scope.
func inScope(records []feedback.Record, scope feedback.Scope, now time.Time) []feedback.Record {
	since := scope.Since(now)
	if since.IsZero() {
		return records
	}
	out := make([]feedback.Record, 0, len(records))
	for _, r := range records {
		if !r.Created().Before(since) {
			out = append(out, r)
		}
	}
	return out
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n-1]) + "…"
}

// =============================================================================
// Digest Generator
// =============================================================================

// DigestGenerator builds a deterministic narrative from category counts.
// It needs no model and is the default when no OpenAI endpoint is set.
type DigestGenerator struct {
	now func() time.Time
}

// NewDigestGenerator creates a DigestGenerator using the wall clock.
func NewDigestGenerator() *DigestGenerator {
	return &DigestGenerator{now: time.Now}
}

// Name implements Generator.
func (g *DigestGenerator) Name() string { return "digest" }

// Summarize implements Generator.
func (g *DigestGenerator) Summarize(_ context.Context, scope feedback.Scope, records []feedback.Record) (string, error) {
	now := g.now()
	scoped := inScope(records, scope, now)
	window := "overall"
	if scope == feedback.ScopeWeek {
		window = "this week"
	}
	if len(scoped) == 0 {
		return fmt.Sprintf("No feedback has been submitted %s.", window), nil
	}

	// Highest count first; ties keep taxonomy order.
	entries := feedback.CountRecords(scoped, feedback.ScopeAll, now).Sorted()
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Count > entries[j].Count })
	top := entries[0]

	var b strings.Builder
	noun := "submissions"
	if len(scoped) == 1 {
		noun = "submission"
	}
	fmt.Fprintf(&b, "%d %s %s. ", len(scoped), noun, window)
	fmt.Fprintf(&b, "The most common issue is %s (%d, %.0f%%)",
		top.Category, top.Count, 100*float64(top.Count)/float64(len(scoped)))
	if len(entries) > 1 {
		fmt.Fprintf(&b, ", followed by %s (%d)", entries[1].Category, entries[1].Count)
	}
	b.WriteString(".")

	// Records arrive newest first.
	for _, r := range scoped {
		if r.Category == top.Category && strings.TrimSpace(r.Improvement) != "" {
			fmt.Fprintf(&b, " A recent suggestion: \"%s\"", truncate(r.Improvement, 160))
			break
		}
	}
	return b.String(), nil
}

// =============================================================================
// OpenAI Generator
// =============================================================================

const insightSystemPrompt = `You analyse user feedback about an AI assistant's answers.
Each item has a category, the question, and a suggested improvement.
Write one short paragraph (at most 120 words) describing the dominant
problems and the most actionable improvement. Plain text, no lists.`

// maxPromptItems caps how many records are sent to the model.
const maxPromptItems = 100

// OpenAIGenerator asks an OpenAI-compatible chat endpoint for the narrative.
// Pointing BaseURL at Ollama's /v1 endpoint works the same way.
type OpenAIGenerator struct {
	client *openai.Client
	model  string
	now    func() time.Time
}

// NewOpenAIGenerator creates a generator for model at baseURL. An empty
// baseURL means api.openai.com.
func NewOpenAIGenerator(apiKey, baseURL, model string) *OpenAIGenerator {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	return &OpenAIGenerator{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		now:    time.Now,
	}
}

// Name implements Generator.
func (g *OpenAIGenerator) Name() string { return "openai:" + g.model }

// Summarize implements Generator.
func (g *OpenAIGenerator) Summarize(ctx context.Context, scope feedback.Scope, records []feedback.Record) (string, error) {
	ctx, span := tracer.Start(ctx, "generator.openai")
	defer span.End()

	scoped := inScope(records, scope, g.now())
	span.SetAttributes(
		attribute.String("model", g.model),
		attribute.String("scope", string(scope)),
		attribute.Int("items", len(scoped)),
	)
	if len(scoped) == 0 {
		return fmt.Sprintf("No feedback has been submitted for %s.", strings.ToLower(scope.Label())), nil
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: insightSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(scope, scoped)},
		},
		Temperature: 0.3,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "chat completion failed")
		slog.Error("insight chat completion failed", "model", g.model, "error", err)
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		err := errors.New("model returned no content")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func buildPrompt(scope feedback.Scope, records []feedback.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Scope: %s. %d items.\n\n", scope.Label(), len(records))
	for i, r := range records {
		if i == maxPromptItems {
			fmt.Fprintf(&b, "(%d more omitted)\n", len(records)-maxPromptItems)
			break
		}
		fmt.Fprintf(&b, "- [%s] Q: %s | Improvement: %s\n",
			r.Category, truncate(r.Question, 200), truncate(r.Improvement, 300))
	}
	return b.String()
}
