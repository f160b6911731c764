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
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/AleutianAI/AleutianFeedback/pkg/feedback"
	"github.com/AleutianAI/AleutianFeedback/services/policy_engine"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const requestIDHeader = "X-Request-ID"

// Handlers contains the HTTP handlers for the feedback service.
//
// Thread Safety: Handlers is safe for concurrent use.
type Handlers struct {
	store          *MemoryStore
	gen            Generator
	limiter        *rate.Limiter
	insightTimeout time.Duration
	maxListLimit   int
	redactor       Redactor
}

// Redactor masks sensitive text. *policy_engine.PolicyEngine satisfies it.
type Redactor interface {
	Redact(text string) (string, []policy_engine.Finding)
}

// NewHandlers creates handlers backed by store and gen.
//
// Inputs:
//
//	store - Record storage. Must not be nil.
//	gen - Narrative generator. Must not be nil.
//	cfg - Rate limit, insight timeout and list cap.
//
// Outputs:
//
//	*Handlers - The configured handlers.
func NewHandlers(store *MemoryStore, gen Generator, cfg Config) *Handlers {
	limit := rate.Inf
	burst := 0
	if cfg.InsightRatePerMin > 0 {
		limit = rate.Limit(float64(cfg.InsightRatePerMin) / 60)
		burst = max(1, cfg.InsightRatePerMin/6)
	}
	timeout := cfg.InsightTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	maxList := cfg.MaxListLimit
	if maxList <= 0 {
		maxList = 1000
	}
	return &Handlers{
		store:          store,
		gen:            gen,
		limiter:        rate.NewLimiter(limit, burst),
		insightTimeout: timeout,
		maxListLimit:   maxList,
	}
}

// WithRedactor makes HandleCreate mask every text field with r before
// storing. It returns h for chaining.
func (h *Handlers) WithRedactor(r Redactor) *Handlers {
	h.redactor = r
	return h
}

func requestLogger(c *gin.Context, handler string) *slog.Logger {
	return slog.With("request_id", c.GetString(requestIDHeader), "handler", handler)
}

// HandleHealth handles GET /health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		Records:   h.store.Len(),
		Generator: h.gen.Name(),
	})
}

// HandleCreate handles POST /api/feedback.
//
// Description:
//
//	Validates the submission with the same rules the client applies and
//	stores it.
//
// Response:
//
//	201 Created: feedback.Record
//	400 Bad Request: Malformed JSON
//	422 Unprocessable Entity: ErrorResponse with Fields
func (h *Handlers) HandleCreate(c *gin.Context) {
	logger := requestLogger(c, "HandleCreate")

	var sub feedback.Submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		logger.Warn("invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: "INVALID_REQUEST"})
		return
	}

	if err := sub.Validate(); err != nil {
		var verr *feedback.ValidationError
		if errors.As(err, &verr) {
			for _, f := range verr.Fields {
				rejectionsTotal.WithLabelValues(f.Field).Inc()
			}
			logger.Info("submission rejected", "fields", len(verr.Fields))
			c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
				Error:  err.Error(),
				Code:   "VALIDATION_FAILED",
				Fields: verr.Fields,
			})
			return
		}
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error(), Code: "VALIDATION_FAILED"})
		return
	}

	if h.redactor != nil {
		if n := h.redact(&sub); n > 0 {
			logger.Info("submission redacted", "matches", n)
		}
	}

	rec := h.store.Create(sub)
	submissionsTotal.WithLabelValues(string(rec.Category)).Inc()
	logger.Info("feedback stored", "id", rec.ID, "category", rec.Category)
	c.JSON(http.StatusCreated, rec)
}

// redact masks the text fields of sub in place and returns the number of
// replacements.
func (h *Handlers) redact(sub *feedback.Submission) int {
	n := 0
	for _, field := range []*string{&sub.Question, &sub.Response, &sub.Improvement} {
		masked, findings := h.redactor.Redact(*field)
		for _, f := range findings {
			redactionsTotal.WithLabelValues(f.Classification).Inc()
		}
		*field = masked
		n += len(findings)
	}
	return n
}

// HandleList handles GET /api/feedback?limit=N.
//
// Response:
//
//	200 OK: []feedback.Record, newest first
//	400 Bad Request: limit is not an integer
func (h *Handlers) HandleList(c *gin.Context) {
	limit := feedback.DefaultListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be an integer", Code: "INVALID_LIMIT"})
			return
		}
		if n > 0 {
			limit = n
		}
	}
	limit = min(limit, h.maxListLimit)
	c.JSON(http.StatusOK, h.store.List(limit))
}

// HandleSummary handles GET /api/analytics/summary[?scope=week|all].
//
// A missing scope means "all".
func (h *Handlers) HandleSummary(c *gin.Context) {
	scope, ok := h.scopeParam(c, c.DefaultQuery("scope", string(feedback.ScopeAll)))
	if !ok {
		return
	}

	breakdown := h.store.Summary(scope)
	body := SummaryResponse{Scope: scope, Breakdown: make(map[string]int, len(breakdown)), Total: breakdown.Total()}
	for cat, n := range breakdown {
		body.Breakdown[string(cat)] = n
	}
	c.JSON(http.StatusOK, body)
}

// HandleInsights handles POST /api/analytics/insights.
//
// Description:
//
//	Generates a narrative for the submitted items. Generator failures are
//	reported in a 200 body so clients can tell them apart from transport
//	problems.
//
// Response:
//
//	200 OK: InsightResponse (Summary, or Error on generation failure)
//	400 Bad Request: Malformed body or unknown scope
//	429 Too Many Requests: Rate limit exceeded
func (h *Handlers) HandleInsights(c *gin.Context) {
	logger := requestLogger(c, "HandleInsights")

	var req InsightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		insightsTotal.WithLabelValues("invalid").Inc()
		logger.Warn("invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: "INVALID_REQUEST"})
		return
	}
	if req.Scope == "" {
		req.Scope = feedback.ScopeAll
	}
	scope, ok := h.scopeParam(c, string(req.Scope))
	if !ok {
		insightsTotal.WithLabelValues("invalid").Inc()
		return
	}

	if !h.limiter.Allow() {
		insightsTotal.WithLabelValues("rate_limited").Inc()
		retry := time.Duration(math.Ceil(float64(time.Second) / float64(h.limiter.Limit())))
		c.Header("Retry-After", strconv.Itoa(max(1, int(retry.Seconds()))))
		c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "insight rate limit exceeded", Code: "RATE_LIMITED"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.insightTimeout)
	defer cancel()

	start := time.Now()
	summary, err := h.gen.Summarize(ctx, scope, req.Items)
	insightDuration.WithLabelValues(h.gen.Name()).Observe(time.Since(start).Seconds())
	if err != nil {
		insightsTotal.WithLabelValues("generation_error").Inc()
		logger.Error("insight generation failed", "scope", scope, "items", len(req.Items), "error", err)
		c.JSON(http.StatusOK, InsightResponse{Error: err.Error(), Source: h.gen.Name()})
		return
	}

	insightsTotal.WithLabelValues("success").Inc()
	logger.Info("insight generated",
		"scope", scope,
		"items", len(req.Items),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	c.JSON(http.StatusOK, InsightResponse{Summary: &summary, Source: h.gen.Name()})
}

func (h *Handlers) scopeParam(c *gin.Context, raw string) (feedback.Scope, bool) {
	scope, err := feedback.ParseScope(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_SCOPE"})
		return "", false
	}
	return scope, true
}

// RequestID propagates X-Request-ID, generating one when absent.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDHeader, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}
