// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

/*
Package client talks to the feedback service over HTTP/JSON.

# Services

Three thin clients share one transport:

	┌──────────────────────────────────────────────────────────────┐
	│                          Client                              │
	│  ┌──────────────┐  ┌──────────────┐  ┌────────────────────┐  │
	│  │ RecordStore  │  │ Aggregation  │  │ Insights           │  │
	│  │ list/create  │  │ summary      │  │ generate (breaker) │  │
	│  └──────┬───────┘  └──────┬───────┘  └─────────┬──────────┘  │
	│         └─────────────────┼────────────────────┘             │
	│                      transport                               │
	│        (request id, span, metrics, error mapping)            │
	└──────────────────────────────────────────────────────────────┘

	GET  /api/feedback?limit=N          -> []Record
	POST /api/feedback                  -> Record
	GET  /api/analytics/summary?scope=  -> {"breakdown": {...}}
	POST /api/analytics/insights        -> {"summary": "..."}

# Failure Semantics

Every call is a single attempt; there are no retries at this layer. The
caller decides what a failure means. Network failures, timeouts and non-2xx
statuses surface as *feedback.TransportError. Create validates its input
first and returns *feedback.ValidationError without touching the network.
The insight service may answer 2xx yet report that it could not generate a
narrative; that surfaces as *feedback.GenerationError.

# Timeouts

Record and aggregation calls use Config.Timeout. Insight generation is slow
and variable, so it has its own, longer Config.InsightTimeout. Both are
applied per call via context, never through http.Client.Timeout, so one
client value serves both.
*/
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/AleutianAI/AleutianFeedback/pkg/feedback"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("aleutian.feedback.client")

// DefaultBaseURL is the local-development address of the feedback service.
const DefaultBaseURL = "http://localhost:8000"

// maxErrorBody caps how much of a failed response body is kept.
const maxErrorBody = 4 << 10

// =============================================================================
// Configuration
// =============================================================================

// Config holds client configuration.
type Config struct {
	// BaseURL is the service root, e.g. "http://localhost:8000".
	BaseURL string

	// Timeout bounds list, create and summary calls.
	Timeout time.Duration

	// InsightTimeout bounds insight generation.
	InsightTimeout time.Duration

	// MaxConnsPerHost limits concurrent connections to the service.
	MaxConnsPerHost int

	// Breaker configures the insight circuit breaker.
	Breaker BreakerConfig

	// HTTPClient overrides the transport; used by tests.
	HTTPClient *http.Client

	// Logger receives request diagnostics. Nil means slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns sensible defaults for the client.
func DefaultConfig() Config {
	return Config{
		BaseURL:         DefaultBaseURL,
		Timeout:         30 * time.Second,
		InsightTimeout:  90 * time.Second,
		MaxConnsPerHost: 16,
		Breaker:         DefaultBreakerConfig("insights"),
	}
}

// =============================================================================
// Client
// =============================================================================

// Client bundles the three service clients.
type Client struct {
	Records     *RecordStore
	Aggregation *Aggregation
	Insights    *Insights
}

// New builds a Client for cfg.
//
// # Inputs
//
//   - cfg: Client configuration. Zero durations fall back to DefaultConfig.
//
// # Outputs
//
//   - *Client: Ready-to-use clients sharing one connection pool.
//   - error: Non-nil if BaseURL cannot be parsed.
func New(cfg Config) (*Client, error) {
	t, err := newTransport(cfg)
	if err != nil {
		return nil, err
	}
	return &Client{
		Records:     &RecordStore{t: t},
		Aggregation: &Aggregation{t: t},
		Insights:    newInsights(t, cfg),
	}, nil
}

// transport performs JSON requests and maps failures to feedback errors.
type transport struct {
	base    *url.URL
	http    *http.Client
	timeout time.Duration
	logger  *slog.Logger
}

func newTransport(cfg Config) (*transport, error) {
	defaults := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaults.BaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.MaxConnsPerHost <= 0 {
		cfg.MaxConnsPerHost = defaults.MaxConnsPerHost
	}

	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", cfg.BaseURL)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   10 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				ForceAttemptHTTP2:     true,
				MaxIdleConns:          cfg.MaxConnsPerHost,
				MaxIdleConnsPerHost:   cfg.MaxConnsPerHost,
				MaxConnsPerHost:       cfg.MaxConnsPerHost,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ExpectContinueTimeout: time.Second,
			},
		}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &transport{
		base:    base,
		http:    httpClient,
		timeout: cfg.Timeout,
		logger:  logger.With("component", "feedback_client"),
	}, nil
}

// call describes one request.
type call struct {
	op      string
	method  string
	path    []string
	query   url.Values
	body    any
	timeout time.Duration
}

// do executes c and decodes a 2xx JSON response into out.
//
// # Description
//
// Single attempt. The request carries a fresh X-Request-ID. Any failure
// before a 2xx response is read is returned as *feedback.TransportError,
// including undecodable bodies.
func (t *transport) do(ctx context.Context, c call, out any) error {
	u := t.base.JoinPath(c.path...)
	if len(c.query) > 0 {
		u.RawQuery = c.query.Encode()
	}
	target := u.String()

	timeout := c.timeout
	if timeout <= 0 {
		timeout = t.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ctx, span := tracer.Start(ctx, "client."+c.op)
	defer span.End()
	requestID := uuid.NewString()
	span.SetAttributes(
		attribute.String("http.method", c.method),
		attribute.String("http.url", target),
		attribute.String("request_id", requestID),
	)

	start := time.Now()
	fail := func(terr *feedback.TransportError) error {
		terr.Op, terr.Method, terr.URL = c.op, c.method, target
		outcome := outcomeTransport
		if terr.Timeout {
			outcome = outcomeTimeout
		}
		observeRequest(c.op, outcome, time.Since(start))
		span.RecordError(terr)
		span.SetStatus(codes.Error, terr.Error())
		t.logger.Warn("feedback service call failed",
			"op", c.op,
			"request_id", requestID,
			"status", terr.StatusCode,
			"timeout", terr.Timeout,
			"error", terr.Error(),
		)
		return terr
	}

	var body io.Reader = http.NoBody
	if c.body != nil {
		payload, err := json.Marshal(c.body)
		if err != nil {
			return fail(&feedback.TransportError{Err: fmt.Errorf("encode request: %w", err)})
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, c.method, target, body)
	if err != nil {
		return fail(&feedback.TransportError{Err: fmt.Errorf("create request: %w", err)})
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if c.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := t.http.Do(req)
	if err != nil {
		return fail(&feedback.TransportError{Err: err, Timeout: isTimeout(ctx, err)})
	}
	defer func() { _ = resp.Body.Close() }()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fail(&feedback.TransportError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		})
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fail(&feedback.TransportError{
				StatusCode: resp.StatusCode,
				Err:        fmt.Errorf("decode response: %w", err),
				Timeout:    isTimeout(ctx, err),
			})
		}
	}

	observeRequest(c.op, outcomeSuccess, time.Since(start))
	t.logger.Debug("feedback service call completed",
		"op", c.op,
		"request_id", requestID,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// isTimeout reports whether err was caused by a deadline.
func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
