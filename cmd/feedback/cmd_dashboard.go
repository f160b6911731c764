// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/AleutianAI/AleutianFeedback/cmd/feedback/internal/dashboard"
	"github.com/AleutianAI/AleutianFeedback/pkg/analytics"
	"github.com/AleutianAI/AleutianFeedback/pkg/ux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

func runDashboard(cmd *cobra.Command, args []string) error {
	if !ux.IsInteractive() {
		return errors.New("the dashboard needs an interactive terminal; use `feedback summary` instead")
	}
	scope, err := resolveScope()
	if err != nil {
		return err
	}
	c, err := newClient()
	if err != nil {
		return err
	}

	if metricsAddr != "" {
		stop := serveMetrics(metricsAddr)
		defer stop()
	}

	orch := analytics.New(c.Records, c.Aggregation, c.Insights, analytics.Options{
		Limit:        cfg.Dashboard.ListLimit,
		DefaultScope: scope,
		Logger:       logger.Slog(),
	})
	defer func() {
		orch.Close()
		orch.Wait()
	}()

	logger.Info("dashboard started", "scope", scope, "backend", cfg.Backend.BaseURL, "log_file", logger.Path())
	return dashboard.Run(cmd.Context(), orch, dashboard.Options{
		Scope:          scope,
		RevealInterval: cfg.Dashboard.RevealInterval,
	})
}

// serveMetrics exposes the process metrics (client requests, fetch cycles)
// on addr until the returned function is called.
func serveMetrics(addr string) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "addr", addr, "error", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
