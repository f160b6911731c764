// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command feedback-api runs an in-memory feedback service for local
// development of the feedback CLI and dashboard.
//
// Usage:
//
//	go run ./cmd/feedback-api
//	go run ./cmd/feedback-api --port 9000 --trace stdout
//
// Example requests:
//
//	# Submit feedback
//	curl -X POST http://localhost:8000/api/feedback \
//	  -H "Content-Type: application/json" \
//	  -d '{"question":"Why is sky blue?","response":"Because.",
//	       "improvement":"Explain Rayleigh scattering.","category":"Missing Context"}'
//
//	# Category breakdown for the last seven days
//	curl 'http://localhost:8000/api/analytics/summary?scope=week'
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AleutianAI/AleutianFeedback/pkg/logging"
	"github.com/AleutianAI/AleutianFeedback/services/feedback_api"
	"github.com/AleutianAI/AleutianFeedback/services/policy_engine"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var (
	port     int
	traceOut string
	debug    bool
	logDir   string

	rootCmd = &cobra.Command{
		Use:          "feedback-api",
		Short:        "Run the in-memory feedback service",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         runServer,
	}
)

func init() {
	rootCmd.Flags().IntVar(&port, "port", 0, "Port to listen on (overrides FEEDBACK_API_PORT)")
	rootCmd.Flags().StringVar(&traceOut, "trace", "none", "Trace exporter: none or stdout")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "Enable gin debug mode and debug logging")
	rootCmd.Flags().StringVar(&logDir, "log-dir", "", "Also write JSON logs to this directory")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error executing command: %v", err)
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := feedback_api.LoadConfig()
	if err != nil {
		return err
	}
	if port != 0 {
		cfg.Port = port
	}

	level := logging.LevelInfo
	if debug {
		level = logging.LevelDebug
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	logger := logging.New(logging.Config{Level: level, Service: feedback_api.ServiceName, LogDir: logDir})
	defer func() { _ = logger.Close() }()
	slog.SetDefault(logger.Slog())

	shutdownTracing, err := feedback_api.InitTracing(traceOut, os.Stdout)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logger.Warn("trace shutdown failed", "error", err)
		}
	}()

	handlers := feedback_api.NewHandlers(feedback_api.NewMemoryStore(), feedback_api.NewGenerator(cfg), cfg)
	if cfg.Redact {
		engine, err := policy_engine.NewPolicyEngine()
		if err != nil {
			return fmt.Errorf("load redaction policy: %w", err)
		}
		handlers.WithRedactor(engine)
	}
	router := feedback_api.NewRouter(handlers)
	if debug {
		router.Use(gin.Logger())
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("feedback service listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()
	printBanner(cfg.Port)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down feedback service")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func printBanner(port int) {
	banner := `
╔═══════════════════════════════════════════════════════════════════╗
║                  ALEUTIAN FEEDBACK DEV SERVICE                    ║
╠═══════════════════════════════════════════════════════════════════╣
║                                                                   ║
║  In-memory store. Data is lost when the process exits.            ║
║                                                                   ║
║  Endpoints (port %-5d):                                           ║
║  ├── GET  /health                                                 ║
║  ├── GET  /metrics                                                ║
║  ├── GET  /api/feedback?limit=N                                   ║
║  ├── POST /api/feedback                                           ║
║  ├── GET  /api/analytics/summary?scope=week|all                   ║
║  └── POST /api/analytics/insights                                 ║
║                                                                   ║
║  Point the CLI at it:  feedback --backend-url http://localhost:%-5d║
║                                                                   ║
║  Press Ctrl+C to stop                                             ║
╚═══════════════════════════════════════════════════════════════════╝
`
	fmt.Printf(banner, port, port)
}
