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
	"time"

	"github.com/spf13/cobra"
)

// --- Global Command Variables ---
var (
	configPath string
	backendURL string
	logLevel   string
	logDir     string
	timeout    time.Duration

	scopeFlag   string
	jsonOutput  bool
	listLimit   int
	searchQuery string
	metricsAddr string

	submitQuestion    string
	submitResponse    string
	submitImprovement string
	submitCategory    string

	rootCmd = &cobra.Command{
		Use:   "feedback",
		Short: "Submit and analyse feedback on assistant answers",
		Long: `feedback records what users thought of assistant answers and
shows where the answers go wrong: category breakdowns, recent
submissions and a generated narrative per time window.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
		PersistentPostRun: teardown,
	}

	submitCmd = &cobra.Command{
		Use:   "submit",
		Short: "Record feedback on an answer (interactive form when fields are missing)",
		Args:  cobra.NoArgs,
		RunE:  runSubmit, // Defined in cmd_submit.go
	}

	listCmd = &cobra.Command{
		Use:     "list",
		Short:   "List recent submissions, newest first",
		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,
		RunE:    runList, // Defined in cmd_read.go
	}

	summaryCmd = &cobra.Command{
		Use:   "summary",
		Short: "Show the issue breakdown for a time window",
		Args:  cobra.NoArgs,
		RunE:  runSummary, // Defined in cmd_read.go
	}

	insightsCmd = &cobra.Command{
		Use:   "insights",
		Short: "Generate a narrative summary of recent feedback",
		Args:  cobra.NoArgs,
		RunE:  runInsights, // Defined in cmd_insights.go
	}

	dashboardCmd = &cobra.Command{
		Use:     "dashboard",
		Short:   "Open the interactive analytics dashboard",
		Aliases: []string{"ui"},
		Args:    cobra.NoArgs,
		RunE:    runDashboard, // Defined in cmd_dashboard.go
	}

	categoriesCmd = &cobra.Command{
		Use:   "categories",
		Short: "Show the issue categories and their colours",
		Args:  cobra.NoArgs,
		RunE:  runCategories, // Defined in cmd_read.go
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Config file (default ~/.aleutian/feedback.yaml)")
	rootCmd.PersistentFlags().StringVar(&backendURL, "backend-url", "",
		"Feedback service base URL (overrides backend.base_url)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "",
		"Directory for log files")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0,
		"Timeout for record and summary calls (overrides backend.timeout)")

	submitCmd.Flags().StringVarP(&submitQuestion, "question", "q", "", "The question that was asked")
	submitCmd.Flags().StringVarP(&submitResponse, "response", "r", "", "The answer that was given")
	submitCmd.Flags().StringVarP(&submitImprovement, "improvement", "i", "", "How the answer should improve")
	submitCmd.Flags().StringVarP(&submitCategory, "category", "c", "",
		"Issue category (see `feedback categories`)")

	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 0, "Number of records to fetch (default dashboard.list_limit)")
	listCmd.Flags().StringVarP(&searchQuery, "search", "s", "", "Only show records containing this text")
	listCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	summaryCmd.Flags().StringVar(&scopeFlag, "scope", "", "Time window: week or all (default dashboard.default_scope)")
	summaryCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	insightsCmd.Flags().StringVar(&scopeFlag, "scope", "", "Time window: week or all (default dashboard.default_scope)")

	dashboardCmd.Flags().StringVar(&scopeFlag, "scope", "", "Initial time window: week or all")
	dashboardCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "",
		"Serve Prometheus metrics on this address while the dashboard runs (e.g. :9464)")

	rootCmd.AddCommand(submitCmd, listCmd, summaryCmd, insightsCmd, dashboardCmd, categoriesCmd)
}
