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
	"fmt"
	"strings"
	"time"

	"github.com/AleutianAI/AleutianFeedback/pkg/feedback"
	"github.com/AleutianAI/AleutianFeedback/pkg/search"
	"github.com/AleutianAI/AleutianFeedback/pkg/taxonomy"
	"github.com/AleutianAI/AleutianFeedback/pkg/ux"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// =============================================================================
// list
// =============================================================================

func runList(cmd *cobra.Command, args []string) error {
	limit := listLimit
	if limit <= 0 {
		limit = cfg.Dashboard.ListLimit
	}

	c, err := newClient()
	if err != nil {
		return err
	}
	records, err := c.Records.List(cmd.Context(), limit)
	if err != nil {
		return err
	}
	records = search.Filter(records, searchQuery)

	if jsonOutput {
		if records == nil {
			records = []feedback.Record{}
		}
		return writeJSON(cmd.OutOrStdout(), records)
	}
	renderRecords(ux.NewPrinter(cmd.OutOrStdout()), records, time.Now())
	return nil
}

// =============================================================================
// summary
// =============================================================================

// summaryReport is the --json shape of `feedback summary`.
type summaryReport struct {
	Scope         feedback.Scope `json:"scope"`
	Total         int            `json:"total"`
	RecentFetched int            `json:"recent_fetched"`
	LatestAt      *time.Time     `json:"latest_at,omitempty"`
	Categories    []categoryRow  `json:"categories"`
	GeneratedAt   time.Time      `json:"generated_at"`
}

type categoryRow struct {
	Category taxonomy.Category `json:"category"`
	Count    int               `json:"count"`
	Share    float64           `json:"share"`
}

func runSummary(cmd *cobra.Command, args []string) error {
	scope, err := resolveScope()
	if err != nil {
		return err
	}
	c, err := newClient()
	if err != nil {
		return err
	}

	var (
		records   []feedback.Record
		breakdown feedback.Breakdown
	)
	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		var err error
		records, err = c.Records.List(ctx, cfg.Dashboard.ListLimit)
		return err
	})
	g.Go(func() error {
		var err error
		breakdown, err = c.Aggregation.Summary(ctx, scope)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	report := buildSummaryReport(scope, records, breakdown, time.Now())
	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), report)
	}
	renderSummary(ux.NewPrinter(cmd.OutOrStdout()), report)
	return nil
}

func buildSummaryReport(scope feedback.Scope, records []feedback.Record, b feedback.Breakdown, now time.Time) summaryReport {
	report := summaryReport{
		Scope:         scope,
		Total:         b.Total(),
		RecentFetched: len(records),
		Categories:    make([]categoryRow, 0, len(b)),
		GeneratedAt:   now.UTC(),
	}
	if len(records) > 0 {
		latest := records[0].Created()
		report.LatestAt = &latest
	}
	for _, e := range b.Sorted() {
		report.Categories = append(report.Categories, categoryRow{
			Category: e.Category,
			Count:    e.Count,
			Share:    b.Share(e.Category),
		})
	}
	return report
}

// =============================================================================
// categories
// =============================================================================

func runCategories(cmd *cobra.Command, args []string) error {
	p := ux.NewPrinter(cmd.OutOrStdout())
	for _, c := range taxonomy.Labels() {
		style := taxonomy.StyleOf(string(c))
		if p.Styled() {
			p.Printf("%s %s\n", style.Badge(), p.Render(ux.Styles.Muted, string(style.Accent)))
		} else {
			p.Printf("%s\t%s\n", c, style.Accent)
		}
	}
	return nil
}

// =============================================================================
// Rendering
// =============================================================================

const barWidth = 30

// renderRecords prints one block per record: badge and question, then the
// suggested improvement and the record's age.
func renderRecords(p *ux.Printer, records []feedback.Record, now time.Time) {
	if len(records) == 0 {
		p.Muted("No submissions.")
		return
	}
	for _, r := range records {
		style := taxonomy.StyleOf(string(r.Category))
		label := "[" + style.Label + "]"
		if p.Styled() {
			label = style.Badge()
		}
		p.Printf("%s %s\n", label, ux.Truncate(r.Question, 80))
		p.Printf("  %s %s\n", ux.IconArrow, ux.Truncate(r.Improvement, 100))
		p.Muted(fmt.Sprintf("  %s  %s", r.ID, age(r.Created(), now)))
	}
}

// renderSummary prints totals and a share bar per category.
func renderSummary(p *ux.Printer, report summaryReport) {
	p.Title(fmt.Sprintf("Issue breakdown, %s", report.Scope.Label()))
	p.Printf("Total submissions: %d\n", report.Total)
	if report.LatestAt != nil {
		p.Muted("Latest submission " + age(*report.LatestAt, report.GeneratedAt))
	}
	if len(report.Categories) == 0 {
		p.Muted("No data for this scope.")
		return
	}

	labelWidth := 0
	for _, row := range report.Categories {
		labelWidth = max(labelWidth, len([]rune(string(row.Category))))
	}
	for _, row := range report.Categories {
		p.Printf("%-*s %s %d (%.0f%%)\n",
			labelWidth, row.Category, bar(p, row), row.Count, row.Share*100)
	}
}

func bar(p *ux.Printer, row categoryRow) string {
	width := int(row.Share*barWidth + 0.5)
	if row.Count > 0 && width == 0 {
		width = 1
	}
	if p.Styled() {
		return taxonomy.StyleOf(string(row.Category)).Bar(width)
	}
	return strings.Repeat("#", width)
}

// age formats how long ago t was, coarsely.
func age(t, now time.Time) string {
	if t.IsZero() {
		return "unknown time"
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
