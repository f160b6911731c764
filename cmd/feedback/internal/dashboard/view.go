// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package dashboard

import (
	"fmt"
	"strings"

	"github.com/AleutianAI/AleutianFeedback/pkg/analytics"
	"github.com/AleutianAI/AleutianFeedback/pkg/feedback"
	"github.com/AleutianAI/AleutianFeedback/pkg/taxonomy"
	"github.com/AleutianAI/AleutianFeedback/pkg/ux"
	"github.com/charmbracelet/lipgloss"
)

var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ux.ColorTealDeep).
			Padding(0, 1)

	activeTab   = lipgloss.NewStyle().Bold(true).Foreground(ux.ColorTealBright).Underline(true)
	inactiveTab = lipgloss.NewStyle().Foreground(ux.ColorSlate)
	bigNumber   = lipgloss.NewStyle().Bold(true).Foreground(ux.ColorTealBright)
)

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading...\n"
	}

	width := max(40, m.width-2)

	var b strings.Builder
	b.WriteString(m.renderHeader(width))
	b.WriteString("\n")

	if m.vm.State == analytics.StateFailed {
		b.WriteString(renderFailure(m.vm, width))
		b.WriteString("\n")
	} else {
		total := panelStyle.Width(22).Render(
			ux.Styles.Subtitle.Render("Total submissions") + "\n" +
				bigNumber.Render(m.totalLabel()))
		chartWidth := max(20, width-lipgloss.Width(total)-1)
		chart := panelStyle.Width(chartWidth - 2).Render(
			ux.Styles.Subtitle.Render("Issue breakdown") + "\n" +
				renderBreakdown(m.vm.Breakdown, m.vm.Loading(), chartWidth-6))
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, total, " ", chart))
		b.WriteString("\n")
		b.WriteString(panelStyle.Width(width - 2).Render(m.renderInsight(width - 6)))
		b.WriteString("\n")
	}

	b.WriteString(m.renderListHeading())
	b.WriteString("\n")
	b.WriteString(m.list.View())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderHeader(width int) string {
	title := ux.Styles.Title.Render("Feedback Analytics")
	tabs := make([]string, 0, 2)
	for _, s := range []feedback.Scope{feedback.ScopeWeek, feedback.ScopeAll} {
		style := inactiveTab
		if s == m.vm.Scope {
			style = activeTab
		}
		tabs = append(tabs, style.Render(s.Label()))
	}
	toggle := strings.Join(tabs, "  ")
	gap := max(1, width-lipgloss.Width(title)-lipgloss.Width(toggle))
	return title + strings.Repeat(" ", gap) + toggle
}

func (m Model) totalLabel() string {
	if m.vm.Loading() && len(m.vm.Records) == 0 {
		return m.spinner.View()
	}
	return fmt.Sprintf("%d", len(m.vm.Records))
}

func (m Model) renderInsight(width int) string {
	heading := ux.Styles.Subtitle.Render("Insight")
	switch {
	case m.vm.IsGeneratingInsight:
		return heading + "\n" + m.spinner.View() + " Generating insight..."
	case m.vm.InsightFailed:
		return heading + "\n" + ux.Styles.Error.Render(string(ux.IconError)+" Insight unavailable") +
			ux.Styles.Muted.Render("  press r to retry")
	case m.target == "":
		return heading + "\n" + ux.Styles.Muted.Render("No insight yet.")
	default:
		return heading + "\n" + lipgloss.NewStyle().Width(width).Render(m.frame)
	}
}

func renderFailure(vm analytics.ViewModel, width int) string {
	msg := "Could not load feedback"
	if vm.Err != nil {
		msg += ": " + vm.Err.Error()
	}
	return ux.Styles.ErrorBox.Width(width - 2).Render(
		ux.Styles.Error.Render(msg) + "\n" + ux.Styles.Muted.Render("press r to retry"))
}

// renderBreakdown draws one bar per category, scaled to its share of the
// total, in taxonomy order.
func renderBreakdown(b feedback.Breakdown, loading bool, width int) string {
	entries := b.Sorted()
	if len(entries) == 0 {
		if loading {
			return ux.Styles.Muted.Render("Loading...")
		}
		return ux.Styles.Muted.Render("No data for this scope.")
	}

	labelWidth := 0
	for _, e := range entries {
		labelWidth = max(labelWidth, lipgloss.Width(string(e.Category)))
	}
	barMax := max(1, width-labelWidth-12)

	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		style := taxonomy.StyleOf(string(e.Category))
		share := b.Share(e.Category)
		bar := int(share*float64(barMax) + 0.5)
		if e.Count > 0 && bar == 0 {
			bar = 1
		}
		lines = append(lines, fmt.Sprintf("%-*s %s %d (%.0f%%)",
			labelWidth, e.Category, style.Bar(bar), e.Count, share*100))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderListHeading() string {
	visible := len(m.visibleRecords())
	heading := ux.Styles.Subtitle.Render(fmt.Sprintf("Recent submissions (%d of %d)", visible, len(m.vm.Records)))
	if m.searching || m.search.Value() != "" {
		return heading + "  " + m.search.View()
	}
	return heading
}

// renderRecords lays out one badge line and one improvement line per record.
func renderRecords(records []feedback.Record, width int) string {
	if len(records) == 0 {
		return ux.Styles.Muted.Render("No submissions.")
	}
	textWidth := max(20, width-4)

	var b strings.Builder
	for i, r := range records {
		if i > 0 {
			b.WriteString("\n")
		}
		badge := taxonomy.StyleOf(string(r.Category)).Badge()
		q := ux.Truncate(r.Question, max(10, textWidth-lipgloss.Width(badge)-1))
		b.WriteString(badge + " " + q + "\n")
		b.WriteString(ux.Styles.Muted.Render("  " + string(ux.IconArrow) + " " + ux.Truncate(r.Improvement, textWidth-4)))
	}
	return b.String()
}

func (m Model) renderFooter() string {
	help := "w week • a all • r refresh • / search • c copy • j/k scroll • q quit"
	if m.searching {
		help = "type to filter • esc done"
	}
	line := ux.Styles.Muted.Render(help)
	if m.notice != "" {
		line += "  " + ux.Styles.Highlight.Render(m.notice)
	}
	return line
}
