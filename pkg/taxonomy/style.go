// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package taxonomy

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// Display Metadata
// =============================================================================

// Style is the display metadata attached to a category.
type Style struct {
	// Label is the text shown on the badge. For unrecognised input this is
	// the original label, not "Other", so the user still sees what arrived.
	Label string

	// Accent is the strong colour used for chart bars.
	Accent lipgloss.Color

	// Foreground is the soft colour used for badge text.
	Foreground lipgloss.Color

	// Known is false when the fallback style was used.
	Known bool
}

var styles = map[Category]Style{
	Misunderstanding: {Label: string(Misunderstanding), Accent: "#ef4444", Foreground: "#fca5a5", Known: true},
	TooVerbose:       {Label: string(TooVerbose), Accent: "#eab308", Foreground: "#fef08a", Known: true},
	Inaccurate:       {Label: string(Inaccurate), Accent: "#f97316", Foreground: "#fed7aa", Known: true},
	MissingContext:   {Label: string(MissingContext), Accent: "#3b82f6", Foreground: "#bfdbfe", Known: true},
	Hallucination:    {Label: string(Hallucination), Accent: "#ec4899", Foreground: "#fbcfe8", Known: true},
	Tone:             {Label: string(Tone), Accent: "#a855f7", Foreground: "#e9d5ff", Known: true},
	Other:            {Label: string(Other), Accent: "#64748b", Foreground: "#e2e8f0", Known: true},
}

// StyleOf returns the display metadata for label.
//
// # Description
//
// Never fails. Labels outside the taxonomy receive the "Other" colours with
// Known set to false and Label preserved.
//
// # Inputs
//
//   - label: A category label, possibly unrecognised.
//
// # Outputs
//
//   - Style: Metadata for rendering the label.
func StyleOf(label string) Style {
	if s, ok := styles[Category(label)]; ok {
		return s
	}
	fallback := styles[Other]
	fallback.Label = label
	fallback.Known = false
	return fallback
}

// Badge renders the label as a coloured pill.
func (s Style) Badge() string {
	return lipgloss.NewStyle().
		Foreground(s.Foreground).
		Border(lipgloss.NormalBorder(), false, true).
		BorderForeground(s.Accent).
		Padding(0, 1).
		Render(s.Label)
}

// Bar renders a horizontal bar of width cells in the accent colour.
func (s Style) Bar(width int) string {
	if width <= 0 {
		return ""
	}
	bar := make([]rune, width)
	for i := range bar {
		bar[i] = '█'
	}
	return lipgloss.NewStyle().Foreground(s.Accent).Render(string(bar))
}
