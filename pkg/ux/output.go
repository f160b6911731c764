// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package ux provides terminal output styling for the feedback CLI.
//
// Output goes through a Printer bound to one writer. A Printer knows whether
// its writer is a terminal; when it is not, styling and animation are
// dropped so the output can be piped or parsed.
package ux

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Aleutian color palette
var (
	ColorTealBright  = lipgloss.Color("#2CD7C7") // highlights, success
	ColorTealPrimary = lipgloss.Color("#20B9B4") // main brand color
	ColorTealDeep    = lipgloss.Color("#16858E") // borders
	ColorSlate       = lipgloss.Color("#2C4A54") // muted text

	ColorWarning = lipgloss.Color("#F4D03F")
	ColorError   = lipgloss.Color("#E74C3C")
)

// Styles provides pre-configured lipgloss styles
var Styles = struct {
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Bold      lipgloss.Style
	Muted     lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Highlight lipgloss.Style

	Box      lipgloss.Style
	ErrorBox lipgloss.Style
}{
	Title:     lipgloss.NewStyle().Bold(true).Foreground(ColorTealBright),
	Subtitle:  lipgloss.NewStyle().Foreground(ColorTealPrimary),
	Bold:      lipgloss.NewStyle().Bold(true),
	Muted:     lipgloss.NewStyle().Foreground(ColorSlate),
	Success:   lipgloss.NewStyle().Foreground(ColorTealBright),
	Warning:   lipgloss.NewStyle().Foreground(ColorWarning),
	Error:     lipgloss.NewStyle().Foreground(ColorError),
	Highlight: lipgloss.NewStyle().Foreground(ColorTealBright).Bold(true),

	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorTealDeep).
		Padding(0, 1),
	ErrorBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorError).
		Padding(0, 1),
}

// Icon provides themed status icons
type Icon string

const (
	IconSuccess Icon = "✓"
	IconWarning Icon = "⚠"
	IconError   Icon = "✗"
	IconPending Icon = "○"
	IconArrow   Icon = "→"
	IconBullet  Icon = "•"
)

// Render returns the icon with appropriate styling
func (i Icon) Render() string {
	switch i {
	case IconSuccess:
		return Styles.Success.Render(string(i))
	case IconWarning:
		return Styles.Warning.Render(string(i))
	case IconError:
		return Styles.Error.Render(string(i))
	case IconPending:
		return Styles.Muted.Render(string(i))
	default:
		return string(i)
	}
}

// =============================================================================
// Printer
// =============================================================================

// Printer writes styled messages to one destination.
type Printer struct {
	out   io.Writer
	color bool
}

// NewPrinter returns a Printer for w. Styling is enabled only when w is a
// terminal.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{out: w, color: IsTerminal(w)}
}

// Writer returns the underlying destination.
func (p *Printer) Writer() io.Writer {
	return p.out
}

// Styled reports whether the printer emits ANSI styling.
func (p *Printer) Styled() bool {
	return p.color
}

// Render applies style to text when styling is enabled.
func (p *Printer) Render(style lipgloss.Style, text string) string {
	if !p.color {
		return text
	}
	return style.Render(text)
}

// Title prints a styled title.
func (p *Printer) Title(text string) {
	fmt.Fprintln(p.out, p.Render(Styles.Title, text))
}

// Println prints text unchanged.
func (p *Printer) Println(text string) {
	fmt.Fprintln(p.out, text)
}

// Printf prints a formatted line unchanged.
func (p *Printer) Printf(format string, args ...any) {
	fmt.Fprintf(p.out, format, args...)
}

// Muted prints de-emphasised text.
func (p *Printer) Muted(text string) {
	fmt.Fprintln(p.out, p.Render(Styles.Muted, text))
}

// Success prints a success line.
func (p *Printer) Success(text string) {
	p.status(IconSuccess, Styles.Success, text)
}

// Warning prints a warning line.
func (p *Printer) Warning(text string) {
	p.status(IconWarning, Styles.Warning, text)
}

// Error prints an error line.
func (p *Printer) Error(text string) {
	p.status(IconError, Styles.Error, text)
}

func (p *Printer) status(icon Icon, style lipgloss.Style, text string) {
	if !p.color {
		fmt.Fprintf(p.out, "%s %s\n", icon, text)
		return
	}
	fmt.Fprintf(p.out, "%s %s\n", icon.Render(), style.Render(text))
}

// Box prints content inside a bordered box, or indented when unstyled.
func (p *Printer) Box(title, content string) {
	if !p.color {
		fmt.Fprintf(p.out, "%s\n", title)
		for _, line := range strings.Split(content, "\n") {
			fmt.Fprintf(p.out, "  %s\n", line)
		}
		return
	}
	body := Styles.Subtitle.Render(title) + "\n" + content
	fmt.Fprintln(p.out, Styles.Box.Render(body))
}

// Truncate collapses whitespace runs to single spaces and shortens text to
// at most limit runes, ending with "…" when cut.
func Truncate(text string, limit int) string {
	text = strings.Join(strings.Fields(text), " ")
	if limit <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	if limit == 1 {
		return "…"
	}
	return string(runes[:limit-1]) + "…"
}
