// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package dashboard is the full-screen feedback analytics view.
//
// # Description
//
// The model never fetches anything itself. It renders the ViewModel pushed
// by an analytics orchestrator and forwards scope selections back to it.
// Two latest-wins mailboxes carry values into the bubbletea loop:
//
//	orchestrator listener ──► snapshots ──┐
//	                                      ├──► Update ──► View
//	reveal renderer sink ───► frames ─────┘
//
// Both producers may hold a lock while they publish, so they must never
// block on the event loop; a mailbox Put never does.
//
// # Keys
//
//	w / a    select This Week / All Time
//	r        refresh the current scope
//	/  esc   enter / leave search
//	c        copy the insight to the clipboard
//	j / k    scroll the submission list
//	q        quit
package dashboard

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/AleutianAI/AleutianFeedback/pkg/analytics"
	"github.com/AleutianAI/AleutianFeedback/pkg/feedback"
	"github.com/AleutianAI/AleutianFeedback/pkg/reveal"
	"github.com/AleutianAI/AleutianFeedback/pkg/search"
	"github.com/AleutianAI/AleutianFeedback/pkg/ux"
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Orchestrator is the part of *analytics.Orchestrator the dashboard drives.
type Orchestrator interface {
	SetScope(scope feedback.Scope) uint64
	Refresh() uint64
	Subscribe(l analytics.Listener) func()
}

// Options configures the dashboard.
type Options struct {
	// Scope is selected when the dashboard starts. Default feedback.ScopeAll.
	Scope feedback.Scope

	// RevealInterval paces the insight reveal. Default reveal.DefaultInterval.
	RevealInterval time.Duration

	// Clipboard receives copied text. Default clipboard.WriteAll.
	Clipboard func(string) error
}

// Fixed rows above the submission list: header, stat panels, insight panel,
// list heading and footer.
const chromeRows = 16

// =============================================================================
// Messages
// =============================================================================

type snapshotMsg analytics.ViewModel

type frameMsg string

type copiedMsg struct {
	err error
}

// =============================================================================
// Model
// =============================================================================

// Model is the bubbletea model for the dashboard.
type Model struct {
	orch        Orchestrator
	scope       feedback.Scope
	clipboard   func(string) error
	renderer    *reveal.Renderer
	snapshots   *reveal.Mailbox[analytics.ViewModel]
	frames      *reveal.Mailbox[string]
	unsubscribe func()

	// Latest ViewModel and reveal state
	vm     analytics.ViewModel
	target string
	frame  string

	// Widgets
	spinner   spinner.Model
	search    textinput.Model
	searching bool
	list      viewport.Model

	// Terminal dimensions
	width  int
	height int
	ready  bool

	notice   string
	quitting bool
}

// New creates a dashboard bound to orch. It subscribes immediately; call
// Close when the program exits.
//
// # Inputs
//
//   - orch: The orchestrator to render and drive.
//   - opts: Initial scope, reveal pacing and clipboard.
//
// # Outputs
//
//   - Model: Ready-to-use model for tea.NewProgram.
func New(orch Orchestrator, opts Options) Model {
	if !opts.Scope.Valid() {
		opts.Scope = feedback.ScopeAll
	}
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.WriteAll
	}

	snapshots := reveal.NewMailbox[analytics.ViewModel]()
	frames := reveal.NewMailbox[string]()

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(ux.ColorTealBright)),
	)

	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "search question, response or improvement"
	ti.CharLimit = 200

	return Model{
		orch:        orch,
		scope:       opts.Scope,
		clipboard:   opts.Clipboard,
		renderer:    reveal.New(opts.RevealInterval, frames.Sink(func(s string) string { return s })),
		snapshots:   snapshots,
		frames:      frames,
		unsubscribe: orch.Subscribe(newerSnapshots(snapshots)),
		spinner:     sp,
		search:      ti,
		list:        viewport.New(80, 10),
	}
}

// Close unsubscribes from the orchestrator and stops any running reveal.
func (m Model) Close() {
	m.unsubscribe()
	m.renderer.Stop()
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	orch, scope := m.orch, m.scope
	return tea.Batch(
		m.spinner.Tick,
		waitSnapshot(m.snapshots),
		waitFrame(m.frames),
		func() tea.Msg {
			orch.SetScope(scope)
			return nil
		},
	)
}

// newerSnapshots puts a snapshot into mb only when its Version is above the
// last one put. The mailbox keeps a single value, so an older snapshot put
// after a newer one would replace it before Update ever saw the newer one.
func newerSnapshots(mb *reveal.Mailbox[analytics.ViewModel]) analytics.Listener {
	var (
		mu   sync.Mutex
		last uint64
	)
	return func(vm analytics.ViewModel) {
		mu.Lock()
		defer mu.Unlock()
		if vm.Version <= last {
			return
		}
		last = vm.Version
		mb.Put(vm)
	}
}

func waitSnapshot(mb *reveal.Mailbox[analytics.ViewModel]) tea.Cmd {
	return func() tea.Msg { return snapshotMsg(<-mb.C()) }
}

func waitFrame(mb *reveal.Mailbox[string]) tea.Cmd {
	return func() tea.Msg { return frameMsg(<-mb.C()) }
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.Width = msg.Width
		m.list.Height = max(3, msg.Height-chromeRows)
		m.ready = true
		m.refreshList()
		return m, nil

	case snapshotMsg:
		m.applySnapshot(analytics.ViewModel(msg))
		return m, waitSnapshot(m.snapshots)

	case frameMsg:
		// A frame taken from the mailbox just before a new reveal started
		// can still arrive; only prefixes of the current target are shown.
		if frame := string(msg); strings.HasPrefix(m.target, frame) {
			m.frame = frame
		}
		return m, waitFrame(m.frames)

	case copiedMsg:
		if msg.err != nil {
			m.notice = "copy failed: " + msg.err.Error()
		} else {
			m.notice = "insight copied to clipboard"
		}
		return m, nil

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m.quit()
		}
		if m.searching {
			return m.handleSearchInput(msg)
		}
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.notice = ""
	switch msg.String() {
	case "q", "Q":
		return m.quit()

	case "w", "W":
		m.orch.SetScope(feedback.ScopeWeek)

	case "a", "A":
		m.orch.SetScope(feedback.ScopeAll)

	case "r", "R":
		m.orch.Refresh()

	case "/":
		m.searching = true
		cmd := m.search.Focus()
		return m, cmd

	case "c", "C":
		return m, m.copyInsight()

	case "j", "down":
		m.list.LineDown(1)

	case "k", "up":
		m.list.LineUp(1)

	case "g", "home":
		m.list.GotoTop()

	case "G", "end":
		m.list.GotoBottom()
	}
	return m, nil
}

func (m Model) handleSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter":
		m.searching = false
		m.search.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	before := m.search.Value()
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != before {
		m.refreshList()
		m.list.GotoTop()
	}
	return m, cmd
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	return m, tea.Quit
}

func (m Model) copyInsight() tea.Cmd {
	text := m.vm.InsightText
	if text == "" {
		return func() tea.Msg { return copiedMsg{err: errors.New("no insight to copy")} }
	}
	write := m.clipboard
	return func() tea.Msg { return copiedMsg{err: write(text)} }
}

// applySnapshot installs vm unless a newer one was already applied, and
// restarts the reveal whenever the insight text changes.
func (m *Model) applySnapshot(vm analytics.ViewModel) {
	if vm.Version < m.vm.Version {
		return
	}
	m.vm = vm
	if vm.InsightText != m.target {
		m.target = vm.InsightText
		m.frame = ""
		m.renderer.Reveal(vm.InsightText)
	}
	m.refreshList()
}

func (m *Model) refreshList() {
	m.list.SetContent(renderRecords(m.visibleRecords(), m.list.Width))
}

func (m Model) visibleRecords() []feedback.Record {
	return search.Filter(m.vm.Records, m.search.Value())
}

// =============================================================================
// Run
// =============================================================================

// Run shows the dashboard until the user quits or ctx is cancelled.
func Run(ctx context.Context, orch Orchestrator, opts Options) error {
	m := New(orch, opts)
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
