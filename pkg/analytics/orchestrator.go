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
Package analytics coordinates the dashboard's data fetches.

# Fetch Cycle

Every scope selection starts a cycle tagged with a new generation number:

	SetScope(s) ─► gen++ ─► List(limit)
	                            │
	                 stale? ────┤──► discard
	                            ▼
	                     apply records
	                     ┌──────┴──────┐
	                     ▼             ▼
	                Summary(s)   Generate(s, records)
	                     │             │
	             stale? discard  stale? discard
	                     ▼             ▼
	               apply breakdown  apply insight
	                     └──────┬──────┘
	                            ▼
	                          Ready

A result is applied only while its generation is current. A response for a
scope the user has already left is dropped no matter when it arrives, so
the ViewModel never mixes data from two cycles. Superseded requests are
not aborted; they run to completion and their results are discarded.

# Failure Policy

  - List fails: StateFailed with Err set; no further fetches.
  - Summary fails: empty breakdown, BreakdownErr set; the cycle still
    reaches StateReady.
  - Generate fails: InsightText "", InsightFailed set.

Nothing is retried. Refresh re-selects the current scope.
*/
package analytics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/AleutianAI/AleutianFeedback/pkg/feedback"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("aleutian.feedback.analytics")

// =============================================================================
// Collaborators
// =============================================================================

// RecordLister fetches the most recent records.
type RecordLister interface {
	List(ctx context.Context, limit int) ([]feedback.Record, error)
}

// Summarizer fetches the category breakdown for a scope.
type Summarizer interface {
	Summary(ctx context.Context, scope feedback.Scope) (feedback.Breakdown, error)
}

// InsightGenerator produces a narrative for a scope and record set.
type InsightGenerator interface {
	Generate(ctx context.Context, scope feedback.Scope, records []feedback.Record) (feedback.InsightResult, error)
}

// Listener receives a copy of the ViewModel after each change.
//
// Listeners run on the goroutine that made the change, one delivery at a
// time and in ViewModel.Version order. A listener must return quickly and
// must not call back into the Orchestrator.
type Listener func(ViewModel)

// Options configures an Orchestrator.
type Options struct {
	// Limit is the number of records fetched per cycle. Default 200.
	Limit int

	// DefaultScope is used by Refresh before any scope was selected.
	// Default feedback.ScopeAll.
	DefaultScope feedback.Scope

	// Logger receives cycle diagnostics. Nil means slog.Default().
	Logger *slog.Logger
}

// =============================================================================
// Orchestrator
// =============================================================================

// Orchestrator owns the ViewModel and the fetch cycles that fill it.
//
// # Thread Safety
//
// All methods are safe for concurrent use. The ViewModel is written only
// by the orchestrator's own goroutines.
type Orchestrator struct {
	store    RecordLister
	agg      Summarizer
	insights InsightGenerator

	limit        int
	defaultScope feedback.Scope
	logger       *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// notifyMu serialises listener delivery. Lock order: mu, then notifyMu.
	notifyMu sync.Mutex

	mu        sync.Mutex
	vm        ViewModel
	gen       uint64
	closed    bool
	listeners map[uint64]Listener
	nextSub   uint64
}

// New creates an idle Orchestrator.
//
// # Inputs
//
//   - store: Record list source.
//   - agg: Breakdown source.
//   - insights: Narrative source.
//   - opts: Limit, default scope and logger.
//
// # Outputs
//
//   - *Orchestrator: In StateIdle. Call SetScope to start the first cycle.
func New(store RecordLister, agg Summarizer, insights InsightGenerator, opts Options) *Orchestrator {
	if opts.Limit <= 0 {
		opts.Limit = feedback.DefaultListLimit
	}
	if !opts.DefaultScope.Valid() {
		opts.DefaultScope = feedback.ScopeAll
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Orchestrator{
		store:        store,
		agg:          agg,
		insights:     insights,
		limit:        opts.Limit,
		defaultScope: opts.DefaultScope,
		logger:       opts.Logger.With("component", "analytics"),
		ctx:          ctx,
		cancel:       cancel,
		vm:           ViewModel{State: StateIdle, Breakdown: feedback.Breakdown{}},
		listeners:    make(map[uint64]Listener),
	}
}

// SetScope starts a new fetch cycle for scope.
//
// # Description
//
// The data fields are cleared and the state becomes StateFetching before
// SetScope returns. Any earlier cycle is superseded: its pending results
// will be discarded on arrival. Selecting the current scope again is the
// retry path. An unknown scope is treated as feedback.ScopeAll.
//
// # Outputs
//
//   - uint64: The generation of the new cycle, or the current one if the
//     orchestrator is closed.
func (o *Orchestrator) SetScope(scope feedback.Scope) uint64 {
	if !scope.Valid() {
		o.logger.Warn("unknown scope, using all", "scope", scope)
		scope = feedback.ScopeAll
	}

	o.mu.Lock()
	if o.closed {
		gen := o.gen
		o.mu.Unlock()
		return gen
	}
	o.gen++
	gen := o.gen
	o.vm = ViewModel{
		Scope:      scope,
		State:      StateFetching,
		Generation: gen,
		Version:    o.vm.Version + 1,
		Breakdown:  feedback.Breakdown{},
	}
	o.wg.Add(1)
	o.publishAndUnlock()
	o.logger.Debug("fetch cycle started", "scope", scope, "generation", gen)

	go o.runCycle(gen, scope)
	return gen
}

// Refresh re-selects the current scope, or the default scope if none was
// selected yet.
func (o *Orchestrator) Refresh() uint64 {
	o.mu.Lock()
	scope := o.vm.Scope
	o.mu.Unlock()
	if !scope.Valid() {
		scope = o.defaultScope
	}
	return o.SetScope(scope)
}

// Snapshot returns a deep copy of the current ViewModel.
func (o *Orchestrator) Snapshot() ViewModel {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.vm.clone()
}

// Subscribe registers l for every subsequent change.
//
// # Outputs
//
//   - func(): Unsubscribes l. Safe to call more than once.
func (o *Orchestrator) Subscribe(l Listener) func() {
	o.mu.Lock()
	id := o.nextSub
	o.nextSub++
	o.listeners[id] = l
	o.mu.Unlock()

	return func() {
		o.mu.Lock()
		delete(o.listeners, id)
		o.mu.Unlock()
	}
}

// Wait blocks until every cycle started so far, superseded ones included,
// has finished.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// Close stops accepting scope changes, cancels in-flight requests and
// discards their results. It does not wait; call Wait for that.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.closed = true
	o.gen++
	o.mu.Unlock()
	o.cancel()
}

// =============================================================================
// Cycle
// =============================================================================

func (o *Orchestrator) runCycle(gen uint64, scope feedback.Scope) {
	defer o.wg.Done()

	start := time.Now()
	ctx, span := tracer.Start(o.ctx, "analytics.cycle",
		trace.WithAttributes(
			attribute.String("scope", string(scope)),
			attribute.Int64("generation", int64(gen)),
		),
	)
	defer span.End()

	records, err := o.store.List(ctx, o.limit)
	applied := o.apply(gen, func(vm *ViewModel) {
		if err != nil {
			vm.State = StateFailed
			vm.Err = err
			return
		}
		vm.Records = feedback.CloneRecords(records)
		vm.IsGeneratingInsight = true
	})
	if !applied {
		o.discard(gen, "records", span)
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "record list failed")
		o.logger.Warn("record list failed", "scope", scope, "generation", gen, "error", err)
		cyclesTotal.WithLabelValues("failed").Inc()
		cycleDuration.Observe(time.Since(start).Seconds())
		return
	}

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		breakdown, err := o.agg.Summary(ctx, scope)
		if !o.apply(gen, func(vm *ViewModel) {
			vm.breakdownDone = true
			if err != nil {
				vm.Breakdown = feedback.Breakdown{}
				vm.BreakdownErr = err
			} else {
				vm.Breakdown = breakdown.Clone()
			}
			settle(vm)
		}) {
			o.discard(gen, "breakdown", span)
			return
		}
		if err != nil {
			span.RecordError(err)
			o.logger.Warn("breakdown unavailable, showing empty", "scope", scope, "error", err)
		}
	}()

	go func() {
		defer wg.Done()
		result, err := o.insights.Generate(ctx, scope, feedback.CloneRecords(records))
		if !o.apply(gen, func(vm *ViewModel) {
			vm.insightDone = true
			vm.IsGeneratingInsight = false
			if err != nil {
				vm.InsightText = ""
				vm.InsightFailed = true
				vm.InsightErr = err
			} else {
				vm.InsightText = result.Summary
			}
			settle(vm)
		}) {
			o.discard(gen, "insight", span)
			return
		}
		if err != nil {
			span.RecordError(err)
			o.logger.Warn("insight generation failed", "scope", scope, "error", err)
		}
	}()

	wg.Wait()

	if o.current(gen) {
		cyclesTotal.WithLabelValues("ready").Inc()
		cycleDuration.Observe(time.Since(start).Seconds())
		o.logger.Debug("fetch cycle ready",
			"scope", scope,
			"generation", gen,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

// settle marks the cycle ready once both dependent fetches resolved.
func settle(vm *ViewModel) {
	if vm.breakdownDone && vm.insightDone {
		vm.State = StateReady
	}
}

// apply runs fn against the ViewModel if gen is still current, then
// notifies listeners. It reports whether fn ran.
func (o *Orchestrator) apply(gen uint64, fn func(*ViewModel)) bool {
	o.mu.Lock()
	if gen != o.gen {
		o.mu.Unlock()
		return false
	}
	fn(&o.vm)
	o.vm.Version++
	o.publishAndUnlock()
	return true
}

func (o *Orchestrator) current(gen uint64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return gen == o.gen
}

func (o *Orchestrator) discard(gen uint64, stage string, span trace.Span) {
	staleResults.WithLabelValues(stage).Inc()
	span.AddEvent("stale result discarded", trace.WithAttributes(attribute.String("stage", stage)))
	o.logger.Debug("discarding stale result", "stage", stage, "generation", gen)
	if stage == "records" {
		cyclesTotal.WithLabelValues("superseded").Inc()
	}
}

// publishAndUnlock releases o.mu, which must be held, and hands the
// ViewModel as of that moment to every listener. notifyMu is taken before
// o.mu is released, so deliveries happen in Version order.
func (o *Orchestrator) publishAndUnlock() {
	snap, listeners := o.publishLocked()
	o.notifyMu.Lock()
	defer o.notifyMu.Unlock()
	o.mu.Unlock()

	notify(listeners, snap)
}

// publishLocked copies the ViewModel and the listener set. o.mu must be held.
func (o *Orchestrator) publishLocked() (ViewModel, []Listener) {
	if len(o.listeners) == 0 {
		return ViewModel{}, nil
	}
	listeners := make([]Listener, 0, len(o.listeners))
	for _, l := range o.listeners {
		listeners = append(listeners, l)
	}
	return o.vm.clone(), listeners
}

// notify hands each listener its own copy.
func notify(listeners []Listener, vm ViewModel) {
	for i, l := range listeners {
		if i > 0 {
			vm = vm.clone()
		}
		l(vm)
	}
}
