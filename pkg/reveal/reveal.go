// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package reveal renders text progressively, one character at a time.
//
// # Description
//
// A Renderer turns a finished string into a timed sequence of prefixes,
// from "" to the full string, delivered to a Sink. It is purely cosmetic:
// the text is already complete when Reveal is called, and nothing waits
// on the animation for correctness.
//
// Supplying a new target cancels the running reveal outright. There is no
// merge and no backlog; the new reveal starts again from "".
//
// # Thread Safety
//
// All methods are safe for concurrent use. Frames are delivered while the
// renderer's lock is held, so a Sink must not call back into the Renderer.
// Use a Mailbox to hand frames to an event loop.
package reveal

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"
)

// DefaultInterval is the delay between successive characters.
const DefaultInterval = 15 * time.Millisecond

// Sink receives each frame of a reveal.
type Sink func(frame string)

// Renderer reveals one target string at a time.
type Renderer struct {
	interval time.Duration
	sink     Sink

	mu      sync.Mutex
	gen     uint64
	cancel  context.CancelFunc
	current string
	target  string
	done    chan struct{}
}

// New creates a Renderer that emits to sink every interval.
//
// # Inputs
//
//   - interval: Delay between characters. Values <= 0 use DefaultInterval.
//   - sink: Frame consumer. Nil discards frames.
//
// # Outputs
//
//   - *Renderer: An idle renderer.
func New(interval time.Duration, sink Sink) *Renderer {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if sink == nil {
		sink = func(string) {}
	}
	done := make(chan struct{})
	close(done)
	return &Renderer{interval: interval, sink: sink, done: done}
}

// Reveal starts revealing target, cancelling any reveal in progress.
//
// # Description
//
// The empty frame is emitted before Reveal returns. Each following frame
// adds one rune until the full target has been emitted, exactly once. Once
// Reveal returns no frame of an earlier target will reach the sink.
func (r *Renderer) Reveal(target string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stopLocked()
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.target = target
	done := make(chan struct{})
	r.done = done
	gen := r.gen

	r.current = ""
	r.sink("")
	if target == "" {
		cancel()
		close(done)
		return
	}

	go r.run(ctx, gen, []rune(target), done)
}

func (r *Renderer) run(ctx context.Context, gen uint64, runes []rune, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for i := 1; i <= len(runes); i++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if !r.emit(gen, string(runes[:i])) {
			return
		}
	}
}

// emit delivers frame if gen is still the active reveal.
func (r *Renderer) emit(gen uint64, frame string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.gen {
		return false
	}
	r.current = frame
	r.sink(frame)
	return true
}

// Stop cancels the running reveal, leaving the last emitted frame in place.
func (r *Renderer) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopLocked()
}

func (r *Renderer) stopLocked() {
	r.gen++
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}

// Current returns the most recently emitted frame.
func (r *Renderer) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Target returns the string of the latest Reveal call.
func (r *Renderer) Target() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.target
}

// Done returns a channel closed when the latest reveal finishes or is
// cancelled.
func (r *Renderer) Done() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done
}

// =============================================================================
// Sinks
// =============================================================================

// WriterSink writes only the characters added since the previous frame,
// producing a typewriter effect on a terminal. A frame that does not extend
// the previous one starts on a new line.
func WriterSink(w io.Writer) Sink {
	var prev string
	return func(frame string) {
		switch {
		case strings.HasPrefix(frame, prev):
			_, _ = io.WriteString(w, frame[len(prev):])
		case frame == "":
			_, _ = io.WriteString(w, "\n")
		default:
			_, _ = io.WriteString(w, "\n"+frame)
		}
		prev = frame
	}
}
