// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package reveal

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder collects frames. It is safe because the renderer serialises
// sink calls under its own lock, but the test reads concurrently.
type recorder struct {
	mu     sync.Mutex
	frames []string
}

func (r *recorder) sink(frame string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, frame)
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.frames...)
}

func count(frames []string, s string) int {
	n := 0
	for _, f := range frames {
		if f == s {
			n++
		}
	}
	return n
}

func waitDone(t *testing.T, r *Renderer) {
	t.Helper()
	select {
	case <-r.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("reveal did not finish")
	}
}

// =============================================================================
// Renderer Tests
// =============================================================================

func TestReveal_EmitsEveryPrefixThenFullOnce(t *testing.T) {
	rec := &recorder{}
	r := New(time.Millisecond, rec.sink)

	r.Reveal("héllo")
	waitDone(t, r)

	assert.Equal(t, []string{"", "h", "hé", "hél", "héll", "héllo"}, rec.snapshot())
	assert.Equal(t, "héllo", r.Current())
}

func TestReveal_EmptyTarget(t *testing.T) {
	rec := &recorder{}
	r := New(time.Millisecond, rec.sink)

	r.Reveal("")
	waitDone(t, r)

	assert.Equal(t, []string{""}, rec.snapshot())
}

func TestReveal_InterruptedRestartsFromEmpty(t *testing.T) {
	rec := &recorder{}
	r := New(5*time.Millisecond, rec.sink)

	first := strings.Repeat("a", 200)
	r.Reveal(first)
	time.Sleep(20 * time.Millisecond)
	r.Reveal("world")
	waitDone(t, r)

	frames := rec.snapshot()
	assert.Zero(t, count(frames, first), "interrupted target must never complete")
	assert.Equal(t, 1, count(frames, "world"))
	assert.Equal(t, "world", frames[len(frames)-1])

	// Everything after the restart belongs to the new target.
	restart := -1
	for i := len(frames) - 1; i >= 0; i-- {
		if frames[i] == "" {
			restart = i
			break
		}
	}
	require.GreaterOrEqual(t, restart, 1)
	for _, f := range frames[restart:] {
		assert.True(t, strings.HasPrefix("world", f), "stale frame %q", f)
	}
}

func TestReveal_RapidReplacementEndsWithLastTarget(t *testing.T) {
	rec := &recorder{}
	r := New(time.Millisecond, rec.sink)

	for _, s := range []string{"one", "two", "three", "four"} {
		r.Reveal(s)
	}
	waitDone(t, r)

	frames := rec.snapshot()
	assert.Equal(t, "four", frames[len(frames)-1])
	assert.Equal(t, 1, count(frames, "four"))
	assert.Equal(t, "four", r.Target())
}

func TestStop_LeavesLastFrame(t *testing.T) {
	rec := &recorder{}
	r := New(5*time.Millisecond, rec.sink)

	r.Reveal(strings.Repeat("x", 500))
	time.Sleep(20 * time.Millisecond)
	r.Stop()
	waitDone(t, r)

	stopped := r.Current()
	n := len(rec.snapshot())
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, stopped, r.Current())
	assert.Len(t, rec.snapshot(), n, "no frames after Stop")
}

func TestNew_Defaults(t *testing.T) {
	r := New(0, nil)
	assert.Equal(t, DefaultInterval, r.interval)

	// Done on an idle renderer is already closed.
	select {
	case <-r.Done():
	default:
		t.Fatal("idle renderer should report done")
	}
}

func TestWriterSink_Typewriter(t *testing.T) {
	var buf bytes.Buffer
	sink := WriterSink(&buf)
	for _, f := range []string{"", "a", "ab", "abc"} {
		sink(f)
	}
	assert.Equal(t, "abc", buf.String())

	sink("")
	sink("x")
	assert.Equal(t, "abc\nx", buf.String())
}

// =============================================================================
// Mailbox Tests
// =============================================================================

func TestMailbox_LatestWins(t *testing.T) {
	m := NewMailbox[int]()
	m.Put(1)
	m.Put(2)
	m.Put(3)

	assert.Equal(t, 3, <-m.C())
	select {
	case v := <-m.C():
		t.Fatalf("unexpected value %d", v)
	default:
	}
}

func TestMailbox_AsRendererSink(t *testing.T) {
	m := NewMailbox[string]()
	r := New(time.Millisecond, m.Sink(func(s string) string { return s }))

	r.Reveal("done")
	waitDone(t, r)

	assert.Equal(t, "done", <-m.C())
}
