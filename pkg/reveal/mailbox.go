// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package reveal

// Mailbox is a single-slot, latest-wins buffer.
//
// Put never blocks: an unread value is replaced by the newer one. This lets
// a producer that holds a lock (a Renderer sink, an orchestrator listener)
// hand values to an event loop that may itself be waiting on that lock.
type Mailbox[T any] struct {
	ch chan T
}

// NewMailbox returns an empty Mailbox.
func NewMailbox[T any]() *Mailbox[T] {
	return &Mailbox[T]{ch: make(chan T, 1)}
}

// Put stores v, discarding any value not yet taken.
func (m *Mailbox[T]) Put(v T) {
	for {
		select {
		case m.ch <- v:
			return
		default:
		}
		select {
		case <-m.ch:
		default:
		}
	}
}

// C returns the receive side of the mailbox.
func (m *Mailbox[T]) C() <-chan T {
	return m.ch
}

// Sink adapts the mailbox to a Renderer sink.
func (m *Mailbox[T]) Sink(conv func(string) T) Sink {
	return func(frame string) { m.Put(conv(frame)) }
}
