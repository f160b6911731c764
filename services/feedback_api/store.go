// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package feedback_api

import (
	"sync"
	"time"

	"github.com/AleutianAI/AleutianFeedback/pkg/feedback"
	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
)

// MemoryStore keeps records in process memory for local development.
//
// Thread Safety: MemoryStore is safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	records []feedback.Record
	now     func() time.Time
}

// NewMemoryStore creates an empty store using the wall clock.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

// Create assigns an id and timestamp to sub and stores it.
//
// Description:
//
//	The caller validates sub first. The stored record is never modified
//	afterwards.
//
// Outputs:
//
//	feedback.Record - The stored record.
func (s *MemoryStore) Create(sub feedback.Submission) feedback.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := feedback.Record{
		ID:          uuid.NewString(),
		Question:    sub.Question,
		Response:    sub.Response,
		Improvement: sub.Improvement,
		Category:    sub.Category,
		CreatedAt:   strfmt.DateTime(s.now().UTC()),
	}
	s.records = append(s.records, rec)
	return rec
}

// List returns up to limit records, newest first.
func (s *MemoryStore) List(limit int) []feedback.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.records)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]feedback.Record, 0, n)
	for i := len(s.records) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.records[i])
	}
	return out
}

// Summary counts records by category within scope.
func (s *MemoryStore) Summary(scope feedback.Scope) feedback.Breakdown {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return feedback.CountRecords(s.records, scope, s.now())
}

// Len returns the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
