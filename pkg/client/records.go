// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/AleutianAI/AleutianFeedback/pkg/feedback"
)

// RecordStore lists and creates feedback records.
type RecordStore struct {
	t *transport
}

// List returns up to limit of the most recent records.
//
// # Inputs
//
//   - ctx: Cancellation for the call.
//   - limit: Maximum number of records. Values <= 0 use DefaultListLimit.
//
// # Outputs
//
//   - []feedback.Record: Never nil on success, possibly empty.
//   - error: *feedback.TransportError on network failure or non-2xx status.
func (s *RecordStore) List(ctx context.Context, limit int) ([]feedback.Record, error) {
	if limit <= 0 {
		limit = feedback.DefaultListLimit
	}

	var records []feedback.Record
	err := s.t.do(ctx, call{
		op:     "list",
		method: http.MethodGet,
		path:   []string{"api", "feedback"},
		query:  url.Values{"limit": []string{strconv.Itoa(limit)}},
	}, &records)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []feedback.Record{}
	}
	return records, nil
}

// Create validates sub and stores it.
//
// # Description
//
// Validation runs first and, on failure, returns *feedback.ValidationError
// without a network call. The service remains the authoritative validator;
// its rejections surface as *feedback.TransportError carrying the status.
//
// # Outputs
//
//   - feedback.Record: The stored record with its assigned id and timestamp.
//   - error: *feedback.ValidationError or *feedback.TransportError.
func (s *RecordStore) Create(ctx context.Context, sub feedback.Submission) (feedback.Record, error) {
	if err := sub.Validate(); err != nil {
		return feedback.Record{}, err
	}

	var created feedback.Record
	err := s.t.do(ctx, call{
		op:     "create",
		method: http.MethodPost,
		path:   []string{"api", "feedback"},
		body:   sub,
	}, &created)
	if err != nil {
		return feedback.Record{}, err
	}
	return created, nil
}
