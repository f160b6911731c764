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

	"github.com/AleutianAI/AleutianFeedback/pkg/feedback"
	"github.com/AleutianAI/AleutianFeedback/pkg/taxonomy"
)

// Aggregation fetches category breakdowns.
type Aggregation struct {
	t *transport
}

type summaryResponse struct {
	Breakdown map[string]int `json:"breakdown"`
}

// Summary returns the category breakdown for scope.
//
// A missing or null breakdown decodes to an empty Breakdown. Negative counts
// are dropped. Failures are *feedback.TransportError; nothing is retried.
func (a *Aggregation) Summary(ctx context.Context, scope feedback.Scope) (feedback.Breakdown, error) {
	var resp summaryResponse
	err := a.t.do(ctx, call{
		op:     "summary",
		method: http.MethodGet,
		path:   []string{"api", "analytics", "summary"},
		query:  url.Values{"scope": []string{string(scope)}},
	}, &resp)
	if err != nil {
		return nil, err
	}

	b := make(feedback.Breakdown, len(resp.Breakdown))
	for label, n := range resp.Breakdown {
		if n < 0 {
			a.t.logger.Warn("dropping negative breakdown count", "category", label, "count", n)
			continue
		}
		b[taxonomy.Category(label)] = n
	}
	return b, nil
}
