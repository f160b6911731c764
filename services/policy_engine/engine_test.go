// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package policy_engine

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t testing.TB) *PolicyEngine {
	t.Helper()
	engine, err := NewPolicyEngine()
	require.NoError(t, err)
	return engine
}

func TestPolicyEngine_Redact(t *testing.T) {
	engine := newEngine(t)

	tests := []struct {
		name        string
		input       string
		want        string
		wantClass   string
		wantPattern string
	}{
		{
			name:      "safe string",
			input:     "Why is the sky blue in the afternoon?",
			want:      "Why is the sky blue in the afternoon?",
			wantClass: Public,
		},
		{
			name:        "aws key",
			input:       "My aws key is AKIA1234567890123456 for prod.",
			want:        "My aws key is [REDACTED:secret] for prod.",
			wantClass:   "secret",
			wantPattern: "AWS_ACCESS_KEY_ID",
		},
		{
			name:        "openai key",
			input:       "I set sk-abcdefghijklmnopqrstuvwx and it failed",
			want:        "I set [REDACTED:secret] and it failed",
			wantClass:   "secret",
			wantPattern: "OPENAI_API_KEY",
		},
		{
			name:        "email",
			input:       "Please contact jdoe@example.com for support.",
			want:        "Please contact [REDACTED:pii] for support.",
			wantClass:   "pii",
			wantPattern: "EMAIL_ADDRESS",
		},
		{
			name:        "phone",
			input:       "call me on 555-867-5309 tomorrow",
			want:        "call me on [REDACTED:pii] tomorrow",
			wantClass:   "pii",
			wantPattern: "PHONE_NUMBER",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, findings := engine.Redact(tc.input)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.wantClass, engine.Classify(tc.input))

			if tc.wantPattern == "" {
				assert.Empty(t, findings)
				assert.Empty(t, engine.Scan(tc.input))
				return
			}
			require.Len(t, findings, 1)
			assert.Equal(t, tc.wantClass, findings[0].Classification)
			assert.Equal(t, tc.wantPattern, findings[0].PatternID)
			assert.Equal(t, findings, engine.Scan(tc.input))
		})
	}
}

func TestPolicyEngine_RedactEveryMatch(t *testing.T) {
	engine := newEngine(t)

	got, findings := engine.Redact("ask a@b.io or c@d.io, key AKIA1234567890123456")
	assert.Equal(t, "ask [REDACTED:pii] or [REDACTED:pii], key [REDACTED:secret]", got)
	require.Len(t, findings, 3)
	// Secrets are applied first.
	assert.Equal(t, "secret", findings[0].Classification)
}

func TestPolicyEngine_SortedByPriority(t *testing.T) {
	engine := newEngine(t)
	require.GreaterOrEqual(t, len(engine.Classifications), 2)
	assert.Equal(t, "secret", engine.Classifications[0].Name)

	engine, err := Parse([]byte(`
classifications:
  - name: low
    priority: 1
    patterns:
      - {id: L, regex: 'x', confidence: low}
  - name: high
    priority: 9
    patterns:
      - {id: H, regex: 'x', confidence: high}
`))
	require.NoError(t, err)
	assert.Equal(t, "high", engine.Classifications[0].Name)
	assert.Equal(t, "high", engine.Classify("x"))

	got, findings := engine.Redact("x")
	assert.Equal(t, "[REDACTED:high]", got)
	assert.Len(t, findings, 1)
}

func TestParse_Errors(t *testing.T) {
	tests := map[string]string{
		"malformed yaml": "classifications: [",
		"bad regex": `
classifications:
  - name: a
    patterns:
      - {id: A, regex: '(', confidence: low}
`,
		"bad confidence": `
classifications:
  - name: a
    patterns:
      - {id: A, regex: 'a', confidence: certain}
`,
		"missing name": `
classifications:
  - priority: 1
`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestPolicyEngine_ConcurrentRedact(t *testing.T) {
	engine := newEngine(t)
	input := "My fake key is AKIA1234567890123456"

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, findings := engine.Redact(input)
			assert.Equal(t, "My fake key is [REDACTED:secret]", got)
			assert.Len(t, findings, 1)
		}()
	}
	wg.Wait()
}

func BenchmarkRedactSafeString(b *testing.B) {
	engine := newEngine(b)
	input := "This answer ignored the second half of my question entirely."
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		engine.Redact(input)
	}
}
