// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package policy_engine finds and masks credentials and personal data in
// free text. The feedback service runs it over every submission so pasted
// API keys and email addresses never reach the store or the insight model.
package policy_engine

import (
	"fmt"

	"github.com/AleutianAI/AleutianFeedback/services/policy_engine/enforcement"
	"gopkg.in/yaml.v3"
)

// PolicyEngine holds compiled classifications, highest priority first.
//
// Thread Safety: PolicyEngine is immutable after construction and safe for
// concurrent use.
type PolicyEngine struct {
	Classifications []Classification
}

// NewPolicyEngine loads the rules embedded in the binary.
func NewPolicyEngine() (*PolicyEngine, error) {
	return Parse(enforcement.RedactionPatterns)
}

// Parse builds an engine from a YAML policy document.
//
// Outputs:
//
//	*PolicyEngine - Engine with every regex compiled and classifications
//	  sorted by descending priority.
//	error - Malformed YAML, an unknown confidence level, or a bad regex.
func Parse(data []byte) (*PolicyEngine, error) {
	var file PolicyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal policy: %w", err)
	}
	if err := file.compile(); err != nil {
		return nil, fmt.Errorf("failed to compile policy: %w", err)
	}
	file.sortByPriority()
	return &PolicyEngine{Classifications: file.Classifications}, nil
}

// Classify returns the name of the highest priority classification with a
// matching pattern, or Public.
func (e *PolicyEngine) Classify(text string) string {
	for _, c := range e.Classifications {
		for _, p := range c.Patterns {
			if p.compiled.MatchString(text) {
				return c.Name
			}
		}
	}
	return Public
}

// Scan reports every match in text without changing it.
func (e *PolicyEngine) Scan(text string) []Finding {
	var findings []Finding
	for _, c := range e.Classifications {
		for _, p := range c.Patterns {
			for range p.compiled.FindAllStringIndex(text, -1) {
				findings = append(findings, Finding{
					Classification: c.Name,
					PatternID:      p.ID,
					Confidence:     p.Confidence,
				})
			}
		}
	}
	return findings
}

// Redact replaces each match with "[REDACTED:<classification>]".
//
// Description:
//
//	Classifications are applied in priority order, so a token that looks
//	like both a secret and personal data is masked as a secret. Text
//	already replaced is never matched again.
//
// Outputs:
//
//	string - The masked text. Equal to text when nothing matched.
//	[]Finding - One entry per replacement.
func (e *PolicyEngine) Redact(text string) (string, []Finding) {
	var findings []Finding
	for _, c := range e.Classifications {
		marker := "[REDACTED:" + c.Name + "]"
		for _, p := range c.Patterns {
			text = p.compiled.ReplaceAllStringFunc(text, func(string) string {
				findings = append(findings, Finding{
					Classification: c.Name,
					PatternID:      p.ID,
					Confidence:     p.Confidence,
				})
				return marker
			})
		}
	}
	return text, findings
}
