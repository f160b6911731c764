// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package policy_engine

import (
	"cmp"
	"fmt"
	"regexp"
	"slices"

	"gopkg.in/yaml.v3"
)

type ConfidenceLevel string

const (
	Low    ConfidenceLevel = "low"
	Medium ConfidenceLevel = "medium"
	High   ConfidenceLevel = "high"
)

// Public is reported by Classify when no pattern matches.
const Public = "public"

// PolicyFile is the YAML document shape.
type PolicyFile struct {
	Classifications []Classification `yaml:"classifications"`
}

type Classification struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	Priority    int       `yaml:"priority"`
	Patterns    []Pattern `yaml:"patterns"`
}

type Pattern struct {
	ID          string          `yaml:"id"`
	Description string          `yaml:"description"`
	Regex       string          `yaml:"regex"`
	Confidence  ConfidenceLevel `yaml:"confidence"`
	compiled    *regexp.Regexp
}

func (c *ConfidenceLevel) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	switch level := ConfidenceLevel(s); level {
	case High, Medium, Low:
		*c = level
		return nil
	default:
		return fmt.Errorf("invalid value for confidence: %q", s)
	}
}

func (p *PolicyFile) compile() error {
	for i := range p.Classifications {
		c := &p.Classifications[i]
		if c.Name == "" {
			return fmt.Errorf("classification %d has no name", i)
		}
		for j := range c.Patterns {
			pattern := &c.Patterns[j]
			re, err := regexp.Compile(pattern.Regex)
			if err != nil {
				return fmt.Errorf("pattern %s: %w", pattern.ID, err)
			}
			pattern.compiled = re
		}
	}
	return nil
}

// sortByPriority orders classifications highest priority first. Equal
// priorities keep file order.
func (p *PolicyFile) sortByPriority() {
	slices.SortStableFunc(p.Classifications, func(a, b Classification) int {
		return cmp.Compare(b.Priority, a.Priority)
	})
}

// Finding records one match.
type Finding struct {
	Classification string          `json:"classification"`
	PatternID      string          `json:"pattern_id"`
	Confidence     ConfidenceLevel `json:"confidence"`
}
