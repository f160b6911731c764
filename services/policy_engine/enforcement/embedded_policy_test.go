// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package enforcement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestRedactionPatterns_EmbeddedAndValid(t *testing.T) {
	require.NotEmpty(t, RedactionPatterns)

	var doc struct {
		Classifications []struct {
			Name     string           `yaml:"name"`
			Patterns []map[string]any `yaml:"patterns"`
		} `yaml:"classifications"`
	}
	require.NoError(t, yaml.Unmarshal(RedactionPatterns, &doc))

	names := make([]string, 0, len(doc.Classifications))
	for _, c := range doc.Classifications {
		names = append(names, c.Name)
		assert.NotEmpty(t, c.Patterns, c.Name)
	}
	assert.ElementsMatch(t, []string{"secret", "pii"}, names)
}
