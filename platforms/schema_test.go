// SPDX-FileCopyrightText: Copyright 2026 Pipewright Authors
// SPDX-License-Identifier: Apache-2.0

package platforms

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipewright/pipewright-core/cel"
)

func TestEmbeddedCatalogIsValid(t *testing.T) {
	t.Parallel()

	catalog, err := Load()
	require.NoError(t, err)
	require.NoError(t, catalog.Validate())
}

func TestEmbeddedCatalogRulesCompile(t *testing.T) {
	t.Parallel()

	catalog, err := Load()
	require.NoError(t, err)

	engine := cel.NewEngine()
	for _, p := range catalog.All() {
		for _, rule := range p.Rules {
			_, err := engine.Compile(rule.Expression)
			require.NoError(t, err, "rule %s/%s must compile", p.Key, rule.ID)
		}
	}
}

func TestCatalog_Validate_Semantics(t *testing.T) {
	t.Parallel()

	base := func() *Catalog {
		return &Catalog{
			Version:     "1.0.0",
			LastUpdated: "2026-01-01T00:00:00Z",
			Platforms: map[string]*Platform{
				"my-ci": {
					Key:        "my-ci",
					Name:       "My CI",
					Vendor:     "Example Corp",
					Category:   CategorySelfHosted,
					ConfigFile: ".my-ci.yml",
					Format:     FormatYAML,
				},
			},
		}
	}

	t.Run("valid catalog", func(t *testing.T) {
		t.Parallel()
		require.NoError(t, base().Validate())
	})

	t.Run("invalid docs URL", func(t *testing.T) {
		t.Parallel()
		c := base()
		c.Platforms["my-ci"].DocsURL = "ftp://docs.example.com"
		err := c.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "docs_url")
	})

	t.Run("invalid rule ID", func(t *testing.T) {
		t.Parallel()
		c := base()
		c.Platforms["my-ci"].Rules = []LintRule{
			{ID: "Bad Rule ID", Description: "d", Expression: "true", Severity: SeverityError},
		}
		err := c.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Bad Rule ID")
	})

	t.Run("rule expression that does not compile", func(t *testing.T) {
		t.Parallel()
		c := base()
		c.Platforms["my-ci"].Rules = []LintRule{
			{ID: "broken-rule", Description: "d", Expression: "config.steps[", Severity: SeverityError},
		}
		err := c.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "broken-rule")
	})

	t.Run("multiple errors are numbered", func(t *testing.T) {
		t.Parallel()
		c := base()
		c.Platforms["my-ci"].DocsURL = "not-a-url"
		c.Platforms["my-ci"].Rules = []LintRule{
			{ID: "UPPER", Description: "d", Expression: "true", Severity: SeverityWarning},
		}
		err := c.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "1.")
		assert.Contains(t, err.Error(), "2.")
	})
}

func TestValidateCatalogBytes(t *testing.T) {
	t.Parallel()

	t.Run("not JSON", func(t *testing.T) {
		t.Parallel()
		require.Error(t, ValidateCatalogBytes([]byte("not json at all")))
	})

	t.Run("missing required field", func(t *testing.T) {
		t.Parallel()
		err := ValidateCatalogBytes([]byte(`{"version": "1.0.0"}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "catalog schema validation failed")
	})
}

func TestFormatNumberedErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		msgs     []string
		expected string
	}{
		{
			name:     "no errors",
			msgs:     nil,
			expected: "",
		},
		{
			name:     "single error",
			msgs:     []string{"something broke"},
			expected: "prefix: something broke",
		},
		{
			name:     "multiple errors",
			msgs:     []string{"first", "second"},
			expected: "prefix with 2 errors:\n  1. first\n  2. second",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := formatNumberedErrors("prefix", tt.msgs)
			if tt.expected == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.expected, err.Error())
		})
	}
}

func ExampleCatalog_Get() {
	catalog, _ := Load()
	p := catalog.Get("gitlab-ci")
	fmt.Println(p.ConfigFile)
	// Output: .gitlab-ci.yml
}
