// SPDX-FileCopyrightText: Copyright 2026 Pipewright Authors
// SPDX-License-Identifier: Apache-2.0

// Package platforms contains the CI/CD platform catalog: type definitions,
// the embedded catalog data, and its schema validation.
package platforms

import (
	"sort"
)

// Config file formats understood by the checks engine.
const (
	// FormatYAML marks platforms whose config is a YAML document.
	FormatYAML = "yaml"
	// FormatGroovy marks platforms whose config is a Groovy pipeline script
	// (Jenkins). These only get token-presence checks, not structural ones.
	FormatGroovy = "groovy"
)

// Platform categories.
const (
	// CategoryCloudNative groups platforms tied to a cloud vendor's ecosystem.
	CategoryCloudNative = "cloud-native"
	// CategorySaaS groups standalone hosted CI services.
	CategorySaaS = "saas"
	// CategorySelfHosted groups platforms typically operated by the user.
	CategorySelfHosted = "self-hosted"
)

// Lint rule severities.
const (
	// SeverityError marks a rule whose failure makes validation fail.
	SeverityError = "error"
	// SeverityWarning marks a rule whose failure is reported but does not
	// change the exit status.
	SeverityWarning = "warning"
)

// LintRule is a platform-specific validation rule expressed as a CEL
// expression over the parsed config document. The expression sees a single
// variable named "config" of type map(string, dyn) and must evaluate to a
// boolean; false means the rule is violated.
type LintRule struct {
	// ID is a short stable identifier for the rule, e.g. "drone-kind".
	ID string `json:"id" yaml:"id"`
	// Description is the human-readable explanation shown in reports.
	Description string `json:"description" yaml:"description"`
	// Expression is the CEL expression to evaluate.
	Expression string `json:"expression" yaml:"expression"`
	// Severity is either "error" or "warning". Defaults to "error".
	Severity string `json:"severity,omitempty" yaml:"severity,omitempty"`
}

// Platform describes one CI/CD platform: how to recognize its config file,
// what a valid config must contain, and where its documentation lives.
type Platform struct {
	// Key is the identifier for the platform, used when referencing it in
	// commands, e.g. "gitlab-ci".
	Key string `json:"key,omitempty" yaml:"key,omitempty"`
	// Name is the human-readable display name, e.g. "GitLab CI/CD".
	Name string `json:"name" yaml:"name"`
	// Vendor is the company or project behind the platform.
	Vendor string `json:"vendor" yaml:"vendor"`
	// Category classifies the platform: cloud-native, saas, or self-hosted.
	Category string `json:"category" yaml:"category"`
	// ConfigFile is the conventional config file path relative to the
	// repository root, e.g. ".gitlab-ci.yml" or ".circleci/config.yml".
	ConfigFile string `json:"config_file" yaml:"config_file"`
	// Format is the config file format: "yaml" or "groovy".
	Format string `json:"format" yaml:"format"`
	// Runner names the execution agent, e.g. "GitLab Runner".
	Runner string `json:"runner,omitempty" yaml:"runner,omitempty"`
	// DocsURL points at the vendor's pipeline syntax documentation.
	DocsURL string `json:"docs_url,omitempty" yaml:"docs_url,omitempty"`
	// KeyFeatures lists the platform's distinguishing capabilities.
	KeyFeatures []string `json:"key_features,omitempty" yaml:"key_features,omitempty"`
	// RequiredKeys are dotted paths that must exist in the parsed YAML
	// document, e.g. "trigger" or "pipelines.default". Only meaningful for
	// YAML-format platforms.
	RequiredKeys []string `json:"required_keys,omitempty" yaml:"required_keys,omitempty"`
	// RequiredTokens are substrings that must appear in the raw config text.
	// Used for non-YAML formats where structural checks do not apply.
	RequiredTokens []string `json:"required_tokens,omitempty" yaml:"required_tokens,omitempty"`
	// Rules are the platform's lint rules.
	Rules []LintRule `json:"rules,omitempty" yaml:"rules,omitempty"`
}

// Catalog is the top-level structure of the platform catalog.
type Catalog struct {
	// Version is the schema version of the catalog.
	Version string `json:"version" yaml:"version"`
	// LastUpdated is the timestamp when the catalog was last updated, in RFC3339 format.
	LastUpdated string `json:"last_updated" yaml:"last_updated"`
	// Platforms is a map of platform keys to their definitions.
	Platforms map[string]*Platform `json:"platforms" yaml:"platforms"`
}

// Get returns the platform with the given key, or nil if absent. The
// returned platform has its Key field populated from the map key.
func (c *Catalog) Get(key string) *Platform {
	p, ok := c.Platforms[key]
	if !ok {
		return nil
	}
	if p.Key == "" {
		p.Key = key
	}
	return p
}

// Keys returns all platform keys in sorted order.
func (c *Catalog) Keys() []string {
	keys := make([]string, 0, len(c.Platforms))
	for k := range c.Platforms {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// All returns all platforms sorted by key, with Key fields populated.
func (c *Catalog) All() []*Platform {
	result := make([]*Platform, 0, len(c.Platforms))
	for _, k := range c.Keys() {
		result = append(result, c.Get(k))
	}
	return result
}

// ByCategory returns all platforms in the given category, sorted by key.
// The result is never nil, so it serializes as a JSON array even when empty.
func (c *Catalog) ByCategory(category string) []*Platform {
	result := []*Platform{}
	for _, p := range c.All() {
		if p.Category == category {
			result = append(result, p)
		}
	}
	return result
}
