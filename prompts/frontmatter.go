// SPDX-FileCopyrightText: Copyright 2026 Pipewright Authors
// SPDX-License-Identifier: Apache-2.0

package prompts

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// maxFrontmatterSize limits frontmatter to prevent YAML parsing attacks.
const maxFrontmatterSize = 64 * 1024

// frontmatter represents the YAML frontmatter in a prompt markdown file.
type frontmatter struct {
	Name        string        `yaml:"name"`
	Title       string        `yaml:"title"`
	Role        string        `yaml:"role"`
	Description string        `yaml:"description"`
	Tags        stringOrSlice `yaml:"tags,omitempty"`
	Variables   stringOrSlice `yaml:"variables,omitempty"`
}

// stringOrSlice is a YAML type that can unmarshal from a string or a sequence.
type stringOrSlice []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *stringOrSlice) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		str := value.Value
		if str == "" {
			*s = nil
			return nil
		}
		var parts []string
		if strings.Contains(str, ",") {
			parts = strings.Split(str, ",")
		} else {
			parts = strings.Fields(str)
		}
		result := make([]string, 0, len(parts))
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed != "" {
				result = append(result, trimmed)
			}
		}
		*s = result
		return nil
	case yaml.SequenceNode:
		var arr []string
		if err := value.Decode(&arr); err != nil {
			return fmt.Errorf("decoding list value: %w", err)
		}
		*s = arr
		return nil
	case yaml.DocumentNode, yaml.MappingNode, yaml.AliasNode:
		return fmt.Errorf("expected string or array, got unsupported YAML node type")
	}
	return fmt.Errorf("unexpected YAML node kind %d", value.Kind)
}

// parseFrontmatter splits a prompt file into its YAML frontmatter and
// markdown body.
func parseFrontmatter(content []byte) (*frontmatter, string, error) {
	content = bytes.TrimSpace(content)

	delimiter := []byte("---")
	if !bytes.HasPrefix(content, delimiter) {
		return nil, "", fmt.Errorf("prompt must start with YAML frontmatter (---)")
	}

	rest := content[len(delimiter):]
	rest = bytes.TrimPrefix(rest, []byte("\n"))

	endIdx := bytes.Index(rest, delimiter)
	if endIdx == -1 {
		return nil, "", fmt.Errorf("prompt frontmatter missing closing delimiter (---)")
	}

	fmBytes := rest[:endIdx]

	if len(fmBytes) > maxFrontmatterSize {
		return nil, "", fmt.Errorf("frontmatter exceeds maximum size of %d bytes", maxFrontmatterSize)
	}

	var fm frontmatter
	if err := yaml.Unmarshal(fmBytes, &fm); err != nil {
		return nil, "", fmt.Errorf("parsing frontmatter YAML: %w", err)
	}

	body := strings.TrimSpace(string(rest[endIdx+len(delimiter):]))
	return &fm, body, nil
}
