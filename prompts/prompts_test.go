// SPDX-FileCopyrightText: Copyright 2026 Pipewright Authors
// SPDX-License-Identifier: Apache-2.0

package prompts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLoad(t *testing.T) {
	t.Parallel()

	lib, err := Load()
	require.NoError(t, err)

	again, err := Load()
	require.NoError(t, err)
	assert.Same(t, lib, again)
}

func TestLibrary_List(t *testing.T) {
	t.Parallel()

	lib, err := Load()
	require.NoError(t, err)

	all := lib.List()
	require.NotEmpty(t, all)

	names := make([]string, 0, len(all))
	for _, p := range all {
		names = append(names, p.Name)
		assert.NotEmpty(t, p.Role, "prompt %s must declare a role", p.Name)
		assert.NotEmpty(t, p.Body, "prompt %s must have a body", p.Name)
	}
	assert.IsIncreasing(t, names)
}

func TestLibrary_ExpectedRoles(t *testing.T) {
	t.Parallel()

	lib, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{
		"backend-engineer",
		"code-reviewer",
		"devops-engineer",
		"frontend-engineer",
		"security-analyst",
		"technical-writer",
	}, lib.Roles())
}

func TestLibrary_ByRole(t *testing.T) {
	t.Parallel()

	lib, err := Load()
	require.NoError(t, err)

	devops := lib.ByRole("devops-engineer")
	require.NotEmpty(t, devops)
	for _, p := range devops {
		assert.Equal(t, "devops-engineer", p.Role)
	}

	// An unmatched role yields an empty, non-nil slice so API responses
	// encode it as [] rather than null.
	unmatched := lib.ByRole("astronaut")
	assert.NotNil(t, unmatched)
	assert.Empty(t, unmatched)
}

func TestLibrary_Get(t *testing.T) {
	t.Parallel()

	lib, err := Load()
	require.NoError(t, err)

	p, err := lib.Get("code-reviewer")
	require.NoError(t, err)
	assert.Equal(t, "Code Reviewer", p.Title)

	_, err = lib.Get("no-such-prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestPrompt_Render(t *testing.T) {
	t.Parallel()

	lib, err := Load()
	require.NoError(t, err)

	t.Run("all variables supplied", func(t *testing.T) {
		t.Parallel()
		p, err := lib.Get("backend-engineer")
		require.NoError(t, err)

		out, err := p.Render(map[string]string{
			"project_name": "orderflow",
			"language":     "Go",
		})
		require.NoError(t, err)
		assert.Contains(t, out, "orderflow")
		assert.Contains(t, out, "written in Go")
		assert.NotContains(t, out, "{{")
	})

	t.Run("missing variable", func(t *testing.T) {
		t.Parallel()
		p, err := lib.Get("backend-engineer")
		require.NoError(t, err)

		_, err = p.Render(map[string]string{"project_name": "orderflow"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "language")
	})

	t.Run("no variables declared", func(t *testing.T) {
		t.Parallel()
		p := &Prompt{Name: "static", Body: "No placeholders here."}
		out, err := p.Render(nil)
		require.NoError(t, err)
		assert.Equal(t, "No placeholders here.", out)
	})
}

func TestEmbeddedPromptsRender(t *testing.T) {
	t.Parallel()

	lib, err := Load()
	require.NoError(t, err)

	// Every embedded prompt must render cleanly when all declared
	// variables are supplied. Catches drift between frontmatter and body.
	for _, p := range lib.List() {
		t.Run(p.Name, func(t *testing.T) {
			t.Parallel()
			vars := make(map[string]string, len(p.Variables))
			for _, v := range p.Variables {
				vars[v] = "value"
			}
			out, err := p.Render(vars)
			require.NoError(t, err)
			assert.NotEmpty(t, out)
		})
	}
}

func TestLoadDir(t *testing.T) {
	t.Parallel()

	t.Run("valid directory", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		content := `---
name: release-manager
title: Release Manager
role: release-manager
description: Coordinate releases.
---

Coordinate the release.
`
		require.NoError(t, os.WriteFile(filepath.Join(dir, "release-manager.md"), []byte(content), 0o644))

		lib, err := LoadDir(dir)
		require.NoError(t, err)
		p, err := lib.Get("release-manager")
		require.NoError(t, err)
		assert.Equal(t, "release-manager", p.Role)
	})

	t.Run("PACK.md is skipped", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "PACK.md"), []byte("---\nname: pack\n---\nmeta"), 0o644))

		lib, err := LoadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, lib.List())
	})

	t.Run("duplicate names rejected", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		content := "---\nname: dup\nrole: r\n---\nbody\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, "a.md"), []byte(content), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "b.md"), []byte(content), 0o644))

		_, err := LoadDir(dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate prompt name")
	})

	t.Run("missing directory", func(t *testing.T) {
		t.Parallel()
		_, err := LoadDir(filepath.Join(t.TempDir(), "nope"))
		require.Error(t, err)
	})
}

func TestParsePrompt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "no frontmatter",
			content: "just markdown",
			wantErr: "must start with YAML frontmatter",
		},
		{
			name:    "unclosed frontmatter",
			content: "---\nname: x\nrole: r\n",
			wantErr: "missing closing delimiter",
		},
		{
			name:    "missing name",
			content: "---\nrole: r\n---\nbody",
			wantErr: "name is required",
		},
		{
			name:    "invalid name",
			content: "---\nname: Bad Name\nrole: r\n---\nbody",
			wantErr: "prompt name",
		},
		{
			name:    "missing role",
			content: "---\nname: x\n---\nbody",
			wantErr: "role is required",
		},
		{
			name:    "empty body",
			content: "---\nname: x\nrole: r\n---\n",
			wantErr: "body is empty",
		},
		{
			name:    "frontmatter too large",
			content: "---\nname: x\nrole: r\ndescription: " + strings.Repeat("a", maxFrontmatterSize+1) + "\n---\nbody",
			wantErr: "exceeds maximum size",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := parsePrompt([]byte(tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestStringOrSlice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		yaml     string
		expected []string
	}{
		{"sequence", "tags: [a, b]", []string{"a", "b"}},
		{"comma separated", `tags: "a, b"`, []string{"a", "b"}},
		{"space separated", `tags: "a b"`, []string{"a", "b"}},
		{"empty string", `tags: ""`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var fm frontmatter
			require.NoError(t, yaml.Unmarshal([]byte(tt.yaml), &fm))
			assert.Equal(t, stringOrSlice(tt.expected), fm.Tags)
		})
	}
}
