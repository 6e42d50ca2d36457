// SPDX-FileCopyrightText: Copyright 2026 Pipewright Authors
// SPDX-License-Identifier: Apache-2.0

// Package prompts provides the embedded AI prompt library: markdown
// templates for software engineering roles, addressed by name and rendered
// with caller-supplied variables.
package prompts

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"text/template"

	"github.com/pipewright/pipewright-core/validation/name"
)

//go:embed data
var embeddedPromptFS embed.FS

// Prompt is a single prompt template with its parsed metadata.
type Prompt struct {
	Name        string   `json:"name"`
	Title       string   `json:"title"`
	Role        string   `json:"role"`
	Description string   `json:"description"`
	Tags        []string `json:"tags,omitempty"`
	// Variables lists the template variables the body expects. Render
	// requires a value for each.
	Variables []string `json:"variables,omitempty"`
	Body      string   `json:"-"`
}

// Library is a collection of prompts indexed by name.
type Library struct {
	prompts map[string]*Prompt
}

var (
	embeddedOnce    sync.Once
	embeddedLibrary *Library
	embeddedErr     error
)

// Load returns the embedded prompt library. The library is parsed once;
// subsequent calls return the cached instance.
func Load() (*Library, error) {
	embeddedOnce.Do(func() {
		sub, err := fs.Sub(embeddedPromptFS, "data")
		if err != nil {
			embeddedErr = fmt.Errorf("opening embedded prompts: %w", err)
			return
		}
		embeddedLibrary, embeddedErr = LoadFS(sub)
	})
	return embeddedLibrary, embeddedErr
}

// LoadFS parses every .md file in fsys into a Library. This is also how
// prompt packs extracted from OCI artifacts are loaded.
func LoadFS(fsys fs.FS) (*Library, error) {
	lib := &Library{prompts: make(map[string]*Prompt)}

	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !strings.HasSuffix(path, ".md") {
			return nil
		}
		// PACK.md is pack metadata, not a prompt.
		if filepath.Base(path) == "PACK.md" {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}

		prompt, err := parsePrompt(data)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
		if _, exists := lib.prompts[prompt.Name]; exists {
			return fmt.Errorf("duplicate prompt name %q in %s", prompt.Name, path)
		}
		lib.prompts[prompt.Name] = prompt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lib, nil
}

// LoadDir parses every .md file under dir into a Library.
func LoadDir(dir string) (*Library, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("accessing prompt directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", dir)
	}
	return LoadFS(os.DirFS(dir))
}

// parsePrompt parses a prompt markdown file and validates its metadata.
func parsePrompt(data []byte) (*Prompt, error) {
	fm, body, err := parseFrontmatter(data)
	if err != nil {
		return nil, err
	}
	if fm.Name == "" {
		return nil, fmt.Errorf("prompt name is required in frontmatter")
	}
	if err := name.Validate(fm.Name); err != nil {
		return nil, fmt.Errorf("prompt name %q: %w", fm.Name, err)
	}
	if fm.Role == "" {
		return nil, fmt.Errorf("prompt role is required in frontmatter")
	}
	if body == "" {
		return nil, fmt.Errorf("prompt body is empty")
	}

	return &Prompt{
		Name:        fm.Name,
		Title:       fm.Title,
		Role:        fm.Role,
		Description: fm.Description,
		Tags:        fm.Tags,
		Variables:   fm.Variables,
		Body:        body,
	}, nil
}

// List returns all prompts sorted by name.
func (l *Library) List() []*Prompt {
	names := make([]string, 0, len(l.prompts))
	for n := range l.prompts {
		names = append(names, n)
	}
	sort.Strings(names)

	out := make([]*Prompt, 0, len(names))
	for _, n := range names {
		out = append(out, l.prompts[n])
	}
	return out
}

// ByRole returns the prompts for a role, sorted by name. The result is
// never nil, so it serializes as a JSON array even when empty.
func (l *Library) ByRole(role string) []*Prompt {
	out := []*Prompt{}
	for _, p := range l.List() {
		if p.Role == role {
			out = append(out, p)
		}
	}
	return out
}

// Roles returns the distinct roles in the library, sorted.
func (l *Library) Roles() []string {
	seen := map[string]struct{}{}
	for _, p := range l.prompts {
		seen[p.Role] = struct{}{}
	}
	roles := make([]string, 0, len(seen))
	for r := range seen {
		roles = append(roles, r)
	}
	sort.Strings(roles)
	return roles
}

// Get returns the prompt with the given name, or an error if it does not
// exist.
func (l *Library) Get(promptName string) (*Prompt, error) {
	p, ok := l.prompts[promptName]
	if !ok {
		return nil, fmt.Errorf("prompt %q not found", promptName)
	}
	return p, nil
}

// Render executes the prompt body as a template with the given variables.
// Every variable the prompt declares must be supplied.
func (p *Prompt) Render(vars map[string]string) (string, error) {
	var missing []string
	for _, v := range p.Variables {
		if _, ok := vars[v]; !ok {
			missing = append(missing, v)
		}
	}
	if len(missing) > 0 {
		return "", fmt.Errorf("prompt %q requires variables: %s", p.Name, strings.Join(missing, ", "))
	}

	tmpl, err := template.New(p.Name).Option("missingkey=error").Parse(p.Body)
	if err != nil {
		return "", fmt.Errorf("parsing prompt template %q: %w", p.Name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("rendering prompt %q: %w", p.Name, err)
	}
	return buf.String(), nil
}
