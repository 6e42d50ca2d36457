// SPDX-FileCopyrightText: Copyright 2026 Pipewright Authors
// SPDX-License-Identifier: Apache-2.0

// Package scaffold generates starter CI/CD configuration for a project. It
// detects the project's build ecosystem from marker files and renders a
// platform-specific config template with matching build and test commands.
package scaffold

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/pipewright/pipewright-core/platforms"
)

//go:embed templates
var templateFS embed.FS

// toolchain carries the per-ecosystem values a config template needs.
type toolchain struct {
	Image        string
	BuildCommand string
	TestCommand  string
}

var toolchains = map[ProjectType]toolchain{
	ProjectGo:      {"golang:1.24.0", "go build ./...", "go test ./..."},
	ProjectNode:    {"node:22.11.0", "npm ci", "npm test"},
	ProjectMaven:   {"maven:3.9.9-eclipse-temurin-21", "mvn -B package", "mvn -B test"},
	ProjectGradle:  {"gradle:8.11.1-jdk21", "gradle build", "gradle test"},
	ProjectPython:  {"python:3.12.8", "pip install -r requirements.txt", "pytest"},
	ProjectRust:    {"rust:1.83.0", "cargo build --release", "cargo test"},
	ProjectRuby:    {"ruby:3.3.6", "bundle install", "bundle exec rake test"},
	ProjectDotnet:  {"mcr.microsoft.com/dotnet/sdk:8.0", "dotnet build", "dotnet test"},
	ProjectGeneric: {"alpine:3.21.0", "echo 'add your build command'", "echo 'add your test command'"},
}

// templateData is the context passed to every config template.
type templateData struct {
	ProjectName  string
	ProjectType  ProjectType
	Image        string
	BuildCommand string
	TestCommand  string
}

// Options controls config generation.
type Options struct {
	// Dir is the project directory to scaffold into.
	Dir string
	// ProjectType overrides marker-file detection when non-empty.
	ProjectType ProjectType
	// Force allows overwriting an existing config file.
	Force bool
}

// Result describes what Generate wrote.
type Result struct {
	ConfigPath  string
	ProjectType ProjectType
}

// Generate renders a starter config for the platform into opts.Dir. An
// existing config file is never overwritten unless opts.Force is set.
func Generate(platform *platforms.Platform, opts Options) (*Result, error) {
	if platform == nil {
		return nil, fmt.Errorf("platform is required")
	}
	if opts.Dir == "" {
		return nil, fmt.Errorf("target directory is required")
	}

	projectType := opts.ProjectType
	if projectType == "" {
		projectType = DetectProjectType(opts.Dir)
	}
	tc, ok := toolchains[projectType]
	if !ok {
		return nil, fmt.Errorf("unknown project type %q", projectType)
	}

	configPath := filepath.Join(opts.Dir, filepath.FromSlash(platform.ConfigFile))
	if _, err := os.Stat(configPath); err == nil && !opts.Force {
		return nil, fmt.Errorf("%s already exists, pass force to overwrite", platform.ConfigFile)
	}

	rendered, err := render(platform, templateData{
		ProjectName:  filepath.Base(absDir(opts.Dir)),
		ProjectType:  projectType,
		Image:        tc.Image,
		BuildCommand: tc.BuildCommand,
		TestCommand:  tc.TestCommand,
	})
	if err != nil {
		return nil, err
	}

	if dir := filepath.Dir(configPath); dir != opts.Dir {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating config directory: %w", err)
		}
	}
	if err := os.WriteFile(configPath, rendered, 0o644); err != nil {
		return nil, fmt.Errorf("writing config file: %w", err)
	}

	return &Result{ConfigPath: configPath, ProjectType: projectType}, nil
}

// render produces the starter config content for a platform without touching
// the filesystem.
func render(platform *platforms.Platform, data templateData) ([]byte, error) {
	tmplName := fmt.Sprintf("templates/%s.tmpl", platform.Key)
	tmpl, err := template.ParseFS(templateFS, tmplName)
	if err != nil {
		return nil, fmt.Errorf("no starter template for platform %q: %w", platform.Key, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("rendering starter config: %w", err)
	}
	return buf.Bytes(), nil
}

// Preview renders the starter config a Generate call would write for the
// directory, without writing it.
func Preview(platform *platforms.Platform, dir string) ([]byte, error) {
	if platform == nil {
		return nil, fmt.Errorf("platform is required")
	}
	projectType := DetectProjectType(dir)
	tc := toolchains[projectType]
	return render(platform, templateData{
		ProjectName:  filepath.Base(absDir(dir)),
		ProjectType:  projectType,
		Image:        tc.Image,
		BuildCommand: tc.BuildCommand,
		TestCommand:  tc.TestCommand,
	})
}

func absDir(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return dir
	}
	return abs
}
