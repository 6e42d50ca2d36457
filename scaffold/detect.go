// SPDX-FileCopyrightText: Copyright 2026 Pipewright Authors
// SPDX-License-Identifier: Apache-2.0

package scaffold

import (
	"os"
	"path/filepath"
)

// ProjectType classifies a project by its build ecosystem.
type ProjectType string

// Project types recognized by marker-file detection.
const (
	ProjectGo      ProjectType = "go"
	ProjectNode    ProjectType = "node"
	ProjectMaven   ProjectType = "maven"
	ProjectGradle  ProjectType = "gradle"
	ProjectPython  ProjectType = "python"
	ProjectRust    ProjectType = "rust"
	ProjectRuby    ProjectType = "ruby"
	ProjectDotnet  ProjectType = "dotnet"
	ProjectGeneric ProjectType = "generic"
)

// marker pairs a project type with the file that identifies it. Order
// matters: the first marker found wins.
type marker struct {
	file        string
	projectType ProjectType
}

var markers = []marker{
	{"go.mod", ProjectGo},
	{"package.json", ProjectNode},
	{"pom.xml", ProjectMaven},
	{"build.gradle", ProjectGradle},
	{"build.gradle.kts", ProjectGradle},
	{"requirements.txt", ProjectPython},
	{"pyproject.toml", ProjectPython},
	{"Cargo.toml", ProjectRust},
	{"Gemfile", ProjectRuby},
}

// DetectProjectType inspects a directory's marker files to classify the
// project. Directories with no recognized marker are generic.
func DetectProjectType(dir string) ProjectType {
	for _, m := range markers {
		if info, err := os.Stat(filepath.Join(dir, m.file)); err == nil && !info.IsDir() {
			return m.projectType
		}
	}
	// .NET projects have no fixed-name marker, any *.csproj counts.
	if csproj, err := filepath.Glob(filepath.Join(dir, "*.csproj")); err == nil && len(csproj) > 0 {
		return ProjectDotnet
	}
	return ProjectGeneric
}
