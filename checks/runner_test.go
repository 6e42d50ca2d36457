// SPDX-FileCopyrightText: Copyright 2026 Pipewright Authors
// SPDX-License-Identifier: Apache-2.0

package checks

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipewright/pipewright-core/platforms"
)

func mustPlatform(t *testing.T, key string) *platforms.Platform {
	t.Helper()
	catalog, err := platforms.Load()
	require.NoError(t, err)
	p := catalog.Get(key)
	require.NotNil(t, p)
	return p
}

func findingByID(t *testing.T, report *Report, id string) Finding {
	t.Helper()
	for _, f := range report.Findings {
		if f.CheckID == id {
			return f
		}
	}
	t.Fatalf("report has no finding %q", id)
	return Finding{}
}

func TestRunner_Validate_GitLab(t *testing.T) {
	t.Parallel()
	runner := NewRunner()
	platform := mustPlatform(t, "gitlab-ci")

	t.Run("valid config passes", func(t *testing.T) {
		t.Parallel()
		config := []byte(`
stages:
  - build
  - test
build-job:
  stage: build
  image: golang:1.24.0
  script:
    - go build ./...
`)
		report, err := runner.Validate(platform, ".gitlab-ci.yml", config)
		require.NoError(t, err)
		assert.True(t, report.OK())
		assert.Zero(t, report.Failures())
		assert.Equal(t, StatusPass, findingByID(t, report, "yaml-syntax").Status)
		assert.Equal(t, StatusPass, findingByID(t, report, "required-key:stages").Status)
		assert.Equal(t, StatusPass, findingByID(t, report, "image-ref:golang:1.24.0").Status)
	})

	t.Run("missing required key fails", func(t *testing.T) {
		t.Parallel()
		report, err := runner.Validate(platform, ".gitlab-ci.yml", []byte("build-job:\n  script: [make]\n"))
		require.NoError(t, err)
		assert.False(t, report.OK())
		assert.Equal(t, StatusFail, findingByID(t, report, "required-key:stages").Status)
	})

	t.Run("empty stages fails lint rule", func(t *testing.T) {
		t.Parallel()
		report, err := runner.Validate(platform, ".gitlab-ci.yml", []byte("stages: []\n"))
		require.NoError(t, err)
		assert.False(t, report.OK())
		assert.Equal(t, StatusFail, findingByID(t, report, "gitlab-stages-nonempty").Status)
	})

	t.Run("invalid YAML stops after syntax gate", func(t *testing.T) {
		t.Parallel()
		report, err := runner.Validate(platform, ".gitlab-ci.yml", []byte("stages: [build\n"))
		require.NoError(t, err)
		assert.False(t, report.OK())
		require.Len(t, report.Findings, 1)
		assert.Equal(t, "yaml-syntax", report.Findings[0].CheckID)
		assert.Equal(t, StatusFail, report.Findings[0].Status)
	})
}

func TestRunner_Validate_Warnings(t *testing.T) {
	t.Parallel()
	runner := NewRunner()
	platform := mustPlatform(t, "gitlab-ci")

	// No default image and a job pinned to latest: warnings, not failures.
	config := []byte(`
stages:
  - build
build-job:
  stage: build
  image: ubuntu:latest
  script:
    - make
`)
	report, err := runner.Validate(platform, ".gitlab-ci.yml", config)
	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.Positive(t, report.Warnings())
	assert.Equal(t, StatusWarn, findingByID(t, report, "image-ref:ubuntu:latest").Status)
}

func TestRunner_Validate_Jenkins(t *testing.T) {
	t.Parallel()
	runner := NewRunner()
	platform := mustPlatform(t, "jenkins")

	t.Run("declarative pipeline passes", func(t *testing.T) {
		t.Parallel()
		config := []byte(`
pipeline {
    agent any
    stages {
        stage('Build') {
            steps {
                sh 'make'
            }
        }
    }
}
`)
		report, err := runner.Validate(platform, "Jenkinsfile", config)
		require.NoError(t, err)
		assert.True(t, report.OK())
		assert.Equal(t, StatusPass, findingByID(t, report, "required-token:pipeline").Status)
		assert.Equal(t, StatusPass, findingByID(t, report, "required-token:agent").Status)
		assert.Equal(t, StatusPass, findingByID(t, report, "required-token:stages").Status)
	})

	t.Run("missing token fails", func(t *testing.T) {
		t.Parallel()
		report, err := runner.Validate(platform, "Jenkinsfile", []byte("pipeline {\n    stages {}\n}\n"))
		require.NoError(t, err)
		assert.False(t, report.OK())
		assert.Equal(t, StatusFail, findingByID(t, report, "required-token:agent").Status)
	})

	t.Run("empty file fails", func(t *testing.T) {
		t.Parallel()
		report, err := runner.Validate(platform, "Jenkinsfile", []byte("  \n"))
		require.NoError(t, err)
		assert.False(t, report.OK())
		require.Len(t, report.Findings, 1)
		assert.Equal(t, "content", report.Findings[0].CheckID)
	})
}

func TestRunner_Validate_DottedPaths(t *testing.T) {
	t.Parallel()
	runner := NewRunner()
	platform := mustPlatform(t, "tekton")

	config := []byte(`
apiVersion: tekton.dev/v1
kind: Pipeline
spec:
  tasks:
    - name: build
`)
	report, err := runner.Validate(platform, ".tekton/pipeline.yaml", config)
	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.Equal(t, StatusPass, findingByID(t, report, "required-key:spec").Status)
}

func TestRunner_Validate_CircleCIVersionRule(t *testing.T) {
	t.Parallel()
	runner := NewRunner()
	platform := mustPlatform(t, "circleci")

	t.Run("modern version passes", func(t *testing.T) {
		t.Parallel()
		report, err := runner.Validate(platform, "config.yml", []byte("version: 2.1\njobs:\n  build:\n    docker:\n      - image: cimg/go:1.24\n    steps: [checkout]\n"))
		require.NoError(t, err)
		assert.True(t, report.OK())
	})

	t.Run("legacy version fails", func(t *testing.T) {
		t.Parallel()
		report, err := runner.Validate(platform, "config.yml", []byte("version: 1\njobs:\n  build:\n    steps: [checkout]\n"))
		require.NoError(t, err)
		assert.False(t, report.OK())
	})
}

func TestRunner_ValidateFile(t *testing.T) {
	t.Parallel()
	runner := NewRunner()
	platform := mustPlatform(t, "travis-ci")

	t.Run("file on disk", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), ".travis.yml")
		require.NoError(t, os.WriteFile(path, []byte("language: go\n"), 0o644))

		report, err := runner.ValidateFile(platform, path)
		require.NoError(t, err)
		assert.True(t, report.OK())
		assert.Equal(t, path, report.ConfigPath)
	})

	t.Run("missing file is an error", func(t *testing.T) {
		t.Parallel()
		_, err := runner.ValidateFile(platform, filepath.Join(t.TempDir(), ".travis.yml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reading config file")
	})
}

func TestRunner_Validate_NilPlatform(t *testing.T) {
	t.Parallel()
	_, err := NewRunner().Validate(nil, "x.yml", nil)
	require.Error(t, err)
}

func TestLookupPath(t *testing.T) {
	t.Parallel()

	doc := map[string]any{
		"spec": map[string]any{
			"tasks": []any{"a"},
		},
		"kind": "Pipeline",
	}

	tests := []struct {
		path  string
		found bool
	}{
		{"kind", true},
		{"spec", true},
		{"spec.tasks", true},
		{"spec.missing", false},
		{"spec.tasks.0", false},
		{"missing", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			_, found := lookupPath(doc, tt.path)
			assert.Equal(t, tt.found, found)
		})
	}
}
