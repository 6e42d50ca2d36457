// SPDX-FileCopyrightText: Copyright 2026 Pipewright Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipewright/pipewright-core/checks"
	"github.com/pipewright/pipewright-core/platforms"
)

func TestResolveTarget(t *testing.T) {
	catalog, err := platforms.Load()
	require.NoError(t, err)

	t.Run("explicit platform flag", func(t *testing.T) {
		t.Parallel()

		platform, path, err := resolveTarget(catalog, "gitlab-ci", nil)
		require.NoError(t, err)
		assert.Equal(t, "gitlab-ci", platform.Key)
		assert.Equal(t, ".gitlab-ci.yml", path)
	})

	t.Run("explicit platform flag with path argument", func(t *testing.T) {
		t.Parallel()

		platform, path, err := resolveTarget(catalog, "circleci", []string{"ci/config.yml"})
		require.NoError(t, err)
		assert.Equal(t, "circleci", platform.Key)
		assert.Equal(t, "ci/config.yml", path)
	})

	t.Run("unknown platform flag", func(t *testing.T) {
		t.Parallel()

		_, _, err := resolveTarget(catalog, "teamcity", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown platform")
	})

	t.Run("platform inferred from file name", func(t *testing.T) {
		t.Parallel()

		platform, path, err := resolveTarget(catalog, "", []string{"testdata/.travis.yml"})
		require.NoError(t, err)
		assert.Equal(t, "travis-ci", platform.Key)
		assert.Equal(t, "testdata/.travis.yml", path)
	})

	t.Run("unrecognized file name", func(t *testing.T) {
		t.Parallel()

		_, _, err := resolveTarget(catalog, "", []string{"build.xml"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot infer platform")
	})

	t.Run("detected from current directory", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "bitbucket-pipelines.yml"), []byte("pipelines: {}\n"), 0600))
		t.Chdir(dir)

		platform, path, err := resolveTarget(catalog, "", nil)
		require.NoError(t, err)
		assert.Equal(t, "bitbucket-pipelines", platform.Key)
		assert.Equal(t, "bitbucket-pipelines.yml", path)
	})

	t.Run("nothing to detect", func(t *testing.T) {
		t.Chdir(t.TempDir())

		_, _, err := resolveTarget(catalog, "", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no known CI/CD config")
	})
}

func TestWatchAndRevalidate(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, ".gitlab-ci.yml")
	require.NoError(t, os.WriteFile(cfg, []byte("stages: [build]\n"), 0600))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cmd := &cobra.Command{}
	cmd.SetContext(ctx)
	cmd.SetOut(io.Discard)

	runs := make(chan struct{}, 16)
	runOnce := func() (*checks.Report, error) {
		runs <- struct{}{}
		return &checks.Report{}, nil
	}

	done := make(chan error, 1)
	go func() {
		done <- watchAndRevalidate(cmd, cfg, runOnce)
	}()

	// Rewrite the file until a revalidation comes back. Retrying covers
	// the window before the watch is registered.
	deadline := time.After(10 * time.Second)
	fired := false
	for !fired {
		require.NoError(t, os.WriteFile(cfg, []byte("stages: [build, test]\n"), 0600))
		select {
		case <-runs:
			fired = true
		case <-time.After(50 * time.Millisecond):
		case <-deadline:
			t.Fatal("no revalidation after file change")
		}
	}

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("watch loop did not stop on context cancellation")
	}
}
