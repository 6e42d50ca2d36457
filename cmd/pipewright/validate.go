// SPDX-FileCopyrightText: Copyright 2026 Pipewright Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/pipewright/pipewright-core/checks"
	"github.com/pipewright/pipewright-core/logger"
	"github.com/pipewright/pipewright-core/platforms"
)

func newValidateCmd() *cobra.Command {
	var (
		platformKey string
		watch       bool
	)

	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate a CI/CD config file",
		Long: `Run the platform catalog's checks against a config file. Without an
argument, the current directory is scanned for known config files. The
command exits non-zero when any check fails; warnings alone do not
change the exit code.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := platforms.Load()
			if err != nil {
				return err
			}

			platform, path, err := resolveTarget(catalog, platformKey, args)
			if err != nil {
				return err
			}

			runner := checks.NewRunner()

			runOnce := func() (*checks.Report, error) {
				report, err := runner.ValidateFile(platform, path)
				if err != nil {
					return nil, err
				}
				renderReport(cmd.OutOrStdout(), report)
				return report, nil
			}

			report, err := runOnce()
			if err != nil {
				return err
			}

			if watch {
				return watchAndRevalidate(cmd, path, runOnce)
			}

			if !report.OK() {
				return fmt.Errorf("%d check(s) failed", report.Failures())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&platformKey, "platform", "p", "", "platform key (default: detect from file name)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "revalidate on file changes")

	return cmd
}

// resolveTarget determines the platform and config path from the flag, the
// positional argument, or directory detection. When several platforms match
// a scanned directory, the first in catalog order wins and the rest are
// reported.
func resolveTarget(catalog *platforms.Catalog, platformKey string, args []string) (*platforms.Platform, string, error) {
	if platformKey != "" {
		platform := catalog.Get(platformKey)
		if platform == nil {
			return nil, "", fmt.Errorf("unknown platform %q, run 'pipewright platforms list'", platformKey)
		}
		path := filepath.FromSlash(platform.ConfigFile)
		if len(args) == 1 {
			path = args[0]
		}
		return platform, path, nil
	}

	if len(args) == 1 {
		base := filepath.Base(args[0])
		for _, p := range catalog.All() {
			if filepath.Base(filepath.FromSlash(p.ConfigFile)) == base {
				return p, args[0], nil
			}
		}
		return nil, "", fmt.Errorf("cannot infer platform from %q, pass --platform", args[0])
	}

	matches := catalog.Detect(".")
	if len(matches) == 0 {
		return nil, "", fmt.Errorf("no known CI/CD config found in current directory")
	}
	if len(matches) > 1 {
		keys := make([]string, 0, len(matches))
		for _, m := range matches {
			keys = append(keys, m.Key)
		}
		logger.Warn("multiple platform configs found, validating the first", "platforms", keys)
	}
	platform := matches[0]
	return platform, filepath.FromSlash(platform.ConfigFile), nil
}

// watchAndRevalidate reruns validation whenever the config file changes,
// until interrupted.
func watchAndRevalidate(cmd *cobra.Command, path string, runOnce func() (*checks.Report, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory, not the file: editors replace files on save,
	// which drops a watch registered on the file itself.
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	target, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "watching %s\n", path)

	for {
		select {
		case <-cmd.Context().Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			eventPath, err := filepath.Abs(event.Name)
			if err != nil || eventPath != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if _, err := os.Stat(path); err != nil {
				continue
			}
			if _, err := runOnce(); err != nil {
				logger.Error("revalidation failed", "error", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watch error", "error", err)
		}
	}
}
