// SPDX-FileCopyrightText: Copyright 2026 Pipewright Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pipewright/pipewright-core/platforms"
	"github.com/pipewright/pipewright-core/scaffold"
)

func newInitCmd() *cobra.Command {
	var (
		platformKey string
		dir         string
		projectType string
		force       bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a starter CI/CD config for a project",
		Long: `Detect the project's build ecosystem from marker files and write a
starter config for the chosen CI/CD platform. Existing configs are never
overwritten unless --force is given.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog, err := platforms.Load()
			if err != nil {
				return err
			}

			platform := catalog.Get(platformKey)
			if platform == nil {
				return fmt.Errorf("unknown platform %q, run 'pipewright platforms list'", platformKey)
			}

			result, err := scaffold.Generate(platform, scaffold.Options{
				Dir:         dir,
				ProjectType: scaffold.ProjectType(projectType),
				Force:       force,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%s project)\n", result.ConfigPath, result.ProjectType)
			return nil
		},
	}

	cmd.Flags().StringVarP(&platformKey, "platform", "p", "", "target platform key (required)")
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "project directory")
	cmd.Flags().StringVar(&projectType, "project-type", "", "override project type detection")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	_ = cmd.MarkFlagRequired("platform")

	return cmd
}
