// SPDX-FileCopyrightText: Copyright 2026 Pipewright Authors
// SPDX-License-Identifier: Apache-2.0

// Command pipewright is a toolkit for working with CI/CD platforms: it
// scaffolds starter configs, validates existing ones against the platform
// catalog, serves the embedded docs, and distributes prompt packs as OCI
// artifacts.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pipewright/pipewright-core/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// debugFlag adapts the --debug flag to the logger's debug provider.
type debugFlag struct {
	enabled bool
}

func (d *debugFlag) IsDebug() bool {
	return d.enabled
}

func newRootCmd() *cobra.Command {
	debug := &debugFlag{}

	cmd := &cobra.Command{
		Use:          "pipewright",
		Short:        "CI/CD platform toolkit",
		Long: `pipewright scaffolds, validates, and documents CI/CD configuration
across platforms, and distributes AI prompt packs as OCI artifacts.`,
		SilenceUsage: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			logger.InitializeWithDebug(debug)
		},
	}

	cmd.PersistentFlags().BoolVar(&debug.enabled, "debug", false, "enable debug logging")

	cmd.AddCommand(
		newInitCmd(),
		newValidateCmd(),
		newPlatformsCmd(),
		newPromptsCmd(),
		newPackCmd(),
		newServeCmd(),
	)

	return cmd
}
