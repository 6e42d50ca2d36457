// SPDX-FileCopyrightText: Copyright 2026 Pipewright Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/spf13/cobra"

	"github.com/pipewright/pipewright-core/docserver"
	"github.com/pipewright/pipewright-core/logging"
	"github.com/pipewright/pipewright-core/mcpserver"
	"github.com/pipewright/pipewright-core/platforms"
	"github.com/pipewright/pipewright-core/prompts"
)

func newServeCmd() *cobra.Command {
	var (
		addr     string
		logLevel string
		mcp      bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the platform catalog and prompt library over HTTP or MCP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			level, err := logging.ParseLevel(logLevel)
			if err != nil {
				return err
			}

			catalog, err := platforms.Load()
			if err != nil {
				return err
			}

			library, err := prompts.Load()
			if err != nil {
				return err
			}

			if mcp {
				srv, err := mcpserver.New(catalog, library)
				if err != nil {
					return err
				}
				return mcpserver.Serve(cmd.Context(), srv)
			}

			log := logging.New(
				logging.WithLevel(level),
				logging.WithComponent("docserver"),
			)
			server, err := docserver.New(catalog, library, log)
			if err != nil {
				return err
			}

			log.Info("starting server", "addr", addr)
			return server.ListenAndServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "address to listen on")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	cmd.Flags().BoolVar(&mcp, "mcp", false, "serve over the Model Context Protocol on stdio instead of HTTP")
	return cmd
}
