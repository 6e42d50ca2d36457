// SPDX-FileCopyrightText: Copyright 2026 Pipewright Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pipewright/pipewright-core/platforms"
)

func newPlatformsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "platforms",
		Short: "Browse the CI/CD platform catalog",
	}

	cmd.AddCommand(newPlatformsListCmd(), newPlatformsShowCmd())
	return cmd
}

func newPlatformsListCmd() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List known CI/CD platforms",
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog, err := platforms.Load()
			if err != nil {
				return err
			}

			list := catalog.All()
			if category != "" {
				list = catalog.ByCategory(category)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "KEY\tNAME\tCATEGORY\tCONFIG FILE")
			for _, p := range list {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Key, p.Name, p.Category, p.ConfigFile)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "filter by category (cloud-native, saas, self-hosted)")
	return cmd
}

func newPlatformsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show KEY",
		Short: "Show a platform's catalog entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := platforms.Load()
			if err != nil {
				return err
			}

			p := catalog.Get(args[0])
			if p == nil {
				return fmt.Errorf("unknown platform %q", args[0])
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s)\n", p.Name, p.Key)
			fmt.Fprintf(out, "  vendor:      %s\n", p.Vendor)
			fmt.Fprintf(out, "  category:    %s\n", p.Category)
			fmt.Fprintf(out, "  config file: %s\n", p.ConfigFile)
			fmt.Fprintf(out, "  format:      %s\n", p.Format)
			if p.Runner != "" {
				fmt.Fprintf(out, "  runner:      %s\n", p.Runner)
			}
			if p.DocsURL != "" {
				fmt.Fprintf(out, "  docs:        %s\n", p.DocsURL)
			}
			if len(p.RequiredKeys) > 0 {
				fmt.Fprintf(out, "  required keys: %s\n", strings.Join(p.RequiredKeys, ", "))
			}
			if len(p.RequiredTokens) > 0 {
				fmt.Fprintf(out, "  required tokens: %s\n", strings.Join(p.RequiredTokens, ", "))
			}
			if len(p.KeyFeatures) > 0 {
				fmt.Fprintln(out, "  key features:")
				for _, f := range p.KeyFeatures {
					fmt.Fprintf(out, "    - %s\n", f)
				}
			}
			if len(p.Rules) > 0 {
				fmt.Fprintln(out, "  lint rules:")
				for _, r := range p.Rules {
					fmt.Fprintf(out, "    - %s (%s): %s\n", r.ID, r.Severity, r.Description)
				}
			}
			return nil
		},
	}
}
