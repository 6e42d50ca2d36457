// SPDX-FileCopyrightText: Copyright 2026 Pipewright Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/pipewright/pipewright-core/prompts"
)

func newPromptsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prompts",
		Short: "Browse and render the AI prompt library",
	}

	cmd.AddCommand(newPromptsListCmd(), newPromptsShowCmd())
	return cmd
}

func newPromptsListCmd() *cobra.Command {
	var role string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available prompts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			library, err := prompts.Load()
			if err != nil {
				return err
			}

			list := library.List()
			if role != "" {
				list = library.ByRole(role)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tROLE\tDESCRIPTION")
			for _, p := range list {
				fmt.Fprintf(w, "%s\t%s\t%s\n", p.Name, p.Role, p.Description)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&role, "role", "r", "", "filter by role")
	return cmd
}

func newPromptsShowCmd() *cobra.Command {
	var (
		render bool
		vars   []string
	)

	cmd := &cobra.Command{
		Use:   "show NAME",
		Short: "Show a prompt, optionally with variables substituted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			library, err := prompts.Load()
			if err != nil {
				return err
			}

			prompt, err := library.Get(args[0])
			if err != nil {
				return err
			}

			body := prompt.Body
			if len(vars) > 0 {
				values, err := parseVars(vars)
				if err != nil {
					return err
				}
				body, err = prompt.Render(values)
				if err != nil {
					return err
				}
			}

			if render {
				rendered, err := glamour.Render(body, "auto")
				if err != nil {
					return fmt.Errorf("rendering markdown: %w", err)
				}
				body = rendered
			}

			fmt.Fprintln(cmd.OutOrStdout(), body)
			return nil
		},
	}

	cmd.Flags().BoolVar(&render, "render", false, "render the markdown for the terminal")
	cmd.Flags().StringArrayVar(&vars, "var", nil, "template variable as key=value (repeatable)")
	return cmd
}

// parseVars parses repeated key=value flags into a map.
func parseVars(pairs []string) (map[string]string, error) {
	values := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid variable %q, expected key=value", pair)
		}
		values[key] = value
	}
	return values, nil
}
