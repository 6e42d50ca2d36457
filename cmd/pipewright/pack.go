// SPDX-FileCopyrightText: Copyright 2026 Pipewright Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pipewright/pipewright-core/oci/packs"
)

func newPackCmd() *cobra.Command {
	var storeRoot string

	cmd := &cobra.Command{
		Use:   "pack",
		Short: "Build and distribute prompt packs as OCI artifacts",
	}

	cmd.PersistentFlags().StringVar(&storeRoot, "store", "", "local pack store directory (default: XDG data dir)")

	cmd.AddCommand(
		newPackBuildCmd(&storeRoot),
		newPackPushCmd(&storeRoot),
		newPackPullCmd(&storeRoot),
		newPackListCmd(&storeRoot),
		newPackExtractCmd(&storeRoot),
	)
	return cmd
}

func openStore(storeRoot string) (*packs.Store, error) {
	root := storeRoot
	if root == "" {
		root = packs.DefaultStoreRoot()
	}
	return packs.NewStore(root)
}

func newPackBuildCmd(storeRoot *string) *cobra.Command {
	var tag string

	cmd := &cobra.Command{
		Use:   "build DIR",
		Short: "Package a prompt pack directory into the local store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(*storeRoot)
			if err != nil {
				return err
			}

			packager := packs.NewPackager(store)
			result, err := packager.Package(cmd.Context(), args[0], packs.DefaultPackageOptions())
			if err != nil {
				return err
			}

			if tag != "" {
				if err := store.Tag(cmd.Context(), result.ManifestDigest, tag); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "built pack %s\n", result.Config.Name)
			fmt.Fprintf(out, "  manifest: %s\n", result.ManifestDigest)
			fmt.Fprintf(out, "  layer:    %s\n", result.LayerDigest)
			if tag != "" {
				fmt.Fprintf(out, "  tag:      %s\n", tag)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&tag, "tag", "t", "", "tag to assign in the local store")
	return cmd
}

func newPackPushCmd(storeRoot *string) *cobra.Command {
	var plainHTTP bool

	cmd := &cobra.Command{
		Use:   "push REF",
		Short: "Push a pack from the local store to a registry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(*storeRoot)
			if err != nil {
				return err
			}

			d, err := store.Resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			registry, err := packs.NewRegistry(packs.WithPlainHTTP(plainHTTP))
			if err != nil {
				return err
			}

			if err := registry.Push(cmd.Context(), store, d, args[0]); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "pushed %s (%s)\n", args[0], d)
			return nil
		},
	}

	cmd.Flags().BoolVar(&plainHTTP, "plain-http", false, "use plain HTTP for the registry connection")
	return cmd
}

func newPackPullCmd(storeRoot *string) *cobra.Command {
	var plainHTTP bool

	cmd := &cobra.Command{
		Use:   "pull REF",
		Short: "Pull a pack from a registry into the local store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(*storeRoot)
			if err != nil {
				return err
			}

			registry, err := packs.NewRegistry(packs.WithPlainHTTP(plainHTTP))
			if err != nil {
				return err
			}

			d, err := registry.Pull(cmd.Context(), store, args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "pulled %s (%s)\n", args[0], d)
			return nil
		},
	}

	cmd.Flags().BoolVar(&plainHTTP, "plain-http", false, "use plain HTTP for the registry connection")
	return cmd
}

func newPackListCmd(storeRoot *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List packs in the local store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore(*storeRoot)
			if err != nil {
				return err
			}

			installed, err := packs.NewPackager(store).ListInstalled(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "REF\tNAME\tVERSION\tDESCRIPTION")
			for _, p := range installed {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Ref, p.Name, p.Version, p.Description)
			}
			return w.Flush()
		},
	}
}

func newPackExtractCmd(storeRoot *string) *cobra.Command {
	var dest string

	cmd := &cobra.Command{
		Use:   "extract REF",
		Short: "Extract a pack's files from the local store into a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(*storeRoot)
			if err != nil {
				return err
			}

			d, err := store.Resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			config, err := packs.NewPackager(store).Extract(cmd.Context(), d, dest)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "extracted pack %s to %s\n", config.Name, dest)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dest, "dest", "o", ".", "destination directory")
	return cmd
}
