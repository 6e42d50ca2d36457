// SPDX-FileCopyrightText: Copyright 2026 Pipewright Authors
// SPDX-License-Identifier: Apache-2.0

package packs

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_interfaces.go -package=mocks

import (
	"context"
	"time"

	"github.com/opencontainers/go-digest"
)

// RegistryClient provides remote OCI registry operations for prompt packs.
type RegistryClient interface {
	// Push pushes an artifact from the local store to a remote registry.
	Push(ctx context.Context, store *Store, manifestDigest digest.Digest, ref string) error

	// Pull pulls an artifact from a remote registry into the local store.
	Pull(ctx context.Context, store *Store, ref string) (digest.Digest, error)
}

// PackPackager creates OCI artifacts from prompt pack directories.
type PackPackager interface {
	// Package packages a pack directory into an OCI artifact in the local store.
	Package(ctx context.Context, packDir string, opts PackageOptions) (*PackageResult, error)
}

// PackageOptions configures pack packaging.
type PackageOptions struct {
	// Epoch is the timestamp to use for reproducible builds.
	Epoch time.Time
}

// PackageResult contains the result of packaging a prompt pack.
type PackageResult struct {
	ManifestDigest digest.Digest
	ConfigDigest   digest.Digest
	LayerDigest    digest.Digest
	Config         *PackConfig
}
