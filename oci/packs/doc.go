// SPDX-FileCopyrightText: Copyright 2026 Pipewright Authors
// SPDX-License-Identifier: Apache-2.0

// Package packs implements OCI-based packaging and distribution of prompt
// packs. A prompt pack is a directory with a PACK.md manifest and a set of
// prompt markdown files; it is packaged into a reproducible OCI artifact,
// stored in a local OCI image layout, and pushed to or pulled from standard
// OCI registries.
package packs
