// SPDX-FileCopyrightText: Copyright 2026 Pipewright Authors
// SPDX-License-Identifier: Apache-2.0

package packs

import (
	"encoding/json"
	"fmt"

	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// ArtifactTypePack identifies prompt pack artifacts in manifests.
const ArtifactTypePack = "dev.pipewright.packs.v1"

// Annotation keys for pack metadata in manifests.
const (
	// AnnotationPackName is the annotation key for the pack name.
	AnnotationPackName = "dev.pipewright.packs.name"

	// AnnotationPackDescription is the annotation key for the pack description.
	AnnotationPackDescription = "dev.pipewright.packs.description"

	// AnnotationPackVersion is the annotation key for the pack version.
	AnnotationPackVersion = "dev.pipewright.packs.version"
)

// Label keys for pack metadata in the OCI image config.
const (
	// LabelPackName is the label key for the pack name.
	LabelPackName = "dev.pipewright.packs.name"

	// LabelPackDescription is the label key for the pack description.
	LabelPackDescription = "dev.pipewright.packs.description"

	// LabelPackVersion is the label key for the pack version.
	LabelPackVersion = "dev.pipewright.packs.version"

	// LabelPackLicense is the label key for the pack license.
	LabelPackLicense = "dev.pipewright.packs.license"

	// LabelPackRoles is the label key for the roles the pack covers (JSON array).
	LabelPackRoles = "dev.pipewright.packs.roles"

	// LabelPackFiles is the label key for the pack file list (JSON array).
	LabelPackFiles = "dev.pipewright.packs.files"
)

// PackConfig represents pack metadata extracted from OCI image config labels.
type PackConfig struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Version     string            `json:"version,omitempty"`
	License     string            `json:"license,omitempty"`
	Roles       []string          `json:"roles,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Files       []string          `json:"files"`
}

// PackConfigFromImageConfig extracts PackConfig from OCI image config labels.
func PackConfigFromImageConfig(imgConfig *ocispec.Image) (*PackConfig, error) {
	if imgConfig == nil {
		return nil, fmt.Errorf("image config is nil")
	}

	labels := imgConfig.Config.Labels
	if labels == nil {
		return nil, fmt.Errorf("oci config has no labels")
	}

	config := &PackConfig{
		Name:        labels[LabelPackName],
		Description: labels[LabelPackDescription],
		Version:     labels[LabelPackVersion],
		License:     labels[LabelPackLicense],
	}

	if config.Name == "" {
		return nil, fmt.Errorf("pack name is required in labels")
	}

	if rolesJSON := labels[LabelPackRoles]; rolesJSON != "" {
		if err := json.Unmarshal([]byte(rolesJSON), &config.Roles); err != nil {
			return nil, fmt.Errorf("parsing roles: %w", err)
		}
	}

	if filesJSON := labels[LabelPackFiles]; filesJSON != "" {
		if err := json.Unmarshal([]byte(filesJSON), &config.Files); err != nil {
			return nil, fmt.Errorf("parsing files: %w", err)
		}
	}

	return config, nil
}
