// SPDX-FileCopyrightText: Copyright 2026 Pipewright Authors
// SPDX-License-Identifier: Apache-2.0

package packs

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/opencontainers/go-digest"
	specs "github.com/opencontainers/image-spec/specs-go"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"gopkg.in/yaml.v3"

	"github.com/pipewright/pipewright-core/env"
)

// Packager creates reproducible OCI artifacts from prompt pack directories.
type Packager struct {
	store *Store
}

// packManifest represents the YAML frontmatter in a PACK.md file.
type packManifest struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description"`
	Version     string            `yaml:"version,omitempty"`
	License     string            `yaml:"license,omitempty"`
	Roles       []string          `yaml:"roles,omitempty"`
	Metadata    map[string]string `yaml:"metadata,omitempty"`
}

// packDirContent holds the raw files and parsed metadata from a pack directory.
type packDirContent struct {
	packMD []byte
	// files maps relative paths (e.g., "prompts/code-reviewer.md") to content.
	files map[string][]byte
	// manifest is the parsed PACK.md frontmatter.
	manifest *packManifest
}

// maxManifestFrontmatterSize limits PACK.md frontmatter to prevent YAML parsing attacks.
const maxManifestFrontmatterSize = 64 * 1024

// Compile-time assertion that Packager implements PackPackager.
var _ PackPackager = (*Packager)(nil)

// NewPackager creates a new packager with the given store.
// Panics if store is nil.
func NewPackager(store *Store) *Packager {
	if store == nil {
		panic("packs: NewPackager called with nil store")
	}
	return &Packager{store: store}
}

// DefaultPackageOptions returns default packaging options.
// Respects SOURCE_DATE_EPOCH for reproducible builds.
func DefaultPackageOptions() PackageOptions {
	return PackageOptionsFromEnv(&env.OSReader{})
}

// PackageOptionsFromEnv builds packaging options reading SOURCE_DATE_EPOCH
// through the given environment reader.
func PackageOptionsFromEnv(envReader env.Reader) PackageOptions {
	epoch := time.Unix(0, 0).UTC()

	if sde := envReader.Getenv("SOURCE_DATE_EPOCH"); sde != "" {
		if ts, err := strconv.ParseInt(sde, 10, 64); err == nil {
			epoch = time.Unix(ts, 0).UTC()
		}
	}

	return PackageOptions{Epoch: epoch}
}

// Package packages a prompt pack directory into an OCI artifact in the
// local store. Pack content is platform-neutral text, so a single manifest
// is produced rather than a multi-platform index.
func (p *Packager) Package(ctx context.Context, packDir string, opts PackageOptions) (*PackageResult, error) {
	if opts.Epoch.IsZero() {
		opts.Epoch = time.Unix(0, 0).UTC()
	}

	content, err := readPackDirectory(packDir)
	if err != nil {
		return nil, fmt.Errorf("reading pack directory: %w", err)
	}

	layerBytes, uncompressedTar, err := createContentLayer(content, opts.Epoch)
	if err != nil {
		return nil, fmt.Errorf("creating content layer: %w", err)
	}

	layerDigest, err := p.store.PutBlob(ctx, layerBytes)
	if err != nil {
		return nil, fmt.Errorf("storing layer blob: %w", err)
	}

	ociConfig, packConfig := createOCIConfig(content, uncompressedTar, opts.Epoch)
	configBytes, err := json.Marshal(ociConfig)
	if err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}

	configDigest, err := p.store.PutBlob(ctx, configBytes)
	if err != nil {
		return nil, fmt.Errorf("storing config blob: %w", err)
	}

	manifest := createManifest(configBytes, configDigest, layerBytes, layerDigest, content.manifest, opts.Epoch)
	manifestBytes, err := json.Marshal(manifest)
	if err != nil {
		return nil, fmt.Errorf("marshaling manifest: %w", err)
	}

	manifestDigest, err := p.store.PutManifest(ctx, manifestBytes)
	if err != nil {
		return nil, fmt.Errorf("storing manifest: %w", err)
	}

	return &PackageResult{
		ManifestDigest: manifestDigest,
		ConfigDigest:   configDigest,
		LayerDigest:    layerDigest,
		Config:         packConfig,
	}, nil
}

// Extract unpacks the content layer of a stored pack into destDir.
func (p *Packager) Extract(ctx context.Context, manifestDigest digest.Digest, destDir string) (*PackConfig, error) {
	manifest, err := p.store.GetManifest(ctx, manifestDigest)
	if err != nil {
		return nil, err
	}
	if len(manifest.Layers) != 1 {
		return nil, fmt.Errorf("pack manifest has %d layers, expected 1", len(manifest.Layers))
	}

	configBytes, err := p.store.GetBlob(ctx, manifest.Config.Digest)
	if err != nil {
		return nil, fmt.Errorf("reading config blob: %w", err)
	}
	var imgConfig ocispec.Image
	if err := json.Unmarshal(configBytes, &imgConfig); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	packConfig, err := PackConfigFromImageConfig(&imgConfig)
	if err != nil {
		return nil, err
	}

	layerBytes, err := p.store.GetBlob(ctx, manifest.Layers[0].Digest)
	if err != nil {
		return nil, fmt.Errorf("reading layer blob: %w", err)
	}

	files, err := ExtractLayer(layerBytes)
	if err != nil {
		return nil, fmt.Errorf("extracting layer: %w", err)
	}

	for _, f := range files {
		target := filepath.Join(destDir, filepath.FromSlash(f.Path))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return nil, fmt.Errorf("creating directory for %s: %w", f.Path, err)
		}
		mode := os.FileMode(f.Mode) //#nosec G115 -- modes come from ExtractLayer, bounded by tar header
		if mode == 0 {
			mode = 0o644
		}
		if err := os.WriteFile(target, f.Content, mode); err != nil {
			return nil, fmt.Errorf("writing %s: %w", f.Path, err)
		}
	}

	return packConfig, nil
}

// InstalledPack describes a pack present in the local store.
type InstalledPack struct {
	Ref         string `json:"ref"`
	Name        string `json:"name"`
	Version     string `json:"version,omitempty"`
	Description string `json:"description,omitempty"`
	Digest      string `json:"digest"`
}

// ListInstalled returns the packs in the local store, one entry per tag.
func (p *Packager) ListInstalled(ctx context.Context) ([]InstalledPack, error) {
	tags, err := p.store.ListTags(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]InstalledPack, 0, len(tags))
	for _, tag := range tags {
		d, err := p.store.Resolve(ctx, tag)
		if err != nil {
			return nil, err
		}
		manifest, err := p.store.GetManifest(ctx, d)
		if err != nil {
			return nil, err
		}

		out = append(out, InstalledPack{
			Ref:         tag,
			Name:        manifest.Annotations[AnnotationPackName],
			Version:     manifest.Annotations[AnnotationPackVersion],
			Description: manifest.Annotations[AnnotationPackDescription],
			Digest:      d.String(),
		})
	}
	return out, nil
}

// readPackDirectory reads a pack directory, validates its contents, and parses the PACK.md frontmatter.
func readPackDirectory(dir string) (*packDirContent, error) {
	if err := validatePackDir(dir); err != nil {
		return nil, err
	}

	packMDPath := filepath.Join(dir, "PACK.md")
	packMD, err := os.ReadFile(packMDPath) //#nosec G304 -- path constructed from user-provided pack directory
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("PACK.md not found in pack directory")
		}
		return nil, fmt.Errorf("reading PACK.md: %w", err)
	}

	manifest, err := parsePackManifest(packMD)
	if err != nil {
		return nil, fmt.Errorf("parsing PACK.md: %w", err)
	}

	if manifest.Name == "" {
		return nil, fmt.Errorf("pack name is required in PACK.md frontmatter")
	}

	files, err := collectPackFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("pack directory contains no prompt files")
	}

	return &packDirContent{
		packMD:   packMD,
		files:    files,
		manifest: manifest,
	}, nil
}

// validatePackDir checks that the directory exists and is safe to read.
func validatePackDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("pack directory not found: %s", dir)
		}
		return fmt.Errorf("accessing pack directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", dir)
	}

	cleanDir := filepath.Clean(dir)
	if strings.Contains(cleanDir, "..") {
		return fmt.Errorf("invalid path: contains path traversal")
	}

	return nil
}

// collectPackFiles walks a pack directory and returns all regular files (excluding PACK.md and hidden files).
func collectPackFiles(dir string) (map[string][]byte, error) {
	files := make(map[string][]byte)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if path == dir {
			return nil
		}

		relPath, err := filepath.Rel(dir, path)
		if err != nil {
			return fmt.Errorf("getting relative path: %w", err)
		}
		relPath = filepath.ToSlash(relPath)

		// Skip hidden files/directories
		if strings.HasPrefix(filepath.Base(relPath), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		// Pack content must be regular files; a symlink could point outside
		// the pack directory.
		if d.Type()&os.ModeSymlink != 0 {
			return fmt.Errorf("symlinks not allowed in pack directory: %s", relPath)
		}

		if d.IsDir() {
			return nil
		}

		if err := validatePackFile(path, relPath); err != nil {
			return err
		}

		// Skip PACK.md since we handle it separately
		if relPath == "PACK.md" {
			return nil
		}

		content, err := os.ReadFile(path) //#nosec G304 -- path from WalkDir, symlink-checked
		if err != nil {
			return fmt.Errorf("reading %s: %w", relPath, err)
		}

		files[relPath] = content
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking pack directory: %w", err)
	}
	return files, nil
}

// validatePackFile checks that a file in the pack directory is safe to include.
func validatePackFile(absPath, relPath string) error {
	fileInfo, err := os.Lstat(absPath)
	if err != nil {
		return fmt.Errorf("checking file type for %s: %w", relPath, err)
	}
	if fileInfo.Mode()&os.ModeSymlink != 0 {
		return fmt.Errorf("symlinks not allowed in pack directory: %s", relPath)
	}
	if !fileInfo.Mode().IsRegular() {
		return fmt.Errorf("non-regular file not allowed in pack directory: %s", relPath)
	}
	return nil
}

// parsePackManifest extracts and parses YAML frontmatter from PACK.md content.
func parsePackManifest(content []byte) (*packManifest, error) {
	trimmed := strings.TrimSpace(string(content))

	const delimiter = "---"
	if !strings.HasPrefix(trimmed, delimiter) {
		return nil, fmt.Errorf("PACK.md must start with YAML frontmatter (---)")
	}

	rest := strings.TrimPrefix(trimmed[len(delimiter):], "\n")
	endIdx := strings.Index(rest, delimiter)
	if endIdx == -1 {
		return nil, fmt.Errorf("PACK.md frontmatter missing closing delimiter (---)")
	}

	fmStr := rest[:endIdx]
	if len(fmStr) > maxManifestFrontmatterSize {
		return nil, fmt.Errorf("frontmatter exceeds maximum size of %d bytes", maxManifestFrontmatterSize)
	}

	var manifest packManifest
	if err := yaml.Unmarshal([]byte(fmStr), &manifest); err != nil {
		return nil, fmt.Errorf("parsing frontmatter YAML: %w", err)
	}

	return &manifest, nil
}

// createContentLayer creates a reproducible tar.gz of the pack content.
// Returns both compressed and uncompressed bytes (uncompressed needed for diff_id).
func createContentLayer(content *packDirContent, epoch time.Time) (compressed, uncompressed []byte, err error) {
	files := []FileEntry{{Path: "PACK.md", Content: content.packMD}}

	sortedPaths := make([]string, 0, len(content.files))
	for p := range content.files {
		sortedPaths = append(sortedPaths, p)
	}
	slices.Sort(sortedPaths)

	for _, p := range sortedPaths {
		files = append(files, FileEntry{
			Path:    p,
			Content: content.files[p],
		})
	}

	return BuildLayer(files, epoch)
}

// createOCIConfig creates the OCI image config with pack metadata in labels.
func createOCIConfig(content *packDirContent, uncompressedTar []byte, epoch time.Time) (*ocispec.Image, *PackConfig) {
	allFiles := []string{"PACK.md"}
	for p := range content.files {
		allFiles = append(allFiles, p)
	}
	slices.Sort(allFiles)

	packConfig := &PackConfig{
		Name:        content.manifest.Name,
		Description: content.manifest.Description,
		Version:     content.manifest.Version,
		License:     content.manifest.License,
		Roles:       content.manifest.Roles,
		Metadata:    content.manifest.Metadata,
		Files:       allFiles,
	}

	// Encode arrays as JSON for labels
	rolesJSON, _ := json.Marshal(packConfig.Roles)
	filesJSON, _ := json.Marshal(packConfig.Files)

	created := epoch
	ociConfig := &ocispec.Image{
		Created: &created,
		Config: ocispec.ImageConfig{
			Labels: map[string]string{
				LabelPackName:        packConfig.Name,
				LabelPackDescription: packConfig.Description,
				LabelPackVersion:     packConfig.Version,
				LabelPackLicense:     packConfig.License,
				LabelPackRoles:       string(rolesJSON),
				LabelPackFiles:       string(filesJSON),
			},
		},
		RootFS: ocispec.RootFS{
			Type:    "layers",
			DiffIDs: []digest.Digest{digest.FromBytes(uncompressedTar)},
		},
		History: []ocispec.History{
			{
				Created:   &created,
				CreatedBy: "pipewright pack build",
			},
		},
	}

	return ociConfig, packConfig
}

// createManifest creates the OCI manifest for a pack artifact.
func createManifest(
	configBytes []byte,
	configDigest digest.Digest,
	layerBytes []byte,
	layerDigest digest.Digest,
	manifest *packManifest,
	epoch time.Time,
) *ocispec.Manifest {
	return &ocispec.Manifest{
		Versioned:    specs.Versioned{SchemaVersion: 2},
		MediaType:    ocispec.MediaTypeImageManifest,
		ArtifactType: ArtifactTypePack,
		Config: ocispec.Descriptor{
			MediaType: ocispec.MediaTypeImageConfig,
			Digest:    configDigest,
			Size:      int64(len(configBytes)),
		},
		Layers: []ocispec.Descriptor{
			{
				MediaType: ocispec.MediaTypeImageLayerGzip,
				Digest:    layerDigest,
				Size:      int64(len(layerBytes)),
			},
		},
		Annotations: map[string]string{
			ocispec.AnnotationCreated: epoch.Format(time.RFC3339),
			AnnotationPackName:        manifest.Name,
			AnnotationPackDescription: manifest.Description,
			AnnotationPackVersion:     manifest.Version,
		},
	}
}
