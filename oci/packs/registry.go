// SPDX-FileCopyrightText: Copyright 2026 Pipewright Authors
// SPDX-License-Identifier: Apache-2.0

package packs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"oras.land/oras-go/v2"
	"oras.land/oras-go/v2/registry"
	"oras.land/oras-go/v2/registry/remote"
	"oras.land/oras-go/v2/registry/remote/auth"
	"oras.land/oras-go/v2/registry/remote/credentials"
)

// MaxManifestSize is the maximum size of a manifest (1MB).
const MaxManifestSize int64 = 1 * 1024 * 1024

// MaxBlobSize is the maximum size of a blob (100MB).
const MaxBlobSize int64 = 100 * 1024 * 1024

// Compile-time interface checks.
var (
	_ RegistryClient = (*Registry)(nil)
	_ oras.Target    = (*guardedTarget)(nil)
)

// Registry pushes and pulls prompt packs between a local Store and remote
// OCI registries.
type Registry struct {
	credStore credentials.Store
	plainHTTP bool

	// newTarget creates an oras.Target for the given reference.
	// Defaults to creating an authenticated remote.Repository.
	// Override in tests to inject an in-memory store.
	newTarget func(ref registry.Reference) (oras.Target, error)
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithPlainHTTP configures whether the registry client uses plain HTTP (insecure) connections.
func WithPlainHTTP(enabled bool) RegistryOption {
	return func(r *Registry) {
		r.plainHTTP = enabled
	}
}

// WithCredentialStore sets a custom credential store for registry authentication.
// If not provided, the default Docker credential store is used.
func WithCredentialStore(store credentials.Store) RegistryOption {
	return func(r *Registry) {
		r.credStore = store
	}
}

// NewRegistry creates a new registry client with the given options.
// By default it uses the Docker credential store for authentication.
func NewRegistry(opts ...RegistryOption) (*Registry, error) {
	r := &Registry{}

	for _, opt := range opts {
		opt(r)
	}

	if r.credStore == nil {
		credStore, err := credentials.NewStoreFromDocker(credentials.StoreOptions{})
		if err != nil {
			return nil, fmt.Errorf("creating credential store: %w", err)
		}
		r.credStore = credStore
	}

	if r.newTarget == nil {
		r.newTarget = r.defaultNewTarget
	}

	return r, nil
}

// Push copies a pack manifest and its blobs from the local store to a remote
// registry and tags it there.
func (r *Registry) Push(ctx context.Context, store *Store, manifestDigest digest.Digest, ref string) error {
	parsedRef, err := parseReference(ref)
	if err != nil {
		return err
	}

	desc, err := store.Target().Resolve(ctx, manifestDigest.String())
	if err != nil {
		return fmt.Errorf("resolving pack manifest: %w", err)
	}

	target, err := r.newTarget(parsedRef)
	if err != nil {
		return fmt.Errorf("getting repository: %w", err)
	}

	if err := oras.CopyGraph(ctx, store.Target(), target, desc, oras.DefaultCopyGraphOptions); err != nil {
		return fmt.Errorf("pushing to registry: %w", err)
	}

	if err := target.Tag(ctx, desc, parsedRef.Reference); err != nil {
		return fmt.Errorf("tagging remote: %w", err)
	}

	return nil
}

// Pull copies a pack from a remote registry into the local store and returns
// the pulled manifest digest. Everything the remote sends passes through a
// guarded target that checks sizes, digests, and pack shape before it is
// written locally.
func (r *Registry) Pull(ctx context.Context, store *Store, ref string) (digest.Digest, error) {
	parsedRef, err := parseReference(ref)
	if err != nil {
		return "", err
	}

	target, err := r.newTarget(parsedRef)
	if err != nil {
		return "", fmt.Errorf("getting repository: %w", err)
	}

	guarded := &guardedTarget{inner: store.Target()}
	desc, err := oras.Copy(
		ctx, target, parsedRef.Reference, guarded, parsedRef.Reference, oras.DefaultCopyOptions,
	)
	if err != nil {
		return "", fmt.Errorf("pulling from registry: %w", err)
	}

	// oras.Copy tags with the short reference (e.g. "v1.0.0"); also tag with
	// the full OCI reference so local lookups by REF work.
	if err := store.Tag(ctx, desc.Digest, ref); err != nil {
		return "", fmt.Errorf("tagging locally: %w", err)
	}

	return desc.Digest, nil
}

// guardedTarget wraps the local store during pulls. A registry response is
// untrusted input: descriptors can lie about sizes, content can mismatch its
// digest, and a repository tag can point at something that is not a pack.
type guardedTarget struct {
	inner oras.Target
}

// Fetch delegates to the inner target.
func (g *guardedTarget) Fetch(ctx context.Context, target ocispec.Descriptor) (io.ReadCloser, error) {
	return g.inner.Fetch(ctx, target)
}

// Exists delegates to the inner target.
func (g *guardedTarget) Exists(ctx context.Context, target ocispec.Descriptor) (bool, error) {
	return g.inner.Exists(ctx, target)
}

// Resolve delegates to the inner target.
func (g *guardedTarget) Resolve(ctx context.Context, reference string) (ocispec.Descriptor, error) {
	return g.inner.Resolve(ctx, reference)
}

// Tag delegates to the inner target.
func (g *guardedTarget) Tag(ctx context.Context, desc ocispec.Descriptor, reference string) error {
	return g.inner.Tag(ctx, desc, reference)
}

// Push checks the content before admitting it to the local store.
func (g *guardedTarget) Push(ctx context.Context, desc ocispec.Descriptor, content io.Reader) error {
	maxSize := MaxBlobSize
	if isManifestMediaType(desc.MediaType) {
		maxSize = MaxManifestSize
	}

	if desc.Size < 0 {
		return fmt.Errorf("invalid negative content size %d", desc.Size)
	}
	if desc.Size > maxSize {
		return fmt.Errorf(
			"content size %d exceeds maximum allowed size %d for media type %q",
			desc.Size, maxSize, desc.MediaType,
		)
	}

	// Read with a limit in case the descriptor understates the size.
	data, err := io.ReadAll(io.LimitReader(content, maxSize+1))
	if err != nil {
		return fmt.Errorf("reading content: %w", err)
	}
	if int64(len(data)) > maxSize {
		return fmt.Errorf(
			"actual content size exceeds maximum allowed size %d for media type %q",
			maxSize, desc.MediaType,
		)
	}

	if actual := digest.FromBytes(data); actual != desc.Digest {
		return fmt.Errorf("digest mismatch: expected %s, got %s", desc.Digest, actual)
	}

	if err := checkPackShape(desc.MediaType, data); err != nil {
		return err
	}

	return g.inner.Push(ctx, desc, bytes.NewReader(data))
}

// checkPackShape rejects manifests that do not look like packs. A pack is a
// single image manifest with exactly one content layer; multi-platform
// indexes have no meaning for prompt text and are refused outright.
func checkPackShape(mediaType string, data []byte) error {
	switch mediaType {
	case ocispec.MediaTypeImageIndex, "application/vnd.docker.distribution.manifest.list.v2+json":
		return fmt.Errorf("reference points at an image index, not a pack manifest")
	case ocispec.MediaTypeImageManifest:
		var manifest ocispec.Manifest
		if err := json.Unmarshal(data, &manifest); err != nil {
			return fmt.Errorf("parsing manifest: %w", err)
		}
		if len(manifest.Layers) != 1 {
			return fmt.Errorf("pack manifest must have exactly one layer, found %d", len(manifest.Layers))
		}
	}
	return nil
}

// isManifestMediaType returns true if the media type is a manifest or index type.
func isManifestMediaType(mediaType string) bool {
	switch mediaType {
	case ocispec.MediaTypeImageManifest, ocispec.MediaTypeImageIndex,
		"application/vnd.docker.distribution.manifest.v2+json",
		"application/vnd.docker.distribution.manifest.list.v2+json":
		return true
	default:
		return false
	}
}

// parseReference parses an OCI reference and validates it has a tag or digest.
func parseReference(ref string) (registry.Reference, error) {
	parsedRef, err := registry.ParseReference(ref)
	if err != nil {
		return registry.Reference{}, fmt.Errorf("parsing reference %q: %w", ref, err)
	}
	if parsedRef.Reference == "" {
		return registry.Reference{}, fmt.Errorf("reference %q must include a tag or digest", ref)
	}
	return parsedRef, nil
}

// defaultNewTarget creates a remote repository client for the given parsed reference.
func (r *Registry) defaultNewTarget(ref registry.Reference) (oras.Target, error) {
	repoPath := ref.Registry + "/" + ref.Repository

	repo, err := remote.NewRepository(repoPath)
	if err != nil {
		return nil, fmt.Errorf("creating repository for %q: %w", repoPath, err)
	}

	repo.Client = &auth.Client{
		Credential: credentials.Credential(r.credStore),
	}
	repo.PlainHTTP = r.plainHTTP

	return repo, nil
}
