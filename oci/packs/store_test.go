// SPDX-FileCopyrightText: Copyright 2026 Pipewright Authors
// SPDX-License-Identifier: Apache-2.0

package packs

import (
	"encoding/json"
	"path/filepath"
	"testing"

	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStore(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	store, err := NewStore(root)
	require.NoError(t, err)
	assert.Equal(t, root, store.Root())

	// An OCI image layout is initialized on creation.
	assert.FileExists(t, filepath.Join(root, "oci-layout"))
	assert.FileExists(t, filepath.Join(root, "index.json"))
}

func TestStoreRoot(t *testing.T) {
	t.Parallel()

	assert.Equal(t, filepath.Join("/data", "pipewright", "packs"), StoreRoot("/data"))
	assert.NotEmpty(t, DefaultStoreRoot())
}

func TestStore_BlobRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := t.Context()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	content := []byte("pack layer content")
	d, err := store.PutBlob(ctx, content)
	require.NoError(t, err)

	// Storing the same blob twice is idempotent.
	again, err := store.PutBlob(ctx, content)
	require.NoError(t, err)
	assert.Equal(t, d, again)

	got, err := store.GetBlob(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestStore_GetBlob_NotFound(t *testing.T) {
	t.Parallel()
	ctx := t.Context()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.GetBlob(ctx, "sha256:e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blob not found")
}

func TestStore_ManifestTagResolve(t *testing.T) {
	t.Parallel()
	ctx := t.Context()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	manifest := ocispec.Manifest{
		MediaType:    ocispec.MediaTypeImageManifest,
		ArtifactType: ArtifactTypePack,
	}
	manifestBytes, err := json.Marshal(manifest)
	require.NoError(t, err)

	d, err := store.PutManifest(ctx, manifestBytes)
	require.NoError(t, err)

	got, err := store.GetManifest(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, ArtifactTypePack, got.ArtifactType)

	require.NoError(t, store.Tag(ctx, d, "example.com/org/pack:v1"))

	resolved, err := store.Resolve(ctx, "example.com/org/pack:v1")
	require.NoError(t, err)
	assert.Equal(t, d, resolved)

	tags, err := store.ListTags(ctx)
	require.NoError(t, err)
	assert.Contains(t, tags, "example.com/org/pack:v1")
}

func TestStore_Resolve_UnknownTag(t *testing.T) {
	t.Parallel()
	ctx := t.Context()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Resolve(ctx, "example.com/org/pack:nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tag not found")
}
