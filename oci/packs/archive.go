// SPDX-FileCopyrightText: Copyright 2026 Pipewright Authors
// SPDX-License-Identifier: Apache-2.0

package packs

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"time"
)

// gzipOSUnknown is the OS value for "unknown" in gzip headers (RFC 1952).
// Using this value keeps archives byte-identical across build hosts.
const gzipOSUnknown = 255

// MaxFileSize is the maximum size of a single extracted file (100MB).
// This prevents decompression bombs.
const MaxFileSize = 100 * 1024 * 1024

// MaxDecompressedSize is the maximum total size of decompressed layer data (100MB).
const MaxDecompressedSize = 100 * 1024 * 1024

// FileEntry represents a file inside a pack content layer.
type FileEntry struct {
	Path    string // Path within the archive
	Content []byte // File content
	Mode    int64  // File mode (defaults to 0644)
}

// BuildLayer creates a reproducible tar.gz content layer from the given
// files. Files are sorted, headers are normalized to the epoch, and the gzip
// header carries no name, comment, or host OS, so identical input always
// produces identical bytes. The uncompressed tar is returned as well because
// the OCI config needs its digest as the layer diff_id.
func BuildLayer(files []FileEntry, epoch time.Time) (compressed, uncompressed []byte, err error) {
	if epoch.IsZero() {
		epoch = time.Unix(0, 0).UTC()
	}

	sorted := make([]FileEntry, len(files))
	copy(sorted, files)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Path < sorted[j].Path
	})

	var tarBuf bytes.Buffer
	tw := tar.NewWriter(&tarBuf)

	for _, f := range sorted {
		mode := f.Mode
		if mode == 0 {
			mode = 0644
		}

		hdr := &tar.Header{
			Name:     f.Path,
			Size:     int64(len(f.Content)),
			Mode:     mode,
			ModTime:  epoch,
			Uid:      0,
			Gid:      0,
			Typeflag: tar.TypeReg,
			Format:   tar.FormatPAX,
		}

		if err := tw.WriteHeader(hdr); err != nil {
			return nil, nil, fmt.Errorf("writing tar header for %s: %w", f.Path, err)
		}
		if _, err := tw.Write(f.Content); err != nil {
			return nil, nil, fmt.Errorf("writing tar content for %s: %w", f.Path, err)
		}
	}

	if err := tw.Close(); err != nil {
		return nil, nil, fmt.Errorf("closing tar writer: %w", err)
	}

	uncompressed = tarBuf.Bytes()

	var gzBuf bytes.Buffer
	gw, err := gzip.NewWriterLevel(&gzBuf, gzip.BestCompression)
	if err != nil {
		return nil, nil, fmt.Errorf("creating gzip writer: %w", err)
	}
	gw.ModTime = epoch
	gw.Name = ""
	gw.Comment = ""
	gw.OS = gzipOSUnknown

	if _, err := gw.Write(uncompressed); err != nil {
		return nil, nil, fmt.Errorf("writing gzip data: %w", err)
	}
	if err := gw.Close(); err != nil {
		return nil, nil, fmt.Errorf("closing gzip writer: %w", err)
	}

	return gzBuf.Bytes(), uncompressed, nil
}

// ExtractLayer decompresses and unpacks a pack content layer. It rejects
// symlinks, hardlinks, device entries, absolute paths, and path traversal,
// and enforces size limits against decompression bombs.
func ExtractLayer(data []byte) ([]FileEntry, error) {
	gr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating gzip reader: %w", err)
	}
	defer func() { _ = gr.Close() }()

	tarData, err := io.ReadAll(io.LimitReader(gr, MaxDecompressedSize+1))
	if err != nil {
		return nil, fmt.Errorf("decompressing layer: %w", err)
	}
	if int64(len(tarData)) > MaxDecompressedSize {
		return nil, fmt.Errorf("decompressed layer exceeds maximum size of %d bytes", int64(MaxDecompressedSize))
	}

	tr := tar.NewReader(bytes.NewReader(tarData))
	var files []FileEntry

	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading tar header: %w", err)
		}

		if err := validateArchivePath(hdr.Name); err != nil {
			return nil, err
		}

		if hdr.Typeflag == tar.TypeDir {
			continue
		}
		if hdr.Typeflag == tar.TypeSymlink || hdr.Typeflag == tar.TypeLink {
			return nil, fmt.Errorf("layer contains disallowed link type: %s", hdr.Name)
		}
		if hdr.Typeflag != tar.TypeReg {
			return nil, fmt.Errorf("layer contains disallowed entry type %d: %s", hdr.Typeflag, hdr.Name)
		}

		if hdr.Size > MaxFileSize {
			return nil, fmt.Errorf("file %s exceeds maximum size of %d bytes", hdr.Name, int64(MaxFileSize))
		}

		content, err := io.ReadAll(io.LimitReader(tr, MaxFileSize+1))
		if err != nil {
			return nil, fmt.Errorf("reading tar content for %s: %w", hdr.Name, err)
		}
		if int64(len(content)) > MaxFileSize {
			return nil, fmt.Errorf("file %s exceeds maximum size of %d bytes", hdr.Name, int64(MaxFileSize))
		}

		files = append(files, FileEntry{
			Path:    hdr.Name,
			Content: content,
			Mode:    hdr.Mode,
		})
	}

	return files, nil
}

// validateArchivePath checks that a tar entry path is safe to extract.
func validateArchivePath(p string) error {
	// path.Clean resolves all ".." segments; any remaining leading ".."
	// means the path escapes the archive root.
	cleaned := path.Clean(p)
	if strings.HasPrefix(cleaned, "..") {
		return fmt.Errorf("path traversal detected in layer: %s", p)
	}
	if path.IsAbs(cleaned) {
		return fmt.Errorf("absolute path not allowed in layer: %s", p)
	}
	return nil
}
