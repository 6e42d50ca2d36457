// SPDX-FileCopyrightText: Copyright 2026 Pipewright Authors
// SPDX-License-Identifier: Apache-2.0

package platforms

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

//go:embed data/catalog.json
var embeddedCatalogFS embed.FS

var (
	embeddedOnce    sync.Once
	embeddedCatalog *Catalog
	embeddedErr     error
)

// Load returns the embedded platform catalog. The catalog is parsed and
// schema-validated once; subsequent calls return the cached instance.
func Load() (*Catalog, error) {
	embeddedOnce.Do(func() {
		data, err := embeddedCatalogFS.ReadFile("data/catalog.json")
		if err != nil {
			embeddedErr = fmt.Errorf("reading embedded catalog: %w", err)
			return
		}
		embeddedCatalog, embeddedErr = parseCatalog(data)
	})
	return embeddedCatalog, embeddedErr
}

// LoadFile parses and validates a catalog from a JSON file on disk. This is
// how an organization substitutes its own platform catalog for the embedded
// one.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}
	return parseCatalog(data)
}

// parseCatalog unmarshals raw catalog JSON after checking it against the
// schema, then applies the semantic checks (naming, URLs, rule compilation).
func parseCatalog(data []byte) (*Catalog, error) {
	if err := ValidateCatalogBytes(data); err != nil {
		return nil, err
	}

	var catalog Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parsing catalog JSON: %w", err)
	}

	for key, p := range catalog.Platforms {
		if p.Key == "" {
			p.Key = key
		}
	}

	if err := catalog.validateSemantics(); err != nil {
		return nil, err
	}

	return &catalog, nil
}

// Detect inspects a directory for known platform config files and returns
// the matching platforms in catalog key order. Multiple platforms can match
// when a repository carries more than one CI config.
func (c *Catalog) Detect(dir string) []*Platform {
	var matches []*Platform
	for _, p := range c.All() {
		candidate := filepath.Join(dir, filepath.FromSlash(p.ConfigFile))
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			matches = append(matches, p)
		}
	}
	return matches
}
