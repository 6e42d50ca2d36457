// SPDX-FileCopyrightText: Copyright 2026 Pipewright Authors
// SPDX-License-Identifier: Apache-2.0

/*
Package platforms contains the CI/CD platform catalog for pipewright.

The catalog describes each supported platform: its conventional config file,
the top-level keys a valid config must carry, lint rules expressed as CEL
expressions, and reference material (vendor, runner, documentation URL, key
features). The checks and scaffold packages drive their behavior entirely
from this data; adding a platform means adding a catalog entry and a starter
template, not writing code.

# Loading

The default catalog ships embedded in the binary:

	catalog, err := platforms.Load()
	p := catalog.Get("gitlab-ci")

Organizations can substitute their own catalog from disk or a remote
endpoint:

	catalog, err := platforms.LoadFile("/etc/pipewright/catalog.json")

	fetcher := platforms.NewFetcher(platforms.WithHeader("Authorization", token))
	catalog, err := fetcher.Fetch(ctx, "https://ci.corp.example/catalog.json")

# Validation

Catalogs are validated against the JSON schema embedded alongside the data
before use, in both the embedded and external loading paths. The embedded
catalog is additionally validated in this package's tests, so a schema drift
breaks the build rather than a user's invocation.

# Detection

Detect reports which platforms a repository is configured for, by checking
the catalog's config file paths against the directory:

	matches := catalog.Detect(".")
*/
package platforms
