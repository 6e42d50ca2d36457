// SPDX-FileCopyrightText: Copyright 2026 Pipewright Authors
// SPDX-License-Identifier: Apache-2.0

/*
Package http provides validation functions for HTTP headers and URLs.

The remote catalog fetcher attaches caller-supplied headers to outbound
requests and follows caller-supplied URLs; both are validated here first so
that CRLF injection and malformed locations are rejected before any network
traffic happens. The platform catalog also validates its documentation URLs
with this package at load time.

# Header Validation

Validate HTTP headers per RFC 7230 using the same httpguts routines as Go's
HTTP/2 implementation:

	if err := http.ValidateHeaderName("X-API-Key"); err != nil {
		// reject
	}
	if err := http.ValidateHeaderValue(value); err != nil {
		// reject
	}

# URL Validation

Validate catalog and documentation URLs:

	if err := http.ValidateCatalogURL("https://example.com/catalog.json"); err != nil {
		// reject
	}
*/
package http
