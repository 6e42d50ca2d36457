// SPDX-FileCopyrightText: Copyright 2026 Pipewright Authors
// SPDX-License-Identifier: Apache-2.0

/*
Package name provides validation functions for prompt, pack, and platform names.

Names identify entries in the platform catalog, the prompt library, and the
local pack store. This package ensures they follow one consistent convention
so that a name is always safe to use as a file name, a URL path segment, or
an OCI annotation value.

# Name Validation

Validate names against the naming rules:

	if err := name.Validate("backend-engineer"); err != nil {
		// Handle invalid name
	}

Valid names must:
  - Be non-empty (not just whitespace)
  - Contain only lowercase alphanumeric characters, underscores, and dashes
  - Start with an alphanumeric character and not end with a separator
  - Not contain null bytes or consecutive separators
  - Not exceed 128 characters

# Examples

Valid names:

	"gitlab-ci"
	"backend_engineer"
	"tekton2"

Invalid names:

	""                  // empty
	"GitLab-CI"         // uppercase
	"gitlab ci"         // space
	"-gitlab"           // leading separator
	"gitlab--ci"        // consecutive separators
*/
package name
