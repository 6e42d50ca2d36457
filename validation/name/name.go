// SPDX-FileCopyrightText: Copyright 2026 Pipewright Authors
// SPDX-License-Identifier: Apache-2.0

// Package name provides validation functions for prompt, pack, and platform names.
package name

import (
	"fmt"
	"regexp"
	"strings"
)

// maxNameLength bounds names so they stay usable as file names, OCI
// annotation values, and URL path segments.
const maxNameLength = 128

var validNameRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9_\-]*$`)

// Validate validates that a name only contains allowed characters:
// lowercase alphanumeric, underscore, and dash, starting with an
// alphanumeric. Names are used as catalog keys, embedded file names, and
// OCI annotation values, so anything looser invites trouble downstream.
func Validate(name string) error {
	if name == "" || strings.TrimSpace(name) == "" {
		return fmt.Errorf("name cannot be empty or consist only of whitespace")
	}

	if strings.Contains(name, "\x00") {
		return fmt.Errorf("name cannot contain null bytes")
	}

	if len(name) > maxNameLength {
		return fmt.Errorf("name exceeds maximum length of %d characters", maxNameLength)
	}

	if name != strings.ToLower(name) {
		return fmt.Errorf("name must be lowercase: %q", name)
	}

	if !validNameRegex.MatchString(name) {
		return fmt.Errorf("name can only contain lowercase alphanumeric characters, underscores, and dashes, and must start with an alphanumeric: %q", name)
	}

	if strings.HasSuffix(name, "-") || strings.HasSuffix(name, "_") {
		return fmt.Errorf("name cannot end with a dash or underscore: %q", name)
	}

	if strings.Contains(name, "--") || strings.Contains(name, "__") {
		return fmt.Errorf("name cannot contain consecutive dashes or underscores: %q", name)
	}

	return nil
}
