// SPDX-FileCopyrightText: Copyright 2026 Pipewright Authors
// SPDX-License-Identifier: Apache-2.0

package checks

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/go-containerregistry/pkg/name"
)

// maxImageDepth bounds recursion into the parsed document when collecting
// image references.
const maxImageDepth = 16

// checkImageReferences finds container image references in the parsed config
// and validates that each parses as an image reference. Unparseable
// references fail; references pinned only to a floating "latest" tag warn.
func checkImageReferences(doc map[string]any, report *Report) {
	images := map[string]struct{}{}
	collectImages(doc, 0, images)
	if len(images) == 0 {
		return
	}

	sorted := make([]string, 0, len(images))
	for img := range images {
		sorted = append(sorted, img)
	}
	sort.Strings(sorted)

	for _, img := range sorted {
		id := "image-ref:" + img
		ref, err := name.ParseReference(img)
		if err != nil {
			report.add(id, StatusFail, fmt.Sprintf("invalid image reference %q: %s", img, err))
			continue
		}
		if tag, ok := ref.(name.Tag); ok && tag.TagStr() == "latest" {
			report.add(id, StatusWarn, fmt.Sprintf("image %q uses floating tag %q", img, tag.TagStr()))
			continue
		}
		report.add(id, StatusPass, fmt.Sprintf("image reference %q is valid", img))
	}
}

// collectImages walks the document gathering string values stored under an
// "image" key, the convention shared by every YAML-based platform the
// catalog covers.
func collectImages(node any, depth int, out map[string]struct{}) {
	if depth > maxImageDepth {
		return
	}
	switch v := node.(type) {
	case map[string]any:
		for key, child := range v {
			if key == "image" {
				if img, ok := child.(string); ok && strings.TrimSpace(img) != "" {
					out[img] = struct{}{}
					continue
				}
				// Some platforms nest the reference, e.g. image: {name: ...}.
				if m, ok := child.(map[string]any); ok {
					if img, ok := m["name"].(string); ok && strings.TrimSpace(img) != "" {
						out[img] = struct{}{}
						continue
					}
				}
			}
			collectImages(child, depth+1, out)
		}
	case []any:
		for _, child := range v {
			collectImages(child, depth+1, out)
		}
	}
}
