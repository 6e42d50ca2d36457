// SPDX-FileCopyrightText: Copyright 2026 Pipewright Authors
// SPDX-License-Identifier: Apache-2.0

package platforms

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/pipewright/pipewright-core/cel"
	vhttp "github.com/pipewright/pipewright-core/validation/http"
	"github.com/pipewright/pipewright-core/validation/name"
)

//go:embed data/catalog.schema.json
var embeddedSchemaFS embed.FS

// Updates to the catalog structure should be reflected in the JSON schema at
// platforms/data/catalog.schema.json. The embedded catalog.json is validated
// against the schema during tests.

// Validate validates the Catalog against the catalog schema and then applies
// the semantic checks the schema cannot express (name rules, docs URLs).
func (c *Catalog) Validate() error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to serialize catalog: %w", err)
	}
	if err := validateAgainstSchema(data, "data/catalog.schema.json", "catalog schema validation failed"); err != nil {
		return err
	}
	return c.validateSemantics()
}

// ValidateCatalogBytes validates raw catalog JSON bytes against the catalog schema.
func ValidateCatalogBytes(catalogData []byte) error {
	return validateAgainstSchema(catalogData, "data/catalog.schema.json", "catalog schema validation failed")
}

// validateSemantics applies checks beyond the JSON schema: platform keys and
// rule IDs must satisfy the shared naming rules, docs URLs must be valid,
// and every lint rule expression must compile. Vetting rules here means a
// bad rule in a remote catalog surfaces at load time, not mid-validation.
func (c *Catalog) validateSemantics() error {
	engine := cel.NewEngine()

	var msgs []string
	for _, key := range c.Keys() {
		p := c.Platforms[key]
		if err := name.Validate(key); err != nil {
			msgs = append(msgs, fmt.Sprintf("platform %q: %s", key, err))
		}
		if p.DocsURL != "" {
			if err := vhttp.ValidateCatalogURL(p.DocsURL); err != nil {
				msgs = append(msgs, fmt.Sprintf("platform %q docs_url: %s", key, err))
			}
		}
		for _, rule := range p.Rules {
			if err := name.Validate(rule.ID); err != nil {
				msgs = append(msgs, fmt.Sprintf("platform %q rule %q: %s", key, rule.ID, err))
			}
			if err := engine.Check(rule.Expression); err != nil {
				msgs = append(msgs, fmt.Sprintf("platform %q rule %q: %s", key, rule.ID, err))
			}
		}
	}
	return formatNumberedErrors("catalog validation failed", msgs)
}

// validateAgainstSchema validates data against a named embedded schema file.
func validateAgainstSchema(data []byte, schemaFile, errPrefix string) error {
	schemaData, err := embeddedSchemaFS.ReadFile(schemaFile)
	if err != nil {
		return fmt.Errorf("failed to read embedded schema %s: %w", schemaFile, err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaData),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("%s: %w", errPrefix, err)
	}

	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, desc.String())
	}
	return formatNumberedErrors(errPrefix, msgs)
}

// formatNumberedErrors formats a list of messages as a single error with a numbered list.
func formatNumberedErrors(prefix string, msgs []string) error {
	if len(msgs) == 0 {
		return nil
	}
	if len(msgs) == 1 {
		return fmt.Errorf("%s: %s", prefix, msgs[0])
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s with %d errors:\n", prefix, len(msgs))
	for i, msg := range msgs {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, msg)
	}
	return errors.New(strings.TrimSuffix(b.String(), "\n"))
}
