// SPDX-FileCopyrightText: Copyright 2026 Pipewright Authors
// SPDX-License-Identifier: Apache-2.0

package checks

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pipewright/pipewright-core/cel"
	"github.com/pipewright/pipewright-core/platforms"
)

// Runner validates config files against the platform catalog. A Runner is
// safe for concurrent use; its CEL environment is built lazily on first rule
// evaluation.
type Runner struct {
	engine *cel.Engine
}

// NewRunner creates a Runner with a fresh rule engine.
func NewRunner() *Runner {
	return &Runner{engine: cel.NewEngine()}
}

// ValidateFile runs every check the catalog declares for the platform against
// the config file at path. A missing or unreadable file is an error, not a
// finding; everything after that is reported through the Report.
func (r *Runner) ValidateFile(platform *platforms.Platform, path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return r.Validate(platform, path, data)
}

// Validate runs the platform's checks against raw config content.
func (r *Runner) Validate(platform *platforms.Platform, path string, data []byte) (*Report, error) {
	if platform == nil {
		return nil, fmt.Errorf("platform is required")
	}

	report := &Report{
		PlatformKey:  platform.Key,
		PlatformName: platform.Name,
		ConfigPath:   path,
	}

	switch platform.Format {
	case platforms.FormatYAML:
		r.validateYAML(platform, data, report)
	case platforms.FormatGroovy:
		validateTokens(platform, data, report)
	default:
		return nil, fmt.Errorf("unsupported config format %q", platform.Format)
	}

	return report, nil
}

// validateYAML parses the document and, if the syntax gate passes, runs the
// key, rule, and image checks against it.
func (r *Runner) validateYAML(platform *platforms.Platform, data []byte, report *Report) {
	doc, err := parseYAMLDocument(data)
	if err != nil {
		report.add("yaml-syntax", StatusFail, fmt.Sprintf("invalid YAML: %s", err))
		return
	}
	report.add("yaml-syntax", StatusPass, "valid YAML syntax")

	for _, key := range platform.RequiredKeys {
		id := "required-key:" + key
		if _, ok := lookupPath(doc, key); ok {
			report.add(id, StatusPass, fmt.Sprintf("required key %q present", key))
		} else {
			report.add(id, StatusFail, fmt.Sprintf("required key %q missing", key))
		}
	}

	r.evaluateRules(platform, doc, report)
	checkImageReferences(doc, report)
}

// validateTokens handles non-YAML formats such as a Jenkinsfile, where the
// catalog declares required tokens rather than structured keys.
func validateTokens(platform *platforms.Platform, data []byte, report *Report) {
	content := string(data)
	if strings.TrimSpace(content) == "" {
		report.add("content", StatusFail, "config file is empty")
		return
	}
	report.add("content", StatusPass, "config file is non-empty")

	for _, token := range platform.RequiredTokens {
		id := "required-token:" + token
		if strings.Contains(content, token) {
			report.add(id, StatusPass, fmt.Sprintf("required token %q present", token))
		} else {
			report.add(id, StatusFail, fmt.Sprintf("required token %q missing", token))
		}
	}
}

// evaluateRules compiles and runs the platform's catalog lint rules. A rule
// that fails to compile or evaluate is reported as a failure rather than
// aborting the run; one bad rule should not mask the remaining findings.
func (r *Runner) evaluateRules(platform *platforms.Platform, doc map[string]any, report *Report) {
	for _, rule := range platform.Rules {
		compiled, err := r.engine.Compile(rule.Expression)
		if err != nil {
			report.add(rule.ID, StatusFail, fmt.Sprintf("rule failed to compile: %s", err))
			continue
		}

		ok, err := compiled.EvaluateBool(doc)
		if err != nil {
			report.add(rule.ID, StatusFail, fmt.Sprintf("rule failed to evaluate: %s", err))
			continue
		}

		if ok {
			report.add(rule.ID, StatusPass, rule.Description)
			continue
		}
		status := StatusFail
		if rule.Severity == platforms.SeverityWarning {
			status = StatusWarn
		}
		report.add(rule.ID, status, rule.Description)
	}
}

// parseYAMLDocument unmarshals data into a string-keyed document. A scalar or
// sequence at the top level is rejected; every supported platform config is a
// mapping.
func parseYAMLDocument(data []byte) (map[string]any, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return doc, nil
}

// lookupPath resolves a dotted key path such as "spec.tasks" against a parsed
// document. Path segments index into nested mappings only; there is no array
// indexing.
func lookupPath(doc map[string]any, path string) (any, bool) {
	var current any = doc
	for _, segment := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[segment]
		if !ok {
			return nil, false
		}
	}
	return current, true
}
