// SPDX-FileCopyrightText: Copyright 2026 Pipewright Authors
// SPDX-License-Identifier: Apache-2.0

// Package checks validates CI/CD configuration files against the
// requirements the platform catalog declares for each platform: syntax,
// required keys, required tokens, lint rules, and image references.
package checks

// Status is the outcome of a single check.
type Status string

// Check outcomes, ordered from best to worst.
const (
	StatusPass Status = "pass"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
)

// Finding is the result of one check against one config file.
type Finding struct {
	// CheckID identifies the check, e.g. "yaml-syntax", "required-key:stages",
	// or a catalog rule ID.
	CheckID string `json:"check_id"`
	Status  Status `json:"status"`
	Message string `json:"message"`
}

// Report collects the findings for one config file.
type Report struct {
	PlatformKey  string    `json:"platform"`
	PlatformName string    `json:"platform_name"`
	ConfigPath   string    `json:"config_path"`
	Findings     []Finding `json:"findings"`
}

func (r *Report) add(id string, status Status, message string) {
	r.Findings = append(r.Findings, Finding{CheckID: id, Status: status, Message: message})
}

func (r *Report) count(status Status) int {
	n := 0
	for _, f := range r.Findings {
		if f.Status == status {
			n++
		}
	}
	return n
}

// Passed returns the number of passing findings.
func (r *Report) Passed() int { return r.count(StatusPass) }

// Warnings returns the number of warning findings.
func (r *Report) Warnings() int { return r.count(StatusWarn) }

// Failures returns the number of failing findings.
func (r *Report) Failures() int { return r.count(StatusFail) }

// OK reports whether the config passed validation. Warnings do not fail a
// report, only failures do.
func (r *Report) OK() bool { return r.Failures() == 0 }
