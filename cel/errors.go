// SPDX-FileCopyrightText: Copyright 2026 Pipewright Authors
// SPDX-License-Identifier: Apache-2.0

package cel

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/cel-go/cel"
)

// Sentinel errors for rule compilation and evaluation.
var (
	// ErrExpressionCheck is returned when a rule fails syntax or type checking.
	ErrExpressionCheck = errors.New("rule expression check failed")

	// ErrEvaluation is returned when rule evaluation fails at runtime.
	ErrEvaluation = errors.New("rule evaluation failed")

	// ErrInvalidResult is returned when a rule does not produce a boolean.
	ErrInvalidResult = errors.New("rule returned invalid result type")
)

// ErrKind distinguishes the compilation phase an ExpressionError came from.
type ErrKind string

const (
	// ErrKindParse marks a syntax error.
	ErrKindParse ErrKind = "parse"
	// ErrKindCheck marks a type checking error.
	ErrKindCheck ErrKind = "check"
)

// Issue is one problem the compiler reported, located within the rule source.
type Issue struct {
	Line int    `json:"line,omitempty"`
	Col  int    `json:"col,omitempty"`
	Msg  string `json:"msg,omitempty"`
}

// ExpressionError reports why a rule expression failed to compile. It keeps
// the rule source and per-issue locations so catalog validation output can
// point authors at the exact position.
type ExpressionError struct {
	Kind   ErrKind `json:"kind"`
	Source string  `json:"source"`
	Issues []Issue `json:"issues,omitempty"`

	original error
}

// Error implements the error interface.
func (ee *ExpressionError) Error() string {
	return fmt.Sprintf("rule %s error in %q: %s", ee.Kind, ee.Source, ee.original)
}

// Unwrap returns the underlying compiler error; it wraps ErrExpressionCheck.
func (ee *ExpressionError) Unwrap() error {
	return ee.original
}

// AsJSON renders the error details as JSON for structured log output.
func (ee *ExpressionError) AsJSON() string {
	data, err := json.Marshal(ee)
	if err != nil {
		return fmt.Sprintf(`{"error": "failed to marshal JSON: %s"}`, err)
	}
	return string(data)
}

func newExpressionError(kind ErrKind, source string, issues *cel.Issues) error {
	ee := &ExpressionError{
		Kind:     kind,
		Source:   source,
		Issues:   make([]Issue, 0, len(issues.Errors())),
		original: fmt.Errorf("%w: %w", ErrExpressionCheck, issues.Err()),
	}
	for _, issue := range issues.Errors() {
		ee.Issues = append(ee.Issues, Issue{
			Line: issue.Location.Line(),
			Col:  issue.Location.Column(),
			Msg:  issue.Message,
		})
	}
	return ee
}
