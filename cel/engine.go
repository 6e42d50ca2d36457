// SPDX-FileCopyrightText: Copyright 2026 Pipewright Authors
// SPDX-License-Identifier: Apache-2.0

package cel

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
)

// ConfigVar is the name of the variable through which rule expressions see
// the parsed configuration document.
const ConfigVar = "config"

const (
	// DefaultMaxExpressionLength caps the length of a rule expression.
	// Catalogs can be loaded from remote URLs, so oversized expressions
	// are rejected before they reach the parser.
	DefaultMaxExpressionLength = 10000

	// DefaultCostLimit caps the runtime cost of evaluating one rule
	// against one document.
	DefaultCostLimit = 1000000
)

// Engine compiles and evaluates lint rules against parsed configuration
// documents. Every rule sees the document as the ConfigVar map variable.
// Compiled rules are cached by source, so re-validating a file (watch mode,
// the HTTP API) does not recompile the catalog. An Engine is safe for
// concurrent use.
type Engine struct {
	maxExpressionLength int
	costLimit           uint64
	extraEnvOptions     []cel.EnvOption

	envOnce sync.Once
	env     *cel.Env
	envErr  error

	mu    sync.Mutex
	rules map[string]*CompiledExpression
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxExpressionLength overrides the maximum rule expression length.
func WithMaxExpressionLength(maxLen int) Option {
	return func(e *Engine) {
		e.maxExpressionLength = maxLen
	}
}

// WithCostLimit overrides the runtime cost limit for rule evaluation.
func WithCostLimit(limit uint64) Option {
	return func(e *Engine) {
		e.costLimit = limit
	}
}

// WithEnvOptions adds CEL environment options beyond the ConfigVar
// declaration, for callers that expose extra variables or functions.
func WithEnvOptions(options ...cel.EnvOption) Option {
	return func(e *Engine) {
		e.extraEnvOptions = append(e.extraEnvOptions, options...)
	}
}

// NewEngine creates an Engine. The ConfigVar variable is always declared as
// a map of string to dyn; rules index into it with has() and dot paths.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		maxExpressionLength: DefaultMaxExpressionLength,
		costLimit:           DefaultCostLimit,
		rules:               make(map[string]*CompiledExpression),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// environment builds the CEL env on first use. Building it is not free and
// many commands never evaluate a rule at all.
func (e *Engine) environment() (*cel.Env, error) {
	e.envOnce.Do(func() {
		options := append([]cel.EnvOption{
			cel.Variable(ConfigVar, cel.MapType(cel.StringType, cel.DynType)),
		}, e.extraEnvOptions...)
		e.env, e.envErr = cel.NewEnv(options...)
	})
	return e.env, e.envErr
}

// Compile compiles a rule expression, returning the cached program when the
// same source has been compiled before. A failed parse or type-check is
// returned as an ExpressionError with line and column details for catalog
// authors.
func (e *Engine) Compile(expr string) (*CompiledExpression, error) {
	e.mu.Lock()
	cached, ok := e.rules[expr]
	e.mu.Unlock()
	if ok {
		return cached, nil
	}

	compiled, err := e.compile(expr)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.rules[expr] = compiled
	e.mu.Unlock()
	return compiled, nil
}

func (e *Engine) compile(expr string) (*CompiledExpression, error) {
	ast, env, err := e.checkExpression(expr)
	if err != nil {
		return nil, err
	}

	program, err := env.Program(ast, cel.CostLimit(e.costLimit))
	if err != nil {
		return nil, fmt.Errorf("creating program for rule %q: %w", expr, err)
	}

	return &CompiledExpression{source: expr, program: program}, nil
}

// Check verifies that a rule expression parses and type-checks without
// building a program. Catalog loading uses this to vet every rule before
// any config file is evaluated.
func (e *Engine) Check(expr string) error {
	_, _, err := e.checkExpression(expr)
	return err
}

func (e *Engine) checkExpression(expr string) (*cel.Ast, *cel.Env, error) {
	if len(expr) > e.maxExpressionLength {
		return nil, nil, fmt.Errorf("%w: expression length %d exceeds maximum of %d",
			ErrExpressionCheck, len(expr), e.maxExpressionLength)
	}

	env, err := e.environment()
	if err != nil {
		return nil, nil, fmt.Errorf("building CEL environment: %w", err)
	}

	ast, issues := env.Parse(expr)
	if issues.Err() != nil {
		return nil, nil, newExpressionError(ErrKindParse, expr, issues)
	}

	checked, issues := env.Check(ast)
	if issues.Err() != nil {
		return nil, nil, newExpressionError(ErrKindCheck, expr, issues)
	}

	return checked, env, nil
}

// CompiledExpression is a compiled rule ready for evaluation. It is safe
// for concurrent use.
type CompiledExpression struct {
	source  string
	program cel.Program
}

// Source returns the rule's original expression text.
func (ce *CompiledExpression) Source() string {
	return ce.source
}

// Evaluate runs the rule against a parsed configuration document and
// returns the raw result.
func (ce *CompiledExpression) Evaluate(doc map[string]any) (any, error) {
	out, _, err := ce.program.Eval(map[string]any{ConfigVar: doc})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrEvaluation, err)
	}
	return out.Value(), nil
}

// EvaluateBool runs the rule against a parsed configuration document. Lint
// rules must produce a boolean; anything else is an ErrInvalidResult.
func (ce *CompiledExpression) EvaluateBool(doc map[string]any) (bool, error) {
	result, err := ce.Evaluate(doc)
	if err != nil {
		return false, err
	}

	ok, isBool := result.(bool)
	if !isBool {
		return false, fmt.Errorf("%w: expected bool, got %T", ErrInvalidResult, result)
	}
	return ok, nil
}
