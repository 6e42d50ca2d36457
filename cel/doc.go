// SPDX-FileCopyrightText: Copyright 2026 Pipewright Authors
// SPDX-License-Identifier: Apache-2.0

/*
Package cel evaluates catalog lint rules, written in CEL, against parsed
CI configuration documents.

Every rule sees the document through the ConfigVar ("config") map variable:

	engine := cel.NewEngine()

	rule, err := engine.Compile(`has(config.stages) ? config.stages.size() > 0 : true`)
	if err != nil {
	    // handle compilation error
	}

	ok, err := rule.EvaluateBool(map[string]any{"stages": []any{"build"}})
	// ok == true

Check validates a rule without building a program; catalog loading uses it
to vet every rule up front:

	err := engine.Check(`config.steps.size() > 0`)

Compilation failures are *ExpressionError values carrying the rule source
and per-issue line and column positions:

	_, err := engine.Compile(`config.steps[`)
	var exprErr *cel.ExpressionError
	if errors.As(err, &exprErr) {
	    fmt.Println(exprErr.AsJSON())
	}

The engine caches compiled rules by source and bounds both expression
length and evaluation cost, since catalogs may be fetched from remote URLs.
Engine and CompiledExpression are safe for concurrent use.
*/
package cel
