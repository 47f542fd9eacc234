/*
Package ncalc evaluates NCalc-style expressions: arithmetic over a numeric
tower of integers, floats, decimals and big integers, comparisons, string
and date operations, lists, percent arithmetic and host-supplied
parameters and functions.

# Overview

An Expression binds a text to an option bag, parameters and host
functions. The text is parsed once, on first use, into a tree from the ast
package; each evaluation walks that tree with the eval package.

	e := ncalc.New("Round(price * (1 + rate), 2)",
	    ncalc.WithFlags(options.DecimalAsDefault),
	    ncalc.WithParameters(map[string]any{"price": 19.99, "rate": 0.2}),
	)
	v, err := e.Evaluate()

Parsed trees are cached by text and options and shared between
expressions. Set options.NoCache to parse every expression afresh.

# Host Functions and Handlers

Host functions receive their arguments unevaluated and force the ones they
need:

	e.RegisterFunction("twice", func(ctx context.Context, call *eval.Call) (any, error) {
	    v, err := call.Eval(ctx, 0)
	    if err != nil {
	        return nil, err
	    }
	    return numeric.Multiply(v, int32(2), numeric.Options{})
	})

WithParameterHandler, WithFunctionHandler, WithUpdateHandler and
WithMatchHandler install callbacks that may answer a lookup, veto an
assignment or decide a like comparison.

# Sessions

A Session evaluates a series of expressions in which @ refers to the
previous result. Results are kept in a results.Store: MemoryStore for a
single process or SQLiteStore to persist them.

	store, err := results.NewSQLiteStore("results.db")
	s := ncalc.NewSession(store)
	s.Evaluate(ctx, "10 * 3")
	s.Evaluate(ctx, "@ / 4") // float64(7.5)

# Observability

WithLogger, WithMetrics and WithSpans enable slog logging, OpenTelemetry
metrics and OpenTelemetry spans for parsing and evaluation.

# Errors

Parse and evaluation errors are returned wrapped in an ExpressionError that
carries the text. The typed errors of the errors package are reachable with
errors.As, and errors.Categorize sorts them into categories.
*/
package ncalc
