// Package eval evaluates expression trees produced by the parser.
//
// An Evaluator walks an ast.Expr against a Context: the parameter tables,
// host functions and handlers of one evaluation. The walk is recursive and
// lazy. Each operand is evaluated only when its operator needs it, so
// And, Or, the ternary operator and the built-in if skip the branches they
// do not select. Function arguments reach the callee unevaluated.
//
// There is a single evaluator for blocking and cancellable use. The
// context.Context passed to Evaluate is checked at the start of every
// binary operation and between list items, and it is handed to every
// handler and host function. A cancelled context surfaces as an
// errors.CancellationError.
//
// Basic usage:
//
//	root, err := parser.Parse("a * 2 + Abs(b)", options.Default())
//	if err != nil {
//	    return err
//	}
//	c := eval.NewContext(options.Default())
//	c.Parameters["a"] = 21
//	c.Parameters["b"] = -3
//	v, err := eval.Evaluate(ctx, root, c) // float64(45)
package eval
