package eval

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/text/collate"

	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/ast"
	ferrors "github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/errors"
	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/numeric"
	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/observability"
	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/options"
)

// Evaluator evaluates trees against one Context. It caches per-evaluation
// state such as collators, so it must not be shared between goroutines.
type Evaluator struct {
	c       *Context
	num     numeric.Options
	percent bool

	collators [2]*collate.Collator
}

// New creates an evaluator for c. A nil context gets empty tables and
// default options.
func New(c *Context) *Evaluator {
	if c == nil {
		c = NewContext(options.Default())
	}
	if c.Parameters == nil {
		c.Parameters = make(map[string]any)
	}
	return &Evaluator{
		c:       c,
		num:     numeric.FromFlags(c.Options.Flags),
		percent: c.Options.HasAdvanced(options.CalculatePercent),
	}
}

// Evaluate evaluates e against c.
func Evaluate(ctx context.Context, e ast.Expr, c *Context) (any, error) {
	return New(c).Evaluate(ctx, e)
}

// EvaluateSync evaluates e against c without a cancellation signal.
func EvaluateSync(e ast.Expr, c *Context) (any, error) {
	return New(c).Evaluate(context.Background(), e)
}

// Context returns the evaluation context.
func (ev *Evaluator) Context() *Context { return ev.c }

// Evaluate evaluates e.
func (ev *Evaluator) Evaluate(ctx context.Context, e ast.Expr) (any, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	return ev.eval(ctx, e)
}

func (ev *Evaluator) eval(ctx context.Context, e ast.Expr) (any, error) {
	switch n := e.(type) {
	case *ast.Value:
		return n.Value, nil
	case *ast.Identifier:
		return ev.identifier(ctx, n)
	case *ast.Group:
		return ev.eval(ctx, n.Inner)
	case *ast.Unary:
		return ev.unary(ctx, n)
	case *ast.Binary:
		return ev.binary(ctx, n)
	case *ast.Ternary:
		return ev.ternary(ctx, n)
	case *ast.Function:
		return ev.function(ctx, n)
	case *ast.List:
		return ev.list(ctx, n)
	case *ast.Percent:
		return ev.percentNode(ctx, n)
	case nil:
		return nil, ferrors.NewEvaluationError(ast.EmptyLocation, "Cannot evaluate an empty expression")
	}
	return nil, ferrors.NewEvaluationError(e.Loc(), "Unsupported expression node %T", e)
}

func checkCancel(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return &ferrors.CancellationError{Err: err}
	}
	return nil
}

// valueOrNull reports whether v takes part in an operation. Null stops
// the operation unless it is treated as zero.
func (ev *Evaluator) valueOrNull(v any) (any, bool) {
	if v != nil {
		return v, true
	}
	if ev.c.Options.Has(options.TreatNullAsZero) {
		return int32(0), true
	}
	return nil, false
}

func (ev *Evaluator) toBool(v any, loc ast.Location) (bool, error) {
	b, err := numeric.ToBool(unwrapPercent(v))
	if err != nil {
		return false, ferrors.NewEvaluationError(loc, "%s", err.Error())
	}
	return b, nil
}

// resolve evaluates values that stand for sub-expressions: trees stored
// as parameters or list items, and Nested values.
func (ev *Evaluator) resolve(ctx context.Context, v any) (any, error) {
	switch x := v.(type) {
	case ast.Expr:
		return ev.eval(ctx, x)
	case Nested:
		return x.EvaluateNested(ctx, ev.c)
	}
	return v, nil
}

func (ev *Evaluator) identifier(ctx context.Context, id *ast.Identifier) (any, error) {
	name := ev.c.key(id.Name)

	if h := ev.c.ParameterHandler; h != nil {
		args := &ParameterArgs{ID: id.ID}
		if err := h(ctx, name, args); err != nil {
			return nil, err
		}
		if v, ok := args.Result(); ok {
			return v, nil
		}
	}

	if v, ok := ev.c.Parameters[name]; ok {
		return ev.resolve(ctx, v)
	}

	if dp, ok := ev.c.DynamicParameters[name]; ok {
		return dp(ctx, &ParameterData{Name: name, ID: id.ID, Context: ev.c})
	}

	if strings.EqualFold(id.Name, "null") {
		return nil, nil
	}

	return nil, &ferrors.ParameterNotDefinedError{Name: id.Name, Location: id.Loc()}
}

func (ev *Evaluator) function(ctx context.Context, fn *ast.Function) (any, error) {
	args := make([]Argument, len(fn.Args.Items))
	for i, a := range fn.Args.Items {
		args[i] = Argument{expr: a, ev: ev}
	}
	name := ev.c.key(fn.Name.Name)

	observability.LogFunctionCall(ev.c.Logger, name, len(args))
	observability.AddSpanEvent(ctx, "ncalc.function", attribute.String("function", name))
	if ev.c.Metrics != nil {
		ev.c.Metrics.RecordFunctionCall(ctx, name)
	}

	if h := ev.c.FunctionHandler; h != nil {
		fa := &FunctionArgs{ID: fn.Name.ID, Args: args}
		if err := h(ctx, name, fa); err != nil {
			return nil, err
		}
		if v, ok := fa.Result(); ok {
			return v, nil
		}
	}

	call := &Call{Name: name, ID: fn.Name.ID, Args: args, Context: ev.c, Location: fn.Loc()}
	if f, ok := ev.c.Functions[name]; ok {
		return f(ctx, call)
	}

	canonical, b, ok := lookupBuiltin(fn.Name.Name, ev.c.Options.Has(options.IgnoreCaseAtBuiltInFunctions))
	if !ok {
		return nil, &ferrors.FunctionNotFoundError{Name: fn.Name.Name, Location: fn.Loc()}
	}
	call.Name = canonical
	if err := b.checkArity(call); err != nil {
		return nil, err
	}
	return b.fn(ev, ctx, call)
}

func (ev *Evaluator) ternary(ctx context.Context, n *ast.Ternary) (any, error) {
	cond, err := ev.eval(ctx, n.Cond)
	if err != nil {
		return nil, err
	}
	cond, ok := ev.valueOrNull(cond)
	if !ok {
		return nil, nil
	}
	b, err := ev.toBool(cond, n.Cond.Loc())
	if err != nil {
		return nil, err
	}
	if b {
		return ev.eval(ctx, n.Then)
	}
	return ev.eval(ctx, n.Else)
}

func (ev *Evaluator) list(ctx context.Context, n *ast.List) (any, error) {
	out := make([]any, 0, len(n.Items))
	for _, item := range n.Items {
		if err := checkCancel(ctx); err != nil {
			return nil, err
		}
		v, err := ev.eval(ctx, item)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (ev *Evaluator) percentNode(ctx context.Context, n *ast.Percent) (any, error) {
	v, err := ev.eval(ctx, n.Operand)
	if err != nil {
		return nil, err
	}
	v, ok := ev.valueOrNull(v)
	if !ok {
		return nil, nil
	}
	return wrapPercent(v, numeric.KindOf(numeric.Normalize(v)), n.Loc())
}

func (ev *Evaluator) unary(ctx context.Context, n *ast.Unary) (any, error) {
	v, err := ev.eval(ctx, n.Operand)
	if err != nil {
		return nil, err
	}
	v, ok := ev.valueOrNull(v)
	if !ok {
		return nil, nil
	}

	switch n.Op {
	case ast.Not:
		b, err := ev.toBool(v, n.Operand.Loc())
		if err != nil {
			return nil, err
		}
		return !b, nil
	case ast.Negate:
		switch x := v.(type) {
		case time.Duration:
			return -x, nil
		case numeric.Percent:
			neg, err := numeric.Negate(x.Value, ev.num)
			if err != nil {
				return nil, err
			}
			return wrapPercent(neg, x.Kind, n.Loc())
		}
		return numeric.Negate(v, ev.num)
	case ast.BitwiseNot:
		return numeric.BitwiseNot(unwrapPercent(v))
	case ast.SqRoot:
		return numeric.Root(unwrapPercent(v), 2, ev.num)
	case ast.CbRoot:
		return numeric.Root(unwrapPercent(v), 3, ev.num)
	case ast.FourthRoot:
		return numeric.Root(unwrapPercent(v), 4, ev.num)
	}
	return nil, ferrors.NewEvaluationError(n.Loc(), "Unsupported unary operator %d", n.Op)
}

// wrapPercent tags v as a percent that originated from a number of kind
// from, so unwrapping restores that representation when it is lossless.
func wrapPercent(v any, from numeric.Kind, loc ast.Location) (any, error) {
	if v == nil {
		return nil, nil
	}
	p, err := numeric.NewPercentOf(v, from)
	if err != nil {
		return nil, ferrors.NewEvaluationError(loc, "%s", err.Error())
	}
	return p, nil
}

func unwrapPercent(v any) any {
	if p, ok := v.(numeric.Percent); ok {
		return p.Unwrap()
	}
	return v
}
