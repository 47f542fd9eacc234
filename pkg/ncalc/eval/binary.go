package eval

import (
	"context"
	"fmt"
	"time"

	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/ast"
	ferrors "github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/errors"
	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/numeric"
	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/observability"
	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/options"
)

// Labels used in percent errors.
const (
	labelAddition    = "an addition operation"
	labelSubtraction = "a subtraction operation"
	labelPlusAssign  = "a += operation"
	labelMinusAssign = "a -= operation"
)

// compoundOps maps each compound assignment to the operator it applies.
var compoundOps = map[ast.BinaryOp]ast.BinaryOp{
	ast.PlusAssignment:     ast.Plus,
	ast.MinusAssignment:    ast.Minus,
	ast.MultiplyAssignment: ast.Times,
	ast.DivAssignment:      ast.Div,
	ast.AndAssignment:      ast.BitwiseAnd,
	ast.OrAssignment:       ast.BitwiseOr,
	ast.XOrAssignment:      ast.BitwiseXOr,
}

// operands evaluates the left operand and then, unless it is null, the
// right one. ok is false when either is null and the operation yields null.
func (ev *Evaluator) operands(ctx context.Context, n *ast.Binary) (l, r any, ok bool, err error) {
	l, err = ev.eval(ctx, n.Left)
	if err != nil {
		return nil, nil, false, err
	}
	if l, ok = ev.valueOrNull(l); !ok {
		return nil, nil, false, nil
	}
	r, err = ev.eval(ctx, n.Right)
	if err != nil {
		return nil, nil, false, err
	}
	if r, ok = ev.valueOrNull(r); !ok {
		return nil, nil, false, nil
	}
	return l, r, true, nil
}

func (ev *Evaluator) binary(ctx context.Context, n *ast.Binary) (any, error) {
	if err := checkCancel(ctx); err != nil {
		return nil, err
	}

	switch n.Op {
	case ast.StatementSequence:
		if _, err := ev.eval(ctx, n.Left); err != nil {
			return nil, err
		}
		r, err := ev.eval(ctx, n.Right)
		if err != nil {
			return nil, err
		}
		r, ok := ev.valueOrNull(r)
		if !ok {
			return nil, nil
		}
		if ev.percent {
			r = unwrapPercent(r)
		}
		return r, nil

	case ast.Assignment:
		r, err := ev.eval(ctx, n.Right)
		if err != nil {
			return nil, err
		}
		if r == nil && !ev.c.Options.Has(options.AllowNullParameter) {
			var ok bool
			if r, ok = ev.valueOrNull(r); !ok {
				return nil, nil
			}
		}
		return ev.assign(ctx, n.Left, r)

	case ast.And, ast.Or:
		l, err := ev.eval(ctx, n.Left)
		if err != nil {
			return nil, err
		}
		l, ok := ev.valueOrNull(l)
		if !ok {
			return nil, nil
		}
		lb, err := ev.toBool(l, n.Left.Loc())
		if err != nil {
			return nil, err
		}
		if n.Op == ast.And && !lb {
			return false, nil
		}
		if n.Op == ast.Or && lb {
			return true, nil
		}
		r, err := ev.eval(ctx, n.Right)
		if err != nil {
			return nil, err
		}
		r, ok = ev.valueOrNull(r)
		if !ok {
			return nil, nil
		}
		return ev.toBool(r, n.Right.Loc())

	case ast.Equal, ast.NotEqual, ast.Less, ast.LessOrEqual, ast.Greater, ast.GreaterOrEqual:
		l, err := ev.eval(ctx, n.Left)
		if err != nil {
			return nil, err
		}
		r, err := ev.eval(ctx, n.Right)
		if err != nil {
			return nil, err
		}
		return ev.compare(l, r, n.Op)

	case ast.IndexAccess:
		return ev.index(ctx, n)
	}

	l, r, ok, err := ev.operands(ctx, n)
	if err != nil || !ok {
		return nil, err
	}

	if op, compound := compoundOps[n.Op]; compound {
		label := ""
		switch n.Op {
		case ast.PlusAssignment:
			label = labelPlusAssign
		case ast.MinusAssignment:
			label = labelMinusAssign
		}
		v, err := ev.apply(ctx, op, l, r, n, label)
		if err != nil || v == nil {
			return nil, err
		}
		return ev.assign(ctx, n.Left, v)
	}

	switch n.Op {
	case ast.Plus:
		return ev.apply(ctx, n.Op, l, r, n, labelAddition)
	case ast.Minus:
		return ev.apply(ctx, n.Op, l, r, n, labelSubtraction)
	case ast.XOr:
		lb, err := ev.toBool(l, n.Left.Loc())
		if err != nil {
			return nil, err
		}
		rb, err := ev.toBool(r, n.Right.Loc())
		if err != nil {
			return nil, err
		}
		return lb != rb, nil
	case ast.In, ast.NotIn:
		found, err := ev.in(ctx, l, r, n.Right.Loc())
		if err != nil {
			return nil, err
		}
		return found == (n.Op == ast.In), nil
	case ast.Like, ast.NotLike:
		matched, err := ev.like(ctx, l, r)
		if err != nil {
			return nil, err
		}
		return matched == (n.Op == ast.Like), nil
	}
	return ev.apply(ctx, n.Op, l, r, n, "")
}

// apply computes an arithmetic, bitwise or shift operator on non-null
// operands. label names the operation in percent errors.
func (ev *Evaluator) apply(_ context.Context, op ast.BinaryOp, l, r any, n *ast.Binary, label string) (any, error) {
	if ev.percent {
		lp, lIs := l.(numeric.Percent)
		rp, rIs := r.(numeric.Percent)
		if lIs || rIs {
			return ev.percentArith(op, l, r, lp, rp, n, label)
		}
	}

	switch op {
	case ast.Plus:
		return ev.plus(l, r)
	case ast.Minus:
		return ev.minus(l, r)
	case ast.Times:
		return numeric.Multiply(l, r, ev.num)
	case ast.Div:
		return ev.divide(l, r)
	case ast.Modulo:
		return numeric.Modulo(unwrapPercent(l), unwrapPercent(r), ev.num)
	case ast.IntDiv:
		return numeric.IntegerDivide(unwrapPercent(l), unwrapPercent(r), false, ev.num)
	case ast.FloorDiv:
		return numeric.IntegerDivide(unwrapPercent(l), unwrapPercent(r), true, ev.num)
	case ast.BitwiseAnd:
		return numeric.Bitwise(numeric.BitAnd, unwrapPercent(l), unwrapPercent(r))
	case ast.BitwiseOr:
		return numeric.Bitwise(numeric.BitOr, unwrapPercent(l), unwrapPercent(r))
	case ast.BitwiseXOr:
		return numeric.Bitwise(numeric.BitXor, unwrapPercent(l), unwrapPercent(r))
	case ast.LeftShift:
		return numeric.ShiftLeft(unwrapPercent(l), unwrapPercent(r))
	case ast.RightShift:
		return numeric.ShiftRight(unwrapPercent(l), unwrapPercent(r))
	case ast.Exponentiation:
		return numeric.Pow(unwrapPercent(l), unwrapPercent(r), ev.num)
	case ast.Factorial:
		return numeric.Factorial(unwrapPercent(l), r, ev.num)
	}
	return nil, ferrors.NewEvaluationError(n.Loc(), "Unsupported binary operator '%s'", op)
}

// percentArith applies the percent rules for +, -, * and / when at least
// one operand is a percent.
func (ev *Evaluator) percentArith(op ast.BinaryOp, l, r any, lp, rp numeric.Percent, n *ast.Binary, label string) (any, error) {
	_, lIs := l.(numeric.Percent)
	_, rIs := r.(numeric.Percent)
	loc := n.Loc()
	from := rp.Kind
	if lIs {
		from = lp.Kind
	}

	switch op {
	case ast.Plus, ast.Minus:
		plain, scaled := numeric.Add, numeric.AddPercent
		if op == ast.Minus {
			plain, scaled = numeric.Subtract, numeric.SubtractPercent
		}
		switch {
		case lIs && rIs:
			v, err := plain(lp.Value, rp.Value, ev.num)
			if err != nil {
				return nil, err
			}
			return wrapPercent(v, from, loc)
		case rIs:
			return scaled(l, rp.Value, ev.num)
		}
		if label == "" {
			label = labelAddition
			if op == ast.Minus {
				label = labelSubtraction
			}
		}
		return nil, ferrors.NewEvaluationError(n.Left.Loc(),
			"The left side of %s cannot be a percent unless the right side is a percent as well", label)

	case ast.Times:
		switch {
		case lIs && rIs:
			v, err := numeric.MultiplyPercent(lp.Value, rp.Value, ev.num)
			if err != nil {
				return nil, err
			}
			return wrapPercent(v, from, loc)
		case lIs:
			v, err := numeric.Multiply(lp.Value, r, ev.num)
			if err != nil {
				return nil, err
			}
			return wrapPercent(v, from, loc)
		}
		return numeric.MultiplyPercent(l, rp.Value, ev.num)

	case ast.Div:
		switch {
		case lIs && rIs:
			v, err := numeric.DividePercent(ev.divisionOperand(lp.Value, rp.Value), rp.Value, ev.num)
			if err != nil {
				return nil, err
			}
			return wrapPercent(v, from, loc)
		case lIs:
			v, err := ev.divide(lp.Value, r)
			if err != nil {
				return nil, err
			}
			return wrapPercent(v, from, loc)
		}
		return numeric.DividePercent(ev.divisionOperand(l, rp.Value), rp.Value, ev.num)
	}

	return ev.apply(context.Background(), op, unwrapPercent(l), unwrapPercent(r), n, label)
}

// divisionOperand converts the dividend to float64 unless an operand is
// already real or big, or integer division between integers is enabled.
func (ev *Evaluator) divisionOperand(l, r any) any {
	if isRealOrBig(l) || isRealOrBig(r) {
		return l
	}
	if ev.c.Options.Has(options.IntegerDivisionForIntegers) && numeric.IsInteger(l) && numeric.IsInteger(r) {
		return l
	}
	if _, ok := l.(bool); ok {
		return l
	}
	if f, err := numeric.ToFloat64(numeric.Normalize(l)); err == nil {
		return f
	}
	return l
}

func isRealOrBig(v any) bool {
	k := numeric.KindOf(v)
	return k.IsReal() || k == numeric.KindBigInt
}

func (ev *Evaluator) divide(l, r any) (any, error) {
	v, err := numeric.Divide(ev.divisionOperand(l, r), r, ev.num)
	if err != nil || v == nil {
		return v, err
	}
	if ev.c.Options.Has(options.ReduceDivResultToInteger) {
		return numeric.ReduceToInteger(v), nil
	}
	return v, nil
}

func isText(v any) bool {
	switch v.(type) {
	case string, numeric.Char:
		return true
	}
	return false
}

func (ev *Evaluator) plus(l, r any) (any, error) {
	switch x := l.(type) {
	case time.Time:
		if d, ok := r.(time.Duration); ok {
			return x.Add(d), nil
		}
	case time.Duration:
		switch y := r.(type) {
		case time.Duration:
			return x + y, nil
		case time.Time:
			return y.Add(x), nil
		}
	}

	_, lStr := l.(string)
	_, rStr := r.(string)
	if lStr || rStr {
		o := ev.c.Options
		switch {
		case o.Has(options.StringConcat), o.Has(options.NoStringTypeCoercion):
			return text(l) + text(r), nil
		case lStr && rStr:
			if v, err := numeric.Add(l, r, ev.num); err == nil {
				return v, nil
			}
			return text(l) + text(r), nil
		}
	}
	if ev.c.Options.Has(options.StringConcat) && isText(l) && isText(r) && !ev.num.AllowCharValues {
		return text(l) + text(r), nil
	}
	return numeric.Add(l, r, ev.num)
}

func (ev *Evaluator) minus(l, r any) (any, error) {
	switch x := l.(type) {
	case time.Time:
		switch y := r.(type) {
		case time.Duration:
			return x.Add(-y), nil
		case time.Time:
			return x.Sub(y), nil
		}
	case time.Duration:
		if y, ok := r.(time.Duration); ok {
			return x - y, nil
		}
	}
	return numeric.Subtract(l, r, ev.num)
}

func (ev *Evaluator) index(ctx context.Context, n *ast.Binary) (any, error) {
	name := ""
	if id, ok := n.Left.(*ast.Identifier); ok {
		name = id.Name
	}
	indexErr := func(loc ast.Location, msg string) error {
		return &ferrors.ParameterIndexError{Name: name, Message: msg, Location: loc}
	}

	l, err := ev.eval(ctx, n.Left)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, indexErr(n.Left.Loc(), "An expression, if used with an index, must denote a list")
	}
	r, err := ev.eval(ctx, n.Right)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, indexErr(n.Right.Loc(), "The index does not evaluate to a number")
	}

	list, ok := l.([]any)
	if !ok {
		return nil, indexErr(n.Left.Loc(), "An expression, if used with an index, must denote a list")
	}
	i, err := toIndex(r)
	if err != nil {
		return nil, indexErr(n.Right.Loc(), "The index does not evaluate to a number")
	}
	if i < 0 || i >= len(list) {
		return nil, indexErr(n.Right.Loc(), outOfBounds(len(list)))
	}
	return ev.resolve(ctx, list[i])
}

func toIndex(v any) (int, error) {
	v = unwrapPercent(v)
	if !numeric.IsNumber(v) {
		if _, ok := v.(string); !ok {
			return 0, ferrors.NewInvalidOperands("[]", numeric.TypeName(v), "int32")
		}
	}
	return numeric.ToInt(v)
}

// assign writes v through target, which is an identifier or an index
// access on an identifier, and returns v.
func (ev *Evaluator) assign(ctx context.Context, target ast.Expr, v any) (any, error) {
	if v == nil && !ev.c.Options.Has(options.AllowNullParameter) {
		return nil, nil
	}

	switch t := target.(type) {
	case *ast.Identifier:
		name := ev.c.key(t.Name)
		args := &UpdateArgs{ID: t.ID, Value: v, Update: true}
		if h := ev.c.UpdateHandler; h != nil {
			if err := h(ctx, name, args); err != nil {
				return nil, err
			}
		}
		if !args.Update {
			return v, nil
		}
		ev.c.Parameters[name] = v
		observability.LogParameterUpdate(ev.c.Logger, name, nil, v)
		return v, nil

	case *ast.Binary:
		if t.Op == ast.IndexAccess {
			return ev.assignIndex(ctx, t, v)
		}
	}
	return nil, ferrors.NewEvaluationError(target.Loc(), "The expression should evaluate to an identifier")
}

func (ev *Evaluator) assignIndex(ctx context.Context, t *ast.Binary, v any) (any, error) {
	id, ok := t.Left.(*ast.Identifier)
	if !ok {
		return nil, ferrors.NewEvaluationError(t.Loc(), "The expression should evaluate to an identifier")
	}
	name := id.Name

	iv, err := ev.eval(ctx, t.Right)
	if err != nil {
		return nil, err
	}
	i, err := numeric.ToInt(iv)
	if !numeric.IsInteger(iv) || err != nil {
		return nil, &ferrors.ParameterIndexError{
			Name:     name,
			Message:  "The index of " + name + " does not evaluate to a number",
			Location: t.Right.Loc(),
		}
	}

	key := ev.c.key(name)
	args := &UpdateArgs{ID: id.ID, Value: v, Index: i, HasIndex: true, Update: true}
	if h := ev.c.UpdateHandler; h != nil {
		if err := h(ctx, key, args); err != nil {
			return nil, err
		}
	}
	if !args.Update {
		return v, nil
	}

	current, ok := ev.c.Parameters[key]
	if !ok || current == nil {
		return nil, &ferrors.ParameterIndexError{
			Name:     name,
			Message:  name + " is not set and cannot be assigned to by index",
			Location: t.Left.Loc(),
		}
	}
	list, ok := current.([]any)
	if !ok {
		return nil, &ferrors.ParameterIndexError{
			Name:     name,
			Message:  name + " is not a list and cannot be assigned to by index",
			Location: t.Left.Loc(),
		}
	}
	if i < 0 || i >= len(list) {
		return nil, &ferrors.ParameterIndexError{Name: name, Message: outOfBounds(len(list)), Location: t.Right.Loc()}
	}
	list[i] = v
	observability.LogParameterUpdate(ev.c.Logger, key, i, v)
	return v, nil
}

func outOfBounds(n int) string {
	return fmt.Sprintf("The index is out of bounds [0; %d]", n-1)
}
