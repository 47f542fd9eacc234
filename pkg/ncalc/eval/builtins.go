package eval

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/ast"
	ferrors "github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/errors"
	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/numeric"
	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/registry"
)

type builtinFunc func(ev *Evaluator, ctx context.Context, call *Call) (any, error)

// builtin is a built-in function with its accepted argument count. A max
// of -1 accepts any number of arguments from min on.
type builtin struct {
	min, max int
	fn       builtinFunc
}

func plural(n int) string {
	if n == 1 {
		return "argument"
	}
	return "arguments"
}

func (b builtin) checkArity(call *Call) error {
	n := len(call.Args)
	switch {
	case b.min == b.max && n != b.min:
		return ferrors.NewEvaluationError(call.Location, "%s() takes exactly %d %s", call.Name, b.min, plural(b.min))
	case n < b.min:
		return ferrors.NewEvaluationError(call.Location, "%s() takes at least %d %s", call.Name, b.min, plural(b.min))
	case b.max >= 0 && n > b.max:
		return ferrors.NewEvaluationError(call.Location, "%s() takes at most %d %s", call.Name, b.max, plural(b.max))
	}
	return nil
}

var builtins = registry.New[string, builtin]()

// lookupBuiltin finds a built-in by name and returns its canonical name.
func lookupBuiltin(name string, ignoreCase bool) (string, builtin, bool) {
	if b, ok := builtins.Get(name); ok {
		return name, b, true
	}
	if !ignoreCase {
		return "", builtin{}, false
	}
	return builtins.Find(func(k string, _ builtin) bool { return strings.EqualFold(k, name) })
}

// BuiltinNames returns the names of the built-in functions.
func BuiltinNames() []string {
	return builtins.Keys()
}

func init() {
	builtins.RegisterMany(map[string]builtin{
		"Abs":      unaryMath(numeric.Abs),
		"Acos":     unaryMath(numeric.Acos),
		"Asin":     unaryMath(numeric.Asin),
		"Atan":     unaryMath(numeric.Atan),
		"Ceiling":  unaryMath(numeric.Ceiling),
		"Cos":      unaryMath(numeric.Cos),
		"Exp":      unaryMath(numeric.Exp),
		"Floor":    unaryMath(numeric.Floor),
		"Ln":       unaryMath(numeric.Ln),
		"Log10":    unaryMath(numeric.Log10),
		"Sign":     unaryMath(numeric.Sign),
		"Sin":      unaryMath(numeric.Sin),
		"Sqrt":     unaryMath(numeric.Sqrt),
		"Tan":      unaryMath(numeric.Tan),
		"Truncate": unaryMath(numeric.Truncate),

		"Atan2":         binaryMath(func(a, b any, _ numeric.Options) (any, error) { return numeric.Atan2(a, b) }),
		"IEEERemainder": binaryMath(func(a, b any, _ numeric.Options) (any, error) { return numeric.IEEERemainder(a, b) }),
		"Pow":           binaryMath(numeric.Pow),
		"Max":           {2, 2, extremeOf(numeric.Max)},
		"Min":           {2, 2, extremeOf(numeric.Min)},
		"Log":           {1, 2, builtinLog},
		"Round":         {1, 2, builtinRound},

		"if":  {3, 3, builtinIf},
		"ifs": {3, -1, builtinIfs},
		"in":  {2, -1, builtinIn},

		"Length":    {1, 1, builtinLength},
		"Substring": {2, 3, builtinSubstring},
		"ToUpper":   stringFunc(func(ev *Evaluator, s string) any { return ev.c.Options.Culture.Upper(s) }),
		"ToLower":   stringFunc(func(ev *Evaluator, s string) any { return ev.c.Options.Culture.Lower(s) }),
		"Trim":      stringFunc(func(_ *Evaluator, s string) any { return strings.TrimSpace(s) }),
		"Concat":    {0, -1, builtinConcat},

		"Now":     {0, 0, func(*Evaluator, context.Context, *Call) (any, error) { return time.Now(), nil }},
		"Today":   {0, 0, builtinToday},
		"AddDays": {2, 2, builtinAddDays},
		"Year":    datePart(func(t time.Time) int { return t.Year() }),
		"Month":   datePart(func(t time.Time) int { return int(t.Month()) }),
		"Day":     datePart(func(t time.Time) int { return t.Day() }),
	})
}

// arg evaluates argument i with any percent unwrapped.
func (ev *Evaluator) arg(ctx context.Context, call *Call, i int) (any, error) {
	v, err := call.Eval(ctx, i)
	if err != nil {
		return nil, err
	}
	return unwrapPercent(v), nil
}

func unaryMath(f func(any, numeric.Options) (any, error)) builtin {
	return builtin{1, 1, func(ev *Evaluator, ctx context.Context, call *Call) (any, error) {
		v, err := ev.arg(ctx, call, 0)
		if err != nil || v == nil {
			return nil, err
		}
		return f(v, ev.num)
	}}
}

func binaryMath(f func(a, b any, o numeric.Options) (any, error)) builtin {
	return builtin{2, 2, func(ev *Evaluator, ctx context.Context, call *Call) (any, error) {
		a, err := ev.arg(ctx, call, 0)
		if err != nil || a == nil {
			return nil, err
		}
		b, err := ev.arg(ctx, call, 1)
		if err != nil || b == nil {
			return nil, err
		}
		return f(a, b, ev.num)
	}}
}

func extremeOf(f func(a, b any, o numeric.Options) (any, error)) builtinFunc {
	return func(ev *Evaluator, ctx context.Context, call *Call) (any, error) {
		a, err := ev.arg(ctx, call, 0)
		if err != nil {
			return nil, err
		}
		b, err := ev.arg(ctx, call, 1)
		if err != nil {
			return nil, err
		}
		return f(a, b, ev.num)
	}
}

func builtinLog(ev *Evaluator, ctx context.Context, call *Call) (any, error) {
	v, err := ev.arg(ctx, call, 0)
	if err != nil || v == nil {
		return nil, err
	}
	if len(call.Args) == 1 {
		return numeric.Ln(v, ev.num)
	}
	base, err := ev.arg(ctx, call, 1)
	if err != nil || base == nil {
		return nil, err
	}
	return numeric.Log(v, base)
}

func builtinRound(ev *Evaluator, ctx context.Context, call *Call) (any, error) {
	v, err := ev.arg(ctx, call, 0)
	if err != nil || v == nil {
		return nil, err
	}
	var digits any = int32(0)
	if len(call.Args) == 2 {
		if digits, err = ev.arg(ctx, call, 1); err != nil {
			return nil, err
		}
	}
	return numeric.Round(v, digits, ev.num)
}

func builtinIf(ev *Evaluator, ctx context.Context, call *Call) (any, error) {
	cond, err := call.Eval(ctx, 0)
	if err != nil {
		return nil, err
	}
	b, err := ev.toBool(cond, call.Args[0].Expr().Loc())
	if err != nil {
		return nil, err
	}
	if b {
		return call.Eval(ctx, 1)
	}
	return call.Eval(ctx, 2)
}

func builtinIfs(ev *Evaluator, ctx context.Context, call *Call) (any, error) {
	n := len(call.Args)
	if n%2 == 0 {
		return nil, ferrors.NewEvaluationError(call.Location, "%s() takes an odd number of arguments", call.Name)
	}
	for i := 0; i < n-1; i += 2 {
		cond, err := call.Eval(ctx, i)
		if err != nil {
			return nil, err
		}
		b, err := ev.toBool(cond, call.Args[i].Expr().Loc())
		if err != nil {
			return nil, err
		}
		if b {
			return call.Eval(ctx, i+1)
		}
	}
	return call.Eval(ctx, n-1)
}

func builtinIn(ev *Evaluator, ctx context.Context, call *Call) (any, error) {
	needle, err := call.Eval(ctx, 0)
	if err != nil {
		return nil, err
	}
	for i := 1; i < len(call.Args); i++ {
		v, err := call.Eval(ctx, i)
		if err != nil {
			return nil, err
		}
		eq, err := ev.compare(needle, v, ast.Equal)
		if err != nil {
			return nil, err
		}
		if eq {
			return true, nil
		}
	}
	return false, nil
}

// stringArg evaluates argument i as text. ok is false for null.
func (ev *Evaluator) stringArg(ctx context.Context, call *Call, i int) (string, bool, error) {
	v, err := call.Eval(ctx, i)
	if err != nil || v == nil {
		return "", false, err
	}
	return text(v), true, nil
}

func stringFunc(f func(ev *Evaluator, s string) any) builtin {
	return builtin{1, 1, func(ev *Evaluator, ctx context.Context, call *Call) (any, error) {
		s, ok, err := ev.stringArg(ctx, call, 0)
		if err != nil || !ok {
			return nil, err
		}
		return f(ev, s), nil
	}}
}

func builtinLength(ev *Evaluator, ctx context.Context, call *Call) (any, error) {
	v, err := call.Eval(ctx, 0)
	if err != nil || v == nil {
		return nil, err
	}
	if list, ok := v.([]any); ok {
		return int32(len(list)), nil
	}
	return int32(utf8.RuneCountInString(text(v))), nil
}

func builtinSubstring(ev *Evaluator, ctx context.Context, call *Call) (any, error) {
	s, ok, err := ev.stringArg(ctx, call, 0)
	if err != nil || !ok {
		return nil, err
	}
	runes := []rune(s)

	sv, err := ev.arg(ctx, call, 1)
	if err != nil {
		return nil, err
	}
	start, err := numeric.ToInt(sv)
	if err != nil {
		return nil, ferrors.NewEvaluationError(call.Args[1].Expr().Loc(), "%s() start index is not a number", call.Name)
	}
	if start < 0 || start > len(runes) {
		return nil, ferrors.NewEvaluationError(call.Args[1].Expr().Loc(),
			"%s() start index %d is out of range [0; %d]", call.Name, start, len(runes))
	}

	end := len(runes)
	if len(call.Args) == 3 {
		lv, err := ev.arg(ctx, call, 2)
		if err != nil {
			return nil, err
		}
		n, err := numeric.ToInt(lv)
		if err != nil {
			return nil, ferrors.NewEvaluationError(call.Args[2].Expr().Loc(), "%s() length is not a number", call.Name)
		}
		if n < 0 || start+n > len(runes) {
			return nil, ferrors.NewEvaluationError(call.Args[2].Expr().Loc(),
				"%s() length %d exceeds the end of the string", call.Name, n)
		}
		end = start + n
	}
	return string(runes[start:end]), nil
}

func builtinConcat(ev *Evaluator, ctx context.Context, call *Call) (any, error) {
	var b strings.Builder
	for i := range call.Args {
		v, err := call.Eval(ctx, i)
		if err != nil {
			return nil, err
		}
		b.WriteString(text(v))
	}
	return b.String(), nil
}

func builtinToday(*Evaluator, context.Context, *Call) (any, error) {
	y, m, d := time.Now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local), nil
}

func (ev *Evaluator) timeArg(ctx context.Context, call *Call, i int) (time.Time, bool, error) {
	v, err := call.Eval(ctx, i)
	if err != nil || v == nil {
		return time.Time{}, false, err
	}
	t, ok := v.(time.Time)
	if !ok {
		return time.Time{}, false, ferrors.NewEvaluationError(call.Args[i].Expr().Loc(),
			"%s() expects a date, got %s", call.Name, numeric.TypeName(v))
	}
	return t, true, nil
}

func builtinAddDays(ev *Evaluator, ctx context.Context, call *Call) (any, error) {
	t, ok, err := ev.timeArg(ctx, call, 0)
	if err != nil || !ok {
		return nil, err
	}
	nv, err := ev.arg(ctx, call, 1)
	if err != nil || nv == nil {
		return nil, err
	}
	if numeric.IsInteger(nv) {
		n, err := numeric.ToInt(nv)
		if err != nil {
			return nil, err
		}
		return t.AddDate(0, 0, n), nil
	}
	days, err := numeric.ToFloat64(numeric.Normalize(nv))
	if err != nil {
		return nil, ferrors.NewEvaluationError(call.Args[1].Expr().Loc(), "%s() expects a number of days", call.Name)
	}
	return t.Add(time.Duration(days * float64(24*time.Hour))), nil
}

func datePart(f func(time.Time) int) builtin {
	return builtin{1, 1, func(ev *Evaluator, ctx context.Context, call *Call) (any, error) {
		t, ok, err := ev.timeArg(ctx, call, 0)
		if err != nil || !ok {
			return nil, err
		}
		return int32(f(t)), nil
	}}
}
