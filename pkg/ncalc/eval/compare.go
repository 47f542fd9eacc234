package eval

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/ast"
	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/culture"
	ferrors "github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/errors"
	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/numeric"
	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/options"
	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/registry"
)

var errIncomparable = errors.New("incomparable")

var symbols = map[ast.BinaryOp]string{
	ast.Equal:          "==",
	ast.NotEqual:       "!=",
	ast.Less:           "<",
	ast.LessOrEqual:    "<=",
	ast.Greater:        ">",
	ast.GreaterOrEqual: ">=",
}

// compare applies a comparison operator.
func (ev *Evaluator) compare(l, r any, op ast.BinaryOp) (bool, error) {
	if ev.percent {
		l, r = unwrapPercent(l), unwrapPercent(r)
	}

	if l == nil && ev.c.Options.Has(options.TreatNullAsZero) {
		l = int32(0)
	}
	if r == nil && ev.c.Options.Has(options.TreatNullAsZero) {
		r = int32(0)
	}

	var c int
	switch {
	case l == nil && r == nil:
		c = 0
	case l == nil || r == nil:
		if !ev.c.Options.Has(options.CompareNullValues) {
			return op == ast.NotEqual, nil
		}
		c = 1
		if l == nil {
			c = -1
		}
	default:
		if ev.c.Options.Has(options.StrictTypeMatching) && reflect.TypeOf(l) != reflect.TypeOf(r) {
			return op == ast.NotEqual, nil
		}
		var err error
		c, err = ev.order(l, r)
		if errors.Is(err, errIncomparable) {
			switch op {
			case ast.Equal:
				return false, nil
			case ast.NotEqual:
				return true, nil
			}
			return false, ferrors.NewInvalidOperands(symbols[op], numeric.TypeName(l), numeric.TypeName(r))
		}
		if err != nil {
			return false, err
		}
	}

	switch op {
	case ast.Equal:
		return c == 0, nil
	case ast.NotEqual:
		return c != 0, nil
	case ast.Less:
		return c < 0, nil
	case ast.LessOrEqual:
		return c <= 0, nil
	case ast.Greater:
		return c > 0, nil
	}
	return c >= 0, nil
}

// order compares two non-null values. It returns errIncomparable when the
// values have no common ordering.
func (ev *Evaluator) order(a, b any) (int, error) {
	a, b = numeric.Normalize(a), numeric.Normalize(b)

	switch x := a.(type) {
	case string:
		switch y := b.(type) {
		case string:
			return ev.compareStrings(x, y), nil
		case numeric.Char:
			return ev.compareStrings(x, y.String()), nil
		case bool:
			return ev.orderBoolText(y, x, -1)
		}
		if numeric.IsNumber(b) {
			return ev.orderNumberText(b, x, -1)
		}
	case numeric.Char:
		switch y := b.(type) {
		case string:
			return ev.compareStrings(x.String(), y), nil
		case numeric.Char:
			return compareOrdered(x, y), nil
		}
		if numeric.IsNumber(b) {
			return numeric.Compare(x, b)
		}
	case bool:
		switch y := b.(type) {
		case bool:
			return compareBool(x, y), nil
		case string:
			return ev.orderBoolText(x, y, 1)
		}
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y), nil
		}
	case time.Duration:
		if y, ok := b.(time.Duration); ok {
			return compareOrdered(x, y), nil
		}
	case uuid.UUID:
		switch y := b.(type) {
		case uuid.UUID:
			return strings.Compare(x.String(), y.String()), nil
		case string:
			if u, err := uuid.Parse(y); err == nil {
				return strings.Compare(x.String(), u.String()), nil
			}
		}
	case []any:
		if y, ok := b.([]any); ok {
			return ev.orderLists(x, y)
		}
	}

	if numeric.IsNumber(a) {
		switch y := b.(type) {
		case string:
			return ev.orderNumberText(a, y, 1)
		case numeric.Char:
			return numeric.Compare(a, y)
		}
		if numeric.IsNumber(b) {
			return numeric.Compare(a, b)
		}
	}
	return 0, errIncomparable
}

// orderNumberText compares a number with a string by parsing the string.
// sign is 1 when the number is the left operand.
func (ev *Evaluator) orderNumberText(n any, s string, sign int) (int, error) {
	if ev.c.Options.Has(options.NoStringTypeCoercion) {
		return 0, errIncomparable
	}
	parsed, err := numeric.ParseNumber(s, ev.num)
	if err != nil {
		return sign * ev.compareStrings(text(n), s), nil
	}
	c, err := numeric.Compare(n, parsed)
	if err != nil {
		return 0, err
	}
	return sign * c, nil
}

func (ev *Evaluator) orderBoolText(b bool, s string, sign int) (int, error) {
	if ev.c.Options.Has(options.NoStringTypeCoercion) {
		return 0, errIncomparable
	}
	parsed, err := numeric.ToBool(s)
	if err != nil {
		return 0, errIncomparable
	}
	return sign * compareBool(b, parsed), nil
}

func (ev *Evaluator) orderLists(a, b []any) (int, error) {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] == nil || b[i] == nil {
			if a[i] == nil && b[i] == nil {
				continue
			}
			return 0, errIncomparable
		}
		c, err := ev.order(a[i], b[i])
		if err != nil || c != 0 {
			return c, err
		}
	}
	return compareOrdered(len(a), len(b)), nil
}

func compareOrdered[T ~int | ~int32 | ~int64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	}
	return 1
}

// compareStrings compares under the string comparison flags: ordinal
// comparison by code point, or culture collation.
func (ev *Evaluator) compareStrings(a, b string) int {
	o := ev.c.Options
	ignoreCase := o.Has(options.CaseInsensitiveStringComparer)
	if o.Has(options.OrdinalStringComparer) {
		if ignoreCase {
			return strings.Compare(culture.Fold(a), culture.Fold(b))
		}
		return strings.Compare(a, b)
	}

	slot := 0
	if ignoreCase {
		slot = 1
	}
	if ev.collators[slot] == nil {
		ev.collators[slot] = o.Culture.Collator(ignoreCase)
	}
	return ev.collators[slot].CompareString(a, b)
}

// in reports whether needle is a member of haystack. A list is searched by
// equality and a string by substring.
func (ev *Evaluator) in(ctx context.Context, needle, haystack any, loc ast.Location) (bool, error) {
	switch h := haystack.(type) {
	case []any:
		for _, item := range h {
			if err := checkCancel(ctx); err != nil {
				return false, err
			}
			v, err := ev.resolve(ctx, item)
			if err != nil {
				return false, err
			}
			eq, err := ev.compare(needle, v, ast.Equal)
			if err != nil {
				return false, err
			}
			if eq {
				return true, nil
			}
		}
		return false, nil
	case string:
		return strings.Contains(h, text(needle)), nil
	}
	return false, ferrors.NewEvaluationError(loc,
		"The right operand of 'in' must be a list or a string, got %s", numeric.TypeName(haystack))
}

type likeKey struct {
	pattern    string
	ignoreCase bool
}

var likePatterns = registry.NewBounded[likeKey, *regexp.Regexp](512)

// like matches value against an SQL-style pattern where % matches any run
// of characters and _ matches one character.
func (ev *Evaluator) like(ctx context.Context, value, pattern any) (bool, error) {
	v, p := text(value), text(pattern)
	ignoreCase := ev.c.Options.Has(options.CaseInsensitiveStringComparer)

	if h := ev.c.MatchHandler; h != nil {
		args := &MatchArgs{Value: v, Pattern: p, IgnoreCase: ignoreCase}
		if err := h(ctx, args); err != nil {
			return false, err
		}
		if matched, ok := args.Result(); ok {
			return matched, nil
		}
	}

	re := likePatterns.GetOrCreate(likeKey{p, ignoreCase}, func() *regexp.Regexp {
		return compileLike(p, ignoreCase)
	})
	return re.MatchString(v), nil
}

func compileLike(pattern string, ignoreCase bool) *regexp.Regexp {
	var b strings.Builder
	b.WriteString("(?s)")
	if ignoreCase {
		b.WriteString("(?i)")
	}
	b.WriteString("^")
	for _, r := range pattern {
		switch r {
		case '%':
			b.WriteString(".*")
		case '_':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	return regexp.MustCompile(b.String())
}

// text renders v as it takes part in string operations.
func text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		if x {
			return "True"
		}
		return "False"
	case numeric.Char:
		return x.String()
	case decimal.Decimal:
		return x.String()
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format("2006-01-02")
		}
		return x.Format("2006-01-02 15:04:05")
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}
