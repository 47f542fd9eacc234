package numeric

import (
	"math"
	"math/big"

	"github.com/shopspring/decimal"

	ferrors "github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/errors"
)

// Max returns the larger of a and b in their widest common kind. A null
// operand yields the other one.
func Max(a, b any, o Options) (any, error) {
	return extreme(a, b, o, "Max", 1)
}

// Min returns the smaller of a and b in their widest common kind. A null
// operand yields the other one.
func Min(a, b any, o Options) (any, error) {
	return extreme(a, b, o, "Min", -1)
}

func extreme(a, b any, o Options, name string, want int) (any, error) {
	switch {
	case a == nil && b == nil:
		return nil, nil
	case a == nil:
		return b, nil
	case b == nil:
		return a, nil
	}

	a, err := coerce(a, o)
	if err != nil {
		return nil, err
	}
	b, err = coerce(b, o)
	if err != nil {
		return nil, err
	}

	x, y, err := widest(a, b, name)
	if err != nil {
		return nil, err
	}
	c, err := Compare(x, y)
	if err != nil {
		return nil, err
	}
	if c == want || c == 0 {
		return x, nil
	}
	return y, nil
}

// widest converts a and b to the wider of their two kinds. Reals outrank
// integers regardless of width.
func widest(a, b any, name string) (any, any, error) {
	ka, kb := KindOf(a), KindOf(b)
	if ka == KindNone || kb == KindNone {
		return nil, nil, ferrors.NewInvalidOperands(name, TypeName(a), TypeName(b))
	}
	if ka == kb {
		return a, b, nil
	}

	var target Kind
	switch {
	case ka.IsReal() && !kb.IsReal():
		target = ka
	case kb.IsReal() && !ka.IsReal():
		target = kb
	case ka.bitSize() > kb.bitSize():
		target = ka
	case kb.bitSize() > ka.bitSize():
		target = kb
	case ka == KindDecimal || kb == KindDecimal:
		target = KindDecimal
	case ka == KindBigInt || kb == KindBigInt:
		target = KindBigInt
	default:
		target = kb
	}

	x, err := ConvertTo(a, target)
	if err != nil {
		return nil, nil, err
	}
	y, err := ConvertTo(b, target)
	if err != nil {
		return nil, nil, err
	}
	return x, y, nil
}

// Compare orders two numbers by value across kinds. It returns -1, 0 or 1.
// NaN compares below every other float.
func Compare(a, b any) (int, error) {
	a, b = Normalize(a), Normalize(b)
	ka, kb := KindOf(a), KindOf(b)
	if ka == KindNone || kb == KindNone {
		return 0, ferrors.NewInvalidOperands("compare", TypeName(a), TypeName(b))
	}

	if ka.IsInteger() || ka == KindChar {
		if kb.IsInteger() || kb == KindChar {
			x, _ := bigOf(a)
			y, _ := bigOf(b)
			return x.Cmp(y), nil
		}
	}

	if ka == KindDecimal || kb == KindDecimal {
		x, err := ToDecimal(a)
		if err != nil {
			return 0, err
		}
		y, err := ToDecimal(b)
		if err != nil {
			return 0, err
		}
		return x.Cmp(y), nil
	}

	if ka == KindBigInt || kb == KindBigInt {
		x, _ := ToFloat64(a)
		y, _ := ToFloat64(b)
		if !math.IsNaN(x) && !math.IsNaN(y) && !math.IsInf(x, 0) && !math.IsInf(y, 0) {
			return bigFloat(a, x).Cmp(bigFloat(b, y)), nil
		}
	}

	x, _ := ToFloat64(a)
	y, _ := ToFloat64(b)
	switch {
	case math.IsNaN(x) && math.IsNaN(y):
		return 0, nil
	case math.IsNaN(x):
		return -1, nil
	case math.IsNaN(y):
		return 1, nil
	case x < y:
		return -1, nil
	case x > y:
		return 1, nil
	}
	return 0, nil
}

func bigFloat(v any, f float64) *big.Float {
	if b, ok := v.(*big.Int); ok {
		return new(big.Float).SetInt(b)
	}
	return new(big.Float).SetFloat64(f)
}

// unaryReal applies a float64 function, or its decimal counterpart when
// decimal is the default real kind and one is given.
func unaryReal(v any, o Options, f func(float64) float64, d func(decimal.Decimal) decimal.Decimal) (any, error) {
	if o.DecimalAsDefault && d != nil {
		x, err := ToDecimal(Normalize(v))
		if err != nil {
			return nil, err
		}
		return d(x), nil
	}
	x, err := ToFloat64(Normalize(v))
	if err != nil {
		return nil, err
	}
	return f(x), nil
}

func binaryFloat(a, b any, f func(float64, float64) float64) (any, error) {
	x, err := ToFloat64(Normalize(a))
	if err != nil {
		return nil, err
	}
	y, err := ToFloat64(Normalize(b))
	if err != nil {
		return nil, err
	}
	return f(x, y), nil
}

func Abs(v any, o Options) (any, error) {
	return unaryReal(v, o, math.Abs, decimal.Decimal.Abs)
}

func Acos(v any, o Options) (any, error) { return unaryReal(v, o, math.Acos, nil) }

func Asin(v any, o Options) (any, error) { return unaryReal(v, o, math.Asin, nil) }

func Atan(v any, o Options) (any, error) { return unaryReal(v, o, math.Atan, nil) }

func Cos(v any, o Options) (any, error) { return unaryReal(v, o, math.Cos, nil) }

func Exp(v any, o Options) (any, error) { return unaryReal(v, o, math.Exp, nil) }

// Ln returns the natural logarithm of v.
func Ln(v any, o Options) (any, error) { return unaryReal(v, o, math.Log, nil) }

func Log10(v any, o Options) (any, error) { return unaryReal(v, o, math.Log10, nil) }

func Sin(v any, o Options) (any, error) { return unaryReal(v, o, math.Sin, nil) }

func Sqrt(v any, o Options) (any, error) { return unaryReal(v, o, math.Sqrt, nil) }

func Tan(v any, o Options) (any, error) { return unaryReal(v, o, math.Tan, nil) }

func Atan2(a, b any) (any, error) { return binaryFloat(a, b, math.Atan2) }

// IEEERemainder returns a - b*n where n is a/b rounded half to even.
func IEEERemainder(a, b any) (any, error) { return binaryFloat(a, b, math.Remainder) }

// Log returns the logarithm of a in base b.
func Log(a, b any) (any, error) {
	return binaryFloat(a, b, func(x, base float64) float64 {
		return math.Log(x) / math.Log(base)
	})
}

func Ceiling(v any, o Options) (any, error) {
	return unaryReal(v, o, math.Ceil, decimal.Decimal.Ceil)
}

func Floor(v any, o Options) (any, error) {
	return unaryReal(v, o, math.Floor, decimal.Decimal.Floor)
}

func Truncate(v any, o Options) (any, error) {
	return unaryReal(v, o, math.Trunc, func(d decimal.Decimal) decimal.Decimal { return d.Truncate(0) })
}

// Sign returns -1, 0 or 1 as int32.
func Sign(v any, o Options) (any, error) {
	if o.DecimalAsDefault {
		d, err := ToDecimal(Normalize(v))
		if err != nil {
			return nil, err
		}
		return int32(d.Sign()), nil
	}
	f, err := ToFloat64(Normalize(v))
	if err != nil {
		return nil, err
	}
	if math.IsNaN(f) {
		return nil, ferrors.NewUnsupported("Sign", "Function does not accept floating point Not-a-Number values.")
	}
	switch {
	case f < 0:
		return int32(-1), nil
	case f > 0:
		return int32(1), nil
	}
	return int32(0), nil
}

// Round rounds v to digits fractional digits. Midpoints go to the even
// neighbour unless RoundAwayFromZero is set.
func Round(v, digits any, o Options) (any, error) {
	n, err := ToInt(Normalize(digits))
	if err != nil {
		return nil, err
	}
	if n < 0 || n > 28 {
		return nil, ferrors.NewUnsupported("Round", "Rounding digits must be between 0 and 28, inclusive.")
	}
	places := int32(n)

	round := func(d decimal.Decimal) decimal.Decimal {
		if o.RoundAwayFromZero {
			return d.Round(places)
		}
		return d.RoundBank(places)
	}

	if o.DecimalAsDefault {
		d, err := ToDecimal(Normalize(v))
		if err != nil {
			return nil, err
		}
		return round(d), nil
	}

	f, err := ToFloat64(Normalize(v))
	if err != nil {
		return nil, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return f, nil
	}
	return round(decimal.NewFromFloat(f)).InexactFloat64(), nil
}

// Pow raises a to the power b. With decimal as default the exponent is
// truncated to an integer and the result is exact. A big integer base with
// a non-negative integer exponent stays a big integer.
func Pow(a, b any, o Options) (any, error) {
	if a == nil || b == nil {
		return nil, nil
	}
	a, b = Normalize(a), Normalize(b)

	if base, ok := a.(*big.Int); ok && IsInteger(b) {
		exp, _ := bigOf(b)
		if exp.Sign() >= 0 {
			return new(big.Int).Exp(base, exp, nil), nil
		}
	}

	if o.DecimalAsDefault {
		base, err := ToDecimal(a)
		if err != nil {
			return nil, err
		}
		exp, err := ToDecimal(b)
		if err != nil {
			return nil, err
		}
		r, err := base.PowBigInt(exp.Truncate(0).BigInt())
		if err != nil {
			return nil, ferrors.NewUnsupported("**", "%s", err.Error())
		}
		return r, nil
	}

	x, err := ToFloat64(a)
	if err != nil {
		return nil, err
	}
	y, err := ToFloat64(b)
	if err != nil {
		return nil, err
	}
	r := math.Pow(x, y)
	return r, checkFloat(r, "**", o)
}

// Root returns the n-th root of v. Odd roots of negative numbers are real.
func Root(v any, n int, o Options) (any, error) {
	if v == nil {
		return nil, nil
	}
	f, err := ToFloat64(Normalize(v))
	if err != nil {
		return nil, err
	}

	var r float64
	switch n {
	case 2:
		r = math.Sqrt(f)
	case 3:
		r = math.Cbrt(f)
	default:
		if f < 0 && n%2 == 0 {
			r = math.NaN()
		} else if f < 0 {
			r = -math.Pow(-f, 1/float64(n))
		} else {
			r = math.Pow(f, 1/float64(n))
		}
	}
	if err := checkFloat(r, "root", o); err != nil {
		return nil, err
	}
	if o.DecimalAsDefault && !math.IsNaN(r) && !math.IsInf(r, 0) {
		return decimal.NewFromFloat(r), nil
	}
	return r, nil
}

// Factorial computes v!, or the multifactorial v(!^step) that multiplies
// every step-th number down from v. The result keeps v's integer kind;
// a result that does not fit overflows unless big numbers are enabled.
func Factorial(v, step any, o Options) (any, error) {
	if v == nil {
		return nil, nil
	}
	v = Normalize(v)
	n, err := toBigInt(v)
	if err != nil {
		return nil, ferrors.NewUnsupported("!", "Factorial is only defined for integer values, got %s", TypeName(v))
	}
	if n.Sign() < 0 {
		return nil, ferrors.NewUnsupported("!", "Factorial is not defined for negative values")
	}
	s := int64(1)
	if step != nil {
		if s, err = ToInt64(step); err != nil {
			return nil, err
		}
		if s < 1 {
			return nil, ferrors.NewUnsupported("!", "Factorial step must be positive")
		}
	}

	r := big.NewInt(1)
	bs := big.NewInt(s)
	for i := new(big.Int).Set(n); i.Sign() > 0; i.Sub(i, bs) {
		r.Mul(r, i)
	}

	k := KindOf(v)
	if !k.IsInteger() {
		k = KindInt64
		if o.DecimalAsDefault {
			return decimal.NewFromBigInt(r, 0), nil
		}
	}
	switch {
	case k == KindBigInt:
		return r, nil
	case fits(r, k):
		return fromBig(r, k), nil
	case o.UseBigNumbers:
		return r, nil
	case IsReal(v):
		f, _ := new(big.Float).SetInt(r).Float64()
		return f, checkFloat(f, "!", o)
	}
	return nil, ferrors.NewOverflow("!")
}
