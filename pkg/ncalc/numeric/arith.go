package numeric

import (
	"math"
	"math/big"

	"github.com/shopspring/decimal"

	ferrors "github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/errors"
)

// DivisionPrecision is the number of fractional digits kept by decimal
// division.
const DivisionPrecision = 28

// Op is an arithmetic operator of the tower.
type Op int

const (
	OpAdd Op = iota
	OpSubtract
	OpMultiply
	OpDivide
	OpModulo
	OpAddPercent
	OpSubtractPercent
	OpMultiplyPercent
	OpDividePercent
)

// Symbol returns the operator character used in error messages.
func (op Op) Symbol() string {
	switch op {
	case OpAdd, OpAddPercent:
		return "+"
	case OpSubtract, OpSubtractPercent:
		return "-"
	case OpMultiply, OpMultiplyPercent:
		return "*"
	case OpDivide, OpDividePercent:
		return "/"
	case OpModulo:
		return "%"
	}
	return "?"
}

var (
	hundred  = big.NewInt(100)
	minusOne = big.NewInt(-1)
)

// coerce prepares an operand: strings and, unless char values are enabled,
// chars are parsed into the default real kind; booleans become 1 or 0 when
// boolean calculation is enabled.
func coerce(v any, o Options) (any, error) {
	v = Normalize(v)
	switch n := v.(type) {
	case string:
		return ParseNumber(n, o)
	case Char:
		if !o.AllowCharValues {
			return ParseNumber(string(rune(n)), o)
		}
	case bool:
		if o.AllowBooleanCalculation {
			if n {
				return int32(1), nil
			}
			return int32(0), nil
		}
	}
	return v, nil
}

// promote converts a and b to their common kind. Reals outrank integers,
// decimal outranks float, uint64 refuses signed partners, and narrow
// integers combine as int32.
func promote(a, b any, symbol string) (any, any, Kind, error) {
	ka, kb := KindOf(a), KindOf(b)
	if ka == KindNone || kb == KindNone {
		return nil, nil, KindNone, ferrors.NewInvalidOperands(symbol, TypeName(a), TypeName(b))
	}

	var target Kind
	switch {
	case ka == KindDecimal || kb == KindDecimal:
		target = KindDecimal
	case ka == KindFloat64 || kb == KindFloat64:
		target = KindFloat64
	case ka == KindFloat32 || kb == KindFloat32:
		target = KindFloat32
	case ka == KindBigInt || kb == KindBigInt:
		target = KindBigInt
	case ka == KindUint64 || kb == KindUint64:
		if ka.isSigned() || kb.isSigned() {
			return nil, nil, KindNone, ferrors.NewInvalidOperands(symbol, TypeName(a), TypeName(b))
		}
		target = KindUint64
	case ka == KindInt64 || kb == KindInt64:
		target = KindInt64
	case ka == KindUint32 || kb == KindUint32:
		if ka.isSigned() || kb.isSigned() {
			target = KindInt64
		} else {
			target = KindUint32
		}
	default:
		target = KindInt32
	}

	x, err := ConvertTo(a, target)
	if err != nil {
		return nil, nil, KindNone, err
	}
	y, err := ConvertTo(b, target)
	if err != nil {
		return nil, nil, KindNone, err
	}
	return x, y, target, nil
}

// Calculate applies op to a and b. Null operands yield null.
func Calculate(op Op, a, b any, o Options) (any, error) {
	if a == nil || b == nil {
		return nil, nil
	}

	a, err := coerce(a, o)
	if err != nil {
		return nil, err
	}
	b, err = coerce(b, o)
	if err != nil {
		return nil, err
	}

	if _, ok := a.(bool); ok {
		return nil, ferrors.NewInvalidOperands(op.Symbol(), "bool", TypeName(b))
	}
	if _, ok := b.(bool); ok {
		return nil, ferrors.NewInvalidOperands(op.Symbol(), TypeName(a), "bool")
	}

	x, y, kind, err := promote(a, b, op.Symbol())
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindInt32:
		return integerOp(op, x.(int32), y.(int32), kind, o)
	case KindUint32:
		return integerOp(op, x.(uint32), y.(uint32), kind, o)
	case KindInt64:
		return integerOp(op, x.(int64), y.(int64), kind, o)
	case KindUint64:
		return integerOp(op, x.(uint64), y.(uint64), kind, o)
	case KindFloat32:
		r, err := floatOp(op, float64(x.(float32)), float64(y.(float32)), o)
		if err != nil {
			return nil, err
		}
		f := float32(r)
		return f, checkFloat(float64(f), op.Symbol(), o)
	case KindFloat64:
		return floatOp(op, x.(float64), y.(float64), o)
	case KindDecimal:
		return decimalOp(op, x.(decimal.Decimal), y.(decimal.Decimal))
	case KindBigInt:
		if op == OpDivide {
			return DivideBig(x.(*big.Int), y.(*big.Int))
		}
		return bigOp(op, x.(*big.Int), y.(*big.Int))
	}
	return nil, ferrors.NewUnsupported(op.Symbol(), "Operator '%s' not implemented for operands of types '%s' and '%s'", op.Symbol(), TypeName(a), TypeName(b))
}

// Add returns a + b.
func Add(a, b any, o Options) (any, error) { return Calculate(OpAdd, a, b, o) }

// Subtract returns a - b.
func Subtract(a, b any, o Options) (any, error) { return Calculate(OpSubtract, a, b, o) }

// Multiply returns a * b.
func Multiply(a, b any, o Options) (any, error) { return Calculate(OpMultiply, a, b, o) }

// Divide returns a / b.
func Divide(a, b any, o Options) (any, error) { return Calculate(OpDivide, a, b, o) }

// Modulo returns a % b with the sign of a.
func Modulo(a, b any, o Options) (any, error) { return Calculate(OpModulo, a, b, o) }

// AddPercent returns a + a*b/100.
func AddPercent(a, b any, o Options) (any, error) { return Calculate(OpAddPercent, a, b, o) }

// SubtractPercent returns a - a*b/100.
func SubtractPercent(a, b any, o Options) (any, error) {
	return Calculate(OpSubtractPercent, a, b, o)
}

// MultiplyPercent returns a*b/100.
func MultiplyPercent(a, b any, o Options) (any, error) {
	return Calculate(OpMultiplyPercent, a, b, o)
}

// DividePercent returns a*100/b.
func DividePercent(a, b any, o Options) (any, error) {
	return Calculate(OpDividePercent, a, b, o)
}

type fixedInt interface {
	~int32 | ~uint32 | ~int64 | ~uint64
}

// integerOp computes op natively, wrapping on overflow. When overflow
// protection or big numbers are enabled the result is computed exactly and
// becomes the native kind, a big integer or an overflow error.
func integerOp[T fixedInt](op Op, a, b T, kind Kind, o Options) (any, error) {
	if b == 0 && (op == OpDivide || op == OpModulo || op == OpDividePercent) {
		return nil, ferrors.NewDivideByZero(op.Symbol())
	}

	var r T
	switch op {
	case OpAdd:
		r = a + b
	case OpSubtract:
		r = a - b
	case OpMultiply:
		r = a * b
	case OpDivide:
		r = a / b
	case OpModulo:
		r = a % b
	case OpAddPercent:
		r = a + a*b/100
	case OpSubtractPercent:
		r = a - a*b/100
	case OpMultiplyPercent:
		r = a * b / 100
	case OpDividePercent:
		r = a * 100 / b
	}

	if !o.OverflowProtection && !o.UseBigNumbers {
		return r, nil
	}

	ba, _ := bigOf(a)
	bb, _ := bigOf(b)
	if op == OpModulo && o.OverflowProtection && bb.Cmp(minusOne) == 0 && !fits(new(big.Int).Neg(ba), kind) {
		// MinValue % -1 traps like MinValue / -1 in checked arithmetic.
		return nil, ferrors.NewOverflow(op.Symbol())
	}
	v, err := bigOp(op, ba, bb)
	if err != nil {
		return nil, err
	}
	exact := v.(*big.Int)
	if fits(exact, kind) {
		return fromBig(exact, kind), nil
	}
	if o.UseBigNumbers {
		return exact, nil
	}
	return nil, ferrors.NewOverflow(op.Symbol())
}

func floatOp(op Op, a, b float64, o Options) (float64, error) {
	var r float64
	switch op {
	case OpAdd:
		r = a + b
	case OpSubtract:
		r = a - b
	case OpMultiply:
		r = a * b
	case OpDivide:
		r = a / b
	case OpModulo:
		r = math.Mod(a, b)
	case OpAddPercent:
		r = a + a*b/100
	case OpSubtractPercent:
		r = a - a*b/100
	case OpMultiplyPercent:
		r = a * b / 100
	case OpDividePercent:
		r = a * 100 / b
	}
	return r, checkFloat(r, op.Symbol(), o)
}

func checkFloat(r float64, symbol string, o Options) error {
	if o.OverflowProtection && math.IsInf(r, 0) {
		return ferrors.NewOverflow(symbol)
	}
	if o.ArithmeticNaNCheck && math.IsNaN(r) {
		return ferrors.NewUnsupported(symbol, "Arithmetic operation resulted in NaN.")
	}
	return nil
}

func decimalOp(op Op, a, b decimal.Decimal) (any, error) {
	if b.IsZero() && (op == OpDivide || op == OpModulo || op == OpDividePercent) {
		return nil, ferrors.NewDivideByZero(op.Symbol())
	}
	h := decimal.NewFromInt(100)
	switch op {
	case OpAdd:
		return a.Add(b), nil
	case OpSubtract:
		return a.Sub(b), nil
	case OpMultiply:
		return a.Mul(b), nil
	case OpDivide:
		return a.DivRound(b, DivisionPrecision), nil
	case OpModulo:
		return a.Mod(b), nil
	case OpAddPercent:
		return a.Add(a.Mul(b).DivRound(h, DivisionPrecision)), nil
	case OpSubtractPercent:
		return a.Sub(a.Mul(b).DivRound(h, DivisionPrecision)), nil
	case OpMultiplyPercent:
		return a.Mul(b).DivRound(h, DivisionPrecision), nil
	case OpDividePercent:
		return a.Mul(h).DivRound(b, DivisionPrecision), nil
	}
	return nil, ferrors.NewUnsupported(op.Symbol(), "unsupported decimal operator")
}

// bigOp computes op on big integers with truncating division.
func bigOp(op Op, a, b *big.Int) (any, error) {
	if b.Sign() == 0 && (op == OpDivide || op == OpModulo || op == OpDividePercent) {
		return nil, ferrors.NewDivideByZero(op.Symbol())
	}
	r := new(big.Int)
	switch op {
	case OpAdd:
		r.Add(a, b)
	case OpSubtract:
		r.Sub(a, b)
	case OpMultiply:
		r.Mul(a, b)
	case OpDivide:
		r.Quo(a, b)
	case OpModulo:
		r.Rem(a, b)
	case OpAddPercent:
		r.Mul(a, b).Quo(r, hundred).Add(a, r)
	case OpSubtractPercent:
		r.Mul(a, b).Quo(r, hundred).Sub(a, r)
	case OpMultiplyPercent:
		r.Mul(a, b).Quo(r, hundred)
	case OpDividePercent:
		r.Mul(a, hundred).Quo(r, b)
	}
	return r, nil
}

// DivideBig divides two big integers in decimal so no fraction is lost.
func DivideBig(a, b *big.Int) (any, error) {
	if b.Sign() == 0 {
		return nil, ferrors.NewDivideByZero("/")
	}
	return decimal.NewFromBigInt(a, 0).DivRound(decimal.NewFromBigInt(b, 0), DivisionPrecision), nil
}

// IntegerDivide divides a by b and discards the fraction. With floor set
// the quotient rounds toward negative infinity, otherwise toward zero.
// Integer operands give an integer, reals give a real of the common kind.
func IntegerDivide(a, b any, floor bool, o Options) (any, error) {
	if a == nil || b == nil {
		return nil, nil
	}
	symbol := "div"
	if floor {
		symbol = "//"
	}

	a, err := coerce(a, o)
	if err != nil {
		return nil, err
	}
	b, err = coerce(b, o)
	if err != nil {
		return nil, err
	}
	x, y, kind, err := promote(a, b, symbol)
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindFloat32, KindFloat64:
		fa, _ := ToFloat64(x)
		fb, _ := ToFloat64(y)
		if fb == 0 {
			return nil, ferrors.NewDivideByZero(symbol)
		}
		q := fa / fb
		if floor {
			q = math.Floor(q)
		} else {
			q = math.Trunc(q)
		}
		if err := checkFloat(q, symbol, o); err != nil {
			return nil, err
		}
		if kind == KindFloat32 {
			return float32(q), nil
		}
		return q, nil
	case KindDecimal:
		da, db := x.(decimal.Decimal), y.(decimal.Decimal)
		if db.IsZero() {
			return nil, ferrors.NewDivideByZero(symbol)
		}
		q := da.DivRound(db, DivisionPrecision)
		if floor {
			return q.Floor(), nil
		}
		return q.Truncate(0), nil
	}

	ba, _ := bigOf(x)
	bb, _ := bigOf(y)
	if bb.Sign() == 0 {
		return nil, ferrors.NewDivideByZero(symbol)
	}
	q, rem := new(big.Int).QuoRem(ba, bb, new(big.Int))
	if floor && rem.Sign() != 0 && (rem.Sign() < 0) != (bb.Sign() < 0) {
		q.Sub(q, big.NewInt(1))
	}
	if kind == KindBigInt || !fits(q, kind) {
		if kind != KindBigInt && !o.UseBigNumbers {
			return nil, ferrors.NewOverflow(symbol)
		}
		return q, nil
	}
	return fromBig(q, kind), nil
}

// Negate returns -v. Unsigned 64-bit values cannot be negated.
func Negate(v any, o Options) (any, error) {
	if v == nil {
		return nil, nil
	}
	if d, ok := v.(decimal.Decimal); ok {
		return d.Neg(), nil
	}
	if f, ok := v.(float64); ok {
		return -f, nil
	}
	if f, ok := v.(float32); ok {
		return -f, nil
	}
	if b, ok := v.(*big.Int); ok {
		return new(big.Int).Neg(b), nil
	}
	return Subtract(int32(0), v, o)
}
