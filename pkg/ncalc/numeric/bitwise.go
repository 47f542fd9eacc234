package numeric

import (
	"math/big"

	ferrors "github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/errors"
)

// BitOp is a bitwise operator.
type BitOp int

const (
	BitAnd BitOp = iota
	BitOr
	BitXor
)

var bitSymbols = [...]string{BitAnd: "&", BitOr: "|", BitXor: "^"}

// Bitwise applies op. Big integers stay big; every other operand is
// widened to uint64 first.
func Bitwise(op BitOp, a, b any) (any, error) {
	if a == nil || b == nil {
		return nil, nil
	}
	a, b = Normalize(a), Normalize(b)
	symbol := bitSymbols[op]

	_, aBig := a.(*big.Int)
	_, bBig := b.(*big.Int)
	if aBig || bBig {
		x, err := toBigInt(a)
		if err != nil {
			return nil, ferrors.NewInvalidOperands(symbol, TypeName(a), TypeName(b))
		}
		y, err := toBigInt(b)
		if err != nil {
			return nil, ferrors.NewInvalidOperands(symbol, TypeName(a), TypeName(b))
		}
		r := new(big.Int)
		switch op {
		case BitAnd:
			r.And(x, y)
		case BitOr:
			r.Or(x, y)
		case BitXor:
			r.Xor(x, y)
		}
		return r, nil
	}

	x, err := ToUint64(a)
	if err != nil {
		return nil, err
	}
	y, err := ToUint64(b)
	if err != nil {
		return nil, err
	}
	switch op {
	case BitAnd:
		return x & y, nil
	case BitOr:
		return x | y, nil
	}
	return x ^ y, nil
}

// ShiftLeft returns a << n. A big integer left operand stays big.
func ShiftLeft(a, n any) (any, error) { return shift(a, n, true) }

// ShiftRight returns a >> n. A big integer left operand stays big.
func ShiftRight(a, n any) (any, error) { return shift(a, n, false) }

func shift(a, n any, left bool) (any, error) {
	if a == nil || n == nil {
		return nil, nil
	}
	a = Normalize(a)
	count, err := ToInt(Normalize(n))
	if err != nil {
		return nil, err
	}

	if b, ok := a.(*big.Int); ok {
		if count < 0 {
			left, count = !left, -count
		}
		if left {
			return new(big.Int).Lsh(b, uint(count)), nil
		}
		return new(big.Int).Rsh(b, uint(count)), nil
	}

	x, err := ToUint64(a)
	if err != nil {
		return nil, err
	}
	// Shift counts wrap at the operand width.
	c := uint(count) & 63
	if left {
		return x << c, nil
	}
	return x >> c, nil
}

// BitwiseNot returns the complement of v in its own integer kind.
func BitwiseNot(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch n := Normalize(v).(type) {
	case int8:
		return ^n, nil
	case uint8:
		return ^n, nil
	case int16:
		return ^n, nil
	case uint16:
		return ^n, nil
	case int32:
		return ^n, nil
	case uint32:
		return ^n, nil
	case int64:
		return ^n, nil
	case uint64:
		return ^n, nil
	case *big.Int:
		return new(big.Int).Not(n), nil
	}
	u, err := ToUint64(v)
	if err != nil {
		return nil, ferrors.NewUnsupported("~", "Operator '~' can't be applied to operand of type '%s'", TypeName(v))
	}
	return ^u, nil
}
