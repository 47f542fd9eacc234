package numeric

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	ferrors "github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/errors"
)

var (
	// MaxDecimal and MinDecimal bound the 96-bit decimal literal range.
	MaxDecimal = decimal.RequireFromString("79228162514264337593543950335")
	MinDecimal = MaxDecimal.Neg()
)

type bounds struct{ min, max *big.Int }

var kindBounds = map[Kind]bounds{
	KindInt8:   {big.NewInt(math.MinInt8), big.NewInt(math.MaxInt8)},
	KindUint8:  {big.NewInt(0), big.NewInt(math.MaxUint8)},
	KindInt16:  {big.NewInt(math.MinInt16), big.NewInt(math.MaxInt16)},
	KindUint16: {big.NewInt(0), big.NewInt(math.MaxUint16)},
	KindChar:   {big.NewInt(0), big.NewInt(math.MaxUint16)},
	KindInt32:  {big.NewInt(math.MinInt32), big.NewInt(math.MaxInt32)},
	KindUint32: {big.NewInt(0), big.NewInt(math.MaxUint32)},
	KindInt64:  {big.NewInt(math.MinInt64), big.NewInt(math.MaxInt64)},
	KindUint64: {big.NewInt(0), new(big.Int).SetUint64(math.MaxUint64)},
}

// fits reports whether b is representable in the fixed-width kind k.
func fits(b *big.Int, k Kind) bool {
	bd, ok := kindBounds[k]
	if !ok {
		return k == KindBigInt
	}
	return b.Cmp(bd.min) >= 0 && b.Cmp(bd.max) <= 0
}

// bigOf returns the exact value of an integer or char value.
func bigOf(v any) (*big.Int, bool) {
	switch n := v.(type) {
	case int8:
		return big.NewInt(int64(n)), true
	case int16:
		return big.NewInt(int64(n)), true
	case int32:
		return big.NewInt(int64(n)), true
	case int64:
		return big.NewInt(n), true
	case int:
		return big.NewInt(int64(n)), true
	case uint8:
		return new(big.Int).SetUint64(uint64(n)), true
	case uint16:
		return new(big.Int).SetUint64(uint64(n)), true
	case Char:
		return big.NewInt(int64(n)), true
	case uint32:
		return new(big.Int).SetUint64(uint64(n)), true
	case uint64:
		return new(big.Int).SetUint64(n), true
	case uint:
		return new(big.Int).SetUint64(uint64(n)), true
	case *big.Int:
		return new(big.Int).Set(n), true
	}
	return nil, false
}

// fromBig converts b to the fixed-width kind k. The caller checks fits.
func fromBig(b *big.Int, k Kind) any {
	switch k {
	case KindInt8:
		return int8(b.Int64())
	case KindUint8:
		return uint8(b.Uint64())
	case KindInt16:
		return int16(b.Int64())
	case KindUint16:
		return uint16(b.Uint64())
	case KindChar:
		return Char(b.Int64())
	case KindInt32:
		return int32(b.Int64())
	case KindUint32:
		return uint32(b.Uint64())
	case KindInt64:
		return b.Int64()
	case KindUint64:
		return b.Uint64()
	}
	return b
}

// SmallestInteger returns b as int32 or int64 when it fits, otherwise b.
func SmallestInteger(b *big.Int) any {
	switch {
	case fits(b, KindInt32):
		return int32(b.Int64())
	case fits(b, KindInt64):
		return b.Int64()
	}
	return b
}

// ParseNumber parses s with the invariant culture into the default real
// kind: decimal with DecimalAsDefault, float64 otherwise.
func ParseNumber(s string, o Options) (any, error) {
	s = strings.TrimSpace(s)
	if o.DecimalAsDefault {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return nil, fmt.Errorf("input string %q was not in a correct format", s)
		}
		return d, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("input string %q was not in a correct format", s)
	}
	return f, nil
}

// ToFloat64 converts v to float64. Strings are parsed; null is 0.
func ToFloat64(v any) (float64, error) {
	switch n := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case decimal.Decimal:
		return n.InexactFloat64(), nil
	case bool:
		if n {
			return 1, nil
		}
		return 0, nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(n), 64)
	case Char:
		return strconv.ParseFloat(string(rune(n)), 64)
	case *big.Int:
		f, _ := new(big.Float).SetInt(n).Float64()
		return f, nil
	}
	if b, ok := bigOf(v); ok {
		if b.IsInt64() {
			return float64(b.Int64()), nil
		}
		return float64(b.Uint64()), nil
	}
	return 0, fmt.Errorf("cannot convert %s to float64", TypeName(v))
}

// ToDecimal converts v to a decimal. Strings are parsed; null is 0.
func ToDecimal(v any) (decimal.Decimal, error) {
	switch n := v.(type) {
	case nil:
		return decimal.Zero, nil
	case decimal.Decimal:
		return n, nil
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return decimal.Zero, ferrors.NewOverflow("decimal")
		}
		return decimal.NewFromFloat(n), nil
	case float32:
		return decimal.NewFromFloat32(n), nil
	case bool:
		if n {
			return decimal.NewFromInt(1), nil
		}
		return decimal.Zero, nil
	case string:
		return decimal.NewFromString(strings.TrimSpace(n))
	case Char:
		return decimal.NewFromString(string(rune(n)))
	}
	if b, ok := bigOf(v); ok {
		return decimal.NewFromBigInt(b, 0), nil
	}
	return decimal.Zero, fmt.Errorf("cannot convert %s to decimal", TypeName(v))
}

// toBigInt converts an integer value, or a real with no fractional part,
// to a big integer.
func toBigInt(v any) (*big.Int, error) {
	if b, ok := bigOf(v); ok {
		return b, nil
	}
	switch n := v.(type) {
	case float64, float32:
		f, _ := ToFloat64(n)
		if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
			return nil, fmt.Errorf("cannot convert %v to an integer", n)
		}
		b, _ := new(big.Float).SetFloat64(f).Int(nil)
		return b, nil
	case decimal.Decimal:
		if !n.Equal(n.Truncate(0)) {
			return nil, fmt.Errorf("cannot convert %v to an integer", n)
		}
		return n.BigInt(), nil
	}
	return nil, fmt.Errorf("cannot convert %s to an integer", TypeName(v))
}

// roundedBig converts v to a big integer, rounding reals half to even.
func roundedBig(v any) (*big.Int, error) {
	switch n := v.(type) {
	case float64, float32:
		f, _ := ToFloat64(n)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, ferrors.NewOverflow("convert")
		}
		b, _ := new(big.Float).SetFloat64(math.RoundToEven(f)).Int(nil)
		return b, nil
	case decimal.Decimal:
		return n.RoundBank(0).BigInt(), nil
	case string:
		p, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return nil, err
		}
		return roundedBig(p)
	case bool:
		if n {
			return big.NewInt(1), nil
		}
		return big.NewInt(0), nil
	case nil:
		return big.NewInt(0), nil
	}
	return toBigInt(v)
}

// ConvertTo converts v to kind k, rounding reals half to even when the
// target is an integer. Out of range values are an overflow error.
func ConvertTo(v any, k Kind) (any, error) {
	switch k {
	case KindFloat64:
		return ToFloat64(v)
	case KindFloat32:
		f, err := ToFloat64(v)
		return float32(f), err
	case KindDecimal:
		return ToDecimal(v)
	case KindBigInt:
		return roundedBig(v)
	case KindNone:
		return nil, fmt.Errorf("cannot convert %s to none", TypeName(v))
	}

	b, err := roundedBig(v)
	if err != nil {
		return nil, err
	}
	if !fits(b, k) {
		return nil, ferrors.NewOverflow("convert")
	}
	return fromBig(b, k), nil
}

// ToInt converts v to an int within the int32 range.
func ToInt(v any) (int, error) {
	r, err := ConvertTo(v, KindInt32)
	if err != nil {
		return 0, err
	}
	return int(r.(int32)), nil
}

// ToInt64 converts v to int64.
func ToInt64(v any) (int64, error) {
	r, err := ConvertTo(v, KindInt64)
	if err != nil {
		return 0, err
	}
	return r.(int64), nil
}

// ToUint64 converts v to uint64. Negative values are an overflow error.
func ToUint64(v any) (uint64, error) {
	r, err := ConvertTo(v, KindUint64)
	if err != nil {
		return 0, err
	}
	return r.(uint64), nil
}

// ToBool converts v to a boolean. Numbers are true when non-zero and
// strings must spell true or false.
func ToBool(v any) (bool, error) {
	switch n := v.(type) {
	case nil:
		return false, nil
	case bool:
		return n, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(n))
		if err != nil {
			return false, fmt.Errorf("string %q was not recognized as a valid boolean", n)
		}
		return b, nil
	case float64:
		return n != 0, nil
	case float32:
		return n != 0, nil
	case decimal.Decimal:
		return !n.IsZero(), nil
	}
	if b, ok := bigOf(v); ok {
		return b.Sign() != 0, nil
	}
	return false, fmt.Errorf("cannot convert %s to bool", TypeName(v))
}

// ReduceToInteger converts a real with no fractional part to the smallest
// of int32, int64 or big integer that holds it. Other values are returned
// unchanged.
func ReduceToInteger(v any) any {
	switch n := v.(type) {
	case float64, float32:
		f, _ := ToFloat64(n)
		if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
			return v
		}
		b, _ := new(big.Float).SetFloat64(f).Int(nil)
		return SmallestInteger(b)
	case decimal.Decimal:
		if !n.Equal(n.Truncate(0)) {
			return v
		}
		return SmallestInteger(n.BigInt())
	}
	return v
}
