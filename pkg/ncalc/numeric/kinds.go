// Package numeric implements the numeric tower: runtime kinds, operand
// promotion, checked and unchecked arithmetic, percent arithmetic, and the
// math function set.
//
// Values are plain Go values held in an any. Integers are int8..int64 and
// uint8..uint64 (int and uint are read as int64 and uint64), reals are
// float32, float64 and decimal.Decimal, and big integers are *big.Int.
// Char is a distinct rune type that takes part in arithmetic as an
// unsigned 16-bit integer when char values are enabled.
package numeric

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/options"
)

// Kind is the runtime numeric kind of a value.
type Kind int

const (
	KindNone Kind = iota
	KindInt8
	KindUint8
	KindInt16
	KindUint16
	KindChar
	KindInt32
	KindUint32
	KindInt64
	KindUint64
	KindFloat32
	KindFloat64
	KindDecimal
	KindBigInt
)

var kindNames = [...]string{
	KindNone:    "none",
	KindInt8:    "int8",
	KindUint8:   "uint8",
	KindInt16:   "int16",
	KindUint16:  "uint16",
	KindChar:    "char",
	KindInt32:   "int32",
	KindUint32:  "uint32",
	KindInt64:   "int64",
	KindUint64:  "uint64",
	KindFloat32: "float32",
	KindFloat64: "float64",
	KindDecimal: "decimal",
	KindBigInt:  "bigint",
}

// String returns the kind name.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// IsInteger reports whether k is a fixed-width or big integer kind.
func (k Kind) IsInteger() bool {
	return (k >= KindInt8 && k <= KindUint64) || k == KindBigInt
}

// IsReal reports whether k is a floating point or decimal kind.
func (k Kind) IsReal() bool {
	return k == KindFloat32 || k == KindFloat64 || k == KindDecimal
}

func (k Kind) isSigned() bool {
	switch k {
	case KindInt8, KindInt16, KindInt32, KindInt64:
		return true
	}
	return false
}

// bitSize orders kinds for Min and Max, where reals outrank integers of
// any width.
func (k Kind) bitSize() int {
	switch k {
	case KindInt8, KindUint8:
		return 8
	case KindInt16, KindUint16, KindChar:
		return 16
	case KindInt32, KindUint32, KindFloat32:
		return 32
	case KindInt64, KindUint64, KindFloat64:
		return 64
	case KindDecimal, KindBigInt:
		return 128
	}
	return 0
}

// Char is a single UTF-16 style character value.
type Char rune

// Rune returns c as a rune.
func (c Char) Rune() rune { return rune(c) }

// String returns c as a one-character string.
func (c Char) String() string { return string(rune(c)) }

// Options are the flags that change arithmetic.
type Options struct {
	DecimalAsDefault        bool
	AllowCharValues         bool
	AllowBooleanCalculation bool
	OverflowProtection      bool
	UseBigNumbers           bool
	ArithmeticNaNCheck      bool
	RoundAwayFromZero       bool
	NoStringTypeCoercion    bool
}

// FromFlags extracts the arithmetic options from a flag set.
func FromFlags(f options.Flags) Options {
	return Options{
		DecimalAsDefault:        f.Has(options.DecimalAsDefault),
		AllowCharValues:         f.Has(options.AllowCharValues),
		AllowBooleanCalculation: f.Has(options.AllowBooleanCalculation),
		OverflowProtection:      f.Has(options.OverflowProtection),
		UseBigNumbers:           f.Has(options.UseBigNumbers),
		ArithmeticNaNCheck:      f.Has(options.ArithmeticNaNCheck),
		RoundAwayFromZero:       f.Has(options.RoundAwayFromZero),
		NoStringTypeCoercion:    f.Has(options.NoStringTypeCoercion),
	}
}

// Normalize maps int and uint to their 64-bit kinds and *big.Float to
// decimal. Other values are returned unchanged.
func Normalize(v any) any {
	switch n := v.(type) {
	case int:
		return int64(n)
	case uint:
		return uint64(n)
	case uintptr:
		return uint64(n)
	case *big.Float:
		d, err := decimal.NewFromString(n.Text('f', -1))
		if err != nil {
			return v
		}
		return d
	}
	return v
}

// KindOf returns the numeric kind of v, or KindNone.
func KindOf(v any) Kind {
	switch v.(type) {
	case int8:
		return KindInt8
	case uint8:
		return KindUint8
	case int16:
		return KindInt16
	case uint16:
		return KindUint16
	case Char:
		return KindChar
	case int32:
		return KindInt32
	case uint32:
		return KindUint32
	case int64, int:
		return KindInt64
	case uint64, uint, uintptr:
		return KindUint64
	case float32:
		return KindFloat32
	case float64:
		return KindFloat64
	case decimal.Decimal:
		return KindDecimal
	case *big.Int:
		return KindBigInt
	}
	return KindNone
}

// IsNumber reports whether v is a numeric value. Char does not count.
func IsNumber(v any) bool {
	k := KindOf(v)
	return k != KindNone && k != KindChar
}

// IsInteger reports whether v is an integer value, including big integers.
func IsInteger(v any) bool {
	k := KindOf(v)
	return k != KindChar && k.IsInteger()
}

// IsReal reports whether v is a float or decimal value.
func IsReal(v any) bool {
	return KindOf(v).IsReal()
}

// TypeName names the runtime type of v for error messages.
func TypeName(v any) string {
	if v == nil {
		return "null"
	}
	switch v.(type) {
	case bool:
		return "bool"
	case string:
		return "string"
	}
	if k := KindOf(v); k != KindNone {
		return k.String()
	}
	return fmt.Sprintf("%T", v)
}
