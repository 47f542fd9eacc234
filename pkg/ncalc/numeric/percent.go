package numeric

import (
	"fmt"
)

// PercentType is the coarse shape of a percent value.
type PercentType int

const (
	PercentInteger PercentType = iota
	PercentFloat
)

// Percent is a number tagged as a percentage. It stays a percent until an
// arithmetic operator combines it with a plain number.
type Percent struct {
	Value any
	Type  PercentType
	Kind  Kind
}

// NewPercent wraps a number. Its kind is remembered so Unwrap can restore
// the original representation.
func NewPercent(v any) (Percent, error) {
	return NewPercentOf(v, KindOf(Normalize(v)))
}

// NewPercentOf wraps v and records original as its source kind.
func NewPercentOf(v any, original Kind) (Percent, error) {
	v = Normalize(v)
	k := KindOf(v)
	switch {
	case k.IsReal():
		return Percent{Value: v, Type: PercentFloat, Kind: original}, nil
	case k.IsInteger():
		return Percent{Value: v, Type: PercentInteger, Kind: original}, nil
	}
	return Percent{}, fmt.Errorf("This value could not be handled: %v", v)
}

// Unwrap returns the wrapped number converted back to the original kind
// when that conversion is lossless, otherwise the value as is.
func (p Percent) Unwrap() any {
	if p.Kind == KindNone || KindOf(p.Value) == p.Kind {
		return p.Value
	}
	if p.Kind.IsInteger() && IsReal(p.Value) {
		r := ReduceToInteger(p.Value)
		if !IsInteger(r) {
			return p.Value
		}
		if c, err := ConvertTo(r, p.Kind); err == nil {
			return c
		}
		return r
	}
	if c, err := ConvertTo(p.Value, p.Kind); err == nil {
		return c
	}
	return p.Value
}

// String renders the percent as "v%".
func (p Percent) String() string {
	if p.Value == nil {
		return "null"
	}
	return fmt.Sprintf("%v%%", p.Value)
}
