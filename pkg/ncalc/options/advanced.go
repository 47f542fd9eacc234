package options

import (
	"fmt"
	"strings"

	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/culture"
)

// AdvancedFlags are parser switches that go beyond the core flag set.
type AdvancedFlags uint32

const (
	// AcceptUnderscoresInNumbers allows 1_000 and 0xFF_FF.
	AcceptUnderscoresInNumbers AdvancedFlags = 1 << iota

	// AcceptCStyleOctals parses a leading 0 as an octal prefix (017 == 15).
	AcceptCStyleOctals

	// CalculatePercent enables percent literals and percent arithmetic.
	CalculatePercent

	// UseResultReference enables @ as a reference to the previous result.
	UseResultReference

	// SkipBuiltInDateSeparator stops "/" being accepted next to a custom
	// date separator.
	SkipBuiltInDateSeparator

	// SkipBuiltInTimeSeparator stops ":" being accepted next to a custom
	// time separator.
	SkipBuiltInTimeSeparator
)

var advancedNames = map[AdvancedFlags]string{
	AcceptUnderscoresInNumbers: "AcceptUnderscoresInNumbers",
	AcceptCStyleOctals:         "AcceptCStyleOctals",
	CalculatePercent:           "CalculatePercent",
	UseResultReference:         "UseResultReference",
	SkipBuiltInDateSeparator:   "SkipBuiltInDateSeparator",
	SkipBuiltInTimeSeparator:   "SkipBuiltInTimeSeparator",
}

// Has reports whether every bit of o is set in f.
func (f AdvancedFlags) Has(o AdvancedFlags) bool {
	return f&o == o
}

// String returns the set flag names joined with '|', or "None".
func (f AdvancedFlags) String() string {
	if f == 0 {
		return "None"
	}
	var names []string
	for bit := AcceptUnderscoresInNumbers; bit <= SkipBuiltInTimeSeparator; bit <<= 1 {
		if f.Has(bit) {
			names = append(names, advancedNames[bit])
		}
	}
	return strings.Join(names, "|")
}

// ParseAdvancedFlags converts advanced flag names to a set.
func ParseAdvancedFlags(names []string) (AdvancedFlags, error) {
	var f AdvancedFlags
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || strings.EqualFold(name, "None") {
			continue
		}
		bit, ok := lookupName(advancedNames, name)
		if !ok {
			return 0, fmt.Errorf("options: unknown advanced flag %q", name)
		}
		f |= bit
	}
	return f, nil
}

// SeparatorType selects where a date or time separator comes from.
type SeparatorType int

const (
	// SeparatorBuiltIn uses "/" for dates and ":" for times.
	SeparatorBuiltIn SeparatorType = iota

	// SeparatorCulture uses the separator of the active culture.
	SeparatorCulture

	// SeparatorCustom uses the separator given in Advanced.
	SeparatorCustom
)

// String returns the lowercase name of t.
func (t SeparatorType) String() string {
	switch t {
	case SeparatorCulture:
		return "culture"
	case SeparatorCustom:
		return "custom"
	default:
		return "builtin"
	}
}

// ParseSeparatorType converts "builtin", "culture" or "custom".
func ParseSeparatorType(s string) (SeparatorType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "builtin":
		return SeparatorBuiltIn, nil
	case "culture":
		return SeparatorCulture, nil
	case "custom":
		return SeparatorCustom, nil
	}
	return SeparatorBuiltIn, fmt.Errorf("options: unknown separator type %q", s)
}

// Built-in separators.
const (
	BuiltInDateSeparator = "/"
	BuiltInTimeSeparator = ":"
)

// Advanced carries the parser settings for number and date literals.
type Advanced struct {
	Flags AdvancedFlags

	DateSeparatorType SeparatorType
	DateSeparator     string

	TimeSeparatorType SeparatorType
	TimeSeparator     string
}

// DateSeparatorFor returns the date separator in effect under c.
func (a Advanced) DateSeparatorFor(c culture.Culture) string {
	return resolveSeparator(a.DateSeparatorType, a.DateSeparator, c.DateSeparator, BuiltInDateSeparator)
}

// TimeSeparatorFor returns the time separator in effect under c.
func (a Advanced) TimeSeparatorFor(c culture.Culture) string {
	return resolveSeparator(a.TimeSeparatorType, a.TimeSeparator, c.TimeSeparator, BuiltInTimeSeparator)
}

func resolveSeparator(t SeparatorType, custom, fromCulture, builtIn string) string {
	switch t {
	case SeparatorCustom:
		if custom != "" {
			return custom
		}
	case SeparatorCulture:
		if fromCulture != "" {
			return fromCulture
		}
	}
	return builtIn
}
