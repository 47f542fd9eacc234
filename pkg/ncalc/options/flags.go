// Package options holds the switches that control parsing and evaluation.
package options

import (
	"fmt"
	"math/bits"
	"strings"
)

// Flags is the set of parsing and evaluation switches. Bit values are
// stable and may be persisted.
type Flags uint64

// None is the empty flag set.
const None Flags = 0

const (
	// IgnoreCaseAtBuiltInFunctions matches built-in function names case-insensitively.
	IgnoreCaseAtBuiltInFunctions Flags = 1 << 1

	// NoCache bypasses the shared cache of parsed trees.
	NoCache Flags = 1 << 2

	// IterateParameters evaluates once per element of list parameters.
	IterateParameters Flags = 1 << 3

	// RoundAwayFromZero makes Round use away-from-zero instead of banker's rounding.
	RoundAwayFromZero Flags = 1 << 4

	// DecimalAsDefault parses real literals and coerces strings as decimals.
	DecimalAsDefault Flags = 1 << 5

	// AllowNullParameter lets assignments store null.
	AllowNullParameter Flags = 1 << 6

	// OrdinalStringComparer compares strings by code point.
	OrdinalStringComparer Flags = 1 << 7

	// CaseInsensitiveStringComparer compares strings ignoring case.
	CaseInsensitiveStringComparer Flags = 1 << 8

	// OverflowProtection enables checked arithmetic.
	OverflowProtection Flags = 1 << 9

	// StringConcat makes + concatenate whenever a string is involved.
	StringConcat Flags = 1 << 10

	// AllowBooleanCalculation treats booleans as 1 and 0 in arithmetic.
	AllowBooleanCalculation Flags = 1 << 11

	// AllowCharValues parses single-character single-quoted strings as chars.
	AllowCharValues Flags = 1 << 12

	// LongAsDefault parses integer literals as int64.
	LongAsDefault Flags = 1 << 13

	// ArithmeticNaNCheck raises an error when a float result is NaN.
	ArithmeticNaNCheck Flags = 1 << 14

	// AllowNullOrEmptyExpressions returns the empty text instead of failing.
	AllowNullOrEmptyExpressions Flags = 1 << 15

	// StrictTypeMatching makes values of different types compare unequal.
	StrictTypeMatching Flags = 1 << 16

	// CompareNullValues lets null take part in comparisons.
	CompareNullValues Flags = 1 << 17

	// TreatNullAsZero substitutes 0 for null operands.
	TreatNullAsZero Flags = 1 << 18

	// UseAssignments enables := and the compound assignment operators.
	UseAssignments Flags = 1 << 19

	// UseCStyleAssignments makes = assign and == compare.
	UseCStyleAssignments Flags = 1 << 20

	// UseStatementSequences enables ; separated statements.
	UseStatementSequences Flags = 1 << 21

	// UseUnicodeCharsForOperations enables × ÷ ≠ ≤ ≥ ¬ ∧ ∨ √ ∛ ∜.
	UseUnicodeCharsForOperations Flags = 1 << 22

	// SkipLogicalAndBitwiseOpChars disables the && || & | symbols.
	SkipLogicalAndBitwiseOpChars Flags = 1 << 23

	// ReduceDivResultToInteger returns an integer when a division has no remainder.
	ReduceDivResultToInteger Flags = 1 << 24

	// NoStringTypeCoercion stops strings from being parsed as numbers.
	NoStringTypeCoercion Flags = 1 << 25

	// LowerCaseIdentifierLookup lowercases parameter and function names before lookup.
	LowerCaseIdentifierLookup Flags = 1 << 26

	// UseBigNumbers promotes oversized integers to big integers.
	UseBigNumbers Flags = 1 << 27

	// HexBinOctAreUnsigned keeps 64-bit based literals unsigned.
	HexBinOctAreUnsigned Flags = 1 << 28

	// IntegerDivisionForIntegers makes / between integers an integer division.
	IntegerDivisionForIntegers Flags = 1 << 29

	// CheckCancellation is accepted for compatibility. Cancellation is
	// always observed through the evaluation context.
	CheckCancellation Flags = 1 << 30

	// SupportCStyleComments treats /* */ and // comments as whitespace.
	SupportCStyleComments Flags = 1 << 31

	// SupportPythonComments treats # to end of line as a comment.
	SupportPythonComments Flags = 1 << 32
)

var flagNames = map[Flags]string{
	IgnoreCaseAtBuiltInFunctions:  "IgnoreCaseAtBuiltInFunctions",
	NoCache:                       "NoCache",
	IterateParameters:             "IterateParameters",
	RoundAwayFromZero:             "RoundAwayFromZero",
	DecimalAsDefault:              "DecimalAsDefault",
	AllowNullParameter:            "AllowNullParameter",
	OrdinalStringComparer:         "OrdinalStringComparer",
	CaseInsensitiveStringComparer: "CaseInsensitiveStringComparer",
	OverflowProtection:            "OverflowProtection",
	StringConcat:                  "StringConcat",
	AllowBooleanCalculation:       "AllowBooleanCalculation",
	AllowCharValues:               "AllowCharValues",
	LongAsDefault:                 "LongAsDefault",
	ArithmeticNaNCheck:            "ArithmeticNaNCheck",
	AllowNullOrEmptyExpressions:   "AllowNullOrEmptyExpressions",
	StrictTypeMatching:            "StrictTypeMatching",
	CompareNullValues:             "CompareNullValues",
	TreatNullAsZero:               "TreatNullAsZero",
	UseAssignments:                "UseAssignments",
	UseCStyleAssignments:          "UseCStyleAssignments",
	UseStatementSequences:         "UseStatementSequences",
	UseUnicodeCharsForOperations:  "UseUnicodeCharsForOperations",
	SkipLogicalAndBitwiseOpChars:  "SkipLogicalAndBitwiseOpChars",
	ReduceDivResultToInteger:      "ReduceDivResultToInteger",
	NoStringTypeCoercion:          "NoStringTypeCoercion",
	LowerCaseIdentifierLookup:     "LowerCaseIdentifierLookup",
	UseBigNumbers:                 "UseBigNumbers",
	HexBinOctAreUnsigned:          "HexBinOctAreUnsigned",
	IntegerDivisionForIntegers:    "IntegerDivisionForIntegers",
	CheckCancellation:             "CheckCancellation",
	SupportCStyleComments:         "SupportCStyleComments",
	SupportPythonComments:         "SupportPythonComments",
}

// Has reports whether every bit of o is set in f.
func (f Flags) Has(o Flags) bool {
	return f&o == o
}

// String returns the set flag names joined with '|', or "None".
func (f Flags) String() string {
	if f == None {
		return "None"
	}
	var names []string
	for rest := uint64(f); rest != 0; {
		bit := Flags(1) << bits.TrailingZeros64(rest)
		rest &^= uint64(bit)
		if name, ok := flagNames[bit]; ok {
			names = append(names, name)
		} else {
			names = append(names, fmt.Sprintf("0x%x", uint64(bit)))
		}
	}
	return strings.Join(names, "|")
}

// ParseFlags converts flag names, matched case-insensitively, to a set.
func ParseFlags(names []string) (Flags, error) {
	var f Flags
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || strings.EqualFold(name, "None") {
			continue
		}
		bit, ok := lookupName(flagNames, name)
		if !ok {
			return None, fmt.Errorf("options: unknown flag %q", name)
		}
		f |= bit
	}
	return f, nil
}

func lookupName[F comparable](table map[F]string, name string) (F, bool) {
	for bit, n := range table {
		if strings.EqualFold(n, name) {
			return bit, true
		}
	}
	var zero F
	return zero, false
}
