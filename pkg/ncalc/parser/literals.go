package parser

import (
	"errors"
	"math"
	"math/big"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/ast"
	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/datetime"
	ferrors "github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/errors"
	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/numeric"
	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/options"
)

// BasedOverflow is the format error message of a based integer literal
// that does not fit in 64 bits.
const BasedOverflow = "Value was either too large or too small for an Int64."

var (
	trueToken  = token{text: "true", keyword: true}
	falseToken = token{text: "false", keyword: true}
)

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isHex(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isBaseDigit(c byte, base int) bool {
	switch base {
	case 2:
		return c == '0' || c == '1'
	case 8:
		return c >= '0' && c <= '7'
	case 16:
		return isHex(c)
	}
	return isDigit(c)
}

// scanDigits returns the end of the run of base digits starting at i.
// Underscores after the first digit belong to the run when allowed.
func scanDigits(s string, i, base int, underscores bool) int {
	start := i
	for i < len(s) {
		c := s[i]
		if isBaseDigit(c, base) || (underscores && c == '_' && i > start) {
			i++
			continue
		}
		break
	}
	return i
}

// guid parses a GUID in its hyphenated form or as 32 hex digits. The
// digit form only counts when no number continues after it.
func (s *state) guid() (ast.Expr, bool) {
	rest := s.rest()
	var text string

	switch {
	case len(rest) >= 36 && hyphenated(rest[:36]):
		text = rest[:36]
	case len(rest) >= 32 && scanDigits(rest[:32], 0, 16, false) == 32:
		text = rest[:32]
	default:
		return nil, false
	}

	if after := rest[len(text):]; after != "" {
		c := after[0]
		if isDigit(c) || c == '.' || isIdentPart(firstRune(after)) {
			return nil, false
		}
	}

	id, err := uuid.Parse(text)
	if err != nil {
		return nil, false
	}
	start := s.pos
	s.pos += len(text)
	return ast.NewValue(id, ast.ValueGUID, s.loc(start)), true
}

func hyphenated(s string) bool {
	for i := 0; i < len(s); i++ {
		switch i {
		case 8, 13, 18, 23:
			if s[i] != '-' {
				return false
			}
		default:
			if !isHex(s[i]) {
				return false
			}
		}
	}
	return true
}

// number parses a based integer, an integer or a real literal, and with
// percent calculation a real literal followed by '%'.
func (s *state) number() (ast.Expr, bool, error) {
	rest := s.rest()
	if !isDigit(rest[0]) && !(rest[0] == '.' && len(rest) > 1 && isDigit(rest[1])) {
		return nil, false, nil
	}
	start := s.pos
	underscores := s.opts.HasAdvanced(options.AcceptUnderscoresInNumbers)

	if e, ok, err := s.based(); ok || err != nil {
		return e, ok, err
	}

	end := scanDigits(rest, 0, 10, underscores)
	fractional := false
	if end < len(rest) && rest[end] == '.' && end+1 < len(rest) && isDigit(rest[end+1]) {
		fractional = true
		end = scanDigits(rest, end+1, 10, underscores)
	}
	if end < len(rest) && (rest[end] == 'e' || rest[end] == 'E') {
		k := end + 1
		if k < len(rest) && (rest[k] == '+' || rest[k] == '-') {
			k++
		}
		if k < len(rest) && isDigit(rest[k]) {
			fractional = true
			end = scanDigits(rest, k, 10, false)
		}
	}
	text := strings.ReplaceAll(rest[:end], "_", "")
	s.pos += end

	if s.opts.HasAdvanced(options.CalculatePercent) {
		if ws := leadingSpace(s.rest()); strings.HasPrefix(s.rest()[ws:], "%") {
			d, err := decimal.NewFromString(text)
			if err != nil {
				return nil, false, s.fail(start, ferrors.DefaultParseMessage)
			}
			s.pos += ws + 1
			v := ast.NewValue(d, ast.ValueFloat, s.loc(start))
			return ast.NewPercent(v, s.loc(start)), true, nil
		}
	}

	if !fractional {
		if v, ok := s.integer(text); ok {
			return ast.NewValue(v, ast.ValueInteger, s.loc(start)), true, nil
		}
	}
	v, err := s.realValue(text)
	if err != nil {
		return nil, false, s.fail(start, ferrors.DefaultParseMessage)
	}
	return ast.NewValue(v, ast.ValueFloat, s.loc(start)), true, nil
}

// integer converts a decimal digit run to int32 or int64. A value beyond
// int64 is a big integer with UseBigNumbers and a real otherwise.
func (s *state) integer(text string) (any, bool) {
	b, ok := new(big.Int).SetString(text, 10)
	if !ok {
		return nil, false
	}
	v := numeric.SmallestInteger(b)
	switch n := v.(type) {
	case int32:
		if s.opts.Has(options.LongAsDefault) {
			return int64(n), true
		}
		return n, true
	case int64:
		return n, true
	}
	if s.opts.Has(options.UseBigNumbers) {
		return b, true
	}
	return nil, false
}

// realValue converts a real literal to the default real kind. Under
// DecimalAsDefault a value beyond the decimal range saturates to
// infinity.
func (s *state) realValue(text string) (any, error) {
	if s.opts.Has(options.DecimalAsDefault) {
		d, err := decimal.NewFromString(text)
		if err != nil {
			return nil, err
		}
		if d.GreaterThan(numeric.MaxDecimal) {
			return math.Inf(1), nil
		}
		return d, nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return nil, err
	}
	return f, nil
}

// based parses 0x, 0o and 0b literals, and with AcceptCStyleOctals a
// leading-zero octal literal.
func (s *state) based() (ast.Expr, bool, error) {
	rest := s.rest()
	if len(rest) < 2 || rest[0] != '0' {
		return nil, false, nil
	}
	underscores := s.opts.HasAdvanced(options.AcceptUnderscoresInNumbers)

	base, from := 0, 2
	switch rest[1] {
	case 'x':
		base = 16
	case 'o':
		base = 8
	case 'b':
		base = 2
	default:
		if !s.opts.HasAdvanced(options.AcceptCStyleOctals) || !isBaseDigit(rest[1], 8) {
			return nil, false, nil
		}
		base, from = 8, 1
	}

	end := scanDigits(rest, from, base, underscores)
	if end == from {
		return nil, false, nil
	}
	if from == 1 && end < len(rest) {
		// 0755.5 and 089 are decimal numbers.
		if c := rest[end]; c == '.' || c == 'e' || c == 'E' || isDigit(c) {
			return nil, false, nil
		}
	}

	start := s.pos
	digits := strings.ReplaceAll(rest[from:end], "_", "")
	s.pos += end

	u, err := strconv.ParseUint(digits, base, 64)
	if err != nil {
		if b, ok := new(big.Int).SetString(digits, base); ok && s.opts.Has(options.UseBigNumbers) {
			return ast.NewValue(b, ast.ValueInteger, s.loc(start)), true, nil
		}
		return nil, false, &ferrors.FormatError{Message: BasedOverflow, Text: rest[:end], Location: s.loc(start)}
	}

	var v any
	switch {
	case s.opts.Has(options.HexBinOctAreUnsigned) && u <= math.MaxUint32:
		v = uint32(u)
	case s.opts.Has(options.HexBinOctAreUnsigned):
		v = u
	case int64(u) >= math.MinInt32 && int64(u) <= math.MaxInt32:
		v = int32(int64(u))
	default:
		v = int64(u)
	}
	return ast.NewValue(v, ast.ValueInteger, s.loc(start)), true, nil
}

func (s *state) boolean() (ast.Expr, bool) {
	rest := s.rest()
	start := s.pos
	if n := trueToken.match(rest); n > 0 {
		s.pos += n
		return ast.NewValue(true, ast.ValueBoolean, s.loc(start)), true
	}
	if n := falseToken.match(rest); n > 0 {
		s.pos += n
		return ast.NewValue(false, ast.ValueBoolean, s.loc(start)), true
	}
	return nil, false
}

// stringLiteral parses a single or double quoted string. A single quoted
// string of one character is a char with AllowCharValues.
func (s *state) stringLiteral() (ast.Expr, error) {
	start := s.pos
	quote := s.text[start]
	var sb strings.Builder

	for i := start + 1; i < len(s.text); {
		c := s.text[i]
		switch c {
		case quote:
			s.pos = i + 1
			value := sb.String()
			if quote == '\'' && s.opts.Has(options.AllowCharValues) && utf8.RuneCountInString(value) == 1 {
				r, _ := utf8.DecodeRuneInString(value)
				return ast.NewValue(numeric.Char(r), ast.ValueChar, s.loc(start)), nil
			}
			return ast.NewValue(value, ast.ValueString, s.loc(start)), nil

		case '\\':
			if i+1 >= len(s.text) {
				return nil, s.fail(start, StringNotClosed)
			}
			n, err := s.escape(&sb, i)
			if err != nil {
				return nil, err
			}
			i += n

		default:
			sb.WriteByte(c)
			i++
		}
	}
	return nil, s.fail(start, StringNotClosed)
}

// escape decodes the escape sequence at i and returns its length.
func (s *state) escape(sb *strings.Builder, i int) (int, error) {
	switch c := s.text[i+1]; c {
	case '\\', '\'', '"':
		sb.WriteByte(c)
	case 'n':
		sb.WriteByte('\n')
	case 'r':
		sb.WriteByte('\r')
	case 't':
		sb.WriteByte('\t')
	case 'b':
		sb.WriteByte('\b')
	case 'f':
		sb.WriteByte('\f')
	case 'v':
		sb.WriteByte('\v')
	case '0':
		sb.WriteByte(0)
	case 'u':
		if i+6 > len(s.text) {
			return 0, s.fail(i, ferrors.DefaultParseMessage)
		}
		code, err := strconv.ParseUint(s.text[i+2:i+6], 16, 16)
		if err != nil {
			return 0, s.fail(i, ferrors.DefaultParseMessage)
		}
		sb.WriteRune(rune(code))
		return 6, nil
	default:
		return 0, s.fail(i, ferrors.DefaultParseMessage)
	}
	return 2, nil
}

// dateTime parses a '#'-delimited date, date and time, or time of day.
// It reports no match when the text between the delimiters does not have
// the shape of a literal, and a format error when the shape matched but
// no mask accepts the value.
func (s *state) dateTime() (ast.Expr, bool, error) {
	start := s.pos
	text := s.text
	first, i, ok := digitsAt(text, start+1)
	if !ok {
		return nil, false, nil
	}

	if j, ok := separatorAt(text, i, s.dates.DateSeparators()); ok {
		parts := [3]string{first}
		var k int
		if parts[1], k, ok = digitsAt(text, j); !ok {
			return nil, false, nil
		}
		if k, ok = separatorAt(text, k, s.dates.DateSeparators()); !ok {
			return nil, false, nil
		}
		if parts[2], k, ok = digitsAt(text, k); !ok {
			return nil, false, nil
		}

		if k < len(text) && text[k] == '#' {
			t, err := s.dates.Date(parts)
			if err != nil {
				return nil, false, s.located(err, start)
			}
			s.pos = k + 1
			return ast.NewValue(t, ast.ValueDateTime, s.loc(start)), true, nil
		}

		ws := leadingSpace(text[k:])
		if ws == 0 {
			return nil, false, nil
		}
		clock, end, ok := s.clockAt(k + ws)
		if !ok {
			return nil, false, nil
		}
		t, err := s.dates.DateTime(parts, clock)
		if err != nil {
			return nil, false, s.located(err, start)
		}
		s.pos = end
		return ast.NewValue(t, ast.ValueDateTime, s.loc(start)), true, nil
	}

	clock, end, ok := s.clockAt(start + 1)
	if !ok {
		return nil, false, nil
	}
	d, err := s.dates.TimeOfDay(clock)
	if err != nil {
		return nil, false, s.located(err, start)
	}
	s.pos = end
	return ast.NewValue(d, ast.ValueTimeSpan, s.loc(start)), true, nil
}

// clockAt scans hh:mm[:ss][ designator] followed by the closing '#' and
// returns the offset after the '#'.
func (s *state) clockAt(i int) (datetime.Clock, int, bool) {
	text := s.text
	seps := s.dates.TimeSeparators()
	var c datetime.Clock
	var ok bool

	if c.Hour, i, ok = digitsAt(text, i); !ok {
		return c, 0, false
	}
	if i, ok = separatorAt(text, i, seps); !ok {
		return c, 0, false
	}
	if c.Minute, i, ok = digitsAt(text, i); !ok {
		return c, 0, false
	}
	if j, ok := separatorAt(text, i, seps); ok {
		if c.Second, j, ok = digitsAt(text, j); ok {
			c.HasSeconds = true
			i = j
		}
	}

	if s.dates.Uses12HourClock() {
		at := i
		if at < len(text) && text[at] == ' ' {
			at++
		}
		if n, ok := s.dates.MatchDesignator(text[at:]); ok {
			c.Designator = text[at : at+n]
			i = at + n
		}
	}

	if i >= len(text) || text[i] != '#' {
		return c, 0, false
	}
	return c, i + 1, true
}

func (s *state) located(err error, offset int) error {
	var fe *ferrors.FormatError
	if errors.As(err, &fe) {
		fe.Location = s.loc(offset)
	}
	return err
}

func digitsAt(s string, i int) (string, int, bool) {
	end := scanDigits(s, i, 10, false)
	if end == i {
		return "", i, false
	}
	return s[i:end], end, true
}

func separatorAt(s string, i int, seps []string) (int, bool) {
	for _, sep := range seps {
		if strings.HasPrefix(s[i:], sep) {
			return i + len(sep), true
		}
	}
	return i, false
}
