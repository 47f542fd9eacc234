package ast

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/options"
)

// String renders e as expression text. Sub-expressions other than literals,
// factorials, percents and lists are wrapped in parentheses, so the
// result re-parses to an equivalent tree. Whitespace and alternative
// keyword spellings are normalised.
func String(e Expr) string {
	if e == nil {
		return ""
	}
	return strings.TrimSpace(serialize(e))
}

// Most fragments end with a single space; wrap trims and re-adds it.
func serialize(e Expr) string {
	var sb strings.Builder
	switch n := e.(type) {
	case *Value:
		sb.WriteString(formatValue(n))
		sb.WriteByte(' ')

	case *Identifier:
		if n.Name == ResultReference {
			return ResultReference
		}
		sb.WriteByte('[')
		sb.WriteString(n.Name)
		sb.WriteByte(']')

	case *Unary:
		sb.WriteString(n.Op.String())
		sb.WriteString(wrap(n.Operand, true))

	case *Binary:
		switch n.Op {
		case Factorial:
			sb.WriteString(wrap(n.Left, false))
			sb.WriteString(strings.Repeat("!", factorialStep(n.Right)))
			return sb.String()
		case IndexAccess:
			sb.WriteString(wrap(n.Left, false))
			sb.WriteByte('[')
			sb.WriteString(strings.TrimSpace(serialize(n.Right)))
			sb.WriteString("] ")
			return sb.String()
		}
		if n.Op.IsAssignment() {
			sb.WriteString(target(n.Left))
		} else {
			sb.WriteString(wrap(n.Left, true))
		}
		sb.WriteString(spelling(n.Op))
		sb.WriteByte(' ')
		sb.WriteString(wrap(n.Right, true))

	case *Ternary:
		sb.WriteString(wrap(n.Cond, true))
		sb.WriteString("? ")
		sb.WriteString(wrap(n.Then, true))
		sb.WriteString(": ")
		sb.WriteString(wrap(n.Else, true))

	case *Function:
		sb.WriteString(n.Name.Name)
		sb.WriteByte('(')
		for i, arg := range n.Args.Items {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(strings.TrimRight(serialize(arg), " "))
		}
		sb.WriteString(") ")

	case *List:
		sb.WriteByte('(')
		for i, item := range n.Items {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strings.TrimRight(serialize(item), " "))
		}
		sb.WriteByte(')')

	case *Percent:
		sb.WriteString(strings.TrimRight(wrap(n.Operand, true), " "))
		sb.WriteByte('%')

	case *Group:
		return serialize(n.Inner)
	}
	return sb.String()
}

func wrap(e Expr, appendSpace bool) string {
	if _, ok := e.(*Value); ok {
		s := serialize(e)
		if !appendSpace {
			s = strings.TrimRight(s, " ")
		}
		return s
	}

	parens := true
	if b, ok := e.(*Binary); ok && b.Op == Factorial {
		parens = false
	}
	switch e.(type) {
	case *Percent, *List:
		parens = false
	}

	s := strings.TrimRight(serialize(e), " ")
	if parens {
		s = "(" + s + ")"
	}
	if appendSpace {
		s += " "
	}
	return s
}

// spelling returns the symbol of op that parses back to op under every
// option set: "=" assigns with C-style assignments and "%" is a percent
// suffix with percent calculation.
func spelling(op BinaryOp) string {
	switch op {
	case Equal:
		return "=="
	case Modulo:
		return "mod"
	}
	return op.String()
}

// target renders the left side of an assignment. The parser only accepts
// a bare identifier or an identifier with an index there.
func target(e Expr) string {
	switch n := e.(type) {
	case *Identifier:
		return serialize(n) + " "
	case *Binary:
		if id, ok := n.Left.(*Identifier); ok && n.Op == IndexAccess {
			return serialize(id) + "[" + strings.TrimSpace(serialize(n.Right)) + "] "
		}
	}
	return wrap(e, true)
}

func factorialStep(e Expr) int {
	v, ok := e.(*Value)
	if !ok {
		return 1
	}
	switch n := v.Value.(type) {
	case int32:
		return int(n)
	case int64:
		return int(n)
	case int:
		return n
	}
	return 1
}

type runer interface{ Rune() rune }

func formatValue(v *Value) string {
	switch v.Type {
	case ValueBoolean:
		if b, _ := v.Value.(bool); b {
			return "True"
		}
		return "False"
	case ValueString:
		return quote(fmt.Sprint(v.Value))
	case ValueChar:
		if r, ok := v.Value.(runer); ok {
			return quote(string(r.Rune()))
		}
		return quote(fmt.Sprint(v.Value))
	case ValueFloat:
		return formatReal(v.Value)
	case ValueDateTime:
		if t, ok := v.Value.(time.Time); ok {
			return "#" + formatDate(t, v.Options()) + "#"
		}
	case ValueTimeSpan:
		if d, ok := v.Value.(time.Duration); ok {
			return "#" + formatSpan(d, v.Options()) + "#"
		}
	}
	return fmt.Sprint(v.Value)
}

func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	return "'" + s + "'"
}

// infinityText is a real literal beyond every real range. It parses back
// to +Inf.
const infinityText = "1e400"

// formatReal renders floats with an invariant '.' and keeps a fractional
// part so that the text re-parses as a real number.
func formatReal(v any) string {
	var s string
	switch n := v.(type) {
	case float64:
		if math.IsInf(n, 0) {
			return signedInfinity(n)
		}
		s = strconv.FormatFloat(n, 'f', -1, 64)
	case float32:
		if math.IsInf(float64(n), 0) {
			return signedInfinity(float64(n))
		}
		s = strconv.FormatFloat(float64(n), 'f', -1, 32)
	case decimal.Decimal:
		s = n.String()
	case *big.Float:
		s = n.Text('f', -1)
	default:
		return fmt.Sprint(v)
	}
	if !strings.ContainsAny(s, ".eEIN") {
		s += ".0"
	}
	return s
}

func signedInfinity(f float64) string {
	if f < 0 {
		return "-" + infinityText
	}
	return infinityText
}

func formatDate(t time.Time, o *options.Options) string {
	dateSep, timeSep := options.BuiltInDateSeparator, options.BuiltInTimeSeparator
	order := byte('M')
	if o != nil {
		dateSep, timeSep = o.DateSeparator(), o.TimeSeparator()
		if p := o.Culture.ShortDatePattern; p != "" {
			order = p[0]
		}
	}

	y, m, d := t.Date()
	var date string
	switch order {
	case 'y':
		date = fmt.Sprintf("%04d%s%02d%s%02d", y, dateSep, int(m), dateSep, d)
	case 'd':
		date = fmt.Sprintf("%02d%s%02d%s%04d", d, dateSep, int(m), dateSep, y)
	default:
		date = fmt.Sprintf("%02d%s%02d%s%04d", int(m), dateSep, d, dateSep, y)
	}

	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return date
	}
	return fmt.Sprintf("%s %02d%s%02d%s%02d", date, t.Hour(), timeSep, t.Minute(), timeSep, t.Second())
}

func formatSpan(d time.Duration, o *options.Options) string {
	timeSep := options.BuiltInTimeSeparator
	if o != nil {
		timeSep = o.TimeSeparator()
	}
	h := int64(d / time.Hour)
	m := int64(d%time.Hour) / int64(time.Minute)
	s := int64(d%time.Minute) / int64(time.Second)
	return fmt.Sprintf("%02d%s%02d%s%02d", h, timeSep, m, timeSep, s)
}
