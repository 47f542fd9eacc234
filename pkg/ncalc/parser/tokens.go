package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/ast"
	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/options"
)

// token is one spelling of an operator. Keywords match case-insensitively
// on a word boundary; a multi-word keyword accepts any run of whitespace
// between its words. A symbol fails when it is directly followed by one of
// the characters in notBefore.
type token struct {
	text      string
	keyword   bool
	notBefore string
}

type binaryToken struct {
	token
	op ast.BinaryOp
}

type unaryToken struct {
	token
	op ast.UnaryOp
}

// grammar holds the operator tables of every precedence level, built once
// per option set.
type grammar struct {
	assignment     []binaryToken
	xor            []binaryToken
	or             []binaryToken
	and            []binaryToken
	equality       []binaryToken
	relational     []binaryToken
	shift          []binaryToken
	additive       []binaryToken
	multiplicative []binaryToken
	unary          []unaryToken

	// levels lists the left-associative binary levels from loosest to
	// tightest.
	levels [][]binaryToken
}

func sym(text string, op ast.BinaryOp, notBefore string) binaryToken {
	return binaryToken{token: token{text: text, notBefore: notBefore}, op: op}
}

func kw(text string, op ast.BinaryOp) binaryToken {
	return binaryToken{token: token{text: text, keyword: true}, op: op}
}

func newGrammar(o options.Options) grammar {
	var (
		assign   = o.Has(options.UseAssignments)
		cStyle   = assign && o.Has(options.UseCStyleAssignments)
		unicodes = o.Has(options.UseUnicodeCharsForOperations)
		skipOps  = o.Has(options.SkipLogicalAndBitwiseOpChars)
		comments = o.Has(options.SupportCStyleComments)
		percent  = o.HasAdvanced(options.CalculatePercent)
	)

	// Compound assignment symbols must not be split into an operator and
	// a stray '='.
	eq := ""
	if assign {
		eq = "="
	}

	var g grammar

	if assign {
		g.assignment = []binaryToken{
			sym(":=", ast.Assignment, ""),
			sym("+=", ast.PlusAssignment, ""),
			sym("-=", ast.MinusAssignment, ""),
			sym("*=", ast.MultiplyAssignment, ""),
			sym("/=", ast.DivAssignment, ""),
			sym("&=", ast.AndAssignment, ""),
			sym("|=", ast.OrAssignment, ""),
			sym("^=", ast.XOrAssignment, ""),
		}
		if cStyle {
			g.assignment = append(g.assignment, sym("=", ast.Assignment, "="))
		}
	}

	g.xor = []binaryToken{
		sym("^", ast.BitwiseXOr, eq),
		kw("xor", ast.XOr),
	}

	g.or = []binaryToken{kw("or", ast.Or)}
	g.and = []binaryToken{kw("and", ast.And)}
	if !skipOps {
		g.or = append(g.or, sym("||", ast.Or, ""), sym("|", ast.BitwiseOr, eq))
		g.and = append(g.and, sym("&&", ast.And, ""), sym("&", ast.BitwiseAnd, eq))
	}
	if unicodes {
		g.or = append(g.or, sym("∨", ast.Or, ""))
		g.and = append(g.and, sym("∧", ast.And, ""))
	}

	g.equality = []binaryToken{
		sym("==", ast.Equal, ""),
		sym("!=", ast.NotEqual, ""),
		sym("<>", ast.NotEqual, ""),
	}
	if !cStyle {
		g.equality = append(g.equality, sym("=", ast.Equal, ""))
	}
	if unicodes {
		g.equality = append(g.equality, sym("≠", ast.NotEqual, ""))
	}

	g.relational = []binaryToken{
		sym("<=", ast.LessOrEqual, ""),
		sym(">=", ast.GreaterOrEqual, ""),
		sym("<", ast.Less, "<>="),
		sym(">", ast.Greater, ">="),
		kw("in", ast.In),
		kw("not in", ast.NotIn),
		kw("like", ast.Like),
		kw("not like", ast.NotLike),
	}
	if unicodes {
		g.relational = append(g.relational, sym("≤", ast.LessOrEqual, ""), sym("≥", ast.GreaterOrEqual, ""))
	}

	g.shift = []binaryToken{
		sym("<<", ast.LeftShift, ""),
		sym(">>", ast.RightShift, ""),
	}

	g.additive = []binaryToken{
		sym("+", ast.Plus, eq),
		sym("-", ast.Minus, eq),
	}

	g.multiplicative = []binaryToken{
		sym("*", ast.Times, "*"+eq),
		kw("mod", ast.Modulo),
		kw("div", ast.IntDiv),
	}
	if comments {
		g.multiplicative = append(g.multiplicative, sym("/", ast.Div, eq))
	} else {
		g.multiplicative = append(g.multiplicative, sym("//", ast.FloorDiv, ""), sym("/", ast.Div, "/"+eq))
	}
	if !percent {
		g.multiplicative = append(g.multiplicative, sym("%", ast.Modulo, ""))
	}
	if unicodes {
		g.multiplicative = append(g.multiplicative, sym("×", ast.Times, ""), sym("÷", ast.Div, ""))
	}

	g.unary = []unaryToken{
		{token: token{text: "-"}, op: ast.Negate},
		{token: token{text: "!", notBefore: "="}, op: ast.Not},
		{token: token{text: "not", keyword: true}, op: ast.Not},
		{token: token{text: "~"}, op: ast.BitwiseNot},
	}
	if unicodes {
		g.unary = append(g.unary,
			unaryToken{token: token{text: "¬"}, op: ast.Not},
			unaryToken{token: token{text: "√"}, op: ast.SqRoot},
			unaryToken{token: token{text: "∛"}, op: ast.CbRoot},
			unaryToken{token: token{text: "∜"}, op: ast.FourthRoot},
		)
	}

	g.levels = [][]binaryToken{g.xor, g.or, g.and, g.equality, g.relational, g.shift, g.additive, g.multiplicative}
	return g
}

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_' || r == '$'
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}

// match reports the byte length of t at the start of s, or 0.
func (t token) match(s string) int {
	if !t.keyword {
		if !strings.HasPrefix(s, t.text) {
			return 0
		}
		if rest := s[len(t.text):]; rest != "" && strings.ContainsRune(t.notBefore, firstRune(rest)) {
			return 0
		}
		return len(t.text)
	}

	n := 0
	for i, word := range strings.Fields(t.text) {
		if i > 0 {
			ws := leadingSpace(s[n:])
			if ws == 0 {
				return 0
			}
			n += ws
		}
		if len(s)-n < len(word) || !strings.EqualFold(s[n:n+len(word)], word) {
			return 0
		}
		n += len(word)
	}
	if n < len(s) && isIdentPart(firstRune(s[n:])) {
		return 0
	}
	return n
}

func firstRune(s string) rune {
	r, _ := utf8.DecodeRuneInString(s)
	return r
}

func leadingSpace(s string) int {
	n := 0
	for n < len(s) {
		r, size := utf8.DecodeRuneInString(s[n:])
		if !unicode.IsSpace(r) {
			break
		}
		n += size
	}
	return n
}
