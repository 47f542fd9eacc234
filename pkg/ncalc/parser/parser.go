// Package parser turns expression text into an ast.Expr.
//
// The parser is a scannerless recursive descent over the input: every
// precedence level reads its operators straight from the text, so literal
// forms that overlap with operators (dates with '/', percent suffixes,
// based integers, GUIDs) are resolved by trying the literal first at the
// position where an operand is expected.
//
// A Parser is built for one option set and may be shared between
// goroutines.
package parser

import (
	"strings"
	"unicode/utf8"

	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/ast"
	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/datetime"
	ferrors "github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/errors"
	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/options"
)

// Messages of parse errors that name a specific problem.
const (
	BraceNotClosed       = "Brace not closed."
	ParenthesisNotClosed = "Parenthesis not closed."
	StringNotClosed      = "String not closed."
)

// Parser parses expression text under a fixed option set.
type Parser struct {
	opts    options.Options
	grammar grammar
	dates   *datetime.Converter
}

// New creates a parser for o.
func New(o options.Options) *Parser {
	return &Parser{
		opts:    o,
		grammar: newGrammar(o),
		dates:   datetime.NewConverter(o),
	}
}

// Parse parses text with a parser built for o.
func Parse(text string, o options.Options) (ast.Expr, error) {
	return New(o).Parse(text)
}

// Parse parses text. The whole input must be consumed; trailing text other
// than whitespace and comments is an error. Every node of the returned tree
// carries a copy of the parser's options.
func (p *Parser) Parse(text string) (ast.Expr, error) {
	s := &state{Parser: p, text: text}
	s.skip()
	if s.eof() {
		return nil, s.fail(s.pos, ferrors.DefaultParseMessage)
	}

	e, err := s.program()
	if err != nil {
		return nil, err
	}
	s.skip()
	if !s.eof() {
		return nil, s.fail(s.pos, ferrors.DefaultParseMessage)
	}

	ast.ApplyOptions(e, p.opts.Clone())
	return e, nil
}

// state is the cursor of one Parse call.
type state struct {
	*Parser
	text string
	pos  int
}

func (s *state) eof() bool { return s.pos >= len(s.text) }

func (s *state) rest() string { return s.text[s.pos:] }

// loc converts a byte offset into a location with a 1-based row and a
// 1-based column counted in runes.
func (s *state) loc(offset int) ast.Location {
	row, col := 1, 1
	for _, r := range s.text[:offset] {
		if r == '\n' {
			row++
			col = 1
			continue
		}
		col++
	}
	return ast.NewLocation(offset, row, col)
}

func (s *state) fail(offset int, msg string) error {
	return &ferrors.ParseError{Expression: s.text, Message: msg, Location: s.loc(offset)}
}

// skip advances over whitespace and, when enabled, comments.
func (s *state) skip() {
	for !s.eof() {
		rest := s.rest()
		if n := leadingSpace(rest); n > 0 {
			s.pos += n
			continue
		}
		if s.opts.Has(options.SupportCStyleComments) {
			if strings.HasPrefix(rest, "//") {
				s.pos += lineLength(rest)
				continue
			}
			if strings.HasPrefix(rest, "/*") {
				end := strings.Index(rest[2:], "*/")
				if end < 0 {
					s.pos = len(s.text)
				} else {
					s.pos += end + 4
				}
				continue
			}
		}
		if s.opts.Has(options.SupportPythonComments) && rest[0] == '#' {
			// A '#' closed later on the same line opens a date literal.
			line := lineLength(rest)
			if !strings.Contains(rest[1:line], "#") {
				s.pos += line
				continue
			}
		}
		return
	}
}

func lineLength(s string) int {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return i
	}
	return len(s)
}

// peek skips to the next token and reports whether it starts with text.
func (s *state) peek(text string) bool {
	s.skip()
	return strings.HasPrefix(s.rest(), text)
}

// accept consumes text when it is the next token.
func (s *state) accept(text string) bool {
	if s.peek(text) {
		s.pos += len(text)
		return true
	}
	return false
}

func (s *state) matchBinary(tokens []binaryToken) (ast.BinaryOp, int, bool) {
	s.skip()
	rest := s.rest()
	for _, t := range tokens {
		if n := t.match(rest); n > 0 {
			return t.op, n, true
		}
	}
	return 0, 0, false
}

func (s *state) matchUnary() (ast.UnaryOp, int, bool) {
	s.skip()
	rest := s.rest()
	for _, t := range s.grammar.unary {
		if n := t.match(rest); n > 0 {
			return t.op, n, true
		}
	}
	return 0, 0, false
}

// program => assignment ( ";" assignment )*
func (s *state) program() (ast.Expr, error) {
	left, err := s.expression()
	if err != nil {
		return nil, err
	}
	if !s.opts.Has(options.UseStatementSequences) {
		return left, nil
	}
	for {
		s.skip()
		at := s.pos
		if !s.accept(";") {
			return left, nil
		}
		s.skip()
		if s.eof() {
			// A trailing ';' ends the last statement.
			return left, nil
		}
		right, err := s.expression()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinary(ast.StatementSequence, left, right, s.loc(at))
	}
}

// expression => ternary ( assignOp expression )?
func (s *state) expression() (ast.Expr, error) {
	left, err := s.ternary()
	if err != nil {
		return nil, err
	}
	if len(s.grammar.assignment) == 0 {
		return left, nil
	}

	op, n, ok := s.matchBinary(s.grammar.assignment)
	if !ok {
		return left, nil
	}
	at := s.pos
	if !assignable(left) {
		return nil, s.fail(at, ferrors.DefaultParseMessage)
	}
	s.pos += n
	right, err := s.expression()
	if err != nil {
		return nil, err
	}
	return ast.NewBinary(op, left, right, s.loc(at)), nil
}

func assignable(e ast.Expr) bool {
	switch n := e.(type) {
	case *ast.Identifier:
		return n.Name != ast.ResultReference
	case *ast.Binary:
		return n.Op == ast.IndexAccess
	}
	return false
}

// ternary => xor ( "?" ternary ":" ternary )?
func (s *state) ternary() (ast.Expr, error) {
	cond, err := s.binary(0)
	if err != nil {
		return nil, err
	}
	if !s.peek("?") {
		return cond, nil
	}
	at := s.pos
	s.pos++

	then, err := s.ternary()
	if err != nil {
		return nil, err
	}
	if !s.peek(":") || strings.HasPrefix(s.rest(), ":=") {
		return nil, s.fail(s.pos, ferrors.DefaultParseMessage)
	}
	s.pos++
	els, err := s.ternary()
	if err != nil {
		return nil, err
	}
	return ast.NewTernary(cond, then, els, s.loc(at)), nil
}

// binary parses the left-associative level i and everything above it.
func (s *state) binary(i int) (ast.Expr, error) {
	levels := s.grammar.levels
	if i == len(levels) {
		return s.unary()
	}

	left, err := s.binary(i + 1)
	if err != nil {
		return nil, err
	}
	for {
		op, n, ok := s.matchBinary(levels[i])
		if !ok {
			return left, nil
		}
		at := s.pos
		s.pos += n
		right, err := s.binary(i + 1)
		if err != nil {
			return nil, err
		}
		left = ast.NewBinary(op, left, right, s.loc(at))
	}
}

// unary => unaryOp unary | exponential
func (s *state) unary() (ast.Expr, error) {
	op, n, ok := s.matchUnary()
	if !ok {
		return s.exponential()
	}
	at := s.pos
	s.pos += n
	operand, err := s.unary()
	if err != nil {
		return nil, err
	}
	return ast.NewUnary(op, operand, s.loc(at)), nil
}

// exponential => postfix ( "**" unary )?
//
// The right operand recurses through unary, which makes "**" right
// associative.
func (s *state) exponential() (ast.Expr, error) {
	left, err := s.postfix()
	if err != nil {
		return nil, err
	}
	if !s.peek("**") {
		return left, nil
	}
	at := s.pos
	s.pos += 2
	right, err := s.unary()
	if err != nil {
		return nil, err
	}
	return ast.NewBinary(ast.Exponentiation, left, right, s.loc(at)), nil
}

// postfix => primary ( "[" expression "]" | "!"+ )*
func (s *state) postfix() (ast.Expr, error) {
	e, err := s.primary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case s.peek("["):
			at := s.pos
			s.pos++
			index, err := s.expression()
			if err != nil {
				return nil, err
			}
			if !s.accept("]") {
				return nil, s.fail(s.pos, BraceNotClosed)
			}
			e = ast.NewBinary(ast.IndexAccess, e, index, s.loc(at))

		case s.peek("!") && !strings.HasPrefix(s.rest(), "!="):
			at := s.pos
			count := 0
			for strings.HasPrefix(s.rest(), "!") && !strings.HasPrefix(s.rest(), "!=") {
				s.pos++
				count++
			}
			step := ast.NewValue(int32(count), ast.ValueInteger, s.loc(at))
			e = ast.NewBinary(ast.Factorial, e, step, s.loc(at))

		default:
			return e, nil
		}
	}
}

// primary => guid | percent | based | number | boolean | datetime | string
//          | resultReference | function | group | list | identifier
func (s *state) primary() (ast.Expr, error) {
	s.skip()
	if s.eof() {
		return nil, s.fail(s.pos, ferrors.DefaultParseMessage)
	}
	start := s.pos

	if e, ok := s.guid(); ok {
		return e, nil
	}
	if e, ok, err := s.number(); ok || err != nil {
		return e, err
	}
	if e, ok := s.boolean(); ok {
		return e, nil
	}

	rest := s.rest()
	switch rest[0] {
	case '#':
		e, ok, err := s.dateTime()
		if ok || err != nil {
			return e, err
		}
		return nil, s.fail(start, ferrors.DefaultParseMessage)
	case '\'', '"':
		return s.stringLiteral()
	case '@':
		if s.opts.HasAdvanced(options.UseResultReference) {
			s.pos++
			return ast.NewIdentifier(ast.ResultReference, s.loc(start)), nil
		}
	case '(':
		return s.groupOrList()
	case '[':
		return s.delimitedIdentifier(']')
	case '{':
		return s.delimitedIdentifier('}')
	}

	r, _ := utf8.DecodeRuneInString(rest)
	if !isIdentStart(r) {
		return nil, s.fail(start, ferrors.DefaultParseMessage)
	}
	name := s.identifierName()
	if s.peek("(") {
		args, err := s.list()
		if err != nil {
			return nil, err
		}
		return ast.NewFunction(ast.NewIdentifier(name, s.loc(start)), args, s.loc(start)), nil
	}
	return ast.NewIdentifier(name, s.loc(start)), nil
}

// groupOrList parses "(" expression ")" as a group and any other
// parenthesised form as a list.
func (s *state) groupOrList() (ast.Expr, error) {
	start := s.pos
	l, err := s.list()
	if err != nil {
		return nil, err
	}
	if l.Len() == 1 {
		return ast.NewGroup(l.Items[0], s.loc(start)), nil
	}
	return l, nil
}

// list => "(" ( expression ( ("," | ";") expression )* )? ")"
func (s *state) list() (*ast.List, error) {
	start := s.pos
	if !s.accept("(") {
		return nil, s.fail(s.pos, ferrors.DefaultParseMessage)
	}
	if s.accept(")") {
		return ast.NewList(nil, s.loc(start)), nil
	}

	var items []ast.Expr
	for {
		item, err := s.expression()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		if s.accept(",") || s.accept(";") {
			continue
		}
		if s.accept(")") {
			return ast.NewList(items, s.loc(start)), nil
		}
		if s.eof() {
			return nil, s.fail(s.pos, ParenthesisNotClosed)
		}
		return nil, s.fail(s.pos, ferrors.DefaultParseMessage)
	}
}

func (s *state) identifierName() string {
	start := s.pos
	for !s.eof() {
		r, size := utf8.DecodeRuneInString(s.rest())
		if !isIdentPart(r) {
			break
		}
		s.pos += size
	}
	return s.text[start:s.pos]
}

// delimitedIdentifier parses [name] or {name}. Any character but the
// closing delimiter belongs to the name.
func (s *state) delimitedIdentifier(closing byte) (ast.Expr, error) {
	start := s.pos
	end := strings.IndexByte(s.text[start+1:], closing)
	if end < 0 {
		return nil, s.fail(len(s.text), BraceNotClosed)
	}
	name := s.text[start+1 : start+1+end]
	s.pos = start + end + 2
	return ast.NewIdentifier(name, s.loc(start)), nil
}
