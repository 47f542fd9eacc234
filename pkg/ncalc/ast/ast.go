// Package ast defines the expression tree produced by the parser and
// consumed by the evaluator.
//
// The node set is closed: Value, Identifier, Unary, Binary, Ternary,
// Function, List, Percent and Group. Consumers dispatch with a type switch.
// Nodes are immutable after parsing except for the attached options, which
// the evaluator may replace before a traversal.
package ast

import (
	"github.com/google/uuid"

	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/options"
)

// Expr is implemented by every node.
type Expr interface {
	Loc() Location
	Options() *options.Options
	SetOptions(o *options.Options)
	exprNode()
}

type base struct {
	loc  Location
	opts *options.Options
}

func (b *base) Loc() Location                 { return b.loc }
func (b *base) Options() *options.Options     { return b.opts }
func (b *base) SetOptions(o *options.Options) { b.opts = o }
func (b *base) exprNode()                     {}

// ValueType tags the literal held by a Value node.
type ValueType int

const (
	ValueBoolean ValueType = iota
	ValueString
	ValueChar
	ValueInteger
	ValueFloat
	ValueDateTime
	ValueTimeSpan
	ValueGUID
)

// Value is a literal.
type Value struct {
	base
	Type  ValueType
	Value any
}

// NewValue creates a literal node. The caller guarantees that typ matches
// the shape of v.
func NewValue(v any, typ ValueType, loc Location) *Value {
	return &Value{base: base{loc: loc}, Type: typ, Value: v}
}

// Identifier is a parameter reference. ID is unique per node and lets
// handlers correlate events; it takes no part in equality of trees.
type Identifier struct {
	base
	Name string
	ID   uuid.UUID
}

// NewIdentifier creates an identifier with a fresh ID.
func NewIdentifier(name string, loc Location) *Identifier {
	return &Identifier{base: base{loc: loc}, Name: name, ID: uuid.New()}
}

// ResultReference is the identifier name bound to the previous result.
const ResultReference = "@"

// Unary applies Op to Operand.
type Unary struct {
	base
	Op      UnaryOp
	Operand Expr
}

// NewUnary creates a unary node.
func NewUnary(op UnaryOp, operand Expr, loc Location) *Unary {
	return &Unary{base: base{loc: loc}, Op: op, Operand: operand}
}

// Binary applies Op to Left and Right. For Factorial, Right is the
// integer step; for IndexAccess, Right is the index.
type Binary struct {
	base
	Op    BinaryOp
	Left  Expr
	Right Expr
}

// NewBinary creates a binary node.
func NewBinary(op BinaryOp, left, right Expr, loc Location) *Binary {
	return &Binary{base: base{loc: loc}, Op: op, Left: left, Right: right}
}

// Ternary is cond ? Then : Else.
type Ternary struct {
	base
	Cond Expr
	Then Expr
	Else Expr
}

// NewTernary creates a ternary node.
func NewTernary(cond, then, els Expr, loc Location) *Ternary {
	return &Ternary{base: base{loc: loc}, Cond: cond, Then: then, Else: els}
}

// Function is a call. Args are handed to the callee unevaluated.
type Function struct {
	base
	Name *Identifier
	Args *List
}

// NewFunction creates a call node.
func NewFunction(name *Identifier, args *List, loc Location) *Function {
	if args == nil {
		args = NewList(nil, loc)
	}
	return &Function{base: base{loc: loc}, Name: name, Args: args}
}

// List is an ordered sequence of expressions.
type List struct {
	base
	Items []Expr
}

// NewList creates a list node.
func NewList(items []Expr, loc Location) *List {
	return &List{base: base{loc: loc}, Items: items}
}

// Len returns the number of items.
func (l *List) Len() int { return len(l.Items) }

// Percent marks the value of Operand as a percentage.
type Percent struct {
	base
	Operand Expr
}

// NewPercent creates a percent node.
func NewPercent(operand Expr, loc Location) *Percent {
	return &Percent{base: base{loc: loc}, Operand: operand}
}

// Group is a parenthesised sub-expression.
type Group struct {
	base
	Inner Expr
}

// NewGroup creates a group node.
func NewGroup(inner Expr, loc Location) *Group {
	return &Group{base: base{loc: loc}, Inner: inner}
}

// Walk calls fn for e and, while fn returns true, for its children in
// source order.
func Walk(e Expr, fn func(Expr) bool) {
	if e == nil || !fn(e) {
		return
	}
	switch n := e.(type) {
	case *Unary:
		Walk(n.Operand, fn)
	case *Binary:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	case *Ternary:
		Walk(n.Cond, fn)
		Walk(n.Then, fn)
		Walk(n.Else, fn)
	case *Function:
		Walk(n.Args, fn)
	case *List:
		for _, item := range n.Items {
			Walk(item, fn)
		}
	case *Percent:
		Walk(n.Operand, fn)
	case *Group:
		Walk(n.Inner, fn)
	}
}

// ApplyOptions attaches o to every node of e.
func ApplyOptions(e Expr, o *options.Options) {
	Walk(e, func(n Expr) bool {
		n.SetOptions(o)
		return true
	})
}

// Parameters returns the distinct identifier names referenced by e, in
// first-seen order. Function names are not included.
func Parameters(e Expr) []string {
	var names []string
	seen := make(map[string]struct{})
	Walk(e, func(n Expr) bool {
		if id, ok := n.(*Identifier); ok {
			if _, dup := seen[id.Name]; !dup {
				seen[id.Name] = struct{}{}
				names = append(names, id.Name)
			}
		}
		return true
	})
	return names
}

// Functions returns the distinct function names called by e, in
// first-seen order.
func Functions(e Expr) []string {
	var names []string
	seen := make(map[string]struct{})
	Walk(e, func(n Expr) bool {
		if fn, ok := n.(*Function); ok {
			if _, dup := seen[fn.Name.Name]; !dup {
				seen[fn.Name.Name] = struct{}{}
				names = append(names, fn.Name.Name)
			}
		}
		return true
	})
	return names
}
