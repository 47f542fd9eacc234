package ast

// BinaryOp selects the evaluation of a Binary node.
type BinaryOp int

const (
	And BinaryOp = iota
	Or
	XOr
	NotEqual
	LessOrEqual
	GreaterOrEqual
	Less
	Greater
	Equal
	Minus
	Plus
	Modulo
	Div
	IntDiv
	FloorDiv
	Times
	BitwiseOr
	BitwiseAnd
	BitwiseXOr
	LeftShift
	RightShift
	Exponentiation
	In
	NotIn
	Like
	NotLike
	Factorial
	Assignment
	PlusAssignment
	MinusAssignment
	MultiplyAssignment
	DivAssignment
	AndAssignment
	OrAssignment
	XOrAssignment
	StatementSequence
	IndexAccess
)

var binarySymbols = [...]string{
	And:                "and",
	Or:                 "or",
	XOr:                "xor",
	NotEqual:           "!=",
	LessOrEqual:        "<=",
	GreaterOrEqual:     ">=",
	Less:               "<",
	Greater:            ">",
	Equal:              "=",
	Minus:              "-",
	Plus:               "+",
	Modulo:             "%",
	Div:                "/",
	IntDiv:             "div",
	FloorDiv:           "//",
	Times:              "*",
	BitwiseOr:          "|",
	BitwiseAnd:         "&",
	BitwiseXOr:         "^",
	LeftShift:          "<<",
	RightShift:         ">>",
	Exponentiation:     "**",
	In:                 "in",
	NotIn:              "not in",
	Like:               "like",
	NotLike:            "not like",
	Factorial:          "!",
	Assignment:         ":=",
	PlusAssignment:     "+=",
	MinusAssignment:    "-=",
	MultiplyAssignment: "*=",
	DivAssignment:      "/=",
	AndAssignment:      "&=",
	OrAssignment:       "|=",
	XOrAssignment:      "^=",
	StatementSequence:  ";",
	IndexAccess:        "[]",
}

// String returns the canonical spelling of op.
func (op BinaryOp) String() string {
	if op < 0 || int(op) >= len(binarySymbols) {
		return "unknown"
	}
	return binarySymbols[op]
}

// IsAssignment reports whether op writes to its left operand.
func (op BinaryOp) IsAssignment() bool {
	return op >= Assignment && op <= XOrAssignment
}

// UnaryOp selects the evaluation of a Unary node.
type UnaryOp int

const (
	Not UnaryOp = iota
	Negate
	BitwiseNot
	SqRoot
	CbRoot
	FourthRoot
)

var unarySymbols = [...]string{
	Not:        "!",
	Negate:     "-",
	BitwiseNot: "~",
	SqRoot:     "√",
	CbRoot:     "∛",
	FourthRoot: "∜",
}

// String returns the canonical spelling of op.
func (op UnaryOp) String() string {
	if op < 0 || int(op) >= len(unarySymbols) {
		return ""
	}
	return unarySymbols[op]
}
