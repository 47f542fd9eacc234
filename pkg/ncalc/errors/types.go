package errors

import (
	"fmt"

	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/ast"
)

// DefaultParseMessage is reported when the parser cannot name a more
// specific problem.
const DefaultParseMessage = "Invalid token in expression"

// ParseError indicates malformed or incomplete expression text.
type ParseError struct {
	Expression string
	Message    string
	Location   ast.Location
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = DefaultParseMessage
	}
	if e.Location.IsEmpty() {
		return msg
	}
	return fmt.Sprintf("%s at position (%d:%d)", msg, e.Location.Row, e.Location.Column)
}

// FormatError indicates a literal whose value could not be converted,
// such as a date that matches no mask.
type FormatError struct {
	Message  string
	Text     string
	Location ast.Location
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	if e.Text != "" {
		return fmt.Sprintf("%s (%q)", e.Message, e.Text)
	}
	return e.Message
}

// EvaluationError indicates a semantic violation during evaluation.
type EvaluationError struct {
	Message  string
	Location ast.Location
}

// Error implements the error interface.
func (e *EvaluationError) Error() string {
	return e.Message
}

// NewEvaluationError creates an evaluation error at loc.
func NewEvaluationError(loc ast.Location, format string, args ...any) *EvaluationError {
	return &EvaluationError{Message: fmt.Sprintf(format, args...), Location: loc}
}

// ParameterNotDefinedError indicates an identifier that no table or
// handler could resolve.
type ParameterNotDefinedError struct {
	Name     string
	Location ast.Location
}

// Error implements the error interface.
func (e *ParameterNotDefinedError) Error() string {
	return fmt.Sprintf("Parameter %s is not defined.", e.Name)
}

// FunctionNotFoundError indicates a call to an unknown function.
type FunctionNotFoundError struct {
	Name     string
	Location ast.Location
}

// Error implements the error interface.
func (e *FunctionNotFoundError) Error() string {
	return fmt.Sprintf("Function '%s' not found.", e.Name)
}

// ParameterIndexError indicates a failed index read or index assignment.
// Name is empty when the indexed expression is not a plain identifier.
type ParameterIndexError struct {
	Name     string
	Message  string
	Location ast.Location
}

// Error implements the error interface.
func (e *ParameterIndexError) Error() string {
	return e.Message
}

// ArithmeticKind classifies arithmetic failures.
type ArithmeticKind int

const (
	// Overflow is a checked-arithmetic overflow or an infinite float result.
	Overflow ArithmeticKind = iota

	// InvalidOperand is an operand type the operator does not accept.
	InvalidOperand

	// DivideByZero is an integer or decimal division by zero.
	DivideByZero

	// Unsupported is an operation with no defined representation.
	Unsupported
)

// String returns the kind name.
func (k ArithmeticKind) String() string {
	switch k {
	case Overflow:
		return "overflow"
	case InvalidOperand:
		return "invalid_operand"
	case DivideByZero:
		return "divide_by_zero"
	case Unsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

// ArithmeticError is raised by the numeric tower.
type ArithmeticError struct {
	Op      string
	Kind    ArithmeticKind
	Message string
}

// Error implements the error interface.
func (e *ArithmeticError) Error() string {
	return e.Message
}

// NewOverflow creates the overflow error for op.
func NewOverflow(op string) *ArithmeticError {
	return &ArithmeticError{Op: op, Kind: Overflow, Message: "Arithmetic operation resulted in an overflow."}
}

// NewDivideByZero creates the division by zero error for op.
func NewDivideByZero(op string) *ArithmeticError {
	return &ArithmeticError{Op: op, Kind: DivideByZero, Message: "Attempted to divide by zero."}
}

// NewInvalidOperands creates the error for an operator applied to operand
// types it does not accept.
func NewInvalidOperands(op, left, right string) *ArithmeticError {
	return &ArithmeticError{
		Op:      op,
		Kind:    InvalidOperand,
		Message: fmt.Sprintf("Operator '%s' can't be applied to operands of types '%s' and '%s'", op, left, right),
	}
}

// NewUnsupported creates the error for an operation without a defined result.
func NewUnsupported(op, format string, args ...any) *ArithmeticError {
	return &ArithmeticError{Op: op, Kind: Unsupported, Message: fmt.Sprintf(format, args...)}
}

// CancellationError reports that evaluation stopped because its context
// was cancelled.
type CancellationError struct {
	Err error
}

// Error implements the error interface.
func (e *CancellationError) Error() string {
	return fmt.Sprintf("evaluation cancelled: %v", e.Err)
}

// Unwrap returns the context error.
func (e *CancellationError) Unwrap() error {
	return e.Err
}
