package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/ast"
)

func TestCategoryString(t *testing.T) {
	tests := []struct {
		category Category
		expected string
	}{
		{CategoryUnknown, "unknown"},
		{CategoryParse, "parse"},
		{CategoryFormat, "format"},
		{CategoryEvaluation, "evaluation"},
		{CategoryArithmetic, "arithmetic"},
		{CategoryCancelled, "cancelled"},
		{Category(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.category.String())
		})
	}
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Category
	}{
		{"nil error", nil, CategoryUnknown},
		{"parse", &ParseError{Message: "x"}, CategoryParse},
		{"format", &FormatError{Message: "Invalid DateTime format."}, CategoryFormat},
		{"evaluation", &EvaluationError{Message: "x"}, CategoryEvaluation},
		{"parameter", &ParameterNotDefinedError{Name: "a"}, CategoryEvaluation},
		{"function", &FunctionNotFoundError{Name: "f"}, CategoryEvaluation},
		{"index", &ParameterIndexError{Message: "x"}, CategoryEvaluation},
		{"arithmetic", NewOverflow("+"), CategoryArithmetic},
		{"cancellation", &CancellationError{Err: context.Canceled}, CategoryCancelled},
		{"bare context error", context.DeadlineExceeded, CategoryCancelled},
		{"wrapped", fmt.Errorf("outer: %w", NewDivideByZero("/")), CategoryArithmetic},
		{"categorized", &CategorizedError{Err: errors.New("x"), Category: CategoryParse}, CategoryParse},
		{"unknown", errors.New("boom"), CategoryUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Categorize(tt.err))
		})
	}
}

func TestParseError_Message(t *testing.T) {
	err := &ParseError{Expression: "1 +", Location: ast.NewLocation(3, 1, 4)}
	assert.Equal(t, "Invalid token in expression at position (1:4)", err.Error())

	err = &ParseError{Message: "Parenthesis not closed.", Location: ast.EmptyLocation}
	assert.Equal(t, "Parenthesis not closed.", err.Error())
}

func TestMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"parameter", &ParameterNotDefinedError{Name: "x"}, "Parameter x is not defined."},
		{"function", &FunctionNotFoundError{Name: "foo"}, "Function 'foo' not found."},
		{"overflow", NewOverflow("+"), "Arithmetic operation resulted in an overflow."},
		{"divide", NewDivideByZero("/"), "Attempted to divide by zero."},
		{"operands", NewInvalidOperands("+", "bool", "int32"), "Operator '+' can't be applied to operands of types 'bool' and 'int32'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestCancellationError_Unwrap(t *testing.T) {
	err := &CancellationError{Err: context.Canceled}
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, IsCancelled(err))
	assert.False(t, IsParseError(err))
}

func TestNewCategorized(t *testing.T) {
	err := NewCategorized(&FunctionNotFoundError{Name: "f"}, "evaluate")
	assert.Equal(t, CategoryEvaluation, err.Category)
	assert.Contains(t, err.Error(), "evaluate: Function 'f' not found.")
	assert.Contains(t, err.Error(), "category: evaluation")
}
