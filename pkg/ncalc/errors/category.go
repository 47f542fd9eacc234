// Package errors defines the error taxonomy of the expression engine.
//
// Every failure surfaced by parsing or evaluation is one of the typed errors
// in this package, so callers can tell them apart with errors.As:
//   - ParseError: malformed or incomplete input text
//   - FormatError: a literal whose shape matched but whose value does not convert
//   - EvaluationError and its specialisations: semantic failures during evaluation
//   - ArithmeticError: overflow, invalid operand types, division by zero
//   - CancellationError: the evaluation context was cancelled
//
// Categorize maps any error to a coarse Category for logging and metrics.
package errors

import (
	"context"
	"errors"
	"fmt"
)

// Category groups errors by the stage that produced them.
type Category int

const (
	// CategoryUnknown is used for errors not produced by the engine.
	CategoryUnknown Category = iota

	// CategoryParse indicates the expression text could not be parsed.
	CategoryParse

	// CategoryFormat indicates a literal could not be converted to a value.
	CategoryFormat

	// CategoryEvaluation indicates a semantic failure while evaluating.
	// Examples: undefined parameter, unknown function, bad index.
	CategoryEvaluation

	// CategoryArithmetic indicates a numeric failure.
	// Examples: overflow, division by zero, bool operand.
	CategoryArithmetic

	// CategoryCancelled indicates the evaluation was cancelled or timed out.
	CategoryCancelled
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryParse:
		return "parse"
	case CategoryFormat:
		return "format"
	case CategoryEvaluation:
		return "evaluation"
	case CategoryArithmetic:
		return "arithmetic"
	case CategoryCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// CategorizedError wraps an error with its category and context.
type CategorizedError struct {
	// Err is the underlying error.
	Err error

	// Category is the stage the error belongs to.
	Category Category

	// Context describes what operation was being attempted.
	Context string
}

// Error implements the error interface.
func (e *CategorizedError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s: %s (category: %s)", e.Context, e.Err, e.Category)
	}
	return fmt.Sprintf("%s (category: %s)", e.Err, e.Category)
}

// Unwrap returns the underlying error.
func (e *CategorizedError) Unwrap() error {
	return e.Err
}

// NewCategorized creates a new categorized error. The category is derived
// from err.
func NewCategorized(err error, context string) *CategorizedError {
	return &CategorizedError{
		Err:      err,
		Category: Categorize(err),
		Context:  context,
	}
}

// Categorize determines which stage an error belongs to.
func Categorize(err error) Category {
	if err == nil {
		return CategoryUnknown
	}

	var catErr *CategorizedError
	if errors.As(err, &catErr) {
		return catErr.Category
	}

	var cancelErr *CancellationError
	if errors.As(err, &cancelErr) {
		return CategoryCancelled
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return CategoryCancelled
	}

	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		return CategoryParse
	}

	var formatErr *FormatError
	if errors.As(err, &formatErr) {
		return CategoryFormat
	}

	var arithErr *ArithmeticError
	if errors.As(err, &arithErr) {
		return CategoryArithmetic
	}

	var (
		evalErr  *EvaluationError
		paramErr *ParameterNotDefinedError
		funcErr  *FunctionNotFoundError
		indexErr *ParameterIndexError
	)
	if errors.As(err, &evalErr) || errors.As(err, &paramErr) ||
		errors.As(err, &funcErr) || errors.As(err, &indexErr) {
		return CategoryEvaluation
	}

	return CategoryUnknown
}

// IsParseError reports whether err was produced while parsing.
func IsParseError(err error) bool {
	cat := Categorize(err)
	return cat == CategoryParse || cat == CategoryFormat
}

// IsCancelled reports whether err is a cancellation outcome.
func IsCancelled(err error) bool {
	return Categorize(err) == CategoryCancelled
}
