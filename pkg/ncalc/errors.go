package ncalc

import (
	"errors"
	"fmt"
)

// Sentinel errors for the Expression wrapper.
var (
	// ErrEmptyExpression indicates an expression with no text, or text
	// made only of whitespace, without AllowNullOrEmptyExpressions.
	ErrEmptyExpression = errors.New("expression is empty")

	// ErrNoResult indicates an @ reference in a session that has no
	// stored result yet.
	ErrNoResult = errors.New("no previous result")

	// ErrNoStore indicates a session was created without a result store.
	ErrNoStore = errors.New("result store not configured")
)

// ExpressionError wraps a parse or evaluation error with the expression
// text it came from.
type ExpressionError struct {
	// Text is the expression text.
	Text string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ExpressionError) Error() string {
	return fmt.Sprintf("expression %q: %v", e.Text, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ExpressionError) Unwrap() error {
	return e.Err
}

func wrapError(text string, err error) error {
	if err == nil {
		return nil
	}
	var ee *ExpressionError
	if errors.As(err, &ee) {
		return err
	}
	return &ExpressionError{Text: text, Err: err}
}
