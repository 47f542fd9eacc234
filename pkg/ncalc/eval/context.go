package eval

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/ast"
	ferrors "github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/errors"
	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/observability"
	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/options"
)

// Function is a host-registered function. Its arguments arrive
// unevaluated; the function forces the ones it needs through Call.
type Function func(ctx context.Context, call *Call) (any, error)

// DynamicParameter computes a parameter value each time it is referenced.
type DynamicParameter func(ctx context.Context, p *ParameterData) (any, error)

// ParameterData describes a dynamic parameter reference.
type ParameterData struct {
	Name    string
	ID      uuid.UUID
	Context *Context
}

// ParameterHandler may supply the value of an identifier before the
// parameter tables are consulted.
type ParameterHandler func(ctx context.Context, name string, args *ParameterArgs) error

// FunctionHandler may supply the result of a call before the function
// tables are consulted.
type FunctionHandler func(ctx context.Context, name string, args *FunctionArgs) error

// UpdateHandler is notified before an assignment writes to the parameter
// table. Clearing args.Update vetoes the write; the assignment still
// yields its value.
type UpdateHandler func(ctx context.Context, name string, args *UpdateArgs) error

// MatchHandler may decide a like comparison instead of the built-in
// pattern matcher.
type MatchHandler func(ctx context.Context, args *MatchArgs) error

// ParameterArgs is passed to a ParameterHandler.
type ParameterArgs struct {
	ID uuid.UUID

	result    any
	hasResult bool
}

// SetResult supplies the parameter value. A nil result is a valid null.
func (a *ParameterArgs) SetResult(v any) {
	a.result, a.hasResult = v, true
}

// Result returns the supplied value and whether one was set.
func (a *ParameterArgs) Result() (any, bool) {
	return a.result, a.hasResult
}

// FunctionArgs is passed to a FunctionHandler.
type FunctionArgs struct {
	ID   uuid.UUID
	Args []Argument

	result    any
	hasResult bool
}

// SetResult supplies the call result.
func (a *FunctionArgs) SetResult(v any) {
	a.result, a.hasResult = v, true
}

// Result returns the supplied value and whether one was set.
func (a *FunctionArgs) Result() (any, bool) {
	return a.result, a.hasResult
}

// UpdateArgs is passed to an UpdateHandler.
type UpdateArgs struct {
	ID    uuid.UUID
	Value any

	// Index is the element being written when HasIndex is set.
	Index    int
	HasIndex bool

	// Update starts true. A handler sets it to false to keep the
	// parameter table unchanged.
	Update bool
}

// MatchArgs is passed to a MatchHandler.
type MatchArgs struct {
	Value      string
	Pattern    string
	IgnoreCase bool

	result    bool
	hasResult bool
}

// SetResult decides the match.
func (a *MatchArgs) SetResult(matched bool) {
	a.result, a.hasResult = matched, true
}

// Result returns the decision and whether one was made.
func (a *MatchArgs) Result() (bool, bool) {
	return a.result, a.hasResult
}

// Nested is a parameter value that evaluates itself. The evaluator hands
// it the referencing context so it can inherit parameters and handlers.
type Nested interface {
	EvaluateNested(ctx context.Context, parent *Context) (any, error)
}

// Context is the environment an expression is evaluated in. Parameters is
// shared with the caller and mutated in place by assignments. A Context
// must not be used by concurrent evaluations.
type Context struct {
	Options options.Options

	Parameters        map[string]any
	DynamicParameters map[string]DynamicParameter
	Functions         map[string]Function

	ParameterHandler ParameterHandler
	FunctionHandler  FunctionHandler
	UpdateHandler    UpdateHandler
	MatchHandler     MatchHandler

	// Logger receives parameter writes and function dispatch at Debug.
	// Nil disables logging.
	Logger *slog.Logger

	// Metrics counts function dispatch. Nil disables it.
	Metrics observability.MetricsRecorder
}

// NewContext returns a context with empty tables.
func NewContext(o options.Options) *Context {
	return &Context{
		Options:           o,
		Parameters:        make(map[string]any),
		DynamicParameters: make(map[string]DynamicParameter),
		Functions:         make(map[string]Function),
	}
}

// key returns the table key for name under the lookup options.
func (c *Context) key(name string) string {
	if c.Options.Has(options.LowerCaseIdentifierLookup) {
		return strings.ToLower(name)
	}
	return name
}

// Inherit copies c's parameters, dynamic parameters and handlers onto
// child, overwriting entries of the same name.
func (c *Context) Inherit(child *Context) {
	if child.Parameters == nil {
		child.Parameters = make(map[string]any, len(c.Parameters))
	}
	for k, v := range c.Parameters {
		child.Parameters[k] = v
	}
	if child.DynamicParameters == nil {
		child.DynamicParameters = make(map[string]DynamicParameter, len(c.DynamicParameters))
	}
	for k, v := range c.DynamicParameters {
		child.DynamicParameters[k] = v
	}
	if c.ParameterHandler != nil {
		child.ParameterHandler = c.ParameterHandler
	}
	if c.FunctionHandler != nil {
		child.FunctionHandler = c.FunctionHandler
	}
	if c.UpdateHandler != nil {
		child.UpdateHandler = c.UpdateHandler
	}
	if c.MatchHandler != nil {
		child.MatchHandler = c.MatchHandler
	}
}

// Call is a function invocation handed to a Function.
type Call struct {
	Name     string
	ID       uuid.UUID
	Args     []Argument
	Context  *Context
	Location ast.Location
}

// Eval evaluates argument i. An index outside the argument list is an
// EvaluationError.
func (c *Call) Eval(ctx context.Context, i int) (any, error) {
	if i < 0 || i >= len(c.Args) {
		return nil, ferrors.NewEvaluationError(c.Location,
			"%s() has %d argument(s), argument %d was requested", c.Name, len(c.Args), i)
	}
	return c.Args[i].Evaluate(ctx)
}

// Len returns the number of arguments.
func (c *Call) Len() int { return len(c.Args) }

// Argument is an unevaluated function argument.
type Argument struct {
	expr ast.Expr
	ev   *Evaluator
}

// Expr returns the argument's tree.
func (a Argument) Expr() ast.Expr { return a.expr }

// Evaluate evaluates the argument in the calling context.
func (a Argument) Evaluate(ctx context.Context) (any, error) {
	return a.ev.eval(ctx, a.expr)
}

// String returns the argument in its serialized form.
func (a Argument) String() string { return ast.String(a.expr) }
