package ncalc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/ast"
	ferrors "github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/errors"
	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/eval"
	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/observability"
	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/options"
	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/parser"
	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/registry"
	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/results"
)

// treeCacheSize bounds the shared cache of parsed trees.
const treeCacheSize = 1024

type treeKey struct {
	text string
	opts options.Options
}

var trees = registry.NewBounded[treeKey, ast.Expr](treeCacheSize)

// ClearCache empties the shared cache of parsed trees.
func ClearCache() {
	trees.Clear()
}

// Expression is an expression text bound to its options, parameters and
// host functions. The text is parsed on first use and the tree is reused
// by every later evaluation.
//
// An Expression must not be evaluated from several goroutines at once:
// assignments write into Parameters.
type Expression struct {
	// ID identifies the expression in logs and spans.
	ID uuid.UUID

	// Text is the source text.
	Text string

	// Parameters holds static parameter values. Assignments write here.
	Parameters map[string]any

	// DynamicParameters are computed on every reference.
	DynamicParameters map[string]eval.DynamicParameter

	functions map[string]eval.Function
	cfg       exprConfig
	logger    *slog.Logger

	mu     sync.Mutex
	parsed bool
	root   ast.Expr
	err    error
}

// New creates an expression for text. Parsing is deferred until Parse or
// the first evaluation.
//
// Example:
//
//	e := ncalc.New("2 * [x] + 1", ncalc.WithParameters(map[string]any{"x": 20}))
//	v, err := e.Evaluate() // 41
func New(text string, opts ...Option) *Expression {
	cfg := defaultExprConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	e := &Expression{
		ID:                uuid.New(),
		Text:              text,
		Parameters:        make(map[string]any, len(cfg.params)),
		DynamicParameters: make(map[string]eval.DynamicParameter),
		functions:         make(map[string]eval.Function, len(cfg.functions)),
		cfg:               cfg,
	}
	maps.Copy(e.Parameters, cfg.params)
	maps.Copy(e.functions, cfg.functions)
	e.logger = observability.EnrichLogger(cfg.logger, e.ID.String())
	return e
}

// NewFromAST wraps an already parsed tree. Text is set to the tree's
// serialized form.
func NewFromAST(root ast.Expr, opts ...Option) *Expression {
	e := New("", opts...)
	if root != nil {
		e.Text = ast.String(root)
	}
	e.parsed = true
	e.root = root
	if root == nil && !e.cfg.opts.Has(options.AllowNullOrEmptyExpressions) {
		e.err = wrapError(e.Text, ErrEmptyExpression)
	}
	return e
}

// Options returns the option bag the expression is parsed and evaluated with.
func (e *Expression) Options() options.Options {
	return e.cfg.opts
}

// RegisterFunction adds or replaces a host function. Host functions take
// priority over built-in functions of the same name.
func (e *Expression) RegisterFunction(name string, fn eval.Function) {
	e.functions[name] = fn
}

// Parse parses the text if that has not happened yet and returns the
// parse error, if any. Later calls return the same result.
func (e *Expression) Parse() error {
	return e.parse(context.Background())
}

// HasErrors reports whether the text fails to parse.
func (e *Expression) HasErrors() bool {
	return e.Parse() != nil
}

// Err returns the parse error, or nil.
func (e *Expression) Err() error {
	return e.Parse()
}

// Root returns the parsed tree, or nil when parsing failed.
func (e *Expression) Root() ast.Expr {
	if e.Parse() != nil {
		return nil
	}
	return e.root
}

func (e *Expression) parse(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.parsed {
		return e.err
	}
	e.parsed = true

	if e.cfg.err != nil {
		e.err = wrapError(e.Text, e.cfg.err)
		return e.err
	}
	if strings.TrimSpace(e.Text) == "" {
		if !e.cfg.opts.Has(options.AllowNullOrEmptyExpressions) {
			e.err = wrapError(e.Text, ErrEmptyExpression)
		}
		return e.err
	}

	_, span := e.cfg.spans.StartParseSpan(ctx, e.Text)
	start := time.Now()
	root, err := e.parseTree()
	dur := time.Since(start)
	e.cfg.spans.EndSpanWithError(span, err)
	e.cfg.metrics.RecordParse(ctx, dur, err == nil)
	observability.LogParse(e.logger, e.Text, dur, err)

	if err != nil {
		e.err = wrapError(e.Text, err)
		return e.err
	}
	e.root = root
	return nil
}

func (e *Expression) parseTree() (ast.Expr, error) {
	if e.cfg.opts.Has(options.NoCache) {
		return parser.Parse(e.Text, e.cfg.opts)
	}
	key := treeKey{text: e.Text, opts: e.cfg.opts}
	if root, ok := trees.Get(key); ok {
		return root, nil
	}
	root, err := parser.Parse(e.Text, e.cfg.opts)
	if err != nil {
		return nil, err
	}
	trees.Register(key, root)
	return root, nil
}

// Evaluate evaluates the expression without a cancellation signal.
func (e *Expression) Evaluate() (any, error) {
	return e.EvaluateContext(context.Background())
}

// EvaluateContext evaluates the expression. ctx is observed between
// operations and handed to every handler and host function; when it is
// done the evaluation stops with an errors.CancellationError.
//
// With IterateParameters set and at least one []any parameter, the
// expression is evaluated once per index and the results are returned as
// a []any as long as the shortest list.
func (e *Expression) EvaluateContext(ctx context.Context) (result any, err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if e.cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.timeout)
		defer cancel()
	}

	if err := e.parse(ctx); err != nil {
		return nil, err
	}
	if e.root == nil {
		return e.Text, nil
	}

	ctx, span := e.cfg.spans.StartEvaluateSpan(ctx, e.ID.String(), e.Text)
	defer func() {
		e.cfg.spans.EndSpanWithError(span, err)
	}()

	observability.LogEvaluateStart(e.logger, e.Text)
	done := observability.TimedOperation()
	start := time.Now()

	result, err = e.run(ctx)
	e.cfg.metrics.RecordEvaluation(ctx, time.Since(start), err == nil, category(err))
	if err != nil {
		observability.LogEvaluateError(e.logger, e.Text, err)
		return nil, wrapError(e.Text, err)
	}
	observability.LogEvaluateComplete(e.logger, e.Text, result, done())

	if e.cfg.store != nil {
		if _, err := e.cfg.store.Append(ctx, e.cfg.sessionID, e.Text, result); err != nil {
			return result, wrapError(e.Text, fmt.Errorf("store result: %w", err))
		}
	}
	return result, nil
}

func category(err error) string {
	if err == nil {
		return ""
	}
	return ferrors.Categorize(err).String()
}

func (e *Expression) run(ctx context.Context) (any, error) {
	if e.cfg.opts.Has(options.IterateParameters) {
		if n, ok := e.iterations(); ok {
			return e.iterate(ctx, n)
		}
	}
	return eval.Evaluate(ctx, e.root, e.context(e.Parameters))
}

// iterations returns the length of the shortest list parameter.
func (e *Expression) iterations() (int, bool) {
	n, found := 0, false
	for _, v := range e.Parameters {
		list, ok := v.([]any)
		if !ok {
			continue
		}
		if !found || len(list) < n {
			n = len(list)
		}
		found = true
	}
	return n, found
}

func (e *Expression) iterate(ctx context.Context, n int) ([]any, error) {
	out := make([]any, 0, n)
	for i := 0; i < n; i++ {
		params := make(map[string]any, len(e.Parameters))
		for k, v := range e.Parameters {
			if list, ok := v.([]any); ok {
				v = list[i]
			}
			params[k] = v
		}
		v, err := eval.Evaluate(ctx, e.root, e.context(params))
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// context builds the evaluation environment over params.
func (e *Expression) context(params map[string]any) *eval.Context {
	return &eval.Context{
		Options:           e.cfg.opts,
		Parameters:        params,
		DynamicParameters: e.DynamicParameters,
		Functions:         e.functions,
		ParameterHandler:  e.parameterHandler(),
		FunctionHandler:   e.cfg.functionHandler,
		UpdateHandler:     e.cfg.updateHandler,
		MatchHandler:      e.cfg.matchHandler,
		Logger:            e.logger,
		Metrics:           e.cfg.metrics,
	}
}

// parameterHandler resolves @ from the result store before handing other
// names to the configured handler.
func (e *Expression) parameterHandler() eval.ParameterHandler {
	next := e.cfg.parameterHandler
	if e.cfg.store == nil {
		return next
	}
	return func(ctx context.Context, name string, args *eval.ParameterArgs) error {
		if name != ast.ResultReference {
			if next == nil {
				return nil
			}
			return next(ctx, name, args)
		}
		rec, err := e.cfg.store.Last(ctx, e.cfg.sessionID)
		if errors.Is(err, results.ErrNotFound) {
			return ErrNoResult
		}
		if err != nil {
			return fmt.Errorf("load previous result: %w", err)
		}
		args.SetResult(rec.Value)
		return nil
	}
}

// EvaluateNested implements eval.Nested. The expression is evaluated with
// its own options, functions and parameters, overlaid with the parameters
// and handlers of the referencing context. Its own Parameters map is left
// untouched.
func (e *Expression) EvaluateNested(ctx context.Context, parent *eval.Context) (any, error) {
	if err := e.parse(ctx); err != nil {
		return nil, err
	}
	if e.root == nil {
		return e.Text, nil
	}
	child := e.context(maps.Clone(e.Parameters))
	child.DynamicParameters = maps.Clone(e.DynamicParameters)
	if parent != nil {
		parent.Inherit(child)
	}
	v, err := eval.Evaluate(ctx, e.root, child)
	if err != nil {
		return nil, wrapError(e.Text, err)
	}
	return v, nil
}

// String returns the serialized form of the parsed tree, or the text when
// it does not parse.
func (e *Expression) String() string {
	if e.Parse() != nil || e.root == nil {
		return e.Text
	}
	return ast.String(e.root)
}

// ParameterNames returns the distinct parameter names the expression
// references, in first-seen order. The @ result reference is not included.
func (e *Expression) ParameterNames() ([]string, error) {
	if err := e.Parse(); err != nil {
		return nil, err
	}
	names := ast.Parameters(e.root)
	return slices.DeleteFunc(names, func(n string) bool { return n == ast.ResultReference }), nil
}

// FunctionNames returns the distinct function names the expression calls,
// in first-seen order.
func (e *Expression) FunctionNames() ([]string, error) {
	if err := e.Parse(); err != nil {
		return nil, err
	}
	return ast.Functions(e.root), nil
}

var _ eval.Nested = (*Expression)(nil)
