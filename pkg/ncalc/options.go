package ncalc

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/config"
	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/culture"
	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/eval"
	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/observability"
	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/options"
	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/results"
)

// exprConfig holds everything an Option can set on an Expression.
type exprConfig struct {
	opts    options.Options
	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager
	timeout time.Duration

	params    map[string]any
	functions map[string]eval.Function

	parameterHandler eval.ParameterHandler
	functionHandler  eval.FunctionHandler
	updateHandler    eval.UpdateHandler
	matchHandler     eval.MatchHandler

	store     results.Store
	sessionID uuid.UUID

	// err is the first error raised while applying options. It is
	// reported by Parse.
	err error
}

func defaultExprConfig() exprConfig {
	return exprConfig{
		opts:    options.Default(),
		metrics: observability.NoopMetrics{},
		spans:   observability.NoopSpanManager{},
	}
}

// Option configures an Expression.
type Option func(*exprConfig)

// WithOptions replaces the whole option bag.
func WithOptions(o options.Options) Option {
	return func(c *exprConfig) {
		c.opts = o
	}
}

// WithFlags adds flags to the option bag.
//
// Example:
//
//	e := ncalc.New("a / b", ncalc.WithFlags(options.DecimalAsDefault|options.OverflowProtection))
func WithFlags(f options.Flags) Option {
	return func(c *exprConfig) {
		c.opts.Flags |= f
	}
}

// WithAdvanced sets the advanced options.
func WithAdvanced(a options.Advanced) Option {
	return func(c *exprConfig) {
		c.opts.Advanced = a
	}
}

// WithCulture sets the culture used for date literals, string comparison
// and case mapping.
func WithCulture(cu culture.Culture) Option {
	return func(c *exprConfig) {
		c.opts.Culture = cu
	}
}

// WithLogger enables logging of parse and evaluation events.
// Default: no logging.
func WithLogger(logger *slog.Logger) Option {
	return func(c *exprConfig) {
		c.logger = logger
	}
}

// WithMetrics enables metrics recording. A nil recorder disables metrics.
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(c *exprConfig) {
		if m == nil {
			m = observability.NoopMetrics{}
		}
		c.metrics = m
	}
}

// WithSpans enables tracing. A nil manager disables tracing.
func WithSpans(s observability.SpanManager) Option {
	return func(c *exprConfig) {
		if s == nil {
			s = observability.NoopSpanManager{}
		}
		c.spans = s
	}
}

// WithParameters sets initial parameter values. Later calls add to and
// overwrite earlier ones.
func WithParameters(params map[string]any) Option {
	return func(c *exprConfig) {
		if c.params == nil {
			c.params = make(map[string]any, len(params))
		}
		for k, v := range params {
			c.params[k] = v
		}
	}
}

// WithFunction registers a host function under name.
func WithFunction(name string, fn eval.Function) Option {
	return func(c *exprConfig) {
		if c.functions == nil {
			c.functions = make(map[string]eval.Function)
		}
		c.functions[name] = fn
	}
}

// WithParameterHandler sets the handler consulted before the parameter tables.
func WithParameterHandler(h eval.ParameterHandler) Option {
	return func(c *exprConfig) {
		c.parameterHandler = h
	}
}

// WithFunctionHandler sets the handler consulted before the function tables.
func WithFunctionHandler(h eval.FunctionHandler) Option {
	return func(c *exprConfig) {
		c.functionHandler = h
	}
}

// WithUpdateHandler sets the handler notified before assignments write.
func WithUpdateHandler(h eval.UpdateHandler) Option {
	return func(c *exprConfig) {
		c.updateHandler = h
	}
}

// WithMatchHandler sets the handler that may decide like comparisons.
func WithMatchHandler(h eval.MatchHandler) Option {
	return func(c *exprConfig) {
		c.matchHandler = h
	}
}

// WithConfig applies settings read from a configuration document: the
// option keys understood by options.FromConfig, a "timeout" applied to
// every evaluation, and a "parameters" map of initial values.
//
// An invalid document is reported by Parse and Evaluate.
func WithConfig(cfg config.Config) Option {
	return func(c *exprConfig) {
		o, err := options.FromConfig(cfg)
		if err != nil {
			if c.err == nil {
				c.err = fmt.Errorf("apply config: %w", err)
			}
			return
		}
		c.opts = o
		c.timeout = cfg.Duration("timeout", c.timeout)
		if params := cfg.Map("parameters"); len(params) > 0 {
			WithParameters(params)(c)
		}
	}
}

// WithTimeout bounds every evaluation. Zero means no limit.
func WithTimeout(d time.Duration) Option {
	return func(c *exprConfig) {
		if d >= 0 {
			c.timeout = d
		}
	}
}

// WithResultStore binds the expression to a result session. The @
// reference resolves to the session's last stored result and every
// successful evaluation is appended to the store.
func WithResultStore(store results.Store, sessionID uuid.UUID) Option {
	return func(c *exprConfig) {
		c.store = store
		c.sessionID = sessionID
	}
}
