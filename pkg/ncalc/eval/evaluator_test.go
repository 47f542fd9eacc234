package eval

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/ast"
	ferrors "github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/errors"
	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/numeric"
	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/options"
	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/parser"
)

func mustParse(t *testing.T, text string, o options.Options) ast.Expr {
	t.Helper()
	e, err := parser.Parse(text, o)
	require.NoError(t, err, text)
	return e
}

// run parses and evaluates text with the given options and parameters.
func run(t *testing.T, text string, o options.Options, params map[string]any) (any, error) {
	t.Helper()
	c := NewContext(o)
	for k, v := range params {
		c.Parameters[k] = v
	}
	return Evaluate(context.Background(), mustParse(t, text, o), c)
}

func TestEvaluate_Operators(t *testing.T) {
	tests := []struct {
		text string
		want any
	}{
		{"1 + 2", int32(3)},
		{"2 * 3 + 1", int32(7)},
		{"10 - 2 - 3", int32(5)},
		{"10 / 4", 2.5},
		{"10 / 5", 2.0},
		{"7 % 3", int32(1)},
		{"7 div 2", int32(3)},
		{"-7 // 2", int32(-4)},
		{"2 ** 3", 8.0},
		{"-2 ** 2", -4.0},
		{"5!", int32(120)},
		{"7!!", int32(105)},
		{"3 & 1", uint64(1)},
		{"2 | 1", uint64(3)},
		{"3 ^ 1", uint64(2)},
		{"1 << 3", uint64(8)},
		{"16 >> 2", uint64(4)},
		{"~0", int32(-1)},
		{"-(3)", int32(-3)},
		{"not true", false},
		{"true and false", false},
		{"true or false", true},
		{"true xor true", false},
		{"true xor false", true},
		{"1 < 2 ? 'yes' : 'no'", "yes"},
		{"(1, 2, 3)", []any{int32(1), int32(2), int32(3)}},
		{"()", []any{}},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			v, err := run(t, tt.text, options.Default(), nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestEvaluate_StringConcatenation(t *testing.T) {
	tests := []struct {
		name string
		text string
		opts options.Options
		want any
	}{
		{"two strings", "'a' + 'b'", options.Default(), "ab"},
		{"numeric strings add", "'1' + '2'", options.Default(), 3.0},
		{"number and numeric string", "1 + '2'", options.Default(), 3.0},
		{"string concat flag", "'1' + 2", options.New(options.StringConcat), "12"},
		{"no coercion", "'1' + '2'", options.New(options.NoStringTypeCoercion), "12"},
		{"bool text", "'x' + true", options.New(options.StringConcat), "xTrue"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := run(t, tt.text, tt.opts, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestEvaluate_Division(t *testing.T) {
	tests := []struct {
		name string
		text string
		opts options.Options
		want any
	}{
		{"integers divide as reals", "7 / 2", options.Default(), 3.5},
		{"integer division flag", "7 / 2", options.New(options.IntegerDivisionForIntegers), int32(3)},
		{"reduce result", "8 / 2", options.New(options.ReduceDivResultToInteger), int32(4)},
		{"reduce keeps fraction", "7 / 2", options.New(options.ReduceDivResultToInteger), 3.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := run(t, tt.text, tt.opts, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v)
		})
	}

	_, err := run(t, "1 / 0", options.New(options.IntegerDivisionForIntegers), nil)
	var ae *ferrors.ArithmeticError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, ferrors.DivideByZero, ae.Kind)
}

func TestEvaluate_TimeArithmetic(t *testing.T) {
	day := time.Date(2020, 1, 2, 0, 0, 0, 0, time.Local)
	params := map[string]any{"d": day, "h": time.Hour}

	v, err := run(t, "d + h", options.Default(), params)
	require.NoError(t, err)
	assert.Equal(t, day.Add(time.Hour), v)

	v, err = run(t, "d - h", options.Default(), params)
	require.NoError(t, err)
	assert.Equal(t, day.Add(-time.Hour), v)

	v, err = run(t, "(d + h) - d", options.Default(), params)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, v)

	v, err = run(t, "h + h", options.Default(), params)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, v)
}

func TestEvaluate_NullPropagation(t *testing.T) {
	params := map[string]any{"n": nil}
	tests := []struct {
		text string
		opts options.Options
		want any
	}{
		{"n + 1", options.Default(), nil},
		{"1 * n", options.Default(), nil},
		{"-n", options.Default(), nil},
		{"null", options.Default(), nil},
		{"n ? 1 : 2", options.Default(), nil},
		{"n + 1", options.New(options.TreatNullAsZero), int32(1)},
		{"n * 5", options.New(options.TreatNullAsZero), int32(0)},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			v, err := run(t, tt.text, tt.opts, params)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestEvaluate_ShortCircuit(t *testing.T) {
	tests := []struct {
		text string
		want any
	}{
		{"false and missing", false},
		{"true or missing", true},
		{"true ? 1 : missing", int32(1)},
		{"false ? missing : 2", int32(2)},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			v, err := run(t, tt.text, options.Default(), nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v)
		})
	}

	_, err := run(t, "true and missing", options.Default(), nil)
	var pe *ferrors.ParameterNotDefinedError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "missing", pe.Name)
	assert.EqualError(t, err, "Parameter missing is not defined.")

	_, err = run(t, "true xor missing", options.Default(), nil)
	assert.ErrorAs(t, err, &pe)
}

func TestEvaluate_Parameters(t *testing.T) {
	o := options.Default()
	c := NewContext(o)
	c.Parameters["x"] = int32(4)
	c.Parameters["sub"] = mustParse(t, "x * 2", o)
	c.DynamicParameters["dyn"] = func(_ context.Context, p *ParameterData) (any, error) {
		assert.Equal(t, "dyn", p.Name)
		return int32(10), nil
	}

	v, err := Evaluate(context.Background(), mustParse(t, "sub + dyn + x", o), c)
	require.NoError(t, err)
	assert.Equal(t, int32(22), v)
}

func TestEvaluate_LowerCaseLookup(t *testing.T) {
	o := options.New(options.LowerCaseIdentifierLookup)
	v, err := run(t, "[Price] * 2", o, map[string]any{"price": int32(3)})
	require.NoError(t, err)
	assert.Equal(t, int32(6), v)

	_, err = run(t, "Price", options.Default(), map[string]any{"price": int32(3)})
	assert.Error(t, err)
}

func TestEvaluate_ParameterHandler(t *testing.T) {
	o := options.Default()
	c := NewContext(o)
	c.Parameters["x"] = int32(1)
	c.ParameterHandler = func(_ context.Context, name string, args *ParameterArgs) error {
		if name == "x" {
			args.SetResult(int32(100))
		}
		if name == "nothing" {
			args.SetResult(nil)
		}
		return nil
	}

	v, err := Evaluate(context.Background(), mustParse(t, "x + 1", o), c)
	require.NoError(t, err)
	assert.Equal(t, int32(101), v)

	v, err = Evaluate(context.Background(), mustParse(t, "nothing", o), c)
	require.NoError(t, err)
	assert.Nil(t, v)

	boom := errors.New("boom")
	c.ParameterHandler = func(context.Context, string, *ParameterArgs) error { return boom }
	_, err = Evaluate(context.Background(), mustParse(t, "x", o), c)
	assert.ErrorIs(t, err, boom)
}

func TestEvaluate_Functions(t *testing.T) {
	o := options.Default()
	c := NewContext(o)
	c.Functions["double"] = func(ctx context.Context, call *Call) (any, error) {
		v, err := call.Eval(ctx, 0)
		if err != nil {
			return nil, err
		}
		return v.(int32) * 2, nil
	}
	c.Functions["Abs"] = func(context.Context, *Call) (any, error) { return "shadowed", nil }

	v, err := Evaluate(context.Background(), mustParse(t, "double(21)", o), c)
	require.NoError(t, err)
	assert.Equal(t, int32(42), v)

	v, err = Evaluate(context.Background(), mustParse(t, "Abs(-1)", o), c)
	require.NoError(t, err)
	assert.Equal(t, "shadowed", v)

	_, err = Evaluate(context.Background(), mustParse(t, "nope(1)", o), c)
	var fe *ferrors.FunctionNotFoundError
	require.ErrorAs(t, err, &fe)
	assert.EqualError(t, err, "Function 'nope' not found.")
}

func TestEvaluate_FunctionArgumentsAreLazy(t *testing.T) {
	o := options.Default()
	c := NewContext(o)
	var seen []string
	c.Functions["first"] = func(ctx context.Context, call *Call) (any, error) {
		for _, a := range call.Args {
			seen = append(seen, a.String())
		}
		return call.Eval(ctx, 0)
	}

	v, err := Evaluate(context.Background(), mustParse(t, "first(1, missing)", o), c)
	require.NoError(t, err)
	assert.Equal(t, int32(1), v)
	assert.Equal(t, []string{"1", "[missing]"}, seen)
}

func TestEvaluate_FunctionHandler(t *testing.T) {
	o := options.Default()
	c := NewContext(o)
	c.FunctionHandler = func(ctx context.Context, name string, args *FunctionArgs) error {
		if name != "sum" {
			return nil
		}
		total := int32(0)
		for _, a := range args.Args {
			v, err := a.Evaluate(ctx)
			if err != nil {
				return err
			}
			total += v.(int32)
		}
		args.SetResult(total)
		return nil
	}

	v, err := Evaluate(context.Background(), mustParse(t, "sum(1, 2, 3) + Abs(-1)", o), c)
	require.NoError(t, err)
	assert.Equal(t, 7.0, v)
}

func TestEvaluate_Assignment(t *testing.T) {
	o := options.New(options.UseAssignments | options.UseStatementSequences)
	c := NewContext(o)
	c.Parameters["a"] = int32(1)

	v, err := Evaluate(context.Background(), mustParse(t, "b := 5; a += b; a * 2", o), c)
	require.NoError(t, err)
	assert.Equal(t, int32(12), v)
	assert.Equal(t, int32(5), c.Parameters["b"])
	assert.Equal(t, int32(6), c.Parameters["a"])
}

func TestEvaluate_CompoundAssignment(t *testing.T) {
	o := options.New(options.UseAssignments)
	tests := []struct {
		text string
		want any
	}{
		{"a += 2", int32(8)},
		{"a -= 2", int32(4)},
		{"a *= 2", int32(12)},
		{"a /= 4", 1.5},
		{"a &= 2", uint64(2)},
		{"a |= 1", uint64(7)},
		{"a ^= 2", uint64(4)},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			params := map[string]any{"a": int32(6)}
			c := NewContext(o)
			c.Parameters = params
			v, err := Evaluate(context.Background(), mustParse(t, tt.text, o), c)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v)
			assert.Equal(t, tt.want, params["a"])
		})
	}
}

func TestEvaluate_AssignNull(t *testing.T) {
	o := options.New(options.UseAssignments)
	c := NewContext(o)
	c.Parameters["n"] = nil

	v, err := Evaluate(context.Background(), mustParse(t, "a := n", o), c)
	require.NoError(t, err)
	assert.Nil(t, v)
	_, written := c.Parameters["a"]
	assert.False(t, written)

	o = options.New(options.UseAssignments | options.AllowNullParameter)
	c = NewContext(o)
	c.Parameters["a"] = int32(1)
	c.Parameters["n"] = nil
	_, err = Evaluate(context.Background(), mustParse(t, "a := n", o), c)
	require.NoError(t, err)
	v, written = c.Parameters["a"]
	assert.True(t, written)
	assert.Nil(t, v)
}

func TestEvaluate_UpdateHandler(t *testing.T) {
	o := options.New(options.UseAssignments)
	c := NewContext(o)
	var updates []UpdateArgs
	c.UpdateHandler = func(_ context.Context, name string, args *UpdateArgs) error {
		updates = append(updates, *args)
		if name == "locked" {
			args.Update = false
		}
		return nil
	}

	v, err := Evaluate(context.Background(), mustParse(t, "locked := 3", o), c)
	require.NoError(t, err)
	assert.Equal(t, int32(3), v)
	_, written := c.Parameters["locked"]
	assert.False(t, written)

	_, err = Evaluate(context.Background(), mustParse(t, "free := 4", o), c)
	require.NoError(t, err)
	assert.Equal(t, int32(4), c.Parameters["free"])

	require.Len(t, updates, 2)
	assert.Equal(t, int32(3), updates[0].Value)
	assert.False(t, updates[0].HasIndex)
}

func TestEvaluate_IndexAccess(t *testing.T) {
	o := options.Default()
	params := map[string]any{
		"list":   []any{int32(10), int32(20), int32(30)},
		"lazy":   []any{mustParse(t, "2 * 21", o)},
		"scalar": int32(5),
	}

	v, err := run(t, "list[1]", o, params)
	require.NoError(t, err)
	assert.Equal(t, int32(20), v)

	v, err = run(t, "lazy[0]", o, params)
	require.NoError(t, err)
	assert.Equal(t, int32(42), v)

	tests := []struct {
		text string
		msg  string
	}{
		{"list[3]", "The index is out of bounds [0; 2]"},
		{"list[-1]", "The index is out of bounds [0; 2]"},
		{"scalar[0]", "An expression, if used with an index, must denote a list"},
		{"list[true]", "The index does not evaluate to a number"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			_, err := run(t, tt.text, o, params)
			var ie *ferrors.ParameterIndexError
			require.ErrorAs(t, err, &ie)
			assert.Equal(t, tt.msg, ie.Message)
		})
	}
}

func TestEvaluate_IndexAssignment(t *testing.T) {
	o := options.New(options.UseAssignments)
	list := []any{int32(1), int32(2)}
	c := NewContext(o)
	c.Parameters["list"] = list
	c.Parameters["scalar"] = int32(1)

	var got UpdateArgs
	c.UpdateHandler = func(_ context.Context, _ string, args *UpdateArgs) error {
		got = *args
		return nil
	}

	v, err := Evaluate(context.Background(), mustParse(t, "list[1] := 7", o), c)
	require.NoError(t, err)
	assert.Equal(t, int32(7), v)
	assert.Equal(t, int32(7), list[1])
	assert.True(t, got.HasIndex)
	assert.Equal(t, 1, got.Index)

	tests := []struct {
		text string
		msg  string
	}{
		{"missing[0] := 1", "missing is not set and cannot be assigned to by index"},
		{"scalar[0] := 1", "scalar is not a list and cannot be assigned to by index"},
		{"list['x'] := 1", "The index of list does not evaluate to a number"},
		{"list[5] := 1", "The index is out of bounds [0; 1]"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			_, err := Evaluate(context.Background(), mustParse(t, tt.text, o), c)
			var ie *ferrors.ParameterIndexError
			require.ErrorAs(t, err, &ie)
			assert.Equal(t, tt.msg, ie.Message)
		})
	}
}

func TestEvaluate_AssignToNonIdentifier(t *testing.T) {
	o := options.New(options.UseAssignments)
	e := ast.NewBinary(ast.Assignment,
		ast.NewValue(int32(1), ast.ValueInteger, ast.EmptyLocation),
		ast.NewValue(int32(2), ast.ValueInteger, ast.EmptyLocation),
		ast.EmptyLocation)
	_, err := EvaluateSync(e, NewContext(o))
	assert.EqualError(t, err, "The expression should evaluate to an identifier")
}

func TestEvaluate_Cancellation(t *testing.T) {
	o := options.Default()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Evaluate(ctx, mustParse(t, "1 + 2", o), NewContext(o))
	var ce *ferrors.CancellationError
	require.ErrorAs(t, err, &ce)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, ferrors.CategoryCancelled, ferrors.Categorize(err))

	// Literals outside a binary operation need no checkpoint.
	v, err := Evaluate(ctx, mustParse(t, "42", o), NewContext(o))
	require.NoError(t, err)
	assert.Equal(t, int32(42), v)
}

func TestEvaluate_CancellationInsideFunction(t *testing.T) {
	o := options.Default()
	ctx, cancel := context.WithCancel(context.Background())
	c := NewContext(o)
	c.Functions["stop"] = func(context.Context, *Call) (any, error) {
		cancel()
		return int32(1), nil
	}

	_, err := Evaluate(ctx, mustParse(t, "stop() + (1 + 1)", o), c)
	assert.ErrorIs(t, err, context.Canceled)
}

type nestedValue struct {
	text string
}

func (n nestedValue) EvaluateNested(ctx context.Context, parent *Context) (any, error) {
	o := options.Default()
	child := NewContext(o)
	parent.Inherit(child)
	e, err := parser.Parse(n.text, o)
	if err != nil {
		return nil, err
	}
	return Evaluate(ctx, e, child)
}

func TestEvaluate_Nested(t *testing.T) {
	v, err := run(t, "inner + 1", options.Default(), map[string]any{
		"base":  int32(10),
		"inner": nestedValue{text: "base * 2"},
	})
	require.NoError(t, err)
	assert.Equal(t, int32(21), v)
}

func TestEvaluate_LogsUpdatesAndCalls(t *testing.T) {
	var buf bytes.Buffer
	o := options.New(options.UseAssignments)
	c := NewContext(o)
	c.Logger = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := Evaluate(context.Background(), mustParse(t, "a := Abs(-2)", o), c)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "function=Abs")
	assert.Contains(t, buf.String(), "parameter=a")
}

func TestEvaluate_NilNode(t *testing.T) {
	_, err := EvaluateSync(nil, nil)
	assert.Error(t, err)
}

func TestEvaluate_FactorialOfNegative(t *testing.T) {
	v, err := run(t, "-3!", options.Default(), nil)
	require.NoError(t, err)
	assert.Equal(t, int32(-6), v)

	for _, text := range []string{"(-3)!", "n!", "(0 - 1)!!"} {
		t.Run(text, func(t *testing.T) {
			_, err := run(t, text, options.Default(), map[string]any{"n": int32(-1)})
			var ae *ferrors.ArithmeticError
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, "Factorial is not defined for negative values", ae.Error())
		})
	}
}

func TestEvaluate_FunctionOptionalArgument(t *testing.T) {
	o := options.Default()
	c := NewContext(o)
	c.Functions["scale"] = func(ctx context.Context, call *Call) (any, error) {
		v, err := call.Eval(ctx, 0)
		if err != nil {
			return nil, err
		}
		if call.Len() < 2 {
			return v, nil
		}
		f, err := call.Eval(ctx, 1)
		if err != nil {
			return nil, err
		}
		return numeric.Multiply(v, f, numeric.Options{})
	}
	c.Functions["second"] = func(ctx context.Context, call *Call) (any, error) {
		return call.Eval(ctx, 1)
	}

	v, err := Evaluate(context.Background(), mustParse(t, "scale(3)", o), c)
	require.NoError(t, err)
	assert.Equal(t, int32(3), v)

	v, err = Evaluate(context.Background(), mustParse(t, "scale(3, 2)", o), c)
	require.NoError(t, err)
	assert.Equal(t, int32(6), v)

	for _, text := range []string{"second(1)", "second()"} {
		t.Run(text, func(t *testing.T) {
			var ee *ferrors.EvaluationError
			require.NotPanics(t, func() {
				_, err = Evaluate(context.Background(), mustParse(t, text, o), c)
			})
			require.ErrorAs(t, err, &ee)
			assert.Contains(t, ee.Error(), "second()")
		})
	}
}
