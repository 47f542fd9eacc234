package benchmarks

import (
	"context"
	"testing"

	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc"
	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/eval"
	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/options"
	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/parser"
)

func params() map[string]any {
	return map[string]any{"a": int32(6), "b": 8.0, "c": "xyz"}
}

// BenchmarkEvaluate_Simple evaluates a pre-parsed arithmetic tree.
func BenchmarkEvaluate_Simple(b *testing.B) {
	root, err := parser.Parse(simpleText, options.Default())
	if err != nil {
		b.Fatal(err)
	}
	ctx := context.Background()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = eval.Evaluate(ctx, root, eval.NewContext(options.Default()))
	}
}

// BenchmarkEvaluate_Complex evaluates functions, like and index access.
func BenchmarkEvaluate_Complex(b *testing.B) {
	e := ncalc.New(complexText, ncalc.WithParameters(params()))
	if err := e.Parse(); err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = e.Evaluate()
	}
}

// BenchmarkEvaluate_Decimal evaluates with decimal as the default real type.
func BenchmarkEvaluate_Decimal(b *testing.B) {
	e := ncalc.New("(0.1 + 0.2) * 3 / 7", ncalc.WithFlags(options.DecimalAsDefault))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = e.Evaluate()
	}
}

// BenchmarkEvaluate_Overflow evaluates with checked integer arithmetic.
func BenchmarkEvaluate_Overflow(b *testing.B) {
	e := ncalc.New("a * 1000 + a * 7 - 12", ncalc.WithFlags(options.OverflowProtection),
		ncalc.WithParameters(params()))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = e.Evaluate()
	}
}

// BenchmarkEvaluate_HostFunction measures dispatch to a host function.
func BenchmarkEvaluate_HostFunction(b *testing.B) {
	e := ncalc.New("twice(a) + 1", ncalc.WithParameters(params()),
		ncalc.WithFunction("twice", func(ctx context.Context, call *eval.Call) (any, error) {
			v, err := call.Eval(ctx, 0)
			if err != nil {
				return nil, err
			}
			return v.(int32) * 2, nil
		}))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = e.Evaluate()
	}
}

// BenchmarkEvaluate_Like measures cached like pattern matching.
func BenchmarkEvaluate_Like(b *testing.B) {
	e := ncalc.New("c like '%y_'", ncalc.WithParameters(params()))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = e.Evaluate()
	}
}
