package benchmarks

import (
	"testing"

	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc"
	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/options"
	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/parser"
)

const (
	simpleText  = "1 + 2 * 3"
	complexText = "if(Max([a], b) > 10 and c like 'x%', Round(Sqrt(a * a + b * b), 2), (a, b, c)[1])"
	dateText    = "#2024-02-29 13:45:00# + #1.02:03:04# > #01/01/2020#"
)

// BenchmarkParse_Simple parses a short arithmetic expression.
func BenchmarkParse_Simple(b *testing.B) {
	p := parser.New(options.Default())
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = p.Parse(simpleText)
	}
}

// BenchmarkParse_Complex parses an expression with functions, lists and like.
func BenchmarkParse_Complex(b *testing.B) {
	p := parser.New(options.Default())
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = p.Parse(complexText)
	}
}

// BenchmarkParse_Dates parses date and time span literals.
func BenchmarkParse_Dates(b *testing.B) {
	p := parser.New(options.Default())
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = p.Parse(dateText)
	}
}

// BenchmarkExpression_ParseCached measures parsing through the shared tree cache.
func BenchmarkExpression_ParseCached(b *testing.B) {
	ncalc.ClearCache()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = ncalc.New(complexText).Parse()
	}
}

// BenchmarkExpression_ParseNoCache is the baseline without the tree cache.
func BenchmarkExpression_ParseNoCache(b *testing.B) {
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = ncalc.New(complexText, ncalc.WithFlags(options.NoCache)).Parse()
	}
}
