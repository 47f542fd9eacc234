package eval

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/numeric"
	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/options"
)

func percentOptions(flags options.Flags) options.Options {
	o := options.New(flags)
	o.Advanced.Flags = options.CalculatePercent
	return o
}

func requireDecimal(t *testing.T, want string, v any) {
	t.Helper()
	d, ok := v.(decimal.Decimal)
	require.True(t, ok, "got %T", v)
	assert.True(t, d.Equal(decimal.RequireFromString(want)), "got %s, want %s", d, want)
}

func TestPercent_Arithmetic(t *testing.T) {
	tests := []struct {
		text    string
		want    string
		percent bool
	}{
		{"100 + 10%", "110", false},
		{"100 - 10%", "90", false},
		{"10% + 5%", "15", true},
		{"10% - 5%", "5", true},
		{"200 * 10%", "20", false},
		{"10% * 2", "20", true},
		{"10% * 10%", "1", true},
		{"50 / 25%", "200", false},
		{"10% / 2", "5", true},
		{"10% / 50%", "20", true},
		{"-10%", "-10", true},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			v, err := run(t, tt.text, percentOptions(0), nil)
			require.NoError(t, err)
			if tt.percent {
				p, ok := v.(numeric.Percent)
				require.True(t, ok, "got %T", v)
				requireDecimal(t, tt.want, p.Value)
				return
			}
			requireDecimal(t, tt.want, v)
		})
	}
}

func TestPercent_LeftOnlyIsAnError(t *testing.T) {
	tests := []struct {
		text   string
		params map[string]any
		label  string
	}{
		{"10% + 100", nil, "an addition operation"},
		{"10% - 100", nil, "a subtraction operation"},
		{"p += 5", map[string]any{"p": numeric.Percent{Value: int32(10)}}, "a += operation"},
		{"p -= 5", map[string]any{"p": numeric.Percent{Value: int32(10)}}, "a -= operation"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			_, err := run(t, tt.text, percentOptions(options.UseAssignments), tt.params)
			require.Error(t, err)
			assert.Equal(t,
				"The left side of "+tt.label+" cannot be a percent unless the right side is a percent as well",
				err.Error())
		})
	}
}

func TestPercent_CompoundAssignment(t *testing.T) {
	o := percentOptions(options.UseAssignments)
	c := NewContext(o)
	c.Parameters["a"] = int32(100)

	v, err := Evaluate(context.Background(), mustParse(t, "a += 10%", o), c)
	require.NoError(t, err)
	requireDecimal(t, "110", v)
	requireDecimal(t, "110", c.Parameters["a"])
}

func TestPercent_StatementSequenceUnwraps(t *testing.T) {
	v, err := run(t, "1; 10%", percentOptions(options.UseStatementSequences), nil)
	require.NoError(t, err)
	requireDecimal(t, "10", v)
}

func TestPercent_Comparison(t *testing.T) {
	v, err := run(t, "10% == 10", percentOptions(0), nil)
	require.NoError(t, err)
	assert.Equal(t, true, v)
}

func TestPercent_DisabledIsModulo(t *testing.T) {
	v, err := run(t, "10 % 3", options.Default(), nil)
	require.NoError(t, err)
	assert.Equal(t, int32(1), v)
}

func TestPercent_KeepsSourceKind(t *testing.T) {
	p := numeric.Percent{Value: int32(10), Type: numeric.PercentInteger, Kind: numeric.KindInt32}

	tests := []struct {
		text      string
		wantValue any
		wantType  numeric.PercentType
	}{
		{"p / 4", 2.5, numeric.PercentFloat},
		{"p * 3", int32(30), numeric.PercentInteger},
		{"-p", int32(-10), numeric.PercentInteger},
		{"p + p", int32(20), numeric.PercentInteger},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			v, err := run(t, tt.text, percentOptions(0), map[string]any{"p": p})
			require.NoError(t, err)
			got, ok := v.(numeric.Percent)
			require.True(t, ok, "got %T", v)
			assert.Equal(t, tt.wantValue, got.Value)
			assert.Equal(t, tt.wantType, got.Type)
			assert.Equal(t, numeric.KindInt32, got.Kind)
		})
	}
}

func TestPercent_UnwrapRestoresSourceKind(t *testing.T) {
	p := numeric.Percent{Value: int32(10), Type: numeric.PercentInteger, Kind: numeric.KindInt32}
	o := percentOptions(options.UseStatementSequences)

	v, err := run(t, "1; p / 2", o, map[string]any{"p": p})
	require.NoError(t, err)
	assert.Equal(t, int32(5), v)

	v, err = run(t, "1; p / 4", o, map[string]any{"p": p})
	require.NoError(t, err)
	assert.Equal(t, 2.5, v)
}
