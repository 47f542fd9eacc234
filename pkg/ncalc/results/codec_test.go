package results_test

import (
	"math/big"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/numeric"
	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/results"
)

func TestEncode_Kinds(t *testing.T) {
	id := uuid.MustParse("2e7c3b0a-4f41-4d6e-9a0c-8f4b2a1d9e55")
	tests := []struct {
		name  string
		value any
		kind  string
		text  string
	}{
		{"null", nil, results.KindNull, ""},
		{"bool", true, results.KindBool, "true"},
		{"int", 42, results.KindInt64, "42"},
		{"uint8", uint8(7), results.KindUint8, "7"},
		{"float", 1.5, results.KindFloat64, "1.5"},
		{"decimal", decimal.RequireFromString("0.10"), results.KindDecimal, "0.1"},
		{"bigint", new(big.Int).Lsh(big.NewInt(1), 70), results.KindBigInt, "1180591620717411303424"},
		{"timespan", 90 * time.Second, results.KindTimeSpan, "90000000000"},
		{"guid", id, results.KindGUID, id.String()},
		{"char", numeric.Char('z'), results.KindChar, "z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, text, err := results.Encode(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, kind)
			assert.Equal(t, tt.text, text)
		})
	}
}

func TestCodec_Nested(t *testing.T) {
	list := []any{int32(1), "two", []any{nil, 2.5}}
	kind, text, err := results.Encode(list)
	require.NoError(t, err)
	assert.Equal(t, results.KindList, kind)

	v, err := results.Decode(kind, text)
	require.NoError(t, err)
	assert.Equal(t, list, v)

	p := numeric.Percent{Value: decimal.NewFromInt(15), Type: numeric.PercentFloat, Kind: numeric.KindFloat64}
	kind, text, err = results.Encode(p)
	require.NoError(t, err)
	assert.Equal(t, results.KindPercent, kind)

	v, err = results.Decode(kind, text)
	require.NoError(t, err)
	got := v.(numeric.Percent)
	assert.Equal(t, numeric.PercentFloat, got.Type)
	assert.Equal(t, numeric.KindFloat64, got.Kind)
	assert.True(t, decimal.NewFromInt(15).Equal(got.Value.(decimal.Decimal)))
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		kind string
		text string
	}{
		{"unknown", "x"},
		{results.KindInt8, "300"},
		{results.KindChar, "ab"},
		{results.KindBigInt, "1.5"},
		{results.KindDateTime, "yesterday"},
		{results.KindList, "{"},
	}
	for _, tt := range tests {
		t.Run(tt.kind+"/"+tt.text, func(t *testing.T) {
			_, err := results.Decode(tt.kind, tt.text)
			assert.Error(t, err)
		})
	}
}
