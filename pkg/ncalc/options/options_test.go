package options

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/config"
	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/culture"
)

func TestFlags_BitValues(t *testing.T) {
	assert.Equal(t, Flags(2), IgnoreCaseAtBuiltInFunctions)
	assert.Equal(t, Flags(1<<9), OverflowProtection)
	assert.Equal(t, Flags(1<<31), SupportCStyleComments)
	assert.Equal(t, Flags(1<<32), SupportPythonComments)
}

func TestFlags_String(t *testing.T) {
	tests := []struct {
		flags Flags
		want  string
	}{
		{None, "None"},
		{DecimalAsDefault, "DecimalAsDefault"},
		{DecimalAsDefault | OverflowProtection, "DecimalAsDefault|OverflowProtection"},
		{SupportPythonComments | IgnoreCaseAtBuiltInFunctions, "IgnoreCaseAtBuiltInFunctions|SupportPythonComments"},
		{Flags(1), "0x1"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.flags.String())
		})
	}
}

func TestParseFlags(t *testing.T) {
	f, err := ParseFlags([]string{"decimalasdefault", " OverflowProtection ", "None", ""})
	require.NoError(t, err)
	assert.True(t, f.Has(DecimalAsDefault|OverflowProtection))
	assert.False(t, f.Has(UseAssignments))

	_, err = ParseFlags([]string{"Bogus"})
	require.Error(t, err)
}

func TestAdvancedFlags(t *testing.T) {
	f, err := ParseAdvancedFlags([]string{"CalculatePercent", "acceptunderscoresinnumbers"})
	require.NoError(t, err)
	assert.Equal(t, "AcceptUnderscoresInNumbers|CalculatePercent", f.String())
	assert.Equal(t, "None", AdvancedFlags(0).String())

	_, err = ParseAdvancedFlags([]string{"Nope"})
	require.Error(t, err)
}

func TestSeparators(t *testing.T) {
	de := culture.MustLookup("de-DE")

	tests := []struct {
		name     string
		advanced Advanced
		wantDate string
		wantTime string
	}{
		{"built in", Advanced{}, "/", ":"},
		{"culture", Advanced{DateSeparatorType: SeparatorCulture, TimeSeparatorType: SeparatorCulture}, ".", ":"},
		{"custom", Advanced{DateSeparatorType: SeparatorCustom, DateSeparator: "-", TimeSeparatorType: SeparatorCustom, TimeSeparator: "."}, "-", "."},
		{"custom empty falls back", Advanced{DateSeparatorType: SeparatorCustom}, "/", ":"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantDate, tt.advanced.DateSeparatorFor(de))
			assert.Equal(t, tt.wantTime, tt.advanced.TimeSeparatorFor(de))
		})
	}
}

func TestClone(t *testing.T) {
	o := New(UseAssignments)
	c := o.Clone()
	c.Flags |= DecimalAsDefault
	assert.False(t, o.Has(DecimalAsDefault))
	assert.True(t, c.Has(UseAssignments|DecimalAsDefault))

	var nilOpts *Options
	assert.Nil(t, nilOpts.Clone())
}

func TestFromConfig(t *testing.T) {
	cfg := config.New(map[string]any{
		"flags":   []any{"DecimalAsDefault", "UseAssignments"},
		"culture": "de-DE",
		"advanced": map[string]any{
			"flags":               "CalculatePercent|AcceptCStyleOctals",
			"date_separator_type": "custom",
			"date_separator":      "-",
			"time_separator_type": "culture",
		},
	})

	opts, err := FromConfig(cfg)
	require.NoError(t, err)
	assert.True(t, opts.Has(DecimalAsDefault|UseAssignments))
	assert.Equal(t, "de-DE", opts.Culture.Name)
	assert.True(t, opts.HasAdvanced(CalculatePercent|AcceptCStyleOctals))
	assert.Equal(t, "-", opts.DateSeparator())
	assert.Equal(t, ":", opts.TimeSeparator())
}

func TestFromConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		data map[string]any
	}{
		{"bad flag", map[string]any{"flags": "Nope"}},
		{"bad culture", map[string]any{"culture": "xx-??"}},
		{"bad advanced flag", map[string]any{"advanced": map[string]any{"flags": "Nope"}}},
		{"bad separator type", map[string]any{"advanced": map[string]any{"date_separator_type": "odd"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromConfig(config.New(tt.data))
			require.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ncalc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("flags: [LongAsDefault]\n"), 0o600))

	opts, err := Load(path)
	require.NoError(t, err)
	assert.True(t, opts.Has(LongAsDefault))
	assert.True(t, opts.Culture.IsInvariant())
}
