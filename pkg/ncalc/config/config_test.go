package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/config"
)

func TestNew(t *testing.T) {
	assert.NotNil(t, config.New(nil).Raw())
	assert.False(t, config.New(nil).Has("x"))
}

func TestString(t *testing.T) {
	tests := []struct {
		name string
		data map[string]any
		path string
		want string
	}{
		{"key exists", map[string]any{"culture": "de-DE"}, "culture", "de-DE"},
		{"key missing", map[string]any{}, "culture", "default"},
		{"wrong type", map[string]any{"culture": 1}, "culture", "default"},
		{"nested", map[string]any{"advanced": map[string]any{"date_separator": "-"}}, "advanced.date_separator", "-"},
		{"nested missing", map[string]any{"advanced": map[string]any{}}, "advanced.date_separator", "default"},
		{"path through scalar", map[string]any{"advanced": "x"}, "advanced.date_separator", "default"},
		{"map any any", map[string]any{"advanced": map[any]any{"time_separator": "."}}, "advanced.time_separator", "."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, config.New(tt.data).String(tt.path, "default"))
		})
	}
}

func TestDuration(t *testing.T) {
	tests := []struct {
		name string
		val  any
		want time.Duration
	}{
		{"string", "250ms", 250 * time.Millisecond},
		{"int seconds", 2, 2 * time.Second},
		{"float seconds", 1.5, 1500 * time.Millisecond},
		{"invalid", "soon", time.Minute},
		{"wrong type", true, time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New(map[string]any{"timeout": tt.val})
			assert.Equal(t, tt.want, cfg.Duration("timeout", time.Minute))
		})
	}
}

func TestBoolAndInt(t *testing.T) {
	cfg := config.New(map[string]any{"b": true, "i": 3, "f": 4.0, "g": 4.5})
	assert.True(t, cfg.Bool("b", false))
	assert.True(t, cfg.Bool("missing", true))
	assert.Equal(t, 3, cfg.Int("i", 0))
	assert.Equal(t, 4, cfg.Int("f", 0))
	assert.Equal(t, 9, cfg.Int("g", 9))
}

func TestStringSlice(t *testing.T) {
	tests := []struct {
		name string
		val  any
		want []string
	}{
		{"list", []any{"A", "B"}, []string{"A", "B"}},
		{"typed list", []string{"A"}, []string{"A"}},
		{"pipe separated", "A|B | C", []string{"A", "B", "C"}},
		{"comma separated", "A,B", []string{"A", "B"}},
		{"mixed list", []any{"A", 1}, []string{"default"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New(map[string]any{"flags": tt.val})
			assert.Equal(t, tt.want, cfg.StringSlice("flags", []string{"default"}))
		})
	}
}

func TestSub(t *testing.T) {
	cfg := config.New(map[string]any{
		"parameters": map[string]any{"rate": 0.2},
	})
	assert.Equal(t, map[string]any{"rate": 0.2}, cfg.Map("parameters"))
	assert.True(t, cfg.Sub("parameters").Has("rate"))
	assert.Empty(t, cfg.Sub("missing").Raw())
}

func TestFromFile(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "ncalc.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("culture: de-DE\nadvanced:\n  flags: [CalculatePercent]\n"), 0o600))
	cfg, err := config.FromFile(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, "de-DE", cfg.String("culture", ""))
	assert.Equal(t, []string{"CalculatePercent"}, cfg.StringSlice("advanced.flags", nil))

	jsonPath := filepath.Join(dir, "ncalc.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"timeout": 2}`), 0o600))
	cfg, err = config.FromFile(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, cfg.Duration("timeout", 0))

	_, err = config.FromFile(filepath.Join(dir, "ncalc.toml"))
	require.Error(t, err)

	badPath := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(badPath, []byte("a: [1"), 0o600))
	_, err = config.FromFile(badPath)
	require.Error(t, err)
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		path    string
		want    config.Format
		wantErr bool
	}{
		{"ncalc.yaml", config.FormatYAML, false},
		{"NCALC.YML", config.FormatYAML, false},
		{"dir/ncalc.json", config.FormatJSON, false},
		{"ncalc.toml", "", true},
		{"ncalc", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := config.FormatOf(tt.path)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromJSON_Numbers(t *testing.T) {
	cfg, err := config.FromJSON([]byte(`{"parameters": {"n": 3, "r": 0.5, "big": 1e3, "list": [1, 2.5]}, "depth": 4}`))
	require.NoError(t, err)

	params := cfg.Map("parameters")
	assert.Equal(t, int64(3), params["n"])
	assert.Equal(t, 0.5, params["r"])
	assert.Equal(t, 1000.0, params["big"])
	assert.Equal(t, []any{int64(1), 2.5}, params["list"])
	assert.Equal(t, 4, cfg.Int("depth", 0))
}

func TestParse(t *testing.T) {
	cfg, err := config.Parse([]byte("culture: fr-FR\n"), config.FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, "fr-FR", cfg.String("culture", ""))

	cfg, err = config.Parse([]byte(`{"culture": "en-GB"}`), config.FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "en-GB", cfg.String("culture", ""))

	_, err = config.Parse([]byte(`{"a": 1} {"b": 2}`), config.FormatJSON)
	require.Error(t, err)

	_, err = config.Parse(nil, config.Format("toml"))
	require.Error(t, err)
}
