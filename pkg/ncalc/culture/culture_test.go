package culture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		tag     string
		want    string
		wantErr bool
	}{
		{"", "", false},
		{"invariant", "", false},
		{"en-US", "en-US", false},
		{"en", "en-US", false},
		{"de-DE", "de-DE", false},
		{"de", "de-DE", false},
		{"sk", "sk-SK", false},
		{"not a tag!", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			c, err := Lookup(tt.tag)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Name)
		})
	}
}

func TestUses12HourClock(t *testing.T) {
	assert.True(t, MustLookup("en-US").Uses12HourClock())
	assert.False(t, MustLookup("de-DE").Uses12HourClock())
	assert.False(t, Invariant.Uses12HourClock())
}

func TestCollator(t *testing.T) {
	c := MustLookup("de-DE")
	assert.Equal(t, 0, c.Collator(true).CompareString("abc", "ABC"))
	assert.NotEqual(t, 0, c.Collator(false).CompareString("abc", "ABC"))
	assert.Equal(t, -1, c.Collator(false).CompareString("a", "b"))
}

func TestCaseMapping(t *testing.T) {
	assert.Equal(t, "STRASSE", MustLookup("de-DE").Upper("straße"))
	assert.Equal(t, "abc", Invariant.Lower("ABC"))
	assert.Equal(t, Fold("HeLLo"), Fold("hello"))
}
