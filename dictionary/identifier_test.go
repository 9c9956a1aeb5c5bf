package dictionary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapeIdentifier(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"hiragana", "あ", "[3042]"},
		{"ascii", "a", "[0061]"},
		{"surrogate pair", "𠀋", "[D840_DC0B]"},
		{"two chars", "あい", "[3042_3044]"},
		{"reserved user", "user", "user"},
		{"reserved memory", "memory", "memory"},
		{"reserved shortcuts", "user_shortcuts", "user_shortcuts"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EscapeIdentifier(tt.in)
			assert.Equal(t, tt.want, got)

			back, err := UnescapeIdentifier(got)
			require.NoError(t, err)
			assert.Equal(t, tt.in, back)
		})
	}
}

func TestUnescapeIdentifier_Malformed(t *testing.T) {
	for _, id := range []string{"", "3042", "[304]", "[30425]", "[ZZZZ]", "[3042_]"} {
		_, err := UnescapeIdentifier(id)
		assert.Error(t, err, id)
	}
}

func TestBucketOf(t *testing.T) {
	assert.Equal(t, "あ", BucketOf("あい"))
	assert.Equal(t, "𠀋", BucketOf("𠀋あ"))
	assert.Equal(t, "", BucketOf(""))
}
