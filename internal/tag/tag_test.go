package tag

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain tag", "9Q2YJ0U", "9Q2YJ0U"},
		{"leading marker stripped", "#9Q2YJ0U", "9Q2YJ0U"},
		{"lower-cased input", "#9q2yj0u", "9Q2YJ0U"},
		{"surrounding whitespace", "  #9q2yj0u  ", "9Q2YJ0U"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	first, err := Normalize("#9q2yj0u")
	require.NoError(t, err)

	second, err := Normalize(first)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestNormalizeRejects(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		reason Reason
	}{
		{"too short", "#AB", ReasonTooShort},
		{"empty", "", ReasonTooShort},
		{"too long", "#ABCDEFGHJKLMN", ReasonTooLong},
		{"punctuation", "#9Q2-YJ0U", ReasonInvalidChars},
		{"spaces inside", "#9Q2 YJ0U", ReasonInvalidChars},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.in)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.reason, verr.Reason)
			assert.NotEmpty(t, verr.Error())
		})
	}
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, "#9Q2YJ0U", Display("9Q2YJ0U"))
}

func TestIsTagLike(t *testing.T) {
	assert.True(t, IsTagLike("#anything at all"))
	assert.True(t, IsTagLike("9Q2YJ0U"))
	assert.True(t, IsTagLike("9q2yj0u"))
	assert.False(t, IsTagLike("The Crushers"))
	assert.False(t, IsTagLike("ab"))
	assert.False(t, IsTagLike(""))
}
