package usecase

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateText(t *testing.T) {
	tests := []struct {
		name          string
		text          string
		maxTextLength int
		expectedErr   string
	}{
		{
			name:          "valid text",
			text:          "hello world",
			maxTextLength: 100,
		},
		{
			name:          "exactly at limit",
			text:          strings.Repeat("a", 10),
			maxTextLength: 10,
		},
		{
			name:          "empty text",
			text:          "",
			maxTextLength: 100,
			expectedErr:   "Input error: Empty text input",
		},
		{
			name:          "one byte over limit",
			text:          strings.Repeat("a", 11),
			maxTextLength: 10,
			expectedErr:   "Input error: Text too long: 11 bytes",
		},
		{
			name:          "length counts bytes not runes",
			text:          "ééé",
			maxTextLength: 5,
			expectedErr:   "Input error: Text too long: 6 bytes",
		},
		{
			name:          "whitespace only is not empty",
			text:          "   ",
			maxTextLength: 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateText(tt.text, tt.maxTextLength)

			if tt.expectedErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.expectedErr)
			assert.True(t, errors.Is(err, ErrInput))
			assert.False(t, errors.Is(err, ErrModel))
		})
	}
}

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{name: "appends terminator", text: "hello", expected: "hello\n"},
		{name: "keeps existing terminator", text: "hello\n", expected: "hello\n"},
		{name: "only one terminator is kept", text: "hello\n\n", expected: "hello\n\n"},
		{name: "carriage return is not a terminator", text: "hello\r", expected: "hello\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeText(tt.text))
		})
	}

	t.Run("idempotent", func(t *testing.T) {
		once := NormalizeText("banana bread")
		assert.Equal(t, once, NormalizeText(once))
		assert.Equal(t, 1, strings.Count(once, "\n"))
	})
}
