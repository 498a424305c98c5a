package taxid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLastDigit(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{"plain digits", "900123456", 6},
		{"with check digit dash", "900.123.456-7", 7},
		{"dots only", "12.345.678", 8},
		{"spaces", "  901 234 567 ", 7},
		{"cedula", "1020456789", 9},
		{"single digit", "5", 5},
		{"trailing letters ignored", "123456XY", 6},
		{"zero last digit", "800100200", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LastDigit(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLastDigitNoDigits(t *testing.T) {
	for _, raw := range []string{"", "   ", "abc", "N/A", "---"} {
		_, err := LastDigit(raw)
		assert.ErrorIs(t, err, ErrInvalidID, "raw=%q", raw)
	}
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"123456", true},            // exactly 6 digits
		{"12345", false},            // one short
		{"123456789012345", true},   // exactly 15 digits
		{"1234567890123456", false}, // one over
		{"900.123.456-7", true},     // punctuation does not count
		{"123-456", true},           // 6 digits across a dash
		{"12.345", false},           // still only 5 digits
		{"", false},
		{"abcdef", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsValid(tt.raw), "raw=%q", tt.raw)
	}
}
