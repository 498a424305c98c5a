// Package taxid normalizes Colombian taxpayer identifiers (NIT or cédula).
// The last digit of a NIT determines which tax-calendar bucket applies,
// so extraction must tolerate the punctuation people type into these
// numbers (dashes, dots, spaces).
package taxid

import "errors"

// ErrInvalidID is returned when an identifier contains no digits at all.
var ErrInvalidID = errors.New("invalid tax id: contains no digits")

// Length bounds for a plausible NIT/cédula after stripping punctuation.
const (
	minDigits = 6
	maxDigits = 15
)

// stripNonDigits keeps only the ASCII digit characters of raw.
func stripNonDigits(raw string) string {
	out := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		if raw[i] >= '0' && raw[i] <= '9' {
			out = append(out, raw[i])
		}
	}
	return string(out)
}

// LastDigit returns the numeric value of the final digit of a NIT,
// ignoring any non-digit characters. Returns ErrInvalidID when the
// identifier has no digits.
func LastDigit(raw string) (int, error) {
	clean := stripNonDigits(raw)
	if len(clean) == 0 {
		return 0, ErrInvalidID
	}
	return int(clean[len(clean)-1] - '0'), nil
}

// IsValid reports whether the identifier has a plausible number of digits
// (between 6 and 15 inclusive) once punctuation is stripped.
func IsValid(raw string) bool {
	n := len(stripNonDigits(raw))
	return n >= minDigits && n <= maxDigits
}
