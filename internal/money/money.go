// Package money converts between integer minor-unit amounts (cents) used on
// the wire and the major-unit strings shown to customers.
package money

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

const Symbol = "$"

var ErrInvalidAmount = errors.New("invalid amount")

// Display renders a minor-unit amount as "$1,234.56". Zero and negative-zero
// inputs render as "$0.00".
func Display(minor int64) string {
	neg := minor < 0
	if neg {
		minor = -minor
	}

	units := minor / 100
	cents := minor % 100

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString(Symbol)
	b.WriteString(group(units))
	b.WriteByte('.')
	if cents < 10 {
		b.WriteByte('0')
	}
	b.WriteString(strconv.FormatInt(cents, 10))

	return b.String()
}

// MinorUnits parses a display string back into minor units. Stray formatting
// (currency symbols, thousands separators, whitespace) is stripped before
// parsing; only digits, '.' and '-' count.
func MinorUnits(display string) (int64, error) {
	var b strings.Builder
	for _, r := range display {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}

	s := b.String()
	if s == "" || s == "-" {
		return 0, ErrInvalidAmount
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}

	return int64(math.Round(f * 100)), nil
}

// group inserts thousands separators into a non-negative integer.
func group(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}

	return b.String()
}
