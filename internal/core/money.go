// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts from the loosely
// formatted strings found in spreadsheets and converting them to cents.
package core

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

var maxCents = decimal.NewFromInt(1<<63 - 1)

// maxExponent bounds the decimal exponent accepted before rescaling to
// cents. Anything outside it cannot be a valid int64 cent amount, and
// rescaling a huge exponent costs time proportional to its size.
const maxExponent = 18

// ParseAmount converts a spreadsheet amount cell to unsigned cents.
//
// It accepts currency symbols, three-letter currency codes, thousands
// separators, a decimal dot or comma, a leading or trailing minus sign and
// accounting-style parentheses. The returned Money is always the absolute
// value; negative reports whether the source carried a minus sign.
// Rounding is half away from zero on the third decimal place.
//
// Examples:
//
//	ParseAmount("12.34")      -> 1234, false
//	ParseAmount("₹1,000")     -> 100000, false
//	ParseAmount("1.234,56")   -> 123456, false
//	ParseAmount("(200.00)")   -> 20000, true
//	ParseAmount("-12,345")    -> 1234500, true (comma followed by 3 digits is a thousands separator)
func ParseAmount(s string) (m Money, negative bool, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, false, ErrInvalidAmount
	}

	// Plain numbers (including exponent form) take the fast path.
	if d, derr := decimal.NewFromString(s); derr == nil {
		return toCents(d)
	}

	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	s = stripCurrency(s)
	switch {
	case strings.HasPrefix(s, "-"):
		negative = !negative
		s = s[1:]
	case strings.HasSuffix(s, "-"):
		negative = !negative
		s = s[:len(s)-1]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}
	s = stripCurrency(s)
	if s == "" {
		return Money{}, false, ErrInvalidAmount
	}
	for _, r := range s {
		if !unicode.IsDigit(r) && r != '.' && r != ',' {
			return Money{}, false, ErrInvalidAmount
		}
	}

	d, derr := decimal.NewFromString(normalizeSeparators(s))
	if derr != nil {
		return Money{}, false, ErrInvalidAmount
	}
	if negative {
		d = d.Neg()
	}
	return toCents(d)
}

func toCents(d decimal.Decimal) (Money, bool, error) {
	if e := d.Exponent(); e > maxExponent || e < -maxExponent {
		if d.IsZero() {
			return Money{}, false, nil
		}
		return Money{}, false, ErrInvalidAmount
	}
	// Integer digits beyond this overflow int64 cents.
	if d.NumDigits()+int(d.Exponent()) > maxExponent+1 {
		return Money{}, false, ErrInvalidAmount
	}
	cents := d.Shift(2).Round(0)
	if cents.Abs().GreaterThan(maxCents) {
		return Money{}, false, ErrInvalidAmount
	}
	c := cents.IntPart()
	if c < 0 {
		return Money{Cents: -c}, true, nil
	}
	return Money{Cents: c}, d.IsNegative(), nil
}

// stripCurrency removes surrounding whitespace, currency symbols and a
// three-letter currency code at either end.
func stripCurrency(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.Is(unicode.Sc, r) || unicode.IsSpace(r) || r == '\'' {
			return -1
		}
		return r
	}, s)
	if len(s) > 3 && isLetters(s[:3]) {
		s = s[3:]
	}
	if len(s) > 3 && isLetters(s[len(s)-3:]) {
		s = s[:len(s)-3]
	}
	return s
}

func isLetters(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// normalizeSeparators rewrites a digits/dot/comma string into plain decimal
// notation. When both separators appear the last one is the decimal mark.
// A comma alone is a thousands separator when every group after the first
// has exactly three digits, otherwise it is the decimal mark. A dot alone is
// the decimal mark unless it appears more than once in three-digit groups.
func normalizeSeparators(s string) string {
	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			return strings.Replace(s, ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")
	case lastComma >= 0:
		if isThousandsGrouped(s, ",") {
			return strings.ReplaceAll(s, ",", "")
		}
		return strings.Replace(s, ",", ".", 1)
	case lastDot >= 0:
		if strings.Count(s, ".") > 1 && isThousandsGrouped(s, ".") {
			return strings.ReplaceAll(s, ".", "")
		}
		return s
	}
	return s
}

func isThousandsGrouped(s, sep string) bool {
	groups := strings.Split(s, sep)
	if len(groups[0]) == 0 || len(groups[0]) > 3 {
		return false
	}
	for _, g := range groups[1:] {
		if len(g) != 3 {
			return false
		}
	}
	return true
}

// Add returns m+o.
func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

// Sub returns m-o.
func (m Money) Sub(o Money) Money {
	return Money{Cents: m.Cents - o.Cents}
}

// Units returns the amount in whole currency units as a float64 for display
// and regression. Use cents for sums to keep them exact.
func (m Money) Units() float64 {
	return float64(m.Cents) / 100.0
}

// String formats the amount with two decimals, e.g. "-1234.50".
func (m Money) String() string {
	return decimal.New(m.Cents, -2).StringFixed(2)
}

// MoneyFromUnits rounds a float amount to the nearest cent.
func MoneyFromUnits(f float64) Money {
	return Money{Cents: decimal.NewFromFloat(f).Shift(2).Round(0).IntPart()}
}

// MarshalJSON encodes the amount as a JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string.
func (m *Money) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return err
	}
	m.Cents = d.Shift(2).Round(0).IntPart()
	return nil
}
