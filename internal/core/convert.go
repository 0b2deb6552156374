package core

// convert.go provides type conversion functions for raw CSV cells.
//
// These functions handle the messy reality of exported spreadsheet data:
//   - Multiple date formats (US, EU, ISO, timestamps, 2-digit years)
//   - Currency symbols and thousand separators in numbers
//   - Accounting negatives "(12.50)"
//   - Excel formula prefixes (="value")
//   - Integral numeric spellings of identifiers ("007", "7.0")
//
// Every To* function expects a cleaned, non-empty cell; missing values are
// handled by the caller according to the field's MissingPolicy.

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// numericRegex validates that a string is a valid numeric format after cleanup.
// Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// integralRegex matches numbers without a fractional part ("7", "007", "7.00").
var integralRegex = regexp.MustCompile(`^\d+(\.0*)?$`)

// keyRegex is the accepted alphabet for identifiers.
var keyRegex = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// maxDecimal is the first magnitude that does not fit DECIMAL(12,2).
var maxDecimal = decimal.New(1, 10)

// TwoDigitYearPivot defines how 2-digit years are interpreted.
// Years that would result in dates more than this many years in the future
// are assumed to be in the previous century.
var TwoDigitYearPivot = 20

// Date layouts split by year format for proper 2-digit year handling
var (
	twoDigitYearLayouts = []string{
		"1/2/06", "01/02/06", "1-2-06", "1.2.06", "01.02.06",
	}
	fourDigitYearLayouts = []string{
		"2006-01-02", "2006/01/02", "2006.01.02",
		"1/2/2006", "01/02/2006", "1-2-2006", "01-02-2006", "1.2.2006", "01.02.2006",
		"Jan 2, 2006", "2 Jan 2006", "January 2, 2006", "2-Jan-2006",
		"20060102",
	}
	timestampLayouts = []string{
		time.RFC3339, time.RFC3339Nano,
		"2006-01-02 15:04:05", "2006-01-02T15:04:05", "2006-01-02 15:04",
		"2006-01-02 15:04:05.999999",
		"1/2/2006 15:04", "1/2/2006 15:04:05",
	}
)

// currencyTokens are stripped from numeric cells before parsing.
// Longer tokens come first so "Rs." is removed before "Rs".
var currencyTokens = []string{
	"INR", "USD", "EUR", "GBP",
	"Rs.", "Rs", "rs.",
	"$", "€", "£", "₹",
}

// ToText trims a text value. Returns false if nothing is left.
func ToText(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != ""
}

// ToKey normalizes an identifier.
// Integral numeric spellings collapse to their canonical form so that
// "007", "7" and "7.0" refer to the same row.
func ToKey(s string) (string, error) {
	s = strings.TrimSpace(s)
	if integralRegex.MatchString(s) {
		s, _, _ = strings.Cut(s, ".")
		s = strings.TrimLeft(s, "0")
		if s == "" {
			s = "0"
		}
	}
	if !keyRegex.MatchString(s) {
		return "", fmt.Errorf("not a valid identifier (letters, digits, '_' and '-' only)")
	}
	return s, nil
}

// ToInteger converts a whole number. "1,200" and "3.0" are accepted; "3.5" is not.
func ToInteger(s string) (int64, error) {
	d, err := parseNumber(s)
	if err != nil {
		return 0, fmt.Errorf("invalid integer format")
	}
	if !d.IsInteger() {
		return 0, fmt.Errorf("must be a whole number")
	}
	if !d.BigInt().IsInt64() {
		return 0, fmt.Errorf("integer out of range")
	}
	return d.IntPart(), nil
}

// ToDecimal converts a monetary amount with at most 2 fractional digits.
// Handles currency symbols, thousands separators, and accounting format (parentheses for negative).
// Finer amounts are rejected rather than rounded, so "-0.004" never becomes 0.
func ToDecimal(s string) (decimal.Decimal, error) {
	d, err := parseNumber(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid number format")
	}
	if !d.Equal(d.Truncate(2)) {
		return decimal.Zero, fmt.Errorf("invalid number format: more than 2 decimal places")
	}
	if d.Abs().GreaterThanOrEqual(maxDecimal) {
		return decimal.Zero, fmt.Errorf("amount exceeds 10 integer digits")
	}
	return d, nil
}

// parseNumber strips currency artifacts and parses the remainder.
func parseNumber(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)

	// Detect negative accounting format "(123.45)"
	isNegative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		isNegative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	for _, tok := range currencyTokens {
		s = strings.ReplaceAll(s, tok, "")
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	if isNegative {
		s = "-" + s
	}

	if !numericRegex.MatchString(s) {
		return decimal.Zero, fmt.Errorf("not numeric: %q", s)
	}
	return decimal.NewFromString(s)
}

// ToDate converts a date or timestamp to a UTC calendar date.
// Supports multiple date formats and handles 2-digit years with pivot.
func ToDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)

	// Try 4-digit year layouts first (unambiguous)
	for _, layout := range fourDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return truncateDate(t), nil
		}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return truncateDate(t), nil
		}
	}

	// Try 2-digit year layouts with pivot year adjustment
	pivotYear := time.Now().Year() + TwoDigitYearPivot
	for _, layout := range twoDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() > pivotYear {
				t = t.AddDate(-100, 0, 0)
			}
			return truncateDate(t), nil
		}
	}

	return time.Time{}, fmt.Errorf("invalid date format (use YYYY-MM-DD or similar)")
}

func truncateDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// NormalizeEnum lowercases a label and joins its words with underscores:
// "Net Banking" and "net-banking" both become "net_banking".
func NormalizeEnum(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	words := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '-' || r == '_' || r == '\t'
	})
	return strings.Join(words, "_")
}

// ToEnum normalizes a value and checks it against the allowed set.
func ToEnum(s string, allowed []string) (string, error) {
	v := NormalizeEnum(s)
	for _, a := range allowed {
		if a == v {
			return v, nil
		}
	}
	return "", fmt.Errorf("value must be one of: %s", strings.Join(allowed, ", "))
}

// MakeHeaderIndex creates a HeaderIndex from a CSV header row.
// Keys are lowercased for case-insensitive matching.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		key := strings.ToLower(CleanCell(h))
		if _, dup := idx[key]; dup {
			continue // first column wins
		}
		idx[key] = i
	}
	return idx
}

// CleanCell removes common CSV artifacts from a cell value:
// - Trims whitespace
// - Removes Excel formula prefix (="...")
// - Removes surrounding quotes
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	// Remove leading '='
	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	// Remove any surrounding quotes
	s = strings.Trim(s, `"'`)

	return strings.TrimSpace(s)
}
