package core

import (
	"testing"
	"time"
)

// ----------------------------------------------------------------------------
// ToDecimal Tests
// ----------------------------------------------------------------------------

func TestToDecimal(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
		wantValue string // String representation of expected decimal value
	}{
		// Valid: Basic numbers
		{name: "positive integer", input: "123", wantValid: true, wantValue: "123"},
		{name: "zero", input: "0", wantValid: true, wantValue: "0"},
		{name: "negative integer", input: "-456", wantValid: true, wantValue: "-456"},
		{name: "decimal number", input: "123.45", wantValid: true, wantValue: "123.45"},
		{name: "leading decimal point", input: ".99", wantValid: true, wantValue: "0.99"},
		{name: "trailing decimal point", input: "99.", wantValid: true, wantValue: "99"},
		{name: "trailing zeros past cents", input: "10.500", wantValid: true, wantValue: "10.5"},

		// Valid: Currency symbols
		{name: "dollar sign", input: "$1,234.56", wantValid: true, wantValue: "1234.56"},
		{name: "euro sign", input: "€1234.56", wantValid: true, wantValue: "1234.56"},
		{name: "pound sign", input: "£1234.56", wantValid: true, wantValue: "1234.56"},
		{name: "rupee sign", input: "₹ 1,499.00", wantValid: true, wantValue: "1499"},
		{name: "rupee abbreviation", input: "Rs. 250", wantValid: true, wantValue: "250"},
		{name: "currency code", input: "INR 99.50", wantValid: true, wantValue: "99.5"},

		// Valid: Accounting format
		{name: "accounting negative", input: "(123.45)", wantValid: true, wantValue: "-123.45"},
		{name: "accounting negative with currency", input: "($1,000.00)", wantValid: true, wantValue: "-1000"},

		// Valid: Scientific notation
		{name: "scientific notation", input: "1.5e3", wantValid: true, wantValue: "1500"},

		// Invalid
		{name: "letters", input: "abc", wantValid: false},
		{name: "mixed letters", input: "12abc", wantValid: false},
		{name: "two decimal points", input: "1.2.3", wantValid: false},
		{name: "only currency", input: "$", wantValid: false},
		{name: "too many integer digits", input: "12345678901", wantValid: false},
		{name: "sub-cent amount", input: "10.005", wantValid: false},
		{name: "sub-cent negative", input: "-0.004", wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToDecimal(tt.input)
			if (err == nil) != tt.wantValid {
				t.Errorf("ToDecimal(%q) error = %v, wantValid %v", tt.input, err, tt.wantValid)
				return
			}
			if tt.wantValid && got.String() != tt.wantValue {
				t.Errorf("ToDecimal(%q) = %s, want %s", tt.input, got.String(), tt.wantValue)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// ToInteger Tests
// ----------------------------------------------------------------------------

func TestToInteger(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
		want      int64
	}{
		{name: "plain", input: "3", wantValid: true, want: 3},
		{name: "negative", input: "-2", wantValid: true, want: -2},
		{name: "thousands separator", input: "1,200", wantValid: true, want: 1200},
		{name: "spreadsheet float", input: "3.0", wantValid: true, want: 3},
		{name: "fraction rejected", input: "3.5", wantValid: false},
		{name: "letters rejected", input: "three", wantValid: false},
		{name: "overflow rejected", input: "99999999999999999999", wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToInteger(tt.input)
			if (err == nil) != tt.wantValid {
				t.Errorf("ToInteger(%q) error = %v, wantValid %v", tt.input, err, tt.wantValid)
				return
			}
			if tt.wantValid && got != tt.want {
				t.Errorf("ToInteger(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// ToKey Tests
// ----------------------------------------------------------------------------

func TestToKey(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
		want      string
	}{
		{name: "alphanumeric", input: "C001", wantValid: true, want: "C001"},
		{name: "with dash and underscore", input: "ord-2024_01", wantValid: true, want: "ord-2024_01"},
		{name: "trims whitespace", input: "  P10 ", wantValid: true, want: "P10"},
		{name: "leading zeros collapse", input: "007", wantValid: true, want: "7"},
		{name: "spreadsheet float collapses", input: "7.0", wantValid: true, want: "7"},
		{name: "zero", input: "000", wantValid: true, want: "0"},
		{name: "fractional rejected", input: "1.5", wantValid: false},
		{name: "embedded space rejected", input: "a b", wantValid: false},
		{name: "punctuation rejected", input: "C#1", wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToKey(tt.input)
			if (err == nil) != tt.wantValid {
				t.Errorf("ToKey(%q) error = %v, wantValid %v", tt.input, err, tt.wantValid)
				return
			}
			if tt.wantValid && got != tt.want {
				t.Errorf("ToKey(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// ToDate Tests
// ----------------------------------------------------------------------------

func TestToDate(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
		wantYear  int
		wantMonth time.Month
		wantDay   int
	}{
		{name: "ISO format", input: "2024-01-15", wantValid: true, wantYear: 2024, wantMonth: time.January, wantDay: 15},
		{name: "ISO leap day", input: "2024-02-29", wantValid: true, wantYear: 2024, wantMonth: time.February, wantDay: 29},
		{name: "US slash format", input: "03/07/2024", wantValid: true, wantYear: 2024, wantMonth: time.March, wantDay: 7},
		{name: "month name", input: "Jan 2, 2023", wantValid: true, wantYear: 2023, wantMonth: time.January, wantDay: 2},
		{name: "day month year", input: "5 Aug 2022", wantValid: true, wantYear: 2022, wantMonth: time.August, wantDay: 5},
		{name: "compact", input: "20230615", wantValid: true, wantYear: 2023, wantMonth: time.June, wantDay: 15},
		{name: "timestamp", input: "2023-06-15 13:45:00", wantValid: true, wantYear: 2023, wantMonth: time.June, wantDay: 15},
		{name: "RFC 3339", input: "2023-06-15T23:30:00Z", wantValid: true, wantYear: 2023, wantMonth: time.June, wantDay: 15},
		{name: "invalid month", input: "2024-13-01", wantValid: false},
		{name: "not a leap year", input: "2023-02-29", wantValid: false},
		{name: "text", input: "yesterday", wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToDate(tt.input)
			if (err == nil) != tt.wantValid {
				t.Errorf("ToDate(%q) error = %v, wantValid %v", tt.input, err, tt.wantValid)
				return
			}
			if !tt.wantValid {
				return
			}
			if got.Year() != tt.wantYear || got.Month() != tt.wantMonth || got.Day() != tt.wantDay {
				t.Errorf("ToDate(%q) = %s, want %d-%02d-%02d",
					tt.input, got.Format("2006-01-02"), tt.wantYear, tt.wantMonth, tt.wantDay)
			}
			if got.Hour() != 0 || got.Location() != time.UTC {
				t.Errorf("ToDate(%q) = %v, want midnight UTC", tt.input, got)
			}
		})
	}
}

// TestToDate_TwoDigitYear tests 2-digit year handling with pivot year logic
func TestToDate_TwoDigitYear(t *testing.T) {
	originalPivot := TwoDigitYearPivot
	defer func() { TwoDigitYearPivot = originalPivot }()
	TwoDigitYearPivot = 20

	tests := []struct {
		name     string
		input    string
		wantYear int
	}{
		{name: "2-digit year 25 as 2025", input: "01/15/25", wantYear: 2025},
		{name: "2-digit year 99 as 1999", input: "01/15/99", wantYear: 1999},
		{name: "dash format 2-digit year", input: "1-15-99", wantYear: 1999},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToDate(tt.input)
			if err != nil {
				t.Fatalf("ToDate(%q) error = %v", tt.input, err)
			}
			if got.Year() != tt.wantYear {
				t.Errorf("ToDate(%q).Year = %d, want %d", tt.input, got.Year(), tt.wantYear)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// ToEnum Tests
// ----------------------------------------------------------------------------

func TestToEnum(t *testing.T) {
	allowed := []string{"net_banking", "credit_card", "upi"}

	tests := []struct {
		name      string
		input     string
		wantValid bool
		want      string
	}{
		{name: "exact", input: "upi", wantValid: true, want: "upi"},
		{name: "upper case", input: "UPI", wantValid: true, want: "upi"},
		{name: "spaces", input: "Net Banking", wantValid: true, want: "net_banking"},
		{name: "dashes", input: "credit-card", wantValid: true, want: "credit_card"},
		{name: "extra whitespace", input: "  credit   card ", wantValid: true, want: "credit_card"},
		{name: "unknown", input: "barter", wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToEnum(tt.input, allowed)
			if (err == nil) != tt.wantValid {
				t.Errorf("ToEnum(%q) error = %v, wantValid %v", tt.input, err, tt.wantValid)
				return
			}
			if tt.wantValid && got != tt.want {
				t.Errorf("ToEnum(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// CleanCell Tests
// ----------------------------------------------------------------------------

func TestCleanCell(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "simple string unchanged", input: "hello", want: "hello"},
		{name: "empty string", input: "", want: ""},
		{name: "whitespace trimmed", input: "  hello  ", want: "hello"},
		{name: "excel formula quoted", input: `="00123"`, want: "00123"},
		{name: "excel formula bare", input: "=42", want: "42"},
		{name: "double quotes", input: `"hello"`, want: "hello"},
		{name: "single quotes", input: "'hello'", want: "hello"},
		{name: "only quotes", input: "''", want: ""},
		{name: "equals with quoted number", input: `="0"`, want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CleanCell(tt.input)
			if got != tt.want {
				t.Errorf("CleanCell(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// MakeHeaderIndex Tests
// ----------------------------------------------------------------------------

func TestMakeHeaderIndex(t *testing.T) {
	tests := []struct {
		name   string
		header []string
		checks map[string]int // key -> expected index
	}{
		{
			name:   "simple headers",
			header: []string{"customer_id", "full_name", "email"},
			checks: map[string]int{"customer_id": 0, "full_name": 1, "email": 2},
		},
		{
			name:   "case insensitive lookup",
			header: []string{"CUSTOMER_ID", "Full_Name"},
			checks: map[string]int{"customer_id": 0, "full_name": 1},
		},
		{
			name:   "headers with quotes and whitespace",
			header: []string{` "customer_id" `, `="email"`},
			checks: map[string]int{"customer_id": 0, "email": 1},
		},
		{
			name:   "empty header",
			header: []string{},
			checks: map[string]int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := MakeHeaderIndex(tt.header)

			for key, wantPos := range tt.checks {
				gotPos, ok := idx[key]
				if !ok {
					t.Errorf("MakeHeaderIndex(%v)[%q] not found, want index %d", tt.header, key, wantPos)
					continue
				}
				if gotPos != wantPos {
					t.Errorf("MakeHeaderIndex(%v)[%q] = %d, want %d", tt.header, key, gotPos, wantPos)
				}
			}
		})
	}
}

// TestMakeHeaderIndex_DuplicateHeaders verifies the first occurrence of a column wins.
func TestMakeHeaderIndex_DuplicateHeaders(t *testing.T) {
	idx := MakeHeaderIndex([]string{"email", "city", "Email"})

	if gotPos, ok := idx["email"]; !ok || gotPos != 0 {
		t.Errorf("MakeHeaderIndex with duplicates: email index = %d, want 0", gotPos)
	}
}
