package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyCorrections(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"o for zero after digit", "1O1", "101"},
		{"o for zero run", "$1,5OO", "$1,500"},
		{"l for one", "l23 Elm Ave.", "123 Elm Avenue"},
		{"pipe for one", "Suite |2", "Suite 12"},
		{"s for five after digit", "1S0", "150"},
		{"b for eight", "B4", "84"},
		{"five for s at word start", "123 Main 5treet", "123 Main Street"},
		{"section symbol", "§2,000.00", "$2,000.00"},
		{"street abbreviation", "123 Main St.", "123 Main Street"},
		{"boulevard abbreviation", "45 Sunset Blvd.", "45 Sunset Boulevard"},
		{"space runs", "unit   101\ttenant", "unit 101 tenant"},
		{"newline runs", "a\n\n\nb", "a\nb"},
		{"prose untouched", "Offering Memorandum", "Offering Memorandum"},
		{"trimmed", "  101  ", "101"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ApplyCorrections(tt.input))
		})
	}
}

func TestApplyCorrectionsIdempotent(t *testing.T) {
	inputs := []string{
		"1O1 Main St. §1,5OO.00",
		"l23 Elm Ave. Suite |2",
		"B4 unit, 1S0 sqft",
		"Tenant: Acme Corp\n\n\nRent: $1,500.00",
		"5SO", // chained confusions must still converge
	}
	for _, in := range inputs {
		once := ApplyCorrections(in)
		assert.Equal(t, once, ApplyCorrections(once), "input %q", in)
	}
}
