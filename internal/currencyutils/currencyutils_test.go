package currencyutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMinorUnits(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected int64
		hasError bool
	}{
		{"rs dot prefix", "Rs.500.00", 50000, false},
		{"rs space prefix", "Rs 500", 50000, false},
		{"inr prefix", "INR 1,234.50", 123450, false},
		{"rupee sign", "₹99.5", 9950, false},
		{"lakh grouping", "Rs.1,23,456.78", 12345678, false},
		{"western grouping", "123,456", 12345600, false},
		{"bare integer", "25000", 2500000, false},
		{"trailing slash dash", "Rs.500/-", 50000, false},
		{"lower case prefix", "rs. 10", 1000, false},
		{"empty", "", 0, true},
		{"prefix only", "Rs.", 0, true},
		{"non numeric", "abc", 0, true},
		{"two dots", "12.34.56", 0, true},
		{"largest representable", "Rs 92233720368547758.07", 9223372036854775807, false},
		{"overflows int64 paise", "Rs 92233720368547759", 0, true},
		{"far beyond int64", "Rs 99999999999999999999", 0, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseMinorUnits(tc.in)
			if tc.hasError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestFindAmounts(t *testing.T) {
	text := "Rs.500.00 debited from A/C XXXX1234 at SWIGGY on 01-01-2024. Avl Bal Rs.25,000.00"
	amounts := FindAmounts(text)
	require.Len(t, amounts, 2)
	assert.Equal(t, int64(50000), amounts[0].Minor)
	assert.Equal(t, 0, amounts[0].Start)
	assert.Equal(t, int64(2500000), amounts[1].Minor)
	assert.Equal(t, "Rs.25,000.00", amounts[1].Text)
}

func TestFindAmounts_IgnoresWordsContainingRs(t *testing.T) {
	assert.Empty(t, FindAmounts("Hrs 500 remaining for offers"))
	assert.Len(t, FindAmounts("Paid INR500 and ₹ 20"), 2)
}

func TestFormatINR(t *testing.T) {
	assert.Equal(t, "Rs. 1234.56", FormatINR(123456))
}
