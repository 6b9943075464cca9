// Package currencyutils parses Indian rupee amounts as they appear in bank
// SMS alerts and statements.
package currencyutils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"fjacquet/sms-ledger/internal/models"
)

// AmountPattern matches a rupee amount introduced by Rs, Rs., INR or ₹.
// Group 1 holds the numeric part with its grouping commas.
var AmountPattern = regexp.MustCompile(`(?i)(?:\b(?:rs\.?|inr)|₹)\s*([0-9][0-9,]*(?:\.[0-9]{1,2})?)`)

// bareAmountPattern matches an unprefixed amount such as a statement column.
var bareAmountPattern = regexp.MustCompile(`^[0-9]{1,3}(?:,[0-9]{2,3})*(?:\.[0-9]{1,2})?$|^[0-9]+(?:\.[0-9]{1,2})?$`)

var currencyPrefix = regexp.MustCompile(`(?i)^(?:rs\.?|inr|₹)\s*`)

// Amount is one amount located inside a larger text.
type Amount struct {
	Minor int64
	Start int
	End   int
	Text  string
}

// ParseMinorUnits parses an amount such as "Rs.25,000.00", "INR 1,23,456",
// "₹ 99.5" or "500" into paise. Commas are always grouping separators,
// which covers both lakh (1,23,456) and western (123,456) grouping.
func ParseMinorUnits(amountStr string) (int64, error) {
	s := strings.TrimSpace(amountStr)
	s = currencyPrefix.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "/-")
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}
	if !bareAmountPattern.MatchString(s) {
		return 0, fmt.Errorf("failed to parse amount '%s'", amountStr)
	}
	dec, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return 0, fmt.Errorf("failed to parse amount '%s': %w", amountStr, err)
	}
	if dec.IsNegative() {
		return 0, fmt.Errorf("negative amount '%s'", amountStr)
	}
	minor, err := models.MinorUnitsFromDecimal(dec)
	if err != nil {
		return 0, fmt.Errorf("failed to parse amount '%s': %w", amountStr, err)
	}
	return minor, nil
}

// FindAmounts returns every currency-prefixed amount in text, in order of
// appearance. Unparseable hits are skipped.
func FindAmounts(text string) []Amount {
	var out []Amount
	for _, loc := range AmountPattern.FindAllStringSubmatchIndex(text, -1) {
		num := text[loc[2]:loc[3]]
		minor, err := ParseMinorUnits(strings.TrimRight(num, ","))
		if err != nil {
			continue
		}
		out = append(out, Amount{Minor: minor, Start: loc[0], End: loc[1], Text: text[loc[0]:loc[1]]})
	}
	return out
}

// FormatINR renders paise as "Rs. 1234.56".
func FormatINR(minor int64) string {
	return "Rs. " + models.FormatMinorUnits(minor)
}
