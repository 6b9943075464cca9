package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var paise = decimal.NewFromInt(PaisePerRupee)

// MinorUnitsFromString converts a decimal rupee string such as "25000.50" to
// paise. Fractions below one paisa are rounded half away from zero.
func MinorUnitsFromString(amount string) (int64, error) {
	dec, err := decimal.NewFromString(amount)
	if err != nil {
		return 0, fmt.Errorf("invalid amount string '%s': %w", amount, err)
	}
	return MinorUnitsFromDecimal(dec)
}

// MinorUnitsFromDecimal converts a rupee amount to paise. Amounts whose
// paise value does not fit in an int64 are rejected.
func MinorUnitsFromDecimal(amount decimal.Decimal) (int64, error) {
	minor := amount.Mul(paise).Round(0)
	if !minor.BigInt().IsInt64() {
		return 0, fmt.Errorf("amount %s out of range", amount.String())
	}
	return minor.IntPart(), nil
}

// DecimalFromMinorUnits converts paise back to a rupee amount.
func DecimalFromMinorUnits(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}

// FormatMinorUnits renders paise as a fixed two-decimal rupee string.
func FormatMinorUnits(minor int64) string {
	return DecimalFromMinorUnits(minor).StringFixed(2)
}
