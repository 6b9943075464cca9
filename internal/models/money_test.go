package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinorUnitsFromString(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"500.00", 50000, false},
		{"25000", 2500000, false},
		{"0.5", 50, false},
		{"10.005", 1001, false},
		{"92233720368547758.07", 9223372036854775807, false},
		{"92233720368547758.08", 0, true},
		{"-92233720368547758.09", 0, true},
		{"abc", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := MinorUnitsFromString(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecimalFromMinorUnits(t *testing.T) {
	assert.True(t, decimal.RequireFromString("250.75").Equal(DecimalFromMinorUnits(25075)))
	assert.Equal(t, "25000.00", FormatMinorUnits(2500000))
}

func TestTransactionHelpers(t *testing.T) {
	bal := int64(2500000)
	tx := Transaction{AmountMinor: 50000, Direction: Debit, BalanceMinor: &bal}
	assert.Equal(t, int64(-50000), tx.SignedAmountMinor())
	assert.Equal(t, "25000.00", tx.Balance())
	assert.Equal(t, "", Transaction{}.Balance())
	assert.True(t, Debit.Valid())
	assert.False(t, Direction("refund").Valid())
	assert.Equal(t, "a b c", NormalizeWhitespace("  a\t b \n c "))
}
