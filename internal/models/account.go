package models

import "strings"

// AccountType mirrors the account kinds a user can register.
type AccountType string

const (
	AccountSavings AccountType = "savings"
	AccountCurrent AccountType = "current"
	AccountCredit  AccountType = "credit"
)

// Account is a user's bank account. Implicit accounts are stubs created when
// a transaction references an account the user never registered.
type Account struct {
	ID       string      `json:"id"`
	UserID   string      `json:"userId"`
	Bank     Bank        `json:"bankName"`
	Type     AccountType `json:"accountType"`
	Number   string      `json:"accountNumber"`
	Implicit bool        `json:"implicit"`
}

// Suffix returns the last four digits of the account number, ignoring masking
// characters. Fewer digits are returned as-is.
func (a Account) Suffix() string {
	return DigitSuffix(a.Number, 4)
}

// HasSuffix reports whether the account number ends with the given digits.
func (a Account) HasSuffix(digits string) bool {
	if digits == "" {
		return false
	}
	return strings.HasSuffix(onlyDigits(a.Number), digits)
}

// DigitSuffix returns the last n digits of s, skipping non-digit characters.
func DigitSuffix(s string, n int) string {
	d := onlyDigits(s)
	if len(d) > n {
		return d[len(d)-n:]
	}
	return d
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
