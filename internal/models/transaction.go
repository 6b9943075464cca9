package models

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Direction tells whether money left or entered the account.
type Direction string

const (
	Debit  Direction = "debit"
	Credit Direction = "credit"
)

// Valid reports whether d is debit or credit.
func (d Direction) Valid() bool {
	return d == Debit || d == Credit
}

// RawText is one segment of input text together with the bank hint it was
// submitted under.
type RawText struct {
	Text string
	Bank Bank
}

// Candidate is what a matcher recovers from a single segment before any
// date, account or category resolution.
type Candidate struct {
	AmountMinor   int64
	Direction     Direction
	Counterparty  string
	RawDate       string
	AccountSuffix string
	BalanceMinor  *int64
	Matcher       string
	Raw           RawText
}

// Transaction is a normalized, categorized transaction ready for storage.
type Transaction struct {
	ID            uuid.UUID `json:"id" csv:"ID"`
	UserID        string    `json:"userId" csv:"UserID"`
	AmountMinor   int64     `json:"amountMinor" csv:"-"`
	Amount        string    `json:"amount" csv:"Amount"`
	Currency      string    `json:"currency" csv:"Currency"`
	Direction     Direction `json:"direction" csv:"Direction"`
	Date          string    `json:"date" csv:"Date"`
	Category      Category  `json:"category" csv:"Category"`
	Merchant      string    `json:"merchant" csv:"Merchant"`
	AccountID     string    `json:"accountId" csv:"AccountID"`
	AccountSuffix string    `json:"accountSuffix,omitempty" csv:"AccountSuffix"`
	Bank          Bank      `json:"bank" csv:"Bank"`
	BalanceMinor  *int64    `json:"balanceMinor,omitempty" csv:"-"`
	LowConfidence bool      `json:"lowConfidence" csv:"LowConfidence"`
	Matcher       string    `json:"matcher" csv:"Matcher"`
	Provenance    string    `json:"provenance" csv:"Provenance"`
	Fingerprint   string    `json:"fingerprint" csv:"Fingerprint"`
}

// Balance returns the available balance as a rupee string, or "" when the
// source did not carry one.
func (t Transaction) Balance() string {
	if t.BalanceMinor == nil {
		return ""
	}
	return FormatMinorUnits(*t.BalanceMinor)
}

// SignedAmountMinor returns the amount with debits negative.
func (t Transaction) SignedAmountMinor() int64 {
	if t.Direction == Debit {
		return -t.AmountMinor
	}
	return t.AmountMinor
}

var spaceRun = regexp.MustCompile(`\s+`)

// NormalizeWhitespace trims s and collapses every whitespace run to one space.
func NormalizeWhitespace(s string) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}
