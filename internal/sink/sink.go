// Package sink persists normalized transactions and the user's accounts.
// Every implementation de-duplicates on (user, fingerprint).
package sink

import (
	"context"
	"errors"

	"fjacquet/sms-ledger/internal/models"
)

//go:generate mockgen -destination=mocks/mock_sink.go -package=mocks -source=sink.go Sink,AccountStore,Store

// UpsertResult tells whether Upsert stored a new transaction.
type UpsertResult int

const (
	Inserted UpsertResult = iota
	Duplicate
)

func (r UpsertResult) String() string {
	switch r {
	case Inserted:
		return "inserted"
	case Duplicate:
		return "duplicate"
	default:
		return "unknown"
	}
}

// ErrUnavailable is returned while the backing store is known to be down.
var ErrUnavailable = errors.New("transaction store unavailable")

// Sink stores transactions.
type Sink interface {
	// Upsert stores tx unless a transaction with the same user and
	// fingerprint already exists.
	Upsert(ctx context.Context, tx models.Transaction) (UpsertResult, error)
	// List returns the user's transactions in insertion order.
	List(ctx context.Context, userID string) ([]models.Transaction, error)
}

// AccountStore stores the accounts a user has, including implicit stubs.
type AccountStore interface {
	Accounts(ctx context.Context, userID string) ([]models.Account, error)
	SaveAccount(ctx context.Context, account models.Account) error
}

// Store is a Sink that also keeps accounts. Every driver implements it.
type Store interface {
	Sink
	AccountStore
	Name() string
	Close() error
}
