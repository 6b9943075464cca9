package sink

import (
	"context"
	"sync"

	"fjacquet/sms-ledger/internal/models"
)

// MemoryStore keeps everything in process memory. It is the default driver
// and the one used by tests.
type MemoryStore struct {
	mu           sync.RWMutex
	transactions map[string][]models.Transaction
	seen         map[string]map[string]struct{}
	accounts     map[string][]models.Account
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		transactions: make(map[string][]models.Transaction),
		seen:         make(map[string]map[string]struct{}),
		accounts:     make(map[string][]models.Account),
	}
}

// Name returns the driver name.
func (m *MemoryStore) Name() string {
	return "memory"
}

// Upsert implements Sink.
func (m *MemoryStore) Upsert(ctx context.Context, tx models.Transaction) (UpsertResult, error) {
	if err := ctx.Err(); err != nil {
		return Inserted, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	fingerprints, ok := m.seen[tx.UserID]
	if !ok {
		fingerprints = make(map[string]struct{})
		m.seen[tx.UserID] = fingerprints
	}
	if _, dup := fingerprints[tx.Fingerprint]; dup {
		return Duplicate, nil
	}
	fingerprints[tx.Fingerprint] = struct{}{}
	m.transactions[tx.UserID] = append(m.transactions[tx.UserID], tx)
	return Inserted, nil
}

// List implements Sink.
func (m *MemoryStore) List(ctx context.Context, userID string) ([]models.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.Transaction(nil), m.transactions[userID]...), nil
}

// Accounts implements AccountStore.
func (m *MemoryStore) Accounts(ctx context.Context, userID string) ([]models.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.Account(nil), m.accounts[userID]...), nil
}

// SaveAccount implements AccountStore. An account with a known ID replaces
// the stored one.
func (m *MemoryStore) SaveAccount(ctx context.Context, account models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.accounts[account.UserID]
	for i := range list {
		if list[i].ID == account.ID {
			list[i] = account
			return nil
		}
	}
	m.accounts[account.UserID] = append(list, account)
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	return nil
}
