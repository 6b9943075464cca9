package sink

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/sms-ledger/internal/models"
)

func testTransaction(user, fingerprint string) models.Transaction {
	return models.Transaction{
		ID:          uuid.New(),
		UserID:      user,
		AmountMinor: 50000,
		Amount:      "500.00",
		Currency:    models.CurrencyINR,
		Direction:   models.Debit,
		Date:        "2024-01-01",
		Category:    models.CategoryFood,
		Merchant:    "SWIGGY",
		Fingerprint: fingerprint,
	}
}

func TestMemoryStore_UpsertDeduplicatesPerUser(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	res, err := store.Upsert(ctx, testTransaction("u1", "fp1"))
	require.NoError(t, err)
	assert.Equal(t, Inserted, res)

	res, err = store.Upsert(ctx, testTransaction("u1", "fp1"))
	require.NoError(t, err)
	assert.Equal(t, Duplicate, res)

	res, err = store.Upsert(ctx, testTransaction("u2", "fp1"))
	require.NoError(t, err)
	assert.Equal(t, Inserted, res, "same fingerprint for another user is a new transaction")

	list, err := store.List(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestMemoryStore_ListKeepsOrder(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	for i := 0; i < 5; i++ {
		_, err := store.Upsert(ctx, testTransaction("u1", fmt.Sprintf("fp%d", i)))
		require.NoError(t, err)
	}
	list, err := store.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 5)
	for i, tx := range list {
		assert.Equal(t, fmt.Sprintf("fp%d", i), tx.Fingerprint)
	}

	list[0].Merchant = "CHANGED"
	again, _ := store.List(ctx, "u1")
	assert.Equal(t, "SWIGGY", again[0].Merchant, "List must return a copy")
}

func TestMemoryStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewMemoryStore().Upsert(ctx, testTransaction("u1", "fp"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryStore_Accounts(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	acct := models.Account{ID: "a1", UserID: "u1", Bank: models.BankHDFC, Number: "XXXX1234", Implicit: true}
	require.NoError(t, store.SaveAccount(ctx, acct))
	require.NoError(t, store.SaveAccount(ctx, models.Account{ID: "a2", UserID: "u2", Bank: models.BankSBI}))

	acct.Implicit = false
	require.NoError(t, store.SaveAccount(ctx, acct))

	accounts, err := store.Accounts(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.False(t, accounts[0].Implicit)

	none, err := store.Accounts(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemoryStore_ConcurrentUpserts(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	var wg sync.WaitGroup
	results := make(chan UpsertResult, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := store.Upsert(ctx, testTransaction("u1", "same"))
			assert.NoError(t, err)
			results <- res
		}()
	}
	wg.Wait()
	close(results)

	inserted := 0
	for res := range results {
		if res == Inserted {
			inserted++
		}
	}
	assert.Equal(t, 1, inserted)
}

func TestUpsertResultString(t *testing.T) {
	assert.Equal(t, "inserted", Inserted.String())
	assert.Equal(t, "duplicate", Duplicate.String())
	assert.Equal(t, "unknown", UpsertResult(7).String())
}
