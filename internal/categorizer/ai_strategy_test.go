package categorizer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/sms-ledger/internal/logging"
	"fjacquet/sms-ledger/internal/models"
	"fjacquet/sms-ledger/internal/parsererror"
)

// fakeAIClient returns a canned answer and records the last call.
type fakeAIClient struct {
	answer    string
	err       error
	calls     int
	lastTx    Transaction
	allowed   []string
	sawExpiry bool
}

func (f *fakeAIClient) SuggestCategory(ctx context.Context, tx Transaction, allowed []string) (string, error) {
	f.calls++
	f.lastTx = tx
	f.allowed = allowed
	_, f.sawExpiry = ctx.Deadline()
	return f.answer, f.err
}

func TestAIStrategy_Categorize(t *testing.T) {
	tests := []struct {
		name          string
		client        *fakeAIClient
		tx            Transaction
		expected      models.Category
		expectedFound bool
		expectErr     bool
	}{
		{"enum answer", &fakeAIClient{answer: "Health"}, Transaction{Merchant: "DR SHARMA"}, models.CategoryHealth, true, false},
		{"case and space tolerant", &fakeAIClient{answer: "  travel "}, Transaction{Merchant: "KSRTC"}, models.CategoryTravel, true, false},
		{"outside enum ignored", &fakeAIClient{answer: "Groceries"}, Transaction{Merchant: "X"}, "", false, false},
		{"uncategorized is no match", &fakeAIClient{answer: "Uncategorized"}, Transaction{Merchant: "X"}, "", false, false},
		{"client error", &fakeAIClient{err: errors.New("quota")}, Transaction{Merchant: "X"}, "", false, true},
		{"nothing to send", &fakeAIClient{answer: "Food"}, Transaction{}, "", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			strategy := NewAIStrategy(tt.client, time.Second, logging.NewMockLogger())
			category, found, err := strategy.Categorize(context.Background(), tt.tx)
			if tt.expectErr {
				var catErr *parsererror.CategorizationError
				require.ErrorAs(t, err, &catErr)
				assert.Equal(t, "AI", catErr.Strategy)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedFound, found)
			assert.Equal(t, tt.expected, category)
		})
	}
}

func TestAIStrategy_SendsEnumAndDeadline(t *testing.T) {
	client := &fakeAIClient{answer: "Bills"}
	strategy := NewAIStrategy(client, time.Second, logging.NewMockLogger())
	_, _, err := strategy.Categorize(context.Background(), Transaction{Merchant: "TNEB"})
	require.NoError(t, err)
	assert.Len(t, client.allowed, len(models.Categories))
	assert.Contains(t, client.allowed, "Rent")
	assert.True(t, client.sawExpiry)
}

func TestAIStrategy_NilClient(t *testing.T) {
	strategy := NewAIStrategy(nil, 0, logging.NewMockLogger())
	_, found, err := strategy.Categorize(context.Background(), Transaction{Merchant: "X"})
	require.NoError(t, err)
	assert.False(t, found)
}

func TestBuildPrompt(t *testing.T) {
	prompt := buildPrompt(Transaction{Merchant: "SWIGGY", AmountMinor: 50000, Direction: models.Debit}, []string{"Food", "Travel"})
	assert.Contains(t, prompt, "Merchant: SWIGGY")
	assert.Contains(t, prompt, "500.00 INR")
	assert.Contains(t, prompt, "Food, Travel")
}
