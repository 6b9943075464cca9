package categorizer

import (
	"context"

	"fjacquet/sms-ledger/internal/models"
)

// Transaction is the view of a transaction a strategy needs to categorize it.
type Transaction struct {
	Merchant    string // canonical merchant name, may be empty
	Raw         string // original segment text
	AmountMinor int64
	Direction   models.Direction
	Bank        models.Bank
}

// CategorizationStrategy defines a method for categorizing transactions.
// Each strategy implements a specific approach to categorization (direct mapping, keywords, AI, etc.).
type CategorizationStrategy interface {
	// Categorize returns the category, whether this strategy found one, and
	// any error. A strategy that does not apply returns false and no error.
	Categorize(ctx context.Context, tx Transaction) (models.Category, bool, error)

	// Name returns the name of this strategy for logging and debugging purposes.
	Name() string
}

// StrategyResult records which strategy produced a category.
type StrategyResult struct {
	Strategy string
	Category models.Category
	Found    bool
}
