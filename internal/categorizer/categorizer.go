// Package categorizer assigns a spending category to a transaction by trying
// strategies in order: user merchant corrections, the keyword table and,
// when enabled, an AI model.
package categorizer

import (
	"context"
	"errors"
	"time"

	"fjacquet/sms-ledger/internal/logging"
	"fjacquet/sms-ledger/internal/models"
)

// Categorizer runs a chain of strategies. It is safe for concurrent use.
type Categorizer struct {
	strategies []CategorizationStrategy
	direct     *DirectMappingStrategy
	logger     logging.Logger
}

// Options configures NewCategorizer.
type Options struct {
	Store     CategoryStoreInterface // merchant corrections; may be nil
	Keywords  KeywordTable           // nil selects DefaultKeywordTable
	AI        AIClient               // nil disables the AI strategy
	AITimeout time.Duration
	Logger    logging.Logger
}

// NewCategorizer builds the DirectMapping, Keyword and optional AI chain.
func NewCategorizer(opts Options) *Categorizer {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	table := opts.Keywords
	if table == nil {
		table = DefaultKeywordTable()
	}

	direct := NewDirectMappingStrategy(opts.Store, logger)
	strategies := []CategorizationStrategy{
		direct,
		NewKeywordStrategy(table, logger),
	}
	if opts.AI != nil {
		strategies = append(strategies, NewAIStrategy(opts.AI, opts.AITimeout, logger))
	}
	return &Categorizer{strategies: strategies, direct: direct, logger: logger}
}

// NewCategorizerWithStrategies builds a Categorizer over an explicit chain.
func NewCategorizerWithStrategies(logger logging.Logger, strategies ...CategorizationStrategy) *Categorizer {
	c := &Categorizer{strategies: strategies, logger: logger}
	for _, s := range strategies {
		if d, ok := s.(*DirectMappingStrategy); ok {
			c.direct = d
		}
	}
	return c
}

// Categorize returns the first category any strategy finds, or
// Uncategorized. Strategy errors are logged and the chain continues; only a
// cancelled context stops it early.
func (c *Categorizer) Categorize(ctx context.Context, tx Transaction) StrategyResult {
	for _, strategy := range c.strategies {
		if err := ctx.Err(); err != nil {
			break
		}
		category, found, err := strategy.Categorize(ctx, tx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				break
			}
			c.logger.WithError(err).Warn("Categorization strategy failed",
				logging.F(logging.FieldStrategy, strategy.Name()),
				logging.F(logging.FieldMerchant, tx.Merchant))
			continue
		}
		if found && category != "" {
			return StrategyResult{Strategy: strategy.Name(), Category: category, Found: true}
		}
	}
	return StrategyResult{Category: models.CategoryUncategorized}
}

// Learn stores a user correction for merchant, used by every later call.
func (c *Categorizer) Learn(merchant string, category models.Category) error {
	if c.direct == nil {
		return errors.New("no direct mapping strategy configured")
	}
	return c.direct.Learn(merchant, category)
}

// StrategyNames lists the chain in evaluation order.
func (c *Categorizer) StrategyNames() []string {
	names := make([]string, len(c.strategies))
	for i, s := range c.strategies {
		names[i] = s.Name()
	}
	return names
}
