package categorizer

import (
	"context"
	"strings"
	"time"

	"fjacquet/sms-ledger/internal/logging"
	"fjacquet/sms-ledger/internal/models"
	"fjacquet/sms-ledger/internal/parsererror"
)

// AIStrategy asks an AIClient for a category. Answers outside the category
// enum, and Uncategorized itself, count as no match.
type AIStrategy struct {
	aiClient AIClient
	timeout  time.Duration
	logger   logging.Logger
}

// NewAIStrategy creates a new AIStrategy instance. A zero timeout means the
// caller's context alone bounds the request.
func NewAIStrategy(aiClient AIClient, timeout time.Duration, logger logging.Logger) *AIStrategy {
	return &AIStrategy{aiClient: aiClient, timeout: timeout, logger: logger}
}

// Name returns the name of this strategy for logging and debugging.
func (s *AIStrategy) Name() string {
	return "AI"
}

// Categorize attempts to categorize a transaction using the AI client.
func (s *AIStrategy) Categorize(ctx context.Context, tx Transaction) (models.Category, bool, error) {
	if s.aiClient == nil {
		return "", false, nil
	}
	if strings.TrimSpace(tx.Merchant) == "" && strings.TrimSpace(tx.Raw) == "" {
		return "", false, nil
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	allowed := make([]string, 0, len(models.Categories))
	for _, c := range models.Categories {
		allowed = append(allowed, string(c))
	}

	answer, err := s.aiClient.SuggestCategory(ctx, tx, allowed)
	if err != nil {
		return "", false, &parsererror.CategorizationError{Merchant: tx.Merchant, Strategy: s.Name(), Err: err}
	}

	category, ok := models.ParseCategory(answer)
	if !ok || category == models.CategoryUncategorized {
		s.logger.Debug("AI answer outside category set, ignored",
			logging.F(logging.FieldStrategy, s.Name()),
			logging.F(logging.FieldMerchant, tx.Merchant),
			logging.F("ai_category", answer))
		return "", false, nil
	}
	return category, true, nil
}
