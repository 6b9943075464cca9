package categorizer

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"fjacquet/sms-ledger/internal/logging"
	"fjacquet/sms-ledger/internal/models"
)

// DirectMappingStrategy categorizes by exact merchant name. The mappings are
// user corrections and grow through Learn.
type DirectMappingStrategy struct {
	mappings map[string]models.Category
	store    CategoryStoreInterface
	logger   logging.Logger
	mu       sync.RWMutex
}

// NewDirectMappingStrategy creates a DirectMappingStrategy loaded from store.
// A nil store starts with no mappings and Learn keeps them in memory only.
func NewDirectMappingStrategy(store CategoryStoreInterface, logger logging.Logger) *DirectMappingStrategy {
	s := &DirectMappingStrategy{
		mappings: make(map[string]models.Category),
		store:    store,
		logger:   logger,
	}
	s.loadMappings()
	return s
}

func (s *DirectMappingStrategy) loadMappings() {
	if s.store == nil {
		return
	}
	raw, err := s.store.LoadMerchantMappings()
	if err != nil {
		s.logger.WithError(err).Warn("Failed to load merchant mappings")
		return
	}
	for merchant, name := range raw {
		category, ok := models.ParseCategory(name)
		if !ok {
			s.logger.Warn("Ignoring merchant mapping to unknown category",
				logging.F(logging.FieldMerchant, merchant),
				logging.F(logging.FieldCategory, name))
			continue
		}
		s.mappings[strings.ToUpper(merchant)] = category
	}
}

// Name returns the name of this strategy for logging and debugging.
func (s *DirectMappingStrategy) Name() string {
	return "DirectMapping"
}

// Categorize looks the merchant up in the mapping table.
func (s *DirectMappingStrategy) Categorize(ctx context.Context, tx Transaction) (models.Category, bool, error) {
	key := strings.ToUpper(strings.TrimSpace(tx.Merchant))
	if key == "" {
		return "", false, nil
	}
	s.mu.RLock()
	category, ok := s.mappings[key]
	s.mu.RUnlock()
	if ok {
		s.logger.Debug("Transaction categorized using direct mapping",
			logging.F(logging.FieldStrategy, s.Name()),
			logging.F(logging.FieldMerchant, key),
			logging.F(logging.FieldCategory, category))
	}
	return category, ok, nil
}

// Learn records a correction and persists the full table.
func (s *DirectMappingStrategy) Learn(merchant string, category models.Category) error {
	key := strings.ToUpper(strings.TrimSpace(merchant))
	if key == "" {
		return fmt.Errorf("merchant must not be empty")
	}

	s.mu.Lock()
	s.mappings[key] = category
	snapshot := make(map[string]string, len(s.mappings))
	for k, v := range s.mappings {
		snapshot[k] = string(v)
	}
	s.mu.Unlock()

	if s.store == nil {
		return nil
	}
	if err := s.store.SaveMerchantMappings(snapshot); err != nil {
		return fmt.Errorf("failed to save merchant mappings: %w", err)
	}
	return nil
}
