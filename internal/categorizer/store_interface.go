package categorizer

import "fjacquet/sms-ledger/internal/models"

// CategoryStoreInterface defines the interface for category data storage.
type CategoryStoreInterface interface {
	LoadCategories() ([]models.CategoryConfig, error)
	LoadMerchantMappings() (map[string]string, error)
	SaveMerchantMappings(mappings map[string]string) error
}
