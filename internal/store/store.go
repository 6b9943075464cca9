// Package store loads and saves the YAML files that drive categorization: the
// keyword table (categories.yaml) and the merchant corrections
// (merchants.yaml).
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"fjacquet/sms-ledger/internal/logging"
	"fjacquet/sms-ledger/internal/models"
)

// Default file names searched when none is configured.
const (
	DefaultCategoriesFile = "categories.yaml"
	DefaultMerchantsFile  = "merchants.yaml"
)

// CategoryStore manages loading and saving of category data
type CategoryStore struct {
	CategoriesFile string
	MerchantsFile  string
	logger         logging.Logger
	mu             sync.Mutex
}

// NewCategoryStore creates a new store for category-related data
func NewCategoryStore(categoriesFile, merchantsFile string, logger logging.Logger) *CategoryStore {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &CategoryStore{
		CategoriesFile: categoriesFile,
		MerchantsFile:  merchantsFile,
		logger:         logger,
	}
}

// FindConfigFile looks for a configuration file in standard locations
func (s *CategoryStore) FindConfigFile(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err == nil {
			return filename, nil
		}
		return "", os.ErrNotExist
	}

	locations := []string{
		filename,
		filepath.Join("config", filename),
		filepath.Join(".sms-ledger", filename),
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(homeDir, ".sms-ledger", filename))
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location, nil
		}
	}
	return "", os.ErrNotExist
}

// LoadCategories loads the keyword table. A missing file yields an empty
// slice and no error; callers fall back to the built-in table.
func (s *CategoryStore) LoadCategories() ([]models.CategoryConfig, error) {
	filename := s.CategoriesFile
	if filename == "" {
		filename = DefaultCategoriesFile
	}

	filePath, err := s.FindConfigFile(filename)
	if err != nil {
		s.logger.Debug("Categories file not found", logging.F(logging.FieldFile, filename))
		return []models.CategoryConfig{}, nil
	}

	data, err := os.ReadFile(filePath) // #nosec G304 -- path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("error reading categories file: %w", err)
	}

	var cfg models.CategoriesConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing categories file %s: %w", filePath, err)
	}

	for _, c := range cfg.Categories {
		if _, ok := models.ParseCategory(c.Name); !ok {
			s.logger.Warn("Unknown category in categories file, entries will be ignored",
				logging.F(logging.FieldCategory, c.Name),
				logging.F(logging.FieldFile, filePath))
		}
	}

	s.logger.Debug("Loaded categories",
		logging.F(logging.FieldCount, len(cfg.Categories)),
		logging.F(logging.FieldFile, filePath))
	return cfg.Categories, nil
}

// LoadMerchantMappings loads canonical merchant name to category mappings.
// Keys are upper-cased. A missing file yields an empty map.
func (s *CategoryStore) LoadMerchantMappings() (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mappings := make(map[string]string)
	filename := s.MerchantsFile
	if filename == "" {
		filename = DefaultMerchantsFile
	}

	filePath, err := s.FindConfigFile(filename)
	if err != nil {
		s.logger.Debug("Merchants file not found", logging.F(logging.FieldFile, filename))
		return mappings, nil
	}

	data, err := os.ReadFile(filePath) // #nosec G304 -- path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("error reading merchants file: %w", err)
	}

	var cfg models.MerchantsConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing merchants file %s: %w", filePath, err)
	}
	for merchant, category := range cfg.Merchants {
		mappings[strings.ToUpper(strings.TrimSpace(merchant))] = category
	}
	return mappings, nil
}

// SaveMerchantMappings writes the merchant corrections back to disk, sorted
// by merchant name.
func (s *CategoryStore) SaveMerchantMappings(mappings map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	filename := s.MerchantsFile
	if filename == "" {
		filename = DefaultMerchantsFile
	}
	filePath, err := s.FindConfigFile(filename)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		filePath = filename
	}

	if dir := filepath.Dir(filePath); dir != "." {
		if err := os.MkdirAll(dir, models.PermissionDirectory); err != nil {
			return fmt.Errorf("error creating directory for merchants file: %w", err)
		}
	}

	keys := make([]string, 0, len(mappings))
	for k := range mappings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range keys {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: k},
			&yaml.Node{Kind: yaml.ScalarNode, Value: mappings[k]})
	}
	doc := &yaml.Node{Kind: yaml.MappingNode, Content: []*yaml.Node{
		{Kind: yaml.ScalarNode, Value: "merchants"},
		node,
	}}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("error encoding merchants: %w", err)
	}
	if err := os.WriteFile(filePath, data, models.PermissionConfigFile); err != nil {
		return fmt.Errorf("error writing merchants file: %w", err)
	}

	s.logger.Info("Saved merchant mappings",
		logging.F(logging.FieldCount, len(mappings)),
		logging.F(logging.FieldFile, filePath))
	return nil
}
