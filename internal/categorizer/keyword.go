package categorizer

import (
	"context"
	"regexp"
	"strings"

	"fjacquet/sms-ledger/internal/logging"
	"fjacquet/sms-ledger/internal/models"
)

// KeywordRule maps one upper-case keyword to a category.
type KeywordRule struct {
	Keyword  string
	Category models.Category

	pattern *regexp.Regexp
}

// keywordPattern matches kw as a whole word or phrase, so OLA does not hit
// COCA COLA.
func keywordPattern(kw string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}])` + regexp.QuoteMeta(kw) + `(?:$|[^\p{L}\p{N}])`)
}

func (r KeywordRule) matches(text string) bool {
	if r.pattern == nil {
		return keywordPattern(r.Keyword).MatchString(text)
	}
	return r.pattern.MatchString(text)
}

// KeywordTable is an ordered list of rules. The first rule whose keyword
// occurs in the text as a whole word wins.
type KeywordTable []KeywordRule

// DefaultKeywordTable is used when no categories file is configured.
func DefaultKeywordTable() KeywordTable {
	return NewKeywordTable([]models.CategoryConfig{
		{Name: "Food", Keywords: []string{"SWIGGY", "ZOMATO", "DOMINOS", "MCDONALDS", "MCDONALD", "KFC", "STARBUCKS", "BIGBASKET", "BLINKIT", "ZEPTO", "DUNZO", "RESTAURANT", "CAFE"}},
		{Name: "Travel", Keywords: []string{"UBER", "OLA", "RAPIDO", "IRCTC", "MAKEMYTRIP", "INDIGO", "REDBUS", "FASTAG", "METRO", "PETROL"}},
		{Name: "Shopping", Keywords: []string{"AMAZON", "FLIPKART", "MYNTRA", "AJIO", "NYKAA", "MEESHO", "DMART"}},
		{Name: "Entertainment", Keywords: []string{"NETFLIX", "SPOTIFY", "HOTSTAR", "BOOKMYSHOW", "PVR", "INOX"}},
		{Name: "Bills", Keywords: []string{"AIRTEL", "JIO", "VODAFONE", "BSNL", "ELECTRICITY", "BESCOM", "TATA POWER", "BROADBAND", "RECHARGE", "INSURANCE"}},
		{Name: "Health", Keywords: []string{"APOLLO", "PHARMEASY", "NETMEDS", "1MG", "HOSPITAL", "CLINIC", "PHARMACY"}},
		{Name: "Education", Keywords: []string{"BYJUS", "BYJU", "UDEMY", "COURSERA", "UNACADEMY", "SCHOOL", "COLLEGE", "TUITION"}},
		{Name: "Rent", Keywords: []string{"NOBROKER", "HOUSE RENT", "RENT PAYMENT"}},
	})
}

// NewKeywordTable flattens category configs into a table, keeping file order.
// Entries naming an unknown category and blank keywords are dropped.
func NewKeywordTable(configs []models.CategoryConfig) KeywordTable {
	var table KeywordTable
	for _, cfg := range configs {
		category, ok := models.ParseCategory(cfg.Name)
		if !ok {
			continue
		}
		for _, kw := range cfg.Keywords {
			kw = strings.ToUpper(strings.TrimSpace(kw))
			if kw == "" {
				continue
			}
			table = append(table, KeywordRule{Keyword: kw, Category: category, pattern: keywordPattern(kw)})
		}
	}
	return table
}

// Lookup returns the first rule whose keyword occurs in text as a whole word.
func (t KeywordTable) Lookup(text string) (KeywordRule, bool) {
	if strings.TrimSpace(text) == "" {
		return KeywordRule{}, false
	}
	for _, rule := range t {
		if rule.matches(text) {
			return rule, true
		}
	}
	return KeywordRule{}, false
}

// KeywordStrategy implements categorization using keyword pattern matching.
type KeywordStrategy struct {
	table  KeywordTable
	logger logging.Logger
}

// NewKeywordStrategy creates a new KeywordStrategy instance.
func NewKeywordStrategy(table KeywordTable, logger logging.Logger) *KeywordStrategy {
	return &KeywordStrategy{table: table, logger: logger}
}

// Name returns the name of this strategy for logging and debugging.
func (s *KeywordStrategy) Name() string {
	return "Keyword"
}

// Categorize matches the merchant against the table, or the raw text when
// the merchant is empty.
func (s *KeywordStrategy) Categorize(ctx context.Context, tx Transaction) (models.Category, bool, error) {
	text := tx.Merchant
	if strings.TrimSpace(text) == "" {
		text = tx.Raw
	}
	rule, ok := s.table.Lookup(text)
	if !ok {
		return "", false, nil
	}
	s.logger.Debug("Transaction categorized using keyword matching",
		logging.F(logging.FieldStrategy, s.Name()),
		logging.F(logging.FieldMerchant, tx.Merchant),
		logging.F("keyword", rule.Keyword),
		logging.F(logging.FieldCategory, rule.Category))
	return rule.Category, true, nil
}
