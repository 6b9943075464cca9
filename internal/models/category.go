package models

import "strings"

// Category is one of the fixed spending categories.
type Category string

const (
	CategoryFood          Category = "Food"
	CategoryTravel        Category = "Travel"
	CategoryShopping      Category = "Shopping"
	CategoryEntertainment Category = "Entertainment"
	CategoryBills         Category = "Bills"
	CategoryHealth        Category = "Health"
	CategoryEducation     Category = "Education"
	CategoryRent          Category = "Rent"
	CategoryUncategorized Category = "Uncategorized"
)

// Categories lists the category enum in display order.
var Categories = []Category{
	CategoryFood,
	CategoryTravel,
	CategoryShopping,
	CategoryEntertainment,
	CategoryBills,
	CategoryHealth,
	CategoryEducation,
	CategoryRent,
	CategoryUncategorized,
}

// ParseCategory returns the category whose name matches s case-insensitively.
// Unknown names yield Uncategorized and false.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	for _, c := range Categories {
		if strings.EqualFold(string(c), s) {
			return c, true
		}
	}
	return CategoryUncategorized, false
}

func (c Category) String() string {
	return string(c)
}

// CategoryConfig is one entry of the categories YAML file.
type CategoryConfig struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// CategoriesConfig is the structure of the categories YAML file.
type CategoriesConfig struct {
	Categories []CategoryConfig `yaml:"categories"`
}

// MerchantsConfig is the structure of the merchants YAML file, mapping a
// canonical merchant name to a category name.
type MerchantsConfig struct {
	Merchants map[string]string `yaml:"merchants"`
}
