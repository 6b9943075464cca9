// Package categorize handles merchant categorization commands
package categorize

import (
	"fmt"

	"github.com/spf13/cobra"

	"fjacquet/sms-ledger/cmd/root"
	"fjacquet/sms-ledger/internal/categorizer"
	"fjacquet/sms-ledger/internal/logging"
	"fjacquet/sms-ledger/internal/models"
	"fjacquet/sms-ledger/internal/normalizer"
)

var (
	merchant string
	category string
	rawText  string
)

// Cmd represents the categorize command
var Cmd = &cobra.Command{
	Use:   "categorize",
	Short: "Show or correct the category of a merchant",
	Long: `Show which category a merchant gets. With --category the mapping is
stored as a correction and used for every later import.`,
	Example: "  sms-ledger categorize --merchant SWIGGY\n  sms-ledger categorize --merchant \"RAJU STORES\" --category Shopping",
	RunE:    categorizeFunc,
}

func init() {
	Cmd.Flags().StringVarP(&merchant, "merchant", "m", "", "Merchant name to categorize")
	Cmd.Flags().StringVarP(&category, "category", "c", "", "Store this category for the merchant")
	Cmd.Flags().StringVar(&rawText, "text", "", "Raw message text to match keywords against")
	_ = Cmd.MarkFlagRequired("merchant")
}

func categorizeFunc(cmd *cobra.Command, args []string) error {
	c := root.GetContainer()
	logger := c.GetLogger()
	canonical := normalizer.CanonicalMerchant(merchant)
	if canonical == "" {
		return fmt.Errorf("merchant %q has no usable name", merchant)
	}

	if category != "" {
		cat, ok := models.ParseCategory(category)
		if !ok {
			return fmt.Errorf("unknown category %q", category)
		}
		if err := c.GetCategorizer().Learn(canonical, cat); err != nil {
			return fmt.Errorf("saving merchant mapping: %w", err)
		}
		logger.Info("Merchant mapping saved",
			logging.F(logging.FieldMerchant, canonical),
			logging.F(logging.FieldCategory, string(cat)))
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", canonical, cat)
		return err
	}

	result := c.GetCategorizer().Categorize(cmd.Context(), categorizer.Transaction{
		Merchant: canonical,
		Raw:      rawText,
	})
	strategy := result.Strategy
	if strategy == "" {
		strategy = "none"
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%s)\n", canonical, result.Category, strategy)
	return err
}
