// Package common provides CSV export shared by the command line tools.
package common

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"fjacquet/sms-ledger/internal/logging"
	"fjacquet/sms-ledger/internal/models"
)

// DefaultDelimiter separates CSV fields unless configured otherwise.
const DefaultDelimiter = ','

// csvRow is the exported shape of a transaction. Amounts are rupee strings
// with two decimals and debits keep a positive amount next to their direction.
type csvRow struct {
	Date          string `csv:"Date"`
	Direction     string `csv:"Direction"`
	Amount        string `csv:"Amount"`
	Currency      string `csv:"Currency"`
	Merchant      string `csv:"Merchant"`
	Category      string `csv:"Category"`
	Bank          string `csv:"Bank"`
	AccountSuffix string `csv:"AccountSuffix"`
	Balance       string `csv:"Balance"`
	LowConfidence bool   `csv:"LowConfidence"`
	Matcher       string `csv:"Matcher"`
	ID            string `csv:"ID"`
	Fingerprint   string `csv:"Fingerprint"`
}

func toRow(tx models.Transaction) csvRow {
	return csvRow{
		Date:          tx.Date,
		Direction:     string(tx.Direction),
		Amount:        models.FormatMinorUnits(tx.AmountMinor),
		Currency:      tx.Currency,
		Merchant:      tx.Merchant,
		Category:      string(tx.Category),
		Bank:          string(tx.Bank),
		AccountSuffix: tx.AccountSuffix,
		Balance:       tx.Balance(),
		LowConfidence: tx.LowConfidence,
		Matcher:       tx.Matcher,
		ID:            tx.ID.String(),
		Fingerprint:   tx.Fingerprint,
	}
}

// WriteTransactions writes transactions as CSV with a header row. A nil
// slice is an error; an empty one writes only the header.
func WriteTransactions(w io.Writer, transactions []models.Transaction, delimiter rune) error {
	if transactions == nil {
		return fmt.Errorf("cannot write nil transactions to CSV")
	}

	rows := make([]csvRow, 0, len(transactions))
	for _, tx := range transactions {
		rows = append(rows, toRow(tx))
	}

	csvWriter := csv.NewWriter(w)
	csvWriter.Comma = delimiter
	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		return fmt.Errorf("error writing CSV data: %w", err)
	}
	return nil
}

// WriteTransactionsToFile writes transactions to csvFile, creating its
// directory if needed.
func WriteTransactionsToFile(transactions []models.Transaction, csvFile string, delimiter rune, logger logging.Logger) error {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	logger.Info("Writing transactions to CSV file",
		logging.F(logging.FieldFile, csvFile),
		logging.F(logging.FieldCount, len(transactions)))

	if err := os.MkdirAll(filepath.Dir(csvFile), 0750); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	file, err := os.Create(csvFile)
	if err != nil {
		return fmt.Errorf("error creating CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close file")
		}
	}()

	return WriteTransactions(file, transactions, delimiter)
}
