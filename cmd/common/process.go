// Package common contains shared functionality for command handlers
package common

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"fjacquet/sms-ledger/internal/common"
	"fjacquet/sms-ledger/internal/ingest"
	"fjacquet/sms-ledger/internal/logging"
	"fjacquet/sms-ledger/internal/models"
)

// Importer is the part of the import service the file commands use.
type Importer interface {
	ImportSMS(ctx context.Context, userID string, bank models.Bank, text string) (*ingest.Summary, error)
	ImportPDF(ctx context.Context, userID string, bank models.Bank, r io.Reader) (*ingest.Summary, error)
}

// Request describes one file import.
type Request struct {
	Source    string // ingest.SourceSMS or ingest.SourcePDF
	UserID    string
	Bank      models.Bank
	Input     string // file path, or "-" for stdin
	Output    string // CSV path; empty writes to Stdout
	Delimiter rune
	Stdin     io.Reader
	Stdout    io.Writer
}

// ProcessFile imports req.Input and writes the newly imported transactions
// as CSV.
func ProcessFile(ctx context.Context, imp Importer, req Request, logger logging.Logger) (*ingest.Summary, error) {
	if req.Input == "" {
		return nil, fmt.Errorf("an input file is required (use - for stdin)")
	}
	if req.Delimiter == 0 {
		req.Delimiter = common.DefaultDelimiter
	}

	in, closeInput, err := openInput(req)
	if err != nil {
		return nil, err
	}
	defer closeInput()

	logger.Info("Importing file",
		logging.F(logging.FieldFile, req.Input),
		logging.F(logging.FieldSource, req.Source),
		logging.F(logging.FieldBank, string(req.Bank)))

	var summary *ingest.Summary
	switch req.Source {
	case ingest.SourceSMS:
		data, readErr := io.ReadAll(in)
		if readErr != nil {
			return nil, fmt.Errorf("error reading %s: %w", req.Input, readErr)
		}
		summary, err = imp.ImportSMS(ctx, req.UserID, req.Bank, string(data))
	case ingest.SourcePDF:
		summary, err = imp.ImportPDF(ctx, req.UserID, req.Bank, in)
	default:
		return nil, fmt.Errorf("unknown source %q", req.Source)
	}
	if err != nil {
		return nil, err
	}

	if req.Output != "" {
		err = common.WriteTransactionsToFile(summary.Transactions, req.Output, req.Delimiter, logger)
	} else {
		out := req.Stdout
		if out == nil {
			out = os.Stdout
		}
		err = common.WriteTransactions(out, summary.Transactions, req.Delimiter)
	}
	if err != nil {
		return summary, fmt.Errorf("error writing CSV: %w", err)
	}

	logger.Info(summary.Message,
		logging.F(logging.FieldCount, summary.Imported),
		logging.F(logging.FieldSkipped, summary.Skipped))
	return summary, nil
}

func openInput(req Request) (io.Reader, func(), error) {
	if strings.TrimSpace(req.Input) == "-" {
		if req.Stdin != nil {
			return req.Stdin, func() {}, nil
		}
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(req.Input) // #nosec G304 -- path comes from the command line
	if err != nil {
		return nil, nil, fmt.Errorf("error opening input file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
