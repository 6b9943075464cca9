// Package ingest runs uploaded SMS text and PDF statements through
// extraction, normalization and storage.
package ingest

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"fjacquet/sms-ledger/internal/extractor"
	"fjacquet/sms-ledger/internal/logging"
	"fjacquet/sms-ledger/internal/metrics"
	"fjacquet/sms-ledger/internal/models"
	"fjacquet/sms-ledger/internal/normalizer"
	"fjacquet/sms-ledger/internal/parsererror"
	"fjacquet/sms-ledger/internal/pdfparser"
	"fjacquet/sms-ledger/internal/sink"
)

// Sources reported in summaries, metrics and errors.
const (
	SourceSMS = "sms"
	SourcePDF = "pdf"
)

// Summary reports the outcome of one import.
type Summary struct {
	Total         int                  `json:"total"`
	Parsed        int                  `json:"parsed"`
	Imported      int                  `json:"imported"`
	Duplicates    int                  `json:"duplicates"`
	Skipped       int                  `json:"skipped"`
	LowConfidence int                  `json:"lowConfidence"`
	Transactions  []models.Transaction `json:"transactions"`
	Message       string               `json:"message"`
}

// Service is safe for concurrent use.
type Service struct {
	extractor  *extractor.Extractor
	normalizer *normalizer.Normalizer
	pdf        *pdfparser.Parser
	sink       sink.Sink
	accounts   sink.AccountStore
	metrics    metrics.Collector
	logger     logging.Logger
}

// Options wires a Service. Sink and Accounts are required.
type Options struct {
	Extractor  *extractor.Extractor
	Normalizer *normalizer.Normalizer
	PDF        *pdfparser.Parser
	Sink       sink.Sink
	Accounts   sink.AccountStore
	Metrics    metrics.Collector
	Logger     logging.Logger
}

// NewService creates a Service, filling unset collaborators with defaults.
func NewService(opts Options) *Service {
	s := &Service{
		extractor:  opts.Extractor,
		normalizer: opts.Normalizer,
		pdf:        opts.PDF,
		sink:       opts.Sink,
		accounts:   opts.Accounts,
		metrics:    opts.Metrics,
		logger:     opts.Logger,
	}
	if s.logger == nil {
		s.logger = logging.NewDiscardLogger()
	}
	if s.metrics == nil {
		s.metrics = metrics.NoOpCollector{}
	}
	if s.extractor == nil {
		s.extractor = extractor.New(nil, extractor.DefaultWorkers, s.logger)
	}
	if s.normalizer == nil {
		s.normalizer = normalizer.New(nil, s.logger)
	}
	if s.pdf == nil {
		s.pdf = pdfparser.NewParser(nil, s.logger)
	}
	return s
}

// ImportSMS imports pasted SMS text for userID. bank is the user's hint.
func (s *Service) ImportSMS(ctx context.Context, userID string, bank models.Bank, text string) (*Summary, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &parsererror.ValidationError{Field: "smsText", Reason: "must not be empty"}
	}
	return s.importSegments(ctx, SourceSMS, userID, bank, extractor.Split(text))
}

// ImportPDF imports a PDF statement for userID.
func (s *Service) ImportPDF(ctx context.Context, userID string, bank models.Bank, r io.Reader) (*Summary, error) {
	segments, err := s.pdf.Segments(ctx, r)
	if err != nil {
		return nil, err
	}
	return s.importSegments(ctx, SourcePDF, userID, bank, segments)
}

// Transactions lists the user's stored transactions.
func (s *Service) Transactions(ctx context.Context, userID string) ([]models.Transaction, error) {
	txs, err := s.sink.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txs, nil
}

func (s *Service) importSegments(ctx context.Context, source, userID string, bank models.Bank, segments []string) (*Summary, error) {
	start := time.Now()
	log := s.logger.WithFields(
		logging.F(logging.FieldUser, userID),
		logging.F(logging.FieldSource, source),
		logging.F(logging.FieldBank, bank))

	result, err := s.extractor.ExtractSegments(ctx, segments, bank)
	if err != nil {
		return nil, err
	}
	if len(result.Candidates) == 0 {
		log.Info("No transactions recognized", logging.F(logging.FieldSkipped, result.Skipped))
		s.metrics.RecordImport(source, 0, 0, result.Skipped, time.Since(start))
		return nil, parsererror.NewNoTransactionsError(source, result.Total)
	}

	accounts, err := s.accounts.Accounts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}

	summary := &Summary{
		Total:        result.Total,
		Parsed:       len(result.Candidates),
		Skipped:      result.Skipped,
		Transactions: []models.Transaction{},
	}
	for _, cand := range result.Candidates {
		s.metrics.RecordMatch(cand.Matcher)

		tx, grown := s.normalizer.Normalize(ctx, userID, cand, bank, accounts)
		for _, stub := range grown[len(accounts):] {
			if err := s.accounts.SaveAccount(ctx, stub); err != nil {
				return nil, fmt.Errorf("failed to save account %s: %w", stub.Number, err)
			}
		}
		accounts = grown

		res, err := s.sink.Upsert(ctx, tx)
		if err != nil {
			return nil, fmt.Errorf("failed to store transaction: %w", err)
		}
		if tx.LowConfidence {
			summary.LowConfidence++
		}
		if res == sink.Duplicate {
			summary.Duplicates++
			continue
		}
		summary.Imported++
		summary.Transactions = append(summary.Transactions, tx)
	}
	summary.Message = summaryMessage(summary)

	log.Info("Import completed",
		logging.F(logging.FieldCount, summary.Imported),
		logging.F("duplicates", summary.Duplicates),
		logging.F(logging.FieldSkipped, summary.Skipped),
		logging.F(logging.FieldDuration, time.Since(start).String()))
	s.metrics.RecordImport(source, summary.Imported, summary.Duplicates, summary.Skipped, time.Since(start))
	return summary, nil
}

func summaryMessage(s *Summary) string {
	msg := fmt.Sprintf("Imported %d of %d transactions", s.Imported, s.Total)
	if s.Duplicates > 0 {
		msg += fmt.Sprintf(", %d duplicates skipped", s.Duplicates)
	}
	return msg
}
