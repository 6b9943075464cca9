// Package normalizer turns extractor candidates into categorized,
// fingerprinted transactions bound to a user account.
package normalizer

import (
	"context"
	"time"

	"github.com/google/uuid"

	"fjacquet/sms-ledger/internal/categorizer"
	"fjacquet/sms-ledger/internal/dateutils"
	"fjacquet/sms-ledger/internal/logging"
	"fjacquet/sms-ledger/internal/models"
)

// Categorizer is the part of categorizer.Categorizer the normalizer uses.
type Categorizer interface {
	Categorize(ctx context.Context, tx categorizer.Transaction) categorizer.StrategyResult
}

// Normalizer resolves dates, accounts, merchants and categories. It keeps
// no state between calls; account snapshots are passed in and returned.
type Normalizer struct {
	categorizer Categorizer
	location    *time.Location
	now         func() time.Time
	newID       func() uuid.UUID
	logger      logging.Logger
}

// Option customizes a Normalizer.
type Option func(*Normalizer)

// WithClock replaces time.Now, used for the low-confidence fallback date.
func WithClock(now func() time.Time) Option {
	return func(n *Normalizer) { n.now = now }
}

// WithLocation sets the timezone that decides which calendar day "today" is.
func WithLocation(loc *time.Location) Option {
	return func(n *Normalizer) { n.location = loc }
}

// WithIDGenerator replaces uuid.New for transaction and stub account ids.
func WithIDGenerator(newID func() uuid.UUID) Option {
	return func(n *Normalizer) { n.newID = newID }
}

// New creates a Normalizer. A nil categorizer leaves every transaction
// Uncategorized.
func New(c Categorizer, logger logging.Logger, opts ...Option) *Normalizer {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	n := &Normalizer{
		categorizer: c,
		location:    time.UTC,
		now:         time.Now,
		newID:       uuid.New,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize converts one candidate into a Transaction for userID. accounts
// is the user's current account snapshot; the returned snapshot includes the
// implicit stub account created when no account matched.
func (n *Normalizer) Normalize(ctx context.Context, userID string, cand models.Candidate, bank models.Bank, accounts []models.Account) (models.Transaction, []models.Account) {
	if !cand.Direction.Valid() {
		// Matchers never emit this; default to the common case.
		cand.Direction = models.Debit
	}

	date, lowConfidence := n.resolveDate(cand.RawDate)
	account, accounts := n.resolveAccount(userID, bank, cand.AccountSuffix, accounts)
	merchant := CanonicalMerchant(cand.Counterparty)

	tx := models.Transaction{
		ID:            n.newID(),
		UserID:        userID,
		AmountMinor:   cand.AmountMinor,
		Amount:        models.FormatMinorUnits(cand.AmountMinor),
		Currency:      models.CurrencyINR,
		Direction:     cand.Direction,
		Date:          dateutils.ToISODate(date),
		Category:      models.CategoryUncategorized,
		Merchant:      merchant,
		AccountID:     account.ID,
		AccountSuffix: cand.AccountSuffix,
		Bank:          bank,
		BalanceMinor:  cand.BalanceMinor,
		LowConfidence: lowConfidence,
		Matcher:       cand.Matcher,
		Provenance:    cand.Raw.Text,
	}

	dateKey := tx.Date
	if lowConfidence {
		dateKey = models.NormalizeWhitespace(cand.RawDate)
	}
	tx.Fingerprint = Fingerprint(cand.AmountMinor, dateKey, cand.AccountSuffix, cand.Raw.Text)

	if n.categorizer != nil {
		res := n.categorizer.Categorize(ctx, categorizer.Transaction{
			Merchant:    merchant,
			Raw:         cand.Raw.Text,
			AmountMinor: cand.AmountMinor,
			Direction:   cand.Direction,
			Bank:        bank,
		})
		if res.Found && res.Category != "" {
			tx.Category = res.Category
		}
		n.logger.Debug("Transaction categorized",
			logging.F(logging.FieldMerchant, merchant),
			logging.F(logging.FieldCategory, tx.Category),
			logging.F(logging.FieldStrategy, res.Strategy))
	}

	return tx, accounts
}

// resolveDate parses the raw date, falling back to today in the configured
// timezone with low confidence.
func (n *Normalizer) resolveDate(raw string) (time.Time, bool) {
	if raw != "" {
		if t, err := dateutils.ParseTransactionDate(raw); err == nil {
			return t, false
		}
		n.logger.Debug("Unparseable transaction date, using ingestion date",
			logging.F("raw_date", raw))
	}
	return dateutils.Today(n.now(), n.location), true
}

// resolveAccount finds the user's account ending in suffix, preferring one
// at the same bank, or appends an implicit stub for bank and suffix.
func (n *Normalizer) resolveAccount(userID string, bank models.Bank, suffix string, accounts []models.Account) (models.Account, []models.Account) {
	stubNumber := "XXXX" + suffix

	var fallback *models.Account
	for i := range accounts {
		a := &accounts[i]
		if a.UserID != "" && a.UserID != userID {
			continue
		}
		if a.Implicit {
			if a.Bank == bank && a.Number == stubNumber {
				return *a, accounts
			}
			continue
		}
		if !a.HasSuffix(suffix) {
			continue
		}
		if a.Bank == bank {
			return *a, accounts
		}
		if fallback == nil {
			fallback = a
		}
	}
	if fallback != nil {
		return *fallback, accounts
	}

	stub := models.Account{
		ID:       n.newID().String(),
		UserID:   userID,
		Bank:     bank,
		Type:     models.AccountSavings,
		Number:   stubNumber,
		Implicit: true,
	}
	n.logger.Info("Created implicit account",
		logging.F(logging.FieldBank, bank),
		logging.F(logging.FieldAccount, stubNumber))

	grown := make([]models.Account, len(accounts), len(accounts)+1)
	copy(grown, accounts)
	return stub, append(grown, stub)
}
