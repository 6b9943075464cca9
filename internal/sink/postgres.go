package sink

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"fjacquet/sms-ledger/internal/models"
)

// PostgresStore keeps transactions and accounts in PostgreSQL. The unique
// (user_id, fingerprint) index makes Upsert idempotent.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection pool for dsn, checks it and creates
// the schema when missing.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	store := &PostgresStore{db: db}
	if err := store.initTables(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init tables: %w", err)
	}
	return store, nil
}

func (p *PostgresStore) initTables(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			bank TEXT NOT NULL,
			account_type TEXT NOT NULL,
			account_number TEXT NOT NULL,
			implicit BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_accounts_user_id ON accounts(user_id)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			seq BIGSERIAL,
			id UUID PRIMARY KEY,
			user_id TEXT NOT NULL,
			amount_minor BIGINT NOT NULL CHECK (amount_minor >= 0),
			currency TEXT NOT NULL,
			direction TEXT NOT NULL,
			tx_date DATE NOT NULL,
			category TEXT NOT NULL,
			merchant TEXT NOT NULL,
			account_id TEXT NOT NULL,
			account_suffix TEXT NOT NULL,
			bank TEXT NOT NULL,
			balance_minor BIGINT,
			low_confidence BOOLEAN NOT NULL,
			matcher TEXT NOT NULL,
			provenance TEXT NOT NULL,
			fingerprint TEXT NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_transactions_user_fingerprint ON transactions(user_id, fingerprint)`,
	}
	for _, query := range queries {
		if _, err := p.db.ExecContext(ctx, query); err != nil {
			return err
		}
	}
	return nil
}

// Name returns the driver name.
func (p *PostgresStore) Name() string {
	return "postgres"
}

// Upsert implements Sink.
func (p *PostgresStore) Upsert(ctx context.Context, tx models.Transaction) (UpsertResult, error) {
	var balance sql.NullInt64
	if tx.BalanceMinor != nil {
		balance = sql.NullInt64{Int64: *tx.BalanceMinor, Valid: true}
	}
	res, err := p.db.ExecContext(ctx, `
		INSERT INTO transactions (id, user_id, amount_minor, currency, direction, tx_date, category,
			merchant, account_id, account_suffix, bank, balance_minor, low_confidence, matcher,
			provenance, fingerprint)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (user_id, fingerprint) DO NOTHING`,
		tx.ID, tx.UserID, tx.AmountMinor, tx.Currency, tx.Direction, tx.Date, tx.Category,
		tx.Merchant, tx.AccountID, tx.AccountSuffix, tx.Bank, balance, tx.LowConfidence, tx.Matcher,
		tx.Provenance, tx.Fingerprint)
	if err != nil {
		return Inserted, fmt.Errorf("failed to insert transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return Inserted, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return Duplicate, nil
	}
	return Inserted, nil
}

// List implements Sink.
func (p *PostgresStore) List(ctx context.Context, userID string) ([]models.Transaction, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, user_id, amount_minor, currency, direction, to_char(tx_date, 'YYYY-MM-DD'), category,
			merchant, account_id, account_suffix, bank, balance_minor, low_confidence, matcher,
			provenance, fingerprint
		FROM transactions WHERE user_id = $1 ORDER BY seq`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var out []models.Transaction
	for rows.Next() {
		var (
			tx      models.Transaction
			id      string
			balance sql.NullInt64
		)
		if err := rows.Scan(&id, &tx.UserID, &tx.AmountMinor, &tx.Currency, &tx.Direction, &tx.Date,
			&tx.Category, &tx.Merchant, &tx.AccountID, &tx.AccountSuffix, &tx.Bank, &balance,
			&tx.LowConfidence, &tx.Matcher, &tx.Provenance, &tx.Fingerprint); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		if tx.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("invalid transaction id %q: %w", id, err)
		}
		if balance.Valid {
			v := balance.Int64
			tx.BalanceMinor = &v
		}
		tx.Amount = models.FormatMinorUnits(tx.AmountMinor)
		out = append(out, tx)
	}
	return out, rows.Err()
}

// Accounts implements AccountStore.
func (p *PostgresStore) Accounts(ctx context.Context, userID string) ([]models.Account, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, user_id, bank, account_type, account_number, implicit
		FROM accounts WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var out []models.Account
	for rows.Next() {
		var a models.Account
		if err := rows.Scan(&a.ID, &a.UserID, &a.Bank, &a.Type, &a.Number, &a.Implicit); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// SaveAccount implements AccountStore.
func (p *PostgresStore) SaveAccount(ctx context.Context, a models.Account) error {
	if a.Type == "" {
		a.Type = models.AccountSavings
	}
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO accounts (id, user_id, bank, account_type, account_number, implicit)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET bank = EXCLUDED.bank, account_type = EXCLUDED.account_type,
			account_number = EXCLUDED.account_number, implicit = EXCLUDED.implicit`,
		a.ID, a.UserID, a.Bank, a.Type, a.Number, a.Implicit)
	if err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (p *PostgresStore) Close() error {
	return p.db.Close()
}
