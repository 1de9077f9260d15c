package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/corebank-service/corebank_service/internal/domain/apperrors"
	"github.com/corebank-service/corebank_service/internal/domain/entities"
	"github.com/corebank-service/corebank_service/internal/infrastructure/database"
)

// LedgerRepository persists the chart of accounts and the entry log.
// Entries are append-only: there is no update or delete path here.
type LedgerRepository struct {
	q database.Querier
}

// NewLedgerRepository creates a ledger repository over the given unit of work.
func NewLedgerRepository(q database.Querier) *LedgerRepository {
	return &LedgerRepository{q: q}
}

// CreateAccount inserts a new chart-of-accounts entry.
func (r *LedgerRepository) CreateAccount(ctx context.Context, account *entities.LedgerAccount) error {
	query := `
		INSERT INTO ledger_accounts (code, name, account_type, currency, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.q.QueryRowxContext(
		ctx,
		query,
		account.Code,
		account.Name,
		account.Category,
		account.Currency,
		account.IsActive,
	).Scan(&account.ID, &account.CreatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return apperrors.Conflict("account with code '%s' already exists", account.Code)
		}
		return fmt.Errorf("create ledger account: %w", err)
	}

	return nil
}

// GetAccountByID retrieves a ledger account by ID.
func (r *LedgerRepository) GetAccountByID(ctx context.Context, accountID int64) (*entities.LedgerAccount, error) {
	query := `
		SELECT id, code, name, account_type, currency, is_active, created_at
		FROM ledger_accounts
		WHERE id = $1
	`

	var account entities.LedgerAccount
	err := r.q.GetContext(ctx, &account, query, accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("ledger account %d not found", accountID)
		}
		return nil, fmt.Errorf("get ledger account: %w", err)
	}

	return &account, nil
}

// GetAccountByCode retrieves a ledger account by its unique code.
// Returns (nil, nil) when no account carries the code.
func (r *LedgerRepository) GetAccountByCode(ctx context.Context, code string) (*entities.LedgerAccount, error) {
	query := `
		SELECT id, code, name, account_type, currency, is_active, created_at
		FROM ledger_accounts
		WHERE code = $1
	`

	var account entities.LedgerAccount
	err := r.q.GetContext(ctx, &account, query, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get ledger account by code: %w", err)
	}

	return &account, nil
}

// GetAccountsByIDs retrieves the ledger accounts for the given set of ids.
// Missing ids are simply absent from the result; the caller decides
// whether that is an error.
func (r *LedgerRepository) GetAccountsByIDs(ctx context.Context, ids []int64) ([]*entities.LedgerAccount, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`
		SELECT id, code, name, account_type, currency, is_active, created_at
		FROM ledger_accounts
		WHERE id IN (?)
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("build accounts query: %w", err)
	}
	query = r.q.Rebind(query)

	var accounts []*entities.LedgerAccount
	if err := r.q.SelectContext(ctx, &accounts, query, args...); err != nil {
		return nil, fmt.Errorf("get ledger accounts: %w", err)
	}

	return accounts, nil
}

// SetAccountActive flips the active flag of a ledger account.
func (r *LedgerRepository) SetAccountActive(ctx context.Context, accountID int64, active bool) error {
	query := `UPDATE ledger_accounts SET is_active = $1 WHERE id = $2`

	result, err := r.q.ExecContext(ctx, query, active, accountID)
	if err != nil {
		return fmt.Errorf("set ledger account active: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.NotFound("ledger account %d not found", accountID)
	}

	return nil
}

// InsertEntries appends a group of entries to the log. Timestamps come
// from the database so all entries of a posting share one instant.
func (r *LedgerRepository) InsertEntries(ctx context.Context, entries []*entities.LedgerEntry) error {
	query := `
		INSERT INTO ledger_entries (transaction_id, account_id, entry_type, amount, currency, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	for _, entry := range entries {
		err := r.q.QueryRowxContext(
			ctx,
			query,
			entry.TransactionID,
			entry.AccountID,
			entry.EntryType,
			entry.Amount,
			entry.Currency,
			entry.Description,
		).Scan(&entry.ID, &entry.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert ledger entry: %w", err)
		}
	}

	return nil
}

// GetEntriesByTransactionID retrieves all entries of a posting, in
// insertion order.
func (r *LedgerRepository) GetEntriesByTransactionID(ctx context.Context, txnID uuid.UUID) ([]*entities.LedgerEntry, error) {
	query := `
		SELECT id, transaction_id, account_id, entry_type, amount, currency, description, created_at
		FROM ledger_entries
		WHERE transaction_id = $1
		ORDER BY id
	`

	var entries []*entities.LedgerEntry
	if err := r.q.SelectContext(ctx, &entries, query, txnID); err != nil {
		return nil, fmt.Errorf("get entries by transaction: %w", err)
	}

	return entries, nil
}

// GetEntriesByAccountID retrieves all entries for an account, newest
// first with id as tie-breaker.
func (r *LedgerRepository) GetEntriesByAccountID(ctx context.Context, accountID int64) ([]*entities.LedgerEntry, error) {
	query := `
		SELECT id, transaction_id, account_id, entry_type, amount, currency, description, created_at
		FROM ledger_entries
		WHERE account_id = $1
		ORDER BY created_at DESC, id DESC
	`

	var entries []*entities.LedgerEntry
	if err := r.q.SelectContext(ctx, &entries, query, accountID); err != nil {
		return nil, fmt.Errorf("get entries by account: %w", err)
	}

	return entries, nil
}

// SumEntriesByAccount returns the debit and credit totals for one
// account without materializing the entry list.
func (r *LedgerRepository) SumEntriesByAccount(ctx context.Context, accountID int64) (totalDebits, totalCredits decimal.Decimal, err error) {
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN entry_type = 'DEBIT' THEN amount ELSE 0 END), 0) AS total_debits,
			COALESCE(SUM(CASE WHEN entry_type = 'CREDIT' THEN amount ELSE 0 END), 0) AS total_credits
		FROM ledger_entries
		WHERE account_id = $1
	`

	err = r.q.QueryRowxContext(ctx, query, accountID).Scan(&totalDebits, &totalCredits)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("sum entries by account: %w", err)
	}

	return totalDebits, totalCredits, nil
}

// SumAllEntries returns the debit and credit totals across the whole ledger.
func (r *LedgerRepository) SumAllEntries(ctx context.Context) (totalDebits, totalCredits decimal.Decimal, err error) {
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN entry_type = 'DEBIT' THEN amount ELSE 0 END), 0) AS total_debits,
			COALESCE(SUM(CASE WHEN entry_type = 'CREDIT' THEN amount ELSE 0 END), 0) AS total_credits
		FROM ledger_entries
	`

	err = r.q.QueryRowxContext(ctx, query).Scan(&totalDebits, &totalCredits)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("sum all entries: %w", err)
	}

	return totalDebits, totalCredits, nil
}
