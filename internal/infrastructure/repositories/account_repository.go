package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/corebank-service/corebank_service/internal/domain/apperrors"
	"github.com/corebank-service/corebank_service/internal/domain/entities"
	"github.com/corebank-service/corebank_service/internal/infrastructure/database"
)

// AccountRepository persists customer-facing accounts.
type AccountRepository struct {
	q database.Querier
}

// NewAccountRepository creates an account repository over the given unit of work.
func NewAccountRepository(q database.Querier) *AccountRepository {
	return &AccountRepository{q: q}
}

const accountColumns = `
	id, external_id, customer_id, ledger_account_id, account_type, status,
	currency, opened_at, closed_at, created_at, updated_at
`

// Create inserts a new account in its initial status.
func (r *AccountRepository) Create(ctx context.Context, account *entities.Account) error {
	if account.ExternalID == uuid.Nil {
		account.ExternalID = uuid.New()
	}

	query := `
		INSERT INTO accounts (external_id, customer_id, ledger_account_id, account_type, status, currency)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := r.q.QueryRowxContext(
		ctx,
		query,
		account.ExternalID,
		account.CustomerID,
		account.LedgerAccountID,
		account.ProductType,
		account.Status,
		account.Currency,
	).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}

	return nil
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, accountID int64) (*entities.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	var account entities.Account
	err := r.q.GetContext(ctx, &account, query, accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("account %d not found", accountID)
		}
		return nil, fmt.Errorf("get account: %w", err)
	}

	return &account, nil
}

// GetByCustomerID retrieves all accounts owned by a customer.
func (r *AccountRepository) GetByCustomerID(ctx context.Context, customerID int64) ([]*entities.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE customer_id = $1 ORDER BY id`

	var accounts []*entities.Account
	if err := r.q.SelectContext(ctx, &accounts, query, customerID); err != nil {
		return nil, fmt.Errorf("get customer accounts: %w", err)
	}

	return accounts, nil
}

// UpdateStatus persists a status transition together with the lifecycle
// timestamps the transition may have set.
func (r *AccountRepository) UpdateStatus(ctx context.Context, account *entities.Account) error {
	query := `
		UPDATE accounts
		SET status = $1, opened_at = $2, closed_at = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING updated_at
	`

	err := r.q.QueryRowxContext(
		ctx,
		query,
		account.Status,
		account.OpenedAt,
		account.ClosedAt,
		account.ID,
	).Scan(&account.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NotFound("account %d not found", account.ID)
		}
		return fmt.Errorf("update account status: %w", err)
	}

	return nil
}
