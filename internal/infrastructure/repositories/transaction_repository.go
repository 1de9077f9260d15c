package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/corebank-service/corebank_service/internal/domain/apperrors"
	"github.com/corebank-service/corebank_service/internal/domain/entities"
	"github.com/corebank-service/corebank_service/internal/infrastructure/database"
)

// TransactionRepository persists business-level transactions.
type TransactionRepository struct {
	q database.Querier
}

// NewTransactionRepository creates a transaction repository over the given unit of work.
func NewTransactionRepository(q database.Querier) *TransactionRepository {
	return &TransactionRepository{q: q}
}

const transactionColumns = `
	id, external_id, idempotency_key, transaction_type, status,
	source_account_id, destination_account_id, amount, currency, description,
	reference_transaction_id, ledger_transaction_id, error_message,
	created_at, completed_at
`

// Create inserts a new business transaction row.
func (r *TransactionRepository) Create(ctx context.Context, txn *entities.Transaction) error {
	if txn.ExternalID == uuid.Nil {
		txn.ExternalID = uuid.New()
	}

	query := `
		INSERT INTO transactions (
			external_id, idempotency_key, transaction_type, status,
			source_account_id, destination_account_id, amount, currency,
			description, reference_transaction_id, ledger_transaction_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at
	`

	err := r.q.QueryRowxContext(
		ctx,
		query,
		txn.ExternalID,
		txn.IdempotencyKey,
		txn.TransactionType,
		txn.Status,
		txn.SourceAccountID,
		txn.DestinationAccountID,
		txn.Amount,
		txn.Currency,
		txn.Description,
		txn.ReferenceTransactionID,
		txn.LedgerTransactionID,
	).Scan(&txn.ID, &txn.CreatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return apperrors.Conflict("transaction with idempotency key '%s' already exists", txn.IdempotencyKey)
		}
		return fmt.Errorf("create transaction: %w", err)
	}

	return nil
}

// GetByID retrieves a transaction by ID.
func (r *TransactionRepository) GetByID(ctx context.Context, txnID int64) (*entities.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

	var txn entities.Transaction
	err := r.q.GetContext(ctx, &txn, query, txnID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("transaction %d not found", txnID)
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}

	return &txn, nil
}

// GetByIdempotencyKey retrieves a transaction by its business key.
// Returns (nil, nil) when the key is unused; not found is the expected
// case on the idempotency probe.
func (r *TransactionRepository) GetByIdempotencyKey(ctx context.Context, key string) (*entities.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE idempotency_key = $1`

	var txn entities.Transaction
	err := r.q.GetContext(ctx, &txn, query, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction by idempotency key: %w", err)
	}

	return &txn, nil
}

// UpdateStatus updates the status of a transaction. Status is the only
// mutable field of a transaction, together with its failure and
// completion metadata.
func (r *TransactionRepository) UpdateStatus(ctx context.Context, txnID int64, status entities.TransactionStatus, errorMessage *string, completedAt *time.Time) error {
	query := `
		UPDATE transactions
		SET status = $1, error_message = $2, completed_at = $3
		WHERE id = $4
	`

	result, err := r.q.ExecContext(ctx, query, status, errorMessage, completedAt, txnID)
	if err != nil {
		return fmt.Errorf("update transaction status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.NotFound("transaction %d not found", txnID)
	}

	return nil
}
