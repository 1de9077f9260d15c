package entities

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction is a high-level business operation (deposit, withdrawal,
// transfer, reversal) that generates ledger entries underneath.
//
// Status is the only mutable field after creation. ErrorMessage is set
// iff status is FAILED; CompletedAt is set iff status is COMPLETED or
// REVERSED. Idempotency is enforced via the unique idempotency key.
type Transaction struct {
	ID                     int64             `json:"id" db:"id"`
	ExternalID             uuid.UUID         `json:"external_id" db:"external_id"`
	IdempotencyKey         string            `json:"idempotency_key" db:"idempotency_key"`
	TransactionType        TransactionType   `json:"transaction_type" db:"transaction_type"`
	Status                 TransactionStatus `json:"status" db:"status"`
	SourceAccountID        *int64            `json:"source_account_id,omitempty" db:"source_account_id"`
	DestinationAccountID   *int64            `json:"destination_account_id,omitempty" db:"destination_account_id"`
	Amount                 decimal.Decimal   `json:"amount" db:"amount"`
	Currency               string            `json:"currency" db:"currency"`
	Description            string            `json:"description" db:"description"`
	ReferenceTransactionID *int64            `json:"reference_transaction_id,omitempty" db:"reference_transaction_id"`
	LedgerTransactionID    *uuid.UUID        `json:"ledger_transaction_id,omitempty" db:"ledger_transaction_id"`
	ErrorMessage           *string           `json:"error_message,omitempty" db:"error_message"`
	CreatedAt              time.Time         `json:"created_at" db:"created_at"`
	CompletedAt            *time.Time        `json:"completed_at,omitempty" db:"completed_at"`
}

// DepositRequest is the input for a cash deposit.
type DepositRequest struct {
	IdempotencyKey string          `json:"idempotency_key" binding:"required,max=100"`
	AccountID      int64           `json:"account_id" binding:"required"`
	Amount         decimal.Decimal `json:"amount" binding:"required"`
	Currency       string          `json:"currency" binding:"required,len=3"`
	Description    string          `json:"description" binding:"required,max=255"`
}

// Validate validates the deposit request
func (r *DepositRequest) Validate() error {
	return validateAmount(r.Amount)
}

// WithdrawalRequest is the input for a cash withdrawal.
type WithdrawalRequest struct {
	IdempotencyKey string          `json:"idempotency_key" binding:"required,max=100"`
	AccountID      int64           `json:"account_id" binding:"required"`
	Amount         decimal.Decimal `json:"amount" binding:"required"`
	Currency       string          `json:"currency" binding:"required,len=3"`
	Description    string          `json:"description" binding:"required,max=255"`
}

// Validate validates the withdrawal request
func (r *WithdrawalRequest) Validate() error {
	return validateAmount(r.Amount)
}

// TransferRequest is the input for an account-to-account transfer.
type TransferRequest struct {
	IdempotencyKey       string          `json:"idempotency_key" binding:"required,max=100"`
	SourceAccountID      int64           `json:"source_account_id" binding:"required"`
	DestinationAccountID int64           `json:"destination_account_id" binding:"required"`
	Amount               decimal.Decimal `json:"amount" binding:"required"`
	Currency             string          `json:"currency" binding:"required,len=3"`
	Description          string          `json:"description" binding:"required,max=255"`
}

// Validate validates the transfer request
func (r *TransferRequest) Validate() error {
	return validateAmount(r.Amount)
}

// ReverseRequest is the input for reversing a completed transaction.
type ReverseRequest struct {
	IdempotencyKey string `json:"idempotency_key" binding:"required,max=100"`
}

func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("amount must be positive")
	}
	return nil
}
