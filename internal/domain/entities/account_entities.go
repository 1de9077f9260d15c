package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Account is the customer-facing account customers interact with.
// Each account links one-to-one to a ledger account where the actual
// balance is tracked through double-entry bookkeeping.
type Account struct {
	ID              int64         `json:"id" db:"id"`
	ExternalID      uuid.UUID     `json:"external_id" db:"external_id"`
	CustomerID      int64         `json:"customer_id" db:"customer_id"`
	LedgerAccountID int64         `json:"ledger_account_id" db:"ledger_account_id"`
	ProductType     ProductType   `json:"account_type" db:"account_type"`
	Status          AccountStatus `json:"status" db:"status"`
	Currency        string        `json:"currency" db:"currency"`
	OpenedAt        *time.Time    `json:"opened_at,omitempty" db:"opened_at"`
	ClosedAt        *time.Time    `json:"closed_at,omitempty" db:"closed_at"`
	CreatedAt       time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at" db:"updated_at"`
}

// CanTransitionTo reports whether the account may move to the given status.
func (a *Account) CanTransitionTo(next AccountStatus) bool {
	return a.Status.CanTransitionTo(next)
}

// OpenAccountRequest is the input for opening a customer account.
type OpenAccountRequest struct {
	CustomerID  int64       `json:"customer_id" binding:"required"`
	ProductType ProductType `json:"account_type" binding:"required,product_type"`
	Currency    string      `json:"currency" binding:"required,len=3"`
}

// ChangeAccountStatusRequest is the input for a state transition.
// Reason is mandatory and recorded for audit.
type ChangeAccountStatusRequest struct {
	Status AccountStatus `json:"status" binding:"required,account_status"`
	Reason string        `json:"reason" binding:"required,min=1"`
}

// AccountBalance is the balance view returned for a customer account.
type AccountBalance struct {
	AccountID  int64         `json:"account_id"`
	ExternalID uuid.UUID     `json:"external_id"`
	Status     AccountStatus `json:"status"`
	Balance    decimal.Decimal `json:"balance"`
	Currency   string        `json:"currency"`
}
