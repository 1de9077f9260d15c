package entities

import "fmt"

// AccountCategory is one of the five fundamental accounting categories.
// The category decides which direction increases an account's balance:
// ASSET and EXPENSE accounts are debit-normal, the rest are credit-normal.
type AccountCategory string

const (
	CategoryAsset     AccountCategory = "ASSET"
	CategoryLiability AccountCategory = "LIABILITY"
	CategoryEquity    AccountCategory = "EQUITY"
	CategoryRevenue   AccountCategory = "REVENUE"
	CategoryExpense   AccountCategory = "EXPENSE"
)

// IsDebitNormal returns true if debits increase the balance.
func (c AccountCategory) IsDebitNormal() bool {
	return c == CategoryAsset || c == CategoryExpense
}

// Validate checks if the account category is valid
func (c AccountCategory) Validate() error {
	switch c {
	case CategoryAsset, CategoryLiability, CategoryEquity, CategoryRevenue, CategoryExpense:
		return nil
	default:
		return fmt.Errorf("invalid account category: %s", c)
	}
}

// EntryType represents the direction of a ledger entry
type EntryType string

const (
	EntryTypeDebit  EntryType = "DEBIT"
	EntryTypeCredit EntryType = "CREDIT"
)

// Opposite returns the mirrored direction, used when building reversals.
func (e EntryType) Opposite() EntryType {
	if e == EntryTypeDebit {
		return EntryTypeCredit
	}
	return EntryTypeDebit
}

// Validate checks if the entry type is valid
func (e EntryType) Validate() error {
	switch e {
	case EntryTypeDebit, EntryTypeCredit:
		return nil
	default:
		return fmt.Errorf("invalid entry type: %s", e)
	}
}

// ProductType represents the customer-facing account product
type ProductType string

const (
	ProductChecking ProductType = "CHECKING"
	ProductSavings  ProductType = "SAVINGS"
	ProductCredit   ProductType = "CREDIT"
	ProductPrepaid  ProductType = "PREPAID"
)

// Validate checks if the product type is valid
func (p ProductType) Validate() error {
	switch p {
	case ProductChecking, ProductSavings, ProductCredit, ProductPrepaid:
		return nil
	default:
		return fmt.Errorf("invalid product type: %s", p)
	}
}

// LedgerCategory maps a product to its chart-of-accounts category.
// Customer deposits are liabilities from the bank's point of view,
// and that holds for every product we offer today.
func (p ProductType) LedgerCategory() AccountCategory {
	return CategoryLiability
}

// AccountStatus represents the lifecycle state of a customer-facing account
type AccountStatus string

const (
	AccountStatusPending AccountStatus = "PENDING"
	AccountStatusActive  AccountStatus = "ACTIVE"
	AccountStatusFrozen  AccountStatus = "FROZEN"
	AccountStatusBlocked AccountStatus = "BLOCKED"
	AccountStatusClosed  AccountStatus = "CLOSED"
)

// Validate checks if the account status is valid
func (s AccountStatus) Validate() error {
	switch s {
	case AccountStatusPending, AccountStatusActive, AccountStatusFrozen,
		AccountStatusBlocked, AccountStatusClosed:
		return nil
	default:
		return fmt.Errorf("invalid account status: %s", s)
	}
}

// validTransitions is the source of truth for the account state machine.
// CLOSED is terminal.
var validTransitions = map[AccountStatus][]AccountStatus{
	AccountStatusPending: {AccountStatusActive, AccountStatusClosed},
	AccountStatusActive:  {AccountStatusFrozen, AccountStatusBlocked, AccountStatusClosed},
	AccountStatusFrozen:  {AccountStatusActive, AccountStatusBlocked},
	AccountStatusBlocked: {AccountStatusClosed},
	AccountStatusClosed:  {},
}

// CanTransitionTo reports whether the state machine allows moving to next.
func (s AccountStatus) CanTransitionTo(next AccountStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// TransactionType represents the type of business transaction
type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "DEPOSIT"
	TransactionTypeWithdrawal TransactionType = "WITHDRAWAL"
	TransactionTypeTransfer   TransactionType = "TRANSFER"
	TransactionTypeReversal   TransactionType = "REVERSAL"
)

// Validate checks if the transaction type is valid
func (t TransactionType) Validate() error {
	switch t {
	case TransactionTypeDeposit, TransactionTypeWithdrawal,
		TransactionTypeTransfer, TransactionTypeReversal:
		return nil
	default:
		return fmt.Errorf("invalid transaction type: %s", t)
	}
}

// TransactionStatus represents the status of a business transaction
type TransactionStatus string

const (
	TransactionStatusPending    TransactionStatus = "PENDING"
	TransactionStatusProcessing TransactionStatus = "PROCESSING"
	TransactionStatusCompleted  TransactionStatus = "COMPLETED"
	TransactionStatusFailed     TransactionStatus = "FAILED"
	TransactionStatusReversed   TransactionStatus = "REVERSED"
)

// Validate checks if the transaction status is valid
func (s TransactionStatus) Validate() error {
	switch s {
	case TransactionStatusPending, TransactionStatusProcessing,
		TransactionStatusCompleted, TransactionStatusFailed, TransactionStatusReversed:
		return nil
	default:
		return fmt.Errorf("invalid transaction status: %s", s)
	}
}

// KYCStatus represents a customer's KYC verification state
type KYCStatus string

const (
	KYCStatusPending  KYCStatus = "PENDING"
	KYCStatusVerified KYCStatus = "VERIFIED"
	KYCStatusRejected KYCStatus = "REJECTED"
)

// Validate checks if the KYC status is valid
func (s KYCStatus) Validate() error {
	switch s {
	case KYCStatusPending, KYCStatusVerified, KYCStatusRejected:
		return nil
	default:
		return fmt.Errorf("invalid KYC status: %s", s)
	}
}
