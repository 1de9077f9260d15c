package entities

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerAccount is a single account in the chart of accounts.
//
// Once created, an account is never deleted, only deactivated via
// IsActive=false. Currency and category are immutable after creation.
type LedgerAccount struct {
	ID        int64           `json:"id" db:"id"`
	Code      string          `json:"code" db:"code"`
	Name      string          `json:"name" db:"name"`
	Category  AccountCategory `json:"account_type" db:"account_type"`
	Currency  string          `json:"currency" db:"currency"`
	IsActive  bool            `json:"is_active" db:"is_active"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// Validate validates the ledger account
func (a *LedgerAccount) Validate() error {
	if a.Code == "" {
		return fmt.Errorf("account code is required")
	}
	if len(a.Code) > 20 {
		return fmt.Errorf("account code exceeds 20 characters")
	}
	if a.Name == "" {
		return fmt.Errorf("account name is required")
	}
	if err := a.Category.Validate(); err != nil {
		return err
	}
	if len(a.Currency) != 3 {
		return fmt.Errorf("invalid currency: %s", a.Currency)
	}
	return nil
}

// LedgerEntry is one half of a double-entry posting.
//
// Entries are immutable: once posted, they are never modified or
// deleted. Entries sharing a TransactionID form a posting whose DEBIT
// sum equals its CREDIT sum.
type LedgerEntry struct {
	ID            int64           `json:"id" db:"id"`
	TransactionID uuid.UUID       `json:"transaction_id" db:"transaction_id"`
	AccountID     int64           `json:"account_id" db:"account_id"`
	EntryType     EntryType       `json:"entry_type" db:"entry_type"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	Currency      string          `json:"currency" db:"currency"`
	Description   string          `json:"description" db:"description"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}

// IsDebit returns true if this is a debit entry
func (e *LedgerEntry) IsDebit() bool {
	return e.EntryType == EntryTypeDebit
}

// IsCredit returns true if this is a credit entry
func (e *LedgerEntry) IsCredit() bool {
	return e.EntryType == EntryTypeCredit
}

// CreateLedgerAccountRequest is the input for creating a chart-of-accounts entry.
type CreateLedgerAccountRequest struct {
	Code     string          `json:"code" binding:"required,max=20"`
	Name     string          `json:"name" binding:"required,max=100"`
	Category AccountCategory `json:"account_type" binding:"required,account_category"`
	Currency string          `json:"currency"`
}

// Validate validates the create ledger account request. An empty
// currency defaults to USD.
func (r *CreateLedgerAccountRequest) Validate() error {
	if r.Currency == "" {
		r.Currency = "USD"
	}
	if err := r.Category.Validate(); err != nil {
		return err
	}
	if len(r.Currency) != 3 {
		return fmt.Errorf("invalid currency: %s", r.Currency)
	}
	return nil
}

// PostEntryRequest is one entry of a posting request. The entry currency
// is not client-supplied; it is stamped from the posting currency.
type PostEntryRequest struct {
	AccountID   int64           `json:"account_id" binding:"required"`
	EntryType   EntryType       `json:"entry_type" binding:"required,entry_type"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Description string          `json:"description" binding:"required,max=255"`
}

// Validate validates a single entry request
func (r *PostEntryRequest) Validate() error {
	if r.AccountID == 0 {
		return fmt.Errorf("account ID is required")
	}
	if err := r.EntryType.Validate(); err != nil {
		return err
	}
	if !r.Amount.IsPositive() {
		return fmt.Errorf("entry amount must be positive")
	}
	return nil
}

// PostEntriesRequest is a request to post a balanced group of entries
// sharing a ledger-transaction id.
type PostEntriesRequest struct {
	TransactionID uuid.UUID          `json:"transaction_id" binding:"required"`
	Currency      string             `json:"currency" binding:"required,len=3"`
	Entries       []PostEntryRequest `json:"entries" binding:"required"`
}

// Validate checks the request shape: at least two entries with at least
// one debit and one credit, all amounts strictly positive. The balance
// rule itself is enforced by the ledger service after account checks.
func (r *PostEntriesRequest) Validate() error {
	if r.TransactionID == uuid.Nil {
		return fmt.Errorf("transaction ID is required")
	}
	if len(r.Currency) != 3 {
		return fmt.Errorf("invalid currency: %s", r.Currency)
	}
	if len(r.Entries) < 2 {
		return fmt.Errorf("posting must have at least 2 entries")
	}

	var debits, credits int
	for i := range r.Entries {
		if err := r.Entries[i].Validate(); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
		if r.Entries[i].EntryType == EntryTypeDebit {
			debits++
		} else {
			credits++
		}
	}
	if debits == 0 || credits == 0 {
		return fmt.Errorf("posting must contain at least one debit and one credit")
	}
	return nil
}

// DebitTotal sums the DEBIT amounts of the request.
func (r *PostEntriesRequest) DebitTotal() decimal.Decimal {
	total := decimal.Zero
	for i := range r.Entries {
		if r.Entries[i].EntryType == EntryTypeDebit {
			total = total.Add(r.Entries[i].Amount)
		}
	}
	return total
}

// CreditTotal sums the CREDIT amounts of the request.
func (r *PostEntriesRequest) CreditTotal() decimal.Decimal {
	total := decimal.Zero
	for i := range r.Entries {
		if r.Entries[i].EntryType == EntryTypeCredit {
			total = total.Add(r.Entries[i].Amount)
		}
	}
	return total
}

// IntegrityReport is the result of a whole-ledger integrity check.
// Difference is debits minus credits; a healthy ledger has zero.
type IntegrityReport struct {
	TotalDebits  decimal.Decimal `json:"total_debits"`
	TotalCredits decimal.Decimal `json:"total_credits"`
	Difference   decimal.Decimal `json:"difference"`
	IsBalanced   bool            `json:"is_balanced"`
}

// LedgerBalance is the balance view returned for a ledger account.
type LedgerBalance struct {
	AccountID   int64           `json:"account_id"`
	AccountCode string          `json:"account_code"`
	Category    AccountCategory `json:"account_type"`
	Balance     decimal.Decimal `json:"balance"`
	Currency    string          `json:"currency"`
}
