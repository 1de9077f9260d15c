// Package ledger implements the double-entry bookkeeping core.
//
// The ledger is the single source of truth for money. Balances are never
// stored; they are derived from the append-only entry log. Every posting
// is a balanced group of entries sharing one transaction id, and a
// transaction id that has already been posted is returned as-is rather
// than posted twice.
package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/corebank-service/corebank_service/internal/domain/apperrors"
	"github.com/corebank-service/corebank_service/internal/domain/entities"
	"github.com/corebank-service/corebank_service/pkg/logger"
	"github.com/corebank-service/corebank_service/pkg/metrics"
)

// Repository is the persistence surface the ledger service needs.
type Repository interface {
	CreateAccount(ctx context.Context, account *entities.LedgerAccount) error
	GetAccountByID(ctx context.Context, accountID int64) (*entities.LedgerAccount, error)
	GetAccountByCode(ctx context.Context, code string) (*entities.LedgerAccount, error)
	GetAccountsByIDs(ctx context.Context, ids []int64) ([]*entities.LedgerAccount, error)
	SetAccountActive(ctx context.Context, accountID int64, active bool) error
	InsertEntries(ctx context.Context, entries []*entities.LedgerEntry) error
	GetEntriesByTransactionID(ctx context.Context, txnID uuid.UUID) ([]*entities.LedgerEntry, error)
	GetEntriesByAccountID(ctx context.Context, accountID int64) ([]*entities.LedgerEntry, error)
	SumEntriesByAccount(ctx context.Context, accountID int64) (totalDebits, totalCredits decimal.Decimal, err error)
	SumAllEntries(ctx context.Context) (totalDebits, totalCredits decimal.Decimal, err error)
}

// Service implements the bookkeeping operations.
type Service struct {
	repo Repository
	log  *logger.Logger
}

// NewService creates the ledger service.
func NewService(repo Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// CreateAccount creates a chart-of-accounts entry.
func (s *Service) CreateAccount(ctx context.Context, req *entities.CreateLedgerAccountRequest) (*entities.LedgerAccount, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation("%v", err)
	}

	account := &entities.LedgerAccount{
		Code:     req.Code,
		Name:     req.Name,
		Category: req.Category,
		Currency: req.Currency,
		IsActive: true,
	}

	if err := s.repo.CreateAccount(ctx, account); err != nil {
		return nil, err
	}

	s.log.Info("ledger account created",
		"account_id", account.ID,
		"code", account.Code,
		"account_type", account.Category,
	)
	return account, nil
}

// GetAccount retrieves a ledger account by id.
func (s *Service) GetAccount(ctx context.Context, accountID int64) (*entities.LedgerAccount, error) {
	return s.repo.GetAccountByID(ctx, accountID)
}

// GetAccountByCode retrieves a ledger account by code. Returns (nil, nil)
// when the code is unused.
func (s *Service) GetAccountByCode(ctx context.Context, code string) (*entities.LedgerAccount, error) {
	return s.repo.GetAccountByCode(ctx, code)
}

// SetAccountActive flips the active flag of a ledger account. Used when
// the paired customer account is closed.
func (s *Service) SetAccountActive(ctx context.Context, accountID int64, active bool) error {
	return s.repo.SetAccountActive(ctx, accountID, active)
}

// PostEntries atomically appends a balanced group of entries.
//
// Posting the same transaction id twice is not an error: the existing
// entry set is returned unchanged, making retries safe. Preconditions are
// checked in a fixed order so callers see deterministic failures:
// existence of every account, then active flags, then currency agreement,
// then the balance rule. On any failure nothing is written.
func (s *Service) PostEntries(ctx context.Context, req *entities.PostEntriesRequest) ([]*entities.LedgerEntry, error) {
	if err := req.Validate(); err != nil {
		metrics.LedgerPostingsTotal.WithLabelValues("rejected").Inc()
		return nil, apperrors.Validation("%v", err)
	}

	existing, err := s.repo.GetEntriesByTransactionID(ctx, req.TransactionID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		s.log.Info("posting already applied, returning existing entries",
			"transaction_id", req.TransactionID,
			"entries", len(existing),
		)
		metrics.LedgerPostingsTotal.WithLabelValues("duplicate").Inc()
		return existing, nil
	}

	accounts, err := s.loadAccounts(ctx, req)
	if err != nil {
		metrics.LedgerPostingsTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	for _, entry := range req.Entries {
		account := accounts[entry.AccountID]
		if !account.IsActive {
			metrics.LedgerPostingsTotal.WithLabelValues("rejected").Inc()
			return nil, apperrors.AccountInactive("ledger account %d is inactive", account.ID)
		}
	}

	for _, entry := range req.Entries {
		account := accounts[entry.AccountID]
		if account.Currency != req.Currency {
			metrics.LedgerPostingsTotal.WithLabelValues("rejected").Inc()
			return nil, apperrors.CurrencyMismatch(
				"ledger account %d currency %s does not match posting currency %s",
				account.ID, account.Currency, req.Currency,
			)
		}
	}

	debits, credits := req.DebitTotal(), req.CreditTotal()
	if !debits.Equal(credits) {
		metrics.LedgerPostingsTotal.WithLabelValues("rejected").Inc()
		return nil, apperrors.Unbalanced(
			"posting is unbalanced: debits %s, credits %s",
			debits.String(), credits.String(),
		)
	}

	entries := make([]*entities.LedgerEntry, 0, len(req.Entries))
	for _, e := range req.Entries {
		entries = append(entries, &entities.LedgerEntry{
			TransactionID: req.TransactionID,
			AccountID:     e.AccountID,
			EntryType:     e.EntryType,
			Amount:        e.Amount,
			Currency:      req.Currency,
			Description:   e.Description,
		})
	}

	if err := s.repo.InsertEntries(ctx, entries); err != nil {
		metrics.LedgerPostingsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	s.log.Info("posting applied",
		"transaction_id", req.TransactionID,
		"entries", len(entries),
		"amount", debits.String(),
		"currency", req.Currency,
	)
	metrics.LedgerPostingsTotal.WithLabelValues("posted").Inc()
	return entries, nil
}

// loadAccounts fetches every account referenced by the request and fails
// with NotFound on the first missing one.
func (s *Service) loadAccounts(ctx context.Context, req *entities.PostEntriesRequest) (map[int64]*entities.LedgerAccount, error) {
	ids := make([]int64, 0, len(req.Entries))
	seen := make(map[int64]bool, len(req.Entries))
	for _, e := range req.Entries {
		if !seen[e.AccountID] {
			seen[e.AccountID] = true
			ids = append(ids, e.AccountID)
		}
	}

	accounts, err := s.repo.GetAccountsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]*entities.LedgerAccount, len(accounts))
	for _, a := range accounts {
		byID[a.ID] = a
	}
	for _, id := range ids {
		if byID[id] == nil {
			return nil, apperrors.NotFound("ledger account %d not found", id)
		}
	}
	return byID, nil
}

// GetBalance derives an account's balance from the entry log.
//
// Debit-normal accounts (ASSET, EXPENSE) report debits minus credits; the
// rest report credits minus debits. A negative result is legitimate and
// reported as-is.
func (s *Service) GetBalance(ctx context.Context, accountID int64) (*entities.LedgerBalance, error) {
	account, err := s.repo.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	debits, credits, err := s.repo.SumEntriesByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	balance := credits.Sub(debits)
	if account.Category.IsDebitNormal() {
		balance = debits.Sub(credits)
	}

	return &entities.LedgerBalance{
		AccountID:   account.ID,
		AccountCode: account.Code,
		Category:    account.Category,
		Balance:     balance,
		Currency:    account.Currency,
	}, nil
}

// GetEntriesByAccount lists the entries of one account, newest first.
func (s *Service) GetEntriesByAccount(ctx context.Context, accountID int64) ([]*entities.LedgerEntry, error) {
	if _, err := s.repo.GetAccountByID(ctx, accountID); err != nil {
		return nil, err
	}
	return s.repo.GetEntriesByAccountID(ctx, accountID)
}

// GetEntriesByTransaction lists the entries of one posting.
func (s *Service) GetEntriesByTransaction(ctx context.Context, txnID uuid.UUID) ([]*entities.LedgerEntry, error) {
	entries, err := s.repo.GetEntriesByTransactionID(ctx, txnID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, apperrors.NotFound("no entries for transaction %s", txnID)
	}
	return entries, nil
}

// CheckIntegrity verifies the fundamental ledger equation: the sum of
// all debits equals the sum of all credits across the whole log.
func (s *Service) CheckIntegrity(ctx context.Context) (*entities.IntegrityReport, error) {
	debits, credits, err := s.repo.SumAllEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("integrity check: %w", err)
	}

	report := &entities.IntegrityReport{
		TotalDebits:  debits,
		TotalCredits: credits,
		Difference:   debits.Sub(credits),
		IsBalanced:   debits.Equal(credits),
	}

	if report.IsBalanced {
		metrics.LedgerBalanced.Set(1)
	} else {
		metrics.LedgerBalanced.Set(0)
		s.log.Error("ledger integrity violated",
			"total_debits", debits.String(),
			"total_credits", credits.String(),
			"difference", report.Difference.String(),
		)
	}

	return report, nil
}
