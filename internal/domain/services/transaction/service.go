// Package transaction orchestrates business money movements on top of
// the ledger.
//
// Every deposit, withdrawal, transfer and reversal is recorded as a
// transaction row and realized as a balanced ledger posting. The
// idempotency key makes retries safe at the business level: a key that
// has been seen before returns the prior transaction unchanged, even
// when that transaction FAILED.
//
// A transaction that fails during processing is kept as a FAILED row
// with its error message. Service methods therefore return the
// transaction alongside the error; the unit of work must still be
// committed in that case so the failure is durable.
package transaction

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/corebank-service/corebank_service/internal/domain/apperrors"
	"github.com/corebank-service/corebank_service/internal/domain/entities"
	"github.com/corebank-service/corebank_service/pkg/logger"
	"github.com/corebank-service/corebank_service/pkg/metrics"
)

// cashAccountCode is the bank's own asset account, the counterparty of
// every deposit and withdrawal. It is created lazily on first use with
// the currency of that first operation.
const cashAccountCode = "BANK-CASH-001"

// Repository is the persistence surface for transactions.
type Repository interface {
	Create(ctx context.Context, txn *entities.Transaction) error
	GetByID(ctx context.Context, txnID int64) (*entities.Transaction, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*entities.Transaction, error)
	UpdateStatus(ctx context.Context, txnID int64, status entities.TransactionStatus, errorMessage *string, completedAt *time.Time) error
}

// AccountReader resolves customer accounts.
type AccountReader interface {
	GetByID(ctx context.Context, accountID int64) (*entities.Account, error)
}

// Ledger is the slice of the bookkeeping service this package needs.
type Ledger interface {
	CreateAccount(ctx context.Context, req *entities.CreateLedgerAccountRequest) (*entities.LedgerAccount, error)
	GetAccountByCode(ctx context.Context, code string) (*entities.LedgerAccount, error)
	PostEntries(ctx context.Context, req *entities.PostEntriesRequest) ([]*entities.LedgerEntry, error)
	GetEntriesByTransaction(ctx context.Context, txnID uuid.UUID) ([]*entities.LedgerEntry, error)
	GetBalance(ctx context.Context, accountID int64) (*entities.LedgerBalance, error)
}

// Recorder appends audit events.
type Recorder interface {
	Record(ctx context.Context, eventType string, format string, args ...any)
}

// Service implements the business transaction operations.
type Service struct {
	transactions Repository
	accounts     AccountReader
	ledger       Ledger
	audit        Recorder
	log          *logger.Logger
}

// NewService creates the transaction service.
func NewService(transactions Repository, accounts AccountReader, ledger Ledger, audit Recorder, log *logger.Logger) *Service {
	return &Service{
		transactions: transactions,
		accounts:     accounts,
		ledger:       ledger,
		audit:        audit,
		log:          log,
	}
}

// GetTransaction retrieves a transaction by id.
func (s *Service) GetTransaction(ctx context.Context, txnID int64) (*entities.Transaction, error) {
	return s.transactions.GetByID(ctx, txnID)
}

// Deposit credits a customer account with cash received by the bank.
// Ledger view: DEBIT bank cash (asset up), CREDIT customer (liability up).
func (s *Service) Deposit(ctx context.Context, req *entities.DepositRequest) (*entities.Transaction, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation("%v", err)
	}

	if prior, err := s.priorTransaction(ctx, req.IdempotencyKey); prior != nil || err != nil {
		return prior, err
	}

	account, err := s.accounts.GetByID(ctx, req.AccountID)
	if err != nil {
		return nil, err
	}

	txn := &entities.Transaction{
		IdempotencyKey:       req.IdempotencyKey,
		TransactionType:      entities.TransactionTypeDeposit,
		Status:               entities.TransactionStatusPending,
		DestinationAccountID: &account.ID,
		Amount:               req.Amount,
		Currency:             req.Currency,
		Description:          req.Description,
	}

	return s.execute(ctx, txn, func(ctx context.Context, ledgerTxnID uuid.UUID) error {
		if err := s.requireActive(account); err != nil {
			return err
		}
		if err := s.requireCurrency(account, req.Currency); err != nil {
			return err
		}

		cash, err := s.getOrCreateCashAccount(ctx, req.Currency)
		if err != nil {
			return err
		}

		_, err = s.ledger.PostEntries(ctx, &entities.PostEntriesRequest{
			TransactionID: ledgerTxnID,
			Currency:      req.Currency,
			Entries: []entities.PostEntryRequest{
				{AccountID: cash.ID, EntryType: entities.EntryTypeDebit, Amount: req.Amount, Description: req.Description},
				{AccountID: account.LedgerAccountID, EntryType: entities.EntryTypeCredit, Amount: req.Amount, Description: req.Description},
			},
		})
		return err
	})
}

// Withdraw debits a customer account for cash paid out by the bank.
// Ledger view: DEBIT customer (liability down), CREDIT bank cash (asset down).
func (s *Service) Withdraw(ctx context.Context, req *entities.WithdrawalRequest) (*entities.Transaction, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation("%v", err)
	}

	if prior, err := s.priorTransaction(ctx, req.IdempotencyKey); prior != nil || err != nil {
		return prior, err
	}

	account, err := s.accounts.GetByID(ctx, req.AccountID)
	if err != nil {
		return nil, err
	}

	txn := &entities.Transaction{
		IdempotencyKey:  req.IdempotencyKey,
		TransactionType: entities.TransactionTypeWithdrawal,
		Status:          entities.TransactionStatusPending,
		SourceAccountID: &account.ID,
		Amount:          req.Amount,
		Currency:        req.Currency,
		Description:     req.Description,
	}

	return s.execute(ctx, txn, func(ctx context.Context, ledgerTxnID uuid.UUID) error {
		if err := s.requireActive(account); err != nil {
			return err
		}
		if err := s.requireCurrency(account, req.Currency); err != nil {
			return err
		}
		if err := s.requireFunds(ctx, account, req.Amount); err != nil {
			return err
		}

		cash, err := s.getOrCreateCashAccount(ctx, req.Currency)
		if err != nil {
			return err
		}

		_, err = s.ledger.PostEntries(ctx, &entities.PostEntriesRequest{
			TransactionID: ledgerTxnID,
			Currency:      req.Currency,
			Entries: []entities.PostEntryRequest{
				{AccountID: account.LedgerAccountID, EntryType: entities.EntryTypeDebit, Amount: req.Amount, Description: req.Description},
				{AccountID: cash.ID, EntryType: entities.EntryTypeCredit, Amount: req.Amount, Description: req.Description},
			},
		})
		return err
	})
}

// Transfer moves money between two customer accounts.
// Ledger view: DEBIT source (liability down), CREDIT destination (liability up).
func (s *Service) Transfer(ctx context.Context, req *entities.TransferRequest) (*entities.Transaction, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation("%v", err)
	}
	if req.SourceAccountID == req.DestinationAccountID {
		return nil, apperrors.SameAccount("source and destination accounts must differ")
	}

	if prior, err := s.priorTransaction(ctx, req.IdempotencyKey); prior != nil || err != nil {
		return prior, err
	}

	source, err := s.accounts.GetByID(ctx, req.SourceAccountID)
	if err != nil {
		return nil, err
	}
	destination, err := s.accounts.GetByID(ctx, req.DestinationAccountID)
	if err != nil {
		return nil, err
	}

	txn := &entities.Transaction{
		IdempotencyKey:       req.IdempotencyKey,
		TransactionType:      entities.TransactionTypeTransfer,
		Status:               entities.TransactionStatusPending,
		SourceAccountID:      &source.ID,
		DestinationAccountID: &destination.ID,
		Amount:               req.Amount,
		Currency:             req.Currency,
		Description:          req.Description,
	}

	return s.execute(ctx, txn, func(ctx context.Context, ledgerTxnID uuid.UUID) error {
		if err := s.requireActive(source); err != nil {
			return err
		}
		if err := s.requireActive(destination); err != nil {
			return err
		}
		if err := s.requireCurrency(source, req.Currency); err != nil {
			return err
		}
		if err := s.requireCurrency(destination, req.Currency); err != nil {
			return err
		}
		if err := s.requireFunds(ctx, source, req.Amount); err != nil {
			return err
		}

		_, err := s.ledger.PostEntries(ctx, &entities.PostEntriesRequest{
			TransactionID: ledgerTxnID,
			Currency:      req.Currency,
			Entries: []entities.PostEntryRequest{
				{AccountID: source.LedgerAccountID, EntryType: entities.EntryTypeDebit, Amount: req.Amount, Description: req.Description},
				{AccountID: destination.LedgerAccountID, EntryType: entities.EntryTypeCredit, Amount: req.Amount, Description: req.Description},
			},
		})
		return err
	})
}

// Reverse undoes a completed transaction by posting mirrored entries.
//
// The original entries are never touched; each one is replayed with its
// direction flipped under a fresh ledger transaction id. The original
// row moves to REVERSED and the reversal row references it. Only
// COMPLETED transactions can be reversed, and only once.
func (s *Service) Reverse(ctx context.Context, originalID int64, req *entities.ReverseRequest) (*entities.Transaction, error) {
	if prior, err := s.priorTransaction(ctx, req.IdempotencyKey); prior != nil || err != nil {
		return prior, err
	}

	original, err := s.transactions.GetByID(ctx, originalID)
	if err != nil {
		return nil, err
	}
	if original.Status != entities.TransactionStatusCompleted {
		return nil, apperrors.NotReversible(
			"transaction %d is %s; only COMPLETED transactions can be reversed", original.ID, original.Status)
	}
	if original.LedgerTransactionID == nil {
		return nil, apperrors.NotReversible("transaction %d has no ledger posting", original.ID)
	}

	txn := &entities.Transaction{
		IdempotencyKey:         req.IdempotencyKey,
		TransactionType:        entities.TransactionTypeReversal,
		Status:                 entities.TransactionStatusPending,
		SourceAccountID:        original.DestinationAccountID,
		DestinationAccountID:   original.SourceAccountID,
		Amount:                 original.Amount,
		Currency:               original.Currency,
		Description:            "Reversal: " + original.Description,
		ReferenceTransactionID: &original.ID,
	}

	return s.execute(ctx, txn, func(ctx context.Context, ledgerTxnID uuid.UUID) error {
		originalEntries, err := s.ledger.GetEntriesByTransaction(ctx, *original.LedgerTransactionID)
		if err != nil {
			return err
		}

		mirrored := make([]entities.PostEntryRequest, 0, len(originalEntries))
		for _, e := range originalEntries {
			mirrored = append(mirrored, entities.PostEntryRequest{
				AccountID:   e.AccountID,
				EntryType:   e.EntryType.Opposite(),
				Amount:      e.Amount,
				Description: "Reversal: " + e.Description,
			})
		}

		if _, err := s.ledger.PostEntries(ctx, &entities.PostEntriesRequest{
			TransactionID: ledgerTxnID,
			Currency:      original.Currency,
			Entries:       mirrored,
		}); err != nil {
			return err
		}

		return s.transactions.UpdateStatus(ctx, original.ID,
			entities.TransactionStatusReversed, nil, original.CompletedAt)
	})
}

// priorTransaction is the idempotency probe. A key that has been used
// before returns the prior transaction regardless of its outcome: a
// FAILED attempt is a final answer for that key, not an invitation to
// retry with the same key.
func (s *Service) priorTransaction(ctx context.Context, key string) (*entities.Transaction, error) {
	prior, err := s.transactions.GetByIdempotencyKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if prior != nil {
		s.log.Info("idempotency key seen before, returning prior transaction",
			"idempotency_key", key,
			"transaction_id", prior.ID,
			"status", prior.Status,
		)
		return prior, nil
	}
	return nil, nil
}

// execute runs the common transaction skeleton: persist the row, run
// the posting logic, and settle the final status. A domain failure
// marks the row FAILED with its message and returns the row together
// with the error.
func (s *Service) execute(ctx context.Context, txn *entities.Transaction, post func(ctx context.Context, ledgerTxnID uuid.UUID) error) (*entities.Transaction, error) {
	ledgerTxnID := uuid.New()
	txn.LedgerTransactionID = &ledgerTxnID

	if err := s.transactions.Create(ctx, txn); err != nil {
		return nil, err
	}

	if err := s.transactions.UpdateStatus(ctx, txn.ID, entities.TransactionStatusProcessing, nil, nil); err != nil {
		return nil, err
	}
	txn.Status = entities.TransactionStatusProcessing

	if err := post(ctx, ledgerTxnID); err != nil {
		msg := err.Error()
		if updateErr := s.transactions.UpdateStatus(ctx, txn.ID, entities.TransactionStatusFailed, &msg, nil); updateErr != nil {
			return nil, updateErr
		}
		txn.Status = entities.TransactionStatusFailed
		txn.ErrorMessage = &msg

		s.log.Warn("transaction failed",
			"transaction_id", txn.ID,
			"type", txn.TransactionType,
			"error", msg,
		)
		metrics.TransactionsTotal.WithLabelValues(string(txn.TransactionType), string(txn.Status)).Inc()
		return txn, err
	}

	now := time.Now().UTC()
	if err := s.transactions.UpdateStatus(ctx, txn.ID, entities.TransactionStatusCompleted, nil, &now); err != nil {
		return nil, err
	}
	txn.Status = entities.TransactionStatusCompleted
	txn.CompletedAt = &now

	s.log.Info("transaction completed",
		"transaction_id", txn.ID,
		"type", txn.TransactionType,
		"amount", txn.Amount.String(),
		"currency", txn.Currency,
	)
	s.audit.Record(ctx, "transaction.completed",
		"%s transaction %d for %s %s completed", txn.TransactionType, txn.ID, txn.Amount, txn.Currency)
	metrics.TransactionsTotal.WithLabelValues(string(txn.TransactionType), string(txn.Status)).Inc()
	return txn, nil
}

func (s *Service) requireActive(account *entities.Account) error {
	if account.Status != entities.AccountStatusActive {
		return apperrors.AccountInactive("account %d is %s", account.ID, account.Status)
	}
	return nil
}

func (s *Service) requireCurrency(account *entities.Account, currency string) error {
	if account.Currency != currency {
		return apperrors.CurrencyMismatch(
			"account %d holds %s, not %s", account.ID, account.Currency, currency)
	}
	return nil
}

func (s *Service) requireFunds(ctx context.Context, account *entities.Account, amount decimal.Decimal) error {
	balance, err := s.ledger.GetBalance(ctx, account.LedgerAccountID)
	if err != nil {
		return err
	}
	if balance.Balance.LessThan(amount) {
		return apperrors.InsufficientFunds(
			"account %d has %s %s, cannot move %s", account.ID, balance.Balance, account.Currency, amount)
	}
	return nil
}

// getOrCreateCashAccount resolves the bank cash account, creating it on
// first use. A concurrent first use loses the create race and re-reads.
func (s *Service) getOrCreateCashAccount(ctx context.Context, currency string) (*entities.LedgerAccount, error) {
	cash, err := s.ledger.GetAccountByCode(ctx, cashAccountCode)
	if err != nil {
		return nil, err
	}
	if cash != nil {
		return cash, nil
	}

	cash, err = s.ledger.CreateAccount(ctx, &entities.CreateLedgerAccountRequest{
		Code:     cashAccountCode,
		Name:     "Bank Cash",
		Category: entities.CategoryAsset,
		Currency: currency,
	})
	if err == nil {
		return cash, nil
	}
	if apperrors.Is(err, apperrors.KindConflict) {
		return s.ledger.GetAccountByCode(ctx, cashAccountCode)
	}
	return nil, err
}
