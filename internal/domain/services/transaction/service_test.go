package transaction

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corebank-service/corebank_service/internal/domain/apperrors"
	"github.com/corebank-service/corebank_service/internal/domain/entities"
	"github.com/corebank-service/corebank_service/pkg/logger"
)

type fakeTransactionRepo struct {
	byID   map[int64]*entities.Transaction
	byKey  map[string]*entities.Transaction
	nextID int64
}

func newFakeTransactionRepo() *fakeTransactionRepo {
	return &fakeTransactionRepo{
		byID:  make(map[int64]*entities.Transaction),
		byKey: make(map[string]*entities.Transaction),
	}
}

func (f *fakeTransactionRepo) Create(_ context.Context, txn *entities.Transaction) error {
	if _, exists := f.byKey[txn.IdempotencyKey]; exists {
		return apperrors.Conflict("transaction with idempotency key '%s' already exists", txn.IdempotencyKey)
	}
	f.nextID++
	txn.ID = f.nextID
	txn.CreatedAt = time.Now().UTC()
	f.byID[txn.ID] = txn
	f.byKey[txn.IdempotencyKey] = txn
	return nil
}

func (f *fakeTransactionRepo) GetByID(_ context.Context, txnID int64) (*entities.Transaction, error) {
	txn, ok := f.byID[txnID]
	if !ok {
		return nil, apperrors.NotFound("transaction %d not found", txnID)
	}
	return txn, nil
}

func (f *fakeTransactionRepo) GetByIdempotencyKey(_ context.Context, key string) (*entities.Transaction, error) {
	return f.byKey[key], nil
}

func (f *fakeTransactionRepo) UpdateStatus(_ context.Context, txnID int64, status entities.TransactionStatus, errorMessage *string, completedAt *time.Time) error {
	txn, ok := f.byID[txnID]
	if !ok {
		return apperrors.NotFound("transaction %d not found", txnID)
	}
	txn.Status = status
	txn.ErrorMessage = errorMessage
	txn.CompletedAt = completedAt
	return nil
}

type fakeAccountReader struct {
	accounts map[int64]*entities.Account
}

func (f *fakeAccountReader) GetByID(_ context.Context, accountID int64) (*entities.Account, error) {
	a, ok := f.accounts[accountID]
	if !ok {
		return nil, apperrors.NotFound("account %d not found", accountID)
	}
	return a, nil
}

// fakeLedger is an in-memory double-entry ledger good enough for the
// orchestration tests: it enforces existence, activity, currency and
// balance the way the real ledger service does.
type fakeLedger struct {
	accounts map[int64]*entities.LedgerAccount
	entries  []*entities.LedgerEntry
	nextID   int64
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{accounts: make(map[int64]*entities.LedgerAccount)}
}

func (f *fakeLedger) addAccount(category entities.AccountCategory, currency string, code string) *entities.LedgerAccount {
	f.nextID++
	account := &entities.LedgerAccount{
		ID:       f.nextID,
		Code:     code,
		Name:     code,
		Category: category,
		Currency: currency,
		IsActive: true,
	}
	f.accounts[account.ID] = account
	return account
}

func (f *fakeLedger) CreateAccount(_ context.Context, req *entities.CreateLedgerAccountRequest) (*entities.LedgerAccount, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation("%v", err)
	}
	for _, a := range f.accounts {
		if a.Code == req.Code {
			return nil, apperrors.Conflict("account with code '%s' already exists", req.Code)
		}
	}
	account := f.addAccount(req.Category, req.Currency, req.Code)
	account.Name = req.Name
	return account, nil
}

func (f *fakeLedger) GetAccountByCode(_ context.Context, code string) (*entities.LedgerAccount, error) {
	for _, a := range f.accounts {
		if a.Code == code {
			return a, nil
		}
	}
	return nil, nil
}

func (f *fakeLedger) PostEntries(_ context.Context, req *entities.PostEntriesRequest) ([]*entities.LedgerEntry, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation("%v", err)
	}

	var existing []*entities.LedgerEntry
	for _, e := range f.entries {
		if e.TransactionID == req.TransactionID {
			existing = append(existing, e)
		}
	}
	if len(existing) > 0 {
		return existing, nil
	}

	for _, e := range req.Entries {
		account, ok := f.accounts[e.AccountID]
		if !ok {
			return nil, apperrors.NotFound("ledger account %d not found", e.AccountID)
		}
		if !account.IsActive {
			return nil, apperrors.AccountInactive("ledger account %d is inactive", account.ID)
		}
		if account.Currency != req.Currency {
			return nil, apperrors.CurrencyMismatch(
				"ledger account %d currency %s does not match posting currency %s",
				account.ID, account.Currency, req.Currency)
		}
	}
	if !req.DebitTotal().Equal(req.CreditTotal()) {
		return nil, apperrors.Unbalanced("posting is unbalanced")
	}

	var posted []*entities.LedgerEntry
	for _, e := range req.Entries {
		f.nextID++
		entry := &entities.LedgerEntry{
			ID:            f.nextID,
			TransactionID: req.TransactionID,
			AccountID:     e.AccountID,
			EntryType:     e.EntryType,
			Amount:        e.Amount,
			Currency:      req.Currency,
			Description:   e.Description,
		}
		f.entries = append(f.entries, entry)
		posted = append(posted, entry)
	}
	return posted, nil
}

func (f *fakeLedger) GetEntriesByTransaction(_ context.Context, txnID uuid.UUID) ([]*entities.LedgerEntry, error) {
	var out []*entities.LedgerEntry
	for _, e := range f.entries {
		if e.TransactionID == txnID {
			out = append(out, e)
		}
	}
	if len(out) == 0 {
		return nil, apperrors.NotFound("no entries for transaction %s", txnID)
	}
	return out, nil
}

func (f *fakeLedger) GetBalance(_ context.Context, accountID int64) (*entities.LedgerBalance, error) {
	account, ok := f.accounts[accountID]
	if !ok {
		return nil, apperrors.NotFound("ledger account %d not found", accountID)
	}
	debits, credits := decimal.Zero, decimal.Zero
	for _, e := range f.entries {
		if e.AccountID != accountID {
			continue
		}
		if e.EntryType == entities.EntryTypeDebit {
			debits = debits.Add(e.Amount)
		} else {
			credits = credits.Add(e.Amount)
		}
	}
	balance := credits.Sub(debits)
	if account.Category.IsDebitNormal() {
		balance = debits.Sub(credits)
	}
	return &entities.LedgerBalance{
		AccountID: account.ID, AccountCode: account.Code,
		Category: account.Category, Balance: balance, Currency: account.Currency,
	}, nil
}

type fakeRecorder struct{}

func (fakeRecorder) Record(context.Context, string, string, ...any) {}

type fixture struct {
	svc          *Service
	transactions *fakeTransactionRepo
	accounts     *fakeAccountReader
	ledger       *fakeLedger
	nextAccount  int64
}

func newFixture() *fixture {
	transactions := newFakeTransactionRepo()
	accounts := &fakeAccountReader{accounts: make(map[int64]*entities.Account)}
	ledger := newFakeLedger()
	svc := NewService(transactions, accounts, ledger, fakeRecorder{}, logger.New("error", "test"))
	return &fixture{svc: svc, transactions: transactions, accounts: accounts, ledger: ledger}
}

// customerAccount registers an ACTIVE customer account with its paired
// liability ledger account.
func (fx *fixture) customerAccount(currency string, status entities.AccountStatus) *entities.Account {
	fx.nextAccount++
	ledgerAccount := fx.ledger.addAccount(entities.CategoryLiability, currency,
		fmt.Sprintf("CUST-CHECKING-%05d", fx.nextAccount))
	account := &entities.Account{
		ID:              fx.nextAccount,
		CustomerID:      fx.nextAccount,
		LedgerAccountID: ledgerAccount.ID,
		ProductType:     entities.ProductChecking,
		Status:          status,
		Currency:        currency,
	}
	fx.accounts.accounts[account.ID] = account
	return account
}

func (fx *fixture) deposit(t *testing.T, account *entities.Account, amount, key string) *entities.Transaction {
	t.Helper()
	txn, err := fx.svc.Deposit(context.Background(), &entities.DepositRequest{
		IdempotencyKey: key,
		AccountID:      account.ID,
		Amount:         decimal.RequireFromString(amount),
		Currency:       account.Currency,
		Description:    "cash deposit",
	})
	require.NoError(t, err)
	return txn
}

func (fx *fixture) balance(t *testing.T, account *entities.Account) decimal.Decimal {
	t.Helper()
	b, err := fx.ledger.GetBalance(context.Background(), account.LedgerAccountID)
	require.NoError(t, err)
	return b.Balance
}

func TestDeposit(t *testing.T) {
	ctx := context.Background()

	t.Run("completes and credits the account", func(t *testing.T) {
		fx := newFixture()
		account := fx.customerAccount("USD", entities.AccountStatusActive)

		txn := fx.deposit(t, account, "100.00", "dep-1")
		assert.Equal(t, entities.TransactionStatusCompleted, txn.Status)
		assert.NotNil(t, txn.CompletedAt)
		assert.Nil(t, txn.ErrorMessage)
		require.NotNil(t, txn.DestinationAccountID)
		assert.Equal(t, account.ID, *txn.DestinationAccountID)

		assert.True(t, fx.balance(t, account).Equal(decimal.RequireFromString("100.00")))
	})

	t.Run("lazily creates the bank cash account", func(t *testing.T) {
		fx := newFixture()
		account := fx.customerAccount("USD", entities.AccountStatusActive)
		fx.deposit(t, account, "50.00", "dep-1")

		cash, err := fx.ledger.GetAccountByCode(ctx, "BANK-CASH-001")
		require.NoError(t, err)
		require.NotNil(t, cash)
		assert.Equal(t, entities.CategoryAsset, cash.Category)
		assert.Equal(t, "USD", cash.Currency)

		// cash is an asset, so deposits increase it
		b, err := fx.ledger.GetBalance(ctx, cash.ID)
		require.NoError(t, err)
		assert.True(t, b.Balance.Equal(decimal.RequireFromString("50.00")))
	})

	t.Run("idempotency key replay returns the prior transaction", func(t *testing.T) {
		fx := newFixture()
		account := fx.customerAccount("USD", entities.AccountStatusActive)

		first := fx.deposit(t, account, "100.00", "dep-1")
		second := fx.deposit(t, account, "100.00", "dep-1")
		assert.Equal(t, first.ID, second.ID)
		assert.True(t, fx.balance(t, account).Equal(decimal.RequireFromString("100.00")))
	})

	t.Run("frozen account fails and keeps the FAILED row", func(t *testing.T) {
		fx := newFixture()
		account := fx.customerAccount("USD", entities.AccountStatusFrozen)

		txn, err := fx.svc.Deposit(ctx, &entities.DepositRequest{
			IdempotencyKey: "dep-frozen",
			AccountID:      account.ID,
			Amount:         decimal.NewFromInt(10),
			Currency:       "USD",
			Description:    "cash deposit",
		})
		assert.True(t, apperrors.Is(err, apperrors.KindAccountInactive))
		require.NotNil(t, txn)
		assert.Equal(t, entities.TransactionStatusFailed, txn.Status)
		require.NotNil(t, txn.ErrorMessage)
		assert.True(t, fx.balance(t, account).IsZero())

		// the same key now returns the failed transaction without error
		replay, err := fx.svc.Deposit(ctx, &entities.DepositRequest{
			IdempotencyKey: "dep-frozen",
			AccountID:      account.ID,
			Amount:         decimal.NewFromInt(10),
			Currency:       "USD",
			Description:    "cash deposit",
		})
		require.NoError(t, err)
		assert.Equal(t, txn.ID, replay.ID)
		assert.Equal(t, entities.TransactionStatusFailed, replay.Status)
	})

	t.Run("unknown account leaves no row behind", func(t *testing.T) {
		fx := newFixture()
		_, err := fx.svc.Deposit(ctx, &entities.DepositRequest{
			IdempotencyKey: "dep-missing",
			AccountID:      999,
			Amount:         decimal.NewFromInt(10),
			Currency:       "USD",
			Description:    "cash deposit",
		})
		assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
		assert.Empty(t, fx.transactions.byID)
	})
}

func TestWithdraw(t *testing.T) {
	ctx := context.Background()

	t.Run("completes and debits the account", func(t *testing.T) {
		fx := newFixture()
		account := fx.customerAccount("USD", entities.AccountStatusActive)
		fx.deposit(t, account, "100.00", "dep-1")

		txn, err := fx.svc.Withdraw(ctx, &entities.WithdrawalRequest{
			IdempotencyKey: "wd-1",
			AccountID:      account.ID,
			Amount:         decimal.RequireFromString("40.00"),
			Currency:       "USD",
			Description:    "atm withdrawal",
		})
		require.NoError(t, err)
		assert.Equal(t, entities.TransactionStatusCompleted, txn.Status)
		assert.True(t, fx.balance(t, account).Equal(decimal.RequireFromString("60.00")))
	})

	t.Run("insufficient funds fails with a FAILED row", func(t *testing.T) {
		fx := newFixture()
		account := fx.customerAccount("USD", entities.AccountStatusActive)
		fx.deposit(t, account, "30.00", "dep-1")

		txn, err := fx.svc.Withdraw(ctx, &entities.WithdrawalRequest{
			IdempotencyKey: "wd-over",
			AccountID:      account.ID,
			Amount:         decimal.RequireFromString("30.01"),
			Currency:       "USD",
			Description:    "atm withdrawal",
		})
		assert.True(t, apperrors.Is(err, apperrors.KindInsufficientFunds))
		require.NotNil(t, txn)
		assert.Equal(t, entities.TransactionStatusFailed, txn.Status)
		assert.True(t, fx.balance(t, account).Equal(decimal.RequireFromString("30.00")))
	})

	t.Run("exact balance withdrawal is allowed", func(t *testing.T) {
		fx := newFixture()
		account := fx.customerAccount("USD", entities.AccountStatusActive)
		fx.deposit(t, account, "30.00", "dep-1")

		_, err := fx.svc.Withdraw(ctx, &entities.WithdrawalRequest{
			IdempotencyKey: "wd-exact",
			AccountID:      account.ID,
			Amount:         decimal.RequireFromString("30.00"),
			Currency:       "USD",
			Description:    "atm withdrawal",
		})
		require.NoError(t, err)
		assert.True(t, fx.balance(t, account).IsZero())
	})

	t.Run("currency mismatch fails", func(t *testing.T) {
		fx := newFixture()
		account := fx.customerAccount("USD", entities.AccountStatusActive)
		fx.deposit(t, account, "30.00", "dep-1")

		txn, err := fx.svc.Withdraw(ctx, &entities.WithdrawalRequest{
			IdempotencyKey: "wd-eur",
			AccountID:      account.ID,
			Amount:         decimal.NewFromInt(10),
			Currency:       "EUR",
			Description:    "atm withdrawal",
		})
		assert.True(t, apperrors.Is(err, apperrors.KindCurrencyMismatch))
		require.NotNil(t, txn)
		assert.Equal(t, entities.TransactionStatusFailed, txn.Status)
	})
}

func TestTransfer(t *testing.T) {
	ctx := context.Background()

	t.Run("moves money between accounts", func(t *testing.T) {
		fx := newFixture()
		source := fx.customerAccount("USD", entities.AccountStatusActive)
		destination := fx.customerAccount("USD", entities.AccountStatusActive)
		fx.deposit(t, source, "100.00", "dep-1")

		txn, err := fx.svc.Transfer(ctx, &entities.TransferRequest{
			IdempotencyKey:       "tr-1",
			SourceAccountID:      source.ID,
			DestinationAccountID: destination.ID,
			Amount:               decimal.RequireFromString("25.00"),
			Currency:             "USD",
			Description:          "rent",
		})
		require.NoError(t, err)
		assert.Equal(t, entities.TransactionStatusCompleted, txn.Status)
		assert.True(t, fx.balance(t, source).Equal(decimal.RequireFromString("75.00")))
		assert.True(t, fx.balance(t, destination).Equal(decimal.RequireFromString("25.00")))
	})

	t.Run("same account rejected before any row exists", func(t *testing.T) {
		fx := newFixture()
		account := fx.customerAccount("USD", entities.AccountStatusActive)

		_, err := fx.svc.Transfer(ctx, &entities.TransferRequest{
			IdempotencyKey:       "tr-self",
			SourceAccountID:      account.ID,
			DestinationAccountID: account.ID,
			Amount:               decimal.NewFromInt(10),
			Currency:             "USD",
			Description:          "to myself",
		})
		assert.True(t, apperrors.Is(err, apperrors.KindSameAccount))
		assert.Empty(t, fx.transactions.byID)
	})

	t.Run("insufficient funds on the source fails", func(t *testing.T) {
		fx := newFixture()
		source := fx.customerAccount("USD", entities.AccountStatusActive)
		destination := fx.customerAccount("USD", entities.AccountStatusActive)

		txn, err := fx.svc.Transfer(ctx, &entities.TransferRequest{
			IdempotencyKey:       "tr-broke",
			SourceAccountID:      source.ID,
			DestinationAccountID: destination.ID,
			Amount:               decimal.NewFromInt(10),
			Currency:             "USD",
			Description:          "rent",
		})
		assert.True(t, apperrors.Is(err, apperrors.KindInsufficientFunds))
		require.NotNil(t, txn)
		assert.Equal(t, entities.TransactionStatusFailed, txn.Status)
	})

	t.Run("inactive destination fails", func(t *testing.T) {
		fx := newFixture()
		source := fx.customerAccount("USD", entities.AccountStatusActive)
		destination := fx.customerAccount("USD", entities.AccountStatusBlocked)
		fx.deposit(t, source, "100.00", "dep-1")

		_, err := fx.svc.Transfer(ctx, &entities.TransferRequest{
			IdempotencyKey:       "tr-blocked",
			SourceAccountID:      source.ID,
			DestinationAccountID: destination.ID,
			Amount:               decimal.NewFromInt(10),
			Currency:             "USD",
			Description:          "rent",
		})
		assert.True(t, apperrors.Is(err, apperrors.KindAccountInactive))
	})
}

func TestReverse(t *testing.T) {
	ctx := context.Background()

	t.Run("mirrors the original posting", func(t *testing.T) {
		fx := newFixture()
		account := fx.customerAccount("USD", entities.AccountStatusActive)
		original := fx.deposit(t, account, "100.00", "dep-1")

		reversal, err := fx.svc.Reverse(ctx, original.ID, &entities.ReverseRequest{IdempotencyKey: "rev-1"})
		require.NoError(t, err)
		assert.Equal(t, entities.TransactionTypeReversal, reversal.TransactionType)
		assert.Equal(t, entities.TransactionStatusCompleted, reversal.Status)
		assert.Equal(t, "Reversal: cash deposit", reversal.Description)
		require.NotNil(t, reversal.ReferenceTransactionID)
		assert.Equal(t, original.ID, *reversal.ReferenceTransactionID)

		updated, err := fx.svc.GetTransaction(ctx, original.ID)
		require.NoError(t, err)
		assert.Equal(t, entities.TransactionStatusReversed, updated.Status)

		assert.True(t, fx.balance(t, account).IsZero())

		entries, err := fx.ledger.GetEntriesByTransaction(ctx, *reversal.LedgerTransactionID)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		for _, e := range entries {
			assert.Contains(t, e.Description, "Reversal: ")
		}
	})

	t.Run("only completed transactions are reversible", func(t *testing.T) {
		fx := newFixture()
		account := fx.customerAccount("USD", entities.AccountStatusFrozen)

		failed, err := fx.svc.Deposit(ctx, &entities.DepositRequest{
			IdempotencyKey: "dep-frozen",
			AccountID:      account.ID,
			Amount:         decimal.NewFromInt(10),
			Currency:       "USD",
			Description:    "cash deposit",
		})
		require.Error(t, err)
		require.NotNil(t, failed)

		_, err = fx.svc.Reverse(ctx, failed.ID, &entities.ReverseRequest{IdempotencyKey: "rev-failed"})
		assert.True(t, apperrors.Is(err, apperrors.KindNotReversible))
	})

	t.Run("a reversed transaction cannot be reversed again", func(t *testing.T) {
		fx := newFixture()
		account := fx.customerAccount("USD", entities.AccountStatusActive)
		original := fx.deposit(t, account, "100.00", "dep-1")

		_, err := fx.svc.Reverse(ctx, original.ID, &entities.ReverseRequest{IdempotencyKey: "rev-1"})
		require.NoError(t, err)

		_, err = fx.svc.Reverse(ctx, original.ID, &entities.ReverseRequest{IdempotencyKey: "rev-2"})
		assert.True(t, apperrors.Is(err, apperrors.KindNotReversible))
	})

	t.Run("reversal replay is idempotent", func(t *testing.T) {
		fx := newFixture()
		account := fx.customerAccount("USD", entities.AccountStatusActive)
		original := fx.deposit(t, account, "100.00", "dep-1")

		first, err := fx.svc.Reverse(ctx, original.ID, &entities.ReverseRequest{IdempotencyKey: "rev-1"})
		require.NoError(t, err)
		second, err := fx.svc.Reverse(ctx, original.ID, &entities.ReverseRequest{IdempotencyKey: "rev-1"})
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
		assert.True(t, fx.balance(t, account).IsZero())
	})

	t.Run("unknown transaction", func(t *testing.T) {
		fx := newFixture()
		_, err := fx.svc.Reverse(ctx, 999, &entities.ReverseRequest{IdempotencyKey: "rev-x"})
		assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
	})
}
