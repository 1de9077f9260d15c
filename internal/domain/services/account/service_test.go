package account

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corebank-service/corebank_service/internal/domain/apperrors"
	"github.com/corebank-service/corebank_service/internal/domain/entities"
	"github.com/corebank-service/corebank_service/pkg/logger"
)

type fakeCustomerRepo struct {
	customers map[int64]*entities.Customer
	nextID    int64
}

func (f *fakeCustomerRepo) Create(_ context.Context, customer *entities.Customer) error {
	f.nextID++
	customer.ID = f.nextID
	f.customers[customer.ID] = customer
	return nil
}

func (f *fakeCustomerRepo) GetByID(_ context.Context, customerID int64) (*entities.Customer, error) {
	c, ok := f.customers[customerID]
	if !ok {
		return nil, apperrors.NotFound("customer %d not found", customerID)
	}
	return c, nil
}

func (f *fakeCustomerRepo) GetByEmail(_ context.Context, email string) (*entities.Customer, error) {
	for _, c := range f.customers {
		if c.Email == email {
			return c, nil
		}
	}
	return nil, nil
}

type fakeAccountRepo struct {
	accounts map[int64]*entities.Account
	nextID   int64
}

func (f *fakeAccountRepo) Create(_ context.Context, account *entities.Account) error {
	f.nextID++
	account.ID = f.nextID
	f.accounts[account.ID] = account
	return nil
}

func (f *fakeAccountRepo) GetByID(_ context.Context, accountID int64) (*entities.Account, error) {
	a, ok := f.accounts[accountID]
	if !ok {
		return nil, apperrors.NotFound("account %d not found", accountID)
	}
	return a, nil
}

func (f *fakeAccountRepo) GetByCustomerID(_ context.Context, customerID int64) ([]*entities.Account, error) {
	var out []*entities.Account
	for _, a := range f.accounts {
		if a.CustomerID == customerID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAccountRepo) UpdateStatus(_ context.Context, account *entities.Account) error {
	if _, ok := f.accounts[account.ID]; !ok {
		return apperrors.NotFound("account %d not found", account.ID)
	}
	f.accounts[account.ID] = account
	return nil
}

type fakeLedger struct {
	accounts map[int64]*entities.LedgerAccount
	balances map[int64]decimal.Decimal
	nextID   int64
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
	f.nextID++
	account := &entities.LedgerAccount{
		ID:       f.nextID,
		Code:     req.Code,
		Name:     req.Name,
		Category: req.Category,
		Currency: req.Currency,
		IsActive: true,
	}
	f.accounts[account.ID] = account
	return account, nil
}

func (f *fakeLedger) GetBalance(_ context.Context, accountID int64) (*entities.LedgerBalance, error) {
	account, ok := f.accounts[accountID]
	if !ok {
		return nil, apperrors.NotFound("ledger account %d not found", accountID)
	}
	return &entities.LedgerBalance{
		AccountID:   account.ID,
		AccountCode: account.Code,
		Category:    account.Category,
		Balance:     f.balances[accountID],
		Currency:    account.Currency,
	}, nil
}

func (f *fakeLedger) SetAccountActive(_ context.Context, accountID int64, active bool) error {
	account, ok := f.accounts[accountID]
	if !ok {
		return apperrors.NotFound("ledger account %d not found", accountID)
	}
	account.IsActive = active
	return nil
}

type fakeRecorder struct {
	events []string
}

func (f *fakeRecorder) Record(_ context.Context, eventType string, format string, args ...any) {
	f.events = append(f.events, eventType+": "+fmt.Sprintf(format, args...))
}

type fixture struct {
	svc    *Service
	ledger *fakeLedger
	audit  *fakeRecorder
}

func newFixture() *fixture {
	ledger := &fakeLedger{
		accounts: make(map[int64]*entities.LedgerAccount),
		balances: make(map[int64]decimal.Decimal),
	}
	audit := &fakeRecorder{}
	svc := NewService(
		&fakeCustomerRepo{customers: make(map[int64]*entities.Customer)},
		&fakeAccountRepo{accounts: make(map[int64]*entities.Account)},
		ledger,
		audit,
		logger.New("error", "test"),
	)
	return &fixture{svc: svc, ledger: ledger, audit: audit}
}

func (fx *fixture) createCustomer(t *testing.T, email string) *entities.Customer {
	t.Helper()
	customer, err := fx.svc.CreateCustomer(context.Background(), &entities.CreateCustomerRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     email,
	})
	require.NoError(t, err)
	return customer
}

func (fx *fixture) openAccount(t *testing.T, customerID int64) *entities.Account {
	t.Helper()
	account, err := fx.svc.OpenAccount(context.Background(), &entities.OpenAccountRequest{
		CustomerID:  customerID,
		ProductType: entities.ProductChecking,
		Currency:    "USD",
	})
	require.NoError(t, err)
	return account
}

func TestCreateCustomer(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	customer := fx.createCustomer(t, "ada@example.com")
	assert.Equal(t, entities.KYCStatusPending, customer.KYCStatus)
	assert.True(t, customer.IsActive)

	_, err := fx.svc.CreateCustomer(ctx, &entities.CreateCustomerRequest{
		FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com",
	})
	assert.True(t, apperrors.Is(err, apperrors.KindConflict))
}

func TestOpenAccount(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	customer := fx.createCustomer(t, "ada@example.com")

	account := fx.openAccount(t, customer.ID)
	assert.Equal(t, entities.AccountStatusPending, account.Status)
	assert.Nil(t, account.OpenedAt)

	ledgerAccount := fx.ledger.accounts[account.LedgerAccountID]
	require.NotNil(t, ledgerAccount)
	assert.Equal(t, fmt.Sprintf("CUST-CHECKING-%05d", customer.ID), ledgerAccount.Code)
	assert.Equal(t, "Ada Lovelace CHECKING", ledgerAccount.Name)
	assert.Equal(t, entities.CategoryLiability, ledgerAccount.Category)
	assert.Equal(t, "USD", ledgerAccount.Currency)

	t.Run("second account of same product conflicts", func(t *testing.T) {
		_, err := fx.svc.OpenAccount(ctx, &entities.OpenAccountRequest{
			CustomerID:  customer.ID,
			ProductType: entities.ProductChecking,
			Currency:    "USD",
		})
		assert.True(t, apperrors.Is(err, apperrors.KindConflict))
	})

	t.Run("different product is fine", func(t *testing.T) {
		_, err := fx.svc.OpenAccount(ctx, &entities.OpenAccountRequest{
			CustomerID:  customer.ID,
			ProductType: entities.ProductSavings,
			Currency:    "USD",
		})
		assert.NoError(t, err)
	})

	t.Run("unknown customer", func(t *testing.T) {
		_, err := fx.svc.OpenAccount(ctx, &entities.OpenAccountRequest{
			CustomerID:  999,
			ProductType: entities.ProductChecking,
			Currency:    "USD",
		})
		assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
	})
}

func TestChangeStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("activation stamps opened_at once", func(t *testing.T) {
		fx := newFixture()
		customer := fx.createCustomer(t, "ada@example.com")
		account := fx.openAccount(t, customer.ID)

		activated, err := fx.svc.ChangeStatus(ctx, account.ID, &entities.ChangeAccountStatusRequest{
			Status: entities.AccountStatusActive, Reason: "KYC passed",
		})
		require.NoError(t, err)
		require.NotNil(t, activated.OpenedAt)
		openedAt := *activated.OpenedAt

		_, err = fx.svc.ChangeStatus(ctx, account.ID, &entities.ChangeAccountStatusRequest{
			Status: entities.AccountStatusFrozen, Reason: "suspicious activity",
		})
		require.NoError(t, err)

		reactivated, err := fx.svc.ChangeStatus(ctx, account.ID, &entities.ChangeAccountStatusRequest{
			Status: entities.AccountStatusActive, Reason: "cleared",
		})
		require.NoError(t, err)
		require.NotNil(t, reactivated.OpenedAt)
		assert.Equal(t, openedAt, *reactivated.OpenedAt)
	})

	t.Run("illegal transition rejected", func(t *testing.T) {
		fx := newFixture()
		customer := fx.createCustomer(t, "ada@example.com")
		account := fx.openAccount(t, customer.ID)

		_, err := fx.svc.ChangeStatus(ctx, account.ID, &entities.ChangeAccountStatusRequest{
			Status: entities.AccountStatusFrozen, Reason: "nope",
		})
		assert.True(t, apperrors.Is(err, apperrors.KindIllegalTransition))
	})

	t.Run("closing deactivates the ledger account", func(t *testing.T) {
		fx := newFixture()
		customer := fx.createCustomer(t, "ada@example.com")
		account := fx.openAccount(t, customer.ID)

		_, err := fx.svc.ChangeStatus(ctx, account.ID, &entities.ChangeAccountStatusRequest{
			Status: entities.AccountStatusActive, Reason: "KYC passed",
		})
		require.NoError(t, err)

		closed, err := fx.svc.ChangeStatus(ctx, account.ID, &entities.ChangeAccountStatusRequest{
			Status: entities.AccountStatusClosed, Reason: "customer request",
		})
		require.NoError(t, err)
		require.NotNil(t, closed.ClosedAt)
		assert.False(t, fx.ledger.accounts[account.LedgerAccountID].IsActive)

		_, err = fx.svc.ChangeStatus(ctx, account.ID, &entities.ChangeAccountStatusRequest{
			Status: entities.AccountStatusActive, Reason: "regret",
		})
		assert.True(t, apperrors.Is(err, apperrors.KindIllegalTransition))
	})

	t.Run("transitions are audited", func(t *testing.T) {
		fx := newFixture()
		customer := fx.createCustomer(t, "ada@example.com")
		account := fx.openAccount(t, customer.ID)

		before := len(fx.audit.events)
		_, err := fx.svc.ChangeStatus(ctx, account.ID, &entities.ChangeAccountStatusRequest{
			Status: entities.AccountStatusActive, Reason: "KYC passed",
		})
		require.NoError(t, err)
		require.Greater(t, len(fx.audit.events), before)
		assert.Contains(t, fx.audit.events[len(fx.audit.events)-1], "KYC passed")
	})
}

func TestGetBalance(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	customer := fx.createCustomer(t, "ada@example.com")
	account := fx.openAccount(t, customer.ID)

	fx.ledger.balances[account.LedgerAccountID] = decimal.RequireFromString("512.34")

	balance, err := fx.svc.GetBalance(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, account.ID, balance.AccountID)
	assert.True(t, balance.Balance.Equal(decimal.RequireFromString("512.34")))
	assert.Equal(t, "USD", balance.Currency)
}

func TestGetCustomerAccounts(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	customer := fx.createCustomer(t, "ada@example.com")
	fx.openAccount(t, customer.ID)

	accounts, err := fx.svc.GetCustomerAccounts(ctx, customer.ID)
	require.NoError(t, err)
	assert.Len(t, accounts, 1)

	_, err = fx.svc.GetCustomerAccounts(ctx, 999)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
}
