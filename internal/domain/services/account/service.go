// Package account manages customers and their customer-facing accounts.
//
// Every account is paired with a liability ledger account at open time;
// the ledger account holds the money, the customer account holds the
// lifecycle. Status changes run through an explicit state machine and
// every transition is audited with its reason.
package account

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/corebank-service/corebank_service/internal/domain/apperrors"
	"github.com/corebank-service/corebank_service/internal/domain/entities"
	"github.com/corebank-service/corebank_service/pkg/logger"
)

// CustomerRepository is the persistence surface for customers.
type CustomerRepository interface {
	Create(ctx context.Context, customer *entities.Customer) error
	GetByID(ctx context.Context, customerID int64) (*entities.Customer, error)
	GetByEmail(ctx context.Context, email string) (*entities.Customer, error)
}

// AccountRepository is the persistence surface for customer accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *entities.Account) error
	GetByID(ctx context.Context, accountID int64) (*entities.Account, error)
	GetByCustomerID(ctx context.Context, customerID int64) ([]*entities.Account, error)
	UpdateStatus(ctx context.Context, account *entities.Account) error
}

// Ledger is the slice of the bookkeeping service this package needs.
type Ledger interface {
	CreateAccount(ctx context.Context, req *entities.CreateLedgerAccountRequest) (*entities.LedgerAccount, error)
	GetBalance(ctx context.Context, accountID int64) (*entities.LedgerBalance, error)
	SetAccountActive(ctx context.Context, accountID int64, active bool) error
}

// Recorder appends audit events.
type Recorder interface {
	Record(ctx context.Context, eventType string, format string, args ...any)
}

// Service implements customer and account management.
type Service struct {
	customers CustomerRepository
	accounts  AccountRepository
	ledger    Ledger
	audit     Recorder
	log       *logger.Logger
}

// NewService creates the account service.
func NewService(customers CustomerRepository, accounts AccountRepository, ledger Ledger, audit Recorder, log *logger.Logger) *Service {
	return &Service{
		customers: customers,
		accounts:  accounts,
		ledger:    ledger,
		audit:     audit,
		log:       log,
	}
}

// CreateCustomer registers a new account holder. Email is globally
// unique; a duplicate surfaces as Conflict.
func (s *Service) CreateCustomer(ctx context.Context, req *entities.CreateCustomerRequest) (*entities.Customer, error) {
	existing, err := s.customers.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.Conflict("customer with email '%s' already exists", req.Email)
	}

	customer := &entities.Customer{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		KYCStatus: entities.KYCStatusPending,
		IsActive:  true,
	}
	if err := s.customers.Create(ctx, customer); err != nil {
		return nil, err
	}

	s.log.Info("customer created", "customer_id", customer.ID, "email", customer.Email)
	s.audit.Record(ctx, "customer.created", "customer %d created with email %s", customer.ID, customer.Email)
	return customer, nil
}

// GetCustomer retrieves a customer by id.
func (s *Service) GetCustomer(ctx context.Context, customerID int64) (*entities.Customer, error) {
	return s.customers.GetByID(ctx, customerID)
}

// GetCustomerAccounts lists the accounts owned by a customer.
func (s *Service) GetCustomerAccounts(ctx context.Context, customerID int64) ([]*entities.Account, error) {
	if _, err := s.customers.GetByID(ctx, customerID); err != nil {
		return nil, err
	}
	return s.accounts.GetByCustomerID(ctx, customerID)
}

// OpenAccount opens a customer account in PENDING status and creates its
// paired liability ledger account. The ledger code encodes the product
// and owner, so a customer cannot hold two accounts of the same product.
func (s *Service) OpenAccount(ctx context.Context, req *entities.OpenAccountRequest) (*entities.Account, error) {
	if err := req.ProductType.Validate(); err != nil {
		return nil, apperrors.Validation("%v", err)
	}

	customer, err := s.customers.GetByID(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}
	if !customer.IsActive {
		return nil, apperrors.Validation("customer %d is not active", customer.ID)
	}

	ledgerAccount, err := s.ledger.CreateAccount(ctx, &entities.CreateLedgerAccountRequest{
		Code:     fmt.Sprintf("CUST-%s-%05d", req.ProductType, customer.ID),
		Name:     fmt.Sprintf("%s %s %s", customer.FirstName, customer.LastName, strings.ToUpper(string(req.ProductType))),
		Category: req.ProductType.LedgerCategory(),
		Currency: req.Currency,
	})
	if err != nil {
		return nil, err
	}

	account := &entities.Account{
		CustomerID:      customer.ID,
		LedgerAccountID: ledgerAccount.ID,
		ProductType:     req.ProductType,
		Status:          entities.AccountStatusPending,
		Currency:        req.Currency,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}

	s.log.Info("account opened",
		"account_id", account.ID,
		"customer_id", customer.ID,
		"account_type", account.ProductType,
		"ledger_code", ledgerAccount.Code,
	)
	s.audit.Record(ctx, "account.opened",
		"account %d (%s, %s) opened for customer %d", account.ID, account.ProductType, account.Currency, customer.ID)
	return account, nil
}

// GetAccount retrieves a customer account by id.
func (s *Service) GetAccount(ctx context.Context, accountID int64) (*entities.Account, error) {
	return s.accounts.GetByID(ctx, accountID)
}

// GetBalance derives the account's balance from the ledger.
func (s *Service) GetBalance(ctx context.Context, accountID int64) (*entities.AccountBalance, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	balance, err := s.ledger.GetBalance(ctx, account.LedgerAccountID)
	if err != nil {
		return nil, err
	}

	return &entities.AccountBalance{
		AccountID:  account.ID,
		ExternalID: account.ExternalID,
		Status:     account.Status,
		Balance:    balance.Balance,
		Currency:   balance.Currency,
	}, nil
}

// ChangeStatus moves an account through its state machine.
//
// The opened-at timestamp is set the first time an account becomes
// ACTIVE and never touched again, so a freeze/unfreeze cycle keeps the
// original opening date. Closing stamps closed-at and deactivates the
// paired ledger account so no further entries can touch it.
func (s *Service) ChangeStatus(ctx context.Context, accountID int64, req *entities.ChangeAccountStatusRequest) (*entities.Account, error) {
	if err := req.Status.Validate(); err != nil {
		return nil, apperrors.Validation("%v", err)
	}

	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if !account.CanTransitionTo(req.Status) {
		return nil, apperrors.IllegalTransition(
			"cannot transition account %d from %s to %s", account.ID, account.Status, req.Status)
	}

	previous := account.Status
	account.Status = req.Status

	now := time.Now().UTC()
	if req.Status == entities.AccountStatusActive && account.OpenedAt == nil {
		account.OpenedAt = &now
	}
	if req.Status == entities.AccountStatusClosed {
		account.ClosedAt = &now
		if err := s.ledger.SetAccountActive(ctx, account.LedgerAccountID, false); err != nil {
			return nil, err
		}
	}

	if err := s.accounts.UpdateStatus(ctx, account); err != nil {
		return nil, err
	}

	s.log.Info("account status changed",
		"account_id", account.ID,
		"from", previous,
		"to", account.Status,
		"reason", req.Reason,
	)
	s.audit.Record(ctx, "account.status_changed",
		"account %d moved %s -> %s: %s", account.ID, previous, account.Status, req.Reason)
	return account, nil
}
