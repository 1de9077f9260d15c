package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/corebank-service/corebank_service/internal/domain/entities"
	"github.com/corebank-service/corebank_service/internal/domain/services/account"
	"github.com/corebank-service/corebank_service/internal/domain/services/audit"
	"github.com/corebank-service/corebank_service/internal/domain/services/ledger"
	"github.com/corebank-service/corebank_service/internal/infrastructure/database"
	"github.com/corebank-service/corebank_service/internal/infrastructure/repositories"
	"github.com/corebank-service/corebank_service/pkg/logger"
)

// AccountHandler exposes customer and account management over HTTP.
type AccountHandler struct {
	db  *sqlx.DB
	log *logger.Logger
}

func NewAccountHandler(db *sqlx.DB, log *logger.Logger) *AccountHandler {
	return &AccountHandler{db: db, log: log}
}

// service builds the account service bound to the given unit of work.
func (h *AccountHandler) service(q database.Querier) *account.Service {
	return account.NewService(
		repositories.NewCustomerRepository(q),
		repositories.NewAccountRepository(q),
		ledger.NewService(repositories.NewLedgerRepository(q), h.log),
		audit.NewService(repositories.NewAuditRepository(q), h.log),
		h.log,
	)
}

// CreateCustomer handles POST /customers.
func (h *AccountHandler) CreateCustomer(c *gin.Context) {
	var req entities.CreateCustomerRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	var customer *entities.Customer
	err := database.WithTransaction(ctx, h.db, func(tx *sqlx.Tx) error {
		var err error
		customer, err = h.service(tx).CreateCustomer(ctx, &req)
		return err
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, customer)
}

// GetCustomer handles GET /customers/:id.
func (h *AccountHandler) GetCustomer(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	customer, err := h.service(h.db).GetCustomer(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, customer)
}

// GetCustomerAccounts handles GET /customers/:id/accounts.
func (h *AccountHandler) GetCustomerAccounts(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	accounts, err := h.service(h.db).GetCustomerAccounts(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"accounts": accounts, "count": len(accounts)})
}

// OpenAccount handles POST /accounts.
func (h *AccountHandler) OpenAccount(c *gin.Context) {
	var req entities.OpenAccountRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	var acct *entities.Account
	err := database.WithTransaction(ctx, h.db, func(tx *sqlx.Tx) error {
		var err error
		acct, err = h.service(tx).OpenAccount(ctx, &req)
		return err
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, acct)
}

// GetAccount handles GET /accounts/:id.
func (h *AccountHandler) GetAccount(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	acct, err := h.service(h.db).GetAccount(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, acct)
}

// GetBalance handles GET /accounts/:id/balance.
func (h *AccountHandler) GetBalance(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	balance, err := h.service(h.db).GetBalance(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, balance)
}

// ChangeStatus handles PATCH /accounts/:id/status.
func (h *AccountHandler) ChangeStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req entities.ChangeAccountStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	var acct *entities.Account
	err := database.WithTransaction(ctx, h.db, func(tx *sqlx.Tx) error {
		var err error
		acct, err = h.service(tx).ChangeStatus(ctx, id, &req)
		return err
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, acct)
}
