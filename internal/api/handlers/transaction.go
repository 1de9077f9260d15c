package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/corebank-service/corebank_service/internal/domain/apperrors"
	"github.com/corebank-service/corebank_service/internal/domain/entities"
	"github.com/corebank-service/corebank_service/internal/domain/services/audit"
	"github.com/corebank-service/corebank_service/internal/domain/services/ledger"
	"github.com/corebank-service/corebank_service/internal/domain/services/transaction"
	"github.com/corebank-service/corebank_service/internal/infrastructure/database"
	"github.com/corebank-service/corebank_service/internal/infrastructure/repositories"
	"github.com/corebank-service/corebank_service/pkg/logger"
)

// TransactionHandler exposes money movements over HTTP.
type TransactionHandler struct {
	db  *sqlx.DB
	log *logger.Logger
}

func NewTransactionHandler(db *sqlx.DB, log *logger.Logger) *TransactionHandler {
	return &TransactionHandler{db: db, log: log}
}

// service builds the transaction service bound to the given unit of work.
func (h *TransactionHandler) service(q database.Querier) *transaction.Service {
	return transaction.NewService(
		repositories.NewTransactionRepository(q),
		repositories.NewAccountRepository(q),
		ledger.NewService(repositories.NewLedgerRepository(q), h.log),
		audit.NewService(repositories.NewAuditRepository(q), h.log),
		h.log,
	)
}

// run executes op inside one unit of work and settles the response.
//
// A transaction that fails a business rule is still a durable fact: the
// FAILED row must survive, so the enclosing database transaction commits
// whenever the service handed back a row, and only the error response
// differs. Infrastructure errors roll everything back.
func (h *TransactionHandler) run(c *gin.Context, op func(tx *sqlx.Tx) (*entities.Transaction, error)) {
	ctx := c.Request.Context()

	var txn *entities.Transaction
	var opErr error
	err := database.WithTransaction(ctx, h.db, func(tx *sqlx.Tx) error {
		txn, opErr = op(tx)
		if txn != nil && opErr != nil && apperrors.KindOf(opErr) != apperrors.KindUnknown {
			return nil
		}
		return opErr
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if opErr != nil {
		respondError(c, h.log, opErr)
		return
	}

	c.JSON(http.StatusCreated, txn)
}

// Deposit handles POST /transactions/deposit.
func (h *TransactionHandler) Deposit(c *gin.Context) {
	var req entities.DepositRequest
	if !bindJSON(c, &req) {
		return
	}

	h.run(c, func(tx *sqlx.Tx) (*entities.Transaction, error) {
		return h.service(tx).Deposit(c.Request.Context(), &req)
	})
}

// Withdraw handles POST /transactions/withdraw.
func (h *TransactionHandler) Withdraw(c *gin.Context) {
	var req entities.WithdrawalRequest
	if !bindJSON(c, &req) {
		return
	}

	h.run(c, func(tx *sqlx.Tx) (*entities.Transaction, error) {
		return h.service(tx).Withdraw(c.Request.Context(), &req)
	})
}

// Transfer handles POST /transactions/transfer.
func (h *TransactionHandler) Transfer(c *gin.Context) {
	var req entities.TransferRequest
	if !bindJSON(c, &req) {
		return
	}

	h.run(c, func(tx *sqlx.Tx) (*entities.Transaction, error) {
		return h.service(tx).Transfer(c.Request.Context(), &req)
	})
}

// Reverse handles POST /transactions/:id/reverse.
func (h *TransactionHandler) Reverse(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req entities.ReverseRequest
	if !bindJSON(c, &req) {
		return
	}

	h.run(c, func(tx *sqlx.Tx) (*entities.Transaction, error) {
		return h.service(tx).Reverse(c.Request.Context(), id, &req)
	})
}

// GetTransaction handles GET /transactions/:id.
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	txn, err := h.service(h.db).GetTransaction(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, txn)
}
