package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/corebank-service/corebank_service/internal/domain/entities"
	"github.com/corebank-service/corebank_service/internal/domain/services/ledger"
	"github.com/corebank-service/corebank_service/internal/infrastructure/database"
	"github.com/corebank-service/corebank_service/internal/infrastructure/repositories"
	"github.com/corebank-service/corebank_service/pkg/logger"
)

// LedgerHandler exposes the bookkeeping core over HTTP.
type LedgerHandler struct {
	db  *sqlx.DB
	log *logger.Logger
}

func NewLedgerHandler(db *sqlx.DB, log *logger.Logger) *LedgerHandler {
	return &LedgerHandler{db: db, log: log}
}

// service builds the ledger service bound to the given unit of work.
func (h *LedgerHandler) service(q database.Querier) *ledger.Service {
	return ledger.NewService(repositories.NewLedgerRepository(q), h.log)
}

// CreateAccount handles POST /ledger/accounts.
func (h *LedgerHandler) CreateAccount(c *gin.Context) {
	var req entities.CreateLedgerAccountRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	var account *entities.LedgerAccount
	err := database.WithTransaction(ctx, h.db, func(tx *sqlx.Tx) error {
		var err error
		account, err = h.service(tx).CreateAccount(ctx, &req)
		return err
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, account)
}

// GetAccount handles GET /ledger/accounts/:id.
func (h *LedgerHandler) GetAccount(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	account, err := h.service(h.db).GetAccount(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, account)
}

// GetBalance handles GET /ledger/accounts/:id/balance.
func (h *LedgerHandler) GetBalance(c *gin.Context) {
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

// GetAccountEntries handles GET /ledger/accounts/:id/entries.
func (h *LedgerHandler) GetAccountEntries(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	entries, err := h.service(h.db).GetEntriesByAccount(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries, "count": len(entries)})
}

// PostEntries handles POST /ledger/entries.
func (h *LedgerHandler) PostEntries(c *gin.Context) {
	var req entities.PostEntriesRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	var entries []*entities.LedgerEntry
	err := database.WithTransaction(ctx, h.db, func(tx *sqlx.Tx) error {
		var err error
		entries, err = h.service(tx).PostEntries(ctx, &req)
		return err
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"entries": entries, "count": len(entries)})
}

// GetTransactionEntries handles GET /ledger/transactions/:transaction_id/entries.
func (h *LedgerHandler) GetTransactionEntries(c *gin.Context) {
	txnID, err := uuid.Parse(c.Param("transaction_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Detail: "invalid transaction_id parameter"})
		return
	}

	entries, err := h.service(h.db).GetEntriesByTransaction(c.Request.Context(), txnID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries, "count": len(entries)})
}

// CheckIntegrity handles GET /ledger/integrity.
func (h *LedgerHandler) CheckIntegrity(c *gin.Context) {
	report, err := h.service(h.db).CheckIntegrity(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, report)
}
