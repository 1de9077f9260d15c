// Package routes wires the HTTP surface together.
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/corebank-service/corebank_service/internal/api/handlers"
	"github.com/corebank-service/corebank_service/internal/api/middleware"
	"github.com/corebank-service/corebank_service/internal/api/validation"
	"github.com/corebank-service/corebank_service/internal/infrastructure/config"
	"github.com/corebank-service/corebank_service/pkg/logger"
	"github.com/corebank-service/corebank_service/pkg/metrics"
	"github.com/corebank-service/corebank_service/pkg/tracing"
)

// Setup builds the gin engine with all middleware and routes.
func Setup(cfg *config.Config, db *sqlx.DB, log *logger.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	validation.Register()

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.Metrics())
	if cfg.Tracing.Enabled {
		router.Use(tracing.HTTPMiddleware())
	}
	if cfg.Server.RateLimitPerMin > 0 {
		router.Use(middleware.RateLimit(cfg.Server.RateLimitPerMin))
	}

	healthHandler := handlers.NewHealthHandler(db)
	ledgerHandler := handlers.NewLedgerHandler(db, log)
	accountHandler := handlers.NewAccountHandler(db, log)
	transactionHandler := handlers.NewTransactionHandler(db, log)

	router.GET("/health", healthHandler.Check)
	router.GET("/metrics", metrics.Handler())

	ledgerGroup := router.Group("/ledger")
	{
		ledgerGroup.POST("/accounts", ledgerHandler.CreateAccount)
		ledgerGroup.GET("/accounts/:id", ledgerHandler.GetAccount)
		ledgerGroup.GET("/accounts/:id/balance", ledgerHandler.GetBalance)
		ledgerGroup.GET("/accounts/:id/entries", ledgerHandler.GetAccountEntries)
		ledgerGroup.POST("/entries", ledgerHandler.PostEntries)
		ledgerGroup.GET("/transactions/:transaction_id/entries", ledgerHandler.GetTransactionEntries)
		ledgerGroup.GET("/integrity", ledgerHandler.CheckIntegrity)
	}

	customerGroup := router.Group("/customers")
	{
		customerGroup.POST("", accountHandler.CreateCustomer)
		customerGroup.GET("/:id", accountHandler.GetCustomer)
		customerGroup.GET("/:id/accounts", accountHandler.GetCustomerAccounts)
	}

	accountGroup := router.Group("/accounts")
	{
		accountGroup.POST("", accountHandler.OpenAccount)
		accountGroup.GET("/:id", accountHandler.GetAccount)
		accountGroup.GET("/:id/balance", accountHandler.GetBalance)
		accountGroup.PATCH("/:id/status", accountHandler.ChangeStatus)
	}

	transactionGroup := router.Group("/transactions")
	{
		transactionGroup.POST("/deposit", transactionHandler.Deposit)
		transactionGroup.POST("/withdraw", transactionHandler.Withdraw)
		transactionGroup.POST("/transfer", transactionHandler.Transfer)
		transactionGroup.POST("/:id/reverse", transactionHandler.Reverse)
		transactionGroup.GET("/:id", transactionHandler.GetTransaction)
	}

	return router
}
