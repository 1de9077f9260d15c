package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/corebank-service/corebank_service/internal/infrastructure/database"
)

// HealthHandler serves the liveness/readiness probe.
type HealthHandler struct {
	db *sqlx.DB
}

func NewHealthHandler(db *sqlx.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Check reports service and database health. The probe always answers
// 200; a broken database is reported in the body so callers can tell a
// dead service from a degraded one.
func (h *HealthHandler) Check(c *gin.Context) {
	overall := "healthy"
	dbStatus := "healthy"
	if err := database.HealthCheck(c.Request.Context(), h.db); err != nil {
		overall = "degraded"
		dbStatus = "unhealthy"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   overall,
		"service":  "corebank-service",
		"database": dbStatus,
	})
}
