// Package handlers contains the HTTP adapters. Handlers own the unit of
// work: reads run on the pool, mutations run inside a SERIALIZABLE
// transaction, and services never commit or roll back themselves.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/corebank-service/corebank_service/internal/domain/apperrors"
	"github.com/corebank-service/corebank_service/pkg/logger"
)

// errorResponse is the error body contract: a single human-readable line.
type errorResponse struct {
	Detail string `json:"detail"`
}

// statusForKind maps the application error taxonomy onto HTTP statuses.
// Business rule violations are client errors; only genuinely unexpected
// failures surface as 500.
func statusForKind(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindConflict:
		return http.StatusConflict
	case apperrors.KindValidation,
		apperrors.KindIllegalTransition,
		apperrors.KindAccountInactive,
		apperrors.KindCurrencyMismatch,
		apperrors.KindUnbalanced,
		apperrors.KindInsufficientFunds,
		apperrors.KindSameAccount,
		apperrors.KindNotReversible:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the error body for err. Internal errors are logged
// with their cause but reported to the client without it.
func respondError(c *gin.Context, log *logger.Logger, err error) {
	status := statusForKind(apperrors.KindOf(err))
	if status == http.StatusInternalServerError {
		log.Error("request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		)
		c.JSON(status, errorResponse{Detail: "internal server error"})
		return
	}
	c.JSON(status, errorResponse{Detail: err.Error()})
}

// bindJSON binds the request body and writes the 400 response itself on
// failure. Returns false when the request was already answered.
func bindJSON(c *gin.Context, dest any) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Detail: err.Error()})
		return false
	}
	return true
}

// pathID parses a numeric path parameter, answering 400 on garbage.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, errorResponse{Detail: "invalid " + name + " parameter"})
		return 0, false
	}
	return id, true
}
