package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tranvu/inventory-ledger/internal/core/domain"
)

// writeError maps the core error taxonomy to HTTP statuses. Insufficient
// stock keeps its user-facing diagnostics in the body.
func writeError(c *gin.Context, err error) {
	var insufficient *domain.InsufficientStockError
	switch {
	case errors.As(err, &insufficient):
		c.JSON(http.StatusConflict, gin.H{
			"error":     "insufficient_stock",
			"item":      insufficient.ItemName,
			"available": insufficient.Available,
			"requested": insufficient.Requested,
			"message":   insufficient.Error(),
		})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": err.Error()})
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "message": err.Error()})
	case errors.Is(err, domain.ErrDuplicateRequest):
		c.JSON(http.StatusConflict, gin.H{"error": "duplicate_request", "message": err.Error()})
	case errors.Is(err, domain.ErrConflict):
		// Conflict retries exhausted; the caller may try again.
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "conflict", "message": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
	}
}
