package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cuppa-app/backend/internal/types"
)

// respondError translates service-layer errors into HTTP responses. The
// mapping is deliberately centralized so every handler reports the same
// shapes for the same failure classes.
func respondError(c *gin.Context, err error) {
	var validationErr *types.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":          validationErr.Error(),
			"missing_fields": validationErr.Fields,
		})
		return
	}

	var inputErr *types.InputError
	if errors.As(err, &inputErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": inputErr.Error()})
		return
	}

	var exportErr *types.ExportError
	if errors.As(err, &exportErr) {
		c.JSON(http.StatusBadGateway, gin.H{"error": exportErr.Error()})
		return
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
	case errors.Is(err, types.ErrClassifierNotReady):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case errors.Is(err, types.ErrAnalysisInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
