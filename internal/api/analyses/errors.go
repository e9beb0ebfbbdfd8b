package analyses

import (
	"errors"
	"net/http"
	"time"

	"tubelens-api/internal/app/analyzer"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// writeError maps analyzer errors onto HTTP responses.
func (h *Handler) writeError(c *gin.Context, err error) {
	var (
		validation *analyzer.ValidationError
		quota      *analyzer.QuotaExceededError
	)
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "validation failed",
			"fields": gin.H{validation.Field: validation.Message},
		})
	case errors.As(err, &quota):
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":    "limit reached",
			"limit":    quota.Limit,
			"used":     quota.Used,
			"reset_at": quota.ResetAt.UTC().Format(time.RFC3339),
		})
	case errors.Is(err, analyzer.ErrAccountInactive):
		c.JSON(http.StatusForbidden, gin.H{"error": "Account is inactive"})
	case errors.Is(err, analyzer.ErrAnalysisNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Analysis not found"})
	case errors.Is(err, analyzer.ErrUpstreamNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "YouTube resource not found"})
	case errors.Is(err, analyzer.ErrUpstreamUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "YouTube is unavailable, try again later"})
	default:
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
