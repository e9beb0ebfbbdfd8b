package users

import (
	"errors"
	"net/http"

	"tubelens-api/internal/app/accounts"
	"tubelens-api/internal/app/analyzer"
	"tubelens-api/internal/app/http/middleware"
	"tubelens-api/internal/domain/subscriptions"
	"tubelens-api/internal/domain/users"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Handler struct {
	db       *gorm.DB
	accounts *accounts.Service
	analyzer *analyzer.Service
	logger   *zap.Logger
}

func NewHandler(db *gorm.DB, acc *accounts.Service, an *analyzer.Service, logger *zap.Logger) *Handler {
	return &Handler{db: db, accounts: acc, analyzer: an, logger: logger.Named("users")}
}

// GET /me
func (h *Handler) GetCurrentUser(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	var user users.User
	if err := h.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
		return
	}

	var sub *subscriptions.Subscription
	var row subscriptions.Subscription
	err := h.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error
	switch {
	case err == nil:
		sub = &row
	case !errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load subscription"})
		return
	}

	snapshot, err := h.analyzer.Usage(ctx, userID)
	if err != nil {
		h.logger.Error("load usage failed", zap.String("user_id", userID.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load usage"})
		return
	}

	c.JSON(http.StatusOK, MeResponse{
		UserDTO:      BuildUserDTO(user),
		Subscription: BuildSubscriptionDTO(sub),
		Usage:        BuildUsageDTO(snapshot),
	})
}

// DELETE /me
func (h *Handler) DeleteCurrentUser(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return
	}

	if err := h.accounts.Delete(c.Request.Context(), userID); err != nil {
		if errors.Is(err, accounts.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		h.logger.Error("delete user failed", zap.String("user_id", userID.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
		return
	}

	c.Status(http.StatusNoContent)
}
