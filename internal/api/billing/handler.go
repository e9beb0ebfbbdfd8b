package billing

import (
	"errors"
	"net/http"

	"tubelens-api/internal/app/http/middleware"
	"tubelens-api/internal/domain/plans"
	"tubelens-api/internal/domain/subscriptions"
	"tubelens-api/internal/domain/users"
	stripeinfra "tubelens-api/internal/infra/stripe"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75/client"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Handler struct {
	db     *gorm.DB
	sc     *client.API
	prices stripeinfra.PriceMap
	caps   plans.Caps
	appURL string
	appEnv string
	logger *zap.Logger
}

type Options struct {
	Prices stripeinfra.PriceMap
	Caps   plans.Caps
	AppURL string
	AppEnv string
}

// NewHandler wires the billing endpoints. sc may be nil when Stripe is not configured.
func NewHandler(db *gorm.DB, sc *client.API, opts Options, logger *zap.Logger) *Handler {
	return &Handler{
		db:     db,
		sc:     sc,
		prices: opts.Prices,
		caps:   opts.Caps,
		appURL: opts.AppURL,
		appEnv: opts.AppEnv,
		logger: logger.Named("billing"),
	}
}

func (h *Handler) requireStripe(c *gin.Context) bool {
	if h.sc == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Stripe key not configured"})
		return false
	}
	return true
}

// loadAccount returns the caller and their subscription row, writing the error response itself.
func (h *Handler) loadAccount(c *gin.Context) (users.User, subscriptions.Subscription, bool) {
	var user users.User
	var sub subscriptions.Subscription

	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return user, sub, false
	}
	db := h.db.WithContext(c.Request.Context())

	if err := db.Where("id = ?", userID).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return user, sub, false
	}

	err := db.Where("user_id = ?", userID).First(&sub).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		sub = subscriptions.Subscription{
			UserID: userID,
			Plan:   plans.TierFree,
			Status: subscriptions.StatusActive,
		}
		if err := db.Create(&sub).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create subscription"})
			return user, sub, false
		}
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load subscription"})
		return user, sub, false
	}
	return user, sub, true
}
