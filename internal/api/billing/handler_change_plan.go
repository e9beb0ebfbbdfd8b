package billing

import (
	"net/http"
	"time"

	"tubelens-api/internal/domain/plans"
	"tubelens-api/internal/domain/subscriptions"
	stripeinfra "tubelens-api/internal/infra/stripe"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75"
	"go.uber.org/zap"
)

// POST /billing/change-plan
//
// Swaps the price on the caller's Stripe subscription right away; Stripe prorates both directions.
func (h *Handler) ChangePlan(c *gin.Context) {
	var body struct {
		Plan string `json:"plan"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Plan == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid plan"})
		return
	}

	tier := plans.NormalizeTier(body.Plan)
	priceID, ok := h.prices.PriceForTier(tier)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown plan"})
		return
	}

	if !h.requireStripe(c) {
		return
	}

	_, sub, ok := h.loadAccount(c)
	if !ok {
		return
	}
	if sub.StripeSubscriptionID == nil || *sub.StripeSubscriptionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No active subscription to change. Use checkout first."})
		return
	}

	current, err := h.sc.Subscriptions.Get(*sub.StripeSubscriptionID, nil)
	if err != nil {
		h.logger.Error("fetch stripe subscription failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch Stripe subscription"})
		return
	}
	if current.Items == nil || len(current.Items.Data) == 0 || current.Items.Data[0].Price == nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Subscription has no price item"})
		return
	}

	item := current.Items.Data[0]
	if item.Price.ID == priceID {
		c.JSON(http.StatusOK, gin.H{"message": "Already on this plan", "plan": tier})
		return
	}

	updated, err := h.sc.Subscriptions.Update(current.ID, &stripe.SubscriptionParams{
		Items: []*stripe.SubscriptionItemsParams{
			{
				ID:    stripe.String(item.ID),
				Price: stripe.String(priceID),
			},
		},
		ProrationBehavior: stripe.String("create_prorations"),
	})
	if err != nil {
		h.logger.Error("update stripe subscription failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to change subscription"})
		return
	}

	periodEnd := time.Unix(updated.CurrentPeriodEnd, 0).UTC()
	if err := h.db.WithContext(c.Request.Context()).
		Model(&subscriptions.Subscription{}).
		Where("id = ?", sub.ID).
		Updates(map[string]interface{}{
			"plan":               tier,
			"status":             stripeinfra.NormalizeStripeStatus(string(updated.Status)),
			"current_period_end": periodEnd,
		}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update subscription"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":            "Plan changed",
		"plan":               tier,
		"current_period_end": periodEnd,
	})
}
