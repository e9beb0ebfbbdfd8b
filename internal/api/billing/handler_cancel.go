package billing

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75"
	"go.uber.org/zap"
)

// POST /billing/cancel
//
// Cancels at period end. The local row keeps its plan until Stripe sends
// customer.subscription.deleted or an update with status canceled.
func (h *Handler) CancelSubscription(c *gin.Context) {
	if !h.requireStripe(c) {
		return
	}

	_, sub, ok := h.loadAccount(c)
	if !ok {
		return
	}
	if sub.StripeSubscriptionID == nil || *sub.StripeSubscriptionID == "" {
		c.JSON(http.StatusOK, gin.H{"message": "No subscription to cancel"})
		return
	}

	updated, err := h.sc.Subscriptions.Update(*sub.StripeSubscriptionID, &stripe.SubscriptionParams{
		CancelAtPeriodEnd: stripe.Bool(true),
	})
	if err != nil {
		h.logger.Error("cancel stripe subscription failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to cancel subscription"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":            "Subscription will end with the current period",
		"current_period_end": time.Unix(updated.CurrentPeriodEnd, 0).UTC(),
	})
}
