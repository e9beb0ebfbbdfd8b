package billing

import (
	"net/http"

	"tubelens-api/internal/domain/plans"
	"tubelens-api/internal/domain/subscriptions"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75"
	"go.uber.org/zap"
)

// POST /create-checkout-session
func (h *Handler) CreateCheckoutSession(c *gin.Context) {
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

	user, sub, ok := h.loadAccount(c)
	if !ok {
		return
	}

	if sub.StripeSubscriptionID != nil && *sub.StripeSubscriptionID != "" && sub.Status != subscriptions.StatusCanceled {
		c.JSON(http.StatusConflict, gin.H{"error": "Subscription already exists, use /billing/change-plan"})
		return
	}

	// ensure stripe customer
	if sub.StripeCustomerID == nil || *sub.StripeCustomerID == "" {
		cus, err := h.sc.Customers.New(&stripe.CustomerParams{
			Email: stripe.String(user.Email),
			Metadata: map[string]string{
				"user_id": user.ID.String(),
				"app_env": h.appEnv,
			},
		})
		if err != nil {
			h.logger.Error("create stripe customer failed", zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to create Stripe customer"})
			return
		}

		if err := h.db.WithContext(c.Request.Context()).
			Model(&subscriptions.Subscription{}).
			Where("id = ?", sub.ID).
			Update("stripe_customer_id", cus.ID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store Stripe customer"})
			return
		}

		sub.StripeCustomerID = stripe.String(cus.ID)
	}

	params := &stripe.CheckoutSessionParams{
		SuccessURL: stripe.String(h.appURL + "/account"),
		CancelURL:  stripe.String(h.appURL + "/account?canceled=1"),
		Mode:       stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		Customer:   stripe.String(*sub.StripeCustomerID),

		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(priceID), Quantity: stripe.Int64(1)},
		},

		ClientReferenceID: stripe.String(user.ID.String()),

		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{
				"user_id": user.ID.String(),
				"plan":    tier,
			},
		},
	}
	params.AddMetadata("user_id", user.ID.String())
	params.AddMetadata("plan", tier)

	s, err := h.sc.CheckoutSessions.New(params)
	if err != nil {
		h.logger.Error("create checkout session failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to create checkout session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": s.URL})
}

// POST /billing-portal
func (h *Handler) CreateBillingPortal(c *gin.Context) {
	if !h.requireStripe(c) {
		return
	}

	_, sub, ok := h.loadAccount(c)
	if !ok {
		return
	}
	if sub.StripeCustomerID == nil || *sub.StripeCustomerID == "" {
		c.JSON(http.StatusConflict, gin.H{"error": "No Stripe customer yet (subscribe first)"})
		return
	}

	portal, err := h.sc.BillingPortalSessions.New(&stripe.BillingPortalSessionParams{
		Customer:  stripe.String(*sub.StripeCustomerID),
		ReturnURL: stripe.String(h.appURL + "/account"),
	})
	if err != nil {
		h.logger.Error("create billing portal failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Could not create billing portal session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": portal.URL})
}
