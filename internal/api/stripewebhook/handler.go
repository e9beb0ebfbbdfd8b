package stripewebhooks

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	stripeinfra "tubelens-api/internal/infra/stripe"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/client"
	"github.com/stripe/stripe-go/v75/webhook"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxBodyBytes = 65536

// errIgnored marks events that refer to nothing we know about. They are acknowledged so
// Stripe does not keep retrying them.
var errIgnored = errors.New("event ignored")

type Handler struct {
	db     *gorm.DB
	sc     *client.API
	secret string
	prices stripeinfra.PriceMap
	logger *zap.Logger
}

// NewHandler builds the webhook endpoint. sc is optional; without it the handler trusts the
// event payload and the checkout metadata instead of re-reading the subscription from Stripe.
func NewHandler(db *gorm.DB, sc *client.API, secret string, prices stripeinfra.PriceMap, logger *zap.Logger) *Handler {
	return &Handler{db: db, sc: sc, secret: secret, prices: prices, logger: logger.Named("stripe_webhook")}
}

// POST /webhook
func (h *Handler) StripeWebhook(c *gin.Context) {
	if h.secret == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "STRIPE_WEBHOOK_SECRET not configured"})
		return
	}

	payload, err := readStripeBody(c, maxBodyBytes)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Error reading request body"})
		return
	}

	event, err := webhook.ConstructEventWithOptions(
		payload,
		c.GetHeader("Stripe-Signature"),
		h.secret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		h.logger.Warn("stripe signature verification failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Signature verification failed"})
		return
	}

	log := h.logger.With(zap.String("event_id", event.ID), zap.String("event_type", string(event.Type)))
	ctx := c.Request.Context()

	switch event.Type {
	case "checkout.session.completed":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse session"})
			return
		}
		err = h.handleCheckoutSessionCompleted(ctx, &session)

	case "customer.subscription.updated":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse subscription"})
			return
		}
		err = h.handleSubscriptionUpdated(ctx, &sub)

	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse subscription"})
			return
		}
		err = h.handleSubscriptionDeleted(ctx, &sub)

	case "invoice.paid":
		var inv stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse invoice"})
			return
		}
		err = h.handleInvoicePaid(ctx, &inv)

	default:
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	switch {
	case errors.Is(err, errIgnored):
		log.Info("stripe event ignored", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
	case err != nil:
		// 500 makes Stripe redeliver
		log.Error("stripe event failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process event"})
	default:
		log.Info("stripe event processed")
		c.JSON(http.StatusOK, gin.H{"status": "received"})
	}
}

func readStripeBody(c *gin.Context, maxBytes int64) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
	return io.ReadAll(c.Request.Body)
}
