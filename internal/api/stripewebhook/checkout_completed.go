package stripewebhooks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tubelens-api/internal/domain/plans"
	"tubelens-api/internal/domain/subscriptions"
	stripeinfra "tubelens-api/internal/infra/stripe"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v75"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (h *Handler) handleCheckoutSessionCompleted(ctx context.Context, session *stripe.CheckoutSession) error {
	if session.Subscription == nil || session.Subscription.ID == "" {
		return fmt.Errorf("%w: checkout session %s has no subscription", errIgnored, session.ID)
	}
	subscriptionID := session.Subscription.ID

	userID, err := userIDFromRefs(session.Metadata, session.ClientReferenceID)
	if err != nil {
		return fmt.Errorf("%w: %v", errIgnored, err)
	}

	updates := map[string]interface{}{
		"stripe_subscription_id": subscriptionID,
		"status":                 subscriptions.StatusActive,
	}
	if tier := session.Metadata["plan"]; plans.IsValidTier(tier) {
		updates["plan"] = tier
	}
	if session.Customer != nil && session.Customer.ID != "" {
		updates["stripe_customer_id"] = session.Customer.ID
	}

	// Stripe is the source of truth for price, status and period when we can ask it.
	if h.sc != nil {
		subData, err := h.sc.Subscriptions.Get(subscriptionID, nil)
		if err != nil {
			return fmt.Errorf("fetch subscription %s: %w", subscriptionID, err)
		}
		for k, v := range h.subscriptionUpdates(subData) {
			updates[k] = v
		}
	}

	return h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sub subscriptions.Subscription
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).
			First(&sub).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			var n int64
			if err := tx.Table("users").Where("id = ?", userID).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return fmt.Errorf("%w: user %s not found", errIgnored, userID)
			}
			sub = subscriptions.Subscription{UserID: userID, Plan: plans.TierFree, Status: subscriptions.StatusActive}
			if err := tx.Omit(clause.Associations).Create(&sub).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		}

		return tx.Model(&subscriptions.Subscription{}).
			Where("id = ?", sub.ID).
			Updates(updates).Error
	})
}

// subscriptionUpdates maps a Stripe subscription onto our columns. An unknown price leaves the plan untouched.
func (h *Handler) subscriptionUpdates(sub *stripe.Subscription) map[string]interface{} {
	updates := map[string]interface{}{
		"stripe_subscription_id": sub.ID,
		"status":                 stripeinfra.NormalizeStripeStatus(string(sub.Status)),
	}
	if sub.CurrentPeriodEnd > 0 {
		updates["current_period_end"] = time.Unix(sub.CurrentPeriodEnd, 0).UTC()
	}
	if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
		if tier, ok := h.prices.TierForPrice(sub.Items.Data[0].Price.ID); ok {
			updates["plan"] = tier
		}
	}
	if sub.Customer != nil && sub.Customer.ID != "" {
		updates["stripe_customer_id"] = sub.Customer.ID
	}
	return updates
}

func userIDFromRefs(md map[string]string, clientRef string) (uuid.UUID, error) {
	raw := ""
	if md != nil {
		raw = md["user_id"]
	}
	if raw == "" {
		raw = clientRef
	}
	if raw == "" {
		return uuid.Nil, errors.New("missing user_id (metadata.user_id or client_reference_id)")
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid user_id %q: %w", raw, err)
	}
	return id, nil
}
